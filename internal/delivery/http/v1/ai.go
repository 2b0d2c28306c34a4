package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmlee/todoflow/internal/aiparse"
	"github.com/dmlee/todoflow/internal/analytics"
	"github.com/dmlee/todoflow/internal/services"
)

const (
	msgTodosRequired = "할 일 목록이 필요합니다."
	msgInvalidPeriod = "분석 기간은 'today' 또는 'week'여야 합니다."
)

type summaryRequest struct {
	Todos  []analytics.TodoInput `json:"todos"`
	Period string                `json:"period"`
}

func (h *handlerImpl) HandleSummary(c *gin.Context) {
	var req summaryRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(msgTodosRequired))
		return
	}
	if req.Todos == nil {
		h.logger.Error().Msg("no todos provided")
		abort(c, newBadRequestError(msgTodosRequired))
		return
	}

	period := analytics.Period(req.Period)
	if period == "" {
		period = analytics.PeriodToday
	}
	if !period.Valid() {
		h.logger.Error().
			Str("period", req.Period).
			Msg("invalid analysis period")
		abort(c, newBadRequestError(msgInvalidPeriod))
		return
	}

	// An empty collection needs no model round trip.
	if len(req.Todos) == 0 {
		h.logger.Debug().Msg("no todos to analyze")
		c.JSON(http.StatusOK, analytics.NoTodosSummary(period))
		return
	}

	summary, err := h.summary.Summarize(c, req.Todos, period)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to summarize todos")
		abort(c, aiAPIError(err))
		return
	}

	h.logger.Info().
		Int("todos", len(req.Todos)).
		Str("period", string(period)).
		Msg("summarized todos")
	c.JSON(http.StatusOK, summary)
}

type parseTodoRequest struct {
	Text string `json:"text"`
}

type parseTodoResponse struct {
	Todos []aiparse.NormalizedTodo `json:"todos"`
}

func (h *handlerImpl) HandleParseTodo(c *gin.Context) {
	var req parseTodoRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(aiparse.ErrTextRequired.Error()))
		return
	}

	text, err := aiparse.Preprocess(req.Text)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("rejected parse input")
		abort(c, newBadRequestError(err.Error()))
		return
	}

	todos, err := h.summary.ParseTodo(c, text)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to parse todo text")
		abort(c, aiAPIError(err))
		return
	}

	h.logger.Info().
		Int("todos", len(todos)).
		Msg("parsed todo text")
	c.JSON(http.StatusOK, parseTodoResponse{Todos: todos})
}

// aiAPIError maps a summary-service failure to its HTTP shape. The
// Korean messages live on the sentinel errors themselves.
func aiAPIError(err error) apiError {
	switch {
	case errors.Is(err, services.ErrAIUnauthorized):
		return newUnauthorizedError(err.Error())
	case errors.Is(err, services.ErrAIRateLimited):
		return newTooManyRequestsError(err.Error())
	case errors.Is(err, services.ErrAIBadRequest),
		errors.Is(err, services.ErrAIEmptyReply),
		errors.Is(err, services.ErrAIMalformedReply):
		return newBadRequestError(err.Error())
	case errors.Is(err, services.ErrAINotConfigured):
		return newInternalError(err.Error())
	default:
		return newInternalError(services.ErrAIUnavailable.Error())
	}
}
