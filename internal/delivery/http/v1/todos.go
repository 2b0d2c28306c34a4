package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmlee/todoflow/internal/models"
	"github.com/dmlee/todoflow/internal/services"
)

type getTodoResponse struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Priority         string     `json:"priority"`
	Category         string     `json:"category"`
	Completed        bool       `json:"completed"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	Position         int        `json:"position"`
	RepeatType       string     `json:"repeat_type"`
	RepeatInterval   int        `json:"repeat_interval"`
	RepeatDaysOfWeek []int      `json:"repeat_days_of_week,omitempty"`
	RepeatEndDate    *time.Time `json:"repeat_end_date,omitempty"`
	ParentTodoID     *string    `json:"parent_todo_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func newGetTodoResponse(todo *models.Todo) getTodoResponse {
	return getTodoResponse{
		ID:               todo.ID,
		Title:            todo.Title,
		Description:      todo.Description,
		Priority:         todo.Priority,
		Category:         todo.Category,
		Completed:        todo.Completed,
		DueDate:          todo.DueDate,
		Position:         todo.Position,
		RepeatType:       todo.RepeatType,
		RepeatInterval:   todo.RepeatInterval,
		RepeatDaysOfWeek: todo.RepeatDaysOfWeek,
		RepeatEndDate:    todo.RepeatEndDate,
		ParentTodoID:     todo.ParentTodoID,
		CreatedAt:        todo.CreatedAt,
		UpdatedAt:        todo.UpdatedAt,
	}
}

type createTodoRequest struct {
	Title            string     `json:"title" binding:"required,max=255"`
	Description      *string    `json:"description,omitempty"`
	Priority         *string    `json:"priority,omitempty"`
	Category         *string    `json:"category,omitempty"`
	Completed        bool       `json:"completed"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	RepeatType       *string    `json:"repeat_type,omitempty"`
	RepeatInterval   *int       `json:"repeat_interval,omitempty"`
	RepeatDaysOfWeek []int      `json:"repeat_days_of_week,omitempty"`
	RepeatEndDate    *time.Time `json:"repeat_end_date,omitempty"`
	ParentTodoID     *string    `json:"parent_todo_id,omitempty"`
}

func (h *handlerImpl) HandleCreateTodo(c *gin.Context) {
	userID, exists := getStringFromContext(c, userIDCtxKey)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var req createTodoRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	params := services.CreateTodoParams{
		UserID:           userID,
		Title:            req.Title,
		Priority:         models.PriorityMedium,
		Category:         models.CategoryOther,
		Completed:        req.Completed,
		DueDate:          req.DueDate,
		RepeatType:       models.RepeatNone,
		RepeatInterval:   1,
		RepeatDaysOfWeek: req.RepeatDaysOfWeek,
		RepeatEndDate:    req.RepeatEndDate,
		ParentTodoID:     req.ParentTodoID,
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.Priority != nil {
		params.Priority = *req.Priority
	}
	if req.Category != nil {
		params.Category = *req.Category
	}
	if req.RepeatType != nil {
		params.RepeatType = *req.RepeatType
	}
	if req.RepeatInterval != nil {
		params.RepeatInterval = *req.RepeatInterval
	}

	todo, err := h.todos.CreateTodo(c, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create todo")
		switch {
		case errors.Is(err, services.ErrInvalidPriority),
			errors.Is(err, services.ErrInvalidRepeatType):
			abort(c, newBadRequestError(err.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.logger.Info().Msg("created todo")
	c.JSON(http.StatusCreated, newGetTodoResponse(todo))
}

func (h *handlerImpl) HandleGetTodos(c *gin.Context) {
	userID, exists := getStringFromContext(c, userIDCtxKey)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	todos, err := h.todos.GetTodosByUserID(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to select todos")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	response := make([]getTodoResponse, len(todos))
	for i, todo := range todos {
		response[i] = newGetTodoResponse(todo)
	}

	h.logger.Info().Msg("fetched todos")
	c.JSON(http.StatusOK, response)
}

type updateTodoRequest struct {
	Title            string     `json:"title" binding:"required,max=255"`
	Description      string     `json:"description"`
	Priority         string     `json:"priority" binding:"required"`
	Category         string     `json:"category"`
	Completed        bool       `json:"completed"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	RepeatType       string     `json:"repeat_type"`
	RepeatInterval   int        `json:"repeat_interval"`
	RepeatDaysOfWeek []int      `json:"repeat_days_of_week,omitempty"`
	RepeatEndDate    *time.Time `json:"repeat_end_date,omitempty"`
}

func (h *handlerImpl) HandleUpdateTodo(c *gin.Context) {
	userID, exists := getStringFromContext(c, userIDCtxKey)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	todoID := c.Param("id")
	if todoID == "" {
		h.logger.Error().Msg("no todo id provided")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var req updateTodoRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	if req.RepeatType == "" {
		req.RepeatType = models.RepeatNone
	}
	if req.RepeatInterval <= 0 {
		req.RepeatInterval = 1
	}

	todo, err := h.todos.UpdateTodo(c, services.UpdateTodoParams{
		ID:               todoID,
		UserID:           userID,
		Title:            req.Title,
		Description:      req.Description,
		Priority:         req.Priority,
		Category:         req.Category,
		Completed:        req.Completed,
		DueDate:          req.DueDate,
		RepeatType:       req.RepeatType,
		RepeatInterval:   req.RepeatInterval,
		RepeatDaysOfWeek: req.RepeatDaysOfWeek,
		RepeatEndDate:    req.RepeatEndDate,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update todo")
		switch {
		case errors.Is(err, services.ErrTodoNotFound):
			abort(c, newNotFoundError(services.ErrTodoNotFound.Error()))
		case errors.Is(err, services.ErrInvalidPriority),
			errors.Is(err, services.ErrInvalidRepeatType):
			abort(c, newBadRequestError(err.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.logger.Info().Msg("updated todo")
	c.JSON(http.StatusOK, newGetTodoResponse(todo))
}

type completeTodoRequest struct {
	Completed bool `json:"completed"`
}

func (h *handlerImpl) HandleCompleteTodo(c *gin.Context) {
	userID, exists := getStringFromContext(c, userIDCtxKey)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	todoID := c.Param("id")
	if todoID == "" {
		h.logger.Error().Msg("no todo id provided")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var req completeTodoRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	todo, err := h.todos.SetTodoCompleted(c, services.SetTodoCompletedParams{
		ID:        todoID,
		UserID:    userID,
		Completed: req.Completed,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to set todo completion")
		switch {
		case errors.Is(err, services.ErrTodoNotFound):
			abort(c, newNotFoundError(services.ErrTodoNotFound.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.logger.Info().Msg("set todo completion")
	c.JSON(http.StatusOK, newGetTodoResponse(todo))
}

type reorderTodosRequest struct {
	OrderedIDs []string `json:"ordered_ids" binding:"required"`
}

func (h *handlerImpl) HandleReorderTodos(c *gin.Context) {
	userID, exists := getStringFromContext(c, userIDCtxKey)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var req reorderTodosRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	// Persistence problems here are deliberately swallowed by the
	// service: the client keeps its optimistic order either way.
	err = h.todos.ReorderTodos(c, userID, req.OrderedIDs)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to reorder todos")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	h.logger.Info().Msg("reordered todos")
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleDeleteTodo(c *gin.Context) {
	userID, exists := getStringFromContext(c, userIDCtxKey)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	todoID := c.Param("id")
	if todoID == "" {
		h.logger.Error().Msg("no todo id provided")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	err := h.todos.DeleteTodo(c, todoID, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to delete todo")
		switch {
		case errors.Is(err, services.ErrTodoNotFound):
			abort(c, newNotFoundError(services.ErrTodoNotFound.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.logger.Info().Msg("deleted todo")
	c.Status(http.StatusNoContent)
}
