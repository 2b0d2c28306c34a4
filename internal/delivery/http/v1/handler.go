package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dmlee/todoflow/internal/services"
)

type Handler interface {
	HandleLogin(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleRegister(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleCreateTodo(c *gin.Context)
	HandleGetTodos(c *gin.Context)
	HandleUpdateTodo(c *gin.Context)
	HandleCompleteTodo(c *gin.Context)
	HandleReorderTodos(c *gin.Context)
	HandleDeleteTodo(c *gin.Context)

	HandleSummary(c *gin.Context)
	HandleParseTodo(c *gin.Context)
}

type handlerImpl struct {
	logger   zerolog.Logger
	auth     services.AuthService
	sessions services.SessionService
	todos    services.TodoService
	summary  services.SummaryService
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	sessionService services.SessionService,
	todoService services.TodoService,
	summaryService services.SummaryService,
) Handler {
	return &handlerImpl{
		logger:   logger,
		auth:     authService,
		sessions: sessionService,
		todos:    todoService,
		summary:  summaryService,
	}
}
