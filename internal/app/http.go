package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dmlee/todoflow/internal/config"
	v1 "github.com/dmlee/todoflow/internal/delivery/http/v1"
	"github.com/dmlee/todoflow/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     httpCfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter) {
	cfg := config.Global()
	jwtCfg := cfg.JWT

	authService := services.NewAuthService(
		globalLogger,
		globalPostgresPool,
		jwtCfg.Issuer,
		[]byte(jwtCfg.SigningKey),
		jwtCfg.AccessTokenTTL,
		jwtCfg.RefreshTokenTTL,
	)
	sessionService := services.NewSessionService(globalLogger, globalPostgresPool)
	todoService := services.NewTodoService(globalLogger, globalPostgresPool, globalHasPositionColumn)
	summaryService := services.NewSummaryService(
		globalLogger,
		globalCompletionClient,
		cfg.OpenAI.Model,
		cfg.OpenAI.RequestTimeout,
	)

	v1Handler := v1.New(
		globalLogger,
		authService,
		sessionService,
		todoService,
		summaryService,
	)
	router = router.Group("/api/v1")

	authRouter := router.Group("/auth")
	authRouter.POST("/login", v1Handler.HandleLogin)
	authRouter.POST("/refresh", v1Handler.HandleRefresh)
	authRouter.POST("/register", v1Handler.HandleRegister)
	authRouter.POST("/logout", v1Handler.HandleAuthMiddleware, v1Handler.HandleLogout)

	todosRouter := router.Group("/todos", v1Handler.HandleAuthMiddleware)
	todosRouter.POST("", v1Handler.HandleCreateTodo)
	todosRouter.GET("", v1Handler.HandleGetTodos)
	todosRouter.PUT("/reorder", v1Handler.HandleReorderTodos)
	todosRouter.PUT("/:id", v1Handler.HandleUpdateTodo)
	todosRouter.PATCH("/:id/complete", v1Handler.HandleCompleteTodo)
	todosRouter.DELETE("/:id", v1Handler.HandleDeleteTodo)

	aiLimiter := v1.NewRateLimiter(cfg.HTTP.AIRateLimit, cfg.HTTP.AIRateBurst)
	aiRouter := router.Group("/ai", v1Handler.HandleAuthMiddleware, aiLimiter.Middleware())
	aiRouter.POST("/summary", v1Handler.HandleSummary)
	aiRouter.POST("/parse-todo", v1Handler.HandleParseTodo)
}
