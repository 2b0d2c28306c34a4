package app

import (
	openai "github.com/sashabaranov/go-openai"

	"github.com/dmlee/todoflow/internal/config"
	"github.com/dmlee/todoflow/internal/services"
)

// globalCompletionClient stays nil when OPENAI_API_KEY is unset; the
// AI endpoints then answer with a configuration error instead of the
// whole server refusing to start.
var globalCompletionClient services.CompletionClient

func InitOpenAI() {
	cfg := config.Global().OpenAI
	if cfg.APIKey == "" {
		globalLogger.Warn().Msg("openai api key not set, AI endpoints disabled")
		return
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	globalCompletionClient = openai.NewClientWithConfig(clientConfig)

	globalLogger.Info().
		Str("model", cfg.Model).
		Msg("initialized openai client")
}
