package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/dmlee/todoflow/internal/aiparse"
	"github.com/dmlee/todoflow/internal/analytics"
)

// CompletionClient is the outbound text-generation boundary.
// *openai.Client satisfies it; tests substitute a stub.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

const (
	summaryTemperature = 0.7
	parseTemperature   = 0.3
)

type summaryServiceImpl struct {
	logger  zerolog.Logger
	client  CompletionClient
	model   string
	timeout time.Duration
	now     func() time.Time
}

func NewSummaryService(
	logger zerolog.Logger,
	client CompletionClient,
	model string,
	timeout time.Duration,
) SummaryService {
	return &summaryServiceImpl{
		logger:  logger,
		client:  client,
		model:   model,
		timeout: timeout,
		now:     time.Now,
	}
}

func (s *summaryServiceImpl) Summarize(ctx context.Context, todos []analytics.TodoInput, period analytics.Period) (*analytics.Summary, error) {
	if s.client == nil {
		s.logger.Error().Msg("completion client not configured")
		return nil, ErrAINotConfigured
	}

	now := s.now()
	stats := analytics.Aggregate(todos, period, now)
	prompt := analytics.BuildSummaryPrompt(stats, todos, period, now)

	raw, err := s.complete(ctx, analytics.SummarySystemPrompt, prompt, summaryTemperature)
	if err != nil {
		return nil, err
	}

	// The reply is untrusted: anything unparseable or incomplete is
	// repaired into a deterministic fallback instead of surfacing.
	summary := analytics.RepairSummary(raw, stats, period)
	s.logger.Info().
		Int("todos", len(todos)).
		Str("period", string(period)).
		Msg("generated summary")
	return &summary, nil
}

func (s *summaryServiceImpl) ParseTodo(ctx context.Context, text string) ([]aiparse.NormalizedTodo, error) {
	if s.client == nil {
		s.logger.Error().Msg("completion client not configured")
		return nil, ErrAINotConfigured
	}

	now := s.now()
	prompt := aiparse.BuildParsePrompt(text, now)

	raw, err := s.complete(ctx, aiparse.ParseSystemPrompt, prompt, parseTemperature)
	if err != nil {
		return nil, err
	}

	candidates, err := aiparse.DecodeReply(raw)
	if err != nil {
		// No structural fallback here: titles cannot be synthesized.
		s.logger.Error().
			Err(err).
			Msg("failed to decode parse reply")
		if errors.Is(err, aiparse.ErrNoTodos) {
			return nil, ErrAIEmptyReply
		}
		return nil, ErrAIMalformedReply
	}

	todos := aiparse.Normalize(candidates, text, now)
	s.logger.Info().
		Int("count", len(todos)).
		Msg("parsed todos from text")
	return todos, nil
}

func (s *summaryServiceImpl) complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("model", s.model).
			Msg("completion request failed")
		return "", classifyCompletionError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		s.logger.Error().Msg("completion returned no content")
		return "", ErrAIEmptyReply
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// classifyCompletionError buckets provider failures into the small
// set of user-facing categories. The status code decides; message
// substrings catch providers that wrap errors without one.
func classifyCompletionError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401:
			return ErrAIUnauthorized
		case 429:
			return ErrAIRateLimited
		case 400, 404:
			return ErrAIBadRequest
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "authentication"):
		return ErrAIUnauthorized
	case strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit"):
		return ErrAIRateLimited
	case strings.Contains(msg, "model") && strings.Contains(msg, "not found"):
		return ErrAIBadRequest
	case strings.Contains(msg, "400") || strings.Contains(msg, "bad request"):
		return ErrAIBadRequest
	}
	return ErrAIUnavailable
}
