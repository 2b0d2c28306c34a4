package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmlee/todoflow/internal/analytics"
	"github.com/dmlee/todoflow/internal/models"
)

type stubCompletionClient struct {
	calls   int
	lastReq openai.ChatCompletionRequest
	content string
	err     error
}

func (c *stubCompletionClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.calls++
	c.lastReq = req
	if c.err != nil {
		return openai.ChatCompletionResponse{}, c.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: c.content}},
		},
	}, nil
}

func newTestSummaryService(client CompletionClient) *summaryServiceImpl {
	return &summaryServiceImpl{
		logger:  zerolog.Nop(),
		client:  client,
		model:   "gpt-4o-mini",
		timeout: time.Second,
		now: func() time.Time {
			return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
		},
	}
}

func TestSummarize(t *testing.T) {
	todos := []analytics.TodoInput{
		{Title: "보고서 작성", Priority: models.PriorityHigh, Category: models.CategoryWork},
		{Title: "장보기", Priority: models.PriorityLow, Completed: true},
	}

	t.Run("valid reply passes through", func(t *testing.T) {
		client := &stubCompletionClient{content: `{"summary":"잘하고 있어요","insights":["a","b","c"],"recommendations":["d"],"urgentTasks":["보고서 작성"]}`}
		svc := newTestSummaryService(client)

		got, err := svc.Summarize(context.Background(), todos, analytics.PeriodToday)
		require.NoError(t, err)
		assert.Equal(t, "잘하고 있어요", got.Summary)
		assert.Equal(t, 1, client.calls)
		assert.Equal(t, float32(0.7), client.lastReq.Temperature)
		require.NotNil(t, client.lastReq.ResponseFormat)
		assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, client.lastReq.ResponseFormat.Type)
	})

	t.Run("malformed reply is repaired, not surfaced", func(t *testing.T) {
		client := &stubCompletionClient{content: `{"summary": truncated`}
		svc := newTestSummaryService(client)

		got, err := svc.Summarize(context.Background(), todos, analytics.PeriodToday)
		require.NoError(t, err)
		assert.Contains(t, got.Summary, "총 2개")
		assert.Contains(t, got.Summary, "1개 완료")
	})

	t.Run("nil client reports configuration error", func(t *testing.T) {
		svc := newTestSummaryService(nil)
		_, err := svc.Summarize(context.Background(), todos, analytics.PeriodToday)
		assert.ErrorIs(t, err, ErrAINotConfigured)
	})
}

func TestParseTodo(t *testing.T) {
	t.Run("reply is normalized", func(t *testing.T) {
		client := &stubCompletionClient{content: `{"todos":[{"title":"이메일 보내기","description":"이메일을 작성하고 전송합니다.","due_date":null,"due_time":"09:00","priority":"medium","category":"업무"}]}`}
		svc := newTestSummaryService(client)

		got, err := svc.ParseTodo(context.Background(), "이메일 보내기")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "이메일 보내기", got[0].Title)
		assert.Equal(t, models.PriorityMedium, got[0].Priority)
		assert.Contains(t, models.Categories, got[0].Category)
		assert.Nil(t, got[0].DueDate)
		assert.False(t, got[0].Completed)
		assert.Equal(t, float32(0.3), client.lastReq.Temperature)
	})

	t.Run("malformed reply is a hard error", func(t *testing.T) {
		client := &stubCompletionClient{content: "not json"}
		svc := newTestSummaryService(client)

		_, err := svc.ParseTodo(context.Background(), "이메일 보내기")
		assert.ErrorIs(t, err, ErrAIMalformedReply)
	})

	t.Run("empty todos reply is a hard error", func(t *testing.T) {
		client := &stubCompletionClient{content: `{"todos":[]}`}
		svc := newTestSummaryService(client)

		_, err := svc.ParseTodo(context.Background(), "이메일 보내기")
		assert.ErrorIs(t, err, ErrAIEmptyReply)
	})
}

func TestClassifyCompletionError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"api status 401", &openai.APIError{HTTPStatusCode: 401}, ErrAIUnauthorized},
		{"api status 429", &openai.APIError{HTTPStatusCode: 429}, ErrAIRateLimited},
		{"api status 400", &openai.APIError{HTTPStatusCode: 400}, ErrAIBadRequest},
		{"model not found", &openai.APIError{HTTPStatusCode: 404}, ErrAIBadRequest},
		{"quota message", errors.New("you exceeded your current quota"), ErrAIRateLimited},
		{"auth message", errors.New("incorrect api key provided"), ErrAIUnauthorized},
		{"unknown", errors.New("connection reset by peer"), ErrAIUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyCompletionError(tc.err), tc.want)
		})
	}
}

func TestSummarizeSurfacesCallErrors(t *testing.T) {
	client := &stubCompletionClient{err: &openai.APIError{HTTPStatusCode: 429, Message: "rate limit"}}
	svc := newTestSummaryService(client)

	_, err := svc.Summarize(context.Background(), []analytics.TodoInput{
		{Title: fmt.Sprintf("할 일 %d", 1), Priority: models.PriorityMedium},
	}, analytics.PeriodWeek)
	assert.ErrorIs(t, err, ErrAIRateLimited)
}
