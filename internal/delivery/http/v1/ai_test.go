package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmlee/todoflow/internal/aiparse"
	"github.com/dmlee/todoflow/internal/analytics"
	"github.com/dmlee/todoflow/internal/services"
)

type stubSummaryService struct {
	summarizeCalls int
	parseCalls     int

	summary    *analytics.Summary
	summarized []analytics.TodoInput
	parsed     []aiparse.NormalizedTodo
	err        error
}

func (s *stubSummaryService) Summarize(_ context.Context, todos []analytics.TodoInput, _ analytics.Period) (*analytics.Summary, error) {
	s.summarizeCalls++
	s.summarized = todos
	if s.err != nil {
		return nil, s.err
	}
	return s.summary, nil
}

func (s *stubSummaryService) ParseTodo(_ context.Context, _ string) ([]aiparse.NormalizedTodo, error) {
	s.parseCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.parsed, nil
}

func newAITestRouter(stub *stubSummaryService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := New(zerolog.Nop(), nil, nil, nil, stub)
	router := gin.New()
	router.POST("/api/v1/ai/summary", handler.HandleSummary)
	router.POST("/api/v1/ai/parse-todo", handler.HandleParseTodo)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleSummary(t *testing.T) {
	t.Run("empty todos short-circuit without a model call", func(t *testing.T) {
		stub := &stubSummaryService{}
		router := newAITestRouter(stub)

		w := postJSON(t, router, "/api/v1/ai/summary", `{"todos": [], "period": "today"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, stub.summarizeCalls)
		assert.Contains(t, w.Body.String(), "오늘 등록된 할 일이 없습니다.")
	})

	t.Run("missing todos is a bad request", func(t *testing.T) {
		stub := &stubSummaryService{}
		router := newAITestRouter(stub)

		w := postJSON(t, router, "/api/v1/ai/summary", `{"period": "today"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "할 일 목록이 필요합니다.")
		assert.Zero(t, stub.summarizeCalls)
	})

	t.Run("invalid period is a bad request", func(t *testing.T) {
		stub := &stubSummaryService{}
		router := newAITestRouter(stub)

		w := postJSON(t, router, "/api/v1/ai/summary", `{"todos": [{"id": "1", "title": "report"}], "period": "month"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "'today' 또는 'week'")
		assert.Zero(t, stub.summarizeCalls)
	})

	t.Run("missing period defaults to today", func(t *testing.T) {
		stub := &stubSummaryService{
			summary: &analytics.Summary{Summary: "ok"},
		}
		router := newAITestRouter(stub)

		w := postJSON(t, router, "/api/v1/ai/summary", `{"todos": [{"id": "1", "title": "report"}]}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, stub.summarizeCalls)
		require.Len(t, stub.summarized, 1)
		assert.Equal(t, "report", stub.summarized[0].Title)
	})

	t.Run("rate limit errors map to 429", func(t *testing.T) {
		stub := &stubSummaryService{err: services.ErrAIRateLimited}
		router := newAITestRouter(stub)

		w := postJSON(t, router, "/api/v1/ai/summary", `{"todos": [{"id": "1", "title": "report"}], "period": "week"}`)

		require.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "사용 한도가 초과되었습니다")
	})

	t.Run("missing api key maps to 500", func(t *testing.T) {
		stub := &stubSummaryService{err: services.ErrAINotConfigured}
		router := newAITestRouter(stub)

		w := postJSON(t, router, "/api/v1/ai/summary", `{"todos": [{"id": "1", "title": "report"}], "period": "week"}`)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "OPENAI_API_KEY")
	})
}

func TestHandleParseTodo(t *testing.T) {
	t.Run("valid text reaches the service", func(t *testing.T) {
		stub := &stubSummaryService{
			parsed: []aiparse.NormalizedTodo{{
				Title:    "이메일 보내기",
				Priority: "medium",
				Category: "업무",
			}},
		}
		router := newAITestRouter(stub)

		w := postJSON(t, router, "/api/v1/ai/parse-todo", `{"text": "내일 이메일 보내기"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, stub.parseCalls)
		assert.Contains(t, w.Body.String(), "이메일 보내기")
	})

	t.Run("oversized text is rejected before any model call", func(t *testing.T) {
		stub := &stubSummaryService{}
		router := newAITestRouter(stub)

		long := strings.Repeat("가", 501)
		w := postJSON(t, router, "/api/v1/ai/parse-todo", `{"text": "`+long+`"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "500자 이하")
		assert.Zero(t, stub.parseCalls)
	})

	t.Run("missing text is a bad request", func(t *testing.T) {
		stub := &stubSummaryService{}
		router := newAITestRouter(stub)

		w := postJSON(t, router, "/api/v1/ai/parse-todo", `{}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "입력 텍스트가 필요합니다.")
		assert.Zero(t, stub.parseCalls)
	})

	t.Run("malformed model reply maps to 400", func(t *testing.T) {
		stub := &stubSummaryService{err: services.ErrAIMalformedReply}
		router := newAITestRouter(stub)

		w := postJSON(t, router, "/api/v1/ai/parse-todo", `{"text": "내일 보고서 작성"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "형식이 올바르지 않습니다")
	})
}

func TestRateLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(1, 2)
	router := gin.New()
	router.GET("/limited", limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req, err := http.NewRequest(http.MethodGet, "/limited", nil)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}
