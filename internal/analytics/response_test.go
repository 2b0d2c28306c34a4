package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmlee/todoflow/internal/models"
)

func sampleStats() Stats {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	todos := []TodoInput{
		{Title: "보고서 작성", Priority: models.PriorityHigh, Category: models.CategoryWork},
		{Title: "장보기", Priority: models.PriorityLow, Category: models.CategoryPersonal, Completed: true},
		{Title: "요가", Priority: models.PriorityMedium, Category: models.CategoryHealth, Completed: true},
	}
	return Aggregate(todos, PeriodToday, now)
}

func TestStripFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"summary":"ok"}`, `{"summary":"ok"}`},
		{"json fence", "```json\n{\"summary\":\"ok\"}\n```", `{"summary":"ok"}`},
		{"bare fence", "```\n{\"summary\":\"ok\"}\n```", `{"summary":"ok"}`},
		{"fence with preamble", "Here you go:\n```json\n{\"summary\":\"ok\"}\n```", `{"summary":"ok"}`},
		{"unterminated fence", "```json\n{\"summary\":\"ok\"}", `{"summary":"ok"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripFence(tc.in))
		})
	}
}

func TestRepairSummaryFallback(t *testing.T) {
	stats := sampleStats()

	malformed := []string{
		"",
		"not json at all",
		`{"summary":`,
		`[1,2,3]`,
		`{"urgentTasks":["x"]}`,
		`{"summary":""}`,
	}
	for _, raw := range malformed {
		t.Run(fmt.Sprintf("%.16q", raw), func(t *testing.T) {
			got := RepairSummary(raw, stats, PeriodToday)
			assert.Contains(t, got.Summary, fmt.Sprintf("총 %d개", stats.TotalCount))
			assert.Contains(t, got.Summary, fmt.Sprintf("%d개 완료", stats.CompletedCount))
			assert.Equal(t, stats.UrgentTasks, got.UrgentTasks)
			assert.NotEmpty(t, got.Insights)
			assert.NotEmpty(t, got.Recommendations)
		})
	}
}

func TestRepairSummaryFallbackTemplates(t *testing.T) {
	t.Run("pending high priority work is called out", func(t *testing.T) {
		stats := sampleStats()
		require.Equal(t, 1, stats.HighPriorityCount)

		got := RepairSummary("broken", stats, PeriodToday)
		assert.Contains(t, got.Insights[1], "긴급 작업 1개")
		assert.Equal(t, "긴급한 작업부터 우선 처리하세요.", got.Recommendations[0])
	})

	t.Run("week period swaps the first insight", func(t *testing.T) {
		got := RepairSummary("broken", sampleStats(), PeriodWeek)
		assert.Contains(t, got.Insights[0], "이번 주")
	})
}

func TestRepairSummaryCoercion(t *testing.T) {
	stats := sampleStats()

	t.Run("arrays truncated to five", func(t *testing.T) {
		raw := `{"summary":"좋아요","insights":["1","2","3","4","5","6","7"],"recommendations":["a"],"urgentTasks":[]}`
		got := RepairSummary(raw, stats, PeriodToday)
		assert.Equal(t, "좋아요", got.Summary)
		assert.Len(t, got.Insights, 5)
		assert.Equal(t, []string{"a"}, got.Recommendations)
		assert.Empty(t, got.UrgentTasks)
	})

	t.Run("missing arrays fall back", func(t *testing.T) {
		got := RepairSummary(`{"summary":"좋아요"}`, stats, PeriodToday)
		assert.Equal(t, stats.UrgentTasks, got.UrgentTasks)
		assert.Equal(t, []string{"할 일 분석을 완료했습니다."}, got.Insights)
		assert.Equal(t, []string{"할 일을 관리하고 진행 상황을 확인하세요."}, got.Recommendations)
	})

	t.Run("non-string elements are stringified", func(t *testing.T) {
		got := RepairSummary(`{"summary":"좋아요","insights":[1,true]}`, stats, PeriodToday)
		assert.Equal(t, []string{"1", "true"}, got.Insights)
	})

	t.Run("fenced reply is accepted", func(t *testing.T) {
		got := RepairSummary("```json\n{\"summary\":\"좋아요\"}\n```", stats, PeriodToday)
		assert.Equal(t, "좋아요", got.Summary)
	})
}

func TestNoTodosSummary(t *testing.T) {
	today := NoTodosSummary(PeriodToday)
	assert.Equal(t, "오늘 등록된 할 일이 없습니다.", today.Summary)
	assert.Empty(t, today.UrgentTasks)

	week := NoTodosSummary(PeriodWeek)
	assert.Equal(t, "이번 주 등록된 할 일이 없습니다.", week.Summary)
}

func TestBuildSummaryPrompt(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	todos := []TodoInput{
		{Title: "보고서 작성", Priority: models.PriorityHigh, Category: models.CategoryWork, DueDate: tp(now.Add(time.Hour))},
		{Title: "장보기", Priority: models.PriorityLow, Completed: true},
	}
	stats := Aggregate(todos, PeriodWeek, now)
	prompt := BuildSummaryPrompt(stats, todos, PeriodWeek, now)

	assert.Contains(t, prompt, "현재 날짜: 2025년 3월 10일")
	assert.Contains(t, prompt, "분석 기간: 이번 주 (월~일)")
	assert.Contains(t, prompt, "- 전체 할 일: 2개")
	assert.Contains(t, prompt, "=== 요일별 분석 ===")
	assert.Contains(t, prompt, "=== 상세 할 일 목록 ===")
	assert.Contains(t, prompt, "\"보고서 작성\"")
	assert.Contains(t, prompt, "마크다운 코드 블록 없이 순수 JSON")
	assert.Contains(t, prompt, "JSON만 응답하세요.")

	todayPrompt := BuildSummaryPrompt(stats, todos, PeriodToday, now)
	assert.Contains(t, todayPrompt, "분석 기간: 오늘 하루")
	assert.NotContains(t, todayPrompt, "=== 요일별 분석 ===")
}
