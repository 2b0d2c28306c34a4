package analytics

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Summary is the shape every summary request resolves to, whatever
// the model actually returned.
type Summary struct {
	Summary         string   `json:"summary"`
	UrgentTasks     []string `json:"urgentTasks"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

const maxListItems = 5

// StripFence removes a single markdown code fence wrapped around the
// payload, if present. Models ignore the no-fencing instruction often
// enough that this is cheaper than retrying.
func StripFence(s string) string {
	if i := strings.Index(s, "```json"); i >= 0 {
		rest := s[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
		return strings.TrimSpace(rest)
	}
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(s)
}

// RepairSummary turns a raw model reply into a well-formed Summary.
// Unparseable or incomplete replies are discarded entirely and
// replaced with a deterministic fallback built from the stats; partial
// replies get their array fields coerced and capped. It never fails.
func RepairSummary(raw string, stats Stats, period Period) Summary {
	text := StripFence(raw)
	if text == "" {
		return fallbackSummary(stats, period)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil || parsed == nil {
		return fallbackSummary(stats, period)
	}

	summary, _ := parsed["summary"].(string)
	if summary == "" {
		return fallbackSummary(stats, period)
	}

	out := Summary{Summary: summary}

	if tasks, ok := toStringList(parsed["urgentTasks"]); ok {
		out.UrgentTasks = tasks
	} else {
		out.UrgentTasks = stats.UrgentTasks
	}
	if insights, ok := toStringList(parsed["insights"]); ok {
		out.Insights = insights
	} else {
		out.Insights = []string{"할 일 분석을 완료했습니다."}
	}
	if recs, ok := toStringList(parsed["recommendations"]); ok {
		out.Recommendations = recs
	} else {
		out.Recommendations = []string{"할 일을 관리하고 진행 상황을 확인하세요."}
	}
	return out
}

// NoTodosSummary is the canned reply for an empty collection; no
// model call is made for it.
func NoTodosSummary(period Period) Summary {
	summary := "이번 주 등록된 할 일이 없습니다."
	if period == PeriodToday {
		summary = "오늘 등록된 할 일이 없습니다."
	}
	return Summary{
		Summary:         summary,
		UrgentTasks:     []string{},
		Insights:        []string{"할 일을 추가하면 분석 결과를 확인할 수 있습니다."},
		Recommendations: []string{"새로운 할 일을 추가해보세요!"},
	}
}

func fallbackSummary(stats Stats, period Period) Summary {
	out := Summary{
		Summary: fmt.Sprintf("총 %d개의 할 일 중 %d개 완료(%d%%)",
			stats.TotalCount, stats.CompletedCount, stats.CompletionRate),
		UrgentTasks: stats.UrgentTasks,
	}

	if period == PeriodToday {
		out.Insights = append(out.Insights, "오늘 할 일을 확인하고 우선순위에 따라 정리하세요.")
	} else {
		out.Insights = append(out.Insights, "이번 주 할 일 분포를 확인하고 계획을 세워보세요.")
	}
	if stats.HighPriorityCount > 0 {
		out.Insights = append(out.Insights,
			fmt.Sprintf("긴급 작업 %d개가 완료를 기다리고 있습니다.", stats.HighPriorityCount))
	} else {
		out.Insights = append(out.Insights, "우선순위가 높은 작업이 없습니다.")
	}

	if len(stats.UrgentTasks) > 0 {
		out.Recommendations = append(out.Recommendations, "긴급한 작업부터 우선 처리하세요.")
	} else {
		out.Recommendations = append(out.Recommendations, "여유 시간을 활용해 미완료 작업을 정리하세요.")
	}
	out.Recommendations = append(out.Recommendations, "완료된 할 일을 체크하고 다음 단계를 계획하세요.")
	return out
}

// toStringList coerces a decoded JSON value into at most five strings.
// Non-string elements are stringified the way the source did, not
// dropped.
func toStringList(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if len(out) == maxListItems {
			break
		}
		switch s := item.(type) {
		case string:
			out = append(out, s)
		default:
			out = append(out, fmt.Sprint(item))
		}
	}
	return out, true
}
