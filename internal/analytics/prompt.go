package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmlee/todoflow/internal/models"
)

// SummarySystemPrompt pins the model to JSON-only Korean analysis.
const SummarySystemPrompt = "You are a helpful assistant that analyzes todo data and provides insights in Korean. Always respond with valid JSON only, no markdown or explanations."

func periodLabel(period Period) string {
	if period == PeriodToday {
		return "오늘"
	}
	return "이번 주"
}

// BuildSummaryPrompt renders the analysis request document: the
// aggregated statistics, the raw todo list and the instruction set
// demanding a fixed JSON reply without markdown fencing.
func BuildSummaryPrompt(stats Stats, todos []TodoInput, period Period, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "당신은 할 일 관리 전문가입니다. 다음은 %s 사용자의 할 일 데이터입니다.\n\n", periodLabel(period))

	fmt.Fprintf(&b, "=== 현재 상황 ===\n현재 날짜: %d년 %d월 %d일\n", now.Year(), int(now.Month()), now.Day())
	if period == PeriodToday {
		b.WriteString("분석 기간: 오늘 하루\n\n")
	} else {
		b.WriteString("분석 기간: 이번 주 (월~일)\n\n")
	}

	b.WriteString("=== 기본 통계 ===\n")
	fmt.Fprintf(&b, "- 전체 할 일: %d개\n", stats.TotalCount)
	fmt.Fprintf(&b, "- 완료된 할 일: %d개\n", stats.CompletedCount)
	fmt.Fprintf(&b, "- 미완료 할 일: %d개\n", stats.TotalCount-stats.CompletedCount)
	fmt.Fprintf(&b, "- 전체 완료율: %d%%\n", stats.CompletionRate)
	fmt.Fprintf(&b, "- 미완료 긴급 작업: %d개\n", stats.HighPriorityCount)
	fmt.Fprintf(&b, "- 지연된 작업: %d개\n", stats.OverdueCount)
	fmt.Fprintf(&b, "- 마감일 준수율: %d%%\n\n", stats.OnTimeRate)

	b.WriteString("=== 우선순위별 완료율 분석 ===\n")
	fmt.Fprintf(&b, "- 높음: %d/%d개 완료 (%d%%)\n", stats.High.Completed, stats.High.Total, stats.High.Rate)
	fmt.Fprintf(&b, "- 중간: %d/%d개 완료 (%d%%)\n", stats.Medium.Completed, stats.Medium.Total, stats.Medium.Rate)
	fmt.Fprintf(&b, "- 낮음: %d/%d개 완료 (%d%%)\n\n", stats.Low.Completed, stats.Low.Total, stats.Low.Rate)

	b.WriteString("=== 카테고리별 통계 ===\n")
	for _, cat := range stats.Categories {
		fmt.Fprintf(&b, "- %s: %d/%d개 완료 (%d%%)\n", cat.Name, cat.Completed, cat.Total, cat.Rate)
	}

	b.WriteString("\n=== 시간대별 업무 집중도 (미완료 작업 기준) ===\n")
	for _, slot := range stats.TimeSlots {
		fmt.Fprintf(&b, "- %s (%s): %d개\n", slot.Name, slot.Hours, slot.Count)
	}

	if period == PeriodWeek && len(stats.DaysOfWeek) > 0 {
		b.WriteString("\n=== 요일별 분석 ===\n")
		for _, day := range stats.DaysOfWeek {
			fmt.Fprintf(&b, "- %s: %d/%d개 완료\n", day.Name, day.Completed, day.Total)
		}
	}

	b.WriteString("\n=== 생산성 패턴 분석 ===\n")
	fmt.Fprintf(&b, "- 가장 많이 완료한 카테고리: %s\n", stats.MostCompletedCategory)
	fmt.Fprintf(&b, "- 자주 미루는 카테고리: %s", stats.MostDelayedCategory)
	if stats.MostDelayedCategory != NoCategory {
		b.WriteString(" (지연된 작업 기준)")
	}

	b.WriteString("\n\n=== 긴급 작업 목록 ===\n")
	if len(stats.UrgentTasks) == 0 {
		b.WriteString("없음\n")
	} else {
		for i, title := range stats.UrgentTasks {
			fmt.Fprintf(&b, "%d. %s\n", i+1, title)
		}
	}

	b.WriteString("\n=== 상세 할 일 목록 ===\n")
	for i, todo := range todos {
		writeTodoLine(&b, i, todo)
	}

	b.WriteString("\n=== 분석 요청 사항 ===\n\n위 데이터를 심층 분석하여 다음 JSON 형식으로 응답해주세요:\n\n")
	if period == PeriodToday {
		b.WriteString(`{
  "summary": "전체 요약 문장 (완료율, 주요 성과 포함, 오늘의 집중도와 남은 할 일)",
`)
	} else {
		b.WriteString(`{
  "summary": "전체 요약 문장 (완료율, 주요 성과 포함, 이번 주 패턴)",
`)
	}
	b.WriteString(`  "urgentTasks": ["긴급 작업 제목 1", "긴급 작업 제목 2"],
  "insights": [
    "인사이트 1 (구체적이고 실행 가능한 분석)",
    "인사이트 2",
    "인사이트 3 (최대 5개)"
  ],
  "recommendations": [
    "추천 1 (구체적이고 실행 가능한 조언)",
    "추천 2 (최대 5개)"
  ]
}

=== 분석 가이드라인 ===

1. 완료율 분석:
   - 우선순위별 완료 패턴을 분석 (높은 우선순위를 잘 처리하는지, 낮은 우선순위에 집중하는지)
   - 카테고리별 완료 패턴 분석 (어떤 분야에서 생산성이 높은지)
`)
	if period == PeriodWeek {
		b.WriteString("   - 요일별 패턴을 분석하여 가장 생산적인 요일 도출\n")
	} else {
		b.WriteString("   - 오늘의 집중도와 효율성 분석\n")
	}

	fmt.Fprintf(&b, `
2. 시간 관리 분석:
   - 마감일 준수율(%d%%)을 기반으로 시간 관리 능력 평가
   - 시간대별 업무 집중도 분석 (어느 시간대에 할 일이 집중되어 있는지)
   - 지연된 작업(%d개)의 패턴 분석
   - 연기되는 작업의 공통 특징 파악

3. 생산성 패턴:
   - 가장 많이 완료한 카테고리(%s)의 특징 분석
   - 자주 미루는 카테고리(%s)의 원인 추론
`, stats.OnTimeRate, stats.OverdueCount, stats.MostCompletedCategory, stats.MostDelayedCategory)
	if period == PeriodWeek {
		b.WriteString("   - 요일별 패턴에서 가장 생산적인 요일과 시간대 도출\n")
	} else {
		b.WriteString("   - 시간대별 집중도에서 가장 효율적인 시간대 분석\n")
	}
	b.WriteString("   - 완료하기 쉬운 작업과 미루기 쉬운 작업의 차이점 분석\n")

	b.WriteString(`
4. 실행 가능한 추천:
   - 구체적인 시간 관리 팁 제공 (예: "오후 시간대 할 일을 오전으로 2개씩 분산하기")
   - 우선순위 조정 제안 (데이터 기반)
   - 업무 과부하를 줄이는 분산 전략 (시간대별, 요일별 분산)
   - 즉시 실행 가능한 액션 아이템

5. 긍정적인 피드백:
`)
	fmt.Fprintf(&b, "   - 잘하고 있는 부분을 구체적으로 강조 (예: \"높은 우선순위 작업을 %d%% 완료하셨어요!\")\n", stats.High.Rate)
	b.WriteString(`   - 개선점을 격려하는 긍정적인 톤으로 제시
   - 동기부여가 되는 메시지 포함

6. 기간별 차별화:
`)
	if period == PeriodToday {
		b.WriteString("   - 오늘의 요약: 당일 집중도 분석, 남은 시간 활용 방안, 긴급 작업 우선순위 제시\n")
	} else {
		b.WriteString("   - 이번 주 요약: 주간 패턴 분석, 가장 생산적인 요일/시간대, 다음 주 계획 제안, 주간 완료율 평가\n")
	}

	b.WriteString(`
7. 문체:
   - 자연스럽고 친근한 한국어
   - 구체적인 수치와 데이터를 포함
   - 이해하기 쉽고 바로 실천할 수 있는 문장
   - 격려와 동기부여가 담긴 톤

=== 중요 규칙 ===
- 반드시 유효한 JSON 형식만 응답 (마크다운 코드 블록 없이 순수 JSON)
- 모든 필수 필드 포함 (summary, urgentTasks, insights, recommendations)
- insights와 recommendations는 각각 3-5개로 구성
- 긍정적이면서도 구체적인 피드백 제공
- 데이터 기반의 정확한 분석

JSON만 응답하세요.`)

	return b.String()
}

func writeTodoLine(b *strings.Builder, i int, todo TodoInput) {
	status := "○ 미완료"
	if todo.Completed {
		status = "✓ 완료"
	}

	priority := "중간"
	switch todo.Priority {
	case models.PriorityHigh:
		priority = "높음"
	case models.PriorityLow:
		priority = "낮음"
	}

	dueInfo := ""
	if todo.DueDate != nil {
		dueInfo = fmt.Sprintf(", 마감: %d월 %d일 %02d:%02d",
			int(todo.DueDate.Month()), todo.DueDate.Day(),
			todo.DueDate.Hour(), todo.DueDate.Minute())
	}
	createdInfo := ""
	if todo.CreatedDate != nil {
		createdInfo = fmt.Sprintf(", 생성: %d월 %d일",
			int(todo.CreatedDate.Month()), todo.CreatedDate.Day())
	}

	fmt.Fprintf(b, "%d. [%s] %q (우선순위: %s, 카테고리: %s%s%s)\n",
		i+1, status, todo.Title, priority, categoryOf(todo), dueInfo, createdInfo)
}
