package aiparse

import (
	"fmt"
	"strings"
	"time"
)

// ParseSystemPrompt pins the model to the todos-array JSON contract.
const ParseSystemPrompt = "You are a helpful assistant that converts natural language input into structured JSON data for a todo management system. For complex tasks, automatically break them down into multiple step-by-step todos. Always respond with valid JSON only, no markdown or explanations. The response must be a JSON object with a 'todos' array containing one or more todo items."

var koreanDayNames = []string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

func dateOnly(t time.Time) string {
	return t.Format("2006-01-02")
}

// thisWeekDay resolves "이번 주 X요일" to the nearest such weekday
// strictly after today; today's own weekday rolls to next week.
func thisWeekDay(now time.Time, target int) string {
	days := (target - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return dateOnly(now.AddDate(0, 0, days))
}

func nextWeekDay(now time.Time, target int) string {
	days := (target - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 14
	} else {
		days += 7
	}
	return dateOnly(now.AddDate(0, 0, days))
}

// BuildParsePrompt renders the structured-conversion request for a
// preprocessed input text, with all relative dates resolved against
// now so the model never has to do calendar arithmetic.
func BuildParsePrompt(text string, now time.Time) string {
	tomorrow := dateOnly(now.AddDate(0, 0, 1))
	dayAfter := dateOnly(now.AddDate(0, 0, 2))

	var b strings.Builder
	b.WriteString("다음 자연어 입력을 할 일 관리 시스템의 구조화된 데이터로 변환해주세요.\n\n")
	fmt.Fprintf(&b, "현재 날짜: %d년 %d월 %d일 (%s, %s)\n\n",
		now.Year(), int(now.Month()), now.Day(), dateOnly(now), koreanDayNames[int(now.Weekday())])
	fmt.Fprintf(&b, "입력 텍스트: %q\n\n", text)

	b.WriteString(`=== 중요: 할 일 분할 규칙 ===
입력된 할 일이 복잡하거나 여러 단계가 필요한 경우, 자동으로 단계별로 나눠서 제공하세요.

**단일 할 일로 반환하는 경우:**
- 단순하고 즉시 실행 가능한 할 일
- 예: "이메일 보내기", "책 읽기", "친구에게 전화하기", "운동하기"

**여러 단계로 나눠서 반환하는 경우:**
- 복잡하고 여러 단계가 필요한 할 일
- 예: "프로젝트 완료하기" → ["1단계: 요구사항 분석", "2단계: 설계", "3단계: 구현", "4단계: 테스트"]
- 예: "회의 준비하기" → ["1단계: 자료 수집", "2단계: 발표 자료 작성", "3단계: 리허설"]
- 예: "보고서 작성하기" → ["1단계: 자료 조사", "2단계: 초안 작성", "3단계: 검토 및 수정"]

**분할 기준:**
- 입력에 "준비", "완료", "작성", "만들기", "구현" 등의 복잡한 동사가 포함된 경우
- 입력에 여러 단계가 명시된 경우 (예: "1. ... 2. ... 3. ...")
- 입력이 추상적이고 구체적인 행동이 필요한 경우
- 각 단계는 독립적으로 실행 가능하고, 순서가 있는 경우 순서대로 배치

반드시 다음 JSON 형식으로만 응답하세요 (다른 설명이나 마크다운 없이 순수 JSON만):

{
  "todos": [
    {
      "title": "할 일 제목 (여러 단계인 경우 \"1단계: ...\" 형식)",
      "description": "상세 설명",
      "due_date": "YYYY-MM-DD 또는 null",
      "due_time": "HH:MM",
      "priority": "high" | "medium" | "low",
      "category": "업무" | "개인" | "건강" | "학습" | "기타"
    }
  ]
}

=== 필수 규칙 (반드시 준수) ===

1. 날짜 처리 규칙:
`)
	fmt.Fprintf(&b, "   - \"오늘\" → %s\n", dateOnly(now))
	fmt.Fprintf(&b, "   - \"내일\" → %s\n", tomorrow)
	fmt.Fprintf(&b, "   - \"모레\" → %s\n", dayAfter)
	for day := 1; day <= 7; day++ {
		target := day % 7
		fmt.Fprintf(&b, "   - \"이번 주 %s\" → %s\n", koreanDayNames[target], thisWeekDay(now, target))
	}
	for day := 1; day <= 7; day++ {
		target := day % 7
		fmt.Fprintf(&b, "   - \"다음 주 %s\" → %s\n", koreanDayNames[target], nextWeekDay(now, target))
	}
	b.WriteString(`   - 날짜가 명시되지 않으면 null

2. 시간 처리 규칙:
   - "아침" → "09:00"
   - "점심" → "12:00"
   - "오후" → "14:00"
   - "저녁" → "18:00"
   - "밤" → "21:00"
   - "오전 9시" → "09:00", "오전 10시" → "10:00"
   - "오후 3시" → "15:00", "오후 3시 30분" → "15:30"
   - 구체적인 시간이 없으면 "09:00" (기본값)

3. 우선순위 키워드 (정확히 매칭):
   - "high": "급하게", "중요한", "빨리", "꼭", "반드시" 키워드가 포함된 경우
   - "medium": "보통", "적당히" 키워드가 있거나 키워드가 없는 경우
   - "low": "여유롭게", "천천히", "언젠가" 키워드가 포함된 경우

4. 카테고리 분류 키워드 (정확히 매칭):
   - "업무": "회의", "보고서", "프로젝트", "업무" 키워드가 포함된 경우
   - "개인": "쇼핑", "친구", "가족", "개인" 키워드가 포함된 경우
   - "건강": "운동", "병원", "건강", "요가" 키워드가 포함된 경우
   - "학습": "공부", "책", "강의", "학습" 키워드가 포함된 경우
   - 위 키워드가 없으면 "기타"

5. 출력 양식:
   - 반드시 유효한 JSON 형식만 응답
   - 마크다운 코드 블록, 설명, 주석 등 없이 순수 JSON만
   - 모든 필드는 반드시 포함되어야 함

제목은 핵심 키워드만 추출하여 간결하게 작성하고, 설명은 원본 텍스트를 기반으로 작성하세요.

**예시:**

입력: "이메일 보내기"
출력:
{
  "todos": [
    {
      "title": "이메일 보내기",
      "description": "이메일을 작성하고 전송합니다.",
      "due_date": null,
      "due_time": "09:00",
      "priority": "medium",
      "category": "업무"
    }
  ]
}

`)
	fmt.Fprintf(&b, `입력: "내일까지 중요한 프로젝트 완료하기"
출력:
{
  "todos": [
    {
      "title": "1단계: 프로젝트 요구사항 분석",
      "description": "프로젝트 목표와 요구사항을 정리하고 우선순위를 결정합니다.",
      "due_date": "%[1]s",
      "due_time": "09:00",
      "priority": "high",
      "category": "업무"
    },
    {
      "title": "2단계: 프로젝트 설계 및 계획 수립",
      "description": "전체 구조를 설계하고 세부 일정을 계획합니다.",
      "due_date": "%[1]s",
      "due_time": "12:00",
      "priority": "high",
      "category": "업무"
    },
    {
      "title": "3단계: 프로젝트 구현",
      "description": "설계한 계획에 따라 실제 작업을 수행합니다.",
      "due_date": "%[1]s",
      "due_time": "15:00",
      "priority": "high",
      "category": "업무"
    },
    {
      "title": "4단계: 프로젝트 검토 및 마무리",
      "description": "완성된 프로젝트를 검토하고 최종 점검을 합니다.",
      "due_date": "%[1]s",
      "due_time": "18:00",
      "priority": "high",
      "category": "업무"
    }
  ]
}

`, tomorrow)
	b.WriteString("반드시 todos 배열로 응답하고, 각 할 일은 독립적으로 실행 가능해야 합니다.")
	return b.String()
}
