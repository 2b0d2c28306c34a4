// Package analytics reduces a todo collection into the fixed-shape
// statistics that feed the productivity-summary prompt, renders that
// prompt and repairs the model's reply. Everything here is pure.
package analytics

import (
	"math"
	"time"

	"github.com/dmlee/todoflow/internal/models"
)

type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
)

func (p Period) Valid() bool {
	return p == PeriodToday || p == PeriodWeek
}

// NoCategory is reported when a pattern signal has no source data.
const NoCategory = "없음"

// TodoInput is the caller-provided todo shape for summary analysis.
// The collection is expected to be pre-filtered to the period.
type TodoInput struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority"`
	Category    string     `json:"category"`
	Completed   bool       `json:"completed"`
	CreatedDate *time.Time `json:"created_date,omitempty"`
}

type RateStat struct {
	Total     int
	Completed int
	Rate      int
}

type CategoryStat struct {
	Name string
	RateStat
}

type TimeSlotStat struct {
	Name  string
	Hours string
	Count int
}

type DayOfWeekStat struct {
	Name      string
	Total     int
	Completed int
}

type Stats struct {
	TotalCount     int
	CompletedCount int
	CompletionRate int

	High   RateStat
	Medium RateStat
	Low    RateStat

	HighPriorityCount int
	OverdueCount      int
	OnTimeRate        int

	// Categories preserves first-appearance order of the input.
	Categories []CategoryStat
	// TimeSlots is always the five fixed bands, in order.
	TimeSlots []TimeSlotStat
	// DaysOfWeek is only populated for PeriodWeek, Sunday first,
	// days without due-dated todos omitted.
	DaysOfWeek []DayOfWeekStat

	MostCompletedCategory string
	MostDelayedCategory   string

	// UrgentTasks holds up to five titles of uncompleted todos that
	// are high priority or due within a day, in input order.
	UrgentTasks []string
}

var koreanDayNames = []string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

var timeSlotBands = []TimeSlotStat{
	{Name: "아침", Hours: "6-9시"},
	{Name: "오전", Hours: "9-12시"},
	{Name: "오후", Hours: "12-18시"},
	{Name: "저녁", Hours: "18-22시"},
	{Name: "밤", Hours: "22시 이후"},
}

// Aggregate computes summary statistics over todos as of now.
func Aggregate(todos []TodoInput, period Period, now time.Time) Stats {
	stats := Stats{
		TotalCount: len(todos),
		OnTimeRate: 100,
	}

	for _, todo := range todos {
		if todo.Completed {
			stats.CompletedCount++
		}

		switch todo.Priority {
		case models.PriorityHigh:
			bumpRate(&stats.High, todo.Completed)
		case models.PriorityMedium:
			bumpRate(&stats.Medium, todo.Completed)
		case models.PriorityLow:
			bumpRate(&stats.Low, todo.Completed)
		}

		if todo.Priority == models.PriorityHigh && !todo.Completed {
			stats.HighPriorityCount++
		}
		if !todo.Completed && todo.DueDate != nil && todo.DueDate.Before(now) {
			stats.OverdueCount++
		}
	}

	stats.CompletionRate = percentage(stats.CompletedCount, stats.TotalCount)
	finishRate(&stats.High)
	finishRate(&stats.Medium)
	finishRate(&stats.Low)

	// Every completed todo with a due date currently counts as
	// on-time; the data model carries no completion timestamp to
	// compare against. Kept from the source behavior.
	completedWithDue := 0
	for _, todo := range todos {
		if todo.Completed && todo.DueDate != nil {
			completedWithDue++
		}
	}
	if completedWithDue > 0 {
		stats.OnTimeRate = percentage(completedWithDue, completedWithDue)
	}

	stats.Categories = categoryBreakdown(todos)
	stats.TimeSlots = timeSlotHistogram(todos)
	if period == PeriodWeek {
		stats.DaysOfWeek = dayOfWeekHistogram(todos)
	}

	stats.MostCompletedCategory = topCategory(todos, func(t TodoInput) bool {
		return t.Completed
	})
	stats.MostDelayedCategory = topCategory(todos, func(t TodoInput) bool {
		return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
	})

	stats.UrgentTasks = urgentTasks(todos, now)
	return stats
}

func bumpRate(r *RateStat, completed bool) {
	r.Total++
	if completed {
		r.Completed++
	}
}

func finishRate(r *RateStat) {
	r.Rate = percentage(r.Completed, r.Total)
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func categoryOf(t TodoInput) string {
	if t.Category == "" {
		return models.CategoryOther
	}
	return t.Category
}

func categoryBreakdown(todos []TodoInput) []CategoryStat {
	index := make(map[string]int)
	var out []CategoryStat
	for _, todo := range todos {
		cat := categoryOf(todo)
		i, ok := index[cat]
		if !ok {
			i = len(out)
			index[cat] = i
			out = append(out, CategoryStat{Name: cat})
		}
		bumpRate(&out[i].RateStat, todo.Completed)
	}
	for i := range out {
		finishRate(&out[i].RateStat)
	}
	return out
}

func timeSlotHistogram(todos []TodoInput) []TimeSlotStat {
	slots := make([]TimeSlotStat, len(timeSlotBands))
	copy(slots, timeSlotBands)
	for _, todo := range todos {
		if todo.Completed || todo.DueDate == nil {
			continue
		}
		switch hour := todo.DueDate.Hour(); {
		case hour >= 6 && hour < 9:
			slots[0].Count++
		case hour >= 9 && hour < 12:
			slots[1].Count++
		case hour >= 12 && hour < 18:
			slots[2].Count++
		case hour >= 18 && hour < 22:
			slots[3].Count++
		default:
			slots[4].Count++
		}
	}
	return slots
}

func dayOfWeekHistogram(todos []TodoInput) []DayOfWeekStat {
	totals := make([]DayOfWeekStat, len(koreanDayNames))
	for i, name := range koreanDayNames {
		totals[i].Name = name
	}
	for _, todo := range todos {
		if todo.DueDate == nil {
			continue
		}
		day := int(todo.DueDate.Weekday())
		totals[day].Total++
		if todo.Completed {
			totals[day].Completed++
		}
	}

	var out []DayOfWeekStat
	for _, day := range totals {
		if day.Total > 0 {
			out = append(out, day)
		}
	}
	return out
}

// topCategory returns the most frequent category among todos matching
// the filter, breaking ties by first appearance in input order.
func topCategory(todos []TodoInput, match func(TodoInput) bool) string {
	counts := make(map[string]int)
	var order []string
	for _, todo := range todos {
		if !match(todo) {
			continue
		}
		cat := categoryOf(todo)
		if _, seen := counts[cat]; !seen {
			order = append(order, cat)
		}
		counts[cat]++
	}

	best := NoCategory
	bestCount := 0
	for _, cat := range order {
		if counts[cat] > bestCount {
			best = cat
			bestCount = counts[cat]
		}
	}
	return best
}

func urgentTasks(todos []TodoInput, now time.Time) []string {
	var out []string
	for _, todo := range todos {
		if len(out) == 5 {
			break
		}
		if todo.Completed {
			continue
		}
		urgent := todo.Priority == models.PriorityHigh
		if !urgent && todo.DueDate != nil {
			daysUntilDue := math.Ceil(todo.DueDate.Sub(now).Hours() / 24)
			urgent = daysUntilDue <= 1
		}
		if urgent {
			out = append(out, todo.Title)
		}
	}
	return out
}
