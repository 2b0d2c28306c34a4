package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmlee/todoflow/internal/models"
)

func tp(t time.Time) *time.Time { return &t }

func TestAggregateCompletionRate(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("empty collection", func(t *testing.T) {
		stats := Aggregate(nil, PeriodToday, now)
		assert.Equal(t, 0, stats.TotalCount)
		assert.Equal(t, 0, stats.CompletionRate)
		assert.Equal(t, 100, stats.OnTimeRate)
	})

	t.Run("rounds to nearest percent", func(t *testing.T) {
		todos := []TodoInput{
			{Title: "a", Priority: models.PriorityMedium, Completed: true},
			{Title: "b", Priority: models.PriorityMedium, Completed: true},
			{Title: "c", Priority: models.PriorityMedium},
		}
		stats := Aggregate(todos, PeriodToday, now)
		assert.Equal(t, 3, stats.TotalCount)
		assert.Equal(t, 2, stats.CompletedCount)
		assert.Equal(t, 67, stats.CompletionRate)
	})

	t.Run("per priority breakdown", func(t *testing.T) {
		todos := []TodoInput{
			{Title: "a", Priority: models.PriorityHigh, Completed: true},
			{Title: "b", Priority: models.PriorityHigh},
			{Title: "c", Priority: models.PriorityLow},
		}
		stats := Aggregate(todos, PeriodToday, now)
		assert.Equal(t, RateStat{Total: 2, Completed: 1, Rate: 50}, stats.High)
		assert.Equal(t, RateStat{Total: 1, Completed: 0, Rate: 0}, stats.Low)
		assert.Equal(t, 1, stats.HighPriorityCount)
	})
}

func TestAggregateOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)

	todos := []TodoInput{
		{Title: "late", Priority: models.PriorityMedium, DueDate: tp(past)},
		{Title: "done late", Priority: models.PriorityMedium, DueDate: tp(past), Completed: true},
		{Title: "no deadline", Priority: models.PriorityMedium},
		{Title: "upcoming", Priority: models.PriorityMedium, DueDate: tp(future)},
	}
	stats := Aggregate(todos, PeriodToday, now)

	// Completed todos and todos without a due date never count.
	assert.Equal(t, 1, stats.OverdueCount)
}

func TestAggregateCategories(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	t.Run("breakdown keeps input order and defaults blank to other", func(t *testing.T) {
		todos := []TodoInput{
			{Title: "a", Priority: models.PriorityMedium, Category: models.CategoryWork, Completed: true},
			{Title: "b", Priority: models.PriorityMedium},
			{Title: "c", Priority: models.PriorityMedium, Category: models.CategoryWork},
		}
		stats := Aggregate(todos, PeriodToday, now)
		require.Len(t, stats.Categories, 2)
		assert.Equal(t, models.CategoryWork, stats.Categories[0].Name)
		assert.Equal(t, 2, stats.Categories[0].Total)
		assert.Equal(t, 50, stats.Categories[0].Rate)
		assert.Equal(t, models.CategoryOther, stats.Categories[1].Name)
	})

	t.Run("pattern signals", func(t *testing.T) {
		todos := []TodoInput{
			{Title: "a", Priority: models.PriorityMedium, Category: models.CategoryStudy, Completed: true},
			{Title: "b", Priority: models.PriorityMedium, Category: models.CategoryStudy, Completed: true},
			{Title: "c", Priority: models.PriorityMedium, Category: models.CategoryWork, Completed: true},
			{Title: "d", Priority: models.PriorityMedium, Category: models.CategoryHealth, DueDate: tp(past)},
		}
		stats := Aggregate(todos, PeriodToday, now)
		assert.Equal(t, models.CategoryStudy, stats.MostCompletedCategory)
		assert.Equal(t, models.CategoryHealth, stats.MostDelayedCategory)
	})

	t.Run("signals report none on empty subsets", func(t *testing.T) {
		todos := []TodoInput{
			{Title: "a", Priority: models.PriorityMedium, Category: models.CategoryWork},
		}
		stats := Aggregate(todos, PeriodToday, now)
		assert.Equal(t, NoCategory, stats.MostCompletedCategory)
		assert.Equal(t, NoCategory, stats.MostDelayedCategory)
	})
}

func TestAggregateTimeSlots(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	at := func(hour int) *time.Time {
		return tp(time.Date(2025, 3, 11, hour, 0, 0, 0, time.UTC))
	}

	todos := []TodoInput{
		{Title: "a", Priority: models.PriorityMedium, DueDate: at(7)},
		{Title: "b", Priority: models.PriorityMedium, DueDate: at(10)},
		{Title: "c", Priority: models.PriorityMedium, DueDate: at(15)},
		{Title: "d", Priority: models.PriorityMedium, DueDate: at(19)},
		{Title: "e", Priority: models.PriorityMedium, DueDate: at(23)},
		{Title: "f", Priority: models.PriorityMedium, DueDate: at(2)},
		{Title: "done", Priority: models.PriorityMedium, DueDate: at(7), Completed: true},
		{Title: "no due", Priority: models.PriorityMedium},
	}
	stats := Aggregate(todos, PeriodToday, now)

	require.Len(t, stats.TimeSlots, 5)
	counts := make(map[string]int)
	for _, slot := range stats.TimeSlots {
		counts[slot.Name] = slot.Count
	}
	assert.Equal(t, 1, counts["아침"])
	assert.Equal(t, 1, counts["오전"])
	assert.Equal(t, 1, counts["오후"])
	assert.Equal(t, 1, counts["저녁"])
	assert.Equal(t, 2, counts["밤"])
}

func TestAggregateDayOfWeek(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 3, 16, 9, 0, 0, 0, time.UTC)

	todos := []TodoInput{
		{Title: "a", Priority: models.PriorityMedium, DueDate: tp(monday), Completed: true},
		{Title: "b", Priority: models.PriorityMedium, DueDate: tp(monday)},
		{Title: "c", Priority: models.PriorityMedium, DueDate: tp(sunday)},
	}

	t.Run("only computed for week period", func(t *testing.T) {
		stats := Aggregate(todos, PeriodToday, now)
		assert.Empty(t, stats.DaysOfWeek)
	})

	t.Run("tallies per weekday sunday first", func(t *testing.T) {
		stats := Aggregate(todos, PeriodWeek, now)
		require.Len(t, stats.DaysOfWeek, 2)
		assert.Equal(t, DayOfWeekStat{Name: "일요일", Total: 1}, stats.DaysOfWeek[0])
		assert.Equal(t, DayOfWeekStat{Name: "월요일", Total: 2, Completed: 1}, stats.DaysOfWeek[1])
	})
}

func TestAggregateUrgentTasks(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	soon := now.Add(12 * time.Hour)
	far := now.AddDate(0, 0, 7)

	t.Run("high priority or due within a day, input order", func(t *testing.T) {
		todos := []TodoInput{
			{Title: "due soon", Priority: models.PriorityLow, DueDate: tp(soon)},
			{Title: "urgent", Priority: models.PriorityHigh},
			{Title: "done", Priority: models.PriorityHigh, Completed: true},
			{Title: "later", Priority: models.PriorityLow, DueDate: tp(far)},
		}
		stats := Aggregate(todos, PeriodToday, now)
		assert.Equal(t, []string{"due soon", "urgent"}, stats.UrgentTasks)
	})

	t.Run("capped at five", func(t *testing.T) {
		var todos []TodoInput
		for i := 0; i < 8; i++ {
			todos = append(todos, TodoInput{Title: "긴급", Priority: models.PriorityHigh})
		}
		stats := Aggregate(todos, PeriodToday, now)
		assert.Len(t, stats.UrgentTasks, 5)
	})
}
