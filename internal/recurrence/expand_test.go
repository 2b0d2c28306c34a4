package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmlee/todoflow/internal/models"
)

func TestExpandDaily(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("three day window yields exactly three instances", func(t *testing.T) {
		end := now.AddDate(0, 0, 3)
		got := Expand(Rule{Type: models.RepeatDaily, Interval: 1, EndDate: &end}, now, now)

		require.Len(t, got, 3)
		for i, due := range got {
			assert.Equal(t, now.AddDate(0, 0, i+1), due)
			assert.True(t, due.After(now))
		}
		for i := 1; i < len(got); i++ {
			assert.Equal(t, 24*time.Hour, got[i].Sub(got[i-1]))
		}
	})

	t.Run("end date before any step yields nothing", func(t *testing.T) {
		end := now.Add(-time.Hour)
		got := Expand(Rule{Type: models.RepeatDaily, Interval: 1, EndDate: &end}, now, now)
		assert.Empty(t, got)
	})

	t.Run("zero interval is treated as one", func(t *testing.T) {
		end := now.AddDate(0, 0, 2)
		got := Expand(Rule{Type: models.RepeatDaily, Interval: 0, EndDate: &end}, now, now)
		require.Len(t, got, 2)
		assert.Equal(t, 24*time.Hour, got[1].Sub(got[0]))
	})
}

func TestExpandCaps(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := now.AddDate(10, 0, 0)

	cases := []struct {
		repeatType string
		rule       Rule
		cap        int
	}{
		{models.RepeatHourly, Rule{Type: models.RepeatHourly, Interval: 1, EndDate: &end}, MaxHourlyInstances},
		{models.RepeatDaily, Rule{Type: models.RepeatDaily, Interval: 1, EndDate: &end}, MaxDailyInstances},
		{models.RepeatWeekly, Rule{Type: models.RepeatWeekly, DaysOfWeek: []int{0, 1, 2, 3, 4, 5, 6}, EndDate: &end}, MaxWeeklyInstances},
		{models.RepeatMonthly, Rule{Type: models.RepeatMonthly, Interval: 1, EndDate: &end}, MaxMonthlyInstances},
	}
	for _, tc := range cases {
		t.Run(tc.repeatType, func(t *testing.T) {
			got := Expand(tc.rule, now, now)
			assert.Len(t, got, tc.cap)
		})
	}
}

func TestExpandWeekly(t *testing.T) {
	// 2025-03-10 is a Monday.
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("empty day set defaults to the base date's weekday", func(t *testing.T) {
		end := now.AddDate(0, 0, 21)
		got := Expand(Rule{Type: models.RepeatWeekly, EndDate: &end}, now, now)

		require.Len(t, got, 3)
		for _, due := range got {
			assert.Equal(t, time.Monday, due.Weekday())
		}
	})

	t.Run("matches every listed weekday of every week", func(t *testing.T) {
		end := now.AddDate(0, 0, 14)
		got := Expand(Rule{
			Type:       models.RepeatWeekly,
			DaysOfWeek: []int{1, 3}, // Monday, Wednesday
			EndDate:    &end,
		}, now, now)

		require.Len(t, got, 4)
		assert.Equal(t, time.Wednesday, got[0].Weekday())
		assert.Equal(t, time.Monday, got[1].Weekday())
	})
}

func TestExpandMonthlyRollover(t *testing.T) {
	base := time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)
	end := base.AddDate(0, 4, 0)
	got := Expand(Rule{Type: models.RepeatMonthly, Interval: 1, EndDate: &end}, base, base)

	require.NotEmpty(t, got)
	// Jan 31 + 1 month normalizes to Mar 3.
	assert.Equal(t, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), got[0])
}

func TestExpandDefaultEndDate(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	got := Expand(Rule{Type: models.RepeatMonthly, Interval: 1}, now, now)

	require.NotEmpty(t, got)
	bound := DefaultEndDate(now)
	for _, due := range got {
		assert.False(t, due.After(bound))
	}
}

func TestInstances(t *testing.T) {
	parent := &models.Todo{
		ID:          "parent-1",
		UserID:      "user-1",
		Title:       "아침 운동",
		Description: "30분 조깅",
		Priority:    models.PriorityMedium,
		Category:    models.CategoryHealth,
		RepeatType:  models.RepeatDaily,
	}
	due := []time.Time{
		time.Date(2025, 3, 11, 7, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 12, 7, 0, 0, 0, time.UTC),
	}

	got := Instances(parent, due)
	require.Len(t, got, 2)
	for i, todo := range got {
		assert.Equal(t, parent.UserID, todo.UserID)
		assert.Equal(t, parent.Title, todo.Title)
		assert.Equal(t, parent.Category, todo.Category)
		assert.False(t, todo.Completed)
		assert.Equal(t, models.RepeatNone, todo.RepeatType)
		require.NotNil(t, todo.ParentTodoID)
		assert.Equal(t, parent.ID, *todo.ParentTodoID)
		require.NotNil(t, todo.DueDate)
		assert.Equal(t, due[i], *todo.DueDate)
	}
}
