package models

import "time"

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

const (
	RepeatNone    = "none"
	RepeatHourly  = "hourly"
	RepeatDaily   = "daily"
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
)

const (
	CategoryWork     = "업무"
	CategoryPersonal = "개인"
	CategoryHealth   = "건강"
	CategoryStudy    = "학습"
	CategoryOther    = "기타"
)

// Categories is the canonical category set, in display order.
// AI-sourced values outside the set collapse to CategoryOther.
var Categories = []string{
	CategoryWork,
	CategoryPersonal,
	CategoryHealth,
	CategoryStudy,
	CategoryOther,
}

func IsValidPriority(p string) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

func IsValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func IsValidRepeatType(t string) bool {
	switch t {
	case RepeatNone, RepeatHourly, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return true
	}
	return false
}

type Todo struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Priority    string
	Category    string
	Completed   bool
	DueDate     *time.Time
	// Position orders todos manually within the same priority tier.
	// Comparisons across priorities are meaningless.
	Position int

	RepeatType       string
	RepeatInterval   int
	RepeatDaysOfWeek []int
	RepeatEndDate    *time.Time
	// ParentTodoID links a generated recurrence instance back to its
	// template. Instances themselves always carry RepeatType == RepeatNone.
	ParentTodoID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Overdue reports whether the todo has a deadline in the past.
// Completed todos are never overdue.
func (t *Todo) Overdue(now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(now)
}
