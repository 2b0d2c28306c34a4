// Package recurrence expands a recurrence rule into concrete future
// due dates and todo instances. It is pure: persistence of the
// generated instances is the caller's concern.
package recurrence

import (
	"time"

	"github.com/dmlee/todoflow/internal/models"
)

// Per-type instance caps. They bound generation regardless of how
// wide the end-date window is.
const (
	MaxHourlyInstances  = 100
	MaxDailyInstances   = 365
	MaxWeeklyInstances  = 52
	MaxMonthlyInstances = 12
)

type Rule struct {
	Type       string
	Interval   int
	DaysOfWeek []int
	EndDate    *time.Time
}

// DefaultEndDate returns the bound used when a recurrence rule has no
// explicit end date: the same calendar day one year from now.
func DefaultEndDate(now time.Time) time.Time {
	return time.Date(now.Year()+1, now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Expand enumerates the due dates a rule produces, in order. Every
// returned timestamp is strictly after now and at or before the rule's
// end date. A rule of type none yields nothing.
func Expand(rule Rule, base, now time.Time) []time.Time {
	interval := rule.Interval
	if interval < 1 {
		interval = 1
	}

	end := DefaultEndDate(now)
	if rule.EndDate != nil {
		end = *rule.EndDate
	}

	var out []time.Time
	switch rule.Type {
	case models.RepeatHourly:
		for cur := base; !cur.After(end) && len(out) < MaxHourlyInstances; cur = cur.Add(time.Duration(interval) * time.Hour) {
			if cur.After(now) {
				out = append(out, cur)
			}
		}
	case models.RepeatDaily:
		for cur := base; !cur.After(end) && len(out) < MaxDailyInstances; cur = cur.AddDate(0, 0, interval) {
			if cur.After(now) {
				out = append(out, cur)
			}
		}
	case models.RepeatWeekly:
		days := rule.DaysOfWeek
		if len(days) == 0 {
			days = []int{int(base.Weekday())}
		}
		// Walks day by day and takes every matching weekday of every
		// week. The interval is intentionally not applied here; see
		// the weekly note in DESIGN.md.
		for cur := base; !cur.After(end) && len(out) < MaxWeeklyInstances; cur = cur.AddDate(0, 0, 1) {
			if containsDay(days, int(cur.Weekday())) && cur.After(now) {
				out = append(out, cur)
			}
		}
	case models.RepeatMonthly:
		// AddDate normalizes day overflow (Jan 31 + 1 month = Mar 3),
		// matching the month-rollover arithmetic of date libraries.
		for cur := base; !cur.After(end) && len(out) < MaxMonthlyInstances; cur = cur.AddDate(0, interval, 0) {
			if cur.After(now) {
				out = append(out, cur)
			}
		}
	}
	return out
}

// Instances materializes the generated due dates as todos of the
// parent's owner. Instances copy the parent's descriptive fields,
// start uncompleted and never recurse themselves.
func Instances(parent *models.Todo, dueDates []time.Time) []*models.Todo {
	todos := make([]*models.Todo, len(dueDates))
	for i, due := range dueDates {
		d := due
		parentID := parent.ID
		todos[i] = &models.Todo{
			UserID:       parent.UserID,
			Title:        parent.Title,
			Description:  parent.Description,
			Priority:     parent.Priority,
			Category:     parent.Category,
			Completed:    false,
			DueDate:      &d,
			Position:     0,
			RepeatType:   models.RepeatNone,
			ParentTodoID: &parentID,
		}
	}
	return todos
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
