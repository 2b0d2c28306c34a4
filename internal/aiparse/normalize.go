package aiparse

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dmlee/todoflow/internal/models"
)

const (
	maxTitleRunes      = 100
	titleTruncateRunes = 97
	maxDescRunes       = 1000
	descTruncateRunes  = 997
	titleFallbackRunes = 50
	defaultDueTime     = "09:00"
	pastGraceDuration  = time.Hour
	truncationMarker   = "..."
)

var ErrNoTodos = errors.New("모델이 할 일을 생성하지 못했습니다")

// Candidate is one raw record as emitted by the model. Every field is
// untrusted.
type Candidate struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	DueTime     string  `json:"due_time"`
	Priority    string  `json:"priority"`
	Category    string  `json:"category"`
}

// NormalizedTodo is a valid creation payload: every invariant of the
// todo entity holds.
type NormalizedTodo struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority"`
	Category    string     `json:"category"`
	Completed   bool       `json:"completed"`
}

// DecodeReply extracts the candidate list from a raw model reply.
// A reply shaped as a single bare candidate (the legacy format) is
// wrapped into a one-element list. Unparseable JSON or an empty list
// is an error: there is no safe structural fallback for parsed todos.
func DecodeReply(raw string) ([]Candidate, error) {
	text := stripFence(raw)
	if text == "" {
		return nil, errors.New("모델 응답이 비어있습니다")
	}

	var reply struct {
		Todos []Candidate `json:"todos"`
	}
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return nil, err
	}
	if len(reply.Todos) == 0 {
		var single Candidate
		if err := json.Unmarshal([]byte(text), &single); err == nil && single.Title != "" {
			reply.Todos = []Candidate{single}
		}
	}
	if len(reply.Todos) == 0 {
		return nil, ErrNoTodos
	}
	return reply.Todos, nil
}

func stripFence(s string) string {
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

var dueTimeRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// Normalize coerces candidates into valid creation payloads.
// sourceText is the user's preprocessed input, used as the title
// fallback; now anchors past-date rebasing.
func Normalize(candidates []Candidate, sourceText string, now time.Time) []NormalizedTodo {
	out := make([]NormalizedTodo, len(candidates))
	for i, cand := range candidates {
		out[i] = normalizeOne(cand, sourceText, now, i, len(candidates) > 1)
	}
	return out
}

func normalizeOne(cand Candidate, sourceText string, now time.Time, index int, batch bool) NormalizedTodo {
	title := strings.TrimSpace(cand.Title)
	if utf8Len(title) < 2 {
		title = truncateRunes(sourceText, titleFallbackRunes)
	}
	if utf8Len(title) > maxTitleRunes {
		title = truncateRunes(title, titleTruncateRunes) + truncationMarker
	}

	description := strings.TrimSpace(cand.Description)
	if utf8Len(description) > maxDescRunes {
		description = truncateRunes(description, descTruncateRunes) + truncationMarker
	}

	priority := cand.Priority
	if !models.IsValidPriority(priority) {
		priority = models.PriorityMedium
	}

	category := strings.TrimSpace(cand.Category)
	if !models.IsValidCategory(category) {
		category = models.CategoryOther
	}

	dueTime := strings.TrimSpace(cand.DueTime)
	if !dueTimeRe.MatchString(dueTime) {
		dueTime = defaultDueTime
	}

	return NormalizedTodo{
		Title:       title,
		Description: description,
		DueDate:     resolveDueDate(cand.DueDate, dueTime, now, index, batch),
		Priority:    priority,
		Category:    category,
		Completed:   false,
	}
}

// resolveDueDate merges the date and validated time and rebases
// results that landed more than an hour in the past: batch candidates
// spread across consecutive days from today, single candidates move
// to today, both keeping their time of day.
func resolveDueDate(dueDate *string, dueTime string, now time.Time, index int, batch bool) *time.Time {
	if dueDate == nil || strings.TrimSpace(*dueDate) == "" || *dueDate == "null" {
		return nil
	}

	parsed, err := parseDate(strings.TrimSpace(*dueDate), now.Location())
	if err != nil {
		return nil
	}

	hour, minute := splitTime(dueTime)
	due := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), hour, minute, 0, 0, now.Location())

	if due.Before(now.Add(-pastGraceDuration)) {
		base := now
		if batch {
			base = now.AddDate(0, 0, index)
		}
		due = time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, now.Location())
	}
	return &due
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func splitTime(dueTime string) (hour, minute int) {
	parts := strings.SplitN(dueTime, ":", 2)
	hour = atoi(parts[0])
	if len(parts) == 2 {
		minute = atoi(parts[1])
	}
	return hour, minute
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func utf8Len(s string) int {
	return len([]rune(s))
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
