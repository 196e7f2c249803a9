package render

import "fmt"

// Display limits of the analytics panels.
const (
	SubjectCountLimit = 10
	AboveAverageLimit = 10
	CompletenessLimit = 15
	ActivityLogLimit  = 20
)

// Truncation describes how much of a list is shown.
type Truncation struct {
	Shown int
	Total int
}

// Truncated reports whether some items are hidden.
func (t Truncation) Truncated() bool {
	return t.Total > t.Shown
}

// Truncate caps total at limit.
func Truncate(limit, total int) Truncation {
	shown := total
	if limit >= 0 && shown > limit {
		shown = limit
	}
	return Truncation{Shown: shown, Total: total}
}

// SchoolsFooter is the footer of truncated school rankings.
func (t Truncation) SchoolsFooter() string {
	if !t.Truncated() {
		return ""
	}
	return fmt.Sprintf("Showing top %d of %d schools", t.Shown, t.Total)
}

// ActivitiesFooter is the footer of the activity log panel.
func (t Truncation) ActivitiesFooter() string {
	if !t.Truncated() {
		return ""
	}
	return fmt.Sprintf("Showing latest %d of %d activities", t.Shown, t.Total)
}

// Head returns the first n items of items.
func Head[T any](items []T, n int) []T {
	if n < 0 || n >= len(items) {
		return items
	}
	return items[:n]
}
