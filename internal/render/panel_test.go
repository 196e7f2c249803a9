package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruncateFooters(t *testing.T) {
	truncation := Truncate(SubjectCountLimit, 42)
	require.True(t, truncation.Truncated())
	require.Equal(t, 10, truncation.Shown)
	require.Equal(t, "Showing top 10 of 42 schools", truncation.SchoolsFooter())

	logs := Truncate(ActivityLogLimit, 57)
	require.Equal(t, "Showing latest 20 of 57 activities", logs.ActivitiesFooter())

	short := Truncate(CompletenessLimit, 9)
	require.False(t, short.Truncated())
	require.Equal(t, 9, short.Shown)
	require.Empty(t, short.SchoolsFooter())
}

func TestHead(t *testing.T) {
	items := []int{1, 2, 3, 4}
	require.Equal(t, []int{1, 2}, Head(items, 2))
	require.Equal(t, items, Head(items, 10))
}

func TestErrorPanelKeepsMessage(t *testing.T) {
	panel := ErrorPanel("Results", "relation \"schools\" does not exist")
	require.Equal(t, StateError, panel.State)
	require.Equal(t, "relation \"schools\" does not exist", panel.Message)
}
