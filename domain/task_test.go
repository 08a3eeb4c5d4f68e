package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority_FallsBackToMedium(t *testing.T) {
	assert.Equal(t, PriorityLow, ParsePriority("low"))
	assert.Equal(t, PriorityHigh, ParsePriority(" HIGH "))
	assert.Equal(t, PriorityMedium, ParsePriority("medium"))
	assert.Equal(t, PriorityMedium, ParsePriority(""))
	assert.Equal(t, PriorityMedium, ParsePriority("urgent"))
}

func TestTask_Validate_RequiresTitle(t *testing.T) {
	task := Task{Title: "   "}
	require.ErrorIs(t, task.Validate(), ErrEmptyTitle)

	task.Title = "Buy milk"
	require.NoError(t, task.Validate())
}

func TestTask_Normalize_DefaultsPriority(t *testing.T) {
	task := Task{Title: "Buy milk"}
	task.Normalize()
	assert.Equal(t, PriorityMedium, task.Priority)

	task.Priority = PriorityHigh
	task.Normalize()
	assert.Equal(t, PriorityHigh, task.Priority)
}

func TestTaskPatch_Apply_MergesOnlyProvidedFields(t *testing.T) {
	due := NewDate(2026, 9, 1)
	task := Task{
		OwnerID:     "alice",
		Title:       "original",
		Description: "keep me",
		Priority:    PriorityLow,
		DueDate:     &due,
	}

	title := "renamed"
	done := true
	TaskPatch{Title: &title, Done: &done}.Apply(&task)

	assert.Equal(t, "renamed", task.Title)
	assert.True(t, task.Done)
	assert.Equal(t, "keep me", task.Description)
	assert.Equal(t, PriorityLow, task.Priority)
	assert.Equal(t, due, *task.DueDate)
	assert.Equal(t, "alice", task.OwnerID)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseFilter("High")
	require.NoError(t, err)
	assert.Equal(t, FilterHigh, f)

	_, err = ParseFilter("urgent")
	require.ErrorIs(t, err, ErrInvalidFilter)
}

func TestFilter_Matches(t *testing.T) {
	assert.True(t, FilterAll.Matches(PriorityLow))
	assert.True(t, FilterHigh.Matches(PriorityHigh))
	assert.False(t, FilterHigh.Matches(PriorityMedium))
}
