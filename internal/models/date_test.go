package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2026, Month: time.March, Day: 9}, d)
	assert.Equal(t, "2026-03-09", d.String())

	_, err = ParseDate("09/03/2026")
	assert.Error(t, err)

	_, err = ParseDate("2026-02-30")
	assert.Error(t, err)
}

func TestDate_Before(t *testing.T) {
	today := Date{Year: 2026, Month: time.October, Day: 15}

	assert.True(t, Date{Year: 2026, Month: time.October, Day: 14}.Before(today))
	assert.True(t, Date{Year: 2025, Month: time.December, Day: 31}.Before(today))
	assert.False(t, today.Before(today))
	assert.False(t, Date{Year: 2026, Month: time.November, Day: 1}.Before(today))
}

func TestDateOf_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	instant := time.Date(2026, time.October, 15, 22, 30, 0, 0, time.UTC)

	assert.Equal(t, "2026-10-15", DateOf(instant).String())
	assert.Equal(t, "2026-10-16", DateOf(instant.In(loc)).String())
}

func TestDate_JSON(t *testing.T) {
	var payload struct {
		DueDate *Date `json:"due_date"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"due_date":"2026-12-01"}`), &payload))
	require.NotNil(t, payload.DueDate)
	assert.Equal(t, "2026-12-01", payload.DueDate.String())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"due_date":"2026-12-01"}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"due_date":null}`), &payload))
	assert.Nil(t, payload.DueDate)

	assert.Error(t, json.Unmarshal([]byte(`{"due_date":"tomorrow"}`), &payload))
}

func TestTaskChoices(t *testing.T) {
	for _, s := range []string{StatusPending, StatusInProgress, StatusCompleted} {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus("archived"))

	for _, p := range []string{PriorityLow, PriorityMedium, PriorityHigh} {
		assert.True(t, IsValidPriority(p), p)
	}
	assert.False(t, IsValidPriority("urgent"))
}
