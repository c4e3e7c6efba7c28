package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional_UnmarshalJSON(t *testing.T) {
	var body struct {
		Title   Optional[string] `json:"title"`
		DueDate Optional[string] `json:"due_date"`
		Status  Optional[string] `json:"status"`
	}

	err := json.Unmarshal([]byte(`{"title":"Buy milk","due_date":null}`), &body)
	require.NoError(t, err)

	assert.Equal(t, Some("Buy milk"), body.Title)
	assert.True(t, body.Title.Present())

	assert.Equal(t, Null[string](), body.DueDate)
	assert.False(t, body.DueDate.Present())

	assert.False(t, body.Status.Set)
	assert.False(t, body.Status.Present())
}

func TestOptional_TypeMismatch(t *testing.T) {
	var body struct {
		Title Optional[string] `json:"title"`
	}

	err := json.Unmarshal([]byte(`{"title":42}`), &body)
	var typeErr *json.UnmarshalTypeError
	require.ErrorAs(t, err, &typeErr)
}
