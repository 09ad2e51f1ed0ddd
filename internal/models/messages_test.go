package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuestion(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	a := NewQuestion("  cheapest onions?  ", at)
	b := NewQuestion("cheapest onions?", at)

	assert.Equal(t, "cheapest onions?", a.Question)
	assert.Equal(t, time.UTC, a.SubmittedAt.Location())
	assert.True(t, a.SubmittedAt.Equal(at))
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)

	raw, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"question":"cheapest onions?"`)
}
