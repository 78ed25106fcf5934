package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var payload struct {
		From Date `json:"from"`
		To   Date `json:"to"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"from":"2025-01-10","to":null}`), &payload))
	assert.True(t, payload.From.Equal(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, payload.To.IsZero())

	out, err := json.Marshal(payload.From)
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-10"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"from":"10/01/2025"}`), &payload))
}
