package shared

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-18")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-18", d.String())

	d, err = ParseDate("2026-03-18T22:15:00Z")
	require.NoError(t, err)
	assert.Equal(t, 0, d.Hour())

	d, err = ParseDate("  ")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("18/03/2026")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	var payload struct {
		Due Date `json:"due"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2024-02-29"}`), &payload))
	assert.Equal(t, time.February, payload.Due.Month())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2024-02-29"}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"due":null}`), &payload))
	assert.True(t, payload.Due.IsZero())
	out, err = json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":null}`, string(out))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2025-12-31 00:00:00+00:00"))
	assert.Equal(t, "2025-12-31", d.String())

	require.NoError(t, d.Scan([]byte("2025-01-02")))
	assert.Equal(t, "2025-01-02", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))

	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
