package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = ParseDate("29.02.2024")
	assert.Error(t, err)

	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestDateArithmetic(t *testing.T) {
	tests := []struct {
		name string
		day  Date
		next string
		prev string
	}{
		{"mid-month", MustDate("2024-03-15"), "2024-03-16", "2024-03-14"},
		{"month end", MustDate("2024-01-31"), "2024-02-01", "2024-01-30"},
		{"leap february", MustDate("2024-02-28"), "2024-02-29", "2024-02-27"},
		{"year end", MustDate("2023-12-31"), "2024-01-01", "2023-12-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.next, tt.day.NextDay().String())
			assert.Equal(t, tt.prev, tt.day.PrevDay().String())
		})
	}
}

func TestDateComparison(t *testing.T) {
	a := MustDate("2024-01-31")
	b := MustDate("2024-02-01")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(MustDate("2024-01-31")))

	assert.Equal(t, 1, a.DaysUntil(b))
	assert.Equal(t, -1, b.DaysUntil(a))
	assert.Equal(t, 0, a.DaysUntil(a))
}

func TestDateJSON(t *testing.T) {
	type doc struct {
		From Date  `json:"from"`
		To   *Date `json:"to,omitempty"`
	}

	data, err := json.Marshal(doc{From: MustDate("2024-06-30")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"2024-06-30"}`, string(data))

	var parsed doc
	require.NoError(t, json.Unmarshal([]byte(`{"from":"2024-06-30","to":null}`), &parsed))
	assert.True(t, parsed.From.Equal(MustDate("2024-06-30")))
	assert.Nil(t, parsed.To)

	var zero doc
	require.NoError(t, json.Unmarshal([]byte(`{"from":""}`), &zero))
	assert.True(t, zero.From.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"from":"31-01-2024"}`), &parsed))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, time.May, 7, 13, 45, 0, 0, time.UTC)))
	assert.Equal(t, "2024-05-07", d.String())

	require.NoError(t, d.Scan("2024-05-08"))
	assert.Equal(t, "2024-05-08", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestMinMaxDate(t *testing.T) {
	a := MustDate("2024-01-01")
	b := MustDate("2024-12-31")

	assert.True(t, MinDate(a, b).Equal(a))
	assert.True(t, MinDate(b, a).Equal(a))
	assert.True(t, MaxDate(a, b).Equal(b))
}
