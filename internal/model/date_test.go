package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-28", d.String())
	assert.Equal(t, time.UTC, d.Location())

	for _, bad := range []string{"", "2025-2-28", "28/02/2025", "2025-02-30"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestDateArithmetic(t *testing.T) {
	d := MustDate("2024-02-27")
	assert.Equal(t, "2024-03-01", d.AddDays(3).String())
	assert.Equal(t, 3, d.DaysUntil(d.AddDays(3)))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.True(t, d.Equal(DateOf(time.Date(2024, 2, 27, 23, 59, 0, 0, time.UTC))))
}

func TestDateJSON(t *testing.T) {
	var v struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2025-12-24"}`), &v))
	assert.Equal(t, "2025-12-24", v.Date.String())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-12-24"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"24-12-2025"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"date":20251224}`), &v))
}

func TestDateScanAndValue(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-01-05", d.String())

	require.NoError(t, d.Scan([]byte("2025-01-06")))
	assert.Equal(t, "2025-01-06", d.String())

	require.NoError(t, d.Scan("2025-01-07 00:00:00"))
	assert.Equal(t, "2025-01-07", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))

	v, err := MustDate("2025-03-09").Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-09", v)
}

func TestClosureCovers(t *testing.T) {
	loc := uint64(3)
	c := Closure{LocationID: &loc, StartDate: MustDate("2025-12-24"), EndDate: MustDate("2025-12-26")}

	assert.True(t, c.Covers(3, MustDate("2025-12-24")))
	assert.True(t, c.Covers(3, MustDate("2025-12-26")))
	assert.False(t, c.Covers(3, MustDate("2025-12-27")))
	assert.False(t, c.Covers(4, MustDate("2025-12-25")))

	c.LocationID = nil
	assert.True(t, c.Covers(4, MustDate("2025-12-25")))
}

func TestReservationLive(t *testing.T) {
	for status, live := range map[string]bool{
		StatusPendingPayment: true,
		StatusConfirmed:      true,
		StatusPaymentFailed:  false,
		StatusCancelled:      false,
		StatusNoShow:         false,
	} {
		assert.Equal(t, live, Reservation{Status: status}.Live(), status)
	}
}
