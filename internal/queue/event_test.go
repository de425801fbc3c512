package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/model"
)

func TestEncodeDecode(t *testing.T) {
	ev := model.StatusEvent{
		BookingCode:   "RB26-00042",
		Status:        model.StatusConfirmed,
		PaymentStatus: model.PaymentPaid,
		OccurredAt:    time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	body, err := Encode(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bookingCode":"RB26-00042","status":"CONFIRMED","paymentStatus":"PAID","occurredAt":"2026-03-14T09:30:00Z"}`, string(body))

	got, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, ev.BookingCode, got.BookingCode)
	assert.True(t, ev.OccurredAt.Equal(got.OccurredAt))
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"status":"CONFIRMED"}`))
	assert.Error(t, err)
}

func TestHandleBody(t *testing.T) {
	var seen []string
	handle := func(_ context.Context, ev model.StatusEvent) error {
		seen = append(seen, ev.BookingCode)
		if ev.Status == model.StatusCancelled {
			return errors.New("downstream down")
		}
		return nil
	}

	require.NoError(t, handleBody(context.Background(), []byte(`{"bookingCode":"RB26-00001","status":"CONFIRMED"}`), handle))
	assert.Error(t, handleBody(context.Background(), []byte(`{"bookingCode":"RB26-00002","status":"CANCELLED"}`), handle))
	assert.Error(t, handleBody(context.Background(), []byte(`{}`), handle))
	assert.Equal(t, []string{"RB26-00001", "RB26-00002"}, seen)
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleep(ctx, time.Minute))
	assert.True(t, sleep(context.Background(), time.Millisecond))
}
