// Package queue defines the reservation status payload exchanged over the
// message broker and the consumers that read it back.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/table-reservation/internal/model"
)

// DefaultStatusQueue is the queue (RabbitMQ) or topic (Kafka) carrying
// reservation status events when none is configured.
const DefaultStatusQueue = "booking.status"

// Handler processes one decoded status event.  A returned error rejects the
// message.
type Handler func(ctx context.Context, ev model.StatusEvent) error

// Encode serializes a status event as JSON.
func Encode(ev model.StatusEvent) ([]byte, error) {
	return json.Marshal(ev)
}

// Decode parses a status event and rejects payloads without a booking code
// or status.
func Decode(body []byte) (model.StatusEvent, error) {
	var ev model.StatusEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal: %w", err)
	}
	if ev.BookingCode == "" || ev.Status == "" {
		return ev, errors.New("status event missing bookingCode or status")
	}
	return ev, nil
}
