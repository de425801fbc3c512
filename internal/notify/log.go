package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/model"
)

// LogNotifier writes status events to the application log.  It is the
// default sink when no broker is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier { return &LogNotifier{log: log} }

func (n *LogNotifier) Notify(_ context.Context, ev model.StatusEvent) error {
	n.log.Info("reservation status changed",
		zap.String("booking_code", ev.BookingCode),
		zap.String("status", ev.Status),
		zap.String("payment_status", ev.PaymentStatus),
		zap.Time("occurred_at", ev.OccurredAt))
	return nil
}
