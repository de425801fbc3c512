package booking

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Engine runs every booking operation against a Store.  Each mutating
// operation is one transaction; notifications are sent after commit.
type Engine struct {
	store    Store
	notifier Notifier
	log      *zap.Logger
	cfg      Config
	now      func() time.Time

	inflight sync.WaitGroup
}

// NewEngine wires an engine.  A nil notifier disables notifications and a
// nil logger discards logs.
func NewEngine(store Store, notifier Notifier, log *zap.Logger, cfg Config) *Engine {
	if store == nil {
		panic("nil store passed to NewEngine")
	}
	if log == nil {
		log = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.CodePrefix == "" {
		cfg.CodePrefix = def.CodePrefix
	}
	if cfg.MaxProvisionDays <= 0 {
		cfg.MaxProvisionDays = def.MaxProvisionDays
	}
	if cfg.PaymentURLBase == "" {
		cfg.PaymentURLBase = def.PaymentURLBase
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = def.NotifyTimeout
	}
	return &Engine{
		store:    store,
		notifier: notifier,
		log:      log,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Config returns the effective engine settings.
func (e *Engine) Config() Config { return e.cfg }

// PaymentURL returns the payment page for a booking code.
func (e *Engine) PaymentURL(code string) string {
	return e.cfg.PaymentURLBase + code
}

// Drain blocks until notifications already handed off have finished.
func (e *Engine) Drain() { e.inflight.Wait() }

// notify sends the reservation's state to the notifier in the background.
// Failures are logged and otherwise ignored.
func (e *Engine) notify(r *model.Reservation) {
	if e.notifier == nil || r == nil {
		return
	}
	ev := model.EventFor(r, e.now())
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.NotifyTimeout)
		defer cancel()
		if err := e.notifier.Notify(ctx, ev); err != nil {
			e.log.Warn("status notification failed",
				zap.String("booking_code", ev.BookingCode),
				zap.String("status", ev.Status),
				zap.Error(err))
		}
	}()
}
