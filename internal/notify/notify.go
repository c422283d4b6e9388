// Package notify defines the booking core's outbound notification boundary
// (spec §6). Delivery (email, SMS, push) is an external collaborator; this
// package only defines the contract and a logging default, and every caller
// treats failures as fire-and-forget (spec §7: "Notifier errors are caught
// and logged — never surfaced").
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
)

// Notifier is the outbound notification boundary spec §6 describes.
type Notifier interface {
	SendClientConfirmation(ctx context.Context, req domain.RentRequest) error
	SendAdminNotification(ctx context.Context, req domain.RentRequest) error
	SendStatusUpdate(ctx context.Context, req domain.RentRequest) error
}

// LoggingNotifier is the default Notifier: it logs what would have been
// sent instead of delivering anything, since actual email/SMS delivery is
// out of scope (spec §1).
type LoggingNotifier struct {
	log *zap.Logger
}

// NewLoggingNotifier builds a LoggingNotifier, logging via log.
func NewLoggingNotifier(log *zap.Logger) *LoggingNotifier {
	return &LoggingNotifier{log: log.Named("notify")}
}

func (n *LoggingNotifier) SendClientConfirmation(_ context.Context, req domain.RentRequest) error {
	n.log.Info("client confirmation",
		zap.String("requestId", req.RequestID),
		zap.String("clientEmail", req.ClientEmail),
	)
	return nil
}

func (n *LoggingNotifier) SendAdminNotification(_ context.Context, req domain.RentRequest) error {
	n.log.Info("admin notification",
		zap.String("requestId", req.RequestID),
		zap.String("vehicleId", req.VehicleID),
	)
	return nil
}

func (n *LoggingNotifier) SendStatusUpdate(_ context.Context, req domain.RentRequest) error {
	n.log.Info("status update",
		zap.String("requestId", req.RequestID),
		zap.String("status", string(req.Status)),
	)
	return nil
}

// Fire dispatches fn on its own goroutine and logs, but never returns, any
// error it produces — the asynchronous fire-and-forget helper every
// rentrequestsvc call site uses instead of inlining the same
// spawn-and-log boilerplate (spec §4.4.1 step 6: "emit notifications
// asynchronously"). fn runs with ctx's values but not its cancellation, so
// a notification still goes out after the triggering request returns.
func Fire(ctx context.Context, log *zap.Logger, action string, fn func(ctx context.Context) error) {
	detached := context.WithoutCancel(ctx)
	go func() {
		if err := fn(detached); err != nil {
			log.Warn("notification failed", zap.String("action", action), zap.Error(err))
		}
	}()
}
