package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
)

const dispatchTimeout = 10 * time.Second

// Dispatch queues notifications in the background once the caller's work has
// committed. Failures are logged and never reach the caller.
func Dispatch(ctx context.Context, svc notification.Service, reqs ...notification.CreateNotificationRequest) {
	if svc == nil || len(reqs) == 0 {
		return
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(bg, dispatchTimeout)
		defer cancel()

		if err := svc.QueueBulkNotification(ctx, reqs); err != nil {
			slog.Warn("failed to dispatch notifications", "count", len(reqs), "error", err)
		}
	}()
}
