package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/intake"
)

// StartIntakeJanitor sweeps expired intake sessions until ctx is done.
func StartIntakeJanitor(ctx context.Context, sessions *intake.SessionManager, interval time.Duration, logger *zap.Logger) {
	if sessions == nil {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Debug("intake janitor stopped")
				return
			case now := <-ticker.C:
				sessions.SweepExpired(now)
			}
		}
	}()
}
