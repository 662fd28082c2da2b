package memory

import (
	"context"
	"time"
)

// RunJanitor — периодически вызывает Cleanup, пока не отменён ctx.
// interval <= 0 — фоновая очистка выключена, возврат сразу.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := s.Cleanup(); removed > 0 {
				s.log.Infof(ctx, "cache janitor removed expired=%d", removed)
			}
		}
	}
}
