package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunSweeper evicts expired terminal sessions and cancels abandoned running
// ones until ctx is done
func (m *Manager) RunSweeper(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

func (m *Manager) sweep(now time.Time) {
	m.sessions.Range(func(_, value any) bool {
		s := value.(*session)
		snap := s.snapshot.Load()

		if snap.Terminal() {
			if m.cfg.Retention > 0 && snap.CompletedAt != nil && now.Sub(*snap.CompletedAt) >= m.cfg.Retention {
				m.evict(s)
			}
			return true
		}

		if m.cfg.AbandonGrace > 0 && !m.hub.Observed(s.id, m.cfg.AbandonGrace) {
			m.logger.Warn("cancelling abandoned session",
				zap.String("session_id", s.id),
				zap.Duration("grace", m.cfg.AbandonGrace))
			s.cancel(ErrAbandoned)
		}
		return true
	})
}
