package service

import (
	"context"
	"time"
)

// StartSweeper runs a background loop that deletes expired invitations and
// Telegram link codes at every interval. It blocks until the context is
// cancelled, so it should be launched in a separate goroutine.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep deletes expired invitations and link codes once.
func (s *Service) Sweep(ctx context.Context) {
	now := s.now()

	invitations, err := s.Invitations.DeleteExpired(ctx, now)
	if err != nil {
		s.logger.Errorf("Failed to delete expired invitations: %v", err)
	} else if invitations > 0 {
		s.logger.Infof("Deleted %d expired invitations", invitations)
	}

	links, err := s.TelegramLinks.DeleteExpired(ctx, now)
	if err != nil {
		s.logger.Errorf("Failed to delete expired telegram links: %v", err)
	} else if links > 0 {
		s.logger.Infof("Deleted %d expired telegram links", links)
	}
}
