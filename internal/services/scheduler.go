package services

import (
	"context"

	"appraise-go/internal/service"

	"github.com/robfig/cron"
	"go.uber.org/zap"
)

// Scheduler runs the periodic token housekeeping: pending invitations past
// their expiry get flipped to expired, and dead magic links get purged.
type Scheduler struct {
	log         *zap.Logger
	invitations *service.InvitationService
	magicLinks  *service.MagicLinkService
	cron        *cron.Cron
}

func NewScheduler(log *zap.Logger, invitations *service.InvitationService, magicLinks *service.MagicLinkService) *Scheduler {
	return &Scheduler{
		log:         log,
		invitations: invitations,
		magicLinks:  magicLinks,
		cron:        cron.New(),
	}
}

// Start registers the cleanup jobs and starts the cron loop in its own
// goroutine.
func (s *Scheduler) Start() error {
	s.log.Info("Starting cleanup scheduler...")
	if err := s.cron.AddFunc("@hourly", s.runCleanup); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runCleanup() {
	ctx := context.Background()

	expired, err := s.invitations.CleanupExpired(ctx)
	if err != nil {
		s.log.Error("Failed to clean up expired invitations", zap.Error(err))
	} else if expired > 0 {
		s.log.Info("Expired invitations flipped", zap.Int64("count", expired))
	}

	purged, err := s.magicLinks.PurgeExpired(ctx)
	if err != nil {
		s.log.Error("Failed to purge expired magic links", zap.Error(err))
	} else if purged > 0 {
		s.log.Info("Expired magic links purged", zap.Int64("count", purged))
	}
}
