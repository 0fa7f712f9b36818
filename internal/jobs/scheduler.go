package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"slicehub/api/internal/models"
)

type SessionPruner interface {
	PruneOrphans(ctx context.Context) (int64, error)
}

type MenuWarmer interface {
	Menu(ctx context.Context) ([]models.MenuItem, error)
}

// Scheduler runs housekeeping: removes sessions left behind by deleted users
// and keeps the menu cache warm. It never prunes sessions by age, since
// tokens stay valid until explicit logout.
type Scheduler struct {
	cron     *cron.Cron
	sessions SessionPruner
	menu     MenuWarmer
	log      zerolog.Logger
}

func NewScheduler(sessions SessionPruner, menu MenuWarmer, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		sessions: sessions,
		menu:     menu,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 3 * * *", s.pruneSessions); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 * * * *", s.warmMenu); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for in-flight jobs, up to a short grace period.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) pruneSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pruned, err := s.sessions.PruneOrphans(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session prune failed")
		return
	}
	if pruned > 0 {
		s.log.Info().Int64("pruned", pruned).Msg("orphaned sessions removed")
	}
}

func (s *Scheduler) warmMenu() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.menu.Menu(ctx); err != nil {
		s.log.Warn().Err(err).Msg("menu cache warm failed")
	}
}
