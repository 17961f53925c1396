// Package sweeper removes expired one-time codes and reset tickets.
// Expiry is still enforced lazily at verification time; the sweeper only
// keeps abandoned rows from accumulating.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/prepinterview/backend/internal/metrics"
	"github.com/prepinterview/backend/internal/repository"
)

type Sweeper struct {
	codes    repository.CodeRepository
	tickets  repository.TicketRepository
	logger   *slog.Logger
	schedule cron.Schedule
	codeTTL  time.Duration
}

// New parses the cron expression up front so a bad schedule fails at
// startup, not on the first tick.
func New(codes repository.CodeRepository, tickets repository.TicketRepository, logger *slog.Logger, cronExpr string, codeTTL time.Duration) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Sweeper{
		codes:    codes,
		tickets:  tickets,
		logger:   logger.With("component", "sweeper"),
		schedule: schedule,
		codeTTL:  codeTTL,
	}, nil
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("sweeper started")

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("sweeper shut down")
			return
		case <-timer.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep. Exposed so operators (and tests) can
// trigger it outside the schedule.
func (s *Sweeper) RunOnce(ctx context.Context) {
	now := time.Now()

	codes, err := s.codes.DeleteExpired(ctx, now.Add(-s.codeTTL))
	if err != nil {
		s.logger.Error("sweep expired codes", "error", err)
	} else if codes > 0 {
		metrics.SweptRowsTotal.WithLabelValues("one_time_codes").Add(float64(codes))
	}

	tickets, err := s.tickets.DeleteExpired(ctx, now)
	if err != nil {
		s.logger.Error("sweep expired tickets", "error", err)
	} else if tickets > 0 {
		metrics.SweptRowsTotal.WithLabelValues("reset_tickets").Add(float64(tickets))
	}

	if codes > 0 || tickets > 0 {
		s.logger.Info("sweep completed", "codes", codes, "tickets", tickets)
	}
}
