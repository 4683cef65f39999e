// Package scheduler runs the periodic overdue-invoice sweep.
package scheduler

import (
	"context"
	"time"

	"github.com/smallbiznis/dukaan/internal/clock"
	"github.com/smallbiznis/dukaan/internal/config"
	invoicedomain "github.com/smallbiznis/dukaan/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultSweepInterval = time.Hour

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Config   config.Config
	Invoices invoicedomain.Service
}

// Sweeper flips pending and partial invoices past their due date to the
// stored overdue status on a fixed interval. Overdue remains a computed
// predicate between sweeps.
type Sweeper struct {
	log      *zap.Logger
	clock    clock.Clock
	interval time.Duration
	invoices invoicedomain.Service

	cancel context.CancelFunc
	done   chan struct{}
}

func New(p Params) *Sweeper {
	interval := p.Config.SweepInterval
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{
		log:      p.Log.Named("scheduler.overdue"),
		clock:    p.Clock,
		interval: interval,
		invoices: p.Invoices,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. An immediate first sweep runs so a restart
// never leaves stale statuses for a full interval.
func (s *Sweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go func() {
		defer close(s.done)

		s.sweep(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done
}

// Sweep runs one pass and returns the number of invoices flipped.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	return s.invoices.MarkOverdue(ctx, s.clock.Now())
}

func (s *Sweeper) sweep(ctx context.Context) {
	changed, err := s.Sweep(ctx)
	if err != nil {
		s.log.Error("overdue sweep failed", zap.Error(err))
		return
	}
	if changed > 0 {
		s.log.Info("overdue sweep complete", zap.Int64("flipped", changed))
	}
}
