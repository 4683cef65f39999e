package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/dukaan/internal/clock"
	"github.com/smallbiznis/dukaan/internal/config"
	invoicedomain "github.com/smallbiznis/dukaan/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubInvoices struct {
	invoicedomain.Service

	sweptAt []time.Time
	flipped int64
}

func (s *stubInvoices) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	s.sweptAt = append(s.sweptAt, now)
	return s.flipped, nil
}

func TestSweepUsesInjectedClock(t *testing.T) {
	fakeClock := clock.NewFakeClock(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	invoices := &stubInvoices{flipped: 3}

	sweeper := New(Params{
		Log:      zap.NewNop(),
		Clock:    fakeClock,
		Config:   config.Config{SweepInterval: time.Hour},
		Invoices: invoices,
	})

	changed, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), changed)
	require.Len(t, invoices.sweptAt, 1)
	assert.Equal(t, fakeClock.Now(), invoices.sweptAt[0])

	fakeClock.Advance(48 * time.Hour)
	_, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fakeClock.Now(), invoices.sweptAt[1])
}

func TestStartRunsImmediateSweepAndStops(t *testing.T) {
	invoices := &stubInvoices{}
	sweeper := New(Params{
		Log:      zap.NewNop(),
		Clock:    clock.NewSystemClock(),
		Config:   config.Config{SweepInterval: time.Hour},
		Invoices: invoices,
	})

	sweeper.Start()
	sweeper.Stop()

	assert.Len(t, invoices.sweptAt, 1)
}
