package notification

import (
	"context"
	"sync"
	"time"

	obsmetrics "github.com/smallbiznis/dukaan/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Dispatcher accepts engine events for best-effort delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event)
}

// Provider delivers one event over one channel (log, email, ...).
type Provider interface {
	Name() string
	Send(ctx context.Context, event Event) error
}

const sendTimeout = 10 * time.Second

type Params struct {
	fx.In

	Log        *zap.Logger
	Providers  []Provider          `group:"notification.providers"`
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type AsyncDispatcher struct {
	log        *zap.Logger
	providers  []Provider
	obsMetrics *obsmetrics.Metrics
	wg         sync.WaitGroup
}

func New(p Params) *AsyncDispatcher {
	return &AsyncDispatcher{
		log:        p.Log.Named("notification.dispatcher"),
		providers:  p.Providers,
		obsMetrics: p.ObsMetrics,
	}
}

// Dispatch fans the event out to every provider on a fresh goroutine and
// returns immediately. Provider failures are logged and swallowed; they are
// never surfaced to the triggering operation.
func (d *AsyncDispatcher) Dispatch(ctx context.Context, event Event) {
	_ = ctx // delivery outlives the request

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("notification provider panicked",
					zap.String("event_id", event.ID),
					zap.Any("panic", r),
				)
			}
		}()

		sendCtx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		for _, provider := range d.providers {
			if err := provider.Send(sendCtx, event); err != nil {
				if d.obsMetrics != nil {
					d.obsMetrics.RecordNotification(string(event.Kind), "error")
				}
				d.log.Warn("notification delivery failed",
					zap.String("provider", provider.Name()),
					zap.String("event_id", event.ID),
					zap.String("kind", string(event.Kind)),
					zap.Error(err),
				)
				continue
			}
			if d.obsMetrics != nil {
				d.obsMetrics.RecordNotification(string(event.Kind), "ok")
			}
		}
	}()
}

// Drain waits for in-flight deliveries, used on shutdown and in tests.
func (d *AsyncDispatcher) Drain() {
	d.wg.Wait()
}
