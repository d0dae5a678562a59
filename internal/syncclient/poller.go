package syncclient

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Poller drives periodic silent refreshes while a screen is active, plus
// immediate refreshes when the host app regains focus. It substitutes for
// server push: delivery is at-least-eventually-consistent with staleness
// bounded by the interval.
type Poller struct {
	client   *Client
	interval time.Duration
	wake     chan bool
	done     chan bool
}

// NewPoller creates a poller for the client.
func NewPoller(client *Client, interval time.Duration) *Poller {
	return &Poller{
		client:   client,
		interval: interval,
		wake:     make(chan bool, 1),
		done:     make(chan bool),
	}
}

// Start bootstraps the cache with a non-silent refresh, then polls silently
// until Stop. Transient fetch failures are logged and retried on the next
// tick, never surfaced.
func (p *Poller) Start(ctx context.Context) {
	go func() {
		if err := p.client.Refresh(ctx, false); err != nil {
			logrus.WithError(err).Warn("Initial sync failed; retrying on next poll")
		}

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				p.refreshSilently(ctx)
			case <-p.wake:
				p.refreshSilently(ctx)
			case <-p.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Notify requests an immediate refresh, e.g. when the app returns to the
// foreground. Coalesces when one is already queued.
func (p *Poller) Notify() {
	select {
	case p.wake <- true:
	default:
	}
}

// Stop halts polling. The owning screen going away must stop its poller so
// no orphaned timers keep hitting the store.
func (p *Poller) Stop() {
	close(p.done)
}

func (p *Poller) refreshSilently(ctx context.Context) {
	if err := p.client.Refresh(ctx, true); err != nil {
		logrus.WithError(err).Warn("Background sync failed; will retry")
	}
}
