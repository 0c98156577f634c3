package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
	"github.com/custodia-labs/wallapocket/internal/logger"
)

// poller drives timer-based incremental passes for a SyncEngine.
// A tick that finds a pass in flight is skipped.
type poller struct {
	engine *SyncEngine

	mu       sync.Mutex
	interval time.Duration
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	resetCh  chan time.Duration
}

func newPoller(engine *SyncEngine, interval time.Duration) *poller {
	return &poller{
		engine:   engine,
		interval: interval,
		resetCh:  make(chan time.Duration, 1),
	}
}

// start runs the loop. This method blocks until stop is called or ctx ends.
func (p *poller) start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil // Already running
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	interval := p.interval
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		if p.doneCh == doneCh {
			p.running = false
		}
		p.mu.Unlock()
		close(doneCh)
	}()

	return p.run(ctx, interval, stopCh)
}

// stop ends the loop and waits for the in-flight tick.
func (p *poller) stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.stopCh)
	doneCh := p.doneCh
	p.mu.Unlock()

	// Wait for the loop, including an in-flight pass, to return
	<-doneCh
	return nil
}

// reset changes the interval. A running loop rebuilds its ticker.
func (p *poller) reset(interval time.Duration) {
	p.mu.Lock()
	p.interval = interval
	running := p.running
	p.mu.Unlock()

	if !running {
		return
	}
	// Replace any pending value so the loop sees the latest interval.
	// Concurrent callers may refill the slot between drain and send.
	for {
		select {
		case p.resetCh <- interval:
			return
		default:
		}
		select {
		case <-p.resetCh:
		default:
		}
	}
}

// run is the main loop. A zero interval keeps the loop idle until reset.
func (p *poller) run(ctx context.Context, interval time.Duration, stopCh chan struct{}) error {
	// Initial pass on startup
	p.tick(ctx)

	var ticker *time.Ticker
	var tickC <-chan time.Time
	arm := func(d time.Duration) {
		if ticker != nil {
			ticker.Stop()
			ticker, tickC = nil, nil
		}
		if d > 0 {
			ticker = time.NewTicker(d)
			tickC = ticker.C
		}
		logger.Debug("poll interval set to %v", d)
	}
	arm(interval)
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case d := <-p.resetCh:
			arm(d)
		case <-tickC:
			p.tick(ctx)
		}
	}
}

// tick runs one incremental pass and reports failures to the notifier.
func (p *poller) tick(ctx context.Context) {
	_, err := p.engine.tryRefresh(ctx)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrSyncInProgress):
		logger.Debug("poll skipped: pass already running")
	case errors.Is(err, context.Canceled):
	default:
		logger.Warn("poll failed: %v", err)
		p.engine.events.failed(domain.FailureFetch, err)
	}
}
