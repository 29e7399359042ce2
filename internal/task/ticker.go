package task

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SessionAdvancer is the part of the training engine the ticker drives.
type SessionAdvancer interface {
	// Advance recomputes the telemetry of all active sessions as of now.
	Advance(ctx context.Context, now time.Time)
}

// SessionTickerConfig holds configuration for the session ticker.
type SessionTickerConfig struct {
	// Interval is how often active sessions are advanced.
	// If zero, defaults to 30 seconds.
	Interval time.Duration
}

// DefaultSessionTickerConfig returns a SessionTickerConfig with reasonable defaults.
func DefaultSessionTickerConfig() SessionTickerConfig {
	return SessionTickerConfig{
		Interval: 30 * time.Second,
	}
}

// SessionTicker periodically advances active stress sessions so their
// stress, fatigue, and focus telemetry stays current between client calls.
type SessionTicker struct {
	advancer   SessionAdvancer
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     SessionTickerConfig
	logger     *slog.Logger
}

// NewSessionTicker creates a new SessionTicker.
func NewSessionTicker(advancer SessionAdvancer, config SessionTickerConfig, logger *slog.Logger) *SessionTicker {
	if advancer == nil {
		panic("advancer cannot be nil")
	}
	if config.Interval == 0 {
		config.Interval = DefaultSessionTickerConfig().Interval
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &SessionTicker{
		advancer:   advancer,
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With(slog.String("component", "session_ticker")),
	}
}

// Start begins the tick loop in a background goroutine.
func (t *SessionTicker) Start() {
	t.wg.Add(1)
	go t.run()

	t.logger.Info("session ticker started",
		slog.Duration("interval", t.config.Interval))
}

// Stop gracefully shuts down the ticker and waits for the loop to exit.
func (t *SessionTicker) Stop() {
	t.cancelFunc()
	t.wg.Wait()
	t.logger.Info("session ticker stopped")
}

func (t *SessionTicker) run() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return

		case now := <-ticker.C:
			t.advancer.Advance(t.ctx, now)
		}
	}
}
