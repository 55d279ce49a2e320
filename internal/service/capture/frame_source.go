package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"palletkiosk/internal/logger"
)

var (
	// ErrAlreadyRunning is returned by Start on a source that was not stopped.
	ErrAlreadyRunning = errors.New("frame source already running")
	// ErrStopTimeout is returned by Stop when acquisition did not exit in time.
	ErrStopTimeout = errors.New("frame source did not stop in time")
)

// SourceConfig controls reconnection and shutdown timing.
type SourceConfig struct {
	RetryDelay    time.Duration // First backoff after a failed open (default 500ms)
	MaxRetryDelay time.Duration // Backoff cap (default 5s)
	StopTimeout   time.Duration // Bounded wait in Stop (default 2s)
}

func (c SourceConfig) withDefaults() SourceConfig {
	if c.RetryDelay <= 0 {
		c.RetryDelay = 500 * time.Millisecond
	}
	if c.MaxRetryDelay < c.RetryDelay {
		c.MaxRetryDelay = 5 * time.Second
		if c.MaxRetryDelay < c.RetryDelay {
			c.MaxRetryDelay = c.RetryDelay
		}
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = 2 * time.Second
	}
	return c
}

// SourceStats is a point-in-time view of acquisition counters.
type SourceStats struct {
	Endpoint     string `json:"endpoint"`
	Running      bool   `json:"running"`
	Connected    bool   `json:"connected"`
	Frames       uint64 `json:"frames"`
	Reconnects   uint64 `json:"reconnects"`
	OpenFailures uint64 `json:"openFailures"`
}

// FrameSource keeps the most recent frame of one stream endpoint, reconnecting
// in the background whenever the stream drops.
type FrameSource struct {
	opener Opener
	cfg    SourceConfig
	logger *logger.Logger

	current atomic.Pointer[acquisition]

	mu       sync.Mutex
	endpoint Endpoint
	cancel   context.CancelFunc
	done     chan struct{}

	seq          atomic.Uint64
	reconnects   atomic.Uint64
	openFailures atomic.Uint64
}

// acquisition is the state of one Start..Stop cycle. A run that outlives its
// Stop only ever writes into its own slot, which is no longer reachable.
type acquisition struct {
	endpoint  Endpoint
	latest    atomic.Pointer[Frame]
	connected atomic.Bool
}

// NewFrameSource creates an idle source. Call Start to begin acquisition.
func NewFrameSource(opener Opener, cfg SourceConfig, logger *logger.Logger) *FrameSource {
	return &FrameSource{
		opener: opener,
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
}

// Start validates the endpoint and launches acquisition. It returns immediately;
// an unreachable endpoint is retried in the background, not reported here.
func (s *FrameSource) Start(ctx context.Context, address string) error {
	endpoint, err := ParseEndpoint(address)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	acq := &acquisition{endpoint: endpoint}
	s.endpoint = endpoint
	s.cancel = cancel
	s.done = done
	s.current.Store(acq)

	go s.run(runCtx, acq, done)

	s.logger.Info("Frame source started: %s", endpoint.Redacted())
	return nil
}

// Latest returns the most recent frame, or nil while no frame has been
// captured or the connection is down. It never blocks.
func (s *FrameSource) Latest() *Frame {
	acq := s.current.Load()
	if acq == nil {
		return nil
	}
	return acq.latest.Load()
}

// Endpoint returns the endpoint passed to the last successful Start.
func (s *FrameSource) Endpoint() Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpoint
}

// Stop cancels acquisition and waits up to StopTimeout for it to release the
// connection. Calling Stop on a stopped source is a no-op.
func (s *FrameSource) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	s.current.Store(nil)
	cancel()

	timer := time.NewTimer(s.cfg.StopTimeout)
	defer timer.Stop()

	select {
	case <-done:
		s.logger.Info("Frame source stopped")
		return nil
	case <-timer.C:
		// The goroutine still owns the device and closes it once its blocked read returns.
		return fmt.Errorf("%w (waited %v)", ErrStopTimeout, s.cfg.StopTimeout)
	}
}

// Stats returns acquisition counters.
func (s *FrameSource) Stats() SourceStats {
	s.mu.Lock()
	endpoint, running := s.endpoint, s.cancel != nil
	s.mu.Unlock()

	return SourceStats{
		Endpoint:     endpoint.Redacted(),
		Running:      running,
		Connected:    s.isConnected(),
		Frames:       s.seq.Load(),
		Reconnects:   s.reconnects.Load(),
		OpenFailures: s.openFailures.Load(),
	}
}

// isConnected reports the connection state of the current run only.
func (s *FrameSource) isConnected() bool {
	acq := s.current.Load()
	return acq != nil && acq.connected.Load()
}

// run is the acquisition loop: open, read until failure, back off, repeat.
func (s *FrameSource) run(ctx context.Context, acq *acquisition, done chan struct{}) {
	defer close(done)
	defer acq.connected.Store(false)

	endpoint := acq.endpoint
	attempt := 0
	everConnected := false

	for ctx.Err() == nil {
		device, err := s.opener.Open(endpoint)
		if err != nil {
			acq.latest.Store(nil)
			s.openFailures.Add(1)
			attempt++

			if attempt == 1 {
				s.logger.Warning("Stream unavailable (%s): %v - retrying up to every %v",
					endpoint.Redacted(), err, s.cfg.MaxRetryDelay)
			}
			if !sleepCtx(ctx, calculateBackoff(attempt, s.cfg)) {
				return
			}
			continue
		}

		if everConnected {
			s.reconnects.Add(1)
		}
		everConnected = true
		attempt = 0
		acq.connected.Store(true)
		s.logger.Info("Stream connected: %s", endpoint.Redacted())

		err = s.readLoop(ctx, acq, device)
		acq.connected.Store(false)
		acq.latest.Store(nil)
		if cerr := device.Close(); cerr != nil {
			s.logger.Warning("Failed to release stream %s: %v", endpoint.Redacted(), cerr)
		}

		if ctx.Err() != nil {
			return
		}
		s.logger.Warning("Stream lost (%s): %v - reconnecting", endpoint.Redacted(), err)
	}
}

// readLoop publishes frames until a read fails or ctx is cancelled.
func (s *FrameSource) readLoop(ctx context.Context, acq *acquisition, device Device) error {
	for ctx.Err() == nil {
		img, err := device.Read()
		if err != nil {
			return err
		}

		acq.latest.Store(&Frame{
			Seq:        s.seq.Add(1),
			CapturedAt: time.Now(),
			Image:      img,
		})
	}
	return nil
}

// calculateBackoff returns RetryDelay * 2^(attempt-1), capped at MaxRetryDelay.
func calculateBackoff(attempt int, cfg SourceConfig) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 16 {
		return cfg.MaxRetryDelay
	}

	delay := cfg.RetryDelay * time.Duration(1<<uint(attempt-1))
	if delay > cfg.MaxRetryDelay {
		delay = cfg.MaxRetryDelay
	}
	return delay
}

// sleepCtx waits for d and reports false if ctx was cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
