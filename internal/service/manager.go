package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"palletkiosk/internal/config"
	"palletkiosk/internal/dto"
	"palletkiosk/internal/logger"
	"palletkiosk/internal/model"
	"palletkiosk/internal/service/capture"
	"palletkiosk/internal/service/notify"
	"palletkiosk/internal/service/panel"
	"palletkiosk/internal/service/render"
)

// placeholderInterval paces NO SIGNAL frames so new preview viewers get an image.
const placeholderInterval = time.Second

// Source is the frame acquisition the manager drives.
type Source interface {
	Start(ctx context.Context, address string) error
	Stop() error
	Latest() *capture.Frame
	Stats() capture.SourceStats
}

// Scanner classifies the codes visible in a frame.
type Scanner interface {
	Scan(frame *capture.Frame) []model.Detection
	Marker() string
}

// Notifier delivers events to kiosk displays. Broadcast may drop under load;
// BroadcastReliable may not.
type Notifier interface {
	Broadcast(message []byte)
	BroadcastReliable(message []byte)
	GetClientCount() int
}

// Renderer publishes the annotated preview.
type Renderer interface {
	Publish(img image.Image, detections []model.Detection, indicator render.Indicator)
}

// Dependencies groups the collaborators of a Manager. Preview and Panel are optional.
type Dependencies struct {
	Source   Source
	Scanner  Scanner
	Machine  *notify.Machine
	Notifier Notifier
	Preview  Renderer
	Panel    *panel.Renderer
	Cameras  *config.CameraList
}

// Manager is the periodic driver: each tick it takes the latest frame, scans
// it, advances the state machine and pushes the resulting events.
type Manager struct {
	source       Source
	scanner      Scanner
	machine      *notify.Machine
	notifier     Notifier
	preview      Renderer
	panel        *panel.Renderer
	cameras      *config.CameraList
	pollInterval time.Duration
	sessionID    string
	logger       *logger.Logger

	switchMu sync.Mutex  // Serializes camera switches
	repaint  atomic.Bool // Preview must be redrawn after a reset from outside the loop

	mu        sync.Mutex
	runCtx    context.Context
	camera    config.Camera
	signal    bool
	lastError string

	// Owned by the Run goroutine
	lastSeq         uint64
	lastReject      string
	lastPlaceholder time.Time
}

// NewManager wires the driver. The initial camera is cfg.Camera or the first configured one.
func NewManager(deps Dependencies, cfg *config.Config, logger *logger.Logger) (*Manager, error) {
	camera, err := deps.Cameras.Initial(cfg.Camera)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		source:       deps.Source,
		scanner:      deps.Scanner,
		machine:      deps.Machine,
		notifier:     deps.Notifier,
		preview:      deps.Preview,
		panel:        deps.Panel,
		cameras:      deps.Cameras,
		pollInterval: cfg.PollInterval,
		sessionID:    uuid.NewString(),
		logger:       logger,
		camera:       camera,
	}

	logger.Info("Manager ready - camera %s, marker %q, hold %v", camera.Name, deps.Scanner.Marker(), deps.Machine.Hold())
	return m, nil
}

// Run starts acquisition on the selected camera and ticks until ctx is cancelled.
// A camera that cannot be started is reported and the loop keeps running so the
// operator can pick another one.
func (m *Manager) Run(ctx context.Context) {
	m.mu.Lock()
	m.runCtx = ctx
	camera := m.camera
	m.mu.Unlock()

	m.startCamera(ctx, camera)

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Manager stopped")
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

// tick is one driver cycle. It never blocks on acquisition.
func (m *Manager) tick() {
	frame := m.source.Latest()
	m.setSignal(frame != nil)

	var detections []model.Detection
	fresh := frame != nil && frame.Seq != m.lastSeq
	if fresh {
		m.lastSeq = frame.Seq
		detections = m.scanner.Scan(frame)
	}

	signals := m.machine.Advance(detections)
	rejected := false
	released := m.repaint.Swap(false)
	for _, sig := range signals {
		switch sig.Kind {
		case notify.SignalReject:
			rejected = true
		case notify.SignalReset:
			released = true
		}
		m.emit(sig)
	}
	if !rejected {
		m.lastReject = ""
	}

	if m.preview == nil {
		return
	}
	switch {
	case fresh:
		m.preview.Publish(frame.Image, detections, m.indicator(rejected))
	case released && frame != nil:
		m.preview.Publish(frame.Image, nil, m.indicator(false))
	case frame == nil && time.Since(m.lastPlaceholder) >= placeholderInterval:
		m.lastPlaceholder = time.Now()
		m.preview.Publish(nil, nil, render.IndicatorIdle)
	}
}

func (m *Manager) indicator(rejected bool) render.Indicator {
	if m.machine.Snapshot().State == notify.Locked {
		return render.IndicatorAccept
	}
	if rejected {
		return render.IndicatorReject
	}
	return render.IndicatorIdle
}

func (m *Manager) emit(sig notify.Signal) {
	m.mu.Lock()
	camera, signal := m.camera.Name, m.signal
	m.mu.Unlock()

	event := dto.Event{
		Type:      string(sig.Kind),
		EventID:   sig.EventID,
		Payload:   sig.Payload,
		FirstSeen: sig.FirstSeen,
		Until:     sig.Until,
		At:        sig.At,
		Camera:    camera,
		Signal:    signal,
	}

	switch sig.Kind {
	case notify.SignalAccept:
		m.logger.Info("Pallet accepted on %s: %s (first seen: %t)", camera, sig.Payload, sig.FirstSeen)
		seen := m.machine.Seen()
		html, err := m.panel.Render(panel.Data{
			Payload:   sig.Payload,
			Camera:    camera,
			At:        sig.At,
			Until:     sig.Until,
			FirstSeen: sig.FirstSeen,
			SeenCount: seen.Len(),
		})
		if err != nil {
			m.logger.Error("Failed to render panel: %v", err)
		}
		event.HTML = html
		event.Seen = seen.List()
	case notify.SignalReject:
		if sig.Payload != m.lastReject {
			m.logger.Warning("Code rejected on %s: %q does not contain %q", camera, sig.Payload, m.scanner.Marker())
			m.lastReject = sig.Payload
		}
	case notify.SignalReset:
		m.logger.Info("Indicator reset after %s", sig.Payload)
	}

	m.broadcast(event)
}

func (m *Manager) setSignal(signal bool) {
	m.mu.Lock()
	changed := m.signal != signal
	m.signal = signal
	camera := m.camera.Name
	m.mu.Unlock()

	if !changed {
		return
	}
	if signal {
		m.logger.Info("Signal acquired on %s", camera)
	} else {
		m.logger.Warning("No signal on %s", camera)
	}
	m.broadcast(dto.Event{Type: dto.EventSignal, Camera: camera, Signal: signal, At: time.Now()})
}

// broadcast sends an event to all displays. Rejects repeat on every fresh
// frame and may be dropped; every other event changes what the display shows.
func (m *Manager) broadcast(event dto.Event) {
	message, err := json.Marshal(event)
	if err != nil {
		m.logger.Error("Failed to encode %s event: %v", event.Type, err)
		return
	}
	if event.Type == dto.EventReject {
		m.notifier.Broadcast(message)
		return
	}
	m.notifier.BroadcastReliable(message)
}

// startCamera starts acquisition and records a malformed endpoint as the last error.
func (m *Manager) startCamera(ctx context.Context, camera config.Camera) error {
	if err := m.source.Start(ctx, camera.URL); err != nil {
		m.fail(fmt.Errorf("camera %s: %w", camera.Name, err))
		return err
	}
	m.mu.Lock()
	m.lastError = ""
	m.mu.Unlock()
	m.logger.Info("Camera %s selected", camera.Name)
	return nil
}

func (m *Manager) fail(err error) {
	m.logger.Error("%v", err)

	m.mu.Lock()
	m.lastError = err.Error()
	camera, signal := m.camera.Name, m.signal
	m.mu.Unlock()

	m.broadcast(dto.Event{Type: dto.EventError, Camera: camera, Signal: signal, Message: err.Error(), At: time.Now()})
}

// SwitchCamera stops the current acquisition and starts the named camera. An
// active lock is released; the accepted payload history is kept.
func (m *Manager) SwitchCamera(name string) error {
	camera, err := m.cameras.Find(name)
	if err != nil {
		return err
	}

	m.switchMu.Lock()
	defer m.switchMu.Unlock()

	if err := m.source.Stop(); err != nil {
		m.logger.Warning("Switching camera: %v", err)
	}
	if sig := m.machine.Reset(); sig != nil {
		m.emit(*sig)
		m.repaint.Store(true)
	}

	m.mu.Lock()
	m.camera = camera
	ctx := m.runCtx
	m.mu.Unlock()

	m.broadcast(dto.Event{Type: dto.EventCamera, Camera: camera.Name, At: time.Now()})

	if ctx == nil {
		return nil
	}
	return m.startCamera(ctx, camera)
}

// Reset releases an active lock. It reports whether a lock was released.
func (m *Manager) Reset() bool {
	sig := m.machine.Reset()
	if sig == nil {
		return false
	}
	m.emit(*sig)
	m.repaint.Store(true)
	return true
}

// Status returns the kiosk state for the status API.
func (m *Manager) Status() dto.Status {
	m.mu.Lock()
	camera, signal, lastError := m.camera.Name, m.signal, m.lastError
	m.mu.Unlock()

	return dto.Status{
		SessionID: m.sessionID,
		Camera:    camera,
		Cameras:   m.cameras.Names(),
		Marker:    m.scanner.Marker(),
		HoldMs:    m.machine.Hold().Milliseconds(),
		Signal:    signal,
		Machine:   m.machine.Snapshot(),
		Source:    m.source.Stats(),
		LastError: lastError,
		Viewers:   m.notifier.GetClientCount(),
	}
}

// Welcome is the first message a newly connected display receives.
func (m *Manager) Welcome() []byte {
	m.mu.Lock()
	camera, signal, lastError := m.camera.Name, m.signal, m.lastError
	m.mu.Unlock()

	snap := m.machine.Snapshot()
	event := dto.Event{
		Type:    dto.EventStatus,
		Payload: snap.Payload,
		Until:   snap.Until,
		At:      time.Now(),
		Camera:  camera,
		Signal:  signal,
		Seen:    snap.Seen,
		Message: lastError,
	}

	message, err := json.Marshal(event)
	if err != nil {
		m.logger.Error("Failed to encode welcome: %v", err)
		return nil
	}
	return message
}

// Cameras returns the configured camera list.
func (m *Manager) Cameras() *config.CameraList {
	return m.cameras
}

// Stop releases the frame source. A source that does not stop in time is
// reported and left to finish on its own.
func (m *Manager) Stop() error {
	err := m.source.Stop()
	if errors.Is(err, capture.ErrStopTimeout) {
		m.logger.Warning("Shutdown: %v", err)
	}
	return err
}
