package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"palletkiosk/internal/model"
)

// State is the detection lock state.
type State int

const (
	Idle State = iota
	Locked
)

func (s State) String() string {
	if s == Locked {
		return "locked"
	}
	return "idle"
}

// MarshalText lets State appear as a string in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText reads a State written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = Idle
	case "locked":
		*s = Locked
	default:
		return fmt.Errorf("unknown state %q", text)
	}
	return nil
}

// SignalKind tells the UI which indicator update to perform.
type SignalKind string

const (
	SignalAccept SignalKind = "accept"
	SignalReject SignalKind = "reject"
	SignalReset  SignalKind = "reset"
)

// Signal is a side effect emitted by a transition.
type Signal struct {
	Kind      SignalKind
	EventID   string // Shared by an accept and the reset that ends it
	Payload   string
	At        time.Time
	Until     time.Time // Lock expiry, accept only
	FirstSeen bool      // Payload was not in the history before this accept
}

// Snapshot is a consistent view of the machine for status displays.
type Snapshot struct {
	State   State     `json:"state"`
	Payload string    `json:"payload,omitempty"`
	Until   time.Time `json:"until,omitzero"`
	Seen    []string  `json:"seen"`
}

// Machine is the Idle/Locked debounce with timed auto-reset.
type Machine struct {
	hold  time.Duration
	clock func() time.Time
	seen  *SeenPayloads

	mu      sync.Mutex
	state   State
	payload string
	eventID string
	expiry  time.Time
}

// NewMachine creates an idle machine. A nil clock means time.Now.
func NewMachine(hold time.Duration, clock func() time.Time) *Machine {
	if clock == nil {
		clock = time.Now
	}
	return &Machine{
		hold:  hold,
		clock: clock,
		seen:  NewSeenPayloads(),
	}
}

// Hold returns the lock duration.
func (m *Machine) Hold() time.Duration {
	return m.hold
}

// Seen returns the accepted payload history.
func (m *Machine) Seen() *SeenPayloads {
	return m.seen
}

// Advance applies one driver cycle: an elapsed lock is released first, then
// the cycle's detections are evaluated. While locked every detection is ignored.
// While idle the first accepted detection locks; if none is accepted each
// rejected one is reported without changing state.
func (m *Machine) Advance(detections []model.Detection) []Signal {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	var signals []Signal

	if m.state == Locked && !now.Before(m.expiry) {
		signals = append(signals, m.resetLocked(now))
	}

	if m.state == Locked || len(detections) == 0 {
		return signals
	}

	for _, d := range detections {
		if d.Accepted {
			return append(signals, m.lock(d.Payload, now))
		}
	}

	for _, d := range detections {
		signals = append(signals, Signal{Kind: SignalReject, Payload: d.Payload, At: now})
	}
	return signals
}

// Reset releases the lock immediately. It returns nil when already idle.
func (m *Machine) Reset() *Signal {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Locked {
		return nil
	}
	sig := m.resetLocked(m.clock())
	return &sig
}

// Snapshot returns the current state and history.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	snap := Snapshot{State: m.state, Payload: m.payload, Until: m.expiry}
	m.mu.Unlock()

	snap.Seen = m.seen.List()
	return snap
}

func (m *Machine) lock(payload string, now time.Time) Signal {
	m.state = Locked
	m.payload = payload
	m.eventID = uuid.NewString()
	m.expiry = now.Add(m.hold)

	return Signal{
		Kind:      SignalAccept,
		EventID:   m.eventID,
		Payload:   payload,
		At:        now,
		Until:     m.expiry,
		FirstSeen: m.seen.Add(payload),
	}
}

func (m *Machine) resetLocked(now time.Time) Signal {
	sig := Signal{Kind: SignalReset, EventID: m.eventID, Payload: m.payload, At: now}
	m.state = Idle
	m.payload = ""
	m.eventID = ""
	m.expiry = time.Time{}
	return sig
}
