package dto

import "time"

// Event types pushed to kiosk displays.
const (
	EventAccept = "accept"
	EventReject = "reject"
	EventReset  = "reset"
	EventSignal = "signal"
	EventCamera = "camera"
	EventError  = "error"
	EventStatus = "status"
)

// Event is the JSON message sent to kiosk displays over the websocket.
type Event struct {
	Type      string    `json:"type"`
	EventID   string    `json:"eventId,omitempty"`
	Payload   string    `json:"payload,omitempty"`
	FirstSeen bool      `json:"firstSeen,omitempty"`
	Until     time.Time `json:"until,omitzero"`
	At        time.Time `json:"at"`
	HTML      string    `json:"html,omitempty"` // Side panel content shown on accept
	Camera    string    `json:"camera,omitempty"`
	Signal    bool      `json:"signal"`
	Seen      []string  `json:"seen,omitempty"`
	Message   string    `json:"message,omitempty"`
}
