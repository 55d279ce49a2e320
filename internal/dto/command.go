package dto

// Commands accepted from kiosk displays.
const (
	CommandSelectCamera = "select_camera"
	CommandReset        = "reset"
)

// Command is a JSON message received from a kiosk display.
type Command struct {
	Action string `json:"action"`
	Camera string `json:"camera,omitempty"`
}
