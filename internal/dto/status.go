package dto

import (
	"palletkiosk/internal/service/capture"
	"palletkiosk/internal/service/notify"
)

// Status is the /api/status response.
type Status struct {
	SessionID string              `json:"sessionId"`
	Camera    string              `json:"camera"`
	Cameras   []string            `json:"cameras"`
	Marker    string              `json:"marker"`
	HoldMs    int64               `json:"holdMs"`
	Signal    bool                `json:"signal"`
	Machine   notify.Snapshot     `json:"machine"`
	Source    capture.SourceStats `json:"source"`
	LastError string              `json:"lastError,omitempty"`
	Viewers   int                 `json:"viewers"`
}
