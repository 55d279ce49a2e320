package model

import "image"

// Detection is one decoded code region in a frame.
type Detection struct {
	Payload  string        `json:"payload"`
	Polygon  []image.Point `json:"polygon"` // Outline to draw; empty when the decoder gave fewer than 3 points
	Accepted bool          `json:"accepted"`
}
