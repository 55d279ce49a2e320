package scanner

import (
	"strings"
	"sync"

	"palletkiosk/internal/logger"
	"palletkiosk/internal/model"
	"palletkiosk/internal/service/capture"
)

// Pipeline turns frames into classified detections.
type Pipeline struct {
	decoder Decoder
	marker  string
	logger  *logger.Logger

	mu      sync.Mutex
	failing bool
}

// NewPipeline creates a pipeline that accepts payloads containing marker.
func NewPipeline(decoder Decoder, marker string, logger *logger.Logger) *Pipeline {
	return &Pipeline{
		decoder: decoder,
		marker:  marker,
		logger:  logger,
	}
}

// Marker returns the substring a payload must contain to be accepted.
func (p *Pipeline) Marker() string {
	return p.marker
}

// IsAccepted reports whether payload contains the expected marker.
func (p *Pipeline) IsAccepted(payload string) bool {
	return strings.Contains(payload, p.marker)
}

// Scan decodes one frame. A decode failure yields no detections; the next
// frame is simply tried on the next tick.
func (p *Pipeline) Scan(frame *capture.Frame) []model.Detection {
	if frame == nil || frame.Image == nil {
		return nil
	}

	codes, err := p.decoder.Decode(frame.Image)
	p.trackFailure(frame.Seq, err)
	if err != nil {
		return nil
	}

	detections := make([]model.Detection, 0, len(codes))
	for _, code := range codes {
		if code.Payload == "" {
			continue
		}
		detections = append(detections, model.Detection{
			Payload:  code.Payload,
			Polygon:  Outline(code.Points),
			Accepted: p.IsAccepted(code.Payload),
		})
	}
	return detections
}

// trackFailure logs when decoding starts and stops failing instead of on every frame.
func (p *Pipeline) trackFailure(seq uint64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case err != nil && !p.failing:
		p.failing = true
		p.logger.Warning("Decoding failed on frame %d: %v", seq, err)
	case err == nil && p.failing:
		p.failing = false
		p.logger.Info("Decoding recovered on frame %d", seq)
	}
}

// FirstAccepted returns the first accepted detection in scan order.
func FirstAccepted(detections []model.Detection) (model.Detection, bool) {
	for _, d := range detections {
		if d.Accepted {
			return d, true
		}
	}
	return model.Detection{}, false
}
