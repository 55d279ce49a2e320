package render

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"palletkiosk/internal/logger"
	"palletkiosk/internal/model"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func decode(t *testing.T, buf []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("Output is not a JPEG: %v", err)
	}
	return img
}

func TestAnnotate_AcceptBorderIsGreen(t *testing.T) {
	frame := solid(320, 240, color.RGBA{A: 255})
	dets := []model.Detection{{
		Payload:  "PALLET-1",
		Polygon:  []image.Point{{100, 100}, {200, 100}, {200, 200}, {100, 200}},
		Accepted: true,
	}}

	buf, err := Annotate(frame, dets, IndicatorAccept, 90)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	img := decode(t, buf)
	if img.Bounds().Size() != image.Pt(320, 240) {
		t.Errorf("Unexpected size %v", img.Bounds().Size())
	}
	_, g, _, _ := img.At(2, 120).RGBA()
	if g>>8 < 150 {
		t.Errorf("Expected green border, got G=%d", g>>8)
	}
	_, g, _, _ = img.At(150, 100).RGBA()
	if g>>8 < 150 {
		t.Errorf("Expected green outline, got G=%d", g>>8)
	}
}

func TestNoSignal_UsesFallbackSize(t *testing.T) {
	buf, err := NoSignal(image.Point{}, 75)
	if err != nil {
		t.Fatalf("NoSignal failed: %v", err)
	}
	if got := decode(t, buf).Bounds().Size(); got != placeholderSize {
		t.Errorf("Expected %v placeholder, got %v", placeholderSize, got)
	}
}

func TestPreview_KeepsLastFrameSizeForPlaceholder(t *testing.T) {
	p := NewPreview(75, logger.NewDiscard())

	p.Publish(solid(200, 100, color.RGBA{A: 255}), nil, IndicatorIdle)
	p.Publish(nil, nil, IndicatorIdle)

	if p.lastSize != image.Pt(200, 100) {
		t.Errorf("Expected placeholder to keep 200x100, got %v", p.lastSize)
	}
	if p.failing {
		t.Error("Preview should not be in failure state")
	}
}
