package render

import (
	"fmt"
	"image"
	"image/color"
	"net/http"
	"sync"

	"github.com/hybridgroup/mjpeg"
	"gocv.io/x/gocv"

	"palletkiosk/internal/logger"
	"palletkiosk/internal/model"
)

// Indicator is the border color of the preview.
type Indicator int

const (
	IndicatorIdle Indicator = iota
	IndicatorAccept
	IndicatorReject
)

var (
	green   = color.RGBA{R: 0, G: 200, B: 0, A: 0}
	red     = color.RGBA{R: 220, G: 0, B: 0, A: 0}
	neutral = color.RGBA{R: 90, G: 90, B: 90, A: 0}
	white   = color.RGBA{R: 255, G: 255, B: 255, A: 0}
)

const (
	outlineThickness = 3
	borderThickness  = 12
)

// placeholderSize is used for the NO SIGNAL frame until a real frame was seen.
var placeholderSize = image.Pt(640, 480)

func (i Indicator) color() color.RGBA {
	switch i {
	case IndicatorAccept:
		return green
	case IndicatorReject:
		return red
	default:
		return neutral
	}
}

// Preview publishes annotated frames as an MJPEG stream.
type Preview struct {
	stream  *mjpeg.Stream
	quality int
	logger  *logger.Logger

	mu       sync.Mutex
	lastSize image.Point
	failing  bool
}

func NewPreview(quality int, logger *logger.Logger) *Preview {
	return &Preview{
		stream:   mjpeg.NewStream(),
		quality:  quality,
		logger:   logger,
		lastSize: placeholderSize,
	}
}

func (p *Preview) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.stream.ServeHTTP(w, r)
}

// Publish draws detections and the indicator onto img and pushes the JPEG to
// every stream viewer. A nil img publishes the NO SIGNAL placeholder.
func (p *Preview) Publish(img image.Image, detections []model.Detection, indicator Indicator) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var (
		buf []byte
		err error
	)
	if img == nil {
		buf, err = NoSignal(p.lastSize, p.quality)
	} else {
		p.lastSize = img.Bounds().Size()
		buf, err = Annotate(img, detections, indicator, p.quality)
	}

	if err != nil {
		if !p.failing {
			p.logger.Error("Failed to render preview: %v", err)
		}
		p.failing = true
		return
	}
	p.failing = false
	p.stream.UpdateJPEG(buf)
}

// Annotate returns img as JPEG with detection outlines (green accepted, red
// rejected) and an indicator border.
func Annotate(img image.Image, detections []model.Detection, indicator Indicator, quality int) ([]byte, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	defer mat.Close()

	for _, d := range detections {
		c := red
		if d.Accepted {
			c = green
		}
		if err := drawPolygon(&mat, d.Polygon, c); err != nil {
			return nil, err
		}
	}

	if err := drawBorder(&mat, indicator.color()); err != nil {
		return nil, err
	}
	return encode(mat, quality)
}

// NoSignal returns a dark frame of the given size labelled NO SIGNAL.
func NoSignal(size image.Point, quality int) ([]byte, error) {
	if size.X <= 0 || size.Y <= 0 {
		size = placeholderSize
	}
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), size.Y, size.X, gocv.MatTypeCV8UC3)
	defer mat.Close()

	pt := image.Pt(size.X/2-100, size.Y/2+12)
	if err := gocv.PutText(&mat, "NO SIGNAL", pt, gocv.FontHersheySimplex, 1.2, white, 2); err != nil {
		return nil, fmt.Errorf("failed to draw text: %w", err)
	}
	if err := drawBorder(&mat, neutral); err != nil {
		return nil, err
	}
	return encode(mat, quality)
}

func drawPolygon(mat *gocv.Mat, polygon []image.Point, c color.RGBA) error {
	if len(polygon) < 2 {
		return nil
	}
	for i := range polygon {
		next := polygon[(i+1)%len(polygon)]
		if err := gocv.Line(mat, polygon[i], next, c, outlineThickness); err != nil {
			return fmt.Errorf("failed to draw outline: %w", err)
		}
	}
	return nil
}

func drawBorder(mat *gocv.Mat, c color.RGBA) error {
	rect := image.Rect(0, 0, mat.Cols()-1, mat.Rows()-1)
	if err := gocv.Rectangle(mat, rect, c, borderThickness); err != nil {
		return fmt.Errorf("failed to draw indicator: %w", err)
	}
	return nil
}

func encode(mat gocv.Mat, quality int) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
