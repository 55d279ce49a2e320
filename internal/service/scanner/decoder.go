package scanner

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Code is one region returned by a decode capability.
type Code struct {
	Payload string
	Points  []image.Point
}

// Decoder finds and decodes codes in a raster image.
type Decoder interface {
	Decode(img image.Image) ([]Code, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(img image.Image) ([]Code, error)

// Decode calls f(img).
func (f DecoderFunc) Decode(img image.Image) ([]Code, error) {
	return f(img)
}

// QRDecoder decodes QR codes with OpenCV's QRCodeDetector.
type QRDecoder struct {
	detector gocv.QRCodeDetector
	mu       sync.Mutex
}

// NewQRDecoder allocates the underlying detector. Call Close to release it.
func NewQRDecoder() *QRDecoder {
	return &QRDecoder{detector: gocv.NewQRCodeDetector()}
}

// Decode converts img to a Mat and runs detect+decode on it.
func (d *QRDecoder) Decode(img image.Image) ([]Code, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("frame is empty")
	}

	points := gocv.NewMat()
	defer points.Close()
	straight := gocv.NewMat()
	defer straight.Close()

	d.mu.Lock()
	payload := d.detector.DetectAndDecode(mat, &points, &straight)
	d.mu.Unlock()

	if payload == "" || points.Empty() {
		return nil, nil
	}

	corners, err := matPoints(points)
	if err != nil {
		return nil, err
	}
	return []Code{{Payload: payload, Points: corners}}, nil
}

// Close releases the detector.
func (d *QRDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.detector.Close()
}

// matPoints reads a CV_32FC2 corner Mat as integer points.
func matPoints(points gocv.Mat) ([]image.Point, error) {
	data, err := points.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read corner points: %w", err)
	}

	corners := make([]image.Point, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		corners = append(corners, image.Pt(int(data[i]), int(data[i+1])))
	}
	return corners, nil
}
