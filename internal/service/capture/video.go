package capture

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// VideoOpener opens endpoints with OpenCV's VideoCapture (FFmpeg/GStreamer backends).
type VideoOpener struct{}

// Open connects to the endpoint and keeps the internal buffer at one frame so
// reads always return the freshest picture.
func (VideoOpener) Open(endpoint Endpoint) (Device, error) {
	var source interface{} = endpoint.String()
	if id, ok := endpoint.Device(); ok {
		source = id
	}

	vc, err := gocv.OpenVideoCapture(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenFailed, endpoint.Redacted(), err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: %s", ErrOpenFailed, endpoint.Redacted())
	}
	vc.Set(gocv.VideoCaptureBufferSize, 1)

	return &videoDevice{vc: vc, mat: gocv.NewMat()}, nil
}

type videoDevice struct {
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

// Read grabs the next frame and copies it out of the OpenCV buffer into a Go image.
func (d *videoDevice) Read() (image.Image, error) {
	if ok := d.vc.Read(&d.mat); !ok || d.mat.Empty() {
		return nil, ErrReadFailed
	}

	img, err := d.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return img, nil
}

func (d *videoDevice) Close() error {
	d.mat.Close()
	return d.vc.Close()
}
