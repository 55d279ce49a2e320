package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"palletkiosk/internal/config"
	"palletkiosk/internal/logger"
	"palletkiosk/internal/model"
	"palletkiosk/internal/service/capture"
	"palletkiosk/internal/service/scanner"
)

var errTimeout = errors.New("timed out")

type result struct {
	size       string
	detections []model.Detection
	err        error
}

func main() {
	camerasFile := flag.String("cameras", "cameras.yaml", "Camera list to probe")
	timeout := flag.Duration("timeout", 5*time.Second, "Time allowed to open a camera and read one frame")
	marker := flag.String("marker", "PALLET", "Substring an accepted payload must contain")
	flag.Parse()

	data, err := os.ReadFile(*camerasFile)
	if err != nil {
		log.Fatalf("Failed to read cameras file: %v", err)
	}
	cameras, err := config.ParseCameras(data)
	if err != nil {
		log.Fatalf("Invalid cameras file: %v", err)
	}

	decoder := scanner.NewQRDecoder()
	defer decoder.Close()
	pipeline := scanner.NewPipeline(decoder, *marker, logger.NewDiscard())

	fmt.Printf("Probing %d camera(s) from %s\n", len(cameras.Cameras), *camerasFile)

	failed := 0
	for _, cam := range cameras.Cameras {
		endpoint, err := capture.ParseEndpoint(cam.URL)
		if err != nil {
			fmt.Printf("❌ %-16s %v\n", cam.Name, err)
			failed++
			continue
		}

		res := probe(endpoint, pipeline, *timeout)
		if res.err != nil {
			fmt.Printf("❌ %-16s %s: %v\n", cam.Name, endpoint.Redacted(), res.err)
			failed++
			continue
		}

		fmt.Printf("✅ %-16s %s: %s\n", cam.Name, endpoint.Redacted(), res.size)
		for _, d := range res.detections {
			verdict := "rejected"
			if d.Accepted {
				verdict = "accepted"
			}
			fmt.Printf("   code %q (%s)\n", d.Payload, verdict)
		}
	}

	if failed > 0 {
		fmt.Printf("%d of %d camera(s) failed\n", failed, len(cameras.Cameras))
		os.Exit(1)
	}
}

// probe opens the endpoint and reads one frame. The device is closed by the
// probing goroutine even when the timeout fires first.
func probe(endpoint capture.Endpoint, pipeline *scanner.Pipeline, timeout time.Duration) result {
	done := make(chan result, 1)
	go func() {
		device, err := capture.VideoOpener{}.Open(endpoint)
		if err != nil {
			done <- result{err: err}
			return
		}
		defer device.Close()

		img, err := device.Read()
		if err != nil {
			done <- result{err: err}
			return
		}

		done <- result{
			size:       fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()),
			detections: pipeline.Scan(&capture.Frame{Seq: 1, CapturedAt: time.Now(), Image: img}),
		}
	}()

	select {
	case res := <-done:
		return res
	case <-time.After(timeout):
		return result{err: fmt.Errorf("%w after %v", errTimeout, timeout)}
	}
}
