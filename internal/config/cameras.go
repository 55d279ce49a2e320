package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownCamera is returned when a camera name is not in the list.
var ErrUnknownCamera = errors.New("unknown camera")

// Camera is a named stream endpoint the kiosk can switch to.
type Camera struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"-"`
}

// CameraList is the ordered list of configured cameras.
type CameraList struct {
	Cameras []Camera `yaml:"cameras"`
}

// LoadCameras builds the camera list. A non-empty STREAM_URL wins over the file
// and yields a single camera named "default".
func LoadCameras(cfg *Config) (*CameraList, error) {
	if cfg.StreamURL != "" {
		return &CameraList{Cameras: []Camera{{Name: "default", URL: cfg.StreamURL}}}, nil
	}

	data, err := os.ReadFile(cfg.CamerasFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read cameras file %s: %w", cfg.CamerasFile, err)
	}
	return ParseCameras(data)
}

// ParseCameras decodes a YAML camera list and checks that names are unique and non-empty.
func ParseCameras(data []byte) (*CameraList, error) {
	var list CameraList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse cameras: %w", err)
	}

	seen := make(map[string]bool, len(list.Cameras))
	for i, cam := range list.Cameras {
		name := strings.TrimSpace(cam.Name)
		if name == "" {
			return nil, fmt.Errorf("camera #%d has no name", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate camera name %q", name)
		}
		seen[name] = true
		list.Cameras[i].Name = name
	}
	return &list, nil
}

// Find returns the camera with the given name.
func (l *CameraList) Find(name string) (Camera, error) {
	for _, cam := range l.Cameras {
		if cam.Name == name {
			return cam, nil
		}
	}
	return Camera{}, fmt.Errorf("%w: %s", ErrUnknownCamera, name)
}

// Initial picks the startup camera: the named one when set, otherwise the first.
func (l *CameraList) Initial(name string) (Camera, error) {
	if name != "" {
		return l.Find(name)
	}
	if len(l.Cameras) == 0 {
		return Camera{}, fmt.Errorf("%w: camera list is empty", ErrUnknownCamera)
	}
	return l.Cameras[0], nil
}

// Names returns camera names in configured order.
func (l *CameraList) Names() []string {
	names := make([]string, 0, len(l.Cameras))
	for _, cam := range l.Cameras {
		names = append(names, cam.Name)
	}
	return names
}
