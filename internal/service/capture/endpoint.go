package capture

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidEndpoint is returned for empty or malformed stream addresses.
var ErrInvalidEndpoint = errors.New("invalid stream endpoint")

// Endpoint identifies a video source: either a URL (rtsp://, http://, file://)
// or a local device index such as "0".
type Endpoint struct {
	raw      string
	deviceID int
	isDevice bool
	redacted string
}

// ParseEndpoint validates a stream address. Reachability is not checked.
func ParseEndpoint(raw string) (Endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Endpoint{}, fmt.Errorf("%w: empty address", ErrInvalidEndpoint)
	}

	if id, err := strconv.Atoi(raw); err == nil {
		if id < 0 {
			return Endpoint{}, fmt.Errorf("%w: negative device index %d", ErrInvalidEndpoint, id)
		}
		return Endpoint{raw: raw, deviceID: id, isDevice: true, redacted: "device:" + raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if u.Scheme == "" {
		return Endpoint{}, fmt.Errorf("%w: missing scheme in %q", ErrInvalidEndpoint, raw)
	}
	if u.Host == "" && u.Path == "" && u.Opaque == "" {
		return Endpoint{}, fmt.Errorf("%w: missing host or path", ErrInvalidEndpoint)
	}

	return Endpoint{raw: raw, redacted: u.Redacted()}, nil
}

// String returns the address as given, credentials included.
func (e Endpoint) String() string {
	return e.raw
}

// Redacted returns the address with the password masked, for logs and the UI.
func (e Endpoint) Redacted() string {
	return e.redacted
}

// Device reports whether the endpoint is a local capture device and its index.
func (e Endpoint) Device() (int, bool) {
	return e.deviceID, e.isDevice
}

// IsZero reports whether the endpoint was never set.
func (e Endpoint) IsZero() bool {
	return e.raw == ""
}
