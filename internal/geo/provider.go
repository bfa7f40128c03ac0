package geo

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

type State string

const (
	StateIdle       State = "idle"
	StateRequesting State = "requesting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Options are handed to the Locator untouched. The provider never enforces a
// timeout of its own.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// Locator performs one single-shot position query.
type Locator interface {
	Locate(ctx context.Context, opts Options) (Coordinates, error)
}

type LocatorFunc func(ctx context.Context, opts Options) (Coordinates, error)

func (f LocatorFunc) Locate(ctx context.Context, opts Options) (Coordinates, error) {
	return f(ctx, opts)
}

type Snapshot struct {
	State       State        `json:"state"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Loading     bool         `json:"loading"`
	Error       string       `json:"error,omitempty"`
}

// Provider wraps a Locator into an idle → requesting → success|error cycle.
// At most one request is in flight at a time.
type Provider struct {
	locator Locator
	opts    Options

	mu     sync.Mutex
	state  State
	coords *Coordinates
	errMsg string
}

func NewProvider(locator Locator, opts Options) *Provider {
	return &Provider{locator: locator, opts: opts, state: StateIdle}
}

// RequestLocation runs one query and reports whether it started one. A call
// made while another is in flight returns false without touching state.
func (p *Provider) RequestLocation(ctx context.Context) bool {
	p.mu.Lock()
	if p.state == StateRequesting {
		p.mu.Unlock()
		return false
	}
	p.state = StateRequesting
	p.mu.Unlock()

	coords, err := p.locator.Locate(ctx, p.opts)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.state = StateError
		p.errMsg = errorMessage(err)
		return true
	}
	p.state = StateSuccess
	p.coords = &coords
	p.errMsg = ""
	return true
}

func (p *Provider) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap := Snapshot{
		State:   p.state,
		Loading: p.state == StateRequesting,
		Error:   p.errMsg,
	}
	if p.coords != nil {
		c := *p.coords
		snap.Coordinates = &c
	}
	return snap
}

// Coordinates returns the last captured fix, which survives later failures.
func (p *Provider) Coordinates() (lat, lng *float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.coords == nil {
		return nil, nil
	}
	la, lo := p.coords.Latitude, p.coords.Longitude
	return &la, &lo
}

var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("location unavailable")
	ErrTimeout             = errors.New("location request timed out")
	ErrUnsupported         = errors.New("geolocation is not supported")
)

func errorMessage(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "Location access denied. Please enable location permissions and try again."
	case errors.Is(err, ErrPositionUnavailable):
		return "Location information is unavailable. Please try again."
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "Location request timed out. Please try again."
	case errors.Is(err, ErrUnsupported):
		return "Geolocation is not supported by your browser."
	default:
		return "Unable to get your location. Please try again."
	}
}

// FormLocator replays the fix the browser captured and posted with the form.
// DeviceError carries the browser's failure code when no fix was obtained.
type FormLocator struct {
	Latitude    string
	Longitude   string
	DeviceError string
}

func (l FormLocator) Locate(ctx context.Context, _ Options) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}
	if code := strings.ToLower(strings.TrimSpace(l.DeviceError)); code != "" {
		switch code {
		case "permission_denied", "1":
			return Coordinates{}, ErrPermissionDenied
		case "position_unavailable", "2":
			return Coordinates{}, ErrPositionUnavailable
		case "timeout", "3":
			return Coordinates{}, ErrTimeout
		case "unsupported":
			return Coordinates{}, ErrUnsupported
		default:
			return Coordinates{}, errors.New(code)
		}
	}
	if strings.TrimSpace(l.Latitude) == "" || strings.TrimSpace(l.Longitude) == "" {
		return Coordinates{}, ErrPositionUnavailable
	}
	lat, ok := parseCoordinate(l.Latitude, 90)
	if !ok {
		return Coordinates{}, ErrPositionUnavailable
	}
	lng, ok := parseCoordinate(l.Longitude, 180)
	if !ok {
		return Coordinates{}, ErrPositionUnavailable
	}
	return Coordinates{Latitude: lat, Longitude: lng}, nil
}

// parseCoordinate accepts finite values within [-limit, limit]. NaN fails
// every range comparison, so it is rejected explicitly.
func parseCoordinate(raw string, limit float64) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < -limit || v > limit {
		return 0, false
	}
	return v, true
}
