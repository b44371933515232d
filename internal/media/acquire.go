package media

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultFallbackDelay is how long RequestCamera waits before retrying
// without a facing mode.
const DefaultFallbackDelay = 2 * time.Second

type DeviceHint int

const (
	HintDesktop DeviceHint = iota
	HintMobile
)

func (h DeviceHint) String() string {
	if h == HintMobile {
		return "mobile"
	}
	return "desktop"
}

func ParseDeviceHint(s string) (DeviceHint, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mobile", "phone":
		return HintMobile, nil
	case "desktop", "":
		return HintDesktop, nil
	}
	return HintDesktop, fmt.Errorf("unknown device hint %q (want mobile or desktop)", s)
}

type FacingMode string

const (
	FacingAny         FacingMode = ""
	FacingUser        FacingMode = "user"
	FacingEnvironment FacingMode = "environment"
)

type VideoConstraints struct {
	FacingMode FacingMode
}

// Constraints is a video request. The zero value asks for any camera.
type Constraints struct {
	Video VideoConstraints
}

// ConstraintsFor picks the preferred request for a device class: the rear
// camera on mobile, whatever is available on desktop.
func ConstraintsFor(hint DeviceHint) Constraints {
	if hint == HintMobile {
		return Constraints{Video: VideoConstraints{FacingMode: FacingEnvironment}}
	}
	return Constraints{}
}

// Devices is the platform camera API. Implementations return *Error values
// so failures can be classified.
type Devices interface {
	GetUserMedia(ctx context.Context, c Constraints) (*Stream, error)
}

type Acquirer struct {
	Devices       Devices
	FallbackDelay time.Duration
	Logger        *slog.Logger

	wait func(time.Duration) <-chan time.Time
}

func NewAcquirer(devices Devices) *Acquirer {
	return &Acquirer{
		Devices:       devices,
		FallbackDelay: DefaultFallbackDelay,
		Logger:        slog.Default(),
		wait:          time.After,
	}
}

// RequestCamera asks for a video stream matching hint. An unsatisfiable
// facing mode is retried once, unconstrained, after FallbackDelay; the
// delay is not cancelled by ctx.
func (a *Acquirer) RequestCamera(ctx context.Context, hint DeviceHint) (*Stream, error) {
	if a.Devices == nil {
		return nil, Fail(ReasonUnsupported, nil)
	}
	log := a.logger()

	c := ConstraintsFor(hint)
	log.Debug("requesting camera", "hint", hint, "facing", c.Video.FacingMode)

	stream, err := a.Devices.GetUserMedia(ctx, c)
	if err == nil {
		return stream, nil
	}
	reason := ReasonOf(err)
	if reason != ReasonConstraintUnsatisfiable {
		log.Warn("camera request failed", "reason", reason, "err", err)
		return nil, classify(err)
	}

	log.Info("facing mode unavailable, retrying unconstrained", "delay", a.FallbackDelay)
	<-a.after(a.FallbackDelay)

	stream, err = a.Devices.GetUserMedia(ctx, Constraints{})
	if err != nil {
		log.Warn("fallback camera request failed", "err", err)
		return nil, Fail(ReasonUnavailable, err)
	}
	return stream, nil
}

func (a *Acquirer) after(d time.Duration) <-chan time.Time {
	if a.wait != nil {
		return a.wait(d)
	}
	return time.After(d)
}

func (a *Acquirer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

func classify(err error) *Error {
	if me, ok := err.(*Error); ok {
		return me
	}
	return Fail(ReasonOf(err), err)
}
