package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type fakeDevices struct {
	errs     []error // returned in order, nil means success
	requests []Constraints
}

func (f *fakeDevices) GetUserMedia(_ context.Context, c Constraints) (*Stream, error) {
	f.requests = append(f.requests, c)
	i := len(f.requests) - 1
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return NewStream(NewTrack("fake", TrackSettings{FacingMode: c.Video.FacingMode}, nil, nil)), nil
}

func newTestAcquirer(d Devices) (*Acquirer, *[]time.Duration) {
	var waits []time.Duration
	a := NewAcquirer(d)
	a.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	a.wait = func(d time.Duration) <-chan time.Time {
		waits = append(waits, d)
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	}
	return a, &waits
}

func TestRequestCameraFacingModeMatchesHint(t *testing.T) {
	cases := []struct {
		hint DeviceHint
		want Constraints
	}{
		{HintMobile, Constraints{Video: VideoConstraints{FacingMode: FacingEnvironment}}},
		{HintDesktop, Constraints{}},
	}
	for _, tc := range cases {
		t.Run(tc.hint.String(), func(t *testing.T) {
			fd := &fakeDevices{}
			a, _ := newTestAcquirer(fd)
			if _, err := a.RequestCamera(context.Background(), tc.hint); err != nil {
				t.Fatalf("request: %v", err)
			}
			if len(fd.requests) != 1 {
				t.Fatalf("requests = %d, want 1", len(fd.requests))
			}
			if got := fd.requests[0]; got != tc.want {
				t.Fatalf("constraints = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestRequestCameraFallbackOnce(t *testing.T) {
	fd := &fakeDevices{errs: []error{Fail(ReasonConstraintUnsatisfiable, nil)}}
	a, waits := newTestAcquirer(fd)

	s, err := a.RequestCamera(context.Background(), HintMobile)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if s == nil {
		t.Fatalf("expected stream from fallback")
	}
	if len(fd.requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(fd.requests))
	}
	if fd.requests[1] != (Constraints{}) {
		t.Fatalf("fallback constraints = %+v, want unconstrained", fd.requests[1])
	}
	if len(*waits) != 1 || (*waits)[0] != DefaultFallbackDelay {
		t.Fatalf("waits = %v, want [%v]", *waits, DefaultFallbackDelay)
	}
}

func TestRequestCameraFallbackFailureIsUnavailable(t *testing.T) {
	fd := &fakeDevices{errs: []error{
		Fail(ReasonConstraintUnsatisfiable, nil),
		Fail(ReasonConstraintUnsatisfiable, nil),
		nil,
	}}
	a, waits := newTestAcquirer(fd)

	_, err := a.RequestCamera(context.Background(), HintMobile)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want unavailable", err)
	}
	if len(fd.requests) != 2 {
		t.Fatalf("requests = %d, want exactly 2", len(fd.requests))
	}
	if len(*waits) != 1 {
		t.Fatalf("waits = %d, want 1", len(*waits))
	}
}

func TestRequestCameraNoRetryForOtherFailures(t *testing.T) {
	for _, sentinel := range []*Error{ErrPermissionDenied, ErrDeviceNotFound, ErrDeviceBusy, ErrUnavailable} {
		t.Run(sentinel.Reason.String(), func(t *testing.T) {
			fd := &fakeDevices{errs: []error{Fail(sentinel.Reason, errors.New("boom"))}}
			a, waits := newTestAcquirer(fd)

			_, err := a.RequestCamera(context.Background(), HintMobile)
			if !errors.Is(err, sentinel) {
				t.Fatalf("err = %v, want %v", err, sentinel)
			}
			if len(fd.requests) != 1 || len(*waits) != 0 {
				t.Fatalf("requests = %d waits = %d, want 1 and 0", len(fd.requests), len(*waits))
			}
		})
	}
}

func TestRequestCameraUnclassifiedIsUnavailable(t *testing.T) {
	fd := &fakeDevices{errs: []error{errors.New("driver exploded")}}
	a, _ := newTestAcquirer(fd)

	_, err := a.RequestCamera(context.Background(), HintDesktop)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want unavailable", err)
	}
	var me *Error
	if !errors.As(err, &me) || !strings.Contains(me.Message(), "driver exploded") {
		t.Fatalf("message should carry diagnostic, got %v", err)
	}
}

func TestRequestCameraUnsupported(t *testing.T) {
	a, _ := newTestAcquirer(nil)
	_, err := a.RequestCamera(context.Background(), HintMobile)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want unsupported", err)
	}
}

func TestErrorMessagesDistinct(t *testing.T) {
	seen := make(map[string]Reason)
	for _, r := range []Reason{
		ReasonUnavailable, ReasonPermissionDenied, ReasonDeviceNotFound,
		ReasonDeviceBusy, ReasonConstraintUnsatisfiable, ReasonUnsupported,
	} {
		msg := Fail(r, nil).Message()
		if prev, ok := seen[msg]; ok {
			t.Fatalf("%v and %v share message %q", prev, r, msg)
		}
		seen[msg] = r
	}
}

func TestParseDeviceHint(t *testing.T) {
	if h, err := ParseDeviceHint("Mobile"); err != nil || h != HintMobile {
		t.Fatalf("mobile = %v, %v", h, err)
	}
	if h, err := ParseDeviceHint(""); err != nil || h != HintDesktop {
		t.Fatalf("empty = %v, %v", h, err)
	}
	if _, err := ParseDeviceHint("toaster"); err == nil {
		t.Fatalf("expected error for unknown hint")
	}
}
