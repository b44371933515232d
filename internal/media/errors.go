package media

import (
	"errors"
	"fmt"
)

// Reason classifies why a camera request failed.
type Reason int

const (
	ReasonUnavailable Reason = iota
	ReasonPermissionDenied
	ReasonDeviceNotFound
	ReasonDeviceBusy
	ReasonConstraintUnsatisfiable
	ReasonUnsupported
)

func (r Reason) String() string {
	switch r {
	case ReasonPermissionDenied:
		return "permission denied"
	case ReasonDeviceNotFound:
		return "device not found"
	case ReasonDeviceBusy:
		return "device busy"
	case ReasonConstraintUnsatisfiable:
		return "constraint unsatisfiable"
	case ReasonUnsupported:
		return "unsupported"
	default:
		return "unavailable"
	}
}

// Sentinels for errors.Is. Any *Error with the same Reason matches.
var (
	ErrPermissionDenied        = &Error{Reason: ReasonPermissionDenied}
	ErrDeviceNotFound          = &Error{Reason: ReasonDeviceNotFound}
	ErrDeviceBusy              = &Error{Reason: ReasonDeviceBusy}
	ErrConstraintUnsatisfiable = &Error{Reason: ReasonConstraintUnsatisfiable}
	ErrUnsupported             = &Error{Reason: ReasonUnsupported}
	ErrUnavailable             = &Error{Reason: ReasonUnavailable}
)

type Error struct {
	Reason Reason
	Err    error
}

func Fail(reason Reason, err error) *Error {
	return &Error{Reason: reason, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "camera: " + e.Reason.String()
	}
	return fmt.Sprintf("camera: %s: %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == nil && t.Reason == e.Reason
}

// Message is the text shown to the player.
func (e *Error) Message() string {
	switch e.Reason {
	case ReasonPermissionDenied:
		return "Camera access denied. Please allow camera access in your settings and try again."
	case ReasonDeviceNotFound:
		return "No camera found on this device."
	case ReasonDeviceBusy:
		return "The camera is being used by another application. Close it and try again."
	case ReasonConstraintUnsatisfiable:
		return "The requested camera is not available on this device."
	case ReasonUnsupported:
		return "Camera access is not supported on this platform."
	}
	if e.Err != nil {
		return "Error accessing camera: " + e.Err.Error()
	}
	return "Error accessing camera."
}

// ReasonOf classifies err. Errors that are not *Error count as unavailable.
func ReasonOf(err error) Reason {
	var me *Error
	if errors.As(err, &me) {
		return me.Reason
	}
	return ReasonUnavailable
}
