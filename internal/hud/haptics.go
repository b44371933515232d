package hud

import (
	"log/slog"
	"time"
)

// Haptics plays a vibration pattern: alternating on and off durations.
type Haptics interface {
	Vibrate(pattern ...time.Duration)
}

type NopHaptics struct{}

func (NopHaptics) Vibrate(...time.Duration) {}

// LogHaptics records patterns at debug level, for machines with no motor.
type LogHaptics struct {
	Logger *slog.Logger
}

func (l LogHaptics) Vibrate(pattern ...time.Duration) {
	log := l.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Debug("vibrate", "pattern", pattern)
}
