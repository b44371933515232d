package media

import (
	"image"
	"sync"
)

type TrackSettings struct {
	FacingMode FacingMode
	Width      int
	Height     int
}

// Track is one live video source. Stopping it releases the device.
type Track struct {
	Label    string
	Settings TrackSettings

	frame   func() image.Image
	release func()

	mu      sync.Mutex
	stopped bool
}

func NewTrack(label string, settings TrackSettings, frame func() image.Image, release func()) *Track {
	return &Track{
		Label:    label,
		Settings: settings,
		frame:    frame,
		release:  release,
	}
}

// Frame returns the current image, or nil once the track is stopped.
func (t *Track) Frame() image.Image {
	t.mu.Lock()
	stopped := t.stopped
	t.mu.Unlock()
	if stopped || t.frame == nil {
		return nil
	}
	return t.frame()
}

func (t *Track) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.mu.Unlock()

	if t.release != nil {
		t.release()
	}
}

func (t *Track) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type Stream struct {
	tracks []*Track
}

func NewStream(tracks ...*Track) *Stream {
	return &Stream{tracks: tracks}
}

func (s *Stream) Tracks() []*Track {
	return s.tracks
}

// Frame returns the current image of the first live track.
func (s *Stream) Frame() image.Image {
	for _, t := range s.tracks {
		if img := t.Frame(); img != nil {
			return img
		}
	}
	return nil
}

// Active reports whether any track is still running.
func (s *Stream) Active() bool {
	for _, t := range s.tracks {
		if !t.Stopped() {
			return true
		}
	}
	return false
}

// Stop stops every track. Safe to call more than once.
func (s *Stream) Stop() {
	for _, t := range s.tracks {
		t.Stop()
	}
}
