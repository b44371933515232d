package media

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"time"
)

type SyntheticCamera struct {
	Label  string
	Facing FacingMode
	Width  int
	Height int
}

// SyntheticDevices serves moving colour-bar test patterns. It behaves like a
// real camera API: a denied permission, no cameras, a missing facing mode
// or a camera that is already open each fail with the matching reason.
type SyntheticDevices struct {
	Cameras []SyntheticCamera
	Deny    bool

	mu    sync.Mutex
	inUse map[string]bool
}

// NewSyntheticDevices returns a phone-like device with a front and rear camera.
func NewSyntheticDevices() *SyntheticDevices {
	return &SyntheticDevices{
		Cameras: []SyntheticCamera{
			{Label: "synthetic front", Facing: FacingUser, Width: 640, Height: 360},
			{Label: "synthetic rear", Facing: FacingEnvironment, Width: 640, Height: 360},
		},
	}
}

func (d *SyntheticDevices) GetUserMedia(ctx context.Context, c Constraints) (*Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, Fail(ReasonUnavailable, err)
	}
	if d.Deny {
		return nil, Fail(ReasonPermissionDenied, errors.New("user declined camera access"))
	}
	if len(d.Cameras) == 0 {
		return nil, Fail(ReasonDeviceNotFound, nil)
	}

	cam, ok := d.pick(c.Video.FacingMode)
	if !ok {
		return nil, Fail(ReasonConstraintUnsatisfiable, errors.New("no camera facing "+string(c.Video.FacingMode)))
	}

	d.mu.Lock()
	if d.inUse == nil {
		d.inUse = make(map[string]bool)
	}
	if d.inUse[cam.Label] {
		d.mu.Unlock()
		return nil, Fail(ReasonDeviceBusy, errors.New(cam.Label+" is already open"))
	}
	d.inUse[cam.Label] = true
	d.mu.Unlock()

	w, h := cam.Width, cam.Height
	if w <= 0 || h <= 0 {
		w, h = 640, 360
	}
	start := time.Now()
	frame := func() image.Image {
		return testPattern(w, h, time.Since(start))
	}
	release := func() {
		d.mu.Lock()
		delete(d.inUse, cam.Label)
		d.mu.Unlock()
	}

	track := NewTrack(cam.Label, TrackSettings{FacingMode: cam.Facing, Width: w, Height: h}, frame, release)
	return NewStream(track), nil
}

// InUse reports whether the labelled camera is currently held by a stream.
func (d *SyntheticDevices) InUse(label string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inUse[label]
}

func (d *SyntheticDevices) pick(facing FacingMode) (SyntheticCamera, bool) {
	if facing == FacingAny {
		return d.Cameras[0], true
	}
	for _, cam := range d.Cameras {
		if cam.Facing == facing {
			return cam, true
		}
	}
	return SyntheticCamera{}, false
}

var barColors = []color.RGBA{
	{192, 192, 192, 255},
	{192, 192, 0, 255},
	{0, 192, 192, 255},
	{0, 192, 0, 255},
	{192, 0, 192, 255},
	{192, 0, 0, 255},
	{0, 0, 192, 255},
	{16, 16, 16, 255},
}

func testPattern(w, h int, elapsed time.Duration) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	barW := w / len(barColors)
	if barW == 0 {
		barW = 1
	}
	// a white scan line sweeps down once per second
	scan := int(elapsed.Milliseconds()%1000) * h / 1000

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := x / barW
			if i >= len(barColors) {
				i = len(barColors) - 1
			}
			c := barColors[i]
			if y == scan {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
