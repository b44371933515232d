package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/webp"
)

const DefaultFrameInterval = 100 * time.Millisecond

// DirectoryDevices plays the images of a directory in name order as a single
// camera without a facing mode, looping forever.
type DirectoryDevices struct {
	Dir           string
	FrameInterval time.Duration

	mu    sync.Mutex
	inUse bool
}

func NewDirectoryDevices(dir string) *DirectoryDevices {
	return &DirectoryDevices{Dir: dir, FrameInterval: DefaultFrameInterval}
}

func (d *DirectoryDevices) GetUserMedia(ctx context.Context, c Constraints) (*Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, Fail(ReasonUnavailable, err)
	}
	if c.Video.FacingMode != FacingAny {
		return nil, Fail(ReasonConstraintUnsatisfiable, fmt.Errorf("%s has no %s camera", d.Dir, c.Video.FacingMode))
	}

	d.mu.Lock()
	if d.inUse {
		d.mu.Unlock()
		return nil, Fail(ReasonDeviceBusy, fmt.Errorf("%s is already open", d.Dir))
	}
	d.inUse = true
	d.mu.Unlock()

	release := func() {
		d.mu.Lock()
		d.inUse = false
		d.mu.Unlock()
	}

	frames, err := loadFrames(d.Dir)
	if err != nil {
		release()
		return nil, err
	}

	interval := d.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	start := time.Now()
	frame := func() image.Image {
		i := int(time.Since(start)/interval) % len(frames)
		return frames[i]
	}
	b := frames[0].Bounds()
	settings := TrackSettings{Width: b.Dx(), Height: b.Dy()}
	return NewStream(NewTrack(filepath.Base(d.Dir), settings, frame, release)), nil
}

var frameExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

func loadFrames(dir string) ([]image.Image, error) {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, Fail(ReasonDeviceNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return nil, Fail(ReasonPermissionDenied, err)
	case err != nil:
		return nil, Fail(ReasonUnavailable, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !frameExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	frames := make([]image.Image, 0, len(names))
	for _, name := range names {
		img, err := decodeFile(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return nil, Fail(ReasonPermissionDenied, err)
			}
			return nil, Fail(ReasonUnavailable, err)
		}
		frames = append(frames, img)
	}
	if len(frames) == 0 {
		return nil, Fail(ReasonDeviceNotFound, fmt.Errorf("no frames in %s", dir))
	}
	return frames, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
