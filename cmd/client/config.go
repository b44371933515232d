package main

import (
	"errors"
	"fmt"
	"lasertag/internal/client"
	"lasertag/internal/media"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const releaseVersion = "0.1.0"

type Config struct {
	name          string
	endpoint      string
	device        string
	camera        string
	fallbackDelay time.Duration
	sendFrames    bool
	frameQuality  int
	headless      bool
	verbose       bool

	hint media.DeviceHint
}

func (c *Config) validate() error {
	c.name = strings.TrimSpace(c.name)
	if c.name == "" {
		return errors.New("please enter your name first (--name or LASERTAG_NAME)")
	}
	u, err := url.Parse(c.endpoint)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return fmt.Errorf("invalid endpoint (must be a ws:// or wss:// URL): %q", c.endpoint)
	}
	if c.hint, err = media.ParseDeviceHint(c.device); err != nil {
		return err
	}
	if c.frameQuality < 1 || c.frameQuality > 100 {
		return fmt.Errorf("invalid frame quality (must be between 1-100 inclusive): %d", c.frameQuality)
	}
	if c.fallbackDelay < 0 {
		return fmt.Errorf("invalid fallback delay: %s", c.fallbackDelay)
	}
	return nil
}

// devices picks the camera backend: the built-in test pattern or a
// directory of still frames.
func (c *Config) devices() media.Devices {
	if c.camera == "" || c.camera == "synthetic" {
		return media.NewSyntheticDevices()
	}
	return media.NewDirectoryDevices(c.camera)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("LASERTAG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "lasertag",
		Short:   "Camera-based laser tag client.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.name, "name", "n", "", "player name (env: LASERTAG_NAME)")
	fs.StringVarP(&cfg.endpoint, "endpoint", "e", client.DefaultEndpoint, "game server websocket URL (env: LASERTAG_ENDPOINT)")
	fs.StringVarP(&cfg.device, "device", "d", "desktop", "device class, desktop or mobile (env: LASERTAG_DEVICE)")
	fs.StringVarP(&cfg.camera, "camera", "c", "synthetic", "camera source: synthetic or a directory of frames (env: LASERTAG_CAMERA)")
	fs.DurationVar(&cfg.fallbackDelay, "fallback-delay", media.DefaultFallbackDelay, "wait before retrying the camera without a facing mode (env: LASERTAG_FALLBACK_DELAY)")
	fs.BoolVar(&cfg.sendFrames, "send-frames", false, "attach the current camera frame to every shot (env: LASERTAG_SEND_FRAMES)")
	fs.IntVar(&cfg.frameQuality, "frame-quality", media.DefaultJPEGQuality, "JPEG quality of attached frames (env: LASERTAG_FRAME_QUALITY)")
	fs.BoolVar(&cfg.headless, "headless", false, "read commands from stdin instead of opening a window (env: LASERTAG_HEADLESS)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "log at debug level (env: LASERTAG_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("lasertag v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
