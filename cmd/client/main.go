package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"lasertag/internal/client"
	"lasertag/internal/hud"
	"lasertag/internal/media"
	"lasertag/internal/render"
	"lasertag/internal/session"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).ExecuteContext(ctx))
}

func run(ctx context.Context, cfg *Config) error {
	log := newLogger(cfg.verbose)

	acquirer := media.NewAcquirer(cfg.devices())
	acquirer.FallbackDelay = cfg.fallbackDelay
	acquirer.Logger = log

	nc := client.NewNetClient(client.WithLogger(log))

	s, err := session.Start(ctx, session.Config{
		Name:         cfg.name,
		Endpoint:     cfg.endpoint,
		Hint:         cfg.hint,
		SendFrames:   cfg.sendFrames,
		FrameQuality: cfg.frameQuality,
		Haptics:      hud.LogHaptics{Logger: log},
		Logger:       log,
	}, acquirer, nc)
	if err != nil {
		var me *media.Error
		if errors.As(err, &me) {
			return errors.New(me.Message())
		}
		return err
	}
	defer s.Close()

	if cfg.headless {
		return runHeadless(ctx, s)
	}

	ebiten.SetWindowSize(render.ScreenWidth, render.ScreenHeight)
	ebiten.SetWindowTitle("Laser Tag - " + s.Name())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(NewGame(ctx, s)); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func runHeadless(ctx context.Context, s *session.Session) error {
	cmds := make(chan session.Command)

	go func() {
		defer close(cmds)
		fmt.Fprintln(os.Stderr, session.ErrHelp)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			cmd, err := session.ParseCommand(scanner.Text())
			if err == io.EOF {
				return
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			select {
			case cmds <- cmd:
			case <-ctx.Done():
				return
			}
		}
	}()

	err := s.Play(ctx, cmds, 50*time.Millisecond)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
