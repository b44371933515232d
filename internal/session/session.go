// Package session owns one player's game from camera grant to teardown: the
// camera stream, the server connection and the HUD that mirrors server state.
package session

import (
	"context"
	"errors"
	"fmt"
	"lasertag/internal/client"
	"lasertag/internal/hud"
	"lasertag/internal/media"
	"lasertag/internal/net"
	"log/slog"
	"strings"
	"sync"
	"time"
)

var ErrNameRequired = errors.New("please enter your name first")

// Transport is the realtime connection to the game server.
type Transport interface {
	client.Registrar
	SetHandshake(event string, payload any) error
	Connect(ctx context.Context, endpoint string) error
	Send(event string, payload any) error
	State() client.State
	Dispatch() int
	Disconnect()
}

type Camera interface {
	RequestCamera(ctx context.Context, hint media.DeviceHint) (*media.Stream, error)
}

type Config struct {
	Name     string
	Endpoint string
	Hint     media.DeviceHint

	// SendFrames attaches the current camera frame to every shot.
	SendFrames   bool
	FrameQuality int

	Haptics hud.Haptics
	Logger  *slog.Logger
}

type Session struct {
	name       string
	endpoint   string
	sendFrames bool
	quality    int

	stream    *media.Stream
	transport Transport
	hud       *hud.HUD
	log       *slog.Logger

	closeOnce sync.Once
}

// Start acquires the camera and, once it is granted, creates the session and
// connects to the server. Nothing is connected if the camera fails.
func Start(ctx context.Context, cfg Config, camera Camera, transport Transport) (*Session, error) {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	quality := cfg.FrameQuality
	if quality <= 0 || quality > 100 {
		quality = media.DefaultJPEGQuality
	}

	stream, err := camera.RequestCamera(ctx, cfg.Hint)
	if err != nil {
		return nil, err
	}

	s := &Session{
		name:       name,
		endpoint:   cfg.Endpoint,
		sendFrames: cfg.SendFrames,
		quality:    quality,
		stream:     stream,
		transport:  transport,
		hud:        hud.New(name, cfg.Haptics),
		log:        log.With("player", name),
	}
	s.registerHandlers()

	if err := transport.SetHandshake(net.EventRegisterPlayer, net.RegisterPlayerMessage{Name: name}); err != nil {
		stream.Stop()
		return nil, fmt.Errorf("register handshake: %w", err)
	}
	if err := transport.Connect(ctx, cfg.Endpoint); err != nil {
		stream.Stop()
		return nil, fmt.Errorf("connect: %w", err)
	}
	s.log.Info("session started", "endpoint", cfg.Endpoint, "hint", cfg.Hint)
	return s, nil
}

func (s *Session) Name() string { return s.name }

func (s *Session) HUD() *hud.HUD { return s.hud }

func (s *Session) Stream() *media.Stream { return s.stream }

func (s *Session) State() client.State { return s.transport.State() }

// Dispatch handles queued server events on the calling goroutine.
func (s *Session) Dispatch() int { return s.transport.Dispatch() }

// Shoot sends a shot if connected with ammo left. It reports whether a shot
// was sent. The cached ammo is left for the server to update.
func (s *Session) Shoot() bool {
	if s.transport.State() != client.StateConnected {
		return false
	}
	if s.hud.Player().Ammo <= 0 {
		s.hud.Toast("Out of Ammo! Reload!", hud.ToneDanger)
		return false
	}
	if !s.hud.TryShoot() {
		return false
	}

	msg := net.ShootMessage{Timestamp: time.Now().UnixMilli()}
	if s.sendFrames {
		if frame := s.stream.Frame(); frame != nil {
			url, err := media.EncodeDataURL(frame, s.quality)
			if err != nil {
				s.log.Warn("encoding camera frame", "err", err)
			} else {
				msg.CameraFrame = url
			}
		}
	}

	if err := s.transport.Send(net.EventShoot, msg); err != nil {
		s.log.Debug("shot dropped", "err", err)
		return false
	}
	s.hud.Vibrate(50 * time.Millisecond)
	return true
}

func (s *Session) Reload() bool {
	if s.transport.State() != client.StateConnected {
		return false
	}
	if err := s.transport.Send(net.EventReload, net.ReloadMessage{}); err != nil {
		s.log.Debug("reload dropped", "err", err)
		return false
	}
	s.hud.Toast("Reloading...", hud.ToneSuccess)
	s.hud.Vibrate(100*time.Millisecond, 50*time.Millisecond, 100*time.Millisecond)
	return true
}

// Close releases the camera and disconnects. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.stream.Stop()
		s.transport.Disconnect()
		s.log.Info("session closed")
	})
}
