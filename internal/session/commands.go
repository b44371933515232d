package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

type Command int

const (
	CmdShoot Command = iota
	CmdReload
	CmdStatus
)

var ErrHelp = errors.New("commands: shoot (s), reload (r), status, quit (q)")

// ParseCommand reads one line of headless input. quit returns io.EOF.
func ParseCommand(line string) (Command, error) {
	args := strings.Fields(strings.ToLower(line))
	if len(args) == 0 {
		return 0, ErrHelp
	}
	switch args[0] {
	case "shoot", "s", "fire":
		return CmdShoot, nil
	case "reload", "r":
		return CmdReload, nil
	case "status":
		return CmdStatus, nil
	case "quit", "q", "exit":
		return 0, io.EOF
	}
	return 0, ErrHelp
}

// Exec applies a command the way the matching key press would.
func (s *Session) Exec(cmd Command) {
	switch cmd {
	case CmdShoot:
		if !s.Shoot() {
			s.log.Info("shot not sent", "state", s.State(), "ammo", s.hud.Player().Ammo)
		}
	case CmdReload:
		if !s.Reload() {
			s.log.Info("reload not sent", "state", s.State())
		}
	case CmdStatus:
		p := s.hud.Player()
		s.log.Info("status",
			"state", s.State(),
			"ammo", p.Ammo,
			"health", p.Health,
			"hits", p.Hits,
			"shots_fired", p.ShotsFired,
			"players", s.hud.Population(),
			"times_hit", s.hud.FlashCount(),
			"camera", s.stream.Active(),
		)
	}
}

// Play runs a session without a window. Commands and server events are
// handled on the calling goroutine; it returns nil once cmds is closed.
func (s *Session) Play(ctx context.Context, cmds <-chan Command, tick time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	seen := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-cmds:
			if !ok {
				s.Dispatch()
				return nil
			}
			s.Dispatch()
			s.Exec(cmd)
		case <-ticker.C:
			s.Dispatch()
		}
		seen = s.logToasts(seen)
	}
}

// logToasts writes toasts newer than the last seen count to the log.
func (s *Session) logToasts(seen int) int {
	n := s.hud.ToastsRaised()
	toasts := s.hud.Toasts()
	for i := min(n-seen, len(toasts)) - 1; i >= 0; i-- {
		s.log.Info(toasts[i].Text)
	}
	return n
}
