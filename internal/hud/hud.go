// Package hud holds what the player sees: a cached copy of the player's
// stats, connection status, toasts and the hit flash. It makes no game
// decisions; every value comes from the server through the session.
package hud

import (
	"time"
)

// Placeholder stats shown until the server sends the real record.
const (
	DefaultAmmo   = 30
	DefaultHealth = 100
)

const (
	MaxToasts     = 5
	ToastLifetime = 3 * time.Second
	ToastFade     = 300 * time.Millisecond
	FlashDuration = 300 * time.Millisecond
	ShootCooldown = 100 * time.Millisecond
)

type Tone int

const (
	ToneInfo Tone = iota
	ToneSuccess
	ToneWarning
	ToneDanger
)

type PlayerState struct {
	Name       string
	Ammo       int
	Health     int
	Hits       int
	ShotsFired int
}

type Status struct {
	Connected bool
	Text      string
}

type Toast struct {
	Text string
	Tone Tone
	Born time.Time
}

type HUD struct {
	player     PlayerState
	population int
	status     Status
	controls   bool
	toasts     []Toast // newest first
	raised     int

	flashUntil    time.Time
	flashes       int
	cooldownUntil time.Time

	haptics Haptics
	now     func() time.Time
}

func New(name string, haptics Haptics) *HUD {
	if haptics == nil {
		haptics = NopHaptics{}
	}
	return &HUD{
		player:  PlayerState{Name: name, Ammo: DefaultAmmo, Health: DefaultHealth},
		status:  Status{Text: "Connecting..."},
		haptics: haptics,
		now:     time.Now,
	}
}

func (h *HUD) Player() PlayerState { return h.player }

func (h *HUD) Population() int { return h.population }

func (h *HUD) Status() Status { return h.status }

func (h *HUD) ControlsEnabled() bool { return h.controls }

// SetConnected updates the status line and enables or disables the action
// controls with it.
func (h *HUD) SetConnected(connected bool, text string) {
	h.status = Status{Connected: connected, Text: text}
	h.controls = connected
}

func (h *HUD) ReplacePlayer(p PlayerState) {
	p.Ammo = nonNegative(p.Ammo)
	p.Health = nonNegative(p.Health)
	p.Hits = nonNegative(p.Hits)
	p.ShotsFired = nonNegative(p.ShotsFired)
	h.player = p
}

func (h *HUD) PatchAmmo(ammo int, shotsFired *int) {
	h.player.Ammo = nonNegative(ammo)
	if shotsFired != nil {
		h.player.ShotsFired = nonNegative(*shotsFired)
	}
}

func (h *HUD) SetHits(n int) { h.player.Hits = nonNegative(n) }

func (h *HUD) SetHealth(n int) { h.player.Health = nonNegative(n) }

func (h *HUD) SetPopulation(n int) { h.population = nonNegative(n) }

// Toast shows a short message. Only the newest MaxToasts are kept.
func (h *HUD) Toast(text string, tone Tone) {
	h.prune()
	h.toasts = append([]Toast{{Text: text, Tone: tone, Born: h.now()}}, h.toasts...)
	h.raised++
	if len(h.toasts) > MaxToasts {
		h.toasts = h.toasts[:MaxToasts]
	}
}

func (h *HUD) Toasts() []Toast {
	h.prune()
	out := make([]Toast, len(h.toasts))
	copy(out, h.toasts)
	return out
}

// ToastsRaised counts every toast ever shown, including expired ones.
func (h *HUD) ToastsRaised() int { return h.raised }

// Flash tints the screen red for FlashDuration.
func (h *HUD) Flash() {
	h.flashUntil = h.now().Add(FlashDuration)
	h.flashes++
}

func (h *HUD) Flashing() bool { return h.now().Before(h.flashUntil) }

// FlashCount is the number of flashes fired since the HUD was created.
func (h *HUD) FlashCount() int { return h.flashes }

func (h *HUD) Vibrate(pattern ...time.Duration) {
	h.haptics.Vibrate(pattern...)
}

// TryShoot starts the short button cooldown. It reports false while the
// previous one is still running. This is cosmetic only.
func (h *HUD) TryShoot() bool {
	now := h.now()
	if now.Before(h.cooldownUntil) {
		return false
	}
	h.cooldownUntil = now.Add(ShootCooldown)
	return true
}

func (h *HUD) ShootReady() bool { return !h.now().Before(h.cooldownUntil) }

func (h *HUD) prune() {
	now := h.now()
	n := 0
	for _, t := range h.toasts {
		if now.Sub(t.Born) < ToastLifetime+ToastFade {
			h.toasts[n] = t
			n++
		}
	}
	h.toasts = h.toasts[:n]
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
