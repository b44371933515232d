package session

import (
	"fmt"
	"lasertag/internal/client"
	"lasertag/internal/hud"
	"lasertag/internal/net"
	"time"
)

func ms(n ...int) []time.Duration {
	out := make([]time.Duration, len(n))
	for i, v := range n {
		out[i] = time.Duration(v) * time.Millisecond
	}
	return out
}

// registerHandlers maps each server event to its effect on the HUD. These
// handlers are the only code that writes the cached player state.
func (s *Session) registerHandlers() {
	t := s.transport
	h := s.hud

	client.Handle(t, net.EventConnect, func(struct{}) {
		s.log.Info("connected to game server")
		h.SetConnected(true, "Connected")
		h.Toast("Connected to game server!", hud.ToneSuccess)
	})

	client.Handle(t, net.EventDisconnect, func(struct{}) {
		s.log.Warn("lost connection to game server")
		h.SetConnected(false, "Disconnected")
		h.Toast("Lost connection to server", hud.ToneDanger)
	})

	client.Handle(t, net.EventConnectError, func(m net.ConnectErrorMessage) {
		s.log.Debug("connect failed", "err", m.Message)
		if !h.Status().Connected {
			h.SetConnected(false, "Connection failed, retrying...")
		}
	})

	client.Handle(t, net.EventPlayerData, func(m net.PlayerDataMessage) {
		name := m.Name
		if name == "" {
			name = s.name
		}
		h.ReplacePlayer(hud.PlayerState{
			Name:       name,
			Ammo:       m.Ammo,
			Health:     m.Health,
			Hits:       m.Hits,
			ShotsFired: m.ShotsFired,
		})
	})

	client.Handle(t, net.EventAmmoUpdate, func(m net.AmmoUpdateMessage) {
		h.PatchAmmo(m.Ammo, m.ShotsFired)
	})

	client.Handle(t, net.EventPlayerCount, func(m net.PlayerCountMessage) {
		h.SetPopulation(m.Count)
	})

	client.Handle(t, net.EventOutOfAmmo, func(net.OutOfAmmoMessage) {
		h.Toast("Out of Ammo! Reload!", hud.ToneDanger)
		h.Vibrate(ms(200, 100, 200)...)
	})

	client.Handle(t, net.EventPlayerShot, func(m net.PlayerShotMessage) {
		if m.Shooter != s.name {
			h.Toast(fmt.Sprintf("%s fired!", m.Shooter), hud.ToneWarning)
		}
	})

	client.Handle(t, net.EventHitConfirmed, func(m net.HitConfirmedMessage) {
		h.Toast(fmt.Sprintf("HIT! You tagged %s!", m.Target), hud.ToneSuccess)
		h.SetHits(m.YourHits)
		h.Vibrate(ms(100, 50, 100, 50, 100)...)
	})

	client.Handle(t, net.EventYouWereHit, func(m net.YouWereHitMessage) {
		h.Toast(fmt.Sprintf("Tagged by %s!", m.Shooter), hud.ToneDanger)
		h.SetHealth(m.YourHealth)
		h.Vibrate(ms(500)...)
		h.Flash()
	})

	client.Handle(t, net.EventHitEvent, func(m net.HitEventMessage) {
		if m.Shooter != s.name && m.Target != s.name {
			h.Toast(fmt.Sprintf("%s tagged %s!", m.Shooter, m.Target), hud.ToneWarning)
		}
	})

	client.Handle(t, net.EventPlayerEliminated, func(m net.PlayerEliminatedMessage) {
		h.Toast(fmt.Sprintf("%s was eliminated by %s!", m.Name, m.EliminatedBy), hud.ToneDanger)
	})
}
