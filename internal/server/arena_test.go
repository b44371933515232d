package server

import (
	"io"
	"lasertag/internal/net"
	"log/slog"
	"testing"
)

type sent struct {
	event   string
	payload any
}

type fakePeer struct {
	id  string
	out []sent
}

func (p *fakePeer) ID() string { return p.id }

func (p *fakePeer) SendEvent(event string, payload any) {
	p.out = append(p.out, sent{event, payload})
}

func (p *fakePeer) events() []string {
	names := make([]string, len(p.out))
	for i, s := range p.out {
		names[i] = s.event
	}
	return names
}

func (p *fakePeer) last(event string) (any, bool) {
	for i := len(p.out) - 1; i >= 0; i-- {
		if p.out[i].event == event {
			return p.out[i].payload, true
		}
	}
	return nil, false
}

func (p *fakePeer) reset() { p.out = nil }

// alwaysHit picks the first candidate.
type alwaysHit struct{}

func (alwaysHit) Resolve(_ string, c []Target, _ net.ShootMessage) (string, bool) {
	if len(c) == 0 {
		return "", false
	}
	return c[0].ID, true
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestArena(resolver HitResolver) *Arena {
	return NewArena(DefaultRules, resolver, quietLogger())
}

func join(a *Arena, id, name string) *fakePeer {
	p := &fakePeer{id: id}
	a.Join(p)
	if name != "" {
		a.Register(p, name)
	}
	return p
}

func TestJoinAndLeaveBroadcastCount(t *testing.T) {
	a := newTestArena(nil)
	alice := join(a, "a", "")
	bob := join(a, "b", "")

	msg, ok := alice.last(net.EventPlayerCount)
	if !ok || msg.(net.PlayerCountMessage).Count != 2 {
		t.Fatalf("alice count = %v, want 2", msg)
	}

	a.Leave(bob)
	msg, _ = alice.last(net.EventPlayerCount)
	if got := msg.(net.PlayerCountMessage).Count; got != 1 {
		t.Fatalf("count after leave = %d, want 1", got)
	}
	if a.PlayerCount() != 1 {
		t.Fatalf("PlayerCount = %d, want 1", a.PlayerCount())
	}

	// Leaving twice is harmless.
	a.Leave(bob)
	if a.PlayerCount() != 1 {
		t.Fatalf("PlayerCount = %d, want 1", a.PlayerCount())
	}
}

func TestRegisterSendsFullPlayerData(t *testing.T) {
	a := newTestArena(nil)
	p := join(a, "a", "Alice")

	msg, ok := p.last(net.EventPlayerData)
	if !ok {
		t.Fatalf("no player_data, got %v", p.events())
	}
	data := msg.(net.PlayerDataMessage)
	want := net.PlayerDataMessage{Name: "Alice", Ammo: 30, Health: 100}
	if data != want {
		t.Fatalf("player_data = %+v, want %+v", data, want)
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	a := newTestArena(nil)
	p := join(a, "a", "Alice")
	a.Shoot(p, net.ShootMessage{Timestamp: 1})

	a.Register(p, "Alice")
	msg, _ := p.last(net.EventPlayerData)
	data := msg.(net.PlayerDataMessage)
	if data.Ammo != 29 || data.ShotsFired != 1 {
		t.Fatalf("re-register reset stats: %+v", data)
	}
}

func TestRegisterIgnoresEmptyName(t *testing.T) {
	a := newTestArena(nil)
	p := join(a, "a", "")
	a.Register(p, "")
	if _, ok := p.last(net.EventPlayerData); ok {
		t.Fatal("player_data sent for empty name")
	}
}

func TestShootBeforeRegisterIsIgnored(t *testing.T) {
	a := newTestArena(nil)
	p := join(a, "a", "")
	p.reset()
	a.Shoot(p, net.ShootMessage{})
	if len(p.out) != 0 {
		t.Fatalf("events = %v, want none", p.events())
	}
}

func TestShootDecrementsAmmo(t *testing.T) {
	a := newTestArena(nil)
	alice := join(a, "a", "Alice")
	bob := join(a, "b", "Bob")
	alice.reset()
	bob.reset()

	a.Shoot(alice, net.ShootMessage{Timestamp: 1})

	msg, ok := alice.last(net.EventAmmoUpdate)
	if !ok {
		t.Fatalf("no ammo_update, got %v", alice.events())
	}
	upd := msg.(net.AmmoUpdateMessage)
	if upd.Ammo != 29 || upd.ShotsFired == nil || *upd.ShotsFired != 1 {
		t.Fatalf("ammo_update = %+v, want ammo 29 shots 1", upd)
	}

	shot, ok := bob.last(net.EventPlayerShot)
	if !ok || shot.(net.PlayerShotMessage).Shooter != "Alice" {
		t.Fatalf("bob saw %v, want player_shot from Alice", bob.events())
	}
	if _, ok := bob.last(net.EventYouWereHit); ok {
		t.Fatal("NoHits resolver produced a hit")
	}
}

func TestShootWithEmptyMagazine(t *testing.T) {
	a := NewArena(Rules{Magazine: 1, Health: 100, Damage: 20}, nil, quietLogger())
	p := join(a, "a", "Alice")

	a.Shoot(p, net.ShootMessage{})
	p.reset()
	a.Shoot(p, net.ShootMessage{})

	if got := p.events(); len(got) != 1 || got[0] != net.EventOutOfAmmo {
		t.Fatalf("events = %v, want [out_of_ammo]", got)
	}
}

func TestReloadRefills(t *testing.T) {
	a := newTestArena(nil)
	p := join(a, "a", "Alice")
	a.Shoot(p, net.ShootMessage{})
	a.Shoot(p, net.ShootMessage{})

	a.Reload(p)
	msg, _ := p.last(net.EventAmmoUpdate)
	upd := msg.(net.AmmoUpdateMessage)
	if upd.Ammo != 30 {
		t.Fatalf("ammo = %d, want 30", upd.Ammo)
	}
	if upd.ShotsFired == nil || *upd.ShotsFired != 2 {
		t.Fatalf("shots_fired = %v, want 2", upd.ShotsFired)
	}
}

func TestHitNotifiesEveryone(t *testing.T) {
	a := newTestArena(alwaysHit{})
	alice := join(a, "a", "Alice")
	bob := join(a, "b", "Bob")
	carol := join(a, "c", "Carol")
	alice.reset()
	bob.reset()
	carol.reset()

	a.Shoot(alice, net.ShootMessage{})

	msg, ok := alice.last(net.EventHitConfirmed)
	if !ok {
		t.Fatalf("alice events = %v, want hit_confirmed", alice.events())
	}
	if hc := msg.(net.HitConfirmedMessage); hc.Target != "Bob" || hc.YourHits != 1 {
		t.Fatalf("hit_confirmed = %+v", hc)
	}

	msg, ok = bob.last(net.EventYouWereHit)
	if !ok {
		t.Fatalf("bob events = %v, want you_were_hit", bob.events())
	}
	if yh := msg.(net.YouWereHitMessage); yh.Shooter != "Alice" || yh.YourHealth != 80 {
		t.Fatalf("you_were_hit = %+v", yh)
	}

	msg, ok = carol.last(net.EventHitEvent)
	if !ok {
		t.Fatalf("carol events = %v, want hit_event", carol.events())
	}
	if he := msg.(net.HitEventMessage); he.Shooter != "Alice" || he.Target != "Bob" {
		t.Fatalf("hit_event = %+v", he)
	}
	if _, ok := carol.last(net.EventYouWereHit); ok {
		t.Fatal("bystander got you_were_hit")
	}
}

func TestEliminationAfterRepeatedHits(t *testing.T) {
	a := newTestArena(alwaysHit{})
	alice := join(a, "a", "Alice")
	bob := join(a, "b", "Bob")

	for i := 0; i < 5; i++ {
		a.Shoot(alice, net.ShootMessage{})
	}

	msg, ok := alice.last(net.EventPlayerEliminated)
	if !ok {
		t.Fatalf("no player_eliminated, got %v", alice.events())
	}
	if pe := msg.(net.PlayerEliminatedMessage); pe.Name != "Bob" || pe.EliminatedBy != "Alice" {
		t.Fatalf("player_eliminated = %+v", pe)
	}

	// Eliminated players can neither be hit again nor shoot.
	bob.reset()
	a.Shoot(alice, net.ShootMessage{})
	if _, ok := bob.last(net.EventYouWereHit); ok {
		t.Fatal("eliminated player was hit again")
	}
	bob.reset()
	a.Shoot(bob, net.ShootMessage{})
	if len(bob.out) != 0 {
		t.Fatalf("eliminated player shot: %v", bob.events())
	}
}

func TestRandomResolverBounds(t *testing.T) {
	targets := []Target{{ID: "x", Name: "X"}}

	if _, hit := NewRandomResolver(0).Resolve("a", targets, net.ShootMessage{}); hit {
		t.Fatal("chance 0 hit")
	}
	id, hit := NewRandomResolver(1).Resolve("a", targets, net.ShootMessage{})
	if !hit || id != "x" {
		t.Fatalf("chance 1 = (%q, %v), want (x, true)", id, hit)
	}
	if _, hit := NewRandomResolver(1).Resolve("a", nil, net.ShootMessage{}); hit {
		t.Fatal("hit with no candidates")
	}
}
