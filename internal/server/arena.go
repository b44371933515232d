package server

import (
	"lasertag/internal/net"
	"log/slog"
	"sync"
)

type Rules struct {
	Magazine int
	Health   int
	Damage   int
}

var DefaultRules = Rules{Magazine: 30, Health: 100, Damage: 20}

// Peer is a connected client the arena can talk to.
type Peer interface {
	ID() string
	SendEvent(event string, payload any)
}

type Player struct {
	Name       string
	Ammo       int
	Health     int
	Hits       int
	ShotsFired int

	peer       Peer
	registered bool
}

func (p *Player) data() net.PlayerDataMessage {
	return net.PlayerDataMessage{
		Name:       p.Name,
		Ammo:       p.Ammo,
		Health:     p.Health,
		Hits:       p.Hits,
		ShotsFired: p.ShotsFired,
	}
}

// Arena is the authoritative game state for every connected player.
type Arena struct {
	rules    Rules
	resolver HitResolver
	log      *slog.Logger

	mu      sync.Mutex
	players map[string]*Player // by peer ID
	order   []string           // join order, for stable broadcasts
}

func NewArena(rules Rules, resolver HitResolver, log *slog.Logger) *Arena {
	if resolver == nil {
		resolver = NoHits{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Arena{
		rules:    rules,
		resolver: resolver,
		log:      log,
		players:  make(map[string]*Player),
	}
}

func (a *Arena) Join(p Peer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.players[p.ID()]; ok {
		return
	}
	a.players[p.ID()] = &Player{peer: p}
	a.order = append(a.order, p.ID())
	a.log.Info("player joined", "conn", p.ID(), "total", len(a.players))
	a.broadcastCountUnlocked()
}

func (a *Arena) Leave(p Peer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pl, ok := a.players[p.ID()]
	if !ok {
		return
	}
	delete(a.players, p.ID())
	for i, id := range a.order {
		if id == p.ID() {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	a.log.Info("player left", "conn", p.ID(), "name", pl.Name, "total", len(a.players))
	a.broadcastCountUnlocked()
}

// Register names the player behind p. Registering again on the same
// connection only renames; stats are kept.
func (a *Arena) Register(p Peer, name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pl, ok := a.players[p.ID()]
	if !ok || name == "" {
		return
	}
	if !pl.registered {
		pl.registered = true
		pl.Ammo = a.rules.Magazine
		pl.Health = a.rules.Health
		a.log.Info("player registered", "conn", p.ID(), "name", name)
	}
	pl.Name = name
	p.SendEvent(net.EventPlayerData, pl.data())
}

func (a *Arena) Shoot(p Peer, msg net.ShootMessage) {
	a.mu.Lock()
	defer a.mu.Unlock()

	shooter, ok := a.players[p.ID()]
	if !ok || !shooter.registered || shooter.Health <= 0 {
		return
	}
	if shooter.Ammo <= 0 {
		p.SendEvent(net.EventOutOfAmmo, net.OutOfAmmoMessage{Message: "Reload!"})
		return
	}

	shooter.Ammo--
	shooter.ShotsFired++
	shots := shooter.ShotsFired
	p.SendEvent(net.EventAmmoUpdate, net.AmmoUpdateMessage{Ammo: shooter.Ammo, ShotsFired: &shots})
	a.broadcastUnlocked(net.EventPlayerShot, net.PlayerShotMessage{Shooter: shooter.Name})

	var candidates []Target
	for _, id := range a.order {
		pl := a.players[id]
		if id == p.ID() || !pl.registered || pl.Health <= 0 {
			continue
		}
		candidates = append(candidates, Target{ID: id, Name: pl.Name})
	}
	targetID, hit := a.resolver.Resolve(shooter.Name, candidates, msg)
	if !hit {
		return
	}
	target, ok := a.players[targetID]
	if !ok || targetID == p.ID() || target.Health <= 0 {
		return
	}

	target.Health = max(0, target.Health-a.rules.Damage)
	shooter.Hits++
	a.log.Info("hit", "shooter", shooter.Name, "target", target.Name, "health", target.Health)

	p.SendEvent(net.EventHitConfirmed, net.HitConfirmedMessage{Target: target.Name, YourHits: shooter.Hits})
	target.peer.SendEvent(net.EventYouWereHit, net.YouWereHitMessage{Shooter: shooter.Name, YourHealth: target.Health})
	a.broadcastUnlocked(net.EventHitEvent, net.HitEventMessage{Shooter: shooter.Name, Target: target.Name})

	if target.Health == 0 {
		a.broadcastUnlocked(net.EventPlayerEliminated, net.PlayerEliminatedMessage{Name: target.Name, EliminatedBy: shooter.Name})
	}
}

func (a *Arena) Reload(p Peer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pl, ok := a.players[p.ID()]
	if !ok || !pl.registered || pl.Health <= 0 {
		return
	}
	pl.Ammo = a.rules.Magazine
	shots := pl.ShotsFired
	p.SendEvent(net.EventAmmoUpdate, net.AmmoUpdateMessage{Ammo: pl.Ammo, ShotsFired: &shots})
}

func (a *Arena) PlayerCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.players)
}

func (a *Arena) broadcastCountUnlocked() {
	a.broadcastUnlocked(net.EventPlayerCount, net.PlayerCountMessage{Count: len(a.players)})
}

func (a *Arena) broadcastUnlocked(event string, payload any) {
	for _, id := range a.order {
		a.players[id].peer.SendEvent(event, payload)
	}
}
