package server

import (
	"lasertag/internal/net"
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

type Target struct {
	ID   string
	Name string
}

// HitResolver decides whether a shot landed and on whom. Real detection
// works on the shot's camera frame and lives outside this server.
type HitResolver interface {
	Resolve(shooter string, candidates []Target, shot net.ShootMessage) (targetID string, hit bool)
}

// NoHits never registers a hit.
type NoHits struct{}

func (NoHits) Resolve(string, []Target, net.ShootMessage) (string, bool) { return "", false }

// RandomResolver hits a random candidate with the given probability. Handy
// for playing without a detector.
type RandomResolver struct {
	Chance float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomResolver(chance float64) *RandomResolver {
	return &RandomResolver{
		Chance: chance,
		rng:    rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
}

func (r *RandomResolver) Resolve(_ string, candidates []Target, _ net.ShootMessage) (string, bool) {
	if len(candidates) == 0 || r.Chance <= 0 {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rng.Float64() >= r.Chance {
		return "", false
	}
	return candidates[r.rng.Intn(len(candidates))].ID, true
}
