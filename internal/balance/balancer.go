// Package balance assigns unassigned drivers to guides, keeping guide loads
// even. Balancing is greedy and online: each driver goes to a currently
// least-loaded guide and the running load updates immediately, matching the
// operational reality that new drivers are admitted continuously rather than
// in one global batch.
package balance

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

type Assignment struct {
	DriverID uuid.UUID
	GuideID  uuid.UUID
}

type Balancer struct {
	rng *rand.Rand
}

// New returns a balancer with time-seeded randomness for tie-breaking.
func New() *Balancer {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a balancer with deterministic tie-breaking; used by tests
// and reproducible runs.
func NewSeeded(seed int64) *Balancer {
	return &Balancer{rng: rand.New(rand.NewSource(seed))}
}

// Assign distributes drivers over guides starting from the given loads.
// Guides missing from initialLoads start at zero. Ties at the minimum load
// are broken uniformly at random so no guide is systematically favored.
// An empty guide set yields no assignments; the caller decides what that
// means.
func (b *Balancer) Assign(guideIDs []uuid.UUID, initialLoads map[uuid.UUID]int64, driverIDs []uuid.UUID) []Assignment {
	if len(guideIDs) == 0 || len(driverIDs) == 0 {
		return nil
	}

	loads := make(map[uuid.UUID]int64, len(guideIDs))
	for _, id := range guideIDs {
		loads[id] = initialLoads[id]
	}

	out := make([]Assignment, 0, len(driverIDs))
	ties := make([]uuid.UUID, 0, len(guideIDs))
	for _, driverID := range driverIDs {
		min := loads[guideIDs[0]]
		for _, id := range guideIDs[1:] {
			if loads[id] < min {
				min = loads[id]
			}
		}
		ties = ties[:0]
		for _, id := range guideIDs {
			if loads[id] == min {
				ties = append(ties, id)
			}
		}
		winner := ties[b.rng.Intn(len(ties))]
		loads[winner]++
		out = append(out, Assignment{DriverID: driverID, GuideID: winner})
	}
	return out
}
