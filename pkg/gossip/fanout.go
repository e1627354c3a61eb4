package gossip

import (
	"math/rand"
	"sync"
)

// NewSampler creates a Sampler seeded from the given value. Driver owns one
// instance and serializes access to it across both its loops, since a
// math/rand.Rand is not safe for concurrent use.
func NewSampler(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

// Sampler is the single seeded pseudo-random source used for fanout
// selection. It must never be held across network I/O (spec.md §5).
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// sampleIndices returns k distinct indices in [0, n) chosen uniformly at
// random, via a partial Fisher-Yates shuffle. If k >= n, it returns a
// permutation of all n indices.
func (s *Sampler) sampleIndices(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 || n <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + s.rng.Intn(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// pickOne returns a single random index in [0, n).
func (s *Sampler) pickOne(n int) int {
	if n <= 0 {
		return -1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// SelectFanout implements the Fanout Selector (spec.md §4.3): it samples
// min(|live|, fanout) destinations from the live peer set excluding
// localId and excludeId, then appends at most one rescue destination drawn
// from the offline set (also excluding excludeId). sampler is the Driver's
// single seeded random source.
func SelectFanout(table *PeerTable, sampler *Sampler, localId NodeId, cfg Config, excludeId *NodeId) []Node {
	exclude := map[NodeId]struct{}{localId: {}}
	if excludeId != nil {
		exclude[*excludeId] = struct{}{}
	}
	live := table.SnapshotLive(cfg.OfflineTimeout, exclude)

	offlineExclude := map[NodeId]struct{}{}
	if excludeId != nil {
		offlineExclude[*excludeId] = struct{}{}
	}
	offline := table.SnapshotOffline(cfg.OfflineTimeout, offlineExclude)

	return selectFanoutFrom(sampler, live, offline, cfg.Fanout)
}

func selectFanoutFrom(sampler *Sampler, live, offline []Node, fanout int) []Node {
	idxs := sampler.sampleIndices(len(live), fanout)
	out := make([]Node, 0, len(idxs)+1)
	for _, i := range idxs {
		out = append(out, live[i])
	}

	if len(offline) > 0 {
		i := sampler.pickOne(len(offline))
		out = append(out, offline[i])
	}

	return out
}
