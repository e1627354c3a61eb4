package gossip

import (
	"sync"
	"time"
)

// NewPeerTable creates an empty PeerTable.
func NewPeerTable() *PeerTable {
	return &PeerTable{peers: map[NodeId]Node{}}
}

// PeerTable is a concurrent map of known peers with liveness state. The
// local node is never stored here. One writer at a time, many readers;
// readers must not hold the lock across network I/O.
type PeerTable struct {
	mu    sync.RWMutex
	peers map[NodeId]Node
}

// Learn inserts a newly-seen peer if absent. It is a no-op if the id is
// already known, per the open-question resolution in SPEC_FULL §9: any
// inbound message from an unknown sender learns that sender unconditionally.
func (t *PeerTable) Learn(id NodeId, address string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.peers[id]; exists {
		return
	}
	t.peers[id] = Node{
		Id:            id,
		Address:       address,
		Status:        Online,
		LastHeartbeat: time.Now(),
	}
}

// Touch refreshes a known peer's liveness. No-op if the id is unknown.
func (t *PeerTable) Touch(id NodeId) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, exists := t.peers[id]
	if !exists {
		return
	}
	n.LastHeartbeat = time.Now()
	n.Status = Online
	t.peers[id] = n
}

// Upsert fully replaces a node's record as given, including LastHeartbeat.
// Used for installing seeds (spec.md §4.5) where the caller decides whether
// the peer starts fresh or already stale.
func (t *PeerTable) Upsert(n Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peers[n.Id] = n
}

// SnapshotLive returns a copy of all peers live as of offlineTimeout,
// excluding any id present in exclude.
func (t *PeerTable) SnapshotLive(offlineTimeout time.Duration, exclude map[NodeId]struct{}) []Node {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := time.Now()
	out := make([]Node, 0, len(t.peers))
	for id, n := range t.peers {
		if _, skip := exclude[id]; skip {
			continue
		}
		if n.IsLive(now, offlineTimeout) {
			out = append(out, n)
		}
	}
	return out
}

// SnapshotOffline returns all peers currently considered not live.
func (t *PeerTable) SnapshotOffline(offlineTimeout time.Duration, exclude map[NodeId]struct{}) []Node {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := time.Now()
	out := make([]Node, 0, len(t.peers))
	for id, n := range t.peers {
		if _, skip := exclude[id]; skip {
			continue
		}
		if !n.IsLive(now, offlineTimeout) {
			out = append(out, n)
		}
	}
	return out
}

// MarkStaleOffline sweeps the table: any peer whose last heartbeat age
// exceeds offlineTimeout transitions to Offline.
func (t *PeerTable) MarkStaleOffline(offlineTimeout time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	for id, n := range t.peers {
		if n.Status == Online && now.Sub(n.LastHeartbeat) > offlineTimeout {
			n.Status = Offline
			t.peers[id] = n
		}
	}
}

// Len returns the number of known peers, live or offline.
func (t *PeerTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.peers)
}

// Get returns a copy of the peer with the given id, if known.
func (t *PeerTable) Get(id NodeId) (Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.peers[id]
	return n, ok
}
