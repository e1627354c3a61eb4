package gossip

import "time"

// NodeId identifies a peer. It is derived from a node name by folding byte
// values (see HashNodeName); collisions are tolerated since the node's
// address is the real disambiguator.
type NodeId uint32

// NodeStatus is the liveness state of a peer as last known locally.
type NodeStatus int

const (
	Online NodeStatus = iota
	Offline
)

func (s NodeStatus) String() string {
	if s == Online {
		return "online"
	}
	return "offline"
}

// Node is a peer record held in the PeerTable. The local node is never
// stored in its own table.
type Node struct {
	Id            NodeId
	Address       string // "ipv4:port", matches what Transport hands back
	Status        NodeStatus
	LastHeartbeat time.Time
}

// IsLive reports whether this node should be treated as reachable: Online
// and heard from within the offline timeout.
func (n Node) IsLive(now time.Time, offlineTimeout time.Duration) bool {
	if n.Status != Online {
		return false
	}
	return now.Sub(n.LastHeartbeat) <= offlineTimeout
}

// Equals implements the (id, address) equality spec.md mandates.
func (n Node) Equals(other Node) bool {
	return n.Id == other.Id && n.Address == other.Address
}
