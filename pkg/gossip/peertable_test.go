package gossip

import (
	"testing"
	"time"
)

func TestLearnIsNoopIfKnown(t *testing.T) {
	table := NewPeerTable()
	table.Learn(1, "10.0.0.1:42069")
	table.Learn(1, "10.0.0.2:42069") // different address, should not overwrite

	n, ok := table.Get(1)
	if !ok {
		t.Fatal("expected peer 1 to be known")
	}
	if n.Address != "10.0.0.1:42069" {
		t.Fatalf("expected learn to be a no-op on repeat, got address %q", n.Address)
	}
}

func TestTouchUpdatesHeartbeatAndOnline(t *testing.T) {
	table := NewPeerTable()
	table.Learn(5, "10.0.0.5:42069")
	table.MarkStaleOffline(0) // force offline immediately

	n, _ := table.Get(5)
	if n.Status != Offline {
		t.Fatal("expected peer to be offline after a zero-duration sweep")
	}

	before := n.LastHeartbeat
	table.Touch(5)
	n, _ = table.Get(5)
	if n.Status != Online {
		t.Fatal("expected touch to bring the peer back online")
	}
	if !n.LastHeartbeat.After(before) {
		t.Fatal("expected touch to advance last_heartbeat")
	}
}

func TestTouchNoopIfUnknown(t *testing.T) {
	table := NewPeerTable()
	table.Touch(99) // must not panic or create an entry
	if _, ok := table.Get(99); ok {
		t.Fatal("touch on unknown peer must not create an entry")
	}
}

func TestSnapshotLiveExcludesOfflineAndExcluded(t *testing.T) {
	table := NewPeerTable()
	table.Learn(1, "a")
	table.Learn(2, "b")
	table.Learn(3, "c")
	table.MarkStaleOffline(0) // everyone offline
	table.Touch(1)
	table.Touch(2)

	live := table.SnapshotLive(time.Minute, map[NodeId]struct{}{2: {}})

	if len(live) != 1 || live[0].Id != 1 {
		t.Fatalf("expected only node 1 live and unexcluded, got %+v", live)
	}
}

func TestSnapshotOffline(t *testing.T) {
	table := NewPeerTable()
	table.Learn(1, "a")
	table.Learn(2, "b")
	table.MarkStaleOffline(0)
	table.Touch(1)

	offline := table.SnapshotOffline(time.Minute, nil)
	if len(offline) != 1 || offline[0].Id != 2 {
		t.Fatalf("expected only node 2 offline, got %+v", offline)
	}
}

func TestMarkStaleOffline(t *testing.T) {
	table := NewPeerTable()
	table.Upsert(Node{Id: 7, Address: "a", Status: Online, LastHeartbeat: time.Now().Add(-time.Hour)})

	table.MarkStaleOffline(time.Minute)

	n, _ := table.Get(7)
	if n.Status != Offline {
		t.Fatal("expected a peer quiet for an hour to be swept offline under a one-minute timeout")
	}
}

func TestUpsertReplacesAddressAndStatus(t *testing.T) {
	table := NewPeerTable()
	table.Learn(1, "old")
	table.Upsert(Node{Id: 1, Address: "new", Status: Offline})

	n, _ := table.Get(1)
	if n.Address != "new" {
		t.Fatalf("expected upsert to replace address, got %q", n.Address)
	}
	if n.Status != Offline {
		t.Fatalf("expected upsert to replace status, got %v", n.Status)
	}
}
