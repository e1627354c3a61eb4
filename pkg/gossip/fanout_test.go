package gossip

import (
	"testing"
	"time"
)

func newFanoutTestTable(liveIds []NodeId) *PeerTable {
	table := NewPeerTable()
	for _, id := range liveIds {
		table.Learn(id, "addr")
	}
	return table
}

func TestSelectFanoutExcludesLocalAndUpstream(t *testing.T) {
	table := newFanoutTestTable([]NodeId{1, 2, 3, 4, 5})
	sampler := NewSampler(1)
	cfg := DefaultConfig()
	cfg.Fanout = 10 // larger than the live set so every eligible peer is selected

	upstream := NodeId(2)
	dest := SelectFanout(table, sampler, NodeId(1), cfg, &upstream)

	for _, n := range dest {
		if n.Id == 1 {
			t.Fatal("destinations must never include the local id")
		}
		if n.Id == 2 {
			t.Fatal("destinations must never include the excluded upstream id")
		}
	}
}

func TestSelectFanoutRespectsCount(t *testing.T) {
	table := newFanoutTestTable([]NodeId{1, 2, 3, 4, 5, 6})
	sampler := NewSampler(1)
	cfg := DefaultConfig()
	cfg.Fanout = 2

	dest := SelectFanout(table, sampler, NodeId(99), cfg, nil)
	if len(dest) != 2 {
		t.Fatalf("expected exactly fanout=2 destinations with no offline peers, got %d", len(dest))
	}
}

func TestSelectFanoutAppendsRescue(t *testing.T) {
	table := newFanoutTestTable([]NodeId{1, 2, 3})
	table.Learn(9, "offline-addr")
	table.MarkStaleOffline(0)
	table.Touch(1)
	table.Touch(2)
	table.Touch(3)

	sampler := NewSampler(1)
	cfg := DefaultConfig()
	cfg.Fanout = 2

	dest := SelectFanout(table, sampler, NodeId(99), cfg, nil)
	if len(dest) != 3 {
		t.Fatalf("expected fanout (2) + one rescue probe, got %d destinations", len(dest))
	}

	found9 := false
	for _, n := range dest {
		if n.Id == 9 {
			found9 = true
		}
	}
	if !found9 {
		t.Fatal("expected the single offline peer to be selected as the rescue probe")
	}
}

func TestSelectFanoutEmptyIsLegal(t *testing.T) {
	table := NewPeerTable()
	sampler := NewSampler(1)
	cfg := DefaultConfig()

	dest := SelectFanout(table, sampler, NodeId(1), cfg, nil)
	if len(dest) != 0 {
		t.Fatalf("expected no destinations on an empty table, got %v", dest)
	}
}

func TestSamplerUniformityConverges(t *testing.T) {
	const n = 20
	const fanout = 4
	const rounds = 20000

	table := NewPeerTable()
	ids := make([]NodeId, n)
	for i := 0; i < n; i++ {
		ids[i] = NodeId(i + 1)
		table.Learn(ids[i], "addr")
	}

	sampler := NewSampler(42)
	cfg := DefaultConfig()
	cfg.Fanout = fanout

	counts := map[NodeId]int{}
	for r := 0; r < rounds; r++ {
		dest := SelectFanout(table, sampler, NodeId(9999), cfg, nil)
		for _, d := range dest {
			counts[d.Id]++
		}
	}

	expected := float64(rounds*fanout) / float64(n)
	for _, id := range ids {
		got := float64(counts[id])
		// allow generous statistical tolerance (+/- 20%) to avoid flaking
		if got < expected*0.8 || got > expected*1.2 {
			t.Fatalf("node %d selected %v times, expected close to %v", id, got, expected)
		}
	}
}

func TestMarkStaleOfflineThenRescueTimeBased(t *testing.T) {
	table := NewPeerTable()
	table.Upsert(Node{Id: 5, Address: "a", Status: Online, LastHeartbeat: time.Now().Add(-time.Hour)})
	table.MarkStaleOffline(time.Second)

	n, _ := table.Get(5)
	if n.Status != Offline {
		t.Fatal("expected peer 5 to be marked offline")
	}

	dest := SelectFanout(table, NewSampler(1), NodeId(1), DefaultConfig(), nil)
	if len(dest) != 1 || dest[0].Id != 5 {
		t.Fatalf("expected peer 5 as the only (rescue) destination, got %+v", dest)
	}
}
