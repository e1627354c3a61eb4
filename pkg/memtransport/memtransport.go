// Package memtransport provides an in-memory Transport harness that routes
// buffers between gossip.Driver instances sharing a process, per the
// testability note in spec.md §9. It backs scenarios S2-S6.
package memtransport

import (
	"context"
	"fmt"
	"sync"
)

type packet struct {
	buf []byte
	src string
}

// NewNetwork creates an empty virtual network. Transports register onto it
// by address and can then write to one another by that address.
func NewNetwork() *Network {
	return &Network{nodes: map[string]chan packet{}}
}

// Network is a shared in-memory switch: a set of addressed inboxes that
// Transports write into and read from.
type Network struct {
	mu    sync.Mutex
	nodes map[string]chan packet
}

// Register creates a new Transport bound to addr on this network. addr
// should look like a real gossip address ("ipv4:port") even though no real
// socket is involved, since the core treats it opaquely.
func (n *Network) Register(addr string) *Transport {
	n.mu.Lock()
	defer n.mu.Unlock()

	inbox := make(chan packet, 64)
	n.nodes[addr] = inbox
	return &Transport{network: n, addr: addr, inbox: inbox}
}

// Unregister removes addr from the network; subsequent writes to it fail.
func (n *Network) Unregister(addr string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.nodes, addr)
}

func (n *Network) lookup(addr string) (chan packet, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch, ok := n.nodes[addr]
	return ch, ok
}

// Transport implements gossip.Transport by routing through a Network.
type Transport struct {
	network *Network
	addr    string
	inbox   chan packet
}

// Write delivers buf to the Transport registered at addr on the same
// Network, or fails if no such address is currently registered.
func (t *Transport) Write(ctx context.Context, buf []byte, addr string) (int, error) {
	ch, ok := t.network.lookup(addr)
	if !ok {
		return 0, fmt.Errorf("memtransport: no peer registered at %q", addr)
	}

	cp := append([]byte(nil), buf...)
	select {
	case ch <- packet{buf: cp, src: t.addr}:
		return len(buf), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// RecvFrom blocks until a datagram addressed to this Transport arrives, or
// ctx is cancelled.
func (t *Transport) RecvFrom(ctx context.Context, buf []byte) (int, string, error) {
	select {
	case p := <-t.inbox:
		n := copy(buf, p.buf)
		return n, p.src, nil
	case <-ctx.Done():
		return 0, "", ctx.Err()
	}
}

// GetIP returns this Transport's own registered address.
func (t *Transport) GetIP() (string, error) {
	return t.addr, nil
}
