// Package udptransport is the concrete datagram binding gossip.Driver drives
// in production. It is explicitly out of the core's scope (spec.md §1) but
// is still one of the two Transport implementations this repository ships,
// grounded in the UDP socket handling of
// bhushanasati25/.../internal/gossip/protocol.go.
package udptransport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	gossip "github.com/mcastellin/gossipd/pkg/gossip"
)

// pollInterval bounds how long RecvFrom blocks on a single read before
// checking ctx again, so cancellation is responsive without needing a
// dedicated goroutine per call.
const pollInterval = time.Second

// New binds a UDP socket at bind ("ip:port") and returns a Transport.
func New(bind string) (*Transport, error) {
	addr, err := net.ResolveUDPAddr("udp4", bind)
	if err != nil {
		return nil, fmt.Errorf("udptransport: resolve %q: %w", bind, err)
	}

	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("udptransport: listen %q: %w", bind, err)
	}

	return &Transport{conn: conn}, nil
}

// Transport implements gossip.Transport over a real net.UDPConn.
type Transport struct {
	conn *net.UDPConn
}

// Close releases the underlying socket. Any RecvFrom in progress returns a
// FatalTransportError-wrapped error once this is called, since a closed
// socket can never recover.
func (t *Transport) Close() error {
	return t.conn.Close()
}

func (t *Transport) Write(ctx context.Context, buf []byte, addr string) (int, error) {
	dst, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return 0, fmt.Errorf("udptransport: resolve destination %q: %w", addr, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetWriteDeadline(deadline)
	}
	return t.conn.WriteToUDP(buf, dst)
}

func (t *Transport) RecvFrom(ctx context.Context, buf []byte) (int, string, error) {
	for {
		select {
		case <-ctx.Done():
			return 0, "", ctx.Err()
		default:
		}

		_ = t.conn.SetReadDeadline(time.Now().Add(pollInterval))
		n, src, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return 0, "", &gossip.FatalTransportError{Err: err}
			}
			return 0, "", err
		}
		return n, src.String(), nil
	}
}

// GetIP returns a comma-separated list of this host's non-loopback IPv4
// addresses, matching the "candidate list, first IPv4 wins" contract
// gossip.ExtractIPv4 parses.
func (t *Transport) GetIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", fmt.Errorf("udptransport: interface addrs: %w", err)
	}

	var candidates []string
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			candidates = append(candidates, v4.String())
		}
	}

	if len(candidates) == 0 {
		return "", errors.New("udptransport: no non-loopback ipv4 address found")
	}
	return strings.Join(candidates, ","), nil
}
