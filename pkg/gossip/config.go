package gossip

import "time"

// MaxPayloadSize bounds the wire form of a GossipMessage and dictates the
// receive loop's reusable buffer size.
const MaxPayloadSize = 1024

// Config is the immutable-after-construction configuration for a Driver.
// Defaults mirror the original prototype's GossipConfig.
type Config struct {
	// HeartbeatInterval is the period between liveness broadcasts.
	HeartbeatInterval time.Duration
	// GossipInterval is reserved for a future anti-entropy round; the base
	// protocol drives all dissemination from the heartbeat and leaves this
	// field unwired.
	GossipInterval time.Duration
	// OfflineTimeout is how long a peer may go unheard-from before it is
	// swept to Offline.
	OfflineTimeout time.Duration
	// Fanout is the number of live destinations selected per round, not
	// counting the rescue probe.
	Fanout int
	// GossipPort is the default UDP port concrete transports bind to.
	GossipPort int
	// MessageTTL seeds the ttl field of locally-originated messages.
	MessageTTL uint8

	// Prefix, NodeName and IPAddress are identity metadata, not consulted
	// by the core algorithm itself.
	Prefix    string
	NodeName  string
	IPAddress string
}

// DefaultConfig returns a Config with the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		HeartbeatInterval: time.Second,
		GossipInterval:    2 * time.Second,
		OfflineTimeout:    10 * time.Second,
		Fanout:            4,
		GossipPort:        42069,
		MessageTTL:        3,
		Prefix:            "gsp",
		IPAddress:         "127.0.0.1",
	}
}

// StaleSweepInterval is how often the Driver sweeps the peer table for
// peers that have gone quiet, per SPEC_FULL §4.2.
func (c Config) StaleSweepInterval() time.Duration {
	return c.OfflineTimeout / 2
}
