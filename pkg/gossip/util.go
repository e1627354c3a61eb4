package gossip

import (
	"net"
	"strings"

	"github.com/rs/xid"
)

// HashNodeName derives a NodeId from a node name by folding its UTF-8 byte
// values modulo 2^32 (wraparound addition). This is deliberately not a
// cryptographic hash: it is collision-tolerant by design, since a node's
// address disambiguates it from any other node sharing its NodeId.
func HashNodeName(name string) NodeId {
	var acc uint32
	for _, b := range []byte(name) {
		acc += uint32(b)
	}
	return NodeId(acc)
}

// ExtractIPv4 takes a possibly comma-separated list of candidate addresses
// (as a Transport's GetIP may return) and returns the first entry that
// parses as an IPv4 address, skipping IPv6 and unparseable entries. It fails
// with ErrNoIPv4 when no entry is an IPv4 address.
func ExtractIPv4(input string) (net.IP, error) {
	for _, candidate := range strings.Split(input, ",") {
		ip := net.ParseIP(strings.TrimSpace(candidate))
		if ip == nil {
			continue
		}
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
	}
	return nil, &AddressError{Input: input, Err: ErrNoIPv4}
}

// adjectives and nouns give MakeId a small, self-contained word list so it
// doesn't need an external "friendly id" dependency for two English words.
var adjectives = []string{"quiet", "amber", "brisk", "cobalt", "dusty", "eager", "faded", "golden", "hollow", "ivory"}
var nouns = []string{"harbor", "ridge", "meadow", "canyon", "ember", "thicket", "summit", "delta", "grove", "fjord"}

// MakeId builds a human-friendly identifier: "<prefix>-<adjective>-<noun>-<suffix>",
// lowercased, where suffix is a short random token from xid so ids don't
// collide even when the same adjective/noun pair recurs.
func MakeId(prefix string) string {
	id := xid.New()
	b := id.Bytes()

	adj := adjectives[int(b[0])%len(adjectives)]
	noun := nouns[int(b[1])%len(nouns)]
	suffix := strings.ToLower(id.String()[len(id.String())-5:])

	return strings.ToLower(prefix) + "-" + adj + "-" + noun + "-" + suffix
}
