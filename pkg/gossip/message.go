package gossip

import (
	"encoding/binary"
	"fmt"
)

// HeartbeatType is the reserved msg_type the core handles itself; every
// other value is opaque and delivered to the application Handler.
const HeartbeatType = "heartbeat"

// GossipMessage is the wire envelope exchanged between peers.
type GossipMessage struct {
	// FromId is the original originator, never the last hop. It is
	// preserved across every forward and used for loop suppression.
	FromId NodeId
	// Ttl is the remaining hop count; it is strictly decreased on every
	// forward and a message reaching zero must never be forwarded again.
	Ttl uint8
	// MsgType is a small enum-string; "heartbeat" is reserved.
	MsgType string
	// Payload is opaque to the core, bounded by MaxPayloadSize.
	Payload []byte
}

// Heartbeat builds a zero-payload liveness message.
func Heartbeat(from NodeId, ttl uint8) GossipMessage {
	return GossipMessage{FromId: from, Ttl: ttl, MsgType: HeartbeatType}
}

// Encode serializes msg into a length-prefixed, little-endian binary form:
// from_id (u32 LE), ttl (u8), msg_type (u16 LE length + UTF-8 bytes),
// payload (u16 LE length + bytes). It fails if the result would exceed
// MaxPayloadSize.
func Encode(msg GossipMessage) ([]byte, error) {
	if len(msg.MsgType) > 0xFFFF {
		return nil, &CodecError{Op: "encode", Err: fmt.Errorf("%w: msg_type too long", ErrPayloadTooLarge)}
	}
	if len(msg.Payload) > 0xFFFF {
		return nil, &CodecError{Op: "encode", Err: fmt.Errorf("%w: payload too long", ErrPayloadTooLarge)}
	}

	size := 4 + 1 + 2 + len(msg.MsgType) + 2 + len(msg.Payload)
	if size > MaxPayloadSize {
		return nil, &CodecError{Op: "encode", Err: ErrPayloadTooLarge}
	}

	buf := make([]byte, size)
	off := 0

	binary.LittleEndian.PutUint32(buf[off:], uint32(msg.FromId))
	off += 4

	buf[off] = msg.Ttl
	off++

	binary.LittleEndian.PutUint16(buf[off:], uint16(len(msg.MsgType)))
	off += 2
	off += copy(buf[off:], msg.MsgType)

	binary.LittleEndian.PutUint16(buf[off:], uint16(len(msg.Payload)))
	off += 2
	off += copy(buf[off:], msg.Payload)

	return buf, nil
}

// Decode is the inverse of Encode. It fails on truncation, and on a length
// prefix that would overrun the remaining buffer.
func Decode(data []byte) (GossipMessage, error) {
	var msg GossipMessage

	if len(data) < 4+1+2 {
		return msg, &CodecError{Op: "decode", Err: ErrTruncated}
	}
	off := 0

	msg.FromId = NodeId(binary.LittleEndian.Uint32(data[off:]))
	off += 4

	msg.Ttl = data[off]
	off++

	typeLen := int(binary.LittleEndian.Uint16(data[off:]))
	off += 2
	if off+typeLen > len(data) {
		return GossipMessage{}, &CodecError{Op: "decode", Err: ErrMalformed}
	}
	msg.MsgType = string(data[off : off+typeLen])
	off += typeLen

	if off+2 > len(data) {
		return GossipMessage{}, &CodecError{Op: "decode", Err: ErrTruncated}
	}
	payloadLen := int(binary.LittleEndian.Uint16(data[off:]))
	off += 2
	if payloadLen > MaxPayloadSize || off+payloadLen > len(data) {
		return GossipMessage{}, &CodecError{Op: "decode", Err: ErrMalformed}
	}
	if payloadLen > 0 {
		msg.Payload = append([]byte(nil), data[off:off+payloadLen]...)
	}

	return msg, nil
}
