package gossip

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// sendPacing is the small inter-destination delay inserted between
// successive sends within a single gossip round, to avoid microbursts on
// shared links (spec.md §4.4).
const sendPacing = time.Millisecond

// Disseminator implements the Dissemination Engine: fanout selection,
// per-destination re-encoding, and TTL-gated forwarding with
// originator-based loop suppression.
type Disseminator struct {
	table     *PeerTable
	sampler   *Sampler
	transport Transport
	cfg       Config
	localId   NodeId
	metrics   *Metrics
	logger    *zap.Logger
}

// NewDisseminator builds a Disseminator for localId, wired to table,
// sampler and transport. logger and metrics may be nil.
func NewDisseminator(table *PeerTable, sampler *Sampler, transport Transport, cfg Config, localId NodeId, metrics *Metrics, logger *zap.Logger) *Disseminator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Disseminator{
		table:     table,
		sampler:   sampler,
		transport: transport,
		cfg:       cfg,
		localId:   localId,
		metrics:   metrics,
		logger:    logger,
	}
}

// Gossip sends msg to this round's fanout destinations, excluding excludeId
// from consideration. Errors on individual writes are logged and do not
// abort the round.
func (d *Disseminator) Gossip(ctx context.Context, msg GossipMessage, excludeId *NodeId) error {
	dest := SelectFanout(d.table, d.sampler, d.localId, d.cfg, excludeId)
	d.metrics.observeRound()

	if len(dest) == 0 {
		d.logger.Debug("gossip round has no destinations", zap.Uint32("from_id", uint32(msg.FromId)))
		return nil
	}
	d.logger.Debug("gossip round selected destinations",
		zap.Int("count", len(dest)),
		zap.Bool("rescue_appended", !dest[len(dest)-1].IsLive(time.Now(), d.cfg.OfflineTimeout)))

	for i, node := range dest {
		buf, err := Encode(msg)
		if err != nil {
			d.logger.Error("failed to encode outbound message", zap.Error(err))
			d.metrics.observeSend(false)
			continue
		}

		if _, err := d.transport.Write(ctx, buf, node.Address); err != nil {
			d.logger.Error("gossip write failed",
				zap.String("addr", node.Address),
				zap.Uint32("to_id", uint32(node.Id)),
				zap.Error(err))
			d.metrics.observeSend(false)
			continue
		}
		d.metrics.observeSend(true)

		if i < len(dest)-1 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(sendPacing):
			}
		}
	}

	return nil
}

// Forward implements the receive-path forwarding step: decrement ttl, drop
// at zero, otherwise gossip onward excluding the originator (loop
// suppression per spec.md §4.4 — from_id is the origin, not the last hop).
func (d *Disseminator) Forward(ctx context.Context, msg GossipMessage) {
	if msg.Ttl == 0 {
		d.metrics.observeForwardDropped()
		return
	}
	msg.Ttl--
	if msg.Ttl == 0 {
		d.metrics.observeForwardDropped()
		return
	}

	excludeId := msg.FromId
	if err := d.Gossip(ctx, msg, &excludeId); err != nil {
		d.logger.Error("forward failed", zap.Error(err))
	}
}
