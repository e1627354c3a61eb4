package gossip

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FatalTransportError marks a transport error that should terminate the
// receive loop rather than be logged and retried. Transports should wrap an
// error this way only when they know the underlying socket can never
// recover (spec.md §4.5 leaves this policy to the implementer); a plain
// error is treated as transient and the loop continues.
type FatalTransportError struct {
	Err error
}

func (e *FatalTransportError) Error() string { return "fatal transport error: " + e.Err.Error() }
func (e *FatalTransportError) Unwrap() error { return e.Err }

// NewDriver builds a Driver for localId, installing seeds into the peer
// table before Run is ever called. logger, metrics, and handler may be nil.
func NewDriver(cfg Config, localId NodeId, seeds []Node, transport Transport, handler Handler, metrics *Metrics, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}

	table := NewPeerTable()
	for _, s := range seeds {
		table.Upsert(s)
	}

	sampler := NewSampler(time.Now().UnixNano())

	d := &Driver{
		cfg:       cfg,
		localId:   localId,
		table:     table,
		transport: transport,
		sampler:   sampler,
		handler:   handler,
		metrics:   metrics,
		logger:    logger,
	}
	d.disseminator = NewDisseminator(table, sampler, transport, cfg, localId, metrics, logger)
	return d
}

// Driver owns the PeerTable, the Transport, and the random source, and runs
// the heartbeat, receive, and stale-sweep loops (spec.md §4.5, SPEC_FULL
// §4.5). It generalizes the teacher's Gossiper.Serve/Shutdown pair to
// context-based cancellation.
type Driver struct {
	cfg       Config
	localId   NodeId
	table     *PeerTable
	transport Transport
	sampler   *Sampler

	disseminator *Disseminator
	handler      Handler
	metrics      *Metrics
	logger       *zap.Logger

	wg sync.WaitGroup
}

// Run starts the heartbeat, receive, and stale-sweep loops and blocks until
// ctx is cancelled or the receive loop hits a FatalTransportError.
func (d *Driver) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)

	d.wg.Add(3)
	go d.heartbeatLoop(ctx)
	go d.staleSweepLoop(ctx)
	go d.receiveLoop(ctx, errCh)

	select {
	case <-ctx.Done():
		d.wg.Wait()
		return nil
	case err := <-errCh:
		cancel()
		d.wg.Wait()
		return err
	}
}

// Peers returns the local view of live cluster membership.
func (d *Driver) Peers() []Node {
	return d.table.SnapshotLive(d.cfg.OfflineTimeout, nil)
}

// LocalId returns this driver's own NodeId.
func (d *Driver) LocalId() NodeId {
	return d.localId
}

func (d *Driver) heartbeatLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			msg := Heartbeat(d.localId, d.cfg.MessageTTL)
			if err := d.disseminator.Gossip(ctx, msg, nil); err != nil {
				d.logger.Error("heartbeat gossip failed", zap.Error(err))
			}
		}
	}
}

func (d *Driver) staleSweepLoop(ctx context.Context) {
	defer d.wg.Done()

	interval := d.cfg.StaleSweepInterval()
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.table.MarkStaleOffline(d.cfg.OfflineTimeout)
			live := d.table.SnapshotLive(d.cfg.OfflineTimeout, nil)
			offline := d.table.SnapshotOffline(d.cfg.OfflineTimeout, nil)
			d.metrics.observePeerCounts(len(live), len(offline))
		}
	}
}

func (d *Driver) receiveLoop(ctx context.Context, errCh chan<- error) {
	defer d.wg.Done()

	buf := make([]byte, MaxPayloadSize)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, src, err := d.transport.RecvFrom(ctx, buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			var fatal *FatalTransportError
			if errors.As(err, &fatal) {
				errCh <- fatal
				return
			}

			d.logger.Error("receive error", zap.Error(err))
			continue
		}

		if n == 0 || n > MaxPayloadSize {
			d.logger.Debug("dropping packet with invalid length", zap.Int("n", n))
			continue
		}

		msg, err := Decode(buf[:n])
		if err != nil {
			d.logger.Debug("decode failed", zap.Error(err), zap.String("src", src))
			d.metrics.observeDecodeError()
			continue
		}

		d.table.Learn(msg.FromId, src)

		switch msg.MsgType {
		case HeartbeatType:
			d.table.Touch(msg.FromId)
		default:
			if d.handler != nil {
				d.handler.Handle(msg, src)
			}
		}

		d.disseminator.Forward(ctx, msg)
	}
}
