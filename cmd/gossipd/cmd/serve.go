package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mcastellin/gossipd/pkg/gossip"
	"github.com/mcastellin/gossipd/pkg/udptransport"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagBind           string
	flagSeeds          []string
	flagFanout         int
	flagTTL            uint8
	flagHeartbeat      time.Duration
	flagOfflineTimeout time.Duration
	flagMetricsAddr    string
	flagNodeName       string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "join or bootstrap a gossip cluster and start serving",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagBind, "bind", "0.0.0.0:42069", "address to bind the gossip UDP socket")
	serveCmd.Flags().StringArrayVar(&flagSeeds, "seed", nil, "address of a known peer to bootstrap from (repeatable)")
	serveCmd.Flags().IntVar(&flagFanout, "fanout", 4, "number of live peers gossiped to per round")
	serveCmd.Flags().Uint8Var(&flagTTL, "ttl", 3, "time-to-live seeded on locally-originated messages")
	serveCmd.Flags().DurationVar(&flagHeartbeat, "heartbeat", time.Second, "interval between liveness broadcasts")
	serveCmd.Flags().DurationVar(&flagOfflineTimeout, "offline-timeout", 10*time.Second, "time since last heartbeat before a peer is swept offline")
	serveCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", ":9090", "address to serve /metrics on")
	serveCmd.Flags().StringVar(&flagNodeName, "name", "", "human name to derive this node's id from (random if empty)")
}

func runServe(_ *cobra.Command, _ []string) error {
	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	cfg := gossip.DefaultConfig()
	cfg.Fanout = flagFanout
	cfg.MessageTTL = flagTTL
	cfg.HeartbeatInterval = flagHeartbeat
	cfg.OfflineTimeout = flagOfflineTimeout

	name := flagNodeName
	if name == "" {
		name = gossip.MakeId(cfg.Prefix)
	}
	localId := gossip.HashNodeName(name)

	transport, err := udptransport.New(flagBind)
	if err != nil {
		return fmt.Errorf("gossipd: bind %q: %w", flagBind, err)
	}
	defer transport.Close()

	seeds := make([]gossip.Node, 0, len(flagSeeds))
	for _, addr := range flagSeeds {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		seeds = append(seeds, gossip.Node{
			Id:      gossip.HashNodeName(addr),
			Address: addr,
			Status:  gossip.Offline,
		})
	}

	metrics := gossip.NewMetrics()
	driver := gossip.NewDriver(cfg, localId, seeds, transport, nil, metrics, logger)

	logger.Info("starting gossip node",
		zap.String("name", name),
		zap.Uint32("node_id", uint32(localId)),
		zap.String("bind", flagBind),
		zap.Int("seeds", len(seeds)))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{Addr: flagMetricsAddr, Handler: mux}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped unexpectedly", zap.Error(err))
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runErr := driver.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsServer.Shutdown(shutdownCtx)

	if runErr != nil {
		logger.Error("gossip node stopped with an error", zap.Error(runErr))
	}
	return runErr
}
