package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/holdout/config"
	"github.com/lixenwraith/holdout/feed"
	"github.com/lixenwraith/holdout/logger"
	"github.com/lixenwraith/holdout/status"
	"github.com/lixenwraith/holdout/system"
)

var (
	configFlag = flag.String("config", "", "Path to TOML config (defaults when empty)")
	addrFlag   = flag.String("addr", "", "Listen address, overrides server.addr")
	fieldFlag  = flag.Bool("field", false, "Include the flow field in every frame")
	ticksFlag  = flag.Uint64("ticks", 0, "Stop after this many ticks, 0 runs until interrupted")
)

func main() {
	flag.Parse()
	log := logger.Init(os.Stdout)

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *addrFlag != "" {
		cfg.Server.Addr = *addrFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("Server stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	reg := status.NewRegistry()
	b, err := system.NewBattlefield(cfg.Battlefield(), reg, log)
	if err != nil {
		return err
	}

	hub := feed.NewHub(reg, log)
	defer hub.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           feed.Routes(hub),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("Feed listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	interval := cfg.Server.Tick.Duration
	dt := interval.Seconds()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Interrupted")
			return nil
		case err, ok := <-serveErr:
			if ok {
				return err
			}
			serveErr = nil
		case <-ticker.C:
			report := b.Tick(dt)
			logReport(log, b, report)

			if report.Tick%uint64(cfg.Server.BroadcastEvery) == 0 {
				if err := hub.Broadcast(feed.Capture(b, *fieldFlag)); err != nil {
					log.WithError(err).Warn("Broadcast failed")
				}
			}
			if b.BaseHealth() <= 0 {
				log.WithField("tick", report.Tick).Warn("Every objective destroyed")
				return nil
			}
			if *ticksFlag > 0 && report.Tick >= *ticksFlag {
				return nil
			}
		}
	}
}

func logReport(log logrus.FieldLogger, b *system.Battlefield, r system.TickReport) {
	if r.Rebuilt {
		stats := b.Navigator().FieldStats()
		log.WithFields(logrus.Fields{
			"tick":     r.Tick,
			"seeds":    stats.Seeds,
			"reached":  stats.Reached,
			"max_ring": stats.MaxRing,
		}).Info("Flow field rebuilt")
	}
	for _, h := range r.Hits {
		log.WithFields(logrus.Fields{
			"tick":      r.Tick,
			"enemy":     h.Enemy,
			"structure": h.Structure,
			"damage":    h.Damage,
			"destroyed": h.Destroyed,
		}).Info("Structure hit")
	}
	for _, id := range r.Collected {
		log.WithFields(logrus.Fields{"tick": r.Tick, "corpse": id}).Debug("Corpse collected")
	}
}
