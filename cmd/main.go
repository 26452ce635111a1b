package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/charleschow/arcade-hockey/internal/config"
	"github.com/charleschow/arcade-hockey/internal/process"
	"github.com/charleschow/arcade-hockey/internal/telemetry"
)

func main() {
	quiet := flag.Bool("quiet", false, "do not print scoreboards to stderr")
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
	telemetry.Infof("Starting match host")

	host, err := process.NewHost(cfg, process.Options{Scoreboard: !*quiet})
	if err != nil {
		telemetry.Errorf("Startup: %v", err)
		os.Exit(1)
	}

	// ── Shutdown ───────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := host.Run(ctx); err != nil {
		telemetry.Errorf("Host: %v", err)
	}

	telemetry.Infof("Shutting down...")
	if err := host.Close(); err != nil {
		telemetry.Warnf("Close: %v", err)
	}

	m := &telemetry.Metrics
	telemetry.Infof("Shutdown complete  matches=%s  finished=%s  ticks=%s  pops=%s  inputs=%s  throttled=%s  xp=%s  injuries=%s  sent=%s  tick_p99=%s",
		humanize.Comma(m.MatchesStarted.Value()),
		humanize.Comma(m.MatchesFinished.Value()),
		humanize.Comma(m.TicksProcessed.Value()),
		humanize.Comma(m.PuckPops.Value()),
		humanize.Comma(m.InputsQueued.Value()),
		humanize.Comma(m.InputsThrottled.Value()),
		humanize.Comma(m.XPAwarded.Value()),
		humanize.Comma(m.InjuriesRolled.Value()),
		humanize.Bytes(uint64(m.BroadcastBytes.Value())),
		m.TickLatency.P99(),
	)
}
