package process

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/charleschow/arcade-hockey/internal/adapters/outbound/discord"
	"github.com/charleschow/arcade-hockey/internal/config"
	"github.com/charleschow/arcade-hockey/internal/core/display"
	"github.com/charleschow/arcade-hockey/internal/core/progression"
	"github.com/charleschow/arcade-hockey/internal/core/state/match"
	"github.com/charleschow/arcade-hockey/internal/core/state/store"
	"github.com/charleschow/arcade-hockey/internal/events"
	"github.com/charleschow/arcade-hockey/internal/fanout"
	"github.com/charleschow/arcade-hockey/internal/telemetry"
)

const (
	sweepInterval   = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Options toggles the optional pieces of a Host.
type Options struct {
	// Scoreboard prints period changes and finals to stderr.
	Scoreboard bool
}

// Host wires every shared component of the match server: presets,
// progression ledger, bus, session store, fanout and the HTTP API.
type Host struct {
	Config   *config.Config
	Bus      *events.Bus
	Sessions *store.SessionStore
	Launcher *store.Launcher
	Ledger   *progression.Ledger
	Fanout   *fanout.Server
	Notifier *discord.Notifier

	progression *progression.Store
	server      *http.Server
}

func NewHost(cfg *config.Config, opts Options) (*Host, error) {
	presets, err := config.LoadMatchPresets(cfg.MatchPresetsPath)
	if err != nil {
		return nil, fmt.Errorf("load match presets: %w", err)
	}
	if _, err := presets.Preset(cfg.DefaultPreset); err != nil {
		return nil, fmt.Errorf("default preset: %w", err)
	}

	ps, err := progression.OpenStore(cfg.ProgressionDBPath)
	if err != nil {
		return nil, fmt.Errorf("progression store: %w", err)
	}

	bus := events.NewBus()
	ledger := progression.NewLedger(ps, bus)

	// ── Observers ──────────────────────────────────────────────
	observers := []match.Observer{
		match.NewBusObserver(bus),
		progression.NewObserver(ledger, bus),
	}
	if opts.Scoreboard {
		observers = append(observers, display.NewObserver(nil))
	}

	sessions := store.New()
	launcher := &store.Launcher{
		Sessions:      sessions,
		Presets:       presets,
		DefaultPreset: cfg.DefaultPreset,
		FrameHz:       cfg.FrameHz,
		SnapshotEvery: cfg.SnapshotEvery,
		MaxMatches:    cfg.MaxMatches,
		Observers:     observers,
	}

	// ── Fanout + API ───────────────────────────────────────────
	ws := fanout.NewServer(bus, fanout.Options{
		Sessions:        sessions,
		Launcher:        launcher,
		Ledger:          ledger,
		InputRatePerSec: cfg.InputRatePerSec,
		InputBurst:      cfg.InputBurst,
	})
	api := fanout.NewAPI(ws)

	notifier := discord.NewNotifier(cfg.DiscordWebhookURL)
	notifier.Subscribe(bus)
	if notifier.Enabled() {
		telemetry.Infof("Discord notifications enabled")
	}

	telemetry.Infof("Presets loaded: %v (default %s)", presets.Names(), cfg.DefaultPreset)

	return &Host{
		Config:      cfg,
		Bus:         bus,
		Sessions:    sessions,
		Launcher:    launcher,
		Ledger:      ledger,
		Fanout:      ws,
		Notifier:    notifier,
		progression: ps,
		server:      api.HTTPServer(fanout.Addr(cfg.ListenHost, cfg.ListenPort)),
	}, nil
}

// Run serves HTTP and sweeps finished matches until ctx is cancelled,
// then shuts the listener down. Matches are closed by Close.
func (h *Host) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		telemetry.Infof("Listening on %q (ws + api)", h.server.Addr)
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return h.server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		h.sweep(ctx)
		return nil
	})

	return g.Wait()
}

func (h *Host) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := h.Sessions.Sweep(now.Add(-h.Config.FinishedGrace)); n > 0 {
				telemetry.Debugf("sweeper: dropped %d finished matches (%d live)", n, h.Sessions.Count())
			}
		}
	}
}

// Close stops every match and closes the ledger.
func (h *Host) Close() error {
	h.Sessions.CloseAll()
	return h.progression.Close()
}
