package match

import (
	"errors"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charleschow/arcade-hockey/internal/core/command"
	"github.com/charleschow/arcade-hockey/internal/core/facade"
	"github.com/charleschow/arcade-hockey/internal/core/playerid"
	"github.com/charleschow/arcade-hockey/internal/core/scene"
	"github.com/charleschow/arcade-hockey/internal/core/sim"
	"github.com/charleschow/arcade-hockey/internal/events"
	"github.com/charleschow/arcade-hockey/internal/telemetry"
)

var (
	ErrClosed   = errors.New("match closed")
	ErrFinished = errors.New("match finished")
)

const (
	inboxCap = 256

	sceneLobby = "lobby"
	sceneLive  = "live"
	sceneFinal = "final"
)

// Settings is everything needed to (re)start one match.
type Settings struct {
	Preset        string
	Start         facade.StartConfig
	Injury        sim.InjuryConfig
	SnapshotEvery int // frames between EventSnapshot notifications; 0 disables
}

// View is the read-side copy published after every frame.
type View struct {
	facade.Snapshot
	ClockMs float64       `json:"clock_ms"`
	Puck    sim.PuckState `json:"puck"`
	Pops    int           `json:"pops"`
}

// Observer receives match events. Implementations run on the match's
// goroutine, so they may call Facade and Players directly.
type Observer interface {
	OnMatchEvent(mc *MatchContext, kind events.EventType)
}

// MatchContext is the single owner of one running match.
//
// The facade underneath is not safe for concurrent use, so every read or
// write of it happens on the context's own goroutine: callers hand work
// over with Send (fire and forget) or Do (wait for completion). Frames
// are driven by a ticker on that same goroutine once Start is called.
// Readers on other goroutines use View, which returns the copy published
// at the end of the last frame.
type MatchContext struct {
	ID        string
	Settings  Settings
	CreatedAt time.Time

	facade    *facade.MatchFacade
	scenes    *scene.Machine
	players   map[string]sim.Team
	observers []Observer
	ticker    *time.Ticker
	lastFrame time.Time
	frames    int

	viewMu     sync.RWMutex
	view       View
	finished   atomic.Bool
	finishedAt atomic.Int64

	closeMu sync.RWMutex
	closed  bool
	inbox   chan func()
	stop    chan struct{}
}

func New(id string, settings Settings, observers ...Observer) *MatchContext {
	mc := &MatchContext{
		ID:        id,
		Settings:  settings,
		CreatedAt: time.Now(),
		facade:    facade.New(),
		players:   make(map[string]sim.Team),
		observers: observers,
		inbox:     make(chan func(), inboxCap),
		stop:      make(chan struct{}),
	}
	mc.facade.StartMatch(settings.Start)
	mc.scenes = scene.NewMachine(scene.Scene{ID: sceneLobby})
	mc.publishView()

	telemetry.Metrics.MatchesStarted.Inc()
	telemetry.Metrics.ActiveMatches.Inc()

	go mc.run()
	return mc
}

// run is the match's event loop. Closures sent via Send/Do and frame
// ticks both execute here, one at a time.
func (mc *MatchContext) run() {
	defer close(mc.stop)
	for {
		var frames <-chan time.Time
		if mc.ticker != nil {
			frames = mc.ticker.C
		}

		select {
		case fn, ok := <-mc.inbox:
			if !ok {
				mc.stopTicker()
				return
			}
			fn()
		case now := <-frames:
			dt := float64(now.Sub(mc.lastFrame)) / float64(time.Millisecond)
			mc.lastFrame = now
			mc.scenes.Update(dt)
		}
	}
}

// Send enqueues a closure to run on the match goroutine.
// Non-blocking: drops the closure and returns false if the inbox is full
// or the match is closed.
func (mc *MatchContext) Send(fn func()) bool {
	mc.closeMu.RLock()
	defer mc.closeMu.RUnlock()
	if mc.closed {
		return false
	}
	select {
	case mc.inbox <- fn:
		return true
	default:
		telemetry.Metrics.InboxOverflows.Inc()
		telemetry.Warnf("match %s: inbox full (cap=%d), dropping work", mc.ID, cap(mc.inbox))
		return false
	}
}

// Do runs fn on the match goroutine and waits for it to return.
func (mc *MatchContext) Do(fn func()) error {
	done := make(chan struct{})
	mc.closeMu.RLock()
	if mc.closed {
		mc.closeMu.RUnlock()
		return ErrClosed
	}
	mc.inbox <- func() {
		defer close(done)
		fn()
	}
	mc.closeMu.RUnlock()
	<-done
	return nil
}

// Start moves the match from the lobby to live play. With frameHz > 0 a
// ticker drives frames at that rate using wall-clock deltas; with 0 the
// caller drives frames through Step.
func (mc *MatchContext) Start(frameHz int) error {
	return mc.Do(func() {
		if mc.scenes.CurrentID() != sceneLobby {
			return
		}
		mc.scenes.TransitionTo(scene.Scene{ID: sceneLive, Update: mc.advance})
		if frameHz > 0 {
			mc.lastFrame = time.Now()
			mc.ticker = time.NewTicker(time.Second / time.Duration(frameHz))
		}
	})
}

// Step runs one frame of dtMs on the match goroutine and waits for it.
// Frames outside live play are ignored.
func (mc *MatchContext) Step(dtMs float64) error {
	return mc.Do(func() { mc.scenes.Update(dtMs) })
}

// SendInput queues a player command for the next frame.
func (mc *MatchContext) SendInput(cmd command.Command) bool {
	ok := mc.Send(func() { mc.facade.SendInput(cmd) })
	if ok {
		telemetry.Metrics.InputsQueued.Inc()
	}
	return ok
}

// RegisterPlayer records a participant for end-of-match progression.
// It refuses once the match has gone final, since the roster was already
// settled.
func (mc *MatchContext) RegisterPlayer(id string, team sim.Team) bool {
	id = playerid.Normalize(id)
	if id == "" || team == sim.TeamNone {
		return false
	}
	ok := false
	err := mc.Do(func() {
		if mc.finished.Load() {
			return
		}
		mc.players[id] = team
		ok = true
	})
	return err == nil && ok
}

// WhileLive runs fn on the match goroutine unless the match has gone
// final. Work passed here is ordered against end-of-match settlement.
func (mc *MatchContext) WhileLive(fn func() error) error {
	var fnErr error
	err := mc.Do(func() {
		if mc.finished.Load() {
			fnErr = ErrFinished
			return
		}
		fnErr = fn()
	})
	if err != nil {
		return err
	}
	return fnErr
}

// Players returns a copy of the registered participants.
// Must be called from the match goroutine (inside an observer or Do).
func (mc *MatchContext) Players() map[string]sim.Team {
	return maps.Clone(mc.players)
}

// Facade exposes the underlying match.
// Must be called from the match goroutine (inside an observer or Do).
func (mc *MatchContext) Facade() *facade.MatchFacade { return mc.facade }

// Scene reports the lifecycle stage: lobby, live or final.
// Must be called from the match goroutine (inside an observer or Do).
func (mc *MatchContext) Scene() string { return mc.scenes.CurrentID() }

func (mc *MatchContext) View() View {
	mc.viewMu.RLock()
	defer mc.viewMu.RUnlock()
	return mc.view
}

func (mc *MatchContext) Finished() bool { return mc.finished.Load() }

// Done is closed once the match goroutine has exited after Close.
func (mc *MatchContext) Done() <-chan struct{} { return mc.stop }

// FinishedAt returns when the match went final, or the zero time.
func (mc *MatchContext) FinishedAt() time.Time {
	ns := mc.finishedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Close shuts down the match goroutine and waits for it to drain.
// Safe to call more than once.
func (mc *MatchContext) Close() {
	mc.closeMu.Lock()
	if mc.closed {
		mc.closeMu.Unlock()
		return
	}
	mc.closed = true
	close(mc.inbox)
	mc.closeMu.Unlock()

	<-mc.stop
	telemetry.Metrics.ActiveMatches.Dec()
}

// advance is the live scene's frame: tick the facade, publish the view,
// and notify observers of whatever changed.
func (mc *MatchContext) advance(dtMs float64) {
	start := time.Now()
	before := mc.facade.Snapshot()

	res := mc.facade.Tick(dtMs)
	after := mc.facade.Snapshot()
	mc.publishView()
	mc.frames++

	telemetry.Metrics.TicksProcessed.Inc()
	telemetry.Metrics.TickLatency.Record(time.Since(start))

	if after.Phase == sim.PhaseRegulation && after.Period > before.Period {
		mc.notify(events.EventPeriodStart)
	}
	if before.Phase == sim.PhaseRegulation && after.Phase != sim.PhaseRegulation {
		mc.notify(events.EventOvertime)
	}
	if res.Popped {
		telemetry.Metrics.PuckPops.Inc()
		mc.notify(events.EventPuckPop)
	}
	if n := mc.Settings.SnapshotEvery; n > 0 && mc.frames%n == 0 {
		mc.notify(events.EventSnapshot)
	}
	if after.Phase == sim.PhaseFinal {
		mc.finish()
	}
}

func (mc *MatchContext) finish() {
	mc.stopTicker()
	mc.scenes.TransitionTo(scene.Scene{ID: sceneFinal})
	mc.finishedAt.Store(time.Now().UnixNano())
	mc.finished.Store(true)
	telemetry.Metrics.MatchesFinished.Inc()
	mc.notify(events.EventSnapshot)
	mc.notify(events.EventFinal)
}

func (mc *MatchContext) stopTicker() {
	if mc.ticker != nil {
		mc.ticker.Stop()
		mc.ticker = nil
	}
}

func (mc *MatchContext) notify(kind events.EventType) {
	for _, o := range mc.observers {
		o.OnMatchEvent(mc, kind)
	}
}

func (mc *MatchContext) publishView() {
	clock := mc.facade.Clock()
	v := View{
		Snapshot: mc.facade.Snapshot(),
		ClockMs:  clock.ClockMs,
		Puck:     mc.facade.Puck(),
		Pops:     mc.facade.Pops(),
	}
	mc.viewMu.Lock()
	mc.view = v
	mc.viewMu.Unlock()
}
