package match

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/charleschow/arcade-hockey/internal/core/command"
	"github.com/charleschow/arcade-hockey/internal/core/facade"
	"github.com/charleschow/arcade-hockey/internal/core/sim"
	"github.com/charleschow/arcade-hockey/internal/core/vec"
	"github.com/charleschow/arcade-hockey/internal/events"
)

type recorder struct {
	mu    sync.Mutex
	kinds []events.EventType
}

func (r *recorder) OnMatchEvent(_ *MatchContext, kind events.EventType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
}

func (r *recorder) count(kind events.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, k := range r.kinds {
		if k == kind {
			n++
		}
	}
	return n
}

func testSettings(seed int64) Settings {
	start := facade.DefaultStartConfig()
	start.Seed = seed
	return Settings{Preset: "smoke", Start: start, Injury: sim.DefaultInjuryConfig()}
}

func TestStepIgnoredInLobby(t *testing.T) {
	mc := New("m1", testSettings(1))
	defer mc.Close()

	if err := mc.Step(1000); err != nil {
		t.Fatal(err)
	}
	if got := mc.View().Tick; got != 0 {
		t.Fatalf("tick in lobby = %d, want 0", got)
	}
}

func TestStepDrivesFacadeAndNotifies(t *testing.T) {
	rec := &recorder{}
	mc := New("m1", testSettings(1), rec)
	defer mc.Close()

	if err := mc.Start(0); err != nil {
		t.Fatal(err)
	}
	if err := mc.Step(1000); err != nil {
		t.Fatal(err)
	}
	v := mc.View()
	if v.Tick != 1 || v.Period != 2 {
		t.Fatalf("view = %+v, want tick 1 period 2", v)
	}
	if rec.count(events.EventPeriodStart) != 1 {
		t.Fatalf("period_start count = %d", rec.count(events.EventPeriodStart))
	}

	mc.Step(2000)
	if rec.count(events.EventOvertime) != 1 {
		t.Fatal("expected overtime notification")
	}
	if mc.Finished() {
		t.Fatal("finished too early")
	}

	mc.Step(500)
	if !mc.Finished() || rec.count(events.EventFinal) != 1 {
		t.Fatalf("finished=%v finals=%d", mc.Finished(), rec.count(events.EventFinal))
	}
	if mc.FinishedAt().IsZero() {
		t.Fatal("FinishedAt not set")
	}

	mc.Step(500)
	if rec.count(events.EventFinal) != 1 || mc.View().Tick != 3 {
		t.Fatal("frames after final must be ignored")
	}
}

func TestPuckPopNotification(t *testing.T) {
	rec := &recorder{}
	mc := New("m1", testSettings(1), rec)
	defer mc.Close()
	mc.Start(0)

	for i := 0; i < 3; i++ {
		mc.Step(16)
	}
	if rec.count(events.EventPuckPop) != 1 {
		t.Fatalf("pops = %d, want 1", rec.count(events.EventPuckPop))
	}
	if mc.View().Pops != 1 {
		t.Fatalf("view pops = %d", mc.View().Pops)
	}
}

func TestSnapshotEvery(t *testing.T) {
	rec := &recorder{}
	s := testSettings(1)
	s.SnapshotEvery = 2
	mc := New("m1", s, rec)
	defer mc.Close()
	mc.Start(0)

	for i := 0; i < 6; i++ {
		mc.Step(1)
	}
	if got := rec.count(events.EventSnapshot); got != 3 {
		t.Fatalf("snapshots = %d, want 3", got)
	}
}

func TestSendInputIsClearedByNextFrame(t *testing.T) {
	mc := New("m1", testSettings(1))
	defer mc.Close()
	mc.Start(0)

	mc.SendInput(command.Move("p1", vec.New(0, 1)))
	var pending int
	mc.Do(func() { pending = mc.Facade().PendingInputCount() })
	if pending != 1 {
		t.Fatalf("pending = %d, want 1", pending)
	}

	mc.Step(16)
	mc.Do(func() { pending = mc.Facade().PendingInputCount() })
	if pending != 0 {
		t.Fatalf("pending after frame = %d, want 0", pending)
	}
}

func TestRegisterPlayerNormalizes(t *testing.T) {
	mc := New("m1", testSettings(1))
	defer mc.Close()

	if mc.RegisterPlayer("", sim.TeamHome) || mc.RegisterPlayer("p1", sim.TeamNone) {
		t.Fatal("invalid registrations accepted")
	}
	mc.RegisterPlayer("  Selänne ", sim.TeamHome)
	mc.RegisterPlayer("Kurri", sim.TeamAway)

	var players map[string]sim.Team
	mc.Do(func() { players = mc.Players() })
	if players["selanne"] != sim.TeamHome || players["kurri"] != sim.TeamAway {
		t.Fatalf("players = %v", players)
	}
}

func TestRegisterPlayerRefusedAfterFinal(t *testing.T) {
	mc := New("m1", testSettings(1))
	defer mc.Close()
	mc.Start(0)
	mc.Step(10_000)
	if !mc.Finished() {
		t.Fatal("expected final")
	}

	if mc.RegisterPlayer("late", sim.TeamHome) {
		t.Fatal("registration accepted after final")
	}
	var n int
	mc.Do(func() { n = len(mc.Players()) })
	if n != 0 {
		t.Fatalf("players = %d, want 0", n)
	}
}

func TestWhileLiveStopsAtFinal(t *testing.T) {
	mc := New("m1", testSettings(1))
	defer mc.Close()
	mc.Start(0)

	calls := 0
	if err := mc.WhileLive(func() error { calls++; return nil }); err != nil {
		t.Fatal(err)
	}
	mc.Step(10_000)
	if err := mc.WhileLive(func() error { calls++; return nil }); !errors.Is(err, ErrFinished) {
		t.Fatalf("err = %v, want ErrFinished", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}

	mc.Close()
	if err := mc.WhileLive(func() error { return nil }); !errors.Is(err, ErrClosed) {
		t.Fatalf("err after Close = %v, want ErrClosed", err)
	}
}

func TestDoneClosedAfterClose(t *testing.T) {
	mc := New("m1", testSettings(1))
	select {
	case <-mc.Done():
		t.Fatal("Done closed before Close")
	default:
	}
	mc.Close()
	select {
	case <-mc.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Close")
	}
}

func TestFrameHzRunsToFinal(t *testing.T) {
	s := testSettings(1)
	s.Start.PeriodMs = 20
	s.Start.OvertimeMs = 10
	mc := New("m1", s)
	defer mc.Close()
	if err := mc.Start(200); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !mc.Finished() {
		if time.Now().After(deadline) {
			t.Fatalf("match did not finish: %+v", mc.View())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if mc.View().Phase != sim.PhaseFinal {
		t.Fatalf("phase = %s", mc.View().Phase)
	}
}

func TestClosedMatchRejectsWork(t *testing.T) {
	mc := New("m1", testSettings(1))
	mc.Close()
	mc.Close()

	if mc.Send(func() {}) {
		t.Fatal("Send succeeded after Close")
	}
	if err := mc.Do(func() {}); err != ErrClosed {
		t.Fatalf("Do after Close = %v, want ErrClosed", err)
	}
}

func TestBusObserverPublishesTypedPayloads(t *testing.T) {
	bus := events.NewBus()
	var got []events.Event
	bus.Subscribe(func(e events.Event) error { got = append(got, e); return nil },
		events.EventPeriodStart, events.EventOvertime, events.EventFinal, events.EventPuckPop)

	mc := New("m-bus", testSettings(1), NewBusObserver(bus))
	defer mc.Close()
	mc.Start(0)
	mc.Step(10_000)

	var final *events.FinalEvent
	mc.Do(func() {})
	for _, e := range got {
		if e.MatchID != "m-bus" {
			t.Fatalf("match id = %q", e.MatchID)
		}
		if fe, ok := e.Payload.(events.FinalEvent); ok {
			final = &fe
		}
	}
	if final == nil {
		t.Fatalf("no final event in %v", got)
	}
	if final.Seed != 1 || final.Ticks != 1 {
		t.Fatalf("final = %+v", final)
	}
}
