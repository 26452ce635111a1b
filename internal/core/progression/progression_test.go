package progression

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/charleschow/arcade-hockey/internal/core/facade"
	"github.com/charleschow/arcade-hockey/internal/core/rng"
	"github.com/charleschow/arcade-hockey/internal/core/sim"
	"github.com/charleschow/arcade-hockey/internal/core/state/match"
	"github.com/charleschow/arcade-hockey/internal/events"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "prog", "test.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLedgerDiminishesSpammyActions(t *testing.T) {
	l := NewLedger(openTestStore(t), nil)

	want := []float64{5, 5, 5, 2.5, 2.5, 2.5, 0.5, 0.5}
	for i, w := range want {
		a, err := l.Award("m1", "alice", 0, sim.ActionHit)
		if err != nil {
			t.Fatal(err)
		}
		if a.Count != i {
			t.Errorf("award %d: count = %d, want %d", i, a.Count, i)
		}
		if a.XP != w {
			t.Errorf("award %d: xp = %v, want %v", i, a.XP, w)
		}
	}

	// A new match resets the window.
	a, err := l.Award("m2", "alice", 0, sim.ActionHit)
	if err != nil {
		t.Fatal(err)
	}
	if a.Count != 0 || a.XP != 5 {
		t.Errorf("new match award = %+v, want count 0 xp 5", a)
	}
}

func TestLedgerRareActionsDoNotDiminish(t *testing.T) {
	l := NewLedger(openTestStore(t), nil)
	for i := 0; i < 8; i++ {
		a, err := l.Award("m1", "bob", 0, sim.ActionGoal)
		if err != nil {
			t.Fatal(err)
		}
		if a.XP != 50 {
			t.Fatalf("goal %d: xp = %v, want 50", i, a.XP)
		}
	}
}

func TestLedgerConcurrentAwardsGetDistinctCounts(t *testing.T) {
	l := NewLedger(openTestStore(t), nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int]bool)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := l.Award("m1", "carol", 0, sim.ActionCheck)
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			seen[a.Count] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != 10 {
		t.Fatalf("distinct counts = %d, want 10", len(seen))
	}
}

func TestLedgerPublishesXP(t *testing.T) {
	bus := events.NewBus()
	var got []events.XPEvent
	bus.Subscribe(func(e events.Event) error {
		got = append(got, e.Payload.(events.XPEvent))
		return nil
	}, events.EventXP)

	l := NewLedger(openTestStore(t), bus)
	if _, err := l.Award("m1", "dave", 7, sim.ActionSave); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].PlayerID != "dave" || got[0].XP != 20 {
		t.Fatalf("published = %+v", got)
	}
}

func TestPlayerProfileCountsDownInjuries(t *testing.T) {
	s := openTestStore(t)
	l := NewLedger(s, nil)

	if _, err := l.Award("m1", "erin", 0, sim.ActionParticipation); err != nil {
		t.Fatal(err)
	}
	err := s.InsertInjury(InjuryRecord{
		MatchID:  "m1",
		PlayerID: "erin",
		Team:     sim.TeamHome,
		Injury:   sim.Injury{BodyPart: sim.BodyArm, Type: sim.InjurySprain, MatchesOut: 2},
		Seq:      1,
	})
	if err != nil {
		t.Fatal(err)
	}

	p, err := s.PlayerProfile("erin")
	if err != nil {
		t.Fatal(err)
	}
	if p.MatchesPlayed != 1 || p.TotalXP != 10 {
		t.Fatalf("profile = %+v", p)
	}
	if len(p.Injuries) != 1 || p.Injuries[0].Remaining != 2 || !p.Sidelined() {
		t.Fatalf("injuries = %+v", p.Injuries)
	}

	for _, m := range []string{"m2", "m3"} {
		if _, err := l.Award(m, "erin", 0, sim.ActionParticipation); err != nil {
			t.Fatal(err)
		}
	}
	p, err = s.PlayerProfile("erin")
	if err != nil {
		t.Fatal(err)
	}
	if p.Injuries[0].Remaining != 0 || p.Sidelined() {
		t.Fatalf("after two matches: remaining = %d, sidelined = %v", p.Injuries[0].Remaining, p.Sidelined())
	}
}

func TestPlayerProfileUnknownPlayer(t *testing.T) {
	p, err := openTestStore(t).PlayerProfile("nobody")
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalXP != 0 || p.MatchesPlayed != 0 || len(p.Injuries) != 0 {
		t.Fatalf("profile = %+v, want empty", p)
	}
}

func TestPlayerSeedStable(t *testing.T) {
	a := PlayerSeed(12345, "alice")
	if a != PlayerSeed(12345, "alice") {
		t.Fatal("PlayerSeed not deterministic")
	}
	if a == PlayerSeed(12345, "bob") {
		t.Fatal("different players share a seed")
	}
	if a < 0 || a > 1<<32-1 {
		t.Fatalf("seed %d outside uint32 range", a)
	}
}

func runToFinal(t *testing.T, injury sim.InjuryConfig, obs ...match.Observer) *match.MatchContext {
	t.Helper()
	start := facade.DefaultStartConfig()
	start.Seed = 12345
	mc := match.New("match-1", match.Settings{Preset: "smoke", Start: start, Injury: injury}, obs...)
	t.Cleanup(mc.Close)

	mc.RegisterPlayer("Alice", sim.TeamHome)
	mc.RegisterPlayer("Bob", sim.TeamAway)
	if err := mc.Start(0); err != nil {
		t.Fatal(err)
	}
	if err := mc.Step(5000); err != nil {
		t.Fatal(err)
	}
	if !mc.Finished() {
		t.Fatal("match did not finish")
	}
	return mc
}

func TestObserverSettlesTiedMatch(t *testing.T) {
	s := openTestStore(t)
	bus := events.NewBus()
	var injuries []events.InjuryEvent
	bus.Subscribe(func(e events.Event) error {
		injuries = append(injuries, e.Payload.(events.InjuryEvent))
		return nil
	}, events.EventInjury)

	obs := NewObserver(NewLedger(s, bus), bus)
	runToFinal(t, sim.InjuryConfig{LoserChance: 0, WinnerChance: 1}, obs)

	res, err := s.Result("match-1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Seed != 12345 || res.Preset != "smoke" {
		t.Fatalf("result = %+v", res)
	}

	for _, id := range []string{"alice", "bob"} {
		p, err := s.PlayerProfile(id)
		if err != nil {
			t.Fatal(err)
		}
		// 0-0 is a tie: participation only, no result XP.
		if p.TotalXP != 10 || p.MatchesPlayed != 1 {
			t.Errorf("%s profile = %+v, want 10 xp over 1 match", id, p)
		}
		if len(p.Injuries) != 1 {
			t.Fatalf("%s injuries = %d, want 1", id, len(p.Injuries))
		}

		want, ok := sim.RollInjury(rng.New(PlayerSeed(12345, id)), false, sim.InjuryConfig{WinnerChance: 1})
		if !ok {
			t.Fatal("reference roll missed at chance 1")
		}
		if p.Injuries[0].Injury != want {
			t.Errorf("%s injury = %+v, want %+v", id, p.Injuries[0].Injury, want)
		}
	}
	if len(injuries) != 2 {
		t.Fatalf("injury events = %d, want 2", len(injuries))
	}
}

func TestObserverNoInjuriesAtZeroOdds(t *testing.T) {
	s := openTestStore(t)
	obs := NewObserver(NewLedger(s, nil), nil)
	runToFinal(t, sim.InjuryConfig{}, obs)

	p, err := s.PlayerProfile("alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Injuries) != 0 {
		t.Fatalf("injuries = %+v, want none", p.Injuries)
	}
}
