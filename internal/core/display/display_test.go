package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charleschow/arcade-hockey/internal/core/facade"
	"github.com/charleschow/arcade-hockey/internal/core/sim"
	"github.com/charleschow/arcade-hockey/internal/core/state/match"
)

func TestFormatLabels(t *testing.T) {
	tests := []struct {
		name string
		sb   Scoreboard
		want []string
	}{
		{"regulation", Scoreboard{Event: "period_start", Period: 2, Phase: sim.PhaseRegulation, ClockMs: 65000}, []string{"P2", "1:05 elapsed", "PERIOD_START"}},
		{"overtime", Scoreboard{Event: "overtime", Period: 4, Phase: sim.PhaseOvertime}, []string{"OT", dividerHeavy}},
		{"final ot", Scoreboard{Event: "final", Period: 4, Phase: sim.PhaseFinal, Home: 3, Away: 2}, []string{"Final/OT", "Home 3  |  Away 2"}},
		{"pop", Scoreboard{Event: "puck_pop", Pops: 1}, []string{dividerLight, "Puck:"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Format(tt.sb)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestObserverPrintsPeriodsAndFinal(t *testing.T) {
	var buf bytes.Buffer
	start := facade.DefaultStartConfig()
	mc := match.New("abcdef0123456789", match.Settings{Preset: "smoke", Start: start}, NewObserver(&buf))
	defer mc.Close()

	if err := mc.Start(0); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3 && !mc.Finished(); i++ {
		if err := mc.Step(1000); err != nil {
			t.Fatal(err)
		}
	}
	if err := mc.Step(1000); err != nil {
		t.Fatal(err)
	}

	var out string
	mc.Do(func() { out = buf.String() })
	for _, w := range []string{"[PERIOD_START", "[OVERTIME", "[FINAL", "abcdef01 (smoke)"} {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q", w)
		}
	}
	if strings.Count(out, "[SNAPSHOT") != 0 {
		t.Error("snapshots should not be printed")
	}
}
