package scene

import "testing"

func TestTransitionCallsExitThenEnter(t *testing.T) {
	var log []string
	a := Scene{
		ID:    "A",
		Enter: func() { log = append(log, "enter A") },
		Exit:  func() { log = append(log, "exit A") },
	}
	b := Scene{
		ID:    "B",
		Enter: func() { log = append(log, "enter B") },
	}

	m := NewMachine(a)
	m.TransitionTo(b)

	want := []string{"enter A", "exit A", "enter B"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
	if m.CurrentID() != "B" {
		t.Fatalf("current = %q, want B", m.CurrentID())
	}
}

func TestUpdateForwardsToCurrent(t *testing.T) {
	var total float64
	m := NewMachine(Scene{ID: "live", Update: func(dt float64) { total += dt }})
	m.Update(16)
	m.Update(17)
	if total != 33 {
		t.Fatalf("total = %v, want 33", total)
	}
	m.TransitionTo(Scene{ID: "idle"})
	m.Update(100)
	if total != 33 {
		t.Fatal("update reached a scene that was exited")
	}
}
