// Package scene runs one active scene at a time and hands off between them.
package scene

// Scene is a stage with enter/exit hooks and a per-frame update.
// Nil hooks are skipped.
type Scene struct {
	ID     string
	Enter  func()
	Exit   func()
	Update func(dtMs float64)
}

type Machine struct {
	current Scene
}

// NewMachine enters initial immediately.
func NewMachine(initial Scene) *Machine {
	m := &Machine{current: initial}
	call(m.current.Enter)
	return m
}

// TransitionTo exits the current scene and enters next.
func (m *Machine) TransitionTo(next Scene) {
	call(m.current.Exit)
	m.current = next
	call(m.current.Enter)
}

func (m *Machine) Update(dtMs float64) {
	if m.current.Update != nil {
		m.current.Update(dtMs)
	}
}

func (m *Machine) CurrentID() string { return m.current.ID }

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
