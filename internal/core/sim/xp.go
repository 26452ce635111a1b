package sim

import "fmt"

type Action string

const (
	ActionHit           Action = "hit"
	ActionCheck         Action = "check"
	ActionStun          Action = "stun"
	ActionGoal          Action = "goal"
	ActionAssist        Action = "assist"
	ActionSave          Action = "save"
	ActionParticipation Action = "participation"
	ActionResult        Action = "result"
)

type actionCategory int

const (
	categoryBase actionCategory = iota
	categorySpammy
	categoryRare
)

type actionInfo struct {
	category actionCategory
	baseXP   float64
}

var actions = map[Action]actionInfo{
	ActionHit:           {categorySpammy, 5},
	ActionCheck:         {categorySpammy, 5},
	ActionStun:          {categorySpammy, 8},
	ActionGoal:          {categoryRare, 50},
	ActionAssist:        {categoryRare, 30},
	ActionSave:          {categoryRare, 20},
	ActionParticipation: {categoryBase, 10},
	ActionResult:        {categoryBase, 20},
}

// ParseAction maps a wire string to an Action.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if _, ok := actions[a]; !ok {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// Spammy reports whether repeated uses of a diminish.
func (a Action) Spammy() bool { return actions[a].category == categorySpammy }

// XPForAction returns the experience for one more a after countSoFar prior
// uses inside the caller's window. Only spammy actions diminish; the
// caller owns and increments the count.
func XPForAction(a Action, countSoFar int) float64 {
	info, ok := actions[a]
	if !ok {
		return 0
	}
	if info.category == categorySpammy {
		return info.baseXP * spammyMultiplier(countSoFar)
	}
	return info.baseXP
}

func spammyMultiplier(count int) float64 {
	switch {
	case count < 3:
		return 1
	case count < 6:
		return 0.5
	default:
		return 0.1
	}
}
