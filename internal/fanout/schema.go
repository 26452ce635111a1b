package fanout

import (
	"github.com/charleschow/arcade-hockey/internal/core/command"
	"github.com/charleschow/arcade-hockey/internal/events"
)

// WireCatalog gathers every message shape that crosses the /ws socket so
// one schema document covers both directions. It is never sent as is.
type WireCatalog struct {
	Envelope Envelope      `json:"envelope" jsonschema:"description=Server to client frame; payload shape depends on type"`
	Inbound  ClientMessage `json:"inbound" jsonschema:"description=Client to server frame; type is command or action"`

	Command command.Command `json:"command" jsonschema:"description=Player input carried by an inbound command frame"`

	Snapshot events.SnapshotEvent `json:"snapshot" jsonschema:"description=Payload of snapshot frames"`
	Period   events.PeriodEvent   `json:"period" jsonschema:"description=Payload of period_start and overtime frames"`
	PuckPop  events.PuckPopEvent  `json:"puck_pop" jsonschema:"description=Payload of puck_pop frames"`
	Final    events.FinalEvent    `json:"final" jsonschema:"description=Payload of final frames"`
	Injury   events.InjuryEvent   `json:"injury" jsonschema:"description=Payload of injury frames"`
	XP       events.XPEvent       `json:"xp" jsonschema:"description=Payload of xp frames"`
}
