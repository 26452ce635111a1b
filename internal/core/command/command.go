// Package command defines the player intents a client can queue between
// ticks. The facade accepts and counts them; nothing in the simulation
// applies them yet.
package command

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charleschow/arcade-hockey/internal/core/vec"
)

type Kind string

const (
	KindMove           Kind = "move"
	KindShoot          Kind = "shoot"
	KindPass           Kind = "pass"
	KindLightHit       Kind = "lightHit"
	KindHeavyHit       Kind = "heavyHit"
	KindRaceSkill      Kind = "raceSkill"
	KindCaptainCommand Kind = "captainCommand"
)

var (
	ErrUnknownKind   = errors.New("unknown command type")
	ErrMissingPlayer = errors.New("command missing player_id")
	ErrMissingVector = errors.New("command missing direction or target")
)

// Command is one player intent. Dir is set only for move, Target only for
// shoot and pass; the remaining kinds carry just the player.
type Command struct {
	Kind     Kind      `json:"type"`
	PlayerID string    `json:"player_id"`
	Dir      *vec.Vec2 `json:"dir,omitempty"`
	Target   *vec.Vec2 `json:"target,omitempty"`
}

func Move(playerID string, dir vec.Vec2) Command {
	return Command{Kind: KindMove, PlayerID: playerID, Dir: &dir}
}

func Shoot(playerID string, target vec.Vec2) Command {
	return Command{Kind: KindShoot, PlayerID: playerID, Target: &target}
}

func Pass(playerID string, target vec.Vec2) Command {
	return Command{Kind: KindPass, PlayerID: playerID, Target: &target}
}

func LightHit(playerID string) Command  { return Command{Kind: KindLightHit, PlayerID: playerID} }
func HeavyHit(playerID string) Command  { return Command{Kind: KindHeavyHit, PlayerID: playerID} }
func RaceSkill(playerID string) Command { return Command{Kind: KindRaceSkill, PlayerID: playerID} }

func CaptainCommand(playerID string) Command {
	return Command{Kind: KindCaptainCommand, PlayerID: playerID}
}

// Known reports whether k is one of the closed set of command kinds.
func (k Kind) Known() bool {
	switch k {
	case KindMove, KindShoot, KindPass, KindLightHit, KindHeavyHit, KindRaceSkill, KindCaptainCommand:
		return true
	}
	return false
}

// Validate checks the shape of a decoded command. Player ids are not
// checked against any roster.
func (c Command) Validate() error {
	if !c.Kind.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
	}
	if c.PlayerID == "" {
		return ErrMissingPlayer
	}
	switch c.Kind {
	case KindMove:
		if c.Dir == nil {
			return fmt.Errorf("%w: %s", ErrMissingVector, c.Kind)
		}
	case KindShoot, KindPass:
		if c.Target == nil {
			return fmt.Errorf("%w: %s", ErrMissingVector, c.Kind)
		}
	}
	return nil
}

// Decode parses and validates a JSON-encoded command.
func Decode(data []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(data, &c); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Command{}, err
	}
	return c, nil
}
