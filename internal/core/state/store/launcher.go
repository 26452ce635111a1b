package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/charleschow/arcade-hockey/internal/config"
	"github.com/charleschow/arcade-hockey/internal/core/state/match"
	"github.com/charleschow/arcade-hockey/internal/telemetry"
)

var ErrTooManyMatches = errors.New("too many active matches")

// Launcher creates matches from presets, registers them, and starts their
// frame loops.
type Launcher struct {
	Sessions      *SessionStore
	Presets       config.MatchPresets
	DefaultPreset string
	FrameHz       int
	SnapshotEvery int
	MaxMatches    int
	Observers     []match.Observer
}

// Launch starts a match from the named preset (or the default when name is
// empty). A nil seed draws one from a fresh UUID.
func (l *Launcher) Launch(presetName string, seed *int64) (*match.MatchContext, error) {
	if presetName == "" {
		presetName = l.DefaultPreset
	}
	preset, err := l.Presets.Preset(presetName)
	if err != nil {
		return nil, err
	}
	if l.MaxMatches > 0 && l.Sessions.Count() >= l.MaxMatches {
		return nil, fmt.Errorf("%w (max %d)", ErrTooManyMatches, l.MaxMatches)
	}

	id := uuid.New()
	s := randomSeed(id)
	if seed != nil {
		s = *seed
	}

	mc := match.New(id.String(), match.Settings{
		Preset:        presetName,
		Start:         preset.StartConfig(s),
		Injury:        preset.InjuryConfig(),
		SnapshotEvery: l.SnapshotEvery,
	}, l.Observers...)
	if !l.Sessions.PutIfUnder(mc, l.MaxMatches) {
		mc.Close()
		return nil, fmt.Errorf("%w (max %d)", ErrTooManyMatches, l.MaxMatches)
	}

	if err := mc.Start(l.FrameHz); err != nil {
		l.Sessions.Delete(mc.ID)
		return nil, fmt.Errorf("start match %s: %w", mc.ID, err)
	}

	telemetry.Match(mc.ID).Info("match launched", "preset", presetName, "seed", s)
	return mc, nil
}

// randomSeed takes the low 32 bits of the id; the generator ignores the rest.
func randomSeed(id uuid.UUID) int64 {
	return int64(binary.BigEndian.Uint32(id[12:16]))
}
