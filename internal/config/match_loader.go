package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/charleschow/arcade-hockey/internal/core/facade"
	"github.com/charleschow/arcade-hockey/internal/core/sim"
)

var (
	ErrUnknownPreset = errors.New("unknown match preset")
	ErrInvalidPreset = errors.New("invalid match preset")
)

type StuckLimits struct {
	EpsilonSpeed   float64 `yaml:"epsilon_speed"`
	ThresholdTicks int     `yaml:"threshold_ticks"`
	PopStrength    float64 `yaml:"pop_strength"`
}

type InjuryOdds struct {
	LoserChance  float64 `yaml:"loser_chance"`
	WinnerChance float64 `yaml:"winner_chance"`
}

type MatchPreset struct {
	PeriodMs   float64     `yaml:"period_ms"`
	OvertimeMs float64     `yaml:"overtime_ms"`
	Stuck      StuckLimits `yaml:"stuck"`
	Injury     *InjuryOdds `yaml:"injury"`
}

type MatchPresets struct {
	Presets map[string]MatchPreset `yaml:"presets"`
}

func LoadMatchPresets(path string) (MatchPresets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MatchPresets{}, fmt.Errorf("read match presets: %w", err)
	}
	return ParseMatchPresets(data)
}

func ParseMatchPresets(data []byte) (MatchPresets, error) {
	var mp MatchPresets
	if err := yaml.Unmarshal(data, &mp); err != nil {
		return MatchPresets{}, fmt.Errorf("parse match presets: %w", err)
	}
	for name, p := range mp.Presets {
		if err := p.Validate(); err != nil {
			return MatchPresets{}, fmt.Errorf("preset %q: %w", name, err)
		}
	}
	return mp, nil
}

// Preset looks up a named preset.
func (mp MatchPresets) Preset(name string) (MatchPreset, error) {
	p, ok := mp.Presets[name]
	if !ok {
		return MatchPreset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p, nil
}

// Names returns preset names in sorted order.
func (mp MatchPresets) Names() []string {
	names := make([]string, 0, len(mp.Presets))
	for n := range mp.Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate rejects presets the host should never run. The simulation core
// itself accepts any numbers.
func (p MatchPreset) Validate() error {
	switch {
	case p.PeriodMs <= 0:
		return fmt.Errorf("%w: period_ms must be positive", ErrInvalidPreset)
	case p.OvertimeMs < 0:
		return fmt.Errorf("%w: overtime_ms must not be negative", ErrInvalidPreset)
	case p.Stuck.ThresholdTicks <= 0:
		return fmt.Errorf("%w: stuck.threshold_ticks must be positive", ErrInvalidPreset)
	case p.Stuck.EpsilonSpeed < 0:
		return fmt.Errorf("%w: stuck.epsilon_speed must not be negative", ErrInvalidPreset)
	}
	if p.Injury != nil {
		for _, c := range []float64{p.Injury.LoserChance, p.Injury.WinnerChance} {
			if c < 0 || c > 1 {
				return fmt.Errorf("%w: injury chances must be within [0,1]", ErrInvalidPreset)
			}
		}
	}
	return nil
}

func (p MatchPreset) StartConfig(seed int64) facade.StartConfig {
	return facade.StartConfig{
		MatchConfig: sim.MatchConfig{
			ClockConfig: sim.ClockConfig{PeriodMs: p.PeriodMs, OvertimeMs: p.OvertimeMs},
			Stuck: sim.StuckPuckConfig{
				EpsilonSpeed:   p.Stuck.EpsilonSpeed,
				ThresholdTicks: p.Stuck.ThresholdTicks,
				PopStrength:    p.Stuck.PopStrength,
			},
		},
		Seed: seed,
	}
}

// InjuryConfig falls back to the default odds when the preset has none.
func (p MatchPreset) InjuryConfig() sim.InjuryConfig {
	if p.Injury == nil {
		return sim.DefaultInjuryConfig()
	}
	return sim.InjuryConfig{LoserChance: p.Injury.LoserChance, WinnerChance: p.Injury.WinnerChance}
}
