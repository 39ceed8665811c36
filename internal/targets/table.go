// Package targets holds the built-in target tiers and recommended batch
// settings. The table is filled at init and never written afterwards, so it
// can be read from any goroutine; every accessor hands out a copy.
package targets

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
)

// ThreadDistribution splits batch threads between hack, grow and weaken.
type ThreadDistribution struct {
	Hack   float64 `json:"HACK_PERCENT" yaml:"HACK_PERCENT"`
	Grow   float64 `json:"GROW_PERCENT" yaml:"GROW_PERCENT"`
	Weaken float64 `json:"WEAKEN_PERCENT" yaml:"WEAKEN_PERCENT"`
}

// TimingMultipliers are safety buffers applied to computed batch timings.
type TimingMultipliers struct {
	Conservative float64 `json:"CONSERVATIVE" yaml:"CONSERVATIVE"`
	Balanced     float64 `json:"BALANCED" yaml:"BALANCED"`
	Aggressive   float64 `json:"AGGRESSIVE" yaml:"AGGRESSIVE"`
}

// RAMThresholds are in GB.
type RAMThresholds struct {
	MinForBatch         float64 `json:"MIN_FOR_BATCH" yaml:"MIN_FOR_BATCH"`
	RecommendedForBatch float64 `json:"RECOMMENDED_FOR_BATCH" yaml:"RECOMMENDED_FOR_BATCH"`
	IdealForBatch       float64 `json:"IDEAL_FOR_BATCH" yaml:"IDEAL_FOR_BATCH"`
}

type Settings struct {
	Threads ThreadDistribution `json:"THREAD_DISTRIBUTION" yaml:"THREAD_DISTRIBUTION"`
	Timing  TimingMultipliers  `json:"TIMING_MULTIPLIERS" yaml:"TIMING_MULTIPLIERS"`
	RAM     RAMThresholds      `json:"RAM_THRESHOLDS" yaml:"RAM_THRESHOLDS"`
}

var tiers = map[Tier][]string{
	// low security, good money
	TierEarly: {
		"n00dles",
		"foodnstuff",
		"sigma-cosmetics",
		"joesguns",
		"hong-fang-tea",
		"harakiri-sushi",
	},
	// moderate security
	TierMid: {
		"joesguns",
		"hong-fang-tea",
		"harakiri-sushi",
		"iron-gym",
		"zer0",
		"max-hardware",
		"CSEC",
	},
	// high security, excellent money
	TierLate: {
		"joesguns",
		"hong-fang-tea",
		"harakiri-sushi",
		"iron-gym",
		"zer0",
		"max-hardware",
		"CSEC",
		"neo-net",
		"silver-helix",
		"omega-net",
		"the-hub",
		"comptek",
		"netlink",
		"crush-fitness",
		"johnson-ortho",
		"avmnite-02h",
		"I.I.I.I",
		"run4theh111z",
	},
	TierEndgame: {
		"omega-net",
		"the-hub",
		"comptek",
		"netlink",
		"crush-fitness",
		"johnson-ortho",
		"avmnite-02h",
		"I.I.I.I",
		"run4theh111z",
	},
}

var recommended = Settings{
	Threads: ThreadDistribution{Hack: 0.25, Grow: 0.45, Weaken: 0.30},
	Timing:  TimingMultipliers{Conservative: 1.0, Balanced: 1.25, Aggressive: 1.5},
	RAM:     RAMThresholds{MinForBatch: 1.0, RecommendedForBatch: 4.0, IdealForBatch: 8.0},
}

// Targets returns the ordered host list of t.
func Targets(t Tier) ([]string, error) {
	hosts, ok := tiers[t]
	if !ok {
		return nil, &UnknownTierError{Name: string(t)}
	}
	return append([]string(nil), hosts...), nil
}

// GetTier looks a tier up by its exact name.
func GetTier(name string) ([]string, error) { return Targets(Tier(name)) }

// Recommended returns a copy of the recommended settings.
func Recommended() Settings { return recommended }

// Value returns the setting named by group and key; ok is false when key is
// not part of group.
func (s Settings) Value(group SettingGroup, key SettingKey) (v float64, ok bool) {
	if !key.InGroup(group) {
		return 0, false
	}
	switch key {
	case KeyHackPercent:
		return s.Threads.Hack, true
	case KeyGrowPercent:
		return s.Threads.Grow, true
	case KeyWeakenPercent:
		return s.Threads.Weaken, true
	case KeyConservative:
		return s.Timing.Conservative, true
	case KeyBalanced:
		return s.Timing.Balanced, true
	case KeyAggressive:
		return s.Timing.Aggressive, true
	case KeyMinForBatch:
		return s.RAM.MinForBatch, true
	case KeyRecommendedForBatch:
		return s.RAM.RecommendedForBatch, true
	case KeyIdealForBatch:
		return s.RAM.IdealForBatch, true
	}
	return 0, false
}

// GetSetting looks a value up by exact group and key names.
func GetSetting(group, key string) (float64, error) {
	g := SettingGroup(group)
	if !g.Validate() {
		return 0, &UnknownSettingError{Group: group, Key: key}
	}
	v, ok := recommended.Value(g, SettingKey(key))
	if !ok {
		return 0, &UnknownSettingError{Group: group, Key: key}
	}
	return v, nil
}

// Snapshot is a detached copy of the whole table in its nested-mapping shape.
type Snapshot struct {
	Targets  map[Tier][]string                       `json:"TARGETS" yaml:"TARGETS"`
	Settings map[SettingGroup]map[SettingKey]float64 `json:"RECOMMENDED_SETTINGS" yaml:"RECOMMENDED_SETTINGS"`
}

// Table copies the table; callers may modify the result freely.
func Table() Snapshot {
	snap := Snapshot{
		Targets:  make(map[Tier][]string, len(tiers)),
		Settings: make(map[SettingGroup]map[SettingKey]float64, len(AllSettingGroups)),
	}
	for _, t := range AllTiers {
		snap.Targets[t] = append([]string(nil), tiers[t]...)
	}
	for _, g := range AllSettingGroups {
		vals := make(map[SettingKey]float64, len(groupKeys[g]))
		for _, k := range groupKeys[g] {
			vals[k], _ = recommended.Value(g, k)
		}
		snap.Settings[g] = vals
	}
	return snap
}

const sumTolerance = 1e-9

// Check verifies the shape of the built-in table.
func Check() error { return check(tiers, recommended) }

func check(tt map[Tier][]string, s Settings) error {
	var result *multierror.Error
	for _, t := range AllTiers {
		hosts, ok := tt[t]
		if !ok || len(hosts) == 0 {
			result = multierror.Append(result, fmt.Errorf("tier %s is empty", t))
			continue
		}
		for i, h := range hosts {
			if h == "" {
				result = multierror.Append(result, fmt.Errorf("tier %s: empty identifier at %d", t, i))
			}
		}
	}
	td := s.Threads
	if sum := td.Hack + td.Grow + td.Weaken; math.Abs(sum-1) > sumTolerance {
		result = multierror.Append(result, fmt.Errorf("thread distribution sums to %g, want 1", sum))
	}
	tm := s.Timing
	if tm.Conservative < 1 || tm.Balanced < 1 || tm.Aggressive < 1 {
		result = multierror.Append(result, fmt.Errorf("timing multipliers must be >= 1: %+v", tm))
	}
	if !(tm.Conservative <= tm.Balanced && tm.Balanced <= tm.Aggressive) {
		result = multierror.Append(result, fmt.Errorf("timing multipliers out of order: %+v", tm))
	}
	r := s.RAM
	if !(r.MinForBatch <= r.RecommendedForBatch && r.RecommendedForBatch <= r.IdealForBatch) {
		result = multierror.Append(result, fmt.Errorf("ram thresholds out of order: %+v", r))
	}
	return result.ErrorOrNil()
}
