package targets

import "strings"

// String backed enums so names match the keys consumers already use.

type Tier string
type SettingGroup string
type SettingKey string

const (
	TierEarly   Tier = "EARLY"
	TierMid     Tier = "MID"
	TierLate    Tier = "LATE"
	TierEndgame Tier = "ENDGAME"
)

var AllTiers = []Tier{TierEarly, TierMid, TierLate, TierEndgame}

const (
	GroupThreadDistribution SettingGroup = "THREAD_DISTRIBUTION"
	GroupTimingMultipliers  SettingGroup = "TIMING_MULTIPLIERS"
	GroupRAMThresholds      SettingGroup = "RAM_THRESHOLDS"
)

var AllSettingGroups = []SettingGroup{GroupThreadDistribution, GroupTimingMultipliers, GroupRAMThresholds}

const (
	KeyHackPercent   SettingKey = "HACK_PERCENT"
	KeyGrowPercent   SettingKey = "GROW_PERCENT"
	KeyWeakenPercent SettingKey = "WEAKEN_PERCENT"

	KeyConservative SettingKey = "CONSERVATIVE"
	KeyBalanced     SettingKey = "BALANCED"
	KeyAggressive   SettingKey = "AGGRESSIVE"

	KeyMinForBatch         SettingKey = "MIN_FOR_BATCH"
	KeyRecommendedForBatch SettingKey = "RECOMMENDED_FOR_BATCH"
	KeyIdealForBatch       SettingKey = "IDEAL_FOR_BATCH"
)

var AllSettingKeys = []SettingKey{
	KeyHackPercent, KeyGrowPercent, KeyWeakenPercent,
	KeyConservative, KeyBalanced, KeyAggressive,
	KeyMinForBatch, KeyRecommendedForBatch, KeyIdealForBatch,
}

var groupKeys = map[SettingGroup][]SettingKey{
	GroupThreadDistribution: {KeyHackPercent, KeyGrowPercent, KeyWeakenPercent},
	GroupTimingMultipliers:  {KeyConservative, KeyBalanced, KeyAggressive},
	GroupRAMThresholds:      {KeyMinForBatch, KeyRecommendedForBatch, KeyIdealForBatch},
}

func contains[T ~string](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func (t Tier) Validate() bool         { return contains(AllTiers, t) }
func (g SettingGroup) Validate() bool { return contains(AllSettingGroups, g) }
func (k SettingKey) Validate() bool   { return contains(AllSettingKeys, k) }

// List helpers
func ListTiers() []Tier                 { return append([]Tier{}, AllTiers...) }
func ListSettingGroups() []SettingGroup { return append([]SettingGroup{}, AllSettingGroups...) }
func ListSettingKeys() []SettingKey     { return append([]SettingKey{}, AllSettingKeys...) }

// KeysFor returns the keys of group in declaration order, or nil for an
// unknown group.
func KeysFor(g SettingGroup) []SettingKey {
	keys, ok := groupKeys[g]
	if !ok {
		return nil
	}
	return append([]SettingKey{}, keys...)
}

// InGroup reports whether k belongs to g.
func (k SettingKey) InGroup(g SettingGroup) bool { return contains(groupKeys[g], k) }

func normalize(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// ParseTier accepts loosely typed input ("  late") and returns the matching tier.
func ParseTier(s string) (Tier, error) {
	t := Tier(normalize(s))
	if !t.Validate() {
		return "", &UnknownTierError{Name: s}
	}
	return t, nil
}

// ParseGroup is the SettingGroup counterpart of ParseTier.
func ParseGroup(s string) (SettingGroup, error) {
	g := SettingGroup(normalize(s))
	if !g.Validate() {
		return "", &UnknownSettingError{Group: s}
	}
	return g, nil
}

// ParseKey normalizes s and checks it is a key of g.
func ParseKey(g SettingGroup, s string) (SettingKey, error) {
	k := SettingKey(normalize(s))
	if !k.InGroup(g) {
		return "", &UnknownSettingError{Group: string(g), Key: s}
	}
	return k, nil
}
