package targets

import "fmt"

// UnknownTierError is returned for a tier name outside EARLY|MID|LATE|ENDGAME.
type UnknownTierError struct {
	Name string
}

func (e *UnknownTierError) Error() string {
	return fmt.Sprintf("unknown tier %q", e.Name)
}

// UnknownSettingError is returned when the group is not recognized or the key
// is not part of the group.
type UnknownSettingError struct {
	Group string
	Key   string
}

func (e *UnknownSettingError) Error() string {
	if !SettingGroup(e.Group).Validate() {
		return fmt.Sprintf("unknown setting group %q", e.Group)
	}
	return fmt.Sprintf("unknown setting %q in group %q", e.Key, e.Group)
}
