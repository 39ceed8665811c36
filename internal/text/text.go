package text

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tylersense-ui/Bitburner-Scripts/internal/targets"
)

// TierMarkdown renders one tier as a numbered markdown list.
func TierMarkdown(t targets.Tier) (string, error) {
	hosts, err := targets.Targets(t)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("## %s (%d)\n\n", t, len(hosts)))
	for i, h := range hosts {
		b.WriteString(fmt.Sprintf("%d. `%s`\n", i+1, h))
	}
	return b.String(), nil
}

// SettingsMarkdown renders the recommended settings as one table per group.
func SettingsMarkdown() string {
	s := targets.Recommended()
	var b strings.Builder
	for i, g := range targets.AllSettingGroups {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("## %s\n\n| Key | Value |\n| --- | ---: |\n", g))
		for _, k := range targets.KeysFor(g) {
			v, _ := s.Value(g, k)
			b.WriteString(fmt.Sprintf("| %s | %s |\n", k, formatValue(g, v)))
		}
	}
	return b.String()
}

// Report is the full table as a single markdown document.
func Report() string {
	var b strings.Builder
	b.WriteString("# Targets\n\n")
	for _, t := range targets.AllTiers {
		md, _ := TierMarkdown(t)
		b.WriteString(md)
		b.WriteString("\n")
	}
	b.WriteString("# Recommended settings\n\n")
	b.WriteString(SettingsMarkdown())
	return b.String()
}

func formatValue(g targets.SettingGroup, v float64) string {
	switch g {
	case targets.GroupThreadDistribution:
		return strconv.FormatFloat(math.Round(v*10000)/100, 'f', -1, 64) + "%"
	case targets.GroupTimingMultipliers:
		return "x" + formatFloat(v)
	case targets.GroupRAMThresholds:
		return formatFloat(v) + " GB"
	}
	return formatFloat(v)
}

// formatFloat keeps a decimal point so integral values still read as floats.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
