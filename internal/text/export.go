package text

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tylersense-ui/Bitburner-Scripts/internal/targets"
)

// Export writes the whole table to w as "yaml" or "json".
func Export(w io.Writer, format string) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tableNode()); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(targets.Table()); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// tableNode builds the YAML document by hand so tiers and keys keep their
// declaration order instead of the encoder's sorted map order.
func tableNode() *yaml.Node {
	snap := targets.Table()
	tiers := mapping()
	for _, t := range targets.AllTiers {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, h := range snap.Targets[t] {
			seq.Content = append(seq.Content, str(h))
		}
		tiers.Content = append(tiers.Content, str(string(t)), seq)
	}
	settings := mapping()
	for _, g := range targets.AllSettingGroups {
		group := mapping()
		for _, k := range targets.KeysFor(g) {
			group.Content = append(group.Content, str(string(k)), &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(snap.Settings[g][k])})
		}
		settings.Content = append(settings.Content, str(string(g)), group)
	}
	root := mapping()
	root.Content = append(root.Content, str("TARGETS"), tiers, str("RECOMMENDED_SETTINGS"), settings)
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
}

func mapping() *yaml.Node { return &yaml.Node{Kind: yaml.MappingNode} }

func str(v string) *yaml.Node { return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v} }
