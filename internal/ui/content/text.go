package content

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Text is a localized string keyed by locale. In YAML it is either a mapping
// of locale to text or a plain scalar used for every locale.
type Text map[string]string

// UnmarshalYAML accepts a scalar or a locale mapping. Any other node shape
// is treated as absent rather than failing the whole document.
func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*t = nil
			return nil
		}
		*t = Text{"": node.Value}
	case yaml.MappingNode:
		out := make(Text, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if val.Kind != yaml.ScalarNode {
				continue
			}
			out[strings.ToLower(strings.TrimSpace(key.Value))] = val.Value
		}
		*t = out
	default:
		*t = nil
	}
	return nil
}

// In returns the text for locale, falling back to base and then to the
// locale-neutral scalar form.
func (t Text) In(locale, base string) string {
	if len(t) == 0 {
		return ""
	}
	if v, ok := t[strings.ToLower(locale)]; ok {
		return v
	}
	if v, ok := t[strings.ToLower(base)]; ok {
		return v
	}
	return t[""]
}

func localizeAll(list []Text, locale, base string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, item.In(locale, base))
	}
	return out
}
