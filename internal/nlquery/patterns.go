package nlquery

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var patternsYAML []byte

// Pattern describes one supported question shape with example phrasings.
// The catalog is hand-authored, not derived from the model.
type Pattern struct {
	Intent      Intent   `json:"intent" yaml:"intent"`
	Description string   `json:"description" yaml:"description"`
	Examples    []string `json:"examples" yaml:"examples"`
}

var patterns = mustLoadPatterns()

func mustLoadPatterns() []Pattern {
	var doc struct {
		Patterns []Pattern `yaml:"patterns"`
	}
	if err := yaml.Unmarshal(patternsYAML, &doc); err != nil {
		panic("nlquery: embedded pattern catalog is invalid: " + err.Error())
	}
	return doc.Patterns
}

// SupportedPatterns lists the recognized question shapes for
// discoverability.
func SupportedPatterns() []Pattern {
	out := make([]Pattern, len(patterns))
	copy(out, patterns)
	return out
}
