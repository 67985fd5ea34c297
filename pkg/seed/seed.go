// Package seed carries the built-in dataset every fresh engine starts from.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mk-2871/Proof-of-Talent/pkg/application"
	"github.com/mk-2871/Proof-of-Talent/pkg/governance"
	"github.com/mk-2871/Proof-of-Talent/pkg/job"
	"github.com/mk-2871/Proof-of-Talent/pkg/skill"
)

//go:embed mock.yaml
var mockYAML []byte

// Dataset is the initial content of every entity store. The document's
// members section only holds YAML anchors for the snapshots below.
type Dataset struct {
	Jobs         []job.Job                 `yaml:"jobs"`
	Applications []application.Application `yaml:"applications"`
	Skills       []skill.Skill             `yaml:"skills"`
	Endorsements []skill.Endorsement       `yaml:"endorsements"`
	Proposals    []governance.Proposal     `yaml:"proposals"`
}

// Load parses the embedded dataset. Each call returns fresh slices.
func Load() (Dataset, error) {
	return Parse(mockYAML)
}

// Parse decodes a dataset document.
func Parse(b []byte) (Dataset, error) {
	var d Dataset
	if err := yaml.Unmarshal(b, &d); err != nil {
		return Dataset{}, fmt.Errorf("parse seed dataset: %w", err)
	}
	return d, nil
}
