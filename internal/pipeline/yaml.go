package pipeline

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a pipeline definition from a YAML file on disk. This is the
// path operators use to check a pipeline definition into version control
// and point a local run at it, as an alternative to submitting the
// definition as a JSON body on every start request.
func LoadFile(path string) (Pipeline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, err
	}
	var p Pipeline
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Pipeline{}, err
	}
	return p, nil
}
