package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Experiment describes one entry of an experiment sweep file.
type Experiment struct {
	Name    string   `yaml:"name"`
	Sources []string `yaml:"sources"`
	K       int      `yaml:"k"`
}

// LoadExperiments reads an ordered experiment sweep from a YAML file.
func LoadExperiments(path string) ([]Experiment, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read experiments %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var sweep struct {
		Experiments []Experiment `yaml:"experiments"`
	}
	if err := yaml.Unmarshal(data, &sweep); err != nil {
		return nil, fmt.Errorf("failed to parse experiments: %w", err)
	}
	if len(sweep.Experiments) == 0 {
		return nil, fmt.Errorf("experiments file %s defines no experiments", path)
	}

	for i, exp := range sweep.Experiments {
		if exp.Name == "" {
			return nil, fmt.Errorf("experiments[%d]: name is required", i)
		}
		if len(exp.Sources) == 0 {
			return nil, fmt.Errorf("experiment %q: sources is required", exp.Name)
		}
		if exp.K <= 0 {
			sweep.Experiments[i].K = 3
		}
	}

	return sweep.Experiments, nil
}
