// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stimuli

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/priors/models"
)

//go:embed default_trials.yaml
var defaultTrials []byte

// Default returns the built-in fallback trial set
func Default() models.TrialSet {
	ts, err := Parse(defaultTrials)
	if err != nil {
		panic(fmt.Sprintf("embedded trial set is invalid: %v", err))
	}
	return ts
}

// Load reads a trial set from a YAML file. An empty path returns Default().
func Load(path string) (models.TrialSet, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading trial set file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML trial set
func Parse(data []byte) (models.TrialSet, error) {
	var ts models.TrialSet
	if err := yaml.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("error parsing trial set YAML: %w", err)
	}
	if len(ts) == 0 {
		return nil, fmt.Errorf("trial set is empty")
	}
	if _, err := ts.Ordered(); err != nil {
		return nil, err
	}
	return ts, nil
}
