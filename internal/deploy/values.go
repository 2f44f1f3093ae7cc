// Package deploy applies and removes a target's declarative cluster
// configuration through Helm, and performs in-place image bumps for
// patch releases.
package deploy

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Values represents chart values as a map.
type Values map[string]any

// Merge combines multiple Values maps with later maps taking precedence.
func Merge(valueMaps ...Values) Values {
	result := make(Values)
	for _, m := range valueMaps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}

// FromYAMLFile reads a values overlay file.
func FromYAMLFile(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values file %s: %w", path, err)
	}

	var values Values
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse values file %s: %w", path, err)
	}
	if values == nil {
		values = make(Values)
	}
	return values, nil
}
