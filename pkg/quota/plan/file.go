package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// planFile is the on-disk shape of a plan table.
//
// Example:
//
//	plans:
//	  PLUS:
//	    daily_minutes: 10
//	    max_request_seconds: 60
//	    requests_per_hour: 20
//	  PRO:
//	    daily_minutes: 15
//	    max_request_seconds: 120
//	    requests_per_hour: 30
//	    input_share: 0.25
//	    output_share: 0.75
type planFile struct {
	Plans map[Tier]Policy `yaml:"plans"`
}

// LoadFile reads and validates a YAML plan table.
func LoadFile(path string) (map[Tier]Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan table %q: %w", path, err)
	}

	var file planFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse plan table %q: %w", path, err)
	}
	if len(file.Plans) == 0 {
		return nil, fmt.Errorf("plan table %q defines no plans", path)
	}

	if err := ValidateTable(file.Plans); err != nil {
		return nil, fmt.Errorf("plan table %q invalid: %w", path, err)
	}

	return file.Plans, nil
}
