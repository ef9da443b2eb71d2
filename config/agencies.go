package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Agency describes one broker to process: display name, the site-type
// string the scraper registry resolves, and the source URL (required only
// the first time an unknown broker is encountered).
type Agency struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	URL  string `yaml:"url"`
}

type agencyFile struct {
	Agencies []Agency `yaml:"agencies"`
}

// LoadAgencies reads the broker roster from a YAML file.
func LoadAgencies(path string) ([]Agency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("agencies: read %q: %w", path, err)
	}

	var file agencyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("agencies: parse %q: %w", path, err)
	}

	for i, a := range file.Agencies {
		if a.Name == "" || a.Type == "" {
			return nil, fmt.Errorf("agencies: entry %d is missing name or type", i)
		}
	}
	return file.Agencies, nil
}
