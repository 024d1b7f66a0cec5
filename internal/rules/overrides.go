package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Amoeba115/newschedule/internal/models"
)

// LoadOverrides reads the overrides file. A missing file means no
// overrides; a present but unreadable document is a hard error so a typo
// does not silently discard every pin.
func LoadOverrides(path string) ([]models.Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading overrides file: %w", err)
	}
	var overrides []models.Override
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, &ConfigError{Reason: "overrides file is not a YAML list", Err: err}
	}
	return overrides, nil
}

// SaveOverrides writes the current overrides back to disk so they survive
// restarts, mirroring how the schedule generation flow persists them.
func SaveOverrides(path string, overrides []models.Override) error {
	data, err := yaml.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("encoding overrides: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing overrides file: %w", err)
	}
	return nil
}
