package board

import (
	"fmt"

	"go.viam.com/utils"
)

// DigitalInterruptConfig describes the configuration of digital interrupt for a board.
type DigitalInterruptConfig struct {
	Name string `json:"name"`
	Pin  string `json:"pin"`
}

// Validate ensures all parts of the config are valid.
func (config *DigitalInterruptConfig) Validate(path string) error {
	if config.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if config.Pin == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "pin")
	}
	return nil
}

// ValidateDigitalInterrupts validates every entry and rejects duplicate names.
func ValidateDigitalInterrupts(path string, confs []DigitalInterruptConfig) error {
	seen := map[string]struct{}{}
	for idx, conf := range confs {
		entryPath := fmt.Sprintf("%s.%s.%d", path, "digital_interrupts", idx)
		if err := conf.Validate(entryPath); err != nil {
			return err
		}
		if _, dup := seen[conf.Name]; dup {
			return utils.NewConfigValidationError(entryPath, fmt.Errorf("duplicate interrupt name %q", conf.Name))
		}
		seen[conf.Name] = struct{}{}
	}
	return nil
}
