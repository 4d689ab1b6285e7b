// Package config reads the device configuration: the hardware resources to build, the apps and
// their endpoints, and logger levels. Files are JSON5 with ${VAR} environment substitution so
// secrets can stay out of the file.
package config

import (
	"fmt"
	"time"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"go.viam.com/utils"

	"go.tdeck.dev/pda/apps/calendar"
	"go.tdeck.dev/pda/apps/notes"
	"go.tdeck.dev/pda/apps/weather"
	"go.tdeck.dev/pda/logging"
	"go.tdeck.dev/pda/resource"
)

// DefaultFrameInterval is the UI frame period.
const DefaultFrameInterval = 5 * time.Millisecond

// Config is the whole device configuration.
type Config struct {
	Components []resource.Config             `json:"components"`
	Device     Device                        `json:"device"`
	Apps       Apps                          `json:"apps"`
	Log        []logging.LoggerPatternConfig `json:"log,omitempty"`

	// ConfigFilePath is where the config was read from, if anywhere.
	ConfigFilePath string `json:"-"`
}

// Device names the input resources and sets the frame rate.
type Device struct {
	Trackball     string        `json:"trackball"`
	Keyboard      string        `json:"keyboard,omitempty"`
	FrameInterval time.Duration `json:"frame_interval,omitempty"`
}

// Frame returns the frame period.
func (d Device) Frame() time.Duration {
	if d.FrameInterval <= 0 {
		return DefaultFrameInterval
	}
	return d.FrameInterval
}

// Apps holds per app settings. An app without settings is not available on the menu.
type Apps struct {
	Notes    *notes.Config    `json:"notes,omitempty"`
	Calendar *calendar.Config `json:"calendar,omitempty"`
	Weather  *weather.Config  `json:"weather,omitempty"`
}

// Validate ensures all parts of the config are valid and converts component attributes.
func (c *Config) Validate() error {
	names := map[string]struct{}{}
	for idx := range c.Components {
		conf := &c.Components[idx]
		if err := conf.Validate(fmt.Sprintf("components.%d", idx)); err != nil {
			return err
		}
		if _, ok := names[conf.Name]; ok {
			return utils.NewConfigValidationError(fmt.Sprintf("components.%d", idx),
				errors.Errorf("duplicate component name %q", conf.Name))
		}
		names[conf.Name] = struct{}{}
	}

	if c.Device.Trackball == "" {
		return utils.NewConfigValidationFieldRequiredError("device", "trackball")
	}
	for field, name := range map[string]string{"trackball": c.Device.Trackball, "keyboard": c.Device.Keyboard} {
		if _, ok := names[name]; name != "" && !ok {
			return utils.NewConfigValidationError("device."+field, errors.Errorf("no component named %q", name))
		}
	}
	if c.Device.FrameInterval < 0 {
		return utils.NewConfigValidationError("device", errors.New("frame_interval cannot be negative"))
	}

	if c.Apps.Notes != nil {
		if err := c.Apps.Notes.Validate("apps.notes"); err != nil {
			return err
		}
	}
	if c.Apps.Calendar != nil {
		if err := c.Apps.Calendar.Validate("apps.calendar"); err != nil {
			return err
		}
	}
	if c.Apps.Weather != nil {
		if err := c.Apps.Weather.Validate("apps.weather"); err != nil {
			return err
		}
	}

	for idx, lpc := range c.Log {
		if err := lpc.Validate(fmt.Sprintf("log.%d", idx)); err != nil {
			return err
		}
	}
	return nil
}

// Read reads a config from the given file, substituting environment variables, and validates
// it.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %q", filePath)
	}
	cfg, err := FromBytes(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing config %q", filePath)
	}
	cfg.ConfigFilePath = filePath
	logger.Debugw("config read", "path", filePath, "components", len(cfg.Components))
	return cfg, nil
}

// FromBytes parses and validates a config.
func FromBytes(data []byte) (*Config, error) {
	var raw map[string]interface{}
	if err := json5.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyLogConfig applies the pattern based logger levels of cfg.
func ApplyLogConfig(cfg *Config, logger logging.Logger) error {
	return logging.GlobalRegistry().UpdateConfig(cfg.Log, logger)
}
