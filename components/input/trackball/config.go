package trackball

import (
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// Config describes a trackball wired to five digital interrupts of a board.
type Config struct {
	Board string `json:"board"`

	// Interrupt names on the board. Each defaults to the source name ("up", "down", ...).
	Up    string `json:"up,omitempty"`
	Down  string `json:"down,omitempty"`
	Left  string `json:"left,omitempty"`
	Right string `json:"right,omitempty"`
	Click string `json:"click,omitempty"`

	// TrackSpeed is the acceleration shift per direction edge. Unset means DefaultShift, zero
	// means linear counting.
	TrackSpeed *int          `json:"track_speed,omitempty"`
	MaxDelta   int           `json:"max_delta,omitempty"`
	Debounce   time.Duration `json:"debounce,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, error) {
	if conf.Board == "" {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "board")
	}
	if conf.TrackSpeed != nil && (*conf.TrackSpeed < 0 || *conf.TrackSpeed > 15) {
		return nil, utils.NewConfigValidationError(path, errors.New("track_speed must be between 0 and 15"))
	}
	if conf.MaxDelta < 0 || conf.MaxDelta > 1<<30 {
		return nil, utils.NewConfigValidationError(path, errors.New("max_delta out of range"))
	}
	if conf.Debounce < 0 {
		return nil, utils.NewConfigValidationError(path, errors.New("debounce must not be negative"))
	}
	seen := map[string]Source{}
	for src, name := range conf.InterruptNames() {
		if other, dup := seen[name]; dup {
			return nil, utils.NewConfigValidationError(path,
				errors.Errorf("interrupt %q used for both %s and %s", name, other, src))
		}
		seen[name] = src
	}
	return []string{conf.Board}, nil
}

func (conf *Config) shift() uint {
	if conf.TrackSpeed == nil {
		return DefaultShift
	}
	return uint(*conf.TrackSpeed)
}

// InterruptNames maps each source to its board interrupt name.
func (conf *Config) InterruptNames() map[Source]string {
	names := map[Source]string{
		Up:    conf.Up,
		Down:  conf.Down,
		Left:  conf.Left,
		Right: conf.Right,
		Click: conf.Click,
	}
	for src, name := range names {
		if name == "" {
			names[src] = src.String()
		}
	}
	return names
}
