package logging

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// LoggerPatternConfig sets the level of every logger whose dotted name matches Pattern. A "*"
// section matches any run of characters, dots included: "pda.*" matches "pda.apps.notes".
type LoggerPatternConfig struct {
	Pattern string `json:"pattern"`
	Level   string `json:"level"`
}

// A pattern is one or more dot separated sections; a section is "*" or an alphanumeric word that
// may contain inner "-" or "_".
var loggerPatternRegexp = regexp.MustCompile(
	`^(\*|[a-zA-Z0-9]+([_-]*[a-zA-Z0-9]+)*)(\.(\*|[a-zA-Z0-9]+([_-]*[a-zA-Z0-9]+)*))*$`)

func validatePattern(pattern string) bool {
	return loggerPatternRegexp.MatchString(pattern)
}

func buildRegexFromPattern(pattern string) string {
	return "^" + strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, `.*`) + "$"
}

// Validate ensures the pattern is well formed and the level is known.
func (lpc LoggerPatternConfig) Validate(path string) error {
	if !validatePattern(lpc.Pattern) {
		return goutils.NewConfigValidationError(path, errors.Errorf("invalid logger pattern %q", lpc.Pattern))
	}
	if _, err := LevelFromString(lpc.Level); err != nil {
		return goutils.NewConfigValidationError(path, err)
	}
	return nil
}
