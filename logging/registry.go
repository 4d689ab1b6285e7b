package logging

import (
	"regexp"
	"sync"
)

var globalRegistry = newRegistry()

// levelRule is a compiled LoggerPatternConfig.
type levelRule struct {
	matcher *regexp.Regexp
	level   Level
}

// Registry tracks every named logger so that level configuration can be applied by pattern.
type Registry struct {
	mu      sync.RWMutex
	loggers map[string]Logger
	config  []LoggerPatternConfig
	rules   []levelRule
}

func newRegistry() *Registry {
	return &Registry{loggers: map[string]Logger{}}
}

// GlobalRegistry returns the registry every named logger built by this package is recorded in.
func GlobalRegistry() *Registry {
	return globalRegistry
}

// register records logger under name and applies the configured level if a rule matches.
func (r *Registry) register(name string, logger Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loggers[name] = logger
	if level, ok := matchLevel(r.rules, name); ok {
		logger.SetLevel(level)
	}
}

func (r *Registry) deregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.loggers[name]
	delete(r.loggers, name)
	return ok
}

func (r *Registry) lookup(name string) (Logger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	logger, ok := r.loggers[name]
	return logger, ok
}

// Config returns the pattern configuration last passed to UpdateConfig.
func (r *Registry) Config() []LoggerPatternConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config
}

// matchLevel returns the level of the last rule matching name.
func matchLevel(rules []levelRule, name string) (Level, bool) {
	var (
		level Level
		found bool
	)
	for _, rule := range rules {
		if rule.matcher.MatchString(name) {
			level, found = rule.level, true
		}
	}
	return level, found
}

// UpdateConfig replaces the pattern configuration and re-levels every registered logger. Later
// patterns win over earlier ones. Loggers that match no pattern are reset to INFO. Malformed
// patterns are skipped with a warning; an unknown level is an error and changes nothing.
func (r *Registry) UpdateConfig(logConfig []LoggerPatternConfig, errorLogger Logger) error {
	rules := make([]levelRule, 0, len(logConfig))
	for _, lpc := range logConfig {
		if !validatePattern(lpc.Pattern) {
			errorLogger.Warnw("failed to validate a pattern", "pattern", lpc.Pattern)
			continue
		}
		level, err := LevelFromString(lpc.Level)
		if err != nil {
			return err
		}
		rules = append(rules, levelRule{
			matcher: regexp.MustCompile(buildRegexFromPattern(lpc.Pattern)),
			level:   level,
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.config = logConfig
	r.rules = rules
	for name, logger := range r.loggers {
		level, ok := matchLevel(rules, name)
		if !ok {
			level = INFO
		}
		logger.SetLevel(level)
	}
	return nil
}
