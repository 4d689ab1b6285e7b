package logging

import (
	"strings"
	"testing"

	"go.viam.com/test"
)

func verifySetLevels(registry *Registry, expectedMatches map[string]string) bool {
	for name, level := range expectedMatches {
		logger, ok := registry.lookup(name)
		if !ok || !strings.EqualFold(level, logger.GetLevel().String()) {
			return false
		}
	}
	return true
}

func createTestRegistry(loggerNames []string) *Registry {
	manager := newRegistry()
	for _, name := range loggerNames {
		manager.register(name, NewBlankLogger(name))
	}
	return manager
}

func TestValidatePattern(t *testing.T) {
	t.Parallel()

	type testCfg struct {
		pattern string
		isValid bool
	}

	tests := []testCfg{
		// Valid patterns
		{"device.apps", true},
		{"device.apps.*", true},
		{"device.*.apps", true},
		{"device.*.*", true},
		{"*.apps", true},
		{"*", true},

		// Invalid patterns
		{"device..apps", false},
		{"device.apps.", false},
		{".device.apps", false},
		{"device.apps.**", false},
		{"device.**.apps", false},

		// Invalid patterns with special characters
		{"_.device.apps", false},
		{"-.device", false},
		{"device.-", false},
		{"device.-.apps", false},
		{"device._.apps", false},

		// Device style names
		{"pda.trackball", true},
		{"pda.apps.weather", true},
		{"pda.*.fetch", true},
		{"pda.apps.weather ", false},
		{"pda:apps", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.pattern, func(t *testing.T) {
			t.Parallel()
			test.That(t, validatePattern(tc.pattern), test.ShouldEqual, tc.isValid)
		})
	}
}

func TestUpdateLoggerRegistry(t *testing.T) {
	type testCfg struct {
		loggerConfig    []LoggerPatternConfig
		loggerNames     []string
		expectedMatches map[string]string
	}

	tests := []testCfg{
		{
			loggerConfig: []LoggerPatternConfig{
				{
					Pattern: "pda.apps",
					Level:   "WARN",
				},
			},
			loggerNames: []string{
				"pda.apps",
				"pda.apps.fetch",
				"pda.keyboard",
			},
			expectedMatches: map[string]string{
				"pda.apps": "WARN",
			},
		},
		{
			loggerConfig: []LoggerPatternConfig{
				{
					Pattern: "pda.*",
					Level:   "DEBUG",
				},
			},
			loggerNames: []string{
				"pda.apps",
				"pda.input.fetch",
				"pda.apps.notes.fetch",
			},
			expectedMatches: map[string]string{
				"pda.apps":                    "DEBUG",
				"pda.input.fetch":             "DEBUG",
				"pda.apps.notes.fetch": "DEBUG",
			},
		},
		{
			loggerConfig: []LoggerPatternConfig{
				{
					Pattern: "pda.*.fetch",
					Level:   "ERROR",
				},
			},
			loggerNames: []string{
				"pda.apps.fetch",
				"pda.input.fetch",
				"pda.apps.input",
			},
			expectedMatches: map[string]string{
				"pda.apps.fetch": "ERROR",
				"pda.input.fetch":     "ERROR",
			},
		},
		{
			loggerConfig: []LoggerPatternConfig{
				{
					Pattern: "pda.*",
					Level:   "DEBUG",
				},
				{
					Pattern: "pda.apps",
					Level:   "WARN",
				},
			},
			loggerNames: []string{
				"pda.apps",
			},
			expectedMatches: map[string]string{
				"pda.apps": "WARN",
			},
		},
		{
			loggerConfig: []LoggerPatternConfig{
				{
					Pattern: "pda.*.fetch",
					Level:   "WARN",
				},
			},
			loggerNames: []string{
				"pda.apps.fetch",
				"pda.apps.weather.fetch",
			},
			expectedMatches: map[string]string{
				"pda.apps.fetch":                 "WARN",
				"pda.apps.weather.fetch": "WARN",
			},
		},
		{
			loggerConfig: []LoggerPatternConfig{
				{
					Pattern: "_.*.fetch",
					Level:   "DEBUG",
				},
			},
			loggerNames: []string{
				"pda.apps",
			},
			expectedMatches: map[string]string{},
		},
		{
			loggerConfig: []LoggerPatternConfig{
				{
					Pattern: "a.b",
					Level:   "DEBUG",
				},
			},
			loggerNames: []string{
				"a.b.c",
			},
			expectedMatches: map[string]string{
				"a.b.c": "INFO",
			},
		},
	}

	for _, tc := range tests {
		testRegistry := createTestRegistry(tc.loggerNames)

		err := testRegistry.UpdateConfig(tc.loggerConfig, NewBlankLogger("error-logger"))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, verifySetLevels(testRegistry, tc.expectedMatches), test.ShouldBeTrue)
		test.That(t, testRegistry.Config(), test.ShouldResemble, tc.loggerConfig)
	}
}

func TestSubloggerPicksUpConfig(t *testing.T) {
	logger, _ := newBufferLogger("cfgtest", INFO)
	err := globalRegistry.UpdateConfig([]LoggerPatternConfig{{Pattern: "cfgtest.*", Level: "debug"}}, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, globalRegistry.UpdateConfig(nil, logger), test.ShouldBeNil)
	}()

	sub := logger.Sublogger("keyboard")
	defer globalRegistry.deregister("cfgtest.keyboard")
	test.That(t, sub.GetLevel(), test.ShouldEqual, DEBUG)
	test.That(t, logger.GetLevel(), test.ShouldEqual, INFO)
}

func TestUpdateConfigRejectsUnknownLevel(t *testing.T) {
	registry := createTestRegistry([]string{"pda.apps"})
	before := []LoggerPatternConfig{{Pattern: "pda.*", Level: "warn"}}
	test.That(t, registry.UpdateConfig(before, NewBlankLogger("error-logger")), test.ShouldBeNil)

	err := registry.UpdateConfig([]LoggerPatternConfig{{Pattern: "pda.*", Level: "loud"}}, NewBlankLogger("error-logger"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, registry.Config(), test.ShouldResemble, before)
	test.That(t, verifySetLevels(registry, map[string]string{"pda.apps": "WARN"}), test.ShouldBeTrue)
}

func TestRegisterAppliesRules(t *testing.T) {
	registry := newRegistry()
	test.That(t, registry.UpdateConfig([]LoggerPatternConfig{{Pattern: "pda.apps.*", Level: "error"}}, NewBlankLogger("e")), test.ShouldBeNil)

	registry.register("pda.apps.notes", NewBlankLogger("pda.apps.notes"))
	registry.register("pda.keyboard", NewBlankLogger("pda.keyboard"))
	test.That(t, verifySetLevels(registry, map[string]string{
		"pda.apps.notes": "ERROR",
		"pda.keyboard":   "DEBUG",
	}), test.ShouldBeTrue)
	test.That(t, registry.deregister("pda.keyboard"), test.ShouldBeTrue)
	test.That(t, registry.deregister("pda.keyboard"), test.ShouldBeFalse)
}

func TestLoggerPatternConfigValidate(t *testing.T) {
	test.That(t, LoggerPatternConfig{Pattern: "device.apps.*", Level: "debug"}.Validate("log.0"), test.ShouldBeNil)
	test.That(t, LoggerPatternConfig{Pattern: "device..apps", Level: "debug"}.Validate("log.0"), test.ShouldNotBeNil)
	test.That(t, LoggerPatternConfig{Pattern: "device", Level: "loud"}.Validate("log.1"), test.ShouldNotBeNil)
}
