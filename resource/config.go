package resource

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.tdeck.dev/pda/utils"
)

// A Config describes the configuration of a resource.
type Config struct {
	Name       string             `json:"name"`
	API        API                `json:"api"`
	Model      Model              `json:"model"`
	DependsOn  []string           `json:"depends_on,omitempty"`
	Attributes utils.AttributeMap `json:"attributes,omitempty"`

	ConvertedAttributes ConfigValidator `json:"-"`
	ImplicitDependsOn   []string        `json:"-"`
}

// A ConfigValidator validates a configuration and also
// returns dependencies that were implicitly discovered.
type ConfigValidator interface {
	Validate(path string) ([]string, error)
}

// NativeConfig returns the native config from the given config via its
// converted attributes.
func NativeConfig[T any](conf Config) (T, error) {
	return utils.AssertType[T](conf.ConvertedAttributes)
}

// ResourceName returns the name of the resource this config builds.
func (conf *Config) ResourceName() Name {
	return NewName(conf.API, conf.Name)
}

// String returns a short description of the config.
func (conf *Config) String() string {
	return fmt.Sprintf("%s (%s)", conf.ResourceName(), conf.Model)
}

// Dependencies returns the names of every resource this one needs, explicit ones first.
func (conf *Config) Dependencies() []string {
	deps := make([]string, 0, len(conf.DependsOn)+len(conf.ImplicitDependsOn))
	deps = append(deps, conf.DependsOn...)
	return append(deps, conf.ImplicitDependsOn...)
}

// Validate ensures all parts of the config are valid. When the model is registered, its
// attributes are converted into the native config, validated, and the implicit dependencies the
// native config reports are recorded.
func (conf *Config) Validate(path string) error {
	if conf.Name == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if conf.API == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "api")
	}
	if conf.Model == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "model")
	}

	reg, ok := LookupRegistration(conf.API, conf.Model)
	if !ok {
		return errors.Errorf("%s: unknown model %q for api %q", path, conf.Model, conf.API)
	}
	if reg.AttributeMapConverter == nil {
		return nil
	}
	converted, err := reg.AttributeMapConverter(conf.Attributes)
	if err != nil {
		return errors.Wrapf(err, "%s: error converting attributes", path)
	}
	deps, err := converted.Validate(fmt.Sprintf("%s.attributes", path))
	if err != nil {
		return err
	}
	conf.ConvertedAttributes = converted
	conf.ImplicitDependsOn = deps
	return nil
}

// TransformAttributeMap uses an attribute map to transform attributes to the prescribed format.
// Durations may be written as strings ("250ms").
func TransformAttributeMap[T any](attributes utils.AttributeMap) (T, error) {
	var out T

	var forResult interface{}

	toT := reflect.TypeOf(out)
	if toT == nil {
		// nothing to transform
		return out, nil
	}
	if toT.Kind() == reflect.Ptr {
		// needs to be allocated then
		var ok bool
		out, ok = reflect.New(toT.Elem()).Interface().(T)
		if !ok {
			return out, errors.Errorf("failed to allocate default config type %T", out)
		}
		forResult = out
	} else {
		forResult = &out
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           forResult,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return out, err
	}
	if err := decoder.Decode(map[string]interface{}(attributes)); err != nil {
		return out, err
	}
	return out, nil
}
