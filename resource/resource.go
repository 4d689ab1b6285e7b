// Package resource contains the Resource type shared by every device component, the registry of
// component models and the config each component is built from.
package resource

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// API identifies a family of components, e.g. "board" or "input".
type API string

// Model identifies one implementation of an API, e.g. "gpiochip".
type Model string

// APIModel is the key a registration is recorded under.
type APIModel struct {
	API   API
	Model Model
}

// Name uniquely identifies a constructed resource.
type Name struct {
	API  API
	Name string
}

// NewName returns the name of a resource of the given API.
func NewName(api API, name string) Name {
	return Name{API: api, Name: name}
}

// String returns "api/name".
func (n Name) String() string {
	return fmt.Sprintf("%s/%s", n.API, n.Name)
}

// NewFromString parses the "api/name" form produced by String.
func NewFromString(s string) (Name, error) {
	api, name, found := strings.Cut(s, "/")
	if !found || api == "" || name == "" {
		return Name{}, errors.Errorf("invalid resource name %q", s)
	}
	return NewName(API(api), name), nil
}

// AsNamed returns a Named that can be embedded by implementations.
func (n Name) AsNamed() Named {
	return selfNamed{n}
}

// Named is implemented by anything that knows its own resource name.
type Named interface {
	Name() Name
}

type selfNamed struct {
	name Name
}

func (s selfNamed) Name() Name {
	return s.name
}

// Resource is the minimal contract of every constructed component.
type Resource interface {
	Named
	Close(ctx context.Context) error
}

// TriviallyCloseable can be embedded by resources that hold nothing to release.
type TriviallyCloseable struct{}

// Close always returns nil.
func (TriviallyCloseable) Close(ctx context.Context) error {
	return nil
}

// Dependencies are the already constructed resources a constructor may draw from.
type Dependencies map[Name]Resource

// FromDependencies returns the named resource asserted to T.
func FromDependencies[T Resource](deps Dependencies, name Name) (T, error) {
	var zero T
	res, ok := deps[name]
	if !ok {
		return zero, DependencyNotFoundError(name)
	}
	typed, ok := res.(T)
	if !ok {
		return zero, errors.Errorf("resource %q is %T, not the expected type", name, res)
	}
	return typed, nil
}

// DependencyNotFoundError is returned when a required dependency was never built.
func DependencyNotFoundError(name Name) error {
	return errors.Errorf("resource %q not found in dependencies", name)
}
