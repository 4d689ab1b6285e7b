package resource

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.tdeck.dev/pda/logging"
)

// Graph holds constructed resources in the order they were built.
type Graph struct {
	order     []Name
	resources Dependencies
}

// Resource returns the named resource.
func (g *Graph) Resource(name Name) (Resource, bool) {
	res, ok := g.resources[name]
	return res, ok
}

// Names returns every resource name in build order.
func (g *Graph) Names() []Name {
	return append([]Name(nil), g.order...)
}

// Close closes every resource in reverse build order, so that dependents go before what they
// depend on.
func (g *Graph) Close(ctx context.Context) error {
	var err error
	for i := len(g.order) - 1; i >= 0; i-- {
		err = multierr.Combine(err, g.resources[g.order[i]].Close(ctx))
	}
	return err
}

// Build constructs every config whose model is registered. A resource is built once all of the
// resources it depends on (matched by name, any api) have been built. Configs must already be
// validated. On failure everything built so far is closed.
func Build(ctx context.Context, confs []Config, logger logging.Logger) (*Graph, error) {
	g := &Graph{resources: Dependencies{}}
	byName := map[string]Name{}
	pending := append([]Config(nil), confs...)

	for len(pending) > 0 {
		var next []Config
		for _, conf := range pending {
			deps, ready := g.dependenciesFor(conf, byName)
			if !ready {
				next = append(next, conf)
				continue
			}
			reg, ok := LookupRegistration(conf.API, conf.Model)
			if !ok {
				return nil, multierr.Combine(
					errors.Errorf("unknown model %q for api %q", conf.Model, conf.API), g.Close(ctx))
			}
			logger.Debugw("building resource", "resource", conf.ResourceName().String(), "model", conf.Model)
			res, err := reg.Constructor(ctx, deps, conf, logger.Sublogger(conf.Name))
			if err != nil {
				return nil, multierr.Combine(errors.Wrapf(err, "building %s", conf.String()), g.Close(ctx))
			}
			name := conf.ResourceName()
			g.order = append(g.order, name)
			g.resources[name] = res
			byName[conf.Name] = name
		}
		if len(next) == len(pending) {
			var unresolved []string
			for _, conf := range next {
				unresolved = append(unresolved, conf.Name+" -> ["+strings.Join(conf.Dependencies(), ", ")+"]")
			}
			return nil, multierr.Combine(
				errors.Errorf("unresolved dependencies: %s", strings.Join(unresolved, "; ")), g.Close(ctx))
		}
		pending = next
	}
	return g, nil
}

func (g *Graph) dependenciesFor(conf Config, byName map[string]Name) (Dependencies, bool) {
	deps := Dependencies{}
	for _, dep := range conf.Dependencies() {
		name, ok := byName[dep]
		if !ok {
			return nil, false
		}
		deps[name] = g.resources[name]
	}
	return deps, true
}
