package loader

import (
	"errors"
	"fmt"
	"sync"

	"media-resolver/internal/logging"
	"media-resolver/internal/plugin"
	"media-resolver/internal/resolver"
)

// Registration is one agent registered from a manifest.
type Registration struct {
	Name   string          `json:"name"`
	Kind   plugin.Kind     `json:"kind"`
	Handle resolver.Handle `json:"handle"`
}

// Report describes the outcome of applying a manifest.
type Report struct {
	Registered []Registration `json:"registered"`
	Disabled   []string       `json:"disabled,omitempty"`
	Failed     []string       `json:"failed,omitempty"`
}

// Build constructs the enabled agents of m in manifest order. It fails
// without side effects if any entry is unknown or carries invalid options.
func Build(m *Manifest) ([]plugin.Agent, []string, error) {
	var agents []plugin.Agent
	var disabled []string
	var errs []error
	for _, spec := range m.Plugins {
		if !spec.IsEnabled() {
			disabled = append(disabled, spec.Name)
			continue
		}
		agent, err := build(spec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		agents = append(agents, agent)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, nil, err
	}
	return agents, disabled, nil
}

// Apply builds the agents of m and registers them with r in manifest order.
// An agent that fails to register is logged and skipped; the others are
// still registered and the failures are returned joined.
func Apply(r *resolver.Resolver, m *Manifest) (Report, error) {
	agents, disabled, err := Build(m)
	if err != nil {
		return Report{}, err
	}
	return register(r, agents, disabled)
}

func register(r *resolver.Resolver, agents []plugin.Agent, disabled []string) (Report, error) {
	report := Report{Disabled: disabled}
	var errs []error
	for _, agent := range agents {
		h, err := r.RegisterPluginAgent(agent)
		if err != nil {
			logging.Error("Failed to register plugin %s: %v", agent.Name(), err)
			report.Failed = append(report.Failed, agent.Name())
			errs = append(errs, err)
			continue
		}
		report.Registered = append(report.Registered, Registration{Name: agent.Name(), Kind: agent.Kind(), Handle: h})
	}
	return report, errors.Join(errs...)
}

// replace swaps the resolver's registry for agents in one step.
func replace(r *resolver.Resolver, agents []plugin.Agent, disabled []string) (Report, error) {
	handles, err := r.Replace(agents)
	report := Report{Disabled: disabled}
	for i, agent := range agents {
		if handles[i].IsZero() {
			report.Failed = append(report.Failed, agent.Name())
			continue
		}
		report.Registered = append(report.Registered, Registration{Name: agent.Name(), Kind: agent.Kind(), Handle: handles[i]})
	}
	if err != nil {
		logging.Error("Failed to register plugins %v: %v", report.Failed, err)
	}
	return report, err
}

// Loader keeps a resolver in sync with a manifest file.
type Loader struct {
	mu       sync.Mutex
	path     string
	resolver *resolver.Resolver
	defaults map[string]map[string]any
	manifest *Manifest
	report   Report
}

// New returns a loader for the manifest at path. An empty path, or a path
// that does not exist, uses DefaultManifest.
func New(r *resolver.Resolver, path string) *Loader {
	return &Loader{path: path, resolver: r}
}

// SetOptionDefault sets the value of option for every manifest entry of
// the named plugin that does not set it. It takes effect on the next Reload.
func (l *Loader) SetOptionDefault(pluginName, option string, value any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.defaults == nil {
		l.defaults = make(map[string]map[string]any)
	}
	if l.defaults[pluginName] == nil {
		l.defaults[pluginName] = make(map[string]any)
	}
	l.defaults[pluginName][option] = value
}

func (l *Loader) withDefaults(m *Manifest) *Manifest {
	if len(l.defaults) == 0 {
		return m
	}
	out := &Manifest{Plugins: make([]PluginSpec, len(m.Plugins))}
	for i, spec := range m.Plugins {
		defaults := l.defaults[spec.Name]
		if len(defaults) > 0 {
			opts := make(map[string]any, len(spec.Options)+len(defaults))
			for k, v := range defaults {
				opts[k] = v
			}
			for k, v := range spec.Options {
				opts[k] = v
			}
			spec.Options = opts
		}
		out.Plugins[i] = spec
	}
	return out
}

// Path returns the manifest path.
func (l *Loader) Path() string { return l.path }

// Resolver returns the resolver the loader registers with.
func (l *Loader) Resolver() *resolver.Resolver { return l.resolver }

// Load reads the manifest and registers its agents. It is Reload under
// another name for call sites that start from an empty resolver.
func (l *Loader) Load() (Report, error) {
	return l.Reload()
}

// Reload reads the manifest and replaces every registered agent with the
// manifest's agents in a single step, so concurrent resolutions never see a
// partly loaded registry. If the manifest cannot be read or its agents cannot be
// built, the registry is left untouched and the error is returned.
func (l *Loader) Reload() (Report, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, err := LoadManifest(l.path)
	if err != nil {
		observeReload(err)
		return Report{}, err
	}
	m = l.withDefaults(m)
	agents, disabled, err := Build(m)
	if err != nil {
		err = fmt.Errorf("plugin manifest %s: %w", l.path, err)
		observeReload(err)
		return Report{}, err
	}

	report, err := replace(l.resolver, agents, disabled)
	l.manifest = m
	l.report = report
	observeReload(err)

	logging.Info("Plugin manifest applied: %d registered, %d disabled, %d failed",
		len(report.Registered), len(report.Disabled), len(report.Failed))
	return report, err
}

// Manifest returns the manifest applied by the last successful Reload, or
// nil before the first.
func (l *Loader) Manifest() *Manifest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.manifest
}

// Report returns the outcome of the last applied manifest.
func (l *Loader) Report() Report {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.report
}

// Close unregisters every agent.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resolver.UnregisterAll()
}
