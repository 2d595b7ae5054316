package options

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrInvalidValue = errors.New("invalid option value")
	ErrUnknownTool  = errors.New("unknown build tool")
)

// Mode is the compilation mode selected by the mode radio.
type Mode string

const (
	ModeStandalone Mode = KeyStandalone
	ModeModule     Mode = KeyModule
)

// Model is the in-memory record of every form value and plugin toggle.
type Model struct {
	mu          sync.RWMutex
	values      map[string]interface{}
	extra       []string
	plugins     map[string]bool
	pluginOrder []string
}

// NewModel returns a model populated with catalog defaults and every plugin disabled.
func NewModel(pluginNames []string) *Model {
	m := &Model{
		values:  make(map[string]interface{}, len(catalog)),
		plugins: make(map[string]bool, len(pluginNames)),
	}
	for _, opt := range catalog {
		m.values[opt.Key] = opt.Default
	}
	m.setPluginNames(pluginNames)
	return m
}

// SetPluginNames replaces the known plugin list, keeping existing toggles for names that remain.
func (m *Model) SetPluginNames(names []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setPluginNames(names)
}

func (m *Model) setPluginNames(names []string) {
	states := m.plugins
	m.plugins = make(map[string]bool, len(names))
	m.pluginOrder = m.pluginOrder[:0]
	for _, name := range names {
		if _, dup := m.plugins[name]; dup || name == "" {
			continue
		}
		m.plugins[name] = states[name]
		m.pluginOrder = append(m.pluginOrder, name)
	}
	// Enabled plugins that the registry no longer reports stay selected.
	var orphans []string
	for name, enabled := range states {
		if _, ok := m.plugins[name]; !ok && enabled {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)
	for _, name := range orphans {
		m.plugins[name] = true
		m.pluginOrder = append(m.pluginOrder, name)
	}
}

// Set stores a value. Catalog keys are type checked; unknown keys are kept
// and emitted after catalog keys in the order they were first set.
func (m *Model) Set(key string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set(key, value)
}

func (m *Model) set(key string, value interface{}) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidValue)
	}

	opt, known := Lookup(key)
	if !known {
		switch value.(type) {
		case bool, string:
		default:
			return fmt.Errorf("%w: %s has unsupported type %T", ErrInvalidValue, key, value)
		}
		if _, seen := m.values[key]; !seen {
			m.extra = append(m.extra, key)
		}
		m.values[key] = value
		return nil
	}

	if opt.Kind.IsBool() {
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s expects a boolean, got %T", ErrInvalidValue, key, value)
		}
		m.values[key] = b
		return nil
	}

	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: %s expects a string, got %T", ErrInvalidValue, key, value)
	}
	if key == KeyBuildTool {
		return m.setBuildTool(s)
	}
	m.values[key] = s
	return nil
}

func (m *Model) setBuildTool(tool string) error {
	switch tool {
	case BuildToolNone, BuildToolMingw64, BuildToolClang:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTool, tool)
	}
	m.values[KeyBuildTool] = tool
	m.values[KeyMingw64] = tool == BuildToolMingw64
	m.values[KeyClang] = tool == BuildToolClang
	return nil
}

// SetMode selects standalone or module compilation; exactly one flag stays set.
func (m *Model) SetMode(mode Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[KeyStandalone] = mode == ModeStandalone
	m.values[KeyModule] = mode != ModeStandalone
}

func (m *Model) Mode() Mode {
	if m.Bool(KeyStandalone) {
		return ModeStandalone
	}
	return ModeModule
}

func (m *Model) Value(key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Model) Bool(key string) bool {
	v, _ := m.Value(key)
	b, _ := v.(bool)
	return b
}

func (m *Model) String(key string) string {
	v, _ := m.Value(key)
	s, _ := v.(string)
	return s
}

// Keys returns catalog keys followed by extra keys.
func (m *Model) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(catalog)+len(m.extra))
	for _, opt := range catalog {
		keys = append(keys, opt.Key)
	}
	return append(keys, m.extra...)
}

// Values returns a copy of the option mapping.
func (m *Model) Values() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]interface{}, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// SetPlugin toggles a plugin. Names the registry never reported are added.
func (m *Model) SetPlugin(name string, enabled bool) {
	if name == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plugins[name]; !ok {
		m.pluginOrder = append(m.pluginOrder, name)
	}
	m.plugins[name] = enabled
}

func (m *Model) PluginEnabled(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.plugins[name]
}

// Plugins returns every known plugin name in registry order.
func (m *Model) Plugins() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.pluginOrder))
	copy(out, m.pluginOrder)
	return out
}

// EnabledPlugins returns the enabled plugin names in registry order.
func (m *Model) EnabledPlugins() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for _, name := range m.pluginOrder {
		if m.plugins[name] {
			out = append(out, name)
		}
	}
	return out
}

// PluginStates returns a copy of the plugin enablement set.
func (m *Model) PluginStates() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(m.plugins))
	for k, v := range m.plugins {
		out[k] = v
	}
	return out
}

// Apply sets many values at once. It stops at the first invalid value;
// values applied before it are kept.
func (m *Model) Apply(values map[string]interface{}, plugins map[string]bool) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m.mu.Lock()
	for _, k := range keys {
		if err := m.set(k, values[k]); err != nil {
			m.mu.Unlock()
			return err
		}
	}
	m.mu.Unlock()

	names := make([]string, 0, len(plugins))
	for name := range plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m.SetPlugin(name, plugins[name])
	}
	return nil
}
