package components

// OptionChangeHandler receives a key of the option catalog and its new value
// (bool or string).
type OptionChangeHandler func(key string, value interface{})

// PluginChangeHandler receives a plugin name and its new state.
type PluginChangeHandler func(name string, enabled bool)

// OptionSource is the read side of the option model the widgets sync from.
type OptionSource interface {
	Bool(key string) bool
	String(key string) string
}
