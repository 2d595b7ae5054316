// Package plugins enumerates the plugins the Nuitka compiler recognises.
package plugins

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"nuitka-toolkit/internal/logger"
)

var ErrNoPlugins = errors.New("no plugins found in compiler output")

const listTimeout = 60 * time.Second

// Plugin is one compiler plugin as reported by --plugin-list.
type Plugin struct {
	Name        string
	Description string
}

// Registry asks the compiler for its plugin table.
type Registry struct {
	python string
	logger logger.Logger
	output func(ctx context.Context, argv []string) ([]byte, error)
}

func NewRegistry(python string, log logger.Logger) *Registry {
	return &Registry{
		python: python,
		logger: log,
		output: combinedOutput,
	}
}

// Load returns the compiler's plugins. When the compiler cannot be queried
// the built-in catalog is returned together with the error.
func (r *Registry) Load(ctx context.Context) ([]Plugin, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	argv := []string{r.python, "-m", "nuitka", "--plugin-list"}
	out, err := r.output(ctx, argv)
	if err != nil {
		r.logger.Warning("PluginRegistry", "plugin list failed, using built-in catalog", map[string]interface{}{
			"error": err.Error(),
		})
		return Fallback(), fmt.Errorf("list plugins: %w", err)
	}

	plugins, err := Parse(bytes.NewReader(out))
	if err != nil {
		return Fallback(), err
	}

	r.logger.Info("PluginRegistry", "plugins loaded", map[string]interface{}{
		"count": len(plugins),
	})
	return plugins, nil
}

func combinedOutput(ctx context.Context, argv []string) ([]byte, error) {
	return exec.CommandContext(ctx, argv[0], argv[1:]...).CombinedOutput()
}

// Parse reads the table printed by `nuitka --plugin-list`. Rows start with a
// single space; deeper indented lines continue the previous description.
// Deprecated plugins are skipped.
func Parse(r io.Reader) ([]Plugin, error) {
	var (
		plugins []Plugin
		inTable bool
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		trimmed := strings.TrimSpace(line)

		if !inTable {
			if strings.HasPrefix(trimmed, "---") {
				inTable = true
			}
			continue
		}
		if trimmed == "" {
			continue
		}

		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent > 2 && len(plugins) > 0 {
			last := &plugins[len(plugins)-1]
			last.Description = strings.TrimSpace(last.Description + " " + trimmed)
			continue
		}
		if indent == 0 {
			// Trailer text after the table.
			break
		}

		name, desc, _ := strings.Cut(trimmed, " ")
		plugins = append(plugins, Plugin{Name: name, Description: strings.TrimSpace(desc)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read plugin list: %w", err)
	}

	active := plugins[:0]
	for _, p := range plugins {
		if !isDeprecated(p) {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil, ErrNoPlugins
	}
	return active, nil
}

func isDeprecated(p Plugin) bool {
	return strings.Contains(strings.ToLower(p.Description), "deprecated")
}

// Names returns the plugin names in order.
func Names(plugins []Plugin) []string {
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name
	}
	return names
}

// Fallback is used when the compiler cannot be queried.
func Fallback() []Plugin {
	return []Plugin{
		{"anti-bloat", "Patch stupid imports out of widely used library modules source codes."},
		{"data-files", "Include data files specified by package configuration files."},
		{"delvewheel", "Required for 'support' of delvewheel using packages in standalone mode."},
		{"dill-compat", "Required for 'dill' package compatibility."},
		{"dll-files", "Include DLLs as per package configuration files."},
		{"enum-compat", "Required for Python2 and 'enum' package."},
		{"eventlet", "Support for including 'eventlet' dependencies."},
		{"gevent", "Required by the 'gevent' package."},
		{"gi", "Support for GI package typelib dependency."},
		{"glfw", "Required for 'OpenGL' (PyOpenGL) and 'glfw' package in standalone mode."},
		{"implicit-imports", "Provide implicit imports of package as per package configuration files."},
		{"kivy", "Required by 'kivy' package."},
		{"matplotlib", "Required for 'matplotlib' module."},
		{"multiprocessing", "Required by Python's 'multiprocessing' module."},
		{"no-qt", "Disable all Qt bindings for standalone mode."},
		{"options-nanny", "Inform the user about potential problems as per package configuration files."},
		{"pbr-compat", "Required by the 'pbr' package in standalone mode."},
		{"pkg-resources", "Workarounds for 'pkg_resources'."},
		{"playwright", "Required by 'playwright' package."},
		{"pmw-freezer", "Required by the 'Pmw' package."},
		{"pyqt5", "Required by the PyQt5 package."},
		{"pyqt6", "Required by the PyQt6 package for standalone mode."},
		{"pyside2", "Required by the PySide2 package."},
		{"pyside6", "Required by the PySide6 package for standalone mode."},
		{"pywebview", "Required by the 'webview' package (pywebview on PyPI)."},
		{"spacy", "Required by 'spacy' package."},
		{"tk-inter", "Required by Python's Tk modules."},
		{"transformers", "Provide implicit imports for transformers package."},
		{"upx", "Compress created binaries with UPX automatically."},
	}
}
