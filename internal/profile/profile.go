// Package profile saves and restores the option model as a flat key/value
// document. Plugin toggles are stored under keys prefixed with "plugin_".
package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"nuitka-toolkit/internal/options"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const PluginPrefix = "plugin_"

var ErrUnsupportedFormat = errors.New("unsupported profile format")

type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// Extensions offered by the file dialogs.
var Extensions = []string{".json", ".yaml", ".yml"}

// FormatFor picks the codec from the file extension. Files without an
// extension are treated as JSON.
func FormatFor(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", "":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Flatten merges option values and plugin toggles into one mapping.
func Flatten(m *options.Model) map[string]interface{} {
	flat := m.Values()
	for name, enabled := range m.PluginStates() {
		flat[PluginPrefix+name] = enabled
	}
	return flat
}

// Split separates a flat mapping back into option values and plugin toggles.
func Split(flat map[string]interface{}) (map[string]interface{}, map[string]bool, error) {
	values := make(map[string]interface{}, len(flat))
	plugins := make(map[string]bool)

	for k, v := range flat {
		if name, ok := strings.CutPrefix(k, PluginPrefix); ok {
			enabled, isBool := v.(bool)
			if !isBool {
				return nil, nil, fmt.Errorf("%w: plugin %s must be a boolean", options.ErrInvalidValue, name)
			}
			plugins[name] = enabled
			continue
		}
		values[k] = normalize(k, v)
	}
	return values, plugins, nil
}

// normalize accepts hand-edited numbers for string options, e.g. "--jobs": 4.
func normalize(key string, v interface{}) interface{} {
	opt, known := options.Lookup(key)
	if known && opt.Kind.IsBool() {
		return v
	}
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	}
	return v
}

// Encode writes the model. JSON output has sorted keys and two-space indent.
func Encode(w io.Writer, m *options.Model, format Format) error {
	flat := Flatten(m)

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(flat)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(flat); err != nil {
			return err
		}
		return enc.Close()
	default:
		return ErrUnsupportedFormat
	}
}

// Decode reads a flat mapping.
func Decode(r io.Reader, format Format) (map[string]interface{}, error) {
	var flat map[string]interface{}

	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&flat); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&flat); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, ErrUnsupportedFormat
	}
	if flat == nil {
		flat = make(map[string]interface{})
	}
	return flat, nil
}

// Read decodes a profile and applies it to the model.
func Read(r io.Reader, format Format, m *options.Model) error {
	flat, err := Decode(r, format)
	if err != nil {
		return err
	}
	values, plugins, err := Split(flat)
	if err != nil {
		return err
	}
	return m.Apply(values, plugins)
}

// Save writes the model to path, choosing the format from its extension.
func Save(fs afero.Fs, path string, m *options.Model) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, m, format); err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save profile %s: %w", path, err)
	}
	return nil
}

// Load applies the profile at path to the model.
func Load(fs afero.Fs, path string, m *options.Model) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}

	f, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("load profile %s: %w", path, err)
	}
	defer f.Close()

	if err := Read(f, format, m); err != nil {
		return fmt.Errorf("load profile %s: %w", path, err)
	}
	return nil
}
