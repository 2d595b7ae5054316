package plugins

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"nuitka-toolkit/internal/logger"
)

const sampleList = `        The following plugins are available in Nuitka
--------------------------------------------------------------------------------
 anti-bloat        Patch stupid imports out of widely used library modules
                   source codes.
 data-files        Include data files specified by package configuration files.
 pylint-warnings   Deprecated, support PyLint / PyDev linting source markers.
 tk-inter          Required by Python's Tk modules.

The following plugins can be enabled with --enable-plugin.
`

func TestParse(t *testing.T) {
	got, err := Parse(strings.NewReader(sampleList))
	if err != nil {
		t.Fatal(err)
	}
	want := []Plugin{
		{"anti-bloat", "Patch stupid imports out of widely used library modules source codes."},
		{"data-files", "Include data files specified by package configuration files."},
		{"tk-inter", "Required by Python's Tk modules."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() =\n%v\nwant\n%v", got, want)
	}
}

func TestParseWithoutTable(t *testing.T) {
	_, err := Parse(strings.NewReader("No module named nuitka\n"))
	if !errors.Is(err, ErrNoPlugins) {
		t.Errorf("err = %v, want ErrNoPlugins", err)
	}
}

func TestLoadUsesCompilerOutput(t *testing.T) {
	r := NewRegistry("/usr/bin/python3", logger.NoOpLogger{})
	var gotArgv []string
	r.output = func(_ context.Context, argv []string) ([]byte, error) {
		gotArgv = argv
		return []byte(sampleList), nil
	}

	plugins, err := r.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"/usr/bin/python3", "-m", "nuitka", "--plugin-list"}; !reflect.DeepEqual(gotArgv, want) {
		t.Errorf("argv = %v", gotArgv)
	}
	if names := Names(plugins); !reflect.DeepEqual(names, []string{"anti-bloat", "data-files", "tk-inter"}) {
		t.Errorf("Names() = %v", names)
	}
}

func TestLoadFallsBack(t *testing.T) {
	r := NewRegistry("python3", logger.NoOpLogger{})
	r.output = func(context.Context, []string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}

	plugins, err := r.Load(context.Background())
	if err == nil {
		t.Fatal("expected the query error to be reported")
	}
	if len(plugins) != len(Fallback()) {
		t.Errorf("expected fallback catalog, got %d plugins", len(plugins))
	}
}

func TestFallbackHasUniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range Fallback() {
		if seen[p.Name] {
			t.Errorf("duplicate plugin %q", p.Name)
		}
		seen[p.Name] = true
		if isDeprecated(p) {
			t.Errorf("fallback plugin %q is marked deprecated", p.Name)
		}
	}
}
