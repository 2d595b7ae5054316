// Package command turns the option model into the argument lists handed to
// pip and to the Nuitka compiler.
package command

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"nuitka-toolkit/internal/options"

	shlex "github.com/anmitsu/go-shlex"
)

// Plan is the full result of one assembly. It is rebuilt from scratch on every
// change and never mutated afterwards.
type Plan struct {
	PythonVersion string
	Install       []string
	Compile       []string

	EntryPoint     string
	OutputDir      string
	OutputFilename string
	PipsDir        string
	Mode           options.Mode
	Onefile        bool
	Compress       bool
	StartFile      bool
}

func (p Plan) HasInstall() bool {
	return len(p.Install) > 0
}

// Stem is the entry point file name without its extension.
func (p Plan) Stem() string {
	base := path.Base(p.EntryPoint)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Lines renders the preview shown at the top of the log.
func (p Plan) Lines() []string {
	lines := []string{"[Python]:"}
	lines = append(lines, strings.Split(p.PythonVersion, "\n")...)
	lines = append(lines, "[Build]")
	if p.HasInstall() {
		lines = append(lines, strings.Join(p.Install, " "))
	}
	return append(lines, strings.Join(p.Compile, " "))
}

func (p Plan) String() string {
	return strings.Join(p.Lines(), "\n")
}

// Assembler holds the interpreter used to run pip and the compiler.
type Assembler struct {
	Python        string
	PythonVersion string
}

// Assemble builds the install and compile argument lists. Option
// compatibility is not validated; the compiler reports its own errors.
func (a Assembler) Assemble(m *options.Model) (Plan, error) {
	entry := m.String(options.KeyEntryPoint)
	if strings.TrimSpace(entry) == "" {
		entry = options.DefaultEntryPoint
	}
	entry = filepath.ToSlash(entry)

	outputDir := m.String(options.KeyOutputDir)
	if strings.TrimSpace(outputDir) == "" {
		outputDir = options.DefaultOutputDir
	}
	outputDir = filepath.ToSlash(outputDir)

	plan := Plan{
		PythonVersion:  a.PythonVersion,
		EntryPoint:     entry,
		OutputDir:      outputDir,
		OutputFilename: m.String(options.KeyOutputFilename),
		Mode:           m.Mode(),
		Onefile:        m.Bool(options.KeyOnefile),
		Compress:       m.Bool(options.KeyCompress),
		StartFile:      m.Bool(options.KeyStartFile),
	}

	cmd := []string{a.Python, "-m", "nuitka"}
	for _, key := range m.Keys() {
		value, _ := m.Value(key)

		if key == options.KeyPipArgs {
			pipArgs := splitPipArgs(m.String(options.KeyPipArgs))
			if len(pipArgs) == 0 {
				continue
			}
			plan.PipsDir = path.Join(outputDir, plan.Stem()+".pips")
			plan.Install = append([]string{a.Python, "-m", "pip", "install"}, pipArgs...)
			plan.Install = append(plan.Install, "-t", plan.PipsDir)
			cmd = append(cmd, fmt.Sprintf("--include-data-dir=%s=./", plan.PipsDir))
			continue
		}

		opt, known := options.Lookup(key)
		if !known {
			cmd = appendExtra(cmd, key, value)
			continue
		}
		if opt.Kind.Synthetic() {
			continue
		}

		switch opt.Kind {
		case options.KindFlag:
			if b, _ := value.(bool); b {
				cmd = append(cmd, key)
			}
		case options.KindValue:
			if s, _ := value.(string); s != "" {
				cmd = append(cmd, key, s)
			}
		case options.KindList:
			for _, item := range splitList(value) {
				if strings.HasPrefix(item, "--") {
					cmd = append(cmd, item)
					continue
				}
				cmd = append(cmd, key+"="+item)
			}
		case options.KindRaw:
			cmd = append(cmd, splitList(value)...)
		}
	}

	for _, name := range m.EnabledPlugins() {
		cmd = append(cmd, "--enable-plugin="+name)
	}
	plan.Compile = append(cmd, entry)

	return plan, nil
}

// appendExtra handles keys loaded from a profile that the catalog does not know.
func appendExtra(cmd []string, key string, value interface{}) []string {
	if !strings.HasPrefix(key, "--") {
		return cmd
	}
	switch v := value.(type) {
	case bool:
		if v {
			cmd = append(cmd, key)
		}
	case string:
		if v != "" {
			cmd = append(cmd, key, v)
		}
	}
	return cmd
}

func splitList(value interface{}) []string {
	s, _ := value.(string)
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// splitPipArgs splits on whitespace. Double or single quotes group words;
// backslashes are kept so Windows paths survive. An unbalanced quote falls
// back to a plain whitespace split.
func splitPipArgs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	args, err := shlex.Split(raw, false)
	if err != nil {
		return strings.Fields(raw)
	}
	for i, arg := range args {
		args[i] = unquote(arg)
	}
	return args
}

func unquote(arg string) string {
	if len(arg) >= 2 {
		first, last := arg[0], arg[len(arg)-1]
		if first == last && (first == '"' || first == '\'') {
			return arg[1 : len(arg)-1]
		}
	}
	return arg
}
