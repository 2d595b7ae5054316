// Package toolchain locates the Python interpreter that runs pip and Nuitka.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

var ErrInterpreterNotFound = errors.New("python interpreter not found")

// candidates are tried in order when no interpreter is configured.
var candidates = []string{"python3", "python"}

const probeTimeout = 15 * time.Second

// Interpreter is a resolved Python executable.
type Interpreter struct {
	Path    string
	Version string
}

// Resolve returns the interpreter to use. A configured path wins; otherwise
// the first candidate found on PATH is used.
func Resolve(configured string) (string, error) {
	return resolve(configured, exec.LookPath)
}

func resolve(configured string, lookPath func(string) (string, error)) (string, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		return NormalizePath(configured), nil
	}
	for _, name := range candidates {
		if p, err := lookPath(name); err == nil {
			return NormalizePath(p), nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrInterpreterNotFound, strings.Join(candidates, ", "))
}

// NormalizePath swaps the windowless launcher for the console interpreter so
// that child output can be captured.
func NormalizePath(p string) string {
	p = filepath.ToSlash(p)
	switch {
	case strings.HasSuffix(p, "pythonw.exe"):
		return strings.TrimSuffix(p, "pythonw.exe") + "python.exe"
	case strings.HasSuffix(p, "pythonw"):
		return strings.TrimSuffix(p, "w")
	}
	return p
}

// ProbeVersion asks the interpreter for sys.version.
func ProbeVersion(ctx context.Context, python string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, python, "-c", "import sys; print(sys.version)").Output()
	if err != nil {
		return "", fmt.Errorf("probe %s: %w", python, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Detect resolves the interpreter and its version. A failed probe still
// returns the path so that builds can report the real error later.
func Detect(ctx context.Context, configured string) (Interpreter, error) {
	p, err := Resolve(configured)
	if err != nil {
		return Interpreter{}, err
	}
	version, err := ProbeVersion(ctx, p)
	if err != nil {
		return Interpreter{Path: p, Version: "unknown"}, err
	}
	return Interpreter{Path: p, Version: version}, nil
}
