package toolchain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/usr/bin/python3", "/usr/bin/python3"},
		{"/opt/py/bin/pythonw", "/opt/py/bin/python"},
		{"C:/Python312/pythonw.exe", "C:/Python312/python.exe"},
		{"C:/Python312/python.exe", "C:/Python312/python.exe"},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolvePrefersConfigured(t *testing.T) {
	lookPath := func(string) (string, error) {
		t.Fatal("lookPath must not be called when a path is configured")
		return "", nil
	}
	got, err := resolve("  /custom/pythonw ", lookPath)
	if err != nil {
		t.Fatal(err)
	}
	if got != "/custom/python" {
		t.Errorf("resolve = %q", got)
	}
}

func TestResolveFallsBackToPath(t *testing.T) {
	var tried []string
	lookPath := func(name string) (string, error) {
		tried = append(tried, name)
		if name == "python" {
			return "/usr/bin/python", nil
		}
		return "", errors.New("not found")
	}
	got, err := resolve("", lookPath)
	if err != nil {
		t.Fatal(err)
	}
	if got != "/usr/bin/python" {
		t.Errorf("resolve = %q", got)
	}
	if len(tried) != 2 || tried[0] != "python3" {
		t.Errorf("tried = %v", tried)
	}
}

func TestResolveNotFound(t *testing.T) {
	lookPath := func(string) (string, error) { return "", errors.New("not found") }
	if _, err := resolve("", lookPath); !errors.Is(err, ErrInterpreterNotFound) {
		t.Errorf("err = %v, want ErrInterpreterNotFound", err)
	}
}

func TestProbeVersion(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as a fake interpreter")
	}
	fake := filepath.Join(t.TempDir(), "python")
	script := "#!/bin/sh\necho '3.12.1 (main, Jan  1 2024)'\n"
	if err := os.WriteFile(fake, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	version, err := ProbeVersion(context.Background(), fake)
	if err != nil {
		t.Fatal(err)
	}
	if version != "3.12.1 (main, Jan  1 2024)" {
		t.Errorf("version = %q", version)
	}
}

func TestDetectKeepsPathOnProbeFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-python")
	in, err := Detect(context.Background(), missing)
	if err == nil {
		t.Fatal("expected probe error")
	}
	if in.Path != filepath.ToSlash(missing) || in.Version != "unknown" {
		t.Errorf("Detect = %+v", in)
	}
}
