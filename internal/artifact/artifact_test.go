package artifact

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"nuitka-toolkit/internal/build"
	"nuitka-toolkit/internal/command"
	"nuitka-toolkit/internal/logger"
	"nuitka-toolkit/internal/options"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"lukechampine.com/blake3"
)

func newTestPackager(goos string) (*Packager, afero.Fs) {
	fs := afero.NewMemMapFs()
	p := NewPackager(fs, logger.NoOpLogger{})
	p.goos = goos
	return p, fs
}

func standalonePlan() command.Plan {
	return command.Plan{
		EntryPoint: "src/main.py",
		OutputDir:  "/work/out",
		Mode:       options.ModeStandalone,
	}
}

func TestPath(t *testing.T) {
	tests := []struct {
		name string
		plan command.Plan
		goos string
		want string
	}{
		{"standalone", standalonePlan(), "linux", "/work/out/main.dist"},
		{"onefile windows", command.Plan{EntryPoint: "main.py", OutputDir: "out", Onefile: true, Mode: options.ModeStandalone}, "windows", "out/main.exe"},
		{"onefile linux", command.Plan{EntryPoint: "main.py", OutputDir: "out", Onefile: true}, "linux", "out/main.bin"},
		{"onefile named", command.Plan{EntryPoint: "main.py", OutputDir: "out", Onefile: true, OutputFilename: "Tool"}, "windows", "out/Tool.exe"},
		{"onefile named linux", command.Plan{EntryPoint: "main.py", OutputDir: "out", Onefile: true, OutputFilename: "Tool"}, "linux", "out/Tool"},
		{"onefile named with dot windows", command.Plan{EntryPoint: "main.py", OutputDir: "out", Onefile: true, OutputFilename: "Tool.v2"}, "windows", "out/Tool.v2.exe"},
		{"onefile named exe windows", command.Plan{EntryPoint: "main.py", OutputDir: "out", Onefile: true, OutputFilename: "Tool.EXE"}, "windows", "out/Tool.EXE"},
		{"module", command.Plan{EntryPoint: "pkg.py", OutputDir: "out", Mode: options.ModeModule}, "linux", "out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Path(tt.plan, tt.goos); got != tt.want {
				t.Errorf("Path() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteShortcut(t *testing.T) {
	p, fs := newTestPackager("windows")

	dest, err := p.WriteShortcut(standalonePlan())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(dest) != ShortcutName {
		t.Errorf("dest = %q", dest)
	}
	data, err := afero.ReadFile(fs, dest)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "@echo off\r\n") {
		t.Errorf("shortcut should use CRLF batch syntax: %q", text)
	}
	if !strings.Contains(text, `"%~dp0main.dist\main.exe" %*`) {
		t.Errorf("shortcut target missing: %q", text)
	}
}

func TestCompressStandalone(t *testing.T) {
	p, fs := newTestPackager("linux")
	_ = afero.WriteFile(fs, "/work/out/main.dist/main.bin", []byte("binary"), 0o755)
	_ = afero.WriteFile(fs, "/work/out/main.dist/lib/libpython.so", []byte("lib"), 0o644)

	archive, sum, err := p.Compress(context.Background(), standalonePlan())
	if err != nil {
		t.Fatal(err)
	}
	if archive != filepath.FromSlash("/work/out/main.zip") {
		t.Errorf("archive = %q", archive)
	}

	data, err := afero.ReadFile(fs, archive)
	if err != nil {
		t.Fatal(err)
	}
	digest := blake3.Sum256(data)
	if hex.EncodeToString(digest[:]) != sum {
		t.Error("checksum does not match archive contents")
	}
	sidecar, _ := afero.ReadFile(fs, archive+".b3")
	if !strings.HasPrefix(string(sidecar), sum+"  main.zip") {
		t.Errorf("sidecar = %q", sidecar)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	want := []string{"main.dist/lib/libpython.so", "main.dist/main.bin"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("entries = %v, want %v", names, want)
	}
}

func TestCompressMissingArtifact(t *testing.T) {
	p, _ := newTestPackager("linux")
	_, _, err := p.Compress(context.Background(), standalonePlan())
	if !errors.Is(err, ErrNoArtifact) {
		t.Errorf("err = %v, want ErrNoArtifact", err)
	}
}

func TestCompressNamedOnefile(t *testing.T) {
	p, fs := newTestPackager("linux")
	_ = afero.WriteFile(fs, "/work/out/Tool", []byte("binary"), 0o755)

	plan := standalonePlan()
	plan.Onefile = true
	plan.OutputFilename = "Tool"

	archive, _, err := p.Compress(context.Background(), plan)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if archive != filepath.FromSlash("/work/out/main.zip") {
		t.Errorf("archive = %q", archive)
	}
}

func TestFinalizeReportsArtifacts(t *testing.T) {
	p, fs := newTestPackager("linux")
	_ = afero.WriteFile(fs, "/work/out/main.dist/main.bin", []byte("binary"), 0o755)

	plan := standalonePlan()
	plan.Compress = true
	plan.StartFile = true

	var lines []string
	sink := build.SinkFunc(func(l string) { lines = append(lines, l) })
	if err := p.Finalize(context.Background(), plan, sink); err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, build.MarkerArtifact) {
			t.Errorf("line %q is not an artifact marker", l)
		}
	}
	if !strings.Contains(lines[1], "blake3:") {
		t.Errorf("archive line = %q", lines[1])
	}
}

func TestFinalizeNothingRequested(t *testing.T) {
	p, _ := newTestPackager("linux")
	called := false
	sink := build.SinkFunc(func(string) { called = true })
	if err := p.Finalize(context.Background(), standalonePlan(), sink); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("no artifact lines expected")
	}
}
