package workspace

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

func newTestWorkspace(goos string, env map[string]string) (*Workspace, afero.Fs) {
	fs := afero.NewMemMapFs()
	w := New(fs)
	w.goos = goos
	w.getenv = func(k string) string { return env[k] }
	w.userCacheDir = func() (string, error) { return filepath.FromSlash("/home/dev/.cache"), nil }
	return w, fs
}

func TestCacheDir(t *testing.T) {
	tests := []struct {
		name string
		goos string
		env  map[string]string
		want string
	}{
		{"linux", "linux", nil, "/home/dev/.cache/Nuitka"},
		{"darwin", "darwin", nil, "/home/dev/.cache/Nuitka"},
		{"windows", "windows", nil, "/home/dev/.cache/Nuitka/Nuitka/Cache"},
		{"override", "linux", map[string]string{CacheEnv: "/srv/nuitka-cache"}, "/srv/nuitka-cache"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := newTestWorkspace(tt.goos, tt.env)
			got, err := w.CacheDir()
			if err != nil {
				t.Fatal(err)
			}
			if filepath.ToSlash(got) != tt.want {
				t.Errorf("CacheDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheDirError(t *testing.T) {
	w, _ := newTestWorkspace("linux", nil)
	w.userCacheDir = func() (string, error) { return "", errors.New("no home") }
	if _, err := w.CacheDir(); err == nil {
		t.Fatal("expected error")
	}
}

func TestDirSize(t *testing.T) {
	w, fs := newTestWorkspace("linux", nil)
	_ = afero.WriteFile(fs, "/cache/a.bin", make([]byte, 1000), 0o644)
	_ = afero.WriteFile(fs, "/cache/sub/b.bin", make([]byte, 24), 0o644)

	size, err := w.DirSize("/cache")
	if err != nil {
		t.Fatal(err)
	}
	if size != 1024 {
		t.Errorf("DirSize = %d, want 1024", size)
	}

	if _, err := w.DirSize("/missing"); err == nil {
		t.Error("expected error for a missing dir")
	}
}

func TestFormatGB(t *testing.T) {
	if got := FormatGB(3 << 29); got != "1.50 GB" {
		t.Errorf("FormatGB = %q", got)
	}
	if got := FormatGB(0); got != "0.00 GB" {
		t.Errorf("FormatGB = %q", got)
	}
}

func TestCachedToolchains(t *testing.T) {
	w, fs := newTestWorkspace("windows", nil)
	_ = fs.MkdirAll("/cache/downloads/gcc/x86_64/14.2.0posix/mingw64", 0o755)
	_ = fs.MkdirAll("/cache/downloads/gcc/arm64/13.1.0/mingw64", 0o755)
	_ = afero.WriteFile(fs, "/cache/downloads/gcc/x86_64/readme.txt", []byte("x"), 0o644)

	got, err := w.CachedToolchains("/cache")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.FromSlash("/cache/downloads/gcc/arm64/13.1.0"),
		filepath.FromSlash("/cache/downloads/gcc/x86_64/14.2.0posix"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CachedToolchains = %v, want %v", got, want)
	}
}

func TestRemoveOutput(t *testing.T) {
	w, fs := newTestWorkspace("linux", nil)
	_ = afero.WriteFile(fs, "/proj/nuitka_output/app.dist/app.bin", []byte("elf"), 0o755)

	removed, err := w.RemoveOutput("/proj/nuitka_output")
	if err != nil || !removed {
		t.Fatalf("RemoveOutput = %v, %v", removed, err)
	}
	if w.IsDir("/proj/nuitka_output") {
		t.Error("output dir still exists")
	}

	removed, err = w.RemoveOutput("/proj/nuitka_output")
	if err != nil || removed {
		t.Errorf("second RemoveOutput = %v, %v; want false, nil", removed, err)
	}
}

func TestRemoveOutputRefusesDangerousPaths(t *testing.T) {
	w, fs := newTestWorkspace("linux", nil)
	_ = afero.WriteFile(fs, "/proj/file.txt", []byte("x"), 0o644)

	for _, dir := range []string{"", ".", "/"} {
		if _, err := w.RemoveOutput(dir); err == nil {
			t.Errorf("RemoveOutput(%q) should fail", dir)
		}
	}
	if _, err := w.RemoveOutput("/proj/file.txt"); err == nil {
		t.Error("RemoveOutput on a file should fail")
	}
}
