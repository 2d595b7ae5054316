// Package workspace handles the directories a build touches: the output
// directory and the compiler's download cache.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/spf13/afero"
)

// CacheEnv overrides the cache location, as it does for the compiler itself.
const CacheEnv = "NUITKA_CACHE_DIR"

type Workspace struct {
	fs           afero.Fs
	goos         string
	getenv       func(string) string
	userCacheDir func() (string, error)
}

func New(fs afero.Fs) *Workspace {
	return &Workspace{
		fs:           fs,
		goos:         runtime.GOOS,
		getenv:       os.Getenv,
		userCacheDir: os.UserCacheDir,
	}
}

// CacheDir returns the directory the compiler caches downloads and objects in.
func (w *Workspace) CacheDir() (string, error) {
	if dir := w.getenv(CacheEnv); dir != "" {
		return filepath.Abs(dir)
	}

	base, err := w.userCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate user cache dir: %w", err)
	}
	if w.goos == "windows" {
		return filepath.Join(base, "Nuitka", "Nuitka", "Cache"), nil
	}
	return filepath.Join(base, "Nuitka"), nil
}

// DirSize sums the size of every regular file below dir.
func (w *Workspace) DirSize(dir string) (int64, error) {
	var size int64
	err := afero.Walk(w.fs, dir, func(_ string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			size += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("measure %s: %w", dir, err)
	}
	return size, nil
}

// FormatGB renders a byte count the way the cache report shows it.
func FormatGB(size int64) string {
	return fmt.Sprintf("%.2f GB", float64(size)/(1<<30))
}

// CachedToolchains lists C compiler toolchains the compiler has downloaded
// into its cache, e.g. <cache>/downloads/gcc/x86_64/14.2.0posix-19.1.1-12.0.0-msvcrt-r2.
func (w *Workspace) CachedToolchains(cacheDir string) ([]string, error) {
	pattern := filepath.Join(cacheDir, "downloads", "gcc", "*", "*")
	matches, err := afero.Glob(w.fs, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan toolchains: %w", err)
	}

	var dirs []string
	for _, m := range matches {
		if ok, _ := afero.IsDir(w.fs, m); ok {
			dirs = append(dirs, m)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// IsDir reports whether path exists and is a directory.
func (w *Workspace) IsDir(path string) bool {
	ok, err := afero.IsDir(w.fs, path)
	return err == nil && ok
}

// RemoveOutput deletes dir recursively. It reports false when there was
// nothing to remove.
func (w *Workspace) RemoveOutput(dir string) (bool, error) {
	if dir == "" || filepath.Clean(dir) == "." || filepath.Clean(dir) == string(filepath.Separator) {
		return false, fmt.Errorf("refusing to remove %q", dir)
	}

	info, err := w.fs.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%s is not a directory", dir)
	}
	if err := w.fs.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("remove %s: %w", dir, err)
	}
	return true, nil
}
