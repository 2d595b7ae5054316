// Package artifact packages a finished build: a zip archive with a BLAKE3
// checksum, and a shortcut.bat launcher next to the output.
package artifact

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"nuitka-toolkit/internal/build"
	"nuitka-toolkit/internal/command"
	"nuitka-toolkit/internal/logger"
	"nuitka-toolkit/internal/options"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"lukechampine.com/blake3"
)

const ShortcutName = "shortcut.bat"

var ErrNoArtifact = errors.New("build artifact not found")

type Packager struct {
	fs     afero.Fs
	logger logger.Logger
	goos   string
}

func NewPackager(fs afero.Fs, log logger.Logger) *Packager {
	return &Packager{fs: fs, logger: log, goos: runtime.GOOS}
}

// Finalize runs the steps the plan asks for. It implements build.Finalizer.
func (p *Packager) Finalize(ctx context.Context, plan command.Plan, sink build.Sink) error {
	if plan.StartFile {
		shortcut, err := p.WriteShortcut(plan)
		if err != nil {
			return fmt.Errorf("write %s: %w", ShortcutName, err)
		}
		sink.Append(build.MarkerArtifact + " " + shortcut)
	}

	if plan.Compress {
		archive, sum, err := p.Compress(ctx, plan)
		if err != nil {
			return fmt.Errorf("compress output: %w", err)
		}
		sink.Append(fmt.Sprintf("%s %s blake3:%s", build.MarkerArtifact, archive, sum))
	}
	return nil
}

// ExecutableName is the file name of the produced program. An explicit
// --output-filename is used as given, except that Windows always ends in .exe.
func ExecutableName(plan command.Plan, goos string) string {
	if name := plan.OutputFilename; name != "" {
		if goos == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
			return name + ".exe"
		}
		return name
	}
	return plan.Stem() + executableExt(goos)
}

func executableExt(goos string) string {
	if goos == "windows" {
		return ".exe"
	}
	return ".bin"
}

// Path returns the artifact the compiler produces for the plan, relative to
// the output directory: the onefile binary, the standalone .dist folder, or
// the whole output directory for module builds.
func Path(plan command.Plan, goos string) string {
	switch {
	case plan.Onefile:
		return path.Join(plan.OutputDir, ExecutableName(plan, goos))
	case plan.Mode == options.ModeStandalone:
		return path.Join(plan.OutputDir, plan.Stem()+".dist")
	default:
		return plan.OutputDir
	}
}

// WriteShortcut writes a batch file that starts the built program from the
// output directory.
func (p *Packager) WriteShortcut(plan command.Plan) (string, error) {
	exe := ExecutableName(plan, "windows")
	target := exe
	if !plan.Onefile && plan.Mode == options.ModeStandalone {
		target = plan.Stem() + `.dist\` + exe
	}

	content := strings.Join([]string{
		"@echo off",
		`cd /d "%~dp0"`,
		fmt.Sprintf(`start "" "%%~dp0%s" %%*`, target),
		"",
	}, "\r\n")

	dest := filepath.Join(filepath.FromSlash(plan.OutputDir), ShortcutName)
	if err := p.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}
	if err := afero.WriteFile(p.fs, dest, []byte(content), 0o644); err != nil {
		return "", err
	}
	return dest, nil
}

// Compress zips the artifact into <output>/<stem>.zip and writes the hex
// BLAKE3 digest of the archive to <stem>.zip.b3.
func (p *Packager) Compress(ctx context.Context, plan command.Plan) (string, string, error) {
	src := filepath.FromSlash(Path(plan, p.goos))
	info, err := p.fs.Stat(src)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrNoArtifact, src)
	}

	archive := filepath.Join(filepath.FromSlash(plan.OutputDir), plan.Stem()+".zip")
	f, err := p.fs.Create(archive)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	hasher := blake3.New(32, nil)
	zw := zip.NewWriter(io.MultiWriter(f, hasher))

	if info.IsDir() {
		err = p.addDir(ctx, zw, src, archive)
	} else {
		err = p.addFile(zw, src, filepath.Base(src), info)
	}
	if err != nil {
		zw.Close()
		return "", "", err
	}
	if err := zw.Close(); err != nil {
		return "", "", err
	}

	sum := hex.EncodeToString(hasher.Sum(nil))
	line := fmt.Sprintf("%s  %s\n", sum, filepath.Base(archive))
	if err := afero.WriteFile(p.fs, archive+".b3", []byte(line), 0o644); err != nil {
		return "", "", err
	}

	p.logger.Info("Packager", "archive written", map[string]interface{}{
		"archive": archive,
		"blake3":  sum,
	})
	return archive, sum, nil
}

func (p *Packager) addDir(ctx context.Context, zw *zip.Writer, root, archive string) error {
	prefix := filepath.Base(root)
	return afero.Walk(p.fs, root, func(name string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !info.Mode().IsRegular() || name == archive || name == archive+".b3" {
			return nil
		}
		rel, err := filepath.Rel(root, name)
		if err != nil {
			return err
		}
		return p.addFile(zw, name, path.Join(prefix, filepath.ToSlash(rel)), info)
	})
}

func (p *Packager) addFile(zw *zip.Writer, name, entry string, info fs.FileInfo) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = entry
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	src, err := p.fs.Open(name)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(w, src)
	return err
}
