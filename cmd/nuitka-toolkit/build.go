package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"nuitka-toolkit/internal/artifact"
	"nuitka-toolkit/internal/build"
	"nuitka-toolkit/internal/command"
	"nuitka-toolkit/internal/options"
	"nuitka-toolkit/internal/profile"
	"nuitka-toolkit/internal/shutdown"
	"nuitka-toolkit/internal/toolchain"

	"github.com/gookit/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const exitCancelled = 130

func newBuildCmd(c *cli) *cobra.Command {
	var (
		profilePath string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build from a saved profile without the GUI",
		Example: `  nuitka-toolkit build --profile nuitka_config.json
  nuitka-toolkit build --profile release.yaml --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), cmd.OutOrStdout(), profilePath, dryRun)
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "profile written by dump_config (.json, .yaml)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the commands without running them")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

func (c *cli) runBuild(ctx context.Context, out io.Writer, profilePath string, dryRun bool) error {
	fs := afero.NewOsFs()

	model := options.NewModel(nil)
	if err := model.Set(options.KeyOutputDir, c.settings.OutputDir); err != nil {
		return err
	}
	if err := profile.Load(fs, profilePath, model); err != nil {
		return err
	}

	plan, err := c.assembler(ctx).Assemble(model)
	if err != nil {
		return fmt.Errorf("assemble command: %w", err)
	}

	sink := newColorSink(out)
	for _, line := range plan.Lines() {
		sink.Append(line)
	}
	if dryRun {
		return nil
	}

	sm := shutdown.NewManager(c.logger)
	session := build.NewSession(c.logger, nil)
	session.SetFinalizer(artifact.NewPackager(fs, c.logger))
	sm.Register("build-session", session)
	sm.Listen(nil)
	defer sm.Shutdown()

	result, err := session.Run(sm.Context(), plan, sink)
	if err != nil {
		return err
	}
	if code := exitCode(result); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// exitCode maps a build result to the process exit status. Interrupted
// builds, by Stop or by a signal, exit with exitCancelled.
func exitCode(result *build.Result) int {
	switch {
	case result.Cancelled, errors.Is(result.Err, context.Canceled):
		return exitCancelled
	case result.Err != nil:
		return 1
	}
	return result.ExitCode
}

// assembler resolves the interpreter. Detection failures are logged and the
// command falls back to "python" so the compiler reports the real error.
func (c *cli) assembler(ctx context.Context) command.Assembler {
	interp, err := toolchain.Detect(ctx, c.settings.Python)
	if err != nil {
		c.logger.Warning("BuildCommand", "python detection failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if interp.Path == "" {
		interp.Path = "python"
	}
	if interp.Version == "" {
		interp.Version = "unknown"
	}
	return command.Assembler{Python: interp.Path, PythonVersion: interp.Version}
}

// colorSink prints output lines, highlighting the session's own markers.
type colorSink struct {
	out io.Writer
}

func newColorSink(out io.Writer) *colorSink {
	return &colorSink{out: out}
}

func (s *colorSink) Append(line string) {
	fmt.Fprintln(s.out, colorize(line))
}

func colorize(line string) string {
	switch {
	case strings.HasPrefix(line, build.MarkerError):
		return color.Danger.Sprint(line)
	case strings.HasPrefix(line, build.MarkerCancelled):
		return color.Warn.Sprint(line)
	case strings.HasPrefix(line, build.MarkerFinished), strings.HasPrefix(line, build.MarkerArtifact):
		return color.Success.Sprint(line)
	case build.IsMarker(line), strings.HasPrefix(line, "["):
		return color.Cyan.Sprint(line)
	}
	return line
}
