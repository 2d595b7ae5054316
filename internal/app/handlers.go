package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"nuitka-toolkit/internal/build"
	"nuitka-toolkit/internal/command"
	"nuitka-toolkit/internal/gui"
	"nuitka-toolkit/internal/logger"
	"nuitka-toolkit/internal/options"
	"nuitka-toolkit/internal/profile"
	"nuitka-toolkit/internal/toolchain"
	"nuitka-toolkit/internal/workspace"

	"fyne.io/fyne/v2"
)

const defaultProfileName = "nuitka_config.json"

// Handlers turns UI actions into model, session and workspace calls.
// Every failure ends up as a line in the log.
type Handlers struct {
	ctx        context.Context
	model      *options.Model
	session    *build.Session
	workspace  *workspace.Workspace
	guiManager *gui.Manager
	logger     logger.Logger

	mu        sync.Mutex
	assembler command.Assembler
	plan      command.Plan
}

type HandlerDeps struct {
	Context   context.Context
	Model     *options.Model
	Session   *build.Session
	Workspace *workspace.Workspace
	GUI       *gui.Manager
	Logger    logger.Logger
	Assembler command.Assembler
}

func NewHandlers(deps HandlerDeps) *Handlers {
	return &Handlers{
		ctx:        deps.Context,
		model:      deps.Model,
		session:    deps.Session,
		workspace:  deps.Workspace,
		guiManager: deps.GUI,
		logger:     deps.Logger,
		assembler:  deps.Assembler,
	}
}

// SetInterpreter switches the interpreter used for new commands.
func (h *Handlers) SetInterpreter(interp toolchain.Interpreter) {
	h.mu.Lock()
	h.assembler.Python = interp.Path
	h.assembler.PythonVersion = interp.Version
	h.mu.Unlock()
}

// Plan returns the last assembled command.
func (h *Handlers) Plan() command.Plan {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.plan
}

func (h *Handlers) assemble() (command.Plan, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	plan, err := h.assembler.Assemble(h.model)
	if err != nil {
		return command.Plan{}, err
	}
	h.plan = plan
	return plan, nil
}

// RefreshCommand rebuilds the command and shows it in place of the log.
func (h *Handlers) RefreshCommand() {
	plan, err := h.assemble()
	if err != nil {
		h.guiManager.ShowError("Command", err)
		return
	}
	h.guiManager.ReplaceLog(plan.Lines())
}

func (h *Handlers) HandleOptionChange(key string, value interface{}) {
	if err := h.model.Set(key, value); err != nil {
		h.guiManager.ShowError("Option "+key, err)
		return
	}
	h.RefreshCommand()
}

func (h *Handlers) HandleModeChange(mode options.Mode) {
	h.model.SetMode(mode)
	h.RefreshCommand()
}

func (h *Handlers) HandlePluginChange(name string, enabled bool) {
	h.model.SetPlugin(name, enabled)
	h.RefreshCommand()
}

func (h *Handlers) HandleStart() {
	if h.session.Running() {
		h.guiManager.ShowError("Start", build.ErrBuildRunning)
		return
	}

	plan, err := h.assemble()
	if err != nil {
		h.guiManager.ShowError("Command", err)
		return
	}
	h.guiManager.ReplaceLog(plan.Lines())

	runID, err := h.session.Start(h.ctx, plan, h.guiManager, func(*build.Result) {
		h.guiManager.SetRunning(false)
	})
	if err != nil {
		h.guiManager.ShowError("Start", err)
		return
	}
	h.guiManager.SetRunning(true)
	h.logger.Info("Handlers", "build requested", map[string]interface{}{
		"run_id": runID,
	})
}

// HandleCancel asks the running build to stop. The compiler is terminated
// when it prints its next line.
func (h *Handlers) HandleCancel() {
	if !h.session.Running() {
		return
	}
	h.session.Stop()
	h.guiManager.SetStatus("Stopping... (on next output line)")
}

func (h *Handlers) outputDir() string {
	if dir := h.model.String(options.KeyOutputDir); dir != "" {
		return dir
	}
	return options.DefaultOutputDir
}

func (h *Handlers) HandleViewOutput() {
	dir := h.outputDir()
	if !h.workspace.IsDir(dir) {
		h.guiManager.AppendLog("Output folder does not exist: " + dir)
		return
	}
	if err := h.guiManager.OpenDirectory(dir); err != nil {
		h.guiManager.ShowError("View output", err)
	}
}

func (h *Handlers) HandleRemoveOutput() {
	if h.session.Running() {
		h.guiManager.ShowError("Remove output", build.ErrBuildRunning)
		return
	}

	dir := h.outputDir()
	removed, err := h.workspace.RemoveOutput(dir)
	switch {
	case err != nil:
		h.guiManager.ShowError("Remove output", err)
	case removed:
		h.guiManager.AppendLog("Output folder removed: " + dir)
	default:
		h.guiManager.AppendLog("Output folder does not exist: " + dir)
	}
}

func (h *Handlers) HandleBrowseEntry() {
	h.guiManager.ShowFileOpen([]string{".py", ".pyw"}, func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			h.guiManager.ShowError("Entry point", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		h.guiManager.SetEntryPoint(relativeToWorkdir(path))
	})
}

func relativeToWorkdir(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

func (h *Handlers) HandleDumpProfile() {
	h.guiManager.ShowFileSave(defaultProfileName, profile.Extensions, func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			h.guiManager.ShowError("Save config", err)
			return
		}
		if writer == nil {
			return
		}

		if err := h.writeProfile(writer); err != nil {
			h.guiManager.ShowError("Save config", err)
			return
		}
		h.guiManager.AppendLog("Config saved: " + writer.URI().Path())
	})
}

func (h *Handlers) writeProfile(writer fyne.URIWriteCloser) error {
	format, err := profile.FormatFor(writer.URI().Name())
	if err != nil {
		writer.Close()
		return err
	}
	if err := profile.Encode(writer, h.model, format); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

func (h *Handlers) HandleLoadProfile() {
	h.guiManager.ShowFileOpen(profile.Extensions, func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			h.guiManager.ShowError("Load config", err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		path := reader.URI().Path()
		loadErr := h.readProfile(reader)

		h.SyncView()
		h.RefreshCommand()
		if loadErr != nil {
			h.guiManager.ShowError("Load config", fmt.Errorf("load profile %s: %w", path, loadErr))
			return
		}
		h.guiManager.AppendLog("Config loaded: " + path)
	})
}

func (h *Handlers) readProfile(reader fyne.URIReadCloser) error {
	format, err := profile.FormatFor(reader.URI().Name())
	if err != nil {
		return err
	}
	return profile.Read(reader, format, h.model)
}

// SyncView copies the whole model into the widgets.
func (h *Handlers) SyncView() {
	h.guiManager.SyncOptions(h.model)
	h.guiManager.SetPlugins(h.model.Plugins(), h.model.PluginStates())
}

// HandleCacheInfo reports the compiler cache. Sizing a large cache is slow,
// so it runs off the UI goroutine.
func (h *Handlers) HandleCacheInfo() {
	go h.reportCache()
}

func (h *Handlers) reportCache() {
	dir, err := h.workspace.CacheDir()
	if err != nil {
		h.guiManager.ShowError("Cache", err)
		return
	}
	h.guiManager.AppendLog(workspace.CacheEnv + ": " + dir)

	if !h.workspace.IsDir(dir) {
		h.guiManager.AppendLog("Cache folder does not exist yet")
		return
	}

	size, err := h.workspace.DirSize(dir)
	if err != nil {
		h.guiManager.ShowError("Cache", err)
	} else {
		h.guiManager.AppendLog("Size: " + workspace.FormatGB(size))
	}

	if err := h.guiManager.OpenDirectory(dir); err != nil {
		h.guiManager.ShowError("Cache", err)
	}

	toolchains, err := h.workspace.CachedToolchains(dir)
	if err != nil {
		h.guiManager.ShowError("Cache", err)
		return
	}
	h.guiManager.AppendLog("Cached toolchains (mingw64):")
	if len(toolchains) == 0 {
		h.guiManager.AppendLog("  none")
	}
	for _, tc := range toolchains {
		h.guiManager.AppendLog("  " + tc)
	}
}

// Python is the interpreter new commands start with.
func (h *Handlers) Python() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.assembler.Python
}
