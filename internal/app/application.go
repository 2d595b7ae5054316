package app

import (
	"context"
	"strings"

	"nuitka-toolkit/internal/artifact"
	"nuitka-toolkit/internal/build"
	"nuitka-toolkit/internal/command"
	"nuitka-toolkit/internal/events"
	"nuitka-toolkit/internal/gui"
	"nuitka-toolkit/internal/logger"
	"nuitka-toolkit/internal/options"
	"nuitka-toolkit/internal/plugins"
	"nuitka-toolkit/internal/settings"
	"nuitka-toolkit/internal/toolchain"
	"nuitka-toolkit/internal/workspace"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/afero"
)

const (
	AppID           = "io.github.nuitka-toolkit"
	AppTitle        = "Nuitka Toolkit"
	eventBufferSize = 64
)

type Application struct {
	fyneApp    fyne.App
	window     fyne.Window
	settings   *settings.Settings
	logger     logger.Logger
	model      *options.Model
	session    *build.Session
	bus        *events.Bus
	guiManager *gui.Manager
	handlers   *Handlers
	lifecycle  *Lifecycle
}

func NewApplication(cfg *settings.Settings, log logger.Logger) (*Application, error) {
	return newApplication(app.NewWithID(AppID), cfg, log)
}

func newApplication(fyneApp fyne.App, cfg *settings.Settings, log logger.Logger) (*Application, error) {
	window := fyneApp.NewWindow(AppTitle)
	window.Resize(fyne.NewSize(cfg.WindowWidth, cfg.WindowHeight))
	window.CenterOnScreen()
	window.SetMaster()

	log.Info("Application", "starting application", map[string]interface{}{
		"window_width":  cfg.WindowWidth,
		"window_height": cfg.WindowHeight,
	})

	model := options.NewModel(plugins.Names(plugins.Fallback()))
	if cfg.OutputDir != "" {
		if err := model.Set(options.KeyOutputDir, cfg.OutputDir); err != nil {
			return nil, err
		}
	}

	fs := afero.NewOsFs()
	lifecycle := NewLifecycle(log)
	bus := events.NewBus(eventBufferSize, log)
	session := build.NewSession(log, bus)
	session.SetFinalizer(artifact.NewPackager(fs, log))
	guiManager := gui.NewManager(fyneApp, window, log)

	lifecycle.Register("event-bus", bus)
	lifecycle.Register("build-session", session)
	lifecycle.Register("gui", guiManager)

	python := toolchain.NormalizePath(cfg.Python)
	if python == "" {
		python = "python"
	}

	a := &Application{
		fyneApp:    fyneApp,
		window:     window,
		settings:   cfg,
		logger:     log,
		model:      model,
		session:    session,
		bus:        bus,
		guiManager: guiManager,
		lifecycle:  lifecycle,
		handlers: NewHandlers(HandlerDeps{
			Context:   lifecycle.Context(),
			Model:     model,
			Session:   session,
			Workspace: workspace.New(fs),
			GUI:       guiManager,
			Logger:    log,
			Assembler: command.Assembler{Python: python, PythonVersion: "unknown"},
		}),
	}

	a.setupHandlers()
	a.setupMenus()
	a.subscribeBuildEvents()

	log.Info("Application", "initialization complete", nil)
	return a, nil
}

func (a *Application) setupHandlers() {
	h := a.handlers
	a.guiManager.SetOptionChangeHandler(h.HandleOptionChange)
	a.guiManager.SetModeChangeHandler(h.HandleModeChange)
	a.guiManager.SetPluginChangeHandler(h.HandlePluginChange)
	a.guiManager.SetStartHandler(h.HandleStart)
	a.guiManager.SetCancelHandler(h.HandleCancel)
	a.guiManager.SetDumpProfileHandler(h.HandleDumpProfile)
	a.guiManager.SetLoadProfileHandler(h.HandleLoadProfile)
	a.guiManager.SetCacheInfoHandler(h.HandleCacheInfo)
	a.guiManager.SetBrowseEntryHandler(h.HandleBrowseEntry)
	a.guiManager.SetViewOutputHandler(h.HandleViewOutput)
	a.guiManager.SetRemoveOutputHandler(h.HandleRemoveOutput)
}

func (a *Application) subscribeBuildEvents() {
	status := events.NewHandler("status-bar", a.onBuildEvent)
	for _, eventType := range []string{build.EventStarted, build.EventFinished, build.EventFailed, build.EventCancelled} {
		a.bus.Subscribe(eventType, status)
	}
}

func (a *Application) onBuildEvent(event events.Event) {
	a.guiManager.SetStatus(statusText(event))
}

func statusText(event events.Event) string {
	switch event.Type {
	case build.EventStarted:
		return "Building..."
	case build.EventFinished:
		if code, ok := event.Data["exit_code"].(int); ok && code != 0 {
			return "Build failed"
		}
		return "Build finished"
	case build.EventFailed:
		return "Build error"
	case build.EventCancelled:
		return "Build cancelled"
	}
	return "Ready"
}

func (a *Application) Run() error {
	a.window.SetCloseIntercept(func() {
		a.logger.Info("Application", "shutdown requested", nil)
		a.lifecycle.Shutdown()
		a.window.Close()
	})
	a.lifecycle.ListenForSignals(func() {
		fyne.Do(a.fyneApp.Quit)
	})

	a.window.SetContent(a.guiManager.GetMainContainer())
	a.handlers.SyncView()
	a.handlers.RefreshCommand()
	a.window.Show()

	go a.loadEnvironment(a.lifecycle.Context())

	a.logger.Info("Application", "GUI displayed", nil)
	a.fyneApp.Run()

	a.lifecycle.Shutdown()
	return nil
}

// loadEnvironment detects the interpreter and the compiler's plugins, then
// rebuilds the plugin grid and the command.
func (a *Application) loadEnvironment(ctx context.Context) {
	interp, err := toolchain.Detect(ctx, a.settings.Python)
	if err != nil {
		a.guiManager.ShowError("Python", err)
	}
	if interp.Path != "" {
		a.handlers.SetInterpreter(interp)
	}
	a.guiManager.SetPythonVersion(firstLine(interp.Version))

	registry := plugins.NewRegistry(a.handlers.Python(), a.logger)
	list, err := registry.Load(ctx)
	if err != nil {
		a.guiManager.ShowError("Plugin list", err)
	}
	if ctx.Err() != nil {
		return
	}

	a.model.SetPluginNames(plugins.Names(list))
	a.guiManager.SetPlugins(a.model.Plugins(), a.model.PluginStates())
	a.handlers.RefreshCommand()
}

func firstLine(s string) string {
	if s == "" {
		return "unknown"
	}
	line, _, _ := strings.Cut(s, "\n")
	return line
}
