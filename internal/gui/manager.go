package gui

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"

	"nuitka-toolkit/internal/gui/components"
	"nuitka-toolkit/internal/logger"
	"nuitka-toolkit/internal/options"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const ErrorPrefix = "[error]"

// Manager owns the widgets of the main window. Methods that touch widgets
// are safe to call from any goroutine; they are marshalled with fyne.Do.
type Manager struct {
	app        fyne.App
	window     fyne.Window
	logger     logger.Logger
	isShutdown atomic.Bool

	form    *components.OptionsForm
	plugins *components.PluginGrid
	actions *components.ActionBar
	logView *components.LogView
	status  *components.StatusBar
}

func NewManager(app fyne.App, window fyne.Window, log logger.Logger) *Manager {
	m := &Manager{
		app:     app,
		window:  window,
		logger:  log,
		form:    components.NewOptionsForm(),
		plugins: components.NewPluginGrid(),
		actions: components.NewActionBar(),
		logView: components.NewLogView(),
		status:  components.NewStatusBar(),
	}

	log.Info("GUIManager", "initialized", map[string]interface{}{
		"plugin_columns": components.PluginColumns,
	})
	return m
}

func (m *Manager) GetMainContainer() fyne.CanvasObject {
	top := container.NewVBox(
		m.form.GetContainer(),
		widget.NewSeparator(),
		m.plugins.GetContainer(),
		widget.NewSeparator(),
		m.actions.GetContainer(),
	)

	return container.NewBorder(
		top,
		m.status.GetContainer(),
		nil, nil,
		m.logView.GetContainer(),
	)
}

func (m *Manager) GetWindow() fyne.Window {
	return m.window
}

func (m *Manager) SetOptionChangeHandler(handler components.OptionChangeHandler) {
	wrapped := func(key string, value interface{}) {
		m.logger.Debug("GUIManager", "option change", map[string]interface{}{
			"key":   key,
			"value": value,
		})
		handler(key, value)
	}
	m.form.SetOptionChangeHandler(wrapped)
	m.actions.SetOptionChangeHandler(wrapped)
}

func (m *Manager) SetModeChangeHandler(handler func(options.Mode)) {
	m.form.SetModeChangeHandler(handler)
}

func (m *Manager) SetPluginChangeHandler(handler components.PluginChangeHandler) {
	m.plugins.SetPluginChangeHandler(handler)
}

func (m *Manager) SetStartHandler(handler func())        { m.actions.SetStartHandler(handler) }
func (m *Manager) SetCancelHandler(handler func())       { m.actions.SetCancelHandler(handler) }
func (m *Manager) SetDumpProfileHandler(handler func())  { m.actions.SetDumpHandler(handler) }
func (m *Manager) SetLoadProfileHandler(handler func())  { m.actions.SetLoadHandler(handler) }
func (m *Manager) SetCacheInfoHandler(handler func())    { m.actions.SetCacheHandler(handler) }
func (m *Manager) SetBrowseEntryHandler(handler func())  { m.form.SetBrowseHandler(handler) }
func (m *Manager) SetViewOutputHandler(handler func())   { m.form.SetViewOutputHandler(handler) }
func (m *Manager) SetRemoveOutputHandler(handler func()) { m.form.SetRemoveOutputHandler(handler) }

// SyncOptions refreshes every option widget from src.
func (m *Manager) SyncOptions(src components.OptionSource) {
	fyne.Do(func() {
		m.form.Sync(src)
		m.actions.Sync(src)
	})
}

func (m *Manager) SetPlugins(names []string, states map[string]bool) {
	fyne.Do(func() {
		m.plugins.SetPlugins(names, states)
		m.logger.Debug("GUIManager", "plugin grid rebuilt", map[string]interface{}{
			"plugins": len(names),
		})
	})
}

func (m *Manager) SyncPlugins(states map[string]bool) {
	fyne.Do(func() {
		m.plugins.Sync(states)
	})
}

func (m *Manager) SetEntryPoint(path string) {
	fyne.Do(func() {
		m.form.SetEntryPoint(path)
	})
}

// Append implements build.Sink.
func (m *Manager) Append(line string) {
	m.AppendLog(line)
}

func (m *Manager) AppendLog(line string) {
	if m.isShutdown.Load() {
		return
	}
	fyne.Do(func() {
		m.logView.Append(line)
	})
}

func (m *Manager) ReplaceLog(lines []string) {
	fyne.Do(func() {
		m.logView.Replace(lines)
	})
}

func (m *Manager) LogLines() []string {
	return m.logView.Lines()
}

func (m *Manager) SetStatus(status string) {
	fyne.Do(func() {
		m.status.SetStatus(status)
	})
}

func (m *Manager) SetPythonVersion(version string) {
	fyne.Do(func() {
		m.status.SetPython(version)
	})
}

// SetRunning locks the form while a build runs.
func (m *Manager) SetRunning(running bool) {
	fyne.Do(func() {
		m.actions.SetRunning(running)
		m.form.SetEnabled(!running)
		m.plugins.SetEnabled(!running)
		m.status.SetBusy(running)
	})
}

// ShowError writes the failure into the log.
func (m *Manager) ShowError(title string, err error) {
	m.logger.Error("GUIManager", err, map[string]interface{}{
		"title": title,
	})
	m.AppendLog(fmt.Sprintf("%s %s: %v", ErrorPrefix, title, err))
}

// ShowFileSave asks for a destination file. callback gets nil when the user cancels.
func (m *Manager) ShowFileSave(fileName string, extensions []string, callback func(fyne.URIWriteCloser, error)) {
	fyne.Do(func() {
		d := dialog.NewFileSave(callback, m.window)
		d.SetFileName(fileName)
		d.SetFilter(storage.NewExtensionFileFilter(extensions))
		m.startInWorkingDir(d)
		d.Show()
	})
}

// ShowFileOpen asks for a file to read. callback gets nil when the user cancels.
func (m *Manager) ShowFileOpen(extensions []string, callback func(fyne.URIReadCloser, error)) {
	fyne.Do(func() {
		d := dialog.NewFileOpen(callback, m.window)
		if len(extensions) > 0 {
			d.SetFilter(storage.NewExtensionFileFilter(extensions))
		}
		m.startInWorkingDir(d)
		d.Show()
	})
}

func (m *Manager) startInWorkingDir(d *dialog.FileDialog) {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	lister, err := storage.ListerForURI(storage.NewFileURI(wd))
	if err != nil {
		return
	}
	d.SetLocation(lister)
}

// OpenDirectory shows dir in the platform file browser.
func (m *Manager) OpenDirectory(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}
	u, err := url.Parse(storage.NewFileURI(abs).String())
	if err != nil {
		return fmt.Errorf("build file URL for %s: %w", abs, err)
	}
	if err := m.app.OpenURL(u); err != nil {
		return fmt.Errorf("open %s: %w", abs, err)
	}
	return nil
}

func (m *Manager) Shutdown() {
	if m.isShutdown.Swap(true) {
		return
	}
	m.logger.Info("GUIManager", "shutdown initiated", nil)
}
