package app

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
)

func (a *Application) setupMenus() {
	h := a.handlers

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Load Config...", h.HandleLoadProfile),
		fyne.NewMenuItem("Save Config...", h.HandleDumpProfile),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			a.lifecycle.Shutdown()
			a.fyneApp.Quit()
		}),
	)

	buildMenu := fyne.NewMenu("Build",
		fyne.NewMenuItem("Start", h.HandleStart),
		fyne.NewMenuItem("Cancel", h.HandleCancel),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Copy Command", a.copyCommand),
		fyne.NewMenuItem("View Output", h.HandleViewOutput),
		fyne.NewMenuItem("Remove Output", h.HandleRemoveOutput),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Nuitka Cache", h.HandleCacheInfo),
		fyne.NewMenuItem("Environment", a.showEnvironment),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, buildMenu, toolsMenu))
}

// copyCommand puts the current compile command on the clipboard.
func (a *Application) copyCommand() {
	plan := a.handlers.Plan()
	a.window.Clipboard().SetContent(strings.Join(plan.Compile, " "))
	a.guiManager.SetStatus("Command copied")
}

func (a *Application) showEnvironment() {
	dialog.ShowInformation("Environment", a.environmentReport(), a.window)
}

func (a *Application) environmentReport() string {
	plan := a.handlers.Plan()
	return fmt.Sprintf("Python: %s\nVersion: %s\nPlugins: %d (%d enabled)\nOutput: %s",
		a.handlers.Python(),
		firstLine(plan.PythonVersion),
		len(a.model.Plugins()),
		len(a.model.EnabledPlugins()),
		plan.OutputDir,
	)
}
