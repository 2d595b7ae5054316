package components

import (
	"runtime"

	"nuitka-toolkit/internal/options"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	modeStandalone = "--standalone"
	modeModule     = "--module"
	toolNoneLabel  = "None"
)

var toolLabels = map[string]string{
	options.BuildToolMingw64: "--mingw64",
	options.BuildToolClang:   "--clang",
	options.BuildToolNone:    toolNoneLabel,
}

// OptionsForm renders the option catalog. Widgets write through the change
// handlers; Sync copies model values back without re-firing them.
type OptionsForm struct {
	container *fyne.Container
	goos      string
	syncing   bool

	entries   map[string]*widget.Entry
	checks    map[string]*widget.Check
	modeRadio *widget.RadioGroup
	toolRadio *widget.RadioGroup

	BrowseButton *widget.Button
	ViewButton   *widget.Button
	RemoveButton *widget.Button

	optionHandler OptionChangeHandler
	modeHandler   func(options.Mode)
	browseHandler func()
	viewHandler   func()
	removeHandler func()
}

func NewOptionsForm() *OptionsForm {
	return newOptionsForm(runtime.GOOS)
}

func newOptionsForm(goos string) *OptionsForm {
	f := &OptionsForm{
		goos:    goos,
		entries: make(map[string]*widget.Entry),
		checks:  make(map[string]*widget.Check),
	}
	f.createComponents()
	f.buildLayout()
	return f
}

func (f *OptionsForm) createComponents() {
	for _, opt := range options.Catalog() {
		if !opt.VisibleOn(f.goos) || opt.Kind == options.KindToggle {
			continue
		}
		switch opt.Key {
		case options.KeyStandalone, options.KeyModule, options.KeyBuildTool,
			options.KeyMingw64, options.KeyClang:
			continue
		}

		key := opt.Key
		if opt.Kind.IsBool() {
			f.checks[key] = widget.NewCheck(opt.Label, func(checked bool) {
				f.emit(key, checked)
			})
			continue
		}
		entry := widget.NewEntry()
		entry.SetPlaceHolder(opt.Label)
		entry.OnChanged = func(text string) {
			f.emit(key, text)
		}
		f.entries[key] = entry
	}

	f.modeRadio = widget.NewRadioGroup([]string{modeStandalone, modeModule}, f.onModeChanged)
	f.modeRadio.Horizontal = true
	f.modeRadio.Required = true

	tools := options.BuildTools()
	labels := make([]string, 0, len(tools))
	for _, tool := range tools {
		labels = append(labels, toolLabels[tool])
	}
	f.toolRadio = widget.NewRadioGroup(labels, f.onToolChanged)
	f.toolRadio.Horizontal = true
	f.toolRadio.Required = true

	f.BrowseButton = widget.NewButton("Browse", func() {
		if f.browseHandler != nil {
			f.browseHandler()
		}
	})
	f.ViewButton = widget.NewButton("View", func() {
		if f.viewHandler != nil {
			f.viewHandler()
		}
	})
	f.RemoveButton = widget.NewButton("Remove", func() {
		if f.removeHandler != nil {
			f.removeHandler()
		}
	})
	f.RemoveButton.Importance = widget.DangerImportance
}

func (f *OptionsForm) buildLayout() {
	entryRow := labeled("Entry Point:", container.NewBorder(nil, nil, nil, f.BrowseButton, f.entries[options.KeyEntryPoint]))

	nameRow := container.NewGridWithColumns(3,
		labeled("Output Name:", f.entries[options.KeyOutputFilename]),
		f.checks[options.KeyOnefile],
		f.entries[options.KeyOnefileTempdir],
	)

	modeItems := []fyne.CanvasObject{f.modeRadio}
	for _, key := range []string{options.KeyWindowsNoConsole, options.KeyMacosNoConsole} {
		if check, ok := f.checks[key]; ok {
			modeItems = append(modeItems, check)
		}
	}
	if icon, ok := f.entries[options.KeyWindowsIcon]; ok {
		modeItems = append(modeItems, icon)
	}
	modeRow := container.NewGridWithColumns(len(modeItems), modeItems...)

	flagsRow := container.NewGridWithColumns(4,
		f.checks[options.KeyNoFollowImports],
		f.checks[options.KeyRemoveOutput],
		f.checks[options.KeyNoPyiFile],
		labeled("--jobs:", f.entries[options.KeyJobs]),
	)

	toolRow := container.NewHBox(
		widget.NewLabel("Build Tool:"),
		f.toolRadio,
		f.checks[options.KeyAssumeYes],
	)

	outputRow := labeled("Output Path:", container.NewBorder(nil, nil, nil,
		container.NewHBox(f.ViewButton, f.RemoveButton),
		f.entries[options.KeyOutputDir],
	))

	f.container = container.NewVBox(
		entryRow,
		nameRow,
		modeRow,
		flagsRow,
		toolRow,
		labeled("--include-package:", f.entries[options.KeyIncludePackage]),
		labeled("--include-module:", f.entries[options.KeyIncludeModule]),
		labeled("Custom Args(,):", f.entries[options.KeyOtherArgs]),
		labeled("Pip Args:", f.entries[options.KeyPipArgs]),
		outputRow,
	)
}

func labeled(label string, obj fyne.CanvasObject) fyne.CanvasObject {
	return container.NewBorder(nil, nil, widget.NewLabel(label), nil, obj)
}

func (f *OptionsForm) GetContainer() *fyne.Container {
	return f.container
}

func (f *OptionsForm) SetOptionChangeHandler(handler OptionChangeHandler) {
	f.optionHandler = handler
}

func (f *OptionsForm) SetModeChangeHandler(handler func(options.Mode)) {
	f.modeHandler = handler
}

func (f *OptionsForm) SetBrowseHandler(handler func()) {
	f.browseHandler = handler
}

func (f *OptionsForm) SetViewOutputHandler(handler func()) {
	f.viewHandler = handler
}

func (f *OptionsForm) SetRemoveOutputHandler(handler func()) {
	f.removeHandler = handler
}

// SetEntryPoint fills the entry point field as if the user typed it.
func (f *OptionsForm) SetEntryPoint(path string) {
	f.entries[options.KeyEntryPoint].SetText(path)
}

// Sync copies the model into the widgets.
func (f *OptionsForm) Sync(src OptionSource) {
	f.syncing = true
	defer func() { f.syncing = false }()

	for key, entry := range f.entries {
		entry.SetText(src.String(key))
	}
	for key, check := range f.checks {
		check.SetChecked(src.Bool(key))
	}

	if src.Bool(options.KeyModule) {
		f.modeRadio.SetSelected(modeModule)
	} else {
		f.modeRadio.SetSelected(modeStandalone)
	}

	tool := src.String(options.KeyBuildTool)
	label, ok := toolLabels[tool]
	if !ok {
		label = toolNoneLabel
	}
	f.toolRadio.SetSelected(label)
}

func (f *OptionsForm) SetEnabled(enabled bool) {
	for _, entry := range f.entries {
		setDisabled(entry, !enabled)
	}
	for _, check := range f.checks {
		setDisabled(check, !enabled)
	}
	setDisabled(f.modeRadio, !enabled)
	setDisabled(f.toolRadio, !enabled)
	setDisabled(f.BrowseButton, !enabled)
	setDisabled(f.RemoveButton, !enabled)
}

func (f *OptionsForm) emit(key string, value interface{}) {
	if f.syncing || f.optionHandler == nil {
		return
	}
	f.optionHandler(key, value)
}

func (f *OptionsForm) onModeChanged(selected string) {
	if f.syncing || f.modeHandler == nil || selected == "" {
		return
	}
	if selected == modeModule {
		f.modeHandler(options.ModeModule)
		return
	}
	f.modeHandler(options.ModeStandalone)
}

func (f *OptionsForm) onToolChanged(selected string) {
	if selected == "" {
		return
	}
	for tool, label := range toolLabels {
		if label == selected {
			f.emit(options.KeyBuildTool, tool)
			return
		}
	}
}

type disableable interface {
	Enable()
	Disable()
}

func setDisabled(w disableable, disabled bool) {
	if disabled {
		w.Disable()
		return
	}
	w.Enable()
}
