package components

import (
	"nuitka-toolkit/internal/options"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type ActionBar struct {
	container *fyne.Container

	StartButton    *widget.Button
	CancelButton   *widget.Button
	CompressCheck  *widget.Check
	StartFileCheck *widget.Check
	DumpButton     *widget.Button
	LoadButton     *widget.Button
	CacheButton    *widget.Button

	syncing       bool
	startHandler  func()
	cancelHandler func()
	dumpHandler   func()
	loadHandler   func()
	cacheHandler  func()
	optionHandler OptionChangeHandler
}

func NewActionBar() *ActionBar {
	ab := &ActionBar{}
	ab.createComponents()
	ab.container = container.NewHBox(
		ab.StartButton,
		ab.CancelButton,
		widget.NewSeparator(),
		ab.CompressCheck,
		ab.StartFileCheck,
		widget.NewSeparator(),
		ab.DumpButton,
		ab.LoadButton,
		ab.CacheButton,
	)
	return ab
}

func (ab *ActionBar) createComponents() {
	ab.StartButton = widget.NewButton("Start", func() { call(ab.startHandler) })
	ab.StartButton.Importance = widget.HighImportance

	ab.CancelButton = widget.NewButton("Cancel", func() { call(ab.cancelHandler) })
	ab.CancelButton.Disable()

	ab.CompressCheck = widget.NewCheck("Compress", func(checked bool) {
		ab.emit(options.KeyCompress, checked)
	})
	ab.StartFileCheck = widget.NewCheck("shortcut.bat", func(checked bool) {
		ab.emit(options.KeyStartFile, checked)
	})

	ab.DumpButton = widget.NewButton("dump_config", func() { call(ab.dumpHandler) })
	ab.LoadButton = widget.NewButton("load_config", func() { call(ab.loadHandler) })
	ab.CacheButton = widget.NewButton("nuitka_cache", func() { call(ab.cacheHandler) })
}

func call(handler func()) {
	if handler != nil {
		handler()
	}
}

func (ab *ActionBar) emit(key string, value bool) {
	if ab.syncing || ab.optionHandler == nil {
		return
	}
	ab.optionHandler(key, value)
}

func (ab *ActionBar) GetContainer() *fyne.Container {
	return ab.container
}

func (ab *ActionBar) SetStartHandler(handler func())  { ab.startHandler = handler }
func (ab *ActionBar) SetCancelHandler(handler func()) { ab.cancelHandler = handler }
func (ab *ActionBar) SetDumpHandler(handler func())   { ab.dumpHandler = handler }
func (ab *ActionBar) SetLoadHandler(handler func())   { ab.loadHandler = handler }
func (ab *ActionBar) SetCacheHandler(handler func())  { ab.cacheHandler = handler }

func (ab *ActionBar) SetOptionChangeHandler(handler OptionChangeHandler) {
	ab.optionHandler = handler
}

func (ab *ActionBar) Sync(src OptionSource) {
	ab.syncing = true
	defer func() { ab.syncing = false }()
	ab.CompressCheck.SetChecked(src.Bool(options.KeyCompress))
	ab.StartFileCheck.SetChecked(src.Bool(options.KeyStartFile))
}

// SetRunning swaps Start and Cancel availability.
func (ab *ActionBar) SetRunning(running bool) {
	setDisabled(ab.StartButton, running)
	setDisabled(ab.LoadButton, running)
	setDisabled(ab.CompressCheck, running)
	setDisabled(ab.StartFileCheck, running)
	setDisabled(ab.CancelButton, !running)
}
