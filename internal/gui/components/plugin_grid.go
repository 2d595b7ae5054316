package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const PluginColumns = 6

// PluginGrid shows one check per compiler plugin, PluginColumns per row.
type PluginGrid struct {
	container *fyne.Container
	grid      *fyne.Container
	title     *widget.Label
	checks    map[string]*widget.Check
	order     []string
	syncing   bool
	handler   PluginChangeHandler
}

func NewPluginGrid() *PluginGrid {
	pg := &PluginGrid{
		grid:   container.NewGridWithColumns(PluginColumns),
		title:  widget.NewLabelWithStyle("Plugins (loading...)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		checks: make(map[string]*widget.Check),
	}
	pg.container = container.NewVBox(pg.title, pg.grid)
	return pg
}

func (pg *PluginGrid) GetContainer() *fyne.Container {
	return pg.container
}

func (pg *PluginGrid) SetPluginChangeHandler(handler PluginChangeHandler) {
	pg.handler = handler
}

// SetPlugins rebuilds the grid for names, checking those enabled in states.
func (pg *PluginGrid) SetPlugins(names []string, states map[string]bool) {
	pg.syncing = true
	defer func() { pg.syncing = false }()

	pg.checks = make(map[string]*widget.Check, len(names))
	pg.order = append(pg.order[:0], names...)
	objects := make([]fyne.CanvasObject, 0, len(names))
	for _, name := range names {
		name := name
		check := widget.NewCheck(name, func(checked bool) {
			if pg.syncing || pg.handler == nil {
				return
			}
			pg.handler(name, checked)
		})
		check.SetChecked(states[name])
		pg.checks[name] = check
		objects = append(objects, check)
	}

	pg.grid.Objects = objects
	pg.grid.Refresh()
	pg.title.SetText("Plugins")
}

// Sync updates check states without firing the change handler.
func (pg *PluginGrid) Sync(states map[string]bool) {
	pg.syncing = true
	defer func() { pg.syncing = false }()
	for name, check := range pg.checks {
		check.SetChecked(states[name])
	}
}

func (pg *PluginGrid) Names() []string {
	out := make([]string, len(pg.order))
	copy(out, pg.order)
	return out
}

func (pg *PluginGrid) Check(name string) (*widget.Check, bool) {
	check, ok := pg.checks[name]
	return check, ok
}

func (pg *PluginGrid) SetEnabled(enabled bool) {
	for _, check := range pg.checks {
		setDisabled(check, !enabled)
	}
}
