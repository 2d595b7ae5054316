package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	pythonLabel *widget.Label
	activity    *widget.ProgressBarInfinite
}

func NewStatusBar() *StatusBar {
	statusLabel := widget.NewLabel("Ready")
	pythonLabel := widget.NewLabel("Python: detecting...")
	activity := widget.NewProgressBarInfinite()
	activity.Stop()
	activity.Hide()

	right := container.NewHBox(
		activity,
		widget.NewSeparator(),
		pythonLabel,
	)

	return &StatusBar{
		container:   container.NewBorder(nil, nil, statusLabel, right),
		statusLabel: statusLabel,
		pythonLabel: pythonLabel,
		activity:    activity,
	}
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}

func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) Status() string {
	return sb.statusLabel.Text
}

func (sb *StatusBar) SetPython(version string) {
	sb.pythonLabel.SetText("Python: " + version)
}

func (sb *StatusBar) SetBusy(busy bool) {
	if busy {
		sb.activity.Show()
		sb.activity.Start()
		return
	}
	sb.activity.Stop()
	sb.activity.Hide()
}
