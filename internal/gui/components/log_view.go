package components

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// LogView is the scrollable build log. Mutating methods must run on the
// Fyne main goroutine; Lines may be called from anywhere.
type LogView struct {
	mu    sync.RWMutex
	lines []string
	list  *widget.List
}

func NewLogView() *LogView {
	lv := &LogView{}
	lv.list = widget.NewList(
		lv.length,
		func() fyne.CanvasObject {
			label := widget.NewLabel("")
			label.TextStyle = fyne.TextStyle{Monospace: true}
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(lv.line(id))
		},
	)
	return lv
}

func (lv *LogView) GetContainer() fyne.CanvasObject {
	return lv.list
}

func (lv *LogView) length() int {
	lv.mu.RLock()
	defer lv.mu.RUnlock()
	return len(lv.lines)
}

func (lv *LogView) line(id widget.ListItemID) string {
	lv.mu.RLock()
	defer lv.mu.RUnlock()
	if id < 0 || id >= len(lv.lines) {
		return ""
	}
	return lv.lines[id]
}

// Append adds text to the end of the log. Embedded newlines start new rows.
func (lv *LogView) Append(text string) {
	lv.mu.Lock()
	lv.lines = append(lv.lines, splitRows(text)...)
	lv.mu.Unlock()

	lv.list.Refresh()
	lv.list.ScrollToBottom()
}

// Replace clears the log and writes rows.
func (lv *LogView) Replace(rows []string) {
	lv.mu.Lock()
	lv.lines = lv.lines[:0]
	for _, row := range rows {
		lv.lines = append(lv.lines, splitRows(row)...)
	}
	lv.mu.Unlock()

	lv.list.Refresh()
	lv.list.ScrollToTop()
}

func (lv *LogView) Clear() {
	lv.Replace(nil)
}

// Lines returns a copy of the log rows.
func (lv *LogView) Lines() []string {
	lv.mu.RLock()
	defer lv.mu.RUnlock()
	out := make([]string, len(lv.lines))
	copy(out, lv.lines)
	return out
}

func splitRows(text string) []string {
	return strings.Split(strings.TrimRight(text, "\r\n"), "\n")
}
