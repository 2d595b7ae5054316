package components

import (
	"reflect"
	"testing"

	"nuitka-toolkit/internal/options"

	"fyne.io/fyne/v2/test"
)

type change struct {
	key   string
	value interface{}
}

func TestOptionsFormEmitsChanges(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	form := newOptionsForm("linux")
	var got []change
	form.SetOptionChangeHandler(func(key string, value interface{}) {
		got = append(got, change{key, value})
	})

	test.Tap(form.checks[options.KeyOnefile])
	form.entries[options.KeyJobs].SetText("4")
	form.toolRadio.SetSelected("--clang")

	want := []change{
		{options.KeyOnefile, true},
		{options.KeyJobs, "4"},
		{options.KeyBuildTool, options.BuildToolClang},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("changes = %v, want %v", got, want)
	}
}

func TestOptionsFormSyncDoesNotEmit(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	m := options.NewModel(nil)
	if err := m.Set(options.KeyJobs, "8"); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(options.KeyBuildTool, options.BuildToolMingw64); err != nil {
		t.Fatal(err)
	}
	m.SetMode(options.ModeModule)

	form := newOptionsForm("linux")
	calls := 0
	form.SetOptionChangeHandler(func(string, interface{}) { calls++ })
	form.SetModeChangeHandler(func(options.Mode) { calls++ })

	form.Sync(m)

	if calls != 0 {
		t.Errorf("handlers fired %d times during sync", calls)
	}
	if got := form.entries[options.KeyJobs].Text; got != "8" {
		t.Errorf("jobs = %q, want 8", got)
	}
	if got := form.modeRadio.Selected; got != modeModule {
		t.Errorf("mode = %q, want %q", got, modeModule)
	}
	if got := form.toolRadio.Selected; got != "--mingw64" {
		t.Errorf("tool = %q, want --mingw64", got)
	}
	if got := form.entries[options.KeyEntryPoint].Text; got != options.DefaultEntryPoint {
		t.Errorf("entry point = %q", got)
	}
}

func TestOptionsFormPlatformRows(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	tests := []struct {
		goos    string
		present []string
		absent  []string
	}{
		{"windows", []string{options.KeyWindowsNoConsole, options.KeyWindowsIcon}, []string{options.KeyMacosNoConsole}},
		{"darwin", []string{options.KeyMacosNoConsole}, []string{options.KeyWindowsNoConsole, options.KeyWindowsIcon}},
		{"linux", nil, []string{options.KeyWindowsNoConsole, options.KeyWindowsIcon, options.KeyMacosNoConsole}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			form := newOptionsForm(tt.goos)
			has := func(key string) bool {
				_, c := form.checks[key]
				_, e := form.entries[key]
				return c || e
			}
			for _, key := range tt.present {
				if !has(key) {
					t.Errorf("%s missing on %s", key, tt.goos)
				}
			}
			for _, key := range tt.absent {
				if has(key) {
					t.Errorf("%s shown on %s", key, tt.goos)
				}
			}
		})
	}
}

func TestOptionsFormModeChange(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	form := newOptionsForm("linux")
	var got []options.Mode
	form.SetModeChangeHandler(func(mode options.Mode) { got = append(got, mode) })

	form.modeRadio.SetSelected(modeModule)
	form.modeRadio.SetSelected(modeStandalone)

	want := []options.Mode{options.ModeModule, options.ModeStandalone}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("modes = %v, want %v", got, want)
	}
}

func TestPluginGrid(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	grid := NewPluginGrid()
	var toggled []string
	grid.SetPluginChangeHandler(func(name string, enabled bool) {
		if enabled {
			toggled = append(toggled, "+"+name)
		} else {
			toggled = append(toggled, "-"+name)
		}
	})

	grid.SetPlugins([]string{"numpy", "tk-inter", "pyqt5"}, map[string]bool{"tk-inter": true})
	if len(grid.grid.Objects) != 3 {
		t.Fatalf("grid has %d checks, want 3", len(grid.grid.Objects))
	}
	if len(toggled) != 0 {
		t.Fatalf("SetPlugins fired handler: %v", toggled)
	}

	check, _ := grid.Check("tk-inter")
	if !check.Checked {
		t.Error("tk-inter should start checked")
	}

	numpy, _ := grid.Check("numpy")
	test.Tap(numpy)
	test.Tap(check)

	want := []string{"+numpy", "-tk-inter"}
	if !reflect.DeepEqual(toggled, want) {
		t.Errorf("toggled = %v, want %v", toggled, want)
	}

	grid.Sync(map[string]bool{"pyqt5": true})
	if len(toggled) != 2 {
		t.Errorf("Sync fired handler: %v", toggled)
	}
	if pyqt, _ := grid.Check("pyqt5"); !pyqt.Checked {
		t.Error("pyqt5 should be checked after Sync")
	}
}

func TestActionBar(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	bar := NewActionBar()
	started := 0
	bar.SetStartHandler(func() { started++ })
	var got []change
	bar.SetOptionChangeHandler(func(key string, value interface{}) {
		got = append(got, change{key, value})
	})

	test.Tap(bar.StartButton)
	test.Tap(bar.CompressCheck)
	if started != 1 {
		t.Errorf("start handler called %d times", started)
	}
	if want := []change{{options.KeyCompress, true}}; !reflect.DeepEqual(got, want) {
		t.Errorf("changes = %v, want %v", got, want)
	}

	bar.SetRunning(true)
	if !bar.StartButton.Disabled() || bar.CancelButton.Disabled() {
		t.Error("running state should disable Start and enable Cancel")
	}
	if !bar.CompressCheck.Disabled() || !bar.StartFileCheck.Disabled() {
		t.Error("running state should lock the packaging checks")
	}
	test.Tap(bar.CompressCheck)
	if len(got) != 1 {
		t.Errorf("disabled check emitted a change: %v", got)
	}
	bar.SetRunning(false)
	if bar.StartButton.Disabled() || !bar.CancelButton.Disabled() {
		t.Error("idle state should enable Start and disable Cancel")
	}
	if bar.CompressCheck.Disabled() || bar.StartFileCheck.Disabled() {
		t.Error("idle state should unlock the packaging checks")
	}
}

func TestLogView(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	lv := NewLogView()
	lv.Append("first")
	lv.Append("second\nthird\n")

	want := []string{"first", "second", "third"}
	if got := lv.Lines(); !reflect.DeepEqual(got, want) {
		t.Fatalf("lines = %v, want %v", got, want)
	}

	lv.Replace([]string{"[Python]:", "3.12.1"})
	if got := lv.Lines(); !reflect.DeepEqual(got, []string{"[Python]:", "3.12.1"}) {
		t.Errorf("after replace = %v", got)
	}

	lv.Clear()
	if n := len(lv.Lines()); n != 0 {
		t.Errorf("after clear has %d lines", n)
	}
}
