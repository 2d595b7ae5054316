package options

// Kind describes how an option value is turned into compiler arguments.
type Kind int

const (
	// KindFlag is a boolean emitted as a bare flag when true.
	KindFlag Kind = iota
	// KindValue is a string emitted as the flag followed by its value.
	KindValue
	// KindList is a comma separated string; each item becomes flag=item.
	KindList
	// KindRaw is a comma separated string whose items are appended verbatim.
	KindRaw
	// KindText is a synthetic string that never produces a flag of its own.
	KindText
	// KindToggle is a synthetic boolean that never produces a flag of its own.
	KindToggle
)

// IsBool reports whether values of this kind are booleans.
func (k Kind) IsBool() bool {
	return k == KindFlag || k == KindToggle
}

// Synthetic reports whether the option is application state rather than a compiler flag.
func (k Kind) Synthetic() bool {
	return k == KindText || k == KindToggle
}

const (
	KeyEntryPoint       = "file_path"
	KeyOutputFilename   = "--output-filename"
	KeyOnefile          = "--onefile"
	KeyOnefileTempdir   = "--onefile-tempdir-spec"
	KeyStandalone       = "--standalone"
	KeyModule           = "--module"
	KeyWindowsNoConsole = "--windows-disable-console"
	KeyWindowsIcon      = "--windows-icon"
	KeyMacosNoConsole   = "--macos-disable-console"
	KeyNoFollowImports  = "--nofollow-imports"
	KeyRemoveOutput     = "--remove-output"
	KeyNoPyiFile        = "--no-pyi-file"
	KeyJobs             = "--jobs"
	KeyBuildTool        = "build_tool"
	KeyMingw64          = "--mingw64"
	KeyClang            = "--clang"
	KeyAssumeYes        = "--assume-yes-for-downloads"
	KeyIncludePackage   = "--include-package"
	KeyIncludeModule    = "--include-module"
	KeyOtherArgs        = "--other-args"
	KeyPipArgs          = "pip_args"
	KeyOutputDir        = "--output-dir"
	KeyCompress         = "is_compress"
	KeyStartFile        = "need_start_file"
	DefaultEntryPoint   = "app"
	DefaultOutputDir    = "nuitka_output"
	BuildToolNone       = "none"
	BuildToolMingw64    = "mingw64"
	BuildToolClang      = "clang"
	platformWindows     = "windows"
	platformDarwin      = "darwin"
)

// Option is one entry of the form. Platform limits where the GUI shows it;
// the assembler emits it on every platform when set.
type Option struct {
	Key      string
	Kind     Kind
	Label    string
	Default  interface{}
	Platform string
}

var catalog = []Option{
	{Key: KeyEntryPoint, Kind: KindText, Label: "Entry Point", Default: DefaultEntryPoint},
	{Key: KeyOutputFilename, Kind: KindValue, Label: "Output Name", Default: ""},
	{Key: KeyOnefile, Kind: KindFlag, Label: "--onefile", Default: false},
	{Key: KeyOnefileTempdir, Kind: KindValue, Label: "--onefile-tempdir-spec", Default: ""},
	{Key: KeyStandalone, Kind: KindFlag, Label: "--standalone", Default: true},
	{Key: KeyModule, Kind: KindFlag, Label: "--module", Default: false},
	{Key: KeyWindowsNoConsole, Kind: KindFlag, Label: "--windows-disable-console", Default: false, Platform: platformWindows},
	{Key: KeyWindowsIcon, Kind: KindValue, Label: "--windows-icon", Default: "", Platform: platformWindows},
	{Key: KeyMacosNoConsole, Kind: KindFlag, Label: "--macos-disable-console", Default: false, Platform: platformDarwin},
	{Key: KeyNoFollowImports, Kind: KindFlag, Label: "--nofollow-imports", Default: false},
	{Key: KeyRemoveOutput, Kind: KindFlag, Label: "--remove-output", Default: false},
	{Key: KeyNoPyiFile, Kind: KindFlag, Label: "--no-pyi-file", Default: false},
	{Key: KeyJobs, Kind: KindValue, Label: "--jobs", Default: ""},
	{Key: KeyBuildTool, Kind: KindText, Label: "Build Tool", Default: BuildToolNone},
	{Key: KeyMingw64, Kind: KindFlag, Label: "--mingw64", Default: false},
	{Key: KeyClang, Kind: KindFlag, Label: "--clang", Default: false},
	{Key: KeyAssumeYes, Kind: KindFlag, Label: "--assume-yes-for-downloads", Default: false},
	{Key: KeyIncludePackage, Kind: KindList, Label: "--include-package", Default: ""},
	{Key: KeyIncludeModule, Kind: KindList, Label: "--include-module", Default: ""},
	{Key: KeyOtherArgs, Kind: KindRaw, Label: "Custom Args(,)", Default: ""},
	{Key: KeyPipArgs, Kind: KindText, Label: "Pip Args", Default: ""},
	{Key: KeyOutputDir, Kind: KindValue, Label: "Output Path", Default: DefaultOutputDir},
	{Key: KeyCompress, Kind: KindToggle, Label: "Compress", Default: false},
	{Key: KeyStartFile, Kind: KindToggle, Label: "shortcut.bat", Default: false},
}

var catalogIndex = func() map[string]int {
	idx := make(map[string]int, len(catalog))
	for i, opt := range catalog {
		idx[opt.Key] = i
	}
	return idx
}()

// Catalog returns the known options in emission order.
func Catalog() []Option {
	out := make([]Option, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for key.
func Lookup(key string) (Option, bool) {
	i, ok := catalogIndex[key]
	if !ok {
		return Option{}, false
	}
	return catalog[i], true
}

// VisibleOn reports whether the GUI shows the option on goos.
func (o Option) VisibleOn(goos string) bool {
	return o.Platform == "" || o.Platform == goos
}

// BuildTools lists the accepted build_tool values.
func BuildTools() []string {
	return []string{BuildToolMingw64, BuildToolClang, BuildToolNone}
}
