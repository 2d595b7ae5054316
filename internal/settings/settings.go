// Package settings handles application settings using Viper.
//
// Sources, lowest to highest precedence: built-in defaults, settings.yaml in
// the user config directory (or an explicit file), NUITKA_TOOLKIT_* environment
// variables, and command-line flags bound by the caller.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	AppName   = "nuitka-toolkit"
	EnvPrefix = "NUITKA_TOOLKIT"
	FileName  = "settings"

	KeyPython       = "python"
	KeyOutputDir    = "output_dir"
	KeyLogLevel     = "log_level"
	KeyJSONLogs     = "json_logs"
	KeyWindowWidth  = "window_width"
	KeyWindowHeight = "window_height"
)

type Settings struct {
	Python       string  `mapstructure:"python"`
	OutputDir    string  `mapstructure:"output_dir"`
	LogLevel     string  `mapstructure:"log_level"`
	JSONLogs     bool    `mapstructure:"json_logs"`
	WindowWidth  float32 `mapstructure:"window_width"`
	WindowHeight float32 `mapstructure:"window_height"`
}

func Defaults() Settings {
	return Settings{
		Python:       "",
		OutputDir:    "nuitka_output",
		LogLevel:     "info",
		JSONLogs:     false,
		WindowWidth:  1280,
		WindowHeight: 860,
	}
}

// ConfigDir returns the per-user settings directory.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// NewViper prepares a Viper instance with defaults, environment binding and
// the settings file. A missing default settings file is not an error; a
// missing explicit file is.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault(KeyPython, d.Python)
	v.SetDefault(KeyOutputDir, d.OutputDir)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyJSONLogs, d.JSONLogs)
	v.SetDefault(KeyWindowWidth, d.WindowWidth)
	v.SetDefault(KeyWindowHeight, d.WindowHeight)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read settings %s: %w", configFile, err)
		}
		return v, nil
	}

	dir, err := ConfigDir()
	if err != nil {
		// No config dir means no settings file; defaults and env still apply.
		return v, nil
	}
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}
	return v, nil
}

// FromViper decodes and validates the settings.
func FromViper(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if s.WindowWidth <= 0 || s.WindowHeight <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %.0fx%.0f", s.WindowWidth, s.WindowHeight)
	}
	if strings.TrimSpace(s.OutputDir) == "" {
		s.OutputDir = Defaults().OutputDir
	}
	return &s, nil
}

// Load is NewViper followed by FromViper.
func Load(configFile string) (*Settings, error) {
	v, err := NewViper(configFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}
