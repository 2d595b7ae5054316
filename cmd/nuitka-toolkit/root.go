package main

import (
	"fmt"

	"nuitka-toolkit/internal/app"
	"nuitka-toolkit/internal/logger"
	"nuitka-toolkit/internal/settings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli holds state shared by all commands once flags are parsed.
type cli struct {
	configFile string
	settings   *settings.Settings
	logger     logger.Logger
}

// persistent flags and the settings keys they override
var flagKeys = map[string]string{
	"python":     settings.KeyPython,
	"output-dir": settings.KeyOutputDir,
	"log-level":  settings.KeyLogLevel,
	"json-logs":  settings.KeyJSONLogs,
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   settings.AppName,
		Short: "Desktop front-end for the Nuitka Python compiler",
		Long: `nuitka-toolkit assembles a Nuitka command line from form options,
optionally installs pip requirements next to the build, then runs the
compiler and streams its output.

Without a subcommand the GUI is started.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.NewApplication(c.settings, c.logger)
			if err != nil {
				return err
			}
			return application.Run()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "settings file (default is <user config dir>/nuitka-toolkit/settings.yaml)")
	flags.String("python", "", "python interpreter (default: python3 or python on PATH)")
	flags.String("output-dir", "", "default --output-dir for new builds")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.Bool("json-logs", false, "write logs as JSON")

	root.AddCommand(newBuildCmd(c))
	root.AddCommand(newPluginsCmd(c))
	root.AddCommand(newCacheCmd(c))
	return root
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	v, err := settings.NewViper(c.configFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}

	s, err := settings.FromViper(v)
	if err != nil {
		return err
	}
	c.settings = s
	c.logger = logger.New(logger.Options{
		Level: s.LogLevel,
		JSON:  s.JSONLogs,
	})
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}
