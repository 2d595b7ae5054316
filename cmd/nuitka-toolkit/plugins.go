package main

import (
	"fmt"
	"text/tabwriter"

	"nuitka-toolkit/internal/plugins"
	"nuitka-toolkit/internal/toolchain"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

func newPluginsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List the compiler plugins the GUI offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			python, err := toolchain.Resolve(c.settings.Python)
			if err != nil {
				return err
			}

			list, loadErr := plugins.NewRegistry(python, c.logger).Load(cmd.Context())
			if loadErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), color.Warn.Sprintf("plugin list unavailable, showing built-in catalog: %v", loadErr))
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range list {
				fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Description)
			}
			return w.Flush()
		},
	}
}
