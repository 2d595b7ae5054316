package main

import (
	"fmt"

	"nuitka-toolkit/internal/workspace"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newCacheCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "cache",
		Short: "Show the compiler cache location, size and downloaded toolchains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return reportCache(cmd, workspace.New(afero.NewOsFs()))
		},
	}
}

func reportCache(cmd *cobra.Command, ws *workspace.Workspace) error {
	out := cmd.OutOrStdout()

	dir, err := ws.CacheDir()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s\n", workspace.CacheEnv, dir)
	if !ws.IsDir(dir) {
		fmt.Fprintln(out, "cache folder does not exist yet")
		return nil
	}

	size, err := ws.DirSize(dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "size: %s\n", workspace.FormatGB(size))

	toolchains, err := ws.CachedToolchains(dir)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "cached toolchains:")
	for _, tc := range toolchains {
		fmt.Fprintf(out, "  %s\n", tc)
	}
	return nil
}
