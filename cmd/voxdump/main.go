// Command voxdump inspects column blobs and column stores.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

type app struct {
	log     *slog.Logger
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{log: slog.Default()}

	root := &cobra.Command{
		Use:          "voxdump",
		Short:        "Inspect voxel palette column blobs and stores",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newInspectCmd(a), newRecodeCmd(a), newStoreCmd(a))

	return root
}
