// Package main implements the wikibot binary: the admin HTTP server and
// one-shot commands against the same data directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Version information, set at build time
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// rootOptions are shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "wikibot",
		Short: "Lookup core of the wikibot chat bot",
		Long: `wikibot serves per-guild FAQ and ratio dictionaries, command prefixes and
the recipe catalog, with typo-tolerant lookups.

Run "wikibot serve" for the admin HTTP API, or use the one-shot commands to
inspect and edit the data directory directly.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/wikibot/config.yaml)")

	root.AddCommand(
		newServeCmd(opts),
		newVersionCmd(),
		newGetCmd(opts),
		newAddCmd(opts),
		newSetCmd(opts),
		newDeleteCmd(opts),
		newClearCmd(opts),
		newKeysCmd(opts),
		newPrefixCmd(opts),
		newRecipeCmd(opts),
		newModCmd(opts),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wikibot\n")
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Commit:     %s\n", gitCommit)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
		},
	}
}
