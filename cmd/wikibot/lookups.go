package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/wikibot/internal/catalog"
	"github.com/fyrsmithlabs/wikibot/internal/guild"
)

func newPrefixCmd(opts *rootOptions) *cobra.Command {
	var guildID string

	cmd := &cobra.Command{
		Use:   "prefix [new-prefix]",
		Short: "Show or change a guild's command prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := guild.ParseID(guildID)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), opts.configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				p, ok := a.svc.Prefix(id)
				if !ok {
					fmt.Fprintln(out, "no prefix registered")
					return nil
				}
				fmt.Fprintln(out, p)
				return nil
			}

			previous, existed, err := a.svc.RegisterPrefix(cmd.Context(), id, args[0])
			if err != nil {
				return err
			}
			if existed {
				fmt.Fprintf(out, "prefix changed from %q to %q\n", previous, strings.TrimSpace(args[0]))
			} else {
				fmt.Fprintf(out, "prefix set to %q\n", strings.TrimSpace(args[0]))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&guildID, "guild", "g", "", "guild id (required)")
	_ = cmd.MarkFlagRequired("guild")
	return cmd
}

func newRecipeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recipe <query>",
		Short: "Look up a recipe in the static catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			res := a.svc.Recipe(cmd.Context(), strings.Join(args, " "))
			if !res.Found() {
				return fmt.Errorf("no recipe close enough was found")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%gs)\n", a.svc.RecipeName(res.Key), res.Record.Cost)
			printIngredients(out, "in ", a.svc.Ingredients(res.Record.Inputs))
			printIngredients(out, "out", a.svc.Ingredients(res.Record.Outputs))
			return nil
		},
	}
}

func printIngredients(w io.Writer, label string, items []catalog.Ingredient) {
	for _, it := range items {
		fmt.Fprintf(w, "  %s %g x %s\n", label, it.Amount, it.Name)
	}
}

func newModCmd(opts *rootOptions) *cobra.Command {
	var resultsFile string

	cmd := &cobra.Command{
		Use:   "mod <query>",
		Short: "Pick a mod from a saved mod portal search response",
		Long: `Pick the mod matching the query from a mod portal search response.

The response is read from --results, or from stdin when --results is "-".
When no mod name or title is close enough, the search results are listed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if resultsFile == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(resultsFile)
			}
			if err != nil {
				return fmt.Errorf("failed to read search results: %w", err)
			}

			a, err := newApp(cmd.Context(), opts.configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.svc.ResolveMod(cmd.Context(), strings.Join(args, " "), data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Match.Found() {
				fmt.Fprintf(out, "%s by %s\n%s\n", res.Mod.Title, res.Mod.Owner, res.Link)
				if res.Mod.Summary != "" {
					fmt.Fprintln(out, res.Mod.Summary)
				}
				return nil
			}
			if res.Results == 0 {
				return fmt.Errorf("no mods found")
			}
			fmt.Fprint(out, res.Summary)
			return nil
		},
	}
	cmd.Flags().StringVarP(&resultsFile, "results", "r", "-", "search response file, - for stdin")
	return cmd
}
