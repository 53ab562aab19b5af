package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/wikibot/internal/dictionary"
	"github.com/fyrsmithlabs/wikibot/internal/guild"
	"github.com/fyrsmithlabs/wikibot/internal/lookup"
)

// scopeFlags selects the dictionary a command works on.
type scopeFlags struct {
	guild string
	kind  string
}

func (f *scopeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.guild, "guild", "g", "", "guild id (required)")
	cmd.Flags().StringVarP(&f.kind, "kind", "k", string(guild.PurposeFAQs), "dictionary kind: faqs or ratios")
	_ = cmd.MarkFlagRequired("guild")
}

func (f *scopeFlags) parse() (guild.ID, guild.Purpose, error) {
	id, err := guild.ParseID(f.guild)
	if err != nil {
		return 0, "", err
	}
	p, err := guild.ParsePurpose(f.kind)
	if err != nil {
		return 0, "", err
	}
	return id, p, nil
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	var scope scopeFlags

	cmd := &cobra.Command{
		Use:   "get <query>",
		Short: "Resolve a query against a guild dictionary",
		Long: `Resolve a query against a guild dictionary, tolerating typos.

The query may be a whole chat message: everything from the first " ||" on
is ignored, and the command word, the guild's prefix and an @wikibot
mention are stripped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, p, err := scope.parse()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), opts.configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.svc.ResolveMessage(cmd.Context(), id, p, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), p, res)
		},
	}
	scope.register(cmd)
	return cmd
}

func printResult(w io.Writer, p guild.Purpose, res dictionary.Result) error {
	switch res.Kind {
	case dictionary.Empty:
		return fmt.Errorf("no %s have been added for this guild yet", p)
	case dictionary.NotFound:
		return fmt.Errorf("nothing close enough was found in %s", p)
	}

	if res.Kind == dictionary.Fuzzy {
		fmt.Fprintf(w, "(closest match: %s, distance %d)\n", res.Key, res.Distance)
	}
	fmt.Fprintf(w, "%s:\n%s\n", res.Key, res.Entry.Body)
	if res.Entry.Attachment != "" {
		fmt.Fprintln(w, res.Entry.Attachment)
	}
	return nil
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	return newWriteCmd(opts, lookup.OpAdd, "add <key> <body...>", "Add a new entry; fails if the key exists")
}

func newSetCmd(opts *rootOptions) *cobra.Command {
	return newWriteCmd(opts, lookup.OpSet, "set <key> <body...>", "Replace an existing entry; fails if the key is missing")
}

func newWriteCmd(opts *rootOptions, op lookup.Op, use, short string) *cobra.Command {
	var (
		scope      scopeFlags
		attachment string
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, p, err := scope.parse()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), opts.configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			key := args[0]
			entry := dictionary.Entry{Body: strings.Join(args[1:], " "), Attachment: attachment}
			if err := a.svc.Mutate(cmd.Context(), id, p, op, key, entry); err != nil {
				if errors.Is(err, dictionary.ErrKeyExists) {
					return fmt.Errorf("%q already exists in %s, use set to replace it", dictionary.NormalizeKey(key), p)
				}
				if errors.Is(err, dictionary.ErrKeyNotFound) {
					return fmt.Errorf("%q does not exist in %s, use add to create it", dictionary.NormalizeKey(key), p)
				}
				if errors.Is(err, dictionary.ErrAttachmentNotAllowed) {
					return fmt.Errorf("%s entries cannot carry an attachment", p)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s saved\n", p, dictionary.NormalizeKey(key))
			return nil
		},
	}
	scope.register(cmd)
	cmd.Flags().StringVarP(&attachment, "attachment", "a", "", "attachment url (faqs only)")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var scope scopeFlags

	cmd := &cobra.Command{
		Use:     "delete <key>",
		Aliases: []string{"del", "remove"},
		Short:   "Delete an entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, p, err := scope.parse()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), opts.configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.svc.Mutate(cmd.Context(), id, p, lookup.OpDelete, args[0], dictionary.Entry{}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s deleted\n", p, dictionary.NormalizeKey(args[0]))
			return nil
		},
	}
	scope.register(cmd)
	return cmd
}

func newClearCmd(opts *rootOptions) *cobra.Command {
	var (
		scope scopeFlags
		yes   bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry of a guild dictionary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, p, err := scope.parse()
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("refusing to clear %s for guild %s without --yes", p, id)
			}
			a, err := newApp(cmd.Context(), opts.configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.svc.Mutate(cmd.Context(), id, p, lookup.OpDeleteAll, "", dictionary.Entry{}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: cleared\n", p)
			return nil
		},
	}
	scope.register(cmd)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm clearing the dictionary")
	return cmd
}

func newKeysCmd(opts *rootOptions) *cobra.Command {
	var scope scopeFlags

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the keys of a guild dictionary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, p, err := scope.parse()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), opts.configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			keys, err := a.svc.Keys(cmd.Context(), id, p)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
	scope.register(cmd)
	return cmd
}
