package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/domain"
)

func (c *cli) newListCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored quotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			quotes := c.components.Store.Filter(category)
			if len(quotes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No quotes found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tQUOTE")

			for _, q := range quotes {
				fmt.Fprintf(w, "%s\t%s\n", q.Category, q.Text)
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", app.WildcardCategory, "only list this category")

	return cmd
}

func (c *cli) newAddCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a quote and submit it to the remote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := domain.Quote{Text: args[0], Category: category}
			if err := c.components.Store.Add(cmd.Context(), q); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added to %s (%d quotes)\n", q.Category, c.components.Store.Len())

			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category of the new quote (required)")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func (c *cli) newRandomCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Print a random quote from the selected category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := c.components.Selection.RandomQuote(cmd.Context(), category)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%q\n  (%s)\n", q.Text, q.Category)

			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "draw from this category instead of the selected one")

	return cmd
}

func (c *cli) newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories; the selected one is starred",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected := c.components.Selection.Selected()

			for _, label := range c.components.Store.Categories().Labels() {
				marker := " "
				if label == selected {
					marker = "*"
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, label)
			}

			return nil
		},
	}
}

func (c *cli) newSelectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select <category>",
		Short: "Persist the category filter used by random",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.components.Selection.Select(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Selected %s\n", args[0])

			return nil
		},
	}
}

func (c *cli) newExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the collection as a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := c.components.Transfer.Export(cmd.Context())
			if err != nil {
				return err
			}

			if output == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}

			if err := os.WriteFile(output, data, 0o600); err != nil {
				return fmt.Errorf("writing snapshot: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d quotes to %s\n", c.components.Store.Len(), output)

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "quotes.json", `destination file, "-" for stdout`)

	return cmd
}

func (c *cli) newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Apply a JSON snapshot using the configured import policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading snapshot: %w", err)
			}

			result, err := c.components.Transfer.Import(cmd.Context(), data)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d quotes (%s)\n", result.Added, result.Parsed, result.Policy)

			return nil
		},
	}
}

func (c *cli) newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one reconciliation pass against the remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result := c.components.Engine.RunOnce(cmd.Context())

			switch result.Outcome {
			case app.OutcomeFailed:
				return fmt.Errorf("sync failed: %s", result.Error)
			case app.OutcomeMergeApplied:
				fmt.Fprintln(cmd.OutOrStdout(), app.SyncSummary(result.Appended))
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "Already up to date (%d quotes)\n", result.Total)
			}

			return nil
		},
	}
}
