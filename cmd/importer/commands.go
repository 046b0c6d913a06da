package main

import (
	"context"

	"github.com/spf13/cobra"

	"library-backend/internal/importer"
)

func newBooksCmd(a *app) *cobra.Command {
	opts := importer.BooksOptions{}

	cmd := &cobra.Command{
		Use:   "books",
		Short: "Import books from OpenLibrary search until the catalogue reaches --target",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "books", func(ctx context.Context) (*importer.Result, error) {
				return a.importer.ImportBooks(ctx, opts)
			})
		},
	}

	cmd.Flags().IntVar(&opts.Target, "target", 500, "total number of books wanted")
	cmd.Flags().StringVar(&opts.Query, "query", "programming", "OpenLibrary search query")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 100, "results per OpenLibrary page (max 100)")
	return cmd
}

func newMembersCmd(a *app) *cobra.Command {
	opts := importer.MembersOptions{}

	cmd := &cobra.Command{
		Use:   "members",
		Short: "Import generated members from RandomUser until --target members exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "members", func(ctx context.Context) (*importer.Result, error) {
				return a.importer.ImportMembers(ctx, opts)
			})
		},
	}

	cmd.Flags().IntVar(&opts.Target, "target", 100, "total number of members wanted")
	cmd.Flags().IntVar(&opts.Batch, "batch", 50, "members requested per API call")
	return cmd
}

func newTransactionsCmd(a *app) *cobra.Command {
	opts := importer.TransactionsOptions{}

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Issue loans for random book/member pairs until --target transactions exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "transactions", func(ctx context.Context) (*importer.Result, error) {
				return a.importer.ImportTransactions(ctx, opts)
			})
		},
	}

	cmd.Flags().IntVar(&opts.Target, "target", 100, "total number of transactions wanted")
	return cmd
}

func newBackfillCmd(a *app) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "backfill-activity",
		Short: "Rebuild the activity log from transactions and members",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "activity", func(ctx context.Context) (*importer.Result, error) {
				return a.importer.BackfillActivity(ctx, reset)
			})
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "delete existing activity rows first")
	return cmd
}
