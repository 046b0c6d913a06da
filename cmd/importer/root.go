package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"library-backend/internal/importer"
	"library-backend/pkg/container"
	"library-backend/pkg/logger"
)

type app struct {
	verbose        bool
	openLibraryURL string
	randomUserURL  string

	container *container.Container
	importer  *importer.Importer
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "importer",
		Short:         "Bulk import and maintenance tools for the library database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.openLibraryURL, "openlibrary-url", importer.DefaultOpenLibraryURL, "OpenLibrary base URL")
	root.PersistentFlags().StringVar(&a.randomUserURL, "randomuser-url", importer.DefaultRandomUserURL, "RandomUser base URL")

	root.AddCommand(
		newBooksCmd(a),
		newMembersCmd(a),
		newTransactionsCmd(a),
		newBackfillCmd(a),
	)

	return root
}

func (a *app) setup(ctx context.Context) error {
	_ = godotenv.Load()
	logger.InitCLI(os.Stderr, a.verbose)

	if ctx == nil {
		ctx = context.Background()
	}

	c, err := container.NewContainer(ctx, container.Options{})
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	a.container = c

	a.importer = importer.New(importer.Dependencies{
		Books:        c.BookRepo,
		Members:      c.MemberRepo,
		Lending:      c.LendingService,
		Activity:     c.ActivityRepo,
		BookSource:   importer.NewOpenLibraryClient(a.openLibraryURL),
		MemberSource: importer.NewRandomUserClient(a.randomUserURL),
	})
	return nil
}

func (a *app) close() {
	if a.container != nil {
		a.container.Cleanup()
	}
}

// run executes fn with a context cancelled on SIGINT/SIGTERM and prints the summary.
func (a *app) run(cmd *cobra.Command, what string, fn func(ctx context.Context) (*importer.Result, error)) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := fn(ctx)
	if res != nil {
		cmd.Printf("%s: inserted %d, skipped %d, total %d\n", what, res.Inserted, res.Skipped, res.Total)
	}
	if err != nil {
		log.Error().Err(err).Str("command", cmd.Name()).Msg("Import failed")
		return err
	}
	return nil
}
