package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-sync/internal/bootstrap"
	"github.com/jsamuelsen/quote-sync/internal/platform/config"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
)

// cli holds the state shared by every command.
type cli struct {
	profile   string
	configDir string
	verbose   bool

	cfg        *config.Config
	logger     *slog.Logger
	components *bootstrap.Components
}

// execute runs quotectl with args. Storage is closed even when the command
// fails.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	c := &cli{}

	root := c.newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)

	return errors.Join(err, c.close(ctx))
}

func (c *cli) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "quotectl",
		Short: "Manage the quote collection",
		Long: `quotectl reads and edits the quote collection stored by quote-sync.

It opens the storage named in the configuration, so changes are visible to
the service on its next start. The sync command runs one reconciliation pass
against the remote collection.`,
		PersistentPreRunE: c.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	root.PersistentFlags().StringVar(&c.profile, "profile", os.Getenv("APP_ENVIRONMENT"), "configuration profile (configs/<profile>.yaml)")
	root.PersistentFlags().StringVar(&c.configDir, "config-dir", "configs", "directory holding base.yaml and the profile files")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		c.newListCommand(),
		c.newAddCommand(),
		c.newRandomCommand(),
		c.newCategoriesCommand(),
		c.newSelectCommand(),
		c.newExportCommand(),
		c.newImportCommand(),
		c.newSyncCommand(),
	)

	return root
}

// setup loads the configuration and assembles the components.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFrom(c.configDir, c.profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level := "warn"
	if c.verbose {
		level = "debug"
	}

	c.cfg = cfg
	c.logger = logging.NewWithWriter(&logging.Config{
		Level:   level,
		Format:  "pretty",
		Service: "quotectl",
		Version: cfg.App.Version,
	}, cmd.ErrOrStderr())

	components, err := bootstrap.New(cmd.Context(), cfg, bootstrap.Options{Logger: c.logger})
	if err != nil {
		return err
	}

	c.components = components

	return nil
}

// close waits for pending submissions and closes storage.
func (c *cli) close(ctx context.Context) error {
	if c.components == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.Server.ShutdownTimeout)
	defer cancel()

	err := c.components.Close(ctx)
	c.components = nil

	return err
}
