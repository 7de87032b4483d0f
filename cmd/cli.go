package cmd

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/eka-dev/ftracker/auth"
	"github.com/eka-dev/ftracker/client"
	"github.com/eka-dev/ftracker/config"
	"github.com/eka-dev/ftracker/db"
	"github.com/eka-dev/ftracker/pkg/clierr"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// skipSetup marks commands that run without config, database or API client.
const skipSetup = "ftracker/skip-setup"

// app holds what the commands share. Fields that are nil when a command
// runs are built from the configuration by setup.
type app struct {
	configPath string
	cfg        config.Config

	db      *gorm.DB
	ownsDB  bool
	store   auth.CredentialStore
	cache   db.TransactionRepository
	api     *client.Client
	session *auth.Service

	in           io.Reader
	reader       *bufio.Reader
	readPassword func() (string, error)
	now          func() time.Time
}

func newApp() *app {
	a := &app{
		configPath: config.DefaultPath(),
		in:         os.Stdin,
		now:        time.Now,
	}
	a.readPassword = a.readSecret
	return a
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	a := newApp()
	rootCmd := createRootCmd(a)
	rootCmd.SetOut(os.Stdout)
	defer a.close()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Command execution failed.")
		rootCmd.PrintErrln("Error:", err)
		return clierr.ExitCode(err)
	}
	return 0
}

func createRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ftracker",
		Short:         "Track your income and expenses from the terminal",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipSetup] != "" {
				return nil
			}
			return a.setup()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", a.configPath, "Path to the config file")
	rootCmd.PersistentFlags().BoolP("help", "h", false, "Show help for a command")

	rootCmd.AddCommand(
		loginCmd(a),
		registerCmd(a),
		logoutCmd(a),
		statusCmd(a),
		transactionsCmd(a),
		summaryCmd(a),
		configCmd(a),
		versionCmd(),
	)

	wrapRunE(rootCmd, a.settle)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})

	return rootCmd
}

// setup loads the configuration, opens the database and wires the API
// client. It is a no-op once the client exists.
func (a *app) setup() error {
	if a.api != nil {
		return nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return clierr.New(clierr.Validation, "Invalid configuration: "+err.Error(), err)
	}
	a.cfg = cfg

	if a.db == nil {
		if err := initializeDatabase(cfg); err != nil {
			return err
		}
		a.db = db.GetDB()
		a.ownsDB = true
	}
	if a.store == nil {
		a.store = auth.NewPersistentStore(db.NewTokenRepository(a.db))
	}
	if a.cache == nil {
		a.cache = db.NewTransactionRepository(a.db)
	}

	api, err := client.New(client.Config{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		RefreshTimeout:    cfg.API.RefreshTimeout,
		MaxAttempts:       cfg.API.MaxAttempts,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	}, a.store)
	if err != nil {
		return clierr.New(clierr.Validation, "Invalid API configuration: "+err.Error(), err)
	}
	a.api = api
	a.session = auth.NewService(a.store, api.Auth)
	return nil
}

// wrapRunE passes the result of every command in the tree through after.
func wrapRunE(cmd *cobra.Command, after func(*cobra.Command, error) error) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(c *cobra.Command, args []string) error {
			return after(c, run(c, args))
		}
	}
	for _, child := range cmd.Commands() {
		wrapRunE(child, after)
	}
}

// settle discards the stored session once the backend has refused its
// refresh token, so status and later commands see a logged-out state. A
// refresh that failed for other reasons keeps the pair for the next run.
func (a *app) settle(cmd *cobra.Command, err error) error {
	if err == nil || a.api == nil || a.session == nil {
		return err
	}
	if !errors.Is(err, client.ErrUnauthorized) || !a.api.Transport.Refresher.SessionRejected() {
		return err
	}
	if discardErr := a.session.Discard(cmd.Context()); discardErr != nil {
		log.Warn().Err(discardErr).Msg("Failed to discard the rejected session")
	}
	return err
}

func (a *app) close() {
	if !a.ownsDB {
		return
	}
	closeDatabase()
	a.ownsDB = false
}

func initializeDatabase(cfg config.Config) error {
	if cfg.Storage.DBPath != "" {
		db.Path = cfg.Storage.DBPath
	}
	if err := db.InitDB(); err != nil {
		log.Error().Err(err).Msg("Failed to initialize database")
		return clierr.New(clierr.Internal, "Failed to open the local database", err)
	}
	return nil
}

func closeDatabase() {
	if err := db.CloseDB(); err != nil {
		log.Error().Err(err).Msg("Failed to close the database.")
	}
}

// location is the time zone dates are displayed in.
func (a *app) location() *time.Location {
	return a.cfg.Location()
}
