package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pantry/internal/donors"
	"github.com/desertthunder/pantry/internal/ledger"
	"github.com/desertthunder/pantry/internal/registry"
	"github.com/desertthunder/pantry/internal/repositories"
	"github.com/desertthunder/pantry/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Stores are opened on first use so commands like `setup config` never touch them.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	registry   *registry.Registry
	roster     *donors.Roster
	ledger     *ledger.Ledger
	db         *sql.DB
	logFile    io.Closer
	opened     bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Ledger     *ledger.Ledger
}

// NewRunner creates a new Runner with the provided configuration.
//
// A provided Ledger supplies the registry and roster; the runner then does not own and will not close them.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		ledger:     opts.Ledger,
	}
	if opts.Ledger != nil {
		r.registry = opts.Ledger.Recipients()
		r.roster = opts.Ledger.Roster()
	}
	return r
}

// SetLogger replaces the runner's logger. Stores opened afterwards log through it.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, recipientCommand, donorCommand, donateCommand, reportCommand, cleanupCommand, sessionCommand, consoleCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "pantry",
		Usage:   "Track donors, donations and recipient food requests",
		Version: "0.1.0",
		Writer:  r.output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Before:   r.loadConfig,
		After:    r.shutdown,
		Commands: r.register(),
	}
}

// loadConfig reads the file named by --config. A missing file keeps the current config.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	_, err := os.Stat(r.configPath)
	switch {
	case err == nil:
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	case errors.Is(err, os.ErrNotExist):
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	default:
		return ctx, fmt.Errorf("failed to read config %s: %w", r.configPath, err)
	}

	level, err := shared.ParseLevel(r.config.Logging.Level)
	if err != nil {
		return ctx, err
	}
	shared.SetLogLevel(r.logger, level)
	return ctx, nil
}

// open loads the registry, seeds default recipients, opens the donor roster and
// the donation database, then removes donations left orphaned by earlier runs.
func (r *Runner) open() error {
	if r.ledger != nil {
		return nil
	}

	cfg := r.config
	reg, err := registry.Load(
		registry.NewFileStore(cfg.Storage.RecipientsPath),
		registry.WithLogger(shared.WithLogger(r.logger, "store", "recipients")),
		registry.WithAutoSave(cfg.Registry.AutoSave),
	)
	if err != nil {
		return fmt.Errorf("failed to load recipients: %w", err)
	}

	if n, err := reg.SeedDefaults(cfg.Registry.Defaults); err != nil {
		return fmt.Errorf("failed to seed recipients: %w", err)
	} else if n > 0 {
		r.logger.Info("seeded default recipients", "count", n)
	}

	roster, err := donors.Open(cfg.Storage.DonorsPath, donors.WithLogger(shared.WithLogger(r.logger, "store", "donors")))
	if err != nil {
		return fmt.Errorf("failed to open donors: %w", err)
	}

	db, err := shared.NewDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	shared.ConfigureDatabase(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.registry, r.roster, r.db = reg, roster, db
	r.ledger = ledger.New(reg, roster, repositories.NewDonationRepository(db), r.logger)
	r.opened = true

	if _, err := r.ledger.CleanupOrphans(); err != nil {
		return fmt.Errorf("failed to clean up donations: %w", err)
	}
	return nil
}

// shutdown writes the registry and roster one final time and closes the database.
// A log file opened by the console is closed last.
func (r *Runner) shutdown(ctx context.Context, cmd *cli.Command) error {
	var err error
	if r.opened {
		r.opened = false
		err = errors.Join(r.registry.Close(), r.roster.Save(), r.db.Close())
		r.registry, r.roster, r.ledger, r.db = nil, nil, nil, nil
		if err != nil {
			r.logger.Error("failed to persist state on exit", "error", err)
		}
	}

	if r.logFile != nil {
		err = errors.Join(err, r.logFile.Close())
		r.logFile = nil
	}
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
