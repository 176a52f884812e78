package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/internal/config"
	"github.com/lox/rangebook/internal/library"
	"github.com/lox/rangebook/internal/rangestore"
	"github.com/lox/rangebook/internal/storage"
	"github.com/muesli/termenv"
)

// Globals are flags shared by every command.
type Globals struct {
	Config   string `short:"c" default:"rangebook.hcl" env:"RANGEBOOK_CONFIG" help:"Path to HCL configuration file"`
	LogLevel string `short:"l" env:"RANGEBOOK_LOG_LEVEL" help:"Log level (overrides config)"`
	Backend  string `short:"b" env:"RANGEBOOK_BACKEND" help:"Storage backend (overrides config)"`
	DB       string `env:"RANGEBOOK_DB" help:"SQLite database path (overrides config)"`
	NoColor  bool   `help:"Disable colored output"`
}

// app is an opened config, logger, range repository and range library.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	store  storage.Store
	repo   *rangestore.Repository
	lib    *library.Library
}

// loadConfig reads the config file and applies flag overrides.
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if g.Backend != "" {
		cfg.Storage.Backend = g.Backend
		if g.Backend == string(storage.BackendSQLite) && cfg.Storage.Path == "" {
			cfg.Storage.Path = config.DefaultPath
		}
	}
	if g.DB != "" {
		cfg.Storage.Path = g.DB
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (g *Globals) newLogger(cfg *config.Config) *log.Logger {
	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	logger := log.New(os.Stderr)
	logger.SetLevel(cfg.Level())
	return logger
}

// setup loads configuration and builds the one logger a command uses.
func (g *Globals) setup() (*config.Config, *log.Logger, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, g.newLogger(cfg), nil
}

// open loads configuration and opens the app with a fresh logger.
func (g *Globals) open(ctx context.Context, opts ...rangestore.Option) (*app, error) {
	cfg, logger, err := g.setup()
	if err != nil {
		return nil, err
	}
	return openApp(ctx, cfg, logger, quartz.NewReal(), opts...)
}

// openApp opens the store and initialises the repository. Init runs the
// legacy migration if one is pending.
func openApp(ctx context.Context, cfg *config.Config, logger *log.Logger, clock quartz.Clock, opts ...rangestore.Option) (*app, error) {
	store, err := storage.Open(ctx, cfg.StorageOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	repo := rangestore.New(store, logger, clock, opts...)
	if err := repo.Init(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		repo:   repo,
		lib:    library.New(store, logger, clock),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// setupSignalHandler returns a context cancelled on SIGINT or SIGTERM.
func setupSignalHandler(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received signal, shutting down gracefully", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// RangeArgs address one range: a sequence and role=position seats.
type RangeArgs struct {
	Sequence string   `arg:"" help:"Betting sequence (OPEN_RAISE, RAISE_OVER_LIMP, 3BET, SQUEEZE, COLD_4BET)"`
	Seats    []string `arg:"" optional:"" help:"Role assignments such as hero=BTN opponent=CO"`
}

// Config parses the arguments into a range config. Legality is checked by
// the repository.
func (r RangeArgs) Config() (cash.Config, error) {
	seq, err := cash.ParseSequence(r.Sequence)
	if err != nil {
		return cash.Config{}, err
	}
	positions, err := parseSeats(r.Seats)
	if err != nil {
		return cash.Config{}, err
	}
	return cash.Config{Sequence: seq, Positions: positions}, nil
}

func parseSeats(args []string) (cash.Positions, error) {
	var out cash.Positions
	for _, arg := range args {
		role, pos, ok := strings.Cut(arg, "=")
		if !ok || role == "" {
			return nil, fmt.Errorf("seat %q: expected role=position", arg)
		}
		if _, dup := out.Get(cash.Role(role)); dup {
			return nil, fmt.Errorf("seat %q: role %s given twice", arg, role)
		}
		out = out.With(cash.Role(role), cash.Position(strings.ToUpper(pos)))
	}
	return out, nil
}

// withApp opens the app for the duration of fn.
func withApp(g *Globals, fn func(ctx context.Context, a *app) error, opts ...rangestore.Option) (err error) {
	ctx := context.Background()
	a, err := g.open(ctx, opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()
	return fn(ctx, a)
}
