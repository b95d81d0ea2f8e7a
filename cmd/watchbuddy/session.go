package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sethgrid/watchbuddy/internal/config"
	"github.com/sethgrid/watchbuddy/internal/discovery"
	"github.com/sethgrid/watchbuddy/internal/engine"
	"github.com/sethgrid/watchbuddy/internal/logger"
	"github.com/sethgrid/watchbuddy/internal/pet"
	"github.com/sethgrid/watchbuddy/internal/storage"
)

// env is everything a command needs apart from the pet itself.
type env struct {
	dataDir string
	cfg     *config.Config
	logger  *zap.Logger
	store   storage.Store
	closers []func() error
}

func (e *env) Close() {
	_ = e.logger.Sync()
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.logger.Warn("close failed", zap.Error(err))
		}
	}
}

// resolveDataDir honours --dir, then walks up from the working directory,
// then falls back to the global directory.
func resolveDataDir(cmd *cobra.Command) (string, error) {
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		return dir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return discovery.ResolveDataDir(cwd)
}

func openEnv(cmd *cobra.Command, dataDir string) (*env, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(dataDir, configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	e := &env{dataDir: dataDir, cfg: cfg, logger: log}

	switch cfg.Storage.Backend {
	case "sqlite":
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		db, err := storage.OpenSQLite(filepath.Join(dataDir, storage.SQLiteFileName))
		if err != nil {
			return nil, err
		}
		e.store = db
		e.closers = append(e.closers, db.Close)
	default:
		e.store = storage.NewTOMLStore(filepath.Join(dataDir, storage.StateFileName))
	}
	return e, nil
}

// loadState reads the saved pet. A missing pet is an error; an unreadable one
// is replaced by defaults with a warning.
func (e *env) loadState(ctx context.Context, stderr io.Writer) (pet.State, error) {
	if _, err := e.store.Load(ctx); errors.Is(err, storage.ErrNotFound) {
		return pet.State{}, fmt.Errorf("no pet found in %s. Run 'watchbuddy init' to hatch one", e.dataDir)
	}

	st, err := storage.LoadOrDefault(ctx, e.store)
	if errors.Is(err, storage.ErrDecode) {
		e.logger.Warn("saved pet unreadable, using defaults", zap.Error(err))
		fmt.Fprintln(stderr, "Saved pet was unreadable; starting over from defaults.")
		return st, nil
	}
	return st, err
}

func (e *env) newEngine(st pet.State, saver engine.Saver) *engine.Engine {
	return engine.New(st,
		engine.WithSaver(saver),
		engine.WithLogger(e.logger),
		engine.WithCatalog(e.cfg.Catalog()),
	)
}

// executeStatefulCommand loads the pet, runs fn against an engine and waits
// for the final snapshot to be written.
func executeStatefulCommand(cmd *cobra.Command, fn func(e *engine.Engine, env *env) error) error {
	dataDir, err := resolveDataDir(cmd)
	if err != nil {
		return err
	}
	env, err := openEnv(cmd, dataDir)
	if err != nil {
		return err
	}
	defer env.Close()

	st, err := env.loadState(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	saver := storage.NewAsyncSaver(env.store, env.logger)
	eng := env.newEngine(st, saver)

	runErr := fn(eng, env)
	saver.Close()

	if runErr != nil {
		return runErr
	}
	if saver.Failures() > 0 {
		return fmt.Errorf("failed to save state: %w", saver.LastError())
	}
	return nil
}

// describe turns engine errors into something a person can act on.
func describe(err error) string {
	switch {
	case errors.Is(err, pet.ErrInsufficientStock):
		return "you're out of that. Visit the shop with 'watchbuddy shop'"
	case errors.Is(err, pet.ErrInsufficientFunds):
		return "not enough points. Sync some activity to earn more"
	case errors.Is(err, pet.ErrInvalidPurchase):
		return fmt.Sprintf("quantity must be between 1 and %d", pet.MaxPurchaseQuantity)
	case errors.Is(err, pet.ErrInvalidName):
		return "a name can't be blank"
	case errors.Is(err, engine.ErrNoActiveAction):
		return "nothing selected. Use 'watchbuddy select' first"
	case errors.Is(err, engine.ErrItemRequired):
		return "pick something to use with that action"
	}
	return err.Error()
}
