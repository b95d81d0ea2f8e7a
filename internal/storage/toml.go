package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/sethgrid/watchbuddy/internal/pet"
)

const StateFileName = "pet.state.toml"

// TOMLStore keeps the pet in a single TOML file.
type TOMLStore struct {
	path string
}

func NewTOMLStore(path string) *TOMLStore {
	return &TOMLStore{path: path}
}

func (s *TOMLStore) Path() string { return s.path }

func (s *TOMLStore) Load(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to read state file: %w", err)
	}

	var rec Record
	if err := toml.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: failed to parse state file: %w", ErrDecode, err)
	}
	return rec, nil
}

// Save writes to a temp file and renames it over the old one, so a crash
// mid-write never leaves a half-written state behind.
func (s *TOMLStore) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := toml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, StateFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// InitPet writes a fresh pet named name into store. It refuses to overwrite
// an existing save unless force is set.
func InitPet(ctx context.Context, store Store, name string, force bool) (pet.State, error) {
	if !force {
		_, err := store.Load(ctx)
		if err == nil || errors.Is(err, ErrDecode) {
			return pet.State{}, fmt.Errorf("a pet already exists. Use 'kill' or 'erase' instead, or --force")
		}
		if !errors.Is(err, ErrNotFound) {
			return pet.State{}, err
		}
	}

	s := pet.NewState()
	if name != "" {
		if err := s.Rename(name); err != nil {
			return pet.State{}, err
		}
	}
	if err := store.Save(ctx, FromState(s)); err != nil {
		return pet.State{}, fmt.Errorf("failed to save new pet: %w", err)
	}
	return s, nil
}
