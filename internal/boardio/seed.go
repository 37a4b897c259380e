// ABOUTME: Board bootstrapping: default board creation, seed directories and imports
// ABOUTME: Existing boards are never overwritten by seeding

package boardio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/2389/homarr-board/internal/board"
	"github.com/2389/homarr-board/internal/store"
)

// EnsureBoard creates an empty board with the given locale if none exists.
// It reports whether the board was created.
func EnsureBoard(ctx context.Context, s store.ConfigStore, name, locale string) (bool, error) {
	_, err := s.Get(ctx, name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	cfg := board.New(name)
	cfg.Settings.Locale = locale
	if err := s.Create(ctx, cfg); err != nil {
		if errors.Is(err, store.ErrBoardExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReadFile decodes a board file, inferring the format from its extension.
// A document without a name takes the file's base name.
func ReadFile(path string) (*board.Config, error) {
	f, ok := FormatForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Base(path))
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg, err := decodeRaw(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	normalize(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// SeedDir imports every board file in dir whose board does not exist yet.
// Files are processed in name order; unreadable files are logged and skipped.
// It returns the names of the boards created.
func SeedDir(ctx context.Context, s store.ConfigStore, dir string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("seed directory missing", "dir", dir)
			return nil, nil
		}
		return nil, fmt.Errorf("reading seed directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var created []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := FormatForPath(e.Name()); !ok {
			continue
		}
		path := filepath.Join(dir, e.Name())
		cfg, err := ReadFile(path)
		if err != nil {
			logger.Warn("skipping seed file", "file", path, "error", err)
			continue
		}
		cfg.Version = 0
		if err := s.Create(ctx, cfg); err != nil {
			if errors.Is(err, store.ErrBoardExists) {
				logger.Debug("seed board exists", "board", cfg.Name)
				continue
			}
			return created, fmt.Errorf("seeding %s: %w", cfg.Name, err)
		}
		logger.Info("seeded board", "board", cfg.Name, "file", path)
		created = append(created, cfg.Name)
	}
	return created, nil
}

// Import replaces the content of an existing board with cfg, keeping its
// name. The version advances by one unless the content is identical.
func Import(ctx context.Context, s store.ConfigStore, name string, cfg *board.Config) (*board.Config, bool, error) {
	incoming := cfg.Clone()
	if err := jsonProperties(incoming); err != nil {
		return nil, false, err
	}
	return s.Update(ctx, name, func(prev *board.Config) *board.Config {
		next := incoming.Clone()
		next.Name = prev.Name
		next.Version = prev.Version
		return next
	}, nil)
}
