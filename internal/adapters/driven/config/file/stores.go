// Package file loads the store table from a TOML file. The table maps
// each store (a named sheet/tab) to its destination folder, plus
// optional export defaults. It is read once at startup and becomes an
// immutable slice passed explicitly into the orchestrator.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/arcline-labs/chartpress/internal/core/domain"
)

// DefaultPath is used when no --config flag is given.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".chartpress", "stores.toml"), nil
}

// ExportDefaults are the optional [export] settings of the config
// file. Zero values mean "not set"; flags and environment take
// precedence over them.
type ExportDefaults struct {
	Strategy      string  `toml:"strategy"`
	Concurrency   int     `toml:"concurrency"`
	RetryAttempts int     `toml:"retry_attempts"`
	MarginPT      float64 `toml:"margin_pt"`
}

// Config is the parsed store table.
type Config struct {
	Stores   []domain.Store
	Defaults ExportDefaults
}

type storeEntry struct {
	Name     string `toml:"name"`
	Sheet    string `toml:"sheet"`
	FolderID string `toml:"folder_id"`
}

type configFile struct {
	Stores []storeEntry   `toml:"store"`
	Export ExportDefaults `toml:"export"`
}

// Load reads and validates the store table. Store order in the file is
// the processing order of the run.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var parsed configFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(parsed.Stores) == 0 {
		return nil, fmt.Errorf("%w: %s defines no [[store]] blocks", domain.ErrInvalidConfig, path)
	}

	cfg := &Config{Defaults: parsed.Export}
	seen := make(map[string]bool, len(parsed.Stores))
	for i, entry := range parsed.Stores {
		if entry.Name == "" || entry.Sheet == "" || entry.FolderID == "" {
			return nil, fmt.Errorf("%w: store %d needs name, sheet and folder_id", domain.ErrInvalidConfig, i+1)
		}
		if seen[entry.Name] {
			return nil, fmt.Errorf("%w: duplicate store %q", domain.ErrInvalidConfig, entry.Name)
		}
		seen[entry.Name] = true
		cfg.Stores = append(cfg.Stores, domain.Store{
			Name:     entry.Name,
			Sheet:    entry.Sheet,
			FolderID: entry.FolderID,
		})
	}
	return cfg, nil
}
