// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package credential

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string, logger zerolog.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Dir serves credentials from a directory with one file per key. The
// directory is read on every lookup so edits take effect immediately.
type Dir struct {
	Path   string
	Logger zerolog.Logger
}

// Lookup reads the file named name in the directory.
func (d Dir) Lookup(_ context.Context, name string) (string, bool, error) {
	if d.Path == "" {
		return "", false, nil
	}
	secrets, err := Load(d.Path, d.Logger)
	if err != nil {
		return "", false, err
	}
	v, ok := secrets[name]
	return v, ok, nil
}
