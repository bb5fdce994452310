package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the well-known configuration file name, looked up in the
// working directory and then the home directory.
const FileName = ".sitelens"

// StarterFileContent is the commented template written by `sitelens init`.
const StarterFileContent = `# sitelens configuration file.
#
# Settings under defaults apply to every site; per-site overrides are
# keyed by hostname. Zero values inherit from the CLI flags.

defaults:
  max_pages: 50
  max_depth: 3
  # exclude_patterns:
  #   - "/wp-admin"
  #   - "\\?replytocom="

sites: {}
  # example.com:
  #   max_pages: 100
  #   use_reader: false
  #   exclude_patterns:
  #     - "/tag/"
  # staging.example.com:
  #   cookie: "session=abc123"
  #   headers:
  #     Authorization: "Basic dXNlcjpwYXNz"
`

// FindConfigFile resolves the configuration file path. An explicit path
// must exist; otherwise the working directory is searched, then the
// home directory. An empty return with a nil error means no file was
// found, which is not a failure since the file is optional.
func FindConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %w", err)
		}
		return explicit, nil
	}

	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil
	}
	candidate := filepath.Join(home, FileName)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}

	return "", nil
}

// LoadFile parses a .sitelens file. A missing file is not an error and
// yields a nil File, so callers can load unconditionally.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &f, nil
}

// WriteStarterFile writes the commented template to path. It refuses to
// overwrite an existing file.
func WriteStarterFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := os.WriteFile(path, []byte(StarterFileContent), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
