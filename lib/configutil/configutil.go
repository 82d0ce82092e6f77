// Package configutil reads json5 and yaml config files with optional
// .local overrides.
package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"
)

func unmarshal(ext string, data []byte, out any) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, out)
	case ".json5", ".json":
		return json5.Unmarshal(data, out)
	}
	return fmt.Errorf("unsupported config extension %q", ext)
}

// localName is "<dir>/<base>.local<ext>" for "<dir>/<base><ext>".
func localName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

// readFile decodes path into out, found is false when the file does not
// exist or is empty.
func readFile[T any](path string, out *T) (found bool, err error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	err = unmarshal(filepath.Ext(path), data, out)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads name and then merges <name>.local.<ext> over it, so
// machine specific settings (database urls, api keys) stay out of the
// shared file. .json5/.json files are decoded as json5, .yaml/.yml files
// as yaml. os.ErrNotExist is returned when neither file exists.
func ReadConfig[T any](name string) (T, error) {
	var out T
	found, err := readFile(name, &out)
	if err != nil {
		return out, err
	}

	local := localName(name)
	var override T
	foundLocal, err := readFile(local, &override)
	if err != nil {
		return out, err
	}
	if foundLocal {
		slog.Debug("merging config with local overrides", "local", local)
		out, err = Merge(out, override)
		if err != nil {
			return out, fmt.Errorf("merge %s: %w", local, err)
		}
	}

	if !found && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively is ReadConfig on name in the cwd and then every parent
// directory up to the root, the first directory with a config wins.
func ReadRecursively[T any](name string) (T, error) {
	var empty T

	current, err := os.Getwd()
	if err != nil {
		return empty, err
	}
	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return empty, err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return empty, os.ErrNotExist
		}
		current = parent
	}
}

// Merge overlays the non-zero fields of override onto base, maps are
// merged key by key.
func Merge[T any](base T, override T) (T, error) {
	err := mergo.Merge(&base, override, mergo.WithOverride)
	return base, err
}
