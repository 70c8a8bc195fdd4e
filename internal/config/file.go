package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// fileStore keeps config as a flat YAML mapping keyed by the dotted
// key names from the keySpec table (e.g. "server.port").
type fileStore struct {
	path string
	data map[string]any
}

func newFileStore(path string) *fileStore {
	fs := &fileStore{path: path, data: make(map[string]any)}
	fs.load()
	return fs
}

func configFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "chatorg", "config.yaml")
}

func (fs *fileStore) load() {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "[WARN] could not read config file %s: %v. Using default values.\n", fs.path, err)
		}
		return
	}
	if err := yaml.Unmarshal(data, &fs.data); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] could not parse config file %s: %v. Using default values.\n", fs.path, err)
	}
}

func (fs *fileStore) save() error {
	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(fs.data)
	if err != nil {
		return err
	}
	return os.WriteFile(fs.path, data, 0o600)
}

func (fs *fileStore) GetString(key string) (string, bool, error) {
	v, ok := fs.data[key]
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("%v", v), true, nil
	}
	return s, true, nil
}

func (fs *fileStore) GetInt(key string) (int, bool, error) {
	v, ok := fs.data[key]
	if !ok {
		return 0, false, nil
	}
	switch val := v.(type) {
	case int:
		return val, true, nil
	case string:
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, true, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return i, true, nil
	default:
		return 0, true, fmt.Errorf("invalid type for %s", key)
	}
}

func (fs *fileStore) SetString(key, val string) error {
	fs.data[key] = val
	return fs.save()
}

func (fs *fileStore) SetInt(key string, val int) error {
	fs.data[key] = val
	return fs.save()
}
