package config

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/xerrors"
)

const EnvPrefix = "ETHRPC"

// FromFile loads config from a specified file overriding the defaults.
func FromFile(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer file.Close() //nolint:errcheck // The file is RO
	cfg, err := FromReader(file)
	if err != nil {
		return nil, xerrors.Errorf("loading %s: %w", path, err)
	}
	cfg.ConfigPath = path
	return cfg, nil
}

// ConfigExist reports whether a config file is present at path.
func ConfigExist(path string) (bool, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return false, err
	}

	file, err := os.Open(path)
	switch {
	case os.IsNotExist(err):
		return false, nil
	case err != nil:
		return false, err
	}
	file.Close()
	return true, nil
}

func SaveConfig(path string, cfg interface{}) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return xerrors.Errorf("homedir expand error %s", path)
	}
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return xerrors.Errorf("make dir faile: %w", err)
	}
	buf := new(bytes.Buffer)
	_, _ = buf.WriteString("# Default config:\n")
	e := toml.NewEncoder(buf)
	if err := e.Encode(cfg); err != nil {
		return xerrors.Errorf("encoding config: %w", err)
	}

	return ioutil.WriteFile(path, buf.Bytes(), 0600)
}

// FromReader loads config from a reader instance, then applies ETHRPC_*
// environment overrides.
func FromReader(reader io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	_, err := toml.DecodeReader(reader, cfg)
	if err != nil {
		return nil, err
	}

	err = envconfig.Process(EnvPrefix, cfg)
	if err != nil {
		return nil, xerrors.Errorf("processing env vars overrides: %w", err)
	}

	return cfg, nil
}

const fsConfig = "config.toml"

// FsConfig is the config file path inside a data directory.
func FsConfig(dataDir string) string {
	return filepath.Join(dataDir, fsConfig)
}
