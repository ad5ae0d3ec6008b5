package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/multiformats/go-multiaddr"
	"golang.org/x/xerrors"
)

const fsAPI = "api"

var ErrNoAPIEndpoint = xerrors.New("API not running (no endpoint)")

// LocalStorage is the daemon's data directory.
type LocalStorage struct {
	dataDir string
}

func NewLocalStorage(path string) *LocalStorage {
	path, _ = homedir.Expand(path)
	return &LocalStorage{dataDir: path}
}

// join joins dataDir elements with fsr.dataDir
func (fsr *LocalStorage) join(paths ...string) string {
	return filepath.Join(append([]string{fsr.dataDir}, paths...)...)
}

// APIEndpoint returns the endpoint written by a running daemon.
func (fsr *LocalStorage) APIEndpoint() (multiaddr.Multiaddr, error) {
	p := fsr.join(fsAPI)

	data, err := ioutil.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, ErrNoAPIEndpoint
	} else if err != nil {
		return nil, xerrors.Errorf("failed to read %q: %w", p, err)
	}

	apima, err := multiaddr.NewMultiaddr(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, err
	}
	return apima, nil
}

func (fsr *LocalStorage) SetAPIEndpoint(ma multiaddr.Multiaddr) error {
	if err := os.MkdirAll(fsr.dataDir, 0755); err != nil {
		return err
	}
	return ioutil.WriteFile(fsr.join(fsAPI), []byte(ma.String()), 0644)
}

func (fsr *LocalStorage) ClearAPIEndpoint() error {
	err := os.Remove(fsr.join(fsAPI))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
