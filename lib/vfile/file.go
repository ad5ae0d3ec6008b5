package vfile

import "os"

// EnsureDir creates path and its parents unless it already exists as a
// directory.
func EnsureDir(path string) error {
	fi, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return os.MkdirAll(path, 0755)
	case err != nil:
		return err
	case !fi.IsDir():
		return &os.PathError{Op: "ensure dir", Path: path, Err: os.ErrExist}
	}
	return nil
}
