package vfile

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "a", "b")

	require.NoError(t, EnsureDir(dir))
	fi, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	// existing dir
	require.NoError(t, EnsureDir(dir))

	file := filepath.Join(root, "file")
	require.NoError(t, ioutil.WriteFile(file, []byte("x"), 0600))
	require.Error(t, EnsureDir(file))
}
