package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDataDirWalksUp(t *testing.T) {
	root := t.TempDir()
	data := filepath.Join(root, DirName)
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(data, 0755))
	require.NoError(t, os.MkdirAll(nested, 0755))

	got, found, err := FindDataDir(nested)
	require.NoError(t, err)
	assert.True(t, found)

	want, _ := filepath.EvalSymlinks(data)
	gotResolved, _ := filepath.EvalSymlinks(got)
	assert.Equal(t, want, gotResolved)
}

func TestFindDataDirIgnoresFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, DirName), []byte("x"), 0644))

	got, found, err := FindDataDir(root)
	require.NoError(t, err)
	if found {
		// A real .watchbuddy further up (e.g. in $HOME) is fine, as long as
		// it is not the plain file we created.
		assert.NotEqual(t, filepath.Join(root, DirName), got)
	}
}
