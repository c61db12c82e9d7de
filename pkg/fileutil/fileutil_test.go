package fileutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/playlist-resolver/pkg/fileutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFileExtension(t *testing.T) {
	assert.Equal(t, "m3u", fileutil.GetFileExtension("/music/List.M3U"))
	assert.Equal(t, "gz", fileutil.GetFileExtension("archive.tar.gz"))
	assert.Equal(t, "", fileutil.GetFileExtension("/music/README"))
}

func TestReadPrefix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.m3u")
	require.NoError(t, os.WriteFile(path, []byte("#EXTM3U\nsong.mp3\n"), 0o644))

	prefix, err := fileutil.ReadPrefix(path, 7)
	require.Nil(t, err)
	assert.Equal(t, "#EXTM3U", string(prefix))

	all, err := fileutil.ReadPrefix(path, 0)
	require.Nil(t, err)
	assert.Equal(t, "#EXTM3U\nsong.mp3\n", string(all))
}

func TestReadPrefix_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := fileutil.ReadPrefix(filepath.Join(dir, "missing.pls"), 10)
	var fileErr *fileutil.FileError
	require.True(t, errors.As(err, &fileErr))
	assert.Equal(t, fileutil.ErrCauseNotFound, fileErr.Cause)

	_, err = fileutil.ReadPrefix(dir, 10)
	require.True(t, errors.As(err, &fileErr))
	assert.Equal(t, fileutil.ErrCauseIsDirectory, fileErr.Cause)
}

func TestListDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp3", "a.mp3", "c.ogg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	children, err := fileutil.ListDir(dir)
	require.Nil(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.mp3"),
		filepath.Join(dir, "b.mp3"),
		filepath.Join(dir, "c.ogg"),
	}, children)

	_, err = fileutil.ListDir(filepath.Join(dir, "a.mp3"))
	var fileErr *fileutil.FileError
	require.True(t, errors.As(err, &fileErr))
	assert.Equal(t, fileutil.ErrCauseNotDir, fileErr.Cause)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "nested")

	require.Nil(t, fileutil.EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// existing directories are fine
	assert.Nil(t, fileutil.EnsureDir(dir))

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	fileErr := fileutil.EnsureDir(filepath.Join(blocker, "sub"))
	require.NotNil(t, fileErr)
	var fe *fileutil.FileError
	require.True(t, errors.As(fileErr, &fe))
	assert.Equal(t, filepath.Join(blocker, "sub"), fe.Path)
}
