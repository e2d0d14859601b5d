package assets

import (
	"io"
	"path/filepath"
	"testing"
	"wxhm/internal/models"
	"wxhm/internal/structures"
	"wxhm/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShelf(t *testing.T) FileShelfInterface {
	t.Helper()
	conf := &structures.Config{Storage: structures.StorageConfig{FilesDir: filepath.Join(t.TempDir(), "files")}}
	shelf, err := NewFileShelf(conf, &testutil.MockLogger{})
	require.NoError(t, err)
	return shelf
}

func TestFileShelf_SaveListOpenDelete(t *testing.T) {
	shelf := newTestShelf(t)

	name, err := shelf.Save("MP_verify_abc.txt", []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, "MP_verify_abc.txt", name)

	files, err := shelf.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"MP_verify_abc.txt"}, files)

	f, err := shelf.Open(name)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	require.NoError(t, shelf.Delete(name))
	assert.ErrorIs(t, shelf.Delete(name), models.ErrNotFound)

	files, err = shelf.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFileShelf_StripsDirectories(t *testing.T) {
	shelf := newTestShelf(t)

	name, err := shelf.Save("../../outside.txt", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "outside.txt", name)

	name, err = shelf.Save(`C:\Users\me\win.txt`, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "win.txt", name)
}

func TestFileShelf_RejectsHiddenNames(t *testing.T) {
	shelf := newTestShelf(t)

	_, err := shelf.Save(".env", []byte("x"))
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = shelf.Save("", []byte("x"))
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = shelf.Open("..")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = shelf.Open("missing.txt")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
