package utils

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFile_ReplacesAndLeavesNoTemp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	require.NoError(t, SafeWriteFile(path, []byte("one")))
	require.NoError(t, SafeWriteFile(path, []byte("two")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSafeWriteFile_MissingDir(t *testing.T) {
	err := SafeWriteFile(filepath.Join(t.TempDir(), "nope", "out.md"), []byte("x"))
	assert.Error(t, err)
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(b))

	_, err = PrettyJSON(math.NaN())
	assert.Error(t, err)
}

func TestFindUp(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, EnsureDir(filepath.Join(root, "data")))
	require.NoError(t, os.WriteFile(filepath.Join(root, "data", "tips.csv"), []byte("tip\n1\n"), 0o644))
	deep := filepath.Join(root, "a", "b")
	require.NoError(t, EnsureDir(deep))

	got, err := FindUp(deep, filepath.Join("data", "tips.csv"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "data", "tips.csv"), got)

	_, err = FindUp(deep, "missing-"+filepath.Base(root)+".csv")
	assert.ErrorIs(t, err, ErrNotFound)
}
