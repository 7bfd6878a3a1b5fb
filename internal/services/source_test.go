package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSourceListAndRead(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pdf"), []byte("bee"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("ay"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755))

	source := NewDirSource(dir)

	names, err := source.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, names)

	data, err := source.Read(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("ay"), data)

	_, err = source.Read(context.Background(), "../a.pdf")
	assert.Error(t, err)
	_, err = source.Read(context.Background(), "missing.pdf")
	assert.Error(t, err)
}

func TestDirSourceMissingDirectory(t *testing.T) {
	_, err := NewDirSource(filepath.Join(t.TempDir(), "absent")).List(context.Background())
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, isPDF("cv.pdf"))
	assert.True(t, isPDF("CV.PDF"))
	assert.False(t, isPDF("cv.pdf.txt"))
	assert.False(t, isPDF("pdf"))
}
