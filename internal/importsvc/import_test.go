package importsvc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePages = `{"page":1,"id":0,"obj":"page"}
{"page":1,"id":1,"obj":"btn","x":10,"y":20,"w":100,"h":50,"entity":"light.kitchen"}
{"page":2,"id":2,"obj":"label","x":0,"y":0,"text":"Temp"}
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestListAvailable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pages.jsonl", samplePages)
	writeFile(t, dir, "other.jsonl", samplePages)
	writeFile(t, dir, "notes.txt", "ignored")

	s := NewService(dir)
	files, err := s.ListAvailable()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"pages.jsonl", "other.jsonl"}, files)
}

func TestListAvailableMissingDir(t *testing.T) {
	s := NewService(filepath.Join(t.TempDir(), "does-not-exist"))
	files, err := s.ListAvailable()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pages.jsonl", samplePages)

	s := NewService(dir)
	layout, err := s.ImportFile("pages.jsonl")
	require.NoError(t, err)
	require.NotNil(t, layout)
	assert.Equal(t, "Imported from pages.jsonl", layout.Name)
	require.Len(t, layout.Pages, 2)
	assert.Equal(t, 1, layout.Pages[0].PageID)
	require.Len(t, layout.Pages[0].Objects, 1)
	assert.Equal(t, "light.kitchen", layout.Pages[0].Objects[0].EntityID)
}

func TestImportFileAbsentReturnsNil(t *testing.T) {
	s := NewService(t.TempDir())
	layout, err := s.ImportFile("pages.jsonl")
	require.NoError(t, err)
	assert.Nil(t, layout)
}

func TestImportFileRejectsPathTraversal(t *testing.T) {
	s := NewService(t.TempDir())
	_, err := s.ImportFile("../etc/passwd")
	assert.Error(t, err)
}

func TestImportFileEmptyContentReturnsNil(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.jsonl", "# only a comment\n")

	s := NewService(dir)
	layout, err := s.ImportFile("empty.jsonl")
	require.NoError(t, err)
	assert.Nil(t, layout)
}

func TestImportForDevicePrefersSpecificFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pages.jsonl", samplePages)
	writeFile(t, dir, "plate01.jsonl", samplePages)

	s := NewService(dir)
	layout, source, err := s.ImportForDevice("plate01")
	require.NoError(t, err)
	require.NotNil(t, layout)
	assert.Equal(t, "plate01.jsonl", source)
}

func TestImportForDeviceFallsBackToSharedPagesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pages.jsonl", samplePages)

	s := NewService(dir)
	layout, source, err := s.ImportForDevice("plate01")
	require.NoError(t, err)
	require.NotNil(t, layout)
	assert.Equal(t, "pages.jsonl", source)
}

func TestImportForDeviceNothingFound(t *testing.T) {
	s := NewService(t.TempDir())
	layout, source, err := s.ImportForDevice("plate01")
	require.NoError(t, err)
	assert.Nil(t, layout)
	assert.Empty(t, source)
}
