package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), "{}")
	writeFile(t, filepath.Join(dir, "b.JSON"), "{}")
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")
	writeFile(t, filepath.Join(dir, "nested", "c.json"), "{}")

	t.Run("directory walk keeps drafts only", func(t *testing.T) {
		files, err := collectFiles([]string{dir})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			filepath.Join(dir, "a.json"),
			filepath.Join(dir, "b.JSON"),
			filepath.Join(dir, "nested", "c.json"),
		}, files)
	})

	t.Run("glob", func(t *testing.T) {
		files, err := collectFiles([]string{filepath.Join(dir, "*.json")})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "a.json")}, files)
	})

	t.Run("stdin marker", func(t *testing.T) {
		files, err := collectFiles([]string{"-"})
		require.NoError(t, err)
		assert.Equal(t, []string{"-"}, files)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := collectFiles([]string{filepath.Join(dir, "missing.json")})
		assert.Error(t, err)
	})
}

func TestReadDraft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draft.json")
	writeFile(t, path, `{
		"client_name": "Acme",
		"id_type": "NIT",
		"id_number": "900123",
		"email": "billing@acme.test",
		"phone": "3001234567",
		"date": "2024-03-01",
		"currency": "EUR",
		"items": [{"description": "Design", "quantity": "2", "price": "100"}]
	}`)

	d, err := readDraft(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme", d.ClientName)
	assert.Equal(t, "2024-03-01", d.IssueDate)
	assert.Equal(t, "EUR", d.Currency)
	require.Len(t, d.Items, 1)
	assert.Equal(t, "2", d.Items[0].Quantity)

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, "{")
	_, err = readDraft(bad)
	assert.Error(t, err)
}
