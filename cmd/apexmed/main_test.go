package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func useSQLite(t *testing.T) {
	t.Helper()
	chdirForTest(t, t.TempDir())
	t.Setenv("APEXMED_STORAGE_TYPE", "sqlite")
	t.Setenv("APEXMED_STORAGE_SQLITE_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("APEXMED_LOG_LEVEL", "error")
}

func TestCLI_CommentsFlow(t *testing.T) {
	useSQLite(t)

	out, err := run(t, "comments", "list", "v1")
	require.NoError(t, err)
	assert.Contains(t, out, "Nenhum comentário ainda")

	_, err = run(t, "--user", "", "comments", "add", "v1", "Ótimo", "vídeo")
	require.Error(t, err)
	assert.Equal(t, "Faça login para deixar um comentário", err.Error())

	_, err = run(t, "--user", "u1", "comments", "add", "v1", "ab")
	require.Error(t, err)
	assert.Equal(t, "O comentário deve ter pelo menos 3 caracteres.", err.Error())

	out, err = run(t, "--user", "u1", "--name", "Dra. Maria", "comments", "add", "v1", "Ótimo", "vídeo")
	require.NoError(t, err)
	assert.Contains(t, out, "Comentário publicado")

	out, err = run(t, "comments", "list", "v1", "--order", "oldest")
	require.NoError(t, err)
	assert.Contains(t, out, "Ótimo vídeo")
	assert.Contains(t, out, "Dra. Maria")

	_, err = run(t, "comments", "list", "v1", "--order", "random")
	assert.Error(t, err)
}

func TestCLI_VideoFlags(t *testing.T) {
	useSQLite(t)

	_, err := run(t, "--user", "", "video", "like", "v1")
	require.Error(t, err)

	out, err := run(t, "--user", "u1", "video", "like", "v1")
	require.NoError(t, err)
	assert.Contains(t, out, "liked: true")

	out, err = run(t, "--user", "u1", "video", "list", "liked")
	require.NoError(t, err)
	assert.Contains(t, out, "v1")

	out, err = run(t, "--user", "u1", "video", "stats", "v1")
	require.NoError(t, err)
	assert.Contains(t, out, "1 curtidas")
	assert.Contains(t, out, "favorited: false")
}

// chdirForTest меняет рабочий каталог на время теста (аналог t.Chdir из Go 1.24).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
