package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGraphs(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("version: \"1.0\"\n"), 0o644))
	}
	return dir
}

func TestFindLatestGraph(t *testing.T) {
	t.Run("picks newest revision by filename", func(t *testing.T) {
		dir := writeGraphs(t, "deploy_001.yml", "deploy_002.yml", "deploy_010.yml")

		path, err := FindLatestGraph(dir, "deploy")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "deploy_010.yml"), path)
	})

	t.Run("ignores other entrypoints sharing a prefix", func(t *testing.T) {
		dir := writeGraphs(t, "deploy_001.yml", "deploy_rollback_005.yml")

		path, err := FindLatestGraph(dir, "deploy")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "deploy_001.yml"), path)
	})

	t.Run("accepts yaml extension", func(t *testing.T) {
		dir := writeGraphs(t, "deploy_003.yaml")

		path, err := FindLatestGraph(dir, "deploy")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "deploy_003.yaml"), path)
	})

	t.Run("errors when nothing matches", func(t *testing.T) {
		dir := writeGraphs(t, "other_001.yml")

		_, err := FindLatestGraph(dir, "deploy")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "deploy")
	})
}

func TestFindEntrypoints(t *testing.T) {
	t.Run("sorted and deduplicated", func(t *testing.T) {
		dir := writeGraphs(t, "deploy_001.yml", "deploy_002.yml", "backup_001.yaml", "notes.txt")

		entries, err := FindEntrypoints(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"backup", "deploy"}, entries)
	})

	t.Run("multi-word entrypoints keep their underscores", func(t *testing.T) {
		dir := writeGraphs(t, "my_flow_001.yml")

		entries, err := FindEntrypoints(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"my_flow"}, entries)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := FindEntrypoints(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
	})
}
