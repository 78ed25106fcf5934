package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidateDirAcceptsRepoMigrations(t *testing.T) {
	files, err := ValidateDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	require.True(t, strings.HasSuffix(files[0], "_create_lifecycle_enums.sql"))
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	_, err := ValidateDir(dir)
	require.ErrorContains(t, err, "invalid migration filename")

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_a.sql"), []byte("-- +goose Up\n"), 0o644))
	_, err = ValidateDir(dir)
	require.ErrorContains(t, err, "missing \"-- +goose Down\"")

	_, err = ValidateDir(t.TempDir())
	require.ErrorContains(t, err, "no migrations found")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	path, err := createSQLMigrationAt(dir, "Add Asset Tags!", at)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20250304050607_add_asset_tags.sql"), path)

	files, err := ValidateDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	_, err = createSQLMigrationAt(dir, "Add Asset Tags!", at)
	require.ErrorContains(t, err, "already exists")

	_, err = createSQLMigrationAt(dir, "!!!", at)
	require.Error(t, err)
}

func TestRequestMigrationContainsActiveAssetIndex(t *testing.T) {
	content := readMigration(t, "*_create_asset_requests.sql")
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS asset_requests",
		"CHECK (return_date >= request_date)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_asset_requests_active_asset",
		"WHERE assigned_asset_id IS NOT NULL AND status IN ('pending', 'approved')",
		"DROP TABLE IF EXISTS asset_requests",
	} {
		require.Contains(t, content, sub)
	}
}

func TestReturnMigrationContainsCurrentIndex(t *testing.T) {
	content := readMigration(t, "*_create_asset_returns.sql")
	require.Contains(t, content, "CREATE UNIQUE INDEX IF NOT EXISTS ux_asset_returns_current")
	require.Contains(t, content, "WHERE is_current")
}

func TestSQLiteSchemaMirrorsPartialIndexes(t *testing.T) {
	joined := strings.Join(sqliteSchema, "\n")
	require.Contains(t, joined, "ux_asset_requests_active_asset")
	require.Contains(t, joined, "ux_asset_returns_current")
	require.Contains(t, joined, "lifecycle_events")
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestEmbeddedMigrationsMatchRepoDir(t *testing.T) {
	onDisk, err := ValidateDir("migrations")
	require.NoError(t, err)

	embeddedFiles, err := EmbeddedFiles()
	require.NoError(t, err)
	require.Len(t, embeddedFiles, len(onDisk))
	for i, path := range onDisk {
		require.Equal(t, filepath.Base(path), embeddedFiles[i])
	}
}

func TestMigrateToVersionRejectsBadVersion(t *testing.T) {
	err := MigrateToVersion(context.Background(), nil, EmbeddedDir, "latest")
	require.ErrorContains(t, err, "invalid version")
}
