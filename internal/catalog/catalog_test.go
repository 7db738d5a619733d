package catalog

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Daemonaise/studio/internal/db"
	"github.com/Daemonaise/studio/internal/migrations"
	"github.com/Daemonaise/studio/internal/quote"
)

func openMigrated(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "catalog-test.db")
	database, err := db.Open(dbPath)
	require.NoError(t, err, "open sqlite database")
	t.Cleanup(func() { database.Close() })

	require.NoError(t, migrations.Up(database, "../../migrations"), "run migrations")

	return database
}

func TestSeedIsIdempotent(t *testing.T) {
	t.Parallel()

	database := openMigrated(t)

	for i := 0; i < 5; i++ {
		stats, err := Seed(database)
		require.NoErrorf(t, err, "seed iteration %d", i)
		if i == 0 {
			assert.Equal(t, 17, stats.Inserts)
			continue
		}
		assert.Zerof(t, stats.Inserts, "iteration %d should insert nothing", i)
	}

	var printers, rates, filaments, rules int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM printers`).Scan(&printers))
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM printer_rates`).Scan(&rates))
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM filaments`).Scan(&filaments))
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM rescale_rules`).Scan(&rules))
	assert.Equal(t, 3, printers)
	assert.Equal(t, 7, rates)
	assert.Equal(t, 4, filaments)
	assert.Equal(t, 2, rules)
}

func TestLoadRoundTripsDefault(t *testing.T) {
	t.Parallel()

	database := openMigrated(t)
	_, err := Seed(database)
	require.NoError(t, err)

	loaded, err := Load(database)
	require.NoError(t, err)

	want := Default()

	require.Len(t, loaded.Printers, len(want.Printers))
	byKey := make(map[string]quote.Printer, len(loaded.Printers))
	for _, p := range loaded.Printers {
		byKey[p.Key] = p
	}
	for _, p := range want.Printers {
		got, ok := byKey[p.Key]
		require.Truef(t, ok, "printer %s missing after load", p.Key)
		assert.Equal(t, p, got)
	}

	assert.Equal(t, want.Filaments, loaded.Filaments)
	assert.Equal(t, want.Constants, loaded.Constants)
}

func TestLoadFailsWithoutConstants(t *testing.T) {
	t.Parallel()

	database := openMigrated(t)

	_, err := Load(database)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pricing_constants")
}

func TestLoadSkipsInactiveFilaments(t *testing.T) {
	t.Parallel()

	database := openMigrated(t)
	_, err := Seed(database)
	require.NoError(t, err)

	_, err = database.Exec(`UPDATE filaments SET active = FALSE WHERE id = 'abs'`)
	require.NoError(t, err)

	loaded, err := Load(database)
	require.NoError(t, err)

	assert.NotContains(t, loaded.Filaments, "abs")
	assert.Contains(t, loaded.Filaments, "pla")
}
