package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDialectFromDSN(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/chest":             DialectPostgres,
		"postgresql://localhost/chest":                    DialectPostgres,
		"host=localhost user=u dbname=chest sslmode=off":  DialectPostgres,
		"chest.db":                                        DialectSQLite,
		"file:chest.db?cache=shared":                      DialectSQLite,
		"":                                                DialectSQLite,
	}
	for dsn, want := range cases {
		assert.Equal(t, want, DialectFromDSN(dsn), dsn)
	}
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "chest.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN(""))
	assert.Equal(t, "a.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("a.db?mode=rwc"))
	assert.Equal(t,
		"a.db?_pragma=foreign_keys(0)&_pragma=busy_timeout(10)",
		sqliteDSN("a.db?_pragma=foreign_keys(0)&_pragma=busy_timeout(10)"))
}

func TestInitDB_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chest.db")
	log := zap.NewNop().Sugar()

	db, err := InitDB(path, log)
	require.NoError(t, err)
	require.NoError(t, Close(db))

	// повторный запуск не должен падать на уже применённых миграциях
	db, err = InitDB(path, log)
	require.NoError(t, err)
	defer Close(db)

	for _, table := range []string{"partners", "profiles", "events", "event_partners", "share_links"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Ping(context.Background(), db))

	require.NoError(t, Close(db))
	assert.Error(t, Ping(context.Background(), db))
}
