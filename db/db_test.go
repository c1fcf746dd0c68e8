package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "schemes.db")
	conn, err := Open("sqlite", path)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, Migrate(conn))
	require.NoError(t, Migrate(conn), "second run is a no-op")

	for _, table := range []string{"distributors", "categories", "articles", "schemes", "scheme_slabs", "scheme_targets", "sales_records"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	_, err = conn.Exec(`INSERT INTO articles (id, name, category_id) VALUES ('A1', 'Widget', 'missing')`)
	assert.Error(t, err, "foreign keys are enforced")
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "x")
	assert.EqualError(t, err, `unsupported database driver "mysql"`)
}

func TestRebind(t *testing.T) {
	q := `SELECT * FROM t WHERE a = ? AND b LIKE '%?%' AND c IN (?, ?)`
	assert.Equal(t, q, Rebind(q))

	Driver = "postgres"
	defer func() { Driver = "sqlite" }()
	assert.Equal(t, `SELECT * FROM t WHERE a = $1 AND b LIKE '%?%' AND c IN ($2, $3)`, Rebind(q))
}
