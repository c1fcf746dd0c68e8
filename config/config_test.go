package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_PATH", "DATABASE_URL", "AUTH_USER", "AUTH_PASS",
		"LOG_LEVEL", "REFERENCE_FILE", "MAX_UPLOAD_MB", "MAX_SALES_RECORDS"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "./data/schemes.db", cfg.DSN())
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 100000, cfg.MaxSalesRecords)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/schemes")
	t.Setenv("MAX_SALES_RECORDS", "50")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "postgres://u:p@localhost/schemes", cfg.DSN())
	assert.Equal(t, 50, cfg.MaxSalesRecords)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"postgres without url", map[string]string{"DB_DRIVER": "postgres"}, "DATABASE_URL is required"},
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}, `unsupported DB_DRIVER "mysql"`},
		{"bad upload size", map[string]string{"MAX_UPLOAD_MB": "lots"}, "MAX_UPLOAD_MB"},
		{"upload size too large", map[string]string{"MAX_UPLOAD_MB": "9007199254740992"}, "MAX_UPLOAD_MB must not exceed 1024"},
		{"bad record limit", map[string]string{"MAX_SALES_RECORDS": "-1"}, "MAX_SALES_RECORDS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
