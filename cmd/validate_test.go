package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satheeshds/schemes/ingest"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("LOG_LEVEL", "")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateDistributors(t *testing.T) {
	path := writeFile(t, "d.csv", "Distributor ID,Distributor Name,Distributor Type,Zone,State\n"+
		"D1,Acme,P1,North1,Delhi\n"+
		"D2,Beta,P1,North1,Maharashtra\n")

	out, err := run(t, "validate", "distributors", path)
	require.NoError(t, err)
	assert.Contains(t, out, "total: 2\nvalid: 1\ninvalid: 1\n")
	assert.Contains(t, out, `Row 3: Invalid state "Maharashtra" for zone North1`)
}

func TestValidateStructuralErrorFails(t *testing.T) {
	path := writeFile(t, "d.csv", "ID,Name\nD1,Acme\n")
	_, err := run(t, "validate", "distributors", path)
	var structErr *ingest.StructuralError
	require.ErrorAs(t, err, &structErr)
	assert.Equal(t, []string{"Distributor Type", "Zone", "State"}, structErr.Missing)
}

func TestValidateSales(t *testing.T) {
	path := writeFile(t, "s.csv", "Distributor ID,Article ID,Billing Quantity,Net Sales\n"+
		"D1,A1,10,100.5\n"+
		"D2,A1,-2,50\n")

	out, err := run(t, "validate", "sales", path)
	require.NoError(t, err)
	assert.Contains(t, out, "records: 2\n")
	assert.Contains(t, out, "distributors: 2\n")
	assert.Contains(t, out, "net sales: 150.50\n")
	assert.Contains(t, out, "recorded as 0")
}

func TestValidateArticles(t *testing.T) {
	path := writeFile(t, "a.csv", "Article ID,Article Name,Category\nA1,Wire,\nA2,Plug,Lighting\n")
	out, err := run(t, "validate", "articles", path)
	require.NoError(t, err)
	assert.Contains(t, out, "valid: 1\n")
	assert.Contains(t, out, `Row 3: Unknown category "Lighting"`)
}
