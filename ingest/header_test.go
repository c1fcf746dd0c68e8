package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	equivalent := []string{
		"Distributor ID",
		"distributorid",
		"distributor_id",
		"DISTRIBUTOR-ID",
		"  Distributor Id ",
		"Distributor.ID:",
	}
	for _, h := range equivalent {
		t.Run(h, func(t *testing.T) {
			assert.Equal(t, "distributorid", NormalizeHeader(h))
		})
	}

	assert.Equal(t, "", NormalizeHeader("123 _-"))
	assert.NotEqual(t, NormalizeHeader("Zone"), NormalizeHeader("Zones"))
}

func TestMapHeaders(t *testing.T) {
	t.Run("resolves variations", func(t *testing.T) {
		m, err := MapHeaders([]string{"STATE", "zone", "Distributor_Type", "Distributor Name", "distributor id"}, DistributorFields)
		require.NoError(t, err)
		assert.Equal(t, HeaderMapping{"id": 4, "name": 3, "type": 2, "zone": 1, "state": 0}, m)
		assert.Equal(t, 4, m.MaxIndex())
	})

	t.Run("reports every missing column", func(t *testing.T) {
		_, err := MapHeaders([]string{"Distributor ID", "Name", "Type"}, DistributorFields)
		var se *StructuralError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, []string{"Zone", "State"}, se.Missing)
		assert.Equal(t, "missing required columns: Zone, State", se.Error())
	})

	t.Run("rejects ambiguous columns", func(t *testing.T) {
		_, err := MapHeaders([]string{"Distributor ID", "Code", "Name", "Type", "Zone", "State"}, DistributorFields)
		var se *StructuralError
		require.True(t, errors.As(err, &se))
		assert.Contains(t, se.Error(), "ambiguous header for Distributor ID")
	})

	t.Run("optional fields may be absent", func(t *testing.T) {
		m, err := MapHeaders([]string{"Article ID", "Name"}, ArticleFields)
		require.NoError(t, err)
		_, ok := m["category"]
		assert.False(t, ok)
		assert.Equal(t, "", m.Cell([]string{"A1", "Cola"}, "category"))
	})
}

func TestHeaderMappingCell(t *testing.T) {
	m := HeaderMapping{"a": 0, "b": 3}
	row := []string{"x", "y"}

	assert.Equal(t, "x", m.Cell(row, "a"))
	assert.Equal(t, "", m.Cell(row, "b"))
	assert.Equal(t, "", m.Cell(row, "missing"))
	assert.Equal(t, -1, HeaderMapping{}.MaxIndex())
}
