package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	d := Default()

	assert.Equal(t, []string{"East", "West", "North1", "North2", "South"}, d.Zones)
	assert.Len(t, d.DistributorTypes, 11)
	assert.Contains(t, d.StatesFor("North1"), "Delhi")
	assert.NotContains(t, d.StatesFor("North1"), "Maharashtra")
}

func TestLookupsAreCaseInsensitive(t *testing.T) {
	d := Default()

	z, ok := d.Zone("north1")
	require.True(t, ok)
	assert.Equal(t, "North1", z)

	s, ok := d.State("West", "maharashtra")
	require.True(t, ok)
	assert.Equal(t, "Maharashtra", s)

	code, ok := d.DistributorType("p1")
	require.True(t, ok)
	assert.Equal(t, "P1", code)

	_, ok = d.DistributorType("P0")
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses default", func(t *testing.T) {
		d, err := Load("")
		require.NoError(t, err)
		assert.Len(t, d.Zones, 5)
	})

	t.Run("custom file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ref.yaml")
		body := "zones: [Central]\nzone_states:\n  Central: [Nagpur]\ndistributor_types:\n  - code: X1\n    name: Test\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		d, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"Central"}, d.Zones)
		assert.Equal(t, []string{"X1"}, d.TypeCodes())
	})

	t.Run("unknown zone in state mapping", func(t *testing.T) {
		_, err := Parse([]byte("zones: [A]\nzone_states:\n  B: [x]\ndistributor_types:\n  - code: X1\n"))
		assert.ErrorContains(t, err, "unknown zone")
	})

	t.Run("state mapping keys take the zone spelling", func(t *testing.T) {
		d, err := Parse([]byte("zones: [East]\nzone_states:\n  east: [Odisha]\ndistributor_types:\n  - code: X1\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Odisha"}, d.StatesFor("East"))
		s, ok := d.State("East", "odisha")
		assert.True(t, ok)
		assert.Equal(t, "Odisha", s)
	})

	t.Run("zone listed twice in state mapping", func(t *testing.T) {
		_, err := Parse([]byte("zones: [East]\nzone_states:\n  east: [Odisha]\n  East: [Bihar]\ndistributor_types:\n  - code: X1\n"))
		assert.ErrorContains(t, err, "more than once")
	})
}

func TestWithArticleCategoriesCopies(t *testing.T) {
	d := Default()
	withCats := d.WithArticleCategories(map[string]string{"A1": "C1"})

	assert.Equal(t, "C1", withCats.CategoryOf("A1"))
	assert.Empty(t, d.CategoryOf("A1"))
}
