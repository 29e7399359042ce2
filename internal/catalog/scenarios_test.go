package catalog

import (
	"testing"

	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllScenariosAreValid(t *testing.T) {
	t.Parallel()

	all := All()
	require.NotEmpty(t, all)

	seen := make(map[string]bool)
	for _, scenario := range all {
		scenario := scenario
		assert.NoError(t, scenario.Validate(), "scenario %s", scenario.ID)
		assert.False(t, seen[scenario.ID], "duplicate scenario ID %s", scenario.ID)
		seen[scenario.ID] = true
	}
}

func TestAllReturnsACopy(t *testing.T) {
	t.Parallel()

	first := All()
	first[0].ID = "mutated"

	assert.NotEqual(t, "mutated", All()[0].ID)
}

func TestByID(t *testing.T) {
	t.Parallel()

	scenario, ok := ByID("time-pressure-1")
	require.True(t, ok)
	assert.Equal(t, domain.StressLevelLow, scenario.StressLevel)
	assert.Equal(t, 600, scenario.Duration)

	_, ok = ByID("unknown")
	assert.False(t, ok)
}

func TestByStressLevel(t *testing.T) {
	t.Parallel()

	for _, scenario := range ByStressLevel(domain.StressLevelHigh) {
		assert.Equal(t, domain.StressLevelHigh, scenario.StressLevel)
	}

	// Every authored scenario belongs to some tier.
	var total int
	for _, level := range domain.StressLevelOrder {
		total += len(ByStressLevel(level))
	}
	assert.Equal(t, len(All()), total)
}

func TestCatalogValueDelegates(t *testing.T) {
	t.Parallel()

	c := Catalog{}
	assert.Equal(t, len(All()), len(c.All()))

	scenario, ok := c.ByID("chaos-1")
	require.True(t, ok)
	assert.Equal(t, domain.StressLevelExtreme, scenario.StressLevel)
}
