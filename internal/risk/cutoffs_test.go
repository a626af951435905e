package risk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellpulse/wellpulse-go/internal/models"
)

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()

	assert.Len(t, table.Categories, 3)
	assert.Len(t, table.SubTypes[models.CategoryBATPrimary], 4)
	assert.Len(t, table.SubTypes[models.CategoryStress], 7)
	assert.Len(t, table.OneTier[models.CategoryEmotionalLabor], 5)

	// Emotional labor has no category-level cutoff and no two-tier sub-types.
	_, ok := table.Categories[models.CategoryEmotionalLabor]
	assert.False(t, ok)
	_, ok = table.SubTypes[models.CategoryEmotionalLabor]
	assert.False(t, ok)

	// Every stress entry carries a male variant.
	assert.NotNil(t, table.Categories[models.CategoryStress].Male)
	for subType, entry := range table.SubTypes[models.CategoryStress] {
		assert.NotNil(t, entry.Male, subType)
	}
}

func TestLoadTable_EmptyPathReturnsDefaults(t *testing.T) {
	table, err := LoadTable("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTable(), table)
}

func TestLoadTable_OverrideMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutoffs.yaml")
	override := `categories:
  BAT_primary:
    default:
      low: 2.0
      high: 3.0
one_tier:
  emotional_labor:
    customer_overload:
      default: 70.0
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0644))

	table, err := LoadTable(path)
	require.NoError(t, err)

	// Overridden entries replaced.
	assert.Equal(t, Pair{Low: 2.0, High: 3.0}, table.Categories[models.CategoryBATPrimary].Default)
	assert.InDelta(t, 70.0, table.OneTier[models.CategoryEmotionalLabor][SubTypeCustomerOverload].Default, 1e-9)
	assert.Nil(t, table.OneTier[models.CategoryEmotionalLabor][SubTypeCustomerOverload].Male)

	// Untouched entries keep their normative values.
	assert.Equal(t, Pair{Low: 2.84, High: 3.34}, table.Categories[models.CategoryBATSecondary].Default)
	assert.InDelta(t, 76.66, table.OneTier[models.CategoryEmotionalLabor][SubTypeEmotionalRegulationEffort].Default, 1e-9)
	assert.Len(t, table.SubTypes[models.CategoryStress], 7)
}

func TestLoadTable_MissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
