package risk

import (
	"testing"

	"github.com/wellpulse/wellpulse-go/internal/models"
)

func TestCategoryBoundaries(t *testing.T) {
	// BAT_primary cutoffs are [2.58, 3.01]; boundary scores must land on the
	// inclusive side of each cutoff.
	tests := []struct {
		name     string
		score    float64
		expected Tier
	}{
		{"Well below low", 1.00, TierNormal},
		{"Exactly low", 2.58, TierNormal},
		{"Just above low", 2.59, TierCaution},
		{"Between cutoffs", 2.80, TierCaution},
		{"Exactly high", 3.01, TierCaution},
		{"Just above high", 3.02, TierRisk},
		{"Well above high", 4.50, TierRisk},
	}

	c := NewClassifier(DefaultTable(), "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, ok := c.Category(models.CategoryBATPrimary, tt.score, "")
			if !ok {
				t.Fatalf("Category(BAT_primary) reported no cutoff entry")
			}
			if tier != tt.expected {
				t.Errorf("Category(BAT_primary, %.2f) = %v, want %v", tt.score, tier, tt.expected)
			}
		})
	}
}

func TestStressGenderConditioning(t *testing.T) {
	// Female/default stress cutoffs are [50.0, 55.6], male [48.4, 54.7].
	// A score of 49.0 is normal under the default table but caution under
	// the male table; 55.0 is caution vs risk.
	tests := []struct {
		name     string
		score    float64
		gender   string
		expected Tier
	}{
		{"49.0 default table", 49.0, "", TierNormal},
		{"49.0 female", 49.0, "female", TierNormal},
		{"49.0 male", 49.0, "male", TierCaution},
		{"55.0 default table", 55.0, "", TierCaution},
		{"55.0 male", 55.0, "male", TierRisk},
		{"Exactly male low", 48.4, "male", TierNormal},
		{"Exactly default low", 50.0, "", TierNormal},
		{"Unrecognized marker uses default", 49.0, "M", TierNormal},
	}

	c := NewClassifier(DefaultTable(), "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, ok := c.Category(models.CategoryStress, tt.score, tt.gender)
			if !ok {
				t.Fatalf("Category(stress) reported no cutoff entry")
			}
			if tier != tt.expected {
				t.Errorf("Category(stress, %.1f, %q) = %v, want %v", tt.score, tt.gender, tier, tt.expected)
			}
		})
	}
}

func TestOneTierSubTypeBoundary(t *testing.T) {
	// Emotional-labor sub-types are one-tier: score < cutoff is normal, at
	// or above is risk. organizational_support cutoff is 45.23 (49.99 male).
	tests := []struct {
		name     string
		score    float64
		gender   string
		expected Tier
	}{
		{"Below cutoff", 45.22, "", TierNormal},
		{"Exactly cutoff", 45.23, "", TierRisk},
		{"Above cutoff", 45.24, "", TierRisk},
		{"Male below male cutoff", 45.23, "male", TierNormal},
		{"Male at male cutoff", 49.99, "male", TierRisk},
	}

	c := NewClassifier(DefaultTable(), "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, ok := c.SubType(models.CategoryEmotionalLabor, SubTypeOrganizationalSupport, tt.score, tt.gender)
			if !ok {
				t.Fatalf("SubType(emotional_labor, organizational_support) reported no entry")
			}
			if tier != tt.expected {
				t.Errorf("SubType(%.2f, %q) = %v, want %v", tt.score, tt.gender, tier, tt.expected)
			}
		})
	}
}

func TestStressFactorGenderConditioning(t *testing.T) {
	// job_insecurity: default [33.3, 50.0], male [50.0, 66.6]. A score of
	// 40.0 disagrees between the two tables.
	c := NewClassifier(DefaultTable(), "")

	tier, ok := c.SubType(models.CategoryStress, SubTypeJobInsecurity, 40.0, "")
	if !ok || tier != TierCaution {
		t.Errorf("SubType(job_insecurity, 40.0, default) = %v, want caution", tier)
	}

	tier, ok = c.SubType(models.CategoryStress, SubTypeJobInsecurity, 40.0, "male")
	if !ok || tier != TierNormal {
		t.Errorf("SubType(job_insecurity, 40.0, male) = %v, want normal", tier)
	}
}

func TestCustomMaleMarker(t *testing.T) {
	c := NewClassifier(DefaultTable(), "M")

	// "male" no longer selects the male table; "M" does.
	tier, _ := c.Category(models.CategoryStress, 49.0, "male")
	if tier != TierNormal {
		t.Errorf("Category(stress, 49.0, \"male\") with marker M = %v, want normal", tier)
	}
	tier, _ = c.Category(models.CategoryStress, 49.0, "M")
	if tier != TierCaution {
		t.Errorf("Category(stress, 49.0, \"M\") with marker M = %v, want caution", tier)
	}
}

func TestUntrackedCategory(t *testing.T) {
	c := NewClassifier(DefaultTable(), "")

	// Emotional labor has no category-level cutoff; risk is tracked per
	// sub-type only.
	if _, ok := c.Category(models.CategoryEmotionalLabor, 50.0, ""); ok {
		t.Error("Category(emotional_labor) should have no category-level entry")
	}
	if c.HasCategoryCutoff(models.CategoryEmotionalLabor) {
		t.Error("HasCategoryCutoff(emotional_labor) = true, want false")
	}
	if got := c.SubTypeTierSet(models.CategoryEmotionalLabor); len(got) != 2 {
		t.Errorf("SubTypeTierSet(emotional_labor) = %v, want one-tier set", got)
	}
	if got := c.SubTypeTierSet(models.CategoryStress); len(got) != 3 {
		t.Errorf("SubTypeTierSet(stress) = %v, want two-tier set", got)
	}
	if got := c.SubTypeTierSet(models.CategoryBATSecondary); got != nil {
		t.Errorf("SubTypeTierSet(BAT_secondary) = %v, want nil", got)
	}
}
