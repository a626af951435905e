package risk

// Tier is a discrete risk classification label.
type Tier string

const (
	TierNormal  Tier = "normal"
	TierCaution Tier = "caution"
	TierRisk    Tier = "risk"
)

// String returns the string representation of Tier.
func (t Tier) String() string {
	return string(t)
}

// TwoTierSet and OneTierSet enumerate the tiers a classification can yield,
// in display order. Aggregation uses these to zero-initialize headcounts.
var (
	TwoTierSet = []Tier{TierNormal, TierCaution, TierRisk}
	OneTierSet = []Tier{TierNormal, TierRisk}
)

// DefaultMaleMarker is the roster gender value that selects male-variant
// cutoff tables. Overridable via configuration (risk.male_marker).
const DefaultMaleMarker = "male"

// Classifier maps numeric scores onto risk tiers using a cutoff table.
//
// Boundary convention: two-tier classification is inclusive on the upper
// bound (score <= low is normal, score <= high is caution, above is risk).
// The convention is applied uniformly; one-tier classification keeps the
// published strict form (score < cutoff is normal, at or above is risk).
type Classifier struct {
	table      *Table
	maleMarker string
}

// NewClassifier creates a classifier over the given cutoff table.
// An empty maleMarker falls back to DefaultMaleMarker.
func NewClassifier(table *Table, maleMarker string) *Classifier {
	if maleMarker == "" {
		maleMarker = DefaultMaleMarker
	}
	return &Classifier{table: table, maleMarker: maleMarker}
}

// Category classifies a category-level score. The second return is false
// when the category has no category-level cutoff entry.
func (c *Classifier) Category(category string, score float64, gender string) (Tier, bool) {
	entry, ok := c.table.Categories[category]
	if !ok {
		return "", false
	}
	return classifyTwoTier(score, entry.Select(gender, c.maleMarker)), true
}

// SubType classifies a sub-type score, using the two-tier pair when one
// exists and the one-tier threshold otherwise.
func (c *Classifier) SubType(category, subType string, score float64, gender string) (Tier, bool) {
	if subTypes, ok := c.table.SubTypes[category]; ok {
		if entry, ok := subTypes[subType]; ok {
			return classifyTwoTier(score, entry.Select(gender, c.maleMarker)), true
		}
	}
	if thresholds, ok := c.table.OneTier[category]; ok {
		if threshold, ok := thresholds[subType]; ok {
			return classifyOneTier(score, threshold.Select(gender, c.maleMarker)), true
		}
	}
	return "", false
}

// HasCategoryCutoff reports whether category-level risk is tracked.
func (c *Classifier) HasCategoryCutoff(category string) bool {
	_, ok := c.table.Categories[category]
	return ok
}

// SubTypeTierSet returns the tier set used for a category's sub-types, or
// nil when sub-type risk is not tracked for the category.
func (c *Classifier) SubTypeTierSet(category string) []Tier {
	if _, ok := c.table.SubTypes[category]; ok {
		return TwoTierSet
	}
	if _, ok := c.table.OneTier[category]; ok {
		return OneTierSet
	}
	return nil
}

// TrackedSubTypes returns the sub-types with cutoff entries for a category.
func (c *Classifier) TrackedSubTypes(category string) []string {
	var names []string
	for name := range c.table.SubTypes[category] {
		names = append(names, name)
	}
	for name := range c.table.OneTier[category] {
		names = append(names, name)
	}
	return names
}

func classifyTwoTier(score float64, p Pair) Tier {
	if score <= p.Low {
		return TierNormal
	}
	if score <= p.High {
		return TierCaution
	}
	return TierRisk
}

func classifyOneTier(score, cutoff float64) Tier {
	if score < cutoff {
		return TierNormal
	}
	return TierRisk
}
