package risk

import (
	"fmt"
	"os"

	"github.com/wellpulse/wellpulse-go/internal/models"
	"gopkg.in/yaml.v3"
)

// Pair holds a two-tier cutoff: [normal-caution, caution-risk].
type Pair struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// GenderedPair is a cutoff pair with an optional male-specific variant.
// Normative tables for stress differ by gender; selection is driven by the
// configured male marker, never by inline conditionals at call sites.
type GenderedPair struct {
	Default Pair  `yaml:"default"`
	Male    *Pair `yaml:"male,omitempty"`
}

// Select returns the pair for the given gender attribute. Any value other
// than the male marker (including absent) uses the default table.
func (g GenderedPair) Select(gender, maleMarker string) Pair {
	if g.Male != nil && gender == maleMarker {
		return *g.Male
	}
	return g.Default
}

// GenderedThreshold is a one-tier cutoff with an optional male variant.
type GenderedThreshold struct {
	Default float64  `yaml:"default"`
	Male    *float64 `yaml:"male,omitempty"`
}

// Select returns the threshold for the given gender attribute.
func (g GenderedThreshold) Select(gender, maleMarker string) float64 {
	if g.Male != nil && gender == maleMarker {
		return *g.Male
	}
	return g.Default
}

// Table is the full cutoff reference data: category-level pairs, two-tier
// sub-type pairs, and one-tier sub-type thresholds.
type Table struct {
	Categories map[string]GenderedPair                 `yaml:"categories"`
	SubTypes   map[string]map[string]GenderedPair      `yaml:"sub_types"`
	OneTier    map[string]map[string]GenderedThreshold `yaml:"one_tier"`
}

func pairOf(low, high float64) GenderedPair {
	return GenderedPair{Default: Pair{Low: low, High: high}}
}

func genderedPair(low, high, maleLow, maleHigh float64) GenderedPair {
	return GenderedPair{
		Default: Pair{Low: low, High: high},
		Male:    &Pair{Low: maleLow, High: maleHigh},
	}
}

func genderedThreshold(def, male float64) GenderedThreshold {
	return GenderedThreshold{Default: def, Male: &male}
}

// DefaultTable returns the published normative cutoffs for all instruments.
// Default entries apply to female and unreported gender; male variants exist
// where the norms differ.
func DefaultTable() *Table {
	return &Table{
		Categories: map[string]GenderedPair{
			models.CategoryBATPrimary:   pairOf(2.58, 3.01),
			models.CategoryBATSecondary: pairOf(2.84, 3.34),
			models.CategoryStress:       genderedPair(50.0, 55.6, 48.4, 54.7),
		},
		SubTypes: map[string]map[string]GenderedPair{
			models.CategoryBATPrimary: {
				SubTypeExhaustion:          pairOf(3.05, 3.30),
				SubTypeMentalDistance:      pairOf(2.09, 3.29),
				SubTypeCognitiveImpairment: pairOf(2.69, 3.09),
				SubTypeEmotionalImpairment: pairOf(2.29, 2.89),
			},
			models.CategoryStress: {
				SubTypeJobDemand:             genderedPair(58.3, 66.6, 50.0, 58.3),
				SubTypeJobControl:            genderedPair(58.3, 60.0, 50.0, 66.6),
				SubTypeInterpersonalConflict: genderedPair(33.3, 44.4, 33.3, 44.4),
				SubTypeJobInsecurity:         genderedPair(33.3, 50.0, 50.0, 66.6),
				SubTypeOrganizationalSystem:  genderedPair(50.0, 66.6, 50.0, 66.6),
				SubTypeLackOfReward:          genderedPair(55.5, 66.6, 55.5, 66.6),
				SubTypeOccupationalClimate:   genderedPair(41.6, 50.0, 41.6, 50.0),
			},
		},
		OneTier: map[string]map[string]GenderedThreshold{
			models.CategoryEmotionalLabor: {
				SubTypeEmotionalRegulationEffort: genderedThreshold(76.66, 83.32),
				SubTypeCustomerOverload:          genderedThreshold(72.21, 83.32),
				SubTypeEmotionalDissonance:       genderedThreshold(63.88, 69.43),
				SubTypeOrganizationalMonitoring:  genderedThreshold(49.99, 61.10),
				SubTypeOrganizationalSupport:     genderedThreshold(45.23, 49.99),
			},
		},
	}
}

// LoadTable reads a cutoff override file and merges it over the defaults.
// Entries present in the file replace the corresponding default entry; keys
// the file omits keep their normative values.
func LoadTable(path string) (*Table, error) {
	table := DefaultTable()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cutoff table %s: %w", path, err)
	}

	var override Table
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse cutoff table %s: %w", path, err)
	}

	for category, pair := range override.Categories {
		table.Categories[category] = pair
	}
	for category, subTypes := range override.SubTypes {
		if table.SubTypes[category] == nil {
			table.SubTypes[category] = make(map[string]GenderedPair)
		}
		for subType, pair := range subTypes {
			table.SubTypes[category][subType] = pair
		}
	}
	for category, subTypes := range override.OneTier {
		if table.OneTier[category] == nil {
			table.OneTier[category] = make(map[string]GenderedThreshold)
		}
		for subType, threshold := range subTypes {
			table.OneTier[category][subType] = threshold
		}
	}

	return table, nil
}

// Sub-type identifiers per category. The weekly export's question-to-type
// mapping resolves onto these names.
const (
	SubTypeExhaustion          = "exhaustion"
	SubTypeMentalDistance      = "mental_distance"
	SubTypeCognitiveImpairment = "cognitive_impairment"
	SubTypeEmotionalImpairment = "emotional_impairment"

	SubTypePsychologicalComplaints = "psychological_complaints"
	SubTypePhysicalComplaints      = "physical_complaints"

	SubTypeEmotionalRegulationEffort = "emotional_regulation_effort"
	SubTypeCustomerOverload          = "customer_overload"
	SubTypeEmotionalDissonance       = "emotional_dissonance"
	SubTypeOrganizationalMonitoring  = "organizational_monitoring"
	SubTypeOrganizationalSupport     = "organizational_support"

	SubTypeJobDemand             = "job_demand"
	SubTypeJobControl            = "job_control"
	SubTypeInterpersonalConflict = "interpersonal_conflict"
	SubTypeJobInsecurity         = "job_insecurity"
	SubTypeOrganizationalSystem  = "organizational_system"
	SubTypeLackOfReward          = "lack_of_reward"
	SubTypeOccupationalClimate   = "occupational_climate"
)
