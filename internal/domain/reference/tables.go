// Package reference holds the immutable code reference tables that drive scoring:
// event severities, sub-category and age multipliers, PEP role priorities,
// country multipliers, relationship weights, composite weights, floors and tier cutoffs.
//
// A *Tables value is built once (from Defaults or a YAML document), validated,
// and then shared read-only by every scorer. Nothing in this package mutates a
// Tables after Normalize returns.
package reference

import (
	"sort"
	"strconv"
	"strings"

	"github.com/turtacn/gridrisk/pkg/constants"
)

// Role tier names used by RoleDefinition.Tier.
const (
	RoleTierHigh      = "high"
	RoleTierMid       = "mid"
	RoleTierAssociate = "associate"
)

// RoleDefinition describes one PEP role code.
type RoleDefinition struct {
	Name     string         `yaml:"name"`
	Baseline int            `yaml:"baseline"`
	Tier     string         `yaml:"tier"`
	Levels   map[string]int `yaml:"levels,omitempty"` // "L1".."L6" -> priority
}

// AgeBucket applies Multiplier to events at most MaxYears old.
type AgeBucket struct {
	MaxYears   float64 `yaml:"max_years"`
	Multiplier float64 `yaml:"multiplier"`
}

// CompositeWeights combine the sub-scores into the base score.
type CompositeWeights struct {
	Event        float64 `yaml:"event"`
	Relationship float64 `yaml:"relationship"`
	Geographic   float64 `yaml:"geographic"`
	PEP          float64 `yaml:"pep"`
}

// FloorRules raise the final score when specific evidence is present.
type FloorRules struct {
	TerrorismCategories     []string `yaml:"terrorism_categories"`
	TerrorismFloor          float64  `yaml:"terrorism_floor"`
	SanctionsCategories     []string `yaml:"sanctions_categories"`
	SanctionsSubCategories  []string `yaml:"sanctions_subcategories"`
	SanctionsFloor          float64  `yaml:"sanctions_floor"`
	ConvictionSubCategories []string `yaml:"conviction_subcategories"`
	ConvictionFloor         float64  `yaml:"conviction_floor"`
}

// TierCutoffs are the inclusive lower bounds of the top three severity tiers.
type TierCutoffs struct {
	Critical      float64 `yaml:"critical"`
	Valuable      float64 `yaml:"valuable"`
	Investigative float64 `yaml:"investigative"`
}

// Tables is the full set of scoring reference data.
type Tables struct {
	Version string `yaml:"version"`

	CategorySeverity        map[string]float64 `yaml:"category_severity"`
	DefaultCategorySeverity float64            `yaml:"default_category_severity"`
	SubCategoryMultipliers  map[string]float64 `yaml:"subcategory_multipliers"`
	AgeDecay                []AgeBucket        `yaml:"age_decay"`
	AgeDecayBeyond          float64            `yaml:"age_decay_beyond"`
	NullDateMultiplier      float64            `yaml:"null_date_multiplier"`
	FrequencyStep           float64            `yaml:"frequency_step"`
	FrequencyCap            float64            `yaml:"frequency_cap"`

	Roles                 map[string]RoleDefinition `yaml:"roles"`
	BareRoleCodes         []string                  `yaml:"bare_role_codes"`
	RoleTierMultipliers   map[string]float64        `yaml:"role_tier_multipliers"`
	AssociationPriority   int                       `yaml:"association_priority"`
	AssociationMultiplier float64                   `yaml:"association_multiplier"`

	CountryMultipliers       map[string]float64 `yaml:"country_multipliers"`
	DefaultCountryMultiplier float64            `yaml:"default_country_multiplier"`
	CountryAliases           map[string]string  `yaml:"country_aliases"`

	RelationshipTypeWeights   map[string]float64 `yaml:"relationship_type_weights"`
	DefaultRelationshipWeight float64            `yaml:"default_relationship_weight"`
	UnknownRelatedScore       float64            `yaml:"unknown_related_score"`

	Weights           CompositeWeights `yaml:"weights"`
	PEPComponentScale float64          `yaml:"pep_component_scale"`
	MaxScore          float64          `yaml:"max_score"`
	Floors            FloorRules       `yaml:"floors"`
	Cutoffs           TierCutoffs      `yaml:"tier_cutoffs"`

	bareRoles    map[string]struct{}
	terrorism    map[string]struct{}
	sanctions    map[string]struct{}
	sanctionsSub map[string]struct{}
	conviction   map[string]struct{}
}

// Normalize returns a copy of t with every code key upper-cased and trimmed,
// age buckets sorted, and lookup sets built. Callers must use the returned value.
func (t Tables) Normalize() *Tables {
	out := t
	out.CategorySeverity = upperFloatKeys(t.CategorySeverity)
	out.SubCategoryMultipliers = upperFloatKeys(t.SubCategoryMultipliers)
	out.CountryMultipliers = upperFloatKeys(t.CountryMultipliers)
	out.RelationshipTypeWeights = make(map[string]float64, len(t.RelationshipTypeWeights))
	for k, v := range t.RelationshipTypeWeights {
		out.RelationshipTypeWeights[NormalizeRelationshipType(k)] = v
	}
	out.RoleTierMultipliers = make(map[string]float64, len(t.RoleTierMultipliers))
	for k, v := range t.RoleTierMultipliers {
		out.RoleTierMultipliers[strings.ToLower(strings.TrimSpace(k))] = v
	}

	out.Roles = make(map[string]RoleDefinition, len(t.Roles))
	for code, def := range t.Roles {
		levels := make(map[string]int, len(def.Levels))
		for lvl, p := range def.Levels {
			levels[strings.ToUpper(strings.TrimSpace(lvl))] = p
		}
		def.Levels = levels
		def.Tier = strings.ToLower(strings.TrimSpace(def.Tier))
		out.Roles[normCode(code)] = def
	}

	out.CountryAliases = make(map[string]string, len(t.CountryAliases))
	for alias, code := range t.CountryAliases {
		out.CountryAliases[normCountryText(alias)] = normCode(code)
	}

	out.AgeDecay = append([]AgeBucket(nil), t.AgeDecay...)
	sort.SliceStable(out.AgeDecay, func(i, j int) bool {
		return out.AgeDecay[i].MaxYears < out.AgeDecay[j].MaxYears
	})

	out.BareRoleCodes = upperList(t.BareRoleCodes)
	out.Floors.TerrorismCategories = upperList(t.Floors.TerrorismCategories)
	out.Floors.SanctionsCategories = upperList(t.Floors.SanctionsCategories)
	out.Floors.SanctionsSubCategories = upperList(t.Floors.SanctionsSubCategories)
	out.Floors.ConvictionSubCategories = upperList(t.Floors.ConvictionSubCategories)

	out.bareRoles = toSet(out.BareRoleCodes)
	out.terrorism = toSet(out.Floors.TerrorismCategories)
	out.sanctions = toSet(out.Floors.SanctionsCategories)
	out.sanctionsSub = toSet(out.Floors.SanctionsSubCategories)
	out.conviction = toSet(out.Floors.ConvictionSubCategories)
	return &out
}

// ================================================================================
// Event lookups
// ================================================================================

// Severity returns the base severity of an event category.
func (t *Tables) Severity(category string) float64 {
	if v, ok := t.CategorySeverity[normCode(category)]; ok {
		return v
	}
	return t.DefaultCategorySeverity
}

// SubCategoryMultiplier returns the multiplier for a sub-category, 1.0 when unknown or empty.
func (t *Tables) SubCategoryMultiplier(sub string) float64 {
	if sub == "" {
		return 1.0
	}
	if v, ok := t.SubCategoryMultipliers[normCode(sub)]; ok {
		return v
	}
	return 1.0
}

// AgeMultiplier maps an event age in fractional years to its decay multiplier.
// Negative ages (future-dated events) fall in the first bucket.
func (t *Tables) AgeMultiplier(years float64) float64 {
	for _, b := range t.AgeDecay {
		if years <= b.MaxYears {
			return b.Multiplier
		}
	}
	return t.AgeDecayBeyond
}

// FrequencyMultiplier returns min(1 + step*(n-1), cap) for n events in one category.
func (t *Tables) FrequencyMultiplier(n int) float64 {
	if n <= 1 {
		return 1.0
	}
	m := 1.0 + t.FrequencyStep*float64(n-1)
	if m > t.FrequencyCap {
		return t.FrequencyCap
	}
	return m
}

// IsTerrorismCategory reports whether category triggers the terrorism floor.
func (t *Tables) IsTerrorismCategory(category string) bool {
	_, ok := t.terrorism[normCode(category)]
	return ok
}

// IsSanctionsCategory reports whether category triggers the sanctions floor.
func (t *Tables) IsSanctionsCategory(category string) bool {
	_, ok := t.sanctions[normCode(category)]
	return ok
}

// IsSanctionsSubCategory reports whether sub triggers the sanctions floor.
func (t *Tables) IsSanctionsSubCategory(sub string) bool {
	_, ok := t.sanctionsSub[normCode(sub)]
	return ok
}

// IsConvictionSubCategory reports whether sub triggers the conviction floor.
func (t *Tables) IsConvictionSubCategory(sub string) bool {
	_, ok := t.conviction[normCode(sub)]
	return ok
}

// ================================================================================
// PEP lookups
// ================================================================================

// Role returns the definition of a PEP role code.
func (t *Tables) Role(code string) (RoleDefinition, bool) {
	def, ok := t.Roles[normCode(code)]
	return def, ok
}

// IsBareRoleCode reports whether code may appear alone (without a level) in a PTY value.
func (t *Tables) IsBareRoleCode(code string) bool {
	_, ok := t.bareRoles[normCode(code)]
	return ok
}

// RolePriority returns the priority for a role at a level. A level the role does
// not define resolves to the nearest defined level below it, then to the baseline.
// level <= 0 means no level.
func (t *Tables) RolePriority(code string, level int) int {
	def, ok := t.Role(code)
	if !ok {
		return 0
	}
	for n := level; n >= 1; n-- {
		if p, ok := def.Levels["L"+strconv.Itoa(n)]; ok {
			return p
		}
	}
	return def.Baseline
}

// RoleMultiplier returns the risk multiplier of the role's tier, 1.0 when unknown.
func (t *Tables) RoleMultiplier(code string) float64 {
	def, ok := t.Role(code)
	if !ok {
		return 1.0
	}
	if m, ok := t.RoleTierMultipliers[def.Tier]; ok {
		return m
	}
	return 1.0
}

// ================================================================================
// Geography lookups
// ================================================================================

// NormalizeCountry maps a free-text country (ISO-2, ISO-3 or English name) to its
// canonical ISO-2 code. Unrecognised text is returned upper-cased; empty input
// returns "".
func (t *Tables) NormalizeCountry(raw string) string {
	key := normCountryText(raw)
	if key == "" {
		return ""
	}
	if code, ok := t.CountryAliases[key]; ok {
		return code
	}
	return key
}

// CountryMultiplier returns the multiplier for a canonical country code.
func (t *Tables) CountryMultiplier(code string) float64 {
	if m, ok := t.CountryMultipliers[normCode(code)]; ok {
		return m
	}
	return t.DefaultCountryMultiplier
}

// ================================================================================
// Relationship lookups
// ================================================================================

// RelationshipWeight returns the weight for a relationship type.
func (t *Tables) RelationshipWeight(relType string) float64 {
	if w, ok := t.RelationshipTypeWeights[NormalizeRelationshipType(relType)]; ok {
		return w
	}
	return t.DefaultRelationshipWeight
}

// NormalizeRelationshipType upper-cases a type and joins words with underscores.
func NormalizeRelationshipType(relType string) string {
	return strings.Join(strings.Fields(strings.ToUpper(relType)), "_")
}

// ================================================================================
// Tiers
// ================================================================================

// Tier maps a final score to its severity tier. Cutoffs are inclusive lower bounds.
func (t *Tables) Tier(score float64) constants.SeverityTier {
	switch {
	case score >= t.Cutoffs.Critical:
		return constants.TierCritical
	case score >= t.Cutoffs.Valuable:
		return constants.TierValuable
	case score >= t.Cutoffs.Investigative:
		return constants.TierInvestigative
	default:
		return constants.TierProbative
	}
}

func normCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func normCountryText(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer(".", "", ",", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func upperFloatKeys(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[normCode(k)] = v
	}
	return out
}

func upperList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = normCode(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func toSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		out[s] = struct{}{}
	}
	return out
}
