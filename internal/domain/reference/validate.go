package reference

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/turtacn/gridrisk/pkg/errors"
)

var levelKeyPattern = regexp.MustCompile(`^L[1-6]$`)

// Validate checks t for values that would make scoring meaningless. Every
// problem found is reported in one invalid_configuration error; a nil return
// means the tables are safe to share.
func Validate(t *Tables) error {
	if t == nil {
		return errors.ErrInvalidConfiguration("tables are nil")
	}
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	// tier cutoffs
	c := t.Cutoffs
	if c.Critical <= 0 {
		add("missing tier cutoff critical")
	}
	if c.Valuable <= 0 {
		add("missing tier cutoff valuable")
	}
	if c.Investigative <= 0 {
		add("missing tier cutoff investigative")
	}
	if c.Critical > 0 && c.Valuable > 0 && c.Investigative > 0 &&
		!(c.Critical > c.Valuable && c.Valuable > c.Investigative) {
		add("tier cutoffs must be strictly decreasing (critical > valuable > investigative)")
	}
	if t.MaxScore <= 0 {
		add("max_score must be positive")
	} else if c.Critical > t.MaxScore {
		add("critical cutoff %.2f exceeds max_score %.2f", c.Critical, t.MaxScore)
	}

	// composite weights
	w := t.Weights
	for name, v := range map[string]float64{
		"event": w.Event, "relationship": w.Relationship,
		"geographic": w.Geographic, "pep": w.PEP,
	} {
		if v < 0 {
			add("negative weight %s=%.4f", name, v)
		}
	}
	if w.Event+w.Relationship+w.Geographic+w.PEP <= 0 {
		add("composite weights sum to zero")
	}
	if t.PEPComponentScale < 0 {
		add("negative pep_component_scale")
	}

	// floors
	for name, v := range map[string]float64{
		"terrorism": t.Floors.TerrorismFloor, "sanctions": t.Floors.SanctionsFloor,
		"conviction": t.Floors.ConvictionFloor,
	} {
		if v < 0 {
			add("negative %s floor", name)
		}
		if t.MaxScore > 0 && v > t.MaxScore {
			add("%s floor %.2f exceeds max_score %.2f", name, v, t.MaxScore)
		}
	}

	floorCodes := []struct {
		name  string
		codes []string
		known map[string]float64
	}{
		{"terrorism_categories", t.Floors.TerrorismCategories, t.CategorySeverity},
		{"sanctions_categories", t.Floors.SanctionsCategories, t.CategorySeverity},
		{"sanctions_subcategories", t.Floors.SanctionsSubCategories, t.SubCategoryMultipliers},
		{"conviction_subcategories", t.Floors.ConvictionSubCategories, t.SubCategoryMultipliers},
	}
	for _, fc := range floorCodes {
		for _, code := range fc.codes {
			if _, ok := fc.known[code]; !ok {
				add("floors.%s code %s is not defined", fc.name, code)
			}
		}
	}

	// event decay
	if len(t.AgeDecay) == 0 {
		add("age_decay must define at least one bucket")
	}
	for i, b := range t.AgeDecay {
		if b.Multiplier < 0 {
			add("negative age multiplier at %.2f years", b.MaxYears)
		}
		if i > 0 {
			prev := t.AgeDecay[i-1]
			if b.MaxYears == prev.MaxYears {
				add("duplicate age bucket at %.2f years", b.MaxYears)
			}
			if b.Multiplier >= prev.Multiplier {
				add("age decay must be strictly decreasing (%.2f years: %.2f >= %.2f)", b.MaxYears, b.Multiplier, prev.Multiplier)
			}
		}
	}
	if n := len(t.AgeDecay); n > 0 && t.AgeDecayBeyond >= t.AgeDecay[n-1].Multiplier {
		add("age_decay_beyond must be below the last bucket multiplier")
	}
	if t.AgeDecayBeyond < 0 || t.NullDateMultiplier < 0 {
		add("negative age multiplier")
	}
	if t.FrequencyStep < 0 {
		add("negative frequency_step")
	}
	if t.FrequencyCap < 1 {
		add("frequency_cap must be at least 1")
	}
	if t.DefaultCategorySeverity < 0 {
		add("negative default_category_severity")
	}
	addNegatives(add, "category severity", t.CategorySeverity)
	addNegatives(add, "sub-category multiplier", t.SubCategoryMultipliers)
	addNegatives(add, "country multiplier", t.CountryMultipliers)
	addNegatives(add, "relationship weight", t.RelationshipTypeWeights)
	if t.DefaultCountryMultiplier < 0 || t.DefaultRelationshipWeight < 0 {
		add("negative default multiplier")
	}
	if t.UnknownRelatedScore < 0 {
		add("negative unknown_related_score")
	}

	// roles
	if len(t.Roles) == 0 {
		add("no PEP roles defined")
	}
	codes := make([]string, 0, len(t.Roles))
	for code := range t.Roles {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		def := t.Roles[code]
		if def.Baseline < 0 {
			add("role %s has negative baseline", code)
		}
		if _, ok := t.RoleTierMultipliers[def.Tier]; !ok {
			add("role %s has unknown tier %q", code, def.Tier)
		}
		for lvl, p := range def.Levels {
			if !levelKeyPattern.MatchString(lvl) {
				add("role %s has malformed level %q", code, lvl)
			}
			if p < 0 {
				add("role %s level %s has negative priority", code, lvl)
			}
		}
	}
	for _, code := range t.BareRoleCodes {
		if _, ok := t.Roles[code]; !ok {
			add("bare role code %s is not a defined role", code)
		}
	}
	addNegatives(add, "role tier multiplier", t.RoleTierMultipliers)
	if t.AssociationPriority < 0 || t.AssociationMultiplier < 0 {
		add("negative association priority or multiplier")
	}

	if len(problems) > 0 {
		return errors.ErrInvalidConfiguration(strings.Join(problems, "; "))
	}
	return nil
}

func addNegatives(add func(string, ...interface{}), what string, m map[string]float64) {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v < 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		add("negative %s for %s", what, k)
	}
}
