package reference

import (
	"fmt"

	"github.com/turtacn/gridrisk/pkg/constants"
)

// DefaultVersion identifies the built-in table set.
const DefaultVersion = "builtin-2024.1"

// Defaults returns the built-in reference tables, normalised and ready for use.
// Severity and sub-category values follow the warehouse code lists; the caller
// owns the returned value.
func Defaults() *Tables {
	t := Tables{
		Version: DefaultVersion,

		CategorySeverity: map[string]float64{
			// critical
			"TER": 100, "WLT": 100, "DEN": 95, "DTF": 90, "TRF": 90,
			"MLA": 85, "HUM": 85, "ORG": 85, "KID": 85, "SPY": 85,
			// serious
			"BRB": 75, "FRD": 70, "TAX": 70, "SEC": 70, "REG": 65,
			"ROB": 60, "SEX": 60, "PEP": 60, "SNX": 60, "MUR": 55,
			"AST": 55, "FUG": 50, "BUR": 50, "TFT": 50, "IGN": 50,
			// moderate
			"CON": 45, "CFT": 45, "SMG": 45, "PSP": 40, "IMP": 40,
			"CYB": 40, "OBS": 40, "DPS": 35, "NSC": 30, "MIS": 30,
			"ABU": 30, "PRJ": 30, "ENV": 25, "GAM": 25, "ARS": 25,
			"BUS": 25,
			// low
			"IPR": 20, "LNS": 20, "CPR": 20, "BKY": 20, "RES": 20,
			"MOR": 20, "IRC": 20, "FAR": 15, "LMD": 15, "DPP": 15,
			"FOF": 10, "FOS": 10, "FOR": 10, "MSB": 10, "HTE": 10,
			"BIL": 5, "CND": 5, "DEF": 5, "HCD": 5, "PER": 5,
			"REO": 5, "VCY": 5,
		},
		DefaultCategorySeverity: constants.DefaultCategorySeverity,

		SubCategoryMultipliers: map[string]float64{
			"ACC": 0.7, "ACQ": 0.3, "ACT": 1.0, "ADT": 0.7, "ALL": 0.6,
			"APL": 0.8, "ARB": 0.7, "ARN": 1.0, "ART": 1.1, "ASC": 0.5,
			"CEN": 0.9, "CHG": 1.0, "CMP": 0.8, "CNF": 1.2, "CSP": 1.0,
			"CVT": 1.3, "DEP": 1.0, "DMS": 0.4, "EXP": 0.9, "FIL": 0.7,
			"FIM": 1.0, "GOV": 1.2, "IND": 1.1, "LIC": 0.8, "LIN": 0.6,
			"PLE": 1.0, "PRB": 0.7, "RVK": 1.0, "SAN": 1.2, "SET": 0.8,
			"SEZ": 1.0, "SJT": 1.2, "SPD": 0.9, "SPT": 0.6, "TRL": 1.0,
			"WTD": 1.1,
		},

		AgeDecay: []AgeBucket{
			{MaxYears: 1, Multiplier: 1.5},
			{MaxYears: 2, Multiplier: 1.2},
			{MaxYears: 3, Multiplier: 0.8},
			{MaxYears: 5, Multiplier: 0.6},
			{MaxYears: 10, Multiplier: 0.4},
		},
		AgeDecayBeyond:     0.2,
		NullDateMultiplier: constants.NullDateAgeMultiplier,
		FrequencyStep:      0.2,
		FrequencyCap:       2.0,

		Roles: map[string]RoleDefinition{
			"HOS": leveledRole("Head of State", 100, RoleTierHigh, 6),
			"CAB": leveledRole("Cabinet Officials", 90, RoleTierHigh, 5),
			"MIL": leveledRole("Military Figures", 85, RoleTierHigh, 5),
			"INF": leveledRole("Infrastructure Officials", 80, RoleTierMid, 5),
			"AMB": leveledRole("Ambassadors", 80, RoleTierMid, 5),
			"JUD": leveledRole("Judicial Figures", 80, RoleTierMid, 5),
			"NIO": leveledRole("Non-Infrastructure Officials", 75, RoleTierMid, 5),
			"LEG": leveledRole("Legislative Branch", 75, RoleTierMid, 5),
			"GOE": leveledRole("Government Enterprises", 75, RoleTierMid, 5),
			"REG": leveledRole("Regional Officials", 70, RoleTierMid, 5),
			"POL": leveledRole("Political Figures", 70, RoleTierMid, 5),
			"GCO": leveledRole("State-Controlled Business", 70, RoleTierMid, 5),
			"MUN": leveledRole("Municipal Officials", 65, RoleTierMid, 5),
			"IGO": leveledRole("International Organizations", 65, RoleTierMid, 5),
			"ISO": leveledRole("Sporting Officials", 60, RoleTierMid, 5),
			"FAM": {Name: "Family Members", Baseline: 60, Tier: RoleTierAssociate},
			"ASC": {Name: "Close Associates", Baseline: 55, Tier: RoleTierAssociate},
		},
		BareRoleCodes: []string{"FAM", "ASC"},
		RoleTierMultipliers: map[string]float64{
			RoleTierHigh:      1.3,
			RoleTierMid:       1.15,
			RoleTierAssociate: 1.15,
		},
		AssociationPriority:   50,
		AssociationMultiplier: 1.1,

		CountryMultipliers: map[string]float64{
			"AF": 2.5, "SY": 2.5, "KP": 2.5, "IR": 2.3, "RU": 1.8,
			"VE": 1.7, "BY": 1.5, "NI": 1.5, "CU": 1.5, "CN": 1.4,
			"TR": 1.2, "BR": 1.2, "IN": 1.2, "MX": 1.2, "ZA": 1.2,
			"PK": 1.2, "EG": 1.2,
			"US": 0.95, "GB": 0.95, "CA": 0.95, "DE": 0.95, "FR": 0.95,
			"AU": 0.95, "JP": 0.95,
			"CH": 0.9, "SE": 0.9, "NO": 0.9, "DK": 0.9,
		},
		DefaultCountryMultiplier: 1.0,
		CountryAliases:           defaultCountryAliases(),

		RelationshipTypeWeights: map[string]float64{
			"OWNERSHIP": 2.0, "OWNER": 2.0, "SHAREHOLDER": 2.0, "BENEFICIAL_OWNER": 2.0,
			"BUSINESS": 1.5, "DIRECTOR": 1.5, "OFFICER": 1.5, "PARTNER": 1.5, "EMPLOYEE": 1.5,
			"LEGAL": 1.3, "CO_DEFENDANT": 1.3, "ATTORNEY": 1.3,
			"FINANCIAL": 1.2, "TRANSACTION": 1.2, "GUARANTOR": 1.2,
			"PERSONAL": 1.1, "FAMILY": 1.1, "SPOUSE": 1.1, "RELATIVE": 1.1, "ASSOCIATE": 1.1,
		},
		DefaultRelationshipWeight: 1.0,
		UnknownRelatedScore:       constants.NeutralRelatedScore,

		Weights: CompositeWeights{
			Event:        0.55,
			Relationship: 0.20,
			Geographic:   0.15,
			PEP:          0.10,
		},
		PEPComponentScale: 40,
		MaxScore:          constants.MaxFinalScore,
		Floors: FloorRules{
			TerrorismCategories:     []string{"TER"},
			TerrorismFloor:          90,
			SanctionsCategories:     []string{"WLT", "DEN", "SNX"},
			SanctionsSubCategories:  []string{"SAN"},
			SanctionsFloor:          80,
			ConvictionSubCategories: []string{"CVT"},
			ConvictionFloor:         40,
		},
		Cutoffs: TierCutoffs{
			Critical:      80,
			Valuable:      60,
			Investigative: 40,
		},
	}
	return t.Normalize()
}

// leveledRole defines L1..maxLevel with priority rising two points per level
// up to the baseline at the top level.
func leveledRole(name string, baseline int, tier string, maxLevel int) RoleDefinition {
	levels := make(map[string]int, maxLevel)
	for n := 1; n <= maxLevel; n++ {
		levels[fmt.Sprintf("L%d", n)] = baseline - 2*(maxLevel-n)
	}
	return RoleDefinition{Name: name, Baseline: baseline, Tier: tier, Levels: levels}
}
