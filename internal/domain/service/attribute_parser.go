package service

import (
	stderrors "errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/reference"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/errors"
)

// ErrUnscoredAttribute is returned for attribute types that carry no scoring fact
// (occupation, URL, remarks ...). Callers skip these silently.
var ErrUnscoredAttribute = stderrors.New("attribute type carries no scoring fact")

var (
	roleLevelPattern = regexp.MustCompile(`^([A-Z]{2,4}):(L[1-6])$`)
	ratingPattern    = regexp.MustCompile(`^([A-Da-d]):(\d{1,2}/\d{1,2}/\d{4})$`)
)

const associationMarker = "family member of"

// ptyRule is one alternative of the PTY grammar. matched=false hands the
// value to the next rule.
type ptyRule struct {
	name  string
	apply func(p *AttributeParser, value string) (fact models.PepFact, matched bool, err error)
}

// ptyRules are evaluated in order; the first match wins.
var ptyRules = []ptyRule{
	{name: "role_level", apply: (*AttributeParser).matchRoleLevel},
	{name: "association", apply: (*AttributeParser).matchAssociation},
	{name: "role_only", apply: (*AttributeParser).matchRoleOnly},
}

// AttributeParser turns raw warehouse attributes into structured facts.
// The tables are used for validation only.
type AttributeParser struct {
	tables *reference.Tables
}

// NewAttributeParser creates a parser bound to tables.
func NewAttributeParser(tables *reference.Tables) *AttributeParser {
	return &AttributeParser{tables: tables}
}

// Parse parses one raw attribute. Unparseable PEP values yield a parse_failure
// error; attribute types without a scoring meaning yield ErrUnscoredAttribute.
func (p *AttributeParser) Parse(raw models.RawAttribute) (models.AttributeFact, error) {
	value := strings.TrimSpace(raw.Value)
	switch constants.CodeType(strings.ToUpper(string(raw.CodeType))) {
	case constants.CodeTypePEPRole:
		return p.parsePTY(value)
	case constants.CodeTypePEPRating:
		return p.parsePRT(value)
	case constants.CodeTypePEPLevel:
		fact, matched, err := p.matchRoleLevel(value)
		if err != nil {
			return nil, err
		}
		if !matched {
			return nil, errors.ErrParseFailure(constants.CodeTypePEPLevel, raw.Value, "unrecognized PLV pattern")
		}
		return fact, nil
	case constants.CodeTypeNationality:
		if value == "" {
			return nil, errors.ErrParseFailure(constants.CodeTypeNationality, raw.Value, "empty nationality")
		}
		return models.Nationality{Country: p.tables.NormalizeCountry(value)}, nil
	default:
		return nil, ErrUnscoredAttribute
	}
}

// ParseAll parses every attribute, collecting parse failures instead of stopping.
func (p *AttributeParser) ParseAll(raws []models.RawAttribute) ([]models.AttributeFact, []error) {
	facts := make([]models.AttributeFact, 0, len(raws))
	var failures []error
	for _, raw := range raws {
		fact, err := p.Parse(raw)
		switch {
		case err == nil:
			facts = append(facts, fact)
		case stderrors.Is(err, ErrUnscoredAttribute):
		default:
			failures = append(failures, err)
		}
	}
	return facts, failures
}

func (p *AttributeParser) parsePTY(value string) (models.AttributeFact, error) {
	for _, rule := range ptyRules {
		fact, matched, err := rule.apply(p, value)
		if err != nil {
			return nil, err
		}
		if matched {
			return fact, nil
		}
	}
	return nil, errors.ErrParseFailure(constants.CodeTypePEPRole, value, "unrecognized PTY pattern")
}

func (p *AttributeParser) matchRoleLevel(value string) (models.PepFact, bool, error) {
	m := roleLevelPattern.FindStringSubmatch(value)
	if m == nil {
		return nil, false, nil
	}
	if _, ok := p.tables.Role(m[1]); !ok {
		return nil, true, errors.ErrParseFailure(constants.CodeTypePEPRole, value, "unknown role code")
	}
	level, _ := strconv.Atoi(strings.TrimPrefix(m[2], "L"))
	return models.RoleLevel{RoleCode: m[1], Level: level}, true, nil
}

func (p *AttributeParser) matchAssociation(value string) (models.PepFact, bool, error) {
	if !strings.Contains(strings.ToLower(value), associationMarker) {
		return nil, false, nil
	}
	return models.Association{Description: value}, true, nil
}

func (p *AttributeParser) matchRoleOnly(value string) (models.PepFact, bool, error) {
	if !p.tables.IsBareRoleCode(value) {
		return nil, false, nil
	}
	return models.RoleOnly{RoleCode: strings.ToUpper(value)}, true, nil
}

func (p *AttributeParser) parsePRT(value string) (models.AttributeFact, error) {
	m := ratingPattern.FindStringSubmatch(value)
	if m == nil {
		return nil, errors.ErrParseFailure(constants.CodeTypePEPRating, value, "unrecognized PRT pattern")
	}
	asOf, err := time.Parse("1/2/2006", m[2])
	if err != nil {
		return nil, errors.ErrParseFailure(constants.CodeTypePEPRating, value, "invalid rating date").WithCause(err)
	}
	return models.Rating{Letter: strings.ToUpper(m[1]), AsOf: asOf}, nil
}
