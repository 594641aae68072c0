package service

import (
	"github.com/turtacn/gridrisk/internal/domain/reference"
	"github.com/turtacn/gridrisk/pkg/constants"
)

// GeoResolver scores an entity's countries of exposure.
type GeoResolver struct {
	tables *reference.Tables
}

// NewGeoResolver creates a resolver bound to tables.
func NewGeoResolver(tables *reference.Tables) *GeoResolver {
	return &GeoResolver{tables: tables}
}

// CountryScore maps a multiplier m to clamp(25 + (m-0.5)*50, 0, 75).
func CountryScore(m float64) float64 {
	s := 25 + (m-0.5)*50
	if s < 0 {
		return 0
	}
	if s > 75 {
		return 75
	}
	return s
}

// Normalize maps raw country texts to canonical codes, dropping empty values.
func (g *GeoResolver) Normalize(countries []string) []string {
	out := make([]string, 0, len(countries))
	for _, c := range countries {
		if code := g.tables.NormalizeCountry(c); code != "" {
			out = append(out, code)
		}
	}
	return out
}

// Score returns the highest country score, or the neutral 25 when no country is known.
func (g *GeoResolver) Score(countries []string) float64 {
	codes := g.Normalize(countries)
	if len(codes) == 0 {
		return constants.NeutralGeographicScore
	}
	best := 0.0
	for _, code := range codes {
		if s := CountryScore(g.tables.CountryMultiplier(code)); s > best {
			best = s
		}
	}
	return best
}

// WorstMultiplier returns the highest country multiplier, 1.0 when no country is known.
func (g *GeoResolver) WorstMultiplier(countries []string) float64 {
	codes := g.Normalize(countries)
	if len(codes) == 0 {
		return 1.0
	}
	worst := 0.0
	for _, code := range codes {
		if m := g.tables.CountryMultiplier(code); m > worst {
			worst = m
		}
	}
	return worst
}
