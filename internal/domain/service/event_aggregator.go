package service

import (
	"math"
	"sort"
	"time"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/reference"
	"github.com/turtacn/gridrisk/pkg/constants"
)

// EventAggregator turns an entity's events into a single time-decayed event score.
type EventAggregator struct {
	tables *reference.Tables
}

// NewEventAggregator creates an aggregator bound to tables.
func NewEventAggregator(tables *reference.Tables) *EventAggregator {
	return &EventAggregator{tables: tables}
}

// Contribution is severity x sub-category multiplier x age multiplier for one event.
func (a *EventAggregator) Contribution(e models.EventFact, asOf time.Time) float64 {
	base := a.tables.Severity(e.CategoryCode)
	sub := a.tables.SubCategoryMultiplier(e.SubCategoryCode)
	return base * sub * a.AgeMultiplier(e.EventDate, asOf)
}

// AgeMultiplier returns the decay multiplier for an event dated date as of asOf.
func (a *EventAggregator) AgeMultiplier(date *time.Time, asOf time.Time) float64 {
	if date == nil {
		return a.tables.NullDateMultiplier
	}
	return a.tables.AgeMultiplier(YearsBetween(*date, asOf))
}

// Score returns sum over categories of (category total x frequency multiplier),
// divided by the total number of events. No events scores 0.
func (a *EventAggregator) Score(events []models.EventFact, asOf time.Time) float64 {
	if len(events) == 0 {
		return 0
	}

	byCategory := make(map[string][]float64)
	for _, e := range events {
		cat := normalizeCode(e.CategoryCode)
		byCategory[cat] = append(byCategory[cat], a.Contribution(e, asOf))
	}

	// fixed summation order keeps the result bit-identical across input permutations
	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var sum float64
	for _, cat := range categories {
		contributions := byCategory[cat]
		sort.Float64s(contributions)
		var total float64
		for _, c := range contributions {
			total += c
		}
		sum += total * a.tables.FrequencyMultiplier(len(contributions))
	}
	return sum / float64(len(events))
}

// YearsBetween returns whole elapsed days from date to asOf in fractional years.
// Future dates give a negative value.
func YearsBetween(date, asOf time.Time) float64 {
	days := math.Floor(asOf.Sub(date).Hours() / 24)
	return days / constants.DaysPerYear
}
