// Package analysis derives medal statistics and orderings from a dataset snapshot.
// Everything here is a pure function of its input: no I/O, no shared state, and
// inputs are never mutated.
package analysis

import (
	"github.com/Akima-zed/teleSport/src/types"
)

// DerivedMetrics are the aggregate numbers shown in headers.
type DerivedMetrics struct {
	TotalMedals      int
	TotalAthletes    int
	DistinctEditions int
}

// TotalMedals sums medal counts. Empty input yields 0.
func TotalMedals(ps []types.ParticipationRecord) int {
	total := 0
	for _, p := range ps {
		total += p.MedalCount
	}
	return total
}

// TotalAthletes sums athlete counts. Empty input yields 0.
func TotalAthletes(ps []types.ParticipationRecord) int {
	total := 0
	for _, p := range ps {
		total += p.AthleteCount
	}
	return total
}

// DistinctEditionCount counts distinct years across every participation of every entity.
func DistinctEditionCount(entities []types.EntityRecord) int {
	years := map[int]struct{}{}
	for _, e := range entities {
		for _, p := range e.Participations {
			years[p.Edition] = struct{}{}
		}
	}
	return len(years)
}

// EntityMetrics computes the metrics of a single country.
func EntityMetrics(e types.EntityRecord) DerivedMetrics {
	return DerivedMetrics{
		TotalMedals:      TotalMedals(e.Participations),
		TotalAthletes:    TotalAthletes(e.Participations),
		DistinctEditions: DistinctEditionCount([]types.EntityRecord{e}),
	}
}

// AggregateMetrics computes the metrics over all entities together.
func AggregateMetrics(entities []types.EntityRecord) DerivedMetrics {
	var m DerivedMetrics
	for _, e := range entities {
		m.TotalMedals += TotalMedals(e.Participations)
		m.TotalAthletes += TotalAthletes(e.Participations)
	}
	m.DistinctEditions = DistinctEditionCount(entities)
	return m
}
