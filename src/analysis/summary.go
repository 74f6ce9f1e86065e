package analysis

import (
	"fmt"
	"strconv"

	"github.com/Akima-zed/teleSport/src/types"
)

// Indicator is one labelled KPI shown in a page header.
type Indicator struct {
	Label string
	Value int
}

// DashboardSummary is everything the home view derives from one snapshot and one criterion.
type DashboardSummary struct {
	Criterion SortCriterion
	Ordered   []types.EntityRecord
	Countries int
	Editions  int
	// Medals holds per-country medal totals aligned with Ordered.
	Medals []int
}

// SummarizeDashboard orders the snapshot's entities and computes the home KPIs.
func SummarizeDashboard(snap *types.DataSnapshot, c SortCriterion) DashboardSummary {
	entities := snap.Entities()
	ordered := SortEntities(entities, c)
	medals := make([]int, len(ordered))
	for i, e := range ordered {
		medals[i] = TotalMedals(e.Participations)
	}
	return DashboardSummary{
		Criterion: c,
		Ordered:   ordered,
		Countries: len(ordered),
		Editions:  DistinctEditionCount(entities),
		Medals:    medals,
	}
}

// Indicators returns the header KPIs: number of countries and number of editions.
func (d DashboardSummary) Indicators() []Indicator {
	return []Indicator{
		{Label: "Countries", Value: d.Countries},
		{Label: "Editions", Value: d.Editions},
	}
}

// Names returns country names in view order.
func (d DashboardSummary) Names() []string {
	out := make([]string, len(d.Ordered))
	for i, e := range d.Ordered {
		out[i] = e.Name
	}
	return out
}

// MedalSeries returns pie labels (country names) and values (medal totals) in view order.
func (d DashboardSummary) MedalSeries() ([]string, []float64) {
	values := make([]float64, len(d.Medals))
	for i, m := range d.Medals {
		values[i] = float64(m)
	}
	return d.Names(), values
}

// CountrySummary is the detail view of one country.
type CountrySummary struct {
	Name           string
	Entries        int
	TotalMedals    int
	TotalAthletes  int
	Participations []types.ParticipationRecord
}

// SummarizeCountry computes the detail KPIs of a country.
func SummarizeCountry(e types.EntityRecord) CountrySummary {
	return CountrySummary{
		Name:           e.Name,
		Entries:        len(e.Participations),
		TotalMedals:    TotalMedals(e.Participations),
		TotalAthletes:  TotalAthletes(e.Participations),
		Participations: e.Participations,
	}
}

// Indicators returns the detail header KPIs: entries, medals, athletes.
func (c CountrySummary) Indicators() []Indicator {
	return []Indicator{
		{Label: "Entries", Value: c.Entries},
		{Label: "Medals", Value: c.TotalMedals},
		{Label: "Athletes", Value: c.TotalAthletes},
	}
}

// YearSeries returns line-chart labels (edition years) and values (medals) in
// participation order.
func (c CountrySummary) YearSeries() ([]string, []float64) {
	labels := make([]string, len(c.Participations))
	values := make([]float64, len(c.Participations))
	for i, p := range c.Participations {
		labels[i] = strconv.Itoa(p.Edition)
		values[i] = float64(p.MedalCount)
	}
	return labels, values
}

// FindEntity looks a country up by name in snap.
func FindEntity(snap *types.DataSnapshot, name string) (types.EntityRecord, error) {
	e, ok := snap.Entity(name)
	if !ok {
		return types.EntityRecord{}, fmt.Errorf("%w: %q", types.ErrNotFound, name)
	}
	return e, nil
}
