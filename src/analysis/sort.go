package analysis

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Akima-zed/teleSport/src/types"
)

// SortCriterion selects the ordering of the country view.
type SortCriterion int

const (
	// ByTotalMedalsDescending is the dashboard default.
	ByTotalMedalsDescending SortCriterion = iota
	Alphabetical
)

func (c SortCriterion) String() string {
	switch c {
	case Alphabetical:
		return "alphabetical"
	case ByTotalMedalsDescending:
		return "totalMedals"
	default:
		return fmt.Sprintf("SortCriterion(%d)", int(c))
	}
}

// ParseSortCriterion accepts the names used by the CLI and config file.
func ParseSortCriterion(s string) (SortCriterion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "medals", "totalmedals", "total-medals", "bytotalmedalsdescending":
		return ByTotalMedalsDescending, nil
	case "alpha", "alphabetical", "name":
		return Alphabetical, nil
	}
	return 0, fmt.Errorf("unknown sort criterion %q (want alphabetical or medals)", s)
}

// DefaultLocale drives name collation when callers do not pick one.
var DefaultLocale = language.Und

// SortEntities returns a new, stably ordered slice; the input is left untouched.
func SortEntities(entities []types.EntityRecord, c SortCriterion) []types.EntityRecord {
	return SortEntitiesLocale(entities, c, DefaultLocale)
}

// SortEntitiesLocale is SortEntities with an explicit collation locale for Alphabetical.
func SortEntitiesLocale(entities []types.EntityRecord, c SortCriterion, tag language.Tag) []types.EntityRecord {
	out := slices.Clone(entities)
	switch c {
	case Alphabetical:
		// collators keep scratch buffers; one per call
		col := collate.New(tag)
		slices.SortStableFunc(out, func(a, b types.EntityRecord) int {
			return col.CompareString(a.Name, b.Name)
		})
	default:
		slices.SortStableFunc(out, func(a, b types.EntityRecord) int {
			return TotalMedals(b.Participations) - TotalMedals(a.Participations)
		})
	}
	return out
}
