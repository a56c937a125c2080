package state

import (
	"ttview/internal/model"
	"ttview/internal/query"
	"ttview/internal/timetable"
)

// Query parameter names of the view contract. These are stable: shared
// links depend on them.
const (
	YearParam    = "y"
	SessionParam = "s"
)

// View is the full selection state of one timetable view, as derived from
// a query string against the current module catalog.
type View struct {
	Year    string
	Session string

	Selected  []model.Module
	Specified []model.SpecifiedOccurrence
	Hidden    []model.HiddenKey
}

// Seed derives a View from store and catalog. Missing parameters mean "no
// prior selection" and fall back to the given defaults; they are never an
// error.
//
// Module selection comes from every parameter whose name is a catalog key,
// in parameter order. The specified-occurrence list is parsed from the
// module parameter's own value when it has one, otherwise from the
// dataset's occurrence string for that module. Parameters naming modules
// the catalog does not know are ignored; after a dataset switch they simply
// stop matching.
func Seed(store *query.Store, catalog map[string]model.Module, defaultYear, defaultSession string) View {
	v := View{Year: defaultYear, Session: defaultSession}

	if y, ok := store.Get(YearParam); ok {
		v.Year = y
	}
	if s, ok := store.Get(SessionParam); ok {
		v.Session = s
	}

	var rows []timetable.OccurrenceRow
	var selectedIDs []string
	for _, name := range store.Names() {
		mod, ok := catalog[name]
		if !ok {
			continue
		}
		v.Selected = append(v.Selected, mod)
		selectedIDs = append(selectedIDs, mod.ID)

		spec, _ := store.Get(name)
		if spec == "" {
			spec = mod.Occurrence
		}
		rows = append(rows, timetable.OccurrenceRow{Module: mod.ID, Spec: spec})
	}

	v.Specified = timetable.ParseOccurrences(rows, selectedIDs)

	if hide, ok := store.Get(HideParam); ok {
		v.Hidden = DecodeHidden(hide)
	}

	return v
}
