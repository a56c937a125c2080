package timetable

import (
	"regexp"
	"strconv"
	"strings"

	appLog "ttview/internal/log"
	"ttview/internal/model"
)

// OccurrenceRow pairs a module identifier with its raw occurrence-spec
// string as supplied by the dataset (or the URL), e.g.
// ("COMP1130", "ComA1,ComB2").
type OccurrenceRow struct {
	Module string
	Spec   string
}

// tokenRe matches one occurrence token: the longest run of non-digit
// characters (the group id) followed by a run of digits at the end of the
// token (the occurrence number).
var tokenRe = regexp.MustCompile(`^(\D+)(\d+)$`)

// ParseOccurrences derives the specified-occurrence list from raw rows.
//
// Rows whose spec is empty or whose module is not in selected are skipped
// entirely; parsing is scoped to the modules the user has chosen. Within a
// row the spec splits on commas, and each token yields one
// (module, group, occurrence) triple. A token with no trailing digit run
// is dropped with a diagnostic and does not affect its siblings.
//
// Output order follows input order (row order, then token order).
// Duplicate triples are possible and are not deduplicated here.
func ParseOccurrences(rows []OccurrenceRow, selected []string) []model.SpecifiedOccurrence {
	chosen := make(map[string]bool, len(selected))
	for _, id := range selected {
		chosen[id] = true
	}

	var out []model.SpecifiedOccurrence
	for _, row := range rows {
		if row.Spec == "" || !chosen[row.Module] {
			continue
		}
		for _, token := range strings.Split(row.Spec, ",") {
			if token == "" {
				continue
			}
			m := tokenRe.FindStringSubmatch(token)
			if m == nil {
				appLog.Warn("skipping malformed occurrence token",
					"module", row.Module, "token", token)
				continue
			}
			n, err := strconv.Atoi(m[2])
			if err != nil {
				// Unreachable for tokens the pattern accepted, short of
				// an overflowing digit run.
				appLog.Warn("skipping occurrence token with bad number",
					"module", row.Module, "token", token)
				continue
			}
			out = append(out, model.SpecifiedOccurrence{
				Module:     row.Module,
				Group:      m[1],
				Occurrence: n,
			})
		}
	}
	return out
}
