// Package timetable derives clean module state from the raw dataset: the
// module catalog (normalize.go) and the specified-occurrence list
// (occurrence.go).
package timetable

import (
	"encoding/json"
	"regexp"
	"strings"

	"ttview/internal/model"
)

// RawEntry is one dataset entry prior to normalization, keyed by a
// composite identifier (module code plus a session/occurrence suffix,
// e.g. "COMP1130_S1").
type RawEntry struct {
	Key        string
	Title      string
	Occurrence string
	Classes    []model.ClassMeeting
	Raw        json.RawMessage
}

// titleTagRe matches the trailing group/occurrence tag on dataset titles,
// e.g. "Programming as Problem Solving_S1".
var titleTagRe = regexp.MustCompile(`_[A-Za-z][0-9]$`)

// Normalize rebuilds the module catalog from raw dataset entries. The
// composite key's suffix is discarded to obtain the module code, and the
// title is stripped of its trailing tag. When two entries normalize to the
// same code the later one wins.
//
// Normalize is re-run in full on every dataset change; it has no side
// effects and may be repeated for the same input.
func Normalize(entries []RawEntry) map[string]model.Module {
	modules := make(map[string]model.Module, len(entries))
	for _, e := range entries {
		code := moduleCode(e.Key)
		if code == "" {
			continue
		}
		// Class rows arrive keyed by the composite id; stamp them with
		// the normalized module code.
		classes := make([]model.ClassMeeting, len(e.Classes))
		for i, c := range e.Classes {
			c.Module = code
			classes[i] = c
		}
		modules[code] = model.Module{
			ID:         code,
			Title:      titleTagRe.ReplaceAllString(e.Title, ""),
			Occurrence: e.Occurrence,
			Classes:    classes,
			Raw:        e.Raw,
		}
	}
	return modules
}

// moduleCode extracts the module code from a composite dataset key by
// discarding the suffix after the last underscore. A key without an
// underscore is already a module code.
func moduleCode(key string) string {
	if i := strings.LastIndex(key, "_"); i >= 0 {
		return key[:i]
	}
	return key
}
