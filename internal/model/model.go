package model

import (
	"encoding/json"
	"strconv"
	"time"
)

// Module is one normalized catalog entry. Modules are rebuilt in full every
// time the raw dataset changes and are never mutated field-by-field.
type Module struct {
	// ID is the module code, e.g. "COMP1130".
	ID string

	// Title is the display title with any trailing group/occurrence tag
	// (e.g. "_S1") already stripped.
	Title string

	// Occurrence is the raw occurrence-spec string from the dataset
	// ("ComA1,ComB2"), empty when the dataset carries none.
	Occurrence string

	// Classes are the weekly meetings of this module.
	Classes []ClassMeeting

	// Raw is the original dataset entry, passed through verbatim so that
	// descriptive fields survive normalization without a schema.
	Raw json.RawMessage
}

// ClassMeeting is one weekly meeting pattern of a module, before expansion
// into dated occurrences.
type ClassMeeting struct {
	Module     string
	Group      string // e.g. "ComA", "TutB"
	Occurrence int    // 1-based alternative within the group
	Day        time.Weekday
	Start      string // "HH:MM" in the dataset's local time
	Duration   time.Duration
	Weeks      []WeekSpan
	Location   string
}

// WeekSpan is an inclusive range of teaching weeks.
type WeekSpan struct {
	First int
	Last  int
}

// SpecifiedOccurrence records the user's explicit choice of one occurrence
// within a module's class group.
type SpecifiedOccurrence struct {
	Module     string
	Group      string
	Occurrence int
}

// HiddenKey identifies one concrete event occurrence that the user has
// manually hidden. It is an ordered tuple; equality is component-wise.
type HiddenKey []string

// Equal reports component-wise equality with other.
func (k HiddenKey) Equal(other HiddenKey) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// EventOccurrence is a single dated class event, after recurrence expansion
// and timezone normalization.
type EventOccurrence struct {
	Module     string
	Group      string
	Occurrence int
	Location   string

	// Start / End are in the configured display timezone.
	Start time.Time
	End   time.Time
}

// Key returns the hidden-key tuple for this occurrence:
// (module, group, occurrence, weekday, start time).
func (o EventOccurrence) Key() HiddenKey {
	return HiddenKey{
		o.Module,
		o.Group,
		strconv.Itoa(o.Occurrence),
		o.Start.Weekday().String(),
		o.Start.Format("15:04"),
	}
}
