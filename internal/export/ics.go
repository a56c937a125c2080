// Package export renders derived timetable occurrences as an iCalendar
// feed so the selection can be subscribed to from a calendar client.
package export

import (
	"fmt"

	ics "github.com/arran4/golang-ical"

	"ttview/internal/model"
)

// ICS serializes occurrences into a VCALENDAR. calName becomes the
// calendar's display name, typically "<year> <session> timetable".
func ICS(occurrences []model.EventOccurrence, calName string) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//ttview//timetable//EN")
	if calName != "" {
		cal.SetName(calName)
		cal.SetXWRCalName(calName)
	}

	for _, occ := range occurrences {
		ev := cal.AddEvent(eventUID(occ))
		ev.SetSummary(fmt.Sprintf("%s %s", occ.Module, occ.Group))
		ev.SetStartAt(occ.Start)
		ev.SetEndAt(occ.End)
		if occ.Location != "" {
			ev.SetLocation(occ.Location)
		}
		ev.SetDtStampTime(occ.Start)
	}

	return cal.Serialize()
}

// eventUID builds a stable per-occurrence UID so re-exports update rather
// than duplicate events.
func eventUID(occ model.EventOccurrence) string {
	return fmt.Sprintf("%s-%s%d-%s@ttview",
		occ.Module, occ.Group, occ.Occurrence, occ.Start.UTC().Format("20060102T150405Z"))
}
