package export

import (
	"strings"
	"testing"
	"time"

	"ttview/internal/model"
)

func TestICS(t *testing.T) {
	start := time.Date(2025, time.February, 17, 9, 0, 0, 0, time.UTC)
	occs := []model.EventOccurrence{
		{
			Module:     "COMP1130",
			Group:      "ComA",
			Occurrence: 1,
			Location:   "Birch 1.33",
			Start:      start,
			End:        start.Add(90 * time.Minute),
		},
	}

	out := ICS(occs, "2025 S1 timetable")

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"END:VCALENDAR",
		"BEGIN:VEVENT",
		"SUMMARY:COMP1130 ComA",
		"LOCATION:Birch 1.33",
		"UID:COMP1130-ComA1-20250217T090000Z@ttview",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("ICS output missing %q:\n%s", want, out)
		}
	}
}

func TestICSEmpty(t *testing.T) {
	out := ICS(nil, "")
	if !strings.Contains(out, "BEGIN:VCALENDAR") || strings.Contains(out, "BEGIN:VEVENT") {
		t.Fatalf("empty export should be a bare calendar:\n%s", out)
	}
}
