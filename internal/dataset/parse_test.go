package dataset

import (
	"testing"
	"time"
)

const sampleBody = `{
  "COMP1130_S1": {
    "title": "Programming as Problem Solving_S1",
    "occurrence": "ComA1,ComB2",
    "units": 6,
    "classes": [
      {"group": "ComA", "occurrence": 1, "day": "Monday", "start": "09:00", "duration": 90, "weeks": "1-6,8-13", "location": "Birch 1.33"},
      {"group": "ComA", "occurrence": 2, "day": "Tuesday", "start": "14:00", "duration": 90, "weeks": "1-6,8-13", "location": "Birch 1.33"},
      {"group": "ComB", "occurrence": 1, "day": "Funday", "start": "10:00", "duration": 60, "weeks": "1-13"}
    ]
  },
  "MATH1005_S1": {
    "title": "Discrete Maths_S1",
    "classes": []
  }
}`

func TestParseDataset(t *testing.T) {
	entries, err := Parse([]byte(sampleBody))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	comp := entries[0]
	if comp.Key != "COMP1130_S1" {
		t.Fatalf("document order not preserved: %+v", comp)
	}
	if comp.Occurrence != "ComA1,ComB2" {
		t.Fatalf("Occurrence = %q", comp.Occurrence)
	}
	// The "Funday" row is malformed and must be skipped without taking
	// its siblings down.
	if len(comp.Classes) != 2 {
		t.Fatalf("Classes = %+v, want 2 rows", comp.Classes)
	}

	c := comp.Classes[0]
	if c.Group != "ComA" || c.Occurrence != 1 || c.Day != time.Monday {
		t.Fatalf("class = %+v", c)
	}
	if c.Start != "09:00" || c.Duration != 90*time.Minute {
		t.Fatalf("class = %+v", c)
	}
	if len(c.Weeks) != 2 || c.Weeks[0].First != 1 || c.Weeks[0].Last != 6 || c.Weeks[1].First != 8 {
		t.Fatalf("Weeks = %+v", c.Weeks)
	}

	// Raw passes through verbatim, extra fields included.
	if comp.Raw == nil || string(comp.Raw[0]) != "{" {
		t.Fatalf("Raw missing: %s", comp.Raw)
	}
}

func TestParseRejectsNonObject(t *testing.T) {
	if _, err := Parse([]byte(`[1,2,3]`)); err == nil {
		t.Fatalf("array root must be rejected")
	}
	if _, err := Parse(nil); err == nil {
		t.Fatalf("empty body must be rejected")
	}
}

func TestParseWeeksSingleAndMalformed(t *testing.T) {
	spans := parseWeeks("X", "3,junk,5-4,7-9")
	if len(spans) != 2 {
		t.Fatalf("spans = %+v", spans)
	}
	if spans[0].First != 3 || spans[0].Last != 3 {
		t.Fatalf("single week span = %+v", spans[0])
	}
	if spans[1].First != 7 || spans[1].Last != 9 {
		t.Fatalf("range span = %+v", spans[1])
	}
}

func TestDatasetURL(t *testing.T) {
	got := URL("https://tt.example.edu/data", "2025", "S1")
	if got != "https://tt.example.edu/data/timetable_2025_S1.json" {
		t.Fatalf("URL = %q", got)
	}
}
