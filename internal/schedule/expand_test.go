package schedule

import (
	"testing"
	"time"

	"ttview/internal/model"
)

var canberra = time.FixedZone("AEST", 10*3600)

// sessionStart is the Monday of teaching week 1.
var sessionStart = time.Date(2025, time.February, 17, 0, 0, 0, 0, canberra)

func lecture(group string, occurrence int, day time.Weekday, start string, weeks ...model.WeekSpan) model.ClassMeeting {
	return model.ClassMeeting{
		Module:     "COMP1130",
		Group:      group,
		Occurrence: occurrence,
		Day:        day,
		Start:      start,
		Duration:   90 * time.Minute,
		Weeks:      weeks,
		Location:   "Birch 1.33",
	}
}

func expand(t *testing.T, selected []model.Module, specified []model.SpecifiedOccurrence, hidden []model.HiddenKey) ExpandResult {
	t.Helper()
	res, err := Expand(selected, specified, hidden, ExpandConfig{
		DisplayLocation: canberra,
		SessionStart:    sessionStart,
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	return res
}

func TestExpandWeeklyMeeting(t *testing.T) {
	mod := model.Module{ID: "COMP1130", Classes: []model.ClassMeeting{
		lecture("ComA", 1, time.Monday, "09:00", model.WeekSpan{First: 1, Last: 2}),
	}}

	res := expand(t, []model.Module{mod}, nil, nil)
	if len(res.Occurrences) != 2 {
		t.Fatalf("occurrences = %+v", res.Occurrences)
	}

	first := res.Occurrences[0]
	wantStart := time.Date(2025, time.February, 17, 9, 0, 0, 0, canberra)
	if !first.Start.Equal(wantStart) {
		t.Fatalf("first start = %v, want %v", first.Start, wantStart)
	}
	if !first.End.Equal(wantStart.Add(90 * time.Minute)) {
		t.Fatalf("first end = %v", first.End)
	}
	second := res.Occurrences[1]
	if !second.Start.Equal(wantStart.AddDate(0, 0, 7)) {
		t.Fatalf("second start = %v", second.Start)
	}
}

func TestExpandSkipsMidSessionBreak(t *testing.T) {
	mod := model.Module{ID: "COMP1130", Classes: []model.ClassMeeting{
		lecture("ComA", 1, time.Friday, "10:00",
			model.WeekSpan{First: 1, Last: 2}, model.WeekSpan{First: 4, Last: 4}),
	}}

	res := expand(t, []model.Module{mod}, nil, nil)
	if len(res.Occurrences) != 3 {
		t.Fatalf("occurrences = %+v", res.Occurrences)
	}
	// Week 3 is the break; the third occurrence lands in week 4.
	want := time.Date(2025, time.March, 14, 10, 0, 0, 0, canberra)
	if !res.Occurrences[2].Start.Equal(want) {
		t.Fatalf("week-4 start = %v, want %v", res.Occurrences[2].Start, want)
	}
}

func TestExpandHonorsSpecifiedOccurrence(t *testing.T) {
	mod := model.Module{ID: "COMP1130", Classes: []model.ClassMeeting{
		lecture("ComA", 1, time.Monday, "09:00", model.WeekSpan{First: 1, Last: 1}),
		lecture("ComA", 2, time.Tuesday, "14:00", model.WeekSpan{First: 1, Last: 1}),
		lecture("TutB", 1, time.Wednesday, "11:00", model.WeekSpan{First: 1, Last: 1}),
	}}
	specified := []model.SpecifiedOccurrence{
		{Module: "COMP1130", Group: "ComA", Occurrence: 2},
	}

	res := expand(t, []model.Module{mod}, specified, nil)
	if len(res.Occurrences) != 2 {
		t.Fatalf("occurrences = %+v", res.Occurrences)
	}
	// Only ComA occurrence 2 survives; TutB keeps all its alternatives.
	for _, occ := range res.Occurrences {
		if occ.Group == "ComA" && occ.Occurrence != 2 {
			t.Fatalf("unchosen ComA occurrence leaked: %+v", occ)
		}
	}
}

func TestExpandLastSpecifiedWins(t *testing.T) {
	mod := model.Module{ID: "COMP1130", Classes: []model.ClassMeeting{
		lecture("ComA", 1, time.Monday, "09:00", model.WeekSpan{First: 1, Last: 1}),
		lecture("ComA", 2, time.Tuesday, "14:00", model.WeekSpan{First: 1, Last: 1}),
	}}
	// Duplicate specs for the same group: the later one applies.
	specified := []model.SpecifiedOccurrence{
		{Module: "COMP1130", Group: "ComA", Occurrence: 2},
		{Module: "COMP1130", Group: "ComA", Occurrence: 1},
	}

	res := expand(t, []model.Module{mod}, specified, nil)
	if len(res.Occurrences) != 1 || res.Occurrences[0].Occurrence != 1 {
		t.Fatalf("occurrences = %+v", res.Occurrences)
	}
}

func TestExpandDropsHiddenOccurrences(t *testing.T) {
	mod := model.Module{ID: "COMP1130", Classes: []model.ClassMeeting{
		lecture("ComA", 1, time.Monday, "09:00", model.WeekSpan{First: 1, Last: 2}),
	}}

	res := expand(t, []model.Module{mod}, nil, nil)
	if len(res.Occurrences) != 2 {
		t.Fatalf("precondition: %+v", res.Occurrences)
	}
	key := res.Occurrences[0].Key()

	res = expand(t, []model.Module{mod}, nil, []model.HiddenKey{key})
	// The key names (module, group, occurrence, weekday, start time), so
	// hiding one Monday 09:00 slot hides both weeks of it.
	if len(res.Occurrences) != 0 {
		t.Fatalf("hidden occurrences leaked: %+v", res.Occurrences)
	}
}

func TestExpandCap(t *testing.T) {
	mod := model.Module{ID: "COMP1130", Classes: []model.ClassMeeting{
		lecture("ComA", 1, time.Monday, "09:00", model.WeekSpan{First: 1, Last: 30}),
	}}

	res, err := Expand([]model.Module{mod}, nil, nil, ExpandConfig{
		DisplayLocation:          canberra,
		SessionStart:             sessionStart,
		MaxOccurrencesPerMeeting: 10,
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(res.Occurrences) != 10 {
		t.Fatalf("cap not applied: %d", len(res.Occurrences))
	}
	if len(res.Truncated) != 1 || res.Truncated[0] != "COMP1130/ComA1" {
		t.Fatalf("Truncated = %+v", res.Truncated)
	}
}

func TestExpandRequiresSessionStart(t *testing.T) {
	if _, err := Expand(nil, nil, nil, ExpandConfig{DisplayLocation: canberra}); err == nil {
		t.Fatalf("missing SessionStart must fail")
	}
}
