package dataset

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	appLog "ttview/internal/log"
	"ttview/internal/model"
	"ttview/internal/timetable"
)

// Parse decodes a raw dataset body into raw entries, preserving document
// order (last-write-wins on duplicate codes happens later, in
// normalization).
//
// The dataset is a JSON object keyed by composite id, each value carrying
// "title", an optional "occurrence" spec string, a "classes" array of
// weekly meetings, and arbitrary further fields. Those extra fields are
// not interpreted here; each entry's raw JSON rides along verbatim.
// Malformed class rows are logged and skipped without failing the entry.
func Parse(body []byte) ([]timetable.RawEntry, error) {
	if len(body) == 0 {
		return nil, errors.New("empty dataset body")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, errors.New("dataset root is not a JSON object")
	}

	var entries []timetable.RawEntry
	root.ForEach(func(key, value gjson.Result) bool {
		entry := timetable.RawEntry{
			Key:        key.String(),
			Title:      value.Get("title").String(),
			Occurrence: value.Get("occurrence").String(),
			Raw:        json.RawMessage(value.Raw),
		}

		value.Get("classes").ForEach(func(_, row gjson.Result) bool {
			meeting, err := parseClass(entry.Key, row)
			if err != nil {
				appLog.Warn("skipping malformed class row",
					"key", entry.Key, "err", err)
				return true
			}
			entry.Classes = append(entry.Classes, meeting)
			return true
		})

		entries = append(entries, entry)
		return true
	})

	appLog.Info("dataset parsed", "entries", len(entries))
	return entries, nil
}

func parseClass(key string, row gjson.Result) (model.ClassMeeting, error) {
	var m model.ClassMeeting

	m.Group = row.Get("group").String()
	if m.Group == "" {
		return m, errors.New("missing group")
	}
	m.Occurrence = int(row.Get("occurrence").Int())
	if m.Occurrence <= 0 {
		m.Occurrence = 1
	}

	day, err := parseWeekday(row.Get("day").String())
	if err != nil {
		return m, err
	}
	m.Day = day

	m.Start = row.Get("start").String()
	if _, err := time.Parse("15:04", m.Start); err != nil {
		return m, errors.New("bad start time " + strconv.Quote(m.Start))
	}

	minutes := row.Get("duration").Int()
	if minutes <= 0 {
		return m, errors.New("bad duration")
	}
	m.Duration = time.Duration(minutes) * time.Minute

	m.Weeks = parseWeeks(key, row.Get("weeks").String())
	m.Location = row.Get("location").String()
	return m, nil
}

func parseWeekday(name string) (time.Weekday, error) {
	switch strings.ToLower(name) {
	case "monday", "mon":
		return time.Monday, nil
	case "tuesday", "tue":
		return time.Tuesday, nil
	case "wednesday", "wed":
		return time.Wednesday, nil
	case "thursday", "thu":
		return time.Thursday, nil
	case "friday", "fri":
		return time.Friday, nil
	case "saturday", "sat":
		return time.Saturday, nil
	case "sunday", "sun":
		return time.Sunday, nil
	}
	return 0, errors.New("unknown weekday " + strconv.Quote(name))
}

// parseWeeks parses a teaching-week list like "1-6,8-13". Spans that do
// not parse are dropped with a diagnostic; a single week "n" is the span
// n-n.
func parseWeeks(key, spec string) []model.WeekSpan {
	if spec == "" {
		return nil
	}
	var spans []model.WeekSpan
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		first, last, ok := parseWeekSpan(part)
		if !ok {
			appLog.Warn("skipping malformed week span", "key", key, "span", part)
			continue
		}
		spans = append(spans, model.WeekSpan{First: first, Last: last})
	}
	return spans
}

func parseWeekSpan(part string) (first, last int, ok bool) {
	lo, hi, dashed := strings.Cut(part, "-")
	a, err := strconv.Atoi(lo)
	if err != nil || a <= 0 {
		return 0, 0, false
	}
	if !dashed {
		return a, a, true
	}
	b, err := strconv.Atoi(hi)
	if err != nil || b < a {
		return 0, 0, false
	}
	return a, b, true
}
