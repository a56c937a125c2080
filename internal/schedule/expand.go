// Package schedule turns the weekly class meetings of the selected modules
// into concrete dated occurrences for display and export.
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "ttview/internal/log"
	"ttview/internal/model"
)

const defaultMaxOccurrencesPerMeeting = 500

// ExpandConfig controls how meeting expansion is performed.
type ExpandConfig struct {
	// DisplayLocation is the timezone all occurrences are converted to.
	// If nil, time.Local is used.
	DisplayLocation *time.Location

	// SessionStart is the Monday of teaching week 1, at midnight in the
	// display timezone. Week numbers in the dataset count from here.
	SessionStart time.Time

	// MaxOccurrencesPerMeeting caps expansion per meeting pattern. Zero
	// means defaultMaxOccurrencesPerMeeting.
	MaxOccurrencesPerMeeting int
}

// ExpandResult carries the expanded occurrences plus any meetings that hit
// the expansion cap.
type ExpandResult struct {
	Occurrences []model.EventOccurrence
	// Truncated records "<module>/<group><occurrence>" ids that hit the cap.
	Truncated []string
}

// Expand derives dated occurrences for the selected modules.
//
// For each (module, group) with at least one specified occurrence, only
// meetings with the chosen occurrence number survive; when the specified
// list carries duplicates for a group, the last one wins. Groups with no
// specified occurrence keep all their alternatives. Occurrences whose key
// matches a hidden key are removed afterwards. The result is ordered by
// start time.
func Expand(selected []model.Module, specified []model.SpecifiedOccurrence, hidden []model.HiddenKey, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.SessionStart.IsZero() {
		return result, errors.New("expand: SessionStart is required")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerMeeting <= 0 {
		cfg.MaxOccurrencesPerMeeting = defaultMaxOccurrencesPerMeeting
	}

	// Last specified occurrence per (module, group) wins.
	chosen := make(map[string]int)
	for _, s := range specified {
		chosen[s.Module+"\x00"+s.Group] = s.Occurrence
	}

	for _, mod := range selected {
		for _, meeting := range mod.Classes {
			if want, ok := chosen[meeting.Module+"\x00"+meeting.Group]; ok && meeting.Occurrence != want {
				continue
			}
			occ, hitCap := expandMeeting(meeting, cfg)
			if hitCap {
				result.Truncated = append(result.Truncated,
					fmt.Sprintf("%s/%s%d", meeting.Module, meeting.Group, meeting.Occurrence))
			}
			result.Occurrences = append(result.Occurrences, occ...)
		}
	}

	result.Occurrences = dropHidden(result.Occurrences, hidden)

	sort.SliceStable(result.Occurrences, func(i, j int) bool {
		a, b := result.Occurrences[i], result.Occurrences[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.Module < b.Module
	})

	return result, nil
}

// expandMeeting expands one weekly meeting pattern across its week spans.
func expandMeeting(meeting model.ClassMeeting, cfg ExpandConfig) ([]model.EventOccurrence, bool) {
	startOfDay, err := time.Parse("15:04", meeting.Start)
	if err != nil {
		appLog.Warn("skipping meeting with bad start time",
			"module", meeting.Module, "group", meeting.Group, "start", meeting.Start)
		return nil, false
	}

	var out []model.EventOccurrence
	hitCap := false

	for _, span := range meeting.Weeks {
		first := meetingStart(cfg.SessionStart, span.First, meeting.Day, startOfDay, cfg.DisplayLocation)
		count := span.Last - span.First + 1
		if count <= 0 {
			continue
		}

		r, err := rrule.NewRRule(rrule.ROption{
			Freq:    rrule.WEEKLY,
			Count:   count,
			Dtstart: first,
		})
		if err != nil {
			appLog.Error("meeting recurrence rule failed", err,
				"module", meeting.Module, "group", meeting.Group)
			continue
		}

		for _, start := range r.All() {
			if len(out) >= cfg.MaxOccurrencesPerMeeting {
				hitCap = true
				break
			}
			start = start.In(cfg.DisplayLocation)
			out = append(out, model.EventOccurrence{
				Module:     meeting.Module,
				Group:      meeting.Group,
				Occurrence: meeting.Occurrence,
				Location:   meeting.Location,
				Start:      start,
				End:        start.Add(meeting.Duration),
			})
		}
		if hitCap {
			break
		}
	}

	if hitCap {
		appLog.Warn("meeting expansion truncated",
			"module", meeting.Module, "group", meeting.Group,
			"cap", cfg.MaxOccurrencesPerMeeting)
	}
	return out, hitCap
}

// meetingStart computes the first occurrence time of a meeting in a week
// span: the session-start Monday advanced to the requested week and
// weekday, at the meeting's start time.
func meetingStart(sessionStart time.Time, week int, day time.Weekday, clock time.Time, loc *time.Location) time.Time {
	dayOffset := (int(day) + 6) % 7 // Monday-based weekday index
	date := sessionStart.AddDate(0, 0, (week-1)*7+dayOffset)
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, loc)
}

func dropHidden(occurrences []model.EventOccurrence, hidden []model.HiddenKey) []model.EventOccurrence {
	if len(hidden) == 0 {
		return occurrences
	}
	out := occurrences[:0]
	for _, occ := range occurrences {
		key := occ.Key()
		drop := false
		for _, h := range hidden {
			if key.Equal(h) {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, occ)
		}
	}
	return out
}
