package web

import (
	"net/http"

	"ttview/internal/capture"
	"ttview/internal/export"
	appLog "ttview/internal/log"
	"ttview/internal/model"
	"ttview/internal/state"
)

// viewEvent is one row of the rendered week view.
type viewEvent struct {
	Module   string
	Group    string
	Location string
	Day      string
	Date     string
	Start    string
	End      string
	Key      string
}

type viewData struct {
	Year     string
	Session  string
	Selected []string
	Query    string
	Events   []viewEvent
}

// handleView renders the timetable as server-side HTML. The root element
// carries data-ready="true" once rendered, which the PNG capture waits on.
//
// GET /view?y=2025&s=S1&COMP1130&hide=...
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	store, view, _, err := s.seedView(r)
	if err != nil {
		appLog.Error("view: catalog load failed", err)
		http.Error(w, "failed to load timetable dataset", http.StatusBadGateway)
		return
	}

	result, err := s.expand(view)
	if err != nil {
		appLog.Error("view: expand failed", err)
		http.Error(w, "failed to derive timetable", http.StatusInternalServerError)
		return
	}

	data := viewData{
		Year:    view.Year,
		Session: view.Session,
		Query:   store.Encode(),
	}
	for _, m := range view.Selected {
		data.Selected = append(data.Selected, m.ID)
	}
	for _, occ := range result.Occurrences {
		data.Events = append(data.Events, viewEvent{
			Module:   occ.Module,
			Group:    occ.Group,
			Location: occ.Location,
			Day:      occ.Start.Weekday().String(),
			Date:     occ.Start.Format("2006-01-02"),
			Start:    occ.Start.Format("15:04"),
			End:      occ.End.Format("15:04"),
			Key:      state.EncodeHidden([]model.HiddenKey{occ.Key()}),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "view.html", data); err != nil {
		appLog.Error("view: template render failed", err)
	}
}

// handleICS serves the derived occurrences as an iCalendar feed.
//
// GET /timetable.ics?y=2025&s=S1&COMP1130
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	_, view, _, err := s.seedView(r)
	if err != nil {
		appLog.Error("ics: catalog load failed", err)
		http.Error(w, "failed to load timetable dataset", http.StatusBadGateway)
		return
	}

	result, err := s.expand(view)
	if err != nil {
		appLog.Error("ics: expand failed", err)
		http.Error(w, "failed to derive timetable", http.StatusInternalServerError)
		return
	}

	name := view.Year + " " + view.Session + " timetable"
	body := export.ICS(result.Occurrences, name)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="timetable.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// handlePreview serves the last captured PNG snapshot from disk, from the
// same location the capture pipeline in cmd/ttview writes to.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	previewPath := capture.DefaultPreviewPath
	if s.debug {
		previewPath = capture.DebugPreviewPath
	}
	http.ServeFile(w, r, previewPath)
}
