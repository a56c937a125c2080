package web

import (
	"net/http"
	"strings"

	appLog "ttview/internal/log"
	"ttview/internal/model"
	"ttview/internal/query"
	"ttview/internal/state"
)

// The action endpoints run one reducer transition against the state
// encoded in the submitted query string and return the updated query
// string. Clients replace their address bar with it; nothing is stored
// server-side.

type actionResponse struct {
	Query string `json:"query"`
}

// handleSelect replaces the selected-module sequence.
//
// POST /api/select
//
//	q=y=2025&s=S1&COMP1130        (current query string, escaped)
//	modules=COMP1130,MATH1005     (new candidate selection, in order)
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	store, view, catalog, err := s.seedAction(r)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load timetable dataset")
		return
	}

	var next []model.Module
	for _, id := range splitList(r.FormValue("modules")) {
		if m, ok := catalog[id]; ok {
			next = append(next, m)
			continue
		}
		// Unknown ids pass through untouched; the reducer does not
		// filter, and the id may belong to a dataset still loading.
		next = append(next, model.Module{ID: id})
	}

	_, cmds := state.ReduceSelection(view.Selected, next)
	state.Apply(store, cmds)

	writeJSON(w, http.StatusOK, actionResponse{Query: store.Encode()})
}

// handleOccurrence applies a select or reset action to the
// specified-occurrence sequence.
//
// POST /api/occurrence
//
//	q=...&action=select&module=COMP1130&group=ComA&occurrence=1
func (s *Server) handleOccurrence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	store, view, _, err := s.seedAction(r)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load timetable dataset")
		return
	}

	module := r.FormValue("module")
	group := r.FormValue("group")
	occurrence := parseIntDefault(r.FormValue("occurrence"), 0)
	if module == "" || group == "" || occurrence <= 0 {
		writeError(w, http.StatusBadRequest, "module, group and occurrence are required")
		return
	}

	// The reducer's action set is closed; anything else in the request is
	// a client error, rejected before it becomes an action value.
	var action state.OccurrenceAction
	switch r.FormValue("action") {
	case "select":
		action = state.SelectOccurrence{Module: module, Group: group, Occurrence: occurrence}
	case "reset":
		action = state.ResetOccurrence{Module: module, Group: group, Occurrence: occurrence}
	default:
		writeError(w, http.StatusBadRequest, "action must be select or reset")
		return
	}

	_, cmds := state.ReduceOccurrences(view.Specified, action)
	state.Apply(store, cmds)

	writeJSON(w, http.StatusOK, actionResponse{Query: store.Encode()})
}

// handleHide applies a hide or reset action to the hidden-event sequence.
//
// POST /api/hide
//
//	q=...&action=hide&key=COMP1130_ComA_1_Monday_09:00
//	q=...&action=reset
func (s *Server) handleHide(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	store, view, _, err := s.seedAction(r)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load timetable dataset")
		return
	}

	var action state.HiddenAction
	switch r.FormValue("action") {
	case "hide":
		raw := r.FormValue("key")
		if raw == "" {
			writeError(w, http.StatusBadRequest, "key is required")
			return
		}
		action = state.HideEvent{Key: model.HiddenKey(strings.Split(raw, "_"))}
	case "reset":
		action = state.ResetHidden{}
	default:
		writeError(w, http.StatusBadRequest, "action must be hide or reset")
		return
	}

	_, cmds := state.ReduceHidden(view.Hidden, action)
	state.Apply(store, cmds)

	writeJSON(w, http.StatusOK, actionResponse{Query: store.Encode()})
}

// seedAction parses the submitted query-string state ("q") and derives the
// view it encodes.
func (s *Server) seedAction(r *http.Request) (*query.Store, state.View, map[string]model.Module, error) {
	store := query.Parse(r.FormValue("q"))

	year, session := s.cfg.Year, s.cfg.Session
	if y, ok := store.Get(state.YearParam); ok {
		year = y
	}
	if sess, ok := store.Get(state.SessionParam); ok {
		session = sess
	}

	catalog, err := s.catalog(r.Context(), year, session)
	if err != nil {
		appLog.Error("action: catalog load failed", err, "year", year, "session", session)
		return nil, state.View{}, nil, err
	}
	return store, state.Seed(store, catalog, s.cfg.Year, s.cfg.Session), catalog, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
