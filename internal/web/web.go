// Package web serves the viewer: JSON APIs over the selection state,
// reducer-backed action endpoints, the HTML week view, the ICS feed, and
// the PNG preview. Every view-affecting endpoint is addressed by the query
// contract (y, s, per-module parameters, hide), so any response's query
// string is a shareable link.
package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"ttview/internal/config"
	"ttview/internal/dataset"
	appLog "ttview/internal/log"
	"ttview/internal/model"
	"ttview/internal/query"
	"ttview/internal/schedule"
	"ttview/internal/state"
	"ttview/internal/timetable"
)

//go:embed templates/*.html
var templateFS embed.FS

// defaultCatalogTTL bounds how long a fetched catalog is served from
// memory before the next request triggers a refetch. The cron refresher
// only covers the configured default (year, session) pair; the TTL keeps
// other pairs from going stale for the process lifetime.
const defaultCatalogTTL = 30 * time.Minute

// Server provides the HTTP surface of the viewer.
type Server struct {
	cfg     *config.Config
	debug   bool
	mux     *http.ServeMux
	fetcher *dataset.Fetcher
	tmpl    *template.Template

	// catalogs caches the normalized module catalog per (year, session),
	// each entry good for catalogTTL.
	catalogMu  sync.RWMutex
	catalogs   map[string]*catalogEntry
	catalogTTL time.Duration
}

type catalogEntry struct {
	modules   map[string]model.Module
	updatedAt time.Time
}

// NewServer constructs a Server. Templates are parsed from the embedded
// filesystem; a parse failure is a build defect and panics.
func NewServer(cfg *config.Config, fetcher *dataset.Fetcher, debug bool) *Server {
	s := &Server{
		cfg:        cfg,
		debug:      debug,
		mux:        http.NewServeMux(),
		fetcher:    fetcher,
		catalogs:   make(map[string]*catalogEntry),
		catalogTTL: defaultCatalogTTL,
		tmpl:       template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for this server, with basic auth
// applied when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/modules", s.handleModules)
	s.mux.HandleFunc("/api/timetable", s.handleTimetable)
	s.mux.HandleFunc("/api/select", s.handleSelect)
	s.mux.HandleFunc("/api/occurrence", s.handleOccurrence)
	s.mux.HandleFunc("/api/hide", s.handleHide)
	s.mux.HandleFunc("/timetable.ics", s.handleICS)
	s.mux.HandleFunc("/view", s.handleView)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="ttview", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer starts an HTTP server bound to cfg.Listen.
func StartServer(_ context.Context, s *Server) error {
	appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen, "debug", s.debug)
	return http.ListenAndServe(s.cfg.Listen, s.Handler())
}

// Refresh fetches, parses and normalizes the dataset for year/session and
// swaps the cached catalog. It is idempotent and safe to re-run for the
// same input; the refresh scheduler calls it periodically.
func (s *Server) Refresh(ctx context.Context, year, session string) error {
	url := dataset.URL(s.cfg.DatasetBaseURL, year, session)
	body, fromCache, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}
	entries, err := dataset.Parse(body)
	if err != nil {
		return err
	}
	modules := timetable.Normalize(entries)

	s.catalogMu.Lock()
	s.catalogs[year+"_"+session] = &catalogEntry{
		modules:   modules,
		updatedAt: time.Now(),
	}
	s.catalogMu.Unlock()

	appLog.Info("catalog refreshed",
		"year", year, "session", session,
		"modules", len(modules), "from_cache", fromCache)
	return nil
}

// catalog returns the module catalog for year/session, loading it on
// first use and refetching once an entry outlives the TTL. A stale entry
// is still served when the refetch fails.
func (s *Server) catalog(ctx context.Context, year, session string) (map[string]model.Module, error) {
	key := year + "_" + session

	s.catalogMu.RLock()
	entry := s.catalogs[key]
	s.catalogMu.RUnlock()
	if entry != nil && time.Since(entry.updatedAt) < s.catalogTTL {
		appLog.Debug("catalog cache hit", "year", year, "session", session, "age", time.Since(entry.updatedAt).Round(time.Second))
		return entry.modules, nil
	}

	if err := s.Refresh(ctx, year, session); err != nil {
		if entry != nil {
			appLog.Warn("catalog refresh failed, serving stale entry", "year", year, "session", session, "err", err)
			return entry.modules, nil
		}
		return nil, err
	}

	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	return s.catalogs[key].modules, nil
}

// seedView parses the request's query string into a Store and derives the
// full view state against the catalog it names.
func (s *Server) seedView(r *http.Request) (*query.Store, state.View, map[string]model.Module, error) {
	store := query.Parse(r.URL.RawQuery)

	year, session := s.cfg.Year, s.cfg.Session
	if y, ok := store.Get(state.YearParam); ok {
		year = y
	}
	if sess, ok := store.Get(state.SessionParam); ok {
		session = sess
	}

	catalog, err := s.catalog(r.Context(), year, session)
	if err != nil {
		return nil, state.View{}, nil, err
	}
	return store, state.Seed(store, catalog, s.cfg.Year, s.cfg.Session), catalog, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// moduleDTO is a JSON-friendly view of one catalog entry.
type moduleDTO struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Occurrence string `json:"occurrence,omitempty"`
}

// handleModules returns the normalized module catalog for a year/session.
//
// GET /api/modules?y=2025&s=S1
func (s *Server) handleModules(w http.ResponseWriter, r *http.Request) {
	_, view, catalog, err := s.seedView(r)
	if err != nil {
		appLog.Error("modules: catalog load failed", err)
		writeError(w, http.StatusBadGateway, "failed to load timetable dataset")
		return
	}

	dtos := make([]moduleDTO, 0, len(catalog))
	for _, m := range catalog {
		dtos = append(dtos, moduleDTO{ID: m.ID, Title: m.Title, Occurrence: m.Occurrence})
	}
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].ID < dtos[j].ID })

	writeJSON(w, http.StatusOK, struct {
		Year    string      `json:"year"`
		Session string      `json:"session"`
		Modules []moduleDTO `json:"modules"`
	}{view.Year, view.Session, dtos})
}

// occurrenceDTO is a JSON-friendly view of one derived event.
type occurrenceDTO struct {
	Module     string    `json:"module"`
	Group      string    `json:"group"`
	Occurrence int       `json:"occurrence"`
	Location   string    `json:"location,omitempty"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Key        string    `json:"key"`
}

type timetableResponse struct {
	Year        string                      `json:"year"`
	Session     string                      `json:"session"`
	Selected    []string                    `json:"selected"`
	Specified   []model.SpecifiedOccurrence `json:"specified"`
	Hidden      []string                    `json:"hidden"`
	Events      []occurrenceDTO             `json:"events"`
	Truncated   []string                    `json:"truncated,omitempty"`
	Query       string                      `json:"query"`
	Timezone    string                      `json:"timezone"`
	WeekStart   string                      `json:"week_start"`
	GeneratedAt time.Time                   `json:"generated_at"`
}

// handleTimetable derives the full view for the request's query string.
//
// GET /api/timetable?y=2025&s=S1&COMP1130&MATH1005=TutC3&hide=...
func (s *Server) handleTimetable(w http.ResponseWriter, r *http.Request) {
	store, view, _, err := s.seedView(r)
	if err != nil {
		appLog.Error("timetable: catalog load failed", err)
		writeError(w, http.StatusBadGateway, "failed to load timetable dataset")
		return
	}

	result, err := s.expand(view)
	if err != nil {
		appLog.Error("timetable: expand failed", err)
		writeError(w, http.StatusInternalServerError, "failed to derive timetable")
		return
	}

	writeJSON(w, http.StatusOK, s.timetableResponse(store, view, result))
}

func (s *Server) timetableResponse(store *query.Store, view state.View, result schedule.ExpandResult) timetableResponse {
	selected := make([]string, 0, len(view.Selected))
	for _, m := range view.Selected {
		selected = append(selected, m.ID)
	}
	hidden := make([]string, 0, len(view.Hidden))
	for _, k := range view.Hidden {
		hidden = append(hidden, state.EncodeHidden([]model.HiddenKey{k}))
	}
	events := make([]occurrenceDTO, 0, len(result.Occurrences))
	for _, occ := range result.Occurrences {
		events = append(events, occurrenceDTO{
			Module:     occ.Module,
			Group:      occ.Group,
			Occurrence: occ.Occurrence,
			Location:   occ.Location,
			Start:      occ.Start,
			End:        occ.End,
			Key:        state.EncodeHidden([]model.HiddenKey{occ.Key()}),
		})
	}

	return timetableResponse{
		Year:        view.Year,
		Session:     view.Session,
		Selected:    selected,
		Specified:   view.Specified,
		Hidden:      hidden,
		Events:      events,
		Truncated:   result.Truncated,
		Query:       store.Encode(),
		Timezone:    s.location().String(),
		WeekStart:   s.cfg.WeekStart,
		GeneratedAt: time.Now(),
	}
}

func (s *Server) expand(view state.View) (schedule.ExpandResult, error) {
	loc := s.location()
	return schedule.Expand(view.Selected, view.Specified, view.Hidden, schedule.ExpandConfig{
		DisplayLocation: loc,
		SessionStart:    s.sessionStart(loc),
	})
}

func (s *Server) location() *time.Location {
	if s.cfg.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", s.cfg.Timezone)
		return time.Local
	}
	return loc
}

// sessionStart resolves the configured week-1 Monday, falling back to the
// Monday of the current week when unconfigured.
func (s *Server) sessionStart(loc *time.Location) time.Time {
	if s.cfg.SessionStart != "" {
		t, err := time.ParseInLocation("2006-01-02", s.cfg.SessionStart, loc)
		if err == nil {
			return t
		}
		appLog.Error("bad session_start in config; using current week", err, "value", s.cfg.SessionStart)
	}
	now := time.Now().In(loc)
	offset := (int(now.Weekday()) + 6) % 7
	monday := now.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, loc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
