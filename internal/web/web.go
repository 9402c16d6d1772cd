package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"monthcal/internal/calendar"
	"monthcal/internal/config"
	appLog "monthcal/internal/log"
	"monthcal/internal/model"
	"monthcal/internal/render"
)

const maxBodyBytes = 1 << 20

// Server hosts one Calendar over HTTP: an HTML page driven by plain links
// and a JSON API. Every request holds mu for the whole calendar operation
// so recompute chains never interleave.
//
// The calendar shows two event layers: the feed (events file plus ICS,
// replaced wholesale on every refresh) and the events written through
// /api/events. A refresh never touches the API layer.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux

	mu          sync.Mutex
	cal         *calendar.Calendar
	feed        []model.Event
	posted      []model.Event
	lastClicked []model.Event

	// PreviewPath, if set, is served at /preview.png.
	PreviewPath string
}

// NewServer constructs the calendar from opts and registers routes.
// opts.DayClicked is still invoked; the server also keeps the events of
// the last click for the API response.
func NewServer(cfg *config.Config, opts calendar.Options) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		cfg:    cfg,
		mux:    http.NewServeMux(),
		feed:   model.CloneEvents(opts.Events),
		posted: []model.Event{},
	}

	hostClicked := opts.DayClicked
	opts.DayClicked = func(events []model.Event) {
		s.lastClicked = events
		if hostClicked != nil {
			hostClicked(events)
		}
	}
	s.cal = calendar.New(opts)

	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// SetFeed replaces the feed layer under the server lock and keeps events
// posted through the API. It is the apply hook for the refresher.
func (s *Server) SetFeed(events []model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed = model.CloneEvents(events)
	s.syncEvents()
	appLog.Info("feed events replaced", "feed", len(s.feed), "api", len(s.posted))
}

// syncEvents hands feed + posted to the calendar. Callers hold mu.
func (s *Server) syncEvents() int {
	merged := make([]model.Event, 0, len(s.feed)+len(s.posted))
	merged = append(merged, s.feed...)
	merged = append(merged, s.posted...)
	return len(s.cal.ReplaceEvents(merged))
}

// Model returns the current render model.
func (s *Server) Model() calendar.RenderModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cal.Model()
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password means disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
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
			w.Header().Set("WWW-Authenticate", `Basic realm="MonthCal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// ListenAndServe serves s on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		appLog.Info("HTTP server stopped")
		return nil
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/preview.png", s.handlePreview)

	// The page works without script, so its actions are GET links. They
	// refuse prefetches and carry noindex/nofollow so link scanners cannot
	// move the shared calendar.
	s.mux.HandleFunc("GET /calendar", s.handleCalendarPage)
	s.mux.HandleFunc("GET /calendar/nav", linkAction(s.handleCalendarNav))
	s.mux.HandleFunc("GET /calendar/select", linkAction(s.handleCalendarSelect))
	s.mux.HandleFunc("GET /calendar/today", linkAction(s.handleCalendarToday))

	s.mux.HandleFunc("GET /api/month", s.handleMonth)
	s.mux.HandleFunc("GET /api/events", s.handleEventsGet)
	s.mux.HandleFunc("PUT /api/events", s.handleEventsPut)
	s.mux.HandleFunc("POST /api/events", s.handleEventsPost)
	s.mux.HandleFunc("POST /api/nav", s.handleAPINav)
	s.mux.HandleFunc("POST /api/select", s.handleAPISelect)
	s.mux.HandleFunc("POST /api/today", s.handleAPIToday)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handlePreview serves the last captured PNG from disk.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if s.PreviewPath == "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, s.PreviewPath)
}

// handleCalendarPage renders the widget as a full HTML page whose arrows
// and days link back to the /calendar/* action routes.
func (s *Server) handleCalendarPage(w http.ResponseWriter, _ *http.Request) {
	m := s.Model()

	var buf bytes.Buffer
	if err := render.WriteHTML(&buf, m, true, "/calendar"); err != nil {
		appLog.Error("calendar page render failed", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Robots-Tag", "noindex, nofollow")
	_, _ = w.Write(buf.Bytes())
}

// linkAction guards a state-changing GET route. Prefetch requests get 204
// without touching the calendar.
func linkAction(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-Robots-Tag", "noindex, nofollow")
		if isPrefetch(r) {
			appLog.Debug("ignoring prefetch of calendar action", "path", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

// isPrefetch recognises the speculative-load headers sent by browsers.
func isPrefetch(r *http.Request) bool {
	for _, h := range []string{"Sec-Purpose", "Purpose", "X-Purpose", "X-Moz"} {
		v := strings.ToLower(r.Header.Get(h))
		if strings.Contains(v, "prefetch") || strings.Contains(v, "preview") {
			return true
		}
	}
	return false
}

func (s *Server) handleCalendarNav(w http.ResponseWriter, r *http.Request) {
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil {
		http.Error(w, "offset must be an integer", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.cal.GoToMonth(offset)
	s.mu.Unlock()
	http.Redirect(w, r, "/calendar", http.StatusSeeOther)
}

func (s *Server) handleCalendarSelect(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(r.URL.Query().Get("day"))
	if err != nil {
		http.Error(w, "day must be an integer", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.cal.SelectDay(day)
	s.mu.Unlock()
	http.Redirect(w, r, "/calendar", http.StatusSeeOther)
}

func (s *Server) handleCalendarToday(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.cal.ResetToToday()
	s.mu.Unlock()
	http.Redirect(w, r, "/calendar", http.StatusSeeOther)
}

func (s *Server) handleMonth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Model())
}

func (s *Server) handleEventsGet(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	events := s.cal.EventsData()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, events)
}

// handleEventsPut replaces the API layer and echoes what was stored. Feed
// events stay in place.
func (s *Server) handleEventsPut(w http.ResponseWriter, r *http.Request) {
	events, ok := decodeEvents(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	s.posted = model.CloneEvents(events)
	total := s.syncEvents()
	stored := model.CloneEvents(s.posted)
	s.mu.Unlock()

	appLog.Info("api events replaced", "api", len(stored), "total", total)
	writeJSON(w, http.StatusOK, stored)
}

// eventsAppendResponse is the JSON response shape for POST /api/events.
type eventsAppendResponse struct {
	Total int `json:"total"`
	API   int `json:"api"`
}

func (s *Server) handleEventsPost(w http.ResponseWriter, r *http.Request) {
	events, ok := decodeEvents(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	s.posted = append(s.posted, model.CloneEvents(events)...)
	resp := eventsAppendResponse{Total: s.syncEvents(), API: len(s.posted)}
	s.mu.Unlock()

	appLog.Info("api events appended", "added", len(events), "api", resp.API, "total", resp.Total)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPINav(w http.ResponseWriter, r *http.Request) {
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}
	s.mu.Lock()
	s.cal.GoToMonth(offset)
	m := s.cal.Model()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, m)
}

// selectResponse is the JSON response shape for POST /api/select. Events
// holds what DayClicked received; it is empty when the day was ignored.
type selectResponse struct {
	Day      int                  `json:"day"`
	Selected bool                 `json:"selected"`
	Events   []model.Event        `json:"events"`
	Model    calendar.RenderModel `json:"model"`
}

func (s *Server) handleAPISelect(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(r.URL.Query().Get("day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "day must be an integer")
		return
	}

	s.mu.Lock()
	s.lastClicked = nil
	ok := s.cal.SelectDay(day)
	events := s.lastClicked
	m := s.cal.Model()
	s.mu.Unlock()

	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, selectResponse{
		Day:      day,
		Selected: ok,
		Events:   events,
		Model:    m,
	})
}

func (s *Server) handleAPIToday(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.cal.ResetToToday()
	m := s.cal.Model()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, m)
}

// decodeEvents reads a JSON array of events. Malformed entries are kept
// and logged; the calendar skips them when indexing.
func decodeEvents(w http.ResponseWriter, r *http.Request) ([]model.Event, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var events []model.Event
	if err := json.NewDecoder(r.Body).Decode(&events); err != nil {
		writeError(w, http.StatusBadRequest, "body must be a JSON array of events")
		return nil, false
	}
	for _, ev := range events {
		if err := model.Validate(ev); err != nil {
			appLog.Warn("api events: malformed event accepted but not indexed", "err", err)
		}
	}
	return events, true
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
