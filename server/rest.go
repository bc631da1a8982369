package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/umputun/lifestream/pkg/build"
)

var errNotBuilt = errors.New("no build yet")

// sourceStatus is the per-source part of the status response
type sourceStatus struct {
	Name     string `json:"name"`
	Items    int    `json:"items"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

// statusHandler returns server and last build status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	if err := s.snapshots.LastError(); err != nil {
		status["last_error"] = err.Error()
	}

	rep := s.snapshots.Latest()
	if rep == nil {
		status["status"] = "building"
		RenderJSON(w, r, http.StatusOK, status)
		return
	}

	sources := make([]sourceStatus, 0, len(rep.Snapshot.Reports))
	for _, sr := range rep.Snapshot.Reports {
		st := sourceStatus{Name: sr.Name, Items: sr.Items, Duration: sr.Duration.Round(time.Millisecond).String()}
		if sr.Err != nil {
			st.Error = sr.Err.Error()
		}
		sources = append(sources, st)
	}
	status["built_at"] = rep.Data.GeneratedAt.UTC()
	status["items"] = len(rep.Snapshot.Items)
	status["sources"] = sources
	RenderJSON(w, r, http.StatusOK, status)
}

// timelineHandler returns the render data of the latest build
func (s *Server) timelineHandler(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.latest(w, r)
	if !ok {
		return
	}
	RenderJSON(w, r, http.StatusOK, rep.Data)
}

// rebuildHandler runs a build immediately
func (s *Server) rebuildHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.snapshots.RebuildNow(r.Context()); err != nil {
		log.Printf("[WARN] rebuild request failed: %v", err)
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}
	RenderJSON(w, r, http.StatusOK, map[string]string{"status": "rebuilt"})
}

// feedHandler serves a generated feed by its file name
func (s *Server) feedHandler(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.latest(w, r)
	if !ok {
		return
	}
	f, found := rep.Feeds[r.PathValue("name")]
	if !found {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", f.Mime+"; charset=utf-8")
	if _, err := w.Write(f.Body); err != nil {
		log.Printf("[WARN] failed to write feed: %v", err)
	}
}

// pageHandler serves the rendered page
func (s *Server) pageHandler(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.latest(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(rep.Page); err != nil {
		log.Printf("[WARN] failed to write page: %v", err)
	}
}

// latest returns the latest report, or responds with 503 if nothing was built yet
func (s *Server) latest(w http.ResponseWriter, r *http.Request) (*build.Report, bool) {
	rep := s.snapshots.Latest()
	if rep == nil {
		RenderError(w, r, errNotBuilt, http.StatusServiceUnavailable)
		return nil, false
	}
	return rep, true
}
