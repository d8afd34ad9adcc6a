// Package web serves the bridge status over HTTP: an HTML page at "/",
// the JSON document at "/index.json" and the last response frame at "/state".
package web

import (
	"context"
	"io"
	"net/http"

	"github.com/golang/glog"

	"github.com/sweeney/servo-bridge/internal/protocol"
	"github.com/sweeney/servo-bridge/internal/status"
)

// Server is the status HTTP server. Handlers only read the tracker.
type Server struct {
	srv     *http.Server
	tracker *status.Tracker
}

// New builds a Server bound to addr.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.Handle("/", readOnly(s.page))
	mux.Handle("/index.html", readOnly(s.page))
	mux.Handle("/index.json", readOnly(s.json))
	mux.Handle("/state", readOnly(s.state))

	s.srv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Handler exposes the routes, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// ListenAndServe blocks until Shutdown.
func (s *Server) ListenAndServe() error { return s.srv.ListenAndServe() }

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }

// readOnly rejects everything but GET and HEAD.
func readOnly(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	})
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.tracker.Snapshot())
}

func (s *Server) json(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(status.FormatJSON(s.tracker.Snapshot())); err != nil {
		glog.Warningf("web: write /index.json: %v", err)
	}
}

// state answers with the bank state in response-frame form, as a host on
// the serial line would have seen it.
func (s *Server) state(w http.ResponseWriter, _ *http.Request) {
	snap := s.tracker.Snapshot()
	if !snap.HasState {
		http.Error(w, "no state yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.WriteString(w, protocol.Encode(snap.State)+"\n"); err != nil {
		glog.Warningf("web: write /state: %v", err)
	}
}
