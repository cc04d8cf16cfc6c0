// Package server exposes a loaded handler over HTTP so it can be exercised with
// ordinary HTTP clients.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fnmock/fnmock"
)

// StatePath is the route that reports (GET) or clears (DELETE) the handler's storage
// and counters.
const StatePath = "/_fnmock/state"

// ErrNoHandler is returned by New when Config.Handler is nil.
var ErrNoHandler = errors.New("handler cannot be nil")

// Handler is the part of *fnmock.Instance the server drives.
type Handler interface {
	Call(req fnmock.Request, resp *fnmock.Response) (*fnmock.Result, error)
	Snapshot() fnmock.Snapshot
	ResetState()
}

// Config configures a Server.
type Config struct {
	// Handler receives every request outside StatePath.
	Handler Handler

	// Logger records requests. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Server translates HTTP requests into handler invocations.
type Server struct {
	handler Handler
	log     *zap.Logger
	router  *mux.Router
}

// New creates a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Handler == nil {
		return nil, ErrNoHandler
	}

	s := &Server{handler: cfg.Handler, log: cfg.Logger}
	if s.log == nil {
		s.log = zap.NewNop()
	}

	router := mux.NewRouter()
	router.HandleFunc(StatePath, s.serveState).Methods("GET")
	router.HandleFunc(StatePath, s.resetState).Methods("DELETE")
	router.PathPrefix("/").HandlerFunc(s.serveHandler)
	s.router = router

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) serveState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.handler.Snapshot())
}

func (s *Server) resetState(w http.ResponseWriter, _ *http.Request) {
	s.handler.ResetState()
	s.log.Debug("state reset")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serveHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "unable to read request body", http.StatusBadRequest)
		return
	}

	req := Translate(r, body)
	resp := &fnmock.Response{Status: http.StatusOK, Headers: map[string]string{}}

	res, err := s.handler.Call(req, resp)
	if err != nil {
		s.log.Warn("handler failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := res.Status
	if status == 0 {
		status = resp.Status
	}
	s.log.Debug("handled request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	)

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}

	switch b := res.Body.(type) {
	case nil:
		w.WriteHeader(status)
	case string:
		w.WriteHeader(status)
		_, _ = io.WriteString(w, b)
	default:
		writeJSON(w, status, b)
	}
}

// Translate builds the handler request for r: method, path, params, headers and the
// raw body.
func Translate(r *http.Request, body []byte) fnmock.Request {
	params := make(map[string]any)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	headers := make(map[string]any)
	for k, v := range r.Header {
		if len(v) > 0 {
			headers[strings.ToLower(k)] = v[0]
		}
	}

	return fnmock.Request{
		"method":  r.Method,
		"path":    r.URL.Path,
		"uri":     r.URL.RequestURI(),
		"params":  params,
		"headers": headers,
		"body":    string(body),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
