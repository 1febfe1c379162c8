package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/opencontainers/go-digest"

	"github.com/signalgarden/melia/internal/listener"
)

// Response to GET /.
const usage = "Try POSTing data to /echo (ex. `curl localhost:8080/echo -XPOST -d \"Hello, World\"`)"

// Request router for one listener profile.
type service struct {
	srv          *Server
	allowControl bool
}

// Returns the HTTP handler for listeners with profile p.
//
// Every listener with the same profile behaves identically. The control API
// is only routed when p allows it.
func (s *Server) Handler(p listener.Profile) http.Handler {
	return &service{srv: s, allowControl: p.AllowControl()}
}

// Routes a request to the matching handler.
func (svc *service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	slog.Debug("request received", "method", r.Method, "path", r.URL.Path, "proto", r.Proto)

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		svc.handleUsage(w)
	case r.Method == http.MethodPost && r.URL.Path == "/echo":
		svc.handleEcho(w, r)
	case r.URL.Path == "/api" && svc.allowControl:
		svc.handleAPI(w, r)
	default:
		http.NotFound(w, r)
	}
}

// Handles GET /.
func (svc *service) handleUsage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, usage)
}

// Handles POST /echo.
//
// The body is copied back as it arrives. Full duplex lets HTTP/1.1 clients
// keep sending while the response is already streaming; HTTP/2 always works
// that way, so the error from EnableFullDuplex is irrelevant.
func (svc *service) handleEcho(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	_ = rc.EnableFullDuplex()

	if ct := r.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(flushWriter{w: w, rc: rc}, r.Body); err != nil && !errors.Is(err, io.EOF) {
		slog.Debug("echo interrupted", "error", err)
	}
}

// Flushes after every write so echoed data is not held back by buffering.
type flushWriter struct {
	w  io.Writer
	rc *http.ResponseController
}

func (f flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if err != nil {
		return n, err
	}
	if err := f.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return n, err
	}
	return n, nil
}

// Handles /api. Only GET /api?config exists.
//
// The configuration is serialized under the read lock; the lock is released
// before anything is written to the client.
func (svc *service) handleAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || r.URL.RawQuery != "config" {
		http.NotFound(w, r)
		return
	}

	body, err := svc.srv.shared.MarshalJSON()
	if err != nil {
		slog.Error("failed to serialize configuration", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	etag := strconv.Quote(digest.FromBytes(body).String())
	h := w.Header()
	h.Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	h.Set("Content-Type", "application/json")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
