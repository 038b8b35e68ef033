// Package fakeapi is an in-process stand-in for the account service used by
// package tests. Each path answers with a programmed status and body and
// every request is recorded.
package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Request is one recorded call.
type Request struct {
	Method        string
	Path          string
	Authorization string
	Body          map[string]any
}

// String returns a body field as text ("" when absent).
func (r Request) String(field string) string {
	s, _ := r.Body[field].(string)
	return s
}

type reply struct {
	status int
	body   string
}

// Server is a fake account API.
type Server struct {
	*httptest.Server

	lock     sync.Mutex
	replies  map[string]reply
	requests []Request
}

// New starts a Server that is closed when the test ends. Unprogrammed paths
// answer 404 with a DRF style detail body.
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{replies: make(map[string]reply)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API base the client should be configured with.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// Respond programs the reply for path (relative to the API base).
func (s *Server) Respond(path string, status int, body string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.replies["/api"+path] = reply{status: status, body: body}
}

// Requests returns the recorded calls to path (relative to the API base).
func (s *Server) Requests(path string) []Request {
	s.lock.Lock()
	defer s.lock.Unlock()
	var out []Request
	for _, r := range s.requests {
		if r.Path == "/api"+path {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of calls to path.
func (s *Server) Count(path string) int {
	return len(s.Requests(path))
}

// Total returns the number of calls to any path.
func (s *Server) Total() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.requests)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	rec := Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
	}
	if raw, err := io.ReadAll(r.Body); err == nil && len(raw) > 0 {
		_ = json.Unmarshal(raw, &rec.Body)
	}

	s.lock.Lock()
	s.requests = append(s.requests, rec)
	rep, ok := s.replies[r.URL.Path]
	s.lock.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not found."}`))
		return
	}
	w.WriteHeader(rep.status)
	_, _ = w.Write([]byte(rep.body))
}
