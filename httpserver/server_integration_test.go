package httpserver_test

import (
	"moviefinder/httpserver"
	"moviefinder/movie"
	"moviefinder/tmdb"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeTMDb serves canned bodies for /search/movie and /movie/{id}/similar
// and records every request it gets.
type fakeTMDb struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*http.Request

	searchStatus  int
	searchBody    string
	similarStatus int
	similarBody   string
	delay         time.Duration
}

func MustCreateFakeTMDb(t testing.TB) *fakeTMDb {
	t.Helper()

	f := &fakeTMDb{
		searchStatus:  http.StatusOK,
		searchBody:    `{"page":1,"results":[],"total_pages":0,"total_results":0}`,
		similarStatus: http.StatusOK,
		similarBody:   `{"page":1,"results":[],"total_pages":0,"total_results":0}`,
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeTMDb) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Clone(r.Context()))
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/search/movie":
		w.WriteHeader(f.searchStatus)
		_, _ = w.Write([]byte(f.searchBody))
	case strings.HasPrefix(r.URL.Path, "/movie/") && strings.HasSuffix(r.URL.Path, "/similar"):
		w.WriteHeader(f.similarStatus)
		_, _ = w.Write([]byte(f.similarBody))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found."}`))
	}
}

func (f *fakeTMDb) Requests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...)
}

func (f *fakeTMDb) Count(path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.URL.Path == path {
			n++
		}
	}
	return n
}

// MustCreateServer wires the real usecase and TMDb client against upstream.
func MustCreateServer(t testing.TB, upstream *fakeTMDb, timeout time.Duration) *httpserver.Server {
	t.Helper()

	client := tmdb.NewClient(tmdb.Options{
		BaseURL: upstream.URL,
		APIKey:  "test-api-key",
		Timeout: timeout,
	})

	server := httpserver.Default(testConfig())
	server.MovieService = movie.NewUsecase(client)
	return server
}
