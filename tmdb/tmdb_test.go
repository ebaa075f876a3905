package tmdb_test

import (
	"context"
	"encoding/json"
	"errors"
	"moviefinder/movie"
	"moviefinder/tmdb"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

func newTestClient(t *testing.T, handler http.HandlerFunc) *tmdb.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return tmdb.NewClient(tmdb.Options{BaseURL: srv.URL + "/3/", APIKey: testAPIKey})
}

func TestSearchMovies(t *testing.T) {
	t.Run("should send query and api key and keep upstream order", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/3/search/movie", r.URL.Path)
			assert.Equal(t, testAPIKey, r.URL.Query().Get("api_key"))
			assert.Equal(t, "The Matrix", r.URL.Query().Get("query"))
			assert.Empty(t, r.URL.Query().Get("year"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"page":1,"results":[{"id":603,"title":"The Matrix"},{"id":604,"title":"The Matrix Reloaded"}],"total_pages":1,"total_results":2}`))
		})

		movies, err := client.SearchMovies(context.Background(), movie.Query{Title: "The Matrix"})

		require.NoError(t, err)
		require.Len(t, movies, 2)
		assert.Equal(t, int64(603), movies[0].ID)
		assert.Equal(t, "The Matrix", movies[0].Title)
		assert.Equal(t, int64(604), movies[1].ID)
	})

	t.Run("should forward year, language and adult flag", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "1984", q.Get("year"))
			assert.Equal(t, "fr-FR", q.Get("language"))
			assert.Equal(t, "true", q.Get("include_adult"))
			_, _ = w.Write([]byte(`{"results":[]}`))
		}))
		defer srv.Close()
		client := tmdb.NewClient(tmdb.Options{
			BaseURL:      srv.URL,
			APIKey:       testAPIKey,
			Language:     "fr-FR",
			IncludeAdult: true,
		})

		movies, err := client.SearchMovies(context.Background(), movie.Query{Title: "Dune", Year: 1984})

		require.NoError(t, err)
		assert.Empty(t, movies)
	})

	t.Run("should treat a body without results as no match", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"page":1}`))
		})

		movies, err := client.SearchMovies(context.Background(), movie.Query{Title: "x"})

		require.NoError(t, err)
		assert.Empty(t, movies)
	})

	t.Run("should return status error with TMDb message", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key: You must be granted a valid key.","success":false}`))
		})

		_, err := client.SearchMovies(context.Background(), movie.Query{Title: "Inception"})

		var statusErr *tmdb.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
		assert.Equal(t, "search", statusErr.Endpoint)
		assert.Equal(t, "Invalid API key: You must be granted a valid key.", statusErr.StatusMessage)
		assert.Contains(t, err.Error(), "bad status 401")
	})

	t.Run("should return status error with raw body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream exploded"))
		})

		_, err := client.SearchMovies(context.Background(), movie.Query{Title: "Inception"})

		var statusErr *tmdb.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, "upstream exploded", statusErr.Body)
		assert.Empty(t, statusErr.StatusMessage)
	})

	t.Run("should fail on malformed body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>not json</html>`))
		})

		_, err := client.SearchMovies(context.Background(), movie.Query{Title: "Inception"})

		assert.ErrorContains(t, err, "decode search response")
	})

	t.Run("should fail when the client times out", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()
		client := tmdb.NewClient(tmdb.Options{BaseURL: srv.URL, APIKey: testAPIKey, Timeout: 50 * time.Millisecond})

		_, err := client.SearchMovies(context.Background(), movie.Query{Title: "Inception"})

		assert.ErrorContains(t, err, "request failed")
	})

	t.Run("should not leak the api key in transport errors", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		client := tmdb.NewClient(tmdb.Options{BaseURL: srv.URL, APIKey: testAPIKey})

		_, err := client.SearchMovies(context.Background(), movie.Query{Title: "Inception"})

		require.Error(t, err)
		assert.NotContains(t, err.Error(), testAPIKey)
		assert.Contains(t, err.Error(), "REDACTED")
	})

	t.Run("should stop when the caller cancels", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"results":[]}`))
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.SearchMovies(ctx, movie.Query{Title: "Inception"})

		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestSimilarMovies(t *testing.T) {
	t.Run("should return similar results verbatim", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/3/movie/27205/similar", r.URL.Path)
			assert.Equal(t, testAPIKey, r.URL.Query().Get("api_key"))
			_, _ = w.Write([]byte(`{"page":1,"results":[{"id":49026,"title":"The Dark Knight Rises","overview":"Following the death of Harvey Dent","popularity":41.2}]}`))
		})

		movies, err := client.SimilarMovies(context.Background(), 27205)

		require.NoError(t, err)
		require.Len(t, movies, 1)
		out, err := json.Marshal(movies)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":49026,"title":"The Dark Knight Rises","overview":"Following the death of Harvey Dent","popularity":41.2}]`, string(out))
	})

	t.Run("should fail when results are missing", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"page":1}`))
		})

		_, err := client.SimilarMovies(context.Background(), 27205)

		assert.ErrorContains(t, err, "no results field")
	})

	t.Run("should return status error on not found id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found."}`))
		})

		_, err := client.SimilarMovies(context.Background(), 1)

		var statusErr *tmdb.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, "similar", statusErr.Endpoint)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	})
}
