package httpserver_test

import (
	"encoding/json"
	"moviefinder/pkg/config"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{Port: 3000, AllowOrigins: "*"}
	cfg.TMDB.APIKey = "test-api-key"
	return cfg
}

type errorBody struct {
	Error string `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body should be a JSON error: %s", rec.Body.String())
	return body
}
