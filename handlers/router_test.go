package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mindmap-share/config"
	"mindmap-share/stores"
	"mindmap-share/stores/memory"
	"mindmap-share/token"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, publicURL string) *httptest.Server {
	t.Helper()
	return newTestServerWithLimit(t, publicURL, 5000000)
}

func newTestServerWithLimit(t *testing.T, publicURL string, maxBodyBytes int64) *httptest.Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s := stores.NewDocumentStore(memory.NewRecordStore(), token.UUID{}, logger)
	require.NoError(t, s.Init(context.Background()))

	cfg := &config.Config{
		Server: config.ServerConfig{PublicURL: publicURL, MaxBodyBytes: maxBodyBytes},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"https://*", "http://*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300 * time.Second,
		},
	}
	srv := httptest.NewServer(NewRouter(s, cfg, logger))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_ShareAndView(t *testing.T) {
	srv := newTestServer(t, "")

	resp, err := http.Post(srv.URL+"/api/share", "application/json", strings.NewReader(`{"name":"Root","children":[]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var share struct {
		Token string `json:"token"`
		URL   string `json:"url"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&share))
	assert.Equal(t, srv.URL+"/view/"+share.Token, share.URL)

	view, err := http.Get(share.URL)
	require.NoError(t, err)
	defer view.Body.Close()
	assert.Equal(t, http.StatusOK, view.StatusCode)
	page, err := io.ReadAll(view.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), `"Root"`)

	raw, err := http.Get(srv.URL + "/api/share/" + share.Token)
	require.NoError(t, err)
	defer raw.Body.Close()
	data, err := io.ReadAll(raw.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Root","children":[]}`, string(data))
}

func TestRouter_PublicURL(t *testing.T) {
	srv := newTestServer(t, "https://maps.example.org")

	resp, err := http.Post(srv.URL+"/api/share", "application/json", strings.NewReader(`[1]`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var share struct {
		Token string `json:"token"`
		URL   string `json:"url"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&share))
	assert.Equal(t, "https://maps.example.org/view/"+share.Token, share.URL)
}

func TestRouter_Routes(t *testing.T) {
	srv := newTestServer(t, "")

	tests := []struct {
		path        string
		status      int
		contentType string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/healthz", http.StatusOK, "application/json"},
		{"/manifest.json", http.StatusOK, "application/manifest+json"},
		{"/sw.js", http.StatusOK, "application/javascript"},
		{"/favicon.ico", http.StatusOK, "image/svg+xml"},
		{"/static/js/app.js", http.StatusOK, "javascript"},
		{"/static/css/style.css", http.StatusOK, "text/css"},
		{"/static/missing.js", http.StatusNotFound, ""},
		{"/view/nonexistent-token", http.StatusNotFound, "text/plain"},
		{"/api/share/nonexistent-token", http.StatusNotFound, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.contentType != "" {
				assert.Contains(t, resp.Header.Get("Content-Type"), tt.contentType)
			}
		})
	}
}

func TestRouter_Healthz(t *testing.T) {
	srv := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestRouter_EmptyShareRejected(t *testing.T) {
	srv := newTestServer(t, "")

	resp, err := http.Post(srv.URL+"/api/share", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_BatchGet(t *testing.T) {
	srv := newTestServer(t, "")

	resp, err := http.Post(srv.URL+"/api/share/batch-get", "application/json", strings.NewReader(`{"tokens":["nonexistent-token"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Found   []json.RawMessage `json:"found"`
		Missing []string          `json:"missing"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Empty(t, out.Found)
	assert.Equal(t, []string{"nonexistent-token"}, out.Missing)
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv := newTestServer(t, "")

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/share", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_BatchGetBodyLimit(t *testing.T) {
	srv := newTestServerWithLimit(t, "", 1024)

	body := `{"tokens":["nonexistent-token"],"pad":"` + strings.Repeat("x", 4096) + `"}`
	resp, err := http.Post(srv.URL+"/api/share/batch-get", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestRouter_DeeplyNestedShareRejected(t *testing.T) {
	srv := newTestServer(t, "")

	body := strings.Repeat("[", 2000000) + strings.Repeat("]", 2000000)
	resp, err := http.Post(srv.URL+"/api/share", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestRouter_IgnoresForwardedProtoByDefault(t *testing.T) {
	srv := newTestServer(t, "")

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/share", strings.NewReader(`[1]`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-Proto", "https")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var share struct {
		Token string `json:"token"`
		URL   string `json:"url"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&share))
	assert.Equal(t, srv.URL+"/view/"+share.Token, share.URL)
}
