package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cnosuke/sheet-gallery/config"
	"github.com/cnosuke/sheet-gallery/gallery"
	"github.com/cnosuke/sheet-gallery/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startEndpoint(t *testing.T, status int, body string) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server.URL + "/exec"
}

func testConfig(endpoint string) *config.Config {
	cfg := &config.Config{}
	cfg.Gallery.Endpoint = endpoint
	cfg.Gallery.Title = "Test Gallery"
	cfg.Fetch.Timeout = 5
	cfg.Fetch.UserAgent = "test-agent/1.0"
	cfg.Fetch.MaxWorkers = 2
	cfg.Server.Addr = "127.0.0.1:0"
	return cfg
}

func startGallery(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	loader, err := NewLoader(testConfig(startEndpoint(t, status, body)))
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(loader, views.MustParse(), "Test Gallery"))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestGalleryPage_Success(t *testing.T) {
	srv := startGallery(t, http.StatusOK, `[
		{"imageUrl":"https://example.com/1.png","caption":"One","link":"https://example.com/1"},
		{"imageUrl":"https://example.com/2.png"}
	]`)

	resp, body := get(t, srv.URL+"/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "<title>Test Gallery</title>")
	assert.Equal(t, 2, strings.Count(body, `<div class="card `))
	assert.Contains(t, body, `target="_blank" rel="noopener noreferrer"`)
}

func TestGalleryPage_HTTPError(t *testing.T) {
	srv := startGallery(t, http.StatusInternalServerError, `oops`)

	resp, body := get(t, srv.URL+"/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Failed to load images. HTTP error! Status: 500")
	assert.NotContains(t, body, `<div class="card `)
}

func TestGalleryJSON(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		expectedState string
		expectedError string
		expectedCards int
		expectedMsg   string
	}{
		{
			name:          "records",
			status:        http.StatusOK,
			body:          `[{"imageUrl":"https://example.com/1.png"},{"imageUrl":"https://example.com/2.png"}]`,
			expectedState: "success",
			expectedCards: 2,
		},
		{
			name:          "empty",
			status:        http.StatusOK,
			body:          `[]`,
			expectedState: "success",
			expectedMsg:   gallery.EmptyMessage,
		},
		{
			name:          "application error",
			status:        http.StatusOK,
			body:          `{"error":"Sheet not found"}`,
			expectedState: "error",
			expectedError: "Error: Sheet not found",
		},
		{
			name:          "http error",
			status:        http.StatusInternalServerError,
			body:          ``,
			expectedState: "error",
			expectedError: "Failed to load images. HTTP error! Status: 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := startGallery(t, tt.status, tt.body)

			resp, body := get(t, srv.URL+"/gallery.json")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var page struct {
				State     string `json:"state"`
				Container struct {
					Cards   []json.RawMessage `json:"cards"`
					Message string            `json:"message"`
				} `json:"container"`
				Loading struct {
					Visible bool `json:"visible"`
				} `json:"loading"`
				Error struct {
					Visible bool   `json:"visible"`
					Text    string `json:"text"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &page))

			assert.Equal(t, tt.expectedState, page.State)
			assert.False(t, page.Loading.Visible)
			assert.Equal(t, tt.expectedError != "", page.Error.Visible)
			assert.Equal(t, tt.expectedError, page.Error.Text)
			assert.Len(t, page.Container.Cards, tt.expectedCards)
			assert.Equal(t, tt.expectedMsg, page.Container.Message)
		})
	}
}

func TestHealth(t *testing.T) {
	srv := startGallery(t, http.StatusOK, `[]`)

	resp, body := get(t, srv.URL+"/healthz")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, testConfig("http://127.0.0.1:1/exec"), "test")
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
