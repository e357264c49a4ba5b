package ui

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dataexplorer/internal/testutil"
	"github.com/leapstack-labs/dataexplorer/internal/ui/features"
	"github.com/leapstack-labs/dataexplorer/internal/ui/features/explorer"
)

func newTestServer(t *testing.T, fixture *features.TestFixture) *Server {
	t.Helper()
	return NewServer(Config{
		Registry:      fixture.Registry,
		Watch:         true,
		WatchPath:     fixture.DataPath,
		SessionSecret: "test-secret-key-32-bytes-long!!",
		Logger:        testutil.NewTestLogger(t),
	})
}

func TestServer_Routes(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	handler, err := newTestServer(t, fixture).Handler()
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{path: "/", wantStatus: http.StatusOK, wantBody: "Sample Data Explorer"},
		{path: "/healthz", wantStatus: http.StatusOK, wantBody: `"rows":150`},
		{path: "/export/csv", wantStatus: http.StatusOK, wantBody: "sepal_length"},
		{path: "/export/pdf", wantStatus: http.StatusNotFound},
		{path: "/static/app.css", wantStatus: http.StatusOK, wantBody: "--accent"},
		{path: "/missing", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			if tt.wantBody != "" {
				assert.Contains(t, string(body), tt.wantBody)
			}
		})
	}
}

func TestServer_ReloadBroadcastsGeneration(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	s := newTestServer(t, fixture)

	updates := s.Notifier().Subscribe()
	defer s.Notifier().Unsubscribe(updates)

	require.NoError(t, s.Reload(context.Background()))
	select {
	case gen := <-updates:
		assert.Equal(t, uint64(2), gen)
	case <-time.After(time.Second):
		t.Fatal("no broadcast after reload")
	}
}

func TestServer_ReloadFailureKeepsData(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	s := newTestServer(t, fixture)

	require.NoError(t, os.Remove(fixture.DataPath))
	assert.Error(t, s.Reload(context.Background()))
	assert.Equal(t, uint64(1), fixture.Holder.Snapshot().Generation)
	assert.Equal(t, 150, fixture.Holder.Snapshot().Data.Len())
}

func TestServer_WatchReloadsOnWrite(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	s := newTestServer(t, fixture)

	updates := s.Notifier().Subscribe()
	defer s.Notifier().Unsubscribe(updates)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.watchFile(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	fixture.WriteData(t, "sepal_length,sepal_width,petal_length,petal_width,species\n5.1,3.5,1.4,0.2,setosa\n")

	select {
	case gen := <-updates:
		assert.GreaterOrEqual(t, gen, uint64(2))
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not reload the dataset")
	}
	assert.Equal(t, 1, fixture.Holder.Snapshot().Data.Len())
}

func TestServer_HealthzJSON(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	handler, err := newTestServer(t, fixture).Handler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var got explorer.Health
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, 0, got.Sessions)
}
