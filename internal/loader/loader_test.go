package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dataexplorer/internal/dataset"
	"github.com/leapstack-labs/dataexplorer/internal/testutil"
)

const remoteCSV = `sepal_length,sepal_width,petal_length,petal_width,species
6.1,2.8,4.7,1.2,versicolor
5.0,3.3,1.4,0.2,setosa
`

var irisColumns = []string{"species", "sepal_length", "petal_length", "petal_width"}

func samplePath() string {
	return filepath.Join("..", "..", "data", "sample.csv")
}

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	return New(Options{
		Logger:   testutil.NewTestLogger(t),
		Required: irisColumns,
	})
}

func readSample(t *testing.T) *dataset.Dataset {
	t.Helper()
	f, err := os.Open(samplePath())
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	d, err := dataset.ReadCSV(f)
	require.NoError(t, err)
	return d
}

func TestNewSource(t *testing.T) {
	local := NewSource("", "data/sample.csv", time.Second)
	assert.Equal(t, KindLocal, local.Kind)
	assert.Equal(t, "data/sample.csv", local.Local.Path)

	remote := NewSource("https://example.test/iris.csv", "data/sample.csv", 3*time.Second)
	assert.Equal(t, KindRemote, remote.Kind)
	assert.Equal(t, "https://example.test/iris.csv", remote.Remote.URL)
	assert.Equal(t, 3*time.Second, remote.Remote.Timeout)
	assert.Equal(t, "data/sample.csv", remote.Local.Path)
}

func TestLoad_Local(t *testing.T) {
	l := newTestLoader(t)

	d, origin, err := l.Load(context.Background(), LocalSource(samplePath()))
	require.NoError(t, err)
	assert.Equal(t, OriginLocal, origin)
	assert.Equal(t, 150, d.Len())
}

func TestLoad_RemoteSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(remoteCSV))
	}))
	defer srv.Close()

	l := newTestLoader(t)
	d, origin, err := l.Load(context.Background(), RemoteSource(srv.URL, time.Second, samplePath()))
	require.NoError(t, err)

	assert.Equal(t, OriginRemote, origin)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, []string{"6.1", "2.8", "4.7", "1.2", "versicolor"}, d.Records()[0])
}

func TestLoad_RemoteFailureFallsBack(t *testing.T) {
	sample := readSample(t)

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.NotFound(w, nil)
			},
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
		},
		{
			name: "payload without required columns",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html><body>login</body></html>"))
			},
		},
		{
			name: "ragged payload",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("species,sepal_length\nsetosa\n"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			l := newTestLoader(t)
			d, origin, err := l.Load(context.Background(), RemoteSource(srv.URL, time.Second, samplePath()))
			require.NoError(t, err)

			assert.Equal(t, OriginLocal, origin)
			assert.True(t, dataset.Equal(sample, d), "fallback should return the local sample unchanged")
		})
	}
}

func TestLoad_OversizedPayloadFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(remoteCSV))
	}))
	defer srv.Close()

	tests := []struct {
		name       string
		limit      int64
		wantOrigin Origin
		wantRows   int
	}{
		{name: "one byte over", limit: int64(len(remoteCSV)) - 1, wantOrigin: OriginLocal, wantRows: 150},
		{name: "exactly at limit", limit: int64(len(remoteCSV)), wantOrigin: OriginRemote, wantRows: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(Options{
				Logger:          testutil.NewTestLogger(t),
				Required:        irisColumns,
				MaxPayloadBytes: tt.limit,
			})
			d, origin, err := l.Load(context.Background(), RemoteSource(srv.URL, time.Second, samplePath()))
			require.NoError(t, err)
			assert.Equal(t, tt.wantOrigin, origin)
			assert.Equal(t, tt.wantRows, d.Len())
		})
	}
}

func TestLoad_RemoteTimeoutFallsBack(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	l := newTestLoader(t)
	start := time.Now()
	d, origin, err := l.Load(context.Background(), RemoteSource(srv.URL, 50*time.Millisecond, samplePath()))
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, OriginLocal, origin)
	assert.Equal(t, 150, d.Len())
}

func TestLoad_UnreachableRemoteFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	l := newTestLoader(t)
	d, origin, err := l.Load(context.Background(), RemoteSource(url, time.Second, samplePath()))
	require.NoError(t, err)
	assert.Equal(t, OriginLocal, origin)
	assert.Equal(t, 150, d.Len())
}

func TestLoad_LocalFailures(t *testing.T) {
	dir := t.TempDir()
	malformed := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(malformed, []byte("a,b\n1,2\n3\n"), 0o600))
	noSpecies := filepath.Join(dir, "nospecies.csv")
	require.NoError(t, os.WriteFile(noSpecies, []byte("a,b\n1,2\n"), 0o600))

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.csv"), wantErr: ErrLocalFileMissing},
		{name: "no path", path: "", wantErr: ErrLocalFileMissing},
		{name: "malformed file", path: malformed, wantErr: ErrParseFailure},
		{name: "missing required column", path: noSpecies, wantErr: ErrParseFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLoader(t)
			d, _, err := l.Load(context.Background(), LocalSource(tt.path))
			require.Error(t, err)
			assert.Nil(t, d)
			assert.ErrorIs(t, err, ErrDataUnavailable)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_RemoteAndLocalFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	l := newTestLoader(t)
	_, _, err := l.Load(context.Background(), RemoteSource(srv.URL, time.Second, filepath.Join(t.TempDir(), "gone.csv")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.ErrorIs(t, err, ErrLocalFileMissing)
	assert.NotErrorIs(t, err, ErrRemoteFetchFailed)
}
