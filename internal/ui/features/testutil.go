// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dataexplorer/internal/dashboard"
	"github.com/leapstack-labs/dataexplorer/internal/dataset"
	"github.com/leapstack-labs/dataexplorer/internal/loader"
	"github.com/leapstack-labs/dataexplorer/internal/testutil"
	"github.com/leapstack-labs/dataexplorer/internal/ui/notifier"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Registry     *dashboard.Registry
	Holder       *dashboard.Holder
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	// DataPath is a private copy of the sample CSV that tests may rewrite
	// before calling Holder.Reload.
	DataPath string
}

// SetupTestFixture loads a copy of the sample dataset through the loader and
// wires a registry around it with the default bindings.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	path := testutil.CopySample(t, t.TempDir())
	bindings := dashboard.DefaultBindings()

	l := loader.New(loader.Options{Logger: logger, Required: bindings.Required()})
	src := loader.LocalSource(path)
	load := func(ctx context.Context) (*dataset.Dataset, error) {
		d, _, err := l.Load(ctx, src)
		return d, err
	}

	d, err := load(context.Background())
	require.NoError(t, err)
	require.NoError(t, bindings.Validate(d))

	holder := dashboard.NewHolder(d, load, bindings.Validate, logger)
	return &TestFixture{
		Registry:     dashboard.NewRegistry(holder, bindings, time.Minute, logger),
		Holder:       holder,
		Notifier:     notifier.New(),
		SessionStore: NewTestSessionStore(),
		DataPath:     path,
	}
}

// WriteData replaces the fixture's CSV file.
func (f *TestFixture) WriteData(t *testing.T, csv string) {
	t.Helper()
	require.NoError(t, os.WriteFile(f.DataPath, []byte(csv), 0o600))
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
