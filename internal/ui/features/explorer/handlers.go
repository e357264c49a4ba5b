// Package explorer provides the data explorer page: the species filter, the
// filtered table, the scatter plot and their live updates.
package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/dataexplorer/internal/dashboard"
	"github.com/leapstack-labs/dataexplorer/internal/export"
	"github.com/leapstack-labs/dataexplorer/internal/ui/features/explorer/components"
	"github.com/leapstack-labs/dataexplorer/internal/ui/notifier"
)

// Cookie session name and keys.
const (
	cookieName   = "dataexplorer"
	sessionIDKey = "sid"
	selectionKey = "species"
)

// DefaultTitle is the page title.
const DefaultTitle = "Sample Data Explorer"

// Handlers provides HTTP handlers for the explorer feature.
type Handlers struct {
	registry     *dashboard.Registry
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	logger       *slog.Logger
	isDev        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(registry *dashboard.Registry, sessionStore sessions.Store, notify *notifier.Notifier, logger *slog.Logger, isDev bool) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		registry:     registry,
		sessionStore: sessionStore,
		notifier:     notify,
		logger:       logger,
		isDev:        isDev,
	}
}

// Page renders the full page for the browser's current selection.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	s, cookie := h.session(r)
	if err := h.persist(w, r, cookie, s); err != nil {
		h.logger.Warn("failed to save session cookie", "error", err)
	}

	views, err := s.Views(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := components.PageData{
		Title:        DefaultTitle,
		FilterColumn: h.registry.Bindings().FilterColumn,
		Views:        views,
		IsDev:        h.isDev,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := components.Page(data).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ViewsSSE applies the species signal and patches the derived views.
func (h *Handlers) ViewsSSE(w http.ResponseWriter, r *http.Request) {
	// Signals and the cookie must be handled before the SSE stream starts.
	signals := &components.Signals{}
	readErr := datastar.ReadSignals(r, signals)

	s, cookie := h.session(r)
	if readErr == nil {
		s.Select(signals.Species)
	}
	if err := h.persist(w, r, cookie, s); err != nil {
		h.logger.Warn("failed to save session cookie", "error", err)
	}

	sse := datastar.NewSSE(w, r)
	if readErr != nil {
		_ = sse.ConsoleError(fmt.Errorf("read signals: %w", readErr))
		return
	}

	if err := h.sendViews(r.Context(), sse, s, false); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Updates is the long-lived SSE endpoint. It pushes fresh views whenever the
// dataset is reloaded. Nothing is sent up front; Page renders the initial state.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	s, cookie := h.session(r)
	if err := h.persist(w, r, cookie, s); err != nil {
		h.logger.Warn("failed to save session cookie", "error", err)
	}

	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case gen := <-updates:
			h.logger.Debug("pushing reloaded views", "session", s.ID(), "generation", gen)
			if err := h.sendViews(ctx, sse, s, true); err != nil {
				_ = sse.ConsoleError(err)
				// Keep the stream open for the next reload.
			}
		}
	}
}

// Export downloads the current selection in the format named by the URL.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s, cookie := h.session(r)
	if err := h.persist(w, r, cookie, s); err != nil {
		h.logger.Warn("failed to save session cookie", "error", err)
	}

	filtered, err := s.Filtered(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	bindings := h.registry.Bindings()
	report := export.Report{
		Title:     bindings.Title,
		Selection: s.Selection(),
		Data:      filtered,
		Spec:      bindings.ScatterSpec(),
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(s.Selection())))
	if err := export.Write(r.Context(), w, format, report); err != nil {
		h.logger.Error("export failed", "format", format, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Healthz reports the loaded dataset.
func (h *Handlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	snap := h.registry.Holder().Snapshot()
	body := Health{
		Status:     "ok",
		Generation: snap.Generation,
		Rows:       snap.Data.Len(),
		Sessions:   h.registry.Len(),
		LoadedAt:   snap.LoadedAt.UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write health response", "error", err)
	}
}

// sendViews patches every derived view. withFilter also refreshes the
// dropdown, whose choices can change after a reload.
func (h *Handlers) sendViews(ctx context.Context, sse *datastar.ServerSentEventGenerator, s *dashboard.Session, withFilter bool) error {
	views, err := s.Views(ctx)
	if err != nil {
		return err
	}
	if withFilter {
		control := components.FilterControl(h.registry.Bindings().FilterColumn, views.Choices, views.Selection)
		if err := sse.PatchElementTempl(control); err != nil {
			return err
		}
	}
	for _, c := range components.Views(views) {
		if err := sse.PatchElementTempl(c); err != nil {
			return err
		}
	}
	return nil
}

// session resolves the dashboard session for the request's cookie. A new
// dashboard session restores the selection remembered in the cookie.
func (h *Handlers) session(r *http.Request) (*dashboard.Session, *sessions.Session) {
	cookie, err := h.sessionStore.Get(r, cookieName)
	if err != nil {
		// Get still returns a usable fresh session when the cookie is invalid.
		h.logger.Debug("discarding unreadable session cookie", "error", err)
	}

	id, _ := cookie.Values[sessionIDKey].(string)
	s, created := h.registry.Open(id)
	if created {
		if sel, ok := cookie.Values[selectionKey].(string); ok {
			s.Select(sel)
		}
	}
	return s, cookie
}

// persist writes the session id and selection back to the cookie.
func (h *Handlers) persist(w http.ResponseWriter, r *http.Request, cookie *sessions.Session, s *dashboard.Session) error {
	if cookie == nil {
		return errors.New("no cookie session")
	}
	id, _ := cookie.Values[sessionIDKey].(string)
	sel, _ := cookie.Values[selectionKey].(string)
	if id == s.ID() && sel == s.Selection() && !cookie.IsNew {
		return nil
	}
	cookie.Values[sessionIDKey] = s.ID()
	cookie.Values[selectionKey] = s.Selection()
	return cookie.Save(r, w)
}
