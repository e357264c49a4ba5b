// Package dashboard wires the species selection to the filtered view and the
// markup derived from it, one Session per browser, all sharing the current
// Dataset through a Holder.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leapstack-labs/dataexplorer/internal/dataset"
)

// LoadFunc produces a fresh dataset, typically by calling the loader.
type LoadFunc func(ctx context.Context) (*dataset.Dataset, error)

// Snapshot is one loaded dataset and its generation number.
type Snapshot struct {
	Data       *dataset.Dataset
	Generation uint64
	LoadedAt   time.Time
}

// Holder publishes the current dataset. Readers get an immutable Snapshot;
// Reload swaps in a new one atomically and bumps the generation.
type Holder struct {
	current atomic.Pointer[Snapshot]
	load    LoadFunc
	check   func(*dataset.Dataset) error
	logger  *slog.Logger

	reloadMu sync.Mutex
}

// NewHolder publishes d as generation 1. load is used by Reload and may be nil
// when reloading is not needed. check, if set, validates reloaded data.
func NewHolder(d *dataset.Dataset, load LoadFunc, check func(*dataset.Dataset) error, logger *slog.Logger) *Holder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Holder{load: load, check: check, logger: logger}
	h.current.Store(&Snapshot{Data: d, Generation: 1, LoadedAt: time.Now()})
	return h
}

// Snapshot returns the current dataset and generation.
func (h *Holder) Snapshot() *Snapshot {
	return h.current.Load()
}

// Reload loads the dataset again and publishes it. On failure the previous
// snapshot stays current and the error is returned.
func (h *Holder) Reload(ctx context.Context) (*Snapshot, error) {
	if h.load == nil {
		return h.Snapshot(), fmt.Errorf("reload: no load function configured")
	}

	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()

	d, err := h.load(ctx)
	if err != nil {
		h.logger.Error("reload failed, keeping previous dataset", "error", err)
		return h.Snapshot(), fmt.Errorf("reload: %w", err)
	}
	if h.check != nil {
		if err := h.check(d); err != nil {
			h.logger.Error("reloaded dataset rejected, keeping previous dataset", "error", err)
			return h.Snapshot(), fmt.Errorf("reload: %w", err)
		}
	}

	prev := h.Snapshot()
	next := &Snapshot{Data: d, Generation: prev.Generation + 1, LoadedAt: time.Now()}
	h.current.Store(next)
	h.logger.Info("dataset reloaded", "generation", next.Generation, "rows", d.Len())
	return next, nil
}
