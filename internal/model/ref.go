package model

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"time"
)

// Ref holds the process-wide model instance behind an atomic pointer.
// Request handlers read through Ref while the watcher (or an administrative
// retrain) swaps in a replacement; readers always observe a consistent
// instance and never a half-reloaded one.
type Ref struct {
	p atomic.Pointer[Recommender]
}

// NewRef returns a Ref holding rec. A nil rec is replaced with an untrained
// Recommender so Current never returns nil.
func NewRef(rec *Recommender) *Ref {
	if rec == nil {
		rec = New()
	}
	r := &Ref{}
	r.p.Store(rec)
	return r
}

// Current returns the model instance for this point in time. Callers take
// one snapshot per request so trained-state checks and predictions observe
// the same instance.
func (r *Ref) Current() *Recommender {
	return r.p.Load()
}

// Swap atomically replaces the held instance.
func (r *Ref) Swap(rec *Recommender) {
	r.p.Store(rec)
}

// Watcher polls the model artifact path and hot-swaps a freshly loaded
// instance into the Ref whenever the artifact changes on disk. Retraining
// stays an out-of-band operation: the serving path never writes the model.
type Watcher struct {
	ref    *Ref
	path   string
	poll   time.Duration
	logger *slog.Logger

	lastMod time.Time
}

// NewWatcher creates a Watcher for the artifact at path.
// If pollInterval is <= 0, it defaults to 30s.
func NewWatcher(ref *Ref, path string, pollInterval time.Duration) *Watcher {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &Watcher{
		ref:    ref,
		path:   path,
		poll:   pollInterval,
		logger: slog.Default(),
	}
}

// Run polls for artifact changes until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		if _, err := w.RunOnce(); err != nil {
			w.logger.Error("model reload failed", "path", w.path, "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.poll):
		}
	}
}

// RunOnce checks the artifact once and reloads it if it changed since the
// last check. Returns true if a new instance was swapped in. A missing
// artifact is not an error: the current instance stays in place.
func (w *Watcher) RunOnce() (bool, error) {
	fi, err := os.Stat(w.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !fi.ModTime().After(w.lastMod) {
		return false, nil
	}

	rec := New()
	if err := rec.Load(w.path); err != nil {
		return false, err
	}

	w.ref.Swap(rec)
	w.lastMod = fi.ModTime()
	w.logger.Info("model reloaded", "path", w.path, "trained", rec.IsTrained())
	return true, nil
}
