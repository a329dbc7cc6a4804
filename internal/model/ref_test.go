package model

import (
	"path/filepath"
	"testing"
	"time"
)

func TestNewRef_NilNeverReturnsNil(t *testing.T) {
	ref := NewRef(nil)
	rec := ref.Current()
	if rec == nil {
		t.Fatal("Current returned nil")
	}
	if rec.IsTrained() {
		t.Error("default instance reports trained")
	}
}

func TestRef_SwapReplacesInstance(t *testing.T) {
	ref := NewRef(nil)
	old := ref.Current()

	trained := New()
	trained.Train(separableDataset())
	ref.Swap(trained)

	if ref.Current() == old {
		t.Error("Current still returns the old instance after Swap")
	}
	if !ref.Current().IsTrained() {
		t.Error("swapped-in instance not trained")
	}
}

func TestWatcher_RunOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")

	ref := NewRef(nil)
	w := NewWatcher(ref, path, time.Minute)

	// No artifact yet: nothing happens, not an error.
	loaded, err := w.RunOnce()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded {
		t.Fatal("RunOnce reported a load with no artifact present")
	}

	trained := New()
	trained.Train(separableDataset())
	if err := trained.Save(path); err != nil {
		t.Fatalf("saving: %v", err)
	}

	loaded, err = w.RunOnce()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !loaded {
		t.Fatal("RunOnce did not load the new artifact")
	}
	if !ref.Current().IsTrained() {
		t.Error("ref not swapped to trained instance")
	}

	// Unchanged artifact: no reload.
	loaded, err = w.RunOnce()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded {
		t.Error("RunOnce reloaded an unchanged artifact")
	}
}
