package kernel

import (
	"context"
	"fmt"

	"github.com/automenta/hypernars1-sub000/internal/events"
	"github.com/automenta/hypernars1-sub000/internal/persist"
)

// Snapshot renders the kernel's current state into the spec §6 persistence
// document.
func (k *Kernel) Snapshot() persist.Document {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return persist.BuildDocument(k.Config, k.currentStep, k.Store, k.clock())
}

// Restore replaces the kernel's hypergraph, step counter, and config from
// doc, rebuilding every edge through addHyperedge (spec §6 "restore clears
// state and rebuilds"). The event queue and activation/cycle-guard caches
// are cleared since they describe in-flight work, not persisted state.
func (k *Kernel) Restore(doc persist.Document) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	store, err := persist.Restore(doc, k.Config.BeliefCapacity)
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	k.Store = store
	k.currentStep = doc.CurrentStep
	if doc.Config != nil {
		k.Config = doc.Config
	}
	k.activations = make(map[string]float64)
	k.seenPaths = make(map[string]map[uint64]bool)
	k.Queue = events.New()
	return nil
}

// SaveTo persists the current snapshot under id in a sqlite-backed store.
func (k *Kernel) SaveTo(store *persist.Store, id string) error {
	return store.Save(id, k.Snapshot())
}

// RestoreFrom loads and restores a snapshot previously saved under id.
func (k *Kernel) RestoreFrom(store *persist.Store, id string) error {
	doc, err := store.Load(id)
	if err != nil {
		return err
	}
	return k.Restore(doc)
}

// MirrorTo writes the current snapshot into an optional durable graph
// mirror (spec SPEC_FULL.md DOMAIN STACK).
func (k *Kernel) MirrorTo(ctx context.Context, mirror persist.Mirror) error {
	return mirror.MirrorDocument(ctx, k.Snapshot())
}

// SetSeenTracker attaches store's terms_seen audit log to the memory
// manager's forgetting pass, so a sampled edge is not immediately resampled
// on the next maintenance tick even across a process restart.
func (k *Kernel) SetSeenTracker(store *persist.Store) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.Memory.SetSeenTracker(store)
}
