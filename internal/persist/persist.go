// Package persist implements the kernel's snapshot persistence format
// (spec §6 "Persistence format") plus an optional durable graph mirror.
// Restoring reasoning state always flows back through the term store's
// AddHyperedge, never by reading the mirror directly (spec §6).
package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/automenta/hypernars1-sub000/internal/budget"
	"github.com/automenta/hypernars1-sub000/internal/config"
	"github.com/automenta/hypernars1-sub000/internal/term"
	"github.com/automenta/hypernars1-sub000/internal/truth"
)

// SnapshotVersion is the current persistence format version (spec §6).
const SnapshotVersion = 1

// BeliefSnapshot is one belief's persisted fields.
type BeliefSnapshot struct {
	Truth     truth.Value   `json:"truth"`
	Budget    budget.Value  `json:"budget"`
	Premises  []string      `json:"premises"`
	DerivedBy string        `json:"derivedBy"`
	Context   string        `json:"context"`
	Timestamp int64         `json:"timestamp"`
}

// EdgeSnapshot is one hyperedge's persisted fields.
type EdgeSnapshot struct {
	ID      string           `json:"id"`
	Type    string           `json:"type"`
	Args    []string         `json:"args"`
	Beliefs []BeliefSnapshot `json:"beliefs"`
}

// Document is the full snapshot document spec §6 defines.
type Document struct {
	Version     int            `json:"version"`
	Timestamp   int64          `json:"timestamp"`
	Config      *config.Config `json:"config"`
	CurrentStep int            `json:"currentStep"`
	Hypergraph  []EdgeSnapshot `json:"hypergraph"`
}

// BuildDocument renders a store's current state into a snapshot document.
func BuildDocument(cfg *config.Config, currentStep int, s *term.Store, nowNS int64) Document {
	ids := s.IDs()
	doc := Document{
		Version:     SnapshotVersion,
		Timestamp:   nowNS,
		Config:      cfg,
		CurrentStep: currentStep,
		Hypergraph:  make([]EdgeSnapshot, 0, len(ids)),
	}
	for _, id := range ids {
		edge, ok := s.Get(id)
		if !ok {
			continue
		}
		es := EdgeSnapshot{ID: edge.ID, Type: edge.Type, Args: edge.Args}
		for _, b := range edge.Beliefs {
			es.Beliefs = append(es.Beliefs, BeliefSnapshot{
				Truth: b.Truth, Budget: b.Budget, Premises: b.Premises,
				DerivedBy: b.DerivedBy, Context: b.Context, Timestamp: b.Timestamp,
			})
		}
		doc.Hypergraph = append(doc.Hypergraph, es)
	}
	return doc
}

// Restore rebuilds a store from a snapshot document by replaying every
// belief through AddHyperedge, validating the version first (spec §6
// "Loading validates version and rebuilds state via addHyperedge").
func Restore(doc Document, beliefCapacity int) (*term.Store, error) {
	if doc.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d: %w", doc.Version, errUnsupportedVersion)
	}
	s := term.NewStore(beliefCapacity)
	for _, es := range doc.Hypergraph {
		for _, b := range es.Beliefs {
			t := b.Truth
			bv := b.Budget
			s.AddHyperedge(es.Type, es.Args, term.AddOptions{
				Truth: &t, Budget: &bv, Premises: b.Premises,
				DerivedBy: b.DerivedBy, Context: b.Context, Timestamp: b.Timestamp,
			})
		}
	}
	return s, nil
}

var errUnsupportedVersion = fmt.Errorf("corrupt state")

// Store is a sqlite-backed blob store for opaque snapshot documents,
// plus a `termsSeen` audit log the memory manager's forgetting sampler
// consults to avoid re-sampling the same edge on back-to-back passes
// (grounded on the teacher's internal/storage/sqlite.go connection setup).
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if necessary) a sqlite snapshot store at path.
func NewStore(path string) (*Store, error) {
	dsn := path + "?_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite snapshot store: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite snapshot store: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			blob TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS terms_seen (
			id TEXT PRIMARY KEY,
			last_seen INTEGER NOT NULL
		);
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize snapshot schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists doc under id, overwriting any prior snapshot with that ID.
func (s *Store) Save(id string, doc Document) error {
	blob, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO snapshots (id, blob, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET blob = excluded.blob, created_at = excluded.created_at
	`, id, string(blob), doc.Timestamp)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load retrieves the snapshot stored under id.
func (s *Store) Load(id string) (Document, error) {
	var blob string
	err := s.db.QueryRow(`SELECT blob FROM snapshots WHERE id = ?`, id).Scan(&blob)
	if err == sql.ErrNoRows {
		return Document{}, fmt.Errorf("snapshot %q not found: %w", id, errUnsupportedVersion)
	}
	if err != nil {
		return Document{}, fmt.Errorf("load snapshot: %w", err)
	}
	var doc Document
	if err := json.Unmarshal([]byte(blob), &doc); err != nil {
		return Document{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return doc, nil
}

// MarkSeen records that id was just sampled by the forgetting pass.
func (s *Store) MarkSeen(id string, nowNS int64) error {
	_, err := s.db.Exec(`
		INSERT INTO terms_seen (id, last_seen) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET last_seen = excluded.last_seen
	`, id, nowNS)
	if err != nil {
		return fmt.Errorf("mark term seen: %w", err)
	}
	return nil
}

// RecentlySeen reports whether id was sampled within the last withinNS
// nanoseconds, letting the forgetting pass skip an edge it just sampled.
func (s *Store) RecentlySeen(id string, nowNS, withinNS int64) (bool, error) {
	var lastSeen int64
	err := s.db.QueryRow(`SELECT last_seen FROM terms_seen WHERE id = ?`, id).Scan(&lastSeen)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check term seen: %w", err)
	}
	return nowNS-lastSeen < withinNS, nil
}

// Mirror is an optional durable graph mirror written by Kernel.MirrorTo: nodes
// are edges, relationships are premises (spec SPEC_FULL.md DOMAIN STACK).
// It is write-only from the kernel's perspective — restore never reads
// from it.
type Mirror interface {
	MirrorDocument(ctx context.Context, doc Document) error
	Close(ctx context.Context) error
}
