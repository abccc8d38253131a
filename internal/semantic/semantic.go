// Package semantic provides an optional fuzzy-recall index over term
// content strings, used to widen candidate matching beyond exact
// structural/argument lookups. The kernel's Query falls back to it when no
// exact match is found; the derivation rules do not consult it.
package semantic

import (
	"context"
	"fmt"
	"hash/fnv"

	chromem "github.com/philippgille/chromem-go"
)

const embeddingDims = 32

// embed turns a term string into a small deterministic vector by hashing
// overlapping trigrams into buckets. It replaces the teacher's external
// embedding model (unavailable here, and unnecessary for exact-vocabulary
// term content) with a cheap structural fingerprint that still clusters
// lexically similar atoms together for cosine search.
func embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, embeddingDims)
	runes := []rune(text)
	if len(runes) < 3 {
		runes = append(runes, make([]rune, 3-len(runes))...)
	}
	for i := 0; i+2 < len(runes); i++ {
		h := fnv.New32a()
		_, _ = h.Write([]byte(string(runes[i : i+3])))
		vec[int(h.Sum32())%embeddingDims]++
	}
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec, nil
	}
	inv := float32(1) / sqrtf32(norm)
	for i := range vec {
		vec[i] *= inv
	}
	return vec, nil
}

func sqrtf32(x float32) float32 {
	// Newton's method avoids pulling in math.Sqrt for a single float32 call
	// site; good enough precision for a similarity fingerprint.
	z := x
	for i := 0; i < 8; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}

// Index wraps a chromem-go collection of term content strings.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewIndex creates an in-memory semantic index over a fresh "terms"
// collection.
func NewIndex() (*Index, error) {
	db := chromem.NewDB()
	collection, err := db.CreateCollection("terms", nil, embed)
	if err != nil {
		return nil, fmt.Errorf("create semantic collection: %w", err)
	}
	return &Index{db: db, collection: collection}, nil
}

// NewPersistentIndex creates a semantic index backed by an on-disk chromem
// database, for the kernel's optional durable semantic mirror.
func NewPersistentIndex(path string) (*Index, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open persistent semantic index: %w", err)
	}
	collection := db.GetCollection("terms", embed)
	if collection == nil {
		collection, err = db.CreateCollection("terms", nil, embed)
		if err != nil {
			return nil, fmt.Errorf("create semantic collection: %w", err)
		}
	}
	return &Index{db: db, collection: collection}, nil
}

// IndexTerm registers id's content (its rendered term string) for later
// similarity search. Called once per newly created edge (spec §4.1 step
// "create the edge") — re-indexing an unchanged ID is a harmless no-op
// overwrite.
func (ix *Index) IndexTerm(ctx context.Context, id, content string) error {
	return ix.collection.AddDocument(ctx, chromem.Document{ID: id, Content: content})
}

// Match is one semantic search hit.
type Match struct {
	ID         string
	Similarity float32
}

// SimilarTerms returns up to limit term IDs whose indexed content is most
// similar to query, for candidate widening ahead of exact unification.
func (ix *Index) SimilarTerms(ctx context.Context, query string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 5
	}
	if ix.collection.Count() == 0 {
		return nil, nil
	}
	if limit > ix.collection.Count() {
		limit = ix.collection.Count()
	}
	results, err := ix.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("semantic query: %w", err)
	}
	out := make([]Match, len(results))
	for i, r := range results {
		out[i] = Match{ID: r.ID, Similarity: r.Similarity}
	}
	return out, nil
}
