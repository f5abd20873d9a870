// Package vectorindex implements a small on-disk embedding index over
// player statistics text, used to ground plain-chat answers. The index is a
// single JSON document loaded fully into memory; at a few thousand chunks,
// brute-force cosine scan beats the complexity of a real vector store.
package vectorindex

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Item is one embedded text chunk.
type Item struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
}

// FormatVersion is bumped when the persisted document layout changes.
const FormatVersion = 1

// Index is the persisted index document.
type Index struct {
	Version      int       `json:"version"`
	Model        string    `json:"model"`
	Dimensions   int       `json:"dimensions"`
	RowsPerChunk int       `json:"rowsPerChunk"`
	GeneratedAt  time.Time `json:"generatedAt"`
	Items        []Item    `json:"items"`
}

// Match is a search hit.
type Match struct {
	Item
	Score float64 `json:"score"`
}

// Load reads an index document from disk.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vector index: %w", err)
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse vector index: %w", err)
	}
	return &idx, nil
}

// Save writes the index document, creating the directory if absent.
func (idx *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("failed to encode vector index: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write vector index: %w", err)
	}
	return nil
}

// Search returns the top-k items by cosine similarity to the query vector.
// Items whose embedding dimension does not match the query are skipped.
func (idx *Index) Search(query []float64, k int) []Match {
	if k < 1 || len(query) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(idx.Items))
	for _, item := range idx.Items {
		if len(item.Embedding) != len(query) {
			continue
		}
		matches = append(matches, Match{Item: item, Score: CosineSimilarity(query, item.Embedding)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// CosineSimilarity computes the cosine of the angle between two equal-length
// vectors, 0 when either has zero magnitude.
func CosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
