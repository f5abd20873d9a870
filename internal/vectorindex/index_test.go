package vectorindex

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 0}, []float64{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float64{1, 0}, []float64{-3, 0}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 1}), "zero vector scores 0")
}

func TestSearchRanksBySimilarity(t *testing.T) {
	idx := &Index{Items: []Item{
		{ID: "orthogonal", Embedding: []float64{0, 1}},
		{ID: "aligned", Embedding: []float64{1, 0.01}},
		{ID: "opposite", Embedding: []float64{-1, 0}},
		{ID: "wrong-dims", Embedding: []float64{1, 0, 0}},
	}}

	matches := idx.Search([]float64{1, 0}, 2)
	require.Len(t, matches, 2)
	assert.Equal(t, "aligned", matches[0].ID)
	assert.Equal(t, "orthogonal", matches[1].ID)
}

func TestSearchEmptyQuery(t *testing.T) {
	idx := &Index{Items: []Item{{ID: "a", Embedding: []float64{1}}}}
	assert.Nil(t, idx.Search(nil, 3))
	assert.Nil(t, idx.Search([]float64{1}, 0))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	idx := &Index{
		Model:       "test-embed",
		Dimensions:  2,
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Items: []Item{
			{ID: "chunk-0000", Text: "name=Jane Doe | pts_g=21.4", Embedding: []float64{0.1, 0.2}},
		},
	}

	path := filepath.Join(t.TempDir(), "nested", "index.json")
	require.NoError(t, idx.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, idx.Model, loaded.Model)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, idx.Items[0].Text, loaded.Items[0].Text)
	assert.Equal(t, idx.Items[0].Embedding, loaded.Items[0].Embedding)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

// stubEmbedder returns a fixed-dimension embedding derived from text length.
type stubEmbedder struct {
	calls int
}

func (s *stubEmbedder) Generate(context.Context, string) (string, error) { return "", nil }

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	s.calls++
	return []float64{float64(len(text)), 1}, nil
}

func (s *stubEmbedder) Close() error { return nil }

func TestBuildChunksRows(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "players.csv")
	content := "name,team,pts_g\n"
	for i := 0; i < 7; i++ {
		content += fmt.Sprintf("Player %d,State,%d.5\n", i, 10+i)
	}
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o644))

	embedder := &stubEmbedder{}
	idx, err := Build(context.Background(), csvPath, embedder, BuildOptions{
		RowsPerChunk: 3,
		Model:        "test-embed",
	}, nil)
	require.NoError(t, err)

	// 7 rows at 3 per chunk: two full chunks plus a remainder.
	require.Len(t, idx.Items, 3)
	assert.Equal(t, 3, embedder.calls)
	assert.Equal(t, 2, idx.Dimensions)
	assert.Contains(t, idx.Items[0].Text, "name=Player 0")
	assert.Contains(t, idx.Items[2].Text, "name=Player 6")
	assert.Equal(t, "chunk-0000", idx.Items[0].ID)
}

func TestRenderRowSkipsEmptyFields(t *testing.T) {
	line := renderRow([]string{"name", "team", "pts_g"}, []string{"Jane Doe", "", "21.4"})
	assert.Equal(t, "name=Jane Doe | pts_g=21.4", line)
}
