package vectorindex

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cerebrochat/cerebrochat/internal/llm"
)

const (
	// defaultRowsPerChunk groups CSV rows into one embedded chunk. Whole
	// rows never split across chunks, so a retrieved chunk always carries
	// complete stat lines.
	defaultRowsPerChunk = 5

	// embedConcurrency caps simultaneous embedding calls.
	embedConcurrency = 4
)

// BuildOptions tunes an index build.
type BuildOptions struct {
	RowsPerChunk int
	Model        string
}

// Build reads a player statistics CSV, renders row groups into text chunks,
// embeds each chunk, and returns the assembled index. Row order is
// preserved in the output regardless of embedding completion order.
func Build(ctx context.Context, csvPath string, embedder llm.Client, opts BuildOptions, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rowsPerChunk := opts.RowsPerChunk
	if rowsPerChunk < 1 {
		rowsPerChunk = defaultRowsPerChunk
	}

	chunks, err := readChunks(csvPath, rowsPerChunk)
	if err != nil {
		return nil, err
	}
	logger.Info("embedding player chunks",
		zap.String("csv", csvPath),
		zap.Int("chunks", len(chunks)),
		zap.Int("rowsPerChunk", rowsPerChunk))

	items := make([]Item, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			embedding, err := embedder.Embed(gctx, chunk)
			if err != nil {
				return fmt.Errorf("failed to embed chunk %d: %w", i, err)
			}
			items[i] = Item{
				ID:        fmt.Sprintf("chunk-%04d", i),
				Text:      chunk,
				Embedding: embedding,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dims := 0
	if len(items) > 0 {
		dims = len(items[0].Embedding)
	}
	return &Index{
		Version:      FormatVersion,
		Model:        opts.Model,
		Dimensions:   dims,
		RowsPerChunk: rowsPerChunk,
		GeneratedAt:  time.Now(),
		Items:        items,
	}, nil
}

// readChunks renders the CSV into "header: value" stat lines, grouped
// rowsPerChunk at a time.
func readChunks(csvPath string, rowsPerChunk int) ([]string, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	var chunks []string
	var current []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		current = append(current, renderRow(header, record))
		if len(current) == rowsPerChunk {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = nil
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks, nil
}

// renderRow joins non-empty fields as "header=value" pairs on one line.
func renderRow(header, record []string) string {
	var parts []string
	for i, value := range record {
		if i >= len(header) {
			break
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		parts = append(parts, header[i]+"="+value)
	}
	return strings.Join(parts, " | ")
}
