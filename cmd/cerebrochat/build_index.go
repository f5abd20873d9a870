package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cerebrochat/cerebrochat/internal/config"
	"github.com/cerebrochat/cerebrochat/internal/llm"
	"github.com/cerebrochat/cerebrochat/internal/vectorindex"
)

var (
	buildIndexCSV    string
	buildIndexOutput string
	buildIndexRows   int
)

var buildIndexCmd = &cobra.Command{
	Use:   "build-index",
	Short: "Build the vector index from a player statistics CSV",
	Long:  `Embed player stat lines from a CSV export and write the JSON vector index used to ground plain-chat answers.`,
	RunE:  runBuildIndex,
}

func init() {
	buildIndexCmd.Flags().StringVar(&buildIndexCSV, "csv", "", "Path to the player statistics CSV (defaults to DATA_DIR/players.csv)")
	buildIndexCmd.Flags().StringVar(&buildIndexOutput, "out", "", "Output path for the index (defaults to VECTOR_INDEX_PATH)")
	buildIndexCmd.Flags().IntVar(&buildIndexRows, "rows-per-chunk", 0, "CSV rows per embedded chunk")
	rootCmd.AddCommand(buildIndexCmd)
}

func runBuildIndex(cmd *cobra.Command, _ []string) error {
	app := config.LoadApp()
	csvPath := buildIndexCSV
	if csvPath == "" {
		csvPath = filepath.Join(app.DataDir, "players.csv")
	}
	outPath := buildIndexOutput
	if outPath == "" {
		outPath = app.VectorIndexPath
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	llmCfg := llm.LoadConfig()
	client, err := llm.NewClient(context.Background(), llmCfg)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	idx, err := vectorindex.Build(cmd.Context(), csvPath, client, vectorindex.BuildOptions{
		RowsPerChunk: buildIndexRows,
		Model:        llmCfg.EmbedModelName(),
	}, logger)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	if err := idx.Save(outPath); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}

	logger.Info("vector index written",
		zap.String("path", outPath),
		zap.Int("items", len(idx.Items)),
		zap.Int("dimensions", idx.Dimensions))
	return nil
}
