package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docquery/internal/document"
	"github.com/fyrsmithlabs/docquery/internal/ingest"
)

var rebuildFlag bool

// ingestCmd indexes a directory of structured documents.
var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Chunk, embed, and index documents from a directory",
	Long: `Load structured JSON documents from a directory, chunk them along
their heading hierarchy, embed the chunks, and upsert them into the
configured collection.

Examples:
  # Index a directory of documents
  docquery ingest ./content

  # Drop and recreate the collection first
  docquery ingest --rebuild ./content`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&rebuildFlag, "rebuild", false, "drop and recreate the collection before indexing")
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	docs, err := document.LoadDir(args[0])
	if err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}

	ch, err := a.newChunker()
	if err != nil {
		return err
	}

	pipeline, err := ingest.New(ch, a.embedder, a.store, ingest.Config{
		BatchSize: a.cfg.Embedding.BatchSize,
		Rebuild:   rebuildFlag,
	}, a.logger)
	if err != nil {
		return err
	}

	stats, err := pipeline.Run(cmd.Context(), docs)
	if err != nil {
		return err
	}

	a.logger.Info("ingest finished",
		zap.Int("documents", stats.Documents),
		zap.Int("chunks", stats.Chunks),
		zap.Duration("duration", stats.Duration),
	)

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks from %d documents in %s\n",
		stats.Chunks, stats.Documents, stats.Duration.Round(time.Millisecond))
	return nil
}
