package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/docquery/internal/retrieval"
	"github.com/fyrsmithlabs/docquery/internal/vectorstore"
)

var (
	topKFlag     int
	chapterFlag  string
	sectionFlag  string
	noHybridFlag bool
	jsonFlag     bool
)

// searchCmd queries the indexed collection.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed chunks with hybrid retrieval",
	Long: `Search the configured collection. By default dense vector search and
BM25 lexical scoring run in parallel and their rankings are fused with
reciprocal rank fusion.

Examples:
  # Hybrid search
  docquery search "inverse kinematics"

  # Restrict to a chapter, return 10 results
  docquery search --chapter kinematics --top-k 10 "jacobian"

  # Vector-only search
  docquery search --no-hybrid "forward dynamics"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&topKFlag, "top-k", 0, "number of results (default from config)")
	searchCmd.Flags().StringVar(&chapterFlag, "chapter", "", "restrict to a chapter")
	searchCmd.Flags().StringVar(&sectionFlag, "section", "", "restrict to a section heading")
	searchCmd.Flags().BoolVar(&noHybridFlag, "no-hybrid", false, "disable the BM25 path, vector search only")
	searchCmd.Flags().BoolVar(&jsonFlag, "json", false, "emit results as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	retrievalCfg := retrieval.Config{
		TopK:           a.cfg.Retrieval.TopK,
		RetrievalTopK:  a.cfg.Retrieval.RetrievalTopK,
		RRFK:           a.cfg.Retrieval.RRFK,
		MinScore:       a.cfg.Retrieval.MinScore,
		CandidateLimit: a.cfg.Retrieval.CandidateLimit,
		UseHybrid:      a.cfg.Retrieval.UseHybrid,
	}
	if topKFlag > 0 {
		retrievalCfg.TopK = topKFlag
		if retrievalCfg.RetrievalTopK < topKFlag {
			retrievalCfg.RetrievalTopK = topKFlag
		}
	}
	if noHybridFlag {
		retrievalCfg.UseHybrid = false
	}

	retriever, err := retrieval.New(a.store, a.embedder, retrievalCfg, a.logger)
	if err != nil {
		return err
	}

	filter := vectorstore.Filter{}
	if chapterFlag != "" {
		filter["chapter"] = chapterFlag
	}
	if sectionFlag != "" {
		filter["section"] = sectionFlag
	}

	query := strings.Join(args, " ")
	chunks, err := retriever.Retrieve(cmd.Context(), query, filter)
	if err != nil {
		return err
	}

	if jsonFlag {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(chunks)
	}

	if len(chunks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No results.")
		return nil
	}

	for i, chunk := range chunks {
		fmt.Fprintf(cmd.OutOrStdout(), "%d. [%.4f] %s\n", i+1, chunk.Score, heading(chunk))
		fmt.Fprintln(cmd.OutOrStdout(), indent(snippet(chunk.Content), "   "))
	}
	return nil
}

// heading formats the chunk's location line.
func heading(chunk retrieval.RetrievedChunk) string {
	parts := make([]string, 0, 2)
	if chunk.Chapter != "" {
		parts = append(parts, chunk.Chapter)
	}
	if chunk.Section != "" {
		parts = append(parts, chunk.Section)
	}
	if len(parts) == 0 {
		return chunk.ID
	}
	return strings.Join(parts, " > ")
}

// snippet truncates content for terminal output.
func snippet(content string) string {
	const maxLen = 300
	content = strings.TrimSpace(content)
	if len(content) > maxLen {
		content = content[:maxLen] + "…"
	}
	return content
}

// indent prefixes every line of s.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
