// Package main implements the docquery CLI for indexing structured
// documents and querying them with hybrid retrieval.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is the optional YAML config file.
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docquery",
	Short: "Index and search structured documents with hybrid retrieval",
	Long: `docquery chunks structured documents along their heading hierarchy,
embeds the chunks, and indexes them into a vector store. Queries combine
dense vector search with BM25 lexical scoring through reciprocal rank
fusion.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(collectionCmd)
}
