package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// collectionCmd groups collection management subcommands.
var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage the configured collection",
}

// collectionInfoCmd prints collection metadata.
var collectionInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show collection point count and vector size",
	RunE:  runCollectionInfo,
}

// collectionDeleteCmd drops the collection.
var collectionDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the collection and all its points",
	RunE:  runCollectionDelete,
}

func init() {
	collectionCmd.AddCommand(collectionInfoCmd)
	collectionCmd.AddCommand(collectionDeleteCmd)
}

func runCollectionInfo(cmd *cobra.Command, _ []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	info, err := a.store.GetCollectionInfo(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Collection:  %s\n", info.Name)
	fmt.Fprintf(cmd.OutOrStdout(), "Points:      %d\n", info.PointCount)
	fmt.Fprintf(cmd.OutOrStdout(), "Vector size: %d\n", info.VectorSize)
	return nil
}

func runCollectionDelete(cmd *cobra.Command, _ []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.store.DeleteCollection(cmd.Context()); err != nil {
		return err
	}

	a.logger.Info("collection deleted", zap.String("collection", a.cfg.VectorStore.Collection))
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted collection %s\n", a.cfg.VectorStore.Collection)
	return nil
}
