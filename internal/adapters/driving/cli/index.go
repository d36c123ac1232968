package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexRecreate bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show vector index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the vector index",
	Long: `Create or drop the vector index.

The schema depends on the configured backend: an Azure AI Search index,
pgvector migrations, or local sqlite/chromem storage.`,
}

var indexCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the vector index",
	Args:  cobra.NoArgs,
	RunE:  runIndexCreate,
}

var indexDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop the vector index and all passages",
	Args:  cobra.NoArgs,
	RunE:  runIndexDrop,
}

func init() {
	indexCreateCmd.Flags().BoolVar(&indexRecreate, "recreate", false, "drop the index first")
	indexCmd.AddCommand(indexCreateCmd)
	indexCmd.AddCommand(indexDropCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	stats, err := indexService.Stats(cmd.Context())
	if err != nil {
		return publicError(err)
	}

	if opts.JSON {
		return printJSON(cmd, stats)
	}

	cmd.Println("Index Statistics")
	cmd.Printf("  Passages:           %d\n", stats.DocumentCount)
	cmd.Printf("  Storage size:       %s\n", formatSize(stats.StorageSize))
	cmd.Printf("  Vector index size:  %s\n", formatSize(stats.VectorIndexSize))
	return nil
}

func runIndexCreate(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}
	if err := indexService.Create(cmd.Context(), indexRecreate); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if indexRecreate {
		cmd.Println("Index recreated.")
	} else {
		cmd.Println("Index ready.")
	}
	return nil
}

func runIndexDrop(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}
	if err := indexService.Drop(cmd.Context()); err != nil {
		return fmt.Errorf("failed to drop index: %w", err)
	}
	cmd.Println("Index dropped.")
	return nil
}

func formatSize(n int64) string {
	switch {
	case n <= 0:
		return "unknown"
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}
