package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

var (
	ingestLimit    int
	ingestDump     string
	ingestFromDump string
	ingestDryRun   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Chunk, embed and index the documentation",
	Long: `Reads every document in the corpus directory, splits it into overlapping
word windows, embeds each passage and uploads the passages to the vector index.

Documents shorter than 200 characters are skipped. Passages whose embedding
fails are dropped and counted. Embedding calls are paced to respect provider
rate limits, so a full run can take a while.

Examples:
  # Try the pipeline on ten passages
  ragdocs ingest --limit 10

  # Embed once, keep the result, upload later
  ragdocs ingest --dump passages.json --dry-run
  ragdocs ingest --from-dump passages.json`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVar(&ingestLimit, "limit", 0, "embed at most N passages (0 = all)")
	ingestCmd.Flags().StringVar(&ingestDump, "dump", "", "write embedded passages to a JSON file")
	ingestCmd.Flags().StringVar(&ingestFromDump, "from-dump", "", "upload passages from a JSON dump without re-embedding")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "embed but do not upload")
	ingestCmd.Flags().Bool("recursive", false, "walk subdirectories of the corpus directory")
	ingestCmd.Flags().String("corpus", "", "corpus directory (default from ingest.corpus_dir)")
	bindConfigKey(ingestCmd, "recursive", "ingest.recursive")
	bindConfigKey(ingestCmd, "corpus", "ingest.corpus_dir")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if ingestFromDump != "" && ingestDump != "" {
		return errors.New("--dump and --from-dump cannot be combined")
	}

	if ingestFromDump != "" {
		return uploadDump(cmd, ingestFromDump)
	}

	ingestOpts := domain.IngestOptions{Limit: ingestLimit, DryRun: ingestDryRun}

	if ingestDump == "" {
		report, err := ingestService.Run(cmd.Context(), ingestOpts)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		return printReport(cmd, report)
	}

	passages, report, err := ingestService.Prepare(cmd.Context(), ingestOpts)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	if err := writeDump(ingestDump, passages); err != nil {
		return err
	}
	if !opts.JSON {
		cmd.Printf("Wrote %d passages to %s\n", len(passages), ingestDump)
	}

	if !ingestDryRun {
		result, err := ingestService.Upload(cmd.Context(), passages)
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
		report.Upsert = result
	}
	return printReport(cmd, report)
}

func uploadDump(cmd *cobra.Command, path string) error {
	passages, err := readDump(path)
	if err != nil {
		return err
	}
	if ingestDryRun {
		cmd.Printf("Read %d passages from %s (dry run, nothing uploaded)\n", len(passages), path)
		return nil
	}

	result, err := ingestService.Upload(cmd.Context(), passages)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	return printReport(cmd, &domain.IngestReport{Passages: len(passages), Embedded: len(passages), Upsert: result})
}

func writeDump(path string, passages []domain.Passage) error {
	data, err := json.MarshalIndent(passages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode passages: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write dump: %w", err)
	}
	return nil
}

func readDump(path string) ([]domain.Passage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump: %w", err)
	}
	var passages []domain.Passage
	if err := json.Unmarshal(data, &passages); err != nil {
		return nil, fmt.Errorf("failed to decode dump %s: %w", path, err)
	}
	return passages, nil
}

func printReport(cmd *cobra.Command, r *domain.IngestReport) error {
	if opts.JSON {
		return printJSON(cmd, r)
	}

	cmd.Println("Ingest complete")
	cmd.Printf("  Documents:          %d (%d skipped)\n", r.Documents, r.SkippedDocuments)
	cmd.Printf("  Passages:           %d\n", r.Passages)
	cmd.Printf("  Embedded:           %d\n", r.Embedded)
	if r.EmbeddingFailures > 0 {
		cmd.Printf("  Embedding failures: %d\n", r.EmbeddingFailures)
	}
	cmd.Printf("  Uploaded:           %d/%d\n", r.Upsert.Accepted, r.Upsert.Submitted)
	if r.Duration > 0 {
		cmd.Printf("  Duration:           %s\n", r.Duration.Round(time.Millisecond))
	}
	if r.Upsert.Partial() {
		cmd.Printf("Warning: %d passages were rejected by the index\n", r.Upsert.Rejected())
	}
	return nil
}
