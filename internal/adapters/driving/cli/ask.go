package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

var (
	askMaxResults int
	askRetrieve   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the Python docs",
	Long: `Retrieves the passages closest to the question and generates an answer
grounded in them. The answer is followed by the sources it was built from.

Use --retrieve to list the passages without generating an answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askMaxResults, "max-results", "n", domain.DefaultTopK,
		"number of passages to retrieve (1-10)")
	askCmd.Flags().BoolVar(&askRetrieve, "retrieve", false, "only list the retrieved passages")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	if askRetrieve {
		return runRetrieve(cmd, question)
	}

	if askService == nil {
		return errors.New("ask service not configured")
	}

	answer, err := askService.Ask(cmd.Context(), question, askMaxResults)
	if err != nil {
		return publicError(err)
	}

	if opts.JSON {
		return printJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	cmd.Println()
	if len(answer.Sources) == 0 {
		cmd.Println("No sources found.")
		return nil
	}
	cmd.Println("Sources:")
	for i, src := range answer.Sources {
		cmd.Printf("  [%d] %s (chunk %d)\n", i+1, src.SourceKey, src.ChunkIndex)
		if src.Preview != "" {
			cmd.Printf("      %s\n", oneLine(src.Preview))
		}
	}
	return nil
}

func runRetrieve(cmd *cobra.Command, question string) error {
	if retrieveService == nil {
		return errors.New("retrieve service not configured")
	}

	passages, err := retrieveService.Retrieve(cmd.Context(), question, askMaxResults)
	if err != nil {
		return publicError(err)
	}

	if opts.JSON {
		return printJSON(cmd, passages)
	}

	if len(passages) == 0 {
		cmd.Println("No passages found.")
		return nil
	}
	for _, p := range passages {
		cmd.Printf("  [%d] %s (chunk %d) %.3f\n", p.Rank, p.SourceKey, p.ChunkIndex, p.Score)
		cmd.Printf("      %s\n", oneLine(p.Preview(domain.PreviewLength)))
	}
	return nil
}

// publicError hides provider detail. Validation messages pass through.
func publicError(err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	var pe *domain.PublicError
	if errors.As(err, &pe) {
		logger.Debug("%v", pe.Err)
		return errors.New(pe.Message)
	}
	logger.Error(err, "request failed")
	return errors.New(domain.UnavailableMessage)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
