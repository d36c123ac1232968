package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the embedding, index and LLM providers",
	Long: `Probes each provider: embeds a short test text, reads index statistics
and pings the LLM. Exits non-zero if any component is unhealthy.`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if healthService == nil {
		return errors.New("health service not configured")
	}

	report := healthService.Check(cmd.Context())

	if opts.JSON {
		if err := printJSON(cmd, report); err != nil {
			return err
		}
	} else {
		for _, c := range report.Components {
			mark := "ok"
			if !c.Healthy {
				mark = "FAIL"
			}
			cmd.Printf("  %-4s %-12s %5dms", mark, c.Service, c.LatencyMS)
			if c.Service == "vector_index" && c.Healthy {
				cmd.Printf("  %d passages", c.DocumentCount)
			}
			if c.Error != "" {
				cmd.Printf("  %s", c.Error)
			}
			cmd.Println()
		}
	}

	if !report.Healthy {
		return errors.New("unhealthy")
	}
	return nil
}
