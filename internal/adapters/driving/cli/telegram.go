package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdocs/internal/adapters/driving/telegram"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

var telegramMaxResults int

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Run the Telegram bot",
	Long: `Answers every text message sent to the bot. The token comes from
telegram.token in the config file or TELEGRAM_BOT_TOKEN.`,
	Args: cobra.NoArgs,
	RunE: runTelegram,
}

func init() {
	telegramCmd.Flags().IntVarP(&telegramMaxResults, "max-results", "n", 0, "passages per question (default 3)")
	rootCmd.AddCommand(telegramCmd)
}

func runTelegram(cmd *cobra.Command, _ []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	var botOpts []telegram.Option
	if telegramMaxResults > 0 {
		botOpts = append(botOpts, telegram.WithMaxResults(telegramMaxResults))
	}
	b, err := telegram.New(telegramToken, askService, botOpts...)
	if err != nil {
		return err
	}

	stop := startBackgroundScheduler(cmd.Context())
	defer stop()

	logger.Info("Telegram bot started")
	b.Start(cmd.Context())
	return nil
}
