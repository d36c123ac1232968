// Package cli provides the ragdocs command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/ragdocs/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driving"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

// Options are the persistent flags shared by every command.
type Options struct {
	// ConfigPath overrides the default config file location.
	ConfigPath string

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is "console" or "json".
	LogFormat string

	// JSON switches command output to JSON.
	JSON bool

	// Overrides are config keys set by command flags, e.g. ingest --recursive.
	Overrides map[string]string
}

// configKeyAnnotation marks a flag whose value overrides a config key.
const configKeyAnnotation = "ragdocs/config-key"

// bindConfigKey makes a changed flag override the config key.
func bindConfigKey(cmd *cobra.Command, flag, key string) {
	_ = cmd.Flags().SetAnnotation(flag, configKeyAnnotation, []string{key})
}

// collectOverrides returns the config keys set by flags on the command line.
func collectOverrides(cmd *cobra.Command) map[string]string {
	out := make(map[string]string)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if keys := f.Annotations[configKeyAnnotation]; len(keys) == 1 {
			out[keys[0]] = f.Value.String()
		}
	})
	return out
}

// Services are the driving ports the commands run against.
// Any port may be nil when its dependencies are not configured; commands
// that need it report that instead of failing at startup.
type Services struct {
	Ask             driving.AskService
	Retrieve        driving.RetrieveService
	Ingest          driving.IngestService
	Index           driving.IndexService
	Health          driving.HealthService
	Settings        driving.SettingsService
	Scheduler       driving.Scheduler
	SchedulerConfig domain.SchedulerConfig
	Server          httpapi.Config
	TelegramToken   string
	Close           func() error
}

// SetupFunc builds the services once flags are parsed.
type SetupFunc func(ctx context.Context, opts Options) (*Services, error)

var (
	version = "dev"
	opts    Options
	setup   SetupFunc
	closer  func() error

	askService      driving.AskService
	retrieveService driving.RetrieveService
	ingestService   driving.IngestService
	indexService    driving.IndexService
	healthService   driving.HealthService
	settingsService driving.SettingsService
	scheduler       driving.Scheduler
	schedulerConfig domain.SchedulerConfig
	serverConfig    httpapi.Config
	telegramToken   string
)

var rootCmd = &cobra.Command{
	Use:   "ragdocs",
	Short: "Ask questions about the Python documentation",
	Long: `ragdocs answers natural-language questions about the Python documentation.

It chunks and embeds the docs into a vector index ("ragdocs ingest"), then
answers questions by retrieving the closest passages and asking an LLM to
answer from them ("ragdocs ask"). The same pipeline is served over HTTP,
MCP, a terminal UI and Telegram.`,
	SilenceUsage:       true,
	PersistentPreRunE:  preRun,
	PersistentPostRunE: postRun,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.ragdocs/config.toml)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&opts.LogFormat, "log-format", string(logger.FormatConsole), "log format: console or json")
	flags.BoolVar(&opts.JSON, "json", false, "output as JSON")
}

func preRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(opts.Verbose)
	logger.SetFormat(logger.Format(opts.LogFormat))

	if setup == nil || cmd == versionCmd {
		return nil
	}
	opts.Overrides = collectOverrides(cmd)
	svcs, err := setup(cmd.Context(), opts)
	if err != nil {
		return err
	}
	Configure(svcs)
	return nil
}

func postRun(_ *cobra.Command, _ []string) error {
	if closer == nil {
		return nil
	}
	err := closer()
	closer = nil
	return err
}

// Configure installs the services the commands run against.
func Configure(s *Services) {
	if s == nil {
		return
	}
	askService = s.Ask
	retrieveService = s.Retrieve
	ingestService = s.Ingest
	indexService = s.Index
	healthService = s.Health
	settingsService = s.Settings
	scheduler = s.Scheduler
	schedulerConfig = s.SchedulerConfig
	serverConfig = s.Server
	telegramToken = s.TelegramToken
	closer = s.Close
}

// Execute runs the root command. setup is called after flag parsing.
func Execute(ctx context.Context, v string, fn SetupFunc) error {
	if v != "" {
		version = v
	}
	setup = fn
	return rootCmd.ExecuteContext(ctx)
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
