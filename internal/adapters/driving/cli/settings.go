package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// stdin is the wizard's input; tests replace it.
var stdin io.Reader = os.Stdin

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding and LLM providers, the vector backend
and the pipeline options.

Use subcommands to set individual keys or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single setting",
	Long: `Set one configuration key and save it to the config file.

Examples:
  ragdocs settings set chunking.chunk_size 400
  ragdocs settings set vector_index.backend pgvector
  ragdocs settings set vector_index.dsn postgres://localhost/ragdocs
  ragdocs settings set scheduler.corpus_reindex.schedule "0 4 * * 0"`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure providers and the vector backend step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	cmd.Println()

	vi := settings.VectorIndex
	cmd.Println("[Vector Index]")
	cmd.Printf("  Backend: %s\n", vi.Backend.Description())
	cmd.Printf("  Index: %s (%d dimensions)\n", vi.IndexName, vi.Dimensions)
	switch vi.Backend {
	case domain.VectorBackendAzure:
		cmd.Printf("  Endpoint: %s\n", vi.Endpoint)
		cmd.Printf("  API Key: %s\n", maskOrUnset(vi.APIKey))
	case domain.VectorBackendPgvector:
		cmd.Printf("  DSN: %s\n", maskOrUnset(vi.DSN))
	case domain.VectorBackendSQLite, domain.VectorBackendChromem:
		if vi.DataDir != "" {
			cmd.Printf("  Data dir: %s\n", vi.DataDir)
		}
	}
	cmd.Println()

	cmd.Println("[Pipeline]")
	cmd.Printf("  Chunk size: %d words, overlap %d\n", settings.Chunking.ChunkSize, settings.Chunking.Overlap)
	cmd.Printf("  Max tokens: %d, temperature %.2f\n", settings.Generation.MaxTokens, settings.Generation.Temperature)
	cmd.Printf("  Corpus: %s (recursive: %t)\n", settings.Ingest.CorpusDir, settings.Ingest.Recursive)
	cmd.Printf("  Embed interval: %s\n", settings.Ingest.EmbedInterval)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'ragdocs settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, p domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", p.Description())
	cmd.Printf("  Model: %s\n", model)
	if p.RequiresBaseURL() || p.IsLocal() {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if p.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskOrUnset(apiKey))
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("ragdocs Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(stdin)

	cmd.Println("Step 1: Embedding Provider")
	cmd.Println("--------------------------")
	if err := configureProvider(cmd, reader, "embedding", domain.AllEmbeddingProviders(),
		domain.DefaultEmbeddingModels(), settingsService.SetEmbeddingProvider,
		settingsService.ValidateEmbeddingConfig); err != nil {
		return err
	}

	cmd.Println("Step 2: LLM Provider")
	cmd.Println("--------------------")
	if err := configureProvider(cmd, reader, "LLM", domain.AllLLMProviders(),
		domain.DefaultLLMModels(), settingsService.SetLLMProvider,
		settingsService.ValidateLLMConfig); err != nil {
		return err
	}

	cmd.Println("Step 3: Vector Backend")
	cmd.Println("----------------------")
	backends := domain.AllVectorBackends()
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	backend := backends[parseChoice(readLine(reader), len(backends), 1)-1]
	if err := settingsService.SetVectorBackend(backend); err != nil {
		return fmt.Errorf("failed to set vector backend: %w", err)
	}
	if err := configureBackend(cmd, reader, backend); err != nil {
		return err
	}
	cmd.Printf("Vector backend set to: %s\n\n", backend.Description())

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}
	return nil
}

type providerSetter func(provider domain.AIProvider, model, baseURL, apiKey string) error

func configureProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	label string,
	providers []domain.AIProvider,
	defaults map[domain.AIProvider]string,
	set providerSetter,
	validate func() error,
) error {
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	provider := providers[parseChoice(readLine(reader), len(providers), 1)-1]

	defaultModel := defaults[provider]
	if provider == domain.AIProviderAzure {
		cmd.Printf("Enter deployment name [%s]: ", defaultModel)
	} else {
		cmd.Printf("Enter model name [%s]: ", defaultModel)
	}
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var baseURL string
	if provider.RequiresBaseURL() || provider.IsLocal() {
		cmd.Print("Enter endpoint URL: ")
		baseURL = readLine(reader)
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := set(provider, model, baseURL, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", label, err)
	}

	cmd.Print("Validating configuration... ")
	if err := validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", label, err)
	}
	cmd.Println("OK")
	cmd.Printf("%s provider configured: %s (%s)\n\n", label, provider.Description(), model)
	return nil
}

func configureBackend(cmd *cobra.Command, reader *bufio.Reader, backend domain.VectorBackend) error {
	var prompts []struct{ key, label string }
	switch backend {
	case domain.VectorBackendAzure:
		prompts = []struct{ key, label string }{
			{"vector_index.endpoint", "Enter Azure AI Search endpoint"},
			{"vector_index.api_key", "Enter Azure AI Search admin key"},
		}
	case domain.VectorBackendPgvector:
		prompts = []struct{ key, label string }{
			{"vector_index.dsn", "Enter PostgreSQL DSN"},
		}
	default:
		return nil
	}

	for _, p := range prompts {
		cmd.Printf("%s: ", p.label)
		var value string
		if strings.HasSuffix(p.key, "api_key") || strings.HasSuffix(p.key, "dsn") {
			value = readPassword(reader)
			cmd.Println()
		} else {
			value = readLine(reader)
		}
		if value == "" {
			continue
		}
		if err := settingsService.Set(p.key, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", p.key, err)
		}
	}
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo on a terminal and falls back to a plain line.
func readPassword(reader *bufio.Reader) string {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskOrUnset(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return maskAPIKey(secret)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
