package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestMaskOrUnset(t *testing.T) {
	assert.Equal(t, "(not set)", maskOrUnset(""))
	assert.Equal(t, "post...e/db", maskOrUnset("postgres://host/te/db"))
}

func TestSettingsCmd_Show(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.Embedding.APIKey = "azure-key-1234567890"

	out, err := execute("settings")
	require.NoError(t, err)
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "Azure OpenAI (cloud)")
	assert.Contains(t, out, "azur...7890")
	assert.NotContains(t, out, "azure-key-1234567890")
	assert.Contains(t, out, "[Vector Index]")
	assert.Contains(t, out, "Chunk size: 500 words, overlap 50")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsCmd_ShowValidationWarning(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.validateErr = domain.ErrInvalidConfig

	out, err := execute("settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Warning:")
	assert.Contains(t, out, "ragdocs settings wizard")
}

func TestSettingsCmd_Set(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "set", "chunking.chunk_size", "400")
	require.NoError(t, err)
	assert.Equal(t, "400", ts.settings.set["chunking.chunk_size"])
	assert.Contains(t, out, "Set chunking.chunk_size")
}

func TestSettingsCmd_SetUnknownKey(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("settings", "set", "bogus", "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestSettingsCmd_SetNeedsKeyAndValue(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("settings", "set", "chunking.chunk_size")
	assert.Error(t, err)
}

func withStdin(t *testing.T, input string) {
	t.Helper()
	old := stdin
	stdin = strings.NewReader(input)
	t.Cleanup(func() { stdin = old })
}

func TestSettingsCmd_Wizard(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	withStdin(t, strings.Join([]string{
		"3", "", "http://localhost:11434", // embedding: ollama, default model
		"2", "gpt-4o", "sk-test-1234567890", // llm: openai
		"5", "postgres://ragdocs@localhost/ragdocs", // pgvector
	}, "\n")+"\n")

	out, err := execute("settings", "wizard")
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOllama, ts.settings.embedding)
	assert.Equal(t, "nomic-embed-text", ts.settings.settings.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", ts.settings.settings.Embedding.BaseURL)
	assert.Equal(t, domain.AIProviderOpenAI, ts.settings.llm)
	assert.Equal(t, "gpt-4o", ts.settings.settings.LLM.Model)
	assert.Equal(t, "sk-test-1234567890", ts.settings.settings.LLM.APIKey)
	assert.Equal(t, domain.VectorBackendPgvector, ts.settings.backend)
	assert.Equal(t, "postgres://ragdocs@localhost/ragdocs", ts.settings.set["vector_index.dsn"])
	assert.Contains(t, out, "Configuration Complete!")
}

func TestSettingsCmd_WizardRequiresAPIKey(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	withStdin(t, "2\n\n\n")

	_, err := execute("settings", "wizard")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestSettingsCmd_WizardStopsWhenProviderUnreachable(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.pingErr = domain.ErrEmbeddingUnavailable
	withStdin(t, "3\n\n\n")

	out, err := execute("settings", "wizard")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, out, "Validating configuration... FAILED")
	assert.Empty(t, ts.settings.llm)
}
