package file

import "strings"

const (
	sectionEmbedding = "embedding"
	sectionLLM       = "llm"
)

// azureOpenAIVars apply to a section whose provider is azure.
//
//nolint:gosec // G101: variable names, not credentials.
var azureOpenAIVars = map[string][]string{
	"AZURE_OPENAI_KEY":                       {"embedding.api_key", "llm.api_key"},
	"AZURE_OPENAI_ENDPOINT":                  {"embedding.base_url", "llm.base_url"},
	"AZURE_OPENAI_API_VERSION":               {"embedding.api_version", "llm.api_version"},
	"AZURE_OPENAI_DEPLOYMENT_NAME":           {"llm.model"},
	"AZURE_OPENAI_EMBEDDING_DEPLOYMENT_NAME": {"embedding.model"},
}

// fixedVars always apply regardless of the selected providers.
//
//nolint:gosec // G101: variable names, not credentials.
var fixedVars = map[string]string{
	"AZURE_SEARCH_ENDPOINT": "vector_index.endpoint",
	"AZURE_SEARCH_KEY":      "vector_index.api_key",
	"AZURE_SEARCH_INDEX":    "vector_index.index_name",
	"TELEGRAM_BOT_TOKEN":    "telegram.token",
}

// mapEnv converts environment variables into config keys.
// Explicit RAGDOCS_ variables win over provider variables.
func mapEnv(vars map[string]string, embeddingProvider, llmProvider string) map[string]any {
	out := make(map[string]any)
	providers := map[string]string{
		sectionEmbedding: embeddingProvider,
		sectionLLM:       llmProvider,
	}
	set := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}

	for name, keys := range azureOpenAIVars {
		for _, key := range keys {
			if providers[sectionOf(key)] == "azure" {
				set(key, vars[name])
			}
		}
	}
	for name, key := range fixedVars {
		set(key, vars[name])
	}
	if providers[sectionEmbedding] == "openai" {
		set("embedding.api_key", vars["OPENAI_API_KEY"])
	}
	if providers[sectionLLM] == "openai" {
		set("llm.api_key", vars["OPENAI_API_KEY"])
	}
	if providers[sectionLLM] == "anthropic" {
		set("llm.api_key", vars["ANTHROPIC_API_KEY"])
	}

	for name, value := range vars {
		if !strings.HasPrefix(name, EnvPrefix) || value == "" {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		out[key] = value
	}
	return out
}

// envName is the RAGDOCS_ variable suffix for a config key.
func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "__"))
}

func sectionOf(key string) string {
	section, _, _ := strings.Cut(key, ".")
	return section
}
