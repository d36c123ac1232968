package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or fall back to built-in defaults.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAnswerSystem establishes the assistant's role and grounding policy.
	// No placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser wraps the context and question.
	// Placeholders: {{context}} and {{question}}.
	PromptAnswerUser = "answer_user"
)
