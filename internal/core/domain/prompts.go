package domain

// DefaultAnswerSystemPrompt establishes the assistant's role and grounding policy.
const DefaultAnswerSystemPrompt = `You are a helpful Python documentation assistant. Use the provided context from Python documentation to answer questions.
If the context contains relevant information, use it to provide a detailed answer.
If the context doesn't contain enough information, acknowledge this and provide general Python knowledge to help the user.
Always be helpful and provide practical examples when possible.`

// DefaultAnswerUserPrompt wraps the context and the verbatim question.
// Placeholders: {{context}} and {{question}}.
const DefaultAnswerUserPrompt = `Context from Python documentation:
{{context}}

Question: {{question}}

Please provide a helpful answer based on the context above and your knowledge of Python.`
