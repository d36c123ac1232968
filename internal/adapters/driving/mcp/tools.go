package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question   string `json:"question" jsonschema:"the question about the Python documentation"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"number of passages to ground the answer on, 1 to 10 (default 3)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Question    string         `json:"question"`
	Answer      string         `json:"answer"`
	SourcesUsed int            `json:"sourcesUsed"`
	Sources     []SourceOutput `json:"sources"`
}

// SourceOutput is one passage an answer cites.
type SourceOutput struct {
	SourceKey  string `json:"sourceKey"`
	ChunkIndex int    `json:"chunkIndex"`
	Preview    string `json:"preview"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Question string `json:"question" jsonschema:"the question to find passages for"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of passages to return, 1 to 10 (default 3)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput is one ranked passage.
type PassageOutput struct {
	ID         string  `json:"id"`
	SourceKey  string  `json:"sourceKey"`
	ChunkIndex int     `json:"chunkIndex"`
	Rank       int     `json:"rank"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the indexed Python documentation, citing the passages used",
	}, s.handleAsk)

	if s.ports.Retrieve != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "retrieve",
			Description: "Return the documentation passages most similar to a question, without generating an answer",
		}, s.handleRetrieve)
	}
}

// handleAsk handles the ask tool invocation.
// Errors carry public messages only.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	maxResults := input.MaxResults
	if maxResults == 0 {
		maxResults = domain.DefaultTopK
	}

	answer, err := s.ports.Ask.Ask(ctx, input.Question, maxResults)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Question:    answer.Question,
		Answer:      answer.Text,
		SourcesUsed: answer.SourcesUsed,
		Sources:     make([]SourceOutput, len(answer.Sources)),
	}
	for i, src := range answer.Sources {
		output.Sources[i] = SourceOutput{
			SourceKey:  src.SourceKey,
			ChunkIndex: src.ChunkIndex,
			Preview:    src.Preview,
		}
	}

	return nil, output, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	topK := input.TopK
	if topK == 0 {
		topK = domain.DefaultTopK
	}

	passages, err := s.ports.Retrieve.Retrieve(ctx, input.Question, topK)
	if err != nil {
		return nil, RetrieveOutput{}, publicError(err)
	}

	output := RetrieveOutput{
		Passages: make([]PassageOutput, len(passages)),
		Count:    len(passages),
	}
	for i := range passages {
		output.Passages[i] = PassageOutput{
			ID:         passages[i].ID,
			SourceKey:  passages[i].SourceKey,
			ChunkIndex: passages[i].ChunkIndex,
			Rank:       passages[i].Rank,
			Score:      passages[i].Score,
			Content:    passages[i].Content,
		}
	}

	return nil, output, nil
}

// publicError hides provider detail from retrieval failures.
// Validation errors pass through unchanged.
func publicError(err error) error {
	category := domain.CategoryOf(err)
	if category == domain.CategoryValidation {
		return err
	}
	logger.Error(err, "mcp: retrieve failed")
	return &domain.PublicError{Category: category, Message: domain.UnavailableMessage, Err: err}
}
