package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/NassimMahmoudi/mcp-server/internal/domain"
)

const ToolSearchDocuments = "search_documents_tool"

const searchDocumentsDescription = "Search the documentation repository and return matching documents " +
	"as a JSON list of {id, title, url, content_type, content, meta}."

// SearchDocumentsArgs is the tool input. Limit is a pointer so an omitted
// value can be told apart from an explicit 0.
type SearchDocumentsArgs struct {
	Query string `json:"query" jsonschema:"free-text search query"`
	Limit *int   `json:"limit,omitempty" jsonschema:"maximum number of documents to return, defaults to 20"`
}

func (s *Server) registerTools() {
	openWorld := false
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolSearchDocuments,
		Description: searchDocumentsDescription,
		Annotations: &mcp.ToolAnnotations{
			Title:          "Search documents",
			ReadOnlyHint:   true,
			IdempotentHint: true,
			OpenWorldHint:  &openWorld,
		},
	}, s.searchDocuments)
}

// searchDocuments always succeeds from the protocol's point of view; failures
// are already folded into an empty list by the service.
func (s *Server) searchDocuments(ctx context.Context, _ *mcp.CallToolRequest, args SearchDocumentsArgs) (*mcp.CallToolResult, any, error) {
	query := domain.NewSearchQuery(args.Query, args.Limit, s.cfg.DefaultLimit)
	docs := s.search.SearchDocuments(ctx, query)

	raw, err := json.Marshal(docs)
	if err != nil {
		s.logger.Error("encode tool result", zap.Error(err))
		docs = []any{}
		raw = []byte("[]")
	}

	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(raw)}},
		StructuredContent: map[string]any{"result": docs},
	}, nil, nil
}
