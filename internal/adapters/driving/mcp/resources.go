package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// articlesURI identifies the article collection resource.
const articlesURI = "wallapocket://articles"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         articlesURI,
		Name:        "articles",
		Description: "The current list of recent articles, newest first",
		MIMEType:    "application/json",
	}, s.handleArticlesResource)
}

// handleArticlesResource returns the collection as JSON.
func (s *Server) handleArticlesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if req.Params.URI != articlesURI {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(toOutputs(s.ports.Sync.Articles()), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling articles: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
