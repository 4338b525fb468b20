// ABOUTME: MCP resource definitions
// ABOUTME: Provides a read-only view of the repertoire for AI agents

package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const positionsURI = "repertoire://positions"

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		Name:        positionsURI,
		Description: "Every position of the default book with its moves, selections and notes",
		URI:         positionsURI,
		MIMEType:    "application/json",
	}, s.handlePositionsResource)
}

func (s *Server) handlePositionsResource(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	book, err := s.loadBook(s.book)
	if err != nil {
		return nil, err
	}

	jsonBytes, _ := json.MarshalIndent(book, "", "  ") //nolint:errchkjson // output is always serializable

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      positionsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		},
	}, nil
}
