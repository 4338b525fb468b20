// ABOUTME: MCP server initialization and configuration
// ABOUTME: Sets up server with repertoire tools and resources for AI agents

package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/results"
	"github.com/harper/repertoire/internal/rules"
	"github.com/harper/repertoire/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps MCP server with repository access.
type Server struct {
	mcp     *mcp.Server
	repo    storage.Repository
	book    string
	scoring results.Config
	engine  rules.Engine
	logger  *slog.Logger

	// mu serialises load-modify-save cycles on books.
	mu sync.Mutex
}

// NewServer creates MCP server with all capabilities. book is the repertoire
// used when a tool call names none.
func NewServer(repo storage.Repository, book string, scoring results.Config) (*Server, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if err := models.ValidateBookName(book); err != nil {
		return nil, err
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "repertoire",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:     mcpServer,
		repo:    repo,
		book:    book,
		scoring: scoring,
		engine:  rules.NewStandard(),
		logger:  slog.Default(),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server starting", "book", s.book, "read_only", s.repo.IsReadOnly())
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// bookName falls back to the server's default book.
func (s *Server) bookName(name string) string {
	if name == "" {
		return s.book
	}
	return name
}

// loadBook returns the named book, or an error naming it when it is missing.
func (s *Server) loadBook(name string) (*storage.Book, error) {
	book, err := s.repo.LoadRepertoire(name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("book '%s' not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load book: %w", err)
	}
	return book, nil
}

// loadSummary returns the drill statistics of a book.
func (s *Server) loadSummary(name string) (*results.Summary, error) {
	data, err := s.repo.LoadResults(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	return results.Load(data, s.scoring), nil
}
