// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/bookshelf/application/service"
	"github.com/helixml/bookshelf/domain/book"
	"github.com/helixml/bookshelf/domain/search"
	"github.com/helixml/bookshelf/infrastructure/api/v1/dto"
)

// Catalog provides book lookups for MCP tools.
type Catalog interface {
	List(ctx context.Context) ([]book.Book, error)
	Book(ctx context.Context, id string) (book.Book, error)
}

// Searcher provides catalog search for MCP tools.
type Searcher interface {
	Query(ctx context.Context, query string) (search.Result, error)
}

// Server wraps the MCP server with bookshelf tools.
type Server struct {
	mcpServer *server.MCPServer
	catalog   Catalog
	searcher  Searcher
	logger    *slog.Logger
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(catalog Catalog, searcher Searcher, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		catalog:  catalog,
		searcher: searcher,
		logger:   logger,
	}

	mcpServer := server.NewMCPServer(
		"bookshelf",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	listTool := mcp.NewTool("list_books",
		mcp.WithDescription("List every book in the catalog, ordered by title"),
	)
	mcpServer.AddTool(listTool, s.handleListBooks)

	getTool := mcp.NewTool("get_book",
		mcp.WithDescription("Get a book with its reviews, newest first"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The UUID of the book"),
		),
	)
	mcpServer.AddTool(getTool, s.handleGetBook)

	searchTool := mcp.NewTool("search",
		mcp.WithDescription("Case-insensitive search over book titles, authors, descriptions and review texts"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search term"),
		),
	)
	mcpServer.AddTool(searchTool, s.handleSearch)
}

func (s *Server) handleListBooks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	books, err := s.catalog.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "list books failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("list books failed: %v", err)), nil
	}
	return jsonResult(dto.BooksFromDomain(books))
}

func (s *Server) handleGetBook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}

	b, err := s.catalog.Book(ctx, id)
	if err != nil {
		var validation *service.ValidationError
		var notFound *service.NotFoundError
		if errors.As(err, &validation) || errors.As(err, &notFound) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s.logger.ErrorContext(ctx, "get book failed", slog.String("id", id), slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("get book failed: %v", err)), nil
	}
	return jsonResult(dto.BookDetailFromDomain(b))
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil
	}

	result, err := s.searcher.Query(ctx, query)
	if err != nil {
		var validation *service.ValidationError
		if errors.As(err, &validation) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s.logger.ErrorContext(ctx, "search failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return jsonResult(dto.SearchResponseFromDomain(result))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
