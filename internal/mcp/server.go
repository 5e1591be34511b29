package mcp

import (
	"context"
	"errors"
	"fmt"

	"mcs-risk/internal/forecast"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

const (
	serverName    = "mcs-risk"
	serverVersion = "0.1.0"
)

// Server exposes the forecasting service as MCP tools over stdio.
type Server struct {
	service       *forecast.Service
	enableMermaid bool
	mcpServer     *mcp.Server
}

// NewServer creates the MCP server and registers its tools.
func NewServer(service *forecast.Service, enableMermaid bool) (*Server, error) {
	s := &Server{
		service:       service,
		enableMermaid: enableMermaid,
		mcpServer: mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
			Instructions: "Monte-Carlo schedule and cost risk forecasting for construction projects. " +
				"Call 'list_projects' first, then 'run_risk_simulation'. Past runs are archived and can be reviewed with 'list_simulations' and 'get_simulation'.",
		}),
	}
	if err := s.registerTools(); err != nil {
		return nil, err
	}
	return s, nil
}

// Serve runs the server on stdin/stdout until the client disconnects or ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Str("version", serverVersion).Msg("MCP server listening on stdio")
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
