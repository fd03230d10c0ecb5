// Package mcp exposes the advisor as Model Context Protocol tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/krishisaarathi/internal/dispatch"
	"github.com/ziadkadry99/krishisaarathi/internal/profile"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server over the advisory pipeline.
type Server struct {
	classifier dispatch.Classifier
	dispatcher *dispatch.Dispatcher
	profiles   *profile.Service
	mcp        *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(classifier dispatch.Classifier, dispatcher *dispatch.Dispatcher, profiles *profile.Service) *Server {
	s := &Server{
		classifier: classifier,
		dispatcher: dispatcher,
		profiles:   profiles,
	}

	s.mcp = server.NewMCPServer(
		"saarathi",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(classifyIntentTool, s.handleClassifyIntent)
	s.mcp.AddTool(askAdvisorTool, s.handleAskAdvisor)
	s.mcp.AddTool(getRecommendationsTool, s.handleGetRecommendations)
	s.mcp.AddTool(getProfileTool, s.handleGetProfile)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
