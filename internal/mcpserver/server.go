package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"leakctl/internal/config"
	"leakctl/internal/harness"
	"leakctl/internal/leakcheck"
	"leakctl/internal/suite"
	"leakctl/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const serverName = "leakctl"

// Server serves leak detection tools.
type Server struct {
	suites []*suite.Suite
	config config.LeakctlConfig

	mcpServer *server.MCPServer
}

// New creates a server over suites. cfg supplies the defaults of tool
// arguments.
func New(suites []*suite.Suite, cfg config.LeakctlConfig, version string) *Server {
	s := &Server{
		suites: suites,
		config: cfg,
		mcpServer: server.NewMCPServer(
			serverName,
			version,
			server.WithToolCapabilities(true),
		),
	}
	s.mcpServer.AddTools(s.Tools()...)
	return s
}

// Tools returns the tools registered on the server.
func (s *Server) Tools() []server.ServerTool {
	strategies := make([]string, 0, len(leakcheck.Strategies()))
	for _, st := range leakcheck.Strategies() {
		strategies = append(strategies, string(st))
	}

	return []server.ServerTool{
		{
			Tool: mcp.NewTool("leak_list_tests",
				mcp.WithDescription("List the tests of the loaded suites"),
				mcp.WithString("module",
					mcp.Description("Only list modules whose name contains this text"),
				),
				mcp.WithString("test",
					mcp.Description("Only list tests whose name contains this text"),
				),
			),
			Handler: s.HandleListTests,
		},
		{
			Tool: mcp.NewTool("leak_run_suite",
				mcp.WithDescription("Run the loaded suites with owner leak detection and report leaked owners"),
				mcp.WithString("strategy",
					mcp.Description("When leak checkpoints run"),
					mcp.Enum(strategies...),
				),
				mcp.WithString("module",
					mcp.Description("Only run modules whose name contains this text"),
				),
				mcp.WithString("test",
					mcp.Description("Only run tests whose name contains this text"),
				),
				mcp.WithNumber("gc_passes",
					mcp.Description("Collection cycles per checkpoint (3 to 100)"),
				),
				mcp.WithBoolean("disable",
					mcp.Description("Run without leak detection"),
				),
			),
			Handler: s.HandleRunSuite,
		},
	}
}

// ServeStdio serves the tools on stdin and stdout until the client
// disconnects.
func (s *Server) ServeStdio() error {
	logging.Info("MCP", "Serving %d tool(s) over stdio", len(s.Tools()))
	return server.ServeStdio(s.mcpServer)
}

// HandleListTests handles the leak_list_tests tool call.
func (s *Server) HandleListTests(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	suites, err := suite.Filter(s.suites, req.GetString("module", ""), req.GetString("test", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(suite.List(suites))
}

// HandleRunSuite handles the leak_run_suite tool call.
func (s *Server) HandleRunSuite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	strategy, err := config.ParseStrategy(req.GetString("strategy", s.config.Strategy))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	passes := s.config.GCPasses
	if raw, ok := req.GetArguments()["gc_passes"]; ok {
		n, ok := raw.(float64)
		if !ok || n < 0 || n > leakcheck.MaxPasses || n != math.Trunc(n) {
			return mcp.NewToolResultError(fmt.Sprintf("gc_passes must be a whole number between 0 and %d", leakcheck.MaxPasses)), nil
		}
		passes = int(n)
	}

	suites, err := suite.Filter(s.suites, req.GetString("module", ""), req.GetString("test", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := suite.Run(ctx, suites, suite.RunOptions{
		Strategy: strategy,
		GCPasses: passes,
		Disabled: req.GetBool("disable", s.config.Disabled),
		Harness: harness.Configuration{
			RequireAssertions: s.config.RequireAssertions,
		},
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Run failed: %v", err)), nil
	}
	return jsonResult(Summarize(strategy, result))
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
