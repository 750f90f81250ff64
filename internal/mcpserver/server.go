package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"svcseq/internal/app"
	"svcseq/internal/cli"
	"svcseq/internal/reporting"
	"svcseq/internal/services"
	"svcseq/pkg/logging"
)

const subsystem = "MCP"

// Server serves svcseq operations as MCP tools.
type Server struct {
	app     *app.Application
	version string

	// runs serializes tool calls that touch services; targets are only
	// ever processed one at a time.
	runs sync.Mutex

	mcp *server.MCPServer
}

// NewServer registers the svcseq tools on a new MCP server.
func NewServer(a *app.Application, version string) *Server {
	s := &Server{
		app:     a,
		version: version,
		mcp: server.NewMCPServer(
			"svcseq",
			version,
			server.WithToolCapabilities(false),
		),
	}

	handlers := map[string]server.ToolHandlerFunc{
		"service_status": s.HandleServiceStatus,
		"ensure_running": s.HandleEnsureRunning,
		"wait_running":   s.HandleWaitRunning,
		"start_plan":     s.HandleStartPlan,
		"show_plan":      s.HandleShowPlan,
	}
	for _, tool := range s.Tools() {
		s.mcp.AddTool(tool, handlers[tool.Name])
	}
	return s
}

// Tools returns the tool definitions served by s.
func (s *Server) Tools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("service_status",
			mcp.WithDescription("Query the current status of a Windows service"),
			mcp.WithString("server", mcp.Required(), mcp.Description("Host the service runs on")),
			mcp.WithString("service", mcp.Required(), mcp.Description("Service name as known to the service control manager")),
		),
		mcp.NewTool("ensure_running",
			mcp.WithDescription("Start a Windows service if it is not running and wait until it reports Running"),
			mcp.WithString("server", mcp.Required(), mcp.Description("Host the service runs on")),
			mcp.WithString("service", mcp.Required(), mcp.Description("Service name as known to the service control manager")),
			mcp.WithString("start_timeout", mcp.Description("How long to wait after the start request, e.g. 90s")),
		),
		mcp.NewTool("wait_running",
			mcp.WithDescription("Wait until a Windows service reports Running without starting it"),
			mcp.WithString("server", mcp.Required(), mcp.Description("Host the service runs on")),
			mcp.WithString("service", mcp.Required(), mcp.Description("Service name as known to the service control manager")),
			mcp.WithString("timeout", mcp.Description("How long to wait, e.g. 60s")),
		),
		mcp.NewTool("start_plan",
			mcp.WithDescription("Bring up every configured service in order"),
		),
		mcp.NewTool("show_plan",
			mcp.WithDescription("Show the configured startup order and effective timing"),
		),
	}
}

// HandleServiceStatus handles the service_status tool call
func (s *Server) HandleServiceStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, errResult := s.targetFromRequest(req)
	if errResult != nil {
		return errResult, nil
	}

	svcs, err := s.app.Services(reporting.NewConsoleReporter())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to initialize services: %v", err)), nil
	}

	s.runs.Lock()
	status := svcs.Controller.QueryStatus(ctx, target)
	s.runs.Unlock()

	return jsonResult(cli.StatusView{
		Server:  target.Server,
		Service: target.ServiceName,
		Status:  status.String(),
	})
}

// HandleEnsureRunning handles the ensure_running tool call
func (s *Server) HandleEnsureRunning(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, errResult := s.targetFromRequest(req)
	if errResult != nil {
		return errResult, nil
	}
	timeout, err := durationArg(req, "start_timeout")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if timeout == 0 {
		timeout = target.StartTimeout
	}
	if timeout == 0 {
		timeout = s.app.Settings().Timing.StartTimeout
	}

	svcs, err := s.app.Services(reporting.NewConsoleReporter())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to initialize services: %v", err)), nil
	}

	s.runs.Lock()
	outcome := svcs.Controller.EnsureRunning(ctx, target, timeout)
	s.runs.Unlock()

	view := cli.NewOutcomeView(outcome)
	if !outcome.Succeeded {
		return errorJSONResult(view)
	}
	return jsonResult(view)
}

// HandleWaitRunning handles the wait_running tool call
func (s *Server) HandleWaitRunning(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, errResult := s.targetFromRequest(req)
	if errResult != nil {
		return errResult, nil
	}
	timeout, err := durationArg(req, "timeout")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if timeout == 0 {
		timeout = s.app.Settings().Timing.WaitTimeout
	}

	svcs, err := s.app.Services(reporting.NewConsoleReporter())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to initialize services: %v", err)), nil
	}

	s.runs.Lock()
	res := svcs.Controller.WaitUntilRunning(ctx, target, timeout, target.PollInterval)
	s.runs.Unlock()

	result := map[string]interface{}{
		"server":     target.Server,
		"service":    target.ServiceName,
		"running":    res.Running,
		"polls":      res.Polls,
		"lastStatus": res.LastStatus.String(),
	}
	if res.LastErr != nil {
		result["error"] = res.LastErr.Error()
	}
	if !res.Running {
		return errorJSONResult(result)
	}
	return jsonResult(result)
}

// HandleStartPlan handles the start_plan tool call
func (s *Server) HandleStartPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if len(s.app.Plan()) == 0 {
		return mcp.NewToolResultError("No services configured"), nil
	}

	svcs, err := s.app.Services(reporting.NewConsoleReporter())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to initialize services: %v", err)), nil
	}

	s.runs.Lock()
	result := svcs.Orchestrator.Run(ctx, s.app.Plan())
	s.runs.Unlock()

	view := cli.NewRunView(result)
	if !view.Succeeded {
		return errorJSONResult(view)
	}
	return jsonResult(view)
}

// HandleShowPlan handles the show_plan tool call
func (s *Server) HandleShowPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(cli.NewPlanView(s.app.Settings()))
}

// ServeStdio serves the tools on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	logging.Info(subsystem, "Serving %d tools over stdio", len(s.Tools()))
	return server.ServeStdio(s.mcp)
}

// ServeSSE serves the tools over server-sent events on addr until ctx is
// cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sseServer := server.NewSSEServer(
		s.mcp,
		server.WithBaseURL("http://"+addr),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
		server.WithKeepAlive(true),
		server.WithKeepAliveInterval(30*time.Second),
	)

	errCh := make(chan error, 1)
	go func() {
		logging.Info(subsystem, "Serving %d tools over SSE on %s", len(s.Tools()), addr)
		if err := sseServer.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sseServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(subsystem, err, "Error shutting down SSE server")
		return err
	}
	return nil
}

// targetFromRequest reads server and service. A target that is part of the
// plan keeps its configured timing.
func (s *Server) targetFromRequest(req mcp.CallToolRequest) (services.ServiceTarget, *mcp.CallToolResult) {
	host, err := req.RequireString("server")
	if err != nil || strings.TrimSpace(host) == "" {
		return services.ServiceTarget{}, mcp.NewToolResultError("server is required")
	}
	name, err := req.RequireString("service")
	if err != nil || strings.TrimSpace(name) == "" {
		return services.ServiceTarget{}, mcp.NewToolResultError("service is required")
	}

	target := services.ServiceTarget{Server: host, ServiceName: name}
	for _, t := range s.app.Plan() {
		if t.Key() == target.Key() {
			return t, nil
		}
	}
	return target, nil
}

func durationArg(req mcp.CallToolRequest, key string) (time.Duration, error) {
	raw := strings.TrimSpace(req.GetString(key, ""))
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %v", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// errorJSONResult returns the full result but flags the call as failed.
func errorJSONResult(v interface{}) (*mcp.CallToolResult, error) {
	result, err := jsonResult(v)
	if result != nil {
		result.IsError = true
	}
	return result, err
}
