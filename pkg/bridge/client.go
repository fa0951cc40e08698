package bridge

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	vaperrors "github.com/vapagentmedia/vap-agent/pkg/errors"
	"github.com/vapagentmedia/vap-agent/pkg/telemetry"
)

const (
	defaultRetries  = 2
	defaultBackoff  = 200 * time.Millisecond
	defaultCacheTTL = 30 * time.Second

	initTimeout = 10 * time.Second
)

// ClientOption customizes the bridge client behavior.
type ClientOption func(*Client)

// WithTimeout overrides the per-request timeout taken from the descriptor.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRetry configures retry count and backoff.
func WithRetry(retries int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		if retries >= 0 {
			c.maxRetries = retries
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// WithToolCacheTTL sets the tool discovery cache TTL. Use 0 to disable caching.
func WithToolCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		if ttl >= 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithProtocolVersion pins the MCP protocol version used during initialize.
func WithProtocolVersion(version string) ClientOption {
	return func(c *Client) {
		if version != "" {
			c.protocolVersion = version
		}
	}
}

// WithMetrics attaches bridge call metrics.
func WithMetrics(metrics *telemetry.BridgeMetrics) ClientOption {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// Client wraps an MCP client connected to a tool provider process.
type Client struct {
	id              string
	mcpClient       client.MCPClient
	timeout         time.Duration
	maxRetries      int
	backoff         time.Duration
	cacheTTL        time.Duration
	protocolVersion string
	metrics         *telemetry.BridgeMetrics

	mu          sync.Mutex
	toolsCache  []mcp.Tool
	cacheExpiry time.Time
}

// NewClient creates a Client over an already-connected MCP client
// implementation. Most callers want Dial instead.
func NewClient(c client.MCPClient, opts ...ClientOption) *Client {
	cl := &Client{
		id:              uuid.NewString(),
		mcpClient:       c,
		timeout:         ProxyCallTimeout,
		maxRetries:      defaultRetries,
		backoff:         defaultBackoff,
		cacheTTL:        defaultCacheTTL,
		protocolVersion: mcp.LATEST_PROTOCOL_VERSION,
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// Dial launches the descriptor's command as a child process speaking MCP
// over stdio, initializes the connection, and returns a ready Client. The
// descriptor's timeout becomes the per-call ceiling.
//
// The descriptor's env is the child's entire environment, not an overlay on
// the parent's. The stock stdio transport appends to os.Environ, which would
// let a VAP variable exported in the parent reach a child whose descriptor
// deliberately omits it.
func Dial(ctx context.Context, desc ConnectionDescriptor, opts ...ClientOption) (*Client, error) {
	if err := desc.Validate(); err != nil {
		return nil, vaperrors.New(vaperrors.CodeInvalidInput, "invalid connection descriptor", err)
	}

	stdioClient, err := client.NewStdioMCPClientWithOptions(desc.Command, desc.EnvSlice(), desc.Args,
		transport.WithCommandFunc(func(ctx context.Context, command string, env []string, args []string) (*exec.Cmd, error) {
			cmd := exec.CommandContext(ctx, command, args...)
			cmd.Env = env
			return cmd, nil
		}),
	)
	if err != nil {
		return nil, vaperrors.New(vaperrors.CodeLaunchFailure, "failed to create stdio client", err).
			WithAttribute("command", desc.Command)
	}

	if err := stdioClient.Start(ctx); err != nil {
		return nil, vaperrors.New(vaperrors.CodeLaunchFailure, "failed to start tool provider process", err).
			WithAttribute("command", desc.Command)
	}

	cl := NewClient(stdioClient, append([]ClientOption{WithTimeout(desc.Timeout)}, opts...)...)

	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = cl.protocolVersion
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "vap-agent",
		Version: "0.1.0",
	}

	if _, err := stdioClient.Initialize(initCtx, initRequest); err != nil {
		_ = stdioClient.Close()
		return nil, vaperrors.New(vaperrors.CodeLaunchFailure, "mcp initialize failed", err).
			WithAttribute("command", desc.Command)
	}

	slog.Debug("tool provider connected",
		"connection_id", cl.id,
		"command", desc.Command,
		"timeout", desc.Timeout,
	)
	return cl, nil
}

// ID returns the connection identifier used in logs and metrics.
func (c *Client) ID() string { return c.id }

// ListTools retrieves the list of tools available on the provider.
func (c *Client) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	if cached := c.cachedTools(); cached != nil {
		return cached, nil
	}
	req := mcp.ListToolsRequest{}
	resp, err := c.listToolsWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	c.storeTools(resp.Tools)
	return resp.Tools, nil
}

// CallTool executes a tool on the provider.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	start := time.Now()
	result, err := c.callToolWithRetry(ctx, req)
	c.metrics.RecordCall(ctx, name, time.Since(start), err)
	return result, err
}

// Close closes the client connection and terminates the child process.
func (c *Client) Close() error {
	return c.mcpClient.Close()
}

func (c *Client) cachedTools() []mcp.Tool {
	if c.cacheTTL == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.toolsCache) == 0 || time.Now().After(c.cacheExpiry) {
		return nil
	}
	out := make([]mcp.Tool, len(c.toolsCache))
	copy(out, c.toolsCache)
	return out
}

func (c *Client) storeTools(tools []mcp.Tool) {
	if c.cacheTTL == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toolsCache = make([]mcp.Tool, len(tools))
	copy(c.toolsCache, tools)
	c.cacheExpiry = time.Now().Add(c.cacheTTL)
}

func (c *Client) listToolsWithRetry(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error) {
	var lastErr error
	attempts := c.maxRetries + 1
	for i := 0; i < attempts; i++ {
		reqCtx, cancel := c.withTimeout(ctx)
		res, err := c.mcpClient.ListTools(reqCtx, req)
		cancel()
		if err == nil {
			return res, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, vaperrors.New(vaperrors.CodeTimeout, "tool listing timed out", err)
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		if err := c.sleepBackoff(ctx, i); err != nil {
			return nil, err
		}
	}
	return nil, vaperrors.New(vaperrors.CodeToolFailure, "tool listing failed", lastErr).
		WithRecoverable(true)
}

func (c *Client) callToolWithRetry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var lastErr error
	attempts := c.maxRetries + 1
	for i := 0; i < attempts; i++ {
		reqCtx, cancel := c.withTimeout(ctx)
		res, err := c.mcpClient.CallTool(reqCtx, req)
		cancel()
		if err == nil {
			return res, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, vaperrors.New(vaperrors.CodeTimeout, "tool call timed out", err).
				WithAttribute("tool_name", req.Params.Name)
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		if err := c.sleepBackoff(ctx, i); err != nil {
			return nil, err
		}
	}
	return nil, vaperrors.New(vaperrors.CodeToolFailure, "tool call failed", lastErr).
		WithAttribute("tool_name", req.Params.Name).
		WithRecoverable(true)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) sleepBackoff(ctx context.Context, attempt int) error {
	wait := c.backoff * time.Duration(1<<attempt)
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
