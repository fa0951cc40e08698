// Command vap-agent composes the VAP media assistant configuration and can
// dial the MCP proxy it declares: inspect the config, list the proxy's
// tools, or invoke one directly.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/vapagentmedia/vap-agent/pkg/agent"
	"github.com/vapagentmedia/vap-agent/pkg/bridge"
	"github.com/vapagentmedia/vap-agent/pkg/bridge/pool"
	"github.com/vapagentmedia/vap-agent/pkg/config"
	"github.com/vapagentmedia/vap-agent/pkg/media"
	"github.com/vapagentmedia/vap-agent/pkg/telemetry"
)

const version = "0.1.0"

type globalFlags struct {
	ConfigPath string
	Timeout    time.Duration
	JSON       bool
	Help       bool
}

type configResult struct {
	Name         string          `json:"name"`
	Model        string          `json:"model"`
	Instructions string          `json:"instructions"`
	Toolsets     []toolsetResult `json:"toolsets"`
}

type toolsetResult struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
	Timeout string            `json:"timeout"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		return
	}

	cfg, err := config.Load(global.ConfigPath)
	if err != nil {
		fatal(err)
	}

	telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	shutdown, err := telemetry.InitWithConfig("vap-agent", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		fatal(err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()

	assistant, err := media.NewAssistantConfig(config.OSLookup,
		media.WithModel(cfg.Agent.Model),
		media.WithName(cfg.Agent.Name),
	)
	if err != nil {
		fatal(err)
	}

	switch cmd := args[0]; cmd {
	case "config":
		runConfig(global, assistant)
	case "tools":
		runTools(ctx, global, assistant)
	case "call":
		runCall(ctx, global, assistant, args[1:])
	case "estimate":
		runEstimate(global, args[1:])
	case "help":
		printUsage()
	case "version":
		fmt.Println("vap-agent " + version)
	default:
		fatal(fmt.Errorf("unknown command %q", cmd))
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	flags := globalFlags{
		Timeout: 30 * time.Second,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return flags, args[i+1:], nil
		}
		if !strings.HasPrefix(arg, "-") {
			return flags, args[i:], nil
		}
		switch {
		case arg == "-h" || arg == "--help":
			flags.Help = true
			return flags, nil, nil
		case arg == "--json":
			flags.JSON = true
		case arg == "--config":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --config")
			}
			flags.ConfigPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			flags.ConfigPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--timeout":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --timeout")
			}
			value, err := time.ParseDuration(args[i+1])
			if err != nil {
				return flags, nil, fmt.Errorf("invalid --timeout: %w", err)
			}
			flags.Timeout = value
			i++
		case strings.HasPrefix(arg, "--timeout="):
			value, err := time.ParseDuration(strings.TrimPrefix(arg, "--timeout="))
			if err != nil {
				return flags, nil, fmt.Errorf("invalid --timeout: %w", err)
			}
			flags.Timeout = value
		default:
			return flags, nil, fmt.Errorf("unknown global flag %q", arg)
		}
	}
	return flags, nil, nil
}

func runConfig(flags globalFlags, assistant *agent.Config) {
	result := configResult{
		Name:         assistant.Name(),
		Model:        assistant.Model(),
		Instructions: assistant.Instructions(),
	}
	for _, desc := range assistant.Toolsets() {
		result.Toolsets = append(result.Toolsets, toolsetResult{
			Command: desc.Command,
			Args:    desc.Args,
			Env:     redactEnv(desc.Env),
			Timeout: desc.Timeout.String(),
		})
	}

	if flags.JSON {
		printJSON(result)
		return
	}

	fmt.Printf("Agent: %s\n", result.Name)
	fmt.Printf("Model: %s\n", result.Model)
	for _, ts := range result.Toolsets {
		fmt.Printf("Tool provider: %s %s (timeout %s)\n", ts.Command, strings.Join(ts.Args, " "), ts.Timeout)
		for _, kv := range sortedEnv(ts.Env) {
			fmt.Printf("  env %s\n", kv)
		}
	}
}

func runTools(ctx context.Context, flags globalFlags, assistant *agent.Config) {
	providers, client := acquireProxyClient(ctx, assistant)
	defer providers.Close()
	defer providers.Release(assistant.Name(), client)

	listCtx, cancel := context.WithTimeout(ctx, flags.Timeout)
	defer cancel()

	tools, err := client.ListTools(listCtx)
	if err != nil {
		fatal(err)
	}

	if flags.JSON {
		printJSON(bridge.ToolDefinitions(tools))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tDESCRIPTION")
	for _, tool := range tools {
		fmt.Fprintf(w, "%s\t%s\n", tool.Name, tool.Description)
	}
	w.Flush()
}

func runCall(ctx context.Context, flags globalFlags, assistant *agent.Config, args []string) {
	if len(args) == 0 {
		fatal(fmt.Errorf("usage: vap-agent call <tool> [json-args]"))
	}
	toolName := args[0]
	input := ""
	if len(args) > 1 {
		input = args[1]
	}

	metrics, err := telemetry.NewBridgeMetrics()
	if err != nil {
		fatal(err)
	}

	providers, client := acquireProxyClient(ctx, assistant, bridge.WithMetrics(metrics))
	defer providers.Close()
	defer providers.Release(assistant.Name(), client)

	listCtx, cancelList := context.WithTimeout(ctx, flags.Timeout)
	defer cancelList()

	tools, err := client.ListTools(listCtx)
	if err != nil {
		fatal(err)
	}

	var adapter *bridge.ToolAdapter
	for _, tool := range tools {
		if tool.Name == toolName {
			adapter, err = bridge.NewToolAdapter(tool, client, bridge.WithArgValidator(media.ValidateToolArgs))
			if err != nil {
				fatal(err)
			}
			break
		}
	}
	if adapter == nil {
		fatal(fmt.Errorf("tool %q not found on provider", toolName))
	}

	callCtx, cancelCall := context.WithTimeout(ctx, flags.Timeout)
	defer cancelCall()

	output, err := adapter.Call(callCtx, input)
	if err != nil {
		fatal(err)
	}

	if flags.JSON {
		printJSON(output)
		return
	}
	fmt.Println(output)
}

func runEstimate(flags globalFlags, args []string) {
	if len(args) == 0 {
		fatal(fmt.Errorf("usage: vap-agent estimate <image|video|music> [count]"))
	}
	kind := media.Kind(args[0])
	count := 1
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			fatal(fmt.Errorf("invalid count %q", args[1]))
		}
		count = n
	}

	unit, err := media.Price(kind)
	if err != nil {
		fatal(err)
	}
	total, err := media.EstimateCost(kind, count)
	if err != nil {
		fatal(err)
	}

	if flags.JSON {
		printJSON(map[string]any{
			"kind":           kind,
			"count":          count,
			"unit_price_usd": unit,
			"total_usd":      total,
		})
		return
	}
	fmt.Printf("%d %s x $%.2f = $%.2f\n", count, kind, unit, total)
}

// acquireProxyClient registers the assistant's tool provider in a connection
// pool and checks out a client. The caller releases the client back and
// closes the pool when done; subcommands that list and then call share the
// same child process through it.
func acquireProxyClient(ctx context.Context, assistant *agent.Config, opts ...bridge.ClientOption) (*pool.Pool, *bridge.Client) {
	toolsets := assistant.Toolsets()
	if len(toolsets) == 0 {
		fatal(fmt.Errorf("agent config declares no tool providers"))
	}

	providers := pool.New()
	if err := providers.Register(assistant.Name(), toolsets[0], opts...); err != nil {
		_ = providers.Close()
		fatal(err)
	}
	client, err := providers.Get(ctx, assistant.Name())
	if err != nil {
		_ = providers.Close()
		fatal(err)
	}
	return providers, client
}

// redactEnv masks the credential so config output can be shared safely.
func redactEnv(env map[string]string) map[string]string {
	out := make(map[string]string, len(env))
	for k, v := range env {
		if k == config.EnvAPIKey && v != "" {
			out[k] = "***"
			continue
		}
		out[k] = v
	}
	return out
}

func sortedEnv(env map[string]string) []string {
	desc := bridge.ConnectionDescriptor{Env: env}
	return desc.EnvSlice()
}

func printJSON(value any) {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(payload))
}

func printUsage() {
	fmt.Println(`vap-agent - VAP media assistant configuration and tool bridge

Usage:
  vap-agent [global flags] <command> [args]

Global flags:
  --config <path>      Path to config.yaml
  --timeout <dur>      Request timeout (default 30s)
  --json               JSON output

Commands:
  config               Print the composed agent configuration
  tools                Launch the MCP proxy and list its tools
  call <tool> [args]   Invoke a proxy tool with optional JSON arguments
  estimate <kind> [n]  Estimate generation cost for image, video, or music
  version
  help

Environment:
  VAP_API_KEY          VAP API key (VAPE_API_KEY is honored as a legacy alias)
  VAP_MCP_PROXY_PATH   Proxy script path (default ~/vap_mcp_proxy.py)
  VAP_API_URL          MCP endpoint override
  VAP_API_BASE_URL     API base URL override`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
