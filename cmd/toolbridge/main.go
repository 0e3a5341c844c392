// Command toolbridge loads declarative tool specs and serves the merged tool
// registry over the Model Context Protocol.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skosovsky/toolbridge"
	"github.com/skosovsky/toolbridge/mcp"
	"github.com/skosovsky/toolbridge/toolkits/calc"
	"github.com/skosovsky/toolbridge/toolkits/calendly"
	"github.com/skosovsky/toolbridge/toolkits/websearch"
)

var (
	configFlag string
	stdioFlag  bool
	schemaFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "toolbridge",
	Short: "toolbridge - declarative HTTP tools and MCP bridge for LLM agents",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tool registry over MCP (streamable HTTP or stdio)",
	RunE:  runServe,
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the registry would expose",
	RunE:  runTools,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "toolbridge.toml", "Path to config file")
	serveCmd.Flags().BoolVar(&stdioFlag, "stdio", false, "Serve over stdio instead of HTTP")
	toolsCmd.Flags().BoolVar(&schemaFlag, "schema", false, "Print full parameter schemas as JSON")
	rootCmd.AddCommand(serveCmd, toolsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildOptions assembles the registry build options from config: limits,
// logging, and the local toolkit tools.
func buildOptions(cfg Config, logger *slog.Logger) ([]toolbridge.Option, error) {
	local, err := calc.Tools()
	if err != nil {
		return nil, fmt.Errorf("calc tools: %w", err)
	}
	if cfg.Calendly.Token != "" {
		for _, spec := range calendly.Specs(cfg.Calendly.BaseURL, cfg.Calendly.Token) {
			tool, err := toolbridge.NewHTTPTool(spec)
			if err != nil {
				return nil, fmt.Errorf("calendly tools: %w", err)
			}
			local = append(local, tool)
		}
	}
	if cfg.Tavily.APIKey != "" {
		searcher, err := websearch.NewSearcher(cfg.Tavily.APIKey)
		if err != nil {
			return nil, err
		}
		search, err := searcher.Tools()
		if err != nil {
			return nil, err
		}
		local = append(local, search...)
	}
	return []toolbridge.Option{
		toolbridge.WithDefaultTimeout(cfg.httpTimeout()),
		toolbridge.WithMaxConcurrency(cfg.Limits.MaxConcurrency),
		toolbridge.WithLogger(logger),
		toolbridge.WithLocalTools(local...),
		toolbridge.WithToolOptions(toolbridge.WithMaxResponseSize(cfg.Limits.MaxResponseSize)),
	}, nil
}

// newProvider returns the remote MCP provider when an endpoint is configured.
func newProvider(cfg Config, logger *slog.Logger) *mcp.Client {
	if cfg.Remote.Endpoint == "" {
		return nil
	}
	return mcp.NewClient(cfg.Remote.Endpoint,
		mcp.WithClientInfo(cfg.Server.Name, cfg.Server.Version),
		mcp.WithClientLogger(logger),
	)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configFlag)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging)

	opts, err := buildOptions(cfg, logger)
	if err != nil {
		return err
	}
	var provider toolbridge.Provider
	if client := newProvider(cfg, logger); client != nil {
		defer func() { _ = client.Close() }()
		provider = client
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var srv *mcp.Server
	reloader := toolbridge.NewReloader(cfg.Specs.Path, provider, opts,
		toolbridge.WithReloadLogger(logger),
		toolbridge.WithOnSwap(func(old, next *toolbridge.Registry) {
			if srv != nil {
				srv.SyncTools(old, next)
			}
		}),
	)
	if err := reloader.Load(ctx); err != nil {
		return fmt.Errorf("load specs: %w", err)
	}
	reg := reloader.Registry()
	for _, c := range reg.Conflicts() {
		logger.Warn("tool merge conflict", "conflict", c.String())
	}

	srv = mcp.NewServer(cfg.Server.Name, cfg.Server.Version, reg,
		mcp.WithServerLogger(logger),
	)

	if cfg.Specs.Watch {
		if err := reloader.Watch(ctx); err != nil {
			return err
		}
		defer func() { _ = reloader.Close() }()
	}

	if stdioFlag {
		logger.Info("serving mcp over stdio", "tools", len(reg.Names()))
		return srv.ServeStdio()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStreamableHTTP(cfg.Server.Addr) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		return reg.Shutdown(context.Background())
	}
}

func runTools(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configFlag)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging)

	opts, err := buildOptions(cfg, logger)
	if err != nil {
		return err
	}
	var provider toolbridge.Provider
	if client := newProvider(cfg, logger); client != nil {
		defer func() { _ = client.Close() }()
		provider = client
	}

	ctx := context.Background()
	specs, err := toolbridge.LoadSpecFile(cfg.Specs.Path)
	if err != nil {
		return fmt.Errorf("load specs: %w", err)
	}
	reg, err := toolbridge.Build(ctx, specs, provider, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = reg.Shutdown(ctx) }()

	for _, t := range reg.Tools() {
		if schemaFlag {
			schema, err := json.MarshalIndent(t.Parameters(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n%s\n", t.Name(), t.Description(), schema)
			continue
		}
		fmt.Printf("%s\t%s\n", t.Name(), t.Description())
	}
	for _, c := range reg.Conflicts() {
		fmt.Fprintln(os.Stderr, "conflict:", c.String())
	}
	return nil
}
