package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethanbaker/attio-relay/internal/mcptools"
	"github.com/ethanbaker/attio-relay/pkg/sdk"
	"github.com/ethanbaker/attio-relay/pkg/utils"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Serve the relay tools over MCP. The tools reach Attio through a running gateway
func main() {
	cfg, err := utils.Load(utils.EnvFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %s\n", err)
		os.Exit(1)
	}

	// stdout belongs to the stdio transport, so logs go to stderr unless LOG_FILE is set
	logger := utils.NewLogger(cfg, nil)
	if cfg.Get("LOG_FILE") == "" {
		logger.Out = os.Stderr
	}
	defer utils.CloseLogger(logger)

	relayURL := cfg.GetWithDefault("RELAY_URL", "http://localhost:5003")
	client := sdk.NewClient(relayURL, cfg.Get("GATEWAY_API_KEY"), cfg.GetDurationWithDefault("RELAY_TIMEOUT", 30*time.Second))

	server := mcptools.NewServer(mcptools.NewTools(client, logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch strings.ToLower(cfg.GetWithDefault("MCP_TRANSPORT", "stdio")) {
	case "stdio":
		logger.Infof("[MCP]: serving tools over stdio, relay at %s", relayURL)
		err = server.Run(ctx, &mcp.StdioTransport{})

	case "http":
		port := cfg.GetWithDefault("MCP_PORT", "5004")
		logger.Infof("[MCP]: serving tools on :%s%s and :%s%s, relay at %s", port, mcptools.STREAMABLE_PATH, port, mcptools.SSE_PATH, relayURL)
		err = serveHTTP(ctx, server, port)

	default:
		err = fmt.Errorf("unknown MCP_TRANSPORT %q", cfg.Get("MCP_TRANSPORT"))
	}

	if err != nil && ctx.Err() == nil {
		logger.Errorf("[MCP]: %s", err)
		utils.CloseLogger(logger)
		os.Exit(2)
	}
}

// serveHTTP serves the HTTP transports until ctx is done
func serveHTTP(ctx context.Context, server *mcp.Server, port string) error {
	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           mcptools.NewHTTPHandler(server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
