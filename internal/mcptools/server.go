// Package mcptools exposes the relay operations as Model Context Protocol tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ethanbaker/attio-relay/pkg/sdk"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

const (
	SERVER_NAME    = "attio-relay-tools"
	SERVER_VERSION = "1.1.0"

	STREAMABLE_PATH = "/mcp"
	SSE_PATH        = "/sse"

	TOOL_GET_OBJECT_DEFINITION = "attio_get_object_definition"
	TOOL_ASSERT_DEAL           = "attio_assert_deal"
)

// Relay is the gateway the tools call
type Relay interface {
	GetObjectDefinition(ctx context.Context, req *sdk.GetObjectDefinitionRequest) (json.RawMessage, error)
	AssertDeal(ctx context.Context, req *sdk.AssertDealRequest) (json.RawMessage, error)
}

// GetObjectDefinitionArgs are the arguments of attio_get_object_definition
type GetObjectDefinitionArgs struct {
	AttioAPIKey string `json:"attio_api_key" jsonschema:"Attio API key, sent to Attio as a bearer token"`
	ObjectSlug  string `json:"object_slug" jsonschema:"Slug of the Attio object, e.g. deals"`
}

// AssertDealArgs are the arguments of attio_assert_deal
type AssertDealArgs struct {
	AttioAPIKey       string         `json:"attio_api_key" jsonschema:"Attio API key, sent to Attio as a bearer token"`
	DealAttributes    map[string]any `json:"deal_attributes" jsonschema:"Deal attribute values keyed by attribute slug; values are strings, numbers, booleans or null"`
	MatchingAttribute string         `json:"matching_attribute" jsonschema:"Attribute slug used to find an existing deal to update"`
}

// Tools implements the tool handlers
type Tools struct {
	relay  Relay
	logger *log.Logger
}

// NewTools creates the tool handlers over relay
func NewTools(relay Relay, logger *log.Logger) *Tools {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Tools{relay: relay, logger: logger}
}

// NewServer creates an MCP server with both relay tools registered
func NewServer(tools *Tools) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: SERVER_NAME, Version: SERVER_VERSION}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        TOOL_GET_OBJECT_DEFINITION,
		Description: "Fetch the attribute definitions (slug, title, type) of an Attio object",
	}, tools.GetObjectDefinition)

	mcp.AddTool(server, &mcp.Tool{
		Name:        TOOL_ASSERT_DEAL,
		Description: "Create an Attio deal, or update the deal whose matching attribute has the same value",
	}, tools.AssertDeal)

	return server
}

// NewHTTPHandler serves server over streamable HTTP at STREAMABLE_PATH and over
// the older SSE transport at SSE_PATH
func NewHTTPHandler(server *mcp.Server) http.Handler {
	getServer := func(*http.Request) *mcp.Server { return server }

	mux := http.NewServeMux()
	mux.Handle(STREAMABLE_PATH, mcp.NewStreamableHTTPHandler(getServer, nil))
	mux.Handle(SSE_PATH, mcp.NewSSEHandler(getServer, nil))
	return mux
}

// GetObjectDefinition handles attio_get_object_definition
func (t *Tools) GetObjectDefinition(ctx context.Context, _ *mcp.CallToolRequest, args GetObjectDefinitionArgs) (*mcp.CallToolResult, any, error) {
	if args.AttioAPIKey == "" {
		return errorResult("Attio API key is required."), nil, nil
	}
	if args.ObjectSlug == "" {
		return errorResult("Object slug is required."), nil, nil
	}

	data, err := t.relay.GetObjectDefinition(ctx, &sdk.GetObjectDefinitionRequest{
		AttioAPIKey: args.AttioAPIKey,
		ObjectSlug:  args.ObjectSlug,
	})
	if err != nil {
		return t.relayFailure(TOOL_GET_OBJECT_DEFINITION, err), nil, nil
	}

	return textResult(string(data)), nil, nil
}

// AssertDeal handles attio_assert_deal
func (t *Tools) AssertDeal(ctx context.Context, _ *mcp.CallToolRequest, args AssertDealArgs) (*mcp.CallToolResult, any, error) {
	if args.AttioAPIKey == "" {
		return errorResult("Attio API key is required."), nil, nil
	}
	if args.MatchingAttribute == "" {
		return errorResult("Matching attribute slug is required."), nil, nil
	}

	for slug, value := range args.DealAttributes {
		if !isScalar(value) {
			return errorResult(fmt.Sprintf("Deal attribute %q must be a string, number, boolean or null.", slug)), nil, nil
		}
	}

	attributes, err := json.Marshal(args.DealAttributes)
	if err != nil {
		return errorResult(fmt.Sprintf("Could not encode deal attributes: %v", err)), nil, nil
	}

	data, err := t.relay.AssertDeal(ctx, &sdk.AssertDealRequest{
		AttioAPIKey:       args.AttioAPIKey,
		DealAttributes:    attributes,
		MatchingAttribute: args.MatchingAttribute,
	})
	if err != nil {
		return t.relayFailure(TOOL_ASSERT_DEAL, err), nil, nil
	}

	return textResult(string(data)), nil, nil
}

// relayFailure renders a failed relay call as tool output
func (t *Tools) relayFailure(tool string, err error) *mcp.CallToolResult {
	var apiErr *sdk.APIError
	if errors.As(err, &apiErr) {
		t.logger.WithFields(log.Fields{"tool": tool, "status": apiErr.StatusCode}).Warn("relay returned an error")
		return errorResult(fmt.Sprintf("Error from relay: %s (Status: %d)", apiErr.Body, apiErr.StatusCode))
	}

	t.logger.WithField("tool", tool).WithError(err).Warn("relay call failed")
	return errorResult(fmt.Sprintf("Error calling relay for %s: %v", tool, err))
}

func isScalar(value any) bool {
	switch value.(type) {
	case nil, string, float64, bool, json.Number:
		return true
	}
	return false
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func errorResult(text string) *mcp.CallToolResult {
	result := textResult(text)
	result.IsError = true
	return result
}
