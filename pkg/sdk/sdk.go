package sdk

import (
	"context"
	"encoding/json"
	"net/http"
)

const (
	GET_OBJECT_DEFINITION_PATH = "/get_object_definition"
	ASSERT_DEAL_PATH           = "/assert_deal"
)

// GetObjectDefinition fetches the attribute definitions of an Attio object through the gateway
func (c *Client) GetObjectDefinition(ctx context.Context, req *GetObjectDefinitionRequest) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodPost, GET_OBJECT_DEFINITION_PATH, req)
}

// AssertDeal creates or updates a deal through the gateway
func (c *Client) AssertDeal(ctx context.Context, req *AssertDealRequest) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodPost, ASSERT_DEAL_PATH, req)
}
