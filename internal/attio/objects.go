package attio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Attribute is the subset of an Attio attribute definition the relay cares about
type Attribute struct {
	APISlug       string `json:"api_slug" yaml:"api_slug"`
	Title         string `json:"title" yaml:"title"`
	Type          string `json:"type" yaml:"type"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	IsRequired    bool   `json:"is_required" yaml:"is_required"`
	IsUnique      bool   `json:"is_unique" yaml:"is_unique"`
	IsMultiselect bool   `json:"is_multiselect" yaml:"is_multiselect"`
}

// FetchSchema returns the attribute definitions of the object named by objectSlug,
// exactly as Attio sent them
func (c *Client) FetchSchema(ctx context.Context, credential, objectSlug string) (json.RawMessage, error) {
	if credential == "" {
		return nil, missingCredential()
	}
	if objectSlug == "" {
		return nil, missingParameter("object_slug")
	}

	return c.doJSON(ctx, credential, call{
		method:  http.MethodGet,
		path:    fmt.Sprintf("/objects/%s/attributes", url.PathEscape(objectSlug)),
		onError: fmt.Sprintf("HTTP error fetching object definition for '%s'", objectSlug),
	})
}

// DecodeAttributes parses a FetchSchema payload
func DecodeAttributes(data json.RawMessage) ([]Attribute, error) {
	var attributes []Attribute
	if err := json.Unmarshal(data, &attributes); err != nil {
		return nil, fmt.Errorf("failed to decode attribute definitions: %w", err)
	}
	return attributes, nil
}
