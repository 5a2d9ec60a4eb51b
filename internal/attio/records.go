package attio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

const DEALS_OBJECT = "deals"

// RecordID identifies a record within a workspace
type RecordID struct {
	WorkspaceID string `json:"workspace_id" yaml:"workspace_id"`
	ObjectID    string `json:"object_id" yaml:"object_id"`
	RecordID    string `json:"record_id" yaml:"record_id"`
}

// Record is a created or updated Attio record
type Record struct {
	ID        RecordID       `json:"id" yaml:"id"`
	CreatedAt string         `json:"created_at" yaml:"created_at"`
	WebURL    string         `json:"web_url,omitempty" yaml:"web_url,omitempty"`
	Values    map[string]any `json:"values" yaml:"values"`
}

// assertRecordRequest is the body of an assert (upsert) call
type assertRecordRequest struct {
	Data struct {
		Values json.RawMessage `json:"values"`
	} `json:"data"`
}

// AssertDeal creates a deal, or updates the one whose matchingAttribute equals the
// value in attributes. attributes must be a JSON object and is forwarded verbatim
func (c *Client) AssertDeal(
	ctx context.Context,
	credential string,
	attributes json.RawMessage,
	matchingAttribute string,
) (json.RawMessage, error) {
	if credential == "" {
		return nil, missingCredential()
	}
	if !IsAttributeSet(attributes) {
		return nil, missingParameter("deal_attributes")
	}
	if matchingAttribute == "" {
		return nil, missingParameter("matching_attribute")
	}

	var body assertRecordRequest
	body.Data.Values = attributes

	return c.doJSON(ctx, credential, call{
		method:  http.MethodPut,
		path:    "/objects/" + DEALS_OBJECT + "/records",
		query:   url.Values{"matching_attribute": []string{matchingAttribute}},
		body:    body,
		onError: "HTTP error asserting deal",
	})
}

// IsAttributeSet reports whether raw is a JSON object with at least one member
func IsAttributeSet(raw json.RawMessage) bool {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return false
	}
	return len(members) > 0
}

// DecodeRecord parses an AssertDeal payload
func DecodeRecord(data json.RawMessage) (*Record, error) {
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
