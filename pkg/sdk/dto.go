package sdk

import (
	"encoding/json"
)

/** Requests */

// GetObjectDefinitionRequest represents the request body for fetching an object's attributes
type GetObjectDefinitionRequest struct {
	AttioAPIKey string `json:"attio_api_key,omitempty"` // Attio bearer credential
	Credential  string `json:"credential,omitempty"`    // Alternate spelling of attio_api_key
	ObjectSlug  string `json:"object_slug"`             // Object whose attributes are fetched
}

// APIKey returns the credential supplied under either spelling
func (r *GetObjectDefinitionRequest) APIKey() string {
	return firstNonEmpty(r.AttioAPIKey, r.Credential)
}

// AssertDealRequest represents the request body for upserting a deal
type AssertDealRequest struct {
	AttioAPIKey       string          `json:"attio_api_key,omitempty"` // Attio bearer credential
	Credential        string          `json:"credential,omitempty"`    // Alternate spelling of attio_api_key
	DealAttributes    json.RawMessage `json:"deal_attributes"`         // Attribute slug to value, forwarded verbatim
	MatchingAttribute string          `json:"matching_attribute"`      // Attribute slug Attio matches existing deals on
}

// APIKey returns the credential supplied under either spelling
func (r *AssertDealRequest) APIKey() string {
	return firstNonEmpty(r.AttioAPIKey, r.Credential)
}

/** Responses */

// ErrorResponse is the body of every non-200 gateway response
type ErrorResponse struct {
	Error      string `json:"error"`                 // Human-readable message
	StatusCode int    `json:"status_code,omitempty"` // Status returned by Attio, when Attio rejected the call
	Details    string `json:"details,omitempty"`     // Raw Attio response body or parse error
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
