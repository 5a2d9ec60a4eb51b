package sdk

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gateway is a fake relay that answers every call with a fixed response
type gateway struct {
	*httptest.Server

	mu     sync.Mutex
	path   string
	apiKey string
	body   map[string]any
}

func newGateway(t *testing.T, status int, body string) *gateway {
	t.Helper()

	g := &gateway{}
	g.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		json.NewDecoder(r.Body).Decode(&in)

		g.mu.Lock()
		g.path = r.URL.Path
		g.apiKey = r.Header.Get("X-API-KEY")
		g.body = in
		g.mu.Unlock()

		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(g.Close)

	return g
}

func (g *gateway) last() (string, string, map[string]any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.path, g.apiKey, g.body
}

func TestGetObjectDefinition(t *testing.T) {
	g := newGateway(t, http.StatusOK, `[{"api_slug":"name"}]`)
	client := NewClient(g.URL+"/", "gateway", time.Second)

	data, err := client.GetObjectDefinition(context.Background(), &GetObjectDefinitionRequest{
		AttioAPIKey: "secret",
		ObjectSlug:  "deals",
	})
	require.NoError(t, err)

	path, apiKey, body := g.last()
	assert.JSONEq(t, `[{"api_slug":"name"}]`, string(data))
	assert.Equal(t, GET_OBJECT_DEFINITION_PATH, path)
	assert.Equal(t, "gateway", apiKey)
	assert.Equal(t, map[string]any{"attio_api_key": "secret", "object_slug": "deals"}, body)
}

func TestAssertDeal(t *testing.T) {
	g := newGateway(t, http.StatusOK, `{"id":{"record_id":"r"}}`)
	client := NewClient(g.URL, "", time.Second)

	_, err := client.AssertDeal(context.Background(), &AssertDealRequest{
		AttioAPIKey:       "secret",
		DealAttributes:    json.RawMessage(`{"name":"Acme"}`),
		MatchingAttribute: "name",
	})
	require.NoError(t, err)

	path, apiKey, body := g.last()
	assert.Equal(t, ASSERT_DEAL_PATH, path)
	assert.Empty(t, apiKey)
	assert.Equal(t, map[string]any{"name": "Acme"}, body["deal_attributes"])
	assert.Equal(t, "name", body["matching_attribute"])
}

func TestAPIError(t *testing.T) {
	g := newGateway(t, http.StatusNotFound, `{"error":"HTTP error asserting deal","status_code":404,"details":"{}"}`)
	client := NewClient(g.URL, "", time.Second)

	_, err := client.AssertDeal(context.Background(), &AssertDealRequest{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "relay returned 404")
	assert.Equal(t, ErrorResponse{Error: "HTTP error asserting deal", StatusCode: 404, Details: "{}"}, apiErr.Decode())
}

func TestRequestAPIKey(t *testing.T) {
	assert.Equal(t, "a", (&GetObjectDefinitionRequest{AttioAPIKey: "a", Credential: "b"}).APIKey())
	assert.Equal(t, "b", (&GetObjectDefinitionRequest{Credential: "b"}).APIKey())
	assert.Equal(t, "b", (&AssertDealRequest{Credential: "b"}).APIKey())
	assert.Empty(t, (&AssertDealRequest{}).APIKey())
}
