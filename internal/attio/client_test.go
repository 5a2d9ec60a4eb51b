package attio

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCredential = "test-token"

// seenRequest is what the fake upstream recorded about a call
type seenRequest struct {
	method string
	path   string // Escaped path
	query  string
	auth   string
	body   []byte
}

// fakeAttio records the last request it received and answers with a fixed response
type fakeAttio struct {
	server *httptest.Server
	calls  atomic.Int32

	status int
	body   string
	delay  time.Duration

	mu   sync.Mutex
	last seenRequest
}

func newFakeAttio(t *testing.T, status int, body string) *fakeAttio {
	t.Helper()
	return newSlowAttio(t, status, body, 0)
}

// newSlowAttio answers only after delay, or gives up when the caller goes away
func newSlowAttio(t *testing.T, status int, body string, delay time.Duration) *fakeAttio {
	t.Helper()

	f := &fakeAttio{status: status, body: body, delay: delay}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.last = seenRequest{
			method: r.Method,
			path:   r.URL.EscapedPath(),
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
			body:   body,
		}
		f.mu.Unlock()
		f.calls.Add(1)

		if f.delay > 0 {
			select {
			case <-time.After(f.delay):
			case <-r.Context().Done():
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		io.WriteString(w, f.body)
	}))
	t.Cleanup(f.server.Close)

	return f
}

func (f *fakeAttio) seen() seenRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *fakeAttio) client(opts ...Option) *Client {
	return NewClient(f.server.URL+"/v2/", opts...)
}

func TestNewClient(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := NewClient("")
		assert.Equal(t, DEFAULT_BASE_URL, c.BaseURL())
		assert.Equal(t, DEFAULT_TIMEOUT, c.Timeout())
	})

	t.Run("options", func(t *testing.T) {
		c := NewClient("http://localhost:1234/v2/", WithTimeout(3*time.Second), WithTransport(nil), WithLogger(nil))
		assert.Equal(t, "http://localhost:1234/v2", c.BaseURL())
		assert.Equal(t, 3*time.Second, c.Timeout())
		assert.NotNil(t, c.transport)
		assert.NotNil(t, c.logger)
	})

	t.Run("non-positive timeout is ignored", func(t *testing.T) {
		c := NewClient("", WithTimeout(0))
		assert.Equal(t, DEFAULT_TIMEOUT, c.Timeout())
	})
}

func TestFetchSchema(t *testing.T) {
	t.Run("returns data unmodified", func(t *testing.T) {
		data := `[{"api_slug":"name","title":"Name","type":"text"},{"api_slug":"value","title":"Deal value","type":"currency"}]`
		f := newFakeAttio(t, http.StatusOK, `{"data":`+data+`}`)

		got, err := f.client().FetchSchema(context.Background(), testCredential, "deals")
		require.NoError(t, err)

		seen := f.seen()
		assert.JSONEq(t, data, string(got))
		assert.Equal(t, http.MethodGet, seen.method)
		assert.Equal(t, "/v2/objects/deals/attributes", seen.path)
		assert.Equal(t, "Bearer "+testCredential, seen.auth)
		assert.EqualValues(t, 1, f.calls.Load())
	})

	t.Run("missing credential makes no call", func(t *testing.T) {
		f := newFakeAttio(t, http.StatusOK, `{"data":[]}`)

		_, err := f.client().FetchSchema(context.Background(), "", "deals")
		require.Error(t, err)

		assert.Equal(t, KindMissingCredential, KindOf(err))
		assert.Equal(t, MESSAGE_MISSING_CREDENTIAL, err.Error())
		assert.EqualValues(t, 0, f.calls.Load())
	})

	t.Run("missing slug makes no call", func(t *testing.T) {
		f := newFakeAttio(t, http.StatusOK, `{"data":[]}`)

		_, err := f.client().FetchSchema(context.Background(), testCredential, "")
		require.Error(t, err)

		assert.Equal(t, KindMissingParameter, KindOf(err))
		assert.Equal(t, "object_slug is required.", err.Error())
		assert.EqualValues(t, 0, f.calls.Load())
	})

	t.Run("remote rejection keeps status and body", func(t *testing.T) {
		f := newFakeAttio(t, http.StatusNotFound, `{"error":"not found"}`)

		_, err := f.client().FetchSchema(context.Background(), testCredential, "widgets")
		require.Error(t, err)

		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, KindRemoteRejected, e.Kind)
		assert.Equal(t, http.StatusNotFound, e.StatusCode)
		assert.Equal(t, `{"error":"not found"}`, e.Body)
		assert.Equal(t, "HTTP error fetching object definition for 'widgets'", e.Message)
	})

	t.Run("undecodable success body is internal", func(t *testing.T) {
		f := newFakeAttio(t, http.StatusOK, `not json`)

		_, err := f.client().FetchSchema(context.Background(), testCredential, "deals")
		require.Error(t, err)
		assert.Equal(t, KindInternal, KindOf(err))
	})

	t.Run("connection failure is a transport error", func(t *testing.T) {
		f := newFakeAttio(t, http.StatusOK, `{"data":[]}`)
		c := f.client()
		f.server.Close()

		_, err := c.FetchSchema(context.Background(), testCredential, "deals")
		require.Error(t, err)
		assert.Equal(t, KindTransport, KindOf(err))
	})

	t.Run("timeout is a transport error", func(t *testing.T) {
		f := newSlowAttio(t, http.StatusOK, `{"data":[]}`, time.Second)

		_, err := f.client(WithTimeout(50*time.Millisecond)).FetchSchema(context.Background(), testCredential, "deals")
		require.Error(t, err)
		assert.Equal(t, KindTransport, KindOf(err))
	})

	t.Run("slug is path escaped", func(t *testing.T) {
		f := newFakeAttio(t, http.StatusOK, `{"data":[]}`)

		_, err := f.client().FetchSchema(context.Background(), testCredential, "a/b")
		require.NoError(t, err)
		assert.Equal(t, "/v2/objects/a%2Fb/attributes", f.seen().path)
		assert.EqualValues(t, 1, f.calls.Load())
	})
}

func TestAssertDeal(t *testing.T) {
	t.Run("sends matching attribute and exact body", func(t *testing.T) {
		record := `{"id":{"workspace_id":"w","object_id":"o","record_id":"r"},"values":{}}`
		f := newFakeAttio(t, http.StatusOK, `{"data":`+record+`}`)

		got, err := f.client().AssertDeal(
			context.Background(),
			testCredential,
			json.RawMessage(`{"name":"Acme","deal_value":100}`),
			"name",
		)
		require.NoError(t, err)

		seen := f.seen()
		assert.JSONEq(t, record, string(got))
		assert.Equal(t, http.MethodPut, seen.method)
		assert.Equal(t, "/v2/objects/deals/records", seen.path)
		assert.Equal(t, "matching_attribute=name", seen.query)
		assert.Equal(t, `{"data":{"values":{"name":"Acme","deal_value":100}}}`, string(seen.body))
		assert.Equal(t, "Bearer "+testCredential, seen.auth)
	})

	t.Run("missing input makes no call", func(t *testing.T) {
		f := newFakeAttio(t, http.StatusOK, `{"data":{}}`)
		c := f.client()

		tests := []struct {
			name       string
			credential string
			attributes string
			matching   string
			kind       ErrorKind
		}{
			{"no credential", "", `{"name":"Acme"}`, "name", KindMissingCredential},
			{"no attributes", testCredential, ``, "name", KindMissingParameter},
			{"empty attributes", testCredential, `{}`, "name", KindMissingParameter},
			{"non-object attributes", testCredential, `["name"]`, "name", KindMissingParameter},
			{"no matching attribute", testCredential, `{"name":"Acme"}`, "", KindMissingParameter},
		}

		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				_, err := c.AssertDeal(context.Background(), test.credential, json.RawMessage(test.attributes), test.matching)
				require.Error(t, err)
				assert.Equal(t, test.kind, KindOf(err))
			})
		}

		assert.EqualValues(t, 0, f.calls.Load())
	})

	t.Run("remote rejection", func(t *testing.T) {
		f := newFakeAttio(t, http.StatusBadRequest, `{"message":"bad attribute"}`)

		_, err := f.client().AssertDeal(context.Background(), testCredential, json.RawMessage(`{"x":1}`), "x")

		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, KindRemoteRejected, e.Kind)
		assert.Equal(t, http.StatusBadRequest, e.StatusCode)
		assert.Equal(t, "HTTP error asserting deal", e.Message)
		assert.Equal(t, `{"message":"bad attribute"}`, e.Body)
	})
}

func TestIsAttributeSet(t *testing.T) {
	assert.True(t, IsAttributeSet(json.RawMessage(`{"name":"Acme"}`)))
	assert.False(t, IsAttributeSet(nil))
	assert.False(t, IsAttributeSet(json.RawMessage(`null`)))
	assert.False(t, IsAttributeSet(json.RawMessage(`{}`)))
	assert.False(t, IsAttributeSet(json.RawMessage(`"name"`)))
}

func TestDecode(t *testing.T) {
	attributes, err := DecodeAttributes(json.RawMessage(`[{"api_slug":"name","title":"Name","type":"text","is_required":true}]`))
	require.NoError(t, err)
	require.Len(t, attributes, 1)
	assert.Equal(t, Attribute{APISlug: "name", Title: "Name", Type: "text", IsRequired: true}, attributes[0])

	record, err := DecodeRecord(json.RawMessage(`{"id":{"record_id":"r1"},"created_at":"2024-01-01T00:00:00Z","values":{"name":[]}}`))
	require.NoError(t, err)
	assert.Equal(t, "r1", record.ID.RecordID)
	assert.Len(t, record.Values, 1)

	_, err = DecodeAttributes(json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "missing_credential", KindMissingCredential.String())
	assert.Equal(t, "missing_parameter", KindMissingParameter.String())
	assert.Equal(t, "remote_rejected", KindRemoteRejected.String())
	assert.Equal(t, "transport_error", KindTransport.String())
	assert.Equal(t, "internal_error", KindInternal.String())
	assert.Equal(t, KindInternal, KindOf(io.EOF))
}

func TestRedirects(t *testing.T) {
	t.Run("credential never follows a redirect to another host", func(t *testing.T) {
		other := newFakeAttio(t, http.StatusOK, `{"data":[]}`)

		redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, other.server.URL+"/v2/objects/deals/attributes", http.StatusFound)
		}))
		defer redirecting.Close()

		_, err := NewClient(redirecting.URL+"/v2").FetchSchema(context.Background(), testCredential, "deals")
		require.Error(t, err)

		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, KindRemoteRejected, e.Kind)
		assert.Equal(t, http.StatusFound, e.StatusCode)

		assert.EqualValues(t, 0, other.calls.Load())
		assert.Empty(t, other.seen().auth)
	})

	t.Run("same host redirect keeps the credential", func(t *testing.T) {
		var mu sync.Mutex
		var auth string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v2/moved" {
				http.Redirect(w, r, "/v2/moved", http.StatusTemporaryRedirect)
				return
			}

			mu.Lock()
			auth = r.Header.Get("Authorization")
			mu.Unlock()

			io.WriteString(w, `{"data":[{"api_slug":"name"}]}`)
		}))
		defer server.Close()

		got, err := NewClient(server.URL+"/v2").FetchSchema(context.Background(), testCredential, "deals")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"api_slug":"name"}]`, string(got))

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "Bearer "+testCredential, auth)
	})
}
