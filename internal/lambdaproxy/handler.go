// Package lambdaproxy serves the relay operations behind an API Gateway proxy integration.
package lambdaproxy

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/ethanbaker/attio-relay/internal/relay"
	"github.com/ethanbaker/attio-relay/pkg/sdk"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const API_PREFIX = "/api"

// Handler routes API Gateway proxy events to the relay service
type Handler struct {
	service *relay.Service
	logger  *log.Logger
}

// NewHandler creates a proxy handler over service
func NewHandler(service *relay.Service, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Handler{service: service, logger: logger}
}

// Handle answers one proxy event. Errors are always rendered into the response, never returned
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := req.RequestContext.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	result := h.route(ctx, req)

	h.logger.WithContext(ctx).WithFields(log.Fields{
		"method":     req.HTTPMethod,
		"path":       req.Path,
		"status":     result.Status,
		"request_id": requestID,
	}).Info("lambda request handled")

	return events.APIGatewayProxyResponse{
		StatusCode: result.Status,
		Headers: map[string]string{
			"Content-Type": relay.CONTENT_TYPE,
			"X-Request-ID": requestID,
		},
		Body: string(result.Body),
	}, nil
}

func (h *Handler) route(ctx context.Context, req events.APIGatewayProxyRequest) relay.Result {
	path := routePath(req)
	if req.HTTPMethod != http.MethodPost || (path != sdk.GET_OBJECT_DEFINITION_PATH && path != sdk.ASSERT_DEAL_PATH) {
		return notFound()
	}

	body, err := decodeBody(req)
	if err != nil {
		return relay.UnparsableBody(err)
	}

	switch path {
	case sdk.GET_OBJECT_DEFINITION_PATH:
		var in sdk.GetObjectDefinitionRequest
		if err := json.Unmarshal(body, &in); err != nil {
			return relay.UnparsableBody(err)
		}
		return h.service.GetObjectDefinition(ctx, &in)

	default:
		var in sdk.AssertDealRequest
		if err := json.Unmarshal(body, &in); err != nil {
			return relay.UnparsableBody(err)
		}
		return h.service.AssertDeal(ctx, &in)
	}
}

// routePath strips the stage prefix API Gateway may leave on the path, then the
// optional '/api' prefix the gateway also serves under
func routePath(req events.APIGatewayProxyRequest) string {
	path := req.Path

	if stage := req.RequestContext.Stage; stage != "" {
		path = trimSegment(path, "/"+stage)
	}
	return trimSegment(path, API_PREFIX)
}

// trimSegment removes prefix only when it is a whole leading path segment
func trimSegment(path, prefix string) string {
	if rest, ok := strings.CutPrefix(path, prefix); ok && strings.HasPrefix(rest, "/") {
		return rest
	}
	return path
}

func decodeBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if req.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(req.Body)
	}
	return []byte(req.Body), nil
}

func notFound() relay.Result {
	return relay.Failure(http.StatusNotFound, sdk.ErrorResponse{Error: "Not found"})
}
