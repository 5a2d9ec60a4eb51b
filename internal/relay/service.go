package relay

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ethanbaker/attio-relay/internal/attio"
	"github.com/ethanbaker/attio-relay/pkg/sdk"
	log "github.com/sirupsen/logrus"
)

const (
	MESSAGE_MISSING_OBJECT_SLUG = "object_slug is required."
	MESSAGE_MISSING_DEAL_FIELDS = "deal_attributes and matching_attribute are required."
)

// Operations is the pair of Attio calls the relay forwards
type Operations interface {
	FetchSchema(ctx context.Context, credential, objectSlug string) (json.RawMessage, error)
	AssertDeal(ctx context.Context, credential string, attributes json.RawMessage, matchingAttribute string) (json.RawMessage, error)
}

// Service validates gateway requests, runs the matching operation and renders the outcome
type Service struct {
	ops    Operations
	logger *log.Logger
}

// NewService creates a relay service over ops
func NewService(ops Operations, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Service{ops: ops, logger: logger}
}

// GetObjectDefinition handles a schema fetch request
func (s *Service) GetObjectDefinition(ctx context.Context, req *sdk.GetObjectDefinitionRequest) Result {
	if req.ObjectSlug == "" {
		return BadRequest(MESSAGE_MISSING_OBJECT_SLUG)
	}

	data, err := s.ops.FetchSchema(ctx, req.APIKey(), req.ObjectSlug)
	if err != nil {
		s.logFailure(ctx, "get_object_definition", err, log.Fields{"object_slug": req.ObjectSlug})
		return FromError(err)
	}

	return Success(data)
}

// AssertDeal handles a deal upsert request
func (s *Service) AssertDeal(ctx context.Context, req *sdk.AssertDealRequest) Result {
	if !attio.IsAttributeSet(req.DealAttributes) || req.MatchingAttribute == "" {
		return BadRequest(MESSAGE_MISSING_DEAL_FIELDS)
	}

	data, err := s.ops.AssertDeal(ctx, req.APIKey(), req.DealAttributes, req.MatchingAttribute)
	if err != nil {
		s.logFailure(ctx, "assert_deal", err, log.Fields{"matching_attribute": req.MatchingAttribute})
		return FromError(err)
	}

	return Success(data)
}

// logFailure records a failed operation. Request bodies are never logged since they carry the credential
func (s *Service) logFailure(ctx context.Context, op string, err error, fields log.Fields) {
	entry := s.logger.WithContext(ctx).WithFields(fields).WithFields(log.Fields{
		"operation": op,
		"kind":      attio.KindOf(err).String(),
	})

	var e *attio.Error
	if errors.As(err, &e) && e.Kind == attio.KindRemoteRejected {
		entry.WithField("remote_status", e.StatusCode).Warn("attio rejected request")
		return
	}

	entry.WithError(err).Warn("relay operation failed")
}
