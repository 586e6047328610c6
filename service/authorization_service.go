package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/tokengate/logging"
	"github.com/dev-mohitbeniwal/tokengate/metrics"
	"github.com/dev-mohitbeniwal/tokengate/pdp/model"
	"github.com/dev-mohitbeniwal/tokengate/util"
)

type IAuthorizationService interface {
	Authorize(ctx context.Context, request model.AccessRequest) model.VerificationResult
	Requirements(operation string) []model.TokenRequirement
}

// Authorizer is satisfied by *engine.Pipeline.
type Authorizer interface {
	Authorize(ctx context.Context, operation string, raw json.RawMessage, reqCtx model.RequestContext) model.VerificationResult
	Requirements(operation string) []model.TokenRequirement
}

// AuthorizationService fronts the decision pipeline: it records metrics and
// announces each decision on the event bus. It never alters a decision.
type AuthorizationService struct {
	pipeline Authorizer
	eventBus *util.EventBus
	clock    func() time.Time
}

func NewAuthorizationService(pipeline Authorizer, eventBus *util.EventBus) *AuthorizationService {
	return &AuthorizationService{
		pipeline: pipeline,
		eventBus: eventBus,
		clock:    time.Now,
	}
}

func (s *AuthorizationService) Authorize(ctx context.Context, request model.AccessRequest) model.VerificationResult {
	if request.Context.ReceivedAt.IsZero() {
		request.Context.ReceivedAt = s.clock()
	}

	result := s.pipeline.Authorize(ctx, request.Operation, request.Proof, request.Context)
	metrics.RecordDecision(result)

	fields := []zap.Field{
		zap.String("decision_id", result.DecisionID),
		zap.String("request_id", request.Context.RequestID),
		zap.String("operation", request.Operation),
		zap.String("stage", string(result.Stage)),
		zap.String("signer", result.Signer),
	}
	if result.Granted() {
		logger.Info("Access granted", fields...)
	} else {
		logger.Info("Access denied", append(fields, zap.String("code", string(result.Code)), zap.String("detail", result.Detail))...)
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, util.EventDecisionRecorded, util.DecisionEvent{
			Result:    result,
			Request:   request.Context,
			DecidedAt: s.clock(),
		})
	}
	return result
}

func (s *AuthorizationService) Requirements(operation string) []model.TokenRequirement {
	return s.pipeline.Requirements(operation)
}
