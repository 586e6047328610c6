package audit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/tokengate/logging"
	"github.com/dev-mohitbeniwal/tokengate/metrics"
	"github.com/dev-mohitbeniwal/tokengate/util"
)

type Service interface {
	LogDecision(ctx context.Context, log DecisionLog) error
	QueryDecisions(ctx context.Context, q Query) ([]DecisionLog, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) LogDecision(ctx context.Context, log DecisionLog) error {
	return s.repo.LogDecision(ctx, log)
}

func (s *service) QueryDecisions(ctx context.Context, q Query) ([]DecisionLog, error) {
	return s.repo.QueryDecisions(ctx, q)
}

// DecisionSubscriber stores every decision.recorded event. Audit failures
// are counted and logged; they never reach the caller that was authorized.
func DecisionSubscriber(s Service) util.EventHandler {
	return func(ctx context.Context, event util.Event) error {
		decision, ok := event.Payload.(util.DecisionEvent)
		if !ok {
			return fmt.Errorf("unexpected %s payload %T", event.Type, event.Payload)
		}
		log := NewDecisionLog(decision.Result, decision.Request, decision.DecidedAt)

		// the request context may already be gone
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := s.LogDecision(writeCtx, log); err != nil {
			metrics.AuditFailure()
			logger.Error("Failed to record decision",
				zap.String("decision_id", log.DecisionID),
				zap.Error(err))
			return err
		}
		return nil
	}
}
