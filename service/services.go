package service

import (
	"github.com/dev-mohitbeniwal/tokengate/audit"
	"github.com/dev-mohitbeniwal/tokengate/util"
)

type Services struct {
	Authorization IAuthorizationService
	Audit         audit.Service
}

// InitializeServices wires the authorization front and subscribes the audit
// trail to its decisions.
func InitializeServices(
	pipeline Authorizer,
	auditService audit.Service,
	eventBus *util.EventBus,
) *Services {
	eventBus.Subscribe(util.EventDecisionRecorded, audit.DecisionSubscriber(auditService))

	return &Services{
		Authorization: NewAuthorizationService(pipeline, eventBus),
		Audit:         auditService,
	}
}
