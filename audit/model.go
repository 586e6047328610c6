package audit

import (
	"time"

	"github.com/dev-mohitbeniwal/tokengate/pdp/model"
)

// DecisionLog is one authorization outcome as stored for later review. It
// never carries the proof itself.
type DecisionLog struct {
	Timestamp     time.Time `json:"timestamp"`
	DecisionID    string    `json:"decision_id"`
	RequestID     string    `json:"request_id,omitempty"`
	Operation     string    `json:"operation"`
	Signer        string    `json:"signer,omitempty"`
	AccessGranted bool      `json:"access_granted"`
	Stage         string    `json:"stage"`
	Code          string    `json:"code,omitempty"`
	Tier          string    `json:"tier,omitempty"`
	TokenID       string    `json:"token_id,omitempty"`
	ClientIP      string    `json:"client_ip,omitempty"`
	Tool          string    `json:"tool,omitempty"`
}

// Query filters stored decisions. Zero fields are not applied.
type Query struct {
	From      time.Time
	To        time.Time
	Signer    string
	Operation string
	Limit     int
}

func NewDecisionLog(result model.VerificationResult, req model.RequestContext, at time.Time) DecisionLog {
	log := DecisionLog{
		Timestamp:     at.UTC(),
		DecisionID:    result.DecisionID,
		RequestID:     req.RequestID,
		Operation:     result.Operation,
		Signer:        result.Signer,
		AccessGranted: result.Granted(),
		Stage:         string(result.Stage),
		Code:          string(result.Code),
		ClientIP:      req.ClientIP,
		Tool:          req.Tool,
	}
	if r := result.SatisfiedRequirement; r != nil {
		log.Tier = r.Tier
		if r.TokenID != nil {
			log.TokenID = r.TokenID.String()
		}
	}
	return log
}
