package model

import (
	"encoding/json"
	"time"
)

// AccessRequest is what the dispatch layer sends before running a
// protected operation. Proof is the reserved parameter, kept apart from
// the operation's own arguments.
type AccessRequest struct {
	Operation string          `json:"operation"`
	Proof     json.RawMessage `json:"proof,omitempty"`
	Context   RequestContext  `json:"context"`
}

// RequestContext carries caller metadata for logging and auditing only; it
// never influences the decision.
type RequestContext struct {
	RequestID  string            `json:"request_id,omitempty"`
	ClientIP   string            `json:"client_ip,omitempty"`
	Tool       string            `json:"tool,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	ReceivedAt time.Time         `json:"received_at"`
}
