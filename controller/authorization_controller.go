package controller

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	"github.com/dev-mohitbeniwal/tokengate/pdp/codec"
	"github.com/dev-mohitbeniwal/tokengate/pdp/model"
	"github.com/dev-mohitbeniwal/tokengate/service"
	"github.com/dev-mohitbeniwal/tokengate/util"
)

const (
	// ProofHeader carries the proof when the body has no proof field.
	ProofHeader = "X-Token-Proof"

	maxAuthorizeBody = 64 << 10
)

type AuthorizationController struct {
	authorizationService service.IAuthorizationService
}

func NewAuthorizationController(authorizationService service.IAuthorizationService) *AuthorizationController {
	return &AuthorizationController{
		authorizationService: authorizationService,
	}
}

// RegisterRoutes registers the API routes
func (ac *AuthorizationController) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/authorize", ac.Authorize)
	r.GET("/requirements/:operation", ac.GetRequirements)
}

type authorizeRequest struct {
	Operation string          `json:"operation"`
	Proof     json.RawMessage `json:"proof"`
	Context   struct {
		Tool       string            `json:"tool"`
		Attributes map[string]string `json:"attributes"`
	} `json:"context"`
}

// Authorize endpoint. Denials are answered with the status of their code
// and the full result, so callers can act on code and remediation.
func (ac *AuthorizationController) Authorize(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAuthorizeBody)

	var body authorizeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid authorization request", gate_errors.ErrInvalidRequest)
		return
	}
	if strings.TrimSpace(body.Operation) == "" {
		util.RespondWithError(c, http.StatusBadRequest, "Operation is required", gate_errors.ErrInvalidRequest)
		return
	}

	proof := body.Proof
	if codec.IsAbsent(proof) {
		proof = proofFromHeader(c.GetHeader(ProofHeader))
	}

	result := ac.authorizationService.Authorize(c.Request.Context(), model.AccessRequest{
		Operation: body.Operation,
		Proof:     proof,
		Context: model.RequestContext{
			RequestID:  util.GetRequestIDFromContext(c),
			ClientIP:   c.ClientIP(),
			Tool:       body.Context.Tool,
			Attributes: body.Context.Attributes,
			ReceivedAt: time.Now(),
		},
	})

	if result.Granted() {
		c.JSON(http.StatusOK, result)
		return
	}
	if result.Retryable {
		c.Header("Retry-After", "1")
	}
	c.JSON(gate_errors.Lookup(result.Code).HTTPStatus, result)
}

// proofFromHeader accepts raw JSON or base64url-encoded JSON. Anything else
// is passed on as-is and rejected by the codec.
func proofFromHeader(header string) json.RawMessage {
	header = strings.TrimSpace(header)
	if header == "" || strings.HasPrefix(header, "{") {
		return json.RawMessage(header)
	}
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(header, "="))
	if err != nil || !bytes.HasPrefix(bytes.TrimSpace(decoded), []byte("{")) {
		return json.RawMessage(header)
	}
	return json.RawMessage(decoded)
}

// GetRequirements endpoint. Lists the tiers that unlock an operation so a
// client can present purchase options before signing anything.
func (ac *AuthorizationController) GetRequirements(c *gin.Context) {
	operation := c.Param("operation")
	requirements := ac.authorizationService.Requirements(operation)

	c.JSON(http.StatusOK, gin.H{
		"operation":    operation,
		"protected":    len(requirements) > 0,
		"requirements": requirements,
	})
}
