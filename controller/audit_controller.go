package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/tokengate/audit"
	"github.com/dev-mohitbeniwal/tokengate/util"
	helper_util "github.com/dev-mohitbeniwal/tokengate/util/helper"
)

type AuditController struct {
	auditService audit.Service
}

func NewAuditController(auditService audit.Service) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// RegisterRoutes registers the API routes
func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/decisions", ac.ListDecisions)
}

// ListDecisions endpoint
func (ac *AuditController) ListDecisions(c *gin.Context) {
	limit, err := helper_util.GetLimitParam(c, 100)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid limit", err)
		return
	}
	from, err := helper_util.ParseOptionalTime(c.Query("from"))
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid from timestamp", err)
		return
	}
	to, err := helper_util.ParseOptionalTime(c.Query("to"))
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid to timestamp", err)
		return
	}

	logs, err := ac.auditService.QueryDecisions(c.Request.Context(), audit.Query{
		From:      from,
		To:        to,
		Signer:    c.Query("signer"),
		Operation: c.Query("operation"),
		Limit:     limit,
	})
	if err != nil {
		if errors.Is(err, audit.ErrQueryUnsupported) {
			util.RespondWithError(c, http.StatusNotImplemented, "Decision queries are not enabled", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to query decisions", err)
		}
		return
	}

	c.JSON(http.StatusOK, logs)
}
