package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/tokengate/service"
)

type Controllers struct {
	Authorization *AuthorizationController
	Audit         *AuditController
}

func InitializeControllers(services *service.Services) *Controllers {
	return &Controllers{
		Authorization: NewAuthorizationController(services.Authorization),
		Audit:         NewAuditController(services.Audit),
	}
}

// Health endpoint
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
