package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/dev-mohitbeniwal/tokengate/controller"
	"github.com/dev-mohitbeniwal/tokengate/router"
	"github.com/dev-mohitbeniwal/tokengate/test/mock"
	mock_service "github.com/dev-mohitbeniwal/tokengate/test/service_mock"
)

func setup(t *testing.T, limit int) (*gin.Engine, *mock_service.MockIAuthorizationService) {
	gin.SetMode(gin.TestMode)
	authorization := mock_service.NewMockIAuthorizationService(gomock.NewController(t))
	controllers := &controller.Controllers{
		Authorization: controller.NewAuthorizationController(authorization),
		Audit:         controller.NewAuditController(new(mock.MockAuditService)),
	}
	return router.SetupRouter(controllers, nil, limit, time.Minute), authorization
}

func TestOperationalEndpoints(t *testing.T) {
	r, _ := setup(t, 10)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "go_goroutines"))
}

func TestAPIIsRateLimited(t *testing.T) {
	r, authorization := setup(t, 2)
	authorization.EXPECT().Requirements("report").Return(nil).Times(2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/requirements/report", nil)
		req.RemoteAddr = "192.0.2.10:4000"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// health checks are never limited
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "192.0.2.10:4000"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
