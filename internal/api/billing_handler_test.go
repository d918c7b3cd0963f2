package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirrornet-backend-go/internal/core"
)

// fakeBillingService records the webhook calls the handler makes.
type fakeBillingService struct {
	signature string
	payload   []byte
	err       error
}

func (f *fakeBillingService) CreateCheckoutSession(ctx context.Context, userID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "cs_test", nil
}

func (f *fakeBillingService) HandleWebhook(ctx context.Context, signature string, payload []byte) error {
	f.signature = signature
	f.payload = payload
	return f.err
}

func newWebhookRouter(service core.BillingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewBillingHandler(service)
	router.POST("/api/v1/billing/webhooks", handler.HandleBillingWebhook)
	return router
}

func TestHandleBillingWebhook_PassesRawBodyAndSignature(t *testing.T) {
	service := &fakeBillingService{}
	router := newWebhookRouter(service)

	body := `{"id":"evt-1","type":"subscription.activated","data":{"userId":"u1"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhooks", strings.NewReader(body))
	req.Header.Set(webhookSignatureHeader, "sha256=abc")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "sha256=abc", service.signature)
	assert.Equal(t, body, string(service.payload), "the raw body must reach the verifier unmodified")
}

func TestHandleBillingWebhook_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad signature", core.ErrWebhookSignature, http.StatusBadRequest},
		{"bad payload", core.ErrWebhookPayload, http.StatusBadRequest},
		{"unknown user", core.ErrUserNotFound, http.StatusNotFound},
		{"internal failure", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newWebhookRouter(&fakeBillingService{err: tt.err})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhooks", strings.NewReader(`{}`))
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			assert.Equal(t, tt.want, recorder.Code)
		})
	}
}
