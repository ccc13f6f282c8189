package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Deco-Team/efurniture-server/internal/client"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPaymentService struct {
	verifyErr  error
	processErr error
	processed  int
}

func (s *stubPaymentService) Gateway(method model.PaymentMethod) (client.PaymentGateway, error) {
	return nil, errors.New("not used")
}

func (s *stubPaymentService) VerifyIPN(method model.PaymentMethod, body []byte) (*client.Callback, error) {
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return &client.Callback{Method: method, OrderID: "EF1", Success: true, Raw: body}, nil
}

func (s *stubPaymentService) ProcessWebhook(ctx context.Context, cb *client.Callback) error {
	s.processed++
	return s.processErr
}

func postWebhook(t *testing.T, h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestMomoWebhookAcknowledges(t *testing.T) {
	svc := &stubPaymentService{}
	h := NewPaymentHandler(svc, zap.NewNop())

	rec := postWebhook(t, h.MomoWebhook, `{"orderId":"EF1"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, svc.processed)
}

// A forged payload is acknowledged without touching any state, so the sender
// learns nothing and the provider stops retrying.
func TestMomoWebhookSilentlyRejectsBadSignature(t *testing.T) {
	svc := &stubPaymentService{verifyErr: errors.New("signature mismatch")}
	h := NewPaymentHandler(svc, zap.NewNop())

	rec := postWebhook(t, h.MomoWebhook, `{"orderId":"EF1"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, svc.processed)
}

func TestZaloPayCallbackReturnCodes(t *testing.T) {
	svc := &stubPaymentService{}
	h := NewPaymentHandler(svc, zap.NewNop())

	rec := postWebhook(t, h.ZaloPayCallback, `{"data":"{}","mac":"x"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"return_code":1`)

	svc.verifyErr = errors.New("mac mismatch")
	rec = postWebhook(t, h.ZaloPayCallback, `{"data":"{}","mac":"x"}`)
	assert.Contains(t, rec.Body.String(), `"return_code":-1`)
	assert.Equal(t, 1, svc.processed)
}

func TestZaloPayCallbackAsksRetryOnProcessingError(t *testing.T) {
	svc := &stubPaymentService{processErr: errors.New("db down")}
	h := NewPaymentHandler(svc, zap.NewNop())

	rec := postWebhook(t, h.ZaloPayCallback, `{"data":"{}","mac":"x"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"return_code":0`)
}
