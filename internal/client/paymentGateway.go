package client

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/Deco-Team/efurniture-server/internal/model"
)

// PaymentGateway is the strategy interface over a payment provider. Every
// operation returns the raw provider response so callers can store it
// opaquely as the payment's transaction payload.
type PaymentGateway interface {
	Method() model.PaymentMethod
	CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*CreateTransactionResult, error)
	GetTransaction(ctx context.Context, req QueryTransactionRequest) (json.RawMessage, error)
	RefundTransaction(ctx context.Context, req RefundTransactionRequest) (*RefundTransactionResult, error)
	// GetRefundTransaction queries the refund created by RefundTransaction;
	// callers pass the RefundID that call returned so both target the same
	// provider-side refund record.
	GetRefundTransaction(ctx context.Context, req QueryTransactionRequest) (json.RawMessage, error)
	// VerifyIPN checks the provider signature over the inbound callback body
	// and returns the normalized callback. A signature mismatch is an error;
	// callers must not change any state in that case.
	VerifyIPN(body []byte) (*Callback, error)
}

type CreateTransactionRequest struct {
	OrderID   string
	RequestID string
	Amount    int64
	OrderInfo string
	ExtraData string
}

type CreateTransactionResult struct {
	PayURL string
	Raw    json.RawMessage
}

type QueryTransactionRequest struct {
	OrderID   string
	RequestID string
	// RefundID scopes refund queries to one provider refund record; empty for
	// payment queries.
	RefundID string
}

type RefundTransactionRequest struct {
	OrderID     string
	RequestID   string
	Amount      int64
	TransID     int64
	Description string
}

// RefundTransactionResult carries the provider's refund identifier alongside
// the raw response. The identifier is provider-specific (Momo reuses the
// request id, ZaloPay derives a dated m_refund_id) and must be passed back
// verbatim when querying the refund.
type RefundTransactionResult struct {
	RefundID string
	Raw      json.RawMessage
}

// Callback is the provider-agnostic view of a verified webhook.
type Callback struct {
	Method  model.PaymentMethod
	OrderID string
	Success bool
	Raw     json.RawMessage
}

func signHmacSHA256(raw, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
