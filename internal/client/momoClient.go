package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Deco-Team/efurniture-server/internal/config"
	"github.com/Deco-Team/efurniture-server/internal/model"
)

// MomoIPN mirrors Momo's Instant Payment Notification body. Field names are
// the provider's external contract and must not change.
type MomoIPN struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

type momoCreateResult struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
}

type momoClientImpl struct {
	httpClient  *http.Client
	endpoint    string
	partnerCode string
	accessKey   string
	secretKey   string
	redirectURL string
	ipnURL      string
}

// NewMomoClient builds the Momo wallet gateway. ipnURL is where Momo posts
// the payment outcome; it must be reachable from outside.
func NewMomoClient(momoCfg *config.Momo, ipnURL string) PaymentGateway {
	return &momoClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		endpoint:    momoCfg.Endpoint,
		partnerCode: momoCfg.PartnerCode,
		accessKey:   momoCfg.AccessKey,
		secretKey:   momoCfg.SecretKey,
		redirectURL: momoCfg.RedirectURL,
		ipnURL:      ipnURL,
	}
}

func (c *momoClientImpl) Method() model.PaymentMethod {
	return model.PaymentMomo
}

const momoRequestType = "captureWallet"

// Signature strings concatenate fields in Momo's documented (alphabetical)
// order; any reordering breaks verification on their side and ours.

func (c *momoClientImpl) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*CreateTransactionResult, error) {
	rawSignature := fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		c.accessKey, req.Amount, req.ExtraData, c.ipnURL, req.OrderID, req.OrderInfo,
		c.partnerCode, c.redirectURL, req.RequestID, momoRequestType,
	)

	payload := map[string]interface{}{
		"partnerCode":     c.partnerCode,
		"requestId":       req.RequestID,
		"amount":          req.Amount,
		"orderId":         req.OrderID,
		"orderInfo":       req.OrderInfo,
		"redirectUrl":     c.redirectURL,
		"ipnUrl":          c.ipnURL,
		"requestType":     momoRequestType,
		"extraData":       req.ExtraData,
		"orderExpireTime": 15, // minutes
		"lang":            "vi",
		"signature":       signHmacSHA256(rawSignature, c.secretKey),
	}

	raw, err := c.post(ctx, "/v2/gateway/api/create", payload)
	if err != nil {
		return nil, err
	}

	var result momoCreateResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode momo create response: %w", err)
	}
	if result.ResultCode != 0 {
		return nil, fmt.Errorf("momo create transaction: resultCode=%d message=%s", result.ResultCode, result.Message)
	}

	return &CreateTransactionResult{
		PayURL: result.PayURL,
		Raw:    raw,
	}, nil
}

func (c *momoClientImpl) GetTransaction(ctx context.Context, req QueryTransactionRequest) (json.RawMessage, error) {
	rawSignature := fmt.Sprintf(
		"accessKey=%s&orderId=%s&partnerCode=%s&requestId=%s",
		c.accessKey, req.OrderID, c.partnerCode, req.RequestID,
	)

	payload := map[string]interface{}{
		"partnerCode": c.partnerCode,
		"requestId":   req.RequestID,
		"orderId":     req.OrderID,
		"lang":        "vi",
		"signature":   signHmacSHA256(rawSignature, c.secretKey),
	}

	return c.post(ctx, "/v2/gateway/api/query", payload)
}

func (c *momoClientImpl) RefundTransaction(ctx context.Context, req RefundTransactionRequest) (*RefundTransactionResult, error) {
	rawSignature := fmt.Sprintf(
		"accessKey=%s&amount=%d&description=%s&orderId=%s&partnerCode=%s&requestId=%s&transId=%d",
		c.accessKey, req.Amount, req.Description, req.OrderID, c.partnerCode, req.RequestID, req.TransID,
	)

	payload := map[string]interface{}{
		"partnerCode": c.partnerCode,
		"requestId":   req.RequestID,
		"orderId":     req.OrderID,
		"amount":      req.Amount,
		"transId":     req.TransID,
		"description": req.Description,
		"lang":        "vi",
		"signature":   signHmacSHA256(rawSignature, c.secretKey),
	}

	raw, err := c.post(ctx, "/v2/gateway/api/refund", payload)
	if err != nil {
		return nil, err
	}

	// Momo refund queries key on orderId, so the request id doubles as the
	// refund identifier.
	return &RefundTransactionResult{
		RefundID: req.RequestID,
		Raw:      raw,
	}, nil
}

func (c *momoClientImpl) GetRefundTransaction(ctx context.Context, req QueryTransactionRequest) (json.RawMessage, error) {
	rawSignature := fmt.Sprintf(
		"accessKey=%s&orderId=%s&partnerCode=%s&requestId=%s",
		c.accessKey, req.OrderID, c.partnerCode, req.RequestID,
	)

	payload := map[string]interface{}{
		"partnerCode": c.partnerCode,
		"requestId":   req.RequestID,
		"orderId":     req.OrderID,
		"lang":        "vi",
		"signature":   signHmacSHA256(rawSignature, c.secretKey),
	}

	return c.post(ctx, "/v2/gateway/api/refund/query", payload)
}

func (c *momoClientImpl) VerifyIPN(body []byte) (*Callback, error) {
	var ipn MomoIPN
	if err := json.Unmarshal(body, &ipn); err != nil {
		return nil, fmt.Errorf("decode momo ipn: %w", err)
	}

	rawSignature := fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%d&resultCode=%d&transId=%d",
		c.accessKey, ipn.Amount, ipn.ExtraData, ipn.Message, ipn.OrderID, ipn.OrderInfo,
		ipn.OrderType, ipn.PartnerCode, ipn.PayType, ipn.RequestID, ipn.ResponseTime,
		ipn.ResultCode, ipn.TransID,
	)
	if signHmacSHA256(rawSignature, c.secretKey) != ipn.Signature {
		return nil, fmt.Errorf("momo ipn signature mismatch for order %s", ipn.OrderID)
	}

	return &Callback{
		Method:  model.PaymentMomo,
		OrderID: ipn.OrderID,
		Success: ipn.ResultCode == 0,
		Raw:     json.RawMessage(body),
	}, nil
}

func (c *momoClientImpl) post(ctx context.Context, path string, payload map[string]interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read momo response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("momo error %d: %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}
