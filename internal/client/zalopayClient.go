package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Deco-Team/efurniture-server/internal/config"
	"github.com/Deco-Team/efurniture-server/internal/model"
)

// zaloPayCallback is ZaloPay's callback envelope: data is a JSON string,
// mac is HMAC-SHA256(key2, data).
type zaloPayCallback struct {
	Data string `json:"data"`
	Mac  string `json:"mac"`
	Type int    `json:"type"`
}

type zaloPayCallbackData struct {
	AppTransID string `json:"app_trans_id"`
	Amount     int64  `json:"amount"`
	ZpTransID  int64  `json:"zp_trans_id"`
}

type zaloPayCreateResult struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
	OrderURL      string `json:"order_url"`
}

type zalopayClientImpl struct {
	httpClient  *http.Client
	endpoint    string
	appID       string
	key1        string
	key2        string
	callbackURL string
}

func NewZaloPayClient(zaloCfg *config.ZaloPay, callbackURL string) PaymentGateway {
	return &zalopayClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		endpoint:    zaloCfg.Endpoint,
		appID:       zaloCfg.AppID,
		key1:        zaloCfg.Key1,
		key2:        zaloCfg.Key2,
		callbackURL: callbackURL,
	}
}

func (c *zalopayClientImpl) Method() model.PaymentMethod {
	return model.PaymentZaloPay
}

// appTransID wraps the order reference in ZaloPay's required yymmdd_ prefix.
func appTransID(orderID string) string {
	return time.Now().Format("060102") + "_" + orderID
}

func orderIDFromAppTransID(appTransID string) string {
	if i := strings.IndexByte(appTransID, '_'); i >= 0 {
		return appTransID[i+1:]
	}
	return appTransID
}

func (c *zalopayClientImpl) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*CreateTransactionResult, error) {
	transID := appTransID(req.OrderID)
	appTime := time.Now().UnixMilli()
	embedData := req.ExtraData
	if embedData == "" {
		embedData = "{}"
	}
	item := "[]"

	// mac input order is fixed by ZaloPay: app_id|app_trans_id|app_user|amount|app_time|embed_data|item
	macData := fmt.Sprintf("%s|%s|%s|%d|%d|%s|%s",
		c.appID, transID, req.RequestID, req.Amount, appTime, embedData, item)

	form := url.Values{}
	form.Set("app_id", c.appID)
	form.Set("app_trans_id", transID)
	form.Set("app_user", req.RequestID)
	form.Set("app_time", fmt.Sprintf("%d", appTime))
	form.Set("amount", fmt.Sprintf("%d", req.Amount))
	form.Set("embed_data", embedData)
	form.Set("item", item)
	form.Set("description", req.OrderInfo)
	form.Set("callback_url", c.callbackURL)
	form.Set("mac", signHmacSHA256(macData, c.key1))

	raw, err := c.postForm(ctx, "/v2/create", form)
	if err != nil {
		return nil, err
	}

	var result zaloPayCreateResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode zalopay create response: %w", err)
	}
	if result.ReturnCode != 1 {
		return nil, fmt.Errorf("zalopay create transaction: return_code=%d message=%s", result.ReturnCode, result.ReturnMessage)
	}

	return &CreateTransactionResult{
		PayURL: result.OrderURL,
		Raw:    raw,
	}, nil
}

func (c *zalopayClientImpl) GetTransaction(ctx context.Context, req QueryTransactionRequest) (json.RawMessage, error) {
	transID := appTransID(req.OrderID)
	macData := fmt.Sprintf("%s|%s|%s", c.appID, transID, c.key1)

	form := url.Values{}
	form.Set("app_id", c.appID)
	form.Set("app_trans_id", transID)
	form.Set("mac", signHmacSHA256(macData, c.key1))

	return c.postForm(ctx, "/v2/query", form)
}

func (c *zalopayClientImpl) RefundTransaction(ctx context.Context, req RefundTransactionRequest) (*RefundTransactionResult, error) {
	timestamp := time.Now().UnixMilli()
	// m_refund_id is minted here exactly once and handed back to the caller;
	// rebuilding it later would pick up a new date prefix across midnight.
	refundID := fmt.Sprintf("%s_%s_%s", time.Now().Format("060102"), c.appID, req.RequestID)
	macData := fmt.Sprintf("%s|%d|%d|%s|%d",
		c.appID, req.TransID, req.Amount, req.Description, timestamp)

	form := url.Values{}
	form.Set("app_id", c.appID)
	form.Set("m_refund_id", refundID)
	form.Set("zp_trans_id", fmt.Sprintf("%d", req.TransID))
	form.Set("amount", fmt.Sprintf("%d", req.Amount))
	form.Set("timestamp", fmt.Sprintf("%d", timestamp))
	form.Set("description", req.Description)
	form.Set("mac", signHmacSHA256(macData, c.key1))

	raw, err := c.postForm(ctx, "/v2/refund", form)
	if err != nil {
		return nil, err
	}

	return &RefundTransactionResult{
		RefundID: refundID,
		Raw:      raw,
	}, nil
}

func (c *zalopayClientImpl) GetRefundTransaction(ctx context.Context, req QueryTransactionRequest) (json.RawMessage, error) {
	if req.RefundID == "" {
		return nil, fmt.Errorf("zalopay refund query requires the refund id")
	}
	timestamp := time.Now().UnixMilli()
	macData := fmt.Sprintf("%s|%s|%d", c.appID, req.RefundID, timestamp)

	form := url.Values{}
	form.Set("app_id", c.appID)
	form.Set("m_refund_id", req.RefundID)
	form.Set("timestamp", fmt.Sprintf("%d", timestamp))
	form.Set("mac", signHmacSHA256(macData, c.key1))

	return c.postForm(ctx, "/v2/query_refund", form)
}

func (c *zalopayClientImpl) VerifyIPN(body []byte) (*Callback, error) {
	var cb zaloPayCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		return nil, fmt.Errorf("decode zalopay callback: %w", err)
	}

	if signHmacSHA256(cb.Data, c.key2) != cb.Mac {
		return nil, fmt.Errorf("zalopay callback mac mismatch")
	}

	var data zaloPayCallbackData
	if err := json.Unmarshal([]byte(cb.Data), &data); err != nil {
		return nil, fmt.Errorf("decode zalopay callback data: %w", err)
	}

	// ZaloPay only delivers the callback for successful payments.
	return &Callback{
		Method:  model.PaymentZaloPay,
		OrderID: orderIDFromAppTransID(data.AppTransID),
		Success: true,
		Raw:     json.RawMessage(body),
	}, nil
}

func (c *zalopayClientImpl) postForm(ctx context.Context, path string, form url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read zalopay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("zalopay error %d: %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}
