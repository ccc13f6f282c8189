package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/Deco-Team/efurniture-server/internal/client"
	"github.com/Deco-Team/efurniture-server/internal/dto"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"github.com/Deco-Team/efurniture-server/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func dec(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// shared in-memory sqlite lives as long as one connection stays open
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, client.AutoMigrate(db))
	return db
}

// stubGateway is a scriptable PaymentGateway for workflow tests.
type stubGateway struct {
	method model.PaymentMethod

	createErr error
	refundErr error
	queryErr  error

	createCalls int
	refundCalls int

	refundRequestID string
	queriedRefundID string
	queryRequestID  string
}

func (g *stubGateway) Method() model.PaymentMethod {
	return g.method
}

func (g *stubGateway) CreateTransaction(ctx context.Context, req client.CreateTransactionRequest) (*client.CreateTransactionResult, error) {
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &client.CreateTransactionResult{
		PayURL: "https://pay.example.com/" + req.OrderID,
		Raw:    json.RawMessage(`{"resultCode":0,"transId":12345}`),
	}, nil
}

func (g *stubGateway) GetTransaction(ctx context.Context, req client.QueryTransactionRequest) (json.RawMessage, error) {
	return json.RawMessage(`{"resultCode":0}`), nil
}

func (g *stubGateway) RefundTransaction(ctx context.Context, req client.RefundTransactionRequest) (*client.RefundTransactionResult, error) {
	g.refundCalls++
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	g.refundRequestID = req.RequestID
	return &client.RefundTransactionResult{
		RefundID: "rf-" + req.RequestID,
		Raw:      json.RawMessage(`{"resultCode":0,"transId":12345}`),
	}, nil
}

func (g *stubGateway) GetRefundTransaction(ctx context.Context, req client.QueryTransactionRequest) (json.RawMessage, error) {
	g.queriedRefundID = req.RefundID
	g.queryRequestID = req.RequestID
	if g.queryErr != nil {
		return nil, g.queryErr
	}
	return json.RawMessage(`{"resultCode":0,"refundStatus":"SUCCESS"}`), nil
}

func (g *stubGateway) VerifyIPN(body []byte) (*client.Callback, error) {
	return nil, errors.New("not used in tests")
}

// stubMailer records sends instead of talking to an SMTP server.
type stubMailer struct {
	sendErr error
	sent    []string // templateName per send
}

func (m *stubMailer) SendTemplatedEmail(to, subject, templateName string, data any) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, templateName)
	return nil
}

// testEnv wires the full service stack over a fresh database.
type testEnv struct {
	db      *gorm.DB
	gateway *stubGateway
	mailer  *stubMailer

	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	productRepo repository.ProductRepository
	staffRepo   repository.StaffRepository
	taskRepo    repository.TaskRepository

	carts    CartService
	orders   OrderService
	payments PaymentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	env := &testEnv{
		db:          db,
		gateway:     &stubGateway{method: model.PaymentMomo},
		mailer:      &stubMailer{},
		cartRepo:    repository.NewCartRepository(db),
		orderRepo:   repository.NewOrderRepository(db),
		paymentRepo: repository.NewPaymentRepository(db),
		productRepo: repository.NewProductRepository(db),
		staffRepo:   repository.NewStaffRepository(db),
		taskRepo:    repository.NewTaskRepository(db),
	}

	log := zap.NewNop()
	env.carts = NewCartService(db, env.cartRepo, env.productRepo)
	env.payments = NewPaymentService(db, []client.PaymentGateway{env.gateway},
		env.orderRepo, env.paymentRepo, env.productRepo, env.cartRepo, env.mailer, log)
	env.orders = NewOrderService(db,
		env.orderRepo, env.cartRepo, env.productRepo, env.paymentRepo,
		env.staffRepo, env.taskRepo, env.payments, env.mailer, log)

	return env
}

func (e *testEnv) seedProduct(t *testing.T, productID, sku string, price int64, quantity int) {
	t.Helper()

	err := e.productRepo.Create(context.Background(), &model.Product{
		ID:     productID,
		Name:   "Oak Table " + productID,
		Slug:   "oak-table-" + productID,
		Brand:  "Woodline",
		Status: model.ProductActive,
		Variants: []model.Variant{{
			SKU:      sku,
			Price:    decimal.NewFromInt(price),
			Quantity: quantity,
		}},
	})
	require.NoError(t, err)
}

func (e *testEnv) variantQuantity(t *testing.T, productID, sku string) int {
	t.Helper()

	variant, err := e.productRepo.FindVariant(context.Background(), productID, sku)
	require.NoError(t, err)
	return variant.Quantity
}

func (e *testEnv) mustAddToCart(t *testing.T, customerID, productID, sku string, quantity int) {
	t.Helper()

	require.NoError(t, e.carts.AddItem(context.Background(), customerID, &dto.AddToCartRequest{
		ProductID: productID,
		SKU:       sku,
		Quantity:  quantity,
	}))
}

// mustCreateOrder runs checkout for a single cart line.
func (e *testEnv) mustCreateOrder(t *testing.T, customerID, productID, sku string) *dto.CreateOrderResponse {
	t.Helper()

	resp, err := e.orders.CreateOrder(context.Background(), customerID, &dto.CreateOrderRequest{
		Customer: dto.CustomerContact{
			FirstName:       "An",
			LastName:        "Nguyen",
			Email:           customerID + "@example.com",
			Phone:           "0900000000",
			ShippingAddress: "12 Le Loi, HCMC",
		},
		Items:         []dto.OrderItemRequest{{ProductID: productID, SKU: sku}},
		PaymentMethod: model.PaymentMomo,
	})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) successCallback(orderID string) *client.Callback {
	return &client.Callback{
		Method:  model.PaymentMomo,
		OrderID: orderID,
		Success: true,
		Raw:     json.RawMessage(`{"resultCode":0,"transId":12345,"orderId":"` + orderID + `"}`),
	}
}

func (e *testEnv) failureCallback(orderID string) *client.Callback {
	return &client.Callback{
		Method:  model.PaymentMomo,
		OrderID: orderID,
		Success: false,
		Raw:     json.RawMessage(`{"resultCode":1006,"orderId":"` + orderID + `"}`),
	}
}

func (e *testEnv) orderState(t *testing.T, orderID string) (model.OrderStatus, model.TransactionStatus) {
	t.Helper()

	order, err := e.orderRepo.FindByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	return order.OrderStatus, order.TransactionStatus
}
