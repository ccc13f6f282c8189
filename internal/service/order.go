package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Deco-Team/efurniture-server/internal/apperror"
	"github.com/Deco-Team/efurniture-server/internal/client"
	"github.com/Deco-Team/efurniture-server/internal/dto"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"github.com/Deco-Team/efurniture-server/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actor identifies who is driving a workflow transition; it lands in the
// order history.
type Actor struct {
	ID   string
	Role model.UserRole
}

type OrderService interface {
	CreateOrder(ctx context.Context, customerID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
	ConfirmOrder(ctx context.Context, orderID string, actor Actor) error
	CancelOrder(ctx context.Context, orderID, reason string, actor Actor) error
	AssignDelivery(ctx context.Context, orderID, assigneeID string, actor Actor) error
	DeliverOrder(ctx context.Context, orderID string, actor Actor) error
	CompleteOrder(ctx context.Context, orderID string, actor Actor) error

	GetOrder(ctx context.Context, orderID string) (*dto.OrderResponse, error)
	GetCustomerOrder(ctx context.Context, customerID, orderID string) (*dto.OrderResponse, error)
	ListOrders(ctx context.Context, limit, offset int) ([]*dto.OrderResponse, error)
	ListCustomerOrders(ctx context.Context, customerID string, limit, offset int) ([]*dto.OrderResponse, error)
	GetOrderHistory(ctx context.Context, customerID, orderID string) ([]*dto.OrderHistoryResponse, error)
}

type orderServiceImpl struct {
	db             *gorm.DB
	orderRepo      repository.OrderRepository
	cartRepo       repository.CartRepository
	productRepo    repository.ProductRepository
	paymentRepo    repository.PaymentRepository
	staffRepo      repository.StaffRepository
	taskRepo       repository.TaskRepository
	paymentService PaymentService
	mailer         client.Mailer
	logger         *zap.Logger
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	paymentRepo repository.PaymentRepository,
	staffRepo repository.StaffRepository,
	taskRepo repository.TaskRepository,
	paymentService PaymentService,
	mailer client.Mailer,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		db:             db,
		orderRepo:      orderRepo,
		cartRepo:       cartRepo,
		productRepo:    productRepo,
		paymentRepo:    paymentRepo,
		staffRepo:      staffRepo,
		taskRepo:       taskRepo,
		paymentService: paymentService,
		mailer:         mailer,
		logger:         logger.Named("order"),
	}
}

// generateOrderID builds the human-readable external order reference carried
// by gateway transactions and webhooks.
func generateOrderID() string {
	return fmt.Sprintf("EF%d%04d", time.Now().UnixMilli(), uuid.New().ID()%10000)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// CreateOrder converts the customer's cart into a PENDING/DRAFT order with a
// pending gateway transaction. The cart is not mutated and stock is not
// reserved here; both happen when the gateway confirms payment.
func (s *orderServiceImpl) CreateOrder(ctx context.Context, customerID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, apperror.ErrValidation
	}

	gateway, err := s.paymentService.Gateway(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.FindByCustomerID(ctx, s.db, customerID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, apperror.ErrCartEmpty
	}

	totalAmount := decimal.Zero
	orderItems := make([]model.OrderItem, 0, len(req.Items))
	for _, requested := range req.Items {
		line := findCartItem(cart.Items, requested.ProductID, requested.SKU)
		if line == nil {
			return nil, apperror.ErrOrderItemsInvalid
		}

		product, err := s.productRepo.FindByID(ctx, requested.ProductID)
		if err != nil {
			return nil, apperror.ErrOrderItemsInvalid.WithCause(err)
		}
		var variant *model.Variant
		for i := range product.Variants {
			if product.Variants[i].SKU == requested.SKU {
				variant = &product.Variants[i]
			}
		}
		if variant == nil {
			return nil, apperror.ErrOrderItemsInvalid
		}
		// stock is re-checked at order time, not just at add-to-cart time
		if line.Quantity > variant.Quantity {
			return nil, apperror.ErrOrderItemsInvalid
		}

		totalAmount = totalAmount.Add(variant.Price.Mul(decimalFromInt(line.Quantity)))
		orderItems = append(orderItems, model.OrderItem{
			ProductID:    product.ID,
			SKU:          variant.SKU,
			Quantity:     line.Quantity,
			ProductName:  product.Name,
			ProductBrand: product.Brand,
			ProductImage: product.Image,
			UnitPrice:    variant.Price,
		})
	}

	orderID := generateOrderID()

	// The gateway call happens before the local writes: if persisting fails
	// the remote transaction simply expires unpaid within its expiry window.
	created, err := gateway.CreateTransaction(ctx, client.CreateTransactionRequest{
		OrderID:   orderID,
		RequestID: uuid.NewString(),
		Amount:    totalAmount.IntPart(),
		OrderInfo: "eFurniture order " + orderID,
	})
	if err != nil {
		s.logger.Error("gateway create transaction failed",
			zap.String("order_id", orderID), zap.Error(err))
		return nil, apperror.ErrPaymentGateway.WithCause(err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment := &model.Payment{
			TransactionStatus: model.TransactionDraft,
			PaymentMethod:     req.PaymentMethod,
			Amount:            totalAmount,
			Transaction:       string(created.Raw),
		}
		if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
			return fmt.Errorf("store payment: %w", err)
		}

		order := &model.Order{
			OrderID:           orderID,
			CustomerID:        customerID,
			FirstName:         req.Customer.FirstName,
			LastName:          req.Customer.LastName,
			Email:             req.Customer.Email,
			Phone:             req.Customer.Phone,
			ShippingAddress:   req.Customer.ShippingAddress,
			TotalAmount:       totalAmount,
			OrderStatus:       model.OrderPending,
			TransactionStatus: model.TransactionDraft,
			PaymentID:         payment.ID,
			Notes:             req.Notes,
			Items:             orderItems,
		}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}

		return s.orderRepo.AppendHistory(ctx, tx, &model.OrderHistory{
			OrderID:           orderID,
			OrderStatus:       model.OrderPending,
			TransactionStatus: model.TransactionDraft,
			Timestamp:         nowUTC(),
			ActorID:           customerID,
			ActorRole:         model.RoleCustomer,
		})
	})
	if err != nil {
		return nil, err
	}

	return &dto.CreateOrderResponse{
		OrderID: orderID,
		PayURL:  created.PayURL,
	}, nil
}

func (s *orderServiceImpl) ConfirmOrder(ctx context.Context, orderID string, actor Actor) error {
	return s.transition(ctx, orderID, actor,
		[]model.OrderStatus{model.OrderPending},
		map[string]interface{}{"order_status": model.OrderConfirmed},
		model.OrderConfirmed)
}

func (s *orderServiceImpl) DeliverOrder(ctx context.Context, orderID string, actor Actor) error {
	now := nowUTC()
	return s.transition(ctx, orderID, actor,
		[]model.OrderStatus{model.OrderConfirmed},
		map[string]interface{}{"order_status": model.OrderDelivering, "delivery_date": now},
		model.OrderDelivering)
}

func (s *orderServiceImpl) CompleteOrder(ctx context.Context, orderID string, actor Actor) error {
	now := nowUTC()
	return s.transition(ctx, orderID, actor,
		[]model.OrderStatus{model.OrderDelivering},
		map[string]interface{}{"order_status": model.OrderCompleted, "complete_date": now},
		model.OrderCompleted)
}

// transition runs the shared guard-update-history shape for the CAPTURED-only
// forward transitions.
func (s *orderServiceImpl) transition(ctx context.Context, orderID string, actor Actor,
	from []model.OrderStatus, updates map[string]interface{}, to model.OrderStatus) error {

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.orderRepo.Transition(ctx, tx, orderID,
			from, []model.TransactionStatus{model.TransactionCaptured}, updates)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.ErrOrderStatusInvalid
		}

		return s.orderRepo.AppendHistory(ctx, tx, &model.OrderHistory{
			OrderID:           orderID,
			OrderStatus:       to,
			TransactionStatus: model.TransactionCaptured,
			Timestamp:         nowUTC(),
			ActorID:           actor.ID,
			ActorRole:         actor.Role,
		})
	})
}

// AssignDelivery marks a confirmed order as assigned and opens a shipping
// task for the delivery staff, in one transaction.
func (s *orderServiceImpl) AssignDelivery(ctx context.Context, orderID, assigneeID string, actor Actor) error {
	staff, err := s.staffRepo.FindByID(ctx, assigneeID)
	if err != nil {
		return err
	}
	if staff.Role != model.RoleDeliveryStaff {
		return apperror.ErrValidation.WithCause(fmt.Errorf("staff %s is not delivery staff", assigneeID))
	}

	order, err := s.orderRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.orderRepo.Transition(ctx, tx, orderID,
			[]model.OrderStatus{model.OrderConfirmed},
			[]model.TransactionStatus{model.TransactionCaptured},
			map[string]interface{}{"is_delivery_assigned": true})
		if err != nil {
			return err
		}
		if !ok {
			return apperror.ErrOrderStatusInvalid
		}

		if err := s.taskRepo.Create(ctx, tx, &model.Task{
			Type:        model.TaskShipping,
			Title:       "Deliver order " + orderID,
			Description: "Ship to " + order.ShippingAddress,
			Status:      model.TaskPending,
			Priority:    "HIGH",
			AssigneeID:  assigneeID,
			OrderID:     orderID,
		}); err != nil {
			return fmt.Errorf("create shipping task: %w", err)
		}

		return s.orderRepo.AppendHistory(ctx, tx, &model.OrderHistory{
			OrderID:           orderID,
			OrderStatus:       model.OrderConfirmed,
			TransactionStatus: model.TransactionCaptured,
			Timestamp:         nowUTC(),
			ActorID:           actor.ID,
			ActorRole:         actor.Role,
		})
	})
}

// CancelOrder unwinds a paid order. Phase one atomically moves the order to
// (CANCELED, CANCELED) and releases reserved stock; phase two refunds through
// the gateway and records the REFUNDED outcome. A refund failure leaves the
// order canceled with stock already released, which is the recoverable state.
func (s *orderServiceImpl) CancelOrder(ctx context.Context, orderID, reason string, actor Actor) error {
	order, err := s.orderRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.orderRepo.Transition(ctx, tx, orderID,
			[]model.OrderStatus{model.OrderPending, model.OrderConfirmed},
			[]model.TransactionStatus{model.TransactionCaptured},
			map[string]interface{}{
				"order_status":       model.OrderCanceled,
				"transaction_status": model.TransactionCanceled,
				"reason":             reason,
			})
		if err != nil {
			return err
		}
		if !ok {
			return apperror.ErrOrderStatusInvalid
		}

		for _, item := range order.Items {
			if err := s.productRepo.ReleaseStock(ctx, tx, item.SKU, item.Quantity); err != nil {
				return err
			}
		}

		return s.orderRepo.AppendHistory(ctx, tx, &model.OrderHistory{
			OrderID:           orderID,
			OrderStatus:       model.OrderCanceled,
			TransactionStatus: model.TransactionCanceled,
			Timestamp:         nowUTC(),
			ActorID:           actor.ID,
			ActorRole:         actor.Role,
		})
	})
	if err != nil {
		return err
	}

	if err := s.refundPayment(ctx, order, actor); err != nil {
		return err
	}

	if mailErr := s.mailer.SendTemplatedEmail(order.Email,
		"Order "+orderID+" canceled", "order_cancellation", orderMailData(order, reason)); mailErr != nil {
		s.logger.Warn("cancellation email failed",
			zap.String("order_id", orderID), zap.Error(mailErr))
	}
	return nil
}

func (s *orderServiceImpl) refundPayment(ctx context.Context, order *model.Order, actor Actor) error {
	payment, err := s.paymentRepo.FindByID(ctx, order.PaymentID)
	if err != nil {
		return err
	}

	gateway, err := s.paymentService.Gateway(payment.PaymentMethod)
	if err != nil {
		return err
	}

	requestID := uuid.NewString()
	refund, err := gateway.RefundTransaction(ctx, client.RefundTransactionRequest{
		OrderID:     order.OrderID,
		RequestID:   requestID,
		Amount:      payment.Amount.IntPart(),
		TransID:     gatewayTransID(payment.Transaction),
		Description: "Refund order " + order.OrderID,
	})
	if err != nil {
		s.logger.Error("gateway refund failed",
			zap.String("order_id", order.OrderID), zap.Error(err))
		return apperror.ErrPaymentGateway.WithCause(err)
	}

	// the gateway's post-refund record is authoritative; the query carries the
	// same request id and the refund id minted by the refund call so it hits
	// the refund just issued. Fall back to the refund response when it fails.
	finalRaw := refund.Raw
	queried, err := gateway.GetRefundTransaction(ctx, client.QueryTransactionRequest{
		OrderID:   order.OrderID,
		RequestID: requestID,
		RefundID:  refund.RefundID,
	})
	if err != nil {
		s.logger.Error("gateway refund query failed",
			zap.String("order_id", order.OrderID), zap.Error(err))
	} else {
		finalRaw = queried
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.UpdateTransaction(ctx, tx, payment.ID,
			model.TransactionRefunded, string(finalRaw)); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}

		ok, err := s.orderRepo.Transition(ctx, tx, order.OrderID,
			[]model.OrderStatus{model.OrderCanceled},
			[]model.TransactionStatus{model.TransactionCanceled},
			map[string]interface{}{"transaction_status": model.TransactionRefunded})
		if err != nil {
			return err
		}
		if !ok {
			return apperror.ErrOrderStatusInvalid
		}

		return s.orderRepo.AppendHistory(ctx, tx, &model.OrderHistory{
			OrderID:           order.OrderID,
			OrderStatus:       model.OrderCanceled,
			TransactionStatus: model.TransactionRefunded,
			Timestamp:         nowUTC(),
			ActorID:           actor.ID,
			ActorRole:         actor.Role,
		})
	})
}

// gatewayTransID pulls the provider transaction id out of the stored raw
// payload; zero when absent (sandbox payloads sometimes omit it).
func gatewayTransID(payload string) int64 {
	var t struct {
		TransID int64 `json:"transId"`
	}
	_ = json.Unmarshal([]byte(payload), &t)
	return t.TransID
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID string) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return orderResponse(order), nil
}

func (s *orderServiceImpl) GetCustomerOrder(ctx context.Context, customerID, orderID string) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.FindForCustomer(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	return orderResponse(order), nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, limit, offset int) ([]*dto.OrderResponse, error) {
	orders, err := s.orderRepo.List(ctx, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	return orderResponses(orders), nil
}

func (s *orderServiceImpl) ListCustomerOrders(ctx context.Context, customerID string, limit, offset int) ([]*dto.OrderResponse, error) {
	orders, err := s.orderRepo.ListForCustomer(ctx, customerID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	return orderResponses(orders), nil
}

func (s *orderServiceImpl) GetOrderHistory(ctx context.Context, customerID, orderID string) ([]*dto.OrderHistoryResponse, error) {
	if _, err := s.orderRepo.FindForCustomer(ctx, customerID, orderID); err != nil {
		return nil, err
	}

	history, err := s.orderRepo.GetHistory(ctx, orderID)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.OrderHistoryResponse, 0, len(history))
	for _, h := range history {
		resp = append(resp, &dto.OrderHistoryResponse{
			OrderStatus:       h.OrderStatus,
			TransactionStatus: h.TransactionStatus,
			Timestamp:         h.Timestamp,
			ActorRole:         h.ActorRole,
		})
	}
	return resp, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}

func orderResponse(order *model.Order) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		OrderID:           order.OrderID,
		OrderStatus:       order.OrderStatus,
		TransactionStatus: order.TransactionStatus,
		TotalAmount:       order.TotalAmount,
		Reason:            order.Reason,
		Notes:             order.Notes,
		CreatedAt:         order.CreatedAt,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ProductID:    item.ProductID,
			SKU:          item.SKU,
			Quantity:     item.Quantity,
			ProductName:  item.ProductName,
			ProductBrand: item.ProductBrand,
			UnitPrice:    item.UnitPrice,
		})
	}
	return resp
}

func orderResponses(orders []*model.Order) []*dto.OrderResponse {
	resp := make([]*dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, orderResponse(order))
	}
	return resp
}

type mailLine struct {
	ProductName string
	SKU         string
	Quantity    int
	UnitPrice   string
}

type mailData struct {
	OrderID     string
	Reason      string
	TotalAmount string
	Items       []mailLine
}

func orderMailData(order *model.Order, reason string) mailData {
	data := mailData{
		OrderID:     order.OrderID,
		Reason:      reason,
		TotalAmount: order.TotalAmount.StringFixed(0) + " VND",
	}
	for _, item := range order.Items {
		data.Items = append(data.Items, mailLine{
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(0) + " VND",
		})
	}
	return data
}
