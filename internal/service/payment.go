package service

import (
	"context"
	"fmt"

	"github.com/Deco-Team/efurniture-server/internal/apperror"
	"github.com/Deco-Team/efurniture-server/internal/client"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"github.com/Deco-Team/efurniture-server/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService owns gateway selection and webhook reconciliation. Strategy
// selection is stateless: the method travels as a parameter on every call, so
// concurrent requests for different providers cannot interfere.
type PaymentService interface {
	Gateway(method model.PaymentMethod) (client.PaymentGateway, error)
	VerifyIPN(method model.PaymentMethod, body []byte) (*client.Callback, error)
	ProcessWebhook(ctx context.Context, cb *client.Callback) error
}

type paymentServiceImpl struct {
	db          *gorm.DB
	gateways    map[model.PaymentMethod]client.PaymentGateway
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	mailer      client.Mailer
	logger      *zap.Logger
}

func NewPaymentService(
	db *gorm.DB,
	gateways []client.PaymentGateway,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	mailer client.Mailer,
	logger *zap.Logger,
) PaymentService {
	byMethod := make(map[model.PaymentMethod]client.PaymentGateway, len(gateways))
	for _, gw := range gateways {
		byMethod[gw.Method()] = gw
	}
	return &paymentServiceImpl{
		db:          db,
		gateways:    byMethod,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		mailer:      mailer,
		logger:      logger.Named("payment"),
	}
}

func (s *paymentServiceImpl) Gateway(method model.PaymentMethod) (client.PaymentGateway, error) {
	gw, ok := s.gateways[method]
	if !ok {
		return nil, apperror.ErrValidation.WithCause(fmt.Errorf("unsupported payment method %q", method))
	}
	return gw, nil
}

func (s *paymentServiceImpl) VerifyIPN(method model.PaymentMethod, body []byte) (*client.Callback, error) {
	gw, err := s.Gateway(method)
	if err != nil {
		return nil, err
	}
	return gw.VerifyIPN(body)
}

// ProcessWebhook reconciles a verified gateway callback with the order it
// references. Gateways deliver at least once, so the whole success branch
// hangs off a conditional DRAFT->CAPTURED flip: a re-delivered callback finds
// zero matching rows and becomes a no-op before any inventory or cart write.
func (s *paymentServiceImpl) ProcessWebhook(ctx context.Context, cb *client.Callback) error {
	order, err := s.orderRepo.FindByOrderID(ctx, cb.OrderID)
	if err != nil {
		return err
	}

	if !cb.Success {
		return s.processFailure(ctx, order, cb)
	}

	captured, err := s.processSuccess(ctx, order, cb)
	if err != nil {
		return err
	}

	// post-commit, best-effort; only the delivery that actually captured the
	// payment mails, so re-deliveries stay side-effect free
	if captured {
		if mailErr := s.mailer.SendTemplatedEmail(order.Email, "Order "+order.OrderID+" confirmed", "order_confirmation", orderMailData(order, "")); mailErr != nil {
			s.logger.Warn("confirmation email failed",
				zap.String("order_id", order.OrderID), zap.Error(mailErr))
		}
	}
	return nil
}

// processSuccess reports whether this delivery performed the capture.
func (s *paymentServiceImpl) processSuccess(ctx context.Context, order *model.Order, cb *client.Callback) (bool, error) {
	var flipped bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		flipped, err = s.orderRepo.Transition(ctx, tx, order.OrderID,
			[]model.OrderStatus{model.OrderPending},
			[]model.TransactionStatus{model.TransactionDraft},
			map[string]interface{}{"transaction_status": model.TransactionCaptured})
		if err != nil {
			return err
		}
		if !flipped {
			// capture only ever flips DRAFT; anything else (already CAPTURED,
			// ERROR, CANCELED) is a terminal state for this callback, and an
			// error here would only make the provider retry forever
			current, err := s.orderRepo.FindByOrderIDTx(ctx, tx, order.OrderID)
			if err != nil {
				return err
			}
			s.logger.Info("success webhook ignored, order not in DRAFT",
				zap.String("order_id", order.OrderID),
				zap.String("transaction_status", string(current.TransactionStatus)))
			return nil
		}

		// Stock is re-validated here, not at order creation: the conditional
		// decrement both checks and reserves, so the losing side of a race on
		// the last unit fails with NotEnoughStock and the whole tx rolls back.
		for _, item := range order.Items {
			if err := s.productRepo.ReserveStock(ctx, tx, item.SKU, item.Quantity); err != nil {
				return err
			}
		}

		if err := s.consumeCartLines(ctx, tx, order); err != nil {
			return err
		}

		if err := s.paymentRepo.UpdateTransaction(ctx, tx, order.PaymentID,
			model.TransactionCaptured, string(cb.Raw)); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}

		return s.orderRepo.AppendHistory(ctx, tx, &model.OrderHistory{
			OrderID:           order.OrderID,
			OrderStatus:       model.OrderPending,
			TransactionStatus: model.TransactionCaptured,
			Timestamp:         nowUTC(),
			ActorID:           order.CustomerID,
			ActorRole:         model.RoleCustomer,
		})
	})
	if err != nil {
		return false, err
	}
	return flipped, nil
}

func (s *paymentServiceImpl) processFailure(ctx context.Context, order *model.Order, cb *client.Callback) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flipped, err := s.orderRepo.Transition(ctx, tx, order.OrderID,
			[]model.OrderStatus{model.OrderPending},
			[]model.TransactionStatus{model.TransactionDraft},
			map[string]interface{}{"transaction_status": model.TransactionError})
		if err != nil {
			return err
		}
		if !flipped {
			// captured or already errored; a late failure callback changes nothing
			s.logger.Info("failure webhook ignored, order not in DRAFT",
				zap.String("order_id", order.OrderID))
			return nil
		}

		if err := s.paymentRepo.UpdateTransaction(ctx, tx, order.PaymentID,
			model.TransactionError, string(cb.Raw)); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}

		return s.orderRepo.AppendHistory(ctx, tx, &model.OrderHistory{
			OrderID:           order.OrderID,
			OrderStatus:       model.OrderPending,
			TransactionStatus: model.TransactionError,
			Timestamp:         nowUTC(),
			ActorID:           order.CustomerID,
			ActorRole:         model.RoleCustomer,
		})
	})
}

// consumeCartLines clears the order's lines from the live cart. Confirmation
// trusts the order snapshot for the item set, so lines the customer removed or
// re-ordered since checkout are simply skipped.
func (s *paymentServiceImpl) consumeCartLines(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	cart, err := s.cartRepo.FindByCustomerID(ctx, tx, order.CustomerID)
	if err != nil || cart == nil {
		return err
	}

	var consumed []uint
	for _, item := range order.Items {
		line := findCartItem(cart.Items, item.ProductID, item.SKU)
		if line == nil {
			continue
		}
		consumed = append(consumed, line.ID)
		amount := item.UnitPrice.Mul(decimalFromInt(line.Quantity))
		if err := s.cartRepo.AdjustTotal(ctx, tx, cart.ID, amount.Neg()); err != nil {
			return fmt.Errorf("adjust cart total: %w", err)
		}
	}

	return s.cartRepo.RemoveItems(ctx, tx, consumed)
}
