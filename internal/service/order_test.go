package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Deco-Team/efurniture-server/internal/apperror"
	"github.com/Deco-Team/efurniture-server/internal/dto"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var staffActor = Actor{ID: "staff1", Role: model.RoleStaff}

// checkoutPaid drives a cart through checkout and a successful webhook.
func checkoutPaid(t *testing.T, env *testEnv, customerID, productID, sku string, quantity int) string {
	t.Helper()

	env.mustAddToCart(t, customerID, productID, sku, quantity)
	resp := env.mustCreateOrder(t, customerID, productID, sku)
	require.NoError(t, env.payments.ProcessWebhook(context.Background(), env.successCallback(resp.OrderID)))
	return resp.OrderID
}

func TestCreateOrderFromCart(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)
	env.mustAddToCart(t, "cust1", "p1", "SKU-1", 2)

	resp := env.mustCreateOrder(t, "cust1", "p1", "SKU-1")
	assert.True(t, strings.HasPrefix(resp.OrderID, "EF"), "order id %s", resp.OrderID)
	assert.Equal(t, "https://pay.example.com/"+resp.OrderID, resp.PayURL)

	orderStatus, txnStatus := env.orderState(t, resp.OrderID)
	assert.Equal(t, model.OrderPending, orderStatus)
	assert.Equal(t, model.TransactionDraft, txnStatus)

	order, err := env.orderRepo.FindByOrderID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "Oak Table p1", order.Items[0].ProductName)
	assert.True(t, order.TotalAmount.Equal(dec(200)), "total %s", order.TotalAmount)

	// neither stock nor the cart moves until the gateway confirms
	assert.Equal(t, 5, env.variantQuantity(t, "p1", "SKU-1"))
	cart, err := env.carts.GetCart(context.Background(), "cust1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	history, err := env.orderRepo.GetHistory(context.Background(), resp.OrderID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.OrderPending, history[0].OrderStatus)
	assert.Equal(t, model.TransactionDraft, history[0].TransactionStatus)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)

	_, err := env.orders.CreateOrder(context.Background(), "cust1", &dto.CreateOrderRequest{
		Items:         []dto.OrderItemRequest{{ProductID: "p1", SKU: "SKU-1"}},
		PaymentMethod: model.PaymentMomo,
	})
	assert.ErrorIs(t, err, apperror.ErrCartEmpty)
}

func TestCreateOrderItemNotInCart(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)
	env.seedProduct(t, "p2", "SKU-2", 50, 5)
	env.mustAddToCart(t, "cust1", "p1", "SKU-1", 1)

	_, err := env.orders.CreateOrder(context.Background(), "cust1", &dto.CreateOrderRequest{
		Items:         []dto.OrderItemRequest{{ProductID: "p2", SKU: "SKU-2"}},
		PaymentMethod: model.PaymentMomo,
	})
	assert.ErrorIs(t, err, apperror.ErrOrderItemsInvalid)

	// rejected before the gateway call; nothing persisted
	assert.Equal(t, 0, env.gateway.createCalls)
	orders, err := env.orders.ListCustomerOrders(context.Background(), "cust1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderGatewayFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)
	env.mustAddToCart(t, "cust1", "p1", "SKU-1", 1)
	env.gateway.createErr = errors.New("gateway down")

	_, err := env.orders.CreateOrder(context.Background(), "cust1", &dto.CreateOrderRequest{
		Items:         []dto.OrderItemRequest{{ProductID: "p1", SKU: "SKU-1"}},
		PaymentMethod: model.PaymentMomo,
	})
	assert.ErrorIs(t, err, apperror.ErrPaymentGateway)

	orders, err := env.orders.ListCustomerOrders(context.Background(), "cust1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderLifecycleHappyPath(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)
	orderID := checkoutPaid(t, env, "cust1", "p1", "SKU-1", 2)
	ctx := context.Background()

	require.NoError(t, env.orders.ConfirmOrder(ctx, orderID, staffActor))
	orderStatus, _ := env.orderState(t, orderID)
	assert.Equal(t, model.OrderConfirmed, orderStatus)

	deliveryActor := Actor{ID: "ds1", Role: model.RoleDeliveryStaff}
	require.NoError(t, env.orders.DeliverOrder(ctx, orderID, deliveryActor))
	orderStatus, _ = env.orderState(t, orderID)
	assert.Equal(t, model.OrderDelivering, orderStatus)

	require.NoError(t, env.orders.CompleteOrder(ctx, orderID, deliveryActor))
	orderStatus, txnStatus := env.orderState(t, orderID)
	assert.Equal(t, model.OrderCompleted, orderStatus)
	assert.Equal(t, model.TransactionCaptured, txnStatus)

	order, err := env.orderRepo.FindByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.NotNil(t, order.DeliveryDate)
	assert.NotNil(t, order.CompleteDate)

	history, err := env.orderRepo.GetHistory(ctx, orderID)
	require.NoError(t, err)
	assert.Len(t, history, 5) // draft, capture, confirm, deliver, complete
}

func TestConfirmRequiresCapturedPayment(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)
	env.mustAddToCart(t, "cust1", "p1", "SKU-1", 1)
	resp := env.mustCreateOrder(t, "cust1", "p1", "SKU-1")

	err := env.orders.ConfirmOrder(context.Background(), resp.OrderID, staffActor)
	assert.ErrorIs(t, err, apperror.ErrOrderStatusInvalid)
}

func TestDeliverRequiresConfirmed(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)
	orderID := checkoutPaid(t, env, "cust1", "p1", "SKU-1", 1)

	err := env.orders.DeliverOrder(context.Background(), orderID, Actor{ID: "ds1", Role: model.RoleDeliveryStaff})
	assert.ErrorIs(t, err, apperror.ErrOrderStatusInvalid)
}

func TestAssignDeliveryOpensShippingTask(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)
	orderID := checkoutPaid(t, env, "cust1", "p1", "SKU-1", 1)
	ctx := context.Background()

	require.NoError(t, env.staffRepo.Create(ctx, &model.Staff{
		ID: "ds1", Email: "ds1@efurniture.vn", Role: model.RoleDeliveryStaff, Status: model.StaffActive,
	}))
	require.NoError(t, env.orders.ConfirmOrder(ctx, orderID, staffActor))

	require.NoError(t, env.orders.AssignDelivery(ctx, orderID, "ds1", staffActor))

	order, err := env.orderRepo.FindByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, order.IsDeliveryAssigned)

	tasks, err := env.taskRepo.ListForAssignee(ctx, "ds1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.TaskShipping, tasks[0].Type)
	assert.Equal(t, model.TaskPending, tasks[0].Status)
	assert.Equal(t, orderID, tasks[0].OrderID)
}

func TestAssignDeliveryRejectsNonDeliveryStaff(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)
	orderID := checkoutPaid(t, env, "cust1", "p1", "SKU-1", 1)
	ctx := context.Background()

	require.NoError(t, env.staffRepo.Create(ctx, &model.Staff{
		ID: "s2", Email: "s2@efurniture.vn", Role: model.RoleStaff, Status: model.StaffActive,
	}))
	require.NoError(t, env.orders.ConfirmOrder(ctx, orderID, staffActor))

	err := env.orders.AssignDelivery(ctx, orderID, "s2", staffActor)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCancelOrderReleasesStockAndRefunds(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)
	orderID := checkoutPaid(t, env, "cust1", "p1", "SKU-1", 2)
	ctx := context.Background()

	require.Equal(t, 3, env.variantQuantity(t, "p1", "SKU-1"))

	customer := Actor{ID: "cust1", Role: model.RoleCustomer}
	require.NoError(t, env.orders.CancelOrder(ctx, orderID, "changed my mind", customer))

	orderStatus, txnStatus := env.orderState(t, orderID)
	assert.Equal(t, model.OrderCanceled, orderStatus)
	assert.Equal(t, model.TransactionRefunded, txnStatus)
	assert.Equal(t, 5, env.variantQuantity(t, "p1", "SKU-1"))
	assert.Equal(t, 1, env.gateway.refundCalls)
	assert.Contains(t, env.mailer.sent, "order_cancellation")

	// the status query targets the refund just issued, not a fresh id
	assert.Equal(t, env.gateway.refundRequestID, env.gateway.queryRequestID)
	assert.Equal(t, "rf-"+env.gateway.refundRequestID, env.gateway.queriedRefundID)

	order, err := env.orderRepo.FindByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "changed my mind", order.Reason)

	history, err := env.orderRepo.GetHistory(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, history, 4) // draft, capture, cancel, refund
	assert.Equal(t, model.TransactionCanceled, history[2].TransactionStatus)
	assert.Equal(t, model.TransactionRefunded, history[3].TransactionStatus)
}

func TestCancelAfterConfirm(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)
	orderID := checkoutPaid(t, env, "cust1", "p1", "SKU-1", 1)
	ctx := context.Background()

	require.NoError(t, env.orders.ConfirmOrder(ctx, orderID, staffActor))
	require.NoError(t, env.orders.CancelOrder(ctx, orderID, "customer request", staffActor))

	orderStatus, txnStatus := env.orderState(t, orderID)
	assert.Equal(t, model.OrderCanceled, orderStatus)
	assert.Equal(t, model.TransactionRefunded, txnStatus)
}

func TestCancelRejectedOnceDelivering(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)
	orderID := checkoutPaid(t, env, "cust1", "p1", "SKU-1", 1)
	ctx := context.Background()

	require.NoError(t, env.orders.ConfirmOrder(ctx, orderID, staffActor))
	require.NoError(t, env.orders.DeliverOrder(ctx, orderID, staffActor))

	err := env.orders.CancelOrder(ctx, orderID, "too late", staffActor)
	assert.ErrorIs(t, err, apperror.ErrOrderStatusInvalid)
	assert.Equal(t, 0, env.gateway.refundCalls)
}

// A refund failure must leave the order canceled with stock already released;
// that is the state an operator retries from.
func TestCancelRefundFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)
	orderID := checkoutPaid(t, env, "cust1", "p1", "SKU-1", 2)
	env.gateway.refundErr = errors.New("gateway down")

	err := env.orders.CancelOrder(context.Background(), orderID, "changed my mind", Actor{ID: "cust1", Role: model.RoleCustomer})
	assert.ErrorIs(t, err, apperror.ErrPaymentGateway)

	orderStatus, txnStatus := env.orderState(t, orderID)
	assert.Equal(t, model.OrderCanceled, orderStatus)
	assert.Equal(t, model.TransactionCanceled, txnStatus)
	assert.Equal(t, 5, env.variantQuantity(t, "p1", "SKU-1"))
}

func TestGetOrderHistoryScopedToCustomer(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)
	orderID := checkoutPaid(t, env, "cust1", "p1", "SKU-1", 1)
	ctx := context.Background()

	history, err := env.orders.GetOrderHistory(ctx, "cust1", orderID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = env.orders.GetOrderHistory(ctx, "cust2", orderID)
	assert.ErrorIs(t, err, apperror.ErrOrderNotFound)
}

func TestListCustomerOrders(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 10)
	checkoutPaid(t, env, "cust1", "p1", "SKU-1", 1)
	checkoutPaid(t, env, "cust2", "p1", "SKU-1", 1)

	orders, err := env.orders.ListCustomerOrders(context.Background(), "cust1", 10, 0)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
