package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an application error carrying a stable machine-readable code and
// the HTTP status it maps to at the boundary.
type Error struct {
	Code    string
	Message string
	Status  int
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause returns a copy of the error wrapping the underlying cause.
func (e *Error) WithCause(cause error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Status: e.Status, cause: cause}
}

// Is lets errors.Is match by code, so sentinel errors below work across
// WithCause copies.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func New(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

var (
	ErrValidation = New("VALIDATION_FAILED", "request validation failed", http.StatusBadRequest)

	ErrProductNotFound  = New("PRODUCT_NOT_FOUND", "product or variant not found", http.StatusNotFound)
	ErrOrderNotFound    = New("ORDER_NOT_FOUND", "order not found", http.StatusNotFound)
	ErrCustomerNotFound = New("CUSTOMER_NOT_FOUND", "customer not found", http.StatusNotFound)
	ErrStaffNotFound    = New("STAFF_NOT_FOUND", "staff not found", http.StatusNotFound)
	ErrTaskNotFound     = New("TASK_NOT_FOUND", "task not found", http.StatusNotFound)

	ErrNotEnoughStock     = New("NOT_ENOUGH_STOCK", "not enough stock for requested quantity", http.StatusBadRequest)
	ErrCartEmpty          = New("CART_EMPTY", "cart is empty", http.StatusBadRequest)
	ErrCartItemInvalid    = New("CART_ITEM_INVALID", "cart item not found", http.StatusBadRequest)
	ErrOrderItemsInvalid  = New("ORDER_ITEMS_INVALID", "order items do not match cart or stock", http.StatusBadRequest)
	ErrOrderStatusInvalid = New("ORDER_STATUS_INVALID", "order status does not allow this transition", http.StatusBadRequest)

	ErrPaymentGateway = New("PAYMENT_GATEWAY_ERROR", "payment gateway request failed", http.StatusBadGateway)

	ErrUnauthorized = New("UNAUTHORIZED", "missing or invalid credentials", http.StatusUnauthorized)
	ErrForbidden    = New("FORBIDDEN", "actor lacks the required capability", http.StatusForbidden)
)
