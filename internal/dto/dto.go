package dto

import (
	"time"

	"github.com/Deco-Team/efurniture-server/internal/model"
	"github.com/shopspring/decimal"
)

type SuccessResponse struct {
	Success bool `json:"success"`
}

// -------- cart --------

type AddToCartRequest struct {
	ProductID string `json:"productId"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartItemRequest struct {
	ProductID string `json:"productId"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
}

type RemoveCartItemRequest struct {
	ProductID string `json:"productId"`
	SKU       string `json:"sku"`
}

type CartItemResponse struct {
	ProductID   string          `json:"productId"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
}

type CartResponse struct {
	Items       []CartItemResponse `json:"items"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
}

// -------- order --------

type CustomerContact struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	ShippingAddress string `json:"shippingAddress"`
}

type OrderItemRequest struct {
	ProductID string `json:"productId"`
	SKU       string `json:"sku"`
}

type CreateOrderRequest struct {
	Customer      CustomerContact     `json:"customer"`
	Items         []OrderItemRequest  `json:"items"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	Notes         string              `json:"notes"`
}

// CreateOrderResponse carries what the client needs to redirect to checkout.
type CreateOrderResponse struct {
	OrderID string `json:"orderId"`
	PayURL  string `json:"payUrl"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type AssignDeliveryRequest struct {
	AssigneeID string `json:"assigneeId"`
}

type OrderItemResponse struct {
	ProductID    string          `json:"productId"`
	SKU          string          `json:"sku"`
	Quantity     int             `json:"quantity"`
	ProductName  string          `json:"productName"`
	ProductBrand string          `json:"productBrand"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
}

type OrderResponse struct {
	OrderID           string                  `json:"orderId"`
	OrderStatus       model.OrderStatus       `json:"orderStatus"`
	TransactionStatus model.TransactionStatus `json:"transactionStatus"`
	TotalAmount       decimal.Decimal         `json:"totalAmount"`
	Items             []OrderItemResponse     `json:"items,omitempty"`
	Reason            string                  `json:"reason,omitempty"`
	Notes             string                  `json:"notes,omitempty"`
	CreatedAt         time.Time               `json:"createdAt"`
}

type OrderHistoryResponse struct {
	OrderStatus       model.OrderStatus       `json:"orderStatus"`
	TransactionStatus model.TransactionStatus `json:"transactionStatus"`
	Timestamp         time.Time               `json:"timestamp"`
	ActorRole         model.UserRole          `json:"actorRole"`
}

// -------- catalog --------

type CreateVariantRequest struct {
	SKU      string          `json:"sku"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Color    string          `json:"color"`
	Material string          `json:"material"`
}

type CreateProductRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Brand       string                 `json:"brand"`
	Image       string                 `json:"image"`
	Variants    []CreateVariantRequest `json:"variants"`
}

// -------- customer --------

type RegisterCustomerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type RegisterCustomerResponse struct {
	CustomerID  string `json:"customerId"`
	AccessToken string `json:"accessToken"`
}

// -------- staff / task --------

type CreateStaffRequest struct {
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Role      model.UserRole `json:"role"`
}

type IDResponse struct {
	ID string `json:"id"`
}
