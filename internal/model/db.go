package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductActive     ProductStatus = "ACTIVE"
	ProductOutOfStock ProductStatus = "OUT_OF_STOCK"
	ProductInactive   ProductStatus = "INACTIVE"
	ProductDeleted    ProductStatus = "DELETED"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderDelivering OrderStatus = "DELIVERING"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderCanceled   OrderStatus = "CANCELED"
)

type TransactionStatus string

const (
	TransactionDraft    TransactionStatus = "DRAFT"
	TransactionCaptured TransactionStatus = "CAPTURED"
	TransactionError    TransactionStatus = "ERROR"
	TransactionCanceled TransactionStatus = "CANCELED"
	TransactionRefunded TransactionStatus = "REFUNDED"
)

type PaymentMethod string

const (
	PaymentMomo    PaymentMethod = "MOMO"
	PaymentZaloPay PaymentMethod = "ZALO_PAY"
)

type UserRole string

const (
	RoleAdmin         UserRole = "ADMIN"
	RoleStaff         UserRole = "STAFF"
	RoleDeliveryStaff UserRole = "DELIVERY_STAFF"
	RoleCustomer      UserRole = "CUSTOMER"
)

type Product struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:256;not null"`
	Slug        string `gorm:"size:256;uniqueIndex"`
	Description string
	Brand       string        `gorm:"size:128"`
	Image       string        `gorm:"size:512"`
	Status      ProductStatus `gorm:"size:32;index;not null;default:ACTIVE"`
	Variants    []Variant     `gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Variant quantity is the remaining stock; it is only ever changed through
// conditional updates so it can never go below zero.
type Variant struct {
	SKU       string          `gorm:"primaryKey;size:64"`
	ProductID string          `gorm:"size:36;index;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Quantity  int             `gorm:"not null"`
	Color     string          `gorm:"size:64"`
	Material  string          `gorm:"size:64"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Cart struct {
	ID          uint            `gorm:"primaryKey"`
	CustomerID  string          `gorm:"size:36;uniqueIndex;not null"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Items       []CartItem      `gorm:"foreignKey:CartID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CartItem struct {
	ID        uint   `gorm:"primaryKey"`
	CartID    uint   `gorm:"index;not null"`
	ProductID string `gorm:"size:36;not null"`
	SKU       string `gorm:"size:64;not null"`
	Quantity  int    `gorm:"not null"`
	CreatedAt time.Time
}

// Order keys on the human-readable external reference; it is the value
// carried by gateway transactions and webhooks.
type Order struct {
	OrderID string `gorm:"primaryKey;size:64"`

	// Customer snapshot captured at order time.
	CustomerID      string `gorm:"size:36;index;not null"`
	FirstName       string `gorm:"size:64"`
	LastName        string `gorm:"size:64"`
	Email           string `gorm:"size:256"`
	Phone           string `gorm:"size:32"`
	ShippingAddress string `gorm:"size:512"`

	TotalAmount       decimal.Decimal   `gorm:"type:decimal(20,2);not null"`
	OrderStatus       OrderStatus       `gorm:"size:32;index;not null;default:PENDING"`
	TransactionStatus TransactionStatus `gorm:"size:32;index;not null;default:DRAFT"`
	PaymentID         uint              `gorm:"index;not null"`

	Reason             string `gorm:"size:512"`
	Notes              string `gorm:"size:512"`
	IsDeliveryAssigned bool   `gorm:"not null;default:false"`
	DeliveryDate       *time.Time
	CompleteDate       *time.Time

	Items   []OrderItem    `gorm:"foreignKey:OrderID;references:OrderID"`
	History []OrderHistory `gorm:"foreignKey:OrderID;references:OrderID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem carries a denormalized product snapshot; historical reads never
// re-resolve the product by reference.
type OrderItem struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   string `gorm:"size:64;index;not null"`
	ProductID string `gorm:"size:36;not null"`
	SKU       string `gorm:"size:64;not null"`
	Quantity  int    `gorm:"not null"`

	ProductName  string          `gorm:"size:256"`
	ProductBrand string          `gorm:"size:128"`
	ProductImage string          `gorm:"size:512"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(20,2);not null"`

	CreatedAt time.Time
}

// OrderHistory rows are append-only.
type OrderHistory struct {
	ID                uint              `gorm:"primaryKey"`
	OrderID           string            `gorm:"size:64;index;not null"`
	OrderStatus       OrderStatus       `gorm:"size:32;not null"`
	TransactionStatus TransactionStatus `gorm:"size:32;not null"`
	Timestamp         time.Time         `gorm:"not null"`
	ActorID           string            `gorm:"size:36"`
	ActorRole         UserRole          `gorm:"size:32"`
}

type Payment struct {
	ID                uint              `gorm:"primaryKey"`
	TransactionStatus TransactionStatus `gorm:"size:32;index;not null;default:DRAFT"`
	PaymentMethod     PaymentMethod     `gorm:"size:32;not null"`
	Amount            decimal.Decimal   `gorm:"type:decimal(20,2);not null"`
	// Latest raw gateway payload, stored opaquely.
	Transaction string               `gorm:"type:text"`
	History     []PaymentTransaction `gorm:"foreignKey:PaymentID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PaymentTransaction keeps every raw gateway payload ever seen for a payment.
type PaymentTransaction struct {
	ID        uint   `gorm:"primaryKey"`
	PaymentID uint   `gorm:"index;not null"`
	Payload   string `gorm:"type:text"`
	CreatedAt time.Time
}

type Customer struct {
	ID        string `gorm:"primaryKey;size:36"`
	FirstName string `gorm:"size:64"`
	LastName  string `gorm:"size:64"`
	Email     string `gorm:"size:256;uniqueIndex;not null"`
	Phone     string `gorm:"size:32"`
	Address   string `gorm:"size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type StaffStatus string

const (
	StaffActive   StaffStatus = "ACTIVE"
	StaffInactive StaffStatus = "INACTIVE"
)

type Staff struct {
	ID        string      `gorm:"primaryKey;size:36"`
	FirstName string      `gorm:"size:64"`
	LastName  string      `gorm:"size:64"`
	Email     string      `gorm:"size:256;uniqueIndex;not null"`
	Phone     string      `gorm:"size:32"`
	Role      UserRole    `gorm:"size:32;index;not null"`
	Status    StaffStatus `gorm:"size:32;not null;default:ACTIVE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TaskType string

const (
	TaskShipping TaskType = "SHIPPING"
	TaskChore    TaskType = "CHORE"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
)

type Task struct {
	ID          uint       `gorm:"primaryKey"`
	Type        TaskType   `gorm:"size:32;index;not null"`
	Title       string     `gorm:"size:256;not null"`
	Description string     `gorm:"size:512"`
	Status      TaskStatus `gorm:"size:32;index;not null;default:PENDING"`
	Priority    string     `gorm:"size:16"`
	AssigneeID  string     `gorm:"size:36;index"`
	OrderID     string     `gorm:"size:64;index"`
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
