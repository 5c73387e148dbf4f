package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CustomerType string

const (
	CustomerTypeHotel       CustomerType = "hotel"
	CustomerTypeHairdresser CustomerType = "hairdresser"
	CustomerTypePharmacy    CustomerType = "pharmacy"
)

func (t CustomerType) Valid() bool {
	switch t {
	case CustomerTypeHotel, CustomerTypeHairdresser, CustomerTypePharmacy:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleSales Role = "sales"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSales
}

type Product struct {
	ID            uuid.UUID
	Name          string
	SKU           string
	Description   string
	Category      string
	CurrentPrice  decimal.Decimal
	StockQuantity int
	Keywords      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Customer struct {
	ID        uuid.UUID
	Name      string
	Type      CustomerType
	Email     string
	Phone     string
	Address   string
	TaxID     *string
	CreatedAt time.Time
}

type Order struct {
	ID          uuid.UUID
	CustomerID  uuid.UUID
	OrderNumber string
	Status      OrderStatus
	TotalAmount decimal.Decimal
	Items       []OrderItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// OrderLine is one requested (product, quantity) pair for order placement.
// Unit prices are snapshotted from the product at placement time, never
// supplied by the caller.
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
}

type OrderEvent struct {
	Type        string          `json:"type"`
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OccurredAt  time.Time       `json:"occurred_at"`
}
