package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velora/beauty-orders-api/internal/model"
)

// --- Auth ---

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

// LoginRequest is form-encoded; the username field carries the email.
type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type UserResponse struct {
	ID       uuid.UUID  `json:"id"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	IsActive bool       `json:"is_active"`
}

// --- Product ---

type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	SKU           string          `json:"sku" binding:"required"`
	Description   string          `json:"description"`
	Category      string          `json:"category" binding:"required"`
	CurrentPrice  decimal.Decimal `json:"current_price" binding:"required"`
	StockQuantity int             `json:"stock_quantity" binding:"min=0"`
	Keywords      string          `json:"keywords"`
}

type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	SKU           *string          `json:"sku"`
	Description   *string          `json:"description"`
	Category      *string          `json:"category"`
	CurrentPrice  *decimal.Decimal `json:"current_price"`
	StockQuantity *int             `json:"stock_quantity" binding:"omitempty,min=0"`
	Keywords      *string          `json:"keywords"`
}

type ListProductsRequest struct {
	Offset   int    `form:"offset,default=0" binding:"min=0"`
	Limit    int    `form:"limit,default=100" binding:"min=1,max=500"`
	Category string `form:"category"`
}

type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	StockQuantity int             `json:"stock_quantity"`
	Keywords      string          `json:"keywords"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type BulkPriceUpdateRequest struct {
	Keyword         string          `json:"keyword" binding:"required"`
	PriceChangeType string          `json:"price_change_type" binding:"required"`
	Value           decimal.Decimal `json:"value" binding:"required"`
}

type BulkPriceUpdateResponse struct {
	Updated int    `json:"updated"`
	Keyword string `json:"keyword"`
	Message string `json:"message"`
}

// --- Customer ---

type CreateCustomerRequest struct {
	Name    string  `json:"name" binding:"required"`
	Type    string  `json:"type" binding:"required"`
	Email   string  `json:"email" binding:"required,email"`
	Phone   string  `json:"phone" binding:"required"`
	Address string  `json:"address" binding:"required"`
	TaxID   *string `json:"tax_id"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	Type    *string `json:"type"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	TaxID   *string `json:"tax_id"`
}

type ListCustomersRequest struct {
	Offset int    `form:"offset,default=0" binding:"min=0"`
	Limit  int    `form:"limit,default=100" binding:"min=1,max=500"`
	Type   string `form:"type"`
}

type CustomerResponse struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Type      model.CustomerType `json:"type"`
	Email     string             `json:"email"`
	Phone     string             `json:"phone"`
	Address   string             `json:"address"`
	TaxID     *string            `json:"tax_id,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// --- Order ---

type OrderLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	CustomerID uuid.UUID          `json:"customer_id" binding:"required"`
	Items      []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ListOrdersRequest struct {
	Offset int `form:"offset,default=0" binding:"min=0"`
	Limit  int `form:"limit,default=100" binding:"min=1,max=500"`
}

type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderResponse struct {
	ID          uuid.UUID           `json:"id"`
	CustomerID  uuid.UUID           `json:"customer_id"`
	OrderNumber string              `json:"order_number"`
	Status      model.OrderStatus   `json:"status"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Items       []OrderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// --- Aggregates ---

type OrderStatusStats struct {
	Status       model.OrderStatus `json:"status"`
	Count        int               `json:"count"`
	TotalRevenue decimal.Decimal   `json:"total_revenue"`
}

type CustomerTypeStats struct {
	Type  model.CustomerType `json:"type"`
	Count int                `json:"count"`
}

type TopProduct struct {
	Name          string `json:"name"`
	OrderCount    int    `json:"order_count"`
	TotalQuantity int    `json:"total_quantity"`
}

type CustomerStatsResponse struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	TotalOrders  int             `json:"total_orders"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
	AverageOrder decimal.Decimal `json:"average_order"`
	TopProducts  []TopProduct    `json:"top_products"`
}

type DashboardStats struct {
	OrdersToday    int             `json:"orders_today"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalOrders    int             `json:"total_orders"`
	TotalCustomers int             `json:"total_customers"`
	TotalProducts  int             `json:"total_products"`
	LowStockCount  int             `json:"low_stock_count"`
	TopProducts    []TopProduct    `json:"top_products"`
}

type DailyRevenue struct {
	Date       string          `json:"date"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"order_count"`
}
