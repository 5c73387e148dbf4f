package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/velora/beauty-orders-api/internal/dto"
	"github.com/velora/beauty-orders-api/internal/events"
	"github.com/velora/beauty-orders-api/internal/model"
	"github.com/velora/beauty-orders-api/internal/repository"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNotPending    = errors.New("can only delete pending orders")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidOrderStatus = errors.New("status must be pending, processing, shipped, delivered, or cancelled")
	ErrEmptyOrder         = errors.New("order must contain at least one item")
)

// ProductCache drops cached product reads after a stock change.
type ProductCache interface {
	InvalidateProduct(ctx context.Context, id uuid.UUID)
}

type OrderService struct {
	orderRepo    repository.OrderRepository
	publisher    *events.Publisher
	productCache ProductCache
}

func NewOrderService(orderRepo repository.OrderRepository, publisher *events.Publisher, productCache ProductCache) *OrderService {
	return &OrderService{orderRepo: orderRepo, publisher: publisher, productCache: productCache}
}

// Place creates an order atomically: stock checks, decrements, price
// snapshots, and the order rows all commit or none do.
func (s *OrderService) Place(ctx context.Context, req dto.CreateOrderRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	lines := make([]model.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, ErrEmptyOrder
		}
		lines = append(lines, model.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order := &model.Order{
		CustomerID:  req.CustomerID,
		OrderNumber: newOrderNumber(),
		Status:      model.OrderStatusPending,
	}
	if err := s.orderRepo.Place(ctx, order, lines); err != nil {
		switch {
		case errors.Is(err, repository.ErrCustomerNotFound):
			return nil, ErrCustomerNotFound
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, ErrInsufficientStock
		}
		return nil, fmt.Errorf("place order: %w", err)
	}

	s.invalidateProducts(ctx, order.Items)
	s.publisher.PublishOrderEvent(ctx, events.OrderCreated, order)
	return order, nil
}

func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, req dto.ListOrdersRequest) ([]model.Order, error) {
	return s.orderRepo.List(ctx, req.Limit, req.Offset)
}

func (s *OrderService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	return s.orderRepo.ListByCustomer(ctx, customerID)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Order, error) {
	orderStatus := model.OrderStatus(status)
	if !orderStatus.Valid() {
		return nil, ErrInvalidOrderStatus
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, orderStatus); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publisher.PublishOrderEvent(ctx, events.OrderStatusChanged, order)
	return order, nil
}

// Cancel deletes a pending order and restores the consumed stock.
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return ErrOrderNotFound
	}

	if err := s.orderRepo.CancelPending(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			return ErrOrderNotFound
		case errors.Is(err, repository.ErrOrderNotPending):
			return ErrOrderNotPending
		}
		return fmt.Errorf("cancel order: %w", err)
	}

	s.invalidateProducts(ctx, order.Items)
	order.Status = model.OrderStatusCancelled
	s.publisher.PublishOrderEvent(ctx, events.OrderCancelled, order)
	return nil
}

func (s *OrderService) invalidateProducts(ctx context.Context, items []model.OrderItem) {
	if s.productCache == nil {
		return
	}
	for _, item := range items {
		s.productCache.InvalidateProduct(ctx, item.ProductID)
	}
}

func (s *OrderService) StatsByStatus(ctx context.Context) ([]dto.OrderStatusStats, error) {
	return s.orderRepo.StatsByStatus(ctx)
}

// Order numbers are timestamp-derived with a short random suffix so orders
// placed in the same second still satisfy the unique index.
func newOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%s",
		time.Now().UTC().Format("20060102150405"),
		strings.Split(uuid.NewString(), "-")[0],
	)
}
