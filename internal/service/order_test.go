package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora/beauty-orders-api/internal/dto"
	"github.com/velora/beauty-orders-api/internal/model"
	"github.com/velora/beauty-orders-api/internal/repository"
)

type mockOrderRepo struct {
	orders    map[uuid.UUID]*model.Order
	customers map[uuid.UUID]bool
	products  map[uuid.UUID]*model.Product
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{
		orders:    make(map[uuid.UUID]*model.Order),
		customers: make(map[uuid.UUID]bool),
		products:  make(map[uuid.UUID]*model.Product),
	}
}

func (m *mockOrderRepo) Place(_ context.Context, order *model.Order, lines []model.OrderLine) error {
	if !m.customers[order.CustomerID] {
		return repository.ErrCustomerNotFound
	}
	for _, line := range lines {
		p, ok := m.products[line.ProductID]
		if !ok {
			return repository.ErrProductNotFound
		}
		if p.StockQuantity < line.Quantity {
			return repository.ErrInsufficientStock
		}
	}

	order.ID = uuid.New()
	order.TotalAmount = decimal.Zero
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	for _, line := range lines {
		p := m.products[line.ProductID]
		p.StockQuantity -= line.Quantity
		subtotal := p.CurrentPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		order.Items = append(order.Items, model.OrderItem{
			ID: uuid.New(), OrderID: order.ID, ProductID: line.ProductID,
			Quantity: line.Quantity, UnitPrice: p.CurrentPrice, Subtotal: subtotal,
		})
		order.TotalAmount = order.TotalAmount.Add(subtotal)
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) List(_ context.Context, limit, offset int) ([]model.Order, error) {
	var all []model.Order
	for _, o := range m.orders {
		all = append(all, *o)
	}
	return all, nil
}

func (m *mockOrderRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]model.Order, error) {
	var all []model.Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			all = append(all, *o)
		}
	}
	return all, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) error {
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (m *mockOrderRepo) CancelPending(_ context.Context, id uuid.UUID) error {
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if o.Status != model.OrderStatusPending {
		return repository.ErrOrderNotPending
	}
	for _, item := range o.Items {
		if p, ok := m.products[item.ProductID]; ok {
			p.StockQuantity += item.Quantity
		}
	}
	delete(m.orders, id)
	return nil
}

func (m *mockOrderRepo) StatsByStatus(_ context.Context) ([]dto.OrderStatusStats, error) {
	return nil, nil
}

func (m *mockOrderRepo) addCustomer() uuid.UUID {
	id := uuid.New()
	m.customers[id] = true
	return id
}

func (m *mockOrderRepo) addProduct(price float64, stock int) uuid.UUID {
	id := uuid.New()
	m.products[id] = &model.Product{
		ID: id, CurrentPrice: decimal.NewFromFloat(price), StockQuantity: stock,
	}
	return id
}

type recordingCache struct {
	invalidated []uuid.UUID
}

func (c *recordingCache) InvalidateProduct(_ context.Context, id uuid.UUID) {
	c.invalidated = append(c.invalidated, id)
}

func TestOrderService_Place(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)

	customerID := repo.addCustomer()
	productID := repo.addProduct(5.00, 10)

	order, err := svc.Place(context.Background(), dto.CreateOrderRequest{
		CustomerID: customerID,
		Items:      []dto.OrderLineRequest{{ProductID: productID, Quantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromFloat(15.00)), "got %s", order.TotalAmount)
	assert.Equal(t, 7, repo.products[productID].StockQuantity)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.NewFromFloat(5.00)))
	assert.True(t, order.Items[0].Subtotal.Equal(decimal.NewFromFloat(15.00)))
}

func TestOrderService_Place_InsufficientStock(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)

	customerID := repo.addCustomer()
	productID := repo.addProduct(5.00, 7)

	_, err := svc.Place(context.Background(), dto.CreateOrderRequest{
		CustomerID: customerID,
		Items:      []dto.OrderLineRequest{{ProductID: productID, Quantity: 20}},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// nothing committed
	assert.Equal(t, 7, repo.products[productID].StockQuantity)
	assert.Empty(t, repo.orders)
}

func TestOrderService_Place_CustomerNotFound(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)

	productID := repo.addProduct(5.00, 10)
	_, err := svc.Place(context.Background(), dto.CreateOrderRequest{
		CustomerID: uuid.New(),
		Items:      []dto.OrderLineRequest{{ProductID: productID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestOrderService_Place_ProductNotFound(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)

	customerID := repo.addCustomer()
	_, err := svc.Place(context.Background(), dto.CreateOrderRequest{
		CustomerID: customerID,
		Items:      []dto.OrderLineRequest{{ProductID: uuid.New(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestOrderService_Place_NoItems(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), nil, nil)

	_, err := svc.Place(context.Background(), dto.CreateOrderRequest{CustomerID: uuid.New()})
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestOrderService_GetByID_NotFound(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), nil, nil)

	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)

	customerID := repo.addCustomer()
	productID := repo.addProduct(5.00, 10)
	order, err := svc.Place(context.Background(), dto.CreateOrderRequest{
		CustomerID: customerID,
		Items:      []dto.OrderLineRequest{{ProductID: productID, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, updated.Status)
}

func TestOrderService_UpdateStatus_Invalid(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), nil, nil)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "returned")
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)
}

func TestOrderService_Cancel_RestoresStock(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)

	customerID := repo.addCustomer()
	productID := repo.addProduct(5.00, 10)
	order, err := svc.Place(context.Background(), dto.CreateOrderRequest{
		CustomerID: customerID,
		Items:      []dto.OrderLineRequest{{ProductID: productID, Quantity: 4}},
	})
	require.NoError(t, err)
	require.Equal(t, 6, repo.products[productID].StockQuantity)

	require.NoError(t, svc.Cancel(context.Background(), order.ID))
	assert.Equal(t, 10, repo.products[productID].StockQuantity)
	assert.Empty(t, repo.orders)
}

func TestOrderService_Cancel_NotPending(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)

	customerID := repo.addCustomer()
	productID := repo.addProduct(5.00, 10)
	order, err := svc.Place(context.Background(), dto.CreateOrderRequest{
		CustomerID: customerID,
		Items:      []dto.OrderLineRequest{{ProductID: productID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID, "shipped")
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), order.ID)
	assert.ErrorIs(t, err, ErrOrderNotPending)
	assert.Len(t, repo.orders, 1)
}

func TestOrderService_StockChangesInvalidateCache(t *testing.T) {
	repo := newMockOrderRepo()
	cache := &recordingCache{}
	svc := NewOrderService(repo, nil, cache)

	customerID := repo.addCustomer()
	productID := repo.addProduct(5.00, 10)

	order, err := svc.Place(context.Background(), dto.CreateOrderRequest{
		CustomerID: customerID,
		Items:      []dto.OrderLineRequest{{ProductID: productID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{productID}, cache.invalidated)

	require.NoError(t, svc.Cancel(context.Background(), order.ID))
	assert.Equal(t, []uuid.UUID{productID, productID}, cache.invalidated)
}

func TestOrderService_Cancel_NotFound(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), nil, nil)

	err := svc.Cancel(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
