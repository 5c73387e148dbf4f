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

type mockProductRepo struct {
	products map[uuid.UUID]*model.Product
	inUse    map[uuid.UUID]bool
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{
		products: make(map[uuid.UUID]*model.Product),
		inUse:    make(map[uuid.UUID]bool),
	}
}

func (m *mockProductRepo) skuTaken(sku string, except uuid.UUID) bool {
	for _, p := range m.products {
		if p.SKU == sku && p.ID != except {
			return true
		}
	}
	return false
}

func (m *mockProductRepo) Create(_ context.Context, p *model.Product) error {
	if m.skuTaken(p.SKU, uuid.Nil) {
		return repository.ErrDuplicate
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepo) List(_ context.Context, limit, offset int, category string) ([]model.Product, error) {
	var all []model.Product
	for _, p := range m.products {
		if category == "" || p.Category == category {
			all = append(all, *p)
		}
	}
	return all, nil
}

func (m *mockProductRepo) Search(_ context.Context, term string) ([]model.Product, error) {
	var all []model.Product
	for _, p := range m.products {
		all = append(all, *p)
	}
	return all, nil
}

func (m *mockProductRepo) Update(_ context.Context, p *model.Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return repository.ErrProductNotFound
	}
	if m.skuTaken(p.SKU, p.ID) {
		return repository.ErrDuplicate
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	if m.inUse[id] {
		return repository.ErrRestricted
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) matches(p *model.Product, keyword string) bool {
	return strings.Contains(p.Name, keyword) ||
		strings.Contains(p.SKU, keyword) ||
		strings.Contains(p.Keywords, keyword)
}

func (m *mockProductRepo) BulkAdjustPricesPercent(_ context.Context, keyword string, percent decimal.Decimal) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	factor := decimal.NewFromInt(1).Add(percent.Div(decimal.NewFromInt(100)))
	for id, p := range m.products {
		if m.matches(p, keyword) {
			p.CurrentPrice = p.CurrentPrice.Mul(factor)
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockProductRepo) BulkSetPrices(_ context.Context, keyword string, price decimal.Decimal) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, p := range m.products {
		if m.matches(p, keyword) {
			p.CurrentPrice = price
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func TestProductService_Create(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), nil)
	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Argan Oil Shampoo", SKU: "SKU1", Category: "haircare",
		CurrentPrice: decimal.NewFromFloat(5.00), StockQuantity: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "SKU1", resp.SKU)
	assert.Equal(t, 10, resp.StockQuantity)
}

func TestProductService_Create_DuplicateSKU(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), nil)
	req := dto.CreateProductRequest{
		Name: "A", SKU: "SKU1", Category: "haircare",
		CurrentPrice: decimal.NewFromFloat(5.00),
	}
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	req.Name = "B"
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrDuplicateSKU)
}

func TestProductService_Create_NegativePrice(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), nil)
	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "A", SKU: "SKU1", Category: "haircare",
		CurrentPrice: decimal.NewFromFloat(-1.00),
	})
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestProductService_GetByID_NotFound(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), nil)
	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_Update_PartialFields(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewProductService(repo, nil)

	created, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Night Cream", SKU: "SKU2", Category: "skincare",
		CurrentPrice: decimal.NewFromFloat(12.50), StockQuantity: 5, Keywords: "cream night",
	})
	require.NoError(t, err)

	newPrice := decimal.NewFromFloat(13.00)
	resp, err := svc.Update(context.Background(), created.ID, dto.UpdateProductRequest{
		CurrentPrice: &newPrice,
	})
	require.NoError(t, err)

	// only the supplied field changed
	assert.True(t, resp.CurrentPrice.Equal(newPrice))
	assert.Equal(t, "Night Cream", resp.Name)
	assert.Equal(t, "SKU2", resp.SKU)
	assert.Equal(t, 5, resp.StockQuantity)
}

func TestProductService_Update_NegativePrice(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewProductService(repo, nil)

	created, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "A", SKU: "SKU1", Category: "haircare", CurrentPrice: decimal.NewFromFloat(5.00),
	})
	require.NoError(t, err)

	bad := decimal.NewFromFloat(-0.01)
	_, err = svc.Update(context.Background(), created.ID, dto.UpdateProductRequest{CurrentPrice: &bad})
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestProductService_Update_DuplicateSKU(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewProductService(repo, nil)

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "A", SKU: "SKU1", Category: "haircare", CurrentPrice: decimal.NewFromFloat(1),
	})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "B", SKU: "SKU2", Category: "haircare", CurrentPrice: decimal.NewFromFloat(1),
	})
	require.NoError(t, err)

	taken := "SKU1"
	_, err = svc.Update(context.Background(), second.ID, dto.UpdateProductRequest{SKU: &taken})
	assert.ErrorIs(t, err, ErrDuplicateSKU)
}

func TestProductService_Delete_InUse(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewProductService(repo, nil)

	created, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "A", SKU: "SKU1", Category: "haircare", CurrentPrice: decimal.NewFromFloat(1),
	})
	require.NoError(t, err)
	repo.inUse[created.ID] = true

	err = svc.Delete(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrProductInUse)
}

func TestProductService_BulkUpdatePrices_InvalidType(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewProductService(repo, nil)

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Argan Oil", SKU: "SKU1", Category: "haircare", CurrentPrice: decimal.NewFromFloat(5.00),
	})
	require.NoError(t, err)

	_, err = svc.BulkUpdatePrices(context.Background(), dto.BulkPriceUpdateRequest{
		Keyword: "Argan", PriceChangeType: "multiplier", Value: decimal.NewFromInt(2),
	})
	assert.ErrorIs(t, err, ErrInvalidPriceChange)

	// nothing was touched
	for _, p := range repo.products {
		assert.True(t, p.CurrentPrice.Equal(decimal.NewFromFloat(5.00)))
	}
}

func TestProductService_BulkUpdatePrices_Percentage(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewProductService(repo, nil)

	created, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Argan Oil", SKU: "SKU1", Category: "haircare", CurrentPrice: decimal.NewFromFloat(5.00),
	})
	require.NoError(t, err)

	resp, err := svc.BulkUpdatePrices(context.Background(), dto.BulkPriceUpdateRequest{
		Keyword: "Argan", PriceChangeType: "percentage", Value: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Updated)
	assert.True(t, repo.products[created.ID].CurrentPrice.Equal(decimal.NewFromFloat(5.50)),
		"got %s", repo.products[created.ID].CurrentPrice)
}

func TestProductService_BulkUpdatePrices_NoMatches(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), nil)

	resp, err := svc.BulkUpdatePrices(context.Background(), dto.BulkPriceUpdateRequest{
		Keyword: "nothing", PriceChangeType: "fixed", Value: decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Updated)
	assert.Contains(t, resp.Message, "No products found")
}
