package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/velora/beauty-orders-api/internal/dto"
	"github.com/velora/beauty-orders-api/internal/model"
	"github.com/velora/beauty-orders-api/internal/repository"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrDuplicateSKU       = errors.New("sku already exists")
	ErrProductInUse       = errors.New("product is referenced by existing orders")
	ErrInvalidPriceChange = errors.New("price_change_type must be 'percentage' or 'fixed'")
	ErrNegativePrice      = errors.New("current_price must be non-negative")
)

const productCacheTTL = 60 * time.Second

type ProductService struct {
	productRepo repository.ProductRepository
	redisClient *redis.Client
}

func NewProductService(productRepo repository.ProductRepository, redisClient *redis.Client) *ProductService {
	return &ProductService{productRepo: productRepo, redisClient: redisClient}
}

func (s *ProductService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.CurrentPrice.IsNegative() {
		return nil, ErrNegativePrice
	}
	product := &model.Product{
		Name:          req.Name,
		SKU:           req.SKU,
		Description:   req.Description,
		Category:      req.Category,
		CurrentPrice:  req.CurrentPrice,
		StockQuantity: req.StockQuantity,
		Keywords:      req.Keywords,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	cacheKey := "product:" + id.String()

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.ProductResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	resp := toProductResponse(product)

	if s.redisClient != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, productCacheTTL)
		}
	}
	return &resp, nil
}

func (s *ProductService) List(ctx context.Context, req dto.ListProductsRequest) ([]dto.ProductResponse, error) {
	products, err := s.productRepo.List(ctx, req.Limit, req.Offset, req.Category)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return toProductResponses(products), nil
}

func (s *ProductService) Search(ctx context.Context, term string) ([]dto.ProductResponse, error) {
	products, err := s.productRepo.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return toProductResponses(products), nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.SKU != nil {
		product.SKU = *req.SKU
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.CurrentPrice != nil {
		if req.CurrentPrice.IsNegative() {
			return nil, ErrNegativePrice
		}
		product.CurrentPrice = *req.CurrentPrice
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.Keywords != nil {
		product.Keywords = *req.Keywords
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateSKU
		}
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.InvalidateProduct(ctx, id)
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		if errors.Is(err, repository.ErrRestricted) {
			return ErrProductInUse
		}
		return fmt.Errorf("delete product: %w", err)
	}
	s.InvalidateProduct(ctx, id)
	return nil
}

// BulkUpdatePrices applies a price change to every product whose name, sku,
// or keywords contain the keyword. Matching is case-sensitive (the search
// endpoint, by contrast, is not). An unknown price_change_type fails before
// any row is touched.
func (s *ProductService) BulkUpdatePrices(ctx context.Context, req dto.BulkPriceUpdateRequest) (*dto.BulkPriceUpdateResponse, error) {
	var (
		ids []uuid.UUID
		err error
	)
	switch req.PriceChangeType {
	case "percentage":
		ids, err = s.productRepo.BulkAdjustPricesPercent(ctx, req.Keyword, req.Value)
	case "fixed":
		ids, err = s.productRepo.BulkSetPrices(ctx, req.Keyword, req.Value)
	default:
		return nil, ErrInvalidPriceChange
	}
	if err != nil {
		return nil, fmt.Errorf("bulk update prices: %w", err)
	}

	for _, id := range ids {
		s.InvalidateProduct(ctx, id)
	}

	resp := &dto.BulkPriceUpdateResponse{Updated: len(ids), Keyword: req.Keyword}
	if len(ids) == 0 {
		resp.Message = fmt.Sprintf("No products found matching %q", req.Keyword)
	} else {
		resp.Message = fmt.Sprintf("Updated %d products", len(ids))
	}
	return resp, nil
}

// InvalidateProduct drops the cached read for a product. Order placement and
// cancellation call it after mutating stock.
func (s *ProductService) InvalidateProduct(ctx context.Context, id uuid.UUID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, "product:"+id.String())
	}
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		Description:   p.Description,
		Category:      p.Category,
		CurrentPrice:  p.CurrentPrice,
		StockQuantity: p.StockQuantity,
		Keywords:      p.Keywords,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toProductResponses(products []model.Product) []dto.ProductResponse {
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, toProductResponse(&products[i]))
	}
	return items
}
