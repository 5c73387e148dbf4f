package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/velora/beauty-orders-api/internal/model"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, limit, offset int, category string) ([]model.Product, error)
	Search(ctx context.Context, term string) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	BulkAdjustPricesPercent(ctx context.Context, keyword string, percent decimal.Decimal) ([]uuid.UUID, error)
	BulkSetPrices(ctx context.Context, keyword string, price decimal.Decimal) ([]uuid.UUID, error)
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

const productColumns = `id, name, sku, description, category, current_price, stock_quantity, keywords, created_at, updated_at`

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.SKU, &p.Description, &p.Category,
		&p.CurrentPrice, &p.StockQuantity, &p.Keywords, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	product.ID = uuid.New()
	query := `INSERT INTO products (id, name, sku, description, category, current_price, stock_quantity, keywords, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.Name, product.SKU, product.Description, product.Category,
		product.CurrentPrice, product.StockQuantity, product.Keywords,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if isPgErr(err, codeUniqueViolation) {
			return fmt.Errorf("create product: %w", ErrDuplicate)
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p := &model.Product{}
	err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id), p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) List(ctx context.Context, limit, offset int, category string) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
			  WHERE ($3 = '' OR category = $3)
			  ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset, category)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *pgProductRepo) Search(ctx context.Context, term string) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
			  WHERE name ILIKE '%' || $1 || '%'
				 OR sku ILIKE '%' || $1 || '%'
				 OR keywords ILIKE '%' || $1 || '%'
			  ORDER BY name`
	rows, err := r.pool.Query(ctx, query, term)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *pgProductRepo) Update(ctx context.Context, product *model.Product) error {
	query := `UPDATE products
			  SET name=$2, sku=$3, description=$4, category=$5, current_price=$6, stock_quantity=$7, keywords=$8, updated_at=NOW()
			  WHERE id=$1 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.Name, product.SKU, product.Description, product.Category,
		product.CurrentPrice, product.StockQuantity, product.Keywords,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("update product: %w", ErrProductNotFound)
		}
		if isPgErr(err, codeUniqueViolation) {
			return fmt.Errorf("update product: %w", ErrDuplicate)
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isPgErr(err, codeForeignKeyViolation) {
			return fmt.Errorf("delete product: %w", ErrRestricted)
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Keyword matching for bulk price changes is case-sensitive, unlike the
// search endpoint.
const bulkMatch = `name LIKE '%' || $1 || '%' OR sku LIKE '%' || $1 || '%' OR keywords LIKE '%' || $1 || '%'`

func (r *pgProductRepo) BulkAdjustPricesPercent(ctx context.Context, keyword string, percent decimal.Decimal) ([]uuid.UUID, error) {
	query := `UPDATE products
			  SET current_price = current_price * (1 + $2 / 100), updated_at = NOW()
			  WHERE ` + bulkMatch + ` RETURNING id`
	return r.bulkUpdate(ctx, query, keyword, percent)
}

func (r *pgProductRepo) BulkSetPrices(ctx context.Context, keyword string, price decimal.Decimal) ([]uuid.UUID, error) {
	query := `UPDATE products
			  SET current_price = $2, updated_at = NOW()
			  WHERE ` + bulkMatch + ` RETURNING id`
	return r.bulkUpdate(ctx, query, keyword, price)
}

func (r *pgProductRepo) bulkUpdate(ctx context.Context, query, keyword string, value decimal.Decimal) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, query, keyword, value)
	if err != nil {
		return nil, fmt.Errorf("bulk update prices: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan updated id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
