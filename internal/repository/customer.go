package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora/beauty-orders-api/internal/dto"
	"github.com/velora/beauty-orders-api/internal/model"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, limit, offset int, customerType string) ([]model.Customer, error)
	Search(ctx context.Context, term string) ([]model.Customer, error)
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, id uuid.UUID) (*dto.CustomerStatsResponse, error)
	CountByType(ctx context.Context) ([]dto.CustomerTypeStats, error)
}

type pgCustomerRepo struct{ pool *pgxpool.Pool }

func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &pgCustomerRepo{pool: pool}
}

const customerColumns = `id, name, type, email, phone, address, tax_id, created_at`

func scanCustomer(row pgx.Row, c *model.Customer) error {
	return row.Scan(&c.ID, &c.Name, &c.Type, &c.Email, &c.Phone, &c.Address, &c.TaxID, &c.CreatedAt)
}

func (r *pgCustomerRepo) Create(ctx context.Context, customer *model.Customer) error {
	customer.ID = uuid.New()
	query := `INSERT INTO customers (id, name, type, email, phone, address, tax_id, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING created_at`
	err := r.pool.QueryRow(ctx, query,
		customer.ID, customer.Name, customer.Type, customer.Email,
		customer.Phone, customer.Address, customer.TaxID,
	).Scan(&customer.CreatedAt)
	if err != nil {
		if isPgErr(err, codeUniqueViolation) {
			return fmt.Errorf("create customer: %w", ErrDuplicate)
		}
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (r *pgCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	c := &model.Customer{}
	err := scanCustomer(r.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id), c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (r *pgCustomerRepo) List(ctx context.Context, limit, offset int, customerType string) ([]model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
			  WHERE ($3 = '' OR type = $3)
			  ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset, customerType)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	return collectCustomers(rows)
}

func (r *pgCustomerRepo) Search(ctx context.Context, term string) ([]model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
			  WHERE name ILIKE '%' || $1 || '%'
				 OR email ILIKE '%' || $1 || '%'
				 OR phone ILIKE '%' || $1 || '%'
			  ORDER BY name`
	rows, err := r.pool.Query(ctx, query, term)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	defer rows.Close()
	return collectCustomers(rows)
}

func collectCustomers(rows pgx.Rows) ([]model.Customer, error) {
	var customers []model.Customer
	for rows.Next() {
		var c model.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *pgCustomerRepo) Update(ctx context.Context, customer *model.Customer) error {
	query := `UPDATE customers
			  SET name=$2, type=$3, email=$4, phone=$5, address=$6, tax_id=$7
			  WHERE id=$1`
	ct, err := r.pool.Exec(ctx, query,
		customer.ID, customer.Name, customer.Type, customer.Email,
		customer.Phone, customer.Address, customer.TaxID,
	)
	if err != nil {
		if isPgErr(err, codeUniqueViolation) {
			return fmt.Errorf("update customer: %w", ErrDuplicate)
		}
		return fmt.Errorf("update customer: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// Delete fails with ErrRestricted while the customer still owns orders; the
// foreign key on orders.customer_id enforces it.
func (r *pgCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if isPgErr(err, codeForeignKeyViolation) {
			return fmt.Errorf("delete customer: %w", ErrRestricted)
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func (r *pgCustomerRepo) Stats(ctx context.Context, id uuid.UUID) (*dto.CustomerStatsResponse, error) {
	stats := &dto.CustomerStatsResponse{CustomerID: id}

	err := r.pool.QueryRow(ctx, `SELECT name FROM customers WHERE id = $1`, id).Scan(&stats.CustomerName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(id), COALESCE(SUM(total_amount), 0), COALESCE(AVG(total_amount), 0)
		 FROM orders WHERE customer_id = $1`, id,
	).Scan(&stats.TotalOrders, &stats.TotalSpent, &stats.AverageOrder)
	if err != nil {
		return nil, fmt.Errorf("customer order stats: %w", err)
	}
	stats.AverageOrder = stats.AverageOrder.Round(2)

	rows, err := r.pool.Query(ctx,
		`SELECT p.name, COUNT(oi.id), COALESCE(SUM(oi.quantity), 0)
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 JOIN orders o ON o.id = oi.order_id
		 WHERE o.customer_id = $1
		 GROUP BY p.name
		 ORDER BY SUM(oi.quantity) DESC
		 LIMIT 5`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("customer top products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tp dto.TopProduct
		if err := rows.Scan(&tp.Name, &tp.OrderCount, &tp.TotalQuantity); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		stats.TopProducts = append(stats.TopProducts, tp)
	}
	return stats, rows.Err()
}

// CountByType feeds the /stats/by-type aggregate.
func (r *pgCustomerRepo) CountByType(ctx context.Context) ([]dto.CustomerTypeStats, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT type, COUNT(id) FROM customers GROUP BY type ORDER BY type`)
	if err != nil {
		return nil, fmt.Errorf("count customers by type: %w", err)
	}
	defer rows.Close()

	var stats []dto.CustomerTypeStats
	for rows.Next() {
		var s dto.CustomerTypeStats
		if err := rows.Scan(&s.Type, &s.Count); err != nil {
			return nil, fmt.Errorf("scan type stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
