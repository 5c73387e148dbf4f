package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/velora/beauty-orders-api/internal/dto"
	"github.com/velora/beauty-orders-api/internal/model"
)

type OrderRepository interface {
	Place(ctx context.Context, order *model.Order, lines []model.OrderLine) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, limit, offset int) ([]model.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error
	CancelPending(ctx context.Context, id uuid.UUID) error
	StatsByStatus(ctx context.Context) ([]dto.OrderStatusStats, error)
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

// Place creates the order, its items, and the stock decrements in a single
// transaction. The caller supplies CustomerID, OrderNumber, and Status; unit
// prices are snapshotted from products inside the transaction. Any failing
// line aborts the whole order with no stock mutated.
func (r *pgOrderRepo) Place(ctx context.Context, order *model.Order, lines []model.OrderLine) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	order.ID = uuid.New()
	order.TotalAmount = decimal.Zero
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (id, customer_id, order_number, status, total_amount, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, 0, NOW(), NOW()) RETURNING created_at, updated_at`,
		order.ID, order.CustomerID, order.OrderNumber, order.Status,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isPgErr(err, codeForeignKeyViolation) {
			return fmt.Errorf("insert order: %w", ErrCustomerNotFound)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	order.Items = order.Items[:0]
	for _, line := range lines {
		// Decrement and price snapshot in one statement; zero rows means the
		// product is missing or the stock check failed.
		var unitPrice decimal.Decimal
		err = tx.QueryRow(ctx,
			`UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = NOW()
			 WHERE id = $1 AND stock_quantity >= $2
			 RETURNING current_price`,
			line.ProductID, line.Quantity,
		).Scan(&unitPrice)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				var exists bool
				if err := tx.QueryRow(ctx,
					`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, line.ProductID,
				).Scan(&exists); err != nil {
					return fmt.Errorf("check product %s: %w", line.ProductID, err)
				}
				if !exists {
					return fmt.Errorf("product %s: %w", line.ProductID, ErrProductNotFound)
				}
				return fmt.Errorf("product %s: %w", line.ProductID, ErrInsufficientStock)
			}
			return fmt.Errorf("decrement stock for %s: %w", line.ProductID, err)
		}

		item := model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: unitPrice,
			Subtotal:  unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, subtotal)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		order.Items = append(order.Items, item)
		order.TotalAmount = order.TotalAmount.Add(item.Subtotal)
	}

	_, err = tx.Exec(ctx,
		`UPDATE orders SET total_amount = $2 WHERE id = $1`, order.ID, order.TotalAmount,
	)
	if err != nil {
		return fmt.Errorf("set order total: %w", err)
	}
	return tx.Commit(ctx)
}

const orderColumns = `id, customer_id, order_number, status, total_amount, created_at, updated_at`

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(&o.ID, &o.CustomerID, &o.OrderNumber, &o.Status, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt)
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order := &model.Order{}
	err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id), order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, quantity, unit_price, subtotal FROM order_items WHERE order_id = $1`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.OrderID = order.ID
		order.Items = append(order.Items, item)
	}
	return order, rows.Err()
}

func (r *pgOrderRepo) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *pgOrderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *pgOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// CancelPending deletes a pending order, restoring every consumed quantity
// to product stock. The status gate, the restore, and the deletes share one
// transaction so a concurrent status change cannot slip between them.
func (r *pgOrderRepo) CancelPending(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var status model.OrderStatus
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("lock order: %w", err)
	}
	if status != model.OrderStatusPending {
		return ErrOrderNotPending
	}

	// Quantities are summed per product first: UPDATE ... FROM applies only
	// one join row per target row, which would lose all but one line when an
	// order carries several lines for the same product.
	_, err = tx.Exec(ctx,
		`UPDATE products p SET stock_quantity = p.stock_quantity + s.quantity, updated_at = NOW()
		 FROM (SELECT product_id, SUM(quantity) AS quantity
			   FROM order_items WHERE order_id = $1
			   GROUP BY product_id) s
		 WHERE p.id = s.product_id`, id,
	)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}

	if _, err = tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *pgOrderRepo) StatsByStatus(ctx context.Context) ([]dto.OrderStatusStats, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(id), COALESCE(SUM(total_amount), 0)
		 FROM orders GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("order stats by status: %w", err)
	}
	defer rows.Close()

	var stats []dto.OrderStatusStats
	for rows.Next() {
		var s dto.OrderStatusStats
		if err := rows.Scan(&s.Status, &s.Count, &s.TotalRevenue); err != nil {
			return nil, fmt.Errorf("scan status stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
