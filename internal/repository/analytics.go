package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora/beauty-orders-api/internal/dto"
)

// Products with stock below this count as low stock on the dashboard.
const lowStockThreshold = 10

type AnalyticsRepository interface {
	Dashboard(ctx context.Context) (*dto.DashboardStats, error)
	RevenueByDay(ctx context.Context, days int) ([]dto.DailyRevenue, error)
}

type pgAnalyticsRepo struct{ pool *pgxpool.Pool }

func NewAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRepository {
	return &pgAnalyticsRepo{pool: pool}
}

func (r *pgAnalyticsRepo) Dashboard(ctx context.Context) (*dto.DashboardStats, error) {
	stats := &dto.DashboardStats{}

	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(id) FROM orders WHERE created_at::date = CURRENT_DATE),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders),
			(SELECT COUNT(id) FROM orders),
			(SELECT COUNT(id) FROM customers),
			(SELECT COUNT(id) FROM products),
			(SELECT COUNT(id) FROM products WHERE stock_quantity < $1)`,
		lowStockThreshold,
	).Scan(
		&stats.OrdersToday, &stats.TotalRevenue, &stats.TotalOrders,
		&stats.TotalCustomers, &stats.TotalProducts, &stats.LowStockCount,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT p.name, COUNT(oi.id), COALESCE(SUM(oi.quantity), 0)
		 FROM products p
		 JOIN order_items oi ON oi.product_id = p.id
		 GROUP BY p.name
		 ORDER BY COUNT(oi.id) DESC
		 LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
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

func (r *pgAnalyticsRepo) RevenueByDay(ctx context.Context, days int) ([]dto.DailyRevenue, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT to_char(created_at::date, 'YYYY-MM-DD'), COALESCE(SUM(total_amount), 0), COUNT(id)
		 FROM orders
		 WHERE created_at >= NOW() - make_interval(days => $1)
		 GROUP BY created_at::date
		 ORDER BY created_at::date`, days,
	)
	if err != nil {
		return nil, fmt.Errorf("revenue by day: %w", err)
	}
	defer rows.Close()

	var revenue []dto.DailyRevenue
	for rows.Next() {
		var d dto.DailyRevenue
		if err := rows.Scan(&d.Date, &d.Revenue, &d.OrderCount); err != nil {
			return nil, fmt.Errorf("scan daily revenue: %w", err)
		}
		revenue = append(revenue, d)
	}
	return revenue, rows.Err()
}
