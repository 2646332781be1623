package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

const orderColumns = `
	id, status, items, email, name, phone, dni, address, postal_code, province,
	shipping_method, payment_method, subtotal, shipping_cost, discount, coupon_code,
	total, currency, notes, preference_id, payment_status, notified, created_at, updated_at
`

// OpenDB opens the Postgres pool with the configured limits.
func OpenDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)
	return db, nil
}

// PostgresOrderRepository implements OrderRepository using PostgreSQL.
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *logging.LoggerV2
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository.
func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db:     db,
		logger: logging.NewLoggerV2("order-repository"),
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	var itemsJSON []byte

	err := row.Scan(
		&order.ID,
		&order.Status,
		&itemsJSON,
		&order.Email,
		&order.Name,
		&order.Phone,
		&order.DNI,
		&order.Address,
		&order.PostalCode,
		&order.Province,
		&order.ShippingMethod,
		&order.PaymentMethod,
		&order.Subtotal,
		&order.ShippingCost,
		&order.Discount,
		&order.CouponCode,
		&order.Total,
		&order.Currency,
		&order.Notes,
		&order.PreferenceID,
		&order.PaymentStatus,
		&order.Notified,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("decode items of order %s: %w", order.ID, err)
	}
	return &order, nil
}

// GetByID retrieves an order by its unique identifier.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.logger.Debug("Fetching order by ID", logging.Fields{"order_id": id})

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to fetch order", logging.Fields{
			"order_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}
	return order, nil
}

// Create inserts a new order.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order) error {
	r.logger.Debug("Creating new order", logging.Fields{"order_id": order.ID, "email": order.Email})

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	query := `
		INSERT INTO orders (` + orderColumns + `) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
		)
	`

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.Status,
		itemsJSON,
		order.Email,
		order.Name,
		order.Phone,
		order.DNI,
		order.Address,
		order.PostalCode,
		order.Province,
		order.ShippingMethod,
		order.PaymentMethod,
		order.Subtotal,
		order.ShippingCost,
		order.Discount,
		order.CouponCode,
		order.Total,
		order.Currency,
		order.Notes,
		order.PreferenceID,
		order.PaymentStatus,
		order.Notified,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		return err
	}

	r.logger.Info("Order created successfully", logging.Fields{
		"order_id": order.ID,
		"total":    order.Total.String(),
	})
	return nil
}

// UpdateStatus updates the status of an order and, when given, its payment status.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, paymentStatus string) (*models.Order, error) {
	r.logger.Debug("Updating order status", logging.Fields{
		"order_id":   id,
		"new_status": status,
	})

	query := `
		UPDATE orders
		SET status = $2, payment_status = COALESCE(NULLIF($3, ''), payment_status), updated_at = $4
		WHERE id = $1
		RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id, status, paymentStatus, time.Now().UTC()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to update order status", logging.Fields{
			"order_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}

	r.logger.Info("Order status updated", logging.Fields{
		"order_id":   id,
		"new_status": status,
	})
	return order, nil
}

// SetPreferenceID associates a payment preference with an order.
func (r *PostgresOrderRepository) SetPreferenceID(ctx context.Context, id, preferenceID string) error {
	query := `UPDATE orders SET preference_id = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, preferenceID, time.Now().UTC())
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}

	r.logger.Info("Payment preference set", logging.Fields{
		"order_id":      id,
		"preference_id": preferenceID,
	})
	return nil
}

// MarkNotified sets notified once; later calls report false.
func (r *PostgresOrderRepository) MarkNotified(ctx context.Context, id string) (bool, error) {
	query := `UPDATE orders SET notified = TRUE, updated_at = $2 WHERE id = $1 AND notified = FALSE`

	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// FindPendingByEmailAndCoupon lists awaiting-payment orders for email that used couponCode.
func (r *PostgresOrderRepository) FindPendingByEmailAndCoupon(ctx context.Context, email, couponCode string) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE lower(email) = lower($1) AND upper(coupon_code) = upper($2) AND status = $3
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, email, couponCode, models.OrderStatusAwaitingPayment)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
