package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

// uniqueViolation is the Postgres error code for duplicate keys.
const uniqueViolation = "23505"

// PostgresCouponRepository implements CouponRepository using PostgreSQL.
type PostgresCouponRepository struct {
	db     *sql.DB
	logger *logging.LoggerV2
}

func NewPostgresCouponRepository(db *sql.DB) *PostgresCouponRepository {
	return &PostgresCouponRepository{
		db:     db,
		logger: logging.NewLoggerV2("coupon-repository"),
	}
}

// FindByCode looks a coupon up case-insensitively.
func (r *PostgresCouponRepository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	query := `
		SELECT id, code, discount_type, discount_value, min_purchase_amount,
		       max_uses, current_uses, expires_at, active, description
		FROM coupons
		WHERE upper(code) = upper($1)
	`

	var c models.Coupon
	var maxUses sql.NullInt64
	var expiresAt sql.NullTime
	var description sql.NullString

	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&c.ID,
		&c.Code,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MinPurchaseAmount,
		&maxUses,
		&c.CurrentUses,
		&expiresAt,
		&c.Active,
		&description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to fetch coupon", logging.Fields{
			"code":  code,
			"error": err.Error(),
		})
		return nil, err
	}

	if maxUses.Valid {
		n := int(maxUses.Int64)
		c.MaxUses = &n
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		c.ExpiresAt = &t
	}
	c.Description = description.String
	return &c, nil
}

// IncrementUses bumps the usage counter by one.
func (r *PostgresCouponRepository) IncrementUses(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE coupons SET current_uses = current_uses + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SaveUsage records a coupon usage. A duplicate usage for the same order is ignored.
func (r *PostgresCouponRepository) SaveUsage(ctx context.Context, usage *models.CouponUsage) error {
	if usage.UsedAt.IsZero() {
		usage.UsedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO coupon_usages (id, coupon_id, order_id, email, discount_applied, order_total, used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		usage.ID,
		usage.CouponID,
		usage.OrderID,
		usage.Email,
		usage.DiscountApplied,
		usage.OrderTotal,
		usage.UsedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		r.logger.Warn("Coupon usage already recorded", logging.Fields{
			"coupon_id": usage.CouponID,
			"order_id":  usage.OrderID,
		})
		return nil
	}
	return err
}

// HasUsageByEmail reports whether email already redeemed the coupon.
func (r *PostgresCouponRepository) HasUsageByEmail(ctx context.Context, couponID, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM coupon_usages WHERE coupon_id = $1 AND lower(email) = lower($2))`,
		couponID, email,
	).Scan(&exists)
	return exists, err
}
