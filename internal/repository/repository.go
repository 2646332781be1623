package repository

import (
	"context"
	"time"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

// Ensure the implementations satisfy their interfaces.
var (
	_ SessionStore     = (*RedisSessionStore)(nil)
	_ SessionStore     = (*MemorySessionStore)(nil)
	_ OrderRepository  = (*PostgresOrderRepository)(nil)
	_ OrderRepository  = (*MemoryOrderRepository)(nil)
	_ CouponRepository = (*PostgresCouponRepository)(nil)
	_ CouponRepository = (*MemoryCouponRepository)(nil)
	_ ProductCatalog   = (*PostgresProductCatalog)(nil)
	_ ProductCatalog   = (*MemoryProductCatalog)(nil)
)

// SessionStore persists checkout sessions and the cross-process submit lock.
type SessionStore interface {
	// Get returns apperrors.ErrNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error

	// AcquireSubmitLock reports false when another submission holds the lock.
	AcquireSubmitLock(ctx context.Context, id string, ttl time.Duration) (bool, error)
	ReleaseSubmitLock(ctx context.Context, id string) error
}

// OrderRepository defines persistence for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, paymentStatus string) (*models.Order, error)
	SetPreferenceID(ctx context.Context, id, preferenceID string) error

	// MarkNotified flips the notified flag and reports whether this call did it.
	MarkNotified(ctx context.Context, id string) (bool, error)

	// FindPendingByEmailAndCoupon lists awaiting-payment orders placed by
	// email with the given coupon code.
	FindPendingByEmailAndCoupon(ctx context.Context, email, couponCode string) ([]*models.Order, error)
}

// CouponRepository defines persistence for coupons and their usages.
type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	IncrementUses(ctx context.Context, id string) error
	SaveUsage(ctx context.Context, usage *models.CouponUsage) error
	HasUsageByEmail(ctx context.Context, couponID, email string) (bool, error)
}

// ProductCatalog resolves cart slugs to catalog products.
type ProductCatalog interface {
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
}
