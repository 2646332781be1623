package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

// openTestDB connects to CHECKOUT_TEST_DATABASE_URL or skips the test.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("CHECKOUT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("Integration test - requires database")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestPostgresOrderRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewPostgresOrderRepository(db)

	order := &models.Order{
		ID:     uuid.NewString(),
		Status: models.OrderStatusAwaitingPayment,
		Items: []models.OrderItem{
			{ID: uuid.NewString(), Title: "Maceta", Qty: 2, UnitPrice: decimal.NewFromInt(2500)},
		},
		Email:          "ana@example.com",
		Name:           "Ana",
		ShippingMethod: models.ShippingCourier,
		PaymentMethod:  models.PaymentCash,
		Subtotal:       decimal.NewFromInt(5000),
		ShippingCost:   decimal.NewFromInt(5000),
		Discount:       decimal.Zero,
		Total:          decimal.NewFromInt(10000),
		Currency:       "ARS",
	}
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, err := repo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if !got.Total.Equal(order.Total) || len(got.Items) != 1 {
		t.Errorf("Unexpected order: %+v", got)
	}

	updated, err := repo.UpdateStatus(ctx, order.ID, models.OrderStatusFinished, "approved")
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if updated.Status != models.OrderStatusFinished {
		t.Errorf("Status = %s", updated.Status)
	}

	first, _ := repo.MarkNotified(ctx, order.ID)
	second, _ := repo.MarkNotified(ctx, order.ID)
	if !first || second {
		t.Errorf("MarkNotified = %v, %v", first, second)
	}
}

func TestPostgresOrderRepository_GetByID_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostgresOrderRepository(db)

	if _, err := repo.GetByID(context.Background(), uuid.NewString()); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPostgresCouponRepository_FindByCode_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostgresCouponRepository(db)

	if _, err := repo.FindByCode(context.Background(), "NOPE-"+uuid.NewString()); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
