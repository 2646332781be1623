package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

func TestMemorySessionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	session := &models.Session{
		ID:       "s1",
		Subtotal: decimal.NewFromInt(1500),
		Form:     models.FormValues{"email": "ana@example.com"},
	}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	session.Form["email"] = "changed@example.com"

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Form.Get("email") != "ana@example.com" {
		t.Errorf("stored session shares state with caller: %q", got.Form.Get("email"))
	}
	if !got.Subtotal.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Subtotal = %s", got.Subtotal)
	}

	store.Delete(ctx, "s1")
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemorySessionStore_SubmitLock(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ok, _ := store.AcquireSubmitLock(ctx, "s1", time.Minute)
	if !ok {
		t.Fatal("first acquire should succeed")
	}
	ok, _ = store.AcquireSubmitLock(ctx, "s1", time.Minute)
	if ok {
		t.Fatal("second acquire should fail while held")
	}

	now = now.Add(2 * time.Minute)
	ok, _ = store.AcquireSubmitLock(ctx, "s1", time.Minute)
	if !ok {
		t.Fatal("acquire should succeed after expiry")
	}

	store.ReleaseSubmitLock(ctx, "s1")
	ok, _ = store.AcquireSubmitLock(ctx, "s1", time.Minute)
	if !ok {
		t.Error("acquire should succeed after release")
	}
}

func TestMemorySessionStore_DeleteKeepsSubmitLock(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	if err := store.Save(ctx, &models.Session{ID: "s1"}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if ok, _ := store.AcquireSubmitLock(ctx, "s1", time.Minute); !ok {
		t.Fatal("first acquire should succeed")
	}

	store.Delete(ctx, "s1")

	if ok, _ := store.AcquireSubmitLock(ctx, "s1", time.Minute); ok {
		t.Error("deleting the session must not free its submit lock")
	}
}

func TestMemoryOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderRepository()

	order := &models.Order{
		ID:         "o1",
		Status:     models.OrderStatusAwaitingPayment,
		Email:      "Ana@Example.com",
		CouponCode: "HOLA10",
		Total:      decimal.NewFromInt(100),
	}
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	pending, _ := repo.FindPendingByEmailAndCoupon(ctx, "ana@example.com", "hola10")
	if len(pending) != 1 {
		t.Fatalf("Expected one pending order, got %d", len(pending))
	}

	first, _ := repo.MarkNotified(ctx, "o1")
	second, _ := repo.MarkNotified(ctx, "o1")
	if !first || second {
		t.Errorf("MarkNotified = %v, %v; want true, false", first, second)
	}

	updated, err := repo.UpdateStatus(ctx, "o1", models.OrderStatusFinished, "approved")
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if updated.Status != models.OrderStatusFinished || updated.PaymentStatus != "approved" {
		t.Errorf("Unexpected order after update: %+v", updated)
	}

	pending, _ = repo.FindPendingByEmailAndCoupon(ctx, "ana@example.com", "HOLA10")
	if len(pending) != 0 {
		t.Errorf("finished order should not be pending")
	}

	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryCouponRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCouponRepository(models.Coupon{ID: "c1", Code: "HOLA10", Active: true})

	c, err := repo.FindByCode(ctx, "hola10")
	if err != nil {
		t.Fatalf("FindByCode error: %v", err)
	}

	repo.IncrementUses(ctx, c.ID)
	repo.SaveUsage(ctx, &models.CouponUsage{ID: "u1", CouponID: "c1", Email: "ana@example.com"})

	c, _ = repo.FindByCode(ctx, "HOLA10")
	if c.CurrentUses != 1 {
		t.Errorf("CurrentUses = %d, want 1", c.CurrentUses)
	}
	used, _ := repo.HasUsageByEmail(ctx, "c1", "ANA@example.com")
	if !used {
		t.Error("Expected usage by email")
	}
}
