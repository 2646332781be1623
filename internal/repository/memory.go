package repository

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

// MemorySessionStore keeps sessions in process. Used when Redis sessions are
// disabled and in tests. Sessions are stored encoded so callers never share
// state with the store.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
	locks    map[string]time.Time
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	logging.Infof("Using in-memory checkout session store")
	return &MemorySessionStore{
		sessions: make(map[string][]byte),
		locks:    make(map[string]time.Time),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	data, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *MemorySessionStore) Save(_ context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[session.ID] = data
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) AcquireSubmitLock(_ context.Context, id string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expires, held := s.locks[id]; held && now.Before(expires) {
		return false, nil
	}
	s.locks[id] = now.Add(ttl)
	return true, nil
}

func (s *MemorySessionStore) ReleaseSubmitLock(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.locks, id)
	s.mu.Unlock()
	return nil
}

// MemoryOrderRepository is an in-process OrderRepository.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]*models.Order)}
}

func copyOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.OrderItem(nil), o.Items...)
	return &c
}

func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	r.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *MemoryOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return copyOrder(o), nil
}

func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, id string, status models.OrderStatus, paymentStatus string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	o.Status = status
	if paymentStatus != "" {
		o.PaymentStatus = paymentStatus
	}
	o.UpdatedAt = time.Now()
	return copyOrder(o), nil
}

func (r *MemoryOrderRepository) SetPreferenceID(_ context.Context, id, preferenceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	o.PreferenceID = preferenceID
	return nil
}

func (r *MemoryOrderRepository) MarkNotified(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return false, apperrors.ErrNotFound
	}
	if o.Notified {
		return false, nil
	}
	o.Notified = true
	return true, nil
}

func (r *MemoryOrderRepository) FindPendingByEmailAndCoupon(_ context.Context, email, couponCode string) ([]*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Order
	for _, o := range r.orders {
		if o.IsPending() && strings.EqualFold(o.Email, email) && strings.EqualFold(o.CouponCode, couponCode) {
			out = append(out, copyOrder(o))
		}
	}
	return out, nil
}

// MemoryCouponRepository is an in-process CouponRepository.
type MemoryCouponRepository struct {
	mu      sync.Mutex
	coupons map[string]*models.Coupon
	usages  []models.CouponUsage
}

func NewMemoryCouponRepository(coupons ...models.Coupon) *MemoryCouponRepository {
	r := &MemoryCouponRepository{coupons: make(map[string]*models.Coupon)}
	for i := range coupons {
		c := coupons[i]
		r.coupons[strings.ToUpper(c.Code)] = &c
	}
	return r
}

func (r *MemoryCouponRepository) FindByCode(_ context.Context, code string) (*models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[strings.ToUpper(code)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *MemoryCouponRepository) IncrementUses(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.coupons {
		if c.ID == id {
			c.CurrentUses++
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *MemoryCouponRepository) SaveUsage(_ context.Context, usage *models.CouponUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usages = append(r.usages, *usage)
	return nil
}

func (r *MemoryCouponRepository) HasUsageByEmail(_ context.Context, couponID, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.usages {
		if u.CouponID == couponID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// Usages returns the recorded usages.
func (r *MemoryCouponRepository) Usages() []models.CouponUsage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.CouponUsage(nil), r.usages...)
}

// MemoryProductCatalog is a fixed catalog keyed by slug.
type MemoryProductCatalog struct {
	products map[string]models.Product
}

func NewMemoryProductCatalog(products ...models.Product) *MemoryProductCatalog {
	c := &MemoryProductCatalog{products: make(map[string]models.Product, len(products))}
	for _, p := range products {
		c.products[p.Slug] = p
	}
	return c
}

func (c *MemoryProductCatalog) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	p, ok := c.products[slug]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}
