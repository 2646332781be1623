package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/repository"
)

const (
	noticeCouponUnavailable = "We could not validate the coupon right now. Please try again."
	noticeOrderFailed       = "We could not create your order. Please try again."
	noticeCouponExpired     = "Your coupon is no longer valid and was removed. Review the total and submit again."
)

// CartLineInput is a cart line as sent by the storefront. Prices come from
// the catalog, never from the client.
type CartLineInput struct {
	Slug  string `json:"slug" binding:"required"`
	Color string `json:"color"`
	Qty   int    `json:"qty" binding:"required,min=1"`
}

// FieldUpdate is one input or blur event on a form field.
type FieldUpdate struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
	Blur  bool   `json:"blur"`
}

// QuoteRequest is the input of the stateless calculator endpoint.
type QuoteRequest struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	Shipping      string          `json:"shipping"`
	Province      string          `json:"province"`
	PaymentMethod string          `json:"payment_method"`
	CouponCode    string          `json:"coupon_code"`
	Email         string          `json:"email"`
}

type QuoteResult struct {
	Totals models.CartTotals
	Coupon *CouponResult
}

// Snapshot is the state of a checkout after an operation, ready to render.
type Snapshot struct {
	Session *models.Session
	Totals  models.CartTotals
	States  map[models.SectionName]models.SectionState
	Open    models.SectionName
	Gate    SubmitGate
	Warning string
	Notice  *models.Notice
	// Stale is set when a coupon response was superseded by a newer request.
	Stale  bool
	Placed *PlacedOrder
}

// CheckoutService runs the checkout page: the section wizard, field
// validation, live totals, coupons and the final submission.
type CheckoutService struct {
	store     repository.SessionStore
	catalog   repository.ProductCatalog
	calc      *Calculator
	validator *Validator
	coupons   *CouponService
	orders    *OrderService
	metrics   *metrics.CheckoutMetrics
	cfg       config.CheckoutConfig
	now       func() time.Time
	logger    *logging.LoggerV2
}

func NewCheckoutService(
	store repository.SessionStore,
	catalog repository.ProductCatalog,
	calc *Calculator,
	validator *Validator,
	coupons *CouponService,
	orders *OrderService,
	m *metrics.CheckoutMetrics,
	cfg config.CheckoutConfig,
) *CheckoutService {
	return &CheckoutService{
		store:     store,
		catalog:   catalog,
		calc:      calc,
		validator: validator,
		coupons:   coupons,
		orders:    orders,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
		logger:    logging.NewLoggerV2("checkout-service"),
	}
}

func (s *CheckoutService) Validator() *Validator {
	return s.validator
}

// Provinces returns the shipping-company cost table.
func (s *CheckoutService) Provinces() models.ProvinceCosts {
	return s.calc.Provinces()
}

// CreateSession starts a checkout for the given cart. Identical slug and
// color lines are merged.
func (s *CheckoutService) CreateSession(ctx context.Context, lines []CartLineInput) (*Snapshot, error) {
	if len(lines) == 0 {
		return nil, apperrors.NewValidationError("items", "cart is empty")
	}

	var cart []models.CartLine
	index := make(map[string]int)
	subtotal := decimal.Zero

	for _, in := range lines {
		if in.Qty <= 0 {
			return nil, apperrors.NewValidationError("items", fmt.Sprintf("invalid quantity for %s", in.Slug))
		}

		product, err := s.catalog.GetBySlug(ctx, in.Slug)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationError("items", fmt.Sprintf("unknown product %q", in.Slug))
		}
		if err != nil {
			return nil, fmt.Errorf("price cart line %s: %w", in.Slug, err)
		}

		line := models.CartLine{
			Slug:      product.Slug,
			ProductID: product.ID,
			Title:     product.Name,
			Color:     in.Color,
			Qty:       in.Qty,
			UnitPrice: product.BasePrice,
		}
		subtotal = subtotal.Add(line.Subtotal())

		key := line.Slug + "\x00" + line.Color
		if i, ok := index[key]; ok {
			cart[i].Qty += line.Qty
			continue
		}
		index[key] = len(cart)
		cart = append(cart, line)
	}

	now := s.now().UTC()
	session := &models.Session{
		ID:        uuid.NewString(),
		Lines:     cart,
		Subtotal:  subtotal.Round(2),
		Form:      models.FormValues{models.FieldShipping: string(models.ShippingPickup)},
		Touched:   make(map[string]bool),
		Errors:    make(map[string]string),
		Wizard:    NewWizardState(),
		CreatedAt: now,
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Checkout session created", logging.Fields{
		"session_id": session.ID,
		"lines":      len(cart),
		"subtotal":   session.Subtotal.String(),
	})
	return s.snapshot(session, s.wizard(session)), nil
}

// GetSession loads a checkout and runs any blur checks that became due.
func (s *CheckoutService) GetSession(ctx context.Context, id string) (*Snapshot, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	w := s.wizard(session)
	if s.processDueBlurs(session, w) {
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
	}
	return s.snapshot(session, w), nil
}

// UpdateField stores a field value, validates it and, on blur, schedules the
// automatic completion check of its section.
func (s *CheckoutService) UpdateField(ctx context.Context, id string, upd FieldUpdate) (*Snapshot, error) {
	section, ok := s.validator.SectionOf(upd.Field)
	if !ok {
		return nil, apperrors.NewValidationError("field", fmt.Sprintf("unknown field %q", upd.Field))
	}

	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	w := s.wizard(session)
	changed := s.processDueBlurs(session, w)

	state := w.State(section)
	if state == models.SectionLocked {
		if changed {
			if err := s.save(ctx, session); err != nil {
				return nil, err
			}
		}
		snap := s.snapshot(session, w)
		snap.Warning = lockedWarning(section)
		return snap, fmt.Errorf("%s: %w", section, apperrors.ErrSectionLocked)
	}

	value := strings.TrimSpace(upd.Value)
	previousMethod := session.ShippingMethod()
	previousEmail := session.Form.Get(models.FieldEmail)

	session.Form[upd.Field] = value
	session.Touched[upd.Field] = true
	s.setFieldError(session, upd.Field, s.validator.ValidateField(upd.Field, session.Form))

	if upd.Field == models.FieldShipping {
		if method := session.ShippingMethod(); method != previousMethod {
			for _, f := range s.validator.ExemptFields(method) {
				delete(session.Errors, f)
			}
		}
	}

	if upd.Field == models.FieldEmail && session.Coupon.Code != "" && !strings.EqualFold(previousEmail, value) {
		session.Coupon = models.CouponDiscount{}
		session.CouponMessage = "Coupon removed because the email changed. Apply it again."
	}

	if state == models.SectionCompleted {
		if errs := s.validator.ValidateSection(section, session.Form); len(errs) > 0 {
			w.Invalidate(section)
			s.metrics.SectionTransition(string(section), "invalidated")
		}
	}

	if upd.Blur {
		w.Blur(section)
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return s.snapshot(session, w), nil
}

// ActivateSection opens a section. Opening a locked section is rejected with
// a warning and leaves the wizard unchanged.
func (s *CheckoutService) ActivateSection(ctx context.Context, id string, section models.SectionName) (*Snapshot, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	w := s.wizard(session)
	changed := s.processDueBlurs(session, w)

	if err := w.Activate(section); err != nil {
		if !errors.Is(err, apperrors.ErrSectionLocked) {
			return nil, err
		}
		s.metrics.SectionTransition(string(section), "rejected")
		if changed {
			if err := s.save(ctx, session); err != nil {
				return nil, err
			}
		}
		snap := s.snapshot(session, w)
		snap.Warning = lockedWarning(section)
		return snap, err
	}

	s.metrics.SectionTransition(string(section), "activated")
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return s.snapshot(session, w), nil
}

// ContinueSection validates a section immediately and completes it when
// every field passes. Field errors are returned inside the snapshot.
func (s *CheckoutService) ContinueSection(ctx context.Context, id string, section models.SectionName) (*Snapshot, error) {
	if section.Index() < 0 {
		return nil, apperrors.NewValidationError("section", fmt.Sprintf("unknown section %q", section))
	}

	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	w := s.wizard(session)
	s.processDueBlurs(session, w)

	if !w.CanActivate(section) {
		s.metrics.SectionTransition(string(section), "rejected")
		snap := s.snapshot(session, w)
		snap.Warning = lockedWarning(section)
		return snap, fmt.Errorf("%s: %w", section, apperrors.ErrSectionLocked)
	}

	errs := s.validator.ValidateSection(section, session.Form)
	method := session.ShippingMethod()
	for _, field := range SectionFields(section) {
		if !s.validator.Visible(field, method) {
			delete(session.Errors, field)
			continue
		}
		session.Touched[field] = true
		s.setFieldError(session, field, errs[field])
	}

	advanced, err := w.Complete(section, errs)
	if err != nil {
		return nil, err
	}
	if advanced {
		s.metrics.SectionTransition(string(section), "completed")
	} else {
		s.metrics.SectionTransition(string(section), "failed")
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return s.snapshot(session, w), nil
}

// ApplyCoupon validates code for the session. seq orders concurrent
// requests: a response for a request older than the latest one seen is
// dropped. A non-positive seq takes the next number. An empty code removes
// the coupon.
func (s *CheckoutService) ApplyCoupon(ctx context.Context, id, code string, seq int64) (*Snapshot, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if seq <= 0 {
		seq = session.CouponSeq + 1
	}
	if seq < session.CouponSeq {
		snap := s.snapshot(session, s.wizard(session))
		snap.Stale = true
		return snap, nil
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	session.CouponSeq = seq
	session.Form[models.FieldCouponCode] = code

	if code == "" {
		session.Coupon = models.CouponDiscount{}
		session.CouponMessage = ""
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
		return s.snapshot(session, s.wizard(session)), nil
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	result, checkErr := s.coupons.Check(ctx, code, session.Form.Get(models.FieldEmail), session.Subtotal)

	latest, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if latest.CouponSeq != seq {
		s.logger.Debug("Dropping stale coupon response", logging.Fields{
			"session_id": id,
			"seq":        seq,
			"latest":     latest.CouponSeq,
		})
		snap := s.snapshot(latest, s.wizard(latest))
		snap.Stale = true
		return snap, nil
	}

	var notice *models.Notice
	switch {
	case checkErr != nil:
		latest.Coupon = models.CouponDiscount{}
		latest.CouponMessage = ""
		notice = &models.Notice{Level: models.NoticeError, Text: noticeCouponUnavailable}
		s.metrics.CouponValidation("error")
	case result.Valid:
		latest.Coupon = models.CouponDiscount{Code: result.Code, Amount: result.Discount}
		latest.CouponMessage = result.Message
		s.metrics.CouponValidation("valid")
	default:
		latest.Coupon = models.CouponDiscount{}
		latest.CouponMessage = result.Message
		s.metrics.CouponValidation("invalid")
	}

	if err := s.save(ctx, latest); err != nil {
		return nil, err
	}
	snap := s.snapshot(latest, s.wizard(latest))
	snap.Notice = notice
	return snap, nil
}

// Submit turns a completed checkout into an order. form carries the values
// of a plain form POST and overrides the stored ones. On success the session
// is removed and Snapshot.Placed holds the redirect target while the submit
// lock runs out its TTL; on failure the latch is released so the customer
// can retry.
func (s *CheckoutService) Submit(ctx context.Context, id string, form models.FormValues) (*Snapshot, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	w := s.wizard(session)
	log := s.logger.With(logging.Fields{"session_id": id})

	for field, value := range form {
		if _, ok := s.validator.SectionOf(field); ok {
			session.Form[field] = strings.TrimSpace(value)
		}
	}

	if err := s.validator.ValidateAll(session.Form); err != nil {
		s.rejectInvalid(session, w)
		s.metrics.Submission("invalid")
		if saveErr := s.save(ctx, session); saveErr != nil {
			return nil, saveErr
		}
		snap := s.snapshot(session, w)
		snap.Warning = "Please fix the highlighted fields."
		return snap, err
	}

	if err := w.BeginSubmit(); err != nil {
		s.metrics.Submission("rejected")
		snap := s.snapshot(session, w)
		snap.Warning = submitWarning(err)
		return snap, err
	}

	acquired, err := s.store.AcquireSubmitLock(ctx, id, s.cfg.SubmitLockTTL)
	if err != nil {
		w.EndSubmit(false)
		snap := s.snapshot(session, w)
		snap.Notice = &models.Notice{Level: models.NoticeError, Text: noticeOrderFailed}
		return snap, fmt.Errorf("acquire submit lock: %w: %w", apperrors.ErrUpstream, err)
	}
	if !acquired {
		return s.rejectConcurrentSubmit(session, w)
	}

	// A request that loaded the session before another submit latched it
	// can still win the lock once that submit is done.
	current, err := s.store.Get(ctx, id)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return s.failSubmit(ctx, session, w, noticeOrderFailed, err)
	}
	if current == nil || current.Wizard.Submitting {
		log.Warn("Session already submitted")
		return s.rejectConcurrentSubmit(session, w)
	}

	if err := s.save(ctx, session); err != nil {
		s.store.ReleaseSubmitLock(ctx, id)
		return nil, err
	}

	order, coupon, err := s.buildOrder(ctx, session)
	if err != nil {
		msg := noticeOrderFailed
		if apperrors.IsValidation(err) {
			msg = noticeCouponExpired
		}
		return s.failSubmit(ctx, session, w, msg, err)
	}

	placed, err := s.orders.PlaceOrder(ctx, order, coupon)
	if err != nil {
		return s.failSubmit(ctx, session, w, noticeOrderFailed, err)
	}

	// The submit lock is left to expire so no late request can take it.
	w.EndSubmit(true)
	if err := s.store.Delete(ctx, id); err != nil {
		log.Warn("Failed to clear checkout session", logging.Fields{"error": err.Error()})
	}
	s.metrics.Submission("success")

	log.Info("Checkout submitted", logging.Fields{"order_id": placed.Order.ID})

	snap := s.snapshot(session, w)
	snap.Placed = placed
	return snap, nil
}

// Quote computes totals without a session.
func (s *CheckoutService) Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	method, ok := models.ParseShippingMethod(req.Shipping)
	if !ok {
		return nil, apperrors.NewValidationError(models.FieldShipping, fmt.Sprintf("unknown shipping method %q", req.Shipping))
	}
	if req.Subtotal.IsNegative() {
		return nil, apperrors.NewValidationError("subtotal", "subtotal must not be negative")
	}

	in := TotalsInput{
		Subtotal: req.Subtotal,
		Shipping: method,
		Province: req.Province,
		Payment:  models.PaymentMethod(req.PaymentMethod),
	}

	result := &QuoteResult{}
	if req.CouponCode != "" {
		check, err := s.coupons.Check(ctx, req.CouponCode, req.Email, req.Subtotal)
		if err != nil {
			return nil, err
		}
		if check.Valid {
			in.Coupon = models.CouponDiscount{Code: check.Code, Amount: check.Discount}
		}
		result.Coupon = &check
	}

	result.Totals = s.calc.Totals(in)
	s.metrics.Quote()
	return result, nil
}

func (s *CheckoutService) wizard(session *models.Session) *Wizard {
	return NewWizard(&session.Wizard, s.cfg.BlurDebounce, s.now)
}

func (s *CheckoutService) load(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Form == nil {
		session.Form = make(models.FormValues)
	}
	if session.Touched == nil {
		session.Touched = make(map[string]bool)
	}
	if session.Errors == nil {
		session.Errors = make(map[string]string)
	}
	return session, nil
}

func (s *CheckoutService) save(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, session); err != nil {
		s.logger.Error("Failed to save checkout session", logging.Fields{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *CheckoutService) totals(session *models.Session) models.CartTotals {
	return s.calc.Totals(TotalsInput{
		Subtotal: session.Subtotal,
		Shipping: session.ShippingMethod(),
		Province: session.Form.Get(models.FieldProvince),
		Payment:  session.PaymentMethod(),
		Coupon:   session.Coupon,
	})
}

func (s *CheckoutService) snapshot(session *models.Session, w *Wizard) *Snapshot {
	return &Snapshot{
		Session: session,
		Totals:  s.totals(session),
		States:  w.States(),
		Open:    w.Open(),
		Gate:    w.Gate(),
	}
}

func (s *CheckoutService) setFieldError(session *models.Session, field, msg string) {
	if session.Errors == nil {
		session.Errors = make(map[string]string)
	}
	if msg == "" {
		delete(session.Errors, field)
		return
	}
	session.Errors[field] = msg
}

// processDueBlurs completes the open section when its debounced blur check
// is due and every field passes. Failing checks stay silent.
func (s *CheckoutService) processDueBlurs(session *models.Session, w *Wizard) bool {
	pending := len(session.Wizard.PendingBlur)
	due := w.DueBlurs()
	changed := len(session.Wizard.PendingBlur) != pending

	for _, section := range due {
		if errs := s.validator.ValidateSection(section, session.Form); len(errs) > 0 {
			continue
		}
		if advanced, err := w.Complete(section, nil); err == nil && advanced {
			s.metrics.SectionTransition(string(section), "auto_completed")
		}
	}
	return changed
}

// rejectInvalid shows every failing field and reopens the first failing section.
func (s *CheckoutService) rejectInvalid(session *models.Session, w *Wizard) {
	method := session.ShippingMethod()
	for i := len(models.Sections) - 1; i >= 0; i-- {
		section := models.Sections[i]
		errs := s.validator.ValidateSection(section, session.Form)
		for _, field := range SectionFields(section) {
			if s.validator.Visible(field, method) {
				session.Touched[field] = true
			}
			s.setFieldError(session, field, errs[field])
		}
		if len(errs) > 0 {
			w.Invalidate(section)
		}
	}
}

func (s *CheckoutService) failSubmit(ctx context.Context, session *models.Session, w *Wizard, notice string, cause error) (*Snapshot, error) {
	w.EndSubmit(false)
	s.metrics.Submission("failed")

	log := s.logger.With(logging.Fields{"session_id": session.ID})
	log.Error("Checkout submission failed", logging.Fields{"error": cause.Error()})

	if err := s.store.ReleaseSubmitLock(ctx, session.ID); err != nil {
		log.Warn("Failed to release submit lock", logging.Fields{"error": err.Error()})
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	snap := s.snapshot(session, w)
	snap.Notice = &models.Notice{Level: models.NoticeError, Text: notice}
	return snap, cause
}

func (s *CheckoutService) rejectConcurrentSubmit(session *models.Session, w *Wizard) (*Snapshot, error) {
	s.metrics.Submission("rejected")
	snap := s.snapshot(session, w)
	snap.Warning = submitWarning(apperrors.ErrAlreadySubmitting)
	return snap, apperrors.ErrAlreadySubmitting
}

// buildOrder prices the cart from the catalog and re-checks the coupon.
func (s *CheckoutService) buildOrder(ctx context.Context, session *models.Session) (*models.Order, *models.Coupon, error) {
	items := make([]models.OrderItem, 0, len(session.Lines))
	subtotal := decimal.Zero
	for _, line := range session.Lines {
		product, err := s.catalog.GetBySlug(ctx, line.Slug)
		if err != nil {
			return nil, nil, fmt.Errorf("price %s: %w", line.Slug, err)
		}
		items = append(items, models.OrderItem{
			ID:        uuid.NewString(),
			ProductID: product.ID,
			Title:     product.Name,
			Color:     line.Color,
			Qty:       line.Qty,
			UnitPrice: product.BasePrice,
		})
		subtotal = subtotal.Add(product.BasePrice.Mul(decimal.NewFromInt(int64(line.Qty))))
	}
	session.Subtotal = subtotal.Round(2)

	form := session.Form
	email := strings.ToLower(form.Get(models.FieldEmail))

	var coupon *models.Coupon
	if session.Coupon.Code != "" {
		c, err := s.coupons.ValidateCoupon(ctx, session.Coupon.Code, email, session.Subtotal)
		if err != nil {
			var ve *apperrors.ValidationError
			if errors.As(err, &ve) {
				session.Coupon = models.CouponDiscount{}
				session.CouponMessage = ve.Message
			}
			return nil, nil, err
		}
		coupon = c
		session.Coupon.Amount = s.coupons.CalculateDiscount(c, session.Subtotal)
	}

	method := session.ShippingMethod()
	province := form.Get(models.FieldProvince)
	address := ""
	switch method {
	case models.ShippingCourier:
		address = form.Get(models.FieldAddressCadete)
		if province == "" {
			province = s.cfg.DefaultCourierProvince
		}
	case models.ShippingCompany:
		address = form.Get(models.FieldAddressEnvio)
	}

	totals := s.calc.Totals(TotalsInput{
		Subtotal: session.Subtotal,
		Shipping: method,
		Province: province,
		Payment:  session.PaymentMethod(),
		Coupon:   session.Coupon,
	})

	order := &models.Order{
		ID:             uuid.NewString(),
		Items:          items,
		Email:          email,
		Name:           form.Get(models.FieldName),
		Phone:          form.Get(models.FieldPhone),
		Address:        address,
		Province:       province,
		ShippingMethod: method,
		PaymentMethod:  session.PaymentMethod(),
		Subtotal:       totals.Subtotal,
		ShippingCost:   totals.ShipCost,
		Discount:       totals.Discount,
		Total:          totals.Total,
		Currency:       s.cfg.Currency,
		Notes:          SanitizeOrderNotes(form.Get(models.FieldNotes)),
	}
	if method == models.ShippingCompany {
		order.PostalCode = form.Get(models.FieldPostalCode)
		order.DNI = form.Get(models.FieldDNI)
	}

	usesCoupon := totals.DiscountSource == models.DiscountCoupon || totals.DiscountSource == models.DiscountTransferAnd
	if coupon != nil && usesCoupon {
		order.CouponCode = coupon.Code
	} else {
		coupon = nil
	}

	return order, coupon, nil
}

func lockedWarning(section models.SectionName) string {
	idx := section.Index()
	if idx <= 0 {
		return "This section is not available yet."
	}
	return fmt.Sprintf("Complete the %s section first.", models.Sections[idx-1])
}

func submitWarning(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrAlreadySubmitting):
		return "Your order is being submitted."
	case errors.Is(err, apperrors.ErrSubmitNotReady):
		return "Complete every section before submitting."
	}
	return ""
}
