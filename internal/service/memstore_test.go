package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dukerupert/sindri/internal/domain"
)

// memState is the whole dataset behind the in-memory store.
type memState struct {
	products   map[uuid.UUID]*domain.Product
	coupons    map[uuid.UUID]*domain.Coupon
	promotions []domain.Promotion
	orders     map[uuid.UUID]*domain.Order
	events     map[uuid.UUID][]domain.OrderEvent
	returns    map[uuid.UUID]*domain.ReturnRequest
}

func newMemState() *memState {
	return &memState{
		products: make(map[uuid.UUID]*domain.Product),
		coupons:  make(map[uuid.UUID]*domain.Coupon),
		orders:   make(map[uuid.UUID]*domain.Order),
		events:   make(map[uuid.UUID][]domain.OrderEvent),
		returns:  make(map[uuid.UUID]*domain.ReturnRequest),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for id, p := range s.products {
		c.products[id] = cloneProduct(p)
	}
	for id, cp := range s.coupons {
		dup := *cp
		c.coupons[id] = &dup
	}
	c.promotions = append([]domain.Promotion(nil), s.promotions...)
	for id, o := range s.orders {
		c.orders[id] = cloneOrder(o)
	}
	for id, evs := range s.events {
		c.events[id] = append([]domain.OrderEvent(nil), evs...)
	}
	for id, r := range s.returns {
		dup := *r
		dup.Lines = append([]domain.ReturnLine(nil), r.Lines...)
		c.returns[id] = &dup
	}
	return c
}

func cloneProduct(p *domain.Product) *domain.Product {
	dup := *p
	dup.Variants = append([]domain.Variant(nil), p.Variants...)
	return &dup
}

func cloneOrder(o *domain.Order) *domain.Order {
	dup := *o
	dup.Lines = append([]domain.OrderLine(nil), o.Lines...)
	if o.Attribution != nil {
		dup.Attribution = make(map[string]string, len(o.Attribution))
		for k, v := range o.Attribution {
			dup.Attribution[k] = v
		}
	}
	return &dup
}

// memStore is an in-memory Store for tests. One mutex guards everything, so
// transactions are serializable: RunInTx stages mutations on a clone and
// swaps it in only when fn succeeds, which gives real rollback semantics for
// the atomicity tests.
type memStore struct {
	mu    sync.Mutex
	state *memState
}

func newMemStore() *memStore {
	return &memStore{state: newMemState()}
}

func (s *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	if err := fn(ctx, &memTx{state: staged}); err != nil {
		return err
	}
	s.state = staged
	return nil
}

// --- seeding helpers; take the lock so tests can seed mid-flight ---

func (s *memStore) addProduct(p *domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[p.ID] = cloneProduct(p)
}

func (s *memStore) addCoupon(c *domain.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dup := *c
	s.state.coupons[c.ID] = &dup
}

func (s *memStore) addPromotion(p domain.Promotion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.promotions = append(s.state.promotions, p)
}

func (s *memStore) productStock(id uuid.UUID) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.products[id].BaseStock
}

func (s *memStore) couponUsage(id uuid.UUID) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.coupons[id].UsageCount
}

// Non-transactional reads delegate to a view of the live state under lock.

func (s *memStore) view(fn func(tx *memTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memTx{state: s.state})
}

func (s *memStore) GetProduct(ctx context.Context, id uuid.UUID) (p *domain.Product, err error) {
	err = s.view(func(tx *memTx) error { p, err = tx.GetProduct(ctx, id); return err })
	return p, err
}

func (s *memStore) GetProductForUpdate(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.GetProduct(ctx, id)
}

func (s *memStore) DecrementStock(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, qty int32) (ok bool, err error) {
	err = s.view(func(tx *memTx) error { ok, err = tx.DecrementStock(ctx, productID, variantID, qty); return err })
	return ok, err
}

func (s *memStore) IncrementStock(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, qty int32) error {
	return s.view(func(tx *memTx) error { return tx.IncrementStock(ctx, productID, variantID, qty) })
}

func (s *memStore) GetCouponByCode(ctx context.Context, code string) (c *domain.Coupon, err error) {
	err = s.view(func(tx *memTx) error { c, err = tx.GetCouponByCode(ctx, code); return err })
	return c, err
}

func (s *memStore) IncrementCouponUsage(ctx context.Context, couponID uuid.UUID) (ok bool, err error) {
	err = s.view(func(tx *memTx) error { ok, err = tx.IncrementCouponUsage(ctx, couponID); return err })
	return ok, err
}

func (s *memStore) ListActivePromotions(ctx context.Context) (promos []domain.Promotion, err error) {
	err = s.view(func(tx *memTx) error { promos, err = tx.ListActivePromotions(ctx); return err })
	return promos, err
}

func (s *memStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	return s.view(func(tx *memTx) error { return tx.CreateOrder(ctx, order) })
}

func (s *memStore) GetOrder(ctx context.Context, id uuid.UUID) (o *domain.Order, err error) {
	err = s.view(func(tx *memTx) error { o, err = tx.GetOrder(ctx, id); return err })
	return o, err
}

func (s *memStore) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.GetOrder(ctx, id)
}

func (s *memStore) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	return s.view(func(tx *memTx) error { return tx.UpdateOrderStatus(ctx, id, status) })
}

func (s *memStore) CreateOrderEvent(ctx context.Context, event *domain.OrderEvent) error {
	return s.view(func(tx *memTx) error { return tx.CreateOrderEvent(ctx, event) })
}

func (s *memStore) ListOrderEvents(ctx context.Context, orderID uuid.UUID) (evs []domain.OrderEvent, err error) {
	err = s.view(func(tx *memTx) error { evs, err = tx.ListOrderEvents(ctx, orderID); return err })
	return evs, err
}

func (s *memStore) CreateReturnRequest(ctx context.Context, req *domain.ReturnRequest) error {
	return s.view(func(tx *memTx) error { return tx.CreateReturnRequest(ctx, req) })
}

func (s *memStore) GetReturnRequest(ctx context.Context, id uuid.UUID) (r *domain.ReturnRequest, err error) {
	err = s.view(func(tx *memTx) error { r, err = tx.GetReturnRequest(ctx, id); return err })
	return r, err
}

func (s *memStore) GetReturnRequestForUpdate(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error) {
	return s.GetReturnRequest(ctx, id)
}

func (s *memStore) UpdateReturnRequest(ctx context.Context, req *domain.ReturnRequest) error {
	return s.view(func(tx *memTx) error { return tx.UpdateReturnRequest(ctx, req) })
}

func (s *memStore) OpenReturnExists(ctx context.Context, orderID uuid.UUID) (open bool, err error) {
	err = s.view(func(tx *memTx) error { open, err = tx.OpenReturnExists(ctx, orderID); return err })
	return open, err
}

// memTx operates on one memState. Inside RunInTx that state is a private
// clone; outside it is the live state under the store lock.
type memTx struct {
	state *memState
}

func (t *memTx) GetProduct(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := t.state.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (t *memTx) GetProductForUpdate(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return t.GetProduct(ctx, id)
}

func (t *memTx) DecrementStock(_ context.Context, productID uuid.UUID, variantID *uuid.UUID, qty int32) (bool, error) {
	p, ok := t.state.products[productID]
	if !ok {
		return false, domain.ErrProductNotFound
	}
	if variantID != nil {
		v := p.Variant(*variantID)
		if v == nil {
			return false, domain.ErrVariantNotFound
		}
		if v.Stock < qty {
			return false, nil
		}
		v.Stock -= qty
		p.BaseStock -= qty
		return true, nil
	}
	if p.BaseStock < qty {
		return false, nil
	}
	p.BaseStock -= qty
	return true, nil
}

func (t *memTx) IncrementStock(_ context.Context, productID uuid.UUID, variantID *uuid.UUID, qty int32) error {
	p, ok := t.state.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	if variantID != nil {
		v := p.Variant(*variantID)
		if v == nil {
			return domain.ErrVariantNotFound
		}
		v.Stock += qty
	}
	p.BaseStock += qty
	return nil
}

func (t *memTx) GetCouponByCode(_ context.Context, code string) (*domain.Coupon, error) {
	for _, c := range t.state.coupons {
		if c.Code == code {
			dup := *c
			return &dup, nil
		}
	}
	return nil, domain.NotFound("memstore.get_coupon", "coupon", code)
}

func (t *memTx) IncrementCouponUsage(_ context.Context, couponID uuid.UUID) (bool, error) {
	c, ok := t.state.coupons[couponID]
	if !ok {
		return false, domain.NotFound("memstore.increment_coupon_usage", "coupon", couponID.String())
	}
	if !c.UsesRemaining() {
		return false, nil
	}
	c.UsageCount++
	return true, nil
}

func (t *memTx) ListActivePromotions(_ context.Context) ([]domain.Promotion, error) {
	var out []domain.Promotion
	for _, p := range t.state.promotions {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (t *memTx) CreateOrder(_ context.Context, order *domain.Order) error {
	t.state.orders[order.ID] = cloneOrder(order)
	return nil
}

func (t *memTx) GetOrder(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := t.state.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (t *memTx) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return t.GetOrder(ctx, id)
}

func (t *memTx) UpdateOrderStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) error {
	o, ok := t.state.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (t *memTx) CreateOrderEvent(_ context.Context, event *domain.OrderEvent) error {
	t.state.events[event.OrderID] = append(t.state.events[event.OrderID], *event)
	return nil
}

func (t *memTx) ListOrderEvents(_ context.Context, orderID uuid.UUID) ([]domain.OrderEvent, error) {
	return append([]domain.OrderEvent(nil), t.state.events[orderID]...), nil
}

func (t *memTx) CreateReturnRequest(_ context.Context, req *domain.ReturnRequest) error {
	dup := *req
	dup.Lines = append([]domain.ReturnLine(nil), req.Lines...)
	t.state.returns[req.ID] = &dup
	return nil
}

func (t *memTx) GetReturnRequest(_ context.Context, id uuid.UUID) (*domain.ReturnRequest, error) {
	r, ok := t.state.returns[id]
	if !ok {
		return nil, domain.ErrReturnNotFound
	}
	dup := *r
	dup.Lines = append([]domain.ReturnLine(nil), r.Lines...)
	return &dup, nil
}

func (t *memTx) GetReturnRequestForUpdate(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error) {
	return t.GetReturnRequest(ctx, id)
}

func (t *memTx) UpdateReturnRequest(_ context.Context, req *domain.ReturnRequest) error {
	if _, ok := t.state.returns[req.ID]; !ok {
		return domain.ErrReturnNotFound
	}
	dup := *req
	dup.Lines = append([]domain.ReturnLine(nil), req.Lines...)
	t.state.returns[req.ID] = &dup
	return nil
}

func (t *memTx) OpenReturnExists(_ context.Context, orderID uuid.UUID) (bool, error) {
	for _, r := range t.state.returns {
		if r.OrderID == orderID && (r.Status == domain.ReturnPending || r.Status == domain.ReturnApproved) {
			return true, nil
		}
	}
	return false, nil
}
