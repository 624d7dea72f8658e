package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/trunghai04/webmoi-sub001/internal/models"
	"github.com/trunghai04/webmoi-sub001/internal/repository"

	"github.com/google/uuid"
)

var errStoreDown = errors.New("store: connection reset")

type cartKey struct{ user, product uuid.UUID }

type memState struct {
	products map[uuid.UUID]models.Product
	carts    map[cartKey]models.CartItem
	orders   map[uuid.UUID]models.Order
	items    map[uuid.UUID][]models.OrderItem
}

func (s memState) clone() memState {
	out := memState{
		products: make(map[uuid.UUID]models.Product, len(s.products)),
		carts:    make(map[cartKey]models.CartItem, len(s.carts)),
		orders:   make(map[uuid.UUID]models.Order, len(s.orders)),
		items:    make(map[uuid.UUID][]models.OrderItem, len(s.items)),
	}
	for k, v := range s.products {
		out.products[k] = v
	}
	for k, v := range s.carts {
		out.carts[k] = v
	}
	for k, v := range s.orders {
		out.orders[k] = v
	}
	for k, v := range s.items {
		out.items[k] = append([]models.OrderItem(nil), v...)
	}
	return out
}

// memStore is an in-memory repository.Store. Transactions are serialised and
// roll back to a snapshot on error, which is what Postgres gives the service.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   memState

	// fail makes the named operation return the error.
	fail map[string]error
	// beforeDecrement runs under the data lock right before a conditional decrement.
	beforeDecrement func(st *memState, productID uuid.UUID)
	// duplicateNumbers forces the first N order inserts to collide.
	duplicateNumbers int

	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{
		st: memState{
			products: map[uuid.UUID]models.Product{},
			carts:    map[cartKey]models.CartItem{},
			orders:   map[uuid.UUID]models.Order{},
			items:    map[uuid.UUID][]models.OrderItem{},
		},
		fail: map[string]error{},
	}
}

func (m *memStore) Products() repository.ProductRepo     { return memProducts{m} }
func (m *memStore) Carts() repository.CartRepo           { return memCarts{m} }
func (m *memStore) Orders() repository.OrderRepo         { return memOrders{m} }
func (m *memStore) OrderItems() repository.OrderItemRepo { return memItems{m} }

func (m *memStore) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snap := m.st.clone()
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	err := fn(memTx{m})
	if err == nil {
		err = ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.st = snap
		m.rollbacks++
		return err
	}
	m.commits++
	return nil
}

// memTx is the Store handed to a transaction body; nested WithTx joins it.
type memTx struct{ m *memStore }

func (t memTx) Products() repository.ProductRepo     { return memProducts{t.m} }
func (t memTx) Carts() repository.CartRepo           { return memCarts{t.m} }
func (t memTx) Orders() repository.OrderRepo         { return memOrders{t.m} }
func (t memTx) OrderItems() repository.OrderItemRepo { return memItems{t.m} }
func (t memTx) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}

func (m *memStore) check(op string) error {
	if err, ok := m.fail[op]; ok {
		return err
	}
	return nil
}

// test helpers

func (m *memStore) addProduct(name string, price int64, stock int32, active bool) models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := models.Product{ID: uuid.New(), Name: name, Image: name + ".png", Price: price, Stock: stock, IsActive: active}
	m.st.products[p.ID] = p
	return p
}

func (m *memStore) stock(id uuid.UUID) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.products[id].Stock
}

func (m *memStore) setStatus(id uuid.UUID, status models.OrderStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := m.st.orders[id]
	o.Status = status
	m.st.orders[id] = o
}

func (m *memStore) counts() (orders, items int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.st.items {
		items += len(v)
	}
	return len(m.st.orders), items
}

func (m *memStore) cartLen(user uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.st.carts {
		if k.user == user {
			n++
		}
	}
	return n
}

// products

type memProducts struct{ m *memStore }

func (r memProducts) Create(_ context.Context, p *models.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.m.st.products[p.ID] = *p
	return nil
}

func (r memProducts) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.check("products.get"); err != nil {
		return nil, err
	}
	p, ok := r.m.st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memProducts) BatchGetByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.Product
	for _, id := range ids {
		if p, ok := r.m.st.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) DecrementStock(_ context.Context, id uuid.UUID, qty int32) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.check("products.decrement"); err != nil {
		return false, err
	}
	if r.m.beforeDecrement != nil {
		r.m.beforeDecrement(&r.m.st, id)
	}
	p, ok := r.m.st.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	r.m.st.products[id] = p
	return true, nil
}

func (r memProducts) IncrementStock(_ context.Context, id uuid.UUID, qty int32) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.check("products.increment"); err != nil {
		return false, err
	}
	p, ok := r.m.st.products[id]
	if !ok {
		return false, nil
	}
	p.Stock += qty
	r.m.st.products[id] = p
	return true, nil
}

// carts

type memCarts struct{ m *memStore }

func (r memCarts) Get(_ context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	it, ok := r.m.st.carts[cartKey{userID, productID}]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r memCarts) ListByUser(_ context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.CartItem
	for k, v := range r.m.st.carts {
		if k.user == userID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memCarts) Upsert(_ context.Context, userID, productID uuid.UUID, qty int32) (*models.CartItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.check("carts.upsert"); err != nil {
		return nil, err
	}
	k := cartKey{userID, productID}
	it, ok := r.m.st.carts[k]
	if !ok {
		it = models.CartItem{ID: uuid.New(), UserID: userID, ProductID: productID, CreatedAt: time.Now()}
	}
	it.Quantity = qty
	it.UpdatedAt = time.Now()
	r.m.st.carts[k] = it
	return &it, nil
}

func (r memCarts) Delete(_ context.Context, userID, productID uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	k := cartKey{userID, productID}
	if _, ok := r.m.st.carts[k]; !ok {
		return false, nil
	}
	delete(r.m.st.carts, k)
	return true, nil
}

func (r memCarts) DeleteByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for k := range r.m.st.carts {
		if k.user == userID {
			delete(r.m.st.carts, k)
			n++
		}
	}
	return n, nil
}

func (r memCarts) DeleteProducts(_ context.Context, userID uuid.UUID, productIDs []uuid.UUID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.check("carts.delete_products"); err != nil {
		return 0, err
	}
	var n int64
	for _, pid := range productIDs {
		k := cartKey{userID, pid}
		if _, ok := r.m.st.carts[k]; ok {
			delete(r.m.st.carts, k)
			n++
		}
	}
	return n, nil
}

// orders

type memOrders struct{ m *memStore }

func (r memOrders) Create(_ context.Context, o *models.Order) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.check("orders.create"); err != nil {
		return err
	}
	if r.m.duplicateNumbers > 0 {
		r.m.duplicateNumbers--
		return repository.ErrDuplicateOrderNumber
	}
	for _, ex := range r.m.st.orders {
		if ex.OrderNumber == o.OrderNumber {
			return repository.ErrDuplicateOrderNumber
		}
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	row := *o
	row.Items = nil
	r.m.st.orders[o.ID] = row
	return nil
}

func (r memOrders) withItems(o models.Order) *models.Order {
	o.Items = append([]models.OrderItem(nil), r.m.st.items[o.ID]...)
	return &o
}

func (r memOrders) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.st.orders[id]
	if !ok {
		return nil, nil
	}
	return r.withItems(o), nil
}

func (r memOrders) GetByIDForUser(_ context.Context, id, userID uuid.UUID) (*models.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.st.orders[id]
	if !ok || o.UserID != userID {
		return nil, nil
	}
	return r.withItems(o), nil
}

func (r memOrders) TransitionStatus(_ context.Context, id uuid.UUID, from []models.OrderStatus, to models.OrderStatus, fields map[string]any) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.check("orders.transition"); err != nil {
		return false, err
	}
	o, ok := r.m.st.orders[id]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, f := range from {
		if o.Status == f {
			allowed = true
		}
	}
	if !allowed {
		return false, nil
	}
	o.Status = to
	for k, v := range fields {
		switch k {
		case "cancel_reason":
			s := v.(string)
			o.CancelReason = &s
		case "cancelled_at":
			t := v.(time.Time)
			o.CancelledAt = &t
		case "tracking_number":
			s := v.(string)
			o.TrackingNumber = &s
		case "note":
			o.Note = v.(string)
		}
	}
	r.m.st.orders[id] = o
	return true, nil
}

func (r memOrders) List(_ context.Context, f repository.OrderListFilter) ([]repository.OrderListRow, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var all []models.Order
	for _, o := range r.m.st.orders {
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if f.Offset >= len(all) {
		return nil, total, nil
	}
	all = all[f.Offset:]
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	out := make([]repository.OrderListRow, 0, len(all))
	for _, o := range all {
		row := repository.OrderListRow{Order: o}
		for _, it := range r.m.st.items[o.ID] {
			row.ItemCount++
			row.TotalQuantity += int64(it.Quantity)
		}
		out = append(out, row)
	}
	return out, total, nil
}

func (r memOrders) Stats(_ context.Context, userID *uuid.UUID) ([]repository.StatusStat, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	agg := map[models.OrderStatus]*repository.StatusStat{}
	for _, o := range r.m.st.orders {
		if userID != nil && o.UserID != *userID {
			continue
		}
		s, ok := agg[o.Status]
		if !ok {
			s = &repository.StatusStat{Status: o.Status}
			agg[o.Status] = s
		}
		s.Count++
		s.Amount += o.Total
	}
	var out []repository.StatusStat
	for _, s := range agg {
		out = append(out, *s)
	}
	return out, nil
}

// order items

type memItems struct{ m *memStore }

func (r memItems) BulkCreate(_ context.Context, items []models.OrderItem) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.check("items.create"); err != nil {
		return err
	}
	for _, it := range items {
		r.m.st.items[it.OrderID] = append(r.m.st.items[it.OrderID], it)
	}
	return nil
}

func (r memItems) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return append([]models.OrderItem(nil), r.m.st.items[orderID]...), nil
}

// recording collaborators

type recordingBus struct {
	mu        sync.Mutex
	created   []OrderCreatedEvent
	cancelled []OrderCancelledEvent
	changed   []OrderStatusChangedEvent
	err       error
}

func (b *recordingBus) PublishOrderCreated(_ context.Context, e OrderCreatedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, e)
	return b.err
}

func (b *recordingBus) PublishOrderCancelled(_ context.Context, e OrderCancelledEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelled = append(b.cancelled, e)
	return b.err
}

func (b *recordingBus) PublishOrderStatusChanged(_ context.Context, e OrderStatusChangedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changed = append(b.changed, e)
	return b.err
}

type memStatsCache struct {
	mu          sync.Mutex
	data        map[string]*Stats
	invalidated []string
}

func newMemStatsCache() *memStatsCache { return &memStatsCache{data: map[string]*Stats{}} }

func (c *memStatsCache) GetStats(_ context.Context, scope string) (*Stats, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.data[scope]
	return s, ok, nil
}

func (c *memStatsCache) SetStats(_ context.Context, scope string, s *Stats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[scope] = s
	return nil
}

func (c *memStatsCache) InvalidateStats(_ context.Context, scopes ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range scopes {
		delete(c.data, s)
	}
	c.invalidated = append(c.invalidated, scopes...)
	return nil
}
