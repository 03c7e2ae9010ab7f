package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"warkop-pos/internal/events"
	"warkop-pos/internal/model"
	"warkop-pos/internal/repository"

	"github.com/google/uuid"
)

// store is an in-memory stand-in for Postgres. One mutex gives every method the
// atomicity the GORM repositories get from transactions.
type store struct {
	mu       sync.Mutex
	products map[uint]*model.Product
	tables   map[uint]*model.Table
	orders   map[uint]*model.Order
	payments map[uint]*model.Payment
	nextID   uint
	payID    uint
}

func newStore() *store {
	return &store{
		products: make(map[uint]*model.Product),
		tables:   make(map[uint]*model.Table),
		orders:   make(map[uint]*model.Order),
		payments: make(map[uint]*model.Payment),
	}
}

func (s *store) addProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = &p
}

func (s *store) addTable(t model.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[t.ID] = &t
}

func (s *store) stock(id uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *store) paymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}

// orderRepo

type fakeOrderRepo struct{ *store }

func (r fakeOrderRepo) Create(_ context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[uint]int)
	for _, l := range order.Lines {
		wanted[l.ProductID] += l.Quantity
	}
	for id, qty := range wanted {
		p, ok := r.products[id]
		if !ok || p.Stock < qty {
			return &repository.StockShortage{ProductID: id, Requested: qty}
		}
	}
	for id, qty := range wanted {
		r.products[id].Stock -= qty
	}

	r.nextID++
	order.ID = r.nextID
	order.CreatedAt = time.Now()
	for i := range order.Lines {
		order.Lines[i].ID = uint(i + 1)
		order.Lines[i].OrderID = order.ID
	}
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r fakeOrderRepo) load(id uint) (*model.Order, bool) {
	o, ok := r.orders[id]
	if !ok {
		return nil, false
	}
	cp := *o
	if cp.TableID != nil {
		cp.Table = r.tables[*cp.TableID]
	}
	if p, ok := r.payments[id]; ok {
		pc := *p
		cp.Payment = &pc
	}
	return &cp, true
}

func (r fakeOrderRepo) FindByID(_ context.Context, id uint) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.load(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return o, nil
}

func (r fakeOrderRepo) filter(keep func(o *model.Order) bool) []model.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Order
	for id := range r.orders {
		o, _ := r.load(id)
		if keep(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r fakeOrderRepo) FindByStatus(_ context.Context, status model.OrderStatus) ([]model.Order, error) {
	return r.filter(func(o *model.Order) bool { return o.Status == status }), nil
}

func (r fakeOrderRepo) FindByPhone(_ context.Context, phone string) ([]model.Order, error) {
	return r.filter(func(o *model.Order) bool {
		return o.PhoneNumber == phone && o.Source == model.SourceQRScan
	}), nil
}

func (r fakeOrderRepo) FindByIDAndPhone(_ context.Context, id uint, phone string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.load(id)
	if !ok || o.PhoneNumber != phone || o.Source != model.SourceQRScan {
		return nil, repository.ErrNotFound
	}
	return o, nil
}

func (r fakeOrderRepo) Mutate(_ context.Context, id uint, fn repository.MutateFunc) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.load(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	payment, err := fn(o)
	if err != nil {
		return nil, err
	}

	stored := r.orders[id]
	stored.Status = o.Status
	stored.PaymentStatus = o.PaymentStatus
	stored.KasirID = o.KasirID

	if payment != nil {
		payment.OrderID = id
		if existing, ok := r.payments[id]; ok {
			payment.ID = existing.ID
		} else {
			r.payID++
			payment.ID = r.payID
		}
		pc := *payment
		r.payments[id] = &pc
		o.Payment = payment
	}
	return o, nil
}

// productRepo

type fakeProductRepo struct{ *store }

func (r fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID + 1000
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r fakeProductRepo) FindAll(_ context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.products {
		if filter.Category == "" || p.Category == filter.Category {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeProductRepo) FindByID(_ context.Context, id uint) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r fakeProductRepo) FindByIDs(_ context.Context, ids []uint) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r fakeProductRepo) Categories(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, p := range r.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r fakeProductRepo) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r fakeProductRepo) Delete(_ context.Context, id uint, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

// tableRepo

type fakeTableRepo struct{ *store }

func (r fakeTableRepo) Create(_ context.Context, t *model.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = uint(len(r.tables) + 1)
	cp := *t
	r.tables[t.ID] = &cp
	return nil
}

func (r fakeTableRepo) FindAll(_ context.Context) ([]model.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Table
	for _, t := range r.tables {
		out = append(out, *t)
	}
	return out, nil
}

func (r fakeTableRepo) FindByID(_ context.Context, id uint) (*model.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r fakeTableRepo) FindByNumber(_ context.Context, number string) (*model.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tables {
		if t.TableNumber == number {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// otpRepo

type fakeOTPRepo struct {
	mu       sync.Mutex
	sessions []*model.CustomerOTPSession
}

func (r *fakeOTPRepo) CountSince(_ context.Context, phone string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.sessions {
		if s.PhoneNumber == phone && !s.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeOTPRepo) Create(_ context.Context, session *model.CustomerOTPSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.ID = uint(len(r.sessions) + 1)
	cp := *session
	r.sessions = append(r.sessions, &cp)
	return nil
}

func (r *fakeOTPRepo) FindByToken(_ context.Context, token string) (*model.CustomerOTPSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.SessionToken == token {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeOTPRepo) MarkVerified(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ID == id {
			s.IsVerified = true
		}
	}
	return nil
}

func (r *fakeOTPRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// userRepo

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindAll(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hashed string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hashed
	return nil
}

// publisher

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}
