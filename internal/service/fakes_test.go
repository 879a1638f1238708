package service

import (
	"context"
	"errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"kusina-service/internal/entity"
	"kusina-service/internal/repository"
	"sort"
	"strings"
	"sync"
	"time"
)

type memOrders struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]entity.Order
	err    error
}

func newMemOrders() *memOrders {
	return &memOrders{orders: map[primitive.ObjectID]entity.Order{}}
}

func (m *memOrders) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memOrders) get(id primitive.ObjectID) entity.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id]
}

func (m *memOrders) FindByID(_ context.Context, id primitive.ObjectID) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &order, nil
}

func (m *memOrders) Insert(_ context.Context, order *entity.Order) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	m.orders[order.ID] = *order
	stored := *order
	return &stored, nil
}

func (m *memOrders) update(id primitive.ObjectID, match func(entity.Order) bool, apply func(*entity.Order)) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !match(order) {
		return nil, repository.ErrConflict
	}
	apply(&order)
	m.orders[id] = order
	return &order, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to entity.OrderStatus, at time.Time) (*entity.Order, error) {
	return m.update(id,
		func(o entity.Order) bool { return o.OrderStatus == from },
		func(o *entity.Order) { o.OrderStatus = to; o.UpdatedAt = at })
}

func (m *memOrders) UpdatePaymentStatus(_ context.Context, id primitive.ObjectID, from, to entity.PaymentStatus, at time.Time) (*entity.Order, error) {
	return m.update(id,
		func(o entity.Order) bool { return o.PaymentStatus == from },
		func(o *entity.Order) { o.PaymentStatus = to; o.UpdatedAt = at })
}

func (m *memOrders) SetPaymentDetails(_ context.Context, id primitive.ObjectID, from entity.PaymentStatus, details entity.PaymentDetails, at time.Time) (*entity.Order, error) {
	return m.update(id,
		func(o entity.Order) bool { return o.PaymentStatus == from && o.PaymentDetails == nil },
		func(o *entity.Order) {
			o.PaymentDetails = &details
			o.PaymentStatus = entity.PaymentProcessing
			o.UpdatedAt = at
		})
}

func (m *memOrders) List(_ context.Context, f repository.OrderFilter) ([]entity.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}

	search := strings.ToLower(f.Search)
	var matched []entity.Order
	for _, o := range m.orders {
		if !f.UserID.IsZero() && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.OrderStatus != f.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(o.Customer.Name), search) &&
			!strings.Contains(strings.ToLower(o.Customer.Email), search) &&
			o.ID.Hex() != f.Search {
			continue
		}
		matched = append(matched, o)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.Hex() > matched[j].ID.Hex()
	})

	total := int64(len(matched))
	start := (f.Page - 1) * f.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *memOrders) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]entity.Order, error) {
	orders, _, err := m.List(ctx, repository.OrderFilter{UserID: userID, Page: 1, PageSize: 1 << 20})
	return orders, err
}

func (m *memOrders) Stats(_ context.Context) (*entity.OrderStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	stats := &entity.OrderStats{PerStatus: map[entity.OrderStatus]int64{}}
	for _, s := range entity.OrderStatuses {
		stats.PerStatus[s] = 0
	}
	for _, o := range m.orders {
		stats.Total++
		stats.PerStatus[o.OrderStatus]++
		stats.TotalAmount += o.Total
	}
	return stats, nil
}

type memProducts struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]entity.Product
	menuHits int
}

func newMemProducts(products ...entity.Product) *memProducts {
	m := &memProducts{products: map[primitive.ObjectID]entity.Product{}}
	for _, p := range products {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		m.products[p.ID] = p
	}
	return m
}

func (m *memProducts) FindByID(_ context.Context, id primitive.ObjectID) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memProducts) FindBySlug(_ context.Context, slug string) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memProducts) Menu(_ context.Context, category entity.Category, search string) ([]entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.menuHits++
	search = strings.ToLower(search)
	var out []entity.Product
	for _, p := range m.products {
		if !p.IsAvailable {
			continue
		}
		if category != entity.CategoryAll && category != "" && p.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *memProducts) All(_ context.Context) ([]entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Product
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *memProducts) slugTaken(slug string, except primitive.ObjectID) bool {
	for id, p := range m.products {
		if p.Slug == slug && id != except {
			return true
		}
	}
	return false
}

func (m *memProducts) Insert(_ context.Context, product *entity.Product) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTaken(product.Slug, primitive.NilObjectID) {
		return nil, repository.ErrDuplicate
	}
	product.ID = primitive.NewObjectID()
	m.products[product.ID] = *product
	stored := *product
	return &stored, nil
}

func (m *memProducts) Update(_ context.Context, product *entity.Product) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	if m.slugTaken(product.Slug, product.ID) {
		return nil, repository.ErrDuplicate
	}
	m.products[product.ID] = *product
	stored := *product
	return &stored, nil
}

func (m *memProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]entity.User
}

func newMemUsers(users ...entity.User) *memUsers {
	m := &memUsers{users: map[primitive.ObjectID]entity.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) emailTaken(email string, except primitive.ObjectID) bool {
	for id, u := range m.users {
		if u.Email == email && id != except {
			return true
		}
	}
	return false
}

func (m *memUsers) Insert(_ context.Context, user *entity.User) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailTaken(user.Email, primitive.NilObjectID) {
		return nil, repository.ErrDuplicate
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.users[user.ID] = *user
	stored := *user
	return &stored, nil
}

func (m *memUsers) Update(_ context.Context, user *entity.User) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	if m.emailTaken(user.Email, user.ID) {
		return nil, repository.ErrDuplicate
	}
	m.users[user.ID] = *user
	stored := *user
	return &stored, nil
}

func (m *memUsers) ListByRole(_ context.Context, role entity.Role) ([]entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.User
	for _, u := range m.users {
		if u.Role == role {
			u.PasswordHash = ""
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memSettings struct {
	settings *entity.Settings
	err      error
}

func (m *memSettings) Get(context.Context) (*entity.Settings, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.settings == nil {
		return nil, repository.ErrNotFound
	}
	s := *m.settings
	return &s, nil
}

func (m *memSettings) Save(_ context.Context, settings *entity.Settings) error {
	if m.err != nil {
		return m.err
	}
	s := *settings
	m.settings = &s
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	created []entity.Order
	updated []entity.Order
	err     error
}

func (n *recordingNotifier) OrderCreated(_ context.Context, order *entity.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, *order)
	return n.err
}

func (n *recordingNotifier) OrderStatusChanged(_ context.Context, order *entity.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updated = append(n.updated, *order)
	return n.err
}

var errStoreDown = errors.New("connection refused")
