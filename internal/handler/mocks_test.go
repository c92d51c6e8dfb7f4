package handler

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/user"
	"github.com/xenking/storefront/internal/session"
)

type mockProductRepo struct {
	mu       sync.Mutex
	products []product.Product
	nextID   int64
}

func (m *mockProductRepo) List(context.Context) ([]product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.products), nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, product.ErrNotFound
}

func (m *mockProductRepo) Create(_ context.Context, p *product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	m.products = append(m.products, *p)
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, p *product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == p.ID {
			m.products[i] = *p
			return nil
		}
	}
	return product.ErrNotFound
}

func (m *mockProductRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = slices.DeleteFunc(m.products, func(p product.Product) bool { return p.ID == id })
	return nil
}

type mockUserRepo struct {
	mu     sync.Mutex
	users  []user.User
	nextID int64
}

func (m *mockUserRepo) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.users = append(m.users, *u)
	return nil
}

func (m *mockUserRepo) find(match func(user.User) bool) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	return m.find(func(u user.User) bool { return u.ID == id })
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	return m.find(func(u user.User) bool { return u.Email == email })
}

func (m *mockUserRepo) List(context.Context) ([]user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.users), nil
}

func (m *mockUserRepo) SetAdmin(_ context.Context, id int64, admin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].IsAdmin = admin
			return nil
		}
	}
	return user.ErrNotFound
}

func cloneCart(c *cart.Cart) *cart.Cart {
	out := &cart.Cart{UserID: c.UserID, Items: slices.Clone(c.Items)}
	if c.Shipping != nil {
		s := *c.Shipping
		if s.Info != nil {
			info := *s.Info
			s.Info = &info
		}
		out.Shipping = &s
	}
	return out
}

type mockCartRepo struct {
	mu    sync.Mutex
	carts map[int64]*cart.Cart
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[int64]*cart.Cart)}
}

func (m *mockCartRepo) Get(_ context.Context, userID int64) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return cart.New(userID), nil
	}
	return cloneCart(c), nil
}

func (m *mockCartRepo) Save(_ context.Context, c *cart.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[c.UserID] = cloneCart(c)
	return nil
}

func (m *mockCartRepo) clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
}

type mockOrderRepo struct {
	mu     sync.Mutex
	carts  *mockCartRepo
	orders []order.Order
}

func (m *mockOrderRepo) Place(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = int64(len(m.orders) + 1)
	o.OrderedAt = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	m.orders = append(m.orders, *o)
	m.carts.clear(o.UserID)
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, order.ErrNotFound
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID int64) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []order.Order
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].UserID == userID {
			out = append(out, m.orders[i])
		}
	}
	return out, nil
}

func (m *mockOrderRepo) List(context.Context) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.orders)
	slices.Reverse(out)
	return out, nil
}

type mockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]int64
}

func (m *mockSessionStore) Put(_ context.Context, id string, userID int64, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = userID
	return nil
}

func (m *mockSessionStore) Lookup(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.sessions[id]
	if !ok {
		return 0, session.ErrNotFound
	}
	return userID, nil
}

func (m *mockSessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
