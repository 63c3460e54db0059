package service

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/anle/storefront/internal/core/domain"
	"github.com/anle/storefront/internal/port"
)

// memState backs the in-memory repositories the way one database backs the
// real stores: shared maps behind one mutex.
type memState struct {
	mu         sync.Mutex
	accountSeq int64
	productSeq int64
	cartSeq    int64
	orderSeq   int64
	lineSeq    int64
	accounts   map[int64]domain.Account
	products   map[int64]domain.Product
	carts      map[int64]domain.CartItem
	orders     map[int64]domain.Order
	orderLines map[int64]domain.OrderLine
}

func newMemState() *memState {
	return &memState{
		accounts:   make(map[int64]domain.Account),
		products:   make(map[int64]domain.Product),
		carts:      make(map[int64]domain.CartItem),
		orders:     make(map[int64]domain.Order),
		orderLines: make(map[int64]domain.OrderLine),
	}
}

func (st *memState) cartLinesLocked(accountID int64) []domain.CartLine {
	lines := make([]domain.CartLine, 0)
	for _, item := range st.carts {
		if item.AccountID != accountID {
			continue
		}
		lines = append(lines, domain.CartLine{CartItem: item, Product: st.products[item.ProductID]})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines
}

func (st *memState) clearCartLocked(accountID int64) {
	for id, item := range st.carts {
		if item.AccountID == accountID {
			delete(st.carts, id)
		}
	}
}

// --- accounts ---

type memAccounts struct{ st *memState }

var _ port.AccountRepository = (*memAccounts)(nil)

func (m *memAccounts) Create(ctx context.Context, account *domain.Account) error {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, existing := range st.accounts {
		if existing.Username == account.Username || existing.Email == account.Email {
			return domain.ErrConflict
		}
	}
	st.accountSeq++
	account.ID = st.accountSeq
	st.accounts[account.ID] = *account
	return nil
}

func (m *memAccounts) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	account, ok := st.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &account, nil
}

func (m *memAccounts) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, account := range st.accounts {
		if account.Username == username {
			account := account
			return &account, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memAccounts) List(ctx context.Context) ([]domain.Account, error) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	accounts := make([]domain.Account, 0, len(st.accounts))
	for _, account := range st.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// --- products ---

type memProducts struct{ st *memState }

var _ port.ProductRepository = (*memProducts)(nil)

func (m *memProducts) sortedLocked() []domain.Product {
	products := make([]domain.Product, 0, len(m.st.products))
	for _, product := range m.st.products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}

func (m *memProducts) List(ctx context.Context, offset, limit int) ([]domain.Product, int, error) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	all := m.sortedLocked()
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memProducts) ListAll(ctx context.Context) ([]domain.Product, error) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()
	return m.sortedLocked(), nil
}

func (m *memProducts) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	product, ok := st.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &product, nil
}

func (m *memProducts) Create(ctx context.Context, product *domain.Product) error {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	st.productSeq++
	product.ID = st.productSeq
	st.products[product.ID] = *product
	return nil
}

func (m *memProducts) Update(ctx context.Context, product *domain.Product) error {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.products[product.ID]; !ok {
		return domain.ErrNotFound
	}
	st.products[product.ID] = *product
	return nil
}

func (m *memProducts) Delete(ctx context.Context, id int64) error {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(st.products, id)
	for cartID, item := range st.carts {
		if item.ProductID == id {
			delete(st.carts, cartID)
		}
	}
	for lineID, line := range st.orderLines {
		if line.ProductID == id {
			delete(st.orderLines, lineID)
		}
	}
	return nil
}

// --- cart ---

type memCarts struct{ st *memState }

var _ port.CartRepository = (*memCarts)(nil)

func (m *memCarts) Upsert(ctx context.Context, item *domain.CartItem) error {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	for id, existing := range st.carts {
		if existing.AccountID == item.AccountID && existing.ProductID == item.ProductID {
			existing.Quantity += item.Quantity
			st.carts[id] = existing
			item.ID = id
			return nil
		}
	}
	st.cartSeq++
	item.ID = st.cartSeq
	st.carts[item.ID] = *item
	return nil
}

func (m *memCarts) FindByID(ctx context.Context, id int64) (*domain.CartItem, error) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	item, ok := st.carts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}

func (m *memCarts) LinesForAccount(ctx context.Context, accountID int64) ([]domain.CartLine, error) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cartLinesLocked(accountID), nil
}

func (m *memCarts) Delete(ctx context.Context, id int64) error {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.carts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(st.carts, id)
	return nil
}

func (m *memCarts) DeleteForAccount(ctx context.Context, accountID int64) error {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()
	st.clearCartLocked(accountID)
	return nil
}

// --- orders ---

type memOrders struct{ st *memState }

var _ port.OrderRepository = (*memOrders)(nil)

// CreateFromCart mirrors the SQL transaction's net effect: under one lock,
// validate every line's stock, then apply order, lines, decrements and cart
// clearing together.
func (m *memOrders) CreateFromCart(ctx context.Context, accountID int64) (*domain.Order, error) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	lines := st.cartLinesLocked(accountID)
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	for _, line := range lines {
		if st.products[line.ProductID].Quantity < line.Quantity {
			return nil, domain.ErrInsufficientStock
		}
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	st.orderSeq++
	order := domain.Order{
		ID:        st.orderSeq,
		AccountID: accountID,
		Total:     total,
		Status:    domain.OrderStatusPaid,
	}
	st.orders[order.ID] = order

	for _, line := range lines {
		st.lineSeq++
		st.orderLines[st.lineSeq] = domain.OrderLine{
			ID:          st.lineSeq,
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			UnitPrice:   line.Product.Price,
			ProductName: line.Product.Name,
		}
		product := st.products[line.ProductID]
		product.Quantity -= line.Quantity
		st.products[line.ProductID] = product
	}

	st.clearCartLocked(accountID)
	return &order, nil
}

func (m *memOrders) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	order, ok := st.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &order, nil
}

func (m *memOrders) ListForAccount(ctx context.Context, accountID int64) ([]domain.Order, error) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	orders := make([]domain.Order, 0)
	for _, order := range st.orders {
		if order.AccountID == accountID {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

func (m *memOrders) ListAll(ctx context.Context) ([]domain.Order, error) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	orders := make([]domain.Order, 0, len(st.orders))
	for _, order := range st.orders {
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

func (m *memOrders) Lines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	lines := make([]domain.OrderLine, 0)
	for _, line := range st.orderLines {
		if line.OrderID == orderID {
			lines = append(lines, line)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines, nil
}

func (m *memOrders) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	order, ok := st.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	order.Status = status
	st.orders[id] = order
	return nil
}

// fakeHasher keeps account tests fast and deterministic.
type fakeHasher struct{}

var _ port.PasswordHasher = fakeHasher{}

func (fakeHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (fakeHasher) Check(hash, plaintext string) bool     { return hash == "hashed:"+plaintext }

// shop bundles everything a service test needs.
type shop struct {
	state    *memState
	accounts *memAccounts
	products *memProducts
	carts    *memCarts
	orders   *memOrders
}

func newShop() *shop {
	st := newMemState()
	return &shop{
		state:    st,
		accounts: &memAccounts{st: st},
		products: &memProducts{st: st},
		carts:    &memCarts{st: st},
		orders:   &memOrders{st: st},
	}
}

func (s *shop) addProduct(name string, price int64, stock int) domain.Product {
	product := domain.Product{Name: name, Price: decimal.NewFromInt(price), Quantity: stock}
	_ = s.products.Create(context.Background(), &product)
	return product
}

func (s *shop) addAccount(username string, admin bool) domain.Caller {
	account := domain.Account{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashed:secret",
		Admin:        admin,
	}
	_ = s.accounts.Create(context.Background(), &account)
	return domain.Caller{AccountID: account.ID, Username: username, Admin: admin}
}
