package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"depotrack/backend/internal/domain"
	"depotrack/backend/internal/store"
	"depotrack/backend/internal/xid"
)

// Store is the in-memory repository. batchOrder preserves insertion order
// because transfer fulfillment's first-fit selection is defined over
// collection order.
type Store struct {
	mu          sync.RWMutex
	users       map[string]domain.User
	products    map[string]domain.Product
	batches     map[string]domain.Batch
	batchOrder  []string
	suppliers   map[string]domain.Supplier
	transfers   map[string]domain.TransferRequest
	sales       []domain.Sale
	adjustments []domain.StockAdjustment
	auditLogs   []domain.AuditLog
}

func New() *Store {
	return &Store{
		users:       make(map[string]domain.User),
		products:    make(map[string]domain.Product),
		batches:     make(map[string]domain.Batch),
		batchOrder:  make([]string, 0, 32),
		suppliers:   make(map[string]domain.Supplier),
		transfers:   make(map[string]domain.TransferRequest),
		sales:       make([]domain.Sale, 0, 64),
		adjustments: make([]domain.StockAdjustment, 0, 32),
		auditLogs:   make([]domain.AuditLog, 0, 128),
	}
}

// NewSeeded builds a store preloaded with the fixed demo roster, catalog and
// opening stock used when no database is configured.
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	for _, u := range []domain.User{
		{ID: "u1", Username: "owner", Role: domain.RoleOwner, Name: "Abebe Owner", Email: "owner@depotrack.local"},
		{ID: "u2", Username: "store", Role: domain.RoleStoreManager, Name: "Kebede Store", Email: "store@depotrack.local"},
		{ID: "u3", Username: "dispatch", Role: domain.RoleDispatchManager, Name: "Mulu Dispatch", Email: "dispatch@depotrack.local"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.MinCost)
		if err == nil {
			u.PasswordHash = string(hash)
		}
		s.users[u.ID] = u
	}

	for _, sup := range []domain.Supplier{
		{ID: "s1", Name: "Global Foods Ltd", ContactPerson: "John Doe", Email: "john@globalfoods.example", Phone: "+251911223344", Address: "Addis Ababa"},
		{ID: "s2", Name: "Tech Supplies Co", ContactPerson: "Jane Smith", Email: "jane@techsupplies.example", Phone: "+251922334455", Address: "Bole, Addis Ababa"},
	} {
		s.suppliers[sup.ID] = sup
	}

	for _, p := range []domain.Product{
		{
			ID: "p1", SKU: "SKU-001", Barcode: "123456789", Name: "Premium Coffee Beans",
			Description: "High-quality roasted beans", Category: "Beverages", SubCategory: "Coffee",
			Unit: "kg", CostPriceCents: 45000, SellingPriceCents: 65000,
			MinStockStore: 50, MinStockDispatch: 20, IsPerishable: true, DefaultExpiryDays: 180,
			SupplierID: "s1", Status: domain.ProductActive,
		},
		{
			ID: "p2", SKU: "SKU-002", Barcode: "987654321", Name: "Organic Honey",
			Description: "Pure natural honey", Category: "Food", SubCategory: "Sweeteners",
			Unit: "jar", CostPriceCents: 30000, SellingPriceCents: 45000,
			MinStockStore: 30, MinStockDispatch: 15, IsPerishable: true, DefaultExpiryDays: 365,
			SupplierID: "s1", Status: domain.ProductActive,
		},
		{
			ID: "p3", SKU: "SKU-003", Barcode: "456789123", Name: "Paper Towels",
			Description: "Highly absorbent towels", Category: "Household", SubCategory: "Cleaning",
			Unit: "pack", CostPriceCents: 8000, SellingPriceCents: 12000,
			MinStockStore: 100, MinStockDispatch: 40, IsPerishable: false,
			SupplierID: "s2", Status: domain.ProductActive,
		},
	} {
		s.products[p.ID] = p
	}

	coffeeExpiry := now.AddDate(0, 6, 0)
	honeyExpiry := now.AddDate(1, 0, 0)
	for _, b := range []domain.Batch{
		{ID: "b1", ProductID: "p1", BatchNo: "B001", ReceivedDate: now.AddDate(0, -1, 0), ExpiryDate: &coffeeExpiry, Quantity: 120, Location: domain.LocationStore, CostPerUnit: 45000},
		{ID: "b2", ProductID: "p1", BatchNo: "B001", ReceivedDate: now.AddDate(0, -1, 0), ExpiryDate: &coffeeExpiry, Quantity: 45, Location: domain.LocationDispatch, CostPerUnit: 45000},
		{ID: "b3", ProductID: "p2", BatchNo: "B002", ReceivedDate: now.AddDate(0, 0, -20), ExpiryDate: &honeyExpiry, Quantity: 80, Location: domain.LocationStore, CostPerUnit: 30000},
		{ID: "b4", ProductID: "p3", BatchNo: "B003", ReceivedDate: now.AddDate(0, 0, -10), Quantity: 200, Location: domain.LocationStore, CostPerUnit: 8000},
	} {
		s.batches[b.ID] = b
		s.batchOrder = append(s.batchOrder, b.ID)
	}

	s.sales = append(s.sales,
		domain.Sale{ID: "sale1", ProductID: "p1", BatchID: "b2", Quantity: 5, Revenue: 325000, Profit: 100000, Location: domain.LocationDispatch, SoldBy: "u3", SoldAt: now.Add(-1 * time.Hour)},
		domain.Sale{ID: "sale2", ProductID: "p2", BatchID: "b3", Quantity: 2, Revenue: 90000, Profit: 30000, Location: domain.LocationStore, SoldBy: "u2", SoldAt: now.Add(-2 * time.Hour)},
		domain.Sale{ID: "sale3", ProductID: "p1", BatchID: "b2", Quantity: 10, Revenue: 650000, Profit: 200000, Location: domain.LocationDispatch, SoldBy: "u3", SoldAt: now.Add(-24 * time.Hour)},
	)

	s.auditLogs = append(s.auditLogs,
		domain.AuditLog{ID: "log1", UserID: "u1", Action: domain.ActionSystemStart, Details: "System initialized with seed data", Timestamp: now.Add(-48 * time.Hour)},
		domain.AuditLog{ID: "log2", UserID: "u1", Action: domain.ActionLogin, Details: "Owner logged in", Timestamp: now.Add(-24 * time.Hour)},
		domain.AuditLog{ID: "log3", UserID: "u2", Action: domain.ActionBatchAdd, Details: "Received 120 units of Premium Coffee Beans", Timestamp: now.Add(-12 * time.Hour)},
	)

	return s
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, cloneUser(u))
	}
	slices.SortFunc(users, func(a, b domain.User) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := cloneUser(u)
	return &copied, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			copied := cloneUser(u)
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateUser(_ context.Context, user domain.User) (*domain.User, error) {
	if user.Username == "" || !user.Role.Valid() {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return nil, store.ErrInvalidInput
		}
	}
	if user.ID == "" {
		user.ID = xid.New("u")
	}
	s.users[user.ID] = cloneUser(user)
	created := cloneUser(user)
	return &created, nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) TouchUserLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	stamp := at.UTC()
	u.LastLogin = &stamp
	s.users[id] = u
	return nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Category == b.Category {
			return cmpString(a.Name, b.Name)
		}
		return cmpString(a.Category, b.Category)
	})
	return products, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := p
	return &copied, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.SKU == "" {
		return nil, store.ErrInvalidInput
	}
	if product.CostPriceCents < 0 || product.SellingPriceCents < 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" {
		product.ID = xid.New("p")
	}
	if product.Status == "" {
		product.Status = domain.ProductActive
	}
	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.SKU == "" {
		return nil, store.ErrInvalidInput
	}
	if product.CostPriceCents < 0 || product.SellingPriceCents < 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.products[product.ID] = product
	updated := product
	return &updated, nil
}

// DeleteProduct removes the catalog entry only. Batches and sales referencing
// the product are left in place; lookups on them report an unknown product.
func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) ListBatches(_ context.Context) ([]domain.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batches := make([]domain.Batch, 0, len(s.batchOrder))
	for _, id := range s.batchOrder {
		if b, ok := s.batches[id]; ok {
			batches = append(batches, cloneBatch(b))
		}
	}
	return batches, nil
}

func (s *Store) ListBatchesByProduct(_ context.Context, productID string, location domain.Location) ([]domain.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batches := make([]domain.Batch, 0, 8)
	for _, id := range s.batchOrder {
		b, ok := s.batches[id]
		if !ok || b.ProductID != productID {
			continue
		}
		if location != "" && b.Location != location {
			continue
		}
		batches = append(batches, cloneBatch(b))
	}
	return batches, nil
}

func (s *Store) GetBatch(_ context.Context, id string) (*domain.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.batches[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := cloneBatch(b)
	return &copied, nil
}

func (s *Store) CreateBatch(_ context.Context, batch domain.Batch) (*domain.Batch, error) {
	if batch.ProductID == "" || !batch.Location.Valid() {
		return nil, store.ErrInvalidInput
	}
	if batch.Quantity < 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if batch.ID == "" {
		batch.ID = xid.New("b")
	}
	if batch.ReceivedDate.IsZero() {
		batch.ReceivedDate = time.Now().UTC()
	}
	s.batches[batch.ID] = cloneBatch(batch)
	s.batchOrder = append(s.batchOrder, batch.ID)
	created := cloneBatch(batch)
	return &created, nil
}

func (s *Store) UpdateBatch(_ context.Context, batch domain.Batch) (*domain.Batch, error) {
	if !batch.Location.Valid() || batch.Quantity < 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.batches[batch.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.batches[batch.ID] = cloneBatch(batch)
	updated := cloneBatch(batch)
	return &updated, nil
}

func (s *Store) DeleteBatch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.batches[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.batches, id)
	s.batchOrder = slices.DeleteFunc(s.batchOrder, func(existing string) bool {
		return existing == id
	})
	return nil
}

func (s *Store) AddBatchQuantity(_ context.Context, id string, delta int) (*domain.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	next := b.Quantity + delta
	if next < 0 {
		return nil, store.ErrInsufficientStock
	}
	b.Quantity = next
	s.batches[id] = b
	updated := cloneBatch(b)
	return &updated, nil
}

func (s *Store) ListSuppliers(_ context.Context) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	suppliers := make([]domain.Supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		suppliers = append(suppliers, sup)
	}
	slices.SortFunc(suppliers, func(a, b domain.Supplier) int {
		return cmpString(a.Name, b.Name)
	})
	return suppliers, nil
}

func (s *Store) GetSupplier(_ context.Context, id string) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sup, ok := s.suppliers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := sup
	return &copied, nil
}

func (s *Store) CreateSupplier(_ context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	if supplier.Name == "" {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if supplier.ID == "" {
		supplier.ID = xid.New("s")
	}
	s.suppliers[supplier.ID] = supplier
	created := supplier
	return &created, nil
}

func (s *Store) DeleteSupplier(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.suppliers[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.suppliers, id)
	return nil
}

func (s *Store) ListTransfers(_ context.Context) ([]domain.TransferRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transfers := make([]domain.TransferRequest, 0, len(s.transfers))
	for _, tr := range s.transfers {
		transfers = append(transfers, cloneTransfer(tr))
	}
	slices.SortFunc(transfers, func(a, b domain.TransferRequest) int {
		if a.RequestedAt.Equal(b.RequestedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.RequestedAt.After(b.RequestedAt) {
			return -1
		}
		return 1
	})
	return transfers, nil
}

func (s *Store) GetTransfer(_ context.Context, id string) (*domain.TransferRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tr, ok := s.transfers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := cloneTransfer(tr)
	return &copied, nil
}

func (s *Store) CreateTransfer(_ context.Context, transfer domain.TransferRequest) (*domain.TransferRequest, error) {
	if transfer.ProductID == "" || transfer.RequestedQty < 1 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if transfer.ID == "" {
		transfer.ID = xid.New("tr")
	}
	if transfer.RequestedAt.IsZero() {
		transfer.RequestedAt = time.Now().UTC()
	}
	if transfer.Status == "" {
		transfer.Status = domain.TransferPending
	}
	s.transfers[transfer.ID] = cloneTransfer(transfer)
	created := cloneTransfer(transfer)
	return &created, nil
}

func (s *Store) UpdateTransfer(_ context.Context, transfer domain.TransferRequest) (*domain.TransferRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transfers[transfer.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.transfers[transfer.ID] = cloneTransfer(transfer)
	updated := cloneTransfer(transfer)
	return &updated, nil
}

func (s *Store) ListSales(_ context.Context, limit int) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, len(s.sales))
	copy(sales, s.sales)
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		if a.SoldAt.Equal(b.SoldAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.SoldAt.After(b.SoldAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.ProductID == "" || sale.BatchID == "" || sale.Quantity < 1 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.SoldAt.IsZero() {
		sale.SoldAt = time.Now().UTC()
	}
	s.sales = append(s.sales, sale)
	created := sale
	return &created, nil
}

func (s *Store) ListAdjustments(_ context.Context, limit int) ([]domain.StockAdjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	adjustments := make([]domain.StockAdjustment, len(s.adjustments))
	copy(adjustments, s.adjustments)
	slices.SortFunc(adjustments, func(a, b domain.StockAdjustment) int {
		if a.Timestamp.Equal(b.Timestamp) {
			return cmpString(b.ID, a.ID)
		}
		if a.Timestamp.After(b.Timestamp) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(adjustments) > limit {
		adjustments = adjustments[:limit]
	}
	return adjustments, nil
}

func (s *Store) CreateAdjustment(_ context.Context, adjustment domain.StockAdjustment) (*domain.StockAdjustment, error) {
	if adjustment.BatchID == "" || adjustment.QtyChange == 0 || !adjustment.Reason.Valid() {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if adjustment.ID == "" {
		adjustment.ID = xid.New("adj")
	}
	if adjustment.Timestamp.IsZero() {
		adjustment.Timestamp = time.Now().UTC()
	}
	s.adjustments = append(s.adjustments, adjustment)
	created := adjustment
	return &created, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("log")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := make([]domain.AuditLog, len(s.auditLogs))
	copy(logs, s.auditLogs)
	slices.SortFunc(logs, func(a, b domain.AuditLog) int {
		if a.Timestamp.Equal(b.Timestamp) {
			return cmpString(b.ID, a.ID)
		}
		if a.Timestamp.After(b.Timestamp) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func cmpString(a string, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func cloneBatch(src domain.Batch) domain.Batch {
	dup := src
	if src.ExpiryDate != nil {
		expiry := src.ExpiryDate.UTC()
		dup.ExpiryDate = &expiry
	}
	return dup
}

func cloneUser(src domain.User) domain.User {
	dup := src
	if src.LastLogin != nil {
		last := src.LastLogin.UTC()
		dup.LastLogin = &last
	}
	return dup
}

func cloneTransfer(src domain.TransferRequest) domain.TransferRequest {
	dup := src
	if src.FulfilledAt != nil {
		at := src.FulfilledAt.UTC()
		dup.FulfilledAt = &at
	}
	return dup
}
