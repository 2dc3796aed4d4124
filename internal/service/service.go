package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"depotrack/backend/internal/cache"
	"depotrack/backend/internal/domain"
	"depotrack/backend/internal/store"
	"depotrack/backend/internal/xid"
)

var (
	ErrForbidden      = errors.New("forbidden")
	ErrTransferClosed = errors.New("transfer already resolved")
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo       store.Repository
	summaries  cache.SummaryCache
	selector   BatchSelector
	summaryTTL time.Duration
}

func New(repo store.Repository, summaries cache.SummaryCache, selector BatchSelector, summaryTTL time.Duration) *Service {
	if summaries == nil {
		summaries = cache.NoopSummaryCache{}
	}
	if selector == nil {
		selector = FirstFit{}
	}
	if summaryTTL <= 0 {
		summaryTTL = 30 * time.Second
	}

	return &Service{
		repo:       repo,
		summaries:  summaries,
		selector:   selector,
		summaryTTL: summaryTTL,
	}
}

// Login attributes a session to a user looked up by username. The password
// is accepted but not verified against the stored hash; credential checking
// was never part of this system's contract and sessions exist only to
// attribute audit entries.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return domain.User{}, store.ErrInvalidInput
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	if err := s.repo.TouchUserLogin(ctx, user.ID, now); err != nil {
		log.Printf("[service] WARN: failed to stamp last login user=%s: %v", user.ID, err)
	}
	user.LastLogin = &now

	s.record(ctx, user.ID, domain.ActionLogin, fmt.Sprintf("%s logged in", user.Name), "", "")
	return *user, nil
}

func (s *Service) Logout(ctx context.Context) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return
	}
	s.record(ctx, actor.UserID, domain.ActionLogout, fmt.Sprintf("%s logged out", actor.Username), "", "")
}

// SwitchView lets an owner preview another role's surface. The returned role
// becomes the session's active role; audit attribution keeps the owner's id.
func (s *Service) SwitchView(ctx context.Context, role domain.Role) (domain.Role, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleOwner {
		return "", ErrForbidden
	}
	if !role.Valid() {
		return "", store.ErrInvalidInput
	}
	return role, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *p, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))
	req.Name = strings.TrimSpace(req.Name)
	if req.SKU == "" || req.Name == "" {
		return domain.Product{}, store.ErrInvalidInput
	}
	if req.CostPriceCents < 0 || req.SellingPriceCents < 0 {
		return domain.Product{}, store.ErrInvalidInput
	}
	if req.MinStockStore < 0 || req.MinStockDispatch < 0 || req.DefaultExpiryDays < 0 {
		return domain.Product{}, store.ErrInvalidInput
	}

	product := domain.Product{
		SKU:               req.SKU,
		Barcode:           req.Barcode,
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		SubCategory:       req.SubCategory,
		Unit:              req.Unit,
		CostPriceCents:    req.CostPriceCents,
		SellingPriceCents: req.SellingPriceCents,
		MinStockStore:     req.MinStockStore,
		MinStockDispatch:  req.MinStockDispatch,
		IsPerishable:      req.IsPerishable,
		DefaultExpiryDays: req.DefaultExpiryDays,
		SupplierID:        req.SupplierID,
		Status:            domain.ProductActive,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.record(ctx, "", domain.ActionProductAdd, fmt.Sprintf("Added product %s (%s)", created.Name, created.SKU), "", snapshot(created))
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.SKU != nil {
		updated.SKU = strings.ToUpper(strings.TrimSpace(*req.SKU))
	}
	if req.Barcode != nil {
		updated.Barcode = *req.Barcode
	}
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Category != nil {
		updated.Category = *req.Category
	}
	if req.SubCategory != nil {
		updated.SubCategory = *req.SubCategory
	}
	if req.Unit != nil {
		updated.Unit = *req.Unit
	}
	if req.CostPriceCents != nil {
		updated.CostPriceCents = *req.CostPriceCents
	}
	if req.SellingPriceCents != nil {
		updated.SellingPriceCents = *req.SellingPriceCents
	}
	if req.MinStockStore != nil {
		updated.MinStockStore = *req.MinStockStore
	}
	if req.MinStockDispatch != nil {
		updated.MinStockDispatch = *req.MinStockDispatch
	}
	if req.IsPerishable != nil {
		updated.IsPerishable = *req.IsPerishable
	}
	if req.DefaultExpiryDays != nil {
		updated.DefaultExpiryDays = *req.DefaultExpiryDays
	}
	if req.SupplierID != nil {
		updated.SupplierID = *req.SupplierID
	}
	if req.Status != nil {
		if *req.Status != domain.ProductActive && *req.Status != domain.ProductInactive {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.Status = *req.Status
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}

	s.record(ctx, "", domain.ActionProductUpdate, fmt.Sprintf("Updated product %s (%s)", saved.Name, saved.SKU), snapshot(existing), snapshot(saved))
	return *saved, nil
}

// DeleteProduct removes the catalog entry without cascading. Batches and
// sales keep their product id; lookups on them report an unknown product.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.record(ctx, "", domain.ActionProductDelete, fmt.Sprintf("Deleted product %s (%s)", existing.Name, existing.SKU), snapshot(existing), "")
	return nil
}

func (s *Service) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) CreateSupplier(ctx context.Context, req domain.SupplierCreateRequest) (domain.Supplier, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Supplier{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateSupplier(ctx, domain.Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	})
	if err != nil {
		return domain.Supplier{}, err
	}

	s.record(ctx, "", domain.ActionSupplierAdd, fmt.Sprintf("Added supplier %s", created.Name), "", snapshot(created))
	return *created, nil
}

func (s *Service) DeleteSupplier(ctx context.Context, id string) error {
	existing, err := s.repo.GetSupplier(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteSupplier(ctx, id); err != nil {
		return err
	}

	s.record(ctx, "", domain.ActionSupplierDelete, fmt.Sprintf("Deleted supplier %s", existing.Name), snapshot(existing), "")
	return nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Service) CreateUser(ctx context.Context, req domain.UserCreateRequest) (domain.User, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleOwner {
		return domain.User{}, ErrForbidden
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Name == "" || !req.Role.Valid() {
		return domain.User{}, store.ErrInvalidInput
	}

	user := domain.User{
		Username: req.Username,
		Role:     req.Role,
		Name:     req.Name,
		Email:    req.Email,
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, err
		}
		user.PasswordHash = string(hash)
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return domain.User{}, err
	}

	s.record(ctx, "", domain.ActionUserAdd, fmt.Sprintf("Added user %s (%s)", created.Username, created.Role), "", snapshot(created))
	return *created, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleOwner {
		return ErrForbidden
	}
	if actor.UserID == id {
		return store.ErrInvalidInput
	}

	existing, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.record(ctx, "", domain.ActionUserDelete, fmt.Sprintf("Deleted user %s", existing.Username), snapshot(existing), "")
	return nil
}

func (s *Service) ListBatches(ctx context.Context) ([]domain.Batch, error) {
	return s.repo.ListBatches(ctx)
}

// ReceiveBatch books incoming stock as a new batch. Dates arrive as strings
// in either RFC 3339 or YYYY-MM-DD form.
func (s *Service) ReceiveBatch(ctx context.Context, req domain.BatchReceiveRequest) (domain.Batch, error) {
	if req.Quantity < 0 || req.CostPerUnit < 0 || !req.Location.Valid() {
		return domain.Batch{}, store.ErrInvalidInput
	}

	product, err := s.repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return domain.Batch{}, err
	}

	received := time.Now().UTC()
	if req.ReceivedDate != "" {
		parsed, err := parseDate(req.ReceivedDate)
		if err != nil {
			return domain.Batch{}, store.ErrInvalidInput
		}
		received = parsed
	}
	var expiry *time.Time
	if req.ExpiryDate != "" {
		parsed, err := parseDate(req.ExpiryDate)
		if err != nil {
			return domain.Batch{}, store.ErrInvalidInput
		}
		expiry = &parsed
	} else if product.IsPerishable && product.DefaultExpiryDays > 0 {
		derived := received.AddDate(0, 0, product.DefaultExpiryDays)
		expiry = &derived
	}

	created, err := s.repo.CreateBatch(ctx, domain.Batch{
		ProductID:    req.ProductID,
		BatchNo:      req.BatchNo,
		ReceivedDate: received,
		ExpiryDate:   expiry,
		Quantity:     req.Quantity,
		Location:     req.Location,
		CostPerUnit:  req.CostPerUnit,
	})
	if err != nil {
		return domain.Batch{}, err
	}

	s.record(ctx, "", domain.ActionBatchAdd, fmt.Sprintf("Received %d %s of %s at %s", created.Quantity, product.Unit, product.Name, created.Location), "", snapshot(created))
	return *created, nil
}

func (s *Service) UpdateBatch(ctx context.Context, id string, req domain.BatchUpdateRequest) (domain.Batch, error) {
	existing, err := s.repo.GetBatch(ctx, id)
	if err != nil {
		return domain.Batch{}, err
	}

	updated := *existing
	if req.BatchNo != nil {
		updated.BatchNo = *req.BatchNo
	}
	if req.ExpiryDate != nil {
		if *req.ExpiryDate == "" {
			updated.ExpiryDate = nil
		} else {
			parsed, err := parseDate(*req.ExpiryDate)
			if err != nil {
				return domain.Batch{}, store.ErrInvalidInput
			}
			updated.ExpiryDate = &parsed
		}
	}
	if req.Quantity != nil {
		updated.Quantity = *req.Quantity
	}
	if req.Location != nil {
		updated.Location = *req.Location
	}
	if req.CostPerUnit != nil {
		updated.CostPerUnit = *req.CostPerUnit
	}

	saved, err := s.repo.UpdateBatch(ctx, updated)
	if err != nil {
		return domain.Batch{}, err
	}

	s.record(ctx, "", domain.ActionBatchUpdate, fmt.Sprintf("Updated batch %s", saved.BatchNo), snapshot(existing), snapshot(saved))
	return *saved, nil
}

func (s *Service) DeleteBatch(ctx context.Context, id string) error {
	existing, err := s.repo.GetBatch(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBatch(ctx, id); err != nil {
		return err
	}

	s.record(ctx, "", domain.ActionBatchDelete, fmt.Sprintf("Deleted batch %s (%d left unsold)", existing.BatchNo, existing.Quantity), snapshot(existing), "")
	return nil
}

// RecordSale books one point-of-sale line item: the named batch is
// decremented and an immutable Sale is written with revenue and profit
// computed from the product's prices at call time.
func (s *Service) RecordSale(ctx context.Context, req domain.SaleLineRequest) (domain.Sale, error) {
	if req.Quantity < 1 {
		return domain.Sale{}, store.ErrInvalidInput
	}

	batch, err := s.repo.GetBatch(ctx, req.BatchID)
	if err != nil {
		return domain.Sale{}, err
	}
	if req.ProductID != "" && req.ProductID != batch.ProductID {
		return domain.Sale{}, store.ErrInvalidInput
	}
	if req.Location != "" && req.Location != batch.Location {
		return domain.Sale{}, store.ErrInvalidInput
	}

	product, err := s.repo.GetProduct(ctx, batch.ProductID)
	if err != nil {
		return domain.Sale{}, err
	}

	if _, err := s.repo.AddBatchQuantity(ctx, batch.ID, -req.Quantity); err != nil {
		return domain.Sale{}, err
	}

	actor, _ := ActorFromContext(ctx)
	qty := int64(req.Quantity)
	sale := domain.Sale{
		ProductID: batch.ProductID,
		BatchID:   batch.ID,
		Quantity:  req.Quantity,
		Revenue:   qty * product.SellingPriceCents,
		Profit:    qty * (product.SellingPriceCents - product.CostPriceCents),
		Location:  batch.Location,
		SoldBy:    actor.UserID,
		SoldAt:    time.Now().UTC(),
	}

	created, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		return domain.Sale{}, err
	}

	s.record(ctx, "", domain.ActionSale, fmt.Sprintf("Sold %d %s of %s at %s", created.Quantity, product.Unit, product.Name, created.Location), "", snapshot(created))
	return *created, nil
}

// Checkout books a multi-line sale. Lines are applied in order; a failing
// line aborts the remainder and leaves earlier lines committed, each with
// its own Sale record and audit entry.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	if len(req.Lines) == 0 {
		return domain.CheckoutResponse{}, store.ErrInvalidInput
	}

	resp := domain.CheckoutResponse{Sales: make([]domain.Sale, 0, len(req.Lines))}
	for _, line := range req.Lines {
		sale, err := s.RecordSale(ctx, line)
		if err != nil {
			return resp, err
		}
		resp.Sales = append(resp.Sales, sale)
		resp.TotalRevenueCents += sale.Revenue
		resp.TotalProfitCents += sale.Profit
	}
	return resp, nil
}

func (s *Service) ListSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	return s.repo.ListSales(ctx, limit)
}

func (s *Service) AdjustStock(ctx context.Context, req domain.AdjustmentCreateRequest) (domain.StockAdjustment, error) {
	if req.QtyChange == 0 || !req.Reason.Valid() {
		return domain.StockAdjustment{}, store.ErrInvalidInput
	}

	batch, err := s.repo.GetBatch(ctx, req.BatchID)
	if err != nil {
		return domain.StockAdjustment{}, err
	}
	if req.ProductID != "" && req.ProductID != batch.ProductID {
		return domain.StockAdjustment{}, store.ErrInvalidInput
	}

	if _, err := s.repo.AddBatchQuantity(ctx, batch.ID, req.QtyChange); err != nil {
		return domain.StockAdjustment{}, err
	}

	actor, _ := ActorFromContext(ctx)
	created, err := s.repo.CreateAdjustment(ctx, domain.StockAdjustment{
		ProductID:  batch.ProductID,
		BatchID:    batch.ID,
		QtyChange:  req.QtyChange,
		Reason:     req.Reason,
		Location:   batch.Location,
		AdjustedBy: actor.UserID,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		return domain.StockAdjustment{}, err
	}

	s.record(ctx, "", domain.ActionAdjustment, fmt.Sprintf("Adjusted batch %s by %+d (%s)", batch.BatchNo, created.QtyChange, created.Reason), "", snapshot(created))
	return *created, nil
}

func (s *Service) ListAdjustments(ctx context.Context, limit int) ([]domain.StockAdjustment, error) {
	return s.repo.ListAdjustments(ctx, limit)
}

// RequestTransfer opens a PENDING request to move stock from STORE to
// DISPATCH. Available stock is not checked at request time; the request may
// exceed what is ever fulfillable.
func (s *Service) RequestTransfer(ctx context.Context, req domain.TransferCreateRequest) (domain.TransferRequest, error) {
	if req.RequestedQty < 1 {
		return domain.TransferRequest{}, store.ErrInvalidInput
	}

	product, err := s.repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return domain.TransferRequest{}, err
	}

	actor, _ := ActorFromContext(ctx)
	created, err := s.repo.CreateTransfer(ctx, domain.TransferRequest{
		ProductID:    req.ProductID,
		RequestedQty: req.RequestedQty,
		Status:       domain.TransferPending,
		RequestedBy:  actor.UserID,
		RequestedAt:  time.Now().UTC(),
	})
	if err != nil {
		return domain.TransferRequest{}, err
	}

	s.record(ctx, "", domain.ActionTransferRequest, fmt.Sprintf("Requested %d %s of %s for dispatch", created.RequestedQty, product.Unit, product.Name), "", snapshot(created))
	return *created, nil
}

// FulfillTransfer resolves a PENDING transfer. The source batch is chosen by
// the configured selection strategy over STORE batches; the moved quantity
// merges into the DISPATCH batch carrying the same batch number, or a new
// DISPATCH batch cloned from the source's metadata. When no single batch can
// cover the request the transfer still reaches FULFILLED with no stock
// moved, and the response says so.
func (s *Service) FulfillTransfer(ctx context.Context, id string) (domain.TransferFulfillResponse, error) {
	transfer, err := s.repo.GetTransfer(ctx, id)
	if err != nil {
		return domain.TransferFulfillResponse{}, err
	}
	if transfer.Status != domain.TransferPending {
		return domain.TransferFulfillResponse{}, ErrTransferClosed
	}

	storeBatches, err := s.repo.ListBatchesByProduct(ctx, transfer.ProductID, domain.LocationStore)
	if err != nil {
		return domain.TransferFulfillResponse{}, err
	}

	resp := domain.TransferFulfillResponse{}
	source := s.selector.Select(storeBatches, transfer.RequestedQty)
	if source != nil {
		if _, err := s.repo.AddBatchQuantity(ctx, source.ID, -transfer.RequestedQty); err != nil {
			return domain.TransferFulfillResponse{}, err
		}

		target, err := s.dispatchTarget(ctx, source, transfer.RequestedQty)
		if err != nil {
			return domain.TransferFulfillResponse{}, err
		}
		resp.StockMoved = true
		resp.FromBatch = source.ID
		resp.ToBatch = target
	}

	now := time.Now().UTC()
	transfer.Status = domain.TransferFulfilled
	transfer.FulfilledAt = &now
	saved, err := s.repo.UpdateTransfer(ctx, *transfer)
	if err != nil {
		return domain.TransferFulfillResponse{}, err
	}
	resp.Transfer = *saved

	detail := fmt.Sprintf("Fulfilled transfer of %d units of product %s", saved.RequestedQty, saved.ProductID)
	if !resp.StockMoved {
		detail += " (no qualifying batch, no stock moved)"
	}
	s.record(ctx, "", domain.ActionTransferFulfill, detail, "", snapshot(saved))
	return resp, nil
}

// dispatchTarget merges the moved quantity into the DISPATCH batch with the
// source's batch number, or clones a new DISPATCH batch from the source.
func (s *Service) dispatchTarget(ctx context.Context, source *domain.Batch, qty int) (string, error) {
	dispatchBatches, err := s.repo.ListBatchesByProduct(ctx, source.ProductID, domain.LocationDispatch)
	if err != nil {
		return "", err
	}
	for _, b := range dispatchBatches {
		if b.BatchNo == source.BatchNo {
			if _, err := s.repo.AddBatchQuantity(ctx, b.ID, qty); err != nil {
				return "", err
			}
			return b.ID, nil
		}
	}

	created, err := s.repo.CreateBatch(ctx, domain.Batch{
		ProductID:    source.ProductID,
		BatchNo:      source.BatchNo,
		ReceivedDate: source.ReceivedDate,
		ExpiryDate:   source.ExpiryDate,
		Quantity:     qty,
		Location:     domain.LocationDispatch,
		CostPerUnit:  source.CostPerUnit,
	})
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func (s *Service) RejectTransfer(ctx context.Context, id string) (domain.TransferRequest, error) {
	transfer, err := s.repo.GetTransfer(ctx, id)
	if err != nil {
		return domain.TransferRequest{}, err
	}
	if transfer.Status != domain.TransferPending {
		return domain.TransferRequest{}, ErrTransferClosed
	}

	transfer.Status = domain.TransferRejected
	saved, err := s.repo.UpdateTransfer(ctx, *transfer)
	if err != nil {
		return domain.TransferRequest{}, err
	}

	s.record(ctx, "", domain.ActionTransferReject, fmt.Sprintf("Rejected transfer of %d units of product %s", saved.RequestedQty, saved.ProductID), "", snapshot(saved))
	return *saved, nil
}

func (s *Service) ListTransfers(ctx context.Context) ([]domain.TransferRequest, error) {
	return s.repo.ListTransfers(ctx)
}

func (s *Service) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	return s.repo.ListAuditLogs(ctx, limit)
}

// StockSummary reports per-product on-hand totals per location with
// low-stock flags against the product's reorder thresholds. Results are
// served through the summary cache when one is configured.
func (s *Service) StockSummary(ctx context.Context) (domain.StockSummary, error) {
	const key = "stock_summary:v1"

	if cached, ok, err := s.summaries.Get(ctx, key); err != nil {
		log.Printf("[service] WARN: summary cache read failed: %v", err)
	} else if ok {
		return *cached, nil
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.StockSummary{}, err
	}
	batches, err := s.repo.ListBatches(ctx)
	if err != nil {
		return domain.StockSummary{}, err
	}

	storeQty := make(map[string]int, len(products))
	dispatchQty := make(map[string]int, len(products))
	for _, b := range batches {
		switch b.Location {
		case domain.LocationStore:
			storeQty[b.ProductID] += b.Quantity
		case domain.LocationDispatch:
			dispatchQty[b.ProductID] += b.Quantity
		}
	}

	summary := domain.StockSummary{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Products:    make([]domain.ProductStock, 0, len(products)),
	}
	for _, p := range products {
		row := domain.ProductStock{
			ProductID:        p.ID,
			SKU:              p.SKU,
			Name:             p.Name,
			StoreQty:         storeQty[p.ID],
			DispatchQty:      dispatchQty[p.ID],
			MinStockStore:    p.MinStockStore,
			MinStockDispatch: p.MinStockDispatch,
		}
		row.LowAtStore = row.StoreQty < p.MinStockStore
		row.LowAtDispatch = row.DispatchQty < p.MinStockDispatch
		summary.Products = append(summary.Products, row)
	}

	if err := s.summaries.Set(ctx, key, &summary, s.summaryTTL); err != nil {
		log.Printf("[service] WARN: summary cache write failed: %v", err)
	}
	return summary, nil
}

// record writes one audit entry for the enclosing operation. userID overrides
// the context actor for operations that run before a session exists (login).
// Recording never fails the caller.
func (s *Service) record(ctx context.Context, userID string, action string, details string, oldValue string, newValue string) {
	if userID == "" {
		if actor, ok := ActorFromContext(ctx); ok {
			userID = actor.UserID
		}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:        xid.New("log"),
		UserID:    userID,
		Action:    action,
		Details:   details,
		Timestamp: time.Now().UTC(),
		OldValue:  oldValue,
		NewValue:  newValue,
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s: %v", action, err)
	}
}

func snapshot(v any) string {
	payload, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(payload)
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
