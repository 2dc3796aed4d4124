package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"depotrack/backend/internal/domain"
	"depotrack/backend/internal/store"
)

func TestSeededStoreContents(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	users, err := s.ListUsers(ctx)
	if err != nil || len(users) != 3 {
		t.Fatalf("expected 3 seeded users, got %d (%v)", len(users), err)
	}

	products, err := s.ListProducts(ctx)
	if err != nil || len(products) != 3 {
		t.Fatalf("expected 3 seeded products, got %d (%v)", len(products), err)
	}

	batches, err := s.ListBatches(ctx)
	if err != nil || len(batches) != 4 {
		t.Fatalf("expected 4 seeded batches, got %d (%v)", len(batches), err)
	}
	// Insertion order is the contract for batch listings.
	for i, want := range []string{"b1", "b2", "b3", "b4"} {
		if batches[i].ID != want {
			t.Fatalf("expected batch %s at position %d, got %s", want, i, batches[i].ID)
		}
	}

	sales, err := s.ListSales(ctx, 0)
	if err != nil || len(sales) != 3 {
		t.Fatalf("expected 3 seeded sales, got %d (%v)", len(sales), err)
	}

	logs, err := s.ListAuditLogs(ctx, 0)
	if err != nil || len(logs) != 3 {
		t.Fatalf("expected 3 seeded audit entries, got %d (%v)", len(logs), err)
	}
	// Newest first: the SYSTEM_START entry is the oldest.
	if logs[len(logs)-1].Action != domain.ActionSystemStart {
		t.Fatalf("expected %s as oldest entry, got %s", domain.ActionSystemStart, logs[len(logs)-1].Action)
	}
}

func TestAddBatchQuantityGuardsAgainstNegative(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	updated, err := s.AddBatchQuantity(ctx, "b1", -20)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if updated.Quantity != 100 {
		t.Fatalf("expected 100, got %d", updated.Quantity)
	}

	if _, err := s.AddBatchQuantity(ctx, "b1", -101); !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	b, err := s.GetBatch(ctx, "b1")
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if b.Quantity != 100 {
		t.Fatalf("failed decrement must not change quantity, got %d", b.Quantity)
	}

	if _, err := s.AddBatchQuantity(ctx, "missing", 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListBatchesByProductFiltersLocation(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	storeOnly, err := s.ListBatchesByProduct(ctx, "p1", domain.LocationStore)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(storeOnly) != 1 || storeOnly[0].ID != "b1" {
		t.Fatalf("expected [b1], got %+v", storeOnly)
	}

	all, err := s.ListBatchesByProduct(ctx, "p1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both p1 batches, got %d", len(all))
	}
}

func TestReadsReturnCopies(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	b, err := s.GetBatch(ctx, "b1")
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	b.Quantity = 9999
	*b.ExpiryDate = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)

	fresh, err := s.GetBatch(ctx, "b1")
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if fresh.Quantity != 120 {
		t.Fatalf("stored quantity mutated through a read copy: %d", fresh.Quantity)
	}
	if fresh.ExpiryDate.Year() == 1999 {
		t.Fatalf("stored expiry mutated through a read copy")
	}
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	s := NewSeeded()

	_, err := s.CreateUser(context.Background(), domain.User{Username: "owner", Role: domain.RoleOwner, Name: "Copycat"})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDeleteBatchRemovesFromListingOrder(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	if err := s.DeleteBatch(ctx, "b2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetBatch(ctx, "b2"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	batches, err := s.ListBatches(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, b := range batches {
		if b.ID == "b2" {
			t.Fatalf("deleted batch still listed")
		}
	}
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
}

func TestCreateAssignsIDsAndDefaults(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateTransfer(ctx, domain.TransferRequest{ProductID: "p9", RequestedQty: 4})
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}
	if created.ID == "" || created.Status != domain.TransferPending || created.RequestedAt.IsZero() {
		t.Fatalf("defaults not applied: %+v", created)
	}

	if _, err := s.CreateTransfer(ctx, domain.TransferRequest{ProductID: "p9", RequestedQty: 0}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuditLogsNewestFirstWithLimit(t *testing.T) {
	s := New()
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := s.CreateAuditLog(ctx, domain.AuditLog{
			ID:        string(rune('a' + i)),
			Action:    domain.ActionSale,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("create audit log: %v", err)
		}
	}

	logs, err := s.ListAuditLogs(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(logs))
	}
	if logs[0].ID != "e" || logs[1].ID != "d" {
		t.Fatalf("expected newest first (e, d), got (%s, %s)", logs[0].ID, logs[1].ID)
	}
}
