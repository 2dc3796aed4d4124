package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"depotrack/backend/internal/domain"
	"depotrack/backend/internal/store"
)

func TestBatchQuantityGuardAgainstNegative(t *testing.T) {
	databaseURL := os.Getenv("DEPOTRACK_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set DEPOTRACK_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	productID := fmt.Sprintf("p-batch-it-%d", stamp)
	batchID := fmt.Sprintf("b-batch-it-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM batches WHERE id = $1`, batchID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	})

	if _, err := s.CreateProduct(ctx, domain.Product{
		ID:                productID,
		SKU:               fmt.Sprintf("SKU-IT-%d", stamp),
		Name:              "Integration Test Beans",
		Category:          "beverage",
		CostPriceCents:    40000,
		SellingPriceCents: 60000,
		Status:            domain.ProductActive,
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	if _, err := s.CreateBatch(ctx, domain.Batch{
		ID:           batchID,
		ProductID:    productID,
		BatchNo:      "IT-001",
		ReceivedDate: time.Now().UTC(),
		Quantity:     10,
		Location:     domain.LocationStore,
		CostPerUnit:  40000,
	}); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	updated, err := s.AddBatchQuantity(ctx, batchID, -4)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if updated.Quantity != 6 {
		t.Fatalf("expected 6 after decrement, got %d", updated.Quantity)
	}

	if _, err := s.AddBatchQuantity(ctx, batchID, -7); !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	current, err := s.GetBatch(ctx, batchID)
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if current.Quantity != 6 {
		t.Fatalf("rejected decrement must not change quantity, got %d", current.Quantity)
	}

	if _, err := s.AddBatchQuantity(ctx, "b-missing-"+fmt.Sprint(stamp), -1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing batch, got %v", err)
	}
}

func TestBatchListingPreservesInsertionOrder(t *testing.T) {
	databaseURL := os.Getenv("DEPOTRACK_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set DEPOTRACK_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	productID := fmt.Sprintf("p-order-it-%d", stamp)
	batchIDs := []string{
		fmt.Sprintf("b-order-it-%d-1", stamp),
		fmt.Sprintf("b-order-it-%d-2", stamp),
		fmt.Sprintf("b-order-it-%d-3", stamp),
	}

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM batches WHERE product_id = $1`, productID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	})

	if _, err := s.CreateProduct(ctx, domain.Product{
		ID:                productID,
		SKU:               fmt.Sprintf("SKU-ORDER-IT-%d", stamp),
		Name:              "Integration Order Check",
		Category:          "pantry",
		CostPriceCents:    1000,
		SellingPriceCents: 2000,
		Status:            domain.ProductActive,
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	for i, id := range batchIDs {
		if _, err := s.CreateBatch(ctx, domain.Batch{
			ID:           id,
			ProductID:    productID,
			BatchNo:      fmt.Sprintf("ORD-%d", i+1),
			ReceivedDate: time.Now().UTC(),
			Quantity:     5,
			Location:     domain.LocationStore,
			CostPerUnit:  1000,
		}); err != nil {
			t.Fatalf("create batch %d: %v", i, err)
		}
	}

	batches, err := s.ListBatchesByProduct(ctx, productID, domain.LocationStore)
	if err != nil {
		t.Fatalf("list batches: %v", err)
	}
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	for i, id := range batchIDs {
		if batches[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, batches[i].ID)
		}
	}
}
