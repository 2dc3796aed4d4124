package store

import (
	"context"
	"errors"
	"time"

	"depotrack/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidInput      = errors.New("invalid input")
)

// Repository is the authoritative entity store. All mutation goes through it;
// no caller writes collections directly. Implementations return copies so
// readers always observe a consistent snapshot.
type Repository interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	TouchUserLogin(ctx context.Context, id string, at time.Time) error

	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListBatches(ctx context.Context) ([]domain.Batch, error)
	ListBatchesByProduct(ctx context.Context, productID string, location domain.Location) ([]domain.Batch, error)
	GetBatch(ctx context.Context, id string) (*domain.Batch, error)
	CreateBatch(ctx context.Context, batch domain.Batch) (*domain.Batch, error)
	UpdateBatch(ctx context.Context, batch domain.Batch) (*domain.Batch, error)
	DeleteBatch(ctx context.Context, id string) error
	// AddBatchQuantity applies a signed delta to one batch's quantity. It is
	// the only quantity mutation path and fails with ErrInsufficientStock
	// rather than letting the quantity go negative.
	AddBatchQuantity(ctx context.Context, id string, delta int) (*domain.Batch, error)

	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*domain.Supplier, error)
	CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error

	ListTransfers(ctx context.Context) ([]domain.TransferRequest, error)
	GetTransfer(ctx context.Context, id string) (*domain.TransferRequest, error)
	CreateTransfer(ctx context.Context, transfer domain.TransferRequest) (*domain.TransferRequest, error)
	UpdateTransfer(ctx context.Context, transfer domain.TransferRequest) (*domain.TransferRequest, error)

	ListSales(ctx context.Context, limit int) ([]domain.Sale, error)
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)

	ListAdjustments(ctx context.Context, limit int) ([]domain.StockAdjustment, error)
	CreateAdjustment(ctx context.Context, adjustment domain.StockAdjustment) (*domain.StockAdjustment, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	// ListAuditLogs returns entries newest-first.
	ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error)
}
