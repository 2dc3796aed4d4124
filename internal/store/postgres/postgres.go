package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"depotrack/backend/internal/domain"
	"depotrack/backend/internal/store"
	"depotrack/backend/internal/xid"
)

// Store is the PostgreSQL repository. Tables are expected to exist; batches
// carry a created_at column so that listing order matches insertion order,
// which transfer fulfillment's first-fit selection depends on.
type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, role, name, email, password_hash, last_login
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0, 16)
	for rows.Next() {
		var u domain.User
		var lastLogin sql.NullTime
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.Name, &u.Email, &u.PasswordHash, &lastLogin); err != nil {
			return nil, err
		}
		if lastLogin.Valid {
			at := lastLogin.Time.UTC()
			u.LastLogin = &at
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.getUser(ctx, `WHERE id = $1`, id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUser(ctx, `WHERE username = $1`, username)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*domain.User, error) {
	var u domain.User
	var lastLogin sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, role, name, email, password_hash, last_login
		FROM users `+where,
		arg,
	).Scan(&u.ID, &u.Username, &u.Role, &u.Name, &u.Email, &u.PasswordHash, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if lastLogin.Valid {
		at := lastLogin.Time.UTC()
		u.LastLogin = &at
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	if user.Username == "" || !user.Role.Valid() {
		return nil, store.ErrInvalidInput
	}
	if user.ID == "" {
		user.ID = xid.New("u")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, role, name, email, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, user.ID, user.Username, user.Role, user.Name, user.Email, user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	created := user
	return &created, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.deleteByID(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (s *Store) TouchUserLogin(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at.UTC())
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sku, barcode, name, description, category, sub_category, unit,
		       cost_price_cents, selling_price_cents, min_stock_store, min_stock_dispatch,
		       is_perishable, default_expiry_days, supplier_id, status
		FROM products
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sku, barcode, name, description, category, sub_category, unit,
		       cost_price_cents, selling_price_cents, min_stock_store, min_stock_dispatch,
		       is_perishable, default_expiry_days, supplier_id, status
		FROM products
		WHERE id = $1
	`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.SKU == "" || product.CostPriceCents < 0 || product.SellingPriceCents < 0 {
		return nil, store.ErrInvalidInput
	}
	if product.ID == "" {
		product.ID = xid.New("p")
	}
	if product.Status == "" {
		product.Status = domain.ProductActive
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, sku, barcode, name, description, category, sub_category, unit,
		                      cost_price_cents, selling_price_cents, min_stock_store, min_stock_dispatch,
		                      is_perishable, default_expiry_days, supplier_id, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,NULLIF($15,''),$16)
	`, product.ID, product.SKU, product.Barcode, product.Name, product.Description,
		product.Category, product.SubCategory, product.Unit,
		product.CostPriceCents, product.SellingPriceCents, product.MinStockStore, product.MinStockDispatch,
		product.IsPerishable, product.DefaultExpiryDays, product.SupplierID, product.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.SKU == "" || product.CostPriceCents < 0 || product.SellingPriceCents < 0 {
		return nil, store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET sku = $2, barcode = $3, name = $4, description = $5, category = $6, sub_category = $7,
		    unit = $8, cost_price_cents = $9, selling_price_cents = $10, min_stock_store = $11,
		    min_stock_dispatch = $12, is_perishable = $13, default_expiry_days = $14,
		    supplier_id = NULLIF($15,''), status = $16
		WHERE id = $1
	`, product.ID, product.SKU, product.Barcode, product.Name, product.Description,
		product.Category, product.SubCategory, product.Unit,
		product.CostPriceCents, product.SellingPriceCents, product.MinStockStore, product.MinStockDispatch,
		product.IsPerishable, product.DefaultExpiryDays, product.SupplierID, product.Status)
	if err != nil {
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}

	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	return s.deleteByID(ctx, `DELETE FROM products WHERE id = $1`, id)
}

const batchColumns = `id, product_id, batch_no, received_date, expiry_date, quantity, location, cost_per_unit_cents`

func (s *Store) ListBatches(ctx context.Context) ([]domain.Batch, error) {
	return s.queryBatches(ctx, `
		SELECT `+batchColumns+` FROM batches ORDER BY created_at, id
	`)
}

func (s *Store) ListBatchesByProduct(ctx context.Context, productID string, location domain.Location) ([]domain.Batch, error) {
	if location == "" {
		return s.queryBatches(ctx, `
			SELECT `+batchColumns+` FROM batches WHERE product_id = $1 ORDER BY created_at, id
		`, productID)
	}
	return s.queryBatches(ctx, `
		SELECT `+batchColumns+` FROM batches WHERE product_id = $1 AND location = $2 ORDER BY created_at, id
	`, productID, location)
}

func (s *Store) queryBatches(ctx context.Context, query string, args ...any) ([]domain.Batch, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batches := make([]domain.Batch, 0, 32)
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func (s *Store) GetBatch(ctx context.Context, id string) (*domain.Batch, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+batchColumns+` FROM batches WHERE id = $1
	`, id)
	b, err := scanBatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *Store) CreateBatch(ctx context.Context, batch domain.Batch) (*domain.Batch, error) {
	if batch.ProductID == "" || !batch.Location.Valid() || batch.Quantity < 0 {
		return nil, store.ErrInvalidInput
	}
	if batch.ID == "" {
		batch.ID = xid.New("b")
	}
	if batch.ReceivedDate.IsZero() {
		batch.ReceivedDate = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO batches (id, product_id, batch_no, received_date, expiry_date, quantity, location, cost_per_unit_cents, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
	`, batch.ID, batch.ProductID, batch.BatchNo, batch.ReceivedDate.UTC(), nullableTime(batch.ExpiryDate),
		batch.Quantity, batch.Location, batch.CostPerUnit)
	if err != nil {
		return nil, err
	}

	created := batch
	return &created, nil
}

func (s *Store) UpdateBatch(ctx context.Context, batch domain.Batch) (*domain.Batch, error) {
	if !batch.Location.Valid() || batch.Quantity < 0 {
		return nil, store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE batches
		SET batch_no = $2, received_date = $3, expiry_date = $4, quantity = $5, location = $6, cost_per_unit_cents = $7
		WHERE id = $1
	`, batch.ID, batch.BatchNo, batch.ReceivedDate.UTC(), nullableTime(batch.ExpiryDate),
		batch.Quantity, batch.Location, batch.CostPerUnit)
	if err != nil {
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}

	updated := batch
	return &updated, nil
}

func (s *Store) DeleteBatch(ctx context.Context, id string) error {
	return s.deleteByID(ctx, `DELETE FROM batches WHERE id = $1`, id)
}

// AddBatchQuantity applies the delta in one guarded statement so concurrent
// writers cannot drive a batch negative.
func (s *Store) AddBatchQuantity(ctx context.Context, id string, delta int) (*domain.Batch, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE batches
		SET quantity = quantity + $2
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING `+batchColumns+`
	`, id, delta)
	b, err := scanBatch(row)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Guarded update matched nothing: either the batch is missing or the
	// delta would go negative.
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM batches WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, store.ErrNotFound
	}
	return nil, store.ErrInsufficientStock
}

func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, contact_person, email, phone, address
		FROM suppliers
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suppliers := make([]domain.Supplier, 0, 16)
	for rows.Next() {
		var sup domain.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.ContactPerson, &sup.Email, &sup.Phone, &sup.Address); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers, rows.Err()
}

func (s *Store) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	var sup domain.Supplier
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, contact_person, email, phone, address
		FROM suppliers
		WHERE id = $1
	`, id).Scan(&sup.ID, &sup.Name, &sup.ContactPerson, &sup.Email, &sup.Phone, &sup.Address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &sup, nil
}

func (s *Store) CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	if supplier.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if supplier.ID == "" {
		supplier.ID = xid.New("s")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliers (id, name, contact_person, email, phone, address)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, supplier.ID, supplier.Name, supplier.ContactPerson, supplier.Email, supplier.Phone, supplier.Address)
	if err != nil {
		return nil, err
	}

	created := supplier
	return &created, nil
}

func (s *Store) DeleteSupplier(ctx context.Context, id string) error {
	return s.deleteByID(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
}

func (s *Store) ListTransfers(ctx context.Context) ([]domain.TransferRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, requested_qty, status, requested_by, requested_at, fulfilled_at
		FROM transfers
		ORDER BY requested_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transfers := make([]domain.TransferRequest, 0, 32)
	for rows.Next() {
		tr, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, tr)
	}
	return transfers, rows.Err()
}

func (s *Store) GetTransfer(ctx context.Context, id string) (*domain.TransferRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, product_id, requested_qty, status, requested_by, requested_at, fulfilled_at
		FROM transfers
		WHERE id = $1
	`, id)
	tr, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &tr, nil
}

func (s *Store) CreateTransfer(ctx context.Context, transfer domain.TransferRequest) (*domain.TransferRequest, error) {
	if transfer.ProductID == "" || transfer.RequestedQty < 1 {
		return nil, store.ErrInvalidInput
	}
	if transfer.ID == "" {
		transfer.ID = xid.New("tr")
	}
	if transfer.RequestedAt.IsZero() {
		transfer.RequestedAt = time.Now().UTC()
	}
	if transfer.Status == "" {
		transfer.Status = domain.TransferPending
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transfers (id, product_id, requested_qty, status, requested_by, requested_at, fulfilled_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, transfer.ID, transfer.ProductID, transfer.RequestedQty, transfer.Status,
		transfer.RequestedBy, transfer.RequestedAt.UTC(), nullableTime(transfer.FulfilledAt))
	if err != nil {
		return nil, err
	}

	created := transfer
	return &created, nil
}

func (s *Store) UpdateTransfer(ctx context.Context, transfer domain.TransferRequest) (*domain.TransferRequest, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE transfers
		SET status = $2, fulfilled_at = $3
		WHERE id = $1
	`, transfer.ID, transfer.Status, nullableTime(transfer.FulfilledAt))
	if err != nil {
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}

	updated := transfer
	return &updated, nil
}

func (s *Store) ListSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, batch_id, quantity, revenue_cents, profit_cents, location, sold_by, sold_at
		FROM sales
		ORDER BY sold_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, limit)
	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(&sale.ID, &sale.ProductID, &sale.BatchID, &sale.Quantity,
			&sale.Revenue, &sale.Profit, &sale.Location, &sale.SoldBy, &sale.SoldAt); err != nil {
			return nil, err
		}
		sale.SoldAt = sale.SoldAt.UTC()
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.ProductID == "" || sale.BatchID == "" || sale.Quantity < 1 {
		return nil, store.ErrInvalidInput
	}
	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.SoldAt.IsZero() {
		sale.SoldAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sales (id, product_id, batch_id, quantity, revenue_cents, profit_cents, location, sold_by, sold_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, sale.ID, sale.ProductID, sale.BatchID, sale.Quantity, sale.Revenue, sale.Profit,
		sale.Location, sale.SoldBy, sale.SoldAt.UTC())
	if err != nil {
		return nil, err
	}

	created := sale
	return &created, nil
}

func (s *Store) ListAdjustments(ctx context.Context, limit int) ([]domain.StockAdjustment, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, batch_id, qty_change, reason, location, adjusted_by, created_at
		FROM stock_adjustments
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	adjustments := make([]domain.StockAdjustment, 0, limit)
	for rows.Next() {
		var adj domain.StockAdjustment
		if err := rows.Scan(&adj.ID, &adj.ProductID, &adj.BatchID, &adj.QtyChange,
			&adj.Reason, &adj.Location, &adj.AdjustedBy, &adj.Timestamp); err != nil {
			return nil, err
		}
		adj.Timestamp = adj.Timestamp.UTC()
		adjustments = append(adjustments, adj)
	}
	return adjustments, rows.Err()
}

func (s *Store) CreateAdjustment(ctx context.Context, adjustment domain.StockAdjustment) (*domain.StockAdjustment, error) {
	if adjustment.BatchID == "" || adjustment.QtyChange == 0 || !adjustment.Reason.Valid() {
		return nil, store.ErrInvalidInput
	}
	if adjustment.ID == "" {
		adjustment.ID = xid.New("adj")
	}
	if adjustment.Timestamp.IsZero() {
		adjustment.Timestamp = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stock_adjustments (id, product_id, batch_id, qty_change, reason, location, adjusted_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, adjustment.ID, adjustment.ProductID, adjustment.BatchID, adjustment.QtyChange,
		adjustment.Reason, adjustment.Location, adjustment.AdjustedBy, adjustment.Timestamp.UTC())
	if err != nil {
		return nil, err
	}

	created := adjustment
	return &created, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("log")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, user_id, action, details, created_at, old_value, new_value)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, entry.ID, entry.UserID, entry.Action, entry.Details, entry.Timestamp.UTC(), entry.OldValue, entry.NewValue)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, action, details, created_at, old_value, new_value
		FROM audit_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Action, &entry.Details,
			&entry.Timestamp, &entry.OldValue, &entry.NewValue); err != nil {
			return nil, err
		}
		entry.Timestamp = entry.Timestamp.UTC()
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (s *Store) deleteByID(ctx context.Context, query string, id string) error {
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	var supplierID sql.NullString
	err := row.Scan(&p.ID, &p.SKU, &p.Barcode, &p.Name, &p.Description, &p.Category, &p.SubCategory,
		&p.Unit, &p.CostPriceCents, &p.SellingPriceCents, &p.MinStockStore, &p.MinStockDispatch,
		&p.IsPerishable, &p.DefaultExpiryDays, &supplierID, &p.Status)
	if err != nil {
		return domain.Product{}, err
	}
	if supplierID.Valid {
		p.SupplierID = supplierID.String
	}
	return p, nil
}

func scanBatch(row rowScanner) (domain.Batch, error) {
	var b domain.Batch
	var expiry sql.NullTime
	err := row.Scan(&b.ID, &b.ProductID, &b.BatchNo, &b.ReceivedDate, &expiry, &b.Quantity, &b.Location, &b.CostPerUnit)
	if err != nil {
		return domain.Batch{}, err
	}
	b.ReceivedDate = b.ReceivedDate.UTC()
	if expiry.Valid {
		at := expiry.Time.UTC()
		b.ExpiryDate = &at
	}
	return b, nil
}

func scanTransfer(row rowScanner) (domain.TransferRequest, error) {
	var tr domain.TransferRequest
	var fulfilledAt sql.NullTime
	err := row.Scan(&tr.ID, &tr.ProductID, &tr.RequestedQty, &tr.Status, &tr.RequestedBy, &tr.RequestedAt, &fulfilledAt)
	if err != nil {
		return domain.TransferRequest{}, err
	}
	tr.RequestedAt = tr.RequestedAt.UTC()
	if fulfilledAt.Valid {
		at := fulfilledAt.Time.UTC()
		tr.FulfilledAt = &at
	}
	return tr, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
