package domain

import "time"

type Role string

const (
	RoleOwner           Role = "OWNER"
	RoleStoreManager    Role = "STORE_MANAGER"
	RoleDispatchManager Role = "DISPATCH_MANAGER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleStoreManager, RoleDispatchManager:
		return true
	}
	return false
}

type Location string

const (
	LocationStore    Location = "STORE"
	LocationDispatch Location = "DISPATCH"
)

func (l Location) Valid() bool {
	return l == LocationStore || l == LocationDispatch
}

type TransferStatus string

const (
	TransferPending   TransferStatus = "PENDING"
	TransferFulfilled TransferStatus = "FULFILLED"
	TransferRejected  TransferStatus = "REJECTED"
)

type AdjustmentReason string

const (
	ReasonDamage     AdjustmentReason = "DAMAGE"
	ReasonTheft      AdjustmentReason = "THEFT"
	ReasonExpiry     AdjustmentReason = "EXPIRY"
	ReasonCountError AdjustmentReason = "COUNT_ERROR"
)

func (r AdjustmentReason) Valid() bool {
	switch r {
	case ReasonDamage, ReasonTheft, ReasonExpiry, ReasonCountError:
		return true
	}
	return false
}

// Audit action tags. One entry is recorded per mutating operation.
const (
	ActionSystemStart     = "SYSTEM_START"
	ActionLogin           = "LOGIN"
	ActionLogout          = "LOGOUT"
	ActionSale            = "SALE"
	ActionTransferRequest = "TRANSFER_REQUEST"
	ActionTransferFulfill = "TRANSFER_FULFILL"
	ActionTransferReject  = "TRANSFER_REJECT"
	ActionAdjustment      = "ADJUSTMENT"
	ActionBatchAdd        = "BATCH_ADD"
	ActionBatchUpdate     = "BATCH_UPDATE"
	ActionBatchDelete     = "BATCH_DELETE"
	ActionProductAdd      = "PRODUCT_ADD"
	ActionProductUpdate   = "PRODUCT_UPDATE"
	ActionProductDelete   = "PRODUCT_DELETE"
	ActionSupplierAdd     = "SUPPLIER_ADD"
	ActionSupplierDelete  = "SUPPLIER_DELETE"
	ActionUserAdd         = "USER_ADD"
	ActionUserDelete      = "USER_DELETE"
)

const (
	ProductActive   = "active"
	ProductInactive = "inactive"
)

type Product struct {
	ID                string `json:"id"`
	SKU               string `json:"sku"`
	Barcode           string `json:"barcode"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	Category          string `json:"category"`
	SubCategory       string `json:"sub_category"`
	Unit              string `json:"unit"`
	CostPriceCents    int64  `json:"cost_price_cents"`
	SellingPriceCents int64  `json:"selling_price_cents"`
	MinStockStore     int    `json:"min_stock_store"`
	MinStockDispatch  int    `json:"min_stock_dispatch"`
	IsPerishable      bool   `json:"is_perishable"`
	DefaultExpiryDays int    `json:"default_expiry_days"`
	SupplierID        string `json:"supplier_id,omitempty"`
	Status            string `json:"status"`
}

// Batch is the unit of stock-quantity truth: a dated quantity of one product
// at one location. A product's stock at a location is the sum of its batch
// quantities there.
type Batch struct {
	ID           string     `json:"id"`
	ProductID    string     `json:"product_id"`
	BatchNo      string     `json:"batch_no"`
	ReceivedDate time.Time  `json:"received_date"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	Quantity     int        `json:"quantity"`
	Location     Location   `json:"location"`
	CostPerUnit  int64      `json:"cost_per_unit_cents"`
}

type Supplier struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

type TransferRequest struct {
	ID           string         `json:"id"`
	ProductID    string         `json:"product_id"`
	RequestedQty int            `json:"requested_qty"`
	Status       TransferStatus `json:"status"`
	RequestedBy  string         `json:"requested_by"`
	RequestedAt  time.Time      `json:"requested_at"`
	FulfilledAt  *time.Time     `json:"fulfilled_at,omitempty"`
}

// Sale is immutable once created. Revenue and profit are computed from the
// product's prices at sale time, not recomputed on later price changes.
type Sale struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	BatchID   string    `json:"batch_id"`
	Quantity  int       `json:"quantity"`
	Revenue   int64     `json:"revenue_cents"`
	Profit    int64     `json:"profit_cents"`
	Location  Location  `json:"location"`
	SoldBy    string    `json:"sold_by"`
	SoldAt    time.Time `json:"sold_at"`
}

type StockAdjustment struct {
	ID         string           `json:"id"`
	ProductID  string           `json:"product_id"`
	BatchID    string           `json:"batch_id"`
	QtyChange  int              `json:"qty_change"`
	Reason     AdjustmentReason `json:"reason"`
	Location   Location         `json:"location"`
	AdjustedBy string           `json:"adjusted_by"`
	Timestamp  time.Time        `json:"timestamp"`
}

type AuditLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
	OldValue  string    `json:"old_value,omitempty"`
	NewValue  string    `json:"new_value,omitempty"`
}

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Role         Role       `json:"role"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// Actor identifies the authenticated user attributed to an operation. The
// active role may differ from the user's fixed role only for OWNER sessions
// previewing another role's view.
type Actor struct {
	UserID     string
	Username   string
	Role       Role
	ActiveRole Role
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
	ActiveRole  Role   `json:"active_role"`
	ExpiresAt   string `json:"expires_at"`
}

type SwitchViewRequest struct {
	Role Role `json:"role"`
}

type ProductCreateRequest struct {
	SKU               string `json:"sku"`
	Barcode           string `json:"barcode"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	Category          string `json:"category"`
	SubCategory       string `json:"sub_category"`
	Unit              string `json:"unit"`
	CostPriceCents    int64  `json:"cost_price_cents"`
	SellingPriceCents int64  `json:"selling_price_cents"`
	MinStockStore     int    `json:"min_stock_store"`
	MinStockDispatch  int    `json:"min_stock_dispatch"`
	IsPerishable      bool   `json:"is_perishable"`
	DefaultExpiryDays int    `json:"default_expiry_days"`
	SupplierID        string `json:"supplier_id"`
}

type ProductUpdateRequest struct {
	SKU               *string `json:"sku,omitempty"`
	Barcode           *string `json:"barcode,omitempty"`
	Name              *string `json:"name,omitempty"`
	Description       *string `json:"description,omitempty"`
	Category          *string `json:"category,omitempty"`
	SubCategory       *string `json:"sub_category,omitempty"`
	Unit              *string `json:"unit,omitempty"`
	CostPriceCents    *int64  `json:"cost_price_cents,omitempty"`
	SellingPriceCents *int64  `json:"selling_price_cents,omitempty"`
	MinStockStore     *int    `json:"min_stock_store,omitempty"`
	MinStockDispatch  *int    `json:"min_stock_dispatch,omitempty"`
	IsPerishable      *bool   `json:"is_perishable,omitempty"`
	DefaultExpiryDays *int    `json:"default_expiry_days,omitempty"`
	SupplierID        *string `json:"supplier_id,omitempty"`
	Status            *string `json:"status,omitempty"`
}

type BatchReceiveRequest struct {
	ProductID    string   `json:"product_id"`
	BatchNo      string   `json:"batch_no"`
	ReceivedDate string   `json:"received_date"`
	ExpiryDate   string   `json:"expiry_date,omitempty"`
	Quantity     int      `json:"quantity"`
	Location     Location `json:"location"`
	CostPerUnit  int64    `json:"cost_per_unit_cents"`
}

type BatchUpdateRequest struct {
	BatchNo     *string   `json:"batch_no,omitempty"`
	ExpiryDate  *string   `json:"expiry_date,omitempty"`
	Quantity    *int      `json:"quantity,omitempty"`
	Location    *Location `json:"location,omitempty"`
	CostPerUnit *int64    `json:"cost_per_unit_cents,omitempty"`
}

type SaleLineRequest struct {
	ProductID string   `json:"product_id"`
	BatchID   string   `json:"batch_id"`
	Quantity  int      `json:"quantity"`
	Location  Location `json:"location"`
}

// CheckoutRequest carries one point-of-sale checkout. Each line item becomes
// its own Sale record and its own audit entry.
type CheckoutRequest struct {
	Lines []SaleLineRequest `json:"lines"`
}

type CheckoutResponse struct {
	Sales             []Sale `json:"sales"`
	TotalRevenueCents int64  `json:"total_revenue_cents"`
	TotalProfitCents  int64  `json:"total_profit_cents"`
}

type TransferCreateRequest struct {
	ProductID    string `json:"product_id"`
	RequestedQty int    `json:"requested_qty"`
}

// TransferFulfillResponse reports whether stock actually moved. A transfer
// whose product has no qualifying STORE batch still reaches FULFILLED with
// StockMoved=false.
type TransferFulfillResponse struct {
	Transfer   TransferRequest `json:"transfer"`
	StockMoved bool            `json:"stock_moved"`
	FromBatch  string          `json:"from_batch_id,omitempty"`
	ToBatch    string          `json:"to_batch_id,omitempty"`
}

type AdjustmentCreateRequest struct {
	ProductID string           `json:"product_id"`
	BatchID   string           `json:"batch_id"`
	QtyChange int              `json:"qty_change"`
	Reason    AdjustmentReason `json:"reason"`
	Location  Location         `json:"location"`
}

type SupplierCreateRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

type UserCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// ProductStock summarises one product's on-hand quantity at each location
// together with its reorder thresholds.
type ProductStock struct {
	ProductID        string `json:"product_id"`
	SKU              string `json:"sku"`
	Name             string `json:"name"`
	StoreQty         int    `json:"store_qty"`
	DispatchQty      int    `json:"dispatch_qty"`
	MinStockStore    int    `json:"min_stock_store"`
	MinStockDispatch int    `json:"min_stock_dispatch"`
	LowAtStore       bool   `json:"low_at_store"`
	LowAtDispatch    bool   `json:"low_at_dispatch"`
}

type StockSummary struct {
	GeneratedAt string         `json:"generated_at"`
	Products    []ProductStock `json:"products"`
}
