package service

import "depotrack/backend/internal/domain"

// Capability names one gated action surface. The HTTP layer consults the
// table once per request at dispatch; handlers do not repeat role checks.
type Capability string

const (
	CapCatalogRead     Capability = "catalog:read"
	CapCatalogWrite    Capability = "catalog:write"
	CapSupplierRead    Capability = "supplier:read"
	CapSupplierWrite   Capability = "supplier:write"
	CapStockRead       Capability = "stock:read"
	CapStockReceive    Capability = "stock:receive"
	CapBatchEdit       Capability = "batch:edit"
	CapStockAdjust     Capability = "stock:adjust"
	CapSaleRecord      Capability = "sale:record"
	CapSaleRead        Capability = "sale:read"
	CapTransferRead    Capability = "transfer:read"
	CapTransferRequest Capability = "transfer:request"
	CapTransferResolve Capability = "transfer:resolve"
	CapUserManage      Capability = "user:manage"
	CapAuditRead       Capability = "audit:read"
	CapReportRead      Capability = "report:read"
)

var capabilities = map[Capability][]domain.Role{
	CapCatalogRead:     {domain.RoleOwner, domain.RoleStoreManager, domain.RoleDispatchManager},
	CapCatalogWrite:    {domain.RoleOwner},
	CapSupplierRead:    {domain.RoleOwner, domain.RoleStoreManager, domain.RoleDispatchManager},
	CapSupplierWrite:   {domain.RoleOwner},
	CapStockRead:       {domain.RoleOwner, domain.RoleStoreManager, domain.RoleDispatchManager},
	CapStockReceive:    {domain.RoleOwner, domain.RoleStoreManager},
	CapBatchEdit:       {domain.RoleOwner, domain.RoleStoreManager},
	CapStockAdjust:     {domain.RoleOwner, domain.RoleStoreManager},
	CapSaleRecord:      {domain.RoleOwner, domain.RoleStoreManager, domain.RoleDispatchManager},
	CapSaleRead:        {domain.RoleOwner, domain.RoleStoreManager, domain.RoleDispatchManager},
	CapTransferRead:    {domain.RoleOwner, domain.RoleStoreManager, domain.RoleDispatchManager},
	CapTransferRequest: {domain.RoleOwner, domain.RoleDispatchManager},
	CapTransferResolve: {domain.RoleOwner, domain.RoleStoreManager},
	CapUserManage:      {domain.RoleOwner},
	CapAuditRead:       {domain.RoleOwner},
	CapReportRead:      {domain.RoleOwner, domain.RoleStoreManager, domain.RoleDispatchManager},
}

// Allowed reports whether the given role may exercise the capability. The
// caller passes the session's ACTIVE role, so an owner previewing another
// role sees that role's surface.
func Allowed(role domain.Role, capability Capability) bool {
	for _, allowed := range capabilities[capability] {
		if allowed == role {
			return true
		}
	}
	return false
}
