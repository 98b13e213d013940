package model

// Privilege is a permission granted through a role.
type Privilege struct {
	Code string `json:"code"` // e.g., "product:create"
	Name string `json:"name"` // e.g., "Create Product"
}

const (
	PrivUserView   = "user:view"
	PrivUserCreate = "user:create"

	PrivProductView   = "product:view"
	PrivProductCreate = "product:create"
	PrivProductUpdate = "product:update"
	PrivProductDelete = "product:delete"

	PrivTransactionView     = "transaction:view"
	PrivTransactionSale     = "transaction:sale"
	PrivTransactionPurchase = "transaction:purchase"
)

// DefaultPrivileges lists every privilege known to the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	// Product management
	{Code: PrivProductView, Name: "View Product"},
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivProductDelete, Name: "Delete Product"},
	// Ledger
	{Code: PrivTransactionView, Name: "View Transaction"},
	{Code: PrivTransactionSale, Name: "Record Sale"},
	{Code: PrivTransactionPurchase, Name: "Record Purchase"},
}
