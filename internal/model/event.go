package model

// Stock event actions broadcast to websocket clients.
const (
	ActionProductCreated   = "product_created"
	ActionProductUpdated   = "product_updated"
	ActionProductDeleted   = "product_deleted"
	ActionSaleRecorded     = "sale_recorded"
	ActionPurchaseRecorded = "purchase_recorded"
)

// StockEvent is published after a catalog or ledger change commits.
type StockEvent struct {
	Type        string       `json:"type"`
	Action      string       `json:"action"`
	ProductID   uint         `json:"product_id"`
	ProductName string       `json:"product_name"`
	Stock       int          `json:"stock"`
	Entry       *LedgerEntry `json:"entry,omitempty"`
	User        string       `json:"user,omitempty"`
	Message     string       `json:"message"`
}

func NewStockEvent(action string, p *Product, user, message string) StockEvent {
	return StockEvent{
		Type:        "stock_update",
		Action:      action,
		ProductID:   p.ID,
		ProductName: p.Name,
		Stock:       p.Stock,
		User:        user,
		Message:     message,
	}
}
