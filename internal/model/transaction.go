package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxSale     TransactionType = "sale"
	TxPurchase TransactionType = "purchase"
)

func (t TransactionType) Validate() error {
	switch t {
	case TxSale, TxPurchase:
		return nil
	default:
		return fmt.Errorf("unknown transaction type %q", string(t))
	}
}

// Delta is the signed stock change for qty units of this type.
func (t TransactionType) Delta(qty int) int {
	if t == TxSale {
		return -qty
	}
	return qty
}

// LedgerEntry is one append-only stock movement. Entries are never updated and
// disappear only together with their product.
type LedgerEntry struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	ProductID  uint            `gorm:"not null;index" json:"product_id"`
	Product    *Product        `gorm:"constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Type       TransactionType `gorm:"type:varchar(10);not null;index;check:chk_transactions_type,type IN ('sale','purchase')" json:"type"`
	Quantity   int             `gorm:"not null;check:chk_transactions_quantity,quantity > 0" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_price"`
	UserID     *uint           `gorm:"index" json:"user_id,omitempty"`
	CreatedBy  string          `gorm:"type:varchar(50)" json:"created_by,omitempty"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "transactions"
}
