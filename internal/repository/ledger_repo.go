package repository

import (
	"context"

	"go-inventory-ledger/internal/model"

	"gorm.io/gorm"
)

// LedgerFilter narrows a ledger listing. Zero values match everything.
type LedgerFilter struct {
	ProductID uint
	Type      model.TransactionType
}

type LedgerRepository interface {
	WithTx(tx *gorm.DB) LedgerRepository
	Append(ctx context.Context, entry *model.LedgerEntry) error
	FindByID(ctx context.Context, id uint) (*model.LedgerEntry, error)
	List(ctx context.Context, filter LedgerFilter) ([]model.LedgerEntry, error)
	CountByProduct(ctx context.Context, productID uint) (int64, error)
	DeleteByProduct(ctx context.Context, productID uint) (int64, error)
}

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db}
}

func (r *ledgerRepo) WithTx(tx *gorm.DB) LedgerRepository {
	return &ledgerRepo{tx}
}

// Append inserts a new entry. Entries are immutable once written.
func (r *ledgerRepo) Append(ctx context.Context, entry *model.LedgerEntry) error {
	return r.db.WithContext(ctx).Omit("Product").Create(entry).Error
}

func (r *ledgerRepo) FindByID(ctx context.Context, id uint) (*model.LedgerEntry, error) {
	var entry model.LedgerEntry
	err := r.db.WithContext(ctx).Preload("Product").First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *ledgerRepo) List(ctx context.Context, filter LedgerFilter) ([]model.LedgerEntry, error) {
	q := r.db.WithContext(ctx).Preload("Product")
	if filter.ProductID != 0 {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	entries := []model.LedgerEntry{}
	err := q.Order("id ASC").Find(&entries).Error
	return entries, err
}

func (r *ledgerRepo) CountByProduct(ctx context.Context, productID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).Where("product_id = ?", productID).Count(&n).Error
	return n, err
}

func (r *ledgerRepo) DeleteByProduct(ctx context.Context, productID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&model.LedgerEntry{})
	return res.RowsAffected, res.Error
}
