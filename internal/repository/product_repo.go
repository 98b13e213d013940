package repository

import (
	"context"
	"strings"

	"go-inventory-ledger/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows and orders a catalog listing.
type ProductFilter struct {
	NameContains  string
	LowStockBelow *int
	Sort          string // id (default), name, price, stock; "-" prefix for descending
}

var productSortColumns = map[string]string{
	"id":    "id",
	"name":  "name",
	"price": "price",
	"stock": "stock",
}

// ProductOrder resolves a sort key to an ORDER BY clause.
func ProductOrder(sort string) (string, bool) {
	dir := "ASC"
	key := strings.TrimSpace(sort)
	if strings.HasPrefix(key, "-") {
		dir = "DESC"
		key = key[1:]
	}
	if key == "" {
		key = "id"
	}
	col, ok := productSortColumns[key]
	if !ok {
		return "", false
	}
	if col == "id" {
		return "id " + dir, true
	}
	return col + " " + dir + ", id ASC", true
}

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	Save(ctx context.Context, product *model.Product) error
	AdjustStock(ctx context.Context, id uint, delta int, updatedBy string) (bool, error)
	Delete(ctx context.Context, id uint) (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// WithTx binds the repository to a running transaction.
func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{tx}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate loads the row under SELECT ... FOR UPDATE. Only meaningful inside a transaction.
func (r *productRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	order, ok := ProductOrder(filter.Sort)
	if !ok {
		order = "id ASC"
	}

	q := r.db.WithContext(ctx).Model(&model.Product{})
	if name := strings.TrimSpace(filter.NameContains); name != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '!'", "%"+escapeLike(strings.ToLower(name))+"%")
	}
	if filter.LowStockBelow != nil {
		q = q.Where("stock < ?", *filter.LowStockBelow)
	}

	products := []model.Product{}
	err := q.Order(order).Find(&products).Error
	return products, err
}

// likeEscaper quotes LIKE wildcards with '!' (a backslash is special in MySQL literals).
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *productRepo) Save(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// AdjustStock applies delta only if the result stays non-negative. It reports
// false when the guard rejected the change or the row does not exist.
func (r *productRepo) AdjustStock(ctx context.Context, id uint, delta int, updatedBy string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", delta),
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepo) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	return res.RowsAffected, res.Error
}
