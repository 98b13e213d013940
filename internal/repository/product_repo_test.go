package repository_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/testutil"
)

func seedProducts(t *testing.T, repo repository.ProductRepository, products ...model.Product) []model.Product {
	t.Helper()
	for i := range products {
		require.NoError(t, repo.Create(context.Background(), &products[i]))
	}
	return products
}

func TestProductRepo_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProductRepo(testutil.NewDB(t))

	p := &model.Product{Name: "Widget", Price: decimal.RequireFromString("10.00"), Stock: 5}
	require.NoError(t, repo.Create(ctx, p))
	assert.Equal(t, uint(1), p.ID)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, 5, got.Stock)
	assert.True(t, decimal.RequireFromString("10").Equal(got.Price))

	_, err = repo.FindByID(ctx, 99)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepo_AdjustStock(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProductRepo(testutil.NewDB(t))
	p := seedProducts(t, repo, model.Product{Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})[0]

	ok, err := repo.AdjustStock(ctx, p.ID, -3, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.AdjustStock(ctx, p.ID, -3, "alice")
	require.NoError(t, err)
	assert.False(t, ok, "guard must reject a change below zero")

	ok, err = repo.AdjustStock(ctx, p.ID, 4, "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Stock)
	assert.Equal(t, "bob", got.UpdatedBy)

	ok, err = repo.AdjustStock(ctx, 404, 1, "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductRepo_List(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProductRepo(testutil.NewDB(t))
	seedProducts(t, repo,
		model.Product{Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5},
		model.Product{Name: "Gadget", Price: decimal.NewFromInt(25), Stock: 40},
		model.Product{Name: "Mini widget", Price: decimal.NewFromInt(3), Stock: 0},
	)

	names := func(ps []model.Product) []string {
		out := make([]string, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}
	ten := 10

	tests := []struct {
		name   string
		filter repository.ProductFilter
		want   []string
	}{
		{"insertion order", repository.ProductFilter{}, []string{"Widget", "Gadget", "Mini widget"}},
		{"name is case insensitive", repository.ProductFilter{NameContains: "WIDGET"}, []string{"Widget", "Mini widget"}},
		{"low stock", repository.ProductFilter{LowStockBelow: &ten}, []string{"Widget", "Mini widget"}},
		{"combined", repository.ProductFilter{NameContains: "mini", LowStockBelow: &ten}, []string{"Mini widget"}},
		{"sort by price desc", repository.ProductFilter{Sort: "-price"}, []string{"Gadget", "Widget", "Mini widget"}},
		{"sort by name", repository.ProductFilter{Sort: "name"}, []string{"Gadget", "Mini widget", "Widget"}},
		{"no match", repository.ProductFilter{NameContains: "sprocket"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestProductRepo_ListNameIsLiteral(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProductRepo(testutil.NewDB(t))
	seedProducts(t, repo,
		model.Product{Name: "Cable 50% off", Price: decimal.NewFromInt(1)},
		model.Product{Name: "Cable 500m", Price: decimal.NewFromInt(1)},
		model.Product{Name: "bolt_m8", Price: decimal.NewFromInt(1)},
		model.Product{Name: "boltam8", Price: decimal.NewFromInt(1)},
		model.Product{Name: "Yes! brand", Price: decimal.NewFromInt(1)},
	)

	tests := []struct {
		query string
		want  []string
	}{
		{"50%", []string{"Cable 50% off"}},
		{"t_m", []string{"bolt_m8"}},
		{"s!", []string{"Yes! brand"}},
		{"%", []string{"Cable 50% off"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := repo.List(ctx, repository.ProductFilter{NameContains: tt.query})
			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, p := range got {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestProductOrder(t *testing.T) {
	order, ok := repository.ProductOrder("")
	assert.True(t, ok)
	assert.Equal(t, "id ASC", order)

	order, ok = repository.ProductOrder("-stock")
	assert.True(t, ok)
	assert.Equal(t, "stock DESC, id ASC", order)

	_, ok = repository.ProductOrder("price; DROP TABLE products")
	assert.False(t, ok)
}

func TestProductRepo_WithTxRollback(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewProductRepo(db)
	p := seedProducts(t, repo, model.Product{Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})[0]

	err := db.Transaction(func(tx *gorm.DB) error {
		txRepo := repo.WithTx(tx)
		locked, err := txRepo.FindByIDForUpdate(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, locked.Stock)

		ok, err := txRepo.AdjustStock(ctx, p.ID, -5, "alice")
		require.NoError(t, err)
		require.True(t, ok)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
}

func TestProductRepo_StockCheckConstraint(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewProductRepo(db)
	p := seedProducts(t, repo, model.Product{Name: "Widget", Price: decimal.NewFromInt(10), Stock: 1})[0]

	err := db.Model(&model.Product{}).Where("id = ?", p.ID).Update("stock", -1).Error
	assert.Error(t, err)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)
}
