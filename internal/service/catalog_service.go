package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

// UpdateProductRequest carries a partial update; nil fields are left untouched.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitnil,min=1,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"omitnil,gte=0"`
	Stock       *int             `json:"stock" validate:"omitnil,gte=0"`
}

type CatalogService interface {
	AddProduct(ctx context.Context, sess Session, req CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, sess Session, id uint, req UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, sess Session, id uint) (int64, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
}

type catalogService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	ledgerRepo  repository.LedgerRepository
	notifier    Notifier
	log         *slog.Logger
}

func NewCatalogService(db *gorm.DB, pRepo repository.ProductRepository, lRepo repository.LedgerRepository, notifier Notifier, log *slog.Logger) CatalogService {
	return &catalogService{
		db:          db,
		productRepo: pRepo,
		ledgerRepo:  lRepo,
		notifier:    notifierOrNop(notifier),
		log:         log,
	}
}

func (s *catalogService) AddProduct(ctx context.Context, sess Session, req CreateProductRequest) (*model.Product, error) {
	if err := sess.Require(model.PrivProductCreate); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := validate(&req); err != nil {
		return nil, err
	}
	if err := checkMoney("price", req.Price); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	product.CreatedBy = sess.Username
	product.UpdatedBy = sess.Username

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.log.InfoContext(ctx, "product created",
		slog.Uint64("product_id", uint64(product.ID)),
		slog.String("user", sess.Username))
	s.notifier.Notify(model.NewStockEvent(model.ActionProductCreated, product, sess.Username,
		fmt.Sprintf("%s created product '%s'", sess.Username, product.Name)))

	return product, nil
}

// UpdateProduct edits catalog fields under the product's row lock. A stock
// edit here is a correction and does not produce a ledger entry.
func (s *catalogService) UpdateProduct(ctx context.Context, sess Session, id uint, req UpdateProductRequest) (*model.Product, error) {
	if err := sess.Require(model.PrivProductUpdate); err != nil {
		return nil, err
	}

	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := validate(&req); err != nil {
		return nil, err
	}
	if req.Price != nil {
		if err := checkMoney("price", *req.Price); err != nil {
			return nil, err
		}
	}

	var updated *model.Product
	var oldStock int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		existing, err := products.FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, "product", id)
		}
		oldStock = existing.Stock

		if req.Name != nil {
			existing.Name = *req.Name
		}
		if req.Description != nil {
			existing.Description = *req.Description
		}
		if req.Price != nil {
			existing.Price = *req.Price
		}
		if req.Stock != nil {
			existing.Stock = *req.Stock
		}
		existing.UpdatedBy = sess.Username

		if err := products.Save(ctx, existing); err != nil {
			return fmt.Errorf("save product %d: %w", id, err)
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "product updated",
		slog.Uint64("product_id", uint64(id)),
		slog.Int("old_stock", oldStock),
		slog.Int("new_stock", updated.Stock),
		slog.String("user", sess.Username))
	s.notifier.Notify(model.NewStockEvent(model.ActionProductUpdated, updated, sess.Username,
		fmt.Sprintf("%s updated product '%s'", sess.Username, updated.Name)))

	return updated, nil
}

// DeleteProduct removes the product and every ledger entry referencing it in
// one transaction. It returns how many ledger entries went with it.
func (s *catalogService) DeleteProduct(ctx context.Context, sess Session, id uint) (int64, error) {
	if err := sess.Require(model.PrivProductDelete); err != nil {
		return 0, err
	}

	var deleted *model.Product
	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		existing, err := products.FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, "product", id)
		}

		removed, err = s.ledgerRepo.WithTx(tx).DeleteByProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("delete ledger entries of product %d: %w", id, err)
		}
		if _, err := products.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete product %d: %w", id, err)
		}
		deleted = existing
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.InfoContext(ctx, "product deleted",
		slog.Uint64("product_id", uint64(id)),
		slog.Int64("ledger_entries_removed", removed),
		slog.String("user", sess.Username))
	deleted.Stock = 0
	s.notifier.Notify(model.NewStockEvent(model.ActionProductDeleted, deleted, sess.Username,
		fmt.Sprintf("%s deleted product '%s'", sess.Username, deleted.Name)))

	return removed, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "product", id)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	if _, ok := repository.ProductOrder(filter.Sort); !ok {
		return nil, newValidationError("sort", fmt.Sprintf("sort must be one of id, name, price, stock (got %q)", filter.Sort))
	}
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// lookupError turns a missing row into a NotFoundError and wraps anything else.
func lookupError(err error, entity string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return fmt.Errorf("find %s %v: %w", entity, id, err)
}
