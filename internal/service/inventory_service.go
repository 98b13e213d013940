package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecordStockRequest describes a sale or purchase of Quantity units.
type RecordStockRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
	// UnitCost overrides the catalog price for purchases.
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	IdempotencyKey string           `json:"-"`
}

type InventoryService interface {
	RecordSale(ctx context.Context, sess Session, req RecordStockRequest) (*model.LedgerEntry, error)
	RecordPurchase(ctx context.Context, sess Session, req RecordStockRequest) (*model.LedgerEntry, error)
	ListLedgerEntries(ctx context.Context, filter repository.LedgerFilter) ([]model.LedgerEntry, error)
	GetLedgerEntry(ctx context.Context, id uint) (*model.LedgerEntry, error)
}

type inventoryService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	ledgerRepo  repository.LedgerRepository
	idempotency IdempotencyStore
	notifier    Notifier
	log         *slog.Logger
}

// NewInventoryService wires the engine. idem may be nil, which disables
// idempotency keys.
func NewInventoryService(db *gorm.DB, pRepo repository.ProductRepository, lRepo repository.LedgerRepository, idem IdempotencyStore, notifier Notifier, log *slog.Logger) InventoryService {
	return &inventoryService{
		db:          db,
		productRepo: pRepo,
		ledgerRepo:  lRepo,
		idempotency: idem,
		notifier:    notifierOrNop(notifier),
		log:         log,
	}
}

func (s *inventoryService) RecordSale(ctx context.Context, sess Session, req RecordStockRequest) (*model.LedgerEntry, error) {
	if err := sess.Require(model.PrivTransactionSale); err != nil {
		return nil, err
	}
	if req.UnitCost != nil {
		return nil, newValidationError("unit_cost", "unit_cost is only accepted for purchases")
	}
	return s.record(ctx, sess, model.TxSale, req)
}

func (s *inventoryService) RecordPurchase(ctx context.Context, sess Session, req RecordStockRequest) (*model.LedgerEntry, error) {
	if err := sess.Require(model.PrivTransactionPurchase); err != nil {
		return nil, err
	}
	return s.record(ctx, sess, model.TxPurchase, req)
}

func (s *inventoryService) record(ctx context.Context, sess Session, typ model.TransactionType, req RecordStockRequest) (*model.LedgerEntry, error) {
	if req.IdempotencyKey == "" || s.idempotency == nil {
		return s.apply(ctx, sess, typ, req)
	}

	key := idempotencyKey(typ, sess, req.IdempotencyKey)
	entryID, reserved, err := s.idempotency.Reserve(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if !reserved {
		if entryID == 0 {
			return nil, ErrDuplicateRequest
		}
		s.log.InfoContext(ctx, "idempotent replay", slog.String("key", req.IdempotencyKey), slog.Uint64("entry_id", uint64(entryID)))
		return s.GetLedgerEntry(ctx, entryID)
	}

	entry, err := s.apply(ctx, sess, typ, req)
	if err != nil {
		if rerr := s.idempotency.Release(ctx, key); rerr != nil {
			s.log.WarnContext(ctx, "release idempotency key", slog.String("key", req.IdempotencyKey), slog.Any("error", rerr))
		}
		return nil, err
	}
	if cerr := s.idempotency.Complete(ctx, key, entry.ID); cerr != nil {
		s.log.WarnContext(ctx, "complete idempotency key", slog.String("key", req.IdempotencyKey), slog.Any("error", cerr))
	}
	return entry, nil
}

// apply performs the stock change and the ledger append as one transaction.
// The product row is locked first, and the stock update is additionally
// guarded so it can never take stock below zero.
func (s *inventoryService) apply(ctx context.Context, sess Session, typ model.TransactionType, req RecordStockRequest) (*model.LedgerEntry, error) {
	var (
		entry   *model.LedgerEntry
		product *model.Product
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		p, err := products.FindByIDForUpdate(ctx, req.ProductID)
		if err != nil {
			return lookupError(err, "product", req.ProductID)
		}

		if req.Quantity <= 0 {
			return newValidationError("quantity", "quantity must be greater than 0")
		}

		unitPrice, total := p.Price, p.LineTotal(req.Quantity)
		if req.UnitCost != nil {
			if err := checkMoney("unit_cost", *req.UnitCost); err != nil {
				return err
			}
			unitPrice = *req.UnitCost
			total = unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))
		}

		if typ == model.TxSale && p.Stock < req.Quantity {
			return &InsufficientStockError{ProductID: p.ID, Available: p.Stock, Requested: req.Quantity}
		}

		delta := typ.Delta(req.Quantity)
		if delta > 0 && p.Stock > math.MaxInt-delta {
			return newValidationError("quantity", fmt.Sprintf("quantity would overflow stock (current %d)", p.Stock))
		}

		ok, err := products.AdjustStock(ctx, p.ID, delta, sess.Username)
		if err != nil {
			return fmt.Errorf("adjust stock of product %d: %w", p.ID, err)
		}
		if !ok {
			// The guard saw a different stock than the locked read; report the current value.
			current, err := products.FindByID(ctx, p.ID)
			if err != nil {
				return lookupError(err, "product", p.ID)
			}
			return &InsufficientStockError{ProductID: p.ID, Available: current.Stock, Requested: req.Quantity}
		}
		p.Stock += delta

		e := &model.LedgerEntry{
			ProductID:  p.ID,
			Type:       typ,
			Quantity:   req.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: total,
			UserID:     sess.userRef(),
			CreatedBy:  sess.Username,
		}
		if err := s.ledgerRepo.WithTx(tx).Append(ctx, e); err != nil {
			return fmt.Errorf("append ledger entry: %w", err)
		}

		entry, product = e, p
		return nil
	})
	if err != nil {
		return nil, err
	}

	action, verb := model.ActionSaleRecorded, "sold"
	if typ == model.TxPurchase {
		action, verb = model.ActionPurchaseRecorded, "purchased"
	}
	s.log.InfoContext(ctx, string(typ)+" recorded",
		slog.Uint64("entry_id", uint64(entry.ID)),
		slog.Uint64("product_id", uint64(product.ID)),
		slog.Int("quantity", entry.Quantity),
		slog.String("total_price", entry.TotalPrice.StringFixed(2)),
		slog.Int("stock", product.Stock),
		slog.String("user", sess.Username))

	event := model.NewStockEvent(action, product, sess.Username,
		fmt.Sprintf("%s %s %d units of '%s'", sess.Username, verb, entry.Quantity, product.Name))
	event.Entry = entry
	s.notifier.Notify(event)

	return entry, nil
}

func (s *inventoryService) ListLedgerEntries(ctx context.Context, filter repository.LedgerFilter) ([]model.LedgerEntry, error) {
	if filter.Type != "" {
		if err := filter.Type.Validate(); err != nil {
			return nil, newValidationError("type", "type must be one of [sale purchase]")
		}
	}
	entries, err := s.ledgerRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, nil
}

func (s *inventoryService) GetLedgerEntry(ctx context.Context, id uint) (*model.LedgerEntry, error) {
	entry, err := s.ledgerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "transaction", id)
	}
	return entry, nil
}

// checkMoney rejects negative amounts and sub-cent precision.
func checkMoney(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return newValidationError(field, field+" must be greater than or equal to 0")
	}
	if !d.Equal(d.Round(2)) {
		return newValidationError(field, field+" must have at most 2 decimal places")
	}
	return nil
}
