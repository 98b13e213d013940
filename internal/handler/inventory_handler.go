package handler

import (
	"strconv"
	"strings"

	"go-inventory-ledger/internal/middleware"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type InventoryHandler struct {
	catalog   service.CatalogService
	inventory service.InventoryService
}

func NewInventoryHandler(catalog service.CatalogService, inventory service.InventoryService) *InventoryHandler {
	return &InventoryHandler{catalog: catalog, inventory: inventory}
}

func sessionOf(c *fiber.Ctx) service.Session {
	sess, _ := middleware.SessionFrom(c)
	return sess
}

// paramID parses a positive numeric path parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("Invalid " + name)
	}
	return uint(id), nil
}

// GetProducts lists the catalog.
// GET /api/v1/products?name=&low_stock=&sort=
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	filter := repository.ProductFilter{
		NameContains: c.Query("name"),
		Sort:         c.Query("sort"),
	}
	if raw := c.Query("low_stock"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest("low_stock must be an integer")
		}
		filter.LowStockBelow = &n
	}

	products, err := h.catalog.ListProducts(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// GET /api/v1/products/:id
func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// POST /api/v1/products
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid JSON")
	}

	product, err := h.catalog.AddProduct(c.UserContext(), sessionOf(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

// PUT /api/v1/products/:id
func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid JSON")
	}

	updated, err := h.catalog.UpdateProduct(c.UserContext(), sessionOf(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

// DELETE /api/v1/products/:id
func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	removed, err := h.catalog.DeleteProduct(c.UserContext(), sessionOf(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product deleted", "ledger_entries_removed": removed})
}

// GET /api/v1/transactions?product_id=&type=
func (h *InventoryHandler) GetTransactions(c *fiber.Ctx) error {
	filter := repository.LedgerFilter{Type: model.TransactionType(strings.ToLower(c.Query("type")))}
	if raw := c.Query("product_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest("product_id must be a positive integer")
		}
		filter.ProductID = uint(id)
	}

	entries, err := h.inventory.ListLedgerEntries(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(entries)
}

// GET /api/v1/transactions/:id
func (h *InventoryHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	entry, err := h.inventory.GetLedgerEntry(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(entry)
}

// POST /api/v1/transactions/sales
func (h *InventoryHandler) CreateSale(c *fiber.Ctx) error {
	req, err := parseStockRequest(c)
	if err != nil {
		return err
	}
	entry, err := h.inventory.RecordSale(c.UserContext(), sessionOf(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Sale recorded", "data": entry})
}

// POST /api/v1/transactions/purchases
func (h *InventoryHandler) CreatePurchase(c *fiber.Ctx) error {
	req, err := parseStockRequest(c)
	if err != nil {
		return err
	}
	entry, err := h.inventory.RecordPurchase(c.UserContext(), sessionOf(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Purchase recorded", "data": entry})
}

func parseStockRequest(c *fiber.Ctx) (service.RecordStockRequest, error) {
	var req service.RecordStockRequest
	if err := c.BodyParser(&req); err != nil {
		return req, badRequest("Invalid JSON")
	}
	if req.ProductID == 0 {
		return req, &service.ValidationError{Fields: []service.FieldError{{Field: "product_id", Message: "product_id is required"}}}
	}
	req.IdempotencyKey = strings.TrimSpace(c.Get(HeaderIdempotencyKey))
	return req, nil
}
