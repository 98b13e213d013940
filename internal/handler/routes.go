package handler

import (
	"log/slog"

	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/middleware"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/internal/ws"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Dependencies bundles everything the HTTP layer talks to.
type Dependencies struct {
	Auth      service.AuthService
	Users     service.UserService
	Catalog   service.CatalogService
	Inventory service.InventoryService

	// Hub is mounted on /ws when set.
	Hub *ws.Hub

	AllowSignup bool
}

// NewApp builds the fiber app with the shared middleware chain and error handler.
func NewApp(cfg config.HTTP, log *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestContext())
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.AllowOrigins}))

	return app
}

// SetupRoutes registers every API route on app.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	invHandler := NewInventoryHandler(deps.Catalog, deps.Inventory)
	authHandler := NewAuthHandler(deps.Auth, deps.Users, deps.AllowSignup)
	userHandler := NewUserHandler(deps.Users)
	roleHandler := NewRoleHandler()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Public
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/signup", authHandler.Signup)

	protected := api.Group("", middleware.RequireAuth(deps.Auth))

	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/logout", authHandler.Logout)
	protected.Put("/auth/password", authHandler.ChangePassword)

	// Catalog
	protected.Get("/products", middleware.RequirePrivilege(model.PrivProductView), invHandler.GetProducts)
	protected.Get("/products/:id", middleware.RequirePrivilege(model.PrivProductView), invHandler.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege(model.PrivProductCreate), invHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege(model.PrivProductUpdate), invHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege(model.PrivProductDelete), invHandler.DeleteProduct)

	// Ledger
	protected.Get("/transactions", middleware.RequirePrivilege(model.PrivTransactionView), invHandler.GetTransactions)
	protected.Get("/transactions/:id", middleware.RequirePrivilege(model.PrivTransactionView), invHandler.GetTransaction)
	protected.Post("/transactions/sales", middleware.RequirePrivilege(model.PrivTransactionSale), invHandler.CreateSale)
	protected.Post("/transactions/purchases", middleware.RequirePrivilege(model.PrivTransactionPurchase), invHandler.CreatePurchase)

	// Users
	protected.Get("/users", middleware.RequirePrivilege(model.PrivUserView), userHandler.GetUsers)
	protected.Get("/users/:id", middleware.RequirePrivilege(model.PrivUserView), userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege(model.PrivUserCreate), userHandler.CreateUser)

	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)

	if deps.Hub != nil {
		app.Get("/ws", ws.Upgrade, deps.Hub.Handler())
	}
}
