// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"fintrack/internal/handlers"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services/currency"
	"fintrack/internal/services/ledger"
	"fintrack/internal/services/snapshot"
	"fintrack/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Dependencies are the services and clients the routes are built from.
type Dependencies struct {
	DB    *gorm.DB
	Redis *redis.Client // nil when the rate cache is in-process

	Ledger    ledger.Service
	Wallets   wallet.Service
	Snapshots snapshot.Service
	Currency  currency.Service

	JWTSecret string
	// Gatherer backs GET /metrics; nil leaves the endpoint unregistered.
	Gatherer prometheus.Gatherer
}

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Redis)
	transactionHandler := handlers.NewTransactionHandler(deps.Ledger)
	walletHandler := handlers.NewWalletHandler(deps.Wallets)
	snapshotHandler := handlers.NewSnapshotHandler(deps.Snapshots)
	currencyHandler := handlers.NewCurrencyHandler(deps.Currency)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to Fintrack API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})
	app.Get("/health", healthHandler.HealthCheck)
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	authMiddleware := middleware.NewAuthMiddleware(deps.JWTSecret)
	protected := app.Group("/api", authMiddleware.Handler)

	setupTransactionRoutes(protected, transactionHandler)
	setupWalletRoutes(protected, walletHandler)
	setupReportRoutes(protected, snapshotHandler, transactionHandler)
	setupCurrencyRoutes(protected, currencyHandler)

	protected.Get("/admin/cache-stats", middleware.HasPermission(models.PermissionCurrencyAdmin), healthHandler.CacheStats)
}

func setupTransactionRoutes(router fiber.Router, h *handlers.TransactionHandler) {
	read := middleware.HasPermission(models.PermissionTransactionRead)
	write := middleware.HasPermission(models.PermissionTransactionWrite)

	transactions := router.Group("/transactions")
	transactions.Get("/", read, h.ListTransactions)
	transactions.Post("/", write, h.CreateTransaction)
	transactions.Get("/:id", read, h.GetTransaction)
	transactions.Put("/:id", write, h.UpdateTransaction)
	transactions.Delete("/:id", write, h.DeleteTransaction)
}

func setupWalletRoutes(router fiber.Router, h *handlers.WalletHandler) {
	read := middleware.HasPermission(models.PermissionWalletRead)
	write := middleware.HasPermission(models.PermissionWalletWrite)

	wallets := router.Group("/wallets")
	wallets.Get("/", read, h.ListWallets)
	wallets.Post("/", write, h.CreateWallet)
	wallets.Get("/total", read, h.GetTotalBalance)
	wallets.Get("/:id", read, h.GetWallet)
	wallets.Patch("/:id", write, h.UpdateWallet)
	wallets.Get("/:id/balance", read, h.GetBalance)
	wallets.Post("/:id/archive", write, h.Archive)
	wallets.Post("/:id/unarchive", write, h.Unarchive)
	wallets.Post("/:id/default", write, h.SetDefault)
}

func setupReportRoutes(router fiber.Router, h *handlers.SnapshotHandler, th *handlers.TransactionHandler) {
	read := middleware.HasPermission(models.PermissionReportRead)

	router.Get("/snapshots", read, h.GetBalanceHistory)
	router.Get("/snapshots/:date", read, h.GetSnapshot)

	reports := router.Group("/reports", read)
	reports.Get("/summary", h.GetSummary)
	reports.Get("/balance-trend", h.GetBalanceTrend)
	reports.Get("/income-expense-trend", h.GetIncomeExpenseTrend)
	reports.Get("/verify", th.VerifyLedger)
}

func setupCurrencyRoutes(router fiber.Router, h *handlers.CurrencyHandler) {
	currencies := router.Group("/currency")
	currencies.Get("/convert", h.Convert)
	currencies.Get("/available", h.AvailableCurrencies)
	currencies.Delete("/cache", middleware.HasPermission(models.PermissionCurrencyAdmin), h.ClearCache)
}
