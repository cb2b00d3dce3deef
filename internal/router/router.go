package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/haniellourenco/EasyMiles/internal/admin"
	handlers "github.com/haniellourenco/EasyMiles/internal/http"
	"github.com/haniellourenco/EasyMiles/internal/program"
	"github.com/haniellourenco/EasyMiles/internal/reports"
	"github.com/haniellourenco/EasyMiles/internal/simulation"
	"github.com/haniellourenco/EasyMiles/internal/summary"
	"github.com/haniellourenco/EasyMiles/internal/txn"
	"github.com/haniellourenco/EasyMiles/internal/wallet"
)

type Router struct {
	AuthHandler       *handlers.AuthHandler
	WalletHandler     *wallet.Handler
	ProgramHandler    *program.Handler
	TxnHandler        *txn.Handler
	SimulationHandler *simulation.Handler
	SummaryHandler    *summary.Handler
	ReportsHandler    *reports.Handler
	AdminHandler      *admin.Handler
	AuthMW            fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	app.Post("/api/auth/register", RateLimitAuth(), r.AuthHandler.Register)
	app.Post("/api/auth/login", RateLimitAuth(), r.AuthHandler.Login)
	app.Get("/api/me", r.AuthMW, r.AuthHandler.Me)
	app.Patch("/api/me", r.AuthMW, r.AuthHandler.UpdateMe)

	app.Get("/api/programs", r.AuthMW, r.ProgramHandler.List)
	app.Post("/api/programs", r.AuthMW, r.ProgramHandler.Create)
	app.Patch("/api/programs/:id/toggle-active", r.AuthMW, r.ProgramHandler.ToggleActive)
	app.Delete("/api/programs/:id", r.AuthMW, r.ProgramHandler.Delete)

	app.Get("/api/wallets", r.AuthMW, r.WalletHandler.ListWallets)
	app.Post("/api/wallets", r.AuthMW, r.WalletHandler.CreateWallet)
	app.Put("/api/wallets/:id", r.AuthMW, r.WalletHandler.RenameWallet)
	app.Delete("/api/wallets/:id", r.AuthMW, r.WalletHandler.DeleteWallet)

	app.Get("/api/wallets/:walletID/accounts", r.AuthMW, r.WalletHandler.ListAccounts)
	app.Post("/api/wallets/:walletID/accounts", r.AuthMW, r.WalletHandler.CreateAccount)
	app.Get("/api/accounts", r.AuthMW, r.WalletHandler.ListAccounts)
	app.Get("/api/accounts/:id", r.AuthMW, r.WalletHandler.GetAccount)
	app.Put("/api/accounts/:id", r.AuthMW, r.WalletHandler.UpdateAccount)
	app.Delete("/api/accounts/:id", r.AuthMW, r.WalletHandler.DeactivateAccount)

	app.Post("/api/transactions", RateLimitWrite(), r.AuthMW, r.TxnHandler.Create)
	app.Get("/api/transactions", r.AuthMW, r.TxnHandler.List)
	app.Get("/api/transactions/:id", r.AuthMW, r.TxnHandler.Get)
	app.Put("/api/transactions/:id", RateLimitWrite(), r.AuthMW, r.TxnHandler.Update)
	app.Delete("/api/transactions/:id", RateLimitWrite(), r.AuthMW, r.TxnHandler.Delete)

	app.Post("/api/simulations/transfer", r.AuthMW, r.SimulationHandler.SimulateTransfer)
	app.Post("/api/simulations/sale", r.AuthMW, r.SimulationHandler.SimulateSale)

	app.Get("/api/summary", r.AuthMW, r.SummaryHandler.GetSummary)
	app.Get("/api/reports/statement.pdf", r.AuthMW, r.ReportsHandler.StatementPDF)

	app.Get("/api/admin/overview", admin.RequireAdminAPIKey(), r.AdminHandler.Overview)
}
