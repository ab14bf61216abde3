package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/escrow"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/middleware"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/realtime"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/utils"
)

type Deps struct {
	Ledger       *escrow.Ledger
	Nonces       Nonces
	Hub          *realtime.Hub
	Metrics      http.Handler
	Limiter      *middleware.Limiter
	JWTSecret    string
	JWTExpires   time.Duration
	SecureCookie bool
}

// Mount registers every route on app.
func Mount(app *fiber.App, d Deps) {
	authH := &AuthHandler{
		Ledger:       d.Ledger,
		Nonces:       d.Nonces,
		JWTSecret:    d.JWTSecret,
		Expires:      d.JWTExpires,
		SecureCookie: d.SecureCookie,
	}
	artisanH := NewArtisanHandler(d.Ledger)
	jobH := NewJobHandler(d.Ledger)
	adminH := NewAdminHandler(d.Ledger)
	walletH := NewWalletHandler(d.Ledger)

	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics))
	}

	api := app.Group("/api")
	limit := middleware.RateLimit(d.Limiter)

	// public, limited per IP
	api.Post("/auth/challenge", limit, authH.Challenge)
	api.Post("/auth/login", limit, authH.Login)
	api.Post("/auth/logout", limit, authH.Logout)
	api.Get("/artisans/:address", limit, artisanH.Get)
	api.Get("/jobs/:id", limit, jobH.Get)
	api.Get("/config", limit, adminH.GetConfig)

	// protected (JWT), limited per address
	protected := api.Group("/",
		middleware.JWTFromCookie(d.JWTSecret),
		middleware.AttachJWTLocals(),
		limit,
	)

	protected.Post("/artisans", artisanH.Register)
	protected.Post("/artisans/verify-identity", artisanH.VerifyIdentity)

	protected.Post("/jobs", jobH.Create)
	protected.Get("/jobs", jobH.ListMine)
	protected.Post("/jobs/:id/complete", jobH.Complete())
	protected.Post("/jobs/:id/withdraw", jobH.Withdraw())
	protected.Post("/jobs/:id/cancel", jobH.Cancel())
	protected.Post("/jobs/:id/claim", jobH.Claim())
	protected.Post("/jobs/:id/dispute", jobH.Dispute())
	protected.Post("/jobs/:id/finalize", jobH.Finalize())

	protected.Get("/wallet", walletH.Get)
	protected.Post("/wallet/withdraw", walletH.Withdraw)

	// owner only
	admin := protected.Group("/admin", middleware.RequireRoles(utils.RoleOwner))
	admin.Patch("/artisans/:address/verified", artisanH.SetVerified)
	admin.Patch("/config/fee", adminH.SetFee)
	admin.Patch("/config/timeout", adminH.SetTimeout)
	admin.Patch("/config/dispute-window", adminH.SetDisputeWindow)
	admin.Patch("/config/self-verification", adminH.SetSelfVerification)
	admin.Post("/fees/sweep", adminH.SweepFees)
	admin.Post("/accounts/:address/fund", adminH.FundAccount)

	// WebSocket endpoint (token via query param)
	if d.Hub != nil {
		app.Get("/ws/events", middleware.WebSocketAuth(d.JWTSecret), websocket.New(realtime.ServeEvents(d.Hub)))
	}
}
