// Package routes defines the API routing configuration. It wires the
// repositories, services and handlers together and groups routes by
// audience: user API, provider webhooks, and the internal surface.
package routes

import (
	"strconv"
	"time"

	"pactify/internal/config"
	"pactify/internal/handlers"
	"pactify/internal/middleware"
	"pactify/internal/models"
	"pactify/internal/providers"
	"pactify/internal/repositories"
	"pactify/internal/services/catalog"
	"pactify/internal/services/decision"
	"pactify/internal/services/kyc"
	"pactify/internal/services/ledger"
	"pactify/internal/services/notification"
	"pactify/internal/services/payout"
	"pactify/internal/services/quote"
	"pactify/internal/services/reconciliation"
	"pactify/internal/services/risk"
	"pactify/internal/services/webhook"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// SetupRoutes wires the full dependency graph and registers every route.
func SetupRoutes(app *fiber.App, db *gorm.DB, cache repositories.Cache) {
	repos := repositories.NewManager(db)

	// Core engine services.
	cat := catalog.New(catalog.DefaultConfig())
	calc := quote.NewCalculator(quote.Config{})
	decisionSvc := decision.NewService(cat, calc, decision.Config{})
	verifier := kyc.NewVerifier(repos.KYC)

	// Policy values are product decisions, so ops can move them without a
	// deploy. Structural defaults stay in the service package.
	riskCfg := risk.DefaultConfig()
	riskCfg.HourlyAttemptLimit = config.GetIntEnv("WITHDRAWAL_HOURLY_LIMIT", riskCfg.HourlyAttemptLimit)
	riskCfg.DailyAttemptLimit = config.GetIntEnv("WITHDRAWAL_DAILY_LIMIT", riskCfg.DailyAttemptLimit)
	riskCfg.ReviewThreshold = config.GetIntEnv("RISK_REVIEW_THRESHOLD", riskCfg.ReviewThreshold)
	riskCfg.AlwaysReviewAmount = config.GetInt64Env("RISK_ALWAYS_REVIEW_AMOUNT", riskCfg.AlwaysReviewAmount)
	riskSvc := risk.NewService(repos.SecurityLogs, verifier, riskCfg, nil)
	ledgerSvc := ledger.NewService(repos, cache)
	notifier := notification.NewService()
	recon := reconciliation.NewManager(repos, cache, notifier)

	providerTimeout := config.GetDurationEnv("PROVIDER_TIMEOUT", 30*time.Second)
	registry := providers.NewRegistry(
		providers.NewStripeClient(config.GetEnv("STRIPE_SECRET_KEY", "")),
		providers.NewPayPalClient(
			config.GetEnv("PAYPAL_API_URL", "https://api-m.sandbox.paypal.com"),
			config.GetEnv("PAYPAL_ACCESS_TOKEN", ""),
			providerTimeout,
		),
		providers.NewWiseClient(
			config.GetEnv("WISE_API_URL", "https://api.sandbox.transferwise.tech"),
			config.GetEnv("WISE_API_TOKEN", ""),
			config.GetEnv("WISE_PROFILE_ID", ""),
			providerTimeout,
		),
		providers.NewMpesaClient(
			config.GetEnv("MPESA_API_URL", "https://sandbox.safaricom.co.ke"),
			config.GetEnv("MPESA_API_TOKEN", ""),
			config.GetEnv("MPESA_SHORTCODE", ""),
			config.GetEnv("MPESA_RESULT_URL", ""),
			providerTimeout,
		),
	)

	payoutSvc := payout.NewService(repos, cache, ledgerSvc, riskSvc, decisionSvc,
		verifier, registry, recon, payout.Config{ProviderTimeout: providerTimeout})

	// Handlers.
	payoutHandler := handlers.NewPayoutHandler(payoutSvc)
	webhookHandler := handlers.NewWebhookHandler(recon, repos.WebhookEvents,
		webhook.NewStripeNormalizer(config.GetEnv("STRIPE_WEBHOOK_SECRET", "")),
		webhook.NewPayPalNormalizer(config.GetEnv("PAYPAL_WEBHOOK_SECRET", "")),
		webhook.NewWiseNormalizer(config.GetEnv("WISE_WEBHOOK_SECRET", "")),
		webhook.NewMpesaNormalizer(config.GetEnv("MPESA_CALLBACK_TOKEN", "")),
	)
	internalHandler := handlers.NewInternalHandler(ledgerSvc, recon, repos)

	app.Get("/health", handlers.HealthCheck)

	// Provider webhooks carry their own authentication (signatures).
	webhooks := app.Group("/webhooks")
	webhooks.Post("/stripe", webhookHandler.Handle(models.RailStripe))
	webhooks.Post("/paypal", webhookHandler.Handle(models.RailPayPal))
	webhooks.Post("/wise", webhookHandler.Handle(models.RailWise))
	webhooks.Post("/mpesa", webhookHandler.Handle(models.RailMpesa))

	// User API behind gateway-issued JWTs.
	authMiddleware := middleware.NewAuthMiddleware(config.GetEnv("JWT_SECRET", ""))
	api := app.Group("/api", authMiddleware.Handler)

	// Per-user burst guard in front of the risk service's durable limits.
	withdrawalLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID, ok := c.Locals("userID").(uint); ok {
				return "withdraw:" + strconv.FormatUint(uint64(userID), 10)
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, try again later",
			})
		},
	})

	api.Post("/withdrawals",
		middleware.HasPermission(models.PermissionPayoutWrite),
		withdrawalLimiter,
		payoutHandler.CreateWithdrawal)
	api.Get("/withdrawals/eligibility",
		middleware.HasPermission(models.PermissionBalanceRead),
		payoutHandler.GetEligibility)
	api.Get("/withdrawals/quotes",
		middleware.HasPermission(models.PermissionPayoutRead),
		payoutHandler.GetQuotes)
	api.Get("/payouts",
		middleware.HasPermission(models.PermissionPayoutRead),
		payoutHandler.ListPayouts)
	api.Get("/payouts/:id",
		middleware.HasPermission(models.PermissionPayoutRead),
		payoutHandler.GetPayout)
	api.Get("/payout-methods",
		middleware.HasPermission(models.PermissionPayoutRead),
		payoutHandler.ListMethods)

	// Internal platform surface behind a shared service token.
	internal := app.Group("/internal", middleware.ServiceAuth(""))
	internal.Post("/credits", internalHandler.Credit)
	internal.Get("/reconciliation/report", internalHandler.Report)
	internal.Post("/reconciliation/:rail/statement", internalHandler.ReconcileStatement)
	internal.Get("/payouts/:id/entries", internalHandler.AuditTrail)
}
