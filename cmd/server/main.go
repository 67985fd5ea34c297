// @title         Proof of Talent API
// @version       1.0
// @description   Decentralized talent marketplace: job postings, applications and wallet-signed workflows on an EVM testnet.
// @BasePath      /api/v1
// @schemes       http
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Access token. Both "Bearer <JWT>" and "<JWT>" are accepted.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	swagger "github.com/gofiber/swagger"

	_ "github.com/mk-2871/Proof-of-Talent/docs"

	// internal imports
	"github.com/mk-2871/Proof-of-Talent/api/http"
	"github.com/mk-2871/Proof-of-Talent/api/http/handlers"
	"github.com/mk-2871/Proof-of-Talent/pkg/application"
	"github.com/mk-2871/Proof-of-Talent/pkg/config"
	"github.com/mk-2871/Proof-of-Talent/pkg/governance"
	"github.com/mk-2871/Proof-of-Talent/pkg/health"
	"github.com/mk-2871/Proof-of-Talent/pkg/health/checkers"
	"github.com/mk-2871/Proof-of-Talent/pkg/identity"
	"github.com/mk-2871/Proof-of-Talent/pkg/job"
	"github.com/mk-2871/Proof-of-Talent/pkg/marketplace"
	"github.com/mk-2871/Proof-of-Talent/pkg/notify"
	"github.com/mk-2871/Proof-of-Talent/pkg/resume"
	"github.com/mk-2871/Proof-of-Talent/pkg/security/jwt"
	"github.com/mk-2871/Proof-of-Talent/pkg/seed"
	"github.com/mk-2871/Proof-of-Talent/pkg/session"
	"github.com/mk-2871/Proof-of-Talent/pkg/skill"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration from env/.env and CONFIG_FILE
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("storage %s: %v", cfg.StorageDriver, err)
	}
	defer store.close()

	data, err := seed.Load()
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	jobs, err := job.NewStore(ctx, store.kv, data.Jobs)
	if err != nil {
		log.Fatalf("job store: %v", err)
	}
	apps, err := application.NewStore(ctx, store.kv, data.Applications)
	if err != nil {
		log.Fatalf("application store: %v", err)
	}
	skills, err := skill.NewStore(ctx, store.kv, data.Skills, data.Endorsements)
	if err != nil {
		log.Fatalf("skill store: %v", err)
	}
	proposals, err := governance.NewStore(ctx, store.kv, data.Proposals)
	if err != nil {
		log.Fatalf("proposal store: %v", err)
	}

	// Notifications go to SSE subscribers and, when configured, Telegram
	hub := notify.NewHub()
	notifier := notify.Notifier(hub)
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("level=warn msg=\"telegram disabled\" err=%v", err)
		} else {
			go tg.Run(ctx)
			notifier = notify.Multi(hub, tg)
		}
	}

	provider, closeProvider, err := openWallet(ctx, cfg)
	if err != nil {
		log.Fatalf("wallet %s: %v", cfg.WalletMode, err)
	}
	defer closeProvider()

	mgr := session.NewManager(provider, store.kv,
		session.WithNotifier(notifier),
		session.WithTimeout(cfg.WalletTimeout),
		session.WithTargetNetwork(cfg.Network),
	)
	mgr.Start(ctx)
	defer mgr.Close()

	// Token generator
	jwtGen := jwt.NewGenerator(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	ids := identity.NewService(store.kv, jwtGen)
	uc := marketplace.NewService(ids,
		marketplace.Stores{Jobs: jobs, Applications: apps, Skills: skills, Proposals: proposals}, mgr,
		marketplace.WithNotifier(notifier),
		marketplace.WithPayoutFallback(cfg.PayoutFallback),
	)

	readiness := health.NewService(
		checkers.NewStorageChecker(cfg.StorageDriver, store.kv),
		checkers.NewWalletChecker(provider),
	)

	app := fiber.New(fiber.Config{
		AppName:   "proof-of-talent",
		BodyLimit: resume.MaxBytes + 1<<20,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New())

	// Register routes
	http.Register(app, http.Handlers{
		Health:       handlers.NewHealthHandler(readiness),
		Auth:         handlers.NewAuthHandler(uc, ids),
		Wallet:       handlers.NewWalletHandler(mgr),
		Events:       handlers.NewEventsHandler(hub),
		Jobs:         handlers.NewJobsHandler(uc, jobs, apps),
		Applications: handlers.NewApplicationsHandler(uc, apps),
		Resumes:      handlers.NewResumesHandler(),
		Skills:       handlers.NewSkillsHandler(uc, skills),
		Governance:   handlers.NewGovernanceHandler(uc, proposals),
	}, jwt.NewAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Start server
	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on :%s (storage=%s wallet=%s network=%d)", cfg.Port, cfg.StorageDriver, cfg.WalletMode, cfg.Network.ChainID)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Printf("level=error msg=\"server stopped\" err=%v", err)
		}
	case <-ctx.Done():
		log.Printf("level=info msg=\"shutting down\"")
		// end open event streams so the server can drain
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("level=error msg=\"shutdown\" err=%v", err)
		}
	}
}
