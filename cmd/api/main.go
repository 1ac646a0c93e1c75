package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pnl-league/competition-backend/api/routes"
	"github.com/pnl-league/competition-backend/internal/config"
	"github.com/pnl-league/competition-backend/internal/repositories"
	mongorepo "github.com/pnl-league/competition-backend/internal/repositories/mongodb"
	"github.com/pnl-league/competition-backend/internal/scheduler"
	"github.com/pnl-league/competition-backend/internal/services"
	"github.com/pnl-league/competition-backend/pkg/ledger"
	"github.com/pnl-league/competition-backend/pkg/mongodb"
	"github.com/pnl-league/competition-backend/pkg/portfolio"
	"golang.org/x/exp/slog"
)

var errLedgerNotConfigured = errors.New("ledger gateway not configured, set SOLANA_OPERATOR_KEY")

func main() {
	// Load .env if present; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	// Connect to MongoDB
	mongoClient, err := mongodb.NewClient(context.Background(), cfg.MongoDB.URI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()
	db := mongoClient.Database(cfg.MongoDB.Database)

	// Initialize repositories
	var userRepo repositories.UserRepository = mongorepo.NewUserRepository(db)
	var traderRepo repositories.TraderRepository = mongorepo.NewTraderRepository(db)
	var drawRepo repositories.DrawRepository = mongorepo.NewDrawRepository(db)

	// The unique drawId index is what makes concurrent draw attempts safe.
	if err := drawRepo.EnsureIndexes(context.Background()); err != nil {
		slog.Error("Failed to ensure draw indexes", "error", err)
		os.Exit(1)
	}

	// The gateway is optional at startup: without an operator key the API
	// still serves, but every job that touches the chain fails fast.
	var gateway ledger.Gateway
	if cfg.Solana.OperatorKey != "" {
		gateway, err = ledger.NewSolanaGateway(
			cfg.Solana.RPCEndpoint,
			cfg.Solana.OperatorKey,
			cfg.Solana.TokenMint,
			cfg.Solana.ClaimEndpoint,
			cfg.Solana.ClaimPriorityFee,
		)
		if err != nil {
			slog.Error("Failed to initialize ledger gateway", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("SOLANA_OPERATOR_KEY not set, ledger operations disabled")
	}

	portfolioClient := portfolio.NewClient(cfg.Portfolio.BaseURL, cfg.Portfolio.APIKey, cfg.Portfolio.MockAPI)

	// Initialize services
	ledgerTimeout := time.Duration(cfg.Jobs.LedgerTimeoutSeconds) * time.Second
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	rankingService := services.NewRankingService(traderRepo, userRepo)
	drawService := services.NewDrawService(drawRepo, rankingService, gateway, rng, ledgerTimeout)
	statsService := services.NewStatsService(traderRepo, userRepo, portfolioClient)
	eligibilityService := services.NewEligibilityService(traderRepo, userRepo, gateway, cfg.Solana.TokenRequired)
	userService := services.NewUserService(userRepo, traderRepo, gateway, cfg.Solana.TokenRequired)

	// Register background jobs
	sched := scheduler.New()
	// The stats guard is shared between the cron trigger and the startup
	// warm-up run below, so the two can never overlap.
	statsJob := scheduler.Job{
		Name:  "stats-sync",
		Spec:  cfg.Jobs.StatsSyncSpec,
		Guard: scheduler.NewGuard("stats-sync"),
		Run: func(ctx context.Context) error {
			_, err := statsService.SyncSeason(ctx)
			return err
		},
	}
	jobs := []scheduler.Job{
		statsJob,
		{
			Name: "fee-claim",
			Spec: cfg.Jobs.FeeClaimSpec,
			Run: func(ctx context.Context) error {
				if !cfg.Jobs.FeeClaimEnabled {
					return nil
				}
				if gateway == nil {
					return errLedgerNotConfigured
				}
				ref, err := gateway.ClaimCreatorFees(ctx)
				if errors.Is(err, ledger.ErrClaimNotConfigured) {
					slog.Info("Fee claim endpoint not configured, skipping")
					return nil
				}
				if err != nil {
					return err
				}
				slog.Info("Creator fees claimed", "tx", ref.Signature)
				return nil
			},
		},
		{
			Name: "eligibility-check",
			Spec: cfg.Jobs.EligibilitySpec,
			Run: func(ctx context.Context) error {
				if gateway == nil {
					return errLedgerNotConfigured
				}
				_, err := eligibilityService.ValidateHoldings(ctx)
				return err
			},
		},
		{
			Name: "draw",
			Spec: cfg.Jobs.DrawSpec,
			Run: func(ctx context.Context) error {
				if !cfg.Jobs.DrawsEnabled {
					slog.Info("Draws disabled, skipping window")
					return nil
				}
				if gateway == nil {
					return errLedgerNotConfigured
				}
				if err := drawService.ResolveUnconfirmed(ctx); err != nil {
					slog.Warn("Reconciliation failed, continuing with draw", "error", err)
				}
				outcome, _, err := drawService.PerformDraw(ctx)
				if err != nil {
					return err
				}
				slog.Info("Draw run finished", "outcome", outcome)
				return nil
			},
		},
	}
	for _, job := range jobs {
		if err := sched.Register(job); err != nil {
			slog.Error("Failed to register job", "job", job.Name, "error", err)
			os.Exit(1)
		}
	}
	sched.Start()
	slog.Info("Scheduler started", "drawsEnabled", cfg.Jobs.DrawsEnabled, "feeClaimEnabled", cfg.Jobs.FeeClaimEnabled)

	// Warm up the season stats shortly after boot instead of waiting for
	// the first cron tick.
	warmup := time.AfterFunc(30*time.Second, func() {
		scheduler.Invoke(context.Background(), statsJob)
	})
	defer warmup.Stop()

	// Setup router and HTTP server
	router := routes.SetupRouter(cfg, drawService, userService)
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop firing triggers, then wait for in-flight jobs before the server
	// so a running draw finishes its persistence step.
	select {
	case <-sched.Stop().Done():
	case <-ctx.Done():
		slog.Warn("Timed out waiting for running jobs")
	}

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}
