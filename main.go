package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dev-mohitbeniwal/tokengate/audit"
	"github.com/dev-mohitbeniwal/tokengate/config"
	"github.com/dev-mohitbeniwal/tokengate/controller"
	"github.com/dev-mohitbeniwal/tokengate/db"
	logger "github.com/dev-mohitbeniwal/tokengate/logging"
	"github.com/dev-mohitbeniwal/tokengate/pdp/dao"
	"github.com/dev-mohitbeniwal/tokengate/pdp/engine"
	"github.com/dev-mohitbeniwal/tokengate/pdp/guard"
	"github.com/dev-mohitbeniwal/tokengate/pdp/model"
	"github.com/dev-mohitbeniwal/tokengate/pdp/oracle"
	"github.com/dev-mohitbeniwal/tokengate/pdp/policy"
	"github.com/dev-mohitbeniwal/tokengate/pdp/signature"
	"github.com/dev-mohitbeniwal/tokengate/router"
	"github.com/dev-mohitbeniwal/tokengate/service"
	"github.com/dev-mohitbeniwal/tokengate/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig("config"); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	cfg := config.GetConfig()

	// Initialize logger
	logger.InitLogger(cfg.Log.Dir)
	defer logger.Sync()

	// Connect backends in parallel; any failure aborts startup
	var (
		fetcher      *oracle.RPCFetcher
		requirements []model.TokenRequirement
		auditRepo    audit.Repository
	)
	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		var err error
		fetcher, err = oracle.Dial(gctx, cfg.Chain.RPCURL)
		return err
	})
	g.Go(func() error {
		return db.InitRedis(gctx)
	})
	g.Go(func() error {
		if cfg.Elasticsearch.URL == "" {
			logger.Info("Elasticsearch not configured, decisions are audited to the log")
			auditRepo = audit.NewLogRepository()
			return nil
		}
		repo, err := audit.NewElasticsearchRepository(cfg.Elasticsearch.URL, cfg.Elasticsearch.Index)
		if err != nil {
			return err
		}
		auditRepo = repo
		return nil
	})
	g.Go(func() error {
		var err error
		requirements, err = loadRequirements(gctx, cfg)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Fatal("Failed to initialize backends", zap.Error(err))
	}
	defer fetcher.Close()
	defer db.CloseRedis()
	defer db.CloseNeo4j()

	// Build the decision pipeline
	balances, err := oracle.New(fetcher, oracle.Config{
		ChainID:    cfg.Chain.ChainID,
		CacheTTL:   cfg.Oracle.CacheTTL,
		CacheSize:  cfg.Oracle.CacheSize,
		RPCTimeout: cfg.Chain.RPCTimeout,
	})
	if err != nil {
		logger.Fatal("Failed to initialize balance oracle", zap.Error(err))
	}
	policyEngine, err := policy.NewEngine(requirements, balances)
	if err != nil {
		logger.Fatal("Invalid token requirements", zap.Error(err))
	}
	pipeline := engine.NewPipeline(
		guard.NewFreshness(cfg.Proof.MaxAge, cfg.Proof.ClockSkew),
		guard.NewChainIdentity(cfg.Chain.ChainID, cfg.ContractAddress()),
		signature.NewVerifier(),
		policyEngine,
	)
	logger.Info("Decision pipeline ready",
		zap.Uint64("chain_id", cfg.Chain.ChainID),
		zap.String("contract", cfg.ContractAddress().Hex()),
		zap.Strings("protected_operations", policyEngine.Operations()))

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize services and controllers
	services := service.InitializeServices(pipeline, audit.NewService(auditRepo), eventBus)
	controllers := controller.InitializeControllers(services)

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	handler := router.SetupRouter(controllers, db.RedisClient, cfg.RateLimit.Requests, cfg.RateLimit.Per)

	// Set up the server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	// audit writes still in flight finish before backends close
	if err := eventBus.Drain(shutdownCtx); err != nil {
		logger.Warn("Audit events dropped at shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func loadRequirements(ctx context.Context, cfg *config.Configuration) ([]model.TokenRequirement, error) {
	if cfg.Policy.Source != config.PolicySourceNeo4j {
		return cfg.TokenRequirements()
	}
	if err := db.InitNeo4j(ctx); err != nil {
		return nil, err
	}
	return dao.NewRequirementDAO(db.Neo4jDriver).LoadRequirements(ctx)
}
