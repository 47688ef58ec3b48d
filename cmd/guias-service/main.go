package main

import (
	"fmt"
	"os"

	"guias-service/internal/auth"
	"guias-service/internal/balance"
	"guias-service/internal/config"
	"guias-service/internal/db"
	httphandler "guias-service/internal/http"
	"guias-service/internal/http/middleware"
	"guias-service/internal/logger"
	"guias-service/internal/repository"
	"guias-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	guideRepo := repository.NewGuideRepository(database)
	driverRepo := repository.NewDriverRepository(database)
	recordRepo := repository.NewRecordRepository(database)
	feedRepo := repository.NewFeedRepository(database)
	tierRepo := repository.NewTierRepository(database)
	actionRepo := repository.NewActionRepository(database)

	balancer := balance.New()
	if cfg.Distribution.Seed != 0 {
		balancer = balance.NewSeeded(cfg.Distribution.Seed)
	}

	syncService := service.NewSyncService(recordRepo, actionRepo, log)
	distributionService := service.NewDistributionService(guideRepo, driverRepo, recordRepo, actionRepo, balancer, log)
	reconcileService := service.NewReconcileService(feedRepo, recordRepo, cfg.Reconcile.Tolerance, log)
	recordService := service.NewRecordService(recordRepo, tierRepo, actionRepo, reconcileService, log)
	bootstrapService := service.NewBootstrapService(service.NewSessionGuard(), syncService, distributionService, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(bootstrapService, distributionService, recordService, log)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), database, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting guias service")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
