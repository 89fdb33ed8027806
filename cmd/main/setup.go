package main

import (
	"fmt"

	"spot-observer/src/analysis"
	"spot-observer/src/cache"
	"spot-observer/src/config"
	datasource "spot-observer/src/data_source"
	"spot-observer/src/interfaces"
	"spot-observer/src/logger"
	"spot-observer/src/models"
	"spot-observer/src/network"
	"spot-observer/src/scheduler"
	"spot-observer/src/service"
	"spot-observer/src/storage"
	"spot-observer/src/utils"
)

// app holds the wired components shared by every command.
type app struct {
	Config    *config.Config
	Logger    *logger.Logger
	Registry  *cache.Registry
	Dashboard *service.Dashboard
	Scheduler *scheduler.Scheduler
	Archive   *storage.Archive
}

// -----------------------------------------------------------------------------

// setupApp builds the cache layer from config. The archive is attached only
// when a database is configured.
func setupApp(cfg *config.Config) (*app, error) {
	appLogger := logger.NewLogger(cfg.MConfig, cfg.Name)

	networkManager := setupNetwork(cfg.MConfig)
	fetchers, err := datasource.NewFetchers(cfg.MConfig, networkManager, cfg.Location())
	if err != nil {
		return nil, err
	}

	reg := cache.NewRegistry(logger.NewLogger(cfg.MConfig, "Registry"))
	for _, f := range fetchers {
		srcCfg, _ := cfg.Source(f.Source())
		if _, err := reg.Add(f, config.Interval(srcCfg)); err != nil {
			return nil, err
		}
	}

	a := &app{
		Config:    cfg,
		Logger:    appLogger,
		Registry:  reg,
		Dashboard: service.NewDashboard(reg, setupAnalysis(cfg), logger.NewLogger(cfg.MConfig, "Dashboard")),
		Scheduler: scheduler.NewScheduler(reg, cfg.Scheduler.Workers, logger.NewLogger(cfg.MConfig, "Scheduler")),
	}

	db, err := setupDatabase(cfg.MConfig)
	if err != nil {
		return nil, err
	}
	if db != nil {
		a.Archive = storage.NewArchive(db, logger.NewLogger(cfg.MConfig, "Archive"))
		reg.Subscribe(a.Archive.OnPublish)
	}

	appLogger.Info("Initialized %d sources", len(fetchers))
	return a, nil
}

// Close releases the archive, if any.
func (a *app) Close() {
	if a.Archive == nil {
		return
	}
	if err := a.Archive.Close(); err != nil {
		a.Logger.Warning("Closing archive: %v", err)
	}
}

// -----------------------------------------------------------------------------

// setupDatabase opens the archive backend; it returns nil for db_type none.
func setupDatabase(cfg *models.MConfig) (interfaces.IDatabase, error) {
	name := "SQLiteDB"
	if cfg.Storage.DBType == "postgres" {
		name = "PostgresDB"
	}
	db, err := storage.NewDatabase(cfg, logger.NewLogger(cfg, name))
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}
	return db, nil
}

// setupNetwork initializes the network manager
func setupNetwork(cfg *models.MConfig) interfaces.INetworkManager {
	return network.NewAsyncNetworkManager(cfg, logger.NewLogger(cfg, "NetworkManager"))
}

// setupAnalysis initializes the analysis facade with the Helsinki holiday calendar.
func setupAnalysis(cfg *config.Config) *analysis.AnalysisFacade {
	analysisLogger := logger.NewLogger(cfg.MConfig, "Analysis")
	cal := utils.NewHolidayCalendar(utils.HelsinkiMIC, cfg.Location(), analysisLogger)
	return analysis.NewAnalysisFacade(cfg.Location(), cal, analysisLogger)
}
