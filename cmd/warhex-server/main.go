package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"warhex/internal/api"
	"warhex/internal/config"
	"warhex/internal/constants"
	"warhex/internal/logging"
	"warhex/internal/service"
	"warhex/internal/storage"
)

func main() {
	// Configuration is optional for the server: with no WARHEX_CONFIG the
	// built-in defaults apply. A set-but-broken path is fatal so a typo
	// never silently runs on defaults.
	cfg := config.Default()
	if configPath := os.Getenv(constants.EnvConfigPath); configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			logging.Fatal("Missing or invalid configuration", err, logging.Fields{"config_path": configPath})
		}
		cfg = loaded
	}

	dbPath := cfg.DatabasePath
	if p := os.Getenv(constants.EnvDBPath); p != "" {
		dbPath = p
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		logging.Fatal("Failed to create database directory", err, nil)
	}
	db, err := storage.OpenAndMigrate(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}

	repo := storage.NewSQLiteRepository(db)
	manager := service.NewManager(repo, cfg.Rules, cfg.SessionTTL)
	handler := api.NewBattleHandler(manager, repo)

	// Background sweeper: drop battle sessions idle past the TTL.
	// Finished sessions were persisted when they ended; an abandoned
	// running battle is simply discarded.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if n := manager.ExpireIdle(time.Now()); n > 0 {
				logging.Info("expired idle battle sessions", logging.Fields{"count": n})
			}
		}
	}()

	router := gin.Default()

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.GET(constants.RouteVersion, api.Version)
		apiRoutes.POST(constants.RouteBattles, handler.CreateBattle)
		apiRoutes.GET(constants.RouteBattleByID, handler.GetBattle)
		apiRoutes.POST(constants.RouteBattleStep, handler.StepBattle)
		apiRoutes.POST(constants.RouteBattleEvents, handler.ApplyBattleEvents)
		apiRoutes.POST(constants.RouteBattleUndo, handler.UndoBattle)
		apiRoutes.POST(constants.RouteBattleRun, handler.RunBattle)
		apiRoutes.GET(constants.RouteBattleStream, handler.StreamBattle)
		apiRoutes.GET(constants.RouteRecords, handler.ListRecords)
		apiRoutes.GET(constants.RouteRecordByID, handler.GetRecord)
		apiRoutes.POST(constants.RouteRecordReplay, handler.ReplayRecord)
	}

	logging.Info("starting server", logging.Fields{constants.LogFieldAddr: cfg.ServerAddress})
	if err := router.Run(cfg.ServerAddress); err != nil {
		logging.Fatal("Server failed", err, nil)
	}
}
