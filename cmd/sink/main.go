package main

import (
	"flag"
	"fmt"
	stdlog "log"
	"net/http"

	"github.com/rs/zerolog/log"
	"logship/internal/api"
	"logship/internal/api/handlers"
	"logship/internal/pkg/logger"
	"logship/internal/platform/config"
	"logship/internal/platform/database"
	"logship/internal/platform/repositories"
)

func main() {
	configPath := flag.String("config", "configs/sink.yaml", "path to sink config")
	flag.Parse()

	cfg, err := config.LoadSink(*configPath)
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	recordRepo := repositories.NewRecordRepository(db)

	deps := &api.Dependencies{
		IngestHandler: handlers.NewIngestHandler(cfg.Workspace.ID, cfg.Workspace.Key, recordRepo),
		HealthHandler: handlers.NewHealthHandler(db),
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Info().Str("addr", addr).Str("workspace", cfg.Workspace.ID).Msg("Sink listening")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
