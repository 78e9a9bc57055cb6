package main

import (
	"voxnova-backend/internal/app"
	"voxnova-backend/internal/config"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	fiberApp, err := app.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create failed")
	}

	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("server starting")
	log.Info().Msgf("health check: http://localhost:%s/health/json", cfg.Port)

	if err := fiberApp.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
