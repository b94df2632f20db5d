package main

import (
	"os"

	_ "linksphere/docs"
	"linksphere/internal/adapter/http/routes"
	"linksphere/internal/config"
	"linksphere/internal/infrastructure/logging"

	_ "github.com/joho/godotenv/autoload"
)

// @title           Linksphere Contract & Payment API
// @version         1.0
// @description     Contract lifecycle, milestone payments and bid views for the freelance marketplace.

// @host localhost:8080

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("info", "json", os.Stderr)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	if err := routes.Run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to startup the application")
	}
}
