package main

import (
	"os"

	"github.com/yigit/internhub/internal/pkg/logger"
	"github.com/yigit/internhub/internal/server"
)

// @title InternHub API
// @version 1.0
// @description API for managing internships: interns, requests, documents, evaluations, planning and notifications

// @contact.name API Support
// @contact.email support@internhub.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT or OIDC ID token for authorization

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Blocks until a shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
