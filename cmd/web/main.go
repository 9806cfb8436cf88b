package main

import (
	"embed"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"envchart/internal/app"
)

// Embedded frontend files
//
//go:embed all:frontend
var frontendFiles embed.FS

func main() {
	// Optional .env for local development; the real environment wins.
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env")
	}

	var frontendFS fs.FS
	if sub, err := fs.Sub(frontendFiles, "frontend"); err == nil {
		frontendFS = sub
	} else {
		slog.Warn("Frontend embedding failed", slog.String("error", err.Error()))
	}

	application, err := app.NewApplication(frontendFS)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
