package main

import (
	"log/slog"
	"os"

	"sellerpulse/internal/app"
	"sellerpulse/internal/infrastructure"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		infrastructure.GetLogger().Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
