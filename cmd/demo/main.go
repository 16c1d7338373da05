package main

import (
	"context"
	"os"

	"github.com/alvaro/studentreg/internal/demo"
	"github.com/alvaro/studentreg/internal/pkg/logger"
)

func main() {
	app, err := demo.NewApp()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(context.Background()); err != nil {
		logger.Error().Err(err).Msg("Demo run failed")
		os.Exit(1)
	}

	logger.Info().Msg("Demo finished")
}
