package main

import (
	"fmt"
	"os"

	"github.com/verdantia/storefront-backend/config"
	"github.com/verdantia/storefront-backend/internal/app/repository"
	"github.com/verdantia/storefront-backend/internal/cli"
	"github.com/verdantia/storefront-backend/internal/db"
	"github.com/verdantia/storefront-backend/internal/scheduler"
	"github.com/verdantia/storefront-backend/pkg/logger"
)

func main() {
	logger.Initialize(logger.Config{Level: "warn", Format: "console", Output: os.Stderr})

	if err := cli.NewRootCommand(openCartStore).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func openCartStore() (scheduler.BlobPurger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := db.Initialize(&cfg.Database); err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}
	return repository.NewCartBlobRepository(db.GetDB()), release, nil
}
