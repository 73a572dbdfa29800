package main

import (
	"github.com/joho/godotenv"

	"github.com/fixbid/fixbid/internal/app"
	"github.com/fixbid/fixbid/internal/config"
	"github.com/fixbid/fixbid/internal/db"
	"github.com/fixbid/fixbid/internal/logger"
)

func main() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	logger.InitializeAndConfigure()

	opts, err := config.DBOptions()
	if err != nil {
		logger.Fatalf("invalid database configuration: %v", err)
	}

	gdb, err := db.New(opts)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}

	addr := config.ListenAddr()
	logger.Infof("fixbid API listening on %s", addr)
	if err := app.NewApp(gdb).Listen(addr); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
}
