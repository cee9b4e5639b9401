package main

import (
	"context"
	"embed"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tigerroll/paddock/internal/app"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// embeddedConfig is the application configuration compiled into the binary.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

// applicationMigrationsFS holds the application schema, one directory per database type.
//
//go:embed all:resources/migrations
var applicationMigrationsFS embed.FS

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handling for graceful shutdown (e.g., Ctrl+C)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Warnf("Received signal '%v'. Attempting to stop the job...", sig)
		cancel()
	}()

	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	migrations, err := fs.Sub(applicationMigrationsFS, "resources/migrations")
	if err != nil {
		logger.Fatalf("Failed to open embedded migrations: %v", err)
	}

	app.RunApplication(ctx, envFilePath, embeddedConfig, migrations)
}
