package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/crystaltrading/invoice-server/internal/config"
	"github.com/crystaltrading/invoice-server/internal/counter"
	httpserver "github.com/crystaltrading/invoice-server/internal/interfaces/http"
	"github.com/crystaltrading/invoice-server/internal/invoice"
	"github.com/crystaltrading/invoice-server/internal/session"
	"github.com/crystaltrading/invoice-server/internal/storage"
	"github.com/crystaltrading/invoice-server/pkg/utils"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the configuration file")
	flag.Parse()

	// Load configuration. A missing config file halts startup: without
	// base_dir and the customer list there is nothing to serve.
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Crystal Trading invoice server",
		zap.String("base_dir", cfg.Storage.BaseDir),
		zap.Int("customers", len(cfg.Customers)),
		zap.Int("port", cfg.Server.Port))

	// Initialize storage rooted at the configured base directory
	files, err := storage.NewLocalFileStore(cfg.Storage.BaseDir, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}

	// Initialize the invoice counter; creates a zero record on first run
	counterStore := counter.NewStore(files, cfg.Storage.BaseDir, logger)
	state, err := counterStore.Load()
	if err != nil {
		logger.Fatal("Failed to load invoice counter", zap.Error(err))
	}
	logger.Info("Invoice counter loaded",
		zap.Int("global_invoice_number", state.GlobalInvoiceNumber))

	// Initialize the session controller over the renderer and counter
	renderer := invoice.NewRenderer(invoice.DefaultLayout())
	controller := session.NewController(cfg.Customers, counterStore, renderer, logger)

	// Initialize HTTP server
	srv := httpserver.NewServer(cfg.Server, controller, logger)

	// Start server in a goroutine
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
