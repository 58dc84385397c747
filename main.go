package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aashish23092/dualasset-analyzer/client"
	"github.com/Aashish23092/dualasset-analyzer/config"
	"github.com/Aashish23092/dualasset-analyzer/handler"
	"github.com/Aashish23092/dualasset-analyzer/logger"
	"github.com/Aashish23092/dualasset-analyzer/notify"
	"github.com/Aashish23092/dualasset-analyzer/service"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	ctx := context.Background()

	// Tesseract is always available as the last resort; PaddleOCR goes first when configured
	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)
	defer tesseractClient.Close()

	recognizers := []client.TextRecognizer{tesseractClient}
	if cfg.PaddleAPIURL != "" {
		recognizers = append([]client.TextRecognizer{client.NewPaddleClient(cfg.PaddleAPIURL)}, recognizers...)
	}
	recognizer := client.NewFallbackRecognizer(recognizers...)

	// Initialize service layer
	analysisService := service.NewAnalysisService(
		recognizer,
		service.NewPDFProcessor(),
		cfg.CacheTTL,
		notify.NewEmailNotifier(cfg.Email),
		service.NewPipelineOptions(cfg.Analysis),
	)

	// Initialize handler layer
	dualAssetHandler := handler.NewDualAssetHandler(analysisService, cfg.MaxFileSize)

	router := gin.Default()
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Dual Asset Offer Analyzer",
			"ocr":     recognizer.Name(),
		})
	})

	api := router.Group("/api/v1")
	{
		dualAsset := api.Group("/dualasset")
		{
			dualAsset.POST("/analyze", dualAssetHandler.Analyze)
			dualAsset.POST("/export", dualAssetHandler.Export)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Info(ctx, "Starting Dual Asset Offer Analyzer", "port", cfg.ServerPort, "ocr", recognizer.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(ctx, "Server shutdown failed", err)
	}
	if err := logger.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(ctx, "Tracer shutdown failed", err)
	}
}
