package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/sepa/internal/api"
	"github.com/wonny/sepa/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                       - Health check
  GET  /metrics                      - Prometheus metrics (METRICS_ENABLED)
  GET  /api/analysis/{ticker}        - 실시간 종목 평가 (?save=true)
  GET  /api/recommendations          - 저장된 평가 조회 (?date=&buy_ready=)
  GET  /api/recommendations/{ticker} - 종목별 최신 평가
  POST /api/scan                     - 배치 평가

Example:
  go run ./cmd/sepa api
  go run ./cmd/sepa api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== SEPA API Server ===")

	a, err := bootstrap(context.Background(), bootstrapOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	if a.repo == nil {
		a.log.Warn("DATABASE_URL not set: recommendation endpoints will return 503")
	}

	router := api.NewRouter(api.Handlers{
		Analysis:        handlers.NewAnalysisHandler(a.analyzer, a.repo, a.log),
		Recommendations: handlers.NewRecommendationHandler(a.repo, a.log),
		Scan:            handlers.NewScanHandler(a.runner, a.repo, a.log),
		Checks:          a.healthChecks(),
		Metrics:         a.cfg.MetricsEnabled,
	}, a.log)

	server := api.New(a.cfg, a.log, router)

	// Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost%s\n", server.Addr())
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}

	a.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
