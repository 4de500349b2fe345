package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-ideas/internal/api"
	"github.com/wonny/aegis-ideas/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET    /health                          - Health check
  POST   /api/ideas/generate              - 아이디어 생성 (동기)
  GET    /api/ideas/requests              - 진행 중인 요청 목록
  GET    /api/ideas/requests/{requestId}  - 진행 중인 요청 조회
  DELETE /api/ideas/requests/{requestId}  - 요청 취소
  GET    /api/ideas/results/{requestId}   - 생성 결과 조회
  GET    /api/ideas/{ideaId}              - 저장된 아이디어 조회
  GET    /api/ideas/stream                - WebSocket 진행 이벤트

Example:
  go run ./cmd/ideagen api
  go run ./cmd/ideagen api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "SCHEDULER_PROFILES 스케줄러도 함께 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Aegis Ideas API Server ===")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.logger
	log.WithFields(map[string]interface{}{
		"port":     a.cfg.Port,
		"env":      a.cfg.Env,
		"agents":   a.cfg.Agents.BaseURL,
		"redis":    a.redis.Enabled(),
		"database": a.db != nil,
	}).Info("Initializing API server")

	// Optional scheduler sharing the same orchestrator and result store
	if apiWithScheduler || a.cfg.Scheduler.Enabled {
		sched, err := buildScheduler(a, a.cfg.Scheduler.Profiles)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	ideasHandler := handlers.NewIdeasHandler(
		a.orchestrator,
		a.results,
		a.repo,
		api.NewUserLimiter(a.limiter, a.cfg.API.GenerateRateLimit),
		log,
	)
	router := api.NewRouter(ideasHandler, a.hub, log)
	server := api.New(a.cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a listen failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
