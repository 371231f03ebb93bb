// Command server starts the AI interview agent HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpserver "github.com/fairyhunter13/ai-interview-agent/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/mailer"
	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/observability"
	tikaext "github.com/fairyhunter13/ai-interview-agent/internal/adapter/textextractor/tika"
	"github.com/fairyhunter13/ai-interview-agent/internal/app"
	"github.com/fairyhunter13/ai-interview-agent/internal/config"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	"github.com/fairyhunter13/ai-interview-agent/internal/service/agent"
	"github.com/fairyhunter13/ai-interview-agent/internal/service/memory"
	"github.com/fairyhunter13/ai-interview-agent/internal/usecase"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register all Prometheus metrics once per process so that /metrics
	// exposes HTTP, AI, interview and agent instrumentation.
	observability.InitMetrics()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTracer, err := observability.SetupTracing(ctx, cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	infra, err := connectInfra(ctx, cfg)
	if err != nil {
		slog.Error("infrastructure setup failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer infra.Close()

	llm, err := buildLLM(ctx, cfg, infra)
	if err != nil {
		slog.Error("llm setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	bank := domain.DefaultQuestionBank
	if cfg.QuestionBankPath != "" {
		bank, err = config.LoadQuestionBank(cfg.QuestionBankPath)
		if err != nil {
			slog.Error("question bank load failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Usecases
	resumes := usecase.NewResumeService(llm, tikaext.New(cfg.TikaURL), cfg.ResumeTokenBudget)
	interviewOpts := []usecase.InterviewOption{usecase.WithQuestionBank(bank)}
	if infra.archive != nil {
		interviewOpts = append(interviewOpts, usecase.WithResultArchive(infra.archive))
	}
	if infra.activity != nil {
		interviewOpts = append(interviewOpts, usecase.WithActivityPublisher(infra.activity))
	}
	interview := usecase.NewInterviewService(llm, infra.sessions, resumes, usecase.InterviewConfig{
		QuestionCount:       cfg.QuestionCount,
		FollowupProbability: cfg.FollowupProbability,
	}, interviewOpts...)

	mem := memory.New(infra.memory, cfg.MemoryMaxMessages)
	email := agent.NewEmailTools(llm, mailer.NewSMTP(cfg))
	tools := append(email.Tools(), agent.NewCalendarTools().Tools()...)
	tools = append(tools, agent.InterviewTools(interview)...)
	registry, err := agent.NewRegistry(tools...)
	if err != nil {
		slog.Error("tool registry setup failed", slog.Any("error", err))
		os.Exit(1)
	}
	agentSvc := usecase.NewAgentService(
		agent.NewPlanner(llm, registry),
		agent.NewExecutor(llm, registry, mem, cfg.GetRetryConfig()),
		email, mem, infra.activity)

	srv := httpserver.NewServer(cfg, interview, resumes, agentSvc,
		usecase.NewInsightsService(llm),
		usecase.NewRecommendationService(mem, infra.activity),
		app.BuildReadinessChecks(cfg, infra.dbPinger(), infra.redisPinger(), infra.kafkaPinger()))
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port), slog.String("env", cfg.AppEnv))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
