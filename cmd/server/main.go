package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/easylearn/easylearn-backend/internal/config"
	"github.com/easylearn/easylearn-backend/internal/database"
	"github.com/easylearn/easylearn-backend/internal/events"
	"github.com/easylearn/easylearn-backend/internal/handler"
	"github.com/easylearn/easylearn-backend/internal/logger"
	"github.com/easylearn/easylearn-backend/internal/repository"
	"github.com/easylearn/easylearn-backend/internal/router"
	"github.com/easylearn/easylearn-backend/internal/service"
	"github.com/easylearn/easylearn-backend/internal/validator"
	"github.com/easylearn/easylearn-backend/internal/videoroom"
	"github.com/easylearn/easylearn-backend/internal/worker"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting EasyLearn Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	txm := database.NewTxManager(pool)
	userRepo := repository.NewUserRepository(pool)
	accessTokenRepo := repository.NewAccessTokenRepository(pool)
	providerTokenRepo := repository.NewProviderTokenRepository(pool)
	roomRepo := repository.NewRoomRepository(pool)
	participantRepo := repository.NewParticipantRepository(pool)
	challengeRepo := repository.NewChallengeRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	quizResultRepo := repository.NewQuizResultRepository(pool)
	evaluationRepo := repository.NewEvaluationRepository(pool)
	summaryRepo := repository.NewSummaryRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)

	// ─── Initialize Collaborators ──────────────────────────────────────
	roomBus := events.NewRoomBus(rdb)
	summaryQueue := worker.NewSummaryQueue(rdb)
	liveKit := videoroom.NewLiveKit(cfg.LiveKitURL, cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, cfg.LiveKitTokenTTL, log)

	// ─── Initialize Services ──────────────────────────────────────────
	accessTokenService := service.NewAccessTokenService(accessTokenRepo, cfg.AccessTokenTTL, log)
	authService := service.NewAuthService(cfg, rdb, txm, userRepo, accessTokenService, log)
	roomService := service.NewRoomService(
		txm, roomRepo, participantRepo, userRepo, providerTokenRepo,
		liveKit, roomBus, summaryQueue,
		service.RoomOptions{JoinWindow: cfg.JoinWindow, ProviderTimeout: cfg.ProviderTimeout},
		log,
	)
	challengeService := service.NewChallengeService(txm, challengeRepo, attemptRepo, userRepo, log)
	quizService := service.NewQuizService(txm, quizRepo, quizResultRepo, roomRepo, userRepo, log)
	evaluationService := service.NewEvaluationService(txm, evaluationRepo, userRepo, log)
	summaryService := service.NewSummaryService(summaryRepo, roomRepo, userRepo)
	statsService := service.NewStatsService(statsRepo, userRepo)
	studentService := service.NewStudentService(txm, userRepo, log)
	professorService := service.NewProfessorService(txm, userRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		AccessToken: handler.NewAccessTokenHandler(accessTokenService),
		Student:     handler.NewStudentHandler(studentService, authService),
		Professor:   handler.NewProfessorHandler(professorService, authService, roomService),
		Room:        handler.NewRoomHandler(roomService),
		Challenge:   handler.NewChallengeHandler(challengeService),
		Quiz:        handler.NewQuizHandler(quizService),
		Evaluation:  handler.NewEvaluationHandler(evaluationService),
		Summary:     handler.NewSummaryHandler(summaryService),
		Stats:       handler.NewStatsHandler(statsService),
		WS:          handler.NewWSHandler(roomService, roomBus, log, cfg.AllowedOrigins),
		System:      handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workers, workerCtx := errgroup.WithContext(workerCtx)

	summaryWorker := worker.NewSummaryWorker(rdb, roomRepo, summaryRepo, log)
	tokenSweeper := worker.NewTokenSweeper(rdb, accessTokenRepo, providerTokenRepo, cfg.SweepInterval, log)

	workers.Go(func() error { summaryWorker.Start(workerCtx); return nil })
	workers.Go(func() error { tokenSweeper.Start(workerCtx); return nil })

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, rdb, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the in-flight item to finish.
	workerCancel()
	if err := workers.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
