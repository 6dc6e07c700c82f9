package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/easylearn/easylearn-backend/internal/config"
	"github.com/easylearn/easylearn-backend/internal/handler"
	"github.com/easylearn/easylearn-backend/internal/middleware"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/response"
	"github.com/easylearn/easylearn-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	AccessToken *handler.AccessTokenHandler
	Student     *handler.StudentHandler
	Professor   *handler.ProfessorHandler
	Room        *handler.RoomHandler
	Challenge   *handler.ChallengeHandler
	Quiz        *handler.QuizHandler
	Evaluation  *handler.EvaluationHandler
	Summary     *handler.SummaryHandler
	Stats       *handler.StatsHandler
	WS          *handler.WSHandler
	System      *handler.SystemHandler
}

var (
	admin     = model.RoleAdmin
	professor = model.RoleProfessor
	student   = model.RoleStudent
)

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	rdb *redis.Client,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))

	// Compress JSON bodies; the metrics stream is SSE and must stay raw.
	router.Use(middleware.Brotli(middleware.BrotliConfig{
		Skip: func(c *gin.Context) bool {
			return strings.HasSuffix(c.Request.URL.Path, "/system/metrics")
		},
	}))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	requireJWT := middleware.RequireJWT(authService)
	checkSession := middleware.CheckSession(authService)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authLimiter := middleware.NewRateLimiter(rdb, "auth", cfg.AuthRateLimit, time.Minute, log)
	auth := router.Group("/api/v1/auth")
	auth.Use(middleware.CacheControl("no-store"))
	{
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		auth.POST("/register/student", authLimiter.Middleware(), handlers.Auth.RegisterStudent)
		auth.POST("/register/professor", authLimiter.Middleware(), handlers.Auth.RegisterProfessor)
		auth.POST("/register/admin", authLimiter.Middleware(), handlers.Auth.RegisterAdmin)

		auth.GET("/me", requireJWT, checkSession, handlers.Auth.Me)
		auth.POST("/logout", requireJWT, checkSession, handlers.Auth.Logout)
	}

	// ─── 2. API Group (JWT + Session) ──────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(requireJWT, checkSession)
	{
		tokens := api.Group("/access-tokens", middleware.RequireRole(admin), middleware.CacheControl("no-store"))
		{
			tokens.POST("", handlers.AccessToken.Generate)
			tokens.GET("", handlers.AccessToken.ListAvailable)
		}

		students := api.Group("/students")
		{
			students.GET("/me", middleware.RequireRole(student), handlers.Student.Me)
			students.POST("", middleware.RequireRole(admin), handlers.Student.Create)
			students.GET("", middleware.RequireRole(admin, professor), handlers.Student.List)
			students.POST("/batch", middleware.RequireRole(admin, professor), handlers.Student.Batch)
			students.GET("/:id", handlers.Student.Get)
			students.PUT("/:id", middleware.RequireRole(admin, student), handlers.Student.Update)
			students.DELETE("/:id", middleware.RequireRole(admin), handlers.Student.Delete)
			students.PUT("/:id/level", middleware.RequireRole(admin, professor), handlers.Evaluation.UpdateLevel)
		}

		professors := api.Group("/professors")
		{
			professors.GET("/me", middleware.RequireRole(professor), handlers.Professor.Me)
			professors.POST("", middleware.RequireRole(admin), handlers.Professor.Create)
			professors.GET("", handlers.Professor.List)
			professors.GET("/created-by/:admin_id", middleware.RequireRole(admin), handlers.Professor.CreatedBy)
			professors.GET("/:id", handlers.Professor.Get)
			professors.PUT("/:id", middleware.RequireRole(admin, professor), handlers.Professor.Update)
			professors.DELETE("/:id", middleware.RequireRole(admin), handlers.Professor.Delete)
			professors.GET("/:id/sessions", middleware.RequireRole(admin, professor), handlers.Professor.Sessions)
		}

		rooms := api.Group("/rooms")
		{
			rooms.POST("", middleware.RequireRole(admin, professor), handlers.Room.Create)
			rooms.GET("", middleware.RequireRole(admin), handlers.Room.List)
			rooms.GET("/mine", handlers.Room.Mine)
			rooms.GET("/:id", handlers.Room.Get)
			rooms.PATCH("/:id", middleware.RequireRole(admin), handlers.Room.Update)
			rooms.DELETE("/:id", middleware.RequireRole(admin), handlers.Room.Delete)
			rooms.GET("/:id/participants", middleware.RequireRole(admin, professor), handlers.Room.Participants)
			rooms.GET("/:id/summary", handlers.Summary.ByRoom)

			rooms.POST("/:id/start", middleware.RequireRole(admin, professor), handlers.Room.Start)
			rooms.POST("/:id/end", middleware.RequireRole(admin, professor), handlers.Room.End)
			rooms.GET("/:id/can-join", handlers.Room.CanJoin)
			rooms.POST("/:id/join", handlers.Room.Join)
			rooms.POST("/:id/leave", handlers.Room.Leave)
			rooms.POST("/:id/token", middleware.CacheControl("no-store"), handlers.Room.Token)

			rooms.PUT("/:id/participants/:student_id/mute", middleware.RequireRole(admin, professor), handlers.Room.Mute)
			rooms.POST("/:id/participants/:student_id/ping", middleware.RequireRole(admin, professor), handlers.Room.Ping)
			rooms.DELETE("/:id/participants/:student_id/ping", handlers.Room.ClearPing)
		}

		challenges := api.Group("/challenges")
		{
			challenges.POST("", middleware.RequireRole(professor), handlers.Challenge.Create)
			challenges.GET("/mine", middleware.RequireRole(professor), handlers.Challenge.Mine)
			challenges.GET("/stats", middleware.RequireRole(professor), handlers.Challenge.Stats)
			challenges.DELETE("/:id", middleware.RequireRole(professor), handlers.Challenge.Delete)
			challenges.GET("/:id/attempts", middleware.RequireRole(professor), handlers.Challenge.Attempts)

			challenges.GET("/active", middleware.RequireRole(student), handlers.Challenge.Active)
			challenges.POST("/:id/answer", middleware.RequireRole(student), handlers.Challenge.Submit)
			challenges.GET("/attempts/mine", middleware.RequireRole(student), handlers.Challenge.MyAttempts)

			challenges.GET("/leaderboard", middleware.CacheControl("private, max-age=30"), handlers.Challenge.Leaderboard)
		}

		quizzes := api.Group("/quizzes")
		{
			quizzes.POST("", middleware.RequireRole(admin, professor), handlers.Quiz.Create)
			quizzes.GET("", handlers.Quiz.List)
			quizzes.GET("/results", handlers.Quiz.StudentResults)
			quizzes.GET("/:id", handlers.Quiz.Get)
			quizzes.POST("/:id/publish", middleware.RequireRole(admin, professor), handlers.Quiz.Publish)
			quizzes.POST("/:id/submit", middleware.RequireRole(student), handlers.Quiz.Submit)
			quizzes.GET("/:id/results", middleware.RequireRole(admin, professor), handlers.Quiz.Results)
			quizzes.DELETE("/:id", middleware.RequireRole(admin, professor), handlers.Quiz.Delete)
		}

		evaluations := api.Group("/evaluations")
		{
			evaluations.POST("", middleware.RequireRole(professor), handlers.Evaluation.Create)
			evaluations.GET("/mine", middleware.RequireRole(professor, student), handlers.Evaluation.Mine)
		}

		summaries := api.Group("/summaries")
		{
			summaries.PUT("", middleware.RequireRole(professor), handlers.Summary.Upsert)
			summaries.GET("/mine", middleware.RequireRole(professor, student), handlers.Summary.Mine)
		}

		api.GET("/stats", middleware.CacheControl("private, max-age=30"), handlers.Stats.Dashboard)

		api.GET("/admin/system/metrics", middleware.RequireRole(admin), handlers.System.SystemMetricsSSE)
	}

	// ─── 3. WebSocket Group (token in query) ───────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(requireJWT, checkSession)
	{
		ws.GET("/rooms/:id/events", handlers.WS.RoomEventStream)
	}

	return router
}
