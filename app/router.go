// Package app builds the HTTP server: dependencies, middleware and routes
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mohitgusain8671/VoiceNote/app/auth"
	"github.com/mohitgusain8671/VoiceNote/app/notes"
	"github.com/mohitgusain8671/VoiceNote/app/root"
	"github.com/mohitgusain8671/VoiceNote/config"
	"github.com/mohitgusain8671/VoiceNote/db"
	"github.com/mohitgusain8671/VoiceNote/internal"
	"github.com/mohitgusain8671/VoiceNote/internal/ai"
	"github.com/mohitgusain8671/VoiceNote/internal/mail"
	"github.com/mohitgusain8671/VoiceNote/internal/media"
	"github.com/mohitgusain8671/VoiceNote/internal/service"
	"github.com/mohitgusain8671/VoiceNote/internal/storage"
	"github.com/mohitgusain8671/VoiceNote/pkg/middleware"
	"github.com/mohitgusain8671/VoiceNote/pkg/security"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const maxJSONBody = 1 << 20

type App struct {
	Router *gin.Engine
	Deps   *internal.Deps

	cron   *cron.Cron
	cancel context.CancelFunc
}

// NewRouter connects to every external service and returns the ready to
// serve application
func NewRouter(ctx context.Context, cfg *config.Config) (*App, error) {
	log := zap.L()

	passwords, err := security.NewPasswordHasher(security.HashParams{
		Memory:      cfg.Security.Argon.Memory,
		Iterations:  cfg.Security.Argon.Iterations,
		Parallelism: cfg.Security.Argon.Parallelism,
	})
	if err != nil {
		return nil, err
	}

	s, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", cfg.Database.Driver, err)
	}

	files, err := storage.New(ctx, cfg)
	if err != nil {
		s.Close(ctx)
		return nil, fmt.Errorf("failed to initialize %s storage, %w", cfg.Storage.Type, err)
	}

	gemini, err := ai.NewGemini(ctx, cfg.AI.GeminiAPIKey, cfg.AI.Model)
	if err != nil {
		s.Close(ctx)
		return nil, err
	}

	var prober service.DurationProber
	if p := media.NewFFprobe(cfg.FFmpeg.FFprobePath); p != nil {
		prober = p
	}

	d := &internal.Deps{
		Config: cfg,
		Store:  s,
		Files:  files,
		Accounts: service.NewAccountService(s,
			mail.New(cfg.Mail),
			security.NewSigner(cfg.JWT.Secret),
			passwords,
			cfg.App.PublicURL,
			log.Named("accounts"),
		),
		Notes:       service.NewNoteService(s, files, gemini, gemini, prober, log.Named("notes")),
		Maintenance: service.NewMaintenance(s, files, cfg.Cleanup.OrphansGrace, log.Named("maintenance")),
	}

	a := &App{Deps: d}

	var routesCtx context.Context
	routesCtx, a.cancel = context.WithCancel(context.Background())
	a.Router = Routes(routesCtx, d)

	return a, nil
}

// StartJobs schedules the maintenance jobs
func (a *App) StartJobs() error {
	cfg := a.Deps.Config.Cleanup

	c, err := a.Deps.Maintenance.Schedule(cfg.TokensSchedule, cfg.OrphansSchedule)
	if err != nil {
		return err
	}

	a.cron = c
	return nil
}

// Close stops the jobs and releases the database
func (a *App) Close(ctx context.Context) error {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}

	if a.cancel != nil {
		a.cancel()
	}

	return a.Deps.Store.Close(ctx)
}

// Routes builds the gin engine over already constructed dependencies. ctx
// bounds the background work of the middleware.
func Routes(ctx context.Context, d *internal.Deps) *gin.Engine {
	cfg := d.Config
	router := gin.New()

	router.Use(
		middleware.NewRequestIDMiddleware(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.App.Origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        true,
			SkipPaths:  []string{"/api/heartbeat"},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{zap.String("requestID", c.GetString("requestID"))}
				if userID := c.GetString("userID"); userID != "" {
					fields = append(fields, zap.String("userID", userID))
				}

				return fields
			},
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success":   false,
			"message":   "Route not found",
			"requestID": c.GetString("requestID"),
		})
	})

	if local, ok := d.Files.(*storage.Local); ok {
		// Keys are never reused, only deletions lag behind by up to a minute
		audio := router.Group(storage.LocalRoute, cache.CacheByRequestURI(persist.NewMemoryStore(time.Minute), time.Minute))

		// GET /uploads/audio/:file	-> Serves stored recordings
		audio.Static("/", local.Dir())
	}

	jwt := middleware.NewJWTMiddleware(d.Accounts)
	jsonLimit := middleware.BodySizeLimiter(maxJSONBody)
	uploadLimit := middleware.BodySizeLimiter(cfg.Upload.MaxBytes() + maxJSONBody)
	rateLimiter := middleware.RateLimiterMiddleware(ctx, middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.Security.RateLimit,
		Burst:             cfg.Security.RateLimit * 2,
	})

	router.GET("/", root.Index)

	api := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		api.HEAD("/heartbeat", root.Heartbeat)
		api.GET("/heartbeat", root.Heartbeat)
	}

	a := api.Group("/auth", rateLimiter, jsonLimit)
	{
		// POST /api/auth/register		-> Registers a new user and mails the verification link
		a.POST("/register", func(c *gin.Context) { auth.Register(c, d) })

		// GET /api/auth/verify-email/:token	-> Verifies a user and redirects to the frontend
		a.GET("/verify-email/:token", func(c *gin.Context) { auth.VerifyEmail(c, d) })

		// POST /api/auth/login			-> Logs in a user and sets the session cookie
		a.POST("/login", func(c *gin.Context) { auth.Login(c, d) })

		// POST /api/auth/logout		-> Clears the session cookie
		a.POST("/logout", func(c *gin.Context) { auth.Logout(c, d) })

		// POST /api/auth/forgot-password	-> Mails a password reset code
		a.POST("/forgot-password", func(c *gin.Context) { auth.ForgotPassword(c, d) })

		// POST /api/auth/verify-otp		-> Exchanges a reset code for a reset token
		a.POST("/verify-otp", func(c *gin.Context) { auth.VerifyOTP(c, d) })

		// POST /api/auth/reset-password	-> Sets a new password
		a.POST("/reset-password", func(c *gin.Context) { auth.ResetPassword(c, d) })

		// GET /api/auth/user-info		-> Returns the logged in user
		a.GET("/user-info", jwt, func(c *gin.Context) { auth.UserInfo(c, d) })
	}

	n := api.Group("/notes", jwt)
	{
		// GET /api/notes			-> Returns the user's notes
		n.GET("", func(c *gin.Context) { notes.List(c, d) })

		// GET /api/notes/stats		-> Returns counts of the user's notes
		n.GET("/stats", func(c *gin.Context) { notes.Stats(c, d) })

		// GET /api/notes/:id		-> Returns a note
		n.GET("/:id", func(c *gin.Context) { notes.Fetch(c, d) })

		// POST /api/notes			-> Creates a note
		n.POST("", jsonLimit, func(c *gin.Context) { notes.Create(c, d) })

		// POST /api/notes/transcribe	-> Stores and transcribes a recording
		n.POST("/transcribe", uploadLimit, func(c *gin.Context) { notes.Transcribe(c, d) })

		// PUT /api/notes/:id		-> Updates the title and/or transcription
		n.PUT("/:id", jsonLimit, func(c *gin.Context) { notes.Update(c, d) })

		// PUT /api/notes/:id/audio	-> Replaces the recording of a note
		n.PUT("/:id/audio", uploadLimit, func(c *gin.Context) { notes.ReplaceAudio(c, d) })

		// POST /api/notes/:id/summary	-> Generates the summary of a note
		n.POST("/:id/summary", func(c *gin.Context) { notes.Summary(c, d) })

		// DELETE /api/notes/:id		-> Deletes a note and its recording
		n.DELETE("/:id", func(c *gin.Context) { notes.Delete(c, d) })
	}

	return router
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
func (a *App) Serve(ctx context.Context) error {
	cfg := a.Deps.Config

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Host.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.Host.SSL.Enabled {
			errCh <- srv.ListenAndServeTLS(cfg.Host.SSL.CertificatePath, cfg.Host.SSL.CertificateKeyPath)
			return
		}

		errCh <- srv.ListenAndServe()
	}()

	zap.L().Info("Server starting", zap.Int("port", cfg.Host.Port), zap.Bool("ssl", cfg.Host.SSL.Enabled))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server, %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
