package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"classmark/internal/auth"
	"classmark/internal/cloudinary"
	"classmark/internal/config"
	"classmark/internal/geo"
	"classmark/internal/httpmiddleware"
	"classmark/internal/metrics"
	"classmark/internal/queue"
	"classmark/internal/session"
	"classmark/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	var (
		sessStore session.Store
		db        *store.DB
		err       error
	)
	if cfg.StoreBackend == "memory" {
		log.Println("using in-memory store (STORE_BACKEND=memory)")
		sessStore = session.NewMemStore()
	} else {
		db, err = store.NewDB(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db connect failed: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("db migrate failed: %w", err)
		}
		sessStore = store.NewPostgres(db.Client)
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "classmark:reconcile")
	}

	var evidence session.EvidenceStore
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		evidence = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("cloudinary not configured, storing evidence on local disk")
		evidence = &localEvidence{dir: filepath.Join(cfg.TempDir, "classmark-evidence")}
	}

	svc := session.NewService(sessStore, evidence, session.LinkBuilder{ClientURL: cfg.ClientURL}, cfg.UploadTimeout)
	ctx := context.Background()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := cfg.QueueBackend == "memory" || redisClient.Healthy(c.Request.Context())
		dbHealthy := db == nil || db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.POST("/v1/auth/token", func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required,email"`
			Role  string `json:"role" binding:"required,oneof=teacher student"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var upsertErr error
		if req.Role == auth.RoleTeacher {
			upsertErr = sessStore.UpsertTeacher(c.Request.Context(), req.Email)
		} else {
			upsertErr = sessStore.UpsertStudent(c.Request.Context(), req.Email)
		}
		if upsertErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "account setup failed"})
			return
		}

		tokens, err := auth.Issue(req.Email, req.Role, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	authed := r.Group("/v1", auth.Bearer(cfg.JWTSigningKey, cfg.JWTIssuer))
	teacherAPI := authed.Group("", auth.RequireRole(auth.RoleTeacher))
	studentAPI := authed.Group("", auth.RequireRole(auth.RoleStudent))

	teacherAPI.POST("/sessions", func(c *gin.Context) {
		var req struct {
			SessionID string  `json:"session_id"`
			Name      string  `json:"name" binding:"required"`
			Date      string  `json:"date"`
			Time      string  `json:"time"`
			Duration  string  `json:"duration"`
			Location  string  `json:"location" binding:"required"`
			Radius    float64 `json:"radius"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		claims := auth.FromContext(c)
		sess, link, err := svc.CreateSession(c.Request.Context(), claims.Email, session.Session{
			SessionID: req.SessionID,
			Name:      req.Name,
			Date:      req.Date,
			Time:      req.Time,
			Duration:  req.Duration,
			Location:  req.Location,
			Radius:    req.Radius,
		})
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"session": sess,
			"url":     link,
			"message": "Session created successfully",
		})
	})

	teacherAPI.GET("/sessions", func(c *gin.Context) {
		claims := auth.FromContext(c)
		sessions, err := svc.ListSessions(c.Request.Context(), claims.Email)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": sessions})
	})

	teacherAPI.GET("/sessions/:id/link", func(c *gin.Context) {
		claims := auth.FromContext(c)
		link, err := svc.CheckInLink(c.Request.Context(), claims.Email, c.Param("id"))
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": link})
	})

	studentAPI.POST("/checkins", func(c *gin.Context) {
		sessionID := c.PostForm("session_id")
		teacherEmail := c.PostForm("teacher_email")
		regno := c.PostForm("regno")
		location := c.PostForm("location")

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
			return
		}
		tempPath := filepath.Join(cfg.TempDir, "checkin-"+uuid.NewString()+filepath.Ext(file.Filename))
		if err := c.SaveUploadedFile(file, tempPath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store upload"})
			return
		}

		claims := auth.FromContext(c)
		out, err := svc.RecordAttendance(c.Request.Context(), teacherEmail, sessionID,
			session.Identity{RegNo: regno, Email: claims.Email, IP: c.ClientIP()},
			location, tempPath)
		if err != nil {
			metrics.CheckinsFailed.Inc()
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		switch out.Status {
		case session.StatusMarked:
			metrics.CheckinsMarked.Inc()
			if out.Summary.Radius > 0 && out.Summary.Distance > out.Summary.Radius {
				metrics.CheckinsBeyondRadius.Inc()
			}
			msg, err := queue.EncodeCheckIn(queue.CheckIn{
				TeacherEmail: teacherEmail,
				SessionID:    sessionID,
				StudentEmail: claims.Email,
			})
			if err == nil {
				if err := q.Publish(ctx, msg); err != nil {
					log.Printf("queue publish failed: %v", err)
				}
			}
			c.JSON(http.StatusCreated, gin.H{
				"status":  out.Status,
				"summary": out.Summary,
				"message": "Attendance marked successfully",
			})
		case session.StatusAlreadyMarked:
			metrics.CheckinsDuplicate.Inc()
			c.JSON(http.StatusOK, gin.H{
				"status":  out.Status,
				"summary": out.Summary,
				"message": "Attendance already marked",
			})
		}
	})

	studentAPI.GET("/me/sessions", func(c *gin.Context) {
		claims := auth.FromContext(c)
		sums, err := svc.ListStudentSessions(c.Request.Context(), claims.Email)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": sums})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced shutdown: %v", err)
	}

	log.Println("server exited")
	return nil
}

// statusFor maps core errors to HTTP statuses so callers can tell
// "fix your request" from "try again" failures.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrTeacherNotFound),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrStudentNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionExists):
		return http.StatusConflict
	case errors.Is(err, session.ErrMissingField),
		errors.Is(err, geo.ErrMalformedCoordinate):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrEvidenceUpload):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// localEvidence keeps evidence images on local disk for deployments
// without Cloudinary credentials (dev and CI).
type localEvidence struct {
	dir string
}

func (l *localEvidence) Upload(ctx context.Context, localPath string) (string, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", err
	}
	src, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dest := filepath.Join(l.dir, uuid.NewString()+filepath.Ext(localPath))
	dst, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dest)
		return "", err
	}
	return "file://" + dest, nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
