package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/scormlab/scormplay/internal/api/http"
	"github.com/scormlab/scormplay/internal/audit"
	auth "github.com/scormlab/scormplay/internal/auth/middleware"
	"github.com/scormlab/scormplay/internal/config"
	"github.com/scormlab/scormplay/internal/course"
	"github.com/scormlab/scormplay/internal/db"
	rbac "github.com/scormlab/scormplay/internal/rbac"
	storage "github.com/scormlab/scormplay/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := course.NewSQLStore(dbh, cfg.DBDriver)
	auditLog := audit.NewLog(dbh)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// Runtime registry: owns every loaded package and open session; released
	// on delete/replace and drained on shutdown.
	reg := course.NewRegistry()
	defer reg.CloseAll()

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret, cfg.AdminUser, cfg.AdminPassHash)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc))
	}

	// Protected API (JWT → role in context → RBAC): everything that adds or
	// removes courses, or pulls extraction artifacts.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("course:upload")).
			Post("/courses", api.UploadCourseHandler(store, bs, reg, auditLog, cfg.MaxUploadBytes))
		pr.With(rbac.Require("course:delete")).
			Delete("/courses/{courseID}", api.DeleteCourseHandler(store, bs, reg))

		pr.With(rbac.Require("extract:run")).
			Get("/courses/{courseID}/extract/transcripts", api.TranscriptsHandler(store, bs, reg))
		pr.With(rbac.Require("extract:run")).
			Get("/courses/{courseID}/extract/assessments", api.AssessmentsHandler(store, bs, reg))
		pr.With(rbac.Require("extract:run")).
			Get("/courses/{courseID}/extract/videos", api.VideosHandler(store, bs, reg))
		pr.With(rbac.Require("extract:run")).
			Get("/courses/{courseID}/extract/videos/*", api.VideoDownloadHandler(store, bs, reg))
	})

	// Player surfaces. Course content runs inside a sandboxed iframe that
	// cannot attach bearer headers to its own subresource requests, so these
	// stay unauthenticated, like any launched course URL.
	r.Get("/courses", api.ListCoursesHandler(store))
	r.Get("/courses/{courseID}", api.GetCourseHandler(store))
	r.Get("/courses/{courseID}/player", api.PlayerHandler(store))
	r.Get("/courses/{courseID}/launch", api.LaunchHandler(store, bs, reg))
	r.Get("/courses/{courseID}/assets/*", api.AssetHandler(reg))

	r.Post("/courses/{courseID}/sessions", api.CreateSessionHandler(store, bs, reg))
	r.Get("/sessions/{sessionID}", api.GetSessionHandler(reg))
	r.Delete("/sessions/{sessionID}", api.CloseSessionHandler(reg, auditLog))
	r.Post("/sessions/{sessionID}/call", api.RTECallHandler(reg))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
