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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"lumenlearn/api/database"
	"lumenlearn/api/handlers"
	"lumenlearn/api/history"
	"lumenlearn/api/middleware"
	"lumenlearn/api/resolver"
	"lumenlearn/api/session"
	"lumenlearn/api/store"
	"lumenlearn/api/telemetry"
)

const (
	defaultIPLookupURL  = "https://api.ipify.org?format=json"
	defaultGeoLookupURL = "https://ipapi.co"
)

// openVisitStore picks a store backend from the environment: ClickHouse
// first, then Postgres. No backend configured (or reachable) is a
// recognized mode — the pipeline runs fully with a nil store.
func openVisitStore() (store.VisitorStore, func()) {
	chClient, err := database.NewClickHouseDB()
	if err == nil {
		return store.NewClickHouseStore(chClient), chClient.Close
	}
	if !errors.Is(err, database.ErrNotConfigured) {
		log.Printf("ClickHouse visit store unavailable, falling back: %v", err)
	}

	pgClient, err := database.NewPostgresDB()
	if err == nil {
		return store.NewPostgresStore(pgClient.DB), pgClient.Close
	}
	if !errors.Is(err, database.ErrNotConfigured) {
		log.Printf("PostgreSQL visit store unavailable: %v", err)
	}

	log.Println("No visit store configured; history persistence runs in no-op mode.")
	return nil, func() {}
}

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	visitStore, closeStore := openVisitStore()
	defer closeStore()

	// --- Build the telemetry pipeline ---
	// The session identity is generated exactly once here and injected;
	// it is stable for the lifetime of the process.
	sessionID := session.Generate()
	log.Printf("Session identity: %s", sessionID)

	res := resolver.New(resolver.Config{
		IPLookupURL:  envOr("IP_LOOKUP_URL", defaultIPLookupURL),
		GeoLookupURL: envOr("GEO_LOOKUP_URL", defaultGeoLookupURL),
		UserAgent:    envOr("TELEMETRY_USER_AGENT", "lumenlearn-telemetry/1.0"),
		Referrer:     os.Getenv("TELEMETRY_REFERRER"),
		EntryPath:    "/",
	})

	pipeline := telemetry.NewPipeline(sessionID, res, history.NewController(visitStore))
	pipeline.Start(context.Background())

	// --- Handlers ---
	authHandlers := handlers.NewAuthHandlers()
	visitorHandlers := handlers.NewVisitorHandlers(pipeline)
	statsHandlers := handlers.NewStatsHandlers(visitStore)

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	// Content routes are where navigation happens; each request through
	// this group performs the page-visit-logger step.
	pages := r.Group("/pages")
	pages.Use(middleware.PageVisit(pipeline))
	pages.GET("/*path", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": c.Param("path")})
	})

	api := r.Group("/api")
	api.Use(middleware.RateLimit(middleware.RateLimitOptions{}))
	{
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		api.GET("/visitor/profile", visitorHandlers.GetProfile)
		api.GET("/visits", visitorHandlers.GetVisits)
		api.GET("/visits/all", visitorHandlers.GetAllVisits)
		api.POST("/visits/refresh", visitorHandlers.RefreshAllVisits)

		protected := api.Group("/stats")
		protected.Use(middleware.AdminRequired())
		{
			protected.GET("/top-pages", statsHandlers.GetTopPages)
			protected.GET("/visit-counts", statsHandlers.GetVisitCountsOverTime)
			protected.GET("/unique-sessions", statsHandlers.GetUniqueSessionsOverTime)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Telemetry server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Telemetry server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
