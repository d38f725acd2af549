package main

import (
	"context"
	"embed"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ringside-data/stock.report/internal/api"
	"github.com/ringside-data/stock.report/internal/config"
	"github.com/ringside-data/stock.report/internal/db"
	"github.com/ringside-data/stock.report/internal/httputil"
	"github.com/ringside-data/stock.report/internal/match"
	"github.com/ringside-data/stock.report/internal/monitoring"
	"github.com/ringside-data/stock.report/internal/version"
	"github.com/ringside-data/stock.report/internal/vision"
)

//go:embed static/*
var staticFiles embed.FS

func main() {
	// Environment first, then flags on top: a flag left at its default
	// keeps whatever STOCKREPORT_* provided.
	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Fatalf("failed to read environment config: %v", err)
	}

	var (
		listen         = flag.String("listen", cfg.Addr, "Listen address")
		dbPath         = flag.String("db", cfg.DBPath, "SQLite database path")
		migrationsPath = flag.String("migrations", cfg.MigrationsPath, "Migrations directory")
		visionURL      = flag.String("vision-url", cfg.VisionURL, "Vision refinement service base URL (empty disables refinement)")
		tuningPath     = flag.String("tuning", cfg.TuningPath, "Engine tuning JSON path (empty uses built-in defaults)")
		workerInterval = flag.Duration("worker-interval", cfg.WorkerInterval, "Analysis worker scan interval")
		devMode        = flag.Bool("dev", false, "Serve static files from ./static instead of the embedded copy")
		debug          = flag.Bool("debug", cfg.Debug, "Enable debug logging")
	)
	flag.Parse()

	cfg.Addr = *listen
	cfg.DBPath = *dbPath
	cfg.MigrationsPath = *migrationsPath
	cfg.VisionURL = *visionURL
	cfg.TuningPath = *tuningPath
	cfg.WorkerInterval = *workerInterval
	cfg.Debug = *debug

	monitoring.SetDebug(cfg.Debug)
	log.Printf("stock.report %s", version.String())

	if cfg.Addr == "" {
		log.Fatal("Listen address is required")
	}

	tuning, err := cfg.Tuning()
	if err != nil {
		log.Fatalf("failed to load tuning config: %v", err)
	}
	engine := match.New(tuning.EngineConfig())

	database, err := db.NewDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if _, err := database.CheckAndPromptMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("%v", err)
	}

	var visionClient *vision.Client
	if cfg.VisionURL != "" {
		visionClient = vision.NewClient(cfg.VisionURL, httputil.NewStandardClient(nil), tuning.GetVisionTimeout())
		log.Printf("vision refinement enabled via %s", cfg.VisionURL)
	}

	worker := db.NewAnalysisWorker(database, engine, cfg.WorkerInterval, nil)

	// Wait group covers the worker and the HTTP server routines
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the analysis worker so samples ingested across several uploads
	// still get analyzed without an explicit call
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start()
		<-ctx.Done()
		worker.Stop()
		log.Print("analysis worker terminated")
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		// mount the API handlers
		mux := api.NewServer(database, engine, visionClient).ServeMux()

		// read static files from the embedded filesystem in production or
		// from the local ./static in dev for easier iteration without
		// restarting the server
		var staticHandler http.Handler
		if *devMode {
			staticHandler = http.FileServer(http.Dir("./static"))
		} else {
			staticFS, err := fs.Sub(staticFiles, "static")
			if err != nil {
				log.Fatalf("failed to mount embedded static files: %v", err)
			}
			staticHandler = http.FileServer(http.FS(staticFS))
		}
		mux.Handle("/", staticHandler)

		server := &http.Server{
			Addr:    cfg.Addr,
			Handler: api.LoggingMiddleware(mux),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("listening on %s", cfg.Addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		// Create a shutdown context with a timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
