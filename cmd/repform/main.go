// Command repform runs the exercise analysis server. It accepts landmark
// frames from the dashboard front end, drives the repetition state machine,
// and persists completed repetitions to sqlite.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/formsense/repform/internal/api"
	"github.com/formsense/repform/internal/config"
	"github.com/formsense/repform/internal/db"
	"github.com/formsense/repform/internal/version"
)

var (
	listen        = flag.String("listen", ":8080", "Listen address")
	dbFile        = flag.String("db", "repform.db", "Path to the session database")
	migrationsDir = flag.String("migrations", "migrations", "Path to the migrations directory")
	tuningFile    = flag.String("tuning", "", "Optional tuning JSON overriding thresholds")
	devMode       = flag.Bool("dev", false, "Run in dev mode (mount admin debug routes)")
)

func main() {
	flag.Parse()

	log.Printf("repform %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	tuning := config.EmptyTuningConfig()
	if *tuningFile != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*tuningFile)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	// Registration validates every analyzer config; a mismatch is a
	// programming error and stops the server before it takes traffic.
	registry, err := tuning.BuildRegistry()
	if err != nil {
		log.Fatalf("failed to build exercise registry: %v", err)
	}
	log.Printf("registered exercises: %v", registry.Kinds())

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.MigrateUp(*migrationsDir); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		if *devMode {
			// admin debugging routes: tailsql console and db backup
			database.AttachAdminRoutes(mux)
		}

		apiMux := api.NewServer(registry, database).ServeMux()
		mux.Handle("/api/", http.StripPrefix("/api", apiMux))

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		go func() {
			log.Printf("listening on %s", *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
