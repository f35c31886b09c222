/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the duty-roster engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize structured logging
  3. Initialize SQLite store (schema + holiday seed)
  4. Load rotation/capacity configuration
  5. Start the change bus and live views
  6. Configure HTTP router
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: 8080)
  -db         SQLite database path (default: roster.db)
              Use ":memory:" for an in-memory database
  -config     Optional JSON rotation/capacity config path
  -log-level  debug/info/warn/error (default: info)
  -log-json   JSON log output (default: true)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the change bus and views
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/roster.db"

  # Run with a re-anchored rotation
  ./server -config="./config/rotations.json"

ENVIRONMENT:
  PORT, DB_PATH, CONFIG_PATH and LOG_LEVEL override the flag defaults;
  a .env file in the working directory is loaded first.

SEE ALSO:
  - api/server.go: Router configuration
  - factory/config.go: JSON configuration parsing
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bpma/roster-engine/api"
	"github.com/bpma/roster-engine/events"
	"github.com/bpma/roster-engine/factory"
	"github.com/bpma/roster-engine/leave"
	"github.com/bpma/roster-engine/live"
	"github.com/bpma/roster-engine/log"
	"github.com/bpma/roster-engine/roster"
	"github.com/bpma/roster-engine/store/sqlite"
)

func main() {
	// .env is optional; flags still win over it.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "roster.db"), "SQLite database path")
	configPath := flag.String("config", envStr("CONFIG_PATH", ""), "rotation/capacity config JSON")
	logLevel := flag.String("log-level", envStr("LOG_LEVEL", "info"), "log level (debug/info/warn/error)")
	logJSON := flag.Bool("log-json", true, "JSON log output")
	flag.Parse()

	log.Init(log.Config{
		Level:      log.Level(*logLevel),
		JSONOutput: *logJSON,
	})
	logger := log.WithComponent("server")

	// Store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	// Configuration
	rotations, limits, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Change bus
	bus := events.NewBroker()
	bus.Start()
	defer bus.Stop()

	// Domain wiring
	rotation := roster.NewRotationPolicy(rotations, store)
	rosterSvc := roster.NewService(store, rotation, bus, log.WithComponent("roster"))
	resolver := roster.NewResolver(rotation, store, store, log.WithComponent("resolver"))

	leaveStore := store.Leave()
	leaveSvc := leave.NewService(leaveStore, bus, log.WithComponent("leave"))
	aggregator := leave.NewAggregator(leaveStore, limits, log.WithComponent("quota"))

	// Live views
	rosterView := live.NewRosterView(resolver, bus, log.WithComponent("roster-view"))
	rosterView.Start()
	defer rosterView.Stop()

	quotaView := live.NewQuotaView(aggregator, bus, log.WithComponent("quota-view"))
	quotaView.Start()
	defer quotaView.Stop()

	// HTTP
	handler := &api.Handler{
		Roster:     rosterSvc,
		Resolver:   resolver,
		Leave:      leaveSvc,
		RosterView: rosterView,
		QuotaView:  quotaView,
		Calendar:   store,
		LiveFeed:   api.NewLiveFeed(bus, log.WithComponent("live")),
	}
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", *port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

// loadConfig reads the optional JSON configuration; absent path means
// the standing defaults.
func loadConfig(path string) ([]roster.UnitRotation, leave.Limits, error) {
	f := factory.NewConfigFactory()
	if path == "" {
		return f.FromJSON(factory.ConfigJSON{})
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, leave.Limits{}, err
	}
	return f.ParseConfig(string(raw))
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
