package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/Project-SpendWise/SpendWise-API/internal/analytics"
	"github.com/Project-SpendWise/SpendWise-API/internal/api/handlers"
	"github.com/Project-SpendWise/SpendWise-API/internal/api/middleware"
	"github.com/Project-SpendWise/SpendWise-API/internal/auth"
	"github.com/Project-SpendWise/SpendWise-API/internal/filestore"
	"github.com/Project-SpendWise/SpendWise-API/internal/logger"
	"github.com/Project-SpendWise/SpendWise-API/internal/metrics"
	"github.com/Project-SpendWise/SpendWise-API/internal/store"
	bqstore "github.com/Project-SpendWise/SpendWise-API/internal/store/bigquery"
	"github.com/Project-SpendWise/SpendWise-API/internal/store/memory"
	"github.com/Project-SpendWise/SpendWise-API/internal/store/postgres"
)

func main() {
	// Parse command-line flags
	var (
		port      = flag.String("port", "8080", "HTTP server port")
		storeKind = flag.String("store", "memory", "Backing store: memory, postgres or bigquery")
		bucket    = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket name for statement uploads (or set GCS_BUCKET env)")
	)
	flag.Parse()

	// Monetary values serialize as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize logger
	log := logger.New()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}
	verifier := auth.NewVerifier(jwtSecret)

	ctx := context.Background()

	// Initialize stores
	var (
		txs      store.TransactionStore
		profiles store.ProfileStore
		budgets  store.BudgetStore
	)
	switch *storeKind {
	case "memory":
		s := memory.NewStore()
		txs, profiles, budgets = s, s, s
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			log.Fatal().Msg("DATABASE_URL must be set for the postgres store")
		}
		s, err := postgres.Connect(ctx, dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to postgres")
		}
		defer s.Close()
		txs, profiles, budgets = s, s, s
	case "bigquery":
		projectID := os.Getenv("GCP_PROJECT")
		if projectID == "" {
			log.Fatal().Msg("GCP_PROJECT must be set for the bigquery store")
		}
		s, err := bqstore.NewStore(ctx, projectID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create bigquery store")
		}
		defer s.Close()
		txs, profiles, budgets = s, s, s
	default:
		log.Fatal().Str("store", *storeKind).Msg("Unknown store kind")
	}

	var files filestore.Store
	if *bucket != "" {
		files = filestore.NewGCSStore(*bucket)
	} else {
		log.Warn().Msg("No GCS bucket configured - statement uploads will be disabled")
	}

	// Initialize metrics
	collector := metrics.NewCollector("spendwise")
	registry := prometheus.NewRegistry()
	if err := collector.Register(registry); err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	// Initialize the analytics engine and handlers
	engine := analytics.NewService(txs, profiles, budgets)

	analyticsHandler := handlers.NewAnalyticsHandler(engine, log)
	transactionsHandler := handlers.NewTransactionsHandler(engine, txs, log)
	budgetsHandler := handlers.NewBudgetsHandler(engine, budgets, log)
	statementsHandler := handlers.NewStatementsHandler(profiles, files, log)

	// Create router
	api := http.NewServeMux()

	// Analytics endpoints
	api.HandleFunc("/api/analytics/summary", get(transactionsHandler.Summary))
	api.HandleFunc("/api/analytics/categories", get(analyticsHandler.Categories))
	api.HandleFunc("/api/analytics/trends", get(analyticsHandler.Trends))
	api.HandleFunc("/api/analytics/insights", get(analyticsHandler.Insights))
	api.HandleFunc("/api/analytics/monthly-trends", get(analyticsHandler.MonthlyTrends))
	api.HandleFunc("/api/analytics/category-trends", get(analyticsHandler.CategoryTrends))
	api.HandleFunc("/api/analytics/weekly-patterns", get(analyticsHandler.WeeklyPatterns))
	api.HandleFunc("/api/analytics/year-over-year", get(analyticsHandler.YearOverYear))
	api.HandleFunc("/api/analytics/forecast", get(analyticsHandler.Forecast))

	// Transactions endpoints
	api.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.List(w, r)
		case http.MethodPost:
			transactionsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Budgets endpoints
	api.HandleFunc("/api/budgets", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			budgetsHandler.List(w, r)
		case http.MethodPost:
			budgetsHandler.Upsert(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	api.HandleFunc("/api/budgets/comparison", get(budgetsHandler.Compare))
	api.HandleFunc("/api/budgets/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		budgetID := strings.TrimPrefix(r.URL.Path, "/api/budgets/")
		if budgetID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Budget ID is required")
			return
		}
		budgetsHandler.Delete(w, r, budgetID)
	})

	// Statements endpoints
	api.HandleFunc("/api/statements", get(statementsHandler.List))
	api.HandleFunc("/api/statements/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		statementsHandler.Upload(w, r)
	})
	api.HandleFunc("/api/statements/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/api/statements/")
		statementID, ok := strings.CutSuffix(rest, "/file")
		if !ok || statementID == "" {
			middleware.WriteError(w, http.StatusNotFound, "Not found")
			return
		}
		statementsHandler.Download(w, r, statementID)
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", middleware.Auth(verifier)(api))

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.Metrics(collector)(
					middleware.CORS(mux),
				),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Str("store", *storeKind).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// get restricts a handler to the GET method.
func get(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}
