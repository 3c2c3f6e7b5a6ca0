package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/igm/sockjs-go/sockjs"

	"friscoplan/internal/auth"
	"friscoplan/internal/db"
	"friscoplan/internal/domain/calendar"
	"friscoplan/internal/domain/roster"
	"friscoplan/internal/domain/vacation"
	"friscoplan/internal/platform/config"
	"friscoplan/internal/platform/metrics"
	"friscoplan/internal/realtime"
	"friscoplan/internal/transport/http/api"
	authhandler "friscoplan/internal/transport/http/handlers/auth"
	calendarhandler "friscoplan/internal/transport/http/handlers/calendar"
	reportshandler "friscoplan/internal/transport/http/handlers/reports"
	vacationshandler "friscoplan/internal/transport/http/handlers/vacations"
	workershandler "friscoplan/internal/transport/http/handlers/workers"
	"friscoplan/internal/transport/http/middleware"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	cal, err := calendar.New(cfg.HolidayRegion)
	if err != nil {
		log.Fatalf("holiday calendar: %v", err)
	}

	authStore := auth.NewStore(pool)
	rosterStore := roster.NewPgStore(pool)
	vacationStore := vacation.NewPgStore(pool)
	vacationService := vacation.NewService(vacationStore, rosterStore,
		vacation.NewValidator(cal), cfg.DefaultMaxAbsent)

	collector := metrics.New()
	hub := realtime.NewHub()
	poller := realtime.NewPoller(realtime.NewPgStore(pool), hub, cfg.RealtimePollEvery, cfg.RealtimeBatchSize)
	go poller.Run(ctx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, authStore))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authStore, cfg.JWTSecret, cfg.TokenTTL).RegisterRoutes(r)
		workershandler.NewHandler(rosterStore).RegisterRoutes(r)
		vacationshandler.NewHandler(vacationService).RegisterRoutes(r)
		calendarhandler.NewHandler(cfg.HolidayRegion, vacationService).RegisterRoutes(r)
		reportshandler.NewHandler(vacationStore, rosterStore).RegisterRoutes(r)
	})

	router.Mount("/realtime", realtimeHandler(hub, cfg.JWTSecret))
	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("friscoplan listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// realtimeHandler bridges SockJS sessions onto the hub. A valid login
// token is required before any events flow; clients then narrow their
// feed with subscribe messages.
func realtimeHandler(hub *realtime.Hub, secret string) http.Handler {
	return sockjs.NewHandler("/realtime", sockjs.DefaultOptions, func(session sockjs.Session) {
		req := session.Request()
		if _, err := auth.ParseToken(secret, req.URL.Query().Get("token")); err != nil {
			_ = session.Close(4001, "authentication required")
			return
		}

		client := &realtime.Client{ID: uuid.NewString(), Send: make(chan []byte, 16)}
		hub.Register(client)
		defer hub.Unregister(client)

		go func() {
			for msg := range client.Send {
				_ = session.Send(string(msg))
			}
		}()

		for {
			msg, err := session.Recv()
			if err != nil {
				return
			}
			parsed, ok := realtime.ParseSubscribe([]byte(msg))
			if !ok {
				continue
			}
			if parsed.Action == "unsubscribe" {
				hub.UpdateSubscription(client, realtime.Subscription{})
				continue
			}
			hub.UpdateSubscription(client, realtime.Subscription{Table: parsed.Table})
		}
	})
}

// spaHandler serves the built dashboard, falling back to index.html so
// client side routes deep-link correctly.
type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
