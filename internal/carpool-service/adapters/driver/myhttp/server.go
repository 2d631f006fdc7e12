package myhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carpool/internal/carpool-service/adapters/driven/bm"
	"carpool/internal/carpool-service/adapters/driven/cache"
	"carpool/internal/carpool-service/adapters/driven/db"
	"carpool/internal/carpool-service/adapters/driver/myhttp/handle"
	"carpool/internal/carpool-service/adapters/driver/myhttp/middleware"
	"carpool/internal/carpool-service/adapters/driver/myhttp/ws"
	"carpool/internal/carpool-service/core/ports"
	"carpool/internal/carpool-service/core/services"
	"carpool/internal/config"
	"carpool/internal/mylogger"
)

const migrationsDir = "migrations"

type Server struct {
	router   *mux.Router
	cfg      *config.Config
	srv      *http.Server
	mylog    mylogger.Logger
	pool     *pgxpool.Pool
	mb       ports.INotifyBroker
	notifSvc *services.NotificationsService
	ctx      context.Context
	mu       sync.Mutex
}

func NewServer(ctx context.Context, mylog mylogger.Logger, cfg *config.Config) *Server {
	return &Server{
		ctx:    ctx,
		cfg:    cfg,
		mylog:  mylog,
		router: mux.NewRouter(),
	}
}

// Run initializes routes and starts listening. It returns when the server stops.
func (s *Server) Run() error {
	mylog := s.mylog.Action("server_started")

	pool, err := db.Connect(s.ctx, s.cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.pool = pool
	mylog.Info("Successful database connection")

	if s.cfg.Srv.RunMigrations {
		if err := db.RunMigrations(s.ctx, pool, migrationsDir, s.mylog); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	mb, err := bm.New(s.ctx, *s.cfg.RabbitMq, s.mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	s.mb = mb
	mylog.Info("Successful message broker connection")

	s.Configure()

	go s.notifSvc.RunRetention(s.ctx)

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%v", s.cfg.Srv.Port),
		Handler: s.router,
	}
	s.mu.Unlock()

	mylog.WithGroup("details").With("port", s.cfg.Srv.Port).Info("server is running")
	return s.startHTTPServer()
}

// Stop provides a programmatic shutdown. Accepts a context for timeout control.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mylog.Info("Shutting down HTTP server...")

	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Srv.ShutdownTimeout)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.mylog.Error("Failed to shut down HTTP server gracefully", err)
			return fmt.Errorf("http server shutdown: %w", err)
		}
	}

	if s.mb != nil {
		if err := s.mb.Close(); err != nil {
			s.mylog.Error("Failed to close message broker", err)
		}
	}

	if s.pool != nil {
		s.pool.Close()
		s.mylog.Info("Database closed")
	}

	s.mylog.Info("HTTP server shut down gracefully")
	return nil
}

func (s *Server) startHTTPServer() error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	select {
	case <-s.ctx.Done():
		return s.Stop(context.Background())
	case err := <-errCh:
		return err
	}
}

// Configure wires repositories, services and routes.
func (s *Server) Configure() {
	// Repositories
	offersRepo := db.NewOffersRepo(s.pool)
	requestsRepo := db.NewRequestsRepo(s.pool)
	notificationsRepo := db.NewNotificationsRepo(s.pool)
	ratingsRepo := db.NewRatingsRepo(s.pool)
	adminRepo := db.NewAdminRepo(s.pool)

	var unreadCache ports.IUnreadCache
	if s.cfg.Redis.Addr != "" {
		unreadCache = cache.New(s.cfg.Redis)
	}

	wsDispatcher := ws.NewDispatcher(s.mylog)

	// Services
	dispatcher := services.NewDispatcher(s.mylog, notificationsRepo, wsDispatcher, s.mb, unreadCache, s.cfg.Notify.DispatchTimeout)
	offersService := services.NewOffersService(s.mylog, offersRepo, requestsRepo, dispatcher)
	requestsService := services.NewRequestsService(s.mylog, offersRepo, requestsRepo, dispatcher)
	ridesService := services.NewRideExecService(s.mylog, offersRepo, requestsRepo, dispatcher)
	ratingsService := services.NewRatingsService(s.mylog, offersRepo, requestsRepo, ratingsRepo, dispatcher)
	s.notifSvc = services.NewNotificationsService(s.mylog, notificationsRepo, unreadCache, s.cfg.Notify.Retention, s.cfg.Notify.SweepInterval)
	adminService := services.NewAdminService(s.mylog, adminRepo)

	// Handlers
	offersHandler := handle.NewOffersHandler(offersService, s.mylog)
	requestsHandler := handle.NewRequestsHandler(requestsService, s.mylog)
	ridesHandler := handle.NewRidesHandler(ridesService, s.mylog)
	ratingsHandler := handle.NewRatingsHandler(ratingsService, s.mylog)
	notificationsHandler := handle.NewNotificationsHandler(s.notifSvc, s.mylog)
	adminHandler := handle.NewAdminHandler(adminService, s.mylog)

	obs := middleware.NewObservability(s.mylog)
	auth := middleware.NewAuthMiddleware(s.cfg.Auth.AccessSecret)

	s.router.Use(obs.Wrap)

	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/").Subrouter()
	api.Use(auth.Wrap)

	api.Handle("/offers", offersHandler.Create()).Methods(http.MethodPost)
	api.Handle("/offers", offersHandler.List()).Methods(http.MethodGet)
	api.Handle("/offers/{offer_id}", offersHandler.Get()).Methods(http.MethodGet)
	api.Handle("/offers/{offer_id}", offersHandler.Update()).Methods(http.MethodPut)
	api.Handle("/offers/{offer_id}", offersHandler.Cancel()).Methods(http.MethodDelete)

	api.Handle("/requests", requestsHandler.Create()).Methods(http.MethodPost)
	api.Handle("/requests", requestsHandler.List()).Methods(http.MethodGet)
	api.Handle("/requests/{request_id}/accept", requestsHandler.Accept()).Methods(http.MethodPut)
	api.Handle("/requests/{request_id}/reject", requestsHandler.Reject()).Methods(http.MethodPut)

	api.Handle("/rides/{offer_id}/start", ridesHandler.Start()).Methods(http.MethodPut)
	api.Handle("/rides/{offer_id}/pickup/{request_id}", ridesHandler.Pickup()).Methods(http.MethodPut)
	api.Handle("/rides/{offer_id}/complete", ridesHandler.Complete()).Methods(http.MethodPut)

	api.Handle("/ratings/{offer_id}", ratingsHandler.Submit()).Methods(http.MethodPost)

	api.Handle("/notifications", notificationsHandler.List()).Methods(http.MethodGet)
	api.Handle("/notifications/unread-count", notificationsHandler.UnreadCount()).Methods(http.MethodGet)
	api.Handle("/notifications/read-all", notificationsHandler.MarkAllRead()).Methods(http.MethodPut)
	api.Handle("/notifications/{notification_id}/read", notificationsHandler.MarkRead()).Methods(http.MethodPut)

	api.Handle("/admin/overview", adminHandler.Overview()).Methods(http.MethodGet)
	api.Handle("/admin/rides", adminHandler.LiveRides()).Methods(http.MethodGet)

	api.Handle("/ws", wsDispatcher.Handler()).Methods(http.MethodGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := map[string]string{"db": "ok", "broker": "ok"}

	if err := s.pool.Ping(r.Context()); err != nil {
		checks["db"] = "down"
		status = http.StatusServiceUnavailable
	}
	if s.mb == nil || !s.mb.IsAlive() {
		checks["broker"] = "down"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(checks)
}
