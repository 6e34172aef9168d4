package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"tripplanner.dev/gtfs"
)

const (
	DefaultRequestTimeout  = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// HTTP surface over the transit data services.
type Server struct {
	Static    *gtfs.StaticCache
	Resolver  *gtfs.Resolver
	Assembler *gtfs.Assembler
	Vehicles  gtfs.VehicleSource
	Delays    *gtfs.DelayLog

	AllowedOrigins []string
	RequestTimeout time.Duration
	TimeNow        func() time.Time
	Logger         *slog.Logger
}

func NewServer(
	static *gtfs.StaticCache,
	vehicles gtfs.VehicleSource,
	delays *gtfs.DelayLog,
	mapCfg gtfs.AssemblerConfig,
) *Server {
	return &Server{
		Static:         static,
		Resolver:       gtfs.NewResolver(static),
		Assembler:      gtfs.NewAssembler(static, vehicles, mapCfg),
		Vehicles:       vehicles,
		Delays:         delays,
		AllowedOrigins: []string{"*"},
		RequestTimeout: DefaultRequestTimeout,
		TimeNow:        time.Now,
		Logger:         slog.Default(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	// Served both at the root and under /api.
	routes := func(r chi.Router) {
		r.Get("/gtfsData", s.handleGTFSData)
		r.Get("/findRoute", s.handleFindRoute)
		r.Get("/vehiclePositions", s.handleVehiclePositions)
		r.Get("/mapData", s.handleMapData)
		r.Get("/delays", s.handleListDelays)
		r.Post("/delays", s.handleSubmitDelay)
		r.Get("/routeStatus", s.handleRouteStatus)
	}
	routes(r)
	r.Route("/api", routes)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.Logger.Info(
			"request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.RequestTimeout)
}

// Serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      s.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.Logger.Info("server listening", "addr", addr)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	err := server.Shutdown(shutdownCtx)
	if err != nil {
		s.Logger.Error("server shutdown", "err", err)
		return err
	}

	s.Logger.Info("server shut down")
	return nil
}
