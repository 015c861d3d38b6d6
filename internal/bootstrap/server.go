package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/metrics"
	"github.com/Domenick1991/flightbooking/internal/service/auth"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	shutdownTimeout = 5 * time.Second
	probeInterval   = 10 * time.Second
)

// Probe reports whether a dependency is usable.
type Probe func(ctx context.Context) error

type Deps struct {
	Log      *zap.Logger
	Flights  flights.FlightUseCase
	Bookings booking.BookingUseCase
	Auth     auth.AuthUseCase
	// Probes drive the gRPC health status served at /healthz.
	Probes map[string]Probe
	// Workers run alongside the servers and stop with them.
	Workers []func(ctx context.Context) error
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
	conn       *grpc.ClientConn
}

// Run starts the gRPC health server, the HTTP API and the workers, and blocks
// until ctx is canceled or one of them fails.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	s, err := newServers(cfg, deps)
	if err != nil {
		return err
	}
	defer s.conn.Close()

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		deps.Log.Info("grpc server started", zap.String("address", cfg.GRPC.Address))
		return s.grpcServer.Serve(lis)
	})
	g.Go(func() error {
		deps.Log.Info("http server started", zap.String("address", cfg.HTTP.Address))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		watchHealth(ctx, s.health, deps.Probes, deps.Log)
		return nil
	})
	for _, worker := range deps.Workers {
		worker := worker
		g.Go(func() error { return worker(ctx) })
	}

	g.Go(func() error {
		<-ctx.Done()
		deps.Log.Info("shutting down servers")
		s.health.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newServers(cfg *config.Config, deps Deps) (*Servers, error) {
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)

	conn, err := grpc.NewClient(cfg.GRPC.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial gRPC health endpoint: %w", err)
	}

	engine := newEngine(cfg, deps, healthpb.NewHealthClient(conn))

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		health: healthSrv,
		conn:   conn,
	}, nil
}

func newEngine(cfg *config.Config, deps Deps, healthClient healthpb.HealthClient) *gin.Engine {
	metrics.Register()

	r := gin.New()
	r.Use(gin.Recovery(), api.RequestID(), api.RequestLogger(deps.Log), metrics.GinMiddleware())

	gateway := runtime.NewServeMux(runtime.WithHealthzEndpoint(healthClient))
	r.GET("/healthz", gin.WrapH(gateway))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.HTTP.SwaggerDir != "" {
		r.StaticFile("/docs/swagger.json", filepath.Join(cfg.HTTP.SwaggerDir, "swagger.json"))
		r.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/docs/swagger.json"))))
	}

	requireAuth := api.RequireAuth(deps.Auth, deps.Log)
	root := r.Group("")
	api.NewUserHandler(deps.Auth, deps.Bookings, requireAuth, deps.Log).Register(root.Group("/users"))
	api.NewFlightHandler(deps.Flights, requireAuth, deps.Log).Register(root.Group("/flights"))
	api.NewBookingHandler(deps.Bookings, requireAuth, deps.Log).Register(root)

	return r
}

// watchHealth keeps the overall serving status in line with the probes
// until ctx is done.
func watchHealth(ctx context.Context, srv *health.Server, probes map[string]Probe, log *zap.Logger) {
	check := func() {
		status := healthpb.HealthCheckResponse_SERVING
		for name, probe := range probes {
			probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := probe(probeCtx)
			cancel()
			if err != nil {
				log.Warn("health probe failed", zap.String("dependency", name), zap.Error(err))
				status = healthpb.HealthCheckResponse_NOT_SERVING
			}
		}
		srv.SetServingStatus("", status)
	}

	check()
	t := time.NewTicker(probeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			check()
		}
	}
}
