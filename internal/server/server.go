package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Config holds listener settings.
type Config struct {
	HTTPAddr       string
	GRPCAddr       string // empty disables the gRPC health listener
	MaxUploadBytes int64
}

// Server serves the HTTP API and, optionally, a gRPC health endpoint.
type Server struct {
	cfg    Config
	engine *gin.Engine
	health *health.Server
	logger *slog.Logger
}

func NewServer(cfg Config, api *API, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(RequestLogger(logger))
	// multipart framing adds a little on top of the file itself
	engine.Use(MaxBodySize(cfg.MaxUploadBytes + 1<<20))
	engine.Use(CORS())
	registerRoutes(engine, api)

	return &Server{cfg: cfg, engine: engine, health: health.NewServer(), logger: logger}
}

// Handler exposes the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run blocks until ctx is cancelled or a listener fails, then shuts everything down.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 2)

	go func() {
		s.logger.Info("server.http.listening", "addr", s.cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var grpcSrv *grpc.Server
	if s.cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", s.cfg.GRPCAddr)
		if err != nil {
			_ = httpSrv.Close()
			return err
		}
		grpcSrv = grpc.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcSrv, s.health)
		// Set the service as serving (empty string means overall server health)
		s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		go func() {
			s.logger.Info("server.grpc.listening", "addr", s.cfg.GRPCAddr)
			if err := grpcSrv.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("server.shutdown", "reason", ctx.Err())
	case runErr = <-errCh:
		s.logger.Error("server.listener.failed", "error", runErr)
	}

	s.health.Shutdown()
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
