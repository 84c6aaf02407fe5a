package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/Domenick1991/busalert/config"
	_ "github.com/Domenick1991/busalert/docs"
	healthapi "github.com/Domenick1991/busalert/internal/api/health_service_api"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

const healthCheckInterval = 15 * time.Second

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *healthapi.Server
}

// Run starts the HTTP API and, when an address is configured, the gRPC health
// server. It blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, router *gin.Engine, health *healthapi.Server) error {
	s := newServers(cfg, router, health)

	errCh := make(chan error, 2)

	if s.grpcServer != nil {
		lis, err := net.Listen("tcp", cfg.GRPC.Address)
		if err != nil {
			return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
		}
		go func() { errCh <- s.grpcServer.Serve(lis) }()
		go s.health.Run(ctx, healthCheckInterval)
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if s.grpcServer != nil {
			s.grpcServer.GracefulStop()
		}
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, router *gin.Engine, health *healthapi.Server) *Servers {
	s := &Servers{
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           NewHTTPHandler(router),
			ReadHeaderTimeout: 10 * time.Second,
		},
		health: health,
	}

	if cfg.GRPC.Address != "" && health != nil {
		s.grpcServer = grpc.NewServer()
		health.Register(s.grpcServer)
		reflection.Register(s.grpcServer)
	}
	return s
}

// NewHTTPHandler mounts the API document on router and wraps it with access
// logging, panic recovery and proxy header handling.
func NewHTTPHandler(router *gin.Engine) http.Handler {
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))))

	var h http.Handler = router
	h = handlers.CombinedLoggingHandler(os.Stdout, h)
	h = handlers.ProxyHeaders(h)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
}
