package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/flightsurety/api"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Run starts the gRPC and HTTP servers and blocks until ctx is canceled or a
// server fails.
func (a *App) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", a.cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", a.cfg.GRPC.Address, err)
	}

	httpSrv := &http.Server{
		Addr:              a.cfg.HTTP.Address,
		Handler:           api.NewRouter(a.HTTPRouter, a.Registry, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("grpc listening", zap.String("addr", a.cfg.GRPC.Address))
		return a.GRPCServer.Serve(lis)
	})

	g.Go(func() error {
		a.logger.Info("http listening", zap.String("addr", a.cfg.HTTP.Address))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.GRPCServer.GracefulStop()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}
