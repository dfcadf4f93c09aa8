package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/expertbooking/config"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Runner is a background component that works until its context ends.
type Runner interface {
	Run(ctx context.Context) error
}

const shutdownTimeout = 5 * time.Second

// Run serves handler and the background runners, and blocks until ctx is
// canceled or one of them fails. The HTTP server is drained first so no
// request publishes into stopped runners.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, handler http.Handler, runners ...Runner) error {
	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, cancelRunners := context.WithCancel(context.Background())
	defer cancelRunners()

	g, gctx := errgroup.WithContext(ctx)

	for _, r := range runners {
		g.Go(func() error {
			if err := r.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		log.Info("http server listening", zap.String("address", cfg.HTTP.Address))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpSrv.Shutdown(shutdownCtx)
		cancelRunners()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}
