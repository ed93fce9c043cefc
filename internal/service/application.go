package service

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"

	"traffic-recorder/internal/capture"
	"traffic-recorder/internal/config"
	deliveryhttp "traffic-recorder/internal/delivery/http"
	"traffic-recorder/internal/infrastructure/logger"
	"traffic-recorder/internal/infrastructure/repository"
	"traffic-recorder/internal/infrastructure/store"
	"traffic-recorder/internal/server"
	"traffic-recorder/internal/usecase"
)

// Options is the full dependency graph of the recorder service
func Options() fx.Option {
	return fx.Options(
		fx.WithLogger(logger.FxLogger),

		// Configuration
		config.Module,

		// Infrastructure
		logger.Module,
		store.Module,
		repository.Module,

		// Capture engine
		capture.Module,

		// Business Logic
		usecase.Module,

		// Delivery
		deliveryhttp.Module,

		// Server
		server.Module,
	)
}

// Application wraps the fx.App so it can be started and stopped from outside
type Application struct {
	app      *fx.App
	ctx      context.Context
	cancel   context.CancelFunc
	doneChan chan struct{}
	extra    []fx.Option
}

// NewApplication creates a new Application instance. Extra options are
// appended to the default graph, e.g. fx.Replace for a custom config.
func NewApplication(extra ...fx.Option) *Application {
	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		ctx:      ctx,
		cancel:   cancel,
		doneChan: make(chan struct{}),
		extra:    extra,
	}
}

// Run starts the application and blocks until a signal or Shutdown
func (a *Application) Run() error {
	defer close(a.doneChan)

	a.app = fx.New(append([]fx.Option{Options()}, a.extra...)...)
	if err := a.app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(a.ctx, a.app.StartTimeout())
	defer cancel()
	if err := a.app.Start(startCtx); err != nil {
		return err
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
	case <-a.ctx.Done():
	}

	return a.stop()
}

// Shutdown asks a running application to stop
func (a *Application) Shutdown() {
	a.cancel()
}

// Wait blocks until Run returns
func (a *Application) Wait() {
	<-a.doneChan
}

func (a *Application) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.app.StopTimeout())
	defer cancel()
	return a.app.Stop(ctx)
}
