package app

import (
	"context"

	"nuitka-toolkit/internal/logger"
	"nuitka-toolkit/internal/shutdown"
)

// Lifecycle owns the shutdown order of the running application.
// Components stop in reverse registration order.
type Lifecycle struct {
	manager *shutdown.Manager
	logger  logger.Logger
}

func NewLifecycle(log logger.Logger) *Lifecycle {
	return &Lifecycle{
		manager: shutdown.NewManager(log),
		logger:  log,
	}
}

func (l *Lifecycle) Register(name string, c shutdown.Shutdownable) {
	l.manager.Register(name, c)
}

// Context is cancelled as soon as shutdown begins. Builds started with it
// are killed on exit.
func (l *Lifecycle) Context() context.Context {
	return l.manager.Context()
}

// ListenForSignals shuts down on SIGINT/SIGTERM and then calls quit.
func (l *Lifecycle) ListenForSignals(quit func()) {
	l.manager.Listen(quit)
}

func (l *Lifecycle) Shutdown() {
	select {
	case <-l.manager.Done():
		return
	default:
	}
	l.logger.Info("Lifecycle", "shutdown sequence initiated", nil)
	l.manager.Shutdown()
}
