package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/authflow/internal/client/config"
	"github.com/dmitrijs2005/authflow/internal/client/services"
	"github.com/dmitrijs2005/authflow/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pingTimeout bounds a single connectivity probe.
const pingTimeout = 3 * time.Second

type App struct {
	config      *config.Config
	authService services.AuthService
	logger      logging.Logger
	reader      *bufio.Reader
	out         io.Writer

	mu   sync.Mutex
	mode Mode
}

// NewApp builds the interactive client on top of a ready AuthService.
func NewApp(c *config.Config, as services.AuthService, logger logging.Logger) *App {
	if logger == nil {
		logger = logging.Nop()
	}
	return &App{
		config:      c,
		authService: as,
		logger:      logger,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.logger.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

// Run starts the background watchers and blocks in the REPL until the user
// exits or stdin closes. The AuthService is closed on return.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer func() {
		if err := a.authService.Close(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn(ctx, "close auth service", "err", err)
		}
	}()

	go a.watchState(ctx)
	if a.config != nil && a.config.PingInterval > 0 {
		go a.StartOnlineStatusWatcher(ctx, a.config.PingInterval)
	}

	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.authService.Session().LoggedIn
}

// watchState logs every flow transition until ctx ends.
func (a *App) watchState(ctx context.Context) {
	sub := a.authService.Subscribe()
	defer sub.Cancel()
	for {
		select {
		case st, ok := <-sub.C():
			if !ok {
				return
			}
			a.logger.Debug(ctx, "flow state", "state", st.String())
		case <-ctx.Done():
			return
		}
	}
}

// StartOnlineStatusWatcher pings the backend every interval and flips the
// connectivity mode shown in the prompt.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.authService.Ping(pctx)
	cancel()

	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}
