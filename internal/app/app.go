// Package app assembles the client from configuration: storage backends,
// session store, gateway and the flow controllers.
package app

import (
	"context"
	"io"

	"github.com/jrsteele09/planora-client/dashboard"
	"github.com/jrsteele09/planora-client/gateway"
	"github.com/jrsteele09/planora-client/internal/config"
	"github.com/jrsteele09/planora-client/login"
	"github.com/jrsteele09/planora-client/navigation"
	"github.com/jrsteele09/planora-client/otp"
	"github.com/jrsteele09/planora-client/recovery"
	"github.com/jrsteele09/planora-client/registration"
	"github.com/jrsteele09/planora-client/session"
	"github.com/jrsteele09/planora-client/storage"
	"github.com/jrsteele09/planora-client/storage/filestore"
	"github.com/jrsteele09/planora-client/storage/memory"
	"github.com/jrsteele09/planora-client/storage/redisstore"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// App holds every component of one client process.
type App struct {
	Config       config.Config
	Logger       zerolog.Logger
	Sessions     *session.Store
	Gateway      *gateway.Client
	OTP          *otp.Handler
	Registration *registration.Controller
	Login        *login.Controller
	Recovery     *recovery.Controller
	Dashboard    *dashboard.Client
	Table        *navigation.Table
	Scheduler    *navigation.Scheduler

	closers []io.Closer
}

// New builds an App. The ephemeral scope is always process memory; the
// persistent scope uses the configured backend.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (_ *App, err error) {
	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	persistent, err := a.persistentBackend(ctx)
	if err != nil {
		return nil, err
	}
	kv, err := storage.NewScoped(memory.New(), persistent)
	if err != nil {
		return nil, errors.Wrap(err, "[app.New] storage")
	}

	if a.Sessions, err = session.NewStore(kv, session.WithLogger(component(logger, "session"))); err != nil {
		return nil, errors.Wrap(err, "[app.New] session store")
	}

	a.Gateway, err = gateway.New(cfg.GetAPIBaseURL(), a.Sessions,
		gateway.WithTimeout(cfg.GetAPITimeout()),
		gateway.WithLogger(component(logger, "gateway")),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[app.New] gateway")
	}

	if a.OTP, err = otp.NewHandler(a.Gateway, otp.WithLogger(component(logger, "otp"))); err != nil {
		return nil, errors.Wrap(err, "[app.New] otp handler")
	}
	if a.Registration, err = registration.NewController(a.OTP, registration.WithLogger(component(logger, "registration"))); err != nil {
		return nil, errors.Wrap(err, "[app.New] registration")
	}
	if a.Login, err = login.NewController(a.Gateway, a.Sessions, login.WithLogger(component(logger, "login"))); err != nil {
		return nil, errors.Wrap(err, "[app.New] login")
	}
	if a.Recovery, err = recovery.NewController(a.OTP, a.Gateway, recovery.WithLogger(component(logger, "recovery"))); err != nil {
		return nil, errors.Wrap(err, "[app.New] recovery")
	}
	if a.Dashboard, err = dashboard.NewClient(a.Gateway, dashboard.WithLogger(component(logger, "dashboard"))); err != nil {
		return nil, errors.Wrap(err, "[app.New] dashboard")
	}

	a.Table = navigation.NewTable(cfg.GetDelays())
	a.Scheduler = navigation.NewScheduler(navigation.WithLogger(component(logger, "navigation")))
	return a, nil
}

// Close cancels pending navigations and releases backend connections.
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.CancelAll()
	}
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (a *App) persistentBackend(ctx context.Context) (storage.Backend, error) {
	cfg := a.Config
	switch cfg.GetStorageBackend() {
	case config.BackendFile:
		store, err := filestore.New(cfg.GetSessionFile(),
			filestore.WithSecret(cfg.GetStorageSecret()),
			filestore.WithLogger(component(a.Logger, "filestore")),
		)
		if err != nil {
			return nil, errors.Wrap(err, "[app.persistentBackend] file")
		}
		a.Logger.Debug().Str("path", cfg.GetSessionFile()).Bool("sealed", cfg.GetStorageSecret() != "").Msg("using file session storage")
		return store, nil
	case config.BackendRedis:
		store, err := redisstore.Dial(ctx, &redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
		}, cfg.GetStorageProfile())
		if err != nil {
			return nil, errors.Wrap(err, "[app.persistentBackend] redis")
		}
		a.closers = append(a.closers, store)
		a.Logger.Debug().Str("addr", cfg.GetRedisAddr()).Msg("using redis session storage")
		return store, nil
	case config.BackendMemory:
		return memory.New(), nil
	}
	return nil, errors.Errorf("[app.persistentBackend] unknown storage backend %q", cfg.GetStorageBackend())
}

func component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
