package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	"github.com/m3rciful/slotbot/core/bootstrap"
	"github.com/m3rciful/slotbot/core/logger"
	tg "github.com/m3rciful/slotbot/core/telegram"
	"github.com/m3rciful/slotbot/core/telegram/router"
	"github.com/m3rciful/slotbot/core/telegram/state"
	"github.com/m3rciful/slotbot/internal/booking"
	"github.com/m3rciful/slotbot/internal/flow"
	"github.com/m3rciful/slotbot/internal/notify"
	"github.com/m3rciful/slotbot/internal/storage"

	tele "gopkg.in/telebot.v4"
)

// App wires the booking service, flow engine and Telegram surface.
type App struct {
	cfg *Config
	db  *sqlx.DB

	store    storage.Store
	svc      *booking.Service
	sessions state.Manager
	engine   *flow.Engine
	notifier *notify.Notifier
	reg      *tg.Registry
	cron     *cron.Cron
}

// New bootstraps infrastructure and the domain service. The postgres
// storage driver goes through the shared bootstrap pipeline so the
// schema is migrated before the first load; the file driver only needs
// the logger.
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}

	var db *sqlx.DB
	if cfg.Storage.Driver == "postgres" {
		res, err := bootstrap.Run(bootstrap.Options{
			Config:   &cfg.Core,
			Database: cfg.Database,
		})
		if err != nil {
			return nil, err
		}
		db = res.DB
	} else {
		if err := logger.InitLogger(&cfg.Core); err != nil {
			return nil, fmt.Errorf("app: logger init failed: %w", err)
		}
	}

	store, err := storage.Open(cfg.Storage, db)
	if err != nil {
		return nil, err
	}
	svc, err := booking.NewService(cfg.Booking, store)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		db:       db,
		store:    store,
		svc:      svc,
		sessions: state.NewMemoryManager(),
		notifier: notify.New(nil, svc),
	}
	a.engine = flow.NewEngine(a.sessions, flow.Options{
		CancelText:    btnCancel,
		CancelledText: msgCancelled,
		OnExit: func(c tele.Context) error {
			return a.sendMenu(c, msgWelcomeKnown)
		},
	})
	if err := a.registerFlows(); err != nil {
		return nil, err
	}
	return a, nil
}

// TelegramRunOptions assembles routes, middlewares and lifecycle hooks
// for the shared runtime.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()
	a.reg = reg
	a.registerCommands(reg)
	if err := a.registerCallbacks(reg); err != nil {
		return tg.RunOptions{}, err
	}
	reg.SetTextFallback(a.handleMenuText)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.svc.OwnerID(),
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.engine, reg, router.TextOptions{
		UnknownText: func(c tele.Context) error {
			return a.sendMenu(c, msgUnknownAction)
		},
	})...)

	return tg.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(&a.cfg.Core, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			a.notifier.SetDispatcher(rt.Dispatcher)
			return a.startAutosave()
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			return a.shutdown()
		},
	}, nil
}

// shutdown stops the autosave job, flushes state and releases the
// storage backend.
func (a *App) shutdown() error {
	a.stopAutosave()
	saveErr := a.svc.SaveAll()
	closeErr := a.store.Close()
	if a.db != nil {
		_ = a.db.Close()
	}
	if saveErr != nil {
		return saveErr
	}
	return closeErr
}
