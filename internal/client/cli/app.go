package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nailstudio/agenda/internal/client/client"
	"github.com/nailstudio/agenda/internal/client/config"
	"github.com/nailstudio/agenda/internal/client/migrations"
	"github.com/nailstudio/agenda/internal/client/models"
	"github.com/nailstudio/agenda/internal/client/notify"
	"github.com/nailstudio/agenda/internal/client/router"
	"github.com/nailstudio/agenda/internal/client/services"
	"github.com/nailstudio/agenda/internal/client/session"
	"github.com/nailstudio/agenda/internal/dbx"
	"github.com/nailstudio/agenda/internal/logging"
)

type App struct {
	log      logging.Logger
	store    *session.Store
	sessions *session.Manager
	api      *client.Client
	nav      *router.Navigator
	notifier notify.Notifier

	auth         services.AuthService
	users        services.UserService
	clients      services.ClientService
	catalog      services.CatalogService
	appointments services.AppointmentService

	reader *bufio.Reader
	out    io.Writer

	screen  screen
	closers []func() error
}

// Deps are the collaborators of an App. NewApp builds them from
// configuration; tests assemble their own.
type Deps struct {
	Log      logging.Logger
	Store    *session.Store
	API      *client.Client
	Notifier notify.Notifier
	In       io.Reader
	Out      io.Writer
}

// NewApp wires configuration, logging, the local session store, the API
// client and the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	log, logCloser, err := openLogger(c)
	if err != nil {
		return nil, err
	}

	store, storeCloser, err := openStore(ctx, c, log)
	if err != nil {
		_ = logCloser()
		return nil, err
	}

	notifier := notify.NewConsole(os.Stdout)
	api := client.New(c.APIBaseURL, store,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log.With("component", "http")),
		client.WithNotifier(notifier),
	)

	a := newApp(Deps{Log: log, Store: store, API: api, Notifier: notifier, In: os.Stdin, Out: os.Stdout})
	a.closers = append(a.closers, storeCloser, logCloser)
	return a, nil
}

func newApp(d Deps) *App {
	a := &App{
		log:          d.Log,
		store:        d.Store,
		sessions:     session.NewManager(d.Store, d.Log),
		api:          d.API,
		notifier:     d.Notifier,
		reader:       bufio.NewReader(d.In),
		out:          d.Out,
		users:        services.NewUserService(d.API),
		clients:      services.NewClientService(d.API),
		catalog:      services.NewCatalogService(d.API),
		appointments: services.NewAppointmentService(d.API),
	}
	a.auth = services.NewAuthService(d.API, a.sessions)
	a.nav = router.NewNavigator(router.Default(), a.sessions.Current)

	// The request client has already cleared storage; forget the session in
	// memory and go to the login screen once the current command returns.
	a.api.SetUnauthorizedHook(func() {
		a.sessions.Expire(context.Background())
		a.nav.Redirect(router.LoginPath)
	})

	a.sessions.Subscribe(func(s models.Session) {
		if s.Authenticated() {
			a.log.Debug(context.Background(), "session changed", "user", s.User.Username, "role", s.User.Role)
		} else {
			a.log.Debug(context.Background(), "session changed", "user", "")
		}
	})
	return a
}

func openLogger(c *config.Config) (logging.Logger, func() error, error) {
	if c.LogFile == "" || c.LogFile == "-" {
		return logging.New(os.Stderr, c.LogLevel, c.LogFormat), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(c.LogFile), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logging.New(f, c.LogLevel, c.LogFormat), f.Close, nil
}

func openStore(ctx context.Context, c *config.Config, log logging.Logger) (*session.Store, func() error, error) {
	switch c.SessionBackend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr, DB: c.RedisDB})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connect to redis %s: %w", c.RedisAddr, err)
		}
		return session.NewRedisStore(rdb, c.RedisPrefix, log.With("component", "session")), rdb.Close, nil

	default:
		if c.DBPath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(c.DBPath), 0o700); err != nil {
				return nil, nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		db, err := dbx.OpenSQLite(ctx, c.DBPath, migrations.Migrations)
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing database: %w", err)
		}
		return session.NewSQLiteStore(db, log.With("component", "session")), db.Close, nil
	}
}

// Close releases the database, Redis connection and log file.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Run restores the session, shows the first screen and blocks in the REPL
// until the user exits. Nothing is rendered before the restore completes.
func (a *App) Run(ctx context.Context, start string) {
	if _, err := a.sessions.Restore(ctx); err != nil {
		a.log.Error(ctx, "starting signed out", "error", err)
	}
	if start == "" {
		start = "/"
	}

	fmt.Fprintln(a.out, "Welcome to the studio agenda (type 'help' for commands)")
	_ = a.Open(ctx, start)
	a.afterCommand(ctx)

	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Current().Authenticated()
}

func (a *App) status() string {
	who := "guest"
	if s := a.sessions.Current(); s.Authenticated() {
		who = s.User.Username
	}
	return fmt.Sprintf("(%s %s)", who, a.nav.Current().Path)
}
