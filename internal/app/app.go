package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"wedding-rsvp/internal/auth"
	"wedding-rsvp/internal/config"
	"wedding-rsvp/internal/db"
	rsvpdomain "wedding-rsvp/internal/domain/rsvp"
	"wedding-rsvp/internal/repository/inmemory"
	rsvprepo "wedding-rsvp/internal/repository/postgres/rsvp"
	"wedding-rsvp/internal/transport/httpserver"
	"wedding-rsvp/internal/transport/httpserver/handler"
	"wedding-rsvp/internal/transport/httpserver/handler/common"
	"wedding-rsvp/internal/transport/httpserver/handler/rsvps"
	"wedding-rsvp/internal/transport/httpserver/middleware"
	"wedding-rsvp/pkg/logger"

	"gorm.io/gorm"
)

const rateLimitPruneInterval = 5 * time.Minute

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
	limiter    *middleware.RateLimiter
	rsvps      *rsvpdomain.Service
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing record store", "driver", cfg.Store.Driver)
	repo, dbConn, err := OpenRepository(cfg, log)
	if err != nil {
		return nil, err
	}
	rsvpService := rsvpdomain.NewService(repo)

	log.Info("app: initializing router")
	authClient := auth.NewClient(cfg.Supabase)
	authMiddleware := middleware.NewSupabaseAuth(cfg.Supabase, authClient, inmemory.NewInMemorySessionCache(), log)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.PublicRequests, cfg.RateLimit.Window, log)
	handlers := handler.New(
		common.New(authClient, authMiddleware, log),
		rsvps.New(rsvpService, log),
	)
	router := httpserver.NewRouter(cfg, handlers, authMiddleware, limiter)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
		limiter:    limiter,
		rsvps:      rsvpService,
	}, nil
}

// OpenRepository returns the Record Store selected by STORE_DRIVER. The gorm
// handle is nil for the in-memory store.
func OpenRepository(cfg config.Config, log logger.Logger) (rsvpdomain.Repository, *gorm.DB, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Warn("app: using in-memory record store, data is lost on exit")
		return inmemory.NewInMemoryRSVPRepository(), nil, nil
	case config.StoreDriverSQLite:
		dbConn, err := db.NewSQLite(cfg.Store.SQLitePath, cfg.DB, log)
		if err != nil {
			return nil, nil, err
		}
		return rsvprepo.NewPostgres(dbConn), dbConn, nil
	case config.StoreDriverPostgres:
		dbConn, err := db.NewPostgres(cfg.DB, log)
		if err != nil {
			return nil, nil, err
		}
		return rsvprepo.NewPostgres(dbConn), dbConn, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Config() config.Config {
	return a.cfg
}

func (a *App) RSVPs() *rsvpdomain.Service {
	return a.rsvps
}

// RunBackground starts housekeeping goroutines that stop with ctx.
func (a *App) RunBackground(ctx context.Context) {
	go a.limiter.Run(ctx, rateLimitPruneInterval)
}

func (a *App) Close() error {
	return CloseDB(a.db)
}

func CloseDB(dbConn *gorm.DB) error {
	if dbConn == nil {
		return nil
	}
	sqlDB, err := dbConn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
