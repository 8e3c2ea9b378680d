package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/drstein77/shoppinglist/internal/config"
	"github.com/drstein77/shoppinglist/internal/controllers"
	"github.com/drstein77/shoppinglist/internal/dbkeeper"
	"github.com/drstein77/shoppinglist/internal/logger"
	"github.com/drstein77/shoppinglist/internal/middleware"
	"github.com/drstein77/shoppinglist/internal/storage"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

type Server struct {
	srv    *http.Server
	ctx    context.Context
	keeper *dbkeeper.DBKeeper
	Log    *logger.Logger
}

// NewServer parses options, connects to the database, applies migrations and
// mounts the routes. The returned server is ready to Serve.
func NewServer(ctx context.Context) (*Server, error) {
	option := config.NewOptions()
	option.ParseFlags()

	nLogger, err := logger.NewLogger(option.LogLevel())
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	keeper, err := dbkeeper.NewDBKeeper(ctx, option.DataBaseDSN, nLogger)
	if err != nil {
		return nil, err
	}

	if err := keeper.Migrate(option.MigrationsPath()); err != nil {
		keeper.Close()
		return nil, err
	}

	store := storage.NewStorage(keeper, keeper.Pool(), nLogger)
	basecontr := controllers.NewBaseController(store, nLogger)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(nLogger))
	r.Mount("/", basecontr.Route())

	return &Server{
		srv: &http.Server{
			Addr:              option.RunAddr(),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ctx:    ctx,
		keeper: keeper,
		Log:    nLogger,
	}, nil
}

// Serve blocks until the server is shut down.
func (server *Server) Serve() error {
	server.Log.Info("Starting server", zap.String("addr", server.srv.Addr))

	if err := server.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, waits up to timeout for in-flight ones
// and closes the database pool.
func (server *Server) Shutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.srv.Shutdown(ctx); err != nil {
		server.Log.Error("Server shutdown failed", zap.Error(err))
	}
	server.keeper.Close()
	_ = server.Log.Sync()
}
