package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"safewalk-client/internal/api"
	"safewalk-client/internal/config"
	"safewalk-client/internal/server"
	"safewalk-client/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig   func() config.Config
	connectRedis func(config.Config) *redis.Client
	notify       func(chan<- os.Signal, ...os.Signal)
	run          func(context.Context, config.Config, *redis.Client, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:   config.Load,
		connectRedis: storage.ConnectRedis,
		notify:       signal.Notify,
		run:          Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()

	rdb := deps.connectRedis(cfg)

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, rdb, signals, nil); err != nil {
		log.Printf("server exited with error: %v", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// openStore prefers redis for bookmark persistence when one is configured
// and falls back to the local file store otherwise.
func openStore(cfg config.Config, rdb *redis.Client) storage.Store {
	if rdb != nil {
		return storage.NewRedisStore(rdb)
	}
	return storage.NewFileStore(cfg.DataDir)
}

// Run starts the gateway and waits for termination signals.
func Run(ctx context.Context, cfg config.Config, rdb *redis.Client, signals <-chan os.Signal, listen ListenFunc) error {
	backend := api.NewClient(cfg.BackendURL, time.Duration(cfg.BackendTimeoutSec)*time.Second)
	srv := server.NewServer(cfg, backend, openStore(cfg, rdb), rdb)

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}
