// app — сборка зависимостей каталога (composition root), общая для
// catalog-web и catalogctl: клиент бэкенда, долговременное хранилище,
// контроллер листинга, сессия и предпочтения.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/go-catalog/internal/clients"
	"github.com/pribylovaa/go-catalog/internal/config"
	"github.com/pribylovaa/go-catalog/internal/models"
	"github.com/pribylovaa/go-catalog/internal/prefs"
	"github.com/pribylovaa/go-catalog/internal/service"
	"github.com/pribylovaa/go-catalog/internal/session"
	"github.com/pribylovaa/go-catalog/internal/storage"
	"github.com/pribylovaa/go-catalog/internal/storage/memory"
	"github.com/pribylovaa/go-catalog/internal/storage/postgres"
	"github.com/pribylovaa/go-catalog/internal/storage/redis"
	"github.com/pribylovaa/go-catalog/internal/storage/sqlite"
)

type App struct {
	Config  *config.Config
	Log     *slog.Logger
	Clients *clients.Clients
	Storage storage.LocalStorage
	Catalog *service.Catalog
	Session *session.Store
	Prefs   *prefs.Preferences
}

// New собирает приложение. Сеть при сборке не трогается,
// кроме подключения к redis/postgres, если выбран такой драйвер.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	const op = "app.New"

	if log == nil {
		log = slog.Default()
	}

	cl, err := clients.New(*cfg, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p, err := prefs.New(models.AdNetwork(cfg.Ads.Default), prefs.Templates{
		models.AdNetworkLinkvertise: cfg.Ads.Linkvertise,
		models.AdNetworkAdMaven:     cfg.Ads.AdMaven,
	})
	if err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	st, err := OpenStorage(ctx, cfg.Storage)
	if err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("storage_opened", slog.String("driver", cfg.Storage.Driver))

	sess := session.New(cl.Backend, st,
		session.WithLogger(log),
		session.WithFallbackPolicy(FallbackPolicy(cfg.Session.FallbackPolicy)),
	)

	return &App{
		Config:  cfg,
		Log:     log,
		Clients: cl,
		Storage: st,
		Catalog: service.NewCatalog(cl.Backend),
		Session: sess,
		Prefs:   p,
	}, nil
}

// Close освобождает хранилище и соединения бэкенда.
func (a *App) Close() error {
	return errors.Join(a.Storage.Close(), a.Clients.Close())
}

// OpenStorage открывает драйвер долговременного хранилища по конфигу.
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (storage.LocalStorage, error) {
	const op = "app.OpenStorage"

	var (
		st  storage.LocalStorage
		err error
	)

	switch cfg.Driver {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageSQLite:
		st, err = sqlite.New(ctx, cfg.Path)
	case config.StorageRedis:
		st, err = redis.New(ctx, cfg.RedisURL, cfg.RedisPrefix)
	case config.StoragePostgres:
		st, err = postgres.New(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("%s: %w: %q", op, config.ErrUnknownStorage, cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, cfg.Driver, err)
	}

	return st, nil
}

// FallbackPolicy переводит значение конфига в политику сессии.
func FallbackPolicy(s string) session.FallbackPolicy {
	if s == config.FallbackStrict {
		return session.StrictSession
	}

	return session.StaleSessionFallback
}
