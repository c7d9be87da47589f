// catalogctl — консольный клиент каталога: вход/выход, просмотр листинга и записей.
// Использует те же конфиг, хранилище сессии и клиент бэкенда, что и catalog-web.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pribylovaa/go-catalog/internal/app"
	"github.com/pribylovaa/go-catalog/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c := newCLI(os.Stdout, openApp)
	err := c.rootCmd().ExecuteContext(ctx)
	c.close()

	if err != nil {
		os.Exit(1)
	}
}

// openApp — конфиг и сборка приложения; логи CLI идут в stderr, от Warn.
func openApp(ctx context.Context, configPath string) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(log)

	return app.New(ctx, cfg, log)
}
