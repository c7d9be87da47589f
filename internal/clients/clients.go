package clients

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/go-catalog/internal/clients/backend"
	"github.com/pribylovaa/go-catalog/internal/clients/interceptors"
	"github.com/pribylovaa/go-catalog/internal/config"
)

// Clients агрегирует клиентов внешних систем (сейчас — REST-бэкенд).
type Clients struct {
	Backend *backend.Client

	hc *http.Client
}

// New собирает HTTP-клиент бэкенда с цепочкой round-tripper'ов.
func New(cfg config.Config, log *slog.Logger) (*Clients, error) {
	const op = "internal/clients/New"

	userAgent := cfg.Backend.UserAgent
	if userAgent == "" {
		userAgent = "go-catalog"
	}

	// Цепочка: metadata -> timeout -> logging -> metrics -> транспорт.
	hc := &http.Client{
		Transport: interceptors.Chain(http.DefaultTransport.(*http.Transport).Clone(),
			interceptors.ClientWithMetadata(userAgent),
			interceptors.ClientWithTimeout(cfg.Timeouts.Backend),
			interceptors.ClientLogging(log),
			interceptors.ClientMetrics(),
		),
	}

	be, err := backend.New(cfg.Backend.BaseURL, hc)
	if err != nil {
		return nil, fmt.Errorf("%s: backend: %w", op, err)
	}

	return &Clients{Backend: be, hc: hc}, nil
}

// Close закрывает простаивающие соединения.
func (c *Clients) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}
