package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/go-catalog/internal/app"
	"github.com/pribylovaa/go-catalog/internal/config"
	cathttp "github.com/pribylovaa/go-catalog/internal/http"
	"github.com/pribylovaa/go-catalog/internal/http/handlers"
	"github.com/pribylovaa/go-catalog/internal/http/views"
	grpchealth "github.com/pribylovaa/go-catalog/internal/transport/grpc"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting catalog-web", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	// Хранилище может быть сетевым (redis/postgres) — подключение с таймаутом.
	initCtx, initCancel := context.WithTimeout(rootCtx, 10*time.Second)
	a, err := app.New(initCtx, cfg, log)
	initCancel()
	if err != nil {
		log.Error("app_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if cerr := a.Close(); cerr != nil {
			log.Warn("app_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	renderer, err := views.New()
	if err != nil {
		log.Error("views_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	h := handlers.New(a.Catalog, a.Session, a.Prefs, renderer)
	webHandler := cathttp.NewRouter(h, cathttp.Options{
		Logger:      log,
		Timeout:     cfg.Timeouts.Service,
		CORSOrigins: cfg.CORS.AllowedOrigins,
	})

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", webHandler)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	httpLn, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}
	log.Info("http_listen_start", slog.String("addr", httpAddr))

	var healthSrv *grpchealth.Server
	var grpcLn net.Listener
	if cfg.GRPC.Port != "" {
		grpcAddr := cfg.GRPC.Addr()
		grpcLn, err = net.Listen("tcp", grpcAddr)
		if err != nil {
			log.Error("grpc_listen_failed", slog.String("addr", grpcAddr), slog.String("err", err.Error()))
			_ = httpLn.Close()
			os.Exit(1)
		}

		healthSrv = grpchealth.New(grpchealth.Options{
			Logger:     log,
			Timeout:    cfg.Timeouts.Service,
			Reflection: cfg.Env == envLocal || cfg.Env == envDev,
		})
		log.Info("grpc_listen_start", slog.String("addr", grpcAddr))
	}

	g, gctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		if err := httpSrv.Serve(httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if healthSrv != nil {
		g.Go(func() error { return healthSrv.Serve(grpcLn) })
	}

	// Инициализация сессии: сохранённый пользователь, затем свежий /auth/me.
	if err := a.Session.Hydrate(rootCtx); err != nil {
		log.Warn("session_hydrate_failed", slog.String("err", err.Error()))
	}
	a.Session.FetchCurrentUser(rootCtx)

	atomic.StoreInt32(&ready, 1)
	if healthSrv != nil {
		healthSrv.SetReady(true)
	}
	log.Info("catalog_ready")

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown_requested")

		atomic.StoreInt32(&ready, 0)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if healthSrv != nil {
			healthSrv.Stop(shutdownCtx)
		}

		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
		} else {
			log.Info("http_stopped")
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("serve_failed", slog.String("err", err.Error()))
	}

	log.Info("service_stopped")
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
