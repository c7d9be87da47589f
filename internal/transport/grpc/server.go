// transport/grpc — gRPC-сервер здоровья каталога (grpc.health.v1).
// Бизнес-эндпоинтов нет: сервер нужен оркестратору и балансировщикам,
// которые умеют только gRPC health-проверки.
//
// Статус:
//   - после New все сервисы NOT_SERVING;
//   - SetReady(true) после старта HTTP и первичной инициализации сессии;
//   - Stop переводит в NOT_SERVING до GracefulStop.
package grpc

import (
	"context"
	"log/slog"
	"net"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	health "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/pribylovaa/go-catalog/pkg/interceptors"
)

// ServiceName — имя сервиса в health-проверке помимо пустого ("весь сервер").
const ServiceName = "catalog"

// Options — параметры сервера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	// Reflection — регистрировать gRPC reflection (local/dev).
	Reflection bool
}

type Server struct {
	srv *grpc.Server
	hs  *health.Server
	log *slog.Logger
}

// New собирает сервер с интерсепторами и health-сервисом в статусе NOT_SERVING.
func New(opts Options) *Server {
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}

	grpc_prometheus.EnableHandlingTimeHistogram()

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.Recover(l),
			interceptors.UnaryLoggingInterceptor(l),
			interceptors.WithTimeout(opts.Timeout),
			grpc_prometheus.UnaryServerInterceptor,
		),
		grpc.ChainStreamInterceptor(
			grpc_prometheus.StreamServerInterceptor,
		),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	if opts.Reflection {
		reflection.Register(srv)
	}

	grpc_prometheus.Register(srv)

	s := &Server{srv: srv, hs: hs, log: l}
	s.SetReady(false)

	return s
}

// Serve блокируется до Stop; grpc.ErrServerStopped не считается ошибкой.
func (s *Server) Serve(lis net.Listener) error {
	if err := s.srv.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}

	return nil
}

// SetReady переключает SERVING/NOT_SERVING для "" и ServiceName.
func (s *Server) SetReady(ready bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		st = healthpb.HealthCheckResponse_SERVING
	}

	s.hs.SetServingStatus("", st)
	s.hs.SetServingStatus(ServiceName, st)
}

// Stop — NOT_SERVING, затем GracefulStop; по истечении ctx — жёсткий Stop.
func (s *Server) Stop(ctx context.Context) {
	s.SetReady(false)

	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("grpc_stopped")
	case <-ctx.Done():
		s.log.Warn("grpc_force_stop")
		s.srv.Stop()
		<-done
	}
}
