package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	pb "github.com/ponyo877/livechat/chatpb"
	"github.com/ponyo877/livechat/server/adaptor"
	"github.com/ponyo877/livechat/server/config"
	"github.com/ponyo877/livechat/server/domain"
	"github.com/ponyo877/livechat/server/logging"
	"github.com/ponyo877/livechat/server/repository"
	"github.com/ponyo877/livechat/server/usecase"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	configPath := flag.String("config", "", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := logging.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}
	logger := logging.Init(cfg.Log, "livechat")
	if cfg.UsesDefaultSecret() {
		logger.Warn().Msg("SESSION_SECRET is not set, using the development default")
	}

	rp := repository.NewRepository(cfg.Presence.Capacity, cfg.Presence.TTL)
	bus := domain.NewEventBus()
	uc := usecase.NewUsecase(rp, bus, logger)
	suc := usecase.NewStreamUsecase(uc, rp, bus, domain.NewStreamManager(), cfg.Stream.BufferSize, logger)
	sessions := adaptor.NewSessionStore(cfg.Session.Secret, cfg.Session.MaxAge, cfg.Session.CookieName, cfg.Session.Secure)

	router := adaptor.NewHTTPHandler(uc, suc, sessions).Routes()
	router.Use(logging.HTTPMiddleware(logger))
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(logging.UnaryServerInterceptor(logger)),
		grpc.ChainStreamInterceptor(logging.StreamServerInterceptor(logger)),
	)
	pb.RegisterChatServiceServer(grpcServer, adaptor.NewAdaptor(uc, suc, sessions))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr())
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.Server.GRPCAddr()).Msg("failed to listen")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", httpServer.Addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info().Str("addr", lis.Addr().String()).Msg("grpc server listening")
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		healthServer.Shutdown()

		closed := suc.CloseAll()
		logger.Info().Int("streams", closed).Msg("closed live streams")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
	logger.Info().Msg("server stopped")
}
