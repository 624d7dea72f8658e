package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trunghai04/webmoi-sub001/config"
	"github.com/trunghai04/webmoi-sub001/internal/cache"
	"github.com/trunghai04/webmoi-sub001/internal/observability"
	"github.com/trunghai04/webmoi-sub001/internal/producer"
	"github.com/trunghai04/webmoi-sub001/internal/repository"
	"github.com/trunghai04/webmoi-sub001/internal/router"
	"github.com/trunghai04/webmoi-sub001/internal/service"
	"github.com/trunghai04/webmoi-sub001/internal/token"
	"github.com/trunghai04/webmoi-sub001/pkg/database"
	"github.com/trunghai04/webmoi-sub001/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	jwtCfg := config.LoadJWT(log)

	if cfg.Otel.Enabled {
		shutdown, err := observability.SetupTracing(context.Background(), observability.TracingConfig{
			Endpoint: cfg.Otel.Endpoint,
			Insecure: true,
		})
		if err != nil {
			log.Fatal("Не удалось настроить трассировку", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Warn("Ошибка при остановке трассировки", zap.Error(err))
			}
		}()
	}

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	// Кэш и шина событий опциональны: nil отключает их в сервисе
	var statsCache service.StatsCache
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSeconds)*time.Second, log)
		if err != nil {
			log.Fatal("Не удалось подключиться к Redis", zap.Error(err))
		}
		defer rc.Close()
		statsCache = rc
	}

	var events service.EventBus
	if cfg.Kafka.Enabled() {
		p := producer.NewOrderEventProducer(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic)
		defer func() {
			if err := p.Close(); err != nil {
				log.Warn("Ошибка при закрытии Kafka producer", zap.Error(err))
			}
		}()
		events = p
	}

	orders := service.NewOrderService(repos, events, statsCache, log)
	cart := service.NewCartService(repos, log)

	r := router.Router(router.Deps{
		Orders:         orders,
		Cart:           cart,
		Verifier:       token.NewHSVerifier(jwtCfg.AccessSecret, jwtCfg.Issuer, jwtCfg.Audience),
		Log:            log,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var grpcServer *grpc.Server
	if cfg.GRPCHealthPort != "" {
		lis, err := net.Listen("tcp", cfg.GRPCHealthPort)
		if err != nil {
			log.Fatal("failed to listen", zap.Error(err))
		}
		grpcServer = grpc.NewServer()

		// Health server
		healthSrv := health.NewServer()
		healthSrv.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		grpc_health_v1.RegisterHealthServer(grpcServer, healthSrv)

		// Reflection for local debugging
		reflection.Register(grpcServer)

		go func() {
			log.Info("Starting gRPC health server", zap.String("addr", cfg.GRPCHealthPort))
			if err := grpcServer.Serve(lis); err != nil {
				log.Fatal("gRPC server failed", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	log.Info("Server stopped gracefully")
}
