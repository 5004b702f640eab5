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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/LeonardoBeccarini/crop_recommender/internal/services/recommender"
	"github.com/LeonardoBeccarini/crop_recommender/internal/webui"
	"github.com/LeonardoBeccarini/crop_recommender/pkg/logging"
	"github.com/LeonardoBeccarini/crop_recommender/pkg/rabbitmq"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logging.New("crop-recommender", "info", "json").WithError(err).Fatal("config")
	}
	log := logging.New("crop-recommender", cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Recommender.RapidAPIKey == "" {
		log.Warn("RAPIDAPI_KEY is empty: climate lookups will be rejected upstream")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := recommender.NewMetrics(reg)

	deps := recommender.Dependencies{Metrics: metrics, Logger: log}
	if cfg.MQTTHost != "" {
		mq, err := rabbitmq.NewRabbitMQConn(ctx, &rabbitmq.RabbitMQConfig{
			Host:     cfg.MQTTHost,
			Port:     cfg.MQTTPort,
			User:     cfg.MQTTUser,
			Password: cfg.MQTTPassword,
			ClientID: cfg.MQTTClientID,
			Logger:   log,
		})
		if err != nil {
			log.WithError(err).Warn("audit trail disabled")
		} else {
			pub := rabbitmq.NewPublisher(mq, 1, 2*time.Second)
			defer pub.Close()
			deps.Sink = recommender.NewMQTTSink(pub, cfg.AuditTopic)
			log.WithField("topic", cfg.AuditTopic).Info("audit trail enabled")
		}
	}

	rec := recommender.New(cfg.Recommender, deps)

	// === gRPC health ===
	hs := health.NewServer()
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	go recommender.WatchHealth(ctx, rec, hs, 5*time.Second)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.WithError(err).Fatal("grpc listen")
	}
	go func() {
		log.WithField("addr", lis.Addr().String()).Info("grpc health listening")
		if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.WithError(err).Error("grpc server")
		}
	}()

	// === HTTP ===
	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: recommender.NewRouter(rec, recommender.RouterOptions{
			Logger:         log,
			Gatherer:       reg,
			UI:             webui.Handler(),
			AllowedOrigins: cfg.AllowedOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.WithField("addr", srv.Addr).Info("🌱 recommender listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	gs.GracefulStop()
	log.Info("shutdown complete")
}
