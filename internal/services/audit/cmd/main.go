package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/spf13/viper"

	"github.com/LeonardoBeccarini/crop_recommender/internal/services/audit"
	"github.com/LeonardoBeccarini/crop_recommender/internal/services/recommender"
	"github.com/LeonardoBeccarini/crop_recommender/pkg/dedup"
	"github.com/LeonardoBeccarini/crop_recommender/pkg/logging"
	"github.com/LeonardoBeccarini/crop_recommender/pkg/rabbitmq"
)

func main() {
	v := viper.New()
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MQTT_HOST", "localhost")
	v.SetDefault("MQTT_PORT", 1883)
	v.SetDefault("MQTT_USER", "guest")
	v.SetDefault("MQTT_PASSWORD", "guest")
	v.SetDefault("MQTT_CLIENT_ID", "crop-audit")
	v.SetDefault("AUDIT_TOPIC", recommender.DefaultEventTopic)
	v.SetDefault("INFLUX_URL", "http://localhost:8086")
	v.SetDefault("INFLUX_TOKEN", "")
	v.SetDefault("INFLUX_ORG", "crop")
	v.SetDefault("INFLUX_BUCKET", "predictions")
	v.SetDefault("WRITE_BATCH_SIZE", 10)
	v.SetDefault("WRITE_FLUSH_INTERVAL_MS", 200)
	v.SetDefault("DEDUP_TTL_MS", 600000)
	v.SetDefault("DEDUP_MAX", 20000)
	v.AutomaticEnv()

	log := logging.New("crop-audit", v.GetString("LOG_LEVEL"), v.GetString("LOG_FORMAT"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// === InfluxDB ===
	flush := time.Duration(v.GetInt("WRITE_FLUSH_INTERVAL_MS")) * time.Millisecond
	opts := influxdb2.DefaultOptions().
		SetBatchSize(uint(v.GetInt("WRITE_BATCH_SIZE"))).
		SetFlushInterval(uint(flush.Milliseconds()))
	influx := influxdb2.NewClientWithOptions(v.GetString("INFLUX_URL"), v.GetString("INFLUX_TOKEN"), opts)
	defer influx.Close()
	org, bucket := v.GetString("INFLUX_ORG"), v.GetString("INFLUX_BUCKET")
	writer := audit.NewWriter(influx.WriteAPI(org, bucket), log)

	influxOK := false
	pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
	if ok, err := influx.Ping(pingCtx); err != nil || !ok {
		log.WithError(err).Warn("influx not reachable at start")
	} else {
		influxOK = true
	}
	cancelPing()

	// === MQTT ===
	mq, err := rabbitmq.NewRabbitMQConn(ctx, &rabbitmq.RabbitMQConfig{
		Host:     v.GetString("MQTT_HOST"),
		Port:     v.GetInt("MQTT_PORT"),
		User:     v.GetString("MQTT_USER"),
		Password: v.GetString("MQTT_PASSWORD"),
		ClientID: v.GetString("MQTT_CLIENT_ID"),
		Logger:   log,
	})
	if err != nil {
		log.WithError(err).Fatal("mqtt connection")
	}
	defer rabbitmq.CloseRabbitMQConn(mq)

	topic := v.GetString("AUDIT_TOPIC") + "/#"
	consumer := rabbitmq.NewConsumer(mq, topic, 1, log)
	d := dedup.New(time.Duration(v.GetInt("DEDUP_TTL_MS"))*time.Millisecond, v.GetInt("DEDUP_MAX"))
	svc := audit.NewService(consumer, writer, d, log)

	// === HTTP ===
	mux := http.NewServeMux()
	mux.Handle("/healthz", audit.NewHealthHandler(mq, influxOK, writer))
	mux.Handle("/readyz", audit.NewReadyHandler(mq, influxOK, writer, 2*time.Second))
	mux.Handle("/predictions/recent", audit.NewRecentHandler(influx.QueryAPI(org), bucket, log))

	hs := &http.Server{
		Addr:              ":" + v.GetString("HTTP_PORT"),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.WithField("addr", hs.Addr).Info("audit HTTP listening")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	go func() {
		if err := svc.Start(ctx); err != nil {
			log.WithError(err).Error("consumer stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = hs.Shutdown(shCtx)
	writer.Flush()
}
