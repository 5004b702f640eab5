package main

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/LeonardoBeccarini/crop_recommender/internal/model/entities"
	"github.com/LeonardoBeccarini/crop_recommender/internal/services/recommender"
)

type Config struct {
	Port     string
	GRPCPort string

	LogLevel  string
	LogFormat string

	AllowedOrigins []string

	Recommender recommender.Config

	// audit trail over MQTT; disabled when MQTTHost is empty
	MQTTHost     string
	MQTTPort     int
	MQTTUser     string
	MQTTPassword string
	MQTTClientID string
	AuditTopic   string
}

func loadConfig() (Config, error) {
	v := viper.New()
	v.SetDefault("PORT", "5000")
	v.SetDefault("GRPC_PORT", "50051")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CORS_ORIGINS", "*")

	v.SetDefault("METEOSTAT_URL", "https://meteostat.p.rapidapi.com")
	v.SetDefault("RAPIDAPI_HOST", "meteostat.p.rapidapi.com")
	v.SetDefault("RAPIDAPI_KEY", "")
	v.SetDefault("POWER_URL", "https://power.larc.nasa.gov")
	v.SetDefault("POWER_COMMUNITY", "AG")
	v.SetDefault("INFERENCE_URL", "http://127.0.0.1:50001/predict")
	v.SetDefault("TIMEOUT_MS", 10000)
	v.SetDefault("BREAKER_FAILURES", 5)
	v.SetDefault("BREAKER_OPEN_MS", 30000)

	v.SetDefault("MQTT_HOST", "")
	v.SetDefault("MQTT_PORT", 1883)
	v.SetDefault("MQTT_USER", "guest")
	v.SetDefault("MQTT_PASSWORD", "guest")
	v.SetDefault("MQTT_CLIENT_ID", "crop-recommender")
	v.SetDefault("AUDIT_TOPIC", recommender.DefaultEventTopic)

	v.AutomaticEnv()

	// optional YAML/JSON/TOML file with the same keys; env wins
	if path := strings.TrimSpace(v.GetString("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	return Config{
		Port:           v.GetString("PORT"),
		GRPCPort:       v.GetString("GRPC_PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		AllowedOrigins: splitList(v.GetString("CORS_ORIGINS")),
		Recommender: recommender.Config{
			MeteostatURL:   v.GetString("METEOSTAT_URL"),
			RapidAPIHost:   v.GetString("RAPIDAPI_HOST"),
			RapidAPIKey:    v.GetString("RAPIDAPI_KEY"),
			PowerURL:       v.GetString("POWER_URL"),
			PowerCommunity: v.GetString("POWER_COMMUNITY"),
			InferenceURL:   v.GetString("INFERENCE_URL"),
			HTTPTimeout:    time.Duration(v.GetInt("TIMEOUT_MS")) * time.Millisecond,
			Breaker: recommender.BreakerSettings{
				Failures: v.GetInt("BREAKER_FAILURES"),
				OpenFor:  time.Duration(v.GetInt("BREAKER_OPEN_MS")) * time.Millisecond,
			},
			Catalog: entities.DefaultCatalog,
			Now:     time.Now,
		},
		MQTTHost:     strings.TrimSpace(v.GetString("MQTT_HOST")),
		MQTTPort:     v.GetInt("MQTT_PORT"),
		MQTTUser:     v.GetString("MQTT_USER"),
		MQTTPassword: v.GetString("MQTT_PASSWORD"),
		MQTTClientID: v.GetString("MQTT_CLIENT_ID"),
		AuditTopic:   v.GetString("AUDIT_TOPIC"),
	}, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
