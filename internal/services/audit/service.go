package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/LeonardoBeccarini/crop_recommender/pkg/dedup"
	"github.com/LeonardoBeccarini/crop_recommender/pkg/rabbitmq"
)

// Service stores every prediction event received over MQTT into InfluxDB.
type Service struct {
	consumer rabbitmq.IConsumer
	writer   *Writer
	deduper  *dedup.Deduper
	log      logrus.FieldLogger
}

func NewService(c rabbitmq.IConsumer, w *Writer, d *dedup.Deduper, log logrus.FieldLogger) *Service {
	return &Service{consumer: c, writer: w, deduper: d, log: log}
}

// Start blocks until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.consumer.SetHandler(func(topic string, m mqtt.Message) error {
		return s.Handle(topic, m.Payload())
	})
	defer s.writer.Flush()
	return s.consumer.ConsumeMessage(ctx)
}

// Handle decodes and writes one payload; QoS1 redeliveries of the same payload are dropped.
func (s *Service) Handle(topic string, payload []byte) error {
	h := sha256.Sum256(payload)
	if !s.deduper.ShouldProcess(hex.EncodeToString(h[:])) {
		return nil
	}
	evt, err := DecodeEvent(topic, payload)
	if err != nil {
		return err
	}
	s.writer.Write(evt.Status, EventToPoint(evt))
	s.log.WithFields(logrus.Fields{
		"event_id": evt.ID,
		"status":   evt.Status,
		"crop":     evt.Crop,
	}).Debug("prediction event stored")
	return nil
}
