package recommender

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/LeonardoBeccarini/crop_recommender/internal/model/messages"
	"github.com/LeonardoBeccarini/crop_recommender/pkg/rabbitmq"
)

// DefaultEventTopic is the prefix of the audit topics; the last level is the crop or "error".
const DefaultEventTopic = "event/prediction"

// MQTTSink publishes prediction events for the audit service.
type MQTTSink struct {
	publisher rabbitmq.IPublisher
	prefix    string
}

func NewMQTTSink(p rabbitmq.IPublisher, topicPrefix string) *MQTTSink {
	topicPrefix = strings.TrimRight(strings.TrimSpace(topicPrefix), "/")
	if topicPrefix == "" {
		topicPrefix = DefaultEventTopic
	}
	return &MQTTSink{publisher: p, prefix: topicPrefix}
}

func (s *MQTTSink) Topic(evt messages.PredictionEvent) string {
	last := evt.Crop
	if evt.Status != messages.StatusOK || last == "" {
		last = messages.StatusError
	}
	return s.prefix + "/" + last
}

func (s *MQTTSink) Publish(_ context.Context, evt messages.PredictionEvent) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return s.publisher.Publish(s.Topic(evt), b)
}
