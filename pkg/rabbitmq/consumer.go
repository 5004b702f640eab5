package rabbitmq

import (
	"context"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

// Handler processes one message; an error is logged and the stream continues.
type Handler func(topic string, message mqtt.Message) error

// IConsumer subscribes a handler and blocks until the context is cancelled.
type IConsumer interface {
	ConsumeMessage(ctx context.Context) error
	SetHandler(handler Handler)
}

type Consumer struct {
	client  mqtt.Client
	topic   string
	qos     byte
	handler Handler
	log     logrus.FieldLogger
}

func NewConsumer(client mqtt.Client, topic string, qos byte, log logrus.FieldLogger) *Consumer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Consumer{client: client, topic: topic, qos: qos, log: log.WithField("topic", topic)}
}

func (c *Consumer) SetHandler(handler Handler) { c.handler = handler }

func (c *Consumer) ConsumeMessage(ctx context.Context) error {
	if c.handler == nil {
		return fmt.Errorf("no handler set for topic %s", c.topic)
	}
	token := c.client.Subscribe(c.topic, c.qos, func(_ mqtt.Client, m mqtt.Message) {
		if err := c.handler(m.Topic(), m); err != nil {
			c.log.WithError(err).WithField("message_topic", m.Topic()).Warn("message handling failed")
		}
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", c.topic, token.Error())
	}
	c.log.Info("subscribed")

	<-ctx.Done()

	c.client.Unsubscribe(c.topic).Wait()
	return nil
}
