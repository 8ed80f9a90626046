// README: RabbitMQ-backed notification sink (fanout exchange, JSON payloads).
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const DefaultExchange = "fleetline.notifications"

type AMQPSink struct {
	ch       *amqp091.Channel
	exchange string
}

func NewAMQPSink(ch *amqp091.Channel, exchange string) *AMQPSink {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &AMQPSink{ch: ch, exchange: exchange}
}

func (s *AMQPSink) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	err = s.ch.PublishWithContext(ctx,
		s.exchange,
		"", // routing key (empty for fanout)
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}
