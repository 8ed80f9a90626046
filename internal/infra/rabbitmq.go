// README: RabbitMQ connection setup with startup retry.
package infra

import (
	"fmt"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// NewAMQP dials the broker, retrying while it comes up, and returns an open
// channel with the notification fanout exchange declared.
func NewAMQP(url, exchange string) (*amqp091.Connection, *amqp091.Channel, error) {
	var conn *amqp091.Connection
	var ch *amqp091.Channel
	var err error

	for i := 0; i < 10; i++ {
		conn, err = amqp091.Dial(url)
		if err == nil {
			ch, err = conn.Channel()
			if err == nil {
				if err = ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
					return nil, nil, fmt.Errorf("declare exchange: %w", err)
				}
				return conn, ch, nil
			}
		}
		log.Printf("RabbitMQ not ready, retrying... (%d/10)", i+1)
		time.Sleep(3 * time.Second)
	}
	return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
}
