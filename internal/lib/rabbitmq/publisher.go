// Package rabbitmq содержит подключение к RabbitMQ и публикацию
// JSON-сообщений в exchange уведомлений.
package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// AppID подписывает сообщения, отправленные сервисом.
const AppID = "gym-manager"

// channel часть *amqp.Channel, нужная для публикации.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher публикует JSON-сообщения в фиксированный exchange.
// Каждое сообщение получает уникальный MessageId и время отправки.
type Publisher struct {
	ch       channel
	exchange string
	now      func() time.Time
}

// NewPublisher создаёт Publisher для exchange поверх канала ch.
func NewPublisher(ch *amqp.Channel, exchange string) *Publisher {
	return newPublisher(ch, exchange)
}

func newPublisher(ch channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, now: time.Now}
}

// Publish сериализует message в JSON и отправляет его с ключом routingKey.
// Сообщения сохраняются брокером на диск.
func (p *Publisher) Publish(routingKey string, message any) error {
	const op = "rabbitmq.Publish"

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    p.now(),
		AppId:        AppID,
		Type:         routingKey,
		Body:         body,
	}
	if err = p.ch.Publish(p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("%s: %s/%s: %w", op, p.exchange, routingKey, err)
	}
	return nil
}
