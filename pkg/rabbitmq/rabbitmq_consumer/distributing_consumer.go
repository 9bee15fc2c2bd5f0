package rabbitmq_consumer

import (
	"context"
	"fmt"
	"time"

	"listing-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение.
// Пакет сам решает, как делать ack/nack: nil - ack, ошибка - ретрай,
// Permanent(err) - сразу в финальную DLQ.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// DistributingConsumer обрабатывает каждое сообщение в отдельной горутине.
// Параллелизм ограничен PrefetchCount.
type DistributingConsumer struct {
	baseConsumer *baseConsumer
	handler      MessageHandler
}

func NewDistributingConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*DistributingConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("distributing Consumer: message handler is required")
	}
	bc, err := newBaseConsumer(cfg, connManager)
	if err != nil {
		return nil, fmt.Errorf("distributing Consumer: %w", err)
	}
	return &DistributingConsumer{baseConsumer: bc, handler: handler}, nil
}

// StartConsuming блокируется до отмены ctx (возвращает nil) или
// закрытия соединения брокером (возвращает ошибку).
func (c *DistributingConsumer) StartConsuming(ctx context.Context) error {
	bc := c.baseConsumer
	if bc.channel == nil || bc.connection == nil || bc.connection.IsClosed() {
		return fmt.Errorf("distributing Consumer: not connected")
	}

	msgs, err := bc.channel.Consume(
		bc.actualQueueName,
		bc.config.ConsumerTag,
		false, // auto-ack
		bc.config.ExclusiveConsumer,
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("distributing Consumer %s: failed to register a consumer on queue '%s': %w", bc.config.ConsumerTag, bc.actualQueueName, err)
	}

	bc.Logger.Info("[*] Waiting for messages on queue", "queue_name", bc.actualQueueName)

	notifyClose := bc.connection.NotifyClose(make(chan *amqp.Error, 1))

	for {
		// Приоритетная проверка: после отмены новых обработчиков не запускаем
		select {
		case <-ctx.Done():
			bc.Logger.Info("Context cancelled. Shutting down consumer.", "consumer_tag", bc.config.ConsumerTag)
			return nil
		default:
		}

		select {
		case <-ctx.Done():
			bc.Logger.Info("Context cancelled. Shutting down consumer.", "consumer_tag", bc.config.ConsumerTag)
			return nil

		case amqpErr, ok := <-notifyClose:
			if !ok || amqpErr == nil {
				return fmt.Errorf("distributing Consumer: connection closed")
			}
			bc.Logger.Error(amqpErr, "Connection closed for consumer.", "consumer_tag", bc.config.ConsumerTag)
			return amqpErr

		case d, ok := <-msgs:
			if !ok {
				bc.Logger.Info("Deliveries channel closed by RabbitMQ for consumer. Exiting loop.",
					"consumer_tag", bc.config.ConsumerTag)
				return fmt.Errorf("distributing Consumer: deliveries channel closed")
			}

			bc.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer bc.wg.Done()
				c.handleDelivery(ctx, delivery)
			}(d)
		}
	}
}

// handleDelivery вызывает обработчик и решает судьбу сообщения
func (c *DistributingConsumer) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	bc := c.baseConsumer

	bc.Logger.Debug("[->] Started processing message", "delivery_tag", delivery.DeliveryTag)

	processErr := c.handler(ctx, delivery)
	if processErr == nil {
		_ = delivery.Ack(false)
		bc.Logger.Debug("[+] Message Ack'd", "delivery_tag", delivery.DeliveryTag)
		return
	}

	bc.Logger.Error(processErr, "Handler error for message", "delivery_tag", delivery.DeliveryTag)

	if !bc.config.EnableRetryMechanism {
		_ = delivery.Nack(false, false)
		return
	}

	permanent := IsPermanent(processErr)
	deaths := deathCount(delivery, bc.actualQueueName)
	if !permanent && deaths < int64(bc.config.MaxRetries) {
		// nack без requeue уводит сообщение в wait-очередь
		bc.Logger.Info("Retrying message", "delivery_tag", delivery.DeliveryTag, "death_count", deaths)
		_ = delivery.Nack(false, false)
		return
	}

	bc.Logger.Info("Publishing message to final DLX",
		"delivery_tag", delivery.DeliveryTag,
		"permanent", permanent,
		"death_count", deaths)

	headers := amqp.Table{}
	for k, v := range delivery.Headers {
		headers[k] = v
	}
	headers["x-final-error"] = processErr.Error()

	// ctx потребителя может быть уже отменен, публикация в DLQ не должна от этого зависеть
	pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := bc.finalDlxPublisher.Publish(pubCtx, bc.config.FinalDLQRoutingKey, amqp.Publishing{
		ContentType:  delivery.ContentType,
		Body:         delivery.Body,
		Headers:      headers,
		Timestamp:    time.Now(),
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		bc.Logger.Error(err, "Failed to publish to final DLX. Nacking to trigger retry loop again.",
			"delivery_tag", delivery.DeliveryTag)
		_ = delivery.Nack(false, false)
		return
	}
	_ = delivery.Ack(false)
}

// Close дожидается обработчиков и закрывает канал
func (c *DistributingConsumer) Close() error {
	c.baseConsumer.Logger.Info("Closing consumer")
	return c.baseConsumer.Close()
}
