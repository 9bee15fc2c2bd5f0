package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"listing-service/internal/constants"
	"listing-service/internal/contextkeys"
	"listing-service/internal/contracts"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

// messagePublisher - то, что адаптеру нужно от rabbitmq_producer.Publisher
type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// PropertyEventPublisher публикует события объявлений; ключ маршрутизации = тип события.
type PropertyEventPublisher struct {
	producer messagePublisher
	timeout  time.Duration
}

func NewPropertyEventPublisher(producer messagePublisher) (*PropertyEventPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("producer cannot be nil")
	}
	return &PropertyEventPublisher{producer: producer, timeout: 10 * time.Second}, nil
}

func (a *PropertyEventPublisher) Publish(ctx context.Context, event domain.PropertyEvent) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "PropertyEventPublisher",
		"event_type":  string(event.Type),
		"property_id": event.PropertyID.String(),
	})

	body, err := json.Marshal(toEventDTO(event))
	if err != nil {
		return fmt.Errorf("failed to marshal property event: %w", err)
	}

	// Не выпускаем наружу то, что не проходит собственный контракт
	if err := contracts.ValidateMessage(contracts.PropertyEvent, constants.PropertyEventsVersion, body); err != nil {
		adapterLogger.Error("Outgoing event failed schema validation", err, nil)
		return fmt.Errorf("property event violates contract: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Headers: amqp.Table{
			"event-type":    string(event.Type),
			"event-version": constants.PropertyEventsVersion,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, string(event.Type), msg); err != nil {
		adapterLogger.Error("Failed to publish property event", err, nil)
		return err
	}

	adapterLogger.Debug("Property event published", nil)
	return nil
}

// NoopEventPublisher используется, когда RabbitMQ выключен
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(ctx context.Context, event domain.PropertyEvent) error {
	return nil
}
