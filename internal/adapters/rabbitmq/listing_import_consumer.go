package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"listing-service/internal/contextkeys"
	"listing-service/internal/contracts"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"
	"listing-service/pkg/rabbitmq/rabbitmq_common"
	"listing-service/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ListingImportConsumerAdapter - входящий адаптер: читает очередь импорта
// и создает объявления через use case.
type ListingImportConsumerAdapter struct {
	consumer *rabbitmq_consumer.DistributingConsumer
	useCase  usecases_port.CreatePropertyUseCase
	logger   port.LoggerPort
}

func NewListingImportConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	useCase usecases_port.CreatePropertyUseCase,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*ListingImportConsumerAdapter, error) {
	adapter := newListingImportHandler(useCase, logger)

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(consumerCfg, adapter.handleMessage, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for listing import: %w", err)
	}
	adapter.consumer = consumer
	return adapter, nil
}

func newListingImportHandler(useCase usecases_port.CreatePropertyUseCase, logger port.LoggerPort) *ListingImportConsumerAdapter {
	return &ListingImportConsumerAdapter{useCase: useCase, logger: logger}
}

// handleMessage: nil - ack; Permanent - сразу в DLQ; прочие ошибки - ретрай.
func (a *ListingImportConsumerAdapter) handleMessage(ctx context.Context, d amqp.Delivery) error {
	traceID, _ := d.Headers["x-trace-id"].(string)
	if traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"message_id":   d.MessageId,
		"adapter_name": "ListingImportConsumerAdapter",
	})
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	if err := contracts.ValidateMessage(contracts.ListingImport, contracts.Version1, d.Body); err != nil {
		msgLogger.Error("Message failed schema validation. Rejecting.", err, nil)
		return rabbitmq_consumer.Permanent(err)
	}

	var dto ImportListingDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		return rabbitmq_consumer.Permanent(fmt.Errorf("failed to unmarshal import DTO: %w", err))
	}

	created, err := a.useCase.Execute(ctx, dto.toDraft())
	if err != nil {
		// Правила плана и т.п. повтор не исправит
		if errors.Is(err, domain.ErrValidation) {
			msgLogger.Warn("Imported listing rejected by domain rules", port.Fields{"error": err.Error()})
			return rabbitmq_consumer.Permanent(err)
		}
		return fmt.Errorf("import failed: %w", err)
	}

	msgLogger.Info("Listing imported", port.Fields{"property_id": created.ID.String()})
	return nil
}

func (a *ListingImportConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

func (a *ListingImportConsumerAdapter) Close() error {
	return a.consumer.Close()
}
