package port

import (
	"context"
	"listing-service/internal/core/domain"
)

// PropertyEventPublisherPort отправляет события жизненного цикла объявлений
type PropertyEventPublisherPort interface {
	Publish(ctx context.Context, event domain.PropertyEvent) error
}
