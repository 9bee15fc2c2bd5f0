package port

import (
	"context"
	"listing-service/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// PropertyStoragePort определяет контракт хранилища объявлений.
// Реализации: postgres (удаленная таблица) и локальный файл.
type PropertyStoragePort interface {
	Create(ctx context.Context, draft domain.PropertyDraft) (*domain.Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)

	ListActive(ctx context.Context, limit int) ([]domain.Property, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Property, error)
	Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Property, error)

	Update(ctx context.Context, id uuid.UUID, patch domain.PropertyPatch) (*domain.Property, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Счетчики увеличиваются атомарно на стороне хранилища
	IncrementViews(ctx context.Context, id uuid.UUID) error
	// limit <= 0 - без ограничения
	IncrementLeads(ctx context.Context, id uuid.UUID, limit int) (*domain.Property, error)

	ExpireListings(ctx context.Context, now time.Time) (int, error)
}
