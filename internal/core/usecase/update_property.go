package usecase

import (
	"context"
	"fmt"
	"strings"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/google/uuid"
)

type UpdatePropertyUseCase struct {
	storage   port.PropertyStoragePort
	publisher port.PropertyEventPublisherPort
}

func NewUpdatePropertyUseCase(storage port.PropertyStoragePort, publisher port.PropertyEventPublisherPort) *UpdatePropertyUseCase {
	return &UpdatePropertyUseCase{storage: storage, publisher: publisher}
}

// Execute применяет patch. Менять объявление может его владелец или оператор;
// тариф, верификацию, продвижение и срок меняет только оператор.
func (uc *UpdatePropertyUseCase) Execute(ctx context.Context, caller domain.Claims, id uuid.UUID, patch domain.PropertyPatch) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "UpdateProperty",
		"user_id":     caller.UserID,
		"role":        caller.Role,
		"property_id": id.String(),
	})

	ucLogger.Info("Use case started", nil)

	if patch.IsEmpty() {
		return nil, domain.NewValidationError("patch", "no fields to update")
	}

	if caller.IsOperator() {
		if _, err := uc.storage.GetByID(ctx, id); err != nil {
			ucLogger.Warn("Property lookup failed", port.Fields{"error": err.Error()})
			return nil, err
		}
	} else {
		if privileged := patch.PrivilegedFields(); len(privileged) > 0 {
			ucLogger.Warn("Owner tried to change operator fields", port.Fields{"fields": privileged})
			return nil, fmt.Errorf("fields %s are managed by operators: %w", strings.Join(privileged, ", "), domain.ErrForbidden)
		}
		if _, err := loadOwned(ctx, uc.storage, caller.UserID, id); err != nil {
			ucLogger.Warn("Ownership check failed", port.Fields{"error": err.Error()})
			return nil, err
		}
	}

	updated, err := uc.storage.Update(ctx, id, patch)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}

	publishEvent(ctx, uc.publisher, ucLogger, domain.EventPropertyUpdated, updated)

	ucLogger.Info("Use case finished successfully", nil)
	return updated, nil
}

// loadOwned читает объявление и проверяет владельца (ErrNotFound / ErrForbidden).
// user_id не меняется через patch, поэтому проверка до записи корректна.
func loadOwned(ctx context.Context, storage port.PropertyStoragePort, callerID string, id uuid.UUID) (*domain.Property, error) {
	existing, err := storage.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerID == "" || existing.UserID != callerID {
		return nil, fmt.Errorf("property %s belongs to another user: %w", id, domain.ErrForbidden)
	}
	return existing, nil
}
