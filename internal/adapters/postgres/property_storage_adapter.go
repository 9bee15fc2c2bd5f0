package postgres

import (
	"context"
	"errors"
	"fmt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorageAdapter реализует PropertyStoragePort для PostgreSQL.
type PostgresStorageAdapter struct {
	pool *pgxpool.Pool
}

// NewPostgresStorageAdapter создает новый экземпляр адаптера.
func NewPostgresStorageAdapter(pool *pgxpool.Pool) (*PostgresStorageAdapter, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresStorageAdapter{pool: pool}, nil
}

var _ port.PropertyStoragePort = (*PostgresStorageAdapter)(nil)

func (a *PostgresStorageAdapter) Create(ctx context.Context, draft domain.PropertyDraft) (*domain.Property, error) {
	repoLogger := methodLogger(ctx, "Create")

	if err := domain.ValidateDraft(draft); err != nil {
		repoLogger.Warn("Draft rejected by validation", port.Fields{"error": err.Error()})
		return nil, err
	}

	// timestamptz хранит микросекунды, округляем заранее, чтобы ответ совпадал с БД
	now := time.Now().UTC().Truncate(time.Microsecond)
	p := domain.NewPropertyFromDraft(draft, uuid.New(), now)

	query := fmt.Sprintf(`INSERT INTO properties (%s) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`, propertyColumns)

	_, err := a.pool.Exec(ctx, query,
		p.ID, p.CreatedAt, p.UpdatedAt, p.ExpiresAt, p.UserID,
		p.Title, p.Description, string(p.PropertyType), string(p.ListingType),
		p.City, p.Locality, p.Address,
		p.Price, p.Area, p.Bedrooms, p.Bathrooms,
		p.Amenities, p.Images, p.Videos, p.FloorPlan,
		string(p.PlanType), string(p.Status), p.Views, p.Leads, p.IsVerified, p.IsFeatured,
	)
	if err != nil {
		repoLogger.Error("Failed to insert property", err, nil)
		return nil, storeError("insert property", err)
	}

	repoLogger.Debug("Property inserted", port.Fields{"property_id": p.ID.String()})
	return &p, nil
}

func (a *PostgresStorageAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties WHERE id = $1", propertyColumns)

	p, err := scanProperty(a.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
		}
		methodLogger(ctx, "GetByID").Error("Failed to get property", err, port.Fields{"property_id": id.String()})
		return nil, storeError("get property", err)
	}
	return &p, nil
}

func (a *PostgresStorageAdapter) ListActive(ctx context.Context, limit int) ([]domain.Property, error) {
	query, args := buildListActiveQuery(limit)
	return a.queryProperties(ctx, "ListActive", query, args)
}

func (a *PostgresStorageAdapter) ListByOwner(ctx context.Context, ownerID string) ([]domain.Property, error) {
	query, args := buildListByOwnerQuery(ownerID)
	return a.queryProperties(ctx, "ListByOwner", query, args)
}

func (a *PostgresStorageAdapter) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Property, error) {
	query, args := buildSearchQuery(criteria)
	return a.queryProperties(ctx, "Search", query, args)
}

// Update выполняет read-modify-write в транзакции с блокировкой строки
func (a *PostgresStorageAdapter) Update(ctx context.Context, id uuid.UUID, patch domain.PropertyPatch) (*domain.Property, error) {
	repoLogger := methodLogger(ctx, "Update").WithFields(port.Fields{"property_id": id.String()})

	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return nil, storeError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf("SELECT %s FROM properties WHERE id = $1 FOR UPDATE", propertyColumns)
	existing, err := scanProperty(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
		}
		repoLogger.Error("Failed to lock property", err, nil)
		return nil, storeError("lock property", err)
	}

	merged := existing.Apply(patch, time.Now().UTC().Truncate(time.Microsecond))
	if err := domain.ValidateProperty(merged); err != nil {
		repoLogger.Warn("Patched record rejected by validation", port.Fields{"error": err.Error()})
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE properties SET
		updated_at = $2, expires_at = $3,
		title = $4, description = $5, property_type = $6, listing_type = $7,
		city = $8, locality = $9, address = $10,
		price = $11, area = $12, bedrooms = $13, bathrooms = $14,
		amenities = $15, images = $16, videos = $17, floor_plan = $18,
		plan_type = $19, status = $20, is_verified = $21, is_featured = $22
		WHERE id = $1`,
		id, merged.UpdatedAt, merged.ExpiresAt,
		merged.Title, merged.Description, string(merged.PropertyType), string(merged.ListingType),
		merged.City, merged.Locality, merged.Address,
		merged.Price, merged.Area, merged.Bedrooms, merged.Bathrooms,
		merged.Amenities, merged.Images, merged.Videos, merged.FloorPlan,
		string(merged.PlanType), string(merged.Status), merged.IsVerified, merged.IsFeatured,
	)
	if err != nil {
		repoLogger.Error("Failed to update property", err, nil)
		return nil, storeError("update property", err)
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return nil, storeError("commit transaction", err)
	}
	return &merged, nil
}

func (a *PostgresStorageAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := a.pool.Exec(ctx, "DELETE FROM properties WHERE id = $1", id)
	if err != nil {
		methodLogger(ctx, "Delete").Error("Failed to delete property", err, port.Fields{"property_id": id.String()})
		return storeError("delete property", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// IncrementViews - атомарный инкремент на стороне БД
func (a *PostgresStorageAdapter) IncrementViews(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := a.pool.Exec(ctx, "UPDATE properties SET views = views + 1 WHERE id = $1", id)
	if err != nil {
		return storeError("increment views", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// IncrementLeads увеличивает счетчик, только если лимит тарифа не достигнут
func (a *PostgresStorageAdapter) IncrementLeads(ctx context.Context, id uuid.UUID, limit int) (*domain.Property, error) {
	query := fmt.Sprintf(`UPDATE properties SET leads = leads + 1
		WHERE id = $1 AND ($2 <= 0 OR leads < $2)
		RETURNING %s`, propertyColumns)

	p, err := scanProperty(a.pool.QueryRow(ctx, query, id, limit))
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		methodLogger(ctx, "IncrementLeads").Error("Failed to increment leads", err, port.Fields{"property_id": id.String()})
		return nil, storeError("increment leads", err)
	}

	// Строка не обновлена: либо ее нет, либо лимит исчерпан
	var exists bool
	if err := a.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM properties WHERE id = $1)", id).Scan(&exists); err != nil {
		return nil, storeError("check property", err)
	}
	if !exists {
		return nil, fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
	}
	return nil, fmt.Errorf("property %s: %w", id, domain.ErrLeadLimitReached)
}

func (a *PostgresStorageAdapter) ExpireListings(ctx context.Context, now time.Time) (int, error) {
	cmdTag, err := a.pool.Exec(ctx, `UPDATE properties SET status = 'inactive', updated_at = $1
		WHERE status = 'active' AND expires_at <= $1`, now.UTC())
	if err != nil {
		methodLogger(ctx, "ExpireListings").Error("Failed to expire listings", err, nil)
		return 0, storeError("expire listings", err)
	}
	return int(cmdTag.RowsAffected()), nil
}

func (a *PostgresStorageAdapter) Ping(ctx context.Context) error {
	if err := a.pool.Ping(ctx); err != nil {
		return storeError("ping", err)
	}
	return nil
}

func (a *PostgresStorageAdapter) queryProperties(ctx context.Context, method, query string, args []interface{}) ([]domain.Property, error) {
	repoLogger := methodLogger(ctx, method)

	rows, err := a.pool.Query(ctx, query, args...)
	if err != nil {
		repoLogger.Error("Failed to query properties", err, port.Fields{"query": query})
		return nil, storeError("query properties", err)
	}
	defer rows.Close()

	properties := make([]domain.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, storeError("scan property", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during rows iteration", err, nil)
		return nil, storeError("iterate properties", err)
	}

	repoLogger.Debug("Properties loaded", port.Fields{"count": len(properties)})
	return properties, nil
}

// scanProperty читает строку в порядке propertyColumns
func scanProperty(row pgx.Row) (domain.Property, error) {
	var (
		p                                             domain.Property
		propertyType, listingType, planType, status string
	)
	err := row.Scan(
		&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.ExpiresAt, &p.UserID,
		&p.Title, &p.Description, &propertyType, &listingType,
		&p.City, &p.Locality, &p.Address,
		&p.Price, &p.Area, &p.Bedrooms, &p.Bathrooms,
		&p.Amenities, &p.Images, &p.Videos, &p.FloorPlan,
		&planType, &status, &p.Views, &p.Leads, &p.IsVerified, &p.IsFeatured,
	)
	if err != nil {
		return domain.Property{}, err
	}
	p.PropertyType = domain.PropertyType(propertyType)
	p.ListingType = domain.ListingType(listingType)
	p.PlanType = domain.PlanType(planType)
	p.Status = domain.Status(status)
	return p, nil
}

// storeError переводит ошибки драйвера в ошибки домена.
// Нарушение ограничений таблицы - ValidationError, остальное - недоступность хранилища.
func storeError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23514" { // 23514 - check_violation
		field := pgErr.ColumnName
		if field == "" {
			field = pgErr.ConstraintName
		}
		return domain.NewValidationError(field, pgErr.Message)
	}
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrStoreUnavailable)
}

func methodLogger(ctx context.Context, method string) port.LoggerPort {
	return contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresStorageAdapter",
		"method":    method,
	})
}
