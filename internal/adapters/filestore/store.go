package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PropertyFileStore - локальное хранилище объявлений в JSON-файле.
// Без пути работает в памяти. Каждая операция перечитывает данные,
// поэтому запись из другого процесса видна на следующем вызове (last write wins).
type PropertyFileStore struct {
	mu   sync.Mutex
	path string
	blob []byte // содержимое "файла" в режиме памяти

	now   func() time.Time
	newID func() uuid.UUID
}

type Option func(*PropertyFileStore)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(s *PropertyFileStore) { s.now = now }
}

func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *PropertyFileStore) { s.newID = newID }
}

func NewPropertyFileStore(path string, opts ...Option) (*PropertyFileStore, error) {
	s := &PropertyFileStore{
		path:  path,
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}

	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		// Проверяем, что существующий файл читается
		if _, err := s.load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

var _ port.PropertyStoragePort = (*PropertyFileStore)(nil)

func (s *PropertyFileStore) Create(ctx context.Context, draft domain.PropertyDraft) (*domain.Property, error) {
	logger := s.methodLogger(ctx, "Create")

	if err := domain.ValidateDraft(draft); err != nil {
		logger.Warn("Draft rejected by validation", port.Fields{"error": err.Error()})
		return nil, err
	}

	var created domain.Property
	err := s.mutate(ctx, func(records []domain.Property) ([]domain.Property, error) {
		created = domain.NewPropertyFromDraft(draft, s.newID(), s.now().UTC())
		return append(records, created), nil
	})
	if err != nil {
		logger.Error("Failed to create property", err, nil)
		return nil, err
	}

	logger.Debug("Property created", port.Fields{"property_id": created.ID.String()})
	return &created, nil
}

func (s *PropertyFileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	records, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOf(records, id)
	if idx < 0 {
		return nil, fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
	}
	return &records[idx], nil
}

func (s *PropertyFileStore) ListActive(ctx context.Context, limit int) ([]domain.Property, error) {
	records, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	out := filter(records, func(p *domain.Property) bool { return p.IsActive() })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *PropertyFileStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.Property, error) {
	records, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return filter(records, func(p *domain.Property) bool { return p.UserID == ownerID }), nil
}

func (s *PropertyFileStore) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Property, error) {
	records, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return filter(records, criteria.Matches), nil
}

func (s *PropertyFileStore) Update(ctx context.Context, id uuid.UUID, patch domain.PropertyPatch) (*domain.Property, error) {
	logger := s.methodLogger(ctx, "Update")

	var updated domain.Property
	err := s.mutate(ctx, func(records []domain.Property) ([]domain.Property, error) {
		idx := indexOf(records, id)
		if idx < 0 {
			return nil, fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
		}
		merged := records[idx].Apply(patch, s.now().UTC())
		if err := domain.ValidateProperty(merged); err != nil {
			return nil, err
		}
		records[idx] = merged
		updated = merged
		return records, nil
	})
	if err != nil {
		logger.Warn("Property was not updated", port.Fields{"property_id": id.String(), "error": err.Error()})
		return nil, err
	}
	return &updated, nil
}

func (s *PropertyFileStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.mutate(ctx, func(records []domain.Property) ([]domain.Property, error) {
		idx := indexOf(records, id)
		if idx < 0 {
			return nil, fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
		}
		return slices.Delete(records, idx, idx+1), nil
	})
	if err != nil {
		s.methodLogger(ctx, "Delete").Warn("Property was not deleted", port.Fields{"property_id": id.String(), "error": err.Error()})
	}
	return err
}

func (s *PropertyFileStore) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return s.mutate(ctx, func(records []domain.Property) ([]domain.Property, error) {
		idx := indexOf(records, id)
		if idx < 0 {
			return nil, fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
		}
		records[idx].Views++
		return records, nil
	})
}

func (s *PropertyFileStore) IncrementLeads(ctx context.Context, id uuid.UUID, limit int) (*domain.Property, error) {
	var updated domain.Property
	err := s.mutate(ctx, func(records []domain.Property) ([]domain.Property, error) {
		idx := indexOf(records, id)
		if idx < 0 {
			return nil, fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
		}
		if limit > 0 && records[idx].Leads >= limit {
			return nil, fmt.Errorf("property %s has %d leads: %w", id, records[idx].Leads, domain.ErrLeadLimitReached)
		}
		records[idx].Leads++
		updated = records[idx]
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *PropertyFileStore) ExpireListings(ctx context.Context, now time.Time) (int, error) {
	expired := 0
	err := s.mutate(ctx, func(records []domain.Property) ([]domain.Property, error) {
		for i := range records {
			p := &records[i]
			if p.IsActive() && !p.ExpiresAt.IsZero() && !p.ExpiresAt.After(now) {
				p.Status = domain.StatusInactive
				p.UpdatedAt = now.UTC()
				expired++
			}
		}
		return records, nil
	})
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.methodLogger(ctx, "ExpireListings").Info("Listings expired", port.Fields{"count": expired})
	}
	return expired, nil
}

// Ping проверяет, что данные читаются
func (s *PropertyFileStore) Ping(ctx context.Context) error {
	_, err := s.read(ctx)
	return err
}

// read загружает все записи под мьютексом
func (s *PropertyFileStore) read(ctx context.Context) ([]domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// mutate выполняет read-modify-write целиком под мьютексом.
// Если fn вернула ошибку, данные не меняются.
func (s *PropertyFileStore) mutate(ctx context.Context, fn func([]domain.Property) ([]domain.Property, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	records, err = fn(records)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store(records)
}

// load возвращает записи, отсортированные по created_at desc, id asc
func (s *PropertyFileStore) load() ([]domain.Property, error) {
	data := s.blob
	if s.path != "" {
		var err error
		data, err = os.ReadFile(s.path)
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.Property{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %v: %w", s.path, err, domain.ErrStoreUnavailable)
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Property{}, nil
	}

	var rows []propertyRecord
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode property file: %v: %w", err, domain.ErrStoreUnavailable)
	}

	records := make([]domain.Property, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toDomain())
	}
	sortNewest(records)
	return records, nil
}

// store атомарно заменяет файл: запись во временный файл и rename
func (s *PropertyFileStore) store(records []domain.Property) error {
	rows := make([]propertyRecord, 0, len(records))
	for _, p := range records {
		rows = append(rows, toRecord(p))
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode properties: %w", err)
	}

	if s.path == "" {
		s.blob = data
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".properties-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %v: %w", err, domain.ErrStoreUnavailable)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // после успешного rename файла уже нет

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %v: %w", err, domain.ErrStoreUnavailable)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %v: %w", err, domain.ErrStoreUnavailable)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %v: %w", err, domain.ErrStoreUnavailable)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %v: %w", s.path, err, domain.ErrStoreUnavailable)
	}
	return nil
}

func (s *PropertyFileStore) methodLogger(ctx context.Context, method string) port.LoggerPort {
	return contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PropertyFileStore",
		"method":    method,
	})
}

func indexOf(records []domain.Property, id uuid.UUID) int {
	return slices.IndexFunc(records, func(p domain.Property) bool { return p.ID == id })
}

func filter(records []domain.Property, keep func(*domain.Property) bool) []domain.Property {
	out := make([]domain.Property, 0, len(records))
	for i := range records {
		if keep(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

func sortNewest(records []domain.Property) {
	slices.SortStableFunc(records, func(a, b domain.Property) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
}
