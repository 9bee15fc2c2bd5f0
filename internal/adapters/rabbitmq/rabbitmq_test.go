package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"listing-service/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logEntry struct {
	level  string
	msg    string
	fields port.Fields
}

type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
	base    port.Fields
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, entries: &[]logEntry{}}
}

func (l *recordingLogger) add(level, msg string, fields port.Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	merged := port.Fields{}
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, fields: merged})
}

func (l *recordingLogger) Info(msg string, fields port.Fields)  { l.add("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields port.Fields)  { l.add("warn", msg, fields) }
func (l *recordingLogger) Debug(msg string, fields port.Fields) { l.add("debug", msg, fields) }
func (l *recordingLogger) Error(msg string, err error, fields port.Fields) {
	l.add("error", msg, fields)
}
func (l *recordingLogger) WithFields(fields port.Fields) port.LoggerPort {
	merged := port.Fields{}
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{mu: l.mu, entries: l.entries, base: merged}
}

type fakeCreateUseCase struct {
	drafts  []domain.PropertyDraft
	traceID string
	err     error
}

func (f *fakeCreateUseCase) Execute(ctx context.Context, draft domain.PropertyDraft) (*domain.Property, error) {
	f.traceID = contextkeys.TraceIDFromContext(ctx)
	if f.err != nil {
		return nil, f.err
	}
	f.drafts = append(f.drafts, draft)
	p := domain.NewPropertyFromDraft(draft, uuid.New(), time.Now())
	return &p, nil
}

const importBody = `{
	"user_id": "agent-7",
	"title": "Sea facing 2BHK",
	"property_type": "apartment",
	"listing_type": "rent",
	"city": "Mumbai",
	"locality": "Bandra",
	"price": 85000,
	"area": 950,
	"bedrooms": 2,
	"amenities": ["gym", "pool"],
	"images": ["a.jpg"],
	"expires_at": "2025-03-01T00:00:00Z"
}`

func TestListingImportHandler(t *testing.T) {
	t.Run("valid message creates listing", func(t *testing.T) {
		uc := &fakeCreateUseCase{}
		h := newListingImportHandler(uc, newRecordingLogger())

		err := h.handleMessage(context.Background(), amqp.Delivery{
			Body:    []byte(importBody),
			Headers: amqp.Table{"x-trace-id": "trace-123"},
		})
		require.NoError(t, err)
		require.Len(t, uc.drafts, 1)

		d := uc.drafts[0]
		assert.Equal(t, "agent-7", d.UserID)
		assert.Equal(t, domain.PropertyTypeApartment, d.PropertyType)
		assert.Equal(t, domain.ListingTypeRent, d.ListingType)
		assert.Equal(t, 85000.0, *d.Price)
		assert.Equal(t, 2, *d.Bedrooms)
		assert.Equal(t, []string{"gym", "pool"}, d.Amenities)
		require.NotNil(t, d.ExpiresAt)
		assert.True(t, d.ExpiresAt.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, "trace-123", uc.traceID)
	})

	t.Run("missing trace id gets generated", func(t *testing.T) {
		uc := &fakeCreateUseCase{}
		h := newListingImportHandler(uc, newRecordingLogger())
		require.NoError(t, h.handleMessage(context.Background(), amqp.Delivery{Body: []byte(importBody)}))
		_, err := uuid.Parse(uc.traceID)
		assert.NoError(t, err)
	})

	t.Run("schema violation is permanent", func(t *testing.T) {
		uc := &fakeCreateUseCase{}
		h := newListingImportHandler(uc, newRecordingLogger())

		err := h.handleMessage(context.Background(), amqp.Delivery{Body: []byte(`{"title": "no owner"}`)})
		require.Error(t, err)
		assert.True(t, rabbitmq_consumer.IsPermanent(err))
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, uc.drafts)
	})

	t.Run("broken json is permanent", func(t *testing.T) {
		h := newListingImportHandler(&fakeCreateUseCase{}, newRecordingLogger())
		err := h.handleMessage(context.Background(), amqp.Delivery{Body: []byte(`{`)})
		assert.True(t, rabbitmq_consumer.IsPermanent(err))
	})

	t.Run("domain validation is permanent", func(t *testing.T) {
		uc := &fakeCreateUseCase{err: domain.NewValidationError("images", "too many photos for plan")}
		h := newListingImportHandler(uc, newRecordingLogger())
		err := h.handleMessage(context.Background(), amqp.Delivery{Body: []byte(importBody)})
		assert.True(t, rabbitmq_consumer.IsPermanent(err))
	})

	t.Run("store failure is retried", func(t *testing.T) {
		uc := &fakeCreateUseCase{err: fmt.Errorf("insert: %w", domain.ErrStoreUnavailable)}
		h := newListingImportHandler(uc, newRecordingLogger())
		err := h.handleMessage(context.Background(), amqp.Delivery{Body: []byte(importBody)})
		require.Error(t, err)
		assert.False(t, rabbitmq_consumer.IsPermanent(err))
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})
}

type capturingProducer struct {
	keys []string
	msgs []amqp.Publishing
	err  error
}

func (c *capturingProducer) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.keys = append(c.keys, routingKey)
	c.msgs = append(c.msgs, msg)
	return nil
}

func TestPropertyEventPublisher(t *testing.T) {
	producer := &capturingProducer{}
	pub, err := NewPropertyEventPublisher(producer)
	require.NoError(t, err)

	p := domain.Property{ID: uuid.New(), UserID: "owner-1", Status: domain.StatusActive, Leads: 3}
	at := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-9")

	require.NoError(t, pub.Publish(ctx, domain.NewPropertyEvent(domain.EventLeadRecorded, &p, at)))
	require.Len(t, producer.msgs, 1)

	msg := producer.msgs[0]
	assert.Equal(t, "property.lead", producer.keys[0])
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, "property.lead", msg.Headers["event-type"])
	assert.Equal(t, "1", msg.Headers["event-version"])
	assert.Equal(t, "trace-9", msg.Headers["x-trace-id"])

	var dto PropertyEventDTO
	require.NoError(t, json.Unmarshal(msg.Body, &dto))
	assert.Equal(t, p.ID.String(), dto.PropertyID)
	assert.Equal(t, 3, dto.Leads)
	assert.True(t, dto.OccurredAt.Equal(at))
}

func TestPropertyEventPublisherRejectsInvalidEvent(t *testing.T) {
	producer := &capturingProducer{}
	pub, err := NewPropertyEventPublisher(producer)
	require.NoError(t, err)

	// без владельца событие не проходит контракт
	p := domain.Property{ID: uuid.New(), Status: domain.StatusActive}
	err = pub.Publish(context.Background(), domain.NewPropertyEvent(domain.EventPropertyCreated, &p, time.Now()))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, producer.msgs)
}

func TestPropertyEventPublisherProducerError(t *testing.T) {
	pub, err := NewPropertyEventPublisher(&capturingProducer{err: errors.New("channel closed")})
	require.NoError(t, err)

	p := domain.Property{ID: uuid.New(), UserID: "u", Status: domain.StatusSold}
	assert.Error(t, pub.Publish(context.Background(), domain.NewPropertyEvent(domain.EventPropertyUpdated, &p, time.Now())))

	_, err = NewPropertyEventPublisher(nil)
	assert.Error(t, err)
}

func TestPkgLoggerBridge(t *testing.T) {
	rec := newRecordingLogger()
	bridge := NewPkgLoggerBridge(rec)

	bridge.Info("Consumer started", "queue", "listing_import", 42, "skipped", "dangling")
	bridge.Error(errors.New("boom"), "failed", "delivery_tag", uint64(7))

	entries := *rec.entries
	require.Len(t, entries, 2)
	assert.Equal(t, port.Fields{"queue": "listing_import"}, entries[0].fields)
	assert.Equal(t, "error", entries[1].level)
	assert.Equal(t, uint64(7), entries[1].fields["delivery_tag"])
}
