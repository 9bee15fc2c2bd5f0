package scheduler

import (
	"context"
	"fmt"
	"time"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// ExpirySweeper периодически переводит просроченные объявления в inactive.
type ExpirySweeper struct {
	cron    *cron.Cron
	useCase usecases_port.ExpireListingsUseCase
	logger  port.LoggerPort
	now     func() time.Time
	timeout time.Duration
}

func NewExpirySweeper(schedule string, useCase usecases_port.ExpireListingsUseCase, logger port.LoggerPort) (*ExpirySweeper, error) {
	if useCase == nil {
		return nil, fmt.Errorf("expire listings use case is required")
	}
	sweepLogger := logger.WithFields(port.Fields{"component": "ExpirySweeper", "schedule": schedule})

	s := &ExpirySweeper{
		useCase: useCase,
		logger:  sweepLogger,
		now:     time.Now,
		timeout: time.Minute,
	}
	// Медленный проход не должен наслаиваться на следующий
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{sweepLogger})))

	if _, err := s.cron.AddFunc(schedule, func() { _, _ = s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid expiry schedule %q: %w", schedule, err)
	}
	return s, nil
}

// RunOnce выполняет один проход. Ошибка логируется и возвращается.
func (s *ExpirySweeper) RunOnce(ctx context.Context) (int, error) {
	traceID := uuid.New().String()
	runLogger := s.logger.WithFields(port.Fields{"trace_id": traceID})

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	ctx = contextkeys.ContextWithLogger(ctx, runLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	expired, err := s.useCase.Execute(ctx, s.now())
	if err != nil {
		runLogger.Error("Expiry sweep failed", err, nil)
		return 0, err
	}
	if expired > 0 {
		runLogger.Info("Expired listings deactivated", port.Fields{"expired": expired})
	}
	return expired, nil
}

func (s *ExpirySweeper) Start() {
	s.logger.Info("Starting expiry sweeper", nil)
	s.cron.Start()
}

// Stop останавливает расписание и ждет текущий проход (не дольше ctx).
func (s *ExpirySweeper) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Expiry sweeper stopped", nil)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger адаптирует LoggerPort к cron.Logger
type cronLogger struct {
	logger port.LoggerPort
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, kvToFields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, err, kvToFields(keysAndValues))
}

func kvToFields(keysAndValues []interface{}) port.Fields {
	fields := make(port.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}
