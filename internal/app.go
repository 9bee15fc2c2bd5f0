package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"listing-service/internal/adapters/filestore"
	token_adapter "listing-service/internal/adapters/jwt"
	logger_adapter "listing-service/internal/adapters/logger"
	postgres_adapter "listing-service/internal/adapters/postgres"
	rabbitmq_adapter "listing-service/internal/adapters/rabbitmq"
	"listing-service/internal/adapters/rest"
	"listing-service/internal/adapters/scheduler"
	"listing-service/internal/configs"
	"listing-service/internal/constants"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/port"
	"listing-service/internal/core/usecase"
	fluentlogger "listing-service/pkg/fluent_logger"
	"listing-service/pkg/postgres"
	"listing-service/pkg/rabbitmq/rabbitmq_common"
	"listing-service/pkg/rabbitmq/rabbitmq_consumer"
	"listing-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

type propertyStore interface {
	port.PropertyStoragePort
	port.HealthCheckerPort
}

// App – структура приложения
type App struct {
	config       *configs.AppConfig
	dbPool       *pgxpool.Pool
	apiServer    *rest.Server
	sweeper      *scheduler.ExpirySweeper
	fluentClient *fluent.Fluent
	logger       port.LoggerPort

	connManager           *rabbitmq_common.ConnectionManager
	eventsProducer        *rabbitmq_producer.Publisher
	listingImportListener port.EventListenerPort
}

// NewApp - composition root: все зависимости создаются и связываются здесь.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	app := &App{config: appConfig}
	if err := app.init(); err != nil {
		app.closeResources()
		return nil, err
	}
	return app, nil
}

func (a *App) init() error {
	cfg := a.config

	// --- 1. ЛОГГЕРЫ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    logger_adapter.ParseLevel(cfg.StdoutLogger.Level),
		IsJSON:   cfg.StdoutLogger.Format == "json",
		UseColor: cfg.StdoutLogger.Format == "color",
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if cfg.FluentBit.Enabled {
		fluentClient, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.AppName,
			Async:     true,
			Timeout:   3 * time.Second,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return fmt.Errorf("failed to create fluentbit client: %w", err)
		}
		a.fluentClient = fluentClient

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, cfg.AppName, logger_adapter.ParseLevel(cfg.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			return err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": cfg.AppName})
	a.logger = baseLogger.WithFields(port.Fields{"component": "app"})
	a.logger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": cfg.FluentBit.Enabled,
	})

	// --- 2. ХРАНИЛИЩЕ ---
	store, err := a.initStorage(baseLogger)
	if err != nil {
		return err
	}

	// --- 3. ИСХОДЯЩИЕ АДАПТЕРЫ ---
	var eventPublisher port.PropertyEventPublisherPort = rabbitmq_adapter.NoopEventPublisher{}
	if cfg.RabbitMQ.Enabled {
		connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
		a.connManager, err = rabbitmq_common.NewConnectionManager(rabbitmq_common.Config{URL: cfg.RabbitMQ.URL}, connManagerBridge)
		if err != nil {
			a.logger.Error("Failed to create connection manager", err, nil)
			return fmt.Errorf("failed to create connection manager: %w", err)
		}
		a.logger.Info("RabbitMQ Connection Manager initialized.", nil)

		a.eventsProducer, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:                   rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
			ExchangeName:             constants.ListingsExchange,
			ExchangeType:             "topic",
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
		}, a.connManager)
		if err != nil {
			a.logger.Error("Failed to create event producer", err, nil)
			return fmt.Errorf("failed to create event producer: %w", err)
		}

		eventPublisher, err = rabbitmq_adapter.NewPropertyEventPublisher(a.eventsProducer)
		if err != nil {
			return err
		}
		a.logger.Info("RabbitMQ Event Producer initialized.", nil)
	} else {
		a.logger.Warn("RabbitMQ is disabled, property events will not be published", nil)
	}

	// --- 4. USE CASES ---
	createUC := usecase.NewCreatePropertyUseCase(store, eventPublisher)
	propertyUseCases := rest.PropertyUseCases{
		Create: createUC,
		Get:    usecase.NewGetPropertyUseCase(store),
		List:   usecase.NewListActivePropertiesUseCase(store, cfg.Listings.DefaultListLimit),
		Owner:  usecase.NewListOwnerPropertiesUseCase(store),
		Update: usecase.NewUpdatePropertyUseCase(store, eventPublisher),
		Delete: usecase.NewDeletePropertyUseCase(store, eventPublisher),
		Search: usecase.NewSearchPropertiesUseCase(store),
		Browse: usecase.NewBrowsePropertiesUseCase(store),
		Lead:   usecase.NewRecordLeadUseCase(store, eventPublisher),
	}
	expireUC := usecase.NewExpireListingsUseCase(store)
	a.logger.Info("All use cases initialized.", nil)

	// --- 5. ВХОДЯЩИЕ АДАПТЕРЫ ---
	if cfg.RabbitMQ.Enabled {
		importCfg := rabbitmq_consumer.ConsumerConfig{
			Config:                 rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
			QueueName:              constants.ListingImportQueue,
			DeclareQueue:           true,
			DurableQueue:           true,
			ExchangeNameForBind:    constants.ListingsExchange,
			DeclareExchangeForBind: true,
			ExchangeTypeForBind:    "topic",
			DurableExchangeForBind: true,
			RoutingKeyForBind:      constants.ListingImportRouting,
			PrefetchCount:          cfg.RabbitMQ.PrefetchCount,
			ConsumerTag:            "listing-import-adapter",

			EnableRetryMechanism: true,
			RetryExchange:        constants.ListingImportRetryExchange,
			RetryQueue:           constants.ListingImportRetryQueue,
			RetryTTL:             int(cfg.RabbitMQ.RetryTTL.Milliseconds()),
			FinalDLXExchange:     constants.FinalDLXExchange,
			FinalDLQ:             constants.FinalDLQ,
			FinalDLQRoutingKey:   constants.FinalDLQRoutingKey,
			MaxRetries:           cfg.RabbitMQ.MaxRetries,
		}
		listener, err := rabbitmq_adapter.NewListingImportConsumerAdapter(importCfg, createUC, baseLogger, a.connManager)
		if err != nil {
			a.logger.Error("Failed to create listing import listener", err, nil)
			return err
		}
		a.listingImportListener = listener
		a.logger.Info("Listing import listener initialized.", nil)
	}

	a.sweeper, err = scheduler.NewExpirySweeper(cfg.Listings.ExpirySchedule, expireUC,
		baseLogger.WithFields(port.Fields{"component": "expiry_sweeper"}))
	if err != nil {
		a.logger.Error("Failed to create expiry sweeper", err, port.Fields{"schedule": cfg.Listings.ExpirySchedule})
		return err
	}

	tokenService, err := token_adapter.NewTokenService(cfg.Auth.JWTSigningKey)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}

	serverCfg := rest.ServerConfig{
		Port:           cfg.Rest.Port,
		AllowedOrigins: cfg.Rest.AllowedOrigins,
		RequestTimeout: cfg.Rest.RequestTimeout,
	}
	router := rest.NewRouter(serverCfg,
		rest.NewPropertyHandler(propertyUseCases),
		rest.NewCalculatorHandler(usecase.NewCalculateEMIUseCase(), usecase.NewGetPlansUseCase()),
		rest.NewHealthHandler(store),
		rest.NewAuthMiddleware(tokenService),
		baseLogger,
	)
	a.apiServer = rest.NewServer(serverCfg, router, baseLogger)
	a.logger.Info("REST API server configured.", nil)

	return nil
}

func (a *App) initStorage(baseLogger port.LoggerPort) (propertyStore, error) {
	cfg := a.config.Storage

	switch cfg.Backend {
	case configs.StorageBackendPostgres:
		ctx := contextkeys.ContextWithLogger(context.Background(), baseLogger)
		dbPool, err := postgres.NewClient(ctx, postgres.Config{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    int32(cfg.MaxConns),
		})
		if err != nil {
			a.logger.Error("Failed to connect to PostgreSQL", err, nil)
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		a.dbPool = dbPool
		a.logger.Info("Successfully connected to PostgreSQL pool!", nil)

		if err := postgres_adapter.EnsureSchema(ctx, dbPool); err != nil {
			a.logger.Error("Failed to apply schema migrations", err, nil)
			return nil, err
		}

		adapter, err := postgres_adapter.NewPostgresStorageAdapter(dbPool)
		if err != nil {
			a.logger.Error("Failed to create postgres storage adapter", err, nil)
			return nil, fmt.Errorf("failed to create postgres storage adapter: %w", err)
		}
		return adapter, nil

	default:
		store, err := filestore.NewPropertyFileStore(cfg.FilePath)
		if err != nil {
			a.logger.Error("Failed to open file store", err, port.Fields{"path": cfg.FilePath})
			return nil, err
		}
		a.logger.Info("File store opened", port.Fields{"path": cfg.FilePath})
		return store, nil
	}
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup

	defer a.shutdown(&wg)

	a.logger.Info("Application is starting...", nil)

	errorsCh := make(chan error, 2)

	startListener := func(name string, listener port.EventListenerPort) {
		defer wg.Done()
		listenerLogger := a.logger.WithFields(port.Fields{"listener_name": name})
		listenerLogger.Info("Starting listener...", nil)

		if err := listener.Start(appCtx); err != nil {
			listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
			errorsCh <- fmt.Errorf("%s error: %w", name, err)
		} else {
			listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
		}
	}

	if a.listingImportListener != nil {
		wg.Add(1)
		go startListener("Listing Import Listener", a.listingImportListener)
	}

	a.sweeper.Start()

	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.Rest.Port})
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)

	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", err, nil)
		runErr = err
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly, shutting down...", nil)
	}

	// слушатели выходят по отмене контекста
	cancelApp()

	return runErr
}

func (a *App) shutdown(wg *sync.WaitGroup) {
	a.logger.Info("Shutdown sequence initiated...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), a.config.Rest.ShutdownTimeout)
	defer cancel()

	if a.apiServer != nil {
		if err := a.apiServer.Stop(ctx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}
	}

	if a.sweeper != nil {
		if err := a.sweeper.Stop(ctx); err != nil {
			a.logger.Error("Expiry sweeper did not stop in time", err, nil)
		}
	}

	a.logger.Info("Waiting for background processes to finish...", nil)
	wg.Wait()
	a.logger.Info("All background processes finished.", nil)

	a.closeResources()
}

// closeResources освобождает ресурсы в обратном порядке создания;
// вызывается и при неудачной инициализации, поэтому проверяет каждый на nil.
func (a *App) closeResources() {
	if a.listingImportListener != nil {
		if err := a.listingImportListener.Close(); err != nil {
			a.logger.Error("Error closing listing import listener", err, nil)
		}
	}

	if a.eventsProducer != nil {
		if err := a.eventsProducer.Close(); err != nil {
			a.logger.Error("Error closing event producer", err, nil)
		}
	}

	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}

	if a.dbPool != nil {
		a.dbPool.Close()
		if a.logger != nil {
			a.logger.Info("PostgreSQL pool closed.", nil)
		}
	}

	if a.logger != nil {
		a.logger.Info("Application shut down gracefully.", nil)
	}

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// fluent может быть уже недоступен
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
}
