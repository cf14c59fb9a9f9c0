package app

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pitboss/accounts/config"
	"github.com/pitboss/accounts/internal/accountservice"
	"github.com/pitboss/accounts/internal/auth"
	"github.com/pitboss/accounts/internal/interfaces"
	"github.com/pitboss/accounts/internal/middleware"
	"github.com/pitboss/accounts/internal/routes"
	"github.com/pitboss/accounts/internal/server"
	"github.com/pitboss/accounts/pkg/databases/mongo"
	"github.com/pitboss/accounts/pkg/databases/postgres"
	"github.com/pitboss/accounts/pkg/metrics"
	zerologger "github.com/pitboss/accounts/pkg/zerolog"

	mongoAccountRepo "github.com/pitboss/accounts/internal/accountrepo/mongo"
	postgresAccountRepo "github.com/pitboss/accounts/internal/accountrepo/postgres"

	structValidator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const ShutdownTimeout = 10 * time.Second

// Default login rate limit when the config leaves it unset.
const (
	DefaultLoginRPS   = 5
	DefaultLoginBurst = 10
)

// App wires the service together: config, logger, metrics, store handle,
// repository, service and routes. The store is opened once here and closed
// on shutdown; nothing holds it as ambient global state.
type App struct {
	Server     interfaces.Server
	Config     *config.ServiceConfig
	Logger     interfaces.Logger
	privateKey *ecdsa.PrivateKey
	repo       interfaces.AccountRepository
}

// NewApp creates and configures a new App instance.
func NewApp(configPath string) (*App, error) {
	cfg, err := config.ReadLocalConfig(configPath)
	if err != nil {
		return nil, err
	}

	// Validate the configuration
	validator := structValidator.New()
	if err := validator.Struct(cfg); err != nil {
		errs := err.(structValidator.ValidationErrors)
		return nil, fmt.Errorf("validation error: %s", errs)
	}

	logger := zerologger.NewZerologLogger(cfg.ServiceName)
	logger.SetLevel(cfg.LogLevel)

	app := &App{
		Config: cfg,
		Logger: logger,
	}

	serverInstance := server.NewServer(cfg.Host, cfg.Port, logger)
	app.Server = serverInstance

	metricsInstance := app.initializeMetrics()

	if err := app.initializePrivateKey(); err != nil {
		return nil, fmt.Errorf("failed to initialize private key: %v", err)
	}

	dbClient, err := app.initializeDBClient(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database client: %v", err)
	}

	accountRepo, err := app.initializeAccountRepo(dbClient)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize account repository: %v", err)
	}
	app.repo = accountRepo

	service := accountservice.NewAccountService(accountRepo, logger)

	route := routes.NewRoute(metricsInstance, service, app.privateKey, dbClient, validator)

	metricsHandler := promhttp.HandlerFor(
		metricsInstance.GetRegistry(),
		promhttp.HandlerOpts{})

	if err := app.Server.AddRoute(routes.MetricsRouteAPI, traced(metricsHandler, "metrics")); err != nil {
		return nil, fmt.Errorf("failed to add metrics route: %v", err)
	}

	loginHandler := app.rateLimited(http.HandlerFunc(route.Login))

	handlers := map[string]http.Handler{
		routes.RegisterRouteAPI: http.HandlerFunc(route.Register),
		routes.LoginRouteAPI:    loginHandler,
		routes.ListRouteAPI:     http.HandlerFunc(route.List),
		routes.DeleteRouteAPI:   http.HandlerFunc(route.Delete),
		routes.UpdateRouteAPI:   http.HandlerFunc(route.Update),
		routes.HealthRouteAPI:   http.HandlerFunc(route.Health),
	}
	for pattern, handler := range handlers {
		if err := app.Server.AddRoute(pattern, traced(handler, pattern)); err != nil {
			return nil, fmt.Errorf("failed to add route %s: %v", pattern, err)
		}
	}

	return app, nil
}

// Run starts the server and blocks until it fails or a termination signal
// arrives, then shuts the server down and closes the store.
func (app *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case sig := <-quit:
		app.Logger.Info("Signal received, shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Logger.Error("Server shutdown failed", "error", err)
	}
	if err := app.repo.Close(ctx); err != nil {
		app.Logger.Error("Failed to close account repository", "error", err)
		return fmt.Errorf("failed to close account repository: %w", err)
	}

	return nil
}

// traced wraps a handler with otelhttp instrumentation under the given
// operation name and adapts it to the AddRoute signature.
func traced(handler http.Handler, operation string) func(w http.ResponseWriter, r *http.Request) {
	return otelhttp.NewHandler(handler, operation).ServeHTTP
}

// rateLimited bounds a handler with the configured login token bucket.
func (app *App) rateLimited(handler http.Handler) http.Handler {
	rps := app.Config.LoginRateLimit.RequestsPerSecond
	burst := app.Config.LoginRateLimit.Burst
	if rps <= 0 {
		rps = DefaultLoginRPS
	}
	if burst <= 0 {
		burst = DefaultLoginBurst
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return middleware.RateLimitMiddleware(limiter)(handler)
}

func (app *App) initializeMetrics() interfaces.Metrics {
	appMetrics := metrics.NewMetrics(app.Config.ServiceName)

	appMetrics.RegisterCounter(routes.RegisterRequestsTotal, routes.RegisterRequestsTotalHelp)
	appMetrics.RegisterCounter(routes.RegisterSuccessTotal, routes.RegisterSuccessTotalHelp)
	appMetrics.RegisterCounter(routes.RegisterErrorsTotal, routes.RegisterErrorsTotalHelp)
	appMetrics.RegisterHistogram(
		routes.RegisterDurationSeconds,
		routes.RegisterDurationSecondsHelp,
		routes.RegisterDurationSecondsBuckets)

	appMetrics.RegisterCounter(routes.LoginRequestsTotal, routes.LoginRequestsTotalHelp)
	appMetrics.RegisterCounter(routes.LoginSuccessTotal, routes.LoginSuccessTotalHelp)
	appMetrics.RegisterCounter(routes.LoginFailedTotal, routes.LoginFailedTotalHelp)
	appMetrics.RegisterHistogram(
		routes.LoginDurationSeconds,
		routes.LoginDurationSecondsHelp,
		routes.LoginDurationSecondsBuckets)

	appMetrics.RegisterCounter(routes.ListRequestsTotal, routes.ListRequestsTotalHelp)
	appMetrics.RegisterCounter(routes.ListErrorsTotal, routes.ListErrorsTotalHelp)
	appMetrics.RegisterCounter(routes.DeleteRequestsTotal, routes.DeleteRequestsTotalHelp)
	appMetrics.RegisterCounter(routes.DeleteErrorsTotal, routes.DeleteErrorsTotalHelp)
	appMetrics.RegisterCounter(routes.UpdateRequestsTotal, routes.UpdateRequestsTotalHelp)
	appMetrics.RegisterCounter(routes.UpdateErrorsTotal, routes.UpdateErrorsTotalHelp)

	return appMetrics
}

func (app *App) initializeDBClient(logger interfaces.Logger) (interfaces.DBClient, error) {
	var dbClient interfaces.DBClient
	var err error

	switch app.Config.Database.Type {
	case "mongo":
		dbClient, err = mongo.NewMongoDB(&app.Config.Database.MongoDB, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MongoDB client: %v", err)
		}

		if err = dbClient.Connect(context.Background(), app.Config.Database.MongoDB.DSN); err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
		}

	case "postgres":
		dbClient = postgres.NewPostgresDatabaseClient(&app.Config.Database.Postgres)

		if err = dbClient.Connect(context.Background(), app.Config.Database.Postgres.DSN); err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %v", err)
		}

	default:
		return nil, fmt.Errorf("unsupported database type: %s", app.Config.Database.Type)
	}

	return dbClient, nil
}

func (app *App) initializeAccountRepo(dbClient interfaces.DBClient) (interfaces.AccountRepository, error) {
	var accountRepo interfaces.AccountRepository
	var err error

	switch app.Config.Database.Type {
	case "mongo":
		accountRepo, err = mongoAccountRepo.NewMongoAccountRepository(dbClient)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MongoDB repository: %v", err)
		}

	case "postgres":
		accountRepo, err = postgresAccountRepo.NewPostgresAccountRepository(dbClient)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL repository: %v", err)
		}

	default:
		return nil, fmt.Errorf("unsupported database type: %s", app.Config.Database.Type)
	}

	// Unique username indices back up the application-level duplicate check.
	if err = accountRepo.EnsureIndices(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure indices: %v", err)
	}

	return accountRepo, nil
}

func (app *App) initializePrivateKey() error {
	if app.Config.PrivateKeyPath == "" {
		return fmt.Errorf("private key path is not provided in the configuration")
	}

	privateKey, err := auth.LoadECDSAPrivateKey(app.Config.PrivateKeyPath)
	if err != nil {
		return fmt.Errorf("failed to load private key: %v", err)
	}

	app.privateKey = privateKey
	return nil
}
