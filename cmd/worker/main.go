package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fractionft/fractionft/internal/adapter"
	"github.com/fractionft/fractionft/internal/config"
	"github.com/fractionft/fractionft/internal/domain"
	"github.com/fractionft/fractionft/internal/fractional"
	"github.com/fractionft/fractionft/internal/issuer"
	"github.com/fractionft/fractionft/internal/logger"
	"github.com/fractionft/fractionft/internal/providers/hedera"
	"github.com/fractionft/fractionft/internal/providers/jetstream"
	temporalprovider "github.com/fractionft/fractionft/internal/providers/temporal"
	"github.com/fractionft/fractionft/internal/store"
	"github.com/fractionft/fractionft/internal/wallet"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

// buildIssuer selects the token issuer backing from configuration. The ledger
// issuer starts with a disconnected wallet session; every submission fails
// until a wallet pairs, which is the honest state of affairs.
func buildIssuer(cfg config.IssuerConfig) issuer.TokenIssuer {
	switch cfg.Mode {
	case "ledger":
		httpClient := adapter.NewHTTPClient(30 * time.Second)
		mirrorClient := hedera.NewMirrorClient(httpClient, cfg.MirrorNodeURL)
		session := wallet.NewSession(nil, domain.Network(cfg.Network), "fractionft")
		return hedera.NewLedgerIssuer(mirrorClient, session)
	default:
		return issuer.NewLocalIssuer(domain.AccountID(cfg.OperatorAccount), cfg.BaseEntityNum)
	}
}

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadWorkerCoreConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "worker",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting FractioNFT worker")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err), zap.String("dsn", cfg.Database.DSN()))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.Fatal("Failed to configure connection pool", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clockAdapter := adapter.NewClock()

	// Initialize token issuer
	tokenIssuer := buildIssuer(cfg.Issuer)
	logger.Info("Initialized token issuer", zap.String("mode", cfg.Issuer.Mode))

	// Connect to NATS JetStream
	publisher, err := jetstream.NewPublisher(jetstream.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		SubjectPrefix:  cfg.NATS.SubjectPrefix,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: cfg.NATS.ConnectionName,
	})
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer publisher.Close()
	logger.Info("Connected to NATS", zap.String("stream", cfg.NATS.StreamName))

	// Initialize executor for activities
	executor := fractional.NewExecutor(dataStore, tokenIssuer, publisher, clockAdapter)

	// Connect to Temporal
	temporalLogger := temporalprovider.NewZapLoggerAdapter(logger.Default())
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporalLogger,
	})
	if err != nil {
		logger.Fatal("Failed to connect to Temporal", zap.Error(err), zap.String("host_port", cfg.Temporal.HostPort))
	}
	defer temporalClient.Close()
	logger.Info("Connected to Temporal", zap.String("namespace", cfg.Temporal.Namespace))

	// Create Temporal worker
	temporalWorker := worker.New(
		temporalClient,
		cfg.Temporal.TaskQueue,
		worker.Options{
			MaxConcurrentActivityExecutionSize: cfg.Temporal.MaxConcurrentActivityExecutionSize,
			WorkerActivitiesPerSecond:          cfg.Temporal.WorkerActivitiesPerSecond,
			MaxConcurrentActivityTaskPollers:   cfg.Temporal.MaxConcurrentActivityTaskPollers,
		})
	logger.Info("Created Temporal worker", zap.String("taskQueue", cfg.Temporal.TaskQueue))

	// Create worker core instance
	workerCore := fractional.NewWorkerCore(executor)

	// Register workflows
	temporalWorker.RegisterWorkflow(workerCore.FractionalizeNFT)
	temporalWorker.RegisterWorkflow(workerCore.TransferShares)
	logger.Info("Registered workflows")

	// Register activities
	temporalWorker.RegisterActivity(executor.IssueFractionalToken)
	temporalWorker.RegisterActivity(executor.ApplyFractionalization)
	temporalWorker.RegisterActivity(executor.RetireFractionalToken)
	temporalWorker.RegisterActivity(executor.MirrorShareTransfer)
	temporalWorker.RegisterActivity(executor.ApplyShareTransfer)
	temporalWorker.RegisterActivity(executor.PublishOwnershipEvent)
	logger.Info("Registered activities")

	// Start worker
	err = temporalWorker.Start()
	if err != nil {
		logger.Fatal("Failed to start worker", zap.Error(err))
	}
	logger.Info("Worker started and listening for tasks")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down worker...")
	temporalWorker.Stop()
	logger.Info("Worker stopped")
}
