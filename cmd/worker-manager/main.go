// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"eligibility-workers/internal/common/aws"
	"eligibility-workers/internal/common/camunda"
	"eligibility-workers/internal/common/config"
	"eligibility-workers/internal/common/database"
	"eligibility-workers/internal/common/gateway"
	"eligibility-workers/internal/common/ledger"
	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/common/observability"
	"eligibility-workers/internal/common/wallet"
	"eligibility-workers/internal/eligibility/audit"
	"eligibility-workers/internal/eligibility/encoding"
	"eligibility-workers/internal/eligibility/events"
	"eligibility-workers/internal/eligibility/network"
	"eligibility-workers/internal/eligibility/receipts"
	"eligibility-workers/pkg/registry"

	ce "eligibility-workers/internal/workers/eligibility/check-eligibility"
	evs "eligibility-workers/internal/workers/eligibility/evaluate-score"
	sa "eligibility-workers/internal/workers/eligibility/submit-application"
	rn "eligibility-workers/internal/workers/network/reconcile-network"
)

type workerHandler interface {
	Register() error
	Close()
	GetTaskType() string
	IsEnabled() bool
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("network", cfg.Network.Environment),
	)

	obs := observability.New(cfg.Observability.ServiceName)
	defer obs.Shutdown()

	tp, err := observability.NewTracerProvider(cfg.Observability)
	if err != nil {
		zapLog.Fatal("tracer provider init failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Wallet and target network ---
	var provider *wallet.RPCProvider
	var rpcClient interface {
		wallet.Caller
		Close()
	}
	err = retryWithBackoff(func() error {
		dialCtx, cancel := context.WithTimeout(ctx, config.GetDuration(cfg.Wallet.Timeout))
		defer cancel()
		p, c, err := wallet.Dial(dialCtx, cfg.Wallet.RPCURL)
		if err != nil {
			return err
		}
		provider, rpcClient = p, c
		return nil
	}, 5, 2*time.Second, zapLog, "Wallet RPC connection")
	if err != nil {
		zapLog.Fatal("wallet connection failed after retries", zap.Error(err))
	}
	defer rpcClient.Close()

	target, err := network.ResolveTarget(cfg.Network)
	if err != nil {
		zapLog.Fatal("invalid target network", zap.Error(err))
	}
	reconciler := network.NewReconciler(provider, target, log)
	zapLog.Info("Target network resolved",
		zap.String("chainId", target.ChainID),
		zap.String("chainName", target.DisplayName),
	)

	// --- Ledger authority ---
	contract, err := ledger.NewContractClient(rpcClient, provider, ledger.Options{
		Contract:     common.HexToAddress(cfg.Ledger.ContractAddress),
		PollInterval: config.GetDuration(cfg.Ledger.ConfirmationPollInterval),
		Gas:          cfg.Ledger.Gas,
	})
	if err != nil {
		zapLog.Fatal("ledger client init failed", zap.Error(err))
	}
	verifyCtx, cancelVerify := context.WithTimeout(ctx, 10*time.Second)
	err = contract.VerifyDeployment(verifyCtx)
	cancelVerify()
	if err != nil {
		zapLog.Fatal("ledger contract is not deployed at the configured address",
			zap.String("contract", cfg.Ledger.ContractAddress),
			zap.Error(err),
		)
	}

	encoder, err := encoding.New(cfg.Encryption)
	if err != nil {
		zapLog.Fatal("encoder init failed", zap.Error(err))
	}

	var decrypter gateway.Decrypter
	if cfg.Ledger.VerdictMode == config.VerdictModeEncrypted {
		gw, err := gateway.NewClient(cfg.Gateway)
		if err != nil {
			zapLog.Fatal("decryption gateway init failed", zap.Error(err))
		}
		decrypter = gw
	}

	// --- Receipts (Redis) ---
	var receiptStore receipts.Store
	var rdb *database.RedisClient
	if cfg.Database.Redis.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		receiptStore = receipts.NewRedisStore(rdb.Client, time.Duration(cfg.Receipts.TTLHours)*time.Hour)
		zapLog.Info("Redis connected successfully")
	}

	// --- Audit trail (PostgreSQL) ---
	var recorder audit.Recorder = audit.NoopRecorder{}
	var pg *database.PostgresClient
	if cfg.Database.Postgres.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		store := audit.NewPostgresStore(pg.DB)
		if err := store.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("audit schema init failed", zap.Error(err))
		}
		recorder = store
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Domain events (SNS) ---
	var publisher events.Publisher = events.NoopPublisher{}
	if sns := cfg.Notifications.SNS; sns.Enabled {
		topic, err := aws.NewSNSClient(ctx, sns.Region, sns.TopicARN)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		publisher = events.NewSNSPublisher(topic)
	}

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Workers ---
	submitter := sa.NewService(sa.ServiceDependencies{
		Logger:        log.WithFields(map[string]interface{}{"service": "submission"}),
		Network:       reconciler,
		Wallet:        provider,
		Ledger:        contract,
		Encoder:       encoder,
		Receipts:      receiptStore,
		Audit:         recorder,
		Events:        publisher,
		AutoReconcile: cfg.Network.AutoReconcile,
	})
	checker, err := ce.NewService(ce.ServiceDependencies{
		Logger:      log.WithFields(map[string]interface{}{"service": "verdict"}),
		Network:     reconciler,
		Wallet:      provider,
		Ledger:      contract,
		Gateway:     decrypter,
		Receipts:    receiptStore,
		Audit:       recorder,
		Events:      publisher,
		VerdictMode: cfg.Ledger.VerdictMode,
	})
	if err != nil {
		zapLog.Fatal("verdict service init failed", zap.Error(err))
	}

	handlers := buildHandlers(cfg, zeebe, log, obs, submitter, checker, reconciler, zapLog)
	checkRegistry(cfg.App.RegistryPath, handlers, zapLog)

	started := 0
	for _, h := range handlers {
		if !h.IsEnabled() {
			zapLog.Info("Worker disabled", zap.String("taskType", h.GetTaskType()))
			continue
		}
		if err := h.Register(); err != nil {
			zapLog.Fatal("failed to register worker", zap.String("taskType", h.GetTaskType()), zap.Error(err))
		}
		started++
	}
	zapLog.Info("Workers registered", zap.Int("count", started))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		status := http.StatusOK
		probe := func(name string, fn func(context.Context) error) {
			if err := fn(checkCtx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				return
			}
			checks[name] = "ok"
		}
		probe("zeebe", zeebe.HealthCheck)
		if rdb != nil {
			probe("redis", rdb.Ping)
		}
		if pg != nil {
			probe("postgres", pg.Ping)
		}
		probe("network", func(ctx context.Context) error {
			state, err := reconciler.CheckNetwork(ctx)
			if err != nil {
				return err
			}
			if !state.IsReconciled {
				return fmt.Errorf("wallet on chain %s, expected %s", state.ActiveChainID, state.TargetChainID)
			}
			return nil
		})

		label := "ready"
		if status != http.StatusOK {
			label = "not_ready"
		}
		writeStatus(w, status, label, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.App.HTTPAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.App.HTTPAddress))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, h := range handlers {
		h.Close()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := observability.ShutdownTracer(shutdownCtx, tp); err != nil {
		zapLog.Error("Error flushing traces", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func buildHandlers(
	cfg *config.Config,
	zeebe *camunda.Client,
	log logger.Logger,
	obs *observability.Observability,
	submitter *sa.Service,
	checker *ce.Service,
	reconciler *network.Reconciler,
	zapLog *zap.Logger,
) []workerHandler {
	var handlers []workerHandler

	evaluate, err := evs.NewHandler(evs.HandlerOptions{
		AppConfig:     cfg,
		Camunda:       zeebe,
		Logger:        log,
		Observability: obs,
		Service:       evs.NewService(evs.ServiceDependencies{Logger: log}),
	})
	if err != nil {
		zapLog.Fatal("failed to create evaluate-score handler", zap.Error(err))
	}
	handlers = append(handlers, evaluate)

	submit, err := sa.NewHandler(sa.HandlerOptions{
		AppConfig:     cfg,
		Camunda:       zeebe,
		Logger:        log,
		Observability: obs,
		Service:       submitter,
	})
	if err != nil {
		zapLog.Fatal("failed to create submit-application handler", zap.Error(err))
	}
	handlers = append(handlers, submit)

	check, err := ce.NewHandler(ce.HandlerOptions{
		AppConfig:     cfg,
		Camunda:       zeebe,
		Logger:        log,
		Observability: obs,
		Service:       checker,
	})
	if err != nil {
		zapLog.Fatal("failed to create check-eligibility handler", zap.Error(err))
	}
	handlers = append(handlers, check)

	reconcile, err := rn.NewHandler(rn.HandlerOptions{
		AppConfig:     cfg,
		Camunda:       zeebe,
		Logger:        log,
		Observability: obs,
		Service:       rn.NewService(rn.ServiceDependencies{Logger: log, Network: reconciler}),
	})
	if err != nil {
		zapLog.Fatal("failed to create reconcile-network handler", zap.Error(err))
	}
	handlers = append(handlers, reconcile)

	return handlers
}

// checkRegistry warns about workers whose task type the activity registry does not list.
func checkRegistry(path string, handlers []workerHandler, zapLog *zap.Logger) {
	if path == "" {
		return
	}
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		zapLog.Warn("Activity registry not loaded", zap.String("path", path), zap.Error(err))
		return
	}
	if err := reg.Validate(); err != nil {
		zapLog.Warn("Activity registry is invalid", zap.Error(err))
	}
	for _, h := range handlers {
		if _, ok := reg.Find(h.GetTaskType()); !ok {
			zapLog.Warn("Task type missing from activity registry", zap.String("taskType", h.GetTaskType()))
		}
	}
}

func writeStatus(w http.ResponseWriter, code int, status string, checks map[string]string) {
	body := map[string]interface{}{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if checks != nil {
		body["checks"] = checks
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
