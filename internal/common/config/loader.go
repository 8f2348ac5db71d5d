package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml and applies env overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	// LEDGER_CONTRACT_ADDRESS overrides ledger.contract_address, and so on.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// bindEnvKeys makes AutomaticEnv visible to Unmarshal for keys absent from the yaml.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"camunda.broker_address",
		"network.environment",
		"network.chain_id",
		"network.rpc_url",
		"wallet.rpc_url",
		"ledger.contract_address",
		"ledger.verdict_mode",
		"gateway.base_url",
		"encryption.scheme",
		"encryption.public_key",
		"database.postgres.host",
		"database.postgres.password",
		"database.redis.address",
		"notifications.sns.topic_arn",
	} {
		_ = v.BindEnv(key)
	}
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets that are conventionally provided under short env names.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.Postgres.User == "" {
		cfg.Database.Postgres.User = os.Getenv("DB_USER")
	}
	if cfg.Database.Postgres.Password == "" {
		cfg.Database.Postgres.Password = os.Getenv("DB_PASSWORD")
	}
	if cfg.Ledger.ContractAddress == "" {
		cfg.Ledger.ContractAddress = os.Getenv("CONTRACT_ADDRESS")
	}
	if cfg.Encryption.PublicKey == "" {
		cfg.Encryption.PublicKey = os.Getenv("ENCRYPTION_PUBLIC_KEY")
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "eligibility-workers"
	}
	if cfg.App.HTTPAddress == "" {
		cfg.App.HTTPAddress = ":8080"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Network.Environment == "" {
		cfg.Network.Environment = NetworkLocal
	}
	if cfg.Wallet.Timeout == 0 {
		cfg.Wallet.Timeout = 15000
	}

	if cfg.Ledger.VerdictMode == "" {
		cfg.Ledger.VerdictMode = VerdictModeDisclosed
	}
	if cfg.Ledger.ConfirmationPollInterval == 0 {
		cfg.Ledger.ConfirmationPollInterval = 1000
	}
	if cfg.Ledger.Gas == 0 {
		cfg.Ledger.Gas = 1_500_000
	}

	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = 10000
	}
	if cfg.Gateway.MaxRetries == 0 {
		cfg.Gateway.MaxRetries = 3
	}

	if cfg.Encryption.Scheme == "" {
		cfg.Encryption.Scheme = SchemePacking
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Receipts.TTLHours == 0 {
		cfg.Receipts.TTLHours = 24 * 30
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
	if cfg.Observability.SampleRatio == 0 {
		cfg.Observability.SampleRatio = 1
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig rejects configurations the pipeline cannot run with. A zero ledger address is fatal.
func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	switch cfg.Network.Environment {
	case NetworkLocal, NetworkSepolia:
	case NetworkCustom:
		if cfg.Network.ChainID == "" || cfg.Network.RPCURL == "" || cfg.Network.DisplayName == "" {
			return fmt.Errorf("network.chain_id, network.rpc_url and network.display_name are required for a custom network")
		}
	default:
		return fmt.Errorf("network.environment %q is not one of local, sepolia, custom", cfg.Network.Environment)
	}

	if cfg.Wallet.RPCURL == "" {
		return fmt.Errorf("wallet.rpc_url is required")
	}

	if err := ValidateContractAddress(cfg.Ledger.ContractAddress); err != nil {
		return err
	}

	switch cfg.Ledger.VerdictMode {
	case VerdictModeDisclosed:
	case VerdictModeEncrypted:
		if cfg.Gateway.BaseURL == "" {
			return fmt.Errorf("gateway.base_url is required when ledger.verdict_mode is encrypted")
		}
	default:
		return fmt.Errorf("ledger.verdict_mode %q is not one of disclosed, encrypted", cfg.Ledger.VerdictMode)
	}

	switch cfg.Encryption.Scheme {
	case SchemePacking:
	case SchemeSealedBox:
		key, err := hex.DecodeString(strings.TrimPrefix(cfg.Encryption.PublicKey, "0x"))
		if err != nil || len(key) != 32 {
			return fmt.Errorf("encryption.public_key must be 32 hex-encoded bytes for the sealed-box scheme")
		}
	default:
		return fmt.Errorf("encryption.scheme %q is not one of packing, sealed-box", cfg.Encryption.Scheme)
	}

	if cfg.Database.Postgres.Enabled {
		if cfg.Database.Postgres.Host == "" || cfg.Database.Postgres.Database == "" || cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres host, database and user are required when enabled")
		}
	}

	if cfg.Database.Redis.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when enabled")
	}

	if cfg.Notifications.SNS.Enabled && cfg.Notifications.SNS.TopicARN == "" {
		return fmt.Errorf("notifications.sns.topic_arn is required when enabled")
	}

	return nil
}

// ValidateContractAddress rejects empty, malformed and zero ledger addresses.
func ValidateContractAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("ledger.contract_address is required")
	}
	if !common.IsHexAddress(addr) {
		return fmt.Errorf("ledger.contract_address %q is not a valid address", addr)
	}
	if common.HexToAddress(addr) == (common.Address{}) {
		return fmt.Errorf("ledger.contract_address is the zero address")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig returns the workers.<name> section and whether it is present.
func GetWorkerConfig(cfg *Config, workerName string) (WorkerConfig, bool) {
	if cfg == nil {
		return WorkerConfig{}, false
	}
	worker, exists := cfg.Workers[workerName]
	return worker, exists
}

// ServiceBudget is the slice of a job timeout handed to the service call.
func ServiceBudget(timeout time.Duration, share float64) time.Duration {
	return time.Duration(float64(timeout) * share)
}

// ValidateServiceShare requires 0 < share < 1.
func ValidateServiceShare(share float64) error {
	if share <= 0 || share >= 1 {
		return fmt.Errorf("service_share must be between 0 and 1")
	}
	return nil
}
