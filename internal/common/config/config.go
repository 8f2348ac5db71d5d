package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Network       NetworkConfig           `mapstructure:"network"`
	Wallet        WalletConfig            `mapstructure:"wallet"`
	Ledger        LedgerConfig            `mapstructure:"ledger"`
	Gateway       GatewayConfig           `mapstructure:"gateway"`
	Encryption    EncryptionConfig        `mapstructure:"encryption"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Receipts      ReceiptsConfig          `mapstructure:"receipts"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name         string `mapstructure:"name"`
	Version      string `mapstructure:"version"`
	Environment  string `mapstructure:"environment"`
	RegistryPath string `mapstructure:"registry_path"`
	HTTPAddress  string `mapstructure:"http_address"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// --- Chain and authority boundaries ---

// Network environments.
const (
	NetworkLocal   = "local"
	NetworkSepolia = "sepolia"
	NetworkCustom  = "custom"
)

// NetworkConfig selects the target chain. Non-empty fields override the preset for Environment.
type NetworkConfig struct {
	Environment      string `mapstructure:"environment"`
	ChainID          string `mapstructure:"chain_id"`
	DisplayName      string `mapstructure:"display_name"`
	RPCURL           string `mapstructure:"rpc_url"`
	BlockExplorerURL string `mapstructure:"block_explorer_url"`
	CurrencyName     string `mapstructure:"currency_name"`
	CurrencySymbol   string `mapstructure:"currency_symbol"`
	CurrencyDecimals int    `mapstructure:"currency_decimals"`
	AutoReconcile    bool   `mapstructure:"auto_reconcile"`
}

// WalletConfig points at the JSON-RPC endpoint of the signing wallet.
type WalletConfig struct {
	RPCURL  string `mapstructure:"rpc_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// Verdict modes.
const (
	VerdictModeDisclosed = "disclosed"
	VerdictModeEncrypted = "encrypted"
)

type LedgerConfig struct {
	ContractAddress          string `mapstructure:"contract_address"`
	VerdictMode              string `mapstructure:"verdict_mode"`
	ConfirmationPollInterval int    `mapstructure:"confirmation_poll_interval"` // milliseconds
	Gas                      uint64 `mapstructure:"gas"`
}

type GatewayConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
}

// Encryption schemes.
const (
	SchemePacking   = "packing"
	SchemeSealedBox = "sealed-box"
)

type EncryptionConfig struct {
	Scheme    string `mapstructure:"scheme"`
	PublicKey string `mapstructure:"public_key"` // hex, 32 bytes
}

// --- Storage ---

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ReceiptsConfig struct {
	TTLHours int `mapstructure:"ttl_hours"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
	// ServiceShare is the part of Timeout a worker's service may use; the rest is kept for
	// completing or failing the job. Zero means the worker's own default.
	ServiceShare float64 `mapstructure:"service_share"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	ServiceName    string  `mapstructure:"service_name"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

// NotificationConfig holds the SNS topic that receives domain events.
type NotificationConfig struct {
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		Region   string `mapstructure:"region"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}
