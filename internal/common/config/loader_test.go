package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
app:
  name: eligibility-workers
camunda:
  broker_address: localhost:26500
network:
  environment: local
wallet:
  rpc_url: http://127.0.0.1:8545
ledger:
  contract_address: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
workers:
  submit-application:
    enabled: true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, NetworkLocal, cfg.Network.Environment)
	assert.Equal(t, VerdictModeDisclosed, cfg.Ledger.VerdictMode)
	assert.Equal(t, SchemePacking, cfg.Encryption.Scheme)
	assert.Equal(t, 1000, cfg.Ledger.ConfirmationPollInterval)
	assert.Equal(t, 3, cfg.Gateway.MaxRetries)
	assert.Equal(t, 720, cfg.Receipts.TTLHours)
	assert.Equal(t, "eligibility-workers", cfg.Observability.ServiceName)

	w, ok := GetWorkerConfig(cfg, "submit-application")
	require.True(t, ok)
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_GATEWAY_URL", "http://gateway.internal")
	body := baseYAML + `
gateway:
  base_url: ${TEST_GATEWAY_URL}
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, "http://gateway.internal", cfg.Gateway.BaseURL)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{
			Camunda: CamundaConfig{BrokerAddress: "localhost:26500"},
			Network: NetworkConfig{Environment: NetworkLocal},
			Wallet:  WalletConfig{RPCURL: "http://127.0.0.1:8545"},
			Ledger:  LedgerConfig{ContractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3"},
		}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing broker", func(c *Config) { c.Camunda.BrokerAddress = "" }, "camunda.broker_address"},
		{"unknown network", func(c *Config) { c.Network.Environment = "mainnet" }, "network.environment"},
		{"custom without chain id", func(c *Config) { c.Network.Environment = NetworkCustom }, "custom network"},
		{"missing wallet", func(c *Config) { c.Wallet.RPCURL = "" }, "wallet.rpc_url"},
		{"missing contract", func(c *Config) { c.Ledger.ContractAddress = "" }, "is required"},
		{"zero contract", func(c *Config) {
			c.Ledger.ContractAddress = "0x0000000000000000000000000000000000000000"
		}, "zero address"},
		{"malformed contract", func(c *Config) { c.Ledger.ContractAddress = "0x1234" }, "not a valid address"},
		{"encrypted without gateway", func(c *Config) { c.Ledger.VerdictMode = VerdictModeEncrypted }, "gateway.base_url"},
		{"unknown verdict mode", func(c *Config) { c.Ledger.VerdictMode = "public" }, "verdict_mode"},
		{"sealed box without key", func(c *Config) { c.Encryption.Scheme = SchemeSealedBox }, "public_key"},
		{"sealed box with key", func(c *Config) {
			c.Encryption.Scheme = SchemeSealedBox
			c.Encryption.PublicKey = "0x" + "11223344556677881122334455667788112233445566778811223344556677aa"
		}, ""},
		{"sns without topic", func(c *Config) { c.Notifications.SNS.Enabled = true }, "topic_arn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, "1.5s", GetDuration(1500).String())
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{"check-eligibility": {Enabled: false, ServiceShare: 0.6}}}

	w, ok := GetWorkerConfig(cfg, "check-eligibility")
	require.True(t, ok)
	assert.False(t, w.Enabled)
	assert.Equal(t, 0.6, w.ServiceShare)

	_, ok = GetWorkerConfig(cfg, "evaluate-score")
	assert.False(t, ok)

	_, ok = GetWorkerConfig(nil, "evaluate-score")
	assert.False(t, ok)
}

func TestLoadFromFile_ReadsServiceShare(t *testing.T) {
	body := baseYAML + `    service_share: 0.75
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)

	w, ok := GetWorkerConfig(cfg, "submit-application")
	require.True(t, ok)
	assert.Equal(t, 0.75, w.ServiceShare)
}

func TestServiceBudget(t *testing.T) {
	assert.Equal(t, 24*time.Second, ServiceBudget(30*time.Second, 0.8))
	assert.NoError(t, ValidateServiceShare(0.8))
	assert.Error(t, ValidateServiceShare(0))
	assert.Error(t, ValidateServiceShare(1))
}
