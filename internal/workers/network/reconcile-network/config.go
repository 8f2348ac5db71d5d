package reconcilenetwork

import (
	"fmt"
	"time"

	"eligibility-workers/internal/common/config"
)

const configKey = "reconcile-network"

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ServiceShare  float64       `mapstructure:"service_share"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       60 * time.Second,
		ServiceShare:  0.8,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if err := config.ValidateServiceShare(c.ServiceShare); err != nil {
		return err
	}
	return nil
}

// ServiceBudget is how long Execute may run before the job must be completed or failed.
func (c *Config) ServiceBudget() time.Duration {
	return config.ServiceBudget(c.Timeout, c.ServiceShare)
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if workerCfg, exists := config.GetWorkerConfig(appConfig, configKey); exists {
		cfg.Enabled = workerCfg.Enabled
		if workerCfg.MaxJobsActive > 0 {
			cfg.MaxJobsActive = workerCfg.MaxJobsActive
		}
		if workerCfg.Timeout > 0 {
			cfg.Timeout = config.GetDuration(workerCfg.Timeout)
		}
		if workerCfg.ServiceShare != 0 {
			cfg.ServiceShare = workerCfg.ServiceShare
		}
	}
	return cfg
}
