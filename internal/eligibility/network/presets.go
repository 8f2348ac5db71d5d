package network

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"eligibility-workers/internal/common/config"
	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/models"
)

// Presets are the built-in target networks. Public ones cannot be added to a wallet programmatically.
var Presets = map[string]models.NetworkDescriptor{
	config.NetworkLocal: {
		ChainID:        "0x7a69",
		DisplayName:    "Hardhat Local",
		RPCURL:         "http://127.0.0.1:8545",
		NativeCurrency: models.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
	},
	config.NetworkSepolia: {
		ChainID:          "0xaa36a7",
		DisplayName:      "Sepolia",
		RPCURL:           "https://rpc.sepolia.org",
		NativeCurrency:   models.NativeCurrency{Name: "SepoliaETH", Symbol: "ETH", Decimals: 18},
		BlockExplorerURL: "https://sepolia.etherscan.io",
		Public:           true,
	},
}

// ResolveTarget builds the target descriptor for the configured environment. Non-empty
// configuration fields override the preset; "custom" takes everything from configuration.
func ResolveTarget(cfg config.NetworkConfig) (models.NetworkDescriptor, error) {
	var target models.NetworkDescriptor
	switch cfg.Environment {
	case config.NetworkLocal, config.NetworkSepolia:
		target = Presets[cfg.Environment]
	case config.NetworkCustom:
		target.NativeCurrency = models.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18}
	default:
		return models.NetworkDescriptor{}, apperrors.NewConfigurationError(
			fmt.Sprintf("unknown network environment %q", cfg.Environment))
	}

	if cfg.ChainID != "" {
		target.ChainID = cfg.ChainID
	}
	if cfg.DisplayName != "" {
		target.DisplayName = cfg.DisplayName
	}
	if cfg.RPCURL != "" {
		target.RPCURL = cfg.RPCURL
	}
	if cfg.BlockExplorerURL != "" {
		target.BlockExplorerURL = cfg.BlockExplorerURL
	}
	if cfg.CurrencyName != "" {
		target.NativeCurrency.Name = cfg.CurrencyName
	}
	if cfg.CurrencySymbol != "" {
		target.NativeCurrency.Symbol = cfg.CurrencySymbol
	}
	if cfg.CurrencyDecimals > 0 {
		target.NativeCurrency.Decimals = cfg.CurrencyDecimals
	}

	id, ok := parseChainID(target.ChainID)
	if !ok {
		return models.NetworkDescriptor{}, apperrors.NewConfigurationError(
			fmt.Sprintf("invalid chain id %q", target.ChainID))
	}
	target.ChainID = hexutil.EncodeBig(id)

	if target.DisplayName == "" || target.RPCURL == "" {
		return models.NetworkDescriptor{}, apperrors.NewConfigurationError("network display_name and rpc_url are required")
	}
	return target, nil
}

// SameChain compares chain ids numerically. Either side may be hex (any case) or decimal.
func SameChain(a, b string) bool {
	x, ok := parseChainID(a)
	if !ok {
		return false
	}
	y, ok := parseChainID(b)
	if !ok {
		return false
	}
	return x.Cmp(y) == 0
}

func parseChainID(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}
	id, ok := math.ParseBig256(s)
	if !ok || id.Sign() <= 0 {
		return nil, false
	}
	return id, true
}
