package models

// NativeCurrency describes the chain's gas token for add-chain requests.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// NetworkDescriptor carries everything a wallet needs to add a chain.
type NetworkDescriptor struct {
	ChainID          string         `json:"chainId"` // 0x-prefixed hex
	DisplayName      string         `json:"chainName"`
	RPCURL           string         `json:"rpcUrl"`
	NativeCurrency   NativeCurrency `json:"nativeCurrency"`
	BlockExplorerURL string         `json:"blockExplorerUrl,omitempty"`
	// Public networks cannot be added programmatically.
	Public bool `json:"-"`
}

// NetworkStatus is a state of the reconciliation state machine.
type NetworkStatus string

const (
	NetworkStatusUnknown    NetworkStatus = "unknown"
	NetworkStatusChecking   NetworkStatus = "checking"
	NetworkStatusReconciled NetworkStatus = "reconciled"
	NetworkStatusMismatched NetworkStatus = "mismatched"
)

// NetworkState is derived on demand and never cached across calls.
type NetworkState struct {
	ActiveChainID     string        `json:"activeChainId"`
	TargetChainID     string        `json:"targetChainId"`
	Status            NetworkStatus `json:"status"`
	IsReconciled      bool          `json:"isReconciled"`
	TargetDisplayName string        `json:"targetDisplayName"`
}

func (s NetworkState) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"networkStatus": string(s.Status),
		"activeChainId": s.ActiveChainID,
		"targetChainId": s.TargetChainID,
		"targetNetwork": s.TargetDisplayName,
		"isReconciled":  s.IsReconciled,
	}
}
