package networks

import (
	"time"
)

type Network interface {
	GetName() string
	GetChainID() uint64
	GetAlternativeNames() []string
	GetNativeTokenSymbol() string
	GetNativeTokenDecimal() uint64
	GetBlockTime() time.Duration

	GetNodeVariableName() string
	GetDefaultNodes() map[string]string
	// GetNodes is GetDefaultNodes plus the node set in the node env var.
	GetNodes() map[string]string

	GetFaucetURL() string
	GetExplorerTxURL(hash string) string
	GetExplorerAccountURL(address string) string

	MarshalJSON() ([]byte, error)
}
