package networks

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	CUSTOM_NODE_NAME     = "custom-node"
	DEFAULT_EXPLORER_URL = "https://explorer.aptoslabs.com"
)

type GenericNetworkConfig struct {
	Name               string            `json:"name"`
	AlternativeNames   []string          `json:"alternative_names"`
	ChainID            uint64            `json:"chain_id"`
	NativeTokenSymbol  string            `json:"native_token_symbol"`
	NativeTokenDecimal uint64            `json:"native_token_decimal"`
	BlockTime          uint64            `json:"block_time"`
	NodeVariableName   string            `json:"node_variable_name"`
	DefaultNodes       map[string]string `json:"default_nodes"`
	FaucetURL          string            `json:"faucet_url,omitempty"`
	ExplorerURL        string            `json:"explorer_url,omitempty"`
	// ExplorerNetwork is the ?network= value of explorer links, Name when empty.
	ExplorerNetwork string `json:"explorer_network,omitempty"`
}

// GenericNetwork is a network reachable through fullnode REST endpoints.
type GenericNetwork struct {
	config GenericNetworkConfig
}

func NewGenericNetwork(config GenericNetworkConfig) *GenericNetwork {
	if config.NativeTokenSymbol == "" {
		config.NativeTokenSymbol = "APT"
	}
	if config.NativeTokenDecimal == 0 {
		config.NativeTokenDecimal = 8
	}
	if config.ExplorerURL == "" {
		config.ExplorerURL = DEFAULT_EXPLORER_URL
	}
	if config.ExplorerNetwork == "" {
		config.ExplorerNetwork = config.Name
	}
	return &GenericNetwork{config: config}
}

func (gn *GenericNetwork) GetName() string {
	return gn.config.Name
}

func (gn *GenericNetwork) GetChainID() uint64 {
	return gn.config.ChainID
}

func (gn *GenericNetwork) GetAlternativeNames() []string {
	return gn.config.AlternativeNames
}

func (gn *GenericNetwork) GetNativeTokenSymbol() string {
	return gn.config.NativeTokenSymbol
}

func (gn *GenericNetwork) GetNativeTokenDecimal() uint64 {
	return gn.config.NativeTokenDecimal
}

func (gn *GenericNetwork) GetBlockTime() time.Duration {
	return time.Duration(gn.config.BlockTime) * time.Second
}

func (gn *GenericNetwork) GetNodeVariableName() string {
	return gn.config.NodeVariableName
}

func (gn *GenericNetwork) GetDefaultNodes() map[string]string {
	return gn.config.DefaultNodes
}

func (gn *GenericNetwork) GetNodes() map[string]string {
	nodes := map[string]string{}
	for name, url := range gn.config.DefaultNodes {
		nodes[name] = url
	}
	if gn.config.NodeVariableName == "" {
		return nodes
	}
	customNode := strings.Trim(os.Getenv(gn.config.NodeVariableName), " ")
	if customNode != "" {
		nodes[CUSTOM_NODE_NAME] = customNode
	}
	return nodes
}

func (gn *GenericNetwork) GetFaucetURL() string {
	return gn.config.FaucetURL
}

func (gn *GenericNetwork) GetExplorerTxURL(hash string) string {
	return fmt.Sprintf("%s/txn/%s?network=%s", gn.config.ExplorerURL, hash, gn.config.ExplorerNetwork)
}

func (gn *GenericNetwork) GetExplorerAccountURL(address string) string {
	return fmt.Sprintf("%s/account/%s?network=%s", gn.config.ExplorerURL, address, gn.config.ExplorerNetwork)
}

func (gn *GenericNetwork) MarshalJSON() ([]byte, error) {
	return json.Marshal(gn.config)
}
