package networks

var (
	Mainnet Network = NewGenericNetwork(GenericNetworkConfig{
		Name:             "mainnet",
		AlternativeNames: []string{"aptos"},
		ChainID:          1,
		BlockTime:        1,
		NodeVariableName: "APTOS_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"aptoslabs": "https://fullnode.mainnet.aptoslabs.com/v1",
		},
	})

	Testnet Network = NewGenericNetwork(GenericNetworkConfig{
		Name:             "testnet",
		AlternativeNames: []string{"aptos-testnet"},
		ChainID:          2,
		BlockTime:        1,
		NodeVariableName: "APTOS_TESTNET_NODE",
		DefaultNodes: map[string]string{
			"aptoslabs-testnet": "https://fullnode.testnet.aptoslabs.com/v1",
		},
		FaucetURL: "https://faucet.testnet.aptoslabs.com",
	})

	// Devnet is reset regularly and its chain id changes with every reset,
	// 0 means "ask the node".
	Devnet Network = NewGenericNetwork(GenericNetworkConfig{
		Name:             "devnet",
		AlternativeNames: []string{"aptos-devnet"},
		ChainID:          0,
		BlockTime:        1,
		NodeVariableName: "APTOS_DEVNET_NODE",
		DefaultNodes: map[string]string{
			"aptoslabs-devnet": "https://fullnode.devnet.aptoslabs.com/v1",
		},
		FaucetURL: "https://faucet.devnet.aptoslabs.com",
	})

	Local Network = NewGenericNetwork(GenericNetworkConfig{
		Name:             "local",
		AlternativeNames: []string{"localnet"},
		ChainID:          4,
		BlockTime:        1,
		NodeVariableName: "APTOS_LOCAL_NODE",
		DefaultNodes: map[string]string{
			"localhost": "http://127.0.0.1:8080/v1",
		},
		FaucetURL:       "http://127.0.0.1:8081",
		ExplorerNetwork: "local",
	})
)
