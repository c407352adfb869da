package networks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

var supportedNetworks = []Network{
	Mainnet,
	Testnet,
	Devnet,
	Local,
}

var globalSupportedNetworks = newSupportedNetworks()
var ErrNetworkNotFound = fmt.Errorf("network not found")

type networks struct {
	networks     map[string]Network
	networksByID map[uint64]Network
}

func (n *networks) getSupportedNetworkNames() []string {
	res := []string{}
	seen := map[string]bool{}
	for _, n := range n.networks {
		if seen[n.GetName()] {
			continue
		}
		seen[n.GetName()] = true
		res = append(res, n.GetName())
		res = append(res, n.GetAlternativeNames()...)
	}
	return res
}

func (n *networks) getNetworkByID(id uint64) (Network, error) {
	res, found := n.networksByID[id]
	if !found {
		return nil, fmt.Errorf("network id %d is not supported", id)
	}
	return res, nil
}

func (n *networks) getNetwork(name string) (Network, error) {
	res, found := n.networks[name]
	if !found {
		return nil, fmt.Errorf("network name '%s': %w", name, ErrNetworkNotFound)
	}
	return res, nil
}

// register adds n under its name and alternative names. Chain id 0 means
// the id is not fixed and is not indexed.
func (n *networks) register(network Network, override bool) error {
	names := append([]string{network.GetName()}, network.GetAlternativeNames()...)
	if !override {
		for _, name := range names {
			if _, found := n.networks[name]; found {
				return fmt.Errorf("network with name or alternative name of '%s' already exists", name)
			}
		}
	}
	for _, name := range names {
		n.networks[name] = network
	}
	if network.GetChainID() != 0 {
		n.networksByID[network.GetChainID()] = network
	}
	return nil
}

func newSupportedNetworks() *networks {
	result := networks{
		map[string]Network{},
		map[uint64]Network{},
	}
	for _, n := range supportedNetworks {
		if err := result.register(n, false); err != nil {
			panic(err)
		}
	}

	customNetworks, err := loadCustomNetworks(CustomNetworksDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to load custom networks: %s. Ignore and continue with built-in networks.\n", err)
		return &result
	}

	for _, n := range customNetworks {
		if _, found := result.networks[n.GetName()]; found {
			fmt.Fprintf(os.Stderr, "Network with name '%s' already exists. Using custom network.\n", n.GetName())
		}
		result.register(n, true)
	}
	return &result
}

// CustomNetworksDir is ~/.kiosk/networks, or $KIOSK_HOME/networks when
// KIOSK_HOME is set.
func CustomNetworksDir() string {
	if home := os.Getenv("KIOSK_HOME"); home != "" {
		return filepath.Join(home, "networks")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kiosk", "networks")
}

func loadCustomNetworks(dir string) ([]Network, error) {
	if dir == "" {
		return nil, fmt.Errorf("couldn't find home directory")
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob json files in %s: %w", dir, err)
	}

	networks := []Network{}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}

		network, err := NewNetworkFromJSON(content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse network from file %s: %s. Ignore and continue with other custom networks.\n", file, err)
			continue
		}
		networks = append(networks, network)
	}
	return networks, nil
}

func NewNetworkFromJSON(content []byte) (Network, error) {
	networkConfig := GenericNetworkConfig{}
	if err := json.Unmarshal(content, &networkConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal network config: %w", err)
	}
	if networkConfig.Name == "" {
		return nil, fmt.Errorf("network config has no name")
	}
	if len(networkConfig.DefaultNodes) == 0 && networkConfig.NodeVariableName == "" {
		return nil, fmt.Errorf("network %s has no nodes", networkConfig.Name)
	}
	return NewGenericNetwork(networkConfig), nil
}

func GetSupportedNetworks() []Network {
	res := []Network{}
	seen := map[string]bool{}
	for _, n := range globalSupportedNetworks.networks {
		if seen[n.GetName()] {
			continue
		}
		seen[n.GetName()] = true
		res = append(res, n)
	}
	return res
}

func GetNetwork(name string) (Network, error) {
	return globalSupportedNetworks.getNetwork(name)
}

func GetNetworkByID(id uint64) (Network, error) {
	return globalSupportedNetworks.getNetworkByID(id)
}

func GetSupportedNetworkNames() []string {
	return globalSupportedNetworks.getSupportedNetworkNames()
}

// AddNetwork registers network and stores it under CustomNetworksDir so
// later runs load it too. An existing network with the same name is
// replaced only when override is set.
func AddNetwork(network Network, override bool) error {
	if err := globalSupportedNetworks.register(network, override); err != nil {
		return err
	}

	dir := CustomNetworksDir()
	if dir == "" {
		return fmt.Errorf("couldn't find home directory")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	content, err := network.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal network: %w", err)
	}

	err = os.WriteFile(filepath.Join(dir, fmt.Sprintf("%s.json", network.GetName())), content, 0644)
	if err != nil {
		return fmt.Errorf("failed to write the new network to file: %w", err)
	}
	return nil
}
