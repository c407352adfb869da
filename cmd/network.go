package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/kiosk/config"
	"github.com/tranvictor/kiosk/networks"
)

func newNetworkCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "network",
		Short: "Manage the networks kiosk supports",
	}
	c.AddCommand(newNetworkListCmd(), newNetworkAddCmd())
	return c
}

func newNetworkListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all supported networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := networks.GetSupportedNetworks()
			if config.JSONOutput {
				return appUI.JSON(all)
			}
			rows := [][]string{}
			for _, n := range all {
				nodes := n.GetNodes()
				names := make([]string, 0, len(nodes))
				for name := range nodes {
					names = append(names, name)
				}
				sort.Strings(names)
				for i, name := range names {
					if i == 0 {
						rows = append(rows, []string{n.GetName(), fmt.Sprint(n.GetChainID()), name, nodes[name]})
					} else {
						rows = append(rows, []string{"", "", name, nodes[name]})
					}
				}
			}
			appUI.Table([]string{"Network", "Chain ID", "Node", "URL"}, rows)
			appUI.Info("Add a network with kiosk network add --config <json>. Delete one by removing its json file in %s.", networks.CustomNetworksDir())
			return nil
		},
	}
}

func newNetworkAddCmd() *cobra.Command {
	var (
		networkConfig string
		force         bool
	)
	c := &cobra.Command{
		Use:   "add",
		Short: "Add a network to the supported networks",
		Long: `--config takes a path to a network json file or the json itself:
	{
		"name": "my-localnet",
		"alternative_names": ["mine"],
		"chain_id": 4,
		"block_time": 1,
		"node_variable_name": "MY_LOCALNET_NODE",
		"default_nodes": {
			"local": "http://127.0.0.1:8080/v1"
		},
		"faucet_url": "http://127.0.0.1:8081",
		"explorer_network": "local"
	}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimSpace(networkConfig)
			if raw == "" {
				return fmt.Errorf("--config is required")
			}
			content := []byte(raw)
			if !strings.HasPrefix(raw, "{") {
				var err error
				if content, err = os.ReadFile(raw); err != nil {
					return fmt.Errorf("couldn't read the network config: %w", err)
				}
			}
			n, err := networks.NewNetworkFromJSON(content)
			if err != nil {
				return err
			}

			for _, name := range append([]string{n.GetName()}, n.GetAlternativeNames()...) {
				if _, err := networks.GetNetwork(name); err == nil {
					if !force {
						return fmt.Errorf("network %s already exists, use --force to replace it", name)
					}
					appUI.Warn("Network %s already exists and will be replaced.", name)
				}
			}
			if err := networks.AddNetwork(n, force); err != nil {
				return err
			}
			appUI.Success("Network %s with chain ID %d added and saved to %s.", n.GetName(), n.GetChainID(), networks.CustomNetworksDir())
			return nil
		},
	}
	c.Flags().StringVarP(&networkConfig, "config", "c", "", "path to the network config json file, or the json itself")
	c.Flags().BoolVar(&force, "force", false, "replace a network with the same name")
	return c
}
