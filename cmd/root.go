// Copyright © 2018 Victor Tran
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/kiosk/config"
	"github.com/tranvictor/kiosk/networks"
	"github.com/tranvictor/kiosk/ui"
)

var appUI ui.UI = ui.NewTerminalUI()

func longDescription() string {
	return fmt.Sprintf(`Kiosk is a command line tool to run a stall on the Aptos marketplace module.

It helps you on different ends:

	1. It creates your stall and remembers where it lives. The stall
	address is taken from the StallCreated event of the creation tx,
	derived from your address and the seed when the event is missing,
	and only falls back to your own address when neither works.

	2. It lists your objects for sale, buys from any stall and reads
	listings and prices. On test networks it mints test assets to list.

	3. It manages local accounts (ed25519 private key files) so you can
	pick one with a few letters of its description.

By default kiosk talks to devnet. Supported networks: %s.
You can add your own node by setting the following env vars:
	1. For mainnet: %s
	2. For testnet: %s
	3. For devnet: %s
	4. For local: %s

Settings can also be kept in %s. Flags win over the file.`,
		strings.Join(networks.GetSupportedNetworkNames(), ", "),
		networks.Mainnet.GetNodeVariableName(),
		networks.Testnet.GetNodeVariableName(),
		networks.Devnet.GetNodeVariableName(),
		networks.Local.GetNodeVariableName(),
		config.FilePath(),
	)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kiosk",
		Short:         "Create and run marketplace stalls on Aptos",
		Long:          longDescription(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadSettings(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&config.Network, "network", "k", config.DefaultNetwork, "aptos network. Valid values: "+strings.Join(networks.GetSupportedNetworkNames(), ", "))
	rootCmd.PersistentFlags().StringVar(&config.ModuleAddress, "module", "", "address the marketplace module is published at. Defaults to $"+config.ModuleAddressEnv+" or "+config.DefaultModuleAddress)
	rootCmd.PersistentFlags().StringVarP(&config.From, "from", "f", "", "account to use. It can be an address or a hint to look it up in your accounts, see kiosk acc list")
	rootCmd.PersistentFlags().StringVar(&config.StoreKind, "store", config.DefaultStoreKind, "where stall records are kept: file, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&config.StoreDir, "store-dir", "", "directory of the stall store. Defaults to "+config.Dir())
	rootCmd.PersistentFlags().Uint64Var(&config.MaxGasAmount, "max-gas", 0, "max gas amount of submitted txs")
	rootCmd.PersistentFlags().Uint64Var(&config.GasUnitPrice, "gas-price", 0, "gas unit price in octas. The node's estimation is used when 0")
	rootCmd.PersistentFlags().BoolVarP(&config.Verbose, "verbose", "v", false, "log what kiosk does")
	rootCmd.PersistentFlags().BoolVar(&config.JSONOutput, "json", false, "print results as json")

	rootCmd.AddCommand(
		newDeriveCmd(),
		newStallCmd(),
		newListCmd(),
		newBuyCmd(),
		newListingCmd(),
		newBalanceCmd(),
		newAssetsCmd(),
		newNFTCmd(),
		newTxCmd(),
		newWaitCmd(),
		newAccCmd(),
		newAddrCmd(),
		newNetworkCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// loadSettings fills the config vars from the config file for every flag
// that was not given, then selects the network.
func loadSettings(cmd *cobra.Command) error {
	f, err := config.LoadFile(config.FilePath())
	if err != nil {
		return err
	}
	config.Apply(f, func(flag string) bool {
		return cmd.Flags().Changed(flag)
	})
	if err := networks.SetNetwork(config.Network); err != nil {
		return err
	}
	return nil
}

// Execute runs the command line and exits non zero on failure.
// This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		appUI.Error("%s", err)
		os.Exit(1)
	}
}
