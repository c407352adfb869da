package cmd

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/kiosk/accounts"
	"github.com/tranvictor/kiosk/config"
	"github.com/tranvictor/kiosk/util/account"
)

func newAccCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "acc",
		Short: "Manage your accounts",
		Long: `Accounts are ed25519 private key files. kiosk keeps a description of every
account so --from can pick one by a few letters of its description.`,
	}
	c.AddCommand(newAccAddCmd(), newAccNewCmd(), newAccListCmd())
	return c
}

func printAccount(ad accounts.AccDesc) error {
	if config.JSONOutput {
		return appUI.JSON(ad)
	}
	appUI.KeyValue([][2]string{
		{"Address", ad.Address},
		{"Description", ad.Desc},
		{"Key file", ad.Keypath},
	})
	return nil
}

func newAccAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <key-file> <description>",
		Short: "Add an existing private key file",
		Long: `Add a private key file holding the hex encoded 32 byte ed25519 seed, with
or without the ` + account.PrivateKeyPrefix + ` prefix as written by the aptos cli.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()
			ad, err := s.book.AddKeyAccount(args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if !config.JSONOutput {
				appUI.Success("Account added")
			}
			return printAccount(ad)
		},
	}
}

func newAccNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <description>",
		Short: "Generate a new account",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()
			path, _, err := account.RandomPrivateKeyFile(filepath.Join(config.Dir(), "keys"))
			if err != nil {
				return err
			}
			ad, err := s.book.AddKeyAccount(path, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !config.JSONOutput {
				appUI.Success("Account generated. Back up %s, kiosk can't recover it.", path)
				if faucet := s.network.GetFaucetURL(); faucet != "" {
					appUI.Info("Fund it on %s at %s", s.network.GetName(), faucet)
				}
			}
			return printAccount(ad)
		},
	}
}

func newAccListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your accounts and their stalls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()
			accs, err := s.book.List()
			if err != nil {
				// unreadable records are skipped, the rest are still listed
				appUI.Warn("%s", err)
			}
			if config.JSONOutput {
				return appUI.JSON(accs)
			}

			rows := make([][]string, 0, len(accs))
			for i, ad := range accs {
				stallAddr := "-"
				if rec, found, err := s.registry.Lookup(ad.Address); err == nil && found {
					stallAddr = rec.StallAddress
				}
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					ad.Address,
					ad.Desc,
					stallAddr,
				})
			}
			if len(rows) == 0 {
				appUI.Info("No accounts yet. Add one with kiosk acc add or kiosk acc new.")
				return nil
			}
			appUI.Table([]string{"#", "Address", "Description", "Stall"}, rows)
			return nil
		},
	}
}
