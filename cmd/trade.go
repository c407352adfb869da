package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tranvictor/kiosk/common"
	"github.com/tranvictor/kiosk/config"
	"github.com/tranvictor/kiosk/marketplace"
)

type txResult struct {
	Op      marketplace.Op `json:"op"`
	Hash    string         `json:"hash"`
	Status  string         `json:"status"`
	Version uint64         `json:"version"`
	GasUsed string         `json:"gas_used"`
}

func printTx(op marketplace.Op, info common.TxInfo) error {
	res := txResult{Op: op, Status: info.Status}
	if info.Tx != nil {
		res.Hash = info.Tx.Hash
		res.Version = info.Tx.VersionNumber()
		res.GasUsed = info.Tx.GasUsed
	}
	if config.JSONOutput {
		return appUI.JSON(res)
	}
	appUI.Success("%s done", op)
	appUI.KeyValue([][2]string{
		{"Tx", res.Hash},
		{"Version", fmt.Sprint(res.Version)},
		{"Gas used", res.GasUsed},
	})
	return nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <object> <price-apt>",
		Short: "List an object for sale in your stall",
		Long: `List an object owned by the --from account in its remembered stall.
The price is in APT, e.g. 1.5.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := parsePrice(args[1])
			if err != nil {
				return err
			}
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()
			acc, err := s.account()
			if err != nil {
				return err
			}
			object, err := s.resolveAddress(args[0])
			if err != nil {
				return err
			}

			c := s.client(acc)
			if !config.JSONOutput {
				book := s.addressBook()
				if stallAddr, err := c.MyStall(); err == nil {
					appUI.Info("Stall: %s", book.Resolve(stallAddr.Hex()))
				}
				appUI.Critical("Listing %s for %s", book.Resolve(object), common.ReadableOctas(price))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFor(s.network))
			defer cancel()
			info, err := c.ListItem(ctx, object, price)
			if err != nil {
				return marketplace.Explain(marketplace.OpListItem, err)
			}
			return printTx(marketplace.OpListItem, info)
		},
	}
}

func newBuyCmd() *cobra.Command {
	var (
		stallAddr string
		yes       bool
	)
	c := &cobra.Command{
		Use:   "buy <object> [price-apt]",
		Short: "Buy a listed object",
		Long: `Buy an object listed in --stall, or in your own stall when --stall is
not given. Without a price the listed price is read from the chain and you
are asked to confirm it.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()
			acc, err := s.account()
			if err != nil {
				return err
			}
			object, err := s.resolveAddress(args[0])
			if err != nil {
				return err
			}
			if stallAddr != "" {
				if stallAddr, err = s.resolveAddress(stallAddr); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFor(s.network))
			defer cancel()
			client := s.client(acc)

			var price uint64
			if len(args) > 1 {
				if price, err = parsePrice(args[1]); err != nil {
					return err
				}
			} else {
				if price, err = client.Price(ctx, stallAddr, object); err != nil {
					return marketplace.Explain(marketplace.OpView, err)
				}
				yes = yes || config.JSONOutput
			}
			if !config.JSONOutput {
				appUI.Critical("Buying %s for %s", s.addressBook().Resolve(object), common.ReadableOctas(price))
			}
			if !yes && !appUI.Confirm("Continue?", false) {
				appUI.Info("Aborted.")
				return nil
			}

			info, err := client.Buy(ctx, stallAddr, object, price)
			if err != nil {
				return marketplace.Explain(marketplace.OpBuy, err)
			}
			return printTx(marketplace.OpBuy, info)
		},
	}
	c.Flags().StringVar(&stallAddr, "stall", "", "stall to buy from. Defaults to your own stall")
	c.Flags().BoolVarP(&yes, "yes", "y", false, "don't ask for confirmation")
	return c
}

type listingResult struct {
	Stall  string `json:"stall"`
	Object string `json:"object"`
	Listed bool   `json:"listed"`
	Price  uint64 `json:"price,omitempty"`
}

func newListingCmd() *cobra.Command {
	var stallAddr string
	c := &cobra.Command{
		Use:   "listing <object>",
		Short: "Show whether an object is listed and at which price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()
			object, err := s.resolveAddress(args[0])
			if err != nil {
				return err
			}
			client := s.client(nil)
			if stallAddr != "" {
				if stallAddr, err = s.resolveAddress(stallAddr); err != nil {
					return err
				}
			} else {
				acc, err := s.account()
				if err != nil {
					return fmt.Errorf("use --stall or --from: %w", err)
				}
				client = s.client(acc)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFor(s.network))
			defer cancel()
			target := stallAddr
			if target == "" {
				mine, err := client.MyStall()
				if err != nil {
					return err
				}
				target = mine.Hex()
			}
			res := listingResult{Stall: target, Object: object}
			if res.Listed, err = client.IsListed(ctx, target, object); err != nil {
				return marketplace.Explain(marketplace.OpView, err)
			}
			if res.Listed {
				if res.Price, err = client.Price(ctx, target, object); err != nil {
					return marketplace.Explain(marketplace.OpView, err)
				}
			}
			if config.JSONOutput {
				return appUI.JSON(res)
			}

			book := s.addressBook()
			rows := [][2]string{
				{"Stall", book.Resolve(target).String()},
				{"Object", book.Resolve(object).String()},
			}
			if res.Listed {
				rows = append(rows, [2]string{"Price", common.ReadableOctas(res.Price)})
			} else {
				rows = append(rows, [2]string{"Price", "not listed"})
			}
			appUI.KeyValue(rows)
			return nil
		},
	}
	c.Flags().StringVar(&stallAddr, "stall", "", "stall the object is listed in. Defaults to your own stall")
	return c
}

type balanceResult struct {
	Address string `json:"address"`
	Octas   uint64 `json:"octas"`
}

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Show the APT balance of an address, --from by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()
			addr, err := s.owner(args)
			if err != nil {
				return err
			}
			target, err := common.ParseAddress(addr)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFor(s.network))
			defer cancel()
			octas, err := s.reader.Balance(ctx, target.Hex())
			if err != nil {
				return err
			}
			if config.JSONOutput {
				return appUI.JSON(balanceResult{Address: target.Hex(), Octas: octas})
			}
			appUI.KeyValue([][2]string{
				{"Address", s.addressBook().Resolve(target.Hex()).String()},
				{"Balance", common.ReadableOctas(octas)},
			})
			if faucet := s.network.GetFaucetURL(); faucet != "" && octas == 0 {
				appUI.Info("Fund it at %s", faucet)
			}
			return nil
		},
	}
}
