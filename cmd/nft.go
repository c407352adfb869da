package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/kiosk/common"
	"github.com/tranvictor/kiosk/config"
	"github.com/tranvictor/kiosk/marketplace"
)

const defaultNFTURI = "https://via.placeholder.com/400x400.png?text=Test+NFT"

func newNFTCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "nft",
		Short: "Mint test digital assets to list",
		Long: `The test_nft module published next to the marketplace mints transferable
digital assets on test networks. Create your collection once, then mint
into it.`,
	}
	c.AddCommand(newNFTCollectionCmd(), newNFTMintCmd())
	return c
}

func newNFTCollectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collection",
		Short: "Create the test collection of the --from account",
		Args:  cobra.NoArgs,
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

			ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFor(s.network))
			defer cancel()
			info, err := s.client(acc).CreateTestCollection(ctx)
			if err != nil {
				return marketplace.Explain(marketplace.OpCreateCollection, err)
			}
			return printTx(marketplace.OpCreateCollection, info)
		},
	}
}

func newNFTMintCmd() *cobra.Command {
	var (
		description string
		uri         string
	)
	c := &cobra.Command{
		Use:   "mint <name> [recipient]",
		Short: "Mint a test digital asset",
		Long: `Mint a digital asset into the test collection of the --from account and
send it to recipient, the --from account by default. Run kiosk nft
collection first.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()
			acc, err := s.account()
			if err != nil {
				return err
			}
			recipient := acc.AddressHex()
			if len(args) > 1 {
				if recipient, err = s.resolveAddress(args[1]); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFor(s.network))
			defer cancel()
			info, err := s.client(acc).MintTestNFT(ctx, name, description, uri, recipient)
			if err != nil {
				return marketplace.Explain(marketplace.OpMintNFT, err)
			}
			if err := printTx(marketplace.OpMintNFT, info); err != nil {
				return err
			}
			if !config.JSONOutput {
				appUI.Info("See it with: kiosk assets %s", recipient)
			}
			return nil
		},
	}
	c.Flags().StringVar(&description, "description", "A test NFT for marketplace testing", "description of the asset")
	c.Flags().StringVar(&uri, "uri", defaultNFTURI, "image url of the asset")
	return c
}

func newAssetsCmd() *cobra.Command {
	var full bool
	c := &cobra.Command{
		Use:   "assets [owner]",
		Short: "List the digital assets an address owns, --from by default",
		Long: `List the digital assets owned by an address so you can pick one to list.
The indexer served next to the node is asked first. Token resources stored
under the address itself are added, which still works when the indexer is
down or lagging.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()
			owner, err := s.owner(args)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFor(s.network))
			defer cancel()
			stop := appUI.Spinner("Fetching assets...")
			assets, err := s.client(nil).OwnedAssets(ctx, owner)
			stop()
			if err != nil {
				return err
			}
			if config.JSONOutput {
				return appUI.JSON(assets)
			}
			if len(assets) == 0 {
				appUI.Warn("No digital assets found. Mint one with: kiosk nft mint <name>")
				return nil
			}
			short := func(addr string) string {
				if full {
					return addr
				}
				return common.TruncateAddress(addr, 10, 8)
			}
			rows := make([][]string, 0, len(assets))
			for i, a := range assets {
				rows = append(rows, []string{
					fmt.Sprint(i + 1), a.Name, short(a.Collection), short(a.Address), a.Source,
				})
			}
			appUI.Table([]string{"#", "Name", "Collection", "Object", "Source"}, rows)
			return nil
		},
	}
	c.Flags().BoolVar(&full, "full", false, "show full addresses")
	return c
}
