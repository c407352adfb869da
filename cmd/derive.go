package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tranvictor/kiosk/common"
	"github.com/tranvictor/kiosk/config"
)

type deriveResult struct {
	Owner   string `json:"owner"`
	Seed    string `json:"seed"`
	Scheme  string `json:"scheme"`
	Address string `json:"address"`
}

func newDeriveCmd() *cobra.Command {
	var object bool
	c := &cobra.Command{
		Use:   "derive <owner> <seed>",
		Short: "Derive the address of the resource account owner creates with seed",
		Long: `Derive the address the chain assigns to a resource account (the stall)
created by owner with seed, without any network access:

	sha3_256(owner ++ seed ++ 0xFF)

With --object the named object address (scheme 0xFE) is derived instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, seed := args[0], args[1]
			res := deriveResult{Owner: owner, Seed: seed, Scheme: "resource_account"}
			if object {
				creator, err := common.ParseAddress(owner)
				if err != nil {
					return err
				}
				res.Scheme = "object"
				res.Address = common.DeriveObjectAddress(creator, []byte(seed)).Hex()
			} else {
				addr, err := common.DeriveResourceAddress(owner, seed)
				if err != nil {
					return err
				}
				res.Address = addr.Hex()
			}

			if config.JSONOutput {
				return appUI.JSON(res)
			}
			appUI.Info("%s", res.Address)
			return nil
		},
	}
	c.Flags().BoolVar(&object, "object", false, "derive a named object address instead of a resource account")
	return c
}
