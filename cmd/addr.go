package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/kiosk/bleve"
	"github.com/tranvictor/kiosk/config"
	"github.com/tranvictor/kiosk/db"
)

func newAddrCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "addr",
		Short: "Name addresses so commands accept the name instead",
		Long: `Named addresses live in ` + namesPath() + `, a json map from address to
name. Wherever a command takes an owner, a stall or an object you can give
a few letters of its name instead.`,
	}
	c.AddCommand(newAddrAddCmd(), newAddrListCmd(), newAddrFindCmd())
	return c
}

func newAddrAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <address> <name>",
		Short: "Give an address a name",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := db.LoadDefaultAddressDatabase(namesPath())
			if err != nil {
				return err
			}
			name := strings.Join(args[1:], " ")
			if err := names.Register(args[0], name); err != nil {
				return err
			}
			if err := names.Save(); err != nil {
				return err
			}
			appUI.Success("%s is now known as %s", args[0], name)
			return nil
		},
	}
}

func newAddrListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List named addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := db.LoadDefaultAddressDatabase(namesPath())
			if err != nil {
				return err
			}
			entries := db.NewFuzzySource(names.Data)
			if config.JSONOutput {
				return appUI.JSON(entries)
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Desc, e.Address})
			}
			appUI.Table([]string{"Name", "Address"}, rows)
			return nil
		},
	}
}

func newAddrFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <query>",
		Short: "Search named addresses by words of their names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := db.LoadDefaultAddressDatabase(namesPath())
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")

			index, err := bleve.Open(filepath.Join(config.Dir(), "addresses.bleve"), names, newLogger())
			if err != nil {
				return err
			}
			defer index.Close()
			results, scores, err := index.Search(query)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				results, scores = names.GetAddresses(query)
			}
			if config.JSONOutput {
				return appUI.JSON(results)
			}
			if len(results) == 0 {
				appUI.Info("Nothing matches %q.", query)
				return nil
			}
			rows := make([][]string, 0, len(results))
			for i, r := range results {
				rows = append(rows, []string{r.Desc, r.Address, fmt.Sprint(scores[i])})
			}
			appUI.Table([]string{"Name", "Address", "Score"}, rows)
			return nil
		},
	}
}
