package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tranvictor/kiosk/common"
	"github.com/tranvictor/kiosk/config"
	"github.com/tranvictor/kiosk/marketplace"
	"github.com/tranvictor/kiosk/stall"
	"github.com/tranvictor/kiosk/ui"
)

func newStallCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "stall",
		Short: "Create, inspect and forget your stall",
	}
	c.AddCommand(
		newStallCreateCmd(),
		newStallShowCmd(),
		newStallClearCmd(),
		newStallResolveCmd(),
	)
	return c
}

// randomSeed is used when stall create gets no seed.
func randomSeed() string {
	return "stall-" + strings.Split(uuid.NewString(), "-")[0]
}

func sourceStyle(src stall.Source) ui.StyledText {
	switch src {
	case stall.SourceEventData:
		return ui.Styled(src.String(), ui.SeveritySuccess)
	case stall.SourceDerived:
		return ui.Styled(src.String(), ui.SeverityInfo)
	}
	return ui.Styled(src.String(), ui.SeverityWarn)
}

func printRecord(s *session, rec stall.Record) error {
	if config.JSONOutput {
		return appUI.JSON(rec)
	}
	book := s.addressBook()
	appUI.KeyValue([][2]string{
		{"Owner", book.Resolve(rec.Owner.Hex()).String()},
		{"Seed", rec.Seed},
		{"Stall address", rec.StallAddress},
		{"Source", appUI.Style(sourceStyle(rec.Source))},
	})
	if msg := degradedWarning(rec.Source); msg != "" {
		appUI.Warn("%s", msg)
	}
	return nil
}

// degradedWarning is empty for sources that can be trusted.
func degradedWarning(src stall.Source) string {
	switch {
	case !src.Degraded():
		return ""
	case src == stall.SourceFallbackOwner:
		return "The stall address fell back to the owner address. Listing and buying will fail until you run: kiosk stall resolve <create tx hash> --remember"
	}
	return "The stall address was remembered without its source, so it may be wrong. Check it with: kiosk stall resolve <create tx hash> --remember"
}

func newStallCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [seed]",
		Short: "Create a stall and remember its address",
		Long: `Create a stall owned by the --from account. The seed decides the stall
address, so every stall of an account needs a different seed. A random one
is used when none is given.`,
		Args: cobra.MaximumNArgs(1),
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

			seed := randomSeed()
			if len(args) > 0 {
				seed = args[0]
			}
			if !config.JSONOutput {
				appUI.Info("Network: %s", s.network.GetName())
				appUI.Info("Creating stall of %s with seed %q on %s", acc.AddressHex(), seed, s.module)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFor(s.network))
			defer cancel()
			rec, err := s.client(acc).CreateStall(ctx, seed)
			if err != nil {
				return marketplace.Explain(marketplace.OpCreateStall, err)
			}
			if !config.JSONOutput {
				appUI.Success("Stall created")
			}
			return printRecord(s, rec)
		},
	}
}

func newStallShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [owner]",
		Short: "Show the remembered stall and check it on chain",
		Args:  cobra.MaximumNArgs(1),
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

			stop := appUI.Spinner("Checking stall...")
			st, err := s.client(nil).StallStatus(cmd.Context(), owner)
			stop()
			if err != nil {
				return err
			}
			if config.JSONOutput {
				return appUI.JSON(st)
			}

			appUI.Section("Stall")
			if !st.Remembered {
				appUI.KeyValue([][2]string{
					{"Account", st.Account.Hex()},
					{"Stall status", "No stall created"},
				})
				return nil
			}
			status := ui.Styled("Valid", ui.SeveritySuccess)
			if !st.Valid {
				status = ui.Styled("Invalid, stall not found ("+marketplace.AbortStallNotFound+")", ui.SeverityError)
			}
			appUI.KeyValue([][2]string{
				{"Account", st.Account.Hex()},
				{"Stored stall address", st.Record.StallAddress},
				{"Stored seed", st.Record.Seed},
				{"Source", appUI.Style(sourceStyle(st.Record.Source))},
				{"Stall status", appUI.Style(status)},
			})
			if !st.Valid && st.CheckErr != "" {
				appUI.Indent().Info("%s", st.CheckErr)
				appUI.Info("Run kiosk stall clear to forget it and create a new stall.")
			}
			if msg := degradedWarning(st.Record.Source); msg != "" {
				appUI.Warn("%s", msg)
			}
			return nil
		},
	}
}

func newStallClearCmd() *cobra.Command {
	var yes bool
	c := &cobra.Command{
		Use:   "clear [owner]",
		Short: "Forget the remembered stall address and seed",
		Long: `Forget the stall address and seed remembered for an account so a new
stall can be created. Nothing happens on chain.`,
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

			rec, found, err := s.registry.Lookup(owner)
			if err != nil {
				return err
			}
			if !found {
				appUI.Info("No stall remembered for %s.", owner)
				return nil
			}
			if !yes && !appUI.Confirm(fmt.Sprintf("Forget stall %s (seed %q)?", rec.StallAddress, rec.Seed), false) {
				appUI.Info("Aborted.")
				return nil
			}
			if err := s.registry.Forget(owner); err != nil {
				return err
			}
			appUI.Success("Cleared stall data of %s. You can create a new stall now.", rec.Owner.Hex())
			return nil
		},
	}
	c.Flags().BoolVarP(&yes, "yes", "y", false, "don't ask for confirmation")
	return c
}

func newStallResolveCmd() *cobra.Command {
	var remember bool
	c := &cobra.Command{
		Use:   "resolve <create-stall-tx-hash>",
		Short: "Work out the stall address from a create_stall tx",
		Long: `Fetch a committed create_stall tx and resolve the stall address from its
events, falling back to derivation from the sender and seed. With
--remember the result replaces the remembered stall of the sender.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			tx, err := s.reader.TransactionByHash(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if tx == nil {
				return fmt.Errorf("tx %s not found on %s", args[0], s.network.GetName())
			}
			if tx.IsPending() {
				return fmt.Errorf("tx %s is still pending", args[0])
			}
			if tx.Payload == nil || !callsCreateStall(s.module, tx.Payload.Function) {
				appUI.Warn("tx %s doesn't call %s", args[0], s.module.Function(marketplace.CreateStallFunction))
			}
			seed, ok := tx.StringArgument(0)
			if !ok {
				return fmt.Errorf("tx %s has no seed argument", args[0])
			}

			res := s.module.StallResolver(stall.WithLogger(s.logger)).Resolve(tx.Sender, seed, tx.Events)
			rec, err := stall.NewRecord(tx.Sender, seed, res)
			if err != nil {
				return err
			}
			if remember {
				if !tx.Success {
					return fmt.Errorf("tx %s reverted: %s", args[0], tx.VMStatus)
				}
				if err := s.registry.Remember(rec); err != nil {
					return err
				}
				if !config.JSONOutput {
					appUI.Success("Remembered stall of %s", rec.Owner.Hex())
				}
			}
			return printRecord(s, rec)
		},
	}
	c.Flags().BoolVar(&remember, "remember", false, "remember the resolved stall for the tx sender")
	return c
}

func callsCreateStall(module marketplace.Module, function string) bool {
	name, ok := module.FunctionName(function)
	return ok && name == marketplace.CreateStallFunction
}

// parsePrice reads an APT amount such as "1.5" into octas.
func parsePrice(s string) (uint64, error) {
	octas, err := common.ParseAPT(s)
	if err != nil {
		return 0, fmt.Errorf("price: %w", err)
	}
	return octas, nil
}
