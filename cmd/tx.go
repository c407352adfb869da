package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tranvictor/kiosk/common"
	"github.com/tranvictor/kiosk/config"
	"github.com/tranvictor/kiosk/stall"
	"github.com/tranvictor/kiosk/txanalyzer"
	"github.com/tranvictor/kiosk/util"
	"github.com/tranvictor/kiosk/util/monitor"
)

func newTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tx <hash>",
		Short: "Explain a transaction",
		Long: `Fetch a transaction and show its call, arguments and events with known
addresses labelled. For create_stall the resolved stall address is shown
as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			stop := appUI.Spinner("Fetching tx...")
			info, err := s.reader.TxInfoFromHash(cmd.Context(), args[0])
			stop()
			if err != nil {
				return err
			}

			analyzer := txanalyzer.NewTxAnalyzer(s.module, s.module.StallResolver(stall.WithLogger(s.logger)))
			result := analyzer.Analyze(txanalyzer.NewAnalysisContext(s.network, s.addressBook()), info)
			if result.Hash == "" {
				result.Hash = args[0]
			}
			if config.JSONOutput {
				return appUI.JSON(result)
			}
			util.DisplayTxResult(appUI, result)
			if info.Tx != nil {
				appUI.Info("%s", s.network.GetExplorerTxURL(result.Hash))
			}
			return nil
		},
	}
}

type waitResult struct {
	Hash    string `json:"hash"`
	Status  string `json:"status"`
	Version uint64 `json:"version,omitempty"`
}

func newWaitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wait <hash>...",
		Short: "Wait until transactions are committed or lost",
		Long: `Poll the nodes until every hash is committed, reverted or never seen for
too long. Useful for txs broadcasted by a previous run that was stopped
before they landed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFor(s.network))
			defer cancel()
			stop := appUI.Spinner(fmt.Sprintf("Waiting for %d txs...", len(args)))
			infos := monitor.NewTxMonitor(s.reader, pollInterval, lostAfter).BlockingWaitForMultipleTxs(ctx, args...)
			stop()

			results := make([]waitResult, 0, len(args))
			failed := 0
			for _, hash := range args {
				info, found := infos[hash]
				if !found {
					info = common.TxInfo{Status: common.TxStatusPending}
				}
				res := waitResult{Hash: hash, Status: info.Status}
				if info.Tx != nil {
					res.Version = info.Tx.VersionNumber()
				}
				if info.Status != common.TxStatusDone {
					failed++
				}
				results = append(results, res)
			}
			if config.JSONOutput {
				return appUI.JSON(results)
			}
			rows := make([][]string, 0, len(results))
			for i, r := range results {
				rows = append(rows, []string{fmt.Sprint(i + 1), r.Hash, r.Status, fmt.Sprint(r.Version)})
			}
			appUI.Table([]string{"#", "Tx", "Status", "Version"}, rows)
			if failed > 0 {
				appUI.Warn("%d of %d txs did not succeed.", failed, len(results))
			}
			return nil
		},
	}
}
