package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tranvictor/kiosk/config"
)

const VERSION string = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show kiosk version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.JSONOutput {
				return appUI.JSON(map[string]string{"version": VERSION})
			}
			appUI.Info("Version: %s", VERSION)
			return nil
		},
	}
}
