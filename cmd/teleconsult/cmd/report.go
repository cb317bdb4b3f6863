package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arogya/teleconsult/internal/consult/api"
)

var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report <consultation-id>",
	Short: "Download the consultation report (PDF)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		path := reportOutput
		if path == "" {
			path = fmt.Sprintf("report-%s.pdf", args[0])
		}

		client := api.NewClient(cfg.Server.BaseURL, cfg.Server.RequestTimeout.Duration, logger.Named("api"))
		if err := client.DownloadReport(cmd.Context(), args[0], path); err != nil {
			printError("could not download report", err)
			return err
		}

		fmt.Printf("Report saved to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output file (default: report-<id>.pdf)")
}
