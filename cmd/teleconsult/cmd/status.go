package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arogya/teleconsult/internal/consult/api"
)

var statusCmd = &cobra.Command{
	Use:   "status <consultation-id>",
	Short: "Show the state of a consultation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		client := api.NewClient(cfg.Server.BaseURL, cfg.Server.RequestTimeout.Duration, logger.Named("api"))
		info, err := client.Status(cmd.Context(), args[0])
		if err != nil {
			printError("could not fetch consultation status", err)
			return err
		}

		fmt.Printf("Consultation:  %s\n", args[0])
		fmt.Printf("Status:        %s\n", info.Status)
		if !info.CreatedAt.IsZero() {
			fmt.Printf("Created:       %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		if !info.LastActivity.IsZero() {
			fmt.Printf("Last activity: %s\n", info.LastActivity.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
