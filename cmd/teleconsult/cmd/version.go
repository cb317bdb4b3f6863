package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/arogya/teleconsult/internal/consult"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("TeleConsult v%s\n", consult.Version)
		if consult.GitCommit != "" {
			fmt.Printf("  Git Commit: %s\n", consult.GitCommit)
		}
		if consult.BuildTime != "" {
			fmt.Printf("  Build Time: %s\n", consult.BuildTime)
		}
		fmt.Printf("  Go Version: %s\n", runtime.Version())
		fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
