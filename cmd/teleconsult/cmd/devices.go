package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arogya/teleconsult/internal/consult/capture"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available audio input devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := capture.ListInputDevices()
		if err != nil {
			printError("could not enumerate audio devices", err)
			return err
		}

		if len(devices) == 0 {
			fmt.Println("No audio input devices found")
			return nil
		}

		fmt.Println("Audio input devices:")
		for _, d := range devices {
			marker := " "
			if d.IsDefault {
				marker = "*"
			}
			fmt.Printf("  %s %s (%d ch, %.0f Hz)\n", marker, d.Name, d.MaxInputChannels, d.DefaultSampleRate)
		}
		fmt.Println()
		fmt.Println("* marks the system default device")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
