package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vocalishq/vocalis/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:          "vocalis",
		Short:        "Discord bot that transcribes voice messages and augments media",
		SilenceUsage: true,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Connect to Discord and handle events until interrupted",
			Run: func(cmd *cobra.Command, args []string) {
				runServe()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println(version.GetInfo())
			},
		},
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
