package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-bench/transport"
)

var listCmd = &cobra.Command{
	Use:   "list [extra locators...]",
	Short: "Enumerate candidate resource locators",
	Long: `Enumerate the resource locators reachable from this host: every serial
device present on the system plus any extra locators given as arguments
(network instruments cannot be enumerated).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, loc := range transport.AvailableLocators(args...) {
			fmt.Println(loc)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
