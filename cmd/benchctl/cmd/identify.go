package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-bench/scpi"
	"github.com/arloliu/go-bench/transport"
)

var identifyCmd = &cobra.Command{
	Use:   "identify [locators...]",
	Short: "Probe locators for identity responses",
	Long: `Probe each locator with an *IDN? query and print the identification string
of every device that answers. Without arguments, all enumerable locators are
probed. Non-responding locators are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}

		locators := args
		if len(locators) == 0 {
			locators = transport.AvailableLocators()
		}

		for _, found := range scpi.IdentifyDevices(reg, locators) {
			fmt.Printf("%s\t%s\n", found.Locator, found.Identity)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}
