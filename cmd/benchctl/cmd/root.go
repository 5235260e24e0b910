package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-bench/logger"
	"github.com/arloliu/go-bench/transport"
)

var (
	// Global flags
	verbose         bool
	gpibControllers []string
)

var rootCmd = &cobra.Command{
	Use:   "benchctl",
	Short: "Bench equipment discovery and environment resolution",
	Long: `benchctl surveys the instruments reachable from this host and resolves
declarative bench configurations into live environments.

Examples:
  benchctl list                                      # Enumerate candidate locators
  benchctl identify TCPIP0::10.0.0.5::5025::SOCKET   # Probe locators for *IDN? responses
  benchctl up bench.json --require source_v_in       # Resolve a bench configuration`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringArrayVar(&gpibControllers, "gpib", nil,
		"GPIB controller mapping board=locator, e.g. GPIB0=ASRL/dev/ttyUSB0::INSTR")
}

// newRegistry builds the transport registry shared by the subcommands,
// applying the --gpib controller mappings.
func newRegistry() (*transport.Registry, error) {
	if verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	var opts []transport.RegistryOption
	for _, mapping := range gpibControllers {
		board, locator, ok := strings.Cut(mapping, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --gpib mapping %q, expected board=locator", mapping)
		}
		opts = append(opts, transport.WithGPIBController(board, locator))
	}

	return transport.NewRegistry(opts...), nil
}
