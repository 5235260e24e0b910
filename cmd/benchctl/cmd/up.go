package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-bench/bench"
	"github.com/arloliu/go-bench/config"

	// register the generic multimeter driver
	_ "github.com/arloliu/go-bench/dmm"
)

var (
	requireDevices []string
	initDevices    bool
)

var upCmd = &cobra.Command{
	Use:   "up <config file>",
	Short: "Resolve a bench configuration into live connections",
	Long: `Resolve a declarative bench configuration (JSON or YAML) into live
instrument connections and report the outcome per device.

With --require, the named devices must all connect or resolution fails;
without it, devices that fail to connect are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}

		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}

		opts := []bench.BuildOption{bench.WithTransportRegistry(reg)}
		if len(requireDevices) > 0 {
			opts = append(opts, bench.WithMask(requireDevices...))
		}
		if initDevices {
			opts = append(opts, bench.WithInit())
		}

		env, err := bench.Build(cfg, opts...)
		if err != nil {
			return err
		}

		for _, name := range env.Names() {
			dev, _ := env.Device(name)
			fmt.Printf("%-24s %s (%s)\n", name, dev.Locator(), env.State(name))
		}
		for _, failure := range env.Failures() {
			fmt.Printf("%-24s failed: %v\n", failure.Name, failure.Err)
		}
		if env.DMMs().Len() > 0 {
			fmt.Printf("multimeter group: %s\n", strings.Join(env.DMMs().Names(), ", "))
		}

		return nil
	},
}

func init() {
	upCmd.Flags().StringSliceVar(&requireDevices, "require", nil, "device names that must connect (the mask)")
	upCmd.Flags().BoolVar(&initDevices, "init", false, "run declared init sequences after connecting")
	rootCmd.AddCommand(upCmd)
}
