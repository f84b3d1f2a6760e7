package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newConfigCmd())
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `The config command merges the built-in defaults, the --config file,
and command-line flags, validates the result, and prints it. The YAML
output can be saved and passed back with --config.

Example:
  heapctl config
  heapctl config --heap-max 0x80100000 --page-size 0x2000
  heapctl config --config heap.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd)
		},
	}
}

func runConfig(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"config": cfg,
			"pages":  cfg.Heap.NumPages(),
		})
	}

	out, err := cfg.YAML()
	if err != nil {
		return err
	}
	printVerbose("# %s\n", cfg.Heap)
	printInfo("%s", out)
	return nil
}
