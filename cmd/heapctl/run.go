package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pageheap/heap/alloc"
	"github.com/joshuapare/pageheap/heap/verify"
	"github.com/joshuapare/pageheap/internal/script"
)

var runNoVerify bool

func init() {
	cmd := newRunCmd()
	cmd.Flags().BoolVar(&runNoVerify, "no-verify", false, "Skip invariant checks after each step")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Execute a workload script",
		Long: `The run command executes an allocation script and prints the outcome
of every step followed by the final page map.

Script lines:
  alloc <name> <size>               size: decimal, 0x-hex, or K/M suffix
  free <name>
  free @<addr>
  expect-fail alloc <name> <size>

Lines starting with # are comments. Scripts may be UTF-8 or UTF-16 with a BOM.

Example:
  heapctl run workload.txt
  heapctl run workload.txt --heap-max 0x80100000 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, args)
		},
	}
	return cmd
}

type stepJSON struct {
	Line  int    `json:"line"`
	Op    string `json:"op"`
	Addr  string `json:"addr,omitempty"`
	Pass  bool   `json:"pass"`
	Error string `json:"error,omitempty"`
}

type runReport struct {
	Script string       `json:"script"`
	Config alloc.Config `json:"config"`
	Steps  []stepJSON   `json:"steps"`
	Failed int          `json:"failed"`
	Runs   []alloc.Run  `json:"runs"`
	Stats  alloc.Stats  `json:"stats"`
}

func runScript(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	printVerbose("Reading script: %s\n", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	ops, err := script.Parse(data)
	if err != nil {
		return err
	}

	runner := script.NewRunner(env.alloc)
	if !runNoVerify {
		runner.Check = func() error { return verify.AllInvariants(env.alloc, env.ranges) }
	}
	results, runErr := runner.Run(ops)
	failed := script.Failed(results)

	if jsonOut {
		report := runReport{
			Script: path,
			Config: cfg.Heap,
			Steps:  make([]stepJSON, 0, len(results)),
			Failed: len(failed),
			Runs:   env.alloc.Runs(),
			Stats:  env.alloc.Stats(),
		}
		for _, res := range results {
			s := stepJSON{Line: res.Op.Line, Op: res.Op.String(), Pass: res.Pass}
			if res.Addr != 0 {
				s.Addr = fmt.Sprintf("0x%08X", res.Addr)
			}
			if res.Err != nil {
				s.Error = res.Err.Error()
			}
			report.Steps = append(report.Steps, s)
		}
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			printStep(res)
		}
		printRuns(env.alloc.Runs(), cfg.Heap.PageSize)
		printInfo("\n")
		if !quiet {
			env.alloc.PrintStats(os.Stdout)
		}
	}

	if runErr != nil {
		return fmt.Errorf("invariant violated: %w", runErr)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d steps did not match the script", len(failed), len(results))
	}
	return nil
}

func printStep(res script.Result) {
	prefix := fmt.Sprintf("line %3d: %-32s", res.Op.Line, res.Op)
	switch {
	case res.Pass && res.Err != nil:
		printInfo("%s  failed as expected (%v)\n", prefix, res.Err)
	case res.Pass && res.Op.Kind == script.OpAlloc:
		printInfo("%s  -> 0x%08X\n", prefix, res.Addr)
	case res.Pass:
		printInfo("%s  ok\n", prefix)
	default:
		printError("%s  %v\n", prefix, res.Err)
	}
}
