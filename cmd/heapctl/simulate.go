package main

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/pageheap/heap/alloc"
	"github.com/joshuapare/pageheap/heap/verify"
)

var (
	simOps          int
	simSeed         int64
	simMaxPages     uint32
	simReleaseRatio float64
)

func init() {
	cmd := newSimulateCmd()
	cmd.Flags().IntVar(&simOps, "ops", 10000, "Number of operations")
	cmd.Flags().Int64Var(&simSeed, "seed", 1, "Random seed")
	cmd.Flags().Uint32Var(&simMaxPages, "max-pages", 16, "Largest request, in pages")
	cmd.Flags().Float64Var(&simReleaseRatio, "release-ratio", 0.4, "Probability that a step releases instead of allocating")
	rootCmd.AddCommand(cmd)
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a seeded random workload",
		Long: `The simulate command drives the allocator with a reproducible random
mix of allocations and releases, checking every invariant after each step.

Example:
  heapctl simulate --ops 100000 --seed 7
  heapctl simulate --max-pages 64 --release-ratio 0.5 --mmap`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd)
		},
	}
	return cmd
}

// SimResult summarizes a simulation.
type SimResult struct {
	Seed      int64       `json:"seed"`
	Ops       int         `json:"ops"`
	Allocs    int         `json:"allocs"`
	Releases  int         `json:"releases"`
	NoSpace   int         `json:"no_space"`
	PeakPages uint32      `json:"peak_pages"`
	Final     alloc.Stats `json:"final"`
}

func runSimulate(cmd *cobra.Command) error {
	if simMaxPages == 0 {
		return errors.New("--max-pages must be at least 1")
	}
	if simReleaseRatio < 0 || simReleaseRatio > 1 {
		return fmt.Errorf("--release-ratio %v outside [0, 1]", simReleaseRatio)
	}

	cfg, env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	res, err := simulate(env, cfg.Heap.PageSize)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(res)
	}
	if quiet {
		return nil
	}

	p := message.NewPrinter(language.English)
	p.Printf("Simulated %d operations (seed %d)\n", res.Ops, res.Seed)
	p.Printf("  Allocations:   %d\n", res.Allocs)
	p.Printf("  Releases:      %d\n", res.Releases)
	p.Printf("  Out of space:  %d\n", res.NoSpace)
	p.Printf("  Peak pages:    %d of %d\n", res.PeakPages, res.Final.TotalPages)
	p.Printf("  Final used:    %d pages in %d records\n", res.Final.UsedPages, res.Final.LiveRecords)
	p.Printf("  Free runs:     %d (largest %d)\n", res.Final.FreeRuns, res.Final.LargestFree)
	p.Printf("  Fragmentation: %.2f%%\n", res.Final.Fragmentation*100)
	printVerbose("\n")
	if verbose {
		env.alloc.PrintStats(os.Stdout)
	}
	return nil
}

func simulate(env *heapEnv, pageSize uint32) (SimResult, error) {
	a := env.alloc
	rng := rand.New(rand.NewSource(simSeed))
	res := SimResult{Seed: simSeed, Ops: simOps}
	var live []alloc.Addr
	limit := min(int64(simMaxPages)*int64(pageSize), math.MaxUint32)

	for step := 0; step < simOps; step++ {
		if len(live) > 0 && rng.Float64() < simReleaseRatio {
			i := rng.Intn(len(live))
			if err := a.Release(live[i]); err != nil {
				return res, fmt.Errorf("step %d: release 0x%08X: %w", step, live[i], err)
			}
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			res.Releases++
		} else {
			size := uint32(1 + rng.Int63n(limit))
			addr, err := a.Allocate(size)
			switch {
			case errors.Is(err, alloc.ErrNoSpace):
				res.NoSpace++
			case err != nil:
				return res, fmt.Errorf("step %d: allocate %d: %w", step, size, err)
			default:
				live = append(live, addr)
				res.Allocs++
			}
		}

		if err := verify.AllInvariants(a, env.ranges); err != nil {
			return res, fmt.Errorf("step %d: %w", step, err)
		}
		res.PeakPages = max(res.PeakPages, a.Stats().UsedPages)
	}

	res.Final = a.Stats()
	return res, nil
}
