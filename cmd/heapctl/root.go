package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pageheap/heap/alloc"
	"github.com/joshuapare/pageheap/heap/backing"
	"github.com/joshuapare/pageheap/internal/config"
	"github.com/joshuapare/pageheap/internal/logger"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configPath string
	heapStart  uint32
	heapMax    uint32
	pageSize   uint32
	useMmap    bool
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Drive and inspect a best-fit page heap",
	Long: `heapctl runs allocation workloads against a best-fit page allocator
and reports the resulting page map, statistics, and invariant checks.
Pages can be backed by an in-memory recorder or by a real mmap reservation.`,
	Version:      "0.1.0",
	SilenceUsage: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().Uint32Var(&heapStart, "heap-start", alloc.DefaultHeapStart, "First address of the managed range")
	rootCmd.PersistentFlags().Uint32Var(&heapMax, "heap-max", alloc.DefaultHeapMax, "Exclusive end of the managed range")
	rootCmd.PersistentFlags().Uint32Var(&pageSize, "page-size", alloc.DefaultPageSize, "Page size in bytes (power of two)")
	rootCmd.PersistentFlags().BoolVar(&useMmap, "mmap", false, "Back pages with an mmap reservation instead of the recorder")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration: defaults, then the
// config file, then any flags set on the command line.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	var o config.Overrides
	flags := cmd.Flags()
	if flags.Changed("heap-start") {
		o.HeapStart = &heapStart
	}
	if flags.Changed("heap-max") {
		o.HeapMax = &heapMax
	}
	if flags.Changed("page-size") {
		o.PageSize = &pageSize
	}
	if useMmap {
		kind := config.BackingMmap
		o.Backing = &kind
	}
	if verbose {
		level := "debug"
		o.LogLevel = &level
	}
	cfg.Merge(o)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// initLogging enables structured logging on stderr when -v is given or a
// config file is in use.
func initLogging(cfg config.Config) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	return logger.Init(logger.Options{
		Enabled: (verbose || configPath != "") && !quiet,
		Level:   level,
		Format:  logger.Format(cfg.Log.Format),
		Writer:  os.Stderr,
	})
}

// heapEnv is an allocator with the store behind it.
type heapEnv struct {
	alloc  *alloc.Allocator
	ranges backing.RangeLister
	close  func() error
}

// openHeap builds the backing store selected by cfg and an allocator on top.
func openHeap(cfg config.Config) (*heapEnv, error) {
	var (
		store  backing.Store
		lister backing.RangeLister
		closer = func() error { return nil }
	)

	switch cfg.Backing {
	case config.BackingMmap:
		region, err := backing.NewRegion(cfg.Heap.HeapStart, cfg.Heap.Size(), cfg.Heap.PageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to reserve region: %w", err)
		}
		store, lister, closer = region, region, region.Close
	default:
		rec := backing.NewRecorder(cfg.Heap.PageSize)
		store, lister = rec, rec
	}

	a, err := alloc.New(cfg.Heap, backing.WithLogger(store, logger.L), alloc.WithLogger(logger.L))
	if err != nil {
		_ = closer()
		return nil, err
	}
	printVerbose("Heap: %s (backing: %s)\n", cfg.Heap, cfg.Backing)
	return &heapEnv{alloc: a, ranges: lister, close: closer}, nil
}

// setup is the common prologue of commands that need a heap.
func setup(cmd *cobra.Command) (config.Config, *heapEnv, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := initLogging(cfg); err != nil {
		return config.Config{}, nil, err
	}
	env, err := openHeap(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, env, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printRuns prints the page map, one run per line.
func printRuns(runs []alloc.Run, pageSize uint32) {
	printInfo("\nPage map:\n")
	for _, r := range runs {
		state := "used"
		if r.Free {
			state = "free"
		}
		end := uint64(r.Base) + uint64(r.Pages)*uint64(pageSize)
		printInfo("  [0x%08X, 0x%08X)  %6d pages  %s\n", r.Base, end, r.Pages, state)
	}
}
