package alloc

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/joshuapare/pageheap/heap/backing"
)

// Benchmark_BestFit_Fragmented measures one allocate/release pair on a table
// fragmented into many short free runs, with the only fitting run at the end.
// The search skips allocated runs by their length, so cost tracks the number
// of runs rather than the number of slots.
func Benchmark_BestFit_Fragmented(b *testing.B) {
	for _, runs := range []int{16, 256, 4096} {
		b.Run(strconv.Itoa(runs)+"_runs", func(b *testing.B) {
			lengths := make([]uint32, runs)
			for i := range lengths {
				lengths[i] = 1
			}
			lengths[runs-1] = 8

			a, _, _ := newAllocatorWithFreeRuns(b, lengths)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				addr, err := a.Allocate(8 * testPage)
				if err != nil {
					b.Fatal(err)
				}
				if err := a.Release(addr); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark_Churn measures a random allocate/release mix on the default
// 512MB range.
func Benchmark_Churn(b *testing.B) {
	cfg := DefaultConfig()
	a, err := New(cfg, backing.NewRecorder(cfg.PageSize))
	if err != nil {
		b.Fatal(err)
	}
	rng := rand.New(rand.NewSource(42))
	live := make([]Addr, 0, 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if len(live) > 512 || (len(live) > 0 && rng.Intn(2) == 0) {
			i := rng.Intn(len(live))
			if err := a.Release(live[i]); err != nil {
				b.Fatal(err)
			}
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			continue
		}
		addr, err := a.Allocate(uint32(1+rng.Intn(64)) * testPage)
		if err != nil {
			b.Fatal(err)
		}
		live = append(live, addr)
	}
}
