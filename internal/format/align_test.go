package format

import (
	"math"
	"testing"
)

func TestRoundUp(t *testing.T) {
	cases := []struct {
		n, align, want uint64
	}{
		{0, 4096, 0},
		{1, 4096, 4096},
		{4096, 4096, 4096},
		{4097, 4096, 8192},
		{8191, 4096, 8192},
		{17, 16, 32},
	}
	for _, c := range cases {
		got, ok := RoundUp(c.n, c.align)
		if !ok || got != c.want {
			t.Fatalf("RoundUp(%d,%d)=%d,%v want %d", c.n, c.align, got, ok, c.want)
		}
	}
	if _, ok := RoundUp(math.MaxUint64, 4096); ok {
		t.Fatalf("RoundUp should report overflow")
	}
}

func TestAlignDownAndIsAligned(t *testing.T) {
	if got := AlignDown(4097, 4096); got != 4096 {
		t.Fatalf("AlignDown(4097)=%d", got)
	}
	if got := AlignDown(4095, 4096); got != 0 {
		t.Fatalf("AlignDown(4095)=%d", got)
	}
	if !IsAligned(0x80000000, DefaultPageSize) {
		t.Fatalf("0x80000000 should be page aligned")
	}
	if IsAligned(0x80000001, DefaultPageSize) {
		t.Fatalf("0x80000001 should not be page aligned")
	}
}

func TestIsPow2(t *testing.T) {
	for _, n := range []uint64{1, 2, 4096, 1 << 40} {
		if !IsPow2(n) {
			t.Fatalf("IsPow2(%d) = false", n)
		}
	}
	for _, n := range []uint64{0, 3, 4095, 6000} {
		if IsPow2(n) {
			t.Fatalf("IsPow2(%d) = true", n)
		}
	}
}

func TestPagesFor(t *testing.T) {
	if got := PagesFor(0, 4096); got != 0 {
		t.Fatalf("PagesFor(0)=%d", got)
	}
	if got := PagesFor(4096, 4096); got != 1 {
		t.Fatalf("PagesFor(4096)=%d", got)
	}
	if got := PagesFor(4097, 4096); got != 2 {
		t.Fatalf("PagesFor(4097)=%d", got)
	}
	if got := PagesFor(math.MaxUint64, 4096); got != math.MaxUint64/4096+1 {
		t.Fatalf("PagesFor(max)=%d", got)
	}
}
