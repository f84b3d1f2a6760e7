package main

import (
	"os"
	"runtime"
	"strings"
	"testing"
)

const basicScript = `# two allocations, one expected failure, then reuse
alloc a 4096
alloc b 8K
expect-fail alloc big 1M
free a
alloc c 1
`

func TestRunCommand(t *testing.T) {
	path := writeScript(t, basicScript)

	out, err := execCLI(t, append([]string{"run", path}, testHeapFlags...)...)
	if err != nil {
		t.Fatalf("run failed: %v\nOutput: %s", err, out)
	}
	assertContains(t, out, []string{
		"-> 0x80001000",
		"failed as expected",
		"Page map:",
		"[0x80000000, 0x80001000)       1 pages  used",
		"[0x80003000, 0x80010000)      13 pages  free",
		"Live records:   2",
	})
	if !strings.Contains(out, "line   6: alloc c 1") || !strings.Contains(out, "-> 0x80000000") {
		t.Errorf("freed page was not reused\nGot: %s", out)
	}
}

func TestRunCommand_JSON(t *testing.T) {
	path := writeScript(t, basicScript)

	out, err := execCLI(t, append([]string{"run", path, "--json"}, testHeapFlags...)...)
	if err != nil {
		t.Fatalf("run failed: %v\nOutput: %s", err, out)
	}

	var report runReport
	assertJSON(t, out, &report)
	if len(report.Steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(report.Steps))
	}
	if report.Failed != 0 {
		t.Errorf("expected no failures, got %d", report.Failed)
	}
	if report.Steps[4].Addr != "0x80000000" {
		t.Errorf("step 5 addr = %q, want 0x80000000", report.Steps[4].Addr)
	}
	if report.Steps[2].Error == "" || !report.Steps[2].Pass {
		t.Errorf("expect-fail step: %+v", report.Steps[2])
	}
	if report.Stats.UsedPages != 3 || report.Stats.TotalPages != 16 {
		t.Errorf("unexpected stats: %+v", report.Stats)
	}
}

func TestRunCommand_Failures(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"unknown name", "free nope\n", "1 of 1 steps did not match"},
		{"double free", "alloc a 1\nfree a\nfree @0x80000000\n", "1 of 3 steps did not match"},
		{"unexpected success", "expect-fail alloc a 1\n", "1 of 1 steps did not match"},
		{"syntax", "alloc a 1\nbogus\n", "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScript(t, tt.script)
			_, err := execCLI(t, append([]string{"run", path, "-q"}, testHeapFlags...)...)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestRunCommand_MissingScript(t *testing.T) {
	_, err := execCLI(t, "run", "/nonexistent/workload.txt")
	if err == nil || !strings.Contains(err.Error(), "failed to read script") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestRunCommand_Mmap(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "darwin", "freebsd":
	default:
		t.Skip("mmap backing not available on " + runtime.GOOS)
	}
	if os.Getpagesize() > 4096 {
		t.Skipf("system page size %d exceeds the 4K test page", os.Getpagesize())
	}

	path := writeScript(t, basicScript+"free b\nfree c\n")
	out, err := execCLI(t, append([]string{"run", path, "--mmap"}, testHeapFlags...)...)
	if err != nil {
		t.Fatalf("run failed: %v\nOutput: %s", err, out)
	}
	assertContains(t, out, []string{"[0x80000000, 0x80010000)      16 pages  free"})
}
