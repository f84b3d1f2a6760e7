package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshuapare/pageheap/heap/alloc"
)

// testHeapFlags selects a small 16-page heap for command tests.
var testHeapFlags = []string{"--heap-start", "0x80000000", "--heap-max", "0x80010000", "--page-size", "4096"}

// resetFlags restores global and subcommand flag variables to their
// defaults; cobra keeps them between Execute calls.
func resetFlags() {
	verbose, quiet, jsonOut, useMmap = false, false, false, false
	configPath = ""
	heapStart, heapMax, pageSize = alloc.DefaultHeapStart, alloc.DefaultHeapMax, alloc.DefaultPageSize
	runNoVerify = false
	simOps, simSeed, simMaxPages, simReleaseRatio = 10000, 1, 16, 0.4
}

// execCLI runs heapctl with args and returns captured stdout.
func execCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	rootCmd.SetArgs(args)
	return captureOutput(t, rootCmd.Execute)
}

// writeScript writes a workload script into a temp dir and returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workload.txt")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	// Drain concurrently so large outputs cannot fill the pipe.
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	out := <-done

	return string(out), fnErr
}

// assertJSON checks that output is valid JSON and decodes it into v
func assertJSON(t *testing.T, output string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Fatalf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}
