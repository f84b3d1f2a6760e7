// Package config loads heapctl settings from YAML and applies command-line
// overrides on top.
//
// Example file:
//
//	heap:
//	  heap_start: 0x80000000
//	  heap_max: "0xA0000000"
//	  page_size: 4096
//	backing: mmap
//	log:
//	  level: debug
//	  format: json
//
// Addresses and sizes may be YAML integers or strings in any base accepted
// by strconv.ParseUint with base 0.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/pageheap/heap/alloc"
)

// Backing store kinds.
const (
	BackingRecorder = "recorder"
	BackingMmap     = "mmap"
)

// Config is the effective heapctl configuration.
type Config struct {
	Heap    alloc.Config `yaml:"heap" json:"heap"`
	Backing string       `yaml:"backing" json:"backing"`
	Log     Log          `yaml:"log" json:"log"`
}

// Log holds logger settings.
type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Heap:    alloc.DefaultConfig(),
		Backing: BackingRecorder,
		Log:     Log{Level: "info", Format: "text"},
	}
}

// Number is a uint32 that unmarshals from a YAML integer or a numeric string.
type Number uint32

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Number) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", node.Line)
	}
	v, err := strconv.ParseUint(node.Value, 0, 32)
	if err != nil {
		return fmt.Errorf("line %d: invalid number %q", node.Line, node.Value)
	}
	*n = Number(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (n Number) MarshalYAML() (any, error) {
	return fmt.Sprintf("0x%08X", uint32(n)), nil
}

// file mirrors Config with optional fields so absent keys keep defaults.
type file struct {
	Heap struct {
		HeapStart *Number `yaml:"heap_start"`
		HeapMax   *Number `yaml:"heap_max"`
		PageSize  *Number `yaml:"page_size"`
	} `yaml:"heap"`
	Backing *string `yaml:"backing"`
	Log     struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.decode(data); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	if f.Heap.HeapStart != nil {
		c.Heap.HeapStart = alloc.Addr(*f.Heap.HeapStart)
	}
	if f.Heap.HeapMax != nil {
		c.Heap.HeapMax = alloc.Addr(*f.Heap.HeapMax)
	}
	if f.Heap.PageSize != nil {
		c.Heap.PageSize = uint32(*f.Heap.PageSize)
	}
	if f.Backing != nil {
		c.Backing = *f.Backing
	}
	if f.Log.Level != nil {
		c.Log.Level = *f.Log.Level
	}
	if f.Log.Format != nil {
		c.Log.Format = *f.Log.Format
	}
	return nil
}

// Overrides are command-line values; nil fields leave the config alone.
type Overrides struct {
	HeapStart *uint32
	HeapMax   *uint32
	PageSize  *uint32
	Backing   *string
	LogLevel  *string
}

// Merge applies o on top of c.
func (c *Config) Merge(o Overrides) {
	if o.HeapStart != nil {
		c.Heap.HeapStart = *o.HeapStart
	}
	if o.HeapMax != nil {
		c.Heap.HeapMax = *o.HeapMax
	}
	if o.PageSize != nil {
		c.Heap.PageSize = *o.PageSize
	}
	if o.Backing != nil {
		c.Backing = *o.Backing
	}
	if o.LogLevel != nil {
		c.Log.Level = *o.LogLevel
	}
}

// Validate checks the heap range, backing kind and log settings.
func (c Config) Validate() error {
	if err := c.Heap.Validate(); err != nil {
		return err
	}
	switch c.Backing {
	case BackingRecorder, BackingMmap:
	default:
		return fmt.Errorf("config: unknown backing %q (want %s or %s)", c.Backing, BackingRecorder, BackingMmap)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

// Level parses Log.Level. An empty level is info.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("config: %w", err)
	}
	return lvl, nil
}

// YAML renders c as a config file that Load accepts.
func (c Config) YAML() ([]byte, error) {
	out := struct {
		Heap struct {
			HeapStart Number `yaml:"heap_start"`
			HeapMax   Number `yaml:"heap_max"`
			PageSize  uint32 `yaml:"page_size"`
		} `yaml:"heap"`
		Backing string `yaml:"backing"`
		Log     Log    `yaml:"log"`
	}{Backing: c.Backing, Log: c.Log}
	out.Heap.HeapStart = Number(c.Heap.HeapStart)
	out.Heap.HeapMax = Number(c.Heap.HeapMax)
	out.Heap.PageSize = c.Heap.PageSize
	return yaml.Marshal(out)
}
