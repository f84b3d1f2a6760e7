package alloc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Addr(0x80000000), cfg.HeapStart)
	assert.Equal(t, Addr(0xA0000000), cfg.HeapMax)
	assert.Equal(t, uint32(4096), cfg.PageSize)
	assert.Equal(t, uint32(131072), cfg.NumPages())
	assert.Equal(t, "[0x80000000, 0xA0000000) page=4096 slots=131072", cfg.String())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"zero page size", Config{HeapStart: 0x1000, HeapMax: 0x2000, PageSize: 0}, "page_size"},
		{"page size not pow2", Config{HeapStart: 0x0, HeapMax: 0x3000, PageSize: 3000}, "page_size"},
		{"empty range", Config{HeapStart: 0x2000, HeapMax: 0x2000, PageSize: 4096}, "heap_max"},
		{"inverted range", Config{HeapStart: 0x3000, HeapMax: 0x2000, PageSize: 4096}, "heap_max"},
		{"misaligned start", Config{HeapStart: 0x1001, HeapMax: 0x3001, PageSize: 4096}, "heap_start"},
		{"partial last page", Config{HeapStart: 0x1000, HeapMax: 0x2800, PageSize: 4096}, "heap_max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.ErrorIs(t, err, ErrBadConfig)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestConfig_SmallPages(t *testing.T) {
	cfg := Config{HeapStart: 0x100, HeapMax: 0x200, PageSize: 16}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint32(16), cfg.NumPages())
	assert.True(t, cfg.Contains(0x100))
	assert.True(t, cfg.Contains(0x1FF))
	assert.False(t, cfg.Contains(0x200))
	assert.False(t, cfg.Contains(0xFF))
}

func TestConfig_NumPagesOnInvalid(t *testing.T) {
	assert.Zero(t, Config{HeapStart: 0x2000, HeapMax: 0x1000, PageSize: 4096}.NumPages())
	assert.Zero(t, Config{HeapStart: 0x1000, HeapMax: 0x2000}.NumPages())
}
