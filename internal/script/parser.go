// Package script parses and runs line-oriented allocator workloads.
//
// A script is a sequence of lines:
//
//	alloc <name> <size>             # size: decimal, 0x-hex, or with K/M suffix
//	free <name>
//	free @<addr>                    # raw address
//	expect-fail alloc <name> <size>
//
// Input is UTF-8, or UTF-16 when it starts with a byte order mark.
package script

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/joshuapare/pageheap/internal/buf"
)

// OpKind identifies a script operation.
type OpKind uint8

const (
	OpAlloc OpKind = iota
	OpFree
	OpFreeAddr
)

func (k OpKind) String() string {
	switch k {
	case OpAlloc:
		return KeywordAlloc
	case OpFree, OpFreeAddr:
		return KeywordFree
	default:
		return fmt.Sprintf("OpKind(%d)", uint8(k))
	}
}

// Op is one parsed script line.
type Op struct {
	Line       int    `json:"line"`
	Kind       OpKind `json:"-"`
	Name       string `json:"name,omitempty"`
	Size       uint32 `json:"size,omitempty"`
	Addr       uint32 `json:"addr,omitempty"` // OpFreeAddr only
	ExpectFail bool   `json:"expect_fail,omitempty"`
}

func (o Op) String() string {
	switch o.Kind {
	case OpAlloc:
		s := fmt.Sprintf("alloc %s %d", o.Name, o.Size)
		if o.ExpectFail {
			s = KeywordExpectFail + " " + s
		}
		return s
	case OpFree:
		return "free " + o.Name
	case OpFreeAddr:
		return fmt.Sprintf("free @0x%08X", o.Addr)
	default:
		return o.Kind.String()
	}
}

// Decode converts script bytes to UTF-8. A UTF-8 or UTF-16 byte order mark
// selects the encoding and is removed; without one the input is UTF-8.
func Decode(data []byte) ([]byte, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return nil, fmt.Errorf("script: decode: %w", err)
	}
	return out, nil
}

// Parse decodes data and parses every line.
func Parse(data []byte) ([]Op, error) {
	text, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return ParseReader(bytes.NewReader(text))
}

// ParseReader parses UTF-8 script text from r.
func ParseReader(r io.Reader) ([]Op, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), ScannerMaxLineSize)

	var ops []Op
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimRight(scanner.Text(), CR)
		line := raw
		if i := strings.Index(line, CommentPrefix); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		op, msg := parseFields(fields)
		if msg != "" {
			return nil, &ParseError{Line: lineNo, Text: strings.TrimSpace(raw), Msg: msg}
		}
		op.Line = lineNo
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("script: line %d: %w", lineNo+1, err)
	}
	return ops, nil
}

// parseFields returns the op for one non-empty line, or a message
// describing why the line is malformed.
func parseFields(fields []string) (Op, string) {
	expectFail := false
	if fields[0] == KeywordExpectFail {
		expectFail = true
		fields = fields[1:]
		if len(fields) == 0 || fields[0] != KeywordAlloc {
			return Op{}, "expect-fail must be followed by alloc"
		}
	}

	switch fields[0] {
	case KeywordAlloc:
		if len(fields) != 3 {
			return Op{}, "usage: alloc <name> <size>"
		}
		if msg := checkName(fields[1]); msg != "" {
			return Op{}, msg
		}
		size, err := ParseSize(fields[2])
		if err != nil {
			return Op{}, err.Error()
		}
		return Op{Kind: OpAlloc, Name: fields[1], Size: size, ExpectFail: expectFail}, ""

	case KeywordFree:
		if len(fields) != 2 {
			return Op{}, "usage: free <name> | free @<addr>"
		}
		if rest, ok := strings.CutPrefix(fields[1], AddrPrefix); ok {
			addr, err := strconv.ParseUint(rest, 0, 32)
			if err != nil {
				return Op{}, fmt.Sprintf("invalid address %q", rest)
			}
			return Op{Kind: OpFreeAddr, Addr: uint32(addr)}, ""
		}
		if msg := checkName(fields[1]); msg != "" {
			return Op{}, msg
		}
		return Op{Kind: OpFree, Name: fields[1]}, ""

	default:
		return Op{}, fmt.Sprintf("unknown keyword %q", fields[0])
	}
}

func checkName(name string) string {
	if strings.HasPrefix(name, AddrPrefix) {
		return fmt.Sprintf("name %q must not start with %s", name, AddrPrefix)
	}
	return ""
}

// ParseSize parses a byte count: decimal ("4096"), hex ("0x1000") or with
// a binary K or M suffix ("4K", "2m"). The result must fit in 32 bits.
func ParseSize(s string) (uint32, error) {
	orig := s
	mult := uint64(1)
	switch {
	case strings.HasSuffix(s, "K"), strings.HasSuffix(s, "k"):
		mult, s = KiB, s[:len(s)-1]
	case strings.HasSuffix(s, "M"), strings.HasSuffix(s, "m"):
		mult, s = MiB, s[:len(s)-1]
	}

	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", orig)
	}
	total, ok := buf.MulOverflowSafe(n, mult)
	if !ok || total > math.MaxUint32 {
		return 0, fmt.Errorf("size %s exceeds 32 bits", orig)
	}
	return uint32(total), nil
}
