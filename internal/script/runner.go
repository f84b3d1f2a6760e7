package script

import (
	"fmt"
)

// Heap is the allocator surface a script drives.
type Heap interface {
	Allocate(size uint32) (uint32, error)
	Release(addr uint32) error
}

// Result is the outcome of one executed op.
type Result struct {
	Op   Op     `json:"op"`
	Addr uint32 `json:"addr,omitempty"`
	Err  error  `json:"-"`

	// Pass is true when the outcome matches the script: success for plain
	// steps, an allocation error for expect-fail steps.
	Pass bool `json:"pass"`
}

// Runner executes ops against a heap and tracks named allocations.
type Runner struct {
	heap  Heap
	names map[string]uint32

	// Check, when set, runs after every step. A non-nil error stops the run.
	Check func() error
}

// NewRunner returns a runner with no named allocations.
func NewRunner(h Heap) *Runner {
	return &Runner{heap: h, names: make(map[string]uint32)}
}

// Run executes ops in order. Step failures are recorded in the results and
// do not stop the run; only a Check failure does, and is returned.
func (r *Runner) Run(ops []Op) ([]Result, error) {
	results := make([]Result, 0, len(ops))
	for _, op := range ops {
		res := r.Step(op)
		results = append(results, res)
		if r.Check == nil {
			continue
		}
		if err := r.Check(); err != nil {
			return results, fmt.Errorf("script: line %d (%s): %w", op.Line, op, err)
		}
	}
	return results, nil
}

// Step executes a single op.
func (r *Runner) Step(op Op) Result {
	res := Result{Op: op}
	switch op.Kind {
	case OpAlloc:
		if addr, ok := r.names[op.Name]; ok {
			res.Err = fmt.Errorf("%w: %s at 0x%08X", ErrNameInUse, op.Name, addr)
			break
		}
		addr, err := r.heap.Allocate(op.Size)
		if err != nil {
			res.Err = err
			res.Pass = op.ExpectFail
			break
		}
		r.names[op.Name] = addr
		res.Addr = addr
		if op.ExpectFail {
			res.Err = fmt.Errorf("%w: %s at 0x%08X", ErrUnexpectedSuccess, op.Name, addr)
			break
		}
		res.Pass = true

	case OpFree:
		addr, ok := r.names[op.Name]
		if !ok {
			res.Err = fmt.Errorf("%w: %s", ErrUnknownName, op.Name)
			break
		}
		res.Addr = addr
		if res.Err = r.heap.Release(addr); res.Err == nil {
			delete(r.names, op.Name)
			res.Pass = true
		}

	case OpFreeAddr:
		res.Addr = op.Addr
		if res.Err = r.heap.Release(op.Addr); res.Err == nil {
			r.forget(op.Addr)
			res.Pass = true
		}

	default:
		res.Err = fmt.Errorf("script: unknown op %s", op.Kind)
	}
	return res
}

// Names returns a copy of the live name bindings.
func (r *Runner) Names() map[string]uint32 {
	out := make(map[string]uint32, len(r.names))
	for k, v := range r.names {
		out[k] = v
	}
	return out
}

func (r *Runner) forget(addr uint32) {
	for name, a := range r.names {
		if a == addr {
			delete(r.names, name)
		}
	}
}

// Failed returns the results whose outcome did not match the script.
func Failed(results []Result) []Result {
	var out []Result
	for _, res := range results {
		if !res.Pass {
			out = append(out, res)
		}
	}
	return out
}
