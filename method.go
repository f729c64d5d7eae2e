package specfmt

import (
	"fmt"
	"slices"
)

// Marked is implemented by types whose methods answer for specifiers
// directly, without a registry entry. FormatMethods is consulted live on
// every render, so a value may build its slice dynamically; when two entries
// answer the same specifier, the later one wins.
type Marked interface {
	FormatMethods() []*Method
}

// Method associates a render callable with the set of specifiers it answers
// for. Build one with [Mark]; it is the declaration-side counterpart of a
// per-type registry entry.
type Method struct {
	call     Target
	specs    map[Spec]struct{}
	override bool
}

// Mark wraps fn with the given specifiers. No specifiers means
// [DefaultSpec]. Marking an existing *Method unions the specifier sets
// rather than replacing them, so markers can be stacked:
//
//	Mark(Mark(u.hex, "x"), "hex")  // answers "x" and "hex"
//
// Mark panics if fn is not callable or has an unsupported signature;
// markers are built at declaration time, where a bad target is a
// programming error.
func Mark(fn any, specs ...Spec) *Method {
	if len(specs) == 0 {
		specs = []Spec{DefaultSpec}
	}
	if m, ok := fn.(*Method); ok {
		for _, s := range specs {
			m.specs[s] = struct{}{}
		}
		return m
	}
	call, err := normalizeTarget(fn)
	if err != nil {
		panic(fmt.Errorf("specfmt: Mark: %w", err))
	}
	m := &Method{call: call, specs: make(map[Spec]struct{}, len(specs))}
	for _, s := range specs {
		m.specs[s] = struct{}{}
	}
	return m
}

// Override makes the method win even over per-type registry entries for its
// specifiers. Without it, per-type entries are consulted first. Returns the
// method for chaining.
func (m *Method) Override() *Method {
	m.override = true
	return m
}

// Specs returns the specifiers the method answers for, sorted.
func (m *Method) Specs() []Spec {
	out := make([]Spec, 0, len(m.specs))
	for s := range m.specs {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Format invokes the wrapped callable bound to obj.
func (m *Method) Format(obj any, spec Spec) (string, error) {
	return m.call(obj, spec)
}

func (m *Method) answers(spec Spec) bool {
	_, ok := m.specs[spec]
	return ok
}

// lookupMethod scans obj's declared format methods for spec. Declaration
// order is the slice order; the last match wins.
func lookupMethod(obj any, spec Spec) (*Method, bool) {
	mk, ok := obj.(Marked)
	if !ok {
		return nil, false
	}
	var hit *Method
	for _, m := range mk.FormatMethods() {
		if m != nil && m.answers(spec) {
			hit = m
		}
	}
	return hit, hit != nil
}
