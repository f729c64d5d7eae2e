package specfmt

import (
	"fmt"
	"reflect"
)

// Format renders obj with spec through the full dispatch chain:
//
//  1. a marked method with the [Method.Override] flag,
//  2. per-type registry entries across the managers attached to obj's type,
//     most recently attached first,
//  3. a marked method without the override flag,
//  4. general registry entries across the same managers, same order,
//  5. the default render captured for obj's type.
//
// When the default render also rejects the specifier, the returned error
// wraps [ErrBadSpec] and, as its cause, [ErrUnresolved].
func Format(obj any, spec Spec) (string, error) {
	mm, marked := lookupMethod(obj, spec)
	if marked && mm.override {
		return mm.call(obj, spec)
	}

	b := bindingOf(reflect.TypeOf(obj))
	var managers []*Manager
	if b != nil {
		managers = b.attached()
	}
	for _, mgr := range managers {
		if tgt, ok := mgr.typeTarget(reflect.TypeOf(obj), spec); ok {
			return tgt(obj, spec)
		}
	}
	if marked {
		return mm.call(obj, spec)
	}
	for _, mgr := range managers {
		if tgt, ok := mgr.generalTarget(spec); ok {
			return tgt(obj, spec)
		}
	}

	fallback := defaultRender
	if b != nil {
		fallback = b.fallback
	}
	out, err := fallback(obj, spec)
	if err != nil {
		return "", fmt.Errorf("%w %q for %T: %v (%w)", ErrBadSpec, spec, obj, err, ErrUnresolved)
	}
	return out, nil
}

// MustFormat is like [Format] but panics on error.
func MustFormat(obj any, spec Spec) string {
	out, err := Format(obj, spec)
	if err != nil {
		panic(fmt.Errorf("specfmt: %w", err))
	}
	return out
}

type binder struct {
	obj  any
	spec Spec
}

// Bind pairs obj with a specifier as a fmt.Stringer, so that Go's own
// string interpolation triggers dispatch:
//
//	fmt.Printf("order: %s\n", specfmt.Bind(order, "receipt"))
//
// Render errors surface in fmt's %! convention rather than panicking.
func Bind(obj any, spec Spec) fmt.Stringer {
	return binder{obj: obj, spec: spec}
}

func (b binder) String() string {
	out, err := Format(b.obj, b.spec)
	if err != nil {
		return fmt.Sprintf("%%!%s(%v)", b.spec, err)
	}
	return out
}
