package specfmt

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Defaulter lets a type supply its own last-resort rendering, replacing the
// generic default captured at registration time.
type Defaulter interface {
	DefaultFormat(spec Spec) (string, error)
}

// binding is the process-wide registration record for one type: the default
// render captured on first registration and the managers attached to the
// type, most recently attached first. It lives as long as the process, like
// the type itself.
type binding struct {
	typ      reflect.Type
	fallback Target
	managers []*Manager
}

var (
	bindMu   sync.RWMutex
	bindings = make(map[reflect.Type]*binding)
)

// normalizeType resolves v (an instance or a reflect.Type) to the named
// type it registers, unwrapping pointers. Predeclared and unnamed types are
// not registrable.
func normalizeType(v any) (reflect.Type, error) {
	var t reflect.Type
	switch x := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrNotType)
	case reflect.Type:
		t = x
	default:
		t = reflect.TypeOf(v)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: nil", ErrNotType)
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotType, t)
	}
	return t, nil
}

// attach records m against t, creating the binding and capturing the default
// render on first registration. The capture is write-once: later
// registrations, from any manager, never replace it. Re-attaching an
// already-attached manager keeps its position.
func attach(t reflect.Type, m *Manager) *binding {
	bindMu.Lock()
	defer bindMu.Unlock()
	b := bindings[t]
	if b == nil {
		b = &binding{typ: t, fallback: captureDefault(t)}
		bindings[t] = b
	}
	for _, have := range b.managers {
		if have == m {
			return b
		}
	}
	b.managers = append([]*Manager{m}, b.managers...)
	return b
}

// bindingOf returns the binding for t or its nearest registered ancestor,
// so types embedding a registered type inherit its dispatch. Nil if no
// level was ever registered.
func bindingOf(t reflect.Type) *binding {
	if t == nil {
		return nil
	}
	levels := ancestry(t)
	bindMu.RLock()
	defer bindMu.RUnlock()
	for _, level := range levels {
		if b, ok := bindings[level]; ok {
			return b
		}
	}
	return nil
}

// attached returns a snapshot of the managers bound to t, most recently
// attached first.
func (b *binding) attached() []*Manager {
	bindMu.RLock()
	defer bindMu.RUnlock()
	out := make([]*Manager, len(b.managers))
	copy(out, b.managers)
	return out
}

// isBound reports whether t (pointer-unwrapped) has a binding. Used to
// reject general registration of a registered type's methods.
func isBound(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	bindMu.RLock()
	defer bindMu.RUnlock()
	_, ok := bindings[t]
	return ok
}

var defaulterType = reflect.TypeOf((*Defaulter)(nil)).Elem()

// captureDefault snapshots t's current text-conversion entry point: the
// type's own DefaultFormat if it has one, otherwise the generic default.
func captureDefault(t reflect.Type) Target {
	if t.Implements(defaulterType) || reflect.PointerTo(t).Implements(defaulterType) {
		return func(obj any, spec Spec) (string, error) {
			if d, ok := obj.(Defaulter); ok {
				return d.DefaultFormat(spec)
			}
			return defaultRender(obj, spec)
		}
	}
	return defaultRender
}

var errNonEmptySpec = errors.New("default rendering accepts only the empty specifier")

// defaultRender mirrors the native conversion: the empty specifier renders
// the value (honoring fmt.Stringer), anything else is rejected.
func defaultRender(obj any, spec Spec) (string, error) {
	if spec != DefaultSpec {
		return "", fmt.Errorf("%w: %q", errNonEmptySpec, spec)
	}
	return stringify(obj), nil
}

// ancestryCache memoizes per-type ancestry; hierarchies are immutable at
// runtime.
var ancestryCache sync.Map // reflect.Type -> []reflect.Type

// ancestry returns t's lookup chain: the pointer-unwrapped type itself,
// then its anonymous embedded fields breadth-first in declaration order.
// Each type appears once, at its most specific position.
func ancestry(t reflect.Type) []reflect.Type {
	if t == nil {
		return nil
	}
	if v, ok := ancestryCache.Load(t); ok {
		return v.([]reflect.Type)
	}
	var order []reflect.Type
	seen := make(map[reflect.Type]bool)
	queue := []reflect.Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for cur.Kind() == reflect.Pointer {
			cur = cur.Elem()
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		order = append(order, cur)
		if cur.Kind() != reflect.Struct {
			continue
		}
		for i := range cur.NumField() {
			if f := cur.Field(i); f.Anonymous {
				queue = append(queue, f.Type)
			}
		}
	}
	ancestryCache.Store(t, order)
	return order
}
