package specfmt

import "errors"

// Sentinel errors for programmatic error handling.
var (
	// ErrNotCallable reports a registration target that is not a function.
	ErrNotCallable = errors.New("target is not callable")
	// ErrBadSignature reports a function outside the supported target shapes.
	ErrBadSignature = errors.New("unsupported target signature")
	// ErrNotType reports a registration subject that is not a named,
	// package-level type.
	ErrNotType = errors.New("not a registrable type")
	// ErrMethodTarget reports a general registration of a registered type's
	// method. Methods are declared with [Mark], not [Manager.RegisterFunc].
	ErrMethodTarget = errors.New("method used as general target")
	// ErrUnresolved reports that no registry or marked method answers a
	// specifier. [Format] never returns it alone; it surfaces only wrapped
	// inside an [ErrBadSpec] error or from [Manager.Resolve].
	ErrUnresolved = errors.New("no target for specifier")
	// ErrBadSpec reports a render-time failure: neither custom dispatch nor
	// the captured default could satisfy the specifier.
	ErrBadSpec = errors.New("invalid format specifier")
	// ErrBadTarget reports a value that a typed target cannot accept.
	ErrBadTarget = errors.New("target cannot render value")
)

// Spec selects which target handles a rendering request. Specs are opaque
// and compared by exact equality; no prefix or wildcard matching.
type Spec string

// DefaultSpec is the specifier used when the caller supplies none.
const DefaultSpec Spec = ""

// Target is the canonical render callable. Registration accepts several
// function shapes (see [Manager.RegisterFunc]) and normalizes all of them
// to this signature.
type Target func(obj any, spec Spec) (string, error)

// std is the package-level manager used by the top-level registration
// functions. Independent managers created with [New] never share its state.
var std = New()

// Default returns the package-level manager.
func Default() *Manager { return std }

// RegisterType registers v's type and its entries on the default manager.
func RegisterType(v any, entries map[Spec]any) error {
	return std.RegisterType(v, entries)
}

// MustRegisterType panics on registration failure. Useful for init-time wiring.
func MustRegisterType(v any, entries map[Spec]any) {
	std.MustRegisterType(v, entries)
}

// RegisterFunc registers a free function on the default manager.
func RegisterFunc(fn any, specs ...Spec) error {
	return std.RegisterFunc(fn, specs...)
}

// MustRegisterFunc panics on registration failure.
func MustRegisterFunc(fn any, specs ...Spec) {
	std.MustRegisterFunc(fn, specs...)
}

// Resolve returns the target the default manager would use for (obj, spec).
func Resolve(obj any, spec Spec) (Target, error) {
	return std.Resolve(obj, spec)
}
