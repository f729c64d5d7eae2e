package specfmt

import (
	"fmt"
	"reflect"
)

// normalizeTarget adapts fn to the canonical [Target] signature. The shape
// is chosen once here, at registration time; invocation never re-inspects
// the function.
func normalizeTarget(fn any) (Target, error) {
	switch f := fn.(type) {
	case Target:
		return f, nil
	case func(any, Spec) (string, error):
		return f, nil
	case func(any, Spec) string:
		return func(obj any, spec Spec) (string, error) { return f(obj, spec), nil }, nil
	case func(any, string) (string, error):
		return func(obj any, spec Spec) (string, error) { return f(obj, string(spec)) }, nil
	case func(any, string) string:
		return func(obj any, spec Spec) (string, error) { return f(obj, string(spec)), nil }, nil
	case func(any) (string, error):
		return func(obj any, _ Spec) (string, error) { return f(obj) }, nil
	case func(any) string:
		return func(obj any, _ Spec) (string, error) { return f(obj), nil }, nil
	case func() (string, error):
		return func(any, Spec) (string, error) { return f() }, nil
	case func() string:
		return func(any, Spec) (string, error) { return f(), nil }, nil
	}
	return reflectTarget(fn)
}

var (
	stringType = reflect.TypeOf("")
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

// reflectTarget handles targets with typed parameters, e.g. func(User) string
// or a method expression func(User, Spec) string. The adapter closure is
// built once; only the argument packing runs per call.
func reflectTarget(fn any) (Target, error) {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %T", ErrNotCallable, fn)
	}
	rt := rv.Type()
	if rt.IsVariadic() || rt.NumIn() > 2 {
		return nil, fmt.Errorf("%w: %s takes too many arguments", ErrBadSignature, rt)
	}
	switch rt.NumOut() {
	case 1:
		if rt.Out(0) != stringType {
			return nil, fmt.Errorf("%w: %s must return string", ErrBadSignature, rt)
		}
	case 2:
		if rt.Out(0) != stringType || rt.Out(1) != errorType {
			return nil, fmt.Errorf("%w: %s must return (string, error)", ErrBadSignature, rt)
		}
	default:
		return nil, fmt.Errorf("%w: %s must return string", ErrBadSignature, rt)
	}
	if rt.NumIn() == 2 && rt.In(1).Kind() != reflect.String {
		return nil, fmt.Errorf("%w: %s second argument must be a specifier", ErrBadSignature, rt)
	}

	numIn := rt.NumIn()
	numOut := rt.NumOut()
	return func(obj any, spec Spec) (string, error) {
		args := make([]reflect.Value, 0, 2)
		if numIn >= 1 {
			ov := reflect.ValueOf(obj)
			switch {
			case !ov.IsValid():
				// Typed nil argument: only interface parameters accept it.
				if rt.In(0).Kind() != reflect.Interface {
					return "", fmt.Errorf("%w: nil value for %s", ErrBadTarget, rt.In(0))
				}
				ov = reflect.Zero(rt.In(0))
			case !ov.Type().AssignableTo(rt.In(0)):
				return "", fmt.Errorf("%w: %T is not assignable to %s", ErrBadTarget, obj, rt.In(0))
			}
			args = append(args, ov)
		}
		if numIn == 2 {
			args = append(args, reflect.ValueOf(spec).Convert(rt.In(1)))
		}
		out := rv.Call(args)
		if numOut == 2 && !out[1].IsNil() {
			return "", out[1].Interface().(error)
		}
		return out[0].String(), nil
	}, nil
}
