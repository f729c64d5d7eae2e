package specfmt

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct{ id string }

type token string

type gadget struct{ widget }

type gizmo struct {
	gadget
	widget // repeat embed; ancestry keeps the first, most specific position
}

// keeper implements Defaulter, so each capture would build a fresh closure;
// pointer identity across registrations proves the capture is write-once.
type keeper struct{ widget }

func (keeper) DefaultFormat(Spec) (string, error) { return "kept", nil }

func TestNormalizeTargetShapes(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		fn   any
		want string
	}{
		"zero-arg":         {fn: func() string { return "z" }, want: "z"},
		"zero-arg err":     {fn: func() (string, error) { return "ze", nil }, want: "ze"},
		"obj only":         {fn: func(obj any) string { return "o" }, want: "o"},
		"obj only err":     {fn: func(obj any) (string, error) { return "oe", nil }, want: "oe"},
		"obj and spec":     {fn: func(_ any, spec Spec) string { return "s:" + string(spec) }, want: "s:x"},
		"obj and str spec": {fn: func(_ any, spec string) string { return "t:" + spec }, want: "t:x"},
		"typed obj":        {fn: func(w widget) string { return "w:" + w.id }, want: "w:7"},
		"typed obj + spec": {fn: func(w widget, spec Spec) string { return w.id + ":" + string(spec) }, want: "7:x"},
		"typed with error": {fn: func(w widget) (string, error) { return "we:" + w.id, nil }, want: "we:7"},
		"canonical":        {fn: Target(func(any, Spec) (string, error) { return "c", nil }), want: "c"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tgt, err := normalizeTarget(tc.fn)
			require.NoError(t, err)
			out, err := tgt(widget{id: "7"}, "x")
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestTypedTargetRejectsForeignValue(t *testing.T) {
	t.Parallel()

	tgt, err := normalizeTarget(func(w *widget) string { return "p:" + w.id })
	require.NoError(t, err)
	// A widget value is not assignable to *widget.
	_, err = tgt(widget{id: "7"}, "x")
	assert.ErrorIs(t, err, ErrBadTarget)

	// Typed parameters refuse nil values outright.
	_, err = tgt(nil, "x")
	assert.ErrorIs(t, err, ErrBadTarget)
}

func TestNormalizeTargetRejects(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		fn      any
		wantErr error
	}{
		"not a func":    {fn: "nope", wantErr: ErrNotCallable},
		"nil":           {fn: nil, wantErr: ErrNotCallable},
		"three args":    {fn: func(a, b, c int) string { return "" }, wantErr: ErrBadSignature},
		"variadic":      {fn: func(...any) string { return "" }, wantErr: ErrBadSignature},
		"no results":    {fn: func() {}, wantErr: ErrBadSignature},
		"wrong result":  {fn: func() int { return 0 }, wantErr: ErrBadSignature},
		"wrong second":  {fn: func() (string, int) { return "", 0 }, wantErr: ErrBadSignature},
		"non-str spec":  {fn: func(_ any, n int) string { return "" }, wantErr: ErrBadSignature},
		"three results": {fn: func() (string, error, error) { return "", nil, nil }, wantErr: ErrBadSignature},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := normalizeTarget(tc.fn)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestNormalizeTargetErrorPropagation(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tgt, err := normalizeTarget(func(any) (string, error) { return "", boom })
	require.NoError(t, err)
	_, err = tgt(nil, DefaultSpec)
	assert.ErrorIs(t, err, boom)

	// Reflect path with an error result.
	tgt, err = normalizeTarget(func(w widget) (string, error) { return "", boom })
	require.NoError(t, err)
	_, err = tgt(widget{}, DefaultSpec)
	assert.ErrorIs(t, err, boom)
}

func TestNormalizeType(t *testing.T) {
	t.Parallel()

	tt, err := normalizeType(widget{})
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(widget{}), tt)

	tt, err = normalizeType(&widget{})
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(widget{}), tt)

	tt, err = normalizeType(reflect.TypeOf(widget{}))
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(widget{}), tt)

	// Any named, package-level type qualifies, not just structs.
	tt, err = normalizeType(token("t"))
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(token("")), tt)

	_, err = normalizeType(nil)
	assert.ErrorIs(t, err, ErrNotType)
	_, err = normalizeType(3.14)
	assert.ErrorIs(t, err, ErrNotType)
	_, err = normalizeType(struct{ X int }{})
	assert.ErrorIs(t, err, ErrNotType)
}

func TestAncestryOrder(t *testing.T) {
	t.Parallel()

	got := ancestry(reflect.TypeOf(gizmo{}))
	want := []reflect.Type{
		reflect.TypeOf(gizmo{}),
		reflect.TypeOf(gadget{}),
		reflect.TypeOf(widget{}),
	}
	assert.Equal(t, want, got)

	// Pointers unwrap to the same chain.
	assert.Equal(t, want, ancestry(reflect.TypeOf(&gizmo{})))
}

func TestDefaultCaptureIsIdempotent(t *testing.T) {
	t.Parallel()

	m1 := New()
	require.NoError(t, m1.RegisterType(keeper{}, nil))
	b := bindingOf(reflect.TypeOf(keeper{}))
	require.NotNil(t, b)
	first := reflect.ValueOf(b.fallback).Pointer()

	m2 := New()
	require.NoError(t, m2.RegisterType(keeper{}, nil))
	require.NoError(t, m1.RegisterType(keeper{}, map[Spec]any{"s": func() string { return "s" }}))

	assert.Equal(t, first, reflect.ValueOf(b.fallback).Pointer())

	// m2 attached later, so it is consulted first; m1 re-registration keeps order.
	got := b.attached()
	require.Len(t, got, 2)
	assert.Same(t, m2, got[0])
	assert.Same(t, m1, got[1])
}

func TestDefaultRenderRejectsNonEmptySpec(t *testing.T) {
	t.Parallel()

	out, err := defaultRender(widget{id: "w"}, DefaultSpec)
	require.NoError(t, err)
	assert.Equal(t, "{w}", out)

	_, err = defaultRender(widget{}, "x")
	assert.ErrorIs(t, err, errNonEmptySpec)
}
