package specfmt

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

// Manager owns one general registry and one per-type registry. Managers are
// fully isolated from each other: registrations on one are never visible
// through another. The zero value is not usable; create managers with [New].
type Manager struct {
	mu      sync.RWMutex
	general map[Spec]Target
	perType map[reflect.Type]map[Spec]Target
	log     *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for registration and resolution events.
// Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// New creates a Manager with empty registries.
func New(opts ...Option) *Manager {
	m := &Manager{
		general: make(map[Spec]Target),
		perType: make(map[reflect.Type]map[Spec]Target),
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RegisterType registers v's named type (v may be an instance, a pointer, or
// a reflect.Type) and merges entries into its per-type slot. Later entries
// for a specifier overwrite earlier ones. The first registration of a type
// anywhere captures its default render; repeat registrations never replace
// it. The manager is attached to the type so [Format] consults it, most
// recently attached first.
func (m *Manager) RegisterType(v any, entries map[Spec]any) error {
	t, err := normalizeType(v)
	if err != nil {
		return err
	}
	norm := make(map[Spec]Target, len(entries))
	for spec, fn := range entries {
		tgt, err := normalizeTarget(fn)
		if err != nil {
			return fmt.Errorf("spec %q: %w", spec, err)
		}
		norm[spec] = tgt
	}
	attach(t, m)

	m.mu.Lock()
	slot := m.perType[t]
	if slot == nil {
		slot = make(map[Spec]Target, len(norm))
		m.perType[t] = slot
	}
	for spec, tgt := range norm {
		slot[spec] = tgt
	}
	m.mu.Unlock()

	m.log.Debug("type registered", "type", t.String(), "entries", len(norm))
	return nil
}

// MustRegisterType panics on registration failure. Useful for init-time
// wiring.
func (m *Manager) MustRegisterType(v any, entries map[Spec]any) {
	if err := m.RegisterType(v, entries); err != nil {
		panic(fmt.Errorf("specfmt: %w", err))
	}
}

// RegisterFunc merges fn into the general registry under each given
// specifier; no specifiers means [DefaultSpec]. Each specifier maps to
// exactly one target, later calls overwriting earlier ones. General
// registration is for free functions: a [Method] marker, or a function whose
// first parameter is a registered type (a method expression), is rejected
// with [ErrMethodTarget]. A bound method value (obj.Format) carries no trace
// of its receiver and passes as a free function.
func (m *Manager) RegisterFunc(fn any, specs ...Spec) error {
	if _, ok := fn.(*Method); ok {
		return fmt.Errorf("%w: use Mark on the declaring type", ErrMethodTarget)
	}
	if rt := reflect.TypeOf(fn); rt != nil && rt.Kind() == reflect.Func &&
		rt.NumIn() >= 1 && rt.In(0).Kind() != reflect.Interface && isBound(rt.In(0)) {
		return fmt.Errorf("%w: %s", ErrMethodTarget, rt)
	}
	tgt, err := normalizeTarget(fn)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		specs = []Spec{DefaultSpec}
	}

	m.mu.Lock()
	for _, spec := range specs {
		m.general[spec] = tgt
	}
	m.mu.Unlock()

	m.log.Debug("function registered", "specs", len(specs))
	return nil
}

// MustRegisterFunc panics on registration failure.
func (m *Manager) MustRegisterFunc(fn any, specs ...Spec) {
	if err := m.RegisterFunc(fn, specs...); err != nil {
		panic(fmt.Errorf("specfmt: %w", err))
	}
}

// Resolve returns the target this manager alone would pick for (obj, spec):
// override-marked method, then per-type entry (nearest ancestor), then
// marked method, then general entry. Returns [ErrUnresolved] when nothing
// answers.
func (m *Manager) Resolve(obj any, spec Spec) (Target, error) {
	mm, marked := lookupMethod(obj, spec)
	if marked && mm.override {
		return mm.call, nil
	}
	if tgt, ok := m.typeTarget(reflect.TypeOf(obj), spec); ok {
		return tgt, nil
	}
	if marked {
		return mm.call, nil
	}
	if tgt, ok := m.generalTarget(spec); ok {
		return tgt, nil
	}
	m.log.Debug("unresolved", "spec", string(spec), "type", fmt.Sprintf("%T", obj))
	return nil, fmt.Errorf("%w: %q for %T", ErrUnresolved, spec, obj)
}

// typeTarget walks obj's ancestry, most specific type first, and returns
// the first exact (level, spec) entry. A specifier found at a more specific
// level always wins over an ancestor's.
func (m *Manager) typeTarget(t reflect.Type, spec Spec) (Target, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, level := range ancestry(t) {
		if slot, ok := m.perType[level]; ok {
			if tgt, ok := slot[spec]; ok {
				return tgt, true
			}
		}
	}
	return nil, false
}

func (m *Manager) generalTarget(spec Spec) (Target, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tgt, ok := m.general[spec]
	return tgt, ok
}
