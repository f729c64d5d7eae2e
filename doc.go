// Package specfmt dispatches text rendering through user-registered targets
// keyed by an opaque format specifier.
//
// A [Spec] is a plain string token. A [Target] renders one value for one
// specifier. Targets live in two registries owned by a [Manager]: a per-type
// registry, scoped to one named type and inherited by types that embed it,
// and a general registry with no type scoping. Types can also answer for
// specifiers directly by declaring marked methods through the [Marked]
// interface. [Format] ties it together: given a value and a specifier it
// picks exactly one target, falling back to the default rendering captured
// when the type was first registered.
//
// # Registration
//
// Register per-type targets with [Manager.RegisterType]; the map merges into
// any earlier registration of the same type:
//
//	m := specfmt.New()
//	m.MustRegisterType(Order{}, map[specfmt.Spec]any{
//		"receipt": renderReceipt,             // func(Order) string
//		"audit":   renderAudit,               // func(Order, specfmt.Spec) string
//	})
//
// Register free functions with [Manager.RegisterFunc]; they apply to any
// value rendered through an attached manager, at the lowest precedence
// before the default:
//
//	m.MustRegisterFunc(specfmt.JSON, "json")
//
// A package-level manager backs [RegisterType], [RegisterFunc], and
// [Resolve] for applications that don't need isolation. Managers created
// with [New] never share registrations.
//
// # Target shapes
//
// A target may declare zero arguments, the value alone, or the value and the
// specifier; results are string or (string, error). The shape is fixed once
// at registration, and typed parameters work:
//
//	func() string
//	func(o Order) string
//	func(o Order, spec specfmt.Spec) (string, error)
//
// # Marked methods
//
// A type declares specifier-answering methods by implementing [Marked].
// [Mark] attaches the specifier set; no arguments means the default (empty)
// specifier, and stacking unions the sets. The last entry claiming a
// specifier wins:
//
//	func (o Order) FormatMethods() []*specfmt.Method {
//		return []*specfmt.Method{
//			specfmt.Mark(o.receipt, "receipt"),
//			specfmt.Mark(specfmt.Mark(o.hex, "x"), "hex"),
//		}
//	}
//
// Marked methods normally rank between the per-type and general registries;
// [Method.Override] promotes one above per-type entries for its specifiers.
//
// # Dispatch and fallback
//
// [Format] resolves in fixed precedence order: override-marked method,
// per-type entry (nearest ancestor by embedding), marked method, general
// entry, captured default. The default renders the empty specifier via
// [fmt.Stringer] and rejects everything else; implement [Defaulter] to
// replace it. When the default also rejects, the error wraps [ErrBadSpec]
// with [ErrUnresolved] as its cause. [Bind] hooks dispatch into fmt's own
// interpolation:
//
//	fmt.Printf("order: %s\n", specfmt.Bind(order, "receipt"))
//
// # Errors
//
// The package exports sentinel errors for programmatic handling:
//
//   - [ErrNotCallable], [ErrBadSignature] — bad registration target
//   - [ErrNotType] — registering an unnamed or predeclared type
//   - [ErrMethodTarget] — general registration of a registered type's method
//   - [ErrUnresolved] — nothing answers the specifier (from [Manager.Resolve])
//   - [ErrBadSpec] — render-time failure after fallback
package specfmt
