package ir

import "fmt"

// TypeKind enumerates the closed set of resolved types (§3 Data Model).
type TypeKind int

const (
	I32 TypeKind = iota
	I64
	BOOL
	STRING
	LIST
	FUNCTION
	VOID
)

// Type is the resolved-type tagged union. Equality is structural: use Equal, not ==, since List and Function
// carry pointers/slices.
type Type struct {
	Kind TypeKind

	Elem *Type // set when Kind == LIST: the element type.

	Params []*Type // set when Kind == FUNCTION.
	Ret    *Type   // set when Kind == FUNCTION.
}

var (
	TypeI32    = &Type{Kind: I32}
	TypeI64    = &Type{Kind: I64}
	TypeBool   = &Type{Kind: BOOL}
	TypeString = &Type{Kind: STRING}
	TypeVoid   = &Type{Kind: VOID}
)

// ListOf returns the resolved type List<elem>.
func ListOf(elem *Type) *Type {
	return &Type{Kind: LIST, Elem: elem}
}

// FuncType returns the resolved type Function(params) -> ret.
func FuncType(params []*Type, ret *Type) *Type {
	return &Type{Kind: FUNCTION, Params: params, Ret: ret}
}

// Equal reports whether t and other describe the same resolved type.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case LIST:
		return t.Elem.Equal(other.Elem)
	case FUNCTION:
		if len(t.Params) != len(other.Params) || !t.Ret.Equal(other.Ret) {
			return false
		}
		for i, p := range t.Params {
			if !p.Equal(other.Params[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// IsNumeric reports whether t is i32 or i64.
func (t *Type) IsNumeric() bool {
	return t != nil && (t.Kind == I32 || t.Kind == I64)
}

// IsPrimitive reports whether t is passed by value (as opposed to strings/lists, which are pointer-shaped; see
// §4.3 "Representation choice").
func (t *Type) IsPrimitive() bool {
	return t != nil && (t.Kind == I32 || t.Kind == I64 || t.Kind == BOOL)
}

// String returns a surface-syntax rendering of t, used in diagnostics.
func (t *Type) String() string {
	if t == nil {
		return "<untyped>"
	}
	switch t.Kind {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case BOOL:
		return "bool"
	case STRING:
		return "string"
	case VOID:
		return "void"
	case LIST:
		return fmt.Sprintf("List<%s>", t.Elem)
	case FUNCTION:
		return fmt.Sprintf("fn(%v) -> %s", t.Params, t.Ret)
	default:
		return "<unknown type>"
	}
}
