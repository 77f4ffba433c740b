// Package ir defines the syntax tree shared by the parser, the type resolver and the lowering pass. A single
// Node type carries the program from untyped text all the way to lowering, the same way the teacher's ir.Node
// threads through parsing, optimisation and code generation: each stage mutates the tree in place and hands it
// to the next rather than building a fresh representation per stage.
package ir

import "fmt"

// Kind differentiates the variants of Node.
type Kind int

const (
	PROGRAM Kind = iota
	FUNC_DECL
	ARG
	BLOCK
	LET
	ASSIGN
	INDEX_ASSIGN
	IF
	WHILE
	FOR
	RETURN
	PRINT
	LEN
	CALL
	BINARY
	PAREN
	IDENT
	INT_LIT
	STRING_LIT
	BOOL_LIT
	LIST_LIT
	INDEX
)

var kindNames = [...]string{
	"PROGRAM",
	"FUNC_DECL",
	"ARG",
	"BLOCK",
	"LET",
	"ASSIGN",
	"INDEX_ASSIGN",
	"IF",
	"WHILE",
	"FOR",
	"RETURN",
	"PRINT",
	"LEN",
	"CALL",
	"BINARY",
	"PAREN",
	"IDENT",
	"INT_LIT",
	"STRING_LIT",
	"BOOL_LIT",
	"LIST_LIT",
	"INDEX",
}

// String returns the print-friendly name of k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", k)
	}
	return kindNames[k]
}

// Node is one element of the syntax tree. Its shape depends on Typ:
//
//	PROGRAM       Children: top-level FUNC_DECL nodes.
//	FUNC_DECL     Data: name (string). Children: [ARG...], body BLOCK. DeclType holds the return type.
//	ARG           Data: name (string). DeclType set after parsing.
//	BLOCK         Children: statements, in order.
//	LET           Data: name (string). DeclType may be set. Children: [value]. Resolved to ASSIGN if name exists.
//	ASSIGN        Data: name (string). Children: [value].
//	INDEX_ASSIGN  Data: name (string). Children: [index, value].
//	IF            Children: [cond, thenBlock] or [cond, thenBlock, elseBlock].
//	WHILE         Children: [cond, body].
//	FOR           Data: ForHeader. Children: [body].
//	RETURN        Children: [value] (a bare `return;` is rejected by the parser).
//	PRINT         Children: [value].
//	LEN           Children: [value].
//	CALL          Data: name (string). Children: argument expressions.
//	BINARY        Data: operator (string). Children: [lhs, rhs].
//	PAREN         Children: [inner].
//	IDENT         Data: name (string).
//	INT_LIT       Data: IntLit.
//	STRING_LIT    Data: string (contents as written, escapes kept, quotes stripped by the lexer).
//	BOOL_LIT      Data: bool.
//	LIST_LIT      Children: elements.
//	INDEX         Children: [collection, index].
type Node struct {
	Typ      Kind
	Line     int
	Pos      int
	Data     interface{}
	Children []*Node

	// DeclType is the syntactic type annotation, when present (LET, ARG, FUNC_DECL's return type). Nil means
	// "infer" for LET, and Void for a FUNC_DECL with no declared return type.
	DeclType *TypeExpr

	// Type is the resolved type, filled in by the resolver (src/resolve). Nil before resolution.
	Type *Type
}

// IntLit is the Data payload of an INT_LIT node: the literal's value and the width the parser decided it needs.
type IntLit struct {
	Value int64
	Wide  bool // true if the literal didn't fit in i32 and was parsed as i64.
}

// TypeExpr is the syntactic (unresolved) spelling of a type annotation, as written in source.
type TypeExpr struct {
	Name string    // "i32", "i64", "bool", "string" or "List". An absent annotation is a nil *TypeExpr.
	Elem *TypeExpr // set when Name == "List".
}

// ForHeader carries the fixed-shape induction-variable bookkeeping for FOR nodes (§4.1: start/end are integer
// literals, step is +1 or -1).
type ForHeader struct {
	Var   string
	Start int64
	End   int64
	Step  int64 // +1 or -1.
	Fwd   bool  // true for `<` (ascending), false for `>` (descending).
}

// String returns a print-friendly one-line representation of n, used by the AST dump (-ast) and by error
// messages.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Typ {
	case IDENT, FUNC_DECL, ARG, LET, ASSIGN, INDEX_ASSIGN, CALL:
		return fmt.Sprintf("%s %q", n.Typ, n.Data)
	case BINARY:
		return fmt.Sprintf("%s %q", n.Typ, n.Data)
	case INT_LIT:
		lit := n.Data.(IntLit)
		return fmt.Sprintf("%s %d", n.Typ, lit.Value)
	case STRING_LIT:
		return fmt.Sprintf("%s %q", n.Typ, n.Data)
	case BOOL_LIT:
		return fmt.Sprintf("%s %t", n.Typ, n.Data)
	default:
		return n.Typ.String()
	}
}

// Print recursively prints n and its Children, indenting by depth for every recursive call. Grounded on the
// teacher's ir.Node.Print.
func (n *Node) Print(depth int) {
	if n == nil {
		fmt.Printf("%*c---> NIL\n", depth<<1, ' ')
		return
	}
	fmt.Printf("%*c%s\n", depth<<1, ' ', n.String())
	for _, c := range n.Children {
		c.Print(depth + 1)
	}
}
