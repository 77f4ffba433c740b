package frontend

import (
	"testing"

	"lcc/src/ir"
)

// roundTripCorpus is a representative sample of §4.1's grammar: every statement and expression production the
// parser understands appears at least once, so TestPrintRoundTrip exercises Print against all of it.
var roundTripCorpus = []string{
	`fn add(i32 a, i32 b) -> i32 { return a + b; }`,

	`fn f() -> i32 {
		let x: i32 = 1;
		let y = 2;
		x = x + y;
		return x;
	}`,

	`fn f() -> i32 {
		if (true) {
			return 1;
		} else if (false) {
			return 2;
		} else {
			return 3;
		}
	}`,

	`fn f() -> i32 {
		let n = 0;
		while (n < 10) {
			n = n + 1;
		}
		return n;
	}`,

	`fn f() -> i32 {
		let total = 0;
		for (let i = 0; i < 10; i++) {
			total = total + i;
		}
		for (let i = 10; i > 0; i--) {
			total = total - i;
		}
		return total;
	}`,

	`fn f(List<i32> xs) -> i32 { return len(xs); }`,

	`fn f() -> i32 {
		let xs = [1, 2, 3];
		xs[0] = 9;
		return xs[0] + xs[1];
	}`,

	`fn f() -> i32 {
		let matrix = [[1, 2], [3, 4]];
		return matrix[0][1];
	}`,

	`fn f() -> i32 {
		return (1 + 2) * 3 - 4 / (5 + 6);
	}`,

	`fn f() -> i32 {
		let x = -5;
		return x + -3;
	}`,

	`fn f() -> string {
		let s = "hello, \"world\"";
		print(s);
		return s;
	}`,

	`fn f() -> bool {
		let a = true;
		let b = false;
		return a == b;
	}`,

	`fn g(i32 a) -> i32 { return a * 2; }
	fn f() -> i32 {
		let n = g(21);
		print(n);
		g(n);
		len([1, 2, 3]);
		return n;
	}`,

	`fn f() -> i32 {
		{
			let x = 1;
			print(x);
		}
		return 0;
	}`,
}

func TestPrintRoundTrip(t *testing.T) {
	for _, src := range roundTripCorpus {
		prog := mustParse(t, src)
		printed := Print(prog)

		reparsed, err := Parse(printed)
		if err != nil {
			t.Fatalf("reparsing printed output failed: %v\nsource:\n%s\nprinted:\n%s", err, src, printed)
		}
		if !equalNodes(prog, reparsed) {
			t.Fatalf("round trip produced a different AST\nsource:\n%s\nprinted:\n%s", src, printed)
		}
	}
}

// equalNodes compares two parsed trees structurally, ignoring Line/Pos (the printer's layout doesn't preserve
// source positions) and Type (unset before resolution).
func equalNodes(a, b *ir.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Typ != b.Typ {
		return false
	}
	if !equalData(a.Typ, a.Data, b.Data) {
		return false
	}
	if !equalTypeExpr(a.DeclType, b.DeclType) {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !equalNodes(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

func equalData(kind ir.Kind, a, b interface{}) bool {
	switch kind {
	case ir.FUNC_DECL, ir.ARG, ir.LET, ir.ASSIGN, ir.INDEX_ASSIGN, ir.CALL, ir.IDENT, ir.BINARY, ir.STRING_LIT:
		return a.(string) == b.(string)
	case ir.INT_LIT:
		return a.(ir.IntLit).Value == b.(ir.IntLit).Value
	case ir.BOOL_LIT:
		return a.(bool) == b.(bool)
	case ir.FOR:
		return a.(ir.ForHeader) == b.(ir.ForHeader)
	default:
		return a == nil && b == nil
	}
}

func equalTypeExpr(a, b *ir.TypeExpr) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name {
		return false
	}
	return equalTypeExpr(a.Elem, b.Elem)
}
