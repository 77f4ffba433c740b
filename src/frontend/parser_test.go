package frontend

import (
	"testing"

	"lcc/src/ir"
)

func mustParse(t *testing.T, src string) *ir.Node {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return prog
}

func TestParseFuncDeclShape(t *testing.T) {
	prog := mustParse(t, `fn add(i32 a, i32 b) -> i32 { return a + b; }`)
	if len(prog.Children) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Children))
	}
	fn := prog.Children[0]
	if fn.Typ != ir.FUNC_DECL || fn.Data.(string) != "add" {
		t.Fatalf("got %v", fn)
	}
	if len(fn.Children) != 3 { // 2 args + body
		t.Fatalf("expected 3 children (2 args + body), got %d", len(fn.Children))
	}
	if fn.Children[0].Typ != ir.ARG || fn.Children[0].Data.(string) != "a" {
		t.Fatalf("arg 0: got %v", fn.Children[0])
	}
	body := fn.Children[2]
	if body.Typ != ir.BLOCK || len(body.Children) != 1 {
		t.Fatalf("body: got %v", body)
	}
	ret := body.Children[0]
	if ret.Typ != ir.RETURN {
		t.Fatalf("expected RETURN, got %v", ret)
	}
	bin := ret.Children[0]
	if bin.Typ != ir.BINARY || bin.Data.(string) != "+" {
		t.Fatalf("expected BINARY +, got %v", bin)
	}
}

func TestParsePrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3): the outer node is '+'.
	prog := mustParse(t, `fn f() -> i32 { return 1 + 2 * 3; }`)
	ret := prog.Children[0].Children[0].Children[0]
	add := ret.Children[0]
	if add.Data.(string) != "+" {
		t.Fatalf("expected top-level '+', got %v", add.Data)
	}
	mul := add.Children[1]
	if mul.Typ != ir.BINARY || mul.Data.(string) != "*" {
		t.Fatalf("expected nested '*', got %v", mul)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := mustParse(t, `fn f() -> i32 {
		if (true) {
			return 1;
		} else {
			return 2;
		}
	}`)
	stmt := prog.Children[0].Children[0].Children[0]
	if stmt.Typ != ir.IF {
		t.Fatalf("expected IF, got %v", stmt)
	}
	if len(stmt.Children) != 3 {
		t.Fatalf("expected [cond, then, else], got %d children", len(stmt.Children))
	}
}

func TestParseFor(t *testing.T) {
	prog := mustParse(t, `fn f() -> i32 {
		for (let i = 0; i < 10; i++) {
			print(i);
		}
		return 0;
	}`)
	stmt := prog.Children[0].Children[0].Children[0]
	if stmt.Typ != ir.FOR {
		t.Fatalf("expected FOR, got %v", stmt)
	}
	hdr := stmt.Data.(ir.ForHeader)
	if hdr.Var != "i" || hdr.Start != 0 || hdr.End != 10 || hdr.Step != 1 || !hdr.Fwd {
		t.Fatalf("got header %+v", hdr)
	}
}

func TestParseListLiteralAndIndex(t *testing.T) {
	prog := mustParse(t, `fn f() -> i32 {
		let xs = [1, 2, 3];
		return xs[0];
	}`)
	body := prog.Children[0].Children[0]
	let := body.Children[0]
	lit := let.Children[0]
	if lit.Typ != ir.LIST_LIT || len(lit.Children) != 3 {
		t.Fatalf("got %v", lit)
	}
	ret := body.Children[1]
	idx := ret.Children[0]
	if idx.Typ != ir.INDEX {
		t.Fatalf("expected INDEX, got %v", idx)
	}
}

func TestParseListElementAssignment(t *testing.T) {
	prog := mustParse(t, `fn f() -> i32 {
		let xs = [1, 2, 3];
		xs[0] = 9;
		return xs[0];
	}`)
	stmt := prog.Children[0].Children[0].Children[1]
	if stmt.Typ != ir.INDEX_ASSIGN || stmt.Data.(string) != "xs" {
		t.Fatalf("got %v", stmt)
	}
}

func TestParseCallExpression(t *testing.T) {
	prog := mustParse(t, `fn f() -> i32 {
		return g(1, 2);
	}`)
	call := prog.Children[0].Children[0].Children[0].Children[0]
	if call.Typ != ir.CALL || call.Data.(string) != "g" || len(call.Children) != 2 {
		t.Fatalf("got %v", call)
	}
}

func TestParseUnaryMinusLiteral(t *testing.T) {
	prog := mustParse(t, `fn f() -> i32 { return -5; }`)
	ret := prog.Children[0].Children[0].Children[0]
	lit := ret.Children[0]
	if lit.Typ != ir.INT_LIT || lit.Data.(ir.IntLit).Value != -5 {
		t.Fatalf("got %v", lit)
	}
}

func TestParseWideIntegerLiteral(t *testing.T) {
	prog := mustParse(t, `fn f() -> i64 { return 9223372036854775807; }`)
	ret := prog.Children[0].Children[0].Children[0]
	lit := ret.Children[0].Data.(ir.IntLit)
	if !lit.Wide {
		t.Fatalf("expected a wide (i64) literal, got %v", lit)
	}
}

func TestParseOverflowingIntegerLiteralIsSyntaxError(t *testing.T) {
	_, err := Parse(`fn f() -> i64 { return 99999999999999999999; }`)
	if err == nil {
		t.Fatalf("expected an overflow error, got none")
	}
}

func TestParseEmptyListLiteralIsSyntaxError(t *testing.T) {
	_, err := Parse(`fn f() -> i32 { let xs = []; return 0; }`)
	if err == nil {
		t.Fatalf("expected empty list literal to be rejected")
	}
}

func TestParseMissingSemicolonIsSyntaxError(t *testing.T) {
	_, err := Parse(`fn f() -> i32 { return 1 }`)
	if err == nil {
		t.Fatalf("expected a syntax error for missing ';'")
	}
}

func TestParseListType(t *testing.T) {
	prog := mustParse(t, `fn f(List<i32> xs) -> i32 { return len(xs); }`)
	fn := prog.Children[0]
	arg := fn.Children[0]
	if arg.DeclType.Name != "List" || arg.DeclType.Elem.Name != "i32" {
		t.Fatalf("got %+v", arg.DeclType)
	}
}
