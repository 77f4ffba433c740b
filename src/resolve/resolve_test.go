package resolve

import (
	"testing"

	"lcc/src/frontend"
	"lcc/src/ir"
)

func mustResolve(t *testing.T, src string) *ir.Node {
	t.Helper()
	prog, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	if err := Resolve(prog); err != nil {
		t.Fatalf("Resolve(%q): %v", src, err)
	}
	return prog
}

func wantErr(t *testing.T, src string) {
	t.Helper()
	prog, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	if err := Resolve(prog); err == nil {
		t.Fatalf("Resolve(%q): expected an error, got none", src)
	}
}

func TestResolveLiteralTypes(t *testing.T) {
	prog := mustResolve(t, `fn f() -> i32 { return 0; }`)
	body := prog.Children[0].Children[0]
	ret := body.Children[0]
	lit := ret.Children[0]
	if lit.Type.Kind != ir.I32 {
		t.Fatalf("got %s", lit.Type)
	}
}

func TestResolveNewBindingVsReassignment(t *testing.T) {
	prog := mustResolve(t, `fn f() -> i32 {
		let x = 1;
		let x = 2;
		return x;
	}`)
	body := prog.Children[0].Children[0]
	if body.Children[0].Typ != ir.LET {
		t.Fatalf("first let should remain LET, got %s", body.Children[0].Typ)
	}
	if body.Children[1].Typ != ir.ASSIGN {
		t.Fatalf("second let should become ASSIGN (reassignment), got %s", body.Children[1].Typ)
	}
}

func TestResolveReassignmentTypeMismatchIsError(t *testing.T) {
	wantErr(t, `fn f() -> i32 {
		let x = 1;
		let x = true;
		return x;
	}`)
}

func TestResolveUndefinedVariableIsNameError(t *testing.T) {
	wantErr(t, `fn f() -> i32 { return y; }`)
}

func TestResolveWidening(t *testing.T) {
	prog := mustResolve(t, `fn f() -> i64 {
		let a = 1;
		let b = 9223372036854775807;
		return a + b;
	}`)
	body := prog.Children[0].Children[0]
	ret := body.Children[2]
	bin := ret.Children[0]
	if bin.Type.Kind != ir.I64 {
		t.Fatalf("widened sum should be i64, got %s", bin.Type)
	}
}

func TestResolveSameWidthArithmeticStaysI32(t *testing.T) {
	// Same-width i32+i32 stays i32.
	prog := mustResolve(t, `fn f() -> i32 {
		let a = 1;
		let b = 2;
		return a + b;
	}`)
	body := prog.Children[0].Children[0]
	ret := body.Children[2]
	if ret.Children[0].Type.Kind != ir.I32 {
		t.Fatalf("got %s", ret.Children[0].Type)
	}
}

func TestResolveStringConcat(t *testing.T) {
	prog := mustResolve(t, `fn f() -> string {
		let a = "x";
		let b = "y";
		return a + b;
	}`)
	body := prog.Children[0].Children[0]
	if body.Children[2].Children[0].Type.Kind != ir.STRING {
		t.Fatalf("got %s", body.Children[2].Children[0].Type)
	}
}

func TestResolveStringSubtractIsTypeError(t *testing.T) {
	wantErr(t, `fn f() -> string {
		let a = "x";
		let b = "y";
		return a - b;
	}`)
}

func TestResolveComparisonYieldsBool(t *testing.T) {
	prog := mustResolve(t, `fn f() -> bool { return 1 == 2; }`)
	ret := prog.Children[0].Children[0].Children[0]
	if ret.Children[0].Type.Kind != ir.BOOL {
		t.Fatalf("got %s", ret.Children[0].Type)
	}
}

func TestResolveIfConditionMustBeBool(t *testing.T) {
	wantErr(t, `fn f() -> i32 {
		if (1) { return 1; }
		return 0;
	}`)
}

func TestResolveForInductionVariableIsI32(t *testing.T) {
	prog := mustResolve(t, `fn f() -> i32 {
		for (let i = 0; i < 10; i++) {
			print(i);
		}
		return 0;
	}`)
	forNode := prog.Children[0].Children[0].Children[0]
	printStmt := forNode.Children[0].Children[0]
	if printStmt.Children[0].Type.Kind != ir.I32 {
		t.Fatalf("induction variable: got %s", printStmt.Children[0].Type)
	}
}

func TestResolveFunctionCallArity(t *testing.T) {
	wantErr(t, `
	fn g(i32 a) -> i32 { return a; }
	fn f() -> i32 { return g(1, 2); }
	`)
}

func TestResolveFunctionCallArgType(t *testing.T) {
	wantErr(t, `
	fn g(i32 a) -> i32 { return a; }
	fn f() -> i32 { return g(true); }
	`)
}

func TestResolveForwardFunctionReference(t *testing.T) {
	// §4.2 resolved choice: functions are visible throughout the compilation unit regardless of
	// textual order.
	mustResolve(t, `
	fn f() -> i32 { return g(); }
	fn g() -> i32 { return 0; }
	`)
}

func TestResolveListLiteralMixedElementTypesIsError(t *testing.T) {
	wantErr(t, `fn f() -> i32 {
		let xs = [1, true];
		return 0;
	}`)
}

func TestResolveListIndexAndLength(t *testing.T) {
	prog := mustResolve(t, `fn f() -> i32 {
		let xs = [1, 2, 3];
		let n = len(xs);
		return xs[0] + n;
	}`)
	body := prog.Children[0].Children[0]
	lenCall := body.Children[1].Children[0]
	if lenCall.Type.Kind != ir.I32 {
		t.Fatalf("len() should be i32, got %s", lenCall.Type)
	}
}

func TestResolveListElementAssignmentTypeMismatchIsError(t *testing.T) {
	wantErr(t, `fn f() -> i32 {
		let xs = [1, 2, 3];
		xs[0] = true;
		return 0;
	}`)
}

func TestResolveReturnTypeMismatchIsError(t *testing.T) {
	wantErr(t, `fn f() -> i32 { return true; }`)
}

func TestResolveBlockTypeIsLastStatement(t *testing.T) {
	prog := mustResolve(t, `fn f() -> i32 {
		let x = 1;
		return x;
	}`)
	body := prog.Children[0].Children[0]
	if body.Type.Kind != ir.VOID {
		t.Fatalf("a block ending in a RETURN (Void) should itself be Void, got %s", body.Type)
	}
}
