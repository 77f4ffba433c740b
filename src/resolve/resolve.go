// Package resolve implements the type resolver of §4.2: it walks the untyped ir.Node tree produced by
// src/frontend, annotates every node's Type field in place, and enforces the type rules. It is grounded on the
// teacher's checkTypes pass in ir/nodetype.go, generalized from VSL's two numeric types to L's full type
// lattice, and rebuilt atop ir.Scopes instead of the teacher's per-scope symTab map (§9).
package resolve

import (
	"lcc/src/ir"
	"lcc/src/util"
)

// funcSig is the (parameter types, return type) signature recorded in the global function table (§4.2
// "Function declaration": "a function table distinct from the variable table").
type funcSig struct {
	decl   *ir.Node
	params []*ir.Type
	ret    *ir.Type
}

// resolver carries the two scope disciplines named in §4.2/§4.4: one lexical scope stack for variables, and one
// flat, order-independent table for functions (visible "throughout the compilation unit regardless of textual
// order" — the resolved choice for the §4.2 open question, recorded in DESIGN.md).
type resolver struct {
	vars  ir.Scopes[*ir.Type]
	funcs map[string]*funcSig

	fn *funcSig // enclosing function of the statement currently being resolved; nil at top level.
}

// Resolve type-checks prog in place and returns the first diagnostic encountered, or nil on success. Grounded on
// the teacher's two-pass ir/nodetype.go checkTypes (a first pass registers every function signature, a second
// resolves bodies), which is exactly what §4.2's "visible throughout the compilation unit regardless of textual
// order" choice requires.
func Resolve(prog *ir.Node) error {
	r := &resolver{funcs: make(map[string]*funcSig)}

	for _, fn := range prog.Children {
		name := fn.Data.(string)
		if _, exists := r.funcs[name]; exists {
			return util.NewDiagAt(util.NameError, fn.Line, fn.Pos, "function %q declared more than once", name)
		}
		params := make([]*ir.Type, 0, len(fn.Children)-1)
		for _, arg := range fn.Children[:len(fn.Children)-1] {
			t, err := typeExprToType(arg.DeclType)
			if err != nil {
				return err
			}
			arg.Type = t
			params = append(params, t)
		}
		ret, err := typeExprToType(fn.DeclType)
		if err != nil {
			return err
		}
		if fn.DeclType == nil {
			ret = ir.TypeVoid
		}
		r.funcs[name] = &funcSig{decl: fn, params: params, ret: ret}
	}

	for _, fn := range prog.Children {
		if err := r.resolveFunc(fn); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolveFunc(fn *ir.Node) error {
	sig := r.funcs[fn.Data.(string)]
	r.fn = sig

	r.vars.Enter()
	defer r.vars.Exit()

	args := fn.Children[:len(fn.Children)-1]
	body := fn.Children[len(fn.Children)-1]
	for i, arg := range args {
		r.vars.Bind(arg.Data.(string), sig.params[i])
	}
	if _, err := r.resolveBlock(body); err != nil {
		return err
	}
	fn.Type = ir.FuncType(sig.params, sig.ret)
	return nil
}

// resolveBlock implements §4.2 "Block": new scope, resolve each statement in order, the block's type is the
// last statement's (Void for an empty block).
func (r *resolver) resolveBlock(blk *ir.Node) (*ir.Type, error) {
	r.vars.Enter()
	defer r.vars.Exit()

	t := ir.TypeVoid
	for _, stmt := range blk.Children {
		st, err := r.resolveStmt(stmt)
		if err != nil {
			return nil, err
		}
		t = st
	}
	blk.Type = t
	return t, nil
}

func (r *resolver) resolveStmt(n *ir.Node) (*ir.Type, error) {
	switch n.Typ {
	case ir.LET:
		return r.resolveLet(n)
	case ir.ASSIGN:
		return r.resolveAssign(n)
	case ir.INDEX_ASSIGN:
		return r.resolveIndexAssign(n)
	case ir.IF:
		return r.resolveIf(n)
	case ir.WHILE:
		return r.resolveWhile(n)
	case ir.FOR:
		return r.resolveFor(n)
	case ir.RETURN:
		return r.resolveReturn(n)
	case ir.PRINT:
		return r.resolvePrint(n)
	case ir.LEN:
		_, err := r.resolveLen(n)
		return ir.TypeVoid, err
	case ir.BLOCK:
		return r.resolveBlock(n)
	default:
		// A bare expression statement, e.g. a call used only for its side effects.
		t, err := r.resolveExpr(n)
		return t, err
	}
}

// resolveLet implements §4.2 "Let-binding": reassignment if the name already exists in any enclosing scope,
// else a new binding, per the rules stated there.
func (r *resolver) resolveLet(n *ir.Node) (*ir.Type, error) {
	name := n.Data.(string)
	valType, err := r.resolveExpr(n.Children[0])
	if err != nil {
		return nil, err
	}

	if existing, ok := r.vars.Lookup(name); ok {
		if !existing.Equal(valType) {
			return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos,
				"cannot reassign %q of type %s with value of type %s", name, existing, valType)
		}
		n.Typ = ir.ASSIGN
		n.Type = ir.TypeVoid
		return ir.TypeVoid, nil
	}

	bindType := valType
	if n.DeclType != nil {
		declared, err := typeExprToType(n.DeclType)
		if err != nil {
			return nil, err
		}
		if !declared.Equal(valType) {
			return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos,
				"variable %q declared as %s but initialized with %s", name, declared, valType)
		}
		bindType = declared
	}
	r.vars.Bind(name, bindType)
	n.Type = ir.TypeVoid
	return ir.TypeVoid, nil
}

// resolveAssign handles an already-resolved reassignment (a LET rewritten by resolveLet) as well as the ASSIGN
// node the parser produces for a `name = expr;` statement.
func (r *resolver) resolveAssign(n *ir.Node) (*ir.Type, error) {
	name := n.Data.(string)
	existing, ok := r.vars.Lookup(name)
	if !ok {
		return nil, util.NewDiagAt(util.NameError, n.Line, n.Pos, "undefined variable %q", name)
	}
	valType, err := r.resolveExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	if !existing.Equal(valType) {
		return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos,
			"cannot assign value of type %s to %q of type %s", valType, name, existing)
	}
	n.Type = ir.TypeVoid
	return ir.TypeVoid, nil
}

// resolveIndexAssign implements §4.2 "List-element assignment".
func (r *resolver) resolveIndexAssign(n *ir.Node) (*ir.Type, error) {
	name := n.Data.(string)
	listType, ok := r.vars.Lookup(name)
	if !ok {
		return nil, util.NewDiagAt(util.NameError, n.Line, n.Pos, "undefined variable %q", name)
	}
	if listType.Kind != ir.LIST {
		return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos, "cannot index into %q of type %s", name, listType)
	}
	idxType, err := r.resolveExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	if idxType.Kind != ir.I32 {
		return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos, "list index must be i32, got %s", idxType)
	}
	valType, err := r.resolveExpr(n.Children[1])
	if err != nil {
		return nil, err
	}
	if !listType.Elem.Equal(valType) {
		return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos,
			"cannot assign %s into %s", valType, listType)
	}
	n.Type = ir.TypeVoid
	return ir.TypeVoid, nil
}

// resolveIf implements §4.2 "If/While": condition must be Bool, the statement's type is Void.
func (r *resolver) resolveIf(n *ir.Node) (*ir.Type, error) {
	condType, err := r.resolveExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	if condType.Kind != ir.BOOL {
		return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos, "if condition must be bool, got %s", condType)
	}
	if _, err := r.resolveBlock(n.Children[1]); err != nil {
		return nil, err
	}
	if len(n.Children) == 3 {
		elseBranch := n.Children[2]
		if elseBranch.Typ == ir.IF {
			if _, err := r.resolveIf(elseBranch); err != nil {
				return nil, err
			}
		} else if _, err := r.resolveBlock(elseBranch); err != nil {
			return nil, err
		}
	}
	n.Type = ir.TypeVoid
	return ir.TypeVoid, nil
}

func (r *resolver) resolveWhile(n *ir.Node) (*ir.Type, error) {
	condType, err := r.resolveExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	if condType.Kind != ir.BOOL {
		return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos, "while condition must be bool, got %s", condType)
	}
	if _, err := r.resolveBlock(n.Children[1]); err != nil {
		return nil, err
	}
	n.Type = ir.TypeVoid
	return ir.TypeVoid, nil
}

// resolveFor implements §4.2 "For": open a scope, declare the induction variable as i32, resolve the body,
// close the scope.
func (r *resolver) resolveFor(n *ir.Node) (*ir.Type, error) {
	hdr := n.Data.(ir.ForHeader)
	r.vars.Enter()
	defer r.vars.Exit()
	r.vars.Bind(hdr.Var, ir.TypeI32)
	if _, err := r.resolveBlock(n.Children[0]); err != nil {
		return nil, err
	}
	n.Type = ir.TypeVoid
	return ir.TypeVoid, nil
}

// resolveReturn implements §4.2 "Return": resolved here to check the enclosing function's declared return type,
// which §9 marks as a resolved Open Question rather than deferred to lowering.
func (r *resolver) resolveReturn(n *ir.Node) (*ir.Type, error) {
	valType, err := r.resolveExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	if !r.fn.ret.Equal(valType) {
		return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos,
			"function %q declared to return %s but returned %s", r.fn.decl.Data, r.fn.ret, valType)
	}
	n.Type = ir.TypeVoid
	return ir.TypeVoid, nil
}

func (r *resolver) resolvePrint(n *ir.Node) (*ir.Type, error) {
	if _, err := r.resolveExpr(n.Children[0]); err != nil {
		return nil, err
	}
	n.Type = ir.TypeVoid
	return ir.TypeVoid, nil
}

func (r *resolver) resolveLen(n *ir.Node) (*ir.Type, error) {
	argType, err := r.resolveExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	if argType.Kind != ir.LIST {
		return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos, "len() expects a list, got %s", argType)
	}
	n.Type = ir.TypeI32
	return ir.TypeI32, nil
}

// resolveExpr resolves an expression node, sets its Type, and returns that type.
func (r *resolver) resolveExpr(n *ir.Node) (*ir.Type, error) {
	switch n.Typ {
	case ir.INT_LIT:
		lit := n.Data.(ir.IntLit)
		if lit.Wide {
			n.Type = ir.TypeI64
		} else {
			n.Type = ir.TypeI32
		}
	case ir.STRING_LIT:
		n.Type = ir.TypeString
	case ir.BOOL_LIT:
		n.Type = ir.TypeBool
	case ir.IDENT:
		name := n.Data.(string)
		t, ok := r.vars.Lookup(name)
		if !ok {
			return nil, util.NewDiagAt(util.NameError, n.Line, n.Pos, "undefined variable %q", name)
		}
		n.Type = t
	case ir.PAREN:
		t, err := r.resolveExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		n.Type = t
	case ir.LIST_LIT:
		return r.resolveListLit(n)
	case ir.BINARY:
		return r.resolveBinary(n)
	case ir.CALL:
		return r.resolveCall(n)
	case ir.INDEX:
		return r.resolveIndex(n)
	case ir.LEN:
		return r.resolveLen(n)
	default:
		return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos, "%s is not a valid expression", n.Typ)
	}
	return n.Type, nil
}

// resolveListLit implements §4.2 "Literals" for list literals: resolve element 0 to fix T, every subsequent
// element must resolve to T.
func (r *resolver) resolveListLit(n *ir.Node) (*ir.Type, error) {
	elemType, err := r.resolveExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	for _, el := range n.Children[1:] {
		t, err := r.resolveExpr(el)
		if err != nil {
			return nil, err
		}
		if !t.Equal(elemType) {
			return nil, util.NewDiagAt(util.TypeErr, el.Line, el.Pos,
				"list element has type %s, expected %s", t, elemType)
		}
	}
	n.Type = ir.ListOf(elemType)
	return n.Type, nil
}

// resolveBinary implements §4.2 "Binary operator".
func (r *resolver) resolveBinary(n *ir.Node) (*ir.Type, error) {
	lhs, err := r.resolveExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	rhs, err := r.resolveExpr(n.Children[1])
	if err != nil {
		return nil, err
	}
	op := n.Data.(string)

	switch op {
	case "+", "-", "*", "/":
		switch {
		case lhs.Kind == ir.STRING && rhs.Kind == ir.STRING:
			if op != "+" {
				return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos, "operator %q is not defined on strings", op)
			}
			n.Type = ir.TypeString
		case lhs.Kind == ir.LIST && rhs.Kind == ir.LIST:
			if op != "+" || !lhs.Elem.Equal(rhs.Elem) {
				return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos, "cannot apply %q to %s and %s", op, lhs, rhs)
			}
			n.Type = lhs
		case lhs.IsNumeric() && rhs.IsNumeric():
			if lhs.Equal(rhs) {
				n.Type = lhs
			} else {
				// One i32, one i64: result widens to i64 (§4.2); the widening itself is materialized by
				// lowering, not here.
				n.Type = ir.TypeI64
			}
		default:
			return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos, "cannot apply %q to %s and %s", op, lhs, rhs)
		}
	case "==", "!=", "<", "<=", ">", ">=":
		if !lhs.Equal(rhs) || !(lhs.IsNumeric() || lhs.Kind == ir.BOOL || lhs.Kind == ir.STRING) {
			return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos, "cannot compare %s and %s", lhs, rhs)
		}
		n.Type = ir.TypeBool
	default:
		return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos, "unknown operator %q", op)
	}
	return n.Type, nil
}

// resolveCall implements §4.2 "Function call", including the full argument-count/type check at the call site
// (§9 Open Question, resolved: checked here rather than left as a known gap).
func (r *resolver) resolveCall(n *ir.Node) (*ir.Type, error) {
	name := n.Data.(string)
	sig, ok := r.funcs[name]
	if !ok {
		return nil, util.NewDiagAt(util.NameError, n.Line, n.Pos, "call to undeclared function %q", name)
	}
	if len(n.Children) != len(sig.params) {
		return nil, util.NewDiagAt(util.ArityError, n.Line, n.Pos,
			"function %q expects %d argument(s), got %d", name, len(sig.params), len(n.Children))
	}
	for i, arg := range n.Children {
		t, err := r.resolveExpr(arg)
		if err != nil {
			return nil, err
		}
		if !t.Equal(sig.params[i]) {
			return nil, util.NewDiagAt(util.TypeErr, arg.Line, arg.Pos,
				"argument %d of call to %q has type %s, expected %s", i+1, name, t, sig.params[i])
		}
	}
	n.Type = sig.ret
	return sig.ret, nil
}

// resolveIndex implements §4.2 "List index".
func (r *resolver) resolveIndex(n *ir.Node) (*ir.Type, error) {
	listType, err := r.resolveExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	if listType.Kind != ir.LIST {
		return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos, "cannot index into %s", listType)
	}
	idxType, err := r.resolveExpr(n.Children[1])
	if err != nil {
		return nil, err
	}
	if idxType.Kind != ir.I32 {
		return nil, util.NewDiagAt(util.TypeErr, n.Line, n.Pos, "list index must be i32, got %s", idxType)
	}
	n.Type = listType.Elem
	return n.Type, nil
}

// typeExprToType resolves a syntactic ir.TypeExpr (as written by the parser) into a resolved ir.Type. A nil
// TypeExpr means "no annotation" and resolves to nil, letting callers decide the default (inferred for LET,
// Void for a function's return type).
func typeExprToType(te *ir.TypeExpr) (*ir.Type, error) {
	if te == nil {
		return nil, nil
	}
	switch te.Name {
	case "i32":
		return ir.TypeI32, nil
	case "i64":
		return ir.TypeI64, nil
	case "bool":
		return ir.TypeBool, nil
	case "string":
		return ir.TypeString, nil
	case "List":
		elem, err := typeExprToType(te.Elem)
		if err != nil {
			return nil, err
		}
		return ir.ListOf(elem), nil
	default:
		return nil, util.NewDiag(util.TypeErr, "unknown type %q", te.Name)
	}
}
