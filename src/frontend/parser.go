// parser.go implements the recursive-descent, PEG-style grammar of §4.1. Unlike the teacher, which drives a
// goyacc-generated LALR parser over tokens handed to it by this same lexer, this core hand-writes the descent:
// §4.1 specifies the grammar normatively as a PEG (ordered choice, no ambiguity to resolve with a table), which
// is exactly what a recursive-descent parser expresses directly, and goyacc's generated table has no home in
// the workspace without a .y grammar file to drive it.
package frontend

import (
	"fmt"
	"strconv"

	"lcc/src/ir"
	"lcc/src/util"
)

// parser consumes the item stream produced by a lexer and builds an ir.Node tree.
type parser struct {
	l       *lexer
	tok     item // current lookahead token.
	prevEnd int  // unused placeholder kept for line/pos bookkeeping symmetry with the teacher's tree.go.
}

// Parse lexes and parses src into a PROGRAM ir.Node. This is the core's single entry point into stage 1 of the
// pipeline (§2 System Overview).
func Parse(src string) (prog *ir.Node, err error) {
	l := newLexer(src, lexGlobal)
	go l.run()

	// advance panics with a SyntaxError on a lexer error token; turn that into an ordinary error return.
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				panic(r)
			}
			prog, err = nil, e
		}
	}()

	p := &parser{l: l}
	p.advance()

	prog = &ir.Node{Typ: ir.PROGRAM}
	for p.tok.typ != itemEOF {
		fn, err := p.parseFuncDecl()
		if err != nil {
			return nil, err
		}
		prog.Children = append(prog.Children, fn)
	}
	return prog, nil
}

// TokenStream lexes src and returns its token list without parsing, for the -tokens diagnostic mode.
func TokenStream(src string) ([]string, error) {
	l := newLexer(src, lexGlobal)
	go l.run()
	var out []string
	for {
		t := l.nextItem()
		if t.typ == itemEOF {
			return out, nil
		}
		if t.typ == itemError {
			return out, fmt.Errorf("%s", t.val)
		}
		out = append(out, fmt.Sprintf("%-20s %s", t.typ, t))
	}
}

// advance consumes the current lookahead and fetches the next token.
func (p *parser) advance() {
	p.tok = p.l.nextItem()
	if p.tok.typ == itemError {
		panic(p.syntaxErr(p.tok.val))
	}
}

// syntaxErr builds a SyntaxError diagnostic anchored at the current token.
func (p *parser) syntaxErr(format string, args ...interface{}) error {
	return util.NewDiagAt(util.SyntaxError, p.tok.line, p.tok.pos, format, args...)
}

// expect consumes the current token if it has type typ and returns it, or returns a SyntaxError naming what was
// expected. Parse methods propagate such errors explicitly. advance() instead panics on a lexer error, since that
// can happen arbitrarily deep in an expression; the panic path only triggers on malformed input from the lexer
// itself (unterminated string), and the recover at the top of Parse turns it into Parse's error return.
func (p *parser) expect(typ itemType, what string) (item, error) {
	if p.tok.typ != typ {
		return item{}, p.syntaxErr("expected %s, got %s %q", what, p.tok.typ, p.tok.val)
	}
	t := p.tok
	p.advance()
	return t, nil
}

// --- Types ---

// parseType parses a type annotation: i32, i64, bool, string, or List<T>.
func (p *parser) parseType() (*ir.TypeExpr, error) {
	switch p.tok.typ {
	case TYPE_I32:
		p.advance()
		return &ir.TypeExpr{Name: "i32"}, nil
	case TYPE_I64:
		p.advance()
		return &ir.TypeExpr{Name: "i64"}, nil
	case TYPE_BOOL:
		p.advance()
		return &ir.TypeExpr{Name: "bool"}, nil
	case TYPE_STRING:
		p.advance()
		return &ir.TypeExpr{Name: "string"}, nil
	case TYPE_LIST:
		p.advance()
		if _, err := p.expect(itemType('<'), "'<'"); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(itemType('>'), "'>'"); err != nil {
			return nil, err
		}
		return &ir.TypeExpr{Name: "List", Elem: elem}, nil
	default:
		return nil, p.syntaxErr("expected a type, got %s %q", p.tok.typ, p.tok.val)
	}
}

// --- Top level ---

// parseFuncDecl parses `fn name(T1 a1, T2 a2, ...) [-> T] block`.
func (p *parser) parseFuncDecl() (*ir.Node, error) {
	if _, err := p.expect(FN, "'fn'"); err != nil {
		return nil, err
	}
	line, pos := p.tok.line, p.tok.pos
	name, err := p.expect(IDENTIFIER, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemType('('), "'('"); err != nil {
		return nil, err
	}

	var args []*ir.Node
	for p.tok.typ != itemType(')') {
		if len(args) > 0 {
			if _, err := p.expect(itemType(','), "','"); err != nil {
				return nil, err
			}
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		argName, err := p.expect(IDENTIFIER, "parameter name")
		if err != nil {
			return nil, err
		}
		args = append(args, &ir.Node{Typ: ir.ARG, Line: argName.line, Pos: argName.pos, Data: argName.val, DeclType: typ})
	}
	if _, err := p.expect(itemType(')'), "')'"); err != nil {
		return nil, err
	}

	var ret *ir.TypeExpr
	if p.tok.typ == ARROW {
		p.advance()
		ret, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ir.Node{
		Typ:      ir.FUNC_DECL,
		Line:     line,
		Pos:      pos,
		Data:     name.val,
		DeclType: ret,
		Children: append(args, body),
	}, nil
}

// parseBlock parses `{ stmt* }`.
func (p *parser) parseBlock() (*ir.Node, error) {
	open, err := p.expect(itemType('{'), "'{'")
	if err != nil {
		return nil, err
	}
	blk := &ir.Node{Typ: ir.BLOCK, Line: open.line, Pos: open.pos}
	for p.tok.typ != itemType('}') {
		if p.tok.typ == itemEOF {
			return nil, p.syntaxErr("unexpected end of file, expected '}'")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		blk.Children = append(blk.Children, stmt)
	}
	p.advance()
	return blk, nil
}

// parseStatement dispatches on the lookahead to the right statement-level production.
func (p *parser) parseStatement() (*ir.Node, error) {
	switch p.tok.typ {
	case LET:
		return p.parseLet()
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case FOR:
		return p.parseFor()
	case RETURN:
		return p.parseReturn()
	case PRINT:
		return p.parsePrint()
	case LEN:
		// len(...) used as a bare statement, e.g. `len(xs);` for its (discarded) value; the expression form
		// lives in parsePrimary since len is also valid mid-expression, e.g. `let n = len(xs);`.
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(itemType(';'), "';'"); err != nil {
			return nil, err
		}
		return val, nil
	case itemType('{'):
		blk, err := p.parseBlock()
		return blk, err
	case IDENTIFIER:
		return p.parseIdentStatement()
	default:
		return nil, p.syntaxErr("unexpected token %s %q at start of statement", p.tok.typ, p.tok.val)
	}
}

// parseLet parses `let name [: type] = expr;`.
func (p *parser) parseLet() (*ir.Node, error) {
	kw, _ := p.expect(LET, "'let'")
	name, err := p.expect(IDENTIFIER, "variable name")
	if err != nil {
		return nil, err
	}
	var declType *ir.TypeExpr
	if p.tok.typ == itemType(':') {
		p.advance()
		declType, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(ASSIGN, "'='"); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemType(';'), "';'"); err != nil {
		return nil, err
	}
	return &ir.Node{Typ: ir.LET, Line: kw.line, Pos: kw.pos, Data: name.val, DeclType: declType, Children: []*ir.Node{val}}, nil
}

// parseIdentStatement disambiguates `name = expr;`, `name[idx] = expr;` and a bare call-expression statement,
// all of which start with an identifier.
func (p *parser) parseIdentStatement() (*ir.Node, error) {
	name := p.tok
	p.advance()

	if p.tok.typ == itemType('[') {
		p.advance()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(itemType(']'), "']'"); err != nil {
			return nil, err
		}
		if _, err := p.expect(ASSIGN, "'='"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(itemType(';'), "';'"); err != nil {
			return nil, err
		}
		return &ir.Node{Typ: ir.INDEX_ASSIGN, Line: name.line, Pos: name.pos, Data: name.val, Children: []*ir.Node{idx, val}}, nil
	}

	if p.tok.typ == ASSIGN {
		p.advance()
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(itemType(';'), "';'"); err != nil {
			return nil, err
		}
		return &ir.Node{Typ: ir.ASSIGN, Line: name.line, Pos: name.pos, Data: name.val, Children: []*ir.Node{val}}, nil
	}

	// Bare call expression statement, e.g. `fact(4);` used only for its side effects.
	expr, err := p.parseCallTail(name)
	if err != nil {
		return nil, err
	}
	expr, err = p.parsePostfix(expr)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemType(';'), "';'"); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseIf parses `if (cond) block [else block]`.
func (p *parser) parseIf() (*ir.Node, error) {
	kw, _ := p.expect(IF, "'if'")
	if _, err := p.expect(itemType('('), "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemType(')'), "')'"); err != nil {
		return nil, err
	}
	thenBlk, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	n := &ir.Node{Typ: ir.IF, Line: kw.line, Pos: kw.pos, Children: []*ir.Node{cond, thenBlk}}
	if p.tok.typ == ELSE {
		p.advance()
		var elseBlk *ir.Node
		if p.tok.typ == IF {
			elseBlk, err = p.parseIf()
		} else {
			elseBlk, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, elseBlk)
	}
	return n, nil
}

// parseWhile parses `while (cond) block`.
func (p *parser) parseWhile() (*ir.Node, error) {
	kw, _ := p.expect(WHILE, "'while'")
	if _, err := p.expect(itemType('('), "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemType(')'), "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ir.Node{Typ: ir.WHILE, Line: kw.line, Pos: kw.pos, Children: []*ir.Node{cond, body}}, nil
}

// parseFor parses `for (let name = S; name <op> E; name++|name--) block`.
func (p *parser) parseFor() (*ir.Node, error) {
	kw, _ := p.expect(FOR, "'for'")
	if _, err := p.expect(itemType('('), "'('"); err != nil {
		return nil, err
	}
	if _, err := p.expect(LET, "'let'"); err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER, "induction variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ASSIGN, "'='"); err != nil {
		return nil, err
	}
	start, err := p.expect(INTEGER, "integer literal")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemType(';'), "';'"); err != nil {
		return nil, err
	}

	if _, err := p.expect(IDENTIFIER, "induction variable name"); err != nil {
		return nil, err
	}
	var fwd bool
	switch p.tok.typ {
	case itemType('<'):
		fwd = true
	case itemType('>'):
		fwd = false
	default:
		return nil, p.syntaxErr("expected '<' or '>' in for-loop condition, got %s", p.tok.typ)
	}
	p.advance()
	end, err := p.expect(INTEGER, "integer literal")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemType(';'), "';'"); err != nil {
		return nil, err
	}

	if _, err := p.expect(IDENTIFIER, "induction variable name"); err != nil {
		return nil, err
	}
	var step int64
	switch p.tok.typ {
	case INCR:
		step = 1
	case DECR:
		step = -1
	default:
		return nil, p.syntaxErr("expected '++' or '--' in for-loop step, got %s", p.tok.typ)
	}
	p.advance()
	if _, err := p.expect(itemType(')'), "')'"); err != nil {
		return nil, err
	}

	startVal, err := strconv.ParseInt(start.val, 10, 64)
	if err != nil {
		return nil, p.syntaxErr("malformed integer literal %q", start.val)
	}
	endVal, err := strconv.ParseInt(end.val, 10, 64)
	if err != nil {
		return nil, p.syntaxErr("malformed integer literal %q", end.val)
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ir.Node{
		Typ:  ir.FOR,
		Line: kw.line,
		Pos:  kw.pos,
		Data: ir.ForHeader{Var: name.val, Start: startVal, End: endVal, Step: step, Fwd: fwd},
		Children: []*ir.Node{body},
	}, nil
}

// parseReturn parses `return expr;`.
func (p *parser) parseReturn() (*ir.Node, error) {
	kw, _ := p.expect(RETURN, "'return'")
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemType(';'), "';'"); err != nil {
		return nil, err
	}
	return &ir.Node{Typ: ir.RETURN, Line: kw.line, Pos: kw.pos, Children: []*ir.Node{val}}, nil
}

// parsePrint parses `print(expr);`. Unlike len, print is Void-typed and never appears mid-expression, so it's
// only ever reached from parseStatement.
func (p *parser) parsePrint() (*ir.Node, error) {
	kw := p.tok
	p.advance()
	if _, err := p.expect(itemType('('), "'('"); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemType(')'), "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(itemType(';'), "';'"); err != nil {
		return nil, err
	}
	return &ir.Node{Typ: ir.PRINT, Line: kw.line, Pos: kw.pos, Children: []*ir.Node{val}}, nil
}

// --- Expressions ---
//
// Precedence (lowest to highest), per §4.1:
//   logical-compare (== != < <= > >=)
//   additive        (+ -)
//   multiplicative  (* /)
//   unary minus on integer literals
//   primary         (literal / variable / parenthesized / call / list literal / index)

func (p *parser) parseExpr() (*ir.Node, error) {
	return p.parseCompare()
}

func (p *parser) parseCompare() (*ir.Node, error) {
	lhs, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := compareOp(p.tok.typ)
		if !ok {
			return lhs, nil
		}
		tok := p.tok
		p.advance()
		rhs, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		lhs = &ir.Node{Typ: ir.BINARY, Line: tok.line, Pos: tok.pos, Data: op, Children: []*ir.Node{lhs, rhs}}
	}
}

func compareOp(t itemType) (string, bool) {
	switch t {
	case EQ:
		return "==", true
	case NEQ:
		return "!=", true
	case itemType('<'):
		return "<", true
	case LEQ:
		return "<=", true
	case itemType('>'):
		return ">", true
	case GEQ:
		return ">=", true
	default:
		return "", false
	}
}

func (p *parser) parseAdditive() (*ir.Node, error) {
	lhs, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.tok.typ == itemType('+') || p.tok.typ == itemType('-') {
		tok := p.tok
		op := string(rune(tok.typ))
		p.advance()
		rhs, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		lhs = &ir.Node{Typ: ir.BINARY, Line: tok.line, Pos: tok.pos, Data: op, Children: []*ir.Node{lhs, rhs}}
	}
	return lhs, nil
}

func (p *parser) parseMultiplicative() (*ir.Node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.typ == itemType('*') || p.tok.typ == itemType('/') {
		tok := p.tok
		op := string(rune(tok.typ))
		p.advance()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = &ir.Node{Typ: ir.BINARY, Line: tok.line, Pos: tok.pos, Data: op, Children: []*ir.Node{lhs, rhs}}
	}
	return lhs, nil
}

// parseUnary handles unary minus on integer literals, per §4.1's precedence table ("unary minus on integer
// literals"): `-5` is a negative literal, not a general unary-negation operator.
func (p *parser) parseUnary() (*ir.Node, error) {
	if p.tok.typ == itemType('-') {
		tok := p.tok
		p.advance()
		lit, err := p.expect(INTEGER, "integer literal after unary '-'")
		if err != nil {
			return nil, err
		}
		return parseIntLit(tok.line, tok.pos, "-"+lit.val)
	}
	return p.parsePrimaryWithPostfix()
}

func (p *parser) parsePrimaryWithPostfix() (*ir.Node, error) {
	prim, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parsePostfix(prim)
}

// parsePostfix handles list indexing applied to an already-parsed primary, e.g. `matrix[i][j]`.
func (p *parser) parsePostfix(n *ir.Node) (*ir.Node, error) {
	for p.tok.typ == itemType('[') {
		tok := p.tok
		p.advance()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(itemType(']'), "']'"); err != nil {
			return nil, err
		}
		n = &ir.Node{Typ: ir.INDEX, Line: tok.line, Pos: tok.pos, Children: []*ir.Node{n, idx}}
	}
	return n, nil
}

// parsePrimary parses literal / variable / parenthesized / call / list literal.
func (p *parser) parsePrimary() (*ir.Node, error) {
	tok := p.tok
	switch tok.typ {
	case INTEGER:
		p.advance()
		return parseIntLit(tok.line, tok.pos, tok.val)
	case STRING:
		p.advance()
		return &ir.Node{Typ: ir.STRING_LIT, Line: tok.line, Pos: tok.pos, Data: tok.val}, nil
	case TRUE:
		p.advance()
		return &ir.Node{Typ: ir.BOOL_LIT, Line: tok.line, Pos: tok.pos, Data: true}, nil
	case FALSE:
		p.advance()
		return &ir.Node{Typ: ir.BOOL_LIT, Line: tok.line, Pos: tok.pos, Data: false}, nil
	case itemType('('):
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(itemType(')'), "')'"); err != nil {
			return nil, err
		}
		return &ir.Node{Typ: ir.PAREN, Line: tok.line, Pos: tok.pos, Children: []*ir.Node{inner}}, nil
	case itemType('['):
		p.advance()
		lit := &ir.Node{Typ: ir.LIST_LIT, Line: tok.line, Pos: tok.pos}
		for p.tok.typ != itemType(']') {
			if len(lit.Children) > 0 {
				if _, err := p.expect(itemType(','), "','"); err != nil {
					return nil, err
				}
			}
			el, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			lit.Children = append(lit.Children, el)
		}
		if len(lit.Children) == 0 {
			// §4.2 "List literal": empty list literals are rejected by the current core (§9 Open Question).
			return nil, p.syntaxErr("empty list literals are not supported")
		}
		p.advance()
		return lit, nil
	case IDENTIFIER:
		p.advance()
		return p.parseCallTail(tok)
	case LEN:
		p.advance()
		if _, err := p.expect(itemType('('), "'('"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(itemType(')'), "')'"); err != nil {
			return nil, err
		}
		return &ir.Node{Typ: ir.LEN, Line: tok.line, Pos: tok.pos, Children: []*ir.Node{val}}, nil
	default:
		return nil, p.syntaxErr("unexpected token %s %q in expression", tok.typ, tok.val)
	}
}

// parseCallTail disambiguates a bare identifier reference from a call, given the identifier token already
// consumed.
func (p *parser) parseCallTail(name item) (*ir.Node, error) {
	if p.tok.typ != itemType('(') {
		return &ir.Node{Typ: ir.IDENT, Line: name.line, Pos: name.pos, Data: name.val}, nil
	}
	p.advance()
	call := &ir.Node{Typ: ir.CALL, Line: name.line, Pos: name.pos, Data: name.val}
	for p.tok.typ != itemType(')') {
		if len(call.Children) > 0 {
			if _, err := p.expect(itemType(','), "','"); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.Children = append(call.Children, arg)
	}
	p.advance()
	return call, nil
}

// parseIntLit parses a (possibly negative) decimal integer literal into an INT_LIT node, deciding i32 vs i64
// width per §3: fits i32, or else i64, or else a SyntaxError (§9 Open Question, resolved: overflowing i64
// errors rather than wraps).
func parseIntLit(line, pos int, s string) (*ir.Node, error) {
	if v, err := strconv.ParseInt(s, 10, 32); err == nil {
		return &ir.Node{Typ: ir.INT_LIT, Line: line, Pos: pos, Data: ir.IntLit{Value: v, Wide: false}}, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, util.NewDiagAt(util.SyntaxError, line, pos, "integer literal %q overflows i64", s)
	}
	return &ir.Node{Typ: ir.INT_LIT, Line: line, Pos: pos, Data: ir.IntLit{Value: v, Wide: true}}, nil
}
