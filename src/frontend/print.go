// print.go implements the AST pretty-printer required by §4.1's round-trip property: for every program in a
// representative corpus, printing the parsed tree and re-parsing the result must produce an equal AST. Unlike
// ir.Node.Print/String (the -ast/-v debug tree dump), this emits the surface syntax parser.go itself consumes,
// so Parse(Print(prog)) round-trips. Grounded directly on parser.go's grammar: each production below is the
// literal inverse of the parseX function with the matching name.
package frontend

import (
	"fmt"
	"strconv"
	"strings"

	"lcc/src/ir"
)

// Print renders prog, a PROGRAM node, back to L surface syntax.
func Print(prog *ir.Node) string {
	var b strings.Builder
	for i, fn := range prog.Children {
		if i > 0 {
			b.WriteString("\n\n")
		}
		printFuncDecl(&b, fn)
	}
	b.WriteString("\n")
	return b.String()
}

func printFuncDecl(b *strings.Builder, n *ir.Node) {
	fmt.Fprintf(b, "fn %s(", n.Data.(string))
	args, body := n.Children[:len(n.Children)-1], n.Children[len(n.Children)-1]
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%s %s", printTypeExpr(arg.DeclType), arg.Data.(string))
	}
	b.WriteString(")")
	if n.DeclType != nil {
		fmt.Fprintf(b, " -> %s", printTypeExpr(n.DeclType))
	}
	b.WriteString(" ")
	printBlock(b, body)
}

func printTypeExpr(t *ir.TypeExpr) string {
	if t.Name == "List" {
		return "List<" + printTypeExpr(t.Elem) + ">"
	}
	return t.Name
}

func printBlock(b *strings.Builder, n *ir.Node) {
	b.WriteString("{ ")
	for _, stmt := range n.Children {
		printStmt(b, stmt)
		b.WriteString(" ")
	}
	b.WriteString("}")
}

// printStmt prints one BLOCK child. Most statement kinds own their trailing ';' here; IF/WHILE/FOR/nested
// BLOCK are brace-delimited and need none.
func printStmt(b *strings.Builder, n *ir.Node) {
	switch n.Typ {
	case ir.LET:
		fmt.Fprintf(b, "let %s", n.Data.(string))
		if n.DeclType != nil {
			fmt.Fprintf(b, ": %s", printTypeExpr(n.DeclType))
		}
		fmt.Fprintf(b, " = %s;", printExpr(n.Children[0]))
	case ir.ASSIGN:
		fmt.Fprintf(b, "%s = %s;", n.Data.(string), printExpr(n.Children[0]))
	case ir.INDEX_ASSIGN:
		fmt.Fprintf(b, "%s[%s] = %s;", n.Data.(string), printExpr(n.Children[0]), printExpr(n.Children[1]))
	case ir.IF:
		printIf(b, n)
	case ir.WHILE:
		fmt.Fprintf(b, "while (%s) ", printExpr(n.Children[0]))
		printBlock(b, n.Children[1])
	case ir.FOR:
		printFor(b, n)
	case ir.RETURN:
		fmt.Fprintf(b, "return %s;", printExpr(n.Children[0]))
	case ir.PRINT:
		fmt.Fprintf(b, "print(%s);", printExpr(n.Children[0]))
	case ir.BLOCK:
		printBlock(b, n)
	default:
		// Bare expression statement: a CALL or LEN kept only for its side effect (parseIdentStatement's
		// call-tail branch, parseStatement's LEN branch).
		fmt.Fprintf(b, "%s;", printExpr(n))
	}
}

func printIf(b *strings.Builder, n *ir.Node) {
	fmt.Fprintf(b, "if (%s) ", printExpr(n.Children[0]))
	printBlock(b, n.Children[1])
	if len(n.Children) == 3 {
		b.WriteString(" else ")
		if n.Children[2].Typ == ir.IF {
			printIf(b, n.Children[2])
		} else {
			printBlock(b, n.Children[2])
		}
	}
}

func printFor(b *strings.Builder, n *ir.Node) {
	h := n.Data.(ir.ForHeader)
	op := "<"
	if !h.Fwd {
		op = ">"
	}
	step := "++"
	if h.Step < 0 {
		step = "--"
	}
	fmt.Fprintf(b, "for (let %s = %d; %s %s %d; %s%s) ", h.Var, h.Start, h.Var, op, h.End, h.Var, step)
	printBlock(b, n.Children[0])
}

// printExpr prints n in expression position. PAREN nodes are the only source of explicit parentheses: since
// the parser records every written '(' ')' pair as its own PAREN node (parsePrimary's '(' case) and folds
// precedence structurally everywhere else, printing BINARY without adding parentheses and PAREN with them is
// exactly the grammar's inverse — no precedence bookkeeping needed here.
func printExpr(n *ir.Node) string {
	switch n.Typ {
	case ir.INT_LIT:
		return strconv.FormatInt(n.Data.(ir.IntLit).Value, 10)
	case ir.STRING_LIT:
		return `"` + n.Data.(string) + `"`
	case ir.BOOL_LIT:
		if n.Data.(bool) {
			return "true"
		}
		return "false"
	case ir.IDENT:
		return n.Data.(string)
	case ir.PAREN:
		return "(" + printExpr(n.Children[0]) + ")"
	case ir.BINARY:
		return printExpr(n.Children[0]) + " " + n.Data.(string) + " " + printExpr(n.Children[1])
	case ir.CALL:
		args := make([]string, len(n.Children))
		for i, a := range n.Children {
			args[i] = printExpr(a)
		}
		return n.Data.(string) + "(" + strings.Join(args, ", ") + ")"
	case ir.INDEX:
		return printExpr(n.Children[0]) + "[" + printExpr(n.Children[1]) + "]"
	case ir.LIST_LIT:
		els := make([]string, len(n.Children))
		for i, e := range n.Children {
			els[i] = printExpr(e)
		}
		return "[" + strings.Join(els, ", ") + "]"
	case ir.LEN:
		return "len(" + printExpr(n.Children[0]) + ")"
	default:
		return n.Typ.String()
	}
}
