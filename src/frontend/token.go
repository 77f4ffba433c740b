package frontend

// itemType enumerates the lexemes the lexer emits. Single-character tokens are
// emitted with their own rune value, mirroring the teacher's scheme of letting
// the parser consume raw punctuation runes directly; the named constants below
// take the small values 0..29, which no punctuation rune uses.
type itemType int

const (
	itemEOF itemType = iota
	itemError

	// Literals.
	IDENTIFIER
	INTEGER
	STRING

	// Keywords.
	LET
	FN
	IF
	ELSE
	WHILE
	FOR
	RETURN
	PRINT
	LEN
	TRUE
	FALSE
	NIL
	TYPE_I32
	TYPE_I64
	TYPE_BOOL
	TYPE_STRING
	TYPE_LIST

	// Multi-character operators. Single-character operators and punctuation
	// (+ - * / ( ) { } [ ] , ; : < >) are emitted as itemType(rune) and are
	// not listed here.
	ASSIGN   // =
	EQ       // ==
	NEQ      // !=
	LEQ      // <=
	GEQ      // >=
	ARROW    // ->
	INCR     // ++
	DECR     // --
)

// keywords maps reserved words to their token type. Identifiers that don't
// appear here are emitted as IDENTIFIER.
var keywords = map[string]itemType{
	"let":    LET,
	"fn":     FN,
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"for":    FOR,
	"return": RETURN,
	"print":  PRINT,
	"len":    LEN,
	"true":   TRUE,
	"false":  FALSE,
	"nil":    NIL,
	"i32":    TYPE_I32,
	"i64":    TYPE_I64,
	"bool":   TYPE_BOOL,
	"string": TYPE_STRING,
	"List":   TYPE_LIST,
}

// isKeyword reports whether s is a reserved word and, if so, its token type.
func isKeyword(s string) (itemType, bool) {
	typ, ok := keywords[s]
	return typ, ok
}

// tokenNames gives a print-friendly name for token types used in syntax
// error messages.
var tokenNames = map[itemType]string{
	itemEOF:     "EOF",
	itemError:   "ERROR",
	IDENTIFIER:  "identifier",
	INTEGER:     "integer literal",
	STRING:      "string literal",
	LET:         "'let'",
	FN:          "'fn'",
	IF:          "'if'",
	ELSE:        "'else'",
	WHILE:       "'while'",
	FOR:         "'for'",
	RETURN:      "'return'",
	PRINT:       "'print'",
	LEN:         "'len'",
	TRUE:        "'true'",
	FALSE:       "'false'",
	NIL:         "'nil'",
	TYPE_I32:    "'i32'",
	TYPE_I64:    "'i64'",
	TYPE_BOOL:   "'bool'",
	TYPE_STRING: "'string'",
	TYPE_LIST:   "'List'",
	ASSIGN:      "'='",
	EQ:          "'=='",
	NEQ:         "'!='",
	LEQ:         "'<='",
	GEQ:         "'>='",
	ARROW:       "'->'",
	INCR:        "'++'",
	DECR:        "'--'",
}

// String returns a print friendly name for t, falling back to the rune
// value for punctuation tokens that don't have a reserved constant.
func (t itemType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	if t > 0 && t < 256 {
		return "'" + string(rune(t)) + "'"
	}
	return "unknown token"
}
