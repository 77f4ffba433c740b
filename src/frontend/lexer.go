// This lexer is based on, and copied from, Rob Pike's excellent talk on Go scanners.
// Link to the talk on YouTube: https://www.youtube.com/watch?v=HxaD_trXwRE
// Link to presentation slides: https://talks.golang.org/2011/lex.slide#1
//
// The lexer uses state functions stateFunc to define the lexer state. States allow the lexer to treat the same
// runes differently depending on context. State transitions happen in the current state on appearance of key
// runes. The lexer uses the Go 'character' type 'rune' which enables native UTF-8 support for the source being
// scanned. The scanner runs in its own goroutine and streams item tokens back to the parser over a channel, so
// the parser never blocks waiting for the whole source to be tokenized up front.
package frontend

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// stateFunc defines the state of the lexer.
type stateFunc func(*lexer) stateFunc

// item contains a lexeme scanned by the lexer and its position in the source stream.
type item struct {
	typ  itemType // Token type to emit.
	val  string   // Value of token.
	line int      // Line of token in source stream.
	pos  int      // Start position on current line of token in source stream.
}

// lexer is a lexical scanner that traverses a source stream character by character and emits lexemes.
type lexer struct {
	input       string    // The source stream of characters to scan for lexemes.
	start       int       // The starting position of the current token.
	pos         int       // The current position of the scanner in the source stream.
	width       int       // The width of the currently scanned rune/character in bytes.
	line        int       // The current line in the source stream. Not zero-indexed.
	startOnLine int       // The start position of the current token on the current line. Not zero-indexed.
	state       stateFunc // The start state of the lexer.
	err         chan error
	items       chan item // A channel for emitting item tokens.
}

const eof = 0 // Same as '\0' for null-terminated C strings.

// String returns a print friendly string representation of the item.
func (i item) String() string {
	switch i.typ {
	case itemEOF:
		return "EOF"
	case itemError:
		return fmt.Sprintf("%s [ERROR]", i.val)
	}
	if len(i.val) > 10 {
		return fmt.Sprintf("%.10q... (line %d:%d)", i.val, i.line, i.pos)
	}
	return fmt.Sprintf("%q (line %d:%d)", i.val, i.line, i.pos)
}

// newLexer creates and returns a pointer to a new lexer.
func newLexer(src string, start stateFunc) *lexer {
	return &lexer{
		input:       src,
		line:        1,
		startOnLine: 1,
		state:       start,
		err:         make(chan error, 1),
		items:       make(chan item, 2),
	}
}

// run initiates the traversal of the input stream, resulting in tokens being emitted on l.items.
func (l *lexer) run() {
	defer close(l.items)
	for state := l.state; state != nil; {
		state = state(l)
	}
}

// emit sends an item of type typ back to the caller.
func (l *lexer) emit(typ itemType) {
	defer func() {
		if r := recover(); r != nil {
			// Send on closed channel: nobody is listening anymore.
			l.state = nil
		}
	}()

	l.items <- item{
		typ:  typ,
		val:  l.input[l.start:l.pos],
		line: l.line,
		pos:  l.startOnLine,
	}
	l.startOnLine += len(l.input[l.start:l.pos])
	l.start = l.pos
}

// next returns the next rune in the input. The use of runes makes the lexer UTF-8 compatible.
func (l *lexer) next() (r rune) {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += l.width
	return r
}

// ignore skips over the pending input before this point.
func (l *lexer) ignore() {
	l.startOnLine += len(l.input[l.start:l.pos])
	l.start = l.pos
}

// backup steps back one rune. Should only be called once per call of next.
func (l *lexer) backup() {
	if l.pos > l.start {
		l.pos -= l.width
	}
}

// peek returns, but does not consume, the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// nextItem returns the next item from the input.
func (l *lexer) nextItem() item {
	return <-l.items
}

// errorf emits an error token and terminates the scan by returning a nil state.
func (l *lexer) errorf(format string, args ...interface{}) stateFunc {
	l.items <- item{
		typ:  itemError,
		val:  fmt.Sprintf(format, args...),
		line: l.line,
		pos:  l.startOnLine,
	}
	return nil
}

// Error satisfies the same shape as the teacher's lexer/parser error hook, kept so tooling that expects a
// lexer.Error(string) method (e.g. a future generated parser) can still attach to this scanner.
func (l *lexer) Error(e string) {
	select {
	case l.err <- errors.New(e):
	default:
	}
}

// isAlpha return true if rune r is an alphabetic character or underscore.
func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

// isDigit return true if rune r is a digit in the range [0-9].
func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isSpace return true if rune r is a whitespace character.
func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\f' || r == '\r'
}

// lexGlobal starts the lexing process and serves as the default state.
func lexGlobal(l *lexer) stateFunc {
	for {
		r := l.next()
		switch {
		case isAlpha(r):
			return lexWord
		case isDigit(r):
			return lexNumber
		case r == '\n':
			l.ignore()
			l.line++
			l.startOnLine = 1
		case isSpace(r):
			l.ignore()
		case r == '"':
			return lexString
		case r == '=' && l.peek() == '=':
			l.next()
			l.emit(EQ)
		case r == '=':
			l.emit(ASSIGN)
		case r == '!' && l.peek() == '=':
			l.next()
			l.emit(NEQ)
		case r == '<' && l.peek() == '=':
			l.next()
			l.emit(LEQ)
		case r == '>' && l.peek() == '=':
			l.next()
			l.emit(GEQ)
		case r == '-' && l.peek() == '>':
			l.next()
			l.emit(ARROW)
		case r == '+' && l.peek() == '+':
			l.next()
			l.emit(INCR)
		case r == '-' && l.peek() == '-':
			l.next()
			l.emit(DECR)
		case r == '/' && l.peek() == '/':
			for c := l.next(); c != '\n' && c != eof; c = l.next() {
			}
			l.backup()
			l.ignore()
		case r == eof:
			l.emit(itemEOF)
			return nil
		default:
			// Let the parser consume single-character punctuation (+ - * / ( ) { } [ ] , ; : < > !) as is.
			l.emit(itemType(r))
		}
	}
}

// lexWord scans the input string for keywords and identifiers.
func lexWord(l *lexer) stateFunc {
	for {
		r := l.next()
		if !isAlpha(r) && !isDigit(r) {
			l.backup()
			if typ, ok := isKeyword(l.input[l.start:l.pos]); ok {
				l.emit(typ)
			} else {
				l.emit(IDENTIFIER)
			}
			return lexGlobal
		}
	}
}

// lexNumber scans the input stream for a decimal integer literal. L has no float literals (§3 Non-goals).
func lexNumber(l *lexer) stateFunc {
	for r := l.next(); isDigit(r); r = l.next() {
	}
	l.backup()
	l.emit(INTEGER)
	return lexGlobal
}

// lexString scans a string literal from the input stream. Escaped quotes (\") don't terminate the literal.
func lexString(l *lexer) stateFunc {
	l.ignore()
	for {
		r := l.next()
		if r == eof || r == '\n' {
			return l.errorf("unclosed string literal at line %d:%d", l.line, l.startOnLine)
		}
		if r == '"' {
			prior := l.input[l.start : l.pos-1]
			if !strings.HasSuffix(prior, "\\") {
				l.backup()
				l.emit(STRING)
				l.next()
				l.ignore()
				return lexGlobal
			}
		}
	}
}
