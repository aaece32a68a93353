package parser

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokPunct
	tokLiteral
	tokLifetime
)

type token struct {
	kind tokenKind
	text string
	line int
}

func (t token) is(kind tokenKind, text string) bool { return t.kind == kind && t.text == text }

func (t token) punct(text string) bool { return t.is(tokPunct, text) }

func (t token) ident(text string) bool { return t.is(tokIdent, text) }

// lexRust tokenizes Rust source, dropping whitespace and comments. It fails
// on unterminated literals or comments and on unbalanced delimiters.
func lexRust(src string) ([]token, error) {
	l := &lexer{src: src, line: 1}
	if err := l.run(); err != nil {
		return nil, err
	}
	if err := checkBalance(l.tokens); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

type lexer struct {
	src    string
	pos    int
	line   int
	tokens []token
}

func (l *lexer) peek(off int) byte {
	if l.pos+off < len(l.src) {
		return l.src[l.pos+off]
	}
	return 0
}

func (l *lexer) emit(kind tokenKind, start, line int) {
	l.tokens = append(l.tokens, token{kind: kind, text: l.src[start:l.pos], line: line})
}

func (l *lexer) run() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '/' && l.peek(1) == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.peek(1) == '*':
			if err := l.blockComment(); err != nil {
				return err
			}
		case c == '"':
			if err := l.quoted(l.pos, l.pos+1); err != nil {
				return err
			}
		case c == '\'':
			if err := l.charOrLifetime(); err != nil {
				return err
			}
		case (c == 'r' || c == 'b' || c == 'c') && l.stringPrefix():
			if err := l.prefixedString(); err != nil {
				return err
			}
		case c >= '0' && c <= '9':
			l.number()
		case c == '_' || c >= 0x80 || unicode.IsLetter(rune(c)):
			l.identifier()
		default:
			start := l.pos
			l.pos++
			l.emit(tokPunct, start, l.line)
		}
	}
	return nil
}

func (l *lexer) blockComment() error {
	line := l.line
	depth := 0
	for l.pos < len(l.src) {
		switch {
		case l.src[l.pos] == '/' && l.peek(1) == '*':
			depth++
			l.pos += 2
		case l.src[l.pos] == '*' && l.peek(1) == '/':
			depth--
			l.pos += 2
			if depth == 0 {
				return nil
			}
		default:
			if l.src[l.pos] == '\n' {
				l.line++
			}
			l.pos++
		}
	}
	return fmt.Errorf("unterminated block comment starting at line %d", line)
}

// quoted scans a plain string literal whose body starts at body.
func (l *lexer) quoted(start, body int) error {
	line := l.line
	l.pos = body
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			if l.peek(1) == '\n' {
				l.line++
			}
			l.pos += 2
			continue
		case '\n':
			l.line++
		case '"':
			l.pos++
			l.tokens = append(l.tokens, token{kind: tokLiteral, text: l.src[start:l.pos], line: line})
			return nil
		}
		l.pos++
	}
	return fmt.Errorf("unterminated string literal starting at line %d", line)
}

// stringPrefix reports whether the r/b/c at pos starts a string literal, a
// byte literal or a raw identifier.
func (l *lexer) stringPrefix() bool {
	switch l.src[l.pos] {
	case 'r':
		return l.peek(1) == '"' || (l.peek(1) == '#' && (l.peek(2) == '"' || l.peek(2) == '#'))
	case 'b':
		return l.peek(1) == '"' || l.peek(1) == '\'' ||
			(l.peek(1) == 'r' && (l.peek(2) == '"' || l.peek(2) == '#'))
	case 'c':
		return l.peek(1) == '"' || (l.peek(1) == 'r' && (l.peek(2) == '"' || l.peek(2) == '#'))
	}
	return false
}

func (l *lexer) prefixedString() error {
	start := l.pos
	if l.src[l.pos] != 'r' {
		l.pos++
	}
	switch l.src[l.pos] {
	case '"':
		return l.quoted(start, l.pos+1)
	case '\'':
		return l.charLiteral(start)
	}
	// raw string: r, hashes, quote
	line := l.line
	l.pos++
	hashes := 0
	for l.pos < len(l.src) && l.src[l.pos] == '#' {
		hashes++
		l.pos++
	}
	if l.pos >= len(l.src) || l.src[l.pos] != '"' {
		return fmt.Errorf("malformed raw string at line %d", line)
	}
	l.pos++
	for l.pos < len(l.src) {
		if l.src[l.pos] == '\n' {
			l.line++
		}
		if l.src[l.pos] == '"' && l.closesRaw(hashes) {
			l.pos += 1 + hashes
			l.tokens = append(l.tokens, token{kind: tokLiteral, text: l.src[start:l.pos], line: line})
			return nil
		}
		l.pos++
	}
	return fmt.Errorf("unterminated raw string starting at line %d", line)
}

func (l *lexer) closesRaw(hashes int) bool {
	for i := 1; i <= hashes; i++ {
		if l.peek(i) != '#' {
			return false
		}
	}
	return true
}

func (l *lexer) charOrLifetime() error {
	start := l.pos
	if l.peek(1) == '\\' {
		return l.charLiteral(start)
	}
	_, size := utf8.DecodeRuneInString(l.src[l.pos+1:])
	if l.pos+1+size < len(l.src) && l.src[l.pos+1+size] == '\'' {
		l.pos += 2 + size
		l.emit(tokLiteral, start, l.line)
		return nil
	}
	l.pos++
	identStart := l.pos
	for l.pos < len(l.src) && isIdentByte(l.src[l.pos]) {
		l.pos++
	}
	if l.pos == identStart {
		return fmt.Errorf("unterminated character literal at line %d", l.line)
	}
	l.emit(tokLifetime, start, l.line)
	return nil
}

// charLiteral scans a quoted character starting at the opening quote.
func (l *lexer) charLiteral(start int) error {
	l.pos++
	for i := 0; l.pos < len(l.src) && i < 12; i++ {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '\'':
			l.pos++
			l.emit(tokLiteral, start, l.line)
			return nil
		case '\n':
			return fmt.Errorf("unterminated character literal at line %d", l.line)
		}
		l.pos++
	}
	return fmt.Errorf("unterminated character literal at line %d", l.line)
}

func (l *lexer) number() {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isIdentByte(c) || (c == '.' && l.peek(1) >= '0' && l.peek(1) <= '9') {
			l.pos++
			continue
		}
		break
	}
	l.emit(tokLiteral, start, l.line)
}

func (l *lexer) identifier() {
	start := l.pos
	if l.src[l.pos] == 'r' && l.peek(1) == '#' && isIdentByte(l.peek(2)) {
		l.pos += 2
		start = l.pos
	}
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.pos += size
	}
	if l.pos == start {
		l.pos++
		l.emit(tokPunct, start, l.line)
		return
	}
	l.emit(tokIdent, start, l.line)
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 0x80 || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

var closers = map[string]string{"(": ")", "[": "]", "{": "}"}

func checkBalance(tokens []token) error {
	var stack []token
	for _, t := range tokens {
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "(", "[", "{":
			stack = append(stack, t)
		case ")", "]", "}":
			if len(stack) == 0 || closers[stack[len(stack)-1].text] != t.text {
				return fmt.Errorf("unbalanced delimiter %q at line %d", t.text, t.line)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		open := stack[len(stack)-1]
		return fmt.Errorf("unclosed delimiter %q opened at line %d", open.text, open.line)
	}
	return nil
}
