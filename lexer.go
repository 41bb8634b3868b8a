package main

// Lexer scans an in-memory source buffer one token at a time. The whole
// source is held in memory before scanning starts; no production needs
// more than two characters of lookahead.
type Lexer struct {
	source  string
	start   int
	current int
	line    int
	column  int
}

func NewLexer(source string) *Lexer {
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
	}
}

var keywords = map[string]TokenKind{
	"func":   FUNC,
	"return": RETURN,
	"i8":     I8,
	"i16":    I16,
	"i32":    I32,
	"i64":    I64,
	"u8":     U8,
	"u16":    U16,
	"u32":    U32,
	"u64":    U64,
	"f32":    F32,
	"f64":    F64,
	"bool":   BOOL,
	"string": STRING,
	"char":   CHAR,
	"void":   VOID,
	"true":   TRUE,
	"false":  FALSE,
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"for":    FOR,
	"struct": STRUCT,
	"import": IMPORT,
	"const":  CONST,
	"var":    VAR,
}

// ScanToken returns exactly one token per call. Once the end of input is
// reached it keeps returning END_OF_FILE.
func (l *Lexer) ScanToken() Token {
	l.skipWhitespace()

	if l.isAtEnd() {
		l.start = l.current
		return l.makeToken(END_OF_FILE)
	}

	l.start = l.current
	c := l.advance()

	if isAlpha(c) {
		return l.scanIdentifier()
	}
	if isDigit(c) {
		return l.scanNumber()
	}

	switch c {
	case '(':
		return l.makeToken(LEFT_PAREN)
	case ')':
		return l.makeToken(RIGHT_PAREN)
	case '{':
		return l.makeToken(LEFT_BRACE)
	case '}':
		return l.makeToken(RIGHT_BRACE)
	case '[':
		return l.makeToken(LEFT_BRACKET)
	case ']':
		return l.makeToken(RIGHT_BRACKET)
	case ',':
		return l.makeToken(COMMA)
	case ';':
		return l.makeToken(SEMICOLON)
	case ':':
		return l.makeToken(COLON)
	case '.':
		return l.makeToken(DOT)
	case '?':
		return l.makeToken(QUESTION)
	case '+':
		if l.match('+') {
			return l.makeToken(PLUS_PLUS)
		}
		if l.match('=') {
			return l.makeToken(PLUS_EQUAL)
		}
		return l.makeToken(PLUS)
	case '-':
		if l.match('>') {
			return l.makeToken(ARROW)
		}
		return l.makeToken(MINUS)
	case '*':
		return l.makeToken(STAR)
	case '/':
		if l.match('/') {
			l.skipLineComment()
			return l.ScanToken()
		}
		if l.match('*') {
			l.skipBlockComment()
			return l.ScanToken()
		}
		return l.makeToken(SLASH)
	case '%':
		return l.makeToken(PERCENT)
	case '=':
		if l.match('=') {
			return l.makeToken(EQUAL_EQUAL)
		}
		return l.makeToken(EQUAL)
	case '!':
		if l.match('=') {
			return l.makeToken(BANG_EQUAL)
		}
		return l.makeToken(BANG)
	case '<':
		if l.match('=') {
			return l.makeToken(LESS_EQUAL)
		}
		return l.makeToken(LESS)
	case '>':
		if l.match('=') {
			return l.makeToken(GREATER_EQUAL)
		}
		return l.makeToken(GREATER)
	case '&':
		if l.match('&') {
			return l.makeToken(AMPERSAND_AMP)
		}
		return l.makeToken(AMPERSAND)
	case '|':
		if l.match('|') {
			return l.makeToken(PIPE_PIPE)
		}
		return l.makeToken(PIPE)
	case '"':
		return l.scanString()
	case '\'':
		return l.scanChar()
	}

	return l.errorToken("Unexpected character: " + string(c))
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	c := l.source[l.current]
	l.current++
	if c == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return c
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.source[l.current] != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) makeToken(kind TokenKind) Token {
	lexeme := l.source[l.start:l.current]
	return Token{
		Kind:   kind,
		Lexeme: lexeme,
		Line:   l.line,
		Column: l.column - len(lexeme),
	}
}

// errorToken carries a human-readable diagnostic in place of a lexeme.
func (l *Lexer) errorToken(message string) Token {
	return Token{
		Kind:   ERROR,
		Lexeme: message,
		Line:   l.line,
		Column: l.column,
	}
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		switch l.peek() {
		case ' ', '\r', '\t', '\n':
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) skipLineComment() {
	for !l.isAtEnd() && l.peek() != '\n' {
		l.advance()
	}
}

// An unterminated block comment consumes the rest of the input without
// reporting an error.
func (l *Lexer) skipBlockComment() {
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
}

func (l *Lexer) scanIdentifier() Token {
	for isAlphaNumeric(l.peek()) {
		l.advance()
	}

	if kind, ok := keywords[l.source[l.start:l.current]]; ok {
		return l.makeToken(kind)
	}
	return l.makeToken(IDENTIFIER)
}

func (l *Lexer) scanNumber() Token {
	isFloat := false
	isHex := false
	isBin := false

	// A radix prefix is recognized only when the literal so far is a
	// single '0'.
	if l.peek() == 'x' && l.current-l.start == 1 && l.source[l.start] == '0' {
		isHex = true
		l.advance()
	} else if l.peek() == 'b' && l.current-l.start == 1 && l.source[l.start] == '0' {
		isBin = true
		l.advance()
	}

scan:
	for !l.isAtEnd() {
		c := l.peek()
		switch {
		case c == '.':
			if isFloat || isHex || isBin {
				return l.errorToken("Invalid numeric format")
			}
			isFloat = true
			l.advance()
		case c == '_':
			l.advance()
		case isHex && isHexDigit(c), isBin && isBinDigit(c), !isHex && !isBin && isDigit(c):
			l.advance()
		default:
			break scan
		}
	}

	if !isHex && !isBin && (l.peek() == 'e' || l.peek() == 'E') {
		isFloat = true
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	if isFloat {
		return l.makeToken(FLOAT_LITERAL)
	}
	return l.makeToken(INT_LITERAL)
}

func (l *Lexer) scanString() Token {
	for !l.isAtEnd() && l.peek() != '"' {
		if l.peek() == '\\' {
			// Consume the escape; validation happens later.
			l.advance()
		}
		l.advance()
	}

	if l.isAtEnd() {
		return l.errorToken("Unterminated string")
	}

	l.advance()
	return l.makeToken(STRING_LITERAL)
}

func (l *Lexer) scanChar() Token {
	if l.isAtEnd() {
		return l.errorToken("Unterminated character")
	}

	if l.peek() == '\\' {
		l.advance()
		if l.isAtEnd() {
			return l.errorToken("Unterminated character after escape")
		}
		l.advance()
	} else {
		l.advance()
	}

	if l.peek() != '\'' {
		return l.errorToken("Character too long")
	}

	l.advance()
	return l.makeToken(CHAR_LITERAL)
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c > 0x7F
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isBinDigit(c byte) bool {
	return c == '0' || c == '1'
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}
