package main

type TokenKind int

const (
	END_OF_FILE TokenKind = iota
	ERROR

	// keywords
	FUNC
	RETURN
	IF
	ELSE
	WHILE
	FOR
	STRUCT
	IMPORT
	CONST
	VAR
	TRUE
	FALSE

	// type keywords
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	BOOL
	STRING
	CHAR
	VOID

	// literals
	IDENTIFIER
	INT_LITERAL
	FLOAT_LITERAL
	STRING_LITERAL
	CHAR_LITERAL

	// operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	EQUAL
	EQUAL_EQUAL
	BANG
	BANG_EQUAL
	LESS
	LESS_EQUAL
	GREATER
	GREATER_EQUAL
	AMPERSAND
	AMPERSAND_AMP
	PIPE
	PIPE_PIPE
	ARROW
	PLUS_PLUS
	PLUS_EQUAL

	// punctuation
	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACE
	RIGHT_BRACE
	LEFT_BRACKET
	RIGHT_BRACKET
	COMMA
	SEMICOLON
	COLON
	DOT
	QUESTION
)

var tokenKindNames = map[TokenKind]string{
	END_OF_FILE:    "END_OF_FILE",
	ERROR:          "ERROR",
	FUNC:           "FUNC",
	RETURN:         "RETURN",
	IF:             "IF",
	ELSE:           "ELSE",
	WHILE:          "WHILE",
	FOR:            "FOR",
	STRUCT:         "STRUCT",
	IMPORT:         "IMPORT",
	CONST:          "CONST",
	VAR:            "VAR",
	TRUE:           "TRUE",
	FALSE:          "FALSE",
	I8:             "I8",
	I16:            "I16",
	I32:            "I32",
	I64:            "I64",
	U8:             "U8",
	U16:            "U16",
	U32:            "U32",
	U64:            "U64",
	F32:            "F32",
	F64:            "F64",
	BOOL:           "BOOL",
	STRING:         "STRING",
	CHAR:           "CHAR",
	VOID:           "VOID",
	IDENTIFIER:     "IDENTIFIER",
	INT_LITERAL:    "INT_LITERAL",
	FLOAT_LITERAL:  "FLOAT_LITERAL",
	STRING_LITERAL: "STRING_LITERAL",
	CHAR_LITERAL:   "CHAR_LITERAL",
	PLUS:           "PLUS",
	MINUS:          "MINUS",
	STAR:           "STAR",
	SLASH:          "SLASH",
	PERCENT:        "PERCENT",
	EQUAL:          "EQUAL",
	EQUAL_EQUAL:    "EQUAL_EQUAL",
	BANG:           "BANG",
	BANG_EQUAL:     "BANG_EQUAL",
	LESS:           "LESS",
	LESS_EQUAL:     "LESS_EQUAL",
	GREATER:        "GREATER",
	GREATER_EQUAL:  "GREATER_EQUAL",
	AMPERSAND:      "AMPERSAND",
	AMPERSAND_AMP:  "AMPERSAND_AMP",
	PIPE:           "PIPE",
	PIPE_PIPE:      "PIPE_PIPE",
	ARROW:          "ARROW",
	PLUS_PLUS:      "PLUS_PLUS",
	PLUS_EQUAL:     "PLUS_EQUAL",
	LEFT_PAREN:     "LEFT_PAREN",
	RIGHT_PAREN:    "RIGHT_PAREN",
	LEFT_BRACE:     "LEFT_BRACE",
	RIGHT_BRACE:    "RIGHT_BRACE",
	LEFT_BRACKET:   "LEFT_BRACKET",
	RIGHT_BRACKET:  "RIGHT_BRACKET",
	COMMA:          "COMMA",
	SEMICOLON:      "SEMICOLON",
	COLON:          "COLON",
	DOT:            "DOT",
	QUESTION:       "QUESTION",
}

func (t TokenKind) String() string {
	if name, ok := tokenKindNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token is produced by the lexer and consumed immediately by the parser.
// Line and Column are 1-based; for multi-character tokens the column is
// back-computed from the cursor position after the lexeme, which is only
// approximate for lexemes spanning lines.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
	Column int
}
