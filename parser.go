package main

import (
	"github.com/cedar-lang/cedarc/diag"
)

// Parser pulls tokens from the lexer on demand and builds the top-level
// statement sequence. Syntax errors are reported through the diagnostics
// context and recovered with panic-mode synchronization; Parse always
// returns whatever it managed to build, and callers must check HadError
// before trusting the result.
type Parser struct {
	lexer      *Lexer
	diag       *diag.Context
	current    Token
	previous   Token
	panicMode  bool
	errorCount int
}

func NewParser(lexer *Lexer, dc *diag.Context) *Parser {
	p := &Parser{lexer: lexer, diag: dc}
	p.advance()
	return p
}

func (p *Parser) Parse() []Stmt {
	var statements []Stmt
	for !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			statements = append(statements, stmt)
		}
	}
	return statements
}

func (p *Parser) HadError() bool {
	return p.errorCount > 0
}

// advance always pulls the next token; a zero-valued current token must
// not read as end-of-file before the first scan, and the lexer keeps
// returning END_OF_FILE once input is exhausted.
func (p *Parser) advance() {
	p.previous = p.current

	p.current = p.lexer.ScanToken()
	if p.current.Kind == ERROR {
		p.error(p.current, p.current.Lexeme)
	}
}

func (p *Parser) consume(kind TokenKind, message string) {
	if p.check(kind) {
		p.advance()
		return
	}
	p.error(p.current, message)
}

func (p *Parser) check(kind TokenKind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.current.Kind == kind
}

func (p *Parser) match(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchAny(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			p.advance()
			return true
		}
	}
	return false
}

// error reports once per panic-mode episode; cascading reports at the
// same synchronization run are suppressed.
func (p *Parser) error(token Token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.errorCount++

	p.diag.Errorf("[Line %d, Col %d] Error: %s", token.Line, token.Column, message)
}

func (p *Parser) syntaxError(token Token, message string) error {
	p.error(token, message)
	return &SyntaxError{Token: token, Message: message}
}

// synchronize discards tokens until a statement boundary or a keyword
// that can start a new declaration, then leaves panic mode.
func (p *Parser) synchronize() {
	p.panicMode = false

	for !p.isAtEnd() {
		if p.previous.Kind == SEMICOLON {
			return
		}

		switch p.current.Kind {
		case FUNC, VAR, CONST, FOR, IF, WHILE, RETURN:
			return
		}

		p.advance()
	}
}

func (p *Parser) isAtEnd() bool {
	return p.current.Kind == END_OF_FILE
}

func (p *Parser) declaration() Stmt {
	var stmt Stmt
	var err error

	switch {
	case p.match(FUNC):
		stmt, err = p.functionDecl()
	case p.match(VAR):
		stmt, err = p.varDeclaration(false)
	case p.match(CONST):
		stmt, err = p.varDeclaration(true)
	default:
		stmt, err = p.statement()
	}

	if err != nil {
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *Parser) functionDecl() (Stmt, error) {
	p.consume(IDENTIFIER, "Expect function name")
	name := p.previous.Lexeme

	p.consume(LEFT_PAREN, "Expect '(' after function name")
	params, err := p.parameterList()
	if err != nil {
		return nil, err
	}
	p.consume(RIGHT_PAREN, "Expect ')' after parameters")

	returnType := VOID
	if p.match(ARROW) {
		returnType = p.typeAnnotation()
	}

	p.consume(LEFT_BRACE, "Expect '{' before function body")
	body, err := p.block()
	if err != nil {
		return nil, err
	}

	return &FunctionDecl{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
	}, nil
}

func (p *Parser) parameterList() ([]Parameter, error) {
	var params []Parameter

	if !p.check(RIGHT_PAREN) {
		for {
			p.consume(IDENTIFIER, "Expect parameter name")
			name := p.previous.Lexeme

			p.consume(COLON, "Expect ':' after parameter name")
			params = append(params, Parameter{Name: name, Type: p.typeAnnotation()})

			if !p.match(COMMA) {
				break
			}
		}
	}
	return params, nil
}

func (p *Parser) statement() (Stmt, error) {
	switch {
	case p.match(IF):
		return p.ifStatement()
	case p.match(WHILE):
		return p.whileStatement()
	case p.match(FOR):
		return p.forStatement()
	case p.match(RETURN):
		return p.returnStatement()
	case p.match(LEFT_BRACE):
		return p.block()
	}
	return p.expressionStatement()
}

func (p *Parser) block() (*BlockStmt, error) {
	var statements []Stmt

	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			statements = append(statements, stmt)
		}
	}

	p.consume(RIGHT_BRACE, "Expect '}' after block")
	return &BlockStmt{Statements: statements}, nil
}

func (p *Parser) ifStatement() (Stmt, error) {
	p.consume(LEFT_PAREN, "Expect '(' after 'if'")
	condition, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.consume(RIGHT_PAREN, "Expect ')' after if condition")

	thenBranch, err := p.statement()
	if err != nil {
		return nil, err
	}

	var elseBranch Stmt
	if p.match(ELSE) {
		elseBranch, err = p.statement()
		if err != nil {
			return nil, err
		}
	}

	return &IfStmt{Condition: condition, ThenBranch: thenBranch, ElseBranch: elseBranch}, nil
}

func (p *Parser) whileStatement() (Stmt, error) {
	p.consume(LEFT_PAREN, "Expect '(' after 'while'")
	condition, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.consume(RIGHT_PAREN, "Expect ')' after while condition")

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	return &WhileStmt{Condition: condition, Body: body}, nil
}

// forStatement desugars the loop at parse time: the generator never sees
// a for node for this construct. `for (init; cond; incr) body` becomes
// `{ init; while (cond) { body; incr; } }`, with a literal true condition
// when cond is omitted and without the outer block when init is omitted.
func (p *Parser) forStatement() (Stmt, error) {
	p.consume(LEFT_PAREN, "Expect '(' after 'for'")

	var initializer *VarDecl
	if p.match(VAR) {
		decl, err := p.varDeclaration(false)
		if err != nil {
			return nil, err
		}
		initializer = decl
	} else if !p.match(SEMICOLON) {
		if _, err := p.expressionStatement(); err != nil {
			return nil, err
		}
		p.error(p.previous, "Expect variable declaration in for loop initializer")
	}

	var condition Expr
	var err error
	if !p.check(SEMICOLON) {
		condition, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	p.consume(SEMICOLON, "Expect ';' after loop condition")

	var increment Expr
	if !p.check(RIGHT_PAREN) {
		increment, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	p.consume(RIGHT_PAREN, "Expect ')' after for clauses")

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	if increment != nil {
		body = &BlockStmt{Statements: []Stmt{
			body,
			&ExpressionStmt{Expression: increment},
		}}
	}

	if condition == nil {
		condition = &Literal{Type: TRUE, Value: "true"}
	}

	var loop Stmt = &WhileStmt{Condition: condition, Body: body}

	if initializer != nil {
		return &BlockStmt{Statements: []Stmt{initializer, loop}}, nil
	}
	return loop, nil
}

func (p *Parser) varDeclaration(isConst bool) (*VarDecl, error) {
	p.consume(IDENTIFIER, "Expect variable name")
	name := p.previous.Lexeme

	p.consume(COLON, "Expect ':' after variable name")
	declType := p.typeAnnotation()

	var initializer Expr
	if p.match(EQUAL) {
		var err error
		initializer, err = p.expression()
		if err != nil {
			return nil, err
		}
	} else if isConst {
		p.error(p.previous, "Constant must be initialized")
	}

	p.consume(SEMICOLON, "Expect ';' after variable declaration")
	return &VarDecl{Type: declType, Name: name, Initializer: initializer, IsConst: isConst}, nil
}

func (p *Parser) returnStatement() (Stmt, error) {
	var value Expr
	if !p.check(SEMICOLON) {
		var err error
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}

	p.consume(SEMICOLON, "Expect ';' after return value")
	return &ReturnStmt{Value: value}, nil
}

func (p *Parser) expressionStatement() (Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.consume(SEMICOLON, "Expect ';' after expression")
	return &ExpressionStmt{Expression: expr}, nil
}

// The precedence ladder, loosest binding first. Each level parses its
// operand at the next-tighter level and loops on its own operators.
func (p *Parser) expression() (Expr, error) {
	return p.assignment()
}

func (p *Parser) assignment() (Expr, error) {
	expr, err := p.ternary()
	if err != nil {
		return nil, err
	}

	if p.matchAny(EQUAL, PLUS_EQUAL) {
		op := p.previous.Kind
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}

		if _, ok := expr.(*IdentifierExpr); ok {
			return &AssignExpr{Op: op, Target: expr, Value: value}, nil
		}
		p.error(p.previous, "Invalid assignment target")
	}
	return expr, nil
}

// A ternary is modeled as two nested binaries with the '?' and ':'
// tokens as markers; the generator lowers the pair together.
func (p *Parser) ternary() (Expr, error) {
	expr, err := p.logicOr()
	if err != nil {
		return nil, err
	}

	if p.match(QUESTION) {
		thenBranch, err := p.expression()
		if err != nil {
			return nil, err
		}
		p.consume(COLON, "Expect ':' in ternary expression")
		elseBranch, err := p.ternary()
		if err != nil {
			return nil, err
		}

		return &BinaryExpr{
			Op:   QUESTION,
			Left: expr,
			Right: &BinaryExpr{
				Op:    COLON,
				Left:  thenBranch,
				Right: elseBranch,
			},
		}, nil
	}
	return expr, nil
}

func (p *Parser) logicOr() (Expr, error) {
	return p.binaryLevel(p.logicAnd, PIPE_PIPE)
}

func (p *Parser) logicAnd() (Expr, error) {
	return p.binaryLevel(p.equality, AMPERSAND_AMP)
}

func (p *Parser) equality() (Expr, error) {
	return p.binaryLevel(p.comparison, EQUAL_EQUAL, BANG_EQUAL)
}

func (p *Parser) comparison() (Expr, error) {
	return p.binaryLevel(p.term, LESS, LESS_EQUAL, GREATER, GREATER_EQUAL)
}

func (p *Parser) term() (Expr, error) {
	return p.binaryLevel(p.factor, PLUS, MINUS)
}

func (p *Parser) factor() (Expr, error) {
	return p.binaryLevel(p.unary, STAR, SLASH, PERCENT)
}

func (p *Parser) binaryLevel(operand func() (Expr, error), operators ...TokenKind) (Expr, error) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}

	for p.matchAny(operators...) {
		op := p.previous.Kind
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) unary() (Expr, error) {
	if p.matchAny(BANG, MINUS, PLUS_PLUS) {
		op := p.previous.Kind
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, Operand: operand}, nil
	}
	return p.call()
}

func (p *Parser) call() (Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.match(LEFT_PAREN):
			expr, err = p.finishCall(expr)
			if err != nil {
				return nil, err
			}
		case p.match(PLUS_PLUS):
			// Postfix increment produces the same node as the prefix
			// form; the result is the incremented value either way.
			expr = &UnaryExpr{Op: PLUS_PLUS, Operand: expr}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) finishCall(callee Expr) (Expr, error) {
	var arguments []Expr

	if !p.check(RIGHT_PAREN) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			arguments = append(arguments, arg)

			if !p.match(COMMA) {
				break
			}
		}
	}
	p.consume(RIGHT_PAREN, "Expect ')' after arguments")

	return &CallExpr{Callee: callee, Arguments: arguments}, nil
}

func (p *Parser) primary() (Expr, error) {
	switch {
	case p.match(FALSE):
		return &Literal{Type: FALSE, Value: "false"}, nil
	case p.match(TRUE):
		return &Literal{Type: TRUE, Value: "true"}, nil
	case p.matchAny(INT_LITERAL, FLOAT_LITERAL, STRING_LITERAL, CHAR_LITERAL):
		return &Literal{Type: p.previous.Kind, Value: p.previous.Lexeme}, nil
	case p.match(IDENTIFIER):
		return &IdentifierExpr{Name: p.previous.Lexeme}, nil
	case p.match(LEFT_PAREN):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		p.consume(RIGHT_PAREN, "Expect ')' after expression")
		return &GroupingExpr{Expression: expr}, nil
	}

	return nil, p.syntaxError(p.current, "Expect expression")
}

// typeAnnotation accepts one of the primitive type keywords. On anything
// else it reports and yields ERROR, which the generator maps to the
// default scalar type.
func (p *Parser) typeAnnotation() TokenKind {
	switch p.current.Kind {
	case I8, I16, I32, I64, U8, U16, U32, U64, F32, F64, BOOL, STRING, CHAR, VOID:
		kind := p.current.Kind
		p.advance()
		return kind
	}

	p.error(p.current, "Expect type identifier")
	return ERROR
}
