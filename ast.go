package main

// The node set is closed: statements and expressions are sealed
// interfaces, and each consumer (printer, code generator) dispatches with
// a type switch over every concrete kind. A new node kind means a new
// case in every consumer.

type Stmt interface {
	isStmt()
}

type Expr interface {
	isExpr()

	// ResultType propagates a coarse source-level type for the
	// expression. Identifiers and calls are not resolved against
	// declarations and always report I32.
	ResultType() TokenKind
}

// Parameter is a function parameter declaration, name plus declared type.
type Parameter struct {
	Name string
	Type TokenKind
}

type BlockStmt struct {
	Statements []Stmt
}

func (*BlockStmt) isStmt() {}

type FunctionDecl struct {
	Name       string
	Params     []Parameter
	ReturnType TokenKind
	Body       *BlockStmt
}

func (*FunctionDecl) isStmt() {}

type VarDecl struct {
	Type        TokenKind
	Name        string
	Initializer Expr // nil when omitted
	IsConst     bool
}

func (*VarDecl) isStmt() {}

type IfStmt struct {
	Condition  Expr
	ThenBranch Stmt
	ElseBranch Stmt // nil when there is no else arm
}

func (*IfStmt) isStmt() {}

type WhileStmt struct {
	Condition Expr
	Body      Stmt
}

func (*WhileStmt) isStmt() {}

// ForStmt survives in the node set, but the parser desugars every for
// loop into a block with a while loop, so the generator only meets one
// if a consumer builds it directly.
type ForStmt struct {
	Initializer *VarDecl
	Condition   Expr
	Increment   Expr
	Body        Stmt
}

func (*ForStmt) isStmt() {}

type ReturnStmt struct {
	Value Expr // nil for a bare return
}

func (*ReturnStmt) isStmt() {}

type ExpressionStmt struct {
	Expression Expr
}

func (*ExpressionStmt) isStmt() {}

type BinaryExpr struct {
	Op    TokenKind
	Left  Expr
	Right Expr
}

func (*BinaryExpr) isExpr() {}

// Binary expressions promote to f64 when either side is floating,
// otherwise they default to i32.
func (b *BinaryExpr) ResultType() TokenKind {
	lt, rt := b.Left.ResultType(), b.Right.ResultType()
	if lt == F32 || lt == F64 || rt == F32 || rt == F64 {
		return F64
	}
	return I32
}

type AssignExpr struct {
	Op     TokenKind // EQUAL or PLUS_EQUAL
	Target Expr
	Value  Expr
}

func (*AssignExpr) isExpr() {}

func (a *AssignExpr) ResultType() TokenKind {
	return a.Target.ResultType()
}

type UnaryExpr struct {
	Op      TokenKind
	Operand Expr
}

func (*UnaryExpr) isExpr() {}

func (u *UnaryExpr) ResultType() TokenKind {
	return u.Operand.ResultType()
}

type CallExpr struct {
	Callee    Expr
	Arguments []Expr
}

func (*CallExpr) isExpr() {}

func (c *CallExpr) ResultType() TokenKind {
	return I32
}

type IdentifierExpr struct {
	Name string
}

func (*IdentifierExpr) isExpr() {}

func (i *IdentifierExpr) ResultType() TokenKind {
	return I32
}

// Literal keeps the exact lexeme it was scanned from; the generator
// re-parses it when materializing a constant.
type Literal struct {
	Type  TokenKind
	Value string
}

func (*Literal) isExpr() {}

func (l *Literal) ResultType() TokenKind {
	return l.Type
}

type GroupingExpr struct {
	Expression Expr
}

func (*GroupingExpr) isExpr() {}

func (g *GroupingExpr) ResultType() TokenKind {
	return g.Expression.ResultType()
}
