package main

import (
	"fmt"
	"io"
	"strings"
)

// ASTPrinter writes an indented structural dump of the tree. It is one of
// the two consumers of the node set; the switches below must cover every
// kind.
type ASTPrinter struct {
	out    io.Writer
	indent int
}

func NewASTPrinter(out io.Writer) *ASTPrinter {
	return &ASTPrinter{out: out}
}

func (p *ASTPrinter) Print(statements []Stmt) {
	for _, stmt := range statements {
		p.printStmt(stmt)
	}
}

func (p *ASTPrinter) line(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "%s%s\n", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

func (p *ASTPrinter) nested(fn func()) {
	p.indent++
	fn()
	p.indent--
}

func (p *ASTPrinter) printStmt(s Stmt) {
	switch node := s.(type) {
	case *BlockStmt:
		p.line("Block:")
		p.nested(func() {
			for _, stmt := range node.Statements {
				p.printStmt(stmt)
			}
		})
	case *FunctionDecl:
		p.line("Function: %s", node.Name)
		p.nested(func() {
			for _, param := range node.Params {
				p.line("Parameter: %s %s", param.Name, param.Type)
			}
			p.printStmt(node.Body)
		})
	case *VarDecl:
		p.line("VarDecl: %s", node.Name)
		p.nested(func() {
			if node.Initializer != nil {
				p.printExpr(node.Initializer)
			}
		})
	case *IfStmt:
		p.line("If:")
		p.nested(func() {
			p.printExpr(node.Condition)
			p.printStmt(node.ThenBranch)
			if node.ElseBranch != nil {
				p.printStmt(node.ElseBranch)
			}
		})
	case *WhileStmt:
		p.line("While:")
		p.nested(func() {
			p.printExpr(node.Condition)
			p.printStmt(node.Body)
		})
	case *ForStmt:
		p.line("For:")
		p.nested(func() {
			if node.Initializer != nil {
				p.printStmt(node.Initializer)
			}
			if node.Condition != nil {
				p.printExpr(node.Condition)
			}
			if node.Increment != nil {
				p.printExpr(node.Increment)
			}
			p.printStmt(node.Body)
		})
	case *ReturnStmt:
		p.line("Return:")
		p.nested(func() {
			if node.Value != nil {
				p.printExpr(node.Value)
			}
		})
	case *ExpressionStmt:
		p.line("ExpressionStmt:")
		p.nested(func() {
			p.printExpr(node.Expression)
		})
	default:
		panic(fmt.Sprintf("unhandled statement %T", s))
	}
}

func (p *ASTPrinter) printExpr(e Expr) {
	switch node := e.(type) {
	case *BinaryExpr:
		p.line("Binary: %s", node.Op)
		p.nested(func() {
			p.printExpr(node.Left)
			p.printExpr(node.Right)
		})
	case *AssignExpr:
		p.line("Assign: %s", node.Op)
		p.nested(func() {
			p.printExpr(node.Target)
			p.printExpr(node.Value)
		})
	case *UnaryExpr:
		p.line("Unary: %s", node.Op)
		p.nested(func() {
			p.printExpr(node.Operand)
		})
	case *CallExpr:
		p.line("Call:")
		p.nested(func() {
			p.printExpr(node.Callee)
			for _, arg := range node.Arguments {
				p.printExpr(arg)
			}
		})
	case *IdentifierExpr:
		p.line("Identifier: %s", node.Name)
	case *Literal:
		p.line("Literal: %s", node.Value)
	case *GroupingExpr:
		p.line("Grouping:")
		p.nested(func() {
			p.printExpr(node.Expression)
		})
	default:
		panic(fmt.Sprintf("unhandled expression %T", e))
	}
}

// exprSummary renders a one-line sketch of an expression for the
// diagnostics traceback.
func exprSummary(e Expr) string {
	switch node := e.(type) {
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", exprSummary(node.Left), node.Op, exprSummary(node.Right))
	case *AssignExpr:
		return fmt.Sprintf("(%s %s %s)", exprSummary(node.Target), node.Op, exprSummary(node.Value))
	case *UnaryExpr:
		return fmt.Sprintf("(%s %s)", node.Op, exprSummary(node.Operand))
	case *CallExpr:
		args := make([]string, len(node.Arguments))
		for i, arg := range node.Arguments {
			args[i] = exprSummary(arg)
		}
		return fmt.Sprintf("%s(%s)", exprSummary(node.Callee), strings.Join(args, ", "))
	case *IdentifierExpr:
		return node.Name
	case *Literal:
		return node.Value
	case *GroupingExpr:
		return "(" + exprSummary(node.Expression) + ")"
	default:
		panic(fmt.Sprintf("unhandled expression %T", e))
	}
}
