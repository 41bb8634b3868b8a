package main

import (
	"io/ioutil"
	"reflect"
	"strings"
	"testing"

	"github.com/cedar-lang/cedarc/diag"
)

func testDiag() *diag.Context {
	dc := diag.NewContext()
	dc.Out = ioutil.Discard
	dc.Err = ioutil.Discard
	dc.Exit = func(int) { panic("unexpected critical diagnostic") }
	return dc
}

func parse(t *testing.T, src string) ([]Stmt, *Parser) {
	t.Helper()

	p := NewParser(NewLexer(src), testDiag())
	return p.Parse(), p
}

func parseValid(t *testing.T, src string) []Stmt {
	t.Helper()

	statements, p := parse(t, src)
	if p.HadError() {
		t.Fatalf("unexpected parse errors in %q", src)
	}
	if len(statements) == 0 {
		t.Fatalf("no statements parsed from %q", src)
	}
	return statements
}

func singleExpr(t *testing.T, src string) Expr {
	t.Helper()

	statements := parseValid(t, src)
	stmt, ok := statements[0].(*ExpressionStmt)
	if !ok {
		t.Fatalf("got %T, want expression statement", statements[0])
	}
	return stmt.Expression
}

// The first token is primed at construction; a parser that never pulls
// a token would report success over an empty tree.
func TestParseSingleDeclaration(t *testing.T) {
	statements, p := parse(t, "var x: i32 = 1;")

	if p.HadError() {
		t.Fatal("unexpected parse errors")
	}
	if len(statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(statements))
	}
	if decl, ok := statements[0].(*VarDecl); !ok || decl.Name != "x" {
		t.Errorf("got %#v, want var x", statements[0])
	}
}

func TestPrecedenceMulBindsTighter(t *testing.T) {
	expr := singleExpr(t, "1+2*3;")

	want := &BinaryExpr{
		Op:   PLUS,
		Left: &Literal{Type: INT_LITERAL, Value: "1"},
		Right: &BinaryExpr{
			Op:    STAR,
			Left:  &Literal{Type: INT_LITERAL, Value: "2"},
			Right: &Literal{Type: INT_LITERAL, Value: "3"},
		},
	}
	if !reflect.DeepEqual(expr, want) {
		t.Errorf("got %#v", expr)
	}
}

func TestPrecedenceLadder(t *testing.T) {
	// a = b || c && d == e < f + g * !h
	expr := singleExpr(t, "a = b || c && d == e < f + g * !h;")

	assign, ok := expr.(*AssignExpr)
	if !ok {
		t.Fatalf("top is %T, want assignment", expr)
	}
	or, ok := assign.Value.(*BinaryExpr)
	if !ok || or.Op != PIPE_PIPE {
		t.Fatalf("below assignment is %#v, want ||", assign.Value)
	}
	and, ok := or.Right.(*BinaryExpr)
	if !ok || and.Op != AMPERSAND_AMP {
		t.Fatalf("below || is %#v, want &&", or.Right)
	}
	eq, ok := and.Right.(*BinaryExpr)
	if !ok || eq.Op != EQUAL_EQUAL {
		t.Fatalf("below && is %#v, want ==", and.Right)
	}
	cmp, ok := eq.Right.(*BinaryExpr)
	if !ok || cmp.Op != LESS {
		t.Fatalf("below == is %#v, want <", eq.Right)
	}
	add, ok := cmp.Right.(*BinaryExpr)
	if !ok || add.Op != PLUS {
		t.Fatalf("below < is %#v, want +", cmp.Right)
	}
	mul, ok := add.Right.(*BinaryExpr)
	if !ok || mul.Op != STAR {
		t.Fatalf("below + is %#v, want *", add.Right)
	}
	if _, ok := mul.Right.(*UnaryExpr); !ok {
		t.Fatalf("below * is %#v, want unary", mul.Right)
	}
}

func TestGroupingOverridesPrecedence(t *testing.T) {
	expr := singleExpr(t, "(1+2)*3;")

	mul, ok := expr.(*BinaryExpr)
	if !ok || mul.Op != STAR {
		t.Fatalf("top is %#v, want *", expr)
	}
	if _, ok := mul.Left.(*GroupingExpr); !ok {
		t.Fatalf("left of * is %T, want grouping", mul.Left)
	}
}

func TestTernaryShape(t *testing.T) {
	expr := singleExpr(t, "a ? 1 : 2;")

	want := &BinaryExpr{
		Op:   QUESTION,
		Left: &IdentifierExpr{Name: "a"},
		Right: &BinaryExpr{
			Op:    COLON,
			Left:  &Literal{Type: INT_LITERAL, Value: "1"},
			Right: &Literal{Type: INT_LITERAL, Value: "2"},
		},
	}
	if !reflect.DeepEqual(expr, want) {
		t.Errorf("got %#v", expr)
	}
}

func TestForDesugarsToWhile(t *testing.T) {
	statements := parseValid(t, "for (var i: i32 = 0; i < 3; i++) { s; }")

	want := &BlockStmt{Statements: []Stmt{
		&VarDecl{
			Type:        I32,
			Name:        "i",
			Initializer: &Literal{Type: INT_LITERAL, Value: "0"},
		},
		&WhileStmt{
			Condition: &BinaryExpr{
				Op:    LESS,
				Left:  &IdentifierExpr{Name: "i"},
				Right: &Literal{Type: INT_LITERAL, Value: "3"},
			},
			Body: &BlockStmt{Statements: []Stmt{
				&BlockStmt{Statements: []Stmt{
					&ExpressionStmt{Expression: &IdentifierExpr{Name: "s"}},
				}},
				&ExpressionStmt{Expression: &UnaryExpr{
					Op:      PLUS_PLUS,
					Operand: &IdentifierExpr{Name: "i"},
				}},
			}},
		},
	}}

	if len(statements) != 1 || !reflect.DeepEqual(statements[0], want) {
		t.Errorf("got %#v", statements[0])
	}
}

// With no initializer and no condition the loop collapses to a bare
// while over literal true.
func TestForWithoutClauses(t *testing.T) {
	statements := parseValid(t, "for (;;) { }")

	want := &WhileStmt{
		Condition: &Literal{Type: TRUE, Value: "true"},
		Body:      &BlockStmt{},
	}
	if !reflect.DeepEqual(statements[0], want) {
		t.Errorf("got %#v", statements[0])
	}
}

func TestFunctionDecl(t *testing.T) {
	statements := parseValid(t, "func add(a: i32, b: i32) -> i32 { return a + b; }")

	decl, ok := statements[0].(*FunctionDecl)
	if !ok {
		t.Fatalf("got %T, want function declaration", statements[0])
	}
	if decl.Name != "add" || decl.ReturnType != I32 {
		t.Errorf("got %s -> %s", decl.Name, decl.ReturnType)
	}
	wantParams := []Parameter{{Name: "a", Type: I32}, {Name: "b", Type: I32}}
	if !reflect.DeepEqual(decl.Params, wantParams) {
		t.Errorf("params: got %#v", decl.Params)
	}
	if len(decl.Body.Statements) != 1 {
		t.Errorf("body has %d statements", len(decl.Body.Statements))
	}
}

func TestFunctionWithoutArrowReturnsVoid(t *testing.T) {
	statements := parseValid(t, "func f() { }")

	if decl := statements[0].(*FunctionDecl); decl.ReturnType != VOID {
		t.Errorf("got %s, want VOID", decl.ReturnType)
	}
}

func TestIfElse(t *testing.T) {
	statements := parseValid(t, "if (a) { b; } else { c; }")

	stmt := statements[0].(*IfStmt)
	if stmt.ElseBranch == nil {
		t.Error("else branch missing")
	}

	statements = parseValid(t, "if (a) { b; }")
	if stmt := statements[0].(*IfStmt); stmt.ElseBranch != nil {
		t.Error("else branch should be nil")
	}
}

func TestVarAndConst(t *testing.T) {
	statements := parseValid(t, "var x: i32 = 1; const y: f64 = 2.0;")

	v := statements[0].(*VarDecl)
	if v.IsConst || v.Type != I32 || v.Name != "x" {
		t.Errorf("var: got %#v", v)
	}
	c := statements[1].(*VarDecl)
	if !c.IsConst || c.Type != F64 || c.Name != "y" {
		t.Errorf("const: got %#v", c)
	}
}

func TestVarWithoutInitializer(t *testing.T) {
	statements := parseValid(t, "var x: i32;")

	if v := statements[0].(*VarDecl); v.Initializer != nil {
		t.Errorf("got initializer %#v", v.Initializer)
	}
}

func TestConstRequiresInitializer(t *testing.T) {
	_, p := parse(t, "const x: i32;")
	if !p.HadError() {
		t.Error("expected an error for uninitialized const")
	}
}

func TestInvalidAssignmentTargetRecovers(t *testing.T) {
	statements, p := parse(t, "1 = 2;")

	if !p.HadError() {
		t.Error("expected an error for non-identifier assignment target")
	}
	// Parsing must continue and still yield the statement.
	if len(statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(statements))
	}
}

// A failed primary unwinds to the declaration loop, which resynchronizes
// at the next restart keyword and keeps parsing.
func TestPanicModeRecovery(t *testing.T) {
	statements, p := parse(t, "1 + ; func g() -> i32 { return 1; }")

	if !p.HadError() {
		t.Error("expected a syntax error")
	}
	if len(statements) != 1 {
		t.Fatalf("got %d statements, want the recovered function", len(statements))
	}
	if decl, ok := statements[0].(*FunctionDecl); !ok || decl.Name != "g" {
		t.Errorf("got %#v, want func g", statements[0])
	}
}

func TestLexicalErrorIsReported(t *testing.T) {
	_, p := parse(t, "var x: i32 = @;")
	if !p.HadError() {
		t.Error("expected the ERROR token to be reported")
	}
}

func TestChainedCalls(t *testing.T) {
	expr := singleExpr(t, "f(1)(2);")

	outer, ok := expr.(*CallExpr)
	if !ok {
		t.Fatalf("got %T, want call", expr)
	}
	inner, ok := outer.Callee.(*CallExpr)
	if !ok {
		t.Fatalf("callee is %T, want call", outer.Callee)
	}
	if _, ok := inner.Callee.(*IdentifierExpr); !ok {
		t.Fatalf("inner callee is %T, want identifier", inner.Callee)
	}
}

func TestParserValidProgramNoErrors(t *testing.T) {
	src := `
		func fib(n: i32) -> i32 {
			if (n < 2) { return n; }
			return fib(n - 1) + fib(n - 2);
		}

		func main() -> i32 {
			var total: i32 = 0;
			for (var i: i32 = 0; i < 10; i++) {
				total += fib(i);
			}
			return total;
		}
	`
	statements, p := parse(t, src)
	if p.HadError() {
		t.Fatal("unexpected parse errors")
	}
	if len(statements) != 2 {
		t.Fatalf("got %d top-level statements, want 2", len(statements))
	}
}

func TestPrinterOutput(t *testing.T) {
	statements := parseValid(t, "func f() -> i32 { return 1 + 2; }")

	var sb strings.Builder
	NewASTPrinter(&sb).Print(statements)

	want := "Function: f\n" +
		"  Block:\n" +
		"    Return:\n" +
		"      Binary: PLUS\n" +
		"        Literal: 1\n" +
		"        Literal: 2\n"
	if sb.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", sb.String(), want)
	}
}
