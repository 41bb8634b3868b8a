package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/cedar-lang/cedarc/diag"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// userMainName is what a user-declared main is renamed to so the real
// process entry point can be synthesized around it.
const userMainName = "cedar_main"

// CodeGenerator lowers the statement sequence into an LLVM module.
// Malformed constructs are reported through the diagnostics context and
// generation continues best-effort; callers must check the error channel
// before trusting the module.
type CodeGenerator struct {
	diag   *diag.Context
	module *ir.Module

	fn    *ir.Func
	block *ir.Block

	// namedValues maps identifiers to their stack slots. It is rebuilt
	// for every function and has no enclosing-scope chain.
	namedValues map[string]*ir.InstAlloca

	// funcs maps source-level function names to their declared
	// signatures, filled during the forward-declaration pass.
	funcs map[string]*ir.Func

	hasMain bool
}

func NewCodeGenerator(dc *diag.Context) *CodeGenerator {
	return &CodeGenerator{
		diag:   dc,
		module: ir.NewModule(),
		funcs:  make(map[string]*ir.Func),
	}
}

func (cg *CodeGenerator) Module() *ir.Module {
	return cg.module
}

// scalarType maps a primitive type keyword to its backend scalar type.
// Unsigned widths share storage with their signed counterparts; anything
// unmapped falls back to the default 32-bit integer.
func scalarType(kind TokenKind) types.Type {
	switch kind {
	case I8, U8:
		return types.I8
	case I16, U16:
		return types.I16
	case I32, U32:
		return types.I32
	case I64, U64:
		return types.I64
	case F32:
		return types.Float
	case F64:
		return types.Double
	case BOOL:
		return types.I1
	case VOID:
		return types.Void
	}
	return types.I32
}

// Generate runs two passes over the top level: a forward-declaration
// pass creating every function's signature, so forward references and
// mutual recursion resolve, then a body-emission pass.
func (cg *CodeGenerator) Generate(statements []Stmt) {
	for _, stmt := range statements {
		decl, ok := stmt.(*FunctionDecl)
		if !ok {
			continue
		}

		name := decl.Name
		if name == "main" {
			name = userMainName
			cg.hasMain = true
		}

		params := make([]*ir.Param, len(decl.Params))
		for i, param := range decl.Params {
			params[i] = ir.NewParam(param.Name, scalarType(param.Type))
		}

		cg.funcs[decl.Name] = cg.module.NewFunc(name, scalarType(decl.ReturnType), params...)
	}

	for _, stmt := range statements {
		if decl, ok := stmt.(*FunctionDecl); ok {
			cg.genFunction(decl)
		}
	}

	if cg.hasMain {
		cg.genMainWrapper()
	}

	registerMeta(buildMeta(statements), cg.module)
}

// WriteToFile serializes the module to the textual IR format. An
// unopenable path produces no artifact and no error.
func (cg *CodeGenerator) WriteToFile(path string) {
	out, err := os.Create(path)
	if err != nil {
		return
	}
	defer out.Close()

	out.WriteString(cg.module.String())
}

// genMainWrapper emits the platform entry point: main(argc, argv) calls
// the renamed user main with no arguments and returns its result.
func (cg *CodeGenerator) genMainWrapper() {
	userMain, ok := cg.funcs["main"]
	if !ok {
		cg.diag.Errorf("%s not found", userMainName)
		return
	}

	wrapper := cg.module.NewFunc("main", types.I32,
		ir.NewParam("argc", types.I32),
		ir.NewParam("argv", types.NewPointer(types.NewPointer(types.I8))))

	entry := wrapper.NewBlock("entry")
	result := entry.NewCall(userMain)
	entry.NewRet(result)
}

func (cg *CodeGenerator) genFunction(decl *FunctionDecl) {
	fn, ok := cg.funcs[decl.Name]
	if !ok {
		cg.diag.Errorf("Function not declared: %s", decl.Name)
		return
	}

	cg.fn = fn
	cg.block = fn.NewBlock("entry")
	cg.namedValues = make(map[string]*ir.InstAlloca)

	// Parameters are materialized into stack slots so they can be
	// assigned like any local.
	for i, param := range fn.Params {
		alloca := cg.block.NewAlloca(param.Typ)
		alloca.SetName(decl.Params[i].Name)
		cg.block.NewStore(param, alloca)
		cg.namedValues[decl.Params[i].Name] = alloca
	}

	cg.genStmt(decl.Body)

	// Only the final block is checked; there is no path analysis.
	if cg.block.Term == nil {
		if decl.ReturnType == VOID {
			cg.block.NewRet(nil)
		} else {
			cg.diag.Errorf("Function %s does not return a value", decl.Name)
			// The block must still terminate for the module to
			// serialize.
			cg.block.NewUnreachable()
		}
	}

	cg.fn = nil
	cg.block = nil
}

func (cg *CodeGenerator) genStmt(s Stmt) {
	switch node := s.(type) {
	case *BlockStmt:
		for _, stmt := range node.Statements {
			cg.genStmt(stmt)
		}
	case *FunctionDecl:
		cg.diag.Errorf("Nested function declarations are not supported: %s", node.Name)
	case *VarDecl:
		// A declaration without an initializer allocates nothing and
		// registers nothing; later references report unknown variable.
		if node.Initializer == nil {
			return
		}
		initValue := cg.genExpr(node.Initializer)
		if initValue == nil {
			return
		}
		alloca := cg.block.NewAlloca(scalarType(node.Type))
		alloca.SetName(node.Name)
		cg.block.NewStore(initValue, alloca)
		cg.namedValues[node.Name] = alloca
	case *IfStmt:
		cg.genIf(node)
	case *WhileStmt:
		cg.genWhile(node)
	case *ForStmt:
		cg.genFor(node)
	case *ReturnStmt:
		if node.Value != nil {
			if v := cg.genExpr(node.Value); v != nil {
				cg.block.NewRet(v)
			} else {
				// The value failed to lower and was already reported;
				// still terminate the block so generation can go on.
				cg.block.NewRet(nil)
			}
		} else {
			cg.block.NewRet(nil)
		}
	case *ExpressionStmt:
		cg.genExpr(node.Expression)
	default:
		panic("unhandled statement")
	}
}

func (cg *CodeGenerator) genIf(node *IfStmt) {
	cond := cg.genExpr(node.Condition)
	if cond == nil {
		cond = constant.False
	}

	thenBlock := cg.fn.NewBlock("then")
	elseBlock := cg.fn.NewBlock("else")
	mergeBlock := cg.fn.NewBlock("ifcont")

	cg.block.NewCondBr(cond, thenBlock, elseBlock)

	cg.block = thenBlock
	cg.genStmt(node.ThenBranch)
	cg.branchTo(mergeBlock)

	// The else arm is always emitted, possibly empty.
	cg.block = elseBlock
	if node.ElseBranch != nil {
		cg.genStmt(node.ElseBranch)
	}
	cg.branchTo(mergeBlock)

	cg.block = mergeBlock
}

// The condition is re-evaluated at the top of every iteration.
func (cg *CodeGenerator) genWhile(node *WhileStmt) {
	condBlock := cg.fn.NewBlock("loop_cond")
	bodyBlock := cg.fn.NewBlock("loop_body")
	afterBlock := cg.fn.NewBlock("after_loop")

	cg.block.NewBr(condBlock)

	cg.block = condBlock
	cond := cg.genExpr(node.Condition)
	if cond == nil {
		cond = constant.False
	}
	cg.block.NewCondBr(cond, bodyBlock, afterBlock)

	cg.block = bodyBlock
	cg.genStmt(node.Body)
	cg.branchTo(condBlock)

	cg.block = afterBlock
}

// genFor lowers a for node directly. The parser desugars every for loop
// into a while, so this only runs for trees built by hand.
func (cg *CodeGenerator) genFor(node *ForStmt) {
	if node.Initializer != nil {
		cg.genStmt(node.Initializer)
	}

	condBlock := cg.fn.NewBlock("loop_cond")
	bodyBlock := cg.fn.NewBlock("loop_body")
	afterBlock := cg.fn.NewBlock("after_loop")

	cg.block.NewBr(condBlock)

	cg.block = condBlock
	if node.Condition != nil {
		cond := cg.genExpr(node.Condition)
		if cond == nil {
			cond = constant.False
		}
		cg.block.NewCondBr(cond, bodyBlock, afterBlock)
	} else {
		cg.block.NewBr(bodyBlock)
	}

	cg.block = bodyBlock
	cg.genStmt(node.Body)
	if node.Increment != nil {
		cg.genExpr(node.Increment)
	}
	cg.branchTo(condBlock)

	cg.block = afterBlock
}

// branchTo terminates the current block with a jump unless a return (or
// other terminator) already ended it.
func (cg *CodeGenerator) branchTo(target *ir.Block) {
	if cg.block.Term == nil {
		cg.block.NewBr(target)
	}
}

func (cg *CodeGenerator) genExpr(e Expr) value.Value {
	if cg.fn != nil {
		cg.diag.PushExpression(cg.fn.Name(), exprSummary(e))
	}

	switch node := e.(type) {
	case *Literal:
		return cg.genLiteral(node)
	case *IdentifierExpr:
		alloca, ok := cg.namedValues[node.Name]
		if !ok {
			cg.diag.Errorf("Unknown variable: %s", node.Name)
			return nil
		}
		return cg.block.NewLoad(alloca.ElemType, alloca)
	case *BinaryExpr:
		return cg.genBinary(node)
	case *AssignExpr:
		return cg.genAssign(node)
	case *UnaryExpr:
		return cg.genUnary(node)
	case *CallExpr:
		return cg.genCall(node)
	case *GroupingExpr:
		return cg.genExpr(node.Expression)
	default:
		panic("unhandled expression")
	}
}

func (cg *CodeGenerator) genLiteral(node *Literal) value.Value {
	switch node.Type {
	case INT_LITERAL:
		n, err := strconv.ParseInt(cleanNumber(node.Value), 0, 64)
		if err != nil {
			cg.diag.Errorf("Invalid integer literal: %s", node.Value)
			return constant.NewInt(types.I32, 0)
		}
		return constant.NewInt(types.I32, n)
	case FLOAT_LITERAL:
		f, err := strconv.ParseFloat(cleanNumber(node.Value), 64)
		if err != nil {
			cg.diag.Errorf("Invalid float literal: %s", node.Value)
			return constant.NewFloat(types.Float, 0)
		}
		return constant.NewFloat(types.Float, f)
	case TRUE:
		return constant.True
	case FALSE:
		return constant.False
	default:
		// String and char literals are not lowered yet.
		return constant.NewInt(types.I32, 0)
	}
}

// cleanNumber strips the digit separators the lexer allowed anywhere in
// a numeric run.
func cleanNumber(lexeme string) string {
	return strings.ReplaceAll(lexeme, "_", "")
}

func isIntValue(v value.Value) bool {
	_, ok := v.Type().(*types.IntType)
	return ok
}

func (cg *CodeGenerator) genBinary(node *BinaryExpr) value.Value {
	if node.Op == QUESTION {
		return cg.genTernary(node)
	}
	if node.Op == COLON {
		cg.diag.Errorf("Malformed ternary expression")
		return nil
	}

	left := cg.genExpr(node.Left)
	right := cg.genExpr(node.Right)
	if left == nil || right == nil {
		return nil
	}

	// Integer vs floating dispatch follows the operands' realized
	// backend types, not the declared source types.
	useInt := isIntValue(left) && isIntValue(right)

	switch node.Op {
	case PLUS:
		if useInt {
			return cg.block.NewAdd(left, right)
		}
		return cg.block.NewFAdd(left, right)
	case MINUS:
		if useInt {
			return cg.block.NewSub(left, right)
		}
		return cg.block.NewFSub(left, right)
	case STAR:
		if useInt {
			return cg.block.NewMul(left, right)
		}
		return cg.block.NewFMul(left, right)
	case SLASH:
		if useInt {
			return cg.block.NewSDiv(left, right)
		}
		return cg.block.NewFDiv(left, right)
	case PERCENT:
		if useInt {
			return cg.block.NewSRem(left, right)
		}
		return cg.block.NewFRem(left, right)
	case EQUAL_EQUAL:
		if useInt {
			return cg.block.NewICmp(enum.IPredEQ, left, right)
		}
		return cg.block.NewFCmp(enum.FPredOEQ, left, right)
	case BANG_EQUAL:
		if useInt {
			return cg.block.NewICmp(enum.IPredNE, left, right)
		}
		return cg.block.NewFCmp(enum.FPredONE, left, right)
	case LESS:
		if useInt {
			return cg.block.NewICmp(enum.IPredSLT, left, right)
		}
		return cg.block.NewFCmp(enum.FPredOLT, left, right)
	case LESS_EQUAL:
		if useInt {
			return cg.block.NewICmp(enum.IPredSLE, left, right)
		}
		return cg.block.NewFCmp(enum.FPredOLE, left, right)
	case GREATER:
		if useInt {
			return cg.block.NewICmp(enum.IPredSGT, left, right)
		}
		return cg.block.NewFCmp(enum.FPredOGT, left, right)
	case GREATER_EQUAL:
		if useInt {
			return cg.block.NewICmp(enum.IPredSGE, left, right)
		}
		return cg.block.NewFCmp(enum.FPredOGE, left, right)
	case AMPERSAND_AMP:
		return cg.block.NewAnd(left, right)
	case PIPE_PIPE:
		return cg.block.NewOr(left, right)
	}

	cg.diag.Errorf("Unsupported binary operator: %s", node.Op)
	return nil
}

// genTernary lowers the QUESTION/COLON marker pair to a conditional
// branch joined by a phi.
func (cg *CodeGenerator) genTernary(node *BinaryExpr) value.Value {
	arms, ok := node.Right.(*BinaryExpr)
	if !ok || arms.Op != COLON {
		cg.diag.Errorf("Malformed ternary expression")
		return nil
	}

	cond := cg.genExpr(node.Left)
	if cond == nil {
		cond = constant.False
	}

	thenBlock := cg.fn.NewBlock("then")
	elseBlock := cg.fn.NewBlock("else")
	mergeBlock := cg.fn.NewBlock("ifcont")

	cg.block.NewCondBr(cond, thenBlock, elseBlock)

	cg.block = thenBlock
	thenValue := cg.genExpr(arms.Left)
	if thenValue == nil {
		thenValue = constant.NewInt(types.I32, 0)
	}
	thenEnd := cg.block
	cg.branchTo(mergeBlock)

	cg.block = elseBlock
	elseValue := cg.genExpr(arms.Right)
	if elseValue == nil {
		elseValue = constant.NewInt(types.I32, 0)
	}
	elseEnd := cg.block
	cg.branchTo(mergeBlock)

	cg.block = mergeBlock
	return mergeBlock.NewPhi(ir.NewIncoming(thenValue, thenEnd), ir.NewIncoming(elseValue, elseEnd))
}

func (cg *CodeGenerator) genAssign(node *AssignExpr) value.Value {
	v := cg.genExpr(node.Value)
	if v == nil {
		return nil
	}

	target, ok := node.Target.(*IdentifierExpr)
	if !ok {
		cg.diag.Errorf("Invalid assignment target")
		return nil
	}

	alloca, ok := cg.namedValues[target.Name]
	if !ok {
		cg.diag.Errorf("Undefined variable: %s", target.Name)
		return nil
	}

	if node.Op == PLUS_EQUAL {
		current := cg.block.NewLoad(alloca.ElemType, alloca)
		if isIntValue(current) && isIntValue(v) {
			v = cg.block.NewAdd(current, v)
		} else {
			v = cg.block.NewFAdd(current, v)
		}
	}

	cg.block.NewStore(v, alloca)
	return v
}

func (cg *CodeGenerator) genUnary(node *UnaryExpr) value.Value {
	switch node.Op {
	case MINUS:
		operand := cg.genExpr(node.Operand)
		if operand == nil {
			return nil
		}
		if intType, ok := operand.Type().(*types.IntType); ok {
			return cg.block.NewSub(constant.NewInt(intType, 0), operand)
		}
		return cg.block.NewFNeg(operand)
	case BANG:
		operand := cg.genExpr(node.Operand)
		if operand == nil {
			return nil
		}
		if intType, ok := operand.Type().(*types.IntType); ok {
			return cg.block.NewXor(operand, constant.NewInt(intType, -1))
		}
		cg.diag.Errorf("Operand of '!' is not an integer")
		return nil
	case PLUS_PLUS:
		// Increment wants a storage location, so the operand must be
		// a plain identifier.
		target, ok := node.Operand.(*IdentifierExpr)
		if !ok {
			cg.diag.Errorf("Operand of '++' is not assignable")
			return nil
		}
		alloca, ok := cg.namedValues[target.Name]
		if !ok {
			cg.diag.Errorf("Unknown variable: %s", target.Name)
			return nil
		}
		current := cg.block.NewLoad(alloca.ElemType, alloca)
		// The increment constant takes the slot's own width.
		var next value.Value
		switch slotType := current.Type().(type) {
		case *types.IntType:
			next = cg.block.NewAdd(current, constant.NewInt(slotType, 1))
		case *types.FloatType:
			next = cg.block.NewFAdd(current, constant.NewFloat(slotType, 1))
		default:
			cg.diag.Errorf("Operand of '++' is not numeric")
			return nil
		}
		cg.block.NewStore(next, alloca)
		return next
	}

	cg.diag.Errorf("Unsupported unary operator: %s", node.Op)
	return nil
}

// Arguments are evaluated left to right before the callee is resolved.
func (cg *CodeGenerator) genCall(node *CallExpr) value.Value {
	args := make([]value.Value, 0, len(node.Arguments))
	for _, arg := range node.Arguments {
		v := cg.genExpr(arg)
		if v == nil {
			v = constant.NewInt(types.I32, 0)
		}
		args = append(args, v)
	}

	callee, ok := node.Callee.(*IdentifierExpr)
	if !ok {
		cg.diag.Errorf("Call to non-function")
		return nil
	}

	fn, ok := cg.funcs[callee.Name]
	if !ok {
		cg.diag.Errorf("Call to undefined function: %s", callee.Name)
		return nil
	}

	return cg.block.NewCall(fn, args...)
}
