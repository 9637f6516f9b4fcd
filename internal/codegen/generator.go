package codegen

import (
	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/symbols"
	"github.com/lightbasic/lbc/internal/types"
)

// loopFrame pairs an open FOR/DO loop with the blocks EXIT and CONTINUE
// jump to, looked up by the exact node ContinuationStmt.Target resolved
// to during semantic analysis.
type loopFrame struct {
	node          ast.Node
	breakBlock    Block
	continueBlock Block
}

// Generator walks a fully analyzed *ast.Module and drives a Backend,
// implementing the lowering contracts this package assigns to
// codegen: short-circuit logical operators become cond→phi CFGs, FOR
// loops lower per their analyzer-determined Direction, a global whose
// initializer didn't fold to a constant is assigned inside a
// synthesized module constructor, and every named symbol is emitted
// under Symbol.Identifier() (the ALIAS if one was declared) with
// linkage taken from Symbol.ExternalLinkage — Generator resolves that
// decision once per symbol; Backend never re-derives it.
type Generator struct {
	backend Backend
	tc      *types.Context

	globals   map[*symbols.Symbol]Global
	functions map[*symbols.Symbol]Function
	addrs     map[*symbols.Symbol]Value // local/parameter addresses, reset per function

	hasDeferredInit bool
	loopStack       []loopFrame
	curBlock        Block
}

// New creates a Generator over backend, resolving types.LLVMMemo-backed
// lowering decisions (if the backend uses it) through tc — the same
// Context the semantic analyzer used, so canonical types compare equal
// by pointer identity here too.
func New(backend Backend, tc *types.Context) *Generator {
	return &Generator{
		backend:   backend,
		tc:        tc,
		globals:   make(map[*symbols.Symbol]Global),
		functions: make(map[*symbols.Symbol]Function),
	}
}

// Generate emits mod: every global and function signature first (so
// forward references across top-level declarations resolve), then
// every function body, then — if any global initializer needed one —
// the synthesized module constructor. implicitMain is the analyzer's
// synthesized FUNCTION MAIN (sema.Analyzer.ImplicitMain()), since that
// node is never spliced back into mod.Statements; pass nil when the
// module declared its own MAIN or was compiled with -no-main.
func (g *Generator) Generate(mod *ast.Module, implicitMain *ast.FuncDecl) {
	g.backend.BeginModule(mod.FileID)

	var funcs []*ast.FuncDecl
	for _, s := range mod.Statements {
		switch n := s.(type) {
		case *ast.VarDecl:
			g.declareGlobal(n)
		case *ast.FunctionStmt:
			g.declareFunction(n.Decl)
			funcs = append(funcs, n.Decl)
		case *ast.FuncDecl:
			g.declareFunction(n)
			funcs = append(funcs, n)
		}
	}
	if implicitMain != nil {
		g.declareFunction(implicitMain)
		funcs = append(funcs, implicitMain)
	}

	for _, d := range funcs {
		if d.Body != nil {
			g.defineFunction(d)
		}
	}

	if g.hasDeferredInit {
		g.backend.EnterModuleConstructor()
		g.backend.LeaveModuleConstructor()
	}

	g.backend.EndModule()
}

func (g *Generator) setBlock(b Block) {
	g.backend.SetInsertPoint(b)
	g.curBlock = b
}

func (g *Generator) declareGlobal(d *ast.VarDecl) {
	sym := d.Symbol
	global := g.backend.DeclareGlobal(sym.Identifier(), sym.Type, sym.ExternalLinkage)
	g.globals[sym] = global

	if d.Init == nil {
		return
	}
	if lit, ok := d.Init.(*ast.LiteralExpr); ok {
		g.backend.GlobalConstInit(global, g.genLiteral(lit))
		return
	}

	g.hasDeferredInit = true
	init := d.Init
	g.backend.GlobalDeferredInit(global, func() {
		v := g.genExpr(init)
		g.backend.Store(g.backend.GlobalAddr(global), v)
	})
}

func (g *Generator) declareFunction(d *ast.FuncDecl) {
	sig, ok := d.Symbol.Type.(*types.FunctionType)
	if !ok {
		return
	}
	g.functions[d.Symbol] = g.backend.DeclareFunction(d.Symbol.Identifier(), sig, d.Symbol.ExternalLinkage)
}

func (g *Generator) defineFunction(d *ast.FuncDecl) {
	fn := g.functions[d.Symbol]
	g.addrs = make(map[*symbols.Symbol]Value)

	params := g.backend.BeginFunctionBody(fn)
	for i, p := range d.Params {
		if i >= len(params) {
			break
		}
		addr := g.backend.Alloca(p.Name, p.Symbol.Type)
		g.backend.Store(addr, params[i])
		g.addrs[p.Symbol] = addr
	}

	g.genStmtList(d.Body)
	g.backend.EndFunctionBody()
}

func (g *Generator) genStmtList(list *ast.StmtList) {
	for _, s := range list.Stmts {
		g.genStmt(s)
	}
}

func (g *Generator) genStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDecl:
		g.genLocalVarDecl(n)
	case *ast.ExprStmt:
		g.genExpr(n.X)
	case *ast.AssignStmt:
		addr := g.genAddr(n.LHS)
		g.backend.Store(addr, g.genExpr(n.RHS))
	case *ast.IfStmt:
		g.genIf(n)
	case *ast.ForStmt:
		g.genFor(n)
	case *ast.DoLoopStmt:
		g.genDoLoop(n)
	case *ast.ReturnStmt:
		if n.Value != nil {
			v := g.genExpr(n.Value)
			g.backend.Return(&v)
		} else {
			g.backend.Return(nil)
		}
	case *ast.ContinuationStmt:
		g.genContinuation(n)
	case *ast.StmtList:
		g.genStmtList(n)
	}
}

func (g *Generator) genLocalVarDecl(d *ast.VarDecl) {
	addr := g.backend.Alloca(d.Name, d.Symbol.Type)
	g.addrs[d.Symbol] = addr
	if d.Init != nil {
		g.backend.Store(addr, g.genExpr(d.Init))
	}
}

// genIf lowers an ordered IfBlock list: each conditioned arm branches
// between a fresh "then" block and either the next arm's test or the
// shared exit block; a trailing unconditioned (ELSE) arm always runs
// in whichever block control reached it through.
func (g *Generator) genIf(n *ast.IfStmt) {
	exit := g.backend.NewBlock("if.end")
	for i := range n.Blocks {
		b := &n.Blocks[i]
		for _, d := range b.LocalDecls {
			g.genLocalVarDecl(d)
		}

		if b.Condition == nil {
			g.genStmtList(b.Body)
			g.backend.Branch(exit)
			break
		}

		cond := g.genExpr(b.Condition)
		thenBlock := g.backend.NewBlock("if.then")
		next := exit
		if i+1 < len(n.Blocks) {
			next = g.backend.NewBlock("if.next")
		}
		g.backend.CondBranch(cond, thenBlock, next)

		g.setBlock(thenBlock)
		g.genStmtList(b.Body)
		g.backend.Branch(exit)

		g.setBlock(next)
	}
	g.setBlock(exit)
}

// genFor lowers a FOR loop per its analyzer-determined Direction.
// DirSkip emits only the exit edge: the iterator is initialized but
// the body, proven unreachable at analysis time, never runs.
// DirIncrement/DirDecrement fix the loop-continuation test at compile
// time; DirUnknown instead computes it once, at loop entry, from a
// runtime `to >= from` comparison.
func (g *Generator) genFor(n *ast.ForStmt) {
	iterType := n.IteratorDecl.Symbol.Type
	iterAddr := g.backend.Alloca(n.IteratorDecl.Name, iterType)
	g.addrs[n.IteratorDecl.Symbol] = iterAddr
	g.backend.Store(iterAddr, g.genExpr(n.From))

	if n.Direction == ast.DirSkip {
		return
	}

	toVal := g.genExpr(n.To)
	stepVal := g.backend.ConstInt(iterType, 1)
	if n.Direction == ast.DirDecrement {
		stepVal = g.backend.ConstInt(iterType, -1)
	}
	if n.Step != nil {
		stepVal = g.genExpr(n.Step)
	}

	boolT := g.tc.Boolean()
	var ascending Value
	switch n.Direction {
	case ast.DirIncrement:
		ascending = g.backend.ConstBool(true)
	case ast.DirDecrement:
		ascending = g.backend.ConstBool(false)
	default:
		ascending = g.backend.BinaryOp(ast.OpGreaterEqual, toVal, g.backend.Load(iterAddr), boolT)
	}
	descending := g.backend.UnaryOp(ast.OpNot, ascending, boolT)

	header := g.backend.NewBlock("for.cond")
	body := g.backend.NewBlock("for.body")
	latch := g.backend.NewBlock("for.latch")
	exit := g.backend.NewBlock("for.exit")

	g.backend.Branch(header)
	g.setBlock(header)
	iterVal := g.backend.Load(iterAddr)
	ascOK := g.backend.BinaryOp(ast.OpAnd, ascending, g.backend.BinaryOp(ast.OpLessEqual, iterVal, toVal, boolT), boolT)
	descOK := g.backend.BinaryOp(ast.OpAnd, descending, g.backend.BinaryOp(ast.OpGreaterEqual, iterVal, toVal, boolT), boolT)
	notDone := g.backend.BinaryOp(ast.OpOr, ascOK, descOK, boolT)
	g.backend.CondBranch(notDone, body, exit)

	g.setBlock(body)
	g.loopStack = append(g.loopStack, loopFrame{node: n, breakBlock: exit, continueBlock: latch})
	g.genStmtList(n.Body)
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
	g.backend.Branch(latch)

	g.setBlock(latch)
	next := g.backend.BinaryOp(ast.OpAdd, g.backend.Load(iterAddr), stepVal, iterType)
	g.backend.Store(iterAddr, next)
	g.backend.Branch(header)

	g.setBlock(exit)
}

// genDoLoop lowers the four tested DO/LOOP placements plus the
// untested `DO ... LOOP` form: header tests a pre-condition if one
// exists (falling straight into the body otherwise), the body runs,
// and latch tests a post-condition if one exists (looping back
// unconditionally otherwise). UNTIL tests are negated so every test
// reduces to "keep looping while true".
func (g *Generator) genDoLoop(n *ast.DoLoopStmt) {
	boolT := g.tc.Boolean()
	header := g.backend.NewBlock("do.header")
	body := g.backend.NewBlock("do.body")
	latch := g.backend.NewBlock("do.latch")
	exit := g.backend.NewBlock("do.exit")

	g.backend.Branch(header)
	g.setBlock(header)
	if n.PreCondition != nil {
		cond := g.genExpr(n.PreCondition)
		if n.LoopKind == ast.DoLoopPreUntil {
			cond = g.backend.UnaryOp(ast.OpNot, cond, boolT)
		}
		g.backend.CondBranch(cond, body, exit)
	} else {
		g.backend.Branch(body)
	}

	g.setBlock(body)
	g.loopStack = append(g.loopStack, loopFrame{node: n, breakBlock: exit, continueBlock: latch})
	g.genStmtList(n.Body)
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
	g.backend.Branch(latch)

	g.setBlock(latch)
	if n.PostCondition != nil {
		cond := g.genExpr(n.PostCondition)
		if n.LoopKind == ast.DoLoopPostUntil {
			cond = g.backend.UnaryOp(ast.OpNot, cond, boolT)
		}
		g.backend.CondBranch(cond, header, exit)
	} else {
		g.backend.Branch(header)
	}

	g.setBlock(exit)
}

func (g *Generator) genContinuation(n *ast.ContinuationStmt) {
	for i := len(g.loopStack) - 1; i >= 0; i-- {
		if g.loopStack[i].node == n.Target {
			if n.ContKind == ast.ExitStmt {
				g.backend.Branch(g.loopStack[i].breakBlock)
			} else {
				g.backend.Branch(g.loopStack[i].continueBlock)
			}
			return
		}
	}
}

func (g *Generator) genExpr(e ast.Expr) Value {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return g.genLiteral(n)
	case *ast.IdentExpr:
		return g.genIdent(n)
	case *ast.CallExpr:
		return g.genCall(n)
	case *ast.UnaryExpr:
		return g.backend.UnaryOp(n.Op, g.genExpr(n.X), n.GetType())
	case *ast.BinaryExpr:
		return g.genBinary(n)
	case *ast.AssignExpr:
		addr := g.genAddr(n.LHS)
		v := g.genExpr(n.RHS)
		g.backend.Store(addr, v)
		return v
	case *ast.CastExpr:
		return g.backend.Cast(g.genExpr(n.X), n.GetType())
	case *ast.IfExpr:
		return g.genIfExpr(n)
	case *ast.DerefExpr:
		return g.backend.Load(g.genExpr(n.X))
	case *ast.AddressOfExpr:
		return g.genAddr(n.X)
	case *ast.MemberExpr:
		return g.backend.Load(g.genMemberAddr(n))
	default:
		return Value{}
	}
}

func (g *Generator) genLiteral(n *ast.LiteralExpr) Value {
	t := n.GetType()
	switch n.LitKind {
	case ast.LitInteger:
		return g.backend.ConstInt(t, int64(n.U64))
	case ast.LitFloat:
		return g.backend.ConstFloat(t, n.F64)
	case ast.LitBool:
		return g.backend.ConstBool(n.Bool)
	case ast.LitString:
		return g.backend.ConstString(n.Str)
	default:
		return g.backend.ConstNull(t)
	}
}

func (g *Generator) genIdent(n *ast.IdentExpr) Value {
	if n.Symbol.IsCallable() {
		if fn, ok := g.functions[n.Symbol]; ok {
			return Value{Handle: fn.Handle, Type: n.Symbol.Type}
		}
	}
	return g.backend.Load(g.addrOf(n.Symbol))
}

func (g *Generator) genCall(n *ast.CallExpr) Value {
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = g.genExpr(a)
	}
	if ident, ok := n.Callee.(*ast.IdentExpr); ok {
		if fn, ok := g.functions[ident.Symbol]; ok {
			return g.backend.Call(fn, args)
		}
	}
	callee := g.genExpr(n.Callee)
	sig, _ := exprType(n.Callee).(*types.FunctionType)
	return g.backend.CallIndirect(callee, sig, args)
}

// genBinary lowers AND/OR to a short-circuit cond→phi CFG, dispatches
// pointer `+`/`-` to the scaled-GEP contract, and otherwise emits a
// plain operator.
func (g *Generator) genBinary(n *ast.BinaryExpr) Value {
	if n.Op.Classify() == ast.KindLogical {
		return g.genLogical(n)
	}

	lhs := g.genExpr(n.LHS)
	rhs := g.genExpr(n.RHS)
	if n.PointerElemSize != 0 {
		return g.genPointerArith(n, lhs, rhs)
	}
	return g.backend.BinaryOp(n.Op, lhs, rhs, n.GetType())
}

func (g *Generator) genLogical(n *ast.BinaryExpr) Value {
	lhs := g.genExpr(n.LHS)
	entry := g.curBlock

	rhsBlock := g.backend.NewBlock("logic.rhs")
	mergeBlock := g.backend.NewBlock("logic.merge")

	var shortVal Value
	if n.Op == ast.OpAnd {
		shortVal = g.backend.ConstBool(false)
		g.backend.CondBranch(lhs, rhsBlock, mergeBlock)
	} else {
		shortVal = g.backend.ConstBool(true)
		g.backend.CondBranch(lhs, mergeBlock, rhsBlock)
	}

	g.setBlock(rhsBlock)
	rhsVal := g.genExpr(n.RHS)
	rhsEnd := g.curBlock
	g.backend.Branch(mergeBlock)

	g.setBlock(mergeBlock)
	return g.backend.Phi(n.GetType(), []PhiEdge{
		{Value: shortVal, From: entry},
		{Value: rhsVal, From: rhsEnd},
	})
}

func (g *Generator) genPointerArith(n *ast.BinaryExpr, lhs, rhs Value) Value {
	_, lIsPtr := exprType(n.LHS).(*types.PointerType)
	_, rIsPtr := exprType(n.RHS).(*types.PointerType)

	switch {
	case lIsPtr && rIsPtr:
		diff := g.backend.BinaryOp(ast.OpSub, lhs, rhs, n.GetType())
		scale := g.backend.ConstInt(n.GetType(), int64(n.PointerElemSize))
		return g.backend.BinaryOp(ast.OpDiv, diff, scale, n.GetType())
	case lIsPtr:
		idx := rhs
		if n.Op == ast.OpSub {
			idx = g.backend.UnaryOp(ast.OpNegate, rhs, exprType(n.RHS))
		}
		return g.backend.GEPIndex(lhs, n.PointerElemSize, idx)
	default:
		return g.backend.GEPIndex(rhs, n.PointerElemSize, lhs)
	}
}

func (g *Generator) genIfExpr(n *ast.IfExpr) Value {
	cond := g.genExpr(n.Cond)
	thenBlock := g.backend.NewBlock("iif.then")
	elseBlock := g.backend.NewBlock("iif.else")
	mergeBlock := g.backend.NewBlock("iif.merge")
	g.backend.CondBranch(cond, thenBlock, elseBlock)

	g.setBlock(thenBlock)
	thenVal := g.genExpr(n.Then)
	thenEnd := g.curBlock
	g.backend.Branch(mergeBlock)

	g.setBlock(elseBlock)
	elseVal := g.genExpr(n.Else)
	elseEnd := g.curBlock
	g.backend.Branch(mergeBlock)

	g.setBlock(mergeBlock)
	return g.backend.Phi(n.GetType(), []PhiEdge{
		{Value: thenVal, From: thenEnd},
		{Value: elseVal, From: elseEnd},
	})
}

func (g *Generator) genAddr(e ast.Expr) Value {
	switch n := e.(type) {
	case *ast.IdentExpr:
		return g.addrOf(n.Symbol)
	case *ast.DerefExpr:
		return g.genExpr(n.X)
	case *ast.MemberExpr:
		return g.genMemberAddr(n)
	default:
		return Value{}
	}
}

func (g *Generator) genMemberAddr(n *ast.MemberExpr) Value {
	return g.backend.GEPMember(g.genAddr(n.X), n.Member.Index)
}

func (g *Generator) addrOf(sym *symbols.Symbol) Value {
	if addr, ok := g.addrs[sym]; ok {
		return addr
	}
	if global, ok := g.globals[sym]; ok {
		return g.backend.GlobalAddr(global)
	}
	return Value{}
}

func exprType(e ast.Expr) types.Type {
	if te, ok := e.(ast.TypedExpr); ok {
		return te.GetType()
	}
	return nil
}
