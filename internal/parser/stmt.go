package parser

import (
	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/diag"
	"github.com/lightbasic/lbc/internal/token"
)

// parseStatement consumes one top-level production of the Statement
// grammar: Import | Declaration | ExprStmt | If | For |
// DoLoop | Return | Continue | Exit | FunctionStmt. Returns nil for a
// stray EndOfStmt (callers loop past those separately).
func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur.Kind {
	case token.Import:
		return p.parseImportStmt()
	case token.LBracket:
		attrs := p.parseAttributeList()
		p.skipStmtEnd() // the attribute line ends its own EndOfStmt; the declaration it attaches to may start on the next line
		return p.parseDeclarationWithAttrs(attrs)
	case token.Dim, token.Var:
		return p.parseVarDecl(nil)
	case token.Declare:
		return p.parseDeclareStmt(nil)
	case token.Function, token.Sub:
		return p.parseFunctionStmt(nil)
	case token.TypeKw:
		return p.parseTypeDecl(nil)
	case token.If:
		return p.parseIfStmt()
	case token.For:
		return p.parseForStmt()
	case token.Do:
		return p.parseDoLoopStmt()
	case token.Return:
		return p.parseReturnStmt()
	case token.Continue:
		return p.parseContinuationStmt(ast.ContinueStmt)
	case token.Exit:
		return p.parseContinuationStmt(ast.ExitStmt)
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseDeclarationWithAttrs(attrs []ast.Attribute) ast.Stmt {
	switch p.cur.Kind {
	case token.Dim, token.Var:
		return p.parseVarDecl(attrs)
	case token.Declare:
		return p.parseDeclareStmt(attrs)
	case token.Function, token.Sub:
		return p.parseFunctionStmt(attrs)
	case token.TypeKw:
		return p.parseTypeDecl(attrs)
	default:
		p.diags.Fatalf(diag.DeclarationExpectedAfterAttribute, p.cur.Range)
		return nil
	}
}

// parseImportStmt consumes `IMPORT name`.
func (p *Parser) parseImportStmt() ast.Stmt {
	begin := p.cur.Pos()
	p.next()
	name := p.expect(token.Identifier).Text
	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	return ast.NewImportStmt(p.arena, rng, name)
}

// parseVarDecl consumes `(DIM|VAR) name [AS type] [= expr]`.
func (p *Parser) parseVarDecl(attrs []ast.Attribute) *ast.VarDecl {
	begin := p.cur.Pos()
	p.next() // DIM or VAR
	name := p.expect(token.Identifier).Text

	var typeExpr ast.TypeNode
	if p.cur.Kind == token.AsKw {
		p.next()
		typeExpr = p.parseTypeExpr()
	}

	var init ast.Expr
	if p.cur.Kind == token.Assign {
		p.next()
		init = p.parseExpression(1)
	}

	if typeExpr == nil && init == nil {
		p.diags.Fatalf(diag.ExpectedToken, p.cur.Range, "AS type or an initializer")
	}

	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	d := ast.NewVarDecl(p.arena, rng, name, typeExpr, init)
	d.Attributes = attrs
	return d
}

// parseParamList consumes the parenthesized parameter list of a
// FUNCTION/SUB/DECLARE signature, diagnosing a variadic parameter that
// is not last.
func (p *Parser) parseParamList() ([]*ast.ParamDecl, bool) {
	p.expect(token.LParen)
	var params []*ast.ParamDecl
	variadic := false
	for p.cur.Kind != token.RParen {
		if variadic {
			p.diags.Fatalf(diag.VariadicArgNotLast, p.cur.Range)
		}
		begin := p.cur.Pos()
		byRef := false
		if p.cur.Kind == token.TyPtr {
			byRef = true
			p.next()
		}
		if p.cur.Kind == token.Dot {
			// `...` variadic marker: three Dot tokens in sequence.
			p.next()
			p.expect(token.Dot)
			p.expect(token.Dot)
			variadic = true
			if p.cur.Kind == token.Comma {
				p.next()
			}
			continue
		}
		name := p.expect(token.Identifier).Text
		p.expect(token.AsKw)
		typeExpr := p.parseTypeExpr()
		rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
		params = append(params, ast.NewParamDecl(p.arena, rng, name, typeExpr, byRef))
		if p.cur.Kind == token.Comma {
			p.next()
		}
	}
	p.expect(token.RParen)
	return params, variadic
}

// parseDeclareStmt consumes `DECLARE (FUNCTION|SUB) name(params) [AS
// type]`, a forward/external signature with no body.
func (p *Parser) parseDeclareStmt(attrs []ast.Attribute) *ast.FuncDecl {
	begin := p.cur.Pos()
	p.next() // DECLARE
	isSub := p.cur.Kind == token.Sub
	if !isSub {
		p.expect(token.Function)
	} else {
		p.next()
	}
	name := p.expect(token.Identifier).Text
	if p.cur.Kind == token.AliasKw {
		attrs = append(attrs, p.parseInlineAlias())
	}
	params, variadic := p.parseParamList()

	var ret ast.TypeNode
	if !isSub {
		p.expect(token.AsKw)
		ret = p.parseTypeExpr()
	}

	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	d := ast.NewFuncDecl(p.arena, rng, name, params, ret, isSub)
	d.Attributes = attrs
	d.Variadic = variadic
	d.IsForwardOnly = true
	return d
}

// parseInlineAlias consumes the `ALIAS "name"` suffix a DECLARE or
// FUNCTION signature may carry after its name, equivalent to an
// [ ALIAS = "name" ] attribute on the preceding line.
func (p *Parser) parseInlineAlias() ast.Attribute {
	p.next() // ALIAS
	value := p.expect(token.StringLiteral)
	return ast.Attribute{Name: "ALIAS", Value: value.Literal.Str}
}

// parseFunctionStmt consumes a full `FUNCTION|SUB name(params) [AS
// type] ... END FUNCTION|SUB`. Nested function declarations are
// rejected.
func (p *Parser) parseFunctionStmt(attrs []ast.Attribute) *ast.FunctionStmt {
	if p.scope == ScopeFunction {
		p.diags.Fatalf(diag.NestedFunctionNotAllowed, p.cur.Range)
	}

	begin := p.cur.Pos()
	isSub := p.cur.Kind == token.Sub
	p.next()
	name := p.expect(token.Identifier).Text
	if p.cur.Kind == token.AliasKw {
		attrs = append(attrs, p.parseInlineAlias())
	}
	params, variadic := p.parseParamList()

	var ret ast.TypeNode
	if !isSub {
		p.expect(token.AsKw)
		ret = p.parseTypeExpr()
	}

	decl := ast.NewFuncDecl(p.arena, token.Range{Begin: begin, End: p.cur.Range.Begin}, name, params, ret, isSub)
	decl.Attributes = attrs
	decl.Variadic = variadic

	p.skipStmtEnd()

	prevScope := p.scope
	p.scope = ScopeFunction
	body := p.parseStmtListUntilEnd()
	p.scope = prevScope

	endKw := isSub
	p.expect(token.EndKw)
	if endKw {
		p.expect(token.Sub)
	} else {
		p.expect(token.Function)
	}

	decl.Body = body
	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	return ast.NewFunctionStmt(p.arena, rng, decl)
}

// parseStmtListUntilEnd consumes statements until the parser sees an
// `END` token (not consumed), used for function bodies.
func (p *Parser) parseStmtListUntilEnd() *ast.StmtList {
	begin := p.cur.Pos()
	scope := p.newChildScope(nil)
	var stmts []ast.Stmt
	for p.cur.Kind != token.EndKw && p.cur.Kind != token.EndOfFile {
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
		}
		p.skipStmtEnd()
	}
	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	list := ast.NewStmtList(p.arena, rng, scope)
	list.Stmts = stmts
	return list
}

// parseTypeDecl consumes `TYPE name ... END TYPE`, a UDT whose members
// are VarDecls with no initializer.
func (p *Parser) parseTypeDecl(attrs []ast.Attribute) *ast.TypeDecl {
	begin := p.cur.Pos()
	p.next() // TYPE
	name := p.expect(token.Identifier).Text
	p.skipStmtEnd()

	packed := false
	for _, a := range attrs {
		if a.Name == "PACKED" {
			packed = true
		}
	}

	var members []*ast.VarDecl
	for p.cur.Kind != token.EndKw {
		memberBegin := p.cur.Pos()
		memberName := p.expect(token.Identifier).Text
		p.expect(token.AsKw)
		typeExpr := p.parseTypeExpr()
		rng := token.Range{Begin: memberBegin, End: p.cur.Range.Begin}
		members = append(members, ast.NewVarDecl(p.arena, rng, memberName, typeExpr, nil))
		p.skipStmtEnd()
	}
	p.expect(token.EndKw)
	p.expect(token.TypeKw)

	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	d := ast.NewTypeDecl(p.arena, rng, name, members, packed)
	return d
}

// parseIfStmt consumes `IF cond THEN ... [ELSE IF cond THEN ...] [ELSE
// ...] END IF`, building a flat IfBlock chain in source order.
func (p *Parser) parseIfStmt() *ast.IfStmt {
	begin := p.cur.Pos()
	var blocks []ast.IfBlock

	for {
		p.next() // IF or ELSE(already consumed IF token on first loop) — see below
		decls, cond := p.parseIfCondition()
		p.expect(token.Then)
		p.skipStmtEnd()
		body := p.parseStmtListUntilElseOrEnd()
		blocks = append(blocks, ast.IfBlock{LocalDecls: decls, Condition: cond, Symbols: body.Symbols, Body: body})

		if p.cur.Kind == token.ElseKw && p.peek.Kind == token.If {
			p.next() // consume ELSE, leaving cur == IF for next loop iteration's p.next()
			continue
		}
		break
	}

	if p.cur.Kind == token.ElseKw {
		p.next()
		p.skipStmtEnd()
		body := p.parseStmtListUntilElseOrEnd()
		blocks = append(blocks, ast.IfBlock{Condition: nil, Symbols: body.Symbols, Body: body})
	}

	p.expect(token.EndKw)
	p.expect(token.If)

	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	return ast.NewIfStmt(p.arena, rng, blocks)
}

// parseIfCondition consumes zero or more comma-separated
// `VAR name [AS type] = expr` local declarations,
// followed by the block's condition. Once a local declaration is
// present, subsequent commas bind as logical AND (CommaAsAnd) instead
// of ending the expression, so `IF VAR X = F(), X > 0, Y < 1 THEN`
// reads as `X > 0 AND Y < 1` with X scoped to the block. Plain
// `IF cond THEN` (no VAR) parses cond with ordinary precedence and
// leaves commas alone, matching every other expression context.
func (p *Parser) parseIfCondition() ([]*ast.VarDecl, ast.Expr) {
	var decls []*ast.VarDecl
	for p.cur.Kind == token.Var {
		decls = append(decls, p.parseVarDecl(nil))
		if p.cur.Kind != token.Comma {
			break
		}
		p.next()
	}

	if len(decls) == 0 {
		return nil, p.parseExpression(1)
	}

	if p.cur.Kind == token.Then {
		// `IF VAR X = F() THEN` — no explicit condition; the last
		// declared variable itself is the condition.
		last := decls[len(decls)-1]
		return decls, ast.NewIdentExpr(p.arena, last.Range(), last.Name)
	}

	cond := p.parseExpression(1)
	for p.cur.Kind == token.Comma {
		p.next()
		rhs := p.parseExpression(1)
		rng := token.Range{Begin: cond.Range().Begin, End: rhs.Range().End}
		cond = ast.NewBinaryExpr(p.arena, rng, ast.OpAnd, cond, rhs)
	}
	return decls, cond
}

// parseStmtListUntilElseOrEnd consumes statements until ELSE or END,
// used for each arm of an IfStmt.
func (p *Parser) parseStmtListUntilElseOrEnd() *ast.StmtList {
	begin := p.cur.Pos()
	scope := p.newChildScope(nil)
	var stmts []ast.Stmt
	for p.cur.Kind != token.ElseKw && p.cur.Kind != token.EndKw && p.cur.Kind != token.EndOfFile {
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
		}
		p.skipStmtEnd()
	}
	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	list := ast.NewStmtList(p.arena, rng, scope)
	list.Stmts = stmts
	return list
}

// parseForStmt consumes `FOR i = from TO|DOWNTO to [STEP step] ...
// NEXT [i]`. Direction is left DirUnknown for the semantic analyzer to
// infer.
func (p *Parser) parseForStmt() *ast.ForStmt {
	begin := p.cur.Pos()
	p.next() // FOR

	iterBegin := p.cur.Pos()
	iterName := p.expect(token.Identifier).Text
	p.expect(token.Assign)
	from := p.parseExpression(1)

	downto := p.cur.Kind == token.DownTo
	if !downto {
		p.expect(token.To)
	} else {
		p.next()
	}
	to := p.parseExpression(1)

	var step ast.Expr
	if p.cur.Kind == token.Step {
		p.next()
		step = p.parseExpression(1)
	}

	iterRng := token.Range{Begin: iterBegin, End: p.cur.Range.Begin}
	iterDecl := ast.NewVarDecl(p.arena, iterRng, iterName, nil, nil)

	p.skipStmtEnd()

	p.loopStack = append(p.loopStack, ast.FrameFor)
	body := p.parseStmtListUntilNext()
	p.loopStack = p.loopStack[:len(p.loopStack)-1]

	p.expect(token.Next)
	if p.cur.Kind == token.Identifier {
		p.next() // optional iterator name after NEXT, purely cosmetic
	}

	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	return ast.NewForStmt(p.arena, rng, iterDecl, from, to, step, body, body.Symbols)
}

func (p *Parser) parseStmtListUntilNext() *ast.StmtList {
	begin := p.cur.Pos()
	scope := p.newChildScope(nil)
	var stmts []ast.Stmt
	for p.cur.Kind != token.Next && p.cur.Kind != token.EndOfFile {
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
		}
		p.skipStmtEnd()
	}
	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	list := ast.NewStmtList(p.arena, rng, scope)
	list.Stmts = stmts
	return list
}

// parseDoLoopStmt consumes one of the five DO/LOOP test-placement
// forms: `DO [WHILE|UNTIL cond] ... LOOP`, or `DO ... LOOP
// [WHILE|UNTIL cond]`.
func (p *Parser) parseDoLoopStmt() *ast.DoLoopStmt {
	begin := p.cur.Pos()
	p.next() // DO

	kind := ast.DoLoopNone
	var pre ast.Expr
	switch p.cur.Kind {
	case token.While:
		p.next()
		pre = p.parseExpression(1)
		kind = ast.DoLoopPreWhile
	case token.Until:
		p.next()
		pre = p.parseExpression(1)
		kind = ast.DoLoopPreUntil
	}
	p.skipStmtEnd()

	p.loopStack = append(p.loopStack, ast.FrameDo)
	body := p.parseStmtListUntilLoop()
	p.loopStack = p.loopStack[:len(p.loopStack)-1]

	p.expect(token.Loop)

	var post ast.Expr
	switch p.cur.Kind {
	case token.While:
		p.next()
		post = p.parseExpression(1)
		kind = ast.DoLoopPostWhile
	case token.Until:
		p.next()
		post = p.parseExpression(1)
		kind = ast.DoLoopPostUntil
	}

	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	return ast.NewDoLoopStmt(p.arena, rng, kind, pre, post, body)
}

func (p *Parser) parseStmtListUntilLoop() *ast.StmtList {
	begin := p.cur.Pos()
	scope := p.newChildScope(nil)
	var stmts []ast.Stmt
	for p.cur.Kind != token.Loop && p.cur.Kind != token.EndOfFile {
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
		}
		p.skipStmtEnd()
	}
	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	list := ast.NewStmtList(p.arena, rng, scope)
	list.Stmts = stmts
	return list
}

// parseReturnStmt consumes `RETURN [expr]`. Validity against the
// enclosing FUNCTION/SUB shape is a semantic-analyzer concern; the
// parser only builds the node.
func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	begin := p.cur.Pos()
	p.next()
	var value ast.Expr
	if !p.atStatementEnd() {
		value = p.parseExpression(1)
	}
	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	return ast.NewReturnStmt(p.arena, rng, value)
}

// parseContinuationStmt consumes `EXIT|CONTINUE [FOR|DO ...]` and
// validates the destination sequence against the parser's currently
// open loop-frame stack, outermost-last.
func (p *Parser) parseContinuationStmt(kind ast.ContinuationKind) *ast.ContinuationStmt {
	begin := p.cur.Pos()
	p.next()

	var dest []ast.LoopFrameKind
	for p.cur.Kind == token.For || p.cur.Kind == token.Do {
		if p.cur.Kind == token.For {
			dest = append(dest, ast.FrameFor)
		} else {
			dest = append(dest, ast.FrameDo)
		}
		p.next()
	}
	if len(dest) == 0 {
		p.unexpected("FOR or DO")
	}

	p.validateLoopTarget(kind, dest, begin)

	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	return ast.NewContinuationStmt(p.arena, rng, kind, dest)
}

func (p *Parser) validateLoopTarget(kind ast.ContinuationKind, dest []ast.LoopFrameKind, begin token.Position) {
	name := "CONTINUE"
	if kind == ast.ExitStmt {
		name = "EXIT"
	}
	if len(dest) > len(p.loopStack) {
		p.diags.Fatalf(diag.ControlFlowTargetNotFound, token.Range{Begin: begin, End: begin}, name, frameKindName(dest[len(dest)-1]))
		return
	}
	for i, want := range dest {
		got := p.loopStack[len(p.loopStack)-1-i]
		if got != want {
			p.diags.Fatalf(diag.ControlFlowTargetNotFound, token.Range{Begin: begin, End: begin}, name, frameKindName(want))
			return
		}
	}
}

func frameKindName(k ast.LoopFrameKind) string {
	if k == ast.FrameFor {
		return "FOR"
	}
	return "DO"
}

// canStartFactor reports whether k can begin a factor production —
// used to decide whether a bare identifier at statement position is
// followed by an unparenthesized call argument.
func canStartFactor(k token.Kind) bool {
	switch k {
	case token.IntegerLiteral, token.FloatingPointLiteral, token.StringLiteral,
		token.BooleanLiteral, token.Identifier, token.LParen, token.Iif, token.Not:
		return true
	default:
		return false
	}
}

// ambiguousCallArgStart reports whether k, as the token right after a
// bare callee identifier, could equally be read as the start of a
// parenthesis-free call argument or as a dangling operator — the case
// AmbiguousCallWithoutParens reports.
func ambiguousCallArgStart(k token.Kind) bool {
	switch k {
	case token.Minus, token.Star, token.AddressOf:
		return true
	default:
		return false
	}
}

// parseExprOrAssignStmt handles the statement-position disambiguation
// between a bare expression (typically a call), a parenthesis-free
// call, and an assignment: `=` at
// statement context produces an AssignStmt directly, never going
// through the expression-level Equal rewrite, which is why this parses
// a bare factor first and only resumes precedence climbing once
// assignment has been ruled out.
func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	begin := p.cur.Pos()

	if p.cur.Kind == token.Identifier && p.peek.Kind != token.LParen &&
		p.peek.Kind != token.Assign && p.peek.Kind != token.Dot {
		if ambiguousCallArgStart(p.peek.Kind) {
			p.diags.Fatalf(diag.AmbiguousCallWithoutParens, p.peek.Range, p.cur.Text)
		}
		if canStartFactor(p.peek.Kind) {
			name := p.cur.Text
			identEnd := p.peek.Range.Begin
			callee := ast.NewIdentExpr(p.arena, token.Range{Begin: begin, End: identEnd}, name)
			p.next()
			call := p.parseCallWithoutParens(begin, callee)
			rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
			return ast.NewExprStmt(p.arena, rng, call)
		}
	}

	lhsFactor := p.parseFactor()
	if p.cur.Kind == token.Assign {
		p.next()
		rhs := p.parseExpression(1)
		rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
		return ast.NewAssignStmt(p.arena, rng, lhsFactor, rhs)
	}

	expr := p.climb(lhsFactor, 1)
	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	return ast.NewExprStmt(p.arena, rng, expr)
}
