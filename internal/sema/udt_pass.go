package sema

import (
	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/diag"
	"github.com/lightbasic/lbc/internal/symbols"
)

// udtPass registers every TYPE declaration's name and fills in its
// UDTType's member table in declaration order, finalizing each UDT's
// shape before function signatures are resolved.
func (a *Analyzer) udtPass(mod *ast.Module) {
	for _, s := range mod.Statements {
		if td, ok := s.(*ast.TypeDecl); ok {
			a.declareUDT(td)
		}
	}
}

func (a *Analyzer) declareUDT(td *ast.TypeDecl) {
	if _, exists := a.declaredUDTs[td.Name]; exists {
		a.diags.ReportError(diag.Redefinition, td.Range(), td.Name)
		return
	}
	a.declaredUDTs[td.Name] = td

	ut := a.types.UDT(td.Name)
	ut.Packed = td.Packed

	for _, m := range td.Members {
		mt := a.resolveTypeExpr(m.TypeExpr)
		if !ut.AddMember(m.Name, mt) {
			a.diags.ReportError(diag.Redefinition, m.Range(), m.Name)
			continue
		}
		member, _ := ut.Member(m.Name)
		m.Symbol = &symbols.Symbol{Name: m.Name, Type: mt, Index: member.Index}
	}

	td.Symbol = &symbols.Symbol{Name: td.Name, Type: ut}
}
