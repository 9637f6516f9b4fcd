package lexer

import "github.com/lightbasic/lbc/internal/token"

// keywords maps the upper-cased spelling of every reserved word to its
// token.Kind. The lexer upper-cases every identifier before this
// lookup, so LightBASIC keywords are case-insensitive.
var keywords = map[string]token.Kind{
	"DIM":      token.Dim,
	"VAR":      token.Var,
	"DECLARE":  token.Declare,
	"FUNCTION": token.Function,
	"SUB":      token.Sub,
	"AS":       token.AsKw,
	"TYPE":     token.TypeKw,
	"END":      token.EndKw,
	"ALIAS":    token.AliasKw,

	"IF":       token.If,
	"THEN":     token.Then,
	"ELSE":     token.ElseKw,
	"FOR":      token.For,
	"TO":       token.To,
	"DOWNTO":   token.DownTo,
	"STEP":     token.Step,
	"NEXT":     token.Next,
	"DO":       token.Do,
	"LOOP":     token.Loop,
	"WHILE":    token.While,
	"UNTIL":    token.Until,
	"RETURN":   token.Return,
	"CONTINUE": token.Continue,
	"EXIT":     token.Exit,
	"IMPORT":   token.Import,

	"IIF": token.Iif,
	"MOD": token.Mod,
	"AND": token.And,
	"OR":  token.Or,
	"NOT": token.Not,

	"VOID":     token.TyVoid,
	"ANY":      token.TyAny,
	"BOOLEAN":  token.TyBoolean,
	"BYTE":     token.TyByte,
	"UBYTE":    token.TyUByte,
	"SHORT":    token.TyShort,
	"USHORT":   token.TyUShort,
	"INTEGER":  token.TyInteger,
	"UINTEGER": token.TyUInteger,
	"LONG":     token.TyLong,
	"ULONG":    token.TyULong,
	"SINGLE":   token.TySingle,
	"DOUBLE":   token.TyDouble,
	"ZSTRING":  token.TyZString,
	"PTR":      token.TyPtr,
}

// booleanLiterals maps the upper-cased spellings of TRUE/FALSE. These
// are recognized after the keyword lookup so they carry a LitBool
// literal payload rather than just a bare keyword token.
var booleanLiterals = map[string]bool{
	"TRUE":  true,
	"FALSE": false,
}

func lookupKeyword(upper string) (token.Kind, bool) {
	k, ok := keywords[upper]
	return k, ok
}
