package diag

// ID is a stable diagnostic identifier. Message text is looked up
// from catalog and rendered with positional {0}, {1}, ...
// placeholders.
type ID int

const (
	// Lexical
	InvalidCharacter ID = iota
	UnterminatedString
	InvalidEscape

	// Syntactic
	UnexpectedToken
	ExpectedToken
	IllegalTopLevelStatement
	DeclarationExpectedAfterAttribute
	NestedFunctionNotAllowed
	VariadicArgNotLast
	AmbiguousCallWithoutParens

	// Semantic
	UndefinedIdentifier
	Redefinition
	IncompatibleTypes
	ArgumentCountMismatch
	AssignToNonAssignable
	UnexpectedReturn
	ControlFlowTargetNotFound
	NotCallable
	NotAFunctionType
	InvalidDereference
	InvalidAddressOf
	InvalidMemberAccess

	// Warnings
	NarrowingConversion
	ZeroStepInFor
	UnreachableForBody

	// Internal
	InternalUnreachable
)

var catalog = map[ID]string{
	InvalidCharacter:    "invalid character {0}",
	UnterminatedString:  "unterminated string literal",
	InvalidEscape:       "invalid escape sequence {0}",
	UnexpectedToken:     "expected {0}, got {1}",
	ExpectedToken:       "expected {0}",
	IllegalTopLevelStatement: "{0} is not allowed at this scope",

	DeclarationExpectedAfterAttribute:  "expected a declaration after attribute list",
	NestedFunctionNotAllowed:           "nested function declarations are not allowed",
	VariadicArgNotLast:                 "variadic parameter must be the last parameter",
	AmbiguousCallWithoutParens:         "ambiguous call to {0} without parentheses",
	UndefinedIdentifier:                "undefined identifier {0}",
	Redefinition:                       "redefinition of {0}",
	IncompatibleTypes:                  "cannot convert {0} to {1}",
	ArgumentCountMismatch:              "{0} expects {1} argument(s), got {2}",
	AssignToNonAssignable:              "{0} is not assignable",
	UnexpectedReturn:                   "RETURN outside of a function body",
	ControlFlowTargetNotFound:          "{0} has no matching enclosing {1}",
	NotCallable:                        "{0} is not callable",
	NotAFunctionType:                   "{0} does not name a function or sub",
	InvalidDereference:                 "cannot dereference non-pointer type {0}",
	InvalidAddressOf:                   "cannot take the address of a non-addressable expression",
	InvalidMemberAccess:                "{0} has no member {1}",

	NarrowingConversion: "narrowing conversion from {0} to {1}",
	ZeroStepInFor:       "FOR loop STEP is zero; loop direction defaults to Increment",
	UnreachableForBody:  "FOR loop body is unreachable given constant bounds and step",

	InternalUnreachable: "internal error: unreachable case ({0})",
}
