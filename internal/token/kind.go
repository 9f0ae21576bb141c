package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	// KwLet represents the 'let' keyword.
	KwLet // let
	// KwPrint represents the 'print' keyword.
	KwPrint // print
	// KwAssert represents the 'assert' keyword.
	KwAssert // assert
	// KwReflexpr represents the reflect operator 'reflexpr'.
	KwReflexpr // reflexpr
	// KwTypename represents the 'typename' keyword inside reflexpr.
	KwTypename // typename
	// KwTrue represents the 'true' keyword.
	KwTrue // true
	// KwFalse represents the 'false' keyword.
	KwFalse // false

	// IntLit represents a non-negative integer literal.
	IntLit
	// StringLit represents a double-quoted string literal.
	StringLit

	Assign     // =
	EqEq       // ==
	Bang       // !
	BangEq     // !=
	Lt         // <
	Gt         // >
	Amp        // &
	AndAnd     // &&
	Star       // *
	Colon      // :
	ColonColon // ::
	Semicolon  // ;
	Comma      // ,
	LParen     // (
	RParen     // )
	LBracket   // [
	RBracket   // ]

	kindCount
)

var kindNames = [kindCount]string{
	Invalid:    "invalid token",
	EOF:        "end of file",
	Ident:      "identifier",
	KwLet:      "'let'",
	KwPrint:    "'print'",
	KwAssert:   "'assert'",
	KwReflexpr: "'reflexpr'",
	KwTypename: "'typename'",
	KwTrue:     "'true'",
	KwFalse:    "'false'",
	IntLit:     "integer literal",
	StringLit:  "string literal",
	Assign:     "'='",
	EqEq:       "'=='",
	Bang:       "'!'",
	BangEq:     "'!='",
	Lt:         "'<'",
	Gt:         "'>'",
	Amp:        "'&'",
	AndAnd:     "'&&'",
	Star:       "'*'",
	Colon:      "':'",
	ColonColon: "'::'",
	Semicolon:  "';'",
	Comma:      "','",
	LParen:     "'('",
	RParen:     "')'",
	LBracket:   "'['",
	RBracket:   "']'",
}

// String returns the spelling used in diagnostics.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "invalid token"
}
