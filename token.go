// token.go: lexical token kinds and the Token value itself.
package ember

// TokenType identifies the lexical class of a Token.
type TokenType int

const (
	EOF TokenType = iota
	ILLEGAL

	// Literals & identifiers
	IDENT
	INT_LIT
	FLOAT_LIT
	STRING_LIT
	CUSTOM_OP // quoted operator name following `fn`

	// Keywords
	FN
	VAR
	PAT
	IMPORT
	PUB
	FOR
	WHILE
	SWITCH
	CASE
	DEFAULT
	BREAK
	YIELD
	RETURN
	COPY
	MOVE
	NULL
	AS
	OF
	STATIC
	CONST
	CONSTEXPR

	// Punctuation
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE
	COMMA
	DOT
	COLON
	DCOLON // "::"
	ARROW  // "->"

	// Operators
	ASSIGN // "="
	EQ     // "=="
	NEQ    // "!="
	LT
	LE
	GT
	GE
	SHL // "<<"
	SHR // ">>"
	ANDAND
	OROR
	AMP   // "&"
	PIPE  // "|"
	CARET // "^"
	TILDE // "~"
	BANG  // "!"
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	QUESTION

	// Terminators
	SEMI
	NEWLINE
)

var tokenNames = map[TokenType]string{
	EOF: "eof", ILLEGAL: "illegal",
	IDENT: "identifier", INT_LIT: "int", FLOAT_LIT: "float", STRING_LIT: "string", CUSTOM_OP: "custom-op",
	FN: "fn", VAR: "var", PAT: "pat", IMPORT: "import", PUB: "pub", FOR: "for", WHILE: "while",
	SWITCH: "switch", CASE: "case", DEFAULT: "default", BREAK: "break", YIELD: "yield", RETURN: "return",
	COPY: "copy", MOVE: "move", NULL: "null", AS: "as", OF: "of", STATIC: "static", CONST: "const", CONSTEXPR: "constexpr",
	LPAREN: "(", RPAREN: ")", LBRACKET: "[", RBRACKET: "]", LBRACE: "{", RBRACE: "}",
	COMMA: ",", DOT: ".", COLON: ":", DCOLON: "::", ARROW: "->",
	ASSIGN: "=", EQ: "==", NEQ: "!=", LT: "<", LE: "<=", GT: ">", GE: ">=",
	SHL: "<<", SHR: ">>", ANDAND: "&&", OROR: "||", AMP: "&", PIPE: "|", CARET: "^", TILDE: "~", BANG: "!",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%", QUESTION: "?",
	SEMI: ";", NEWLINE: "newline",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "unknown"
}

var keywords = map[string]TokenType{
	"fn": FN, "var": VAR, "pat": PAT, "import": IMPORT, "pub": PUB,
	"for": FOR, "while": WHILE, "switch": SWITCH, "case": CASE, "default": DEFAULT,
	"break": BREAK, "yield": YIELD, "return": RETURN, "copy": COPY, "move": MOVE,
	"null": NULL, "as": AS, "of": OF, "static": STATIC, "const": CONST, "constexpr": CONSTEXPR,
}

// statementEnding is the set of token kinds after which a newline becomes a
// statement terminator (spec §4.1 newline rule).
var statementEnding = map[TokenType]bool{
	INT_LIT: true, FLOAT_LIT: true, STRING_LIT: true, IDENT: true, NULL: true,
	RPAREN: true, RBRACKET: true, RBRACE: true, GT: true,
	BREAK: true, YIELD: true, RETURN: true,
}

// Token is a single lexical unit: kind, lexeme text, and 1-based source position.
type Token struct {
	Type   TokenType
	Lexeme string
	IntVal int64
	FltVal float64
	Line   int
	Col    int
}
