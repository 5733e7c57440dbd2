package lexer

// TokenType identifies the shape of a scanned Token.
type TokenType int

const (
	EOF TokenType = iota
	Name
	Number
	QualifiedEnumerator // Enum::Member, scanned whole because the grammar never splits it

	LBrace // {
	RBrace // }
	LAngle // <
	RAngle // >
	LBracket // [
	RBracket // ]
	Colon    // :
	Comma    // ,
	Semi     // ;
	Eq       // =

	// Keywords. The grammar has no reserved-word table separate from the
	// lexer — these are just Name tokens the parser recognises by value —
	// but promoting the handful that matter to their own TokenType keeps
	// the parser's switch statements exhaustive instead of string-compared.
	KwFlat
	KwVariant
	KwEnum
	KwView
	KwMessage
	KwOf
	KwOptional
	KwVector
	KwFixedVector
	KwString
	KwDeprecate
	KwDelete
	KwEnd
)

var keywords = map[string]TokenType{
	"flat":         KwFlat,
	"variant":      KwVariant,
	"enum":         KwEnum,
	"view":         KwView,
	"message":      KwMessage,
	"of":           KwOf,
	"optional":     KwOptional,
	"vector":       KwVector,
	"fixed_vector": KwFixedVector,
	"string":       KwString,
	"deprecate":    KwDeprecate,
	"delete":       KwDelete,
	"end":          KwEnd,
}

// Token is one lexical unit: its type, the text it was scanned from (names,
// numbers, and qualified enumerators keep their literal text; punctuation
// and keywords don't need it), and the 1-based line it started on.
type Token struct {
	Type TokenType
	Text string
	Line int
}

func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case Name:
		return "name"
	case Number:
		return "number"
	case QualifiedEnumerator:
		return "qualified enumerator"
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	case LAngle:
		return "'<'"
	case RAngle:
		return "'>'"
	case LBracket:
		return "'['"
	case RBracket:
		return "']'"
	case Colon:
		return "':'"
	case Comma:
		return "','"
	case Semi:
		return "';'"
	case Eq:
		return "'='"
	default:
		return "keyword"
	}
}
