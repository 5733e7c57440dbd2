package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []Token {
	l := New(src)
	var toks []Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func TestScansFlatDeclaration(t *testing.T) {
	toks := scanAll(t, "Pair : flat { x:int32 y:int32 }")
	types := make([]TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	assert.Equal(t, []TokenType{
		Name, Colon, KwFlat, LBrace,
		Name, Colon, Name,
		Name, Colon, Name,
		RBrace, EOF,
	}, types)
}

func TestSkipsLineAndBlockComments(t *testing.T) {
	toks := scanAll(t, "// comment\nPair /* inline */ : flat {}")
	assert.Equal(t, Name, toks[0].Type)
	assert.Equal(t, "Pair", toks[0].Text)
	assert.Equal(t, Colon, toks[1].Type)
}

func TestUnterminatedBlockCommentFails(t *testing.T) {
	l := New("/* never closed")
	_, err := l.Next()
	require.Error(t, err)
}

func TestTracksLineNumbers(t *testing.T) {
	toks := scanAll(t, "A\nB\nC")
	require.Len(t, toks, 4)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 3, toks[2].Line)
}

func TestScansQualifiedEnumerator(t *testing.T) {
	toks := scanAll(t, "E::c")
	require.Equal(t, QualifiedEnumerator, toks[0].Type)
	assert.Equal(t, "E::c", toks[0].Text)
}

func TestScansNumberLiteral(t *testing.T) {
	toks := scanAll(t, "42")
	require.Equal(t, Number, toks[0].Type)
	assert.Equal(t, "42", toks[0].Text)
}

func TestRejectsUnexpectedCharacter(t *testing.T) {
	l := New("@")
	_, err := l.Next()
	require.Error(t, err)
}
