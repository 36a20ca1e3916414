// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package syntax

import (
	"fmt"
	"unicode/utf8"
)

const (
	maxSrcLen = 0x7FFFFFFF // (2**31)-1

	tokenFlagBlankLineBefore uint8 = 0x01
)

type Token struct {
	Kind  TokenKind
	Start uint32
	Len   uint32
	flags uint8
}

func (t Token) Span() Span {
	return Span{t.Start, t.Len}
}

// BlankLineBefore reports whether at least one empty line separates the
// token from the previous one.
func (t Token) BlankLineBefore() bool {
	return t.flags&tokenFlagBlankLineBefore != 0
}

type TokenKind uint8

const (
	T_EOF TokenKind = iota

	T_IDENT

	T_STRUCT
	T_ENUM
	T_FN
	T_CONST
	T_SIGNAL
	T_ASYNC

	T_SYMBOL

	T_STRING_LIT
	T_INT_LIT
	T_HEX_INT_LIT
	T_FLOAT_LIT
	T_BOOL_LIT

	T_DOC_COMMENT
	T_INNER_DOC_COMMENT
)

var keywords = map[string]TokenKind{
	"struct": T_STRUCT,
	"enum":   T_ENUM,
	"fn":     T_FN,
	"const":  T_CONST,
	"signal": T_SIGNAL,
	"async":  T_ASYNC,
	"true":   T_BOOL_LIT,
	"false":  T_BOOL_LIT,
}

func (k TokenKind) String() string {
	switch k {
	case T_EOF:
		return "EOF"
	case T_IDENT:
		return "IDENT"
	case T_STRUCT:
		return "STRUCT"
	case T_ENUM:
		return "ENUM"
	case T_FN:
		return "FN"
	case T_CONST:
		return "CONST"
	case T_SIGNAL:
		return "SIGNAL"
	case T_ASYNC:
		return "ASYNC"
	case T_SYMBOL:
		return "SYMBOL"
	case T_STRING_LIT:
		return "STRING_LIT"
	case T_INT_LIT:
		return "INT_LIT"
	case T_HEX_INT_LIT:
		return "HEX_INT_LIT"
	case T_FLOAT_LIT:
		return "FLOAT_LIT"
	case T_BOOL_LIT:
		return "BOOL_LIT"
	case T_DOC_COMMENT:
		return "DOC_COMMENT"
	case T_INNER_DOC_COMMENT:
		return "INNER_DOC_COMMENT"
	default:
		return fmt.Sprintf("TokenKind(%d)", uint8(k))
	}
}

// IsKeyword reports whether tokens of this kind are reserved words.
func (k TokenKind) IsKeyword() bool {
	return k >= T_STRUCT && k <= T_ASYNC
}

// Tokens is a forward-only cursor over the tokens of a source file.
// Whitespace and ordinary comments are skipped.
type Tokens struct {
	src    []byte
	offset uint32
}

func NewTokens(src []byte) (*Tokens, error) {
	if len(src) > maxSrcLen {
		return nil, errSourceTooLong(len(src))
	}
	if !utf8.Valid(src) {
		return nil, errInvalidUtf8(src)
	}
	return &Tokens{
		src: src,
	}, nil
}

func (t *Tokens) Next(token *Token) error {
	blank, err := t.skipSpace()
	if err != nil {
		return err
	}
	var flags uint8
	if blank {
		flags = tokenFlagBlankLineBefore
	}

	if len(t.src) == 0 {
		*token = Token{
			Kind:  T_EOF,
			Start: t.offset,
			flags: flags,
		}
		return nil
	}

	var kind TokenKind
	var tokenLen int
	c := t.src[0]
	switch {
	case c == '"':
		kind, tokenLen, err = t.scanStringLit()
	case c == '/' && len(t.src) >= 3 && t.src[1] == '/' && t.src[2] == '/':
		kind, tokenLen = T_DOC_COMMENT, t.lineLen()
		err = checkCommentText(t.src[:tokenLen], t.offset)
	case c == '/' && len(t.src) >= 3 && t.src[1] == '/' && t.src[2] == '!':
		kind, tokenLen = T_INNER_DOC_COMMENT, t.lineLen()
		err = checkCommentText(t.src[:tokenLen], t.offset)
	case isDigit(c):
		kind, tokenLen, err = t.scanNumLit(0)
	case c == '-' && len(t.src) >= 2 && isDigit(t.src[1]):
		kind, tokenLen, err = t.scanNumLit(1)
	case isIdentStart(c):
		tokenLen = t.identLen()
		kind = T_IDENT
		if kw, ok := keywords[string(t.src[:tokenLen])]; ok {
			kind = kw
		}
	case c < 0x20 || c == 0x7F:
		return errForbiddenControlCharacter(t.offset, c)
	case c < utf8.RuneSelf:
		kind, tokenLen = T_SYMBOL, 1
	default:
		r, _ := utf8.DecodeRune(t.src)
		return errUnexpectedCharacter(t.offset, r)
	}
	if err != nil {
		return err
	}

	*token = Token{
		Kind:  kind,
		Start: t.offset,
		Len:   uint32(tokenLen),
		flags: flags,
	}
	t.offset += uint32(tokenLen)
	t.src = t.src[tokenLen:]
	return nil
}

// skipSpace discards whitespace and ordinary comments, reporting whether
// the discarded text contained an empty line.
func (t *Tokens) skipSpace() (bool, error) {
	blank := false
	sawNewline := false
	emptyLine := true
	for len(t.src) > 0 {
		c := t.src[0]
		switch {
		case c == ' ' || c == '\t':
			t.advance(1)
		case c == '\n':
			if sawNewline && emptyLine {
				blank = true
			}
			sawNewline = true
			emptyLine = true
			t.advance(1)
		case c == '\r':
			if len(t.src) < 2 || t.src[1] != '\n' {
				return false, errForbiddenControlCharacter(t.offset, c)
			}
			if sawNewline && emptyLine {
				blank = true
			}
			sawNewline = true
			emptyLine = true
			t.advance(2)
		case c == '/' && len(t.src) >= 2 && t.src[1] == '/':
			if len(t.src) >= 3 && (t.src[2] == '/' || t.src[2] == '!') {
				return blank, nil
			}
			emptyLine = false
			n := t.lineLen()
			if err := checkCommentText(t.src[:n], t.offset); err != nil {
				return false, err
			}
			t.advance(n)
		default:
			return blank, nil
		}
	}
	return blank, nil
}

func (t *Tokens) advance(n int) {
	t.offset += uint32(n)
	t.src = t.src[n:]
}

func (t *Tokens) lineLen() int {
	for ii, c := range t.src {
		if c == '\n' || c == '\r' {
			return ii
		}
	}
	return len(t.src)
}

func checkCommentText(text []byte, start uint32) error {
	for ii, c := range text {
		if (c < 0x20 && c != '\t') || c == 0x7F {
			return errForbiddenControlCharacter(start+uint32(ii), c)
		}
	}
	return nil
}

func (t *Tokens) identLen() int {
	for ii, c := range t.src {
		if ii == 0 {
			continue
		}
		if !isIdentContinue(c) {
			return ii
		}
	}
	return len(t.src)
}

func (t *Tokens) scanStringLit() (TokenKind, int, error) {
	for ii, c := range t.src {
		if ii == 0 {
			continue
		}
		if c == '"' {
			return T_STRING_LIT, ii + 1, nil
		}
		if c == '\n' || c == '\r' {
			return 0, 0, errStringLitUnterminated(t.offset, uint32(ii))
		}
		if (c < 0x20 && c != '\t') || c == 0x7F {
			return 0, 0, errForbiddenControlCharacter(t.offset+uint32(ii), c)
		}
	}
	return 0, 0, errStringLitUnterminated(t.offset, uint32(len(t.src)))
}

// scanNumLit scans an integer or floating literal. The first skip bytes
// (a leading '-') are already known to be part of the token.
//
//	int   := '-'? digit+ | '-'? '0x' hexdigit+
//	float := '-'? digit+ '.' digit+ exponent? | '-'? digit+ exponent
func (t *Tokens) scanNumLit(skip int) (TokenKind, int, error) {
	src := t.src
	ii := skip

	if len(src) > ii+1 && src[ii] == '0' && (src[ii+1] == 'x' || src[ii+1] == 'X') {
		ii += 2
		digits := ii
		for ii < len(src) && isHexDigit(src[ii]) {
			ii++
		}
		if ii == digits {
			return 0, 0, errHexLitUnterminated(t.offset, src[:ii])
		}
		if ii < len(src) && isIdentContinue(src[ii]) {
			return 0, 0, errNumLitMalformed(t.offset, src[:t.numTail(ii)])
		}
		return T_HEX_INT_LIT, ii, nil
	}

	kind := T_INT_LIT
	for ii < len(src) && isDigit(src[ii]) {
		ii++
	}
	if ii < len(src) && src[ii] == '.' {
		if ii+1 >= len(src) || !isDigit(src[ii+1]) {
			return 0, 0, errNumLitMalformed(t.offset, src[:ii+1])
		}
		ii++
		for ii < len(src) && isDigit(src[ii]) {
			ii++
		}
		kind = T_FLOAT_LIT
	}
	if ii < len(src) && (src[ii] == 'e' || src[ii] == 'E') {
		jj := ii + 1
		if jj < len(src) && (src[jj] == '+' || src[jj] == '-') {
			jj++
		}
		digits := jj
		for jj < len(src) && isDigit(src[jj]) {
			jj++
		}
		if jj == digits {
			return 0, 0, errNumLitMalformed(t.offset, src[:max(jj, t.numTail(ii))])
		}
		ii = jj
		kind = T_FLOAT_LIT
	}
	if ii < len(src) && (isIdentContinue(src[ii]) || src[ii] == '.') {
		return 0, 0, errNumLitMalformed(t.offset, src[:t.numTail(ii)])
	}
	return kind, ii, nil
}

func (t *Tokens) numTail(ii int) int {
	for ii < len(t.src) && (isIdentContinue(t.src[ii]) || t.src[ii] == '.') {
		ii++
	}
	return ii
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentContinue(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// TokenList is the complete token vector of a source file. Indexing past
// the end yields the trailing EOF token.
type TokenList struct {
	src    []byte
	tokens []Token
}

func Tokenize(src []byte) (*TokenList, error) {
	tokens, err := NewTokens(src)
	if err != nil {
		return nil, err
	}
	list := &TokenList{src: src}
	for {
		var token Token
		if err := tokens.Next(&token); err != nil {
			return nil, err
		}
		list.tokens = append(list.tokens, token)
		if token.Kind == T_EOF {
			return list, nil
		}
	}
}

// Len returns the number of tokens, including the trailing EOF.
func (l *TokenList) Len() int {
	return len(l.tokens)
}

func (l *TokenList) At(ii int) Token {
	if ii < 0 || ii >= len(l.tokens) {
		return l.tokens[len(l.tokens)-1]
	}
	return l.tokens[ii]
}

func (l *TokenList) Text(token Token) string {
	return string(l.src[token.Start : token.Start+token.Len])
}

// DocText returns the text of a doc comment token without its marker and
// the single space that conventionally follows it.
func DocText(raw string) string {
	if len(raw) < 3 {
		return ""
	}
	text := raw[3:]
	if len(text) > 0 && text[0] == ' ' {
		text = text[1:]
	}
	return text
}
