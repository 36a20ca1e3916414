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
	"math"
)

func Parse(src []byte) (*File, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}

func ParseTokens(tokens *TokenList) (*File, error) {
	ctx := &parseCtx{
		tokens: tokens,
		file:   &File{},
	}
	parseFile(ctx)
	if ctx.err != nil {
		return nil, ctx.err
	}
	if err := validateFile(ctx.file); err != nil {
		return nil, err
	}
	return ctx.file, nil
}

// ParseType parses a standalone type such as `Vec<Option<u32>>`.
func ParseType(src string) (*TypeID, error) {
	tokens, err := Tokenize([]byte(src))
	if err != nil {
		return nil, err
	}
	ctx := &parseCtx{tokens: tokens, file: &File{}}
	typ := parseType(ctx)
	if ctx.err != nil {
		return nil, ctx.err
	}
	if token := ctx.peek(); token.Kind != T_EOF {
		return nil, errExpectedSymbol("EOF", token.Kind, ctx.text(token), token.Span())
	}
	return typ, nil
}

type parseCtx struct {
	tokens   *TokenList
	file     *File
	pos      int
	err      error
	topLevel bool
}

func (ctx *parseCtx) peek() Token {
	return ctx.tokens.At(ctx.pos)
}

func (ctx *parseCtx) peekAt(n int) Token {
	return ctx.tokens.At(ctx.pos + n)
}

func (ctx *parseCtx) text(token Token) string {
	return ctx.tokens.Text(token)
}

func (ctx *parseCtx) next() Token {
	token := ctx.peek()
	if token.Kind != T_EOF {
		ctx.pos++
	}
	return token
}

// prevEnd is the end offset of the most recently consumed token.
func (ctx *parseCtx) prevEnd() uint32 {
	if ctx.pos == 0 {
		return 0
	}
	token := ctx.tokens.At(ctx.pos - 1)
	return token.Start + token.Len
}

func (ctx *parseCtx) spanFrom(start Token) Span {
	return Span{start.Start, ctx.prevEnd() - start.Start}
}

func (ctx *parseCtx) fail(err error) {
	if ctx.err == nil {
		ctx.err = err
	}
}

func (ctx *parseCtx) warn(w *Warning) {
	ctx.file.warnings = append(ctx.file.warnings, w)
}

func (ctx *parseCtx) loop(yield func(struct{}) bool) {
	if ctx.err != nil {
		return
	}
	for {
		pos := ctx.pos
		if !yield(struct{}{}) {
			return
		}
		if ctx.err != nil {
			return
		}
		if pos == ctx.pos {
			return
		}
	}
}

func (ctx *parseCtx) isSymbol(token Token, c byte) bool {
	return token.Kind == T_SYMBOL && ctx.tokens.src[token.Start] == c
}

func (ctx *parseCtx) sigil(c byte) {
	if ctx.err != nil {
		return
	}
	token := ctx.peek()
	if !ctx.isSymbol(token, c) {
		ctx.fail(errExpectedSymbol(string(c), token.Kind, ctx.text(token), token.Span()))
		return
	}
	ctx.pos++
}

func (ctx *parseCtx) trySigil(c byte) bool {
	if ctx.err != nil {
		return false
	}
	if !ctx.isSymbol(ctx.peek(), c) {
		return false
	}
	ctx.pos++
	return true
}

func (ctx *parseCtx) tryKeyword(kind TokenKind) bool {
	if ctx.err != nil {
		return false
	}
	if ctx.peek().Kind != kind {
		return false
	}
	ctx.pos++
	return true
}

func (ctx *parseCtx) ident() string {
	if ctx.err != nil {
		return ""
	}
	token := ctx.peek()
	if token.Kind != T_IDENT {
		ctx.fail(errExpectedIdent(token.Kind, ctx.text(token), token.Span()))
		return ""
	}
	ctx.pos++
	return ctx.text(token)
}

// docComments consumes a run of doc comment lines. A blank line between
// the run and the next token detaches the run.
func (ctx *parseCtx) docComments() []string {
	var docs []string
	var docStart Token
	for {
		token := ctx.peek()
		switch token.Kind {
		case T_DOC_COMMENT:
			if token.BlankLineBefore() && len(docs) > 0 {
				ctx.warn(warnDanglingDocComment(ctx.spanFrom(docStart)))
				docs = nil
			}
			if len(docs) == 0 {
				docStart = token
			}
			docs = append(docs, DocText(ctx.text(token)))
			ctx.pos++
		case T_INNER_DOC_COMMENT:
			if !ctx.topLevel {
				ctx.fail(errInnerDocPlacement(token.Span()))
				return nil
			}
			ctx.file.doc = append(ctx.file.doc, DocText(ctx.text(token)))
			ctx.pos++
		default:
			if len(docs) > 0 && (token.BlankLineBefore() || token.Kind == T_EOF) {
				ctx.warn(warnDanglingDocComment(Span{docStart.Start, ctx.prevEnd() - docStart.Start}))
				docs = nil
			}
			return docs
		}
	}
}

type attribute struct {
	name string
	span Span
}

type positionTag struct {
	value uint32
	span  Span
}

func parseFile(ctx *parseCtx) {
	var docs []string
	var attrs []attribute
	var position *positionTag

	for _ = range ctx.loop {
		ctx.topLevel = true
		docs = append(docs, ctx.docComments()...)
		ctx.topLevel = false

		token := ctx.peek()
		if token.Kind == T_EOF {
			break
		}

		var node Node
		switch token.Kind {
		case T_SYMBOL:
			if !ctx.isSymbol(token, '#') {
				ctx.fail(errExpectedDeclaration(token.Kind, ctx.text(token), token.Span()))
				return
			}
			directive, attr, tag := parseHashItem(ctx)
			switch {
			case directive != nil:
				node = directive
			case attr != nil:
				attrs = append(attrs, *attr)
				continue
			case tag != nil:
				position = tag
				continue
			default:
				return
			}
		case T_CONST:
			node = parseConstBlock(ctx)
		case T_STRUCT:
			node = parseStruct(ctx)
		case T_ENUM:
			node = parseEnum(ctx)
		case T_FN, T_SIGNAL, T_ASYNC:
			node = parseFn(ctx)
		default:
			ctx.fail(errExpectedDeclaration(token.Kind, ctx.text(token), token.Span()))
			return
		}
		if ctx.err != nil {
			return
		}

		hdr := node.header()
		hdr.doc = docs
		if position != nil {
			switch node := node.(type) {
			case *Fn:
				ctx.warn(warnPositionIgnored("function '"+node.name+"'", position.span))
			default:
				ctx.warn(warnPositionIgnored("top-level declaration", position.span))
			}
		}
		for _, attr := range attrs {
			applyAttribute(ctx, node, attr)
		}
		ctx.file.nodes = append(ctx.file.nodes, node)
		docs = nil
		attrs = nil
		position = nil
	}

	if ctx.err == nil && (len(attrs) > 0 || position != nil) {
		for _, attr := range attrs {
			ctx.warn(warnAttributeIgnored(attr.name, "end of file", attr.span))
		}
		if position != nil {
			ctx.warn(warnPositionIgnored("end of file", position.span))
		}
	}
}

func applyAttribute(ctx *parseCtx, node Node, attr attribute) {
	switch attr.name {
	case "emplace", "into_buffers":
	default:
		ctx.warn(warnUnknownAttribute(attr.name, attr.span))
		return
	}
	s, ok := node.(*Struct)
	if !ok {
		ctx.warn(warnAttributeIgnored(attr.name, "non-struct declarations", attr.span))
		return
	}
	if attr.name == "emplace" {
		s.emplace = true
	} else {
		s.intoBuffers = true
	}
}

// parseHashItem parses one of:
//
//	'#' '[' int ']'
//	'#' '[' id ']'
//	'#' '[' id '=' value ']'
//	'#' '[' id '.' id '=' value ']'
//	'#' '[' id '(' (id ('=' value)? ','?)* ')' ']'
func parseHashItem(ctx *parseCtx) (*Directive, *attribute, *positionTag) {
	start := ctx.peek()
	ctx.sigil('#')
	ctx.sigil('[')
	if ctx.err != nil {
		return nil, nil, nil
	}

	if kind := ctx.peek().Kind; kind == T_INT_LIT || kind == T_HEX_INT_LIT {
		value := parsePositionValue(ctx)
		ctx.sigil(']')
		if ctx.err != nil {
			return nil, nil, nil
		}
		return nil, nil, &positionTag{value: value, span: ctx.spanFrom(start)}
	}

	name := ctx.ident()
	if ctx.err != nil {
		return nil, nil, nil
	}
	directive := &Directive{name: name}
	switch {
	case ctx.trySigil(']'):
		return nil, &attribute{name: name, span: ctx.spanFrom(start)}, nil
	case ctx.trySigil('='):
		directive.value = parseDirectiveValue(ctx)
	case ctx.trySigil('.'):
		itemStart := ctx.peek()
		key := ctx.ident()
		ctx.sigil('=')
		value := parseDirectiveValue(ctx)
		directive.group = true
		directive.items = []*DirectiveItem{{
			name:  key,
			value: value,
			span:  ctx.spanFrom(itemStart),
		}}
	case ctx.trySigil('('):
		directive.group = true
		for _ = range ctx.loop {
			if ctx.trySigil(')') {
				break
			}
			itemStart := ctx.peek()
			item := &DirectiveItem{name: ctx.ident()}
			if ctx.trySigil('=') {
				item.value = parseDirectiveValue(ctx)
			}
			item.span = ctx.spanFrom(itemStart)
			directive.items = append(directive.items, item)
			if !ctx.trySigil(',') {
				ctx.sigil(')')
				break
			}
		}
	default:
		token := ctx.peek()
		ctx.fail(errExpectedSymbol("]", token.Kind, ctx.text(token), token.Span()))
	}
	ctx.sigil(']')
	if ctx.err != nil {
		return nil, nil, nil
	}
	directive.span = ctx.spanFrom(start)
	return directive, nil, nil
}

func parseDirectiveValue(ctx *parseCtx) *Literal {
	if ctx.err != nil {
		return nil
	}
	token := ctx.peek()
	if token.Kind == T_IDENT {
		ctx.pos++
		return &Literal{kind: LIT_IDENT, raw: ctx.text(token), span: token.Span()}
	}
	lit := parseLiteral(ctx)
	if lit == nil && ctx.err == nil {
		ctx.fail(errExpectedDirectiveValue(token.Kind, ctx.text(token), token.Span()))
	}
	return lit
}

// parseLiteral consumes a string, integer, number or bool literal, or
// returns nil without consuming anything.
func parseLiteral(ctx *parseCtx) *Literal {
	token := ctx.peek()
	raw := ctx.text(token)
	var kind LitKind
	switch token.Kind {
	case T_STRING_LIT:
		kind = LIT_STRING
	case T_FLOAT_LIT:
		kind = LIT_FLOAT
	case T_BOOL_LIT:
		kind = LIT_BOOL
	case T_INT_LIT, T_HEX_INT_LIT:
		lit, err := newIntLit(raw, token.Kind == T_HEX_INT_LIT, token.Span())
		if err != nil {
			ctx.fail(err)
			return nil
		}
		ctx.pos++
		return lit
	default:
		return nil
	}
	ctx.pos++
	return &Literal{kind: kind, raw: raw, span: token.Span()}
}

func parsePositionValue(ctx *parseCtx) uint32 {
	token := ctx.peek()
	if token.Kind != T_INT_LIT && token.Kind != T_HEX_INT_LIT {
		ctx.fail(errExpectedPosition(token.Kind, ctx.text(token), token.Span()))
		return 0
	}
	lit := parseLiteral(ctx)
	if lit == nil {
		return 0
	}
	if lit.neg || lit.mag > math.MaxUint32 {
		ctx.fail(errPositionOutOfRange(lit.raw, lit.span))
		return 0
	}
	return uint32(lit.mag)
}

func (ctx *parseCtx) tryPosition(hdr *Header) {
	if !ctx.isSymbol(ctx.peek(), '#') {
		return
	}
	ctx.pos++
	ctx.sigil('[')
	hdr.position = parsePositionValue(ctx)
	hdr.explicit = true
	ctx.sigil(']')
}

func parseType(ctx *parseCtx) *TypeID {
	if ctx.err != nil {
		return nil
	}
	start := ctx.peek()
	if start.Kind != T_IDENT {
		ctx.fail(errExpectedType(start.Kind, ctx.text(start), start.Span()))
		return nil
	}
	ctx.pos++
	name := ctx.text(start)

	var args []*TypeID
	if ctx.trySigil('<') {
		for _ = range ctx.loop {
			if ctx.trySigil('>') {
				break
			}
			args = append(args, parseType(ctx))
			if !ctx.trySigil(',') {
				ctx.sigil('>')
				break
			}
		}
		if ctx.err != nil {
			return nil
		}
	}
	typ, err := resolveTypeName(name, args, ctx.spanFrom(start))
	if err != nil {
		ctx.fail(err)
		return nil
	}
	return typ
}

func parseFields(ctx *parseCtx, close byte) []*Field {
	var fields []*Field
	for _ = range ctx.loop {
		docs := ctx.docComments()
		if ctx.trySigil(close) {
			break
		}
		start := ctx.peek()
		field := &Field{}
		field.doc = docs
		ctx.tryPosition(&field.Header)
		field.name = ctx.ident()
		ctx.sigil(':')
		field.typ = parseType(ctx)
		field.span = ctx.spanFrom(start)
		fields = append(fields, field)
		ctx.trySigil(',')
	}
	return fields
}

func checkFieldNames(ctx *parseCtx, fields []*Field) {
	seen := make(map[string]bool, len(fields))
	for _, field := range fields {
		if seen[field.name] {
			ctx.fail(errDuplicateName("field", field.name, field.span))
			return
		}
		seen[field.name] = true
	}
}

// assignPositions fills in the position of every header without an
// explicit tag, counting up from zero and skipping explicit values.
func assignPositions(headers []*Header) error {
	taken := make(map[uint32]bool, len(headers))
	for _, hdr := range headers {
		if !hdr.explicit {
			continue
		}
		if taken[hdr.position] {
			return errDuplicatePosition(hdr.position, hdr.span)
		}
		taken[hdr.position] = true
	}
	var next uint32
	for _, hdr := range headers {
		if hdr.explicit {
			continue
		}
		for taken[next] {
			next++
		}
		hdr.position = next
		taken[next] = true
	}
	return nil
}

func fieldHeaders(fields []*Field) []*Header {
	headers := make([]*Header, len(fields))
	for ii, field := range fields {
		headers[ii] = &field.Header
	}
	return headers
}

func parseStruct(ctx *parseCtx) *Struct {
	start := ctx.peek()
	ctx.tryKeyword(T_STRUCT)
	decl := &Struct{name: ctx.ident()}
	if ctx.trySigil(';') {
		decl.unit = true
	} else {
		ctx.sigil('{')
		decl.fields = parseFields(ctx, '}')
	}
	if ctx.err != nil {
		return nil
	}
	checkFieldNames(ctx, decl.fields)
	if err := assignPositions(fieldHeaders(decl.fields)); err != nil {
		ctx.fail(err)
	}
	decl.span = ctx.spanFrom(start)
	return decl
}

func parseEnum(ctx *parseCtx) *Enum {
	start := ctx.peek()
	ctx.tryKeyword(T_ENUM)
	decl := &Enum{name: ctx.ident()}
	ctx.sigil('{')
	for _ = range ctx.loop {
		docs := ctx.docComments()
		if ctx.trySigil('}') {
			break
		}
		caseStart := ctx.peek()
		c := &Case{}
		c.doc = docs
		ctx.tryPosition(&c.Header)
		c.name = ctx.ident()
		switch {
		case ctx.trySigil('('):
			c.style = CASE_TUPLE
			for _ = range ctx.loop {
				if ctx.trySigil(')') {
					break
				}
				typeStart := ctx.peek()
				field := &Field{typ: parseType(ctx)}
				field.position = uint32(len(c.fields))
				field.span = ctx.spanFrom(typeStart)
				c.fields = append(c.fields, field)
				if !ctx.trySigil(',') {
					ctx.sigil(')')
					break
				}
			}
			if len(c.fields) == 0 {
				c.style = CASE_UNIT
			}
		case ctx.trySigil('{'):
			c.style = CASE_NAMED
			c.fields = parseFields(ctx, '}')
			checkFieldNames(ctx, c.fields)
			if err := assignPositions(fieldHeaders(c.fields)); err != nil {
				ctx.fail(err)
			}
		}
		c.span = ctx.spanFrom(caseStart)
		decl.cases = append(decl.cases, c)
		ctx.trySigil(',')
	}
	if ctx.err != nil {
		return nil
	}

	seen := make(map[string]bool, len(decl.cases))
	headers := make([]*Header, len(decl.cases))
	for ii, c := range decl.cases {
		if seen[c.name] {
			ctx.fail(errDuplicateName("case", c.name, c.span))
			return nil
		}
		seen[c.name] = true
		headers[ii] = &c.Header
	}
	if err := assignPositions(headers); err != nil {
		ctx.fail(err)
		return nil
	}
	decl.span = ctx.spanFrom(start)
	return decl
}

func parseFn(ctx *parseCtx) *Fn {
	start := ctx.peek()
	decl := &Fn{}
	for _ = range ctx.loop {
		if ctx.tryKeyword(T_SIGNAL) {
			decl.signal = true
		} else if ctx.tryKeyword(T_ASYNC) {
			decl.async = true
		} else {
			break
		}
	}
	if !ctx.tryKeyword(T_FN) {
		token := ctx.peek()
		ctx.fail(errExpectedKeywordFn(token.Kind, ctx.text(token), token.Span()))
		return nil
	}
	decl.name = ctx.ident()
	ctx.sigil('(')
	for _ = range ctx.loop {
		if ctx.trySigil(')') {
			break
		}
		argStart := ctx.peek()
		arg := &Field{name: ctx.ident()}
		ctx.sigil(':')
		arg.typ = parseType(ctx)
		arg.position = uint32(len(decl.args))
		arg.span = ctx.spanFrom(argStart)
		decl.args = append(decl.args, arg)
		if !ctx.trySigil(',') {
			ctx.sigil(')')
			break
		}
	}
	if ctx.trySigil('-') {
		ctx.sigil('>')
		decl.ret = parseType(ctx)
	}
	ctx.sigil(';')
	if ctx.err != nil {
		return nil
	}
	checkFieldNames(ctx, decl.args)
	decl.span = ctx.spanFrom(start)
	return decl
}

func parseConstBlock(ctx *parseCtx) *ConstBlock {
	start := ctx.peek()
	ctx.tryKeyword(T_CONST)
	block := &ConstBlock{name: ctx.ident()}
	ctx.sigil('{')
	seen := make(map[string]bool)
	for _ = range ctx.loop {
		docs := ctx.docComments()
		if ctx.trySigil('}') {
			break
		}
		var item ConstItem
		if ctx.peek().Kind == T_CONST {
			nested := parseConstBlock(ctx)
			if nested == nil {
				return nil
			}
			nested.doc = docs
			item = nested
		} else {
			c := parseConst(ctx)
			if c == nil {
				return nil
			}
			c.doc = docs
			item = c
		}
		if seen[item.Name()] {
			ctx.fail(errDuplicateName("constant", item.Name(), item.Span()))
			return nil
		}
		seen[item.Name()] = true
		block.items = append(block.items, item)
	}
	if ctx.err != nil {
		return nil
	}
	block.span = ctx.spanFrom(start)
	return block
}

func parseConst(ctx *parseCtx) *Const {
	start := ctx.peek()
	c := &Const{name: ctx.ident()}
	ctx.sigil(':')
	c.typ = parseType(ctx)
	ctx.sigil('=')
	if ctx.err != nil {
		return nil
	}

	token := ctx.peek()
	if token.Kind == T_IDENT {
		c.variant = parseVariantLit(ctx)
	} else {
		c.lit = parseLiteral(ctx)
		if c.lit == nil && ctx.err == nil {
			ctx.fail(errExpectedConstValue(token.Kind, ctx.text(token), token.Span()))
		}
		if ctx.err == nil && !literalFits(c.typ, c.lit) {
			ctx.fail(errConstTypeMismatch(c.name, c.typ, c.lit))
		}
	}
	ctx.sigil(';')
	if ctx.err != nil {
		return nil
	}
	c.span = ctx.spanFrom(start)
	return c
}

func parseVariantLit(ctx *parseCtx) *VariantLit {
	start := ctx.peek()
	name := ctx.ident()
	if ctx.isSymbol(ctx.peek(), '{') {
		ctx.fail(errStructConstUnsupported(name, ctx.peek().Span()))
		return nil
	}
	if !ctx.isSymbol(ctx.peek(), ':') {
		ctx.fail(errExpectedConstValue(start.Kind, name, start.Span()))
		return nil
	}
	ctx.sigil(':')
	ctx.sigil(':')
	v := &VariantLit{
		enum: name,
		kase: ctx.ident(),
	}

	switch {
	case ctx.trySigil('('):
		v.style = CASE_TUPLE
		for _ = range ctx.loop {
			if ctx.trySigil(')') {
				break
			}
			v.args = append(v.args, constLiteral(ctx))
			if !ctx.trySigil(',') {
				ctx.sigil(')')
				break
			}
		}
	case ctx.trySigil('{'):
		v.style = CASE_NAMED
		for _ = range ctx.loop {
			if ctx.trySigil('}') {
				break
			}
			field := &VariantFieldLit{name: ctx.ident()}
			ctx.sigil(':')
			field.value = constLiteral(ctx)
			v.fields = append(v.fields, field)
			if !ctx.trySigil(',') {
				ctx.sigil('}')
				break
			}
		}
	}
	if ctx.err != nil {
		return nil
	}
	v.span = ctx.spanFrom(start)
	return v
}

func constLiteral(ctx *parseCtx) *Literal {
	token := ctx.peek()
	lit := parseLiteral(ctx)
	if lit == nil && ctx.err == nil {
		ctx.fail(errExpectedConstValue(token.Kind, ctx.text(token), token.Span()))
	}
	return lit
}

// literalFits reports whether a literal's category matches a declared
// type. Integers never widen to numbers.
func literalFits(typ *TypeID, lit *Literal) bool {
	switch lit.kind {
	case LIT_STRING:
		return typ.IsString()
	case LIT_INT:
		return typ.kind == TYPE_INTEGER || typ.kind == TYPE_CHAR || IsAddressType(typ)
	case LIT_FLOAT:
		return typ.kind == TYPE_NUMBER
	case LIT_BOOL:
		return typ.kind == TYPE_BOOL
	}
	return false
}
